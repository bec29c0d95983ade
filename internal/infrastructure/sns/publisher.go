package sns

import (
	"context"
	"encoding/json"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/storefront-api/internal/config"
	"github.com/storefront-api/internal/domain"
)

// OrderPublisher announces placed orders to an SNS topic so back-office
// consumers (fulfilment, notifications) can react without polling the table.
type OrderPublisher interface {
	PublishOrderPlaced(ctx context.Context, o *domain.Order) error
}

type publisher struct {
	client   *sns.Client
	topicARN string
}

func NewPublisher(cfg *config.Config) (OrderPublisher, error) {
	if cfg.SNSOrderTopicARN == "" {
		return nil, fmt.Errorf("SNS_ORDER_TOPIC_ARN not configured")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return nil, err
	}
	return &publisher{client: sns.NewFromConfig(awsCfg), topicARN: cfg.SNSOrderTopicARN}, nil
}

func (p *publisher) PublishOrderPlaced(ctx context.Context, o *domain.Order) error {
	payload, err := json.Marshal(map[string]interface{}{
		"event":    "order.placed",
		"order_id": o.OrderID,
		"user_id":  o.UserID,
		"total":    o.Total,
		"items":    len(o.Items),
	})
	if err != nil {
		return err
	}
	msg := string(payload)
	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: &p.topicARN,
		Message:  &msg,
	})
	return err
}
