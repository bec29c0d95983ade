package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/storefront-api/internal/domain"
)

// OrderRepo provides typed DynamoDB operations for the orders table.
type OrderRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewOrderRepo(client *dynamodb.Client, tableName string) *OrderRepo {
	return &OrderRepo{client: client, tableName: tableName}
}

func (r *OrderRepo) Put(ctx context.Context, o *domain.Order) error {
	item, err := attributevalue.MarshalMap(o)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *OrderRepo) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("order_id", orderID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("order not found: %w", domain.ErrNotFound)
	}
	var o domain.Order
	if err := attributevalue.UnmarshalMap(out.Item, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// ListByUser returns a user's orders, newest first, via the
// user_id-created_at-index GSI.
func (r *OrderRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                aws.String(r.tableName),
		IndexName:                aws.String("user_id-created_at-index"),
		KeyConditionExpression:   aws.String("#u = :v"),
		ExpressionAttributeNames: map[string]string{"#u": "user_id"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberS{Value: userID},
		},
		ScanIndexForward: aws.Bool(false),
	})
	if err != nil {
		return nil, err
	}
	var orders []domain.Order
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// ScanPage returns a page of all orders for the admin back-office.
func (r *OrderRepo) ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.Order, string, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
		Limit:     aws.Int32(limit),
	}
	if cursor != "" {
		orderID, err := decodeCursor(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("invalid cursor: %w", domain.ErrBadRequest)
		}
		input.ExclusiveStartKey = strKey("order_id", orderID)
	}
	out, err := r.client.Scan(ctx, input)
	if err != nil {
		return nil, "", err
	}
	var orders []domain.Order
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &orders); err != nil {
		return nil, "", err
	}
	nextCursor := ""
	if v, ok := out.LastEvaluatedKey["order_id"].(*types.AttributeValueMemberS); ok {
		nextCursor = encodeCursor(v.Value)
	}
	return orders, nextCursor, nil
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, orderID, status string) error {
	expr, names, values, err := buildUpdateExpr(map[string]interface{}{
		"status":     status,
		"updated_at": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("order_id", orderID),
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	return err
}
