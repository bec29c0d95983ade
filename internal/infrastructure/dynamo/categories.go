package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/storefront-api/internal/domain"
)

// CategoryRepo provides typed DynamoDB operations for the categories table.
type CategoryRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewCategoryRepo(client *dynamodb.Client, tableName string) *CategoryRepo {
	return &CategoryRepo{client: client, tableName: tableName}
}

func (r *CategoryRepo) Scan(ctx context.Context) ([]domain.Category, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
	})
	if err != nil {
		return nil, err
	}
	var categories []domain.Category
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *CategoryRepo) Get(ctx context.Context, categoryID string) (*domain.Category, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("category_id", categoryID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("category not found: %w", domain.ErrNotFound)
	}
	var c domain.Category
	if err := attributevalue.UnmarshalMap(out.Item, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepo) Put(ctx context.Context, c *domain.Category) error {
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return fmt.Errorf("marshal category: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *CategoryRepo) Update(ctx context.Context, categoryID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	expr, names, values, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("category_id", categoryID),
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	return err
}

func (r *CategoryRepo) HardDelete(ctx context.Context, categoryID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("category_id", categoryID),
	})
	return err
}
