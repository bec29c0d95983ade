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

// ProductRepo provides typed DynamoDB operations for the products table.
type ProductRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewProductRepo(client *dynamodb.Client, tableName string) *ProductRepo {
	return &ProductRepo{client: client, tableName: tableName}
}

func (r *ProductRepo) Put(ctx context.Context, p *domain.Product) error {
	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("marshal product: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *ProductRepo) Get(ctx context.Context, productID string) (*domain.Product, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("product_id", productID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("product not found: %w", domain.ErrNotFound)
	}
	var p domain.Product
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// QueryByCategory returns enabled products in a category via the category_id-index GSI.
func (r *ProductRepo) QueryByCategory(ctx context.Context, categoryID string) ([]domain.Product, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                aws.String(r.tableName),
		IndexName:                aws.String("category_id-index"),
		KeyConditionExpression:   aws.String("#c = :v"),
		FilterExpression:         aws.String("enable = :t"),
		ExpressionAttributeNames: map[string]string{"#c": "category_id"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberS{Value: categoryID},
			":t": &types.AttributeValueMemberBOOL{Value: true},
		},
	})
	if err != nil {
		return nil, err
	}
	var products []domain.Product
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// ScanPage returns a page of enabled products.
// cursor is a base64-encoded product_id used as ExclusiveStartKey.
func (r *ProductRepo) ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.Product, string, error) {
	input := &dynamodb.ScanInput{
		TableName:        aws.String(r.tableName),
		FilterExpression: aws.String("enable = :t"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t": &types.AttributeValueMemberBOOL{Value: true},
		},
		Limit: aws.Int32(limit),
	}
	if cursor != "" {
		productID, err := decodeCursor(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("invalid cursor: %w", domain.ErrBadRequest)
		}
		input.ExclusiveStartKey = strKey("product_id", productID)
	}
	out, err := r.client.Scan(ctx, input)
	if err != nil {
		return nil, "", err
	}
	var products []domain.Product
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &products); err != nil {
		return nil, "", err
	}
	nextCursor := ""
	if v, ok := out.LastEvaluatedKey["product_id"].(*types.AttributeValueMemberS); ok {
		nextCursor = encodeCursor(v.Value)
	}
	return products, nextCursor, nil
}

func (r *ProductRepo) Update(ctx context.Context, productID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	expr, names, values, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("product_id", productID),
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	return err
}

// DecrementStock subtracts qty from the product's stock, clamping at zero on
// the read side. Checkout and stock decrement are deliberately not
// transactional; an oversell shows up as stock 0 rather than a failed order.
func (r *ProductRepo) DecrementStock(ctx context.Context, productID string, qty int) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      strKey("product_id", productID),
		UpdateExpression:         aws.String("SET stock = stock - :q"),
		ConditionExpression:      aws.String("stock >= :q"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":q": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", qty)},
		},
	})
	return err
}

func (r *ProductRepo) SoftDelete(ctx context.Context, productID string) error {
	return r.Update(ctx, productID, map[string]interface{}{"enable": false})
}
