package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/example/storefront/internal/domain/cart"
)

// DynamoStorage persists carts in DynamoDB, one item per user. Used on the
// serverless deployment path where no Redis is provisioned.
type DynamoStorage struct {
	client    *dynamodb.Client
	tableName string
}

// dynamoCart is the DynamoDB item shape. Items are stored as a JSON blob so
// the table schema does not chase the cart line layout.
type dynamoCart struct {
	UserID    string `dynamodbav:"user_id"`
	Items     string `dynamodbav:"items"`
	UpdatedAt string `dynamodbav:"updated_at"`
}

func NewDynamoStorage(client *dynamodb.Client, tableName string) *DynamoStorage {
	return &DynamoStorage{client: client, tableName: tableName}
}

func (d *DynamoStorage) Load(ctx context.Context, userID string) (*cart.Cart, error) {
	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]types.AttributeValue{
			"user_id": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("dynamo get failed: %w", err)
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}

	var item dynamoCart
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart item: %w", err)
	}

	c := cart.New(userID)
	if err := json.Unmarshal([]byte(item.Items), &c.Items); err != nil {
		return nil, fmt.Errorf("failed to decode cart lines: %w", err)
	}
	return c, nil
}

func (d *DynamoStorage) Save(ctx context.Context, userID string, c *cart.Cart) error {
	lines, err := json.Marshal(c.Items)
	if err != nil {
		return fmt.Errorf("failed to encode cart lines: %w", err)
	}

	av, err := attributevalue.MarshalMap(dynamoCart{
		UserID:    userID,
		Items:     string(lines),
		UpdatedAt: time.Now().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal cart item: %w", err)
	}

	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("dynamo put failed: %w", err)
	}
	return nil
}

func (d *DynamoStorage) Delete(ctx context.Context, userID string) error {
	_, err := d.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]types.AttributeValue{
			"user_id": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("dynamo delete failed: %w", err)
	}
	return nil
}
