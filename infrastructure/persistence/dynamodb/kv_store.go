// Package dynamodb implements the key-value store port on a DynamoDB table.
//
// Every store key is one item with partition key "PK". Hash fields become
// top-level attributes prefixed "F_"; a list lives in the "Items" attribute.
package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/ProfAvery/flowy-servers/application/ports"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

const (
	attrPK          = "PK"
	attrItems       = "Items"
	fieldAttrPrefix = "F_"
)

// API is the subset of the DynamoDB client the store uses
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// KVStore is a ports.KeyValueStore backed by DynamoDB
type KVStore struct {
	client    API
	tableName string
	logger    *zap.Logger
}

// NewKVStore creates a store over the given table
func NewKVStore(client API, tableName string, logger *zap.Logger) *KVStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KVStore{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

func (s *KVStore) itemKey(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrPK: &types.AttributeValueMemberS{Value: key},
	}
}

// HSet sets a hash field
func (s *KVStore) HSet(ctx context.Context, key, field, value string) error {
	update := expression.Set(expression.Name(fieldAttrPrefix+field), expression.Value(value))
	expr, err := expression.NewBuilder().WithUpdate(update).Build()
	if err != nil {
		return fmt.Errorf("failed to build update expression: %w", err)
	}

	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.tableName),
		Key:                       s.itemKey(key),
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	return classify(err)
}

// HGet reads a single hash field with a strongly consistent read
func (s *KVStore) HGet(ctx context.Context, key, field string) (string, bool, error) {
	attr := fieldAttrPrefix + field
	item, err := s.getAttribute(ctx, key, attr)
	if err != nil {
		return "", false, err
	}

	av, ok := item[attr]
	if !ok {
		return "", false, nil
	}
	var value string
	if err := attributevalue.Unmarshal(av, &value); err != nil {
		return "", false, fmt.Errorf("failed to unmarshal field %s: %w", field, err)
	}
	return value, true, nil
}

// Del removes the item
func (s *KVStore) Del(ctx context.Context, key string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       s.itemKey(key),
	})
	return classify(err)
}

// RPush appends values to the list attribute, creating it when absent
func (s *KVStore) RPush(ctx context.Context, key string, values ...string) error {
	items := expression.Name(attrItems)
	update := expression.Set(items,
		expression.ListAppend(items.IfNotExists(expression.Value([]string{})), expression.Value(values)),
	)
	expr, err := expression.NewBuilder().WithUpdate(update).Build()
	if err != nil {
		return fmt.Errorf("failed to build update expression: %w", err)
	}

	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.tableName),
		Key:                       s.itemKey(key),
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	return classify(err)
}

// LRange returns the whole list attribute
func (s *KVStore) LRange(ctx context.Context, key string) ([]string, error) {
	item, err := s.getAttribute(ctx, key, attrItems)
	if err != nil {
		return nil, err
	}

	values := []string{}
	if av, ok := item[attrItems]; ok {
		if err := attributevalue.Unmarshal(av, &values); err != nil {
			return nil, fmt.Errorf("failed to unmarshal list: %w", err)
		}
	}
	return values, nil
}

// Ping describes the table
func (s *KVStore) Ping(ctx context.Context) error {
	_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.tableName),
	})
	return classify(err)
}

// Close is a no-op; the SDK client holds no connections that need releasing
func (s *KVStore) Close() error {
	return nil
}

func (s *KVStore) getAttribute(ctx context.Context, key, attr string) (map[string]types.AttributeValue, error) {
	proj := expression.NamesList(expression.Name(attr))
	expr, err := expression.NewBuilder().WithProjection(proj).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build projection: %w", err)
	}

	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:                aws.String(s.tableName),
		Key:                      s.itemKey(key),
		ProjectionExpression:     expr.Projection(),
		ExpressionAttributeNames: expr.Names(),
		ConsistentRead:           aws.Bool(true),
	})
	if err != nil {
		return nil, classify(err)
	}
	return out.Item, nil
}

// classify marks transport failures and throttling as unavailability. Other
// service errors are returned as they are.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ProvisionedThroughputExceededException", "ThrottlingException", "RequestLimitExceeded":
			return fmt.Errorf("%w: %v", ports.ErrStoreUnavailable, err)
		}
		return err
	}
	return fmt.Errorf("%w: %v", ports.ErrStoreUnavailable, err)
}
