package repository

import (
	"context"
	"fmt"
	"rebalance/internal/domain"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoClient is the subset of the DynamoDB API the repository uses.
type DynamoClient interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

type dynamoPortfolioItem struct {
	User      string           `dynamodbav:"user"`
	Portfolio []domain.Holding `dynamodbav:"portfolio"`
}

type dynamoPortfolioRepositoryHandler struct {
	client    DynamoClient
	tableName string
}

// NewDynamoPortfolioRepository stores each portfolio as a single item
// keyed by "user", holdings under "portfolio".
func NewDynamoPortfolioRepository(ctx context.Context, region, tableName string) (PortfolioRepository, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewDynamoPortfolioRepositoryWithClient(dynamodb.NewFromConfig(cfg), tableName), nil
}

func NewDynamoPortfolioRepositoryWithClient(client DynamoClient, tableName string) PortfolioRepository {
	return dynamoPortfolioRepositoryHandler{
		client:    client,
		tableName: tableName,
	}
}

func (h dynamoPortfolioRepositoryHandler) key(identity string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"user": &types.AttributeValueMemberS{Value: identity},
	}
}

func (h dynamoPortfolioRepositoryHandler) Get(ctx context.Context, identity string) ([]domain.Holding, error) {
	out, err := h.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(h.tableName),
		Key:       h.key(identity),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get portfolio item: %w", err)
	}
	if out.Item == nil {
		return []domain.Holding{}, nil
	}

	item := dynamoPortfolioItem{}
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to decode portfolio item: %w", err)
	}
	if item.Portfolio == nil {
		return []domain.Holding{}, nil
	}

	return item.Portfolio, nil
}

func (h dynamoPortfolioRepositoryHandler) Set(ctx context.Context, identity string, holdings []domain.Holding) error {
	if holdings == nil {
		holdings = []domain.Holding{}
	}
	item, err := attributevalue.MarshalMap(dynamoPortfolioItem{
		User:      identity,
		Portfolio: holdings,
	})
	if err != nil {
		return fmt.Errorf("failed to encode portfolio item: %w", err)
	}

	_, err = h.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(h.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put portfolio item: %w", err)
	}

	return nil
}

func (h dynamoPortfolioRepositoryHandler) Delete(ctx context.Context, identity string) error {
	_, err := h.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(h.tableName),
		Key:       h.key(identity),
	})
	if err != nil {
		return fmt.Errorf("failed to delete portfolio item: %w", err)
	}

	return nil
}
