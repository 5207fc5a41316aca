package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"tienda-chat/internal/domain"
)

const (
	skPrefixExchange   = "EXCHANGE#"
	defaultTTLDuration = 30 * 24 * time.Hour
)

// dynamodbAPI is the minimal DynamoDB interface required by Client.
type dynamodbAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// Client records relay exchanges in a DynamoDB table. Items are partitioned
// by UTC day so a day's traffic can be inspected with a single query.
type Client struct {
	api       dynamodbAPI
	tableName string
	ttl       time.Duration
	now       func() time.Time
}

// New creates a new repository Client. A non-positive ttl falls back to 30 days.
func New(api dynamodbAPI, tableName string, ttl time.Duration) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	if ttl <= 0 {
		ttl = defaultTTLDuration
	}
	return &Client{api: api, tableName: tableName, ttl: ttl, now: time.Now}, nil
}

// dayPK returns the partition key for exchanges created on ts's UTC day.
func dayPK(ts time.Time) string {
	return "DAY#" + ts.UTC().Format(time.DateOnly)
}

// exchangeSK sorts exchanges chronologically within a day; the id breaks ties.
func exchangeSK(ts time.Time, id string) string {
	return skPrefixExchange + ts.UTC().Format(time.RFC3339Nano) + "#" + id
}

// NewExchange stamps an Exchange with id, keys, creation time and TTL.
func (c *Client) NewExchange(correlationID string, outcome domain.Outcome, turnCount, replyLength int, latency time.Duration) domain.Exchange {
	now := c.now().UTC()
	id := uuid.NewString()
	return domain.Exchange{
		PK:            dayPK(now),
		SK:            exchangeSK(now, id),
		ID:            id,
		CorrelationID: correlationID,
		Outcome:       outcome,
		TurnCount:     turnCount,
		ReplyLength:   replyLength,
		Latency:       latency,
		CreatedAt:     now,
		TTL:           now.Add(c.ttl).Unix(),
	}
}

// RecordExchange builds and persists one exchange record.
func (c *Client) RecordExchange(ctx context.Context, correlationID string, outcome domain.Outcome, turnCount, replyLength int, latency time.Duration) error {
	return c.PutExchange(ctx, c.NewExchange(correlationID, outcome, turnCount, replyLength, latency))
}

// PutExchange persists an already-stamped exchange. Records are write-once.
func (c *Client) PutExchange(ctx context.Context, ex domain.Exchange) error {
	if ex.PK == "" || ex.SK == "" {
		return errors.New("repository: PutExchange: PK and SK are required")
	}
	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(c.tableName),
		Item:                exchangeItem(ex),
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	})
	if err != nil {
		return fmt.Errorf("repository: PutExchange: %w", err)
	}
	return nil
}

func exchangeItem(ex domain.Exchange) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":            &types.AttributeValueMemberS{Value: ex.PK},
		"SK":            &types.AttributeValueMemberS{Value: ex.SK},
		"id":            &types.AttributeValueMemberS{Value: ex.ID},
		"correlationId": &types.AttributeValueMemberS{Value: ex.CorrelationID},
		"outcome":       &types.AttributeValueMemberS{Value: string(ex.Outcome)},
		"turnCount":     &types.AttributeValueMemberN{Value: strconv.Itoa(ex.TurnCount)},
		"replyLength":   &types.AttributeValueMemberN{Value: strconv.Itoa(ex.ReplyLength)},
		"latencyMs":     &types.AttributeValueMemberN{Value: strconv.FormatInt(ex.Latency.Milliseconds(), 10)},
		"createdAt":     &types.AttributeValueMemberS{Value: ex.CreatedAt.UTC().Format(time.RFC3339Nano)},
		"ttl":           &types.AttributeValueMemberN{Value: strconv.FormatInt(ex.TTL, 10)},
	}
}
