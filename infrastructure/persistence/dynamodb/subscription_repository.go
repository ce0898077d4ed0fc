package dynamodb

import (
	"context"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"lifelog-backend/application/ports"
	"lifelog-backend/domain/billing"
	apperrors "lifelog-backend/pkg/errors"
)

// Webhook event markers live under a synthetic partition so they never mix
// with user entries. TTL'd out after 30 days by the table's TTL attribute.
const (
	eventMarkerPartition = "STRIPE_EVENT"
	eventMarkerTTLDays   = 30
)

// SubscriptionRepository stores billing records in the same table as
// entries, under the reserved SUBSCRIPTION sort key.
type SubscriptionRepository struct {
	client    *awsdynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewSubscriptionRepository creates a SubscriptionRepository.
func NewSubscriptionRepository(client *awsdynamodb.Client, tableName string, logger *zap.Logger) ports.SubscriptionRepository {
	return &SubscriptionRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

type subscriptionItem struct {
	UserID           string `dynamodbav:"userId"`
	EntryID          string `dynamodbav:"entryId"`
	SubscriptionType string `dynamodbav:"subscriptionType"`
	Status           string `dynamodbav:"status"`
	StripeCustomerID string `dynamodbav:"stripeCustomerId,omitempty"`
	StripeSessionID  string `dynamodbav:"stripeSessionId,omitempty"`
	LastEventID      string `dynamodbav:"lastEventId,omitempty"`
	UpdatedAt        string `dynamodbav:"updatedAt,omitempty"`
}

// Get returns the user's subscription record, or nil when absent.
func (r *SubscriptionRepository) Get(ctx context.Context, userID string) (*billing.Subscription, error) {
	out, err := r.client.GetItem(ctx, &awsdynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       entryKey(userID, billing.SubscriptionSortKey),
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("get subscription", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var item subscriptionItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, apperrors.NewDatabaseError("get subscription", err)
	}
	return &billing.Subscription{
		UserID:           item.UserID,
		SubscriptionType: item.SubscriptionType,
		Status:           item.Status,
		StripeCustomerID: item.StripeCustomerID,
		StripeSessionID:  item.StripeSessionID,
		LastEventID:      item.LastEventID,
		UpdatedAt:        item.UpdatedAt,
	}, nil
}

// Put writes or replaces the subscription record.
func (r *SubscriptionRepository) Put(ctx context.Context, sub billing.Subscription) error {
	item, err := attributevalue.MarshalMap(subscriptionItem{
		UserID:           sub.UserID,
		EntryID:          billing.SubscriptionSortKey,
		SubscriptionType: sub.SubscriptionType,
		Status:           sub.Status,
		StripeCustomerID: sub.StripeCustomerID,
		StripeSessionID:  sub.StripeSessionID,
		LastEventID:      sub.LastEventID,
		UpdatedAt:        sub.UpdatedAt,
	})
	if err != nil {
		return apperrors.NewDatabaseError("put subscription", err)
	}
	if _, err := r.client.PutItem(ctx, &awsdynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	}); err != nil {
		r.logger.Error("failed to write subscription",
			zap.Error(err),
			zap.String("userId", sub.UserID),
		)
		return apperrors.NewDatabaseError("put subscription", err)
	}
	return nil
}

// EventProcessed reports whether the event marker exists. The read is
// strongly consistent so a marker written moments ago is always seen.
func (r *SubscriptionRepository) EventProcessed(ctx context.Context, eventID string) (bool, error) {
	out, err := r.client.GetItem(ctx, &awsdynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            entryKey(eventMarkerPartition, eventMarkerPartition+"#"+eventID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return false, apperrors.NewDatabaseError("check event", err)
	}
	return len(out.Item) > 0, nil
}

// MarkEventProcessed records a webhook event id with a not-exists condition.
// A conditional failure means the event was already applied and surfaces as
// a conflict for the caller to treat as a duplicate.
func (r *SubscriptionRepository) MarkEventProcessed(ctx context.Context, eventID string) error {
	_, err := r.client.PutItem(ctx, &awsdynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item: map[string]types.AttributeValue{
			"userId":    &types.AttributeValueMemberS{Value: eventMarkerPartition},
			"entryId":   &types.AttributeValueMemberS{Value: eventMarkerPartition + "#" + eventID},
			"expiresAt": &types.AttributeValueMemberN{Value: strconv.FormatInt(time.Now().AddDate(0, 0, eventMarkerTTLDays).Unix(), 10)},
		},
		ConditionExpression: aws.String("attribute_not_exists(entryId)"),
	})
	if err != nil {
		if isConditionalCheckFailure(err) {
			return apperrors.NewConflictError("event already processed")
		}
		return apperrors.NewDatabaseError("mark event", err)
	}
	return nil
}
