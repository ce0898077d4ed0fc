// Package dynamodb implements the persistence ports against a single
// DynamoDB table keyed by (userId, entryId).
package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"lifelog-backend/application/ports"
	"lifelog-backend/domain/entry"
	apperrors "lifelog-backend/pkg/errors"
)

// EntryRepository is the DynamoDB implementation of ports.EntryRepository.
type EntryRepository struct {
	client    *awsdynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewEntryRepository creates an EntryRepository.
func NewEntryRepository(client *awsdynamodb.Client, tableName string, logger *zap.Logger) ports.EntryRepository {
	return &EntryRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// List queries the user's partition scoped to the entity type's sort-key
// prefix. Entry ids embed a fixed-width millisecond timestamp, so reading
// the sort key backwards yields newest-first order.
func (r *EntryRepository) List(ctx context.Context, userID string, entityType entry.EntityType, limit int) ([]entry.Entry, error) {
	out, err := r.client.Query(ctx, &awsdynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("userId = :uid AND begins_with(entryId, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid":    &types.AttributeValueMemberS{Value: userID},
			":prefix": &types.AttributeValueMemberS{Value: entry.IDPrefix(entityType)},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(int32(limit)),
	})
	if err != nil {
		r.logger.Error("failed to query entries",
			zap.Error(err),
			zap.String("userId", userID),
			zap.String("entityType", string(entityType)),
		)
		return nil, apperrors.NewDatabaseError("list", err)
	}

	entries := make([]entry.Entry, 0, len(out.Items))
	for _, item := range out.Items {
		e, err := itemToEntry(item)
		if err != nil {
			return nil, apperrors.NewDatabaseError("list", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Get performs a point lookup by exact key.
func (r *EntryRepository) Get(ctx context.Context, userID, entryID string) (*entry.Entry, error) {
	out, err := r.client.GetItem(ctx, &awsdynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       entryKey(userID, entryID),
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("get", err)
	}
	if len(out.Item) == 0 {
		return nil, apperrors.NewNotFoundError("Entry")
	}
	e, err := itemToEntry(out.Item)
	if err != nil {
		return nil, apperrors.NewDatabaseError("get", err)
	}
	return &e, nil
}

// Create writes the entry only if its id does not already exist. The random
// suffix makes a collision effectively impossible; the condition is still
// enforced.
func (r *EntryRepository) Create(ctx context.Context, e entry.Entry) error {
	item, err := entryToItem(e)
	if err != nil {
		return apperrors.NewDatabaseError("create", err)
	}
	_, err = r.client.PutItem(ctx, &awsdynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(entryId)"),
	})
	if err != nil {
		if isConditionalCheckFailure(err) {
			return apperrors.NewConflictError("entry id already exists")
		}
		r.logger.Error("failed to create entry",
			zap.Error(err),
			zap.String("userId", e.UserID),
			zap.String("entryId", e.EntryID),
		)
		return apperrors.NewDatabaseError("create", err)
	}
	return nil
}

// Update builds an update expression from the surviving fields plus the
// refreshed updatedAt, conditioned on the item existing. A conditional-check
// failure means the entry is gone and maps to not-found.
func (r *EntryRepository) Update(ctx context.Context, userID, entryID string, fields map[string]any, updatedAt string) (*entry.Entry, error) {
	update := expression.Set(expression.Name(entry.FieldUpdatedAt), expression.Value(updatedAt))
	for k, v := range fields {
		update = update.Set(expression.Name(k), expression.Value(v))
	}
	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(expression.AttributeExists(expression.Name("entryId"))).
		Build()
	if err != nil {
		return nil, apperrors.NewDatabaseError("update", err)
	}

	out, err := r.client.UpdateItem(ctx, &awsdynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       entryKey(userID, entryID),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		if isConditionalCheckFailure(err) {
			return nil, apperrors.NewNotFoundError("Entry")
		}
		r.logger.Error("failed to update entry",
			zap.Error(err),
			zap.String("userId", userID),
			zap.String("entryId", entryID),
		)
		return nil, apperrors.NewDatabaseError("update", err)
	}

	e, err := itemToEntry(out.Attributes)
	if err != nil {
		return nil, apperrors.NewDatabaseError("update", err)
	}
	return &e, nil
}

// Delete removes the entry, conditioned on it existing.
func (r *EntryRepository) Delete(ctx context.Context, userID, entryID string) error {
	_, err := r.client.DeleteItem(ctx, &awsdynamodb.DeleteItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 entryKey(userID, entryID),
		ConditionExpression: aws.String("attribute_exists(entryId)"),
	})
	if err != nil {
		if isConditionalCheckFailure(err) {
			return apperrors.NewNotFoundError("Entry")
		}
		r.logger.Error("failed to delete entry",
			zap.Error(err),
			zap.String("userId", userID),
			zap.String("entryId", entryID),
		)
		return apperrors.NewDatabaseError("delete", err)
	}
	return nil
}

func entryKey(userID, entryID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"userId":  &types.AttributeValueMemberS{Value: userID},
		"entryId": &types.AttributeValueMemberS{Value: entryID},
	}
}

// entryToItem flattens the entry into one item: payload fields plus the
// server-owned attributes.
func entryToItem(e entry.Entry) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMap(e.Fields)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entry fields: %w", err)
	}
	item[entry.FieldUserID] = &types.AttributeValueMemberS{Value: e.UserID}
	item[entry.FieldEntryID] = &types.AttributeValueMemberS{Value: e.EntryID}
	item[entry.FieldEntityType] = &types.AttributeValueMemberS{Value: string(e.EntityType)}
	item[entry.FieldCreatedAt] = &types.AttributeValueMemberS{Value: e.CreatedAt}
	item[entry.FieldUpdatedAt] = &types.AttributeValueMemberS{Value: e.UpdatedAt}
	return item, nil
}

func itemToEntry(item map[string]types.AttributeValue) (entry.Entry, error) {
	var flat map[string]any
	if err := attributevalue.UnmarshalMap(item, &flat); err != nil {
		return entry.Entry{}, fmt.Errorf("failed to unmarshal entry item: %w", err)
	}
	e := entry.Entry{Fields: entry.StripServerOwned(flat)}
	if v, ok := flat[entry.FieldUserID].(string); ok {
		e.UserID = v
	}
	if v, ok := flat[entry.FieldEntryID].(string); ok {
		e.EntryID = v
	}
	if v, ok := flat[entry.FieldEntityType].(string); ok {
		e.EntityType = entry.EntityType(v)
	}
	if v, ok := flat[entry.FieldCreatedAt].(string); ok {
		e.CreatedAt = v
	}
	if v, ok := flat[entry.FieldUpdatedAt].(string); ok {
		e.UpdatedAt = v
	}
	return e, nil
}

func isConditionalCheckFailure(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return true
	}
	var canceled *types.TransactionCanceledException
	if errors.As(err, &canceled) {
		for _, reason := range canceled.CancellationReasons {
			if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
				return true
			}
		}
	}
	return false
}
