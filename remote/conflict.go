package remote

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/fastbreaklabs/rosterstore/model"
	"github.com/fastbreaklabs/rosterstore/store"
)

const conflictIDPrefix = "conflict#"

// ConflictBackup preserves the losing side of a version race: the payload
// that was rejected, and the version the writer believed it was updating.
// At most one backup exists per game; a later conflict overwrites it.
type ConflictBackup struct {
	ID              string     `dynamodbav:"id"`
	AggregateID     string     `dynamodbav:"aggregate_id"`
	Payload         model.Game `dynamodbav:"payload"`
	ExpectedVersion int64      `dynamodbav:"expected_version"`
	CreatedAt       time.Time  `dynamodbav:"created_at"`
}

// backupConflict writes the rejected payload to the conflict table. A
// failure here is logged and swallowed: the caller is already raising
// ErrConflict, and the rejected save matters more than its backup.
func (s *Store) backupConflict(ctx context.Context, g model.Game, expected int64) {
	backup := ConflictBackup{
		ID:              conflictIDPrefix + g.ID,
		AggregateID:     g.ID,
		Payload:         g,
		ExpectedVersion: expected,
		CreatedAt:       time.Now().UTC(),
	}

	item, err := attributevalue.MarshalMap(backup)
	if err != nil {
		s.logger.Error("conflict backup marshal failed", "game", g.ID, "error", err)
		return
	}

	_, err = withRetry(ctx, s.retry, "backup conflict", func(ctx context.Context) (struct{}, error) {
		_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: aws.String(s.cfg.ConflictTable),
			Item:      item,
		})
		return struct{}{}, err
	})
	if err != nil {
		s.logger.Error("conflict backup write failed", "game", g.ID, "error", err)
	}
}

// ListConflictBackups returns every preserved conflict payload.
func (s *Store) ListConflictBackups(ctx context.Context) ([]ConflictBackup, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	return withRetry(ctx, s.retry, "list conflicts", func(ctx context.Context) ([]ConflictBackup, error) {
		var backups []ConflictBackup
		paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
			TableName: aws.String(s.cfg.ConflictTable),
		})
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				return nil, err
			}
			for _, raw := range page.Items {
				var b ConflictBackup
				if err := attributevalue.UnmarshalMap(raw, &b); err != nil {
					return nil, &store.Error{Kind: store.ErrServer, Err: err}
				}
				backups = append(backups, b)
			}
		}
		return backups, nil
	})
}

// GetConflictBackup returns the preserved payload for one game, or
// ErrNotFound when no conflict is on record.
func (s *Store) GetConflictBackup(ctx context.Context, gameID string) (ConflictBackup, error) {
	if err := s.ready(); err != nil {
		return ConflictBackup{}, err
	}

	out, err := withRetry(ctx, s.retry, "get conflict", func(ctx context.Context) (*dynamodb.GetItemOutput, error) {
		return s.client.GetItem(ctx, &dynamodb.GetItemInput{
			TableName: aws.String(s.cfg.ConflictTable),
			Key:       conflictKey(gameID),
		})
	})
	if err != nil {
		return ConflictBackup{}, err
	}
	if out.Item == nil {
		return ConflictBackup{}, &store.Error{Kind: store.ErrNotFound, EntityType: "conflict", Key: gameID}
	}

	var b ConflictBackup
	if err := attributevalue.UnmarshalMap(out.Item, &b); err != nil {
		return ConflictBackup{}, &store.Error{Kind: store.ErrServer, Err: err}
	}
	return b, nil
}

// DeleteConflictBackup discards the preserved payload for one game,
// typically after the user resolved the conflict. Deleting a backup that
// does not exist is a no-op.
func (s *Store) DeleteConflictBackup(ctx context.Context, gameID string) error {
	if err := s.ready(); err != nil {
		return err
	}

	_, err := withRetry(ctx, s.retry, "delete conflict", func(ctx context.Context) (struct{}, error) {
		_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(s.cfg.ConflictTable),
			Key:       conflictKey(gameID),
		})
		return struct{}{}, err
	})
	return err
}

func conflictKey(gameID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: conflictIDPrefix + gameID},
	}
}
