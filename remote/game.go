package remote

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/fastbreaklabs/rosterstore/model"
	"github.com/fastbreaklabs/rosterstore/store"
)

// versionCache remembers the last version this client observed for each
// game. The table owns the truth; the cache only supplies the expected
// value for conditional saves. A missing entry means "save blind".
type versionCache struct {
	mu       sync.Mutex
	versions map[string]int64
}

func newVersionCache() *versionCache {
	return &versionCache{versions: make(map[string]int64)}
}

func (c *versionCache) get(id string) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.versions[id]
	return v, ok
}

func (c *versionCache) put(id string, v int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versions[id] = v
}

func (c *versionCache) drop(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.versions, id)
}

func (c *versionCache) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versions = make(map[string]int64)
}

// gameCollection stores the game aggregates with optimistic concurrency.
// The item carries the doc map, the server-owned version counter, and an
// updated_at stamp for the streams consumer.
type gameCollection struct {
	s *Store
}

var _ store.GameCollection = (*gameCollection)(nil)

func gameKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	}
}

// Save writes the aggregate with a single conditional update. The version
// increments server-side on every successful save; when this client holds
// a cached version it is sent as the expected value, and a mismatch means
// someone else saved first. The losing payload is preserved in the
// conflict table before ErrConflict surfaces, so no edit is silently lost.
func (c *gameCollection) Save(ctx context.Context, g model.Game) (model.Game, error) {
	s := c.s
	if err := s.ready(); err != nil {
		return model.Game{}, err
	}
	if err := g.Validate(); err != nil {
		return model.Game{}, store.WrapValidation(err)
	}

	now := time.Now().UTC()
	g = g.Clone()
	g.UpdatedAt = now
	if g.ID == "" {
		g.ID = uuid.NewString()
		g.CreatedAt = now
	}

	doc, err := attributevalue.MarshalMap(g)
	if err != nil {
		return model.Game{}, &store.Error{Kind: store.ErrServer, Err: err}
	}

	expected, haveExpected := s.cache.get(g.ID)

	in := &dynamodb.UpdateItemInput{
		TableName:        aws.String(s.cfg.GameTable),
		Key:              gameKey(g.ID),
		UpdateExpression: aws.String("SET #doc = :doc, #updated = :u, #version = if_not_exists(#version, :zero) + :one"),
		ExpressionAttributeNames: map[string]string{
			"#doc":     "doc",
			"#updated": "updated_at",
			"#version": "version",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":doc":  &types.AttributeValueMemberM{Value: doc},
			":u":    &types.AttributeValueMemberS{Value: now.Format(time.RFC3339Nano)},
			":zero": &types.AttributeValueMemberN{Value: "0"},
			":one":  &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueAllNew,
	}
	if haveExpected {
		in.ConditionExpression = aws.String("#version = :expected")
		in.ExpressionAttributeValues[":expected"] = &types.AttributeValueMemberN{
			Value: strconv.FormatInt(expected, 10),
		}
	}

	out, err := withRetry(ctx, s.retry, "save game", func(ctx context.Context) (*dynamodb.UpdateItemOutput, error) {
		return s.client.UpdateItem(ctx, in)
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			s.backupConflict(ctx, g, expected)
			s.cache.drop(g.ID)
			return model.Game{}, &store.Error{
				Kind:       store.ErrConflict,
				EntityType: "game",
				Key:        g.ID,
				Err:        err,
			}
		}
		return model.Game{}, err
	}

	version, ok := versionFromItem(out.Attributes)
	if !ok {
		// The counter came back unreadable. The save itself succeeded, so
		// only the cached expectation is poisoned; drop it and save blind
		// next time.
		s.logger.Warn("saved game returned no usable version", "game", g.ID)
		s.cache.drop(g.ID)
		return g, nil
	}
	g.Version = version
	s.cache.put(g.ID, version)
	return g, nil
}

func (c *gameCollection) Load(ctx context.Context, id string) (model.Game, error) {
	s := c.s
	if err := s.ready(); err != nil {
		return model.Game{}, err
	}

	out, err := withRetry(ctx, s.retry, "load game", func(ctx context.Context) (*dynamodb.GetItemOutput, error) {
		return s.client.GetItem(ctx, &dynamodb.GetItemInput{
			TableName: aws.String(s.cfg.GameTable),
			Key:       gameKey(id),
		})
	})
	if err != nil {
		return model.Game{}, err
	}
	if out.Item == nil {
		return model.Game{}, &store.Error{Kind: store.ErrNotFound, EntityType: "game", Key: id}
	}

	g, err := gameFromItem(out.Item)
	if err != nil {
		return model.Game{}, err
	}
	if g.Version > 0 {
		s.cache.put(id, g.Version)
	}
	return g, nil
}

func (c *gameCollection) List(ctx context.Context) ([]model.Game, error) {
	s := c.s
	if err := s.ready(); err != nil {
		return nil, err
	}

	return withRetry(ctx, s.retry, "list games", func(ctx context.Context) ([]model.Game, error) {
		var games []model.Game
		paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
			TableName: aws.String(s.cfg.GameTable),
		})
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				return nil, err
			}
			for _, raw := range page.Items {
				g, err := gameFromItem(raw)
				if err != nil {
					return nil, err
				}
				games = append(games, g)
			}
		}
		return games, nil
	})
}

func (c *gameCollection) Delete(ctx context.Context, id string) error {
	s := c.s
	if err := s.ready(); err != nil {
		return err
	}

	_, err := withRetry(ctx, s.retry, "delete game", func(ctx context.Context) (struct{}, error) {
		_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName:           aws.String(s.cfg.GameTable),
			Key:                 gameKey(id),
			ConditionExpression: aws.String("attribute_exists(id)"),
		})
		return struct{}{}, err
	})
	s.cache.drop(id)
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return &store.Error{Kind: store.ErrNotFound, EntityType: "game", Key: id, Err: err}
		}
		return err
	}
	return nil
}

// ReplaceRoster swaps the roster snapshot in place without touching the
// version counter, so it never loses a race against a concurrent save and
// repeating it is harmless.
func (c *gameCollection) ReplaceRoster(ctx context.Context, gameID string, roster []model.RosterSpot) error {
	s := c.s
	if err := s.ready(); err != nil {
		return err
	}

	rosterAttr, err := attributevalue.Marshal(roster)
	if err != nil {
		return &store.Error{Kind: store.ErrServer, Err: err}
	}

	_, err = withRetry(ctx, s.retry, "replace roster", func(ctx context.Context) (struct{}, error) {
		_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName:           aws.String(s.cfg.GameTable),
			Key:                 gameKey(gameID),
			UpdateExpression:    aws.String("SET #doc.#roster = :r, #updated = :u"),
			ConditionExpression: aws.String("attribute_exists(id)"),
			ExpressionAttributeNames: map[string]string{
				"#doc":     "doc",
				"#roster":  "roster",
				"#updated": "updated_at",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":r": rosterAttr,
				":u": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339Nano)},
			},
		})
		return struct{}{}, err
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return &store.Error{Kind: store.ErrNotFound, EntityType: "game", Key: gameID, Err: err}
		}
		return err
	}
	return nil
}

// ResetCache drops every cached version, e.g. when the signed-in account
// changes and stale expectations would fail every save.
func (c *gameCollection) ResetCache() {
	c.s.cache.reset()
}

func gameFromItem(item map[string]types.AttributeValue) (model.Game, error) {
	doc, ok := item["doc"].(*types.AttributeValueMemberM)
	if !ok {
		return model.Game{}, &store.Error{Kind: store.ErrServer, Err: errors.New("game item missing doc attribute")}
	}
	var g model.Game
	if err := attributevalue.UnmarshalMap(doc.Value, &g); err != nil {
		return model.Game{}, &store.Error{Kind: store.ErrServer, Err: err}
	}
	if v, ok := versionFromItem(item); ok {
		g.Version = v
	}
	return g, nil
}

func formatVersion(v int64) string {
	return strconv.FormatInt(v, 10)
}

func versionFromItem(item map[string]types.AttributeValue) (int64, bool) {
	n, ok := item["version"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseInt(n.Value, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
