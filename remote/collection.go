package remote

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/fastbreaklabs/rosterstore/model"
	"github.com/fastbreaklabs/rosterstore/store"
)

// collection is one entity collection in the shared entity table. Items
// are keyed by entity type and id; the entity body lives whole in a doc
// map so the table schema never chases the model.
type collection[T model.Entity, PT model.Ref[T], P model.Patch[T]] struct {
	s        *Store
	typeName string
}

func newCollection[T model.Entity, PT model.Ref[T], P model.Patch[T]](s *Store, typeName string) *collection[T, PT, P] {
	return &collection[T, PT, P]{s: s, typeName: typeName}
}

func entityKey(typeName, id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"entity_type": &types.AttributeValueMemberS{Value: typeName},
		"id":          &types.AttributeValueMemberS{Value: id},
	}
}

func marshalEntityItem[T model.Entity](e T) (map[string]types.AttributeValue, error) {
	doc, err := attributevalue.MarshalMap(e)
	if err != nil {
		return nil, err
	}
	return map[string]types.AttributeValue{
		"entity_type": &types.AttributeValueMemberS{Value: e.EntityType()},
		"id":          &types.AttributeValueMemberS{Value: e.EntityID()},
		"unique_key":  &types.AttributeValueMemberS{Value: e.UniqueKey()},
		"doc":         &types.AttributeValueMemberM{Value: doc},
	}, nil
}

func unmarshalEntity[T any](item map[string]types.AttributeValue) (T, error) {
	var e T
	doc, ok := item["doc"].(*types.AttributeValueMemberM)
	if !ok {
		return e, &store.Error{Kind: store.ErrServer, Err: errors.New("item missing doc attribute")}
	}
	if err := attributevalue.UnmarshalMap(doc.Value, &e); err != nil {
		return e, &store.Error{Kind: store.ErrServer, Err: err}
	}
	return e, nil
}

func (c *collection[T, PT, P]) put(ctx context.Context, e T, condition string) error {
	item, err := marshalEntityItem(e)
	if err != nil {
		return &store.Error{Kind: store.ErrServer, Err: err}
	}

	in := &dynamodb.PutItemInput{
		TableName: aws.String(c.s.cfg.EntityTable),
		Item:      item,
	}
	if condition != "" {
		in.ConditionExpression = aws.String(condition)
	}

	_, err = withRetry(ctx, c.s.retry, "put "+c.typeName, func(ctx context.Context) (struct{}, error) {
		_, err := c.s.client.PutItem(ctx, in)
		return struct{}{}, err
	})
	return err
}

func (c *collection[T, PT, P]) list(ctx context.Context) ([]T, error) {
	return withRetry(ctx, c.s.retry, "list "+c.typeName, func(ctx context.Context) ([]T, error) {
		var items []T
		paginator := dynamodb.NewQueryPaginator(c.s.client, &dynamodb.QueryInput{
			TableName:              aws.String(c.s.cfg.EntityTable),
			KeyConditionExpression: aws.String("entity_type = :t"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":t": &types.AttributeValueMemberS{Value: c.typeName},
			},
		})
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				return nil, err
			}
			for _, raw := range page.Items {
				e, err := unmarshalEntity[T](raw)
				if err != nil {
					return nil, err
				}
				items = append(items, e)
			}
		}
		return items, nil
	})
}

func (c *collection[T, PT, P]) Create(ctx context.Context, e T) (T, error) {
	var zero T
	if err := c.s.ready(); err != nil {
		return zero, err
	}
	if err := e.Validate(); err != nil {
		return zero, store.WrapValidation(err)
	}

	now := time.Now().UTC()
	meta := model.MetaOf[T, PT](e)
	if meta.ID == "" {
		meta.ID = uuid.NewString()
	}
	meta.CreatedAt = now
	meta.UpdatedAt = now
	e = model.WithMeta[T, PT](e, meta)

	// Uniqueness is checked against a fresh read of the collection; the
	// conditional put below still guards the id itself.
	items, err := c.list(ctx)
	if err != nil {
		return zero, err
	}
	if err := store.CheckUnique(items, e, ""); err != nil {
		return zero, err
	}

	if err := c.put(ctx, e, "attribute_not_exists(id)"); err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return zero, &store.Error{
				Kind:       store.ErrAlreadyExists,
				EntityType: c.typeName,
				Key:        meta.ID,
				Err:        err,
			}
		}
		return zero, err
	}
	return e, nil
}

func (c *collection[T, PT, P]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	if err := c.s.ready(); err != nil {
		return zero, err
	}

	out, err := withRetry(ctx, c.s.retry, "get "+c.typeName, func(ctx context.Context) (*dynamodb.GetItemOutput, error) {
		return c.s.client.GetItem(ctx, &dynamodb.GetItemInput{
			TableName: aws.String(c.s.cfg.EntityTable),
			Key:       entityKey(c.typeName, id),
		})
	})
	if err != nil {
		return zero, err
	}
	if out.Item == nil {
		return zero, &store.Error{Kind: store.ErrNotFound, EntityType: c.typeName, Key: id}
	}
	return unmarshalEntity[T](out.Item)
}

func (c *collection[T, PT, P]) List(ctx context.Context) ([]T, error) {
	if err := c.s.ready(); err != nil {
		return nil, err
	}
	return c.list(ctx)
}

func (c *collection[T, PT, P]) Update(ctx context.Context, id string, patch P) (T, error) {
	var zero T
	if err := c.s.ready(); err != nil {
		return zero, err
	}

	current, err := c.Get(ctx, id)
	if err != nil {
		return zero, err
	}

	// Overlay the patch, then validate and re-check uniqueness on the
	// merged result, never on the delta alone.
	merged := patch.Apply(current)
	meta := model.MetaOf[T, PT](current)
	meta.UpdatedAt = time.Now().UTC()
	merged = model.WithMeta[T, PT](merged, meta)

	if err := merged.Validate(); err != nil {
		return zero, store.WrapValidation(err)
	}

	items, err := c.list(ctx)
	if err != nil {
		return zero, err
	}
	if err := store.CheckUnique(items, merged, id); err != nil {
		return zero, err
	}

	if err := c.put(ctx, merged, "attribute_exists(id)"); err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return zero, &store.Error{Kind: store.ErrNotFound, EntityType: c.typeName, Key: id, Err: err}
		}
		return zero, err
	}
	return merged, nil
}

func (c *collection[T, PT, P]) Upsert(ctx context.Context, e T) (T, error) {
	var zero T
	if err := c.s.ready(); err != nil {
		return zero, err
	}
	if err := e.Validate(); err != nil {
		return zero, store.WrapValidation(err)
	}

	now := time.Now().UTC()
	meta := model.MetaOf[T, PT](e)

	if meta.ID == "" {
		meta.ID = uuid.NewString()
		meta.CreatedAt = now
	} else {
		current, err := c.Get(ctx, meta.ID)
		switch {
		case err == nil:
			meta.CreatedAt = model.MetaOf[T, PT](current).CreatedAt
		case errors.Is(err, store.ErrNotFound):
			meta.CreatedAt = now
		default:
			return zero, err
		}
	}
	meta.UpdatedAt = now
	e = model.WithMeta[T, PT](e, meta)

	items, err := c.list(ctx)
	if err != nil {
		return zero, err
	}
	if err := store.CheckUnique(items, e, meta.ID); err != nil {
		return zero, err
	}

	if err := c.put(ctx, e, ""); err != nil {
		return zero, err
	}
	return e, nil
}

func (c *collection[T, PT, P]) Delete(ctx context.Context, id string) error {
	if err := c.s.ready(); err != nil {
		return err
	}

	_, err := withRetry(ctx, c.s.retry, "delete "+c.typeName, func(ctx context.Context) (struct{}, error) {
		_, err := c.s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName:           aws.String(c.s.cfg.EntityTable),
			Key:                 entityKey(c.typeName, id),
			ConditionExpression: aws.String("attribute_exists(id)"),
		})
		return struct{}{}, err
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return &store.Error{Kind: store.ErrNotFound, EntityType: c.typeName, Key: id, Err: err}
		}
		return err
	}
	return nil
}
