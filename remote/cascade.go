package remote

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/fastbreaklabs/rosterstore/model"
	"github.com/fastbreaklabs/rosterstore/store"
)

// DynamoDB caps a transaction at 100 items; one slot is reserved for the
// personnel delete riding in the final chunk.
const maxGamesPerTransaction = 99

// personnelCollection layers the cascade-aware delete on top of the plain
// collection behavior.
type personnelCollection struct {
	*collection[model.Personnel, *model.Personnel, model.PersonnelPatch]
}

// RemoveEverywhere deletes the personnel record and strips its id from
// every referencing game in one transaction, guarded by each game's
// current version. A concurrent save of any touched game cancels the
// transaction; the whole attempt then reruns against fresh reads, so the
// final state never carries a half-applied cascade.
func (p *personnelCollection) RemoveEverywhere(ctx context.Context, id string) (bool, error) {
	s := p.s
	if err := s.ready(); err != nil {
		return false, err
	}

	return withRetry(ctx, s.retry, "remove personnel everywhere", func(ctx context.Context) (bool, error) {
		return p.removeOnce(ctx, id)
	})
}

// removeOnce runs one full cascade attempt: fresh reads, then guarded
// writes. It reports false with no error when the id does not exist,
// including when a competing delete won between attempts.
func (p *personnelCollection) removeOnce(ctx context.Context, id string) (bool, error) {
	s := p.s

	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.cfg.EntityTable),
		Key:       entityKey("personnel", id),
	})
	if err != nil {
		return false, err
	}
	if out.Item == nil {
		return false, nil
	}

	touched, err := p.strippedGames(ctx, id)
	if err != nil {
		return false, err
	}

	// Game chunks go first and the personnel delete rides in the last
	// one, so a failure between chunks leaves games pruned rather than
	// referencing a deleted record.
	chunks := chunkGameUpdates(touched)
	for i, chunk := range chunks {
		items := append([]types.TransactWriteItem(nil), chunk...)
		if i == len(chunks)-1 {
			items = append(items, types.TransactWriteItem{
				Delete: &types.Delete{
					TableName:           aws.String(s.cfg.EntityTable),
					Key:                 entityKey("personnel", id),
					ConditionExpression: aws.String("attribute_exists(id)"),
				},
			})
		}

		if _, err := s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
			TransactItems: items,
		}); err != nil {
			return false, err
		}
	}

	// The transaction bumped every touched game's version; cached
	// expectations for them are stale now.
	for _, g := range touched {
		s.cache.drop(g.id)
	}
	return true, nil
}

// strippedGameUpdate is one guarded game rewrite within the cascade.
type strippedGameUpdate struct {
	id     string
	update types.TransactWriteItem
}

// strippedGames scans the game table and builds a guarded update for
// every game that references the personnel id.
func (p *personnelCollection) strippedGames(ctx context.Context, id string) ([]strippedGameUpdate, error) {
	s := p.s

	var updates []strippedGameUpdate
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
			stripped, changed := g.StripPersonnel(id)
			if !changed {
				continue
			}

			doc, err := attributevalue.MarshalMap(stripped)
			if err != nil {
				return nil, &store.Error{Kind: store.ErrServer, Err: err}
			}
			updates = append(updates, strippedGameUpdate{
				id: g.ID,
				update: types.TransactWriteItem{
					Update: &types.Update{
						TableName:           aws.String(s.cfg.GameTable),
						Key:                 gameKey(g.ID),
						UpdateExpression:    aws.String("SET #doc = :doc, #version = #version + :one"),
						ConditionExpression: aws.String("#version = :seen"),
						ExpressionAttributeNames: map[string]string{
							"#doc":     "doc",
							"#version": "version",
						},
						ExpressionAttributeValues: map[string]types.AttributeValue{
							":doc":  &types.AttributeValueMemberM{Value: doc},
							":one":  &types.AttributeValueMemberN{Value: "1"},
							":seen": &types.AttributeValueMemberN{Value: formatVersion(g.Version)},
						},
					},
				},
			})
		}
	}
	return updates, nil
}

func chunkGameUpdates(updates []strippedGameUpdate) [][]types.TransactWriteItem {
	if len(updates) == 0 {
		return [][]types.TransactWriteItem{nil}
	}
	var chunks [][]types.TransactWriteItem
	for start := 0; start < len(updates); start += maxGamesPerTransaction {
		end := start + maxGamesPerTransaction
		if end > len(updates) {
			end = len(updates)
		}
		chunk := make([]types.TransactWriteItem, 0, end-start)
		for _, u := range updates[start:end] {
			chunk = append(chunk, u.update)
		}
		chunks = append(chunks, chunk)
	}
	return chunks
}
