package remote

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeDynamo is an in-memory stand-in for the DynamoDB client. It
// understands exactly the expressions this package issues: existence
// conditions on id, the versioned game update, the roster path update,
// and the cascade transaction.
type fakeDynamo struct {
	mu    sync.Mutex
	cfg   Config
	items map[string]map[string]map[string]types.AttributeValue
	calls map[string]int
	errs  map[string][]error
}

func newFakeDynamo(cfg Config) *fakeDynamo {
	return &fakeDynamo{
		cfg:   cfg,
		items: make(map[string]map[string]map[string]types.AttributeValue),
		calls: make(map[string]int),
		errs:  make(map[string][]error),
	}
}

// failNext queues an error for the next call of the named operation.
func (f *fakeDynamo) failNext(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[op] = append(f.errs[op], err)
}

func (f *fakeDynamo) countCalls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeDynamo) enter(op string) error {
	f.calls[op]++
	if q := f.errs[op]; len(q) > 0 {
		err := q[0]
		f.errs[op] = q[1:]
		return err
	}
	return nil
}

func (f *fakeDynamo) table(name string) map[string]map[string]types.AttributeValue {
	t := f.items[name]
	if t == nil {
		t = make(map[string]map[string]types.AttributeValue)
		f.items[name] = t
	}
	return t
}

func attrS(item map[string]types.AttributeValue, name string) string {
	if v, ok := item[name].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func (f *fakeDynamo) itemKey(table string, item map[string]types.AttributeValue) string {
	if table == f.cfg.EntityTable {
		return attrS(item, "entity_type") + "|" + attrS(item, "id")
	}
	return attrS(item, "id")
}

func cloneItem(item map[string]types.AttributeValue) map[string]types.AttributeValue {
	if item == nil {
		return nil
	}
	out := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}

func condFail() error {
	return &types.ConditionalCheckFailedException{
		Message: aws.String("The conditional request failed"),
	}
}

func transactCancel() error {
	return &types.TransactionCanceledException{
		Message: aws.String("Transaction cancelled"),
		CancellationReasons: []types.CancellationReason{
			{Code: aws.String("ConditionalCheckFailed")},
		},
	}
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetItem"); err != nil {
		return nil, err
	}
	item := f.table(*in.TableName)[f.itemKey(*in.TableName, in.Key)]
	return &dynamodb.GetItemOutput{Item: cloneItem(item)}, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("PutItem"); err != nil {
		return nil, err
	}

	t := f.table(*in.TableName)
	key := f.itemKey(*in.TableName, in.Item)
	_, exists := t[key]
	if in.ConditionExpression != nil {
		switch *in.ConditionExpression {
		case "attribute_not_exists(id)":
			if exists {
				return nil, condFail()
			}
		case "attribute_exists(id)":
			if !exists {
				return nil, condFail()
			}
		}
	}
	t[key] = cloneItem(in.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("DeleteItem"); err != nil {
		return nil, err
	}

	t := f.table(*in.TableName)
	key := f.itemKey(*in.TableName, in.Key)
	_, exists := t[key]
	if in.ConditionExpression != nil && *in.ConditionExpression == "attribute_exists(id)" && !exists {
		return nil, condFail()
	}
	delete(t, key)
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeDynamo) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("UpdateItem"); err != nil {
		return nil, err
	}

	t := f.table(*in.TableName)
	key := f.itemKey(*in.TableName, in.Key)
	current := t[key]
	expr := *in.UpdateExpression

	switch {
	case strings.Contains(expr, "if_not_exists(#version"):
		// Versioned game save.
		if in.ConditionExpression != nil {
			expected := attrN(in.ExpressionAttributeValues[":expected"])
			if current == nil || attrN(current["version"]) != expected {
				return nil, condFail()
			}
		}
		var version int64 = 1
		if current != nil {
			version = parseN(attrN(current["version"])) + 1
		}
		next := cloneItem(in.Key)
		next["doc"] = in.ExpressionAttributeValues[":doc"]
		next["updated_at"] = in.ExpressionAttributeValues[":u"]
		next["version"] = &types.AttributeValueMemberN{Value: formatVersion(version)}
		t[key] = next
		return &dynamodb.UpdateItemOutput{Attributes: cloneItem(next)}, nil

	case strings.Contains(expr, "#doc.#roster"):
		if current == nil {
			return nil, condFail()
		}
		doc, ok := current["doc"].(*types.AttributeValueMemberM)
		if !ok {
			return nil, condFail()
		}
		newDoc := make(map[string]types.AttributeValue, len(doc.Value))
		for k, v := range doc.Value {
			newDoc[k] = v
		}
		newDoc["roster"] = in.ExpressionAttributeValues[":r"]
		next := cloneItem(current)
		next["doc"] = &types.AttributeValueMemberM{Value: newDoc}
		next["updated_at"] = in.ExpressionAttributeValues[":u"]
		t[key] = next
		return &dynamodb.UpdateItemOutput{}, nil
	}

	return nil, &types.ConditionalCheckFailedException{Message: aws.String("unsupported update expression")}
}

func (f *fakeDynamo) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("Query"); err != nil {
		return nil, err
	}

	want := attrS(in.ExpressionAttributeValues, ":t")
	var out []map[string]types.AttributeValue
	for _, item := range f.table(*in.TableName) {
		if attrS(item, "entity_type") == want {
			out = append(out, cloneItem(item))
		}
	}
	return &dynamodb.QueryOutput{Items: out}, nil
}

func (f *fakeDynamo) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("Scan"); err != nil {
		return nil, err
	}

	var out []map[string]types.AttributeValue
	for _, item := range f.table(*in.TableName) {
		out = append(out, cloneItem(item))
	}
	return &dynamodb.ScanOutput{Items: out}, nil
}

func (f *fakeDynamo) TransactWriteItems(_ context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("TransactWriteItems"); err != nil {
		return nil, err
	}

	// Validate every condition before applying anything.
	for _, tw := range in.TransactItems {
		switch {
		case tw.Update != nil:
			u := tw.Update
			current := f.table(*u.TableName)[f.itemKey(*u.TableName, u.Key)]
			if u.ConditionExpression != nil && *u.ConditionExpression == "#version = :seen" {
				if current == nil || attrN(current["version"]) != attrN(u.ExpressionAttributeValues[":seen"]) {
					return nil, transactCancel()
				}
			}
		case tw.Delete != nil:
			d := tw.Delete
			_, exists := f.table(*d.TableName)[f.itemKey(*d.TableName, d.Key)]
			if d.ConditionExpression != nil && *d.ConditionExpression == "attribute_exists(id)" && !exists {
				return nil, transactCancel()
			}
		}
	}

	for _, tw := range in.TransactItems {
		switch {
		case tw.Update != nil:
			u := tw.Update
			t := f.table(*u.TableName)
			key := f.itemKey(*u.TableName, u.Key)
			next := cloneItem(t[key])
			next["doc"] = u.ExpressionAttributeValues[":doc"]
			next["version"] = &types.AttributeValueMemberN{
				Value: formatVersion(parseN(attrN(next["version"])) + 1),
			}
			t[key] = next
		case tw.Delete != nil:
			d := tw.Delete
			delete(f.table(*d.TableName), f.itemKey(*d.TableName, d.Key))
		}
	}
	return &dynamodb.TransactWriteItemsOutput{}, nil
}

func attrN(v types.AttributeValue) string {
	if n, ok := v.(*types.AttributeValueMemberN); ok {
		return n.Value
	}
	return ""
}

func parseN(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}
