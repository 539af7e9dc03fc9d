package ddb

import (
	"context"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbTypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeDynamo is an in-memory stand-in for the handful of DynamoDB calls the store makes.
// It understands the SET expressions produced by buildUpdate and the existence conditions.
type fakeDynamo struct {
	mu     sync.Mutex
	items  map[string]map[string]ddbTypes.AttributeValue
	table  bool
	calls  map[string]int
	failOn map[string]error

	lastUpdate *dynamodb.UpdateItemInput
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{
		items:  map[string]map[string]ddbTypes.AttributeValue{},
		table:  true,
		calls:  map[string]int{},
		failOn: map[string]error{},
	}
}

func (f *fakeDynamo) enter(op string) error {
	f.mu.Lock()
	f.calls[op]++
	return f.failOn[op]
}

func keyString(key map[string]ddbTypes.AttributeValue) string {
	if v, ok := key["id"].(*ddbTypes.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func copyItem(in map[string]ddbTypes.AttributeValue) map[string]ddbTypes.AttributeValue {
	out := make(map[string]ddbTypes.AttributeValue, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (f *fakeDynamo) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	defer f.mu.Unlock()
	if err := f.enter("PutItem"); err != nil {
		return nil, err
	}
	id := keyString(in.Item)
	if _, exists := f.items[id]; exists && in.ConditionExpression != nil &&
		strings.Contains(*in.ConditionExpression, "attribute_not_exists") {
		return nil, &ddbTypes.ConditionalCheckFailedException{Message: aws.String("exists")}
	}
	f.items[id] = copyItem(in.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	defer f.mu.Unlock()
	if err := f.enter("GetItem"); err != nil {
		return nil, err
	}
	item, ok := f.items[keyString(in.Key)]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: copyItem(item)}, nil
}

func (f *fakeDynamo) DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	defer f.mu.Unlock()
	if err := f.enter("DeleteItem"); err != nil {
		return nil, err
	}
	delete(f.items, keyString(in.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeDynamo) Scan(ctx context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	defer f.mu.Unlock()
	if err := f.enter("Scan"); err != nil {
		return nil, err
	}
	out := &dynamodb.ScanOutput{Items: []map[string]ddbTypes.AttributeValue{}}
	for _, item := range f.items {
		out.Items = append(out.Items, copyItem(item))
	}
	out.Count = int32(len(out.Items))
	return out, nil
}

func (f *fakeDynamo) UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	defer f.mu.Unlock()
	if err := f.enter("UpdateItem"); err != nil {
		return nil, err
	}
	f.lastUpdate = in
	id := keyString(in.Key)
	item, exists := f.items[id]
	if !exists {
		if in.ConditionExpression != nil {
			return nil, &ddbTypes.ConditionalCheckFailedException{Message: aws.String("missing")}
		}
		item = copyItem(in.Key)
	}
	item = copyItem(item)
	expr := strings.TrimSpace(*in.UpdateExpression)
	expr = strings.TrimSpace(strings.TrimPrefix(expr, "SET"))
	for _, clause := range strings.Split(expr, ",") {
		parts := strings.SplitN(clause, "=", 2)
		name := in.ExpressionAttributeNames[strings.TrimSpace(parts[0])]
		item[name] = in.ExpressionAttributeValues[strings.TrimSpace(parts[1])]
	}
	f.items[id] = item
	return &dynamodb.UpdateItemOutput{Attributes: copyItem(item)}, nil
}

func (f *fakeDynamo) CreateTable(ctx context.Context, in *dynamodb.CreateTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	defer f.mu.Unlock()
	if err := f.enter("CreateTable"); err != nil {
		return nil, err
	}
	if f.table {
		return nil, &ddbTypes.ResourceInUseException{Message: aws.String("table exists")}
	}
	f.table = true
	return &dynamodb.CreateTableOutput{}, nil
}

func (f *fakeDynamo) DeleteTable(ctx context.Context, in *dynamodb.DeleteTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteTableOutput, error) {
	defer f.mu.Unlock()
	if err := f.enter("DeleteTable"); err != nil {
		return nil, err
	}
	if !f.table {
		return nil, &ddbTypes.ResourceNotFoundException{Message: aws.String("no table")}
	}
	f.table = false
	f.items = map[string]map[string]ddbTypes.AttributeValue{}
	return &dynamodb.DeleteTableOutput{}, nil
}

func (f *fakeDynamo) DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	defer f.mu.Unlock()
	if err := f.enter("DescribeTable"); err != nil {
		return nil, err
	}
	if !f.table {
		return nil, &ddbTypes.ResourceNotFoundException{Message: aws.String("no table")}
	}
	return &dynamodb.DescribeTableOutput{Table: &ddbTypes.TableDescription{
		TableName:   in.TableName,
		TableStatus: ddbTypes.TableStatusActive,
	}}, nil
}

func (f *fakeDynamo) callCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

var _ API = (*fakeDynamo)(nil)
