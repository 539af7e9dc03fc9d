package ddb

import (
	"clientsvc/internal/backends/fanout"
	"clientsvc/internal/types"
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbTypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// RecordStore implements ports.RecordStore and ports.TableManager on a single DynamoDB
// table keyed by the string attribute "id".
type RecordStore struct {
	table       string
	cli         API
	concurrency int
	newID       func() string
}

type Option func(*RecordStore)

// WithConcurrency bounds the number of concurrent puts issued by InsertAll.
func WithConcurrency(n int) Option { return func(s *RecordStore) { s.concurrency = n } }

// WithIDGenerator replaces uuid.NewString as the id source.
func WithIDGenerator(fn func() string) Option { return func(s *RecordStore) { s.newID = fn } }

func NewRecordStore(table string, cli API, opts ...Option) *RecordStore {
	s := &RecordStore{
		table:       table,
		cli:         cli,
		concurrency: fanout.DefaultConcurrency,
		newID:       uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// GetAll scans the full table, following pages until the scan is exhausted.
func (s *RecordStore) GetAll(ctx context.Context) ([]types.Record, error) {
	records := make([]types.Record, 0)
	p := dynamodb.NewScanPaginator(s.cli, &dynamodb.ScanInput{TableName: &s.table})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, storageErr(err, "scan")
		}
		for _, item := range page.Items {
			r, err := unmarshalRecord(item)
			if err != nil {
				return nil, err
			}
			records = append(records, r)
		}
	}
	return records, nil
}

func (s *RecordStore) GetByID(ctx context.Context, id string) (types.Record, error) {
	out, err := s.cli.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.table,
		Key:       keyOf(id),
	})
	if err != nil {
		return nil, storageErr(err, "get item")
	}
	if out.Item == nil {
		return nil, nil
	}
	return unmarshalRecord(out.Item)
}

func (s *RecordStore) Insert(ctx context.Context, candidate types.Record) (types.Record, error) {
	rec := candidate.Clone()
	if rec == nil {
		rec = types.Record{}
	}
	id := s.newID()
	rec[types.IDField] = id

	item, err := attributevalue.MarshalMap(map[string]any(rec))
	if err != nil {
		return nil, types.Err(types.ErrInvalidInput, err, "marshal client")
	}
	_, err = s.cli.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                &s.table,
		Item:                     item,
		ConditionExpression:      aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{"#id": types.IDField},
	})
	if err != nil {
		var cc *ddbTypes.ConditionalCheckFailedException
		if errors.As(err, &cc) {
			return nil, types.Err(types.ErrAlreadyExists, err, "id %s", id)
		}
		return nil, storageErr(err, "put item")
	}
	return rec, nil
}

func (s *RecordStore) InsertAll(ctx context.Context, candidates []types.Record) ([]types.Record, error) {
	return fanout.InsertAll(ctx, candidates, s.concurrency, s.Insert)
}

func (s *RecordStore) Update(ctx context.Context, id string, updates types.Record) (types.UpdateResult, error) {
	fields := types.UpdateFields(updates)
	if len(fields) == 0 {
		return types.UpdateResult{Outcome: types.NoFieldsProvided}, nil
	}
	expr, err := buildUpdate(fields)
	if err != nil {
		return types.UpdateResult{}, types.Err(types.ErrInvalidInput, err, "build update for %s", id)
	}
	out, err := s.cli.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 &s.table,
		Key:                       keyOf(id),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              ddbTypes.ReturnValueAllNew,
	})
	if err != nil {
		var cc *ddbTypes.ConditionalCheckFailedException
		if errors.As(err, &cc) {
			return types.UpdateResult{Outcome: types.UpdateNotFound}, nil
		}
		return types.UpdateResult{}, storageErr(err, "update item")
	}
	rec, err := unmarshalRecord(out.Attributes)
	if err != nil {
		return types.UpdateResult{}, err
	}
	return types.UpdatedWith(rec), nil
}

func (s *RecordStore) DeleteItem(ctx context.Context, id string) error {
	_, err := s.cli.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: &s.table,
		Key:       keyOf(id),
	})
	if err != nil {
		return storageErr(err, "delete item")
	}
	return nil
}

func keyOf(id string) map[string]ddbTypes.AttributeValue {
	return map[string]ddbTypes.AttributeValue{
		types.IDField: &ddbTypes.AttributeValueMemberS{Value: id},
	}
}

func unmarshalRecord(item map[string]ddbTypes.AttributeValue) (types.Record, error) {
	var m map[string]any
	if err := attributevalue.UnmarshalMap(item, &m); err != nil {
		return nil, types.Err(types.ErrStorageRejected, err, "unmarshal client")
	}
	return types.Record(m), nil
}
