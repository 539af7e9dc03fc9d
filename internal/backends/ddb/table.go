package ddb

import (
	"clientsvc/internal/types"
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbTypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	log "github.com/sirupsen/logrus"
)

const tableWaitTimeout = 2 * time.Minute

// CreateTable creates the clients table (hash key "id") and waits until it is active.
// An existing table is not an error.
func (s *RecordStore) CreateTable(ctx context.Context) error {
	_, err := s.cli.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: &s.table,
		AttributeDefinitions: []ddbTypes.AttributeDefinition{
			{AttributeName: aws.String(types.IDField), AttributeType: ddbTypes.ScalarAttributeTypeS},
		},
		KeySchema: []ddbTypes.KeySchemaElement{
			{AttributeName: aws.String(types.IDField), KeyType: ddbTypes.KeyTypeHash},
		},
		ProvisionedThroughput: &ddbTypes.ProvisionedThroughput{
			ReadCapacityUnits:  aws.Int64(5),
			WriteCapacityUnits: aws.Int64(5),
		},
	})
	var re *ddbTypes.ResourceInUseException
	if err != nil && !errors.As(err, &re) {
		return storageErr(err, "create table")
	}
	if err != nil {
		log.WithField("table", s.table).Debug("table already exists")
	}
	err = dynamodb.NewTableExistsWaiter(s.cli).Wait(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.table),
	}, tableWaitTimeout)
	if err != nil {
		return storageErr(err, "wait table active")
	}
	return nil
}

// DeleteTable drops the clients table and waits until it is gone.
func (s *RecordStore) DeleteTable(ctx context.Context) error {
	_, err := s.cli.DeleteTable(ctx, &dynamodb.DeleteTableInput{
		TableName: &s.table,
	})
	if err != nil {
		return types.Err(storageErr(err, "delete table"), nil, "unable to delete table %s", s.table)
	}
	err = dynamodb.NewTableNotExistsWaiter(s.cli).Wait(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.table),
	}, tableWaitTimeout)
	if err != nil {
		return storageErr(err, "wait table deleted")
	}
	return nil
}
