package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamodbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/lahray/ticket-payments/internal/model"
)

// DynamoStore persists payment records as documents in a DynamoDB table
// whose partition key is transaction_ref.  Using the reference as the key
// lets a conditional put enforce the one-record-per-attempt guarantee
// without a separate index.
type DynamoStore struct {
	Client *dynamodb.Client
	Table  string
}

// NewDynamoStore returns a DynamoStore writing to the given table.  An
// empty table name defaults to "payments".
func NewDynamoStore(client *dynamodb.Client, table string) *DynamoStore {
	if table == "" {
		table = "payments"
	}
	return &DynamoStore{Client: client, Table: table}
}

// Create writes a record document.  The record ID is generated here and
// CreatedAt is stamped at write time, playing the role of the
// server-assigned ordering timestamp.  A conditional put rejects a second
// write for the same transaction reference with ErrDuplicateRef.
func (s *DynamoStore) Create(ctx context.Context, rec *model.PaymentRecord) (string, error) {
	if s.Client == nil {
		return "", fmt.Errorf("%w: dynamodb client not initialized", ErrStoreWrite)
	}
	rec.ID = uuid.NewString()
	rec.CreatedAt = time.Now().UTC()
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return "", fmt.Errorf("%w: marshal record: %v", ErrStoreWrite, err)
	}
	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.Table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(transaction_ref)"),
	})
	if err != nil {
		var ccf *dynamodbtypes.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return "", ErrDuplicateRef
		}
		return "", fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}
	return rec.ID, nil
}

// List scans the full table, following pagination, and returns records
// sorted by CreatedAt descending.  Status normalization happens here so
// that legacy variant spellings stored by earlier versions of the system
// never reach the dashboard.
func (s *DynamoStore) List(ctx context.Context) ([]model.PaymentRecord, error) {
	if s.Client == nil {
		return nil, fmt.Errorf("%w: dynamodb client not initialized", ErrStoreRead)
	}
	records := make([]model.PaymentRecord, 0)
	var lastEvaluatedKey map[string]dynamodbtypes.AttributeValue
	for {
		input := &dynamodb.ScanInput{TableName: aws.String(s.Table)}
		if lastEvaluatedKey != nil {
			input.ExclusiveStartKey = lastEvaluatedKey
		}
		result, err := s.Client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreRead, err)
		}
		for _, item := range result.Items {
			var rec model.PaymentRecord
			if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
				return nil, fmt.Errorf("%w: unmarshal record: %v", ErrStoreRead, err)
			}
			rec.Status = model.NormalizeStatus(string(rec.Status))
			if rec.Name == "" {
				rec.Name = model.PlaceholderName
			}
			records = append(records, rec)
		}
		lastEvaluatedKey = result.LastEvaluatedKey
		if lastEvaluatedKey == nil {
			break
		}
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}
