package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"golang.org/x/time/rate"

	"github.com/smartwardrobe/simdex/blobstore"
)

// Compile-time check.
var _ blobstore.Store = (*CommitStore)(nil)

// DDBClient is the subset of DynamoDB operations the commit store needs.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// ErrCommitContention is returned when the version pointer cannot be advanced
// after repeated conditional-write conflicts.
var ErrCommitContention = errors.New("s3: snapshot commit contention")

// CommitStore implements blobstore.Store backed by S3 with a DynamoDB commit
// pointer. Each Put writes the blob under a fresh versioned key, then
// advances the pointer with a DynamoDB conditional write — the atomic
// compare-and-swap S3 itself lacks. Opens always follow the pointer, so a
// writer crash between upload and commit leaves the previous snapshot intact.
//
// Table schema:
//   - Partition key: blob_name (string)
//   - Sort key: version (number) - monotonically increasing
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name simdex-commits \
//	  --attribute-definitions AttributeName=blob_name,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=blob_name,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type CommitStore struct {
	store      blobstore.Store
	ddb        DDBClient
	tableName  string
	limiter    *rate.Limiter
	maxRetries int
}

// NewCommitStore creates a new commit store on top of a versioned blob store,
// normally an S3 Store.
func NewCommitStore(store blobstore.Store, ddb DDBClient, tableName string) *CommitStore {
	return &CommitStore{
		store:     store,
		ddb:       ddb,
		tableName: tableName,
		// Pace CAS retries so contending writers don't hammer DynamoDB.
		limiter:    rate.NewLimiter(rate.Every(200*time.Millisecond), 1),
		maxRetries: 5,
	}
}

// Open resolves the current version pointer for name and reads that blob.
func (s *CommitStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	_, key, err := s.latest(ctx, name)
	if err != nil {
		return nil, err
	}
	if key == "" {
		return nil, blobstore.ErrNotFound
	}
	return s.store.Open(ctx, key)
}

// Put uploads data under a new versioned key and commits it via a DynamoDB
// conditional write. On version conflict it re-reads the pointer and retries,
// rate-limited, up to maxRetries times.
func (s *CommitStore) Put(ctx context.Context, name string, data []byte) error {
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		version, _, err := s.latest(ctx, name)
		if err != nil {
			return err
		}
		next := version + 1
		key := fmt.Sprintf("%s.v%d", name, next)

		if err := s.store.Put(ctx, key, data); err != nil {
			return err
		}

		_, err = s.ddb.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: aws.String(s.tableName),
			Item: map[string]ddbtypes.AttributeValue{
				"blob_name": &ddbtypes.AttributeValueMemberS{Value: name},
				"version":   &ddbtypes.AttributeValueMemberN{Value: strconv.FormatUint(next, 10)},
				"key":       &ddbtypes.AttributeValueMemberS{Value: key},
			},
			ConditionExpression: aws.String("attribute_not_exists(version)"),
		})
		if err == nil {
			return nil
		}

		var ccf *ddbtypes.ConditionalCheckFailedException
		if !errors.As(err, &ccf) {
			return err
		}
		// Lost the race; another writer took this version.
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	return ErrCommitContention
}

// latest returns the highest committed version and its S3 key, or (0, "")
// when name has never been committed.
func (s *CommitStore) latest(ctx context.Context, name string) (uint64, string, error) {
	out, err := s.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("blob_name = :n"),
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":n": &ddbtypes.AttributeValueMemberS{Value: name},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return 0, "", err
	}
	if len(out.Items) == 0 {
		return 0, "", nil
	}

	item := out.Items[0]
	vAttr, ok := item["version"].(*ddbtypes.AttributeValueMemberN)
	if !ok {
		return 0, "", fmt.Errorf("s3: malformed commit item for %q", name)
	}
	version, err := strconv.ParseUint(vAttr.Value, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("s3: malformed commit version for %q: %w", name, err)
	}
	kAttr, ok := item["key"].(*ddbtypes.AttributeValueMemberS)
	if !ok {
		return 0, "", fmt.Errorf("s3: malformed commit key for %q", name)
	}
	return version, kAttr.Value, nil
}
