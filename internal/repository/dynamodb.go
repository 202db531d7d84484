package repository

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/deppfellow/go-users/internal/model"
	"github.com/pkg/errors"
)

// DynamoDBAPI is the subset of *dynamodb.Client used by DynamoDBRepository.
type DynamoDBAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// existsCondition makes UpdateItem and DeleteItem fail instead of creating
// or silently ignoring a missing item.
const existsCondition = "attribute_exists(id)"

// userKey is the table's primary key: a single "id" string hash key.
type userKey struct {
	ID string `dynamodbav:"id"`
}

// DynamoDBRepository stores users in a DynamoDB table keyed by "id".
type DynamoDBRepository struct {
	client    DynamoDBAPI
	tableName string
	pageSize  int32
}

// NewDynamoDBRepository creates a repository over an existing table.
func NewDynamoDBRepository(client DynamoDBAPI, tableName string, pageSize int32) *DynamoDBRepository {
	return &DynamoDBRepository{
		client:    client,
		tableName: tableName,
		pageSize:  pageSize,
	}
}

func (r *DynamoDBRepository) Put(ctx context.Context, user model.User) error {
	item, err := attributevalue.MarshalMap(user)
	if err != nil {
		return errors.Wrap(err, "marshal user item")
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return errors.Wrapf(err, "put item into %s", r.tableName)
	}
	return nil
}

// Scan issues one DynamoDB Scan. The cursor is the id of the page's
// LastEvaluatedKey, turned back into ExclusiveStartKey on the next call.
func (r *DynamoDBRepository) Scan(ctx context.Context, cursor string) (Page, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
	}
	if r.pageSize > 0 {
		input.Limit = aws.Int32(r.pageSize)
	}
	if cursor != "" {
		startKey, err := attributevalue.MarshalMap(userKey{ID: cursor})
		if err != nil {
			return Page{}, errors.Wrap(err, "marshal scan cursor")
		}
		input.ExclusiveStartKey = startKey
	}

	out, err := r.client.Scan(ctx, input)
	if err != nil {
		return Page{}, errors.Wrapf(err, "scan %s", r.tableName)
	}

	page := Page{Items: make([]model.User, 0, len(out.Items))}
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &page.Items); err != nil {
		return Page{}, errors.Wrap(err, "unmarshal scanned items")
	}

	if len(out.LastEvaluatedKey) > 0 {
		var key userKey
		if err := attributevalue.UnmarshalMap(out.LastEvaluatedKey, &key); err != nil {
			return Page{}, errors.Wrap(err, "unmarshal last evaluated key")
		}
		page.Next = key.ID
	}

	return page, nil
}

func (r *DynamoDBRepository) Update(ctx context.Context, id string, input model.UserInput) error {
	key, err := attributevalue.MarshalMap(userKey{ID: id})
	if err != nil {
		return errors.Wrap(err, "marshal user key")
	}

	// "name" is a DynamoDB reserved word, hence the placeholders.
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 key,
		UpdateExpression:    aws.String("SET #name = :name, #email = :email"),
		ConditionExpression: aws.String(existsCondition),
		ExpressionAttributeNames: map[string]string{
			"#name":  "name",
			"#email": "email",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":name":  &types.AttributeValueMemberS{Value: input.Name},
			":email": &types.AttributeValueMemberS{Value: input.Email},
		},
	})
	if err != nil {
		return r.mapWriteError(err, "update", id)
	}
	return nil
}

func (r *DynamoDBRepository) Delete(ctx context.Context, id string) error {
	key, err := attributevalue.MarshalMap(userKey{ID: id})
	if err != nil {
		return errors.Wrap(err, "marshal user key")
	}

	_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 key,
		ConditionExpression: aws.String(existsCondition),
	})
	if err != nil {
		return r.mapWriteError(err, "delete", id)
	}
	return nil
}

// Ping checks that the table exists and is reachable.
func (r *DynamoDBRepository) Ping(ctx context.Context) error {
	_, err := r.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(r.tableName),
	})
	if err != nil {
		return errors.Wrapf(err, "describe table %s", r.tableName)
	}
	return nil
}

// mapWriteError turns a failed existence condition into ErrNotFound.
func (r *DynamoDBRepository) mapWriteError(err error, op, id string) error {
	var conditionFailed *types.ConditionalCheckFailedException
	if errors.As(err, &conditionFailed) {
		return errors.Wrapf(ErrNotFound, "%s item %s", op, id)
	}
	return errors.Wrapf(err, "%s item %s in %s", op, id, r.tableName)
}
