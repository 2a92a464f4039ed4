package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var (
	// ErrItemNotFound is returned by GetItem when the key matches nothing.
	ErrItemNotFound = errors.New("item not found")
	// ErrConditionFailed is returned when a conditional write is rejected.
	ErrConditionFailed = errors.New("condition check failed")
)

// Condition guards a write with a DynamoDB condition expression.
type Condition struct {
	Expression string
	Values     map[string]types.AttributeValue
	Names      map[string]string
}

func attrString(value string) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: value}
}

func mergeNames(dst, src map[string]string) map[string]string {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]string, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func mergeValues(dst, src map[string]types.AttributeValue) map[string]types.AttributeValue {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]types.AttributeValue, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func wrapConditional(err error, op, tableName string) error {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("%s %s: %w", op, tableName, ErrConditionFailed)
	}
	return fmt.Errorf("%s %s: %w", op, tableName, err)
}

func (c *DynamoDBClient) PutItem(
	ctx context.Context,
	tableName string,
	item interface{},
) error {
	return c.PutItemConditional(ctx, tableName, item, nil)
}

// PutItemConditional writes item only when cond holds. A nil cond writes
// unconditionally.
func (c *DynamoDBClient) PutItemConditional(
	ctx context.Context,
	tableName string,
	item interface{},
	cond *Condition,
) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(tableName),
		Item:      av,
	}
	if cond != nil {
		input.ConditionExpression = aws.String(cond.Expression)
		input.ExpressionAttributeValues = cond.Values
		input.ExpressionAttributeNames = cond.Names
	}

	if _, err := c.svc.PutItem(ctx, input); err != nil {
		return wrapConditional(err, "put item", tableName)
	}
	return nil
}

func (c *DynamoDBClient) GetItem(
	ctx context.Context,
	tableName string,
	key map[string]types.AttributeValue,
	out interface{},
) error {
	input := &dynamodb.GetItemInput{
		TableName:      aws.String(tableName),
		Key:            key,
		ConsistentRead: aws.Bool(true),
	}

	res, err := c.svc.GetItem(ctx, input)
	if err != nil {
		return fmt.Errorf("get item %s: %w", tableName, err)
	}
	if res.Item == nil {
		return fmt.Errorf("%w in %s", ErrItemNotFound, tableName)
	}

	if err := attributevalue.UnmarshalMap(res.Item, out); err != nil {
		return fmt.Errorf("unmarshal item: %w", err)
	}
	return nil
}

// UpdateItem applies updateExpr and, when out is non-nil, decodes the item
// as it is after the update. A non-nil cond makes the update conditional and
// a rejected condition surfaces as ErrConditionFailed.
func (c *DynamoDBClient) UpdateItem(
	ctx context.Context,
	tableName string,
	key map[string]types.AttributeValue,
	updateExpr string,
	exprAttrValues map[string]types.AttributeValue,
	exprAttrNames map[string]string,
	cond *Condition,
	out interface{},
) error {
	input := &dynamodb.UpdateItemInput{
		TableName:                 aws.String(tableName),
		Key:                       key,
		UpdateExpression:          aws.String(updateExpr),
		ExpressionAttributeValues: exprAttrValues,
		ExpressionAttributeNames:  exprAttrNames,
		ReturnValues:              types.ReturnValueAllNew,
	}
	if cond != nil {
		input.ConditionExpression = aws.String(cond.Expression)
		input.ExpressionAttributeValues = mergeValues(input.ExpressionAttributeValues, cond.Values)
		input.ExpressionAttributeNames = mergeNames(input.ExpressionAttributeNames, cond.Names)
	}

	res, err := c.svc.UpdateItem(ctx, input)
	if err != nil {
		return wrapConditional(err, "update item", tableName)
	}

	if out != nil {
		if err := attributevalue.UnmarshalMap(res.Attributes, out); err != nil {
			return fmt.Errorf("unmarshal updated item: %w", err)
		}
	}
	return nil
}

// DeleteItem removes the item under key and reports whether it existed.
func (c *DynamoDBClient) DeleteItem(
	ctx context.Context,
	tableName string,
	key map[string]types.AttributeValue,
) (bool, error) {
	input := &dynamodb.DeleteItemInput{
		TableName:    aws.String(tableName),
		Key:          key,
		ReturnValues: types.ReturnValueAllOld,
	}

	res, err := c.svc.DeleteItem(ctx, input)
	if err != nil {
		return false, fmt.Errorf("delete item %s: %w", tableName, err)
	}
	return len(res.Attributes) > 0, nil
}

func (c *DynamoDBClient) QueryItems(
	ctx context.Context,
	tableName string,
	indexName *string,
	keyCondExpr string,
	exprAttrValues map[string]types.AttributeValue,
	exprAttrNames map[string]string,
	scanIndexForward *bool,
) ([]map[string]types.AttributeValue, error) {
	input := &dynamodb.QueryInput{
		TableName:                 aws.String(tableName),
		KeyConditionExpression:    aws.String(keyCondExpr),
		ExpressionAttributeValues: exprAttrValues,
	}
	if indexName != nil {
		input.IndexName = indexName
	}
	if exprAttrNames != nil {
		input.ExpressionAttributeNames = exprAttrNames
	}

	if scanIndexForward != nil {
		input.ScanIndexForward = aws.Bool(*scanIndexForward)
	}

	out, err := c.svc.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("query %s[%s]: %w", tableName, aws.ToString(indexName), err)
	}

	return out.Items, nil
}

// QueryAll performs a complete query, handling pagination internally.
func (c *DynamoDBClient) QueryAll(
	ctx context.Context,
	tableName string,
	indexName *string,
	keyCondExpr string,
	exprAttrValues map[string]types.AttributeValue,
	exprAttrNames map[string]string,
) ([]map[string]types.AttributeValue, error) {
	var allItems []map[string]types.AttributeValue
	var lastEvaluatedKey map[string]types.AttributeValue

	for {
		input := &dynamodb.QueryInput{
			TableName:                 aws.String(tableName),
			KeyConditionExpression:    aws.String(keyCondExpr),
			ExpressionAttributeValues: exprAttrValues,
		}

		if indexName != nil {
			input.IndexName = indexName
		}
		if exprAttrNames != nil {
			input.ExpressionAttributeNames = exprAttrNames
		}

		if lastEvaluatedKey != nil {
			input.ExclusiveStartKey = lastEvaluatedKey
		}

		result, err := c.svc.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("query all %s[%s]: %w", tableName, aws.ToString(indexName), err)
		}

		allItems = append(allItems, result.Items...)

		if len(result.LastEvaluatedKey) == 0 {
			break
		}
		lastEvaluatedKey = result.LastEvaluatedKey
	}

	return allItems, nil
}

// QueryIndexByValues runs one paginated GSI query per key value and
// concatenates the results. keyField is always addressed through an
// attribute name placeholder so reserved words such as "status" work.
func (c *DynamoDBClient) QueryIndexByValues(
	ctx context.Context,
	tableName string,
	indexName string,
	keyField string,
	keyValues []string,
) ([]map[string]types.AttributeValue, error) {
	if len(keyValues) == 0 {
		return []map[string]types.AttributeValue{}, nil
	}

	var allItems []map[string]types.AttributeValue
	for _, keyValue := range keyValues {
		items, err := c.QueryAll(
			ctx,
			tableName,
			aws.String(indexName),
			"#k = :keyval",
			map[string]types.AttributeValue{
				":keyval": attrString(keyValue),
			},
			map[string]string{
				"#k": keyField,
			},
		)
		if err != nil {
			return nil, fmt.Errorf("failed to query GSI %s for key %s: %w", indexName, keyValue, err)
		}
		allItems = append(allItems, items...)
	}

	return allItems, nil
}
