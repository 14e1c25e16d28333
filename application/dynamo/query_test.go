package dynamo

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"localaws/domain/dynamo"
	apperrors "localaws/pkg/errors"
)

func seedRangeItems(t *testing.T, p *Provider, table string) {
	t.Helper()
	for _, sk := range []string{"1", "2", "3", "4", "5"} {
		seedItem(t, p, table, dynamo.Item{
			"pk":   dynamo.String("x"),
			"sk":   dynamo.Number(sk),
			"data": dynamo.String("row" + sk),
		})
	}
}

func TestQuerySortRange(t *testing.T) {
	p := newTestProvider(t)
	createRangeTable(t, p, "tbl")
	seedRangeItems(t, p, "tbl")

	out, err := p.Query(&QueryInput{
		TableName:              "tbl",
		KeyConditionExpression: strPtr("pk = :p AND sk BETWEEN :lo AND :hi"),
		ExpressionAttributeValues: map[string]dynamo.AttributeValue{
			":p":  dynamo.String("x"),
			":lo": dynamo.Number("2"),
			":hi": dynamo.Number("4"),
		},
	})
	require.NoError(t, err)
	require.Len(t, out.Items, 3)
	assert.Equal(t, 3, out.Count)
	assert.Equal(t, 3, out.ScannedCount)
	first, _ := out.Items[0]["sk"].NumberValue()
	assert.Equal(t, "2", first)

	// Descending order.
	out, err = p.Query(&QueryInput{
		TableName:              "tbl",
		KeyConditionExpression: strPtr("pk = :p AND sk BETWEEN :lo AND :hi"),
		ExpressionAttributeValues: map[string]dynamo.AttributeValue{
			":p":  dynamo.String("x"),
			":lo": dynamo.Number("2"),
			":hi": dynamo.Number("4"),
		},
		ScanIndexForward: boolPtr(false),
	})
	require.NoError(t, err)
	first, _ = out.Items[0]["sk"].NumberValue()
	assert.Equal(t, "4", first)

	// Limit produces a cursor at the last emitted item.
	out, err = p.Query(&QueryInput{
		TableName:              "tbl",
		KeyConditionExpression: strPtr("pk = :p AND sk BETWEEN :lo AND :hi"),
		ExpressionAttributeValues: map[string]dynamo.AttributeValue{
			":p":  dynamo.String("x"),
			":lo": dynamo.Number("2"),
			":hi": dynamo.Number("4"),
		},
		Limit: intPtr(2),
	})
	require.NoError(t, err)
	require.Len(t, out.Items, 2)
	require.NotEmpty(t, out.LastEvaluatedKey)
	assert.True(t, out.LastEvaluatedKey["sk"].Equal(dynamo.Number("3")))

	// Resume from the cursor.
	out, err = p.Query(&QueryInput{
		TableName:              "tbl",
		KeyConditionExpression: strPtr("pk = :p AND sk BETWEEN :lo AND :hi"),
		ExpressionAttributeValues: map[string]dynamo.AttributeValue{
			":p":  dynamo.String("x"),
			":lo": dynamo.Number("2"),
			":hi": dynamo.Number("4"),
		},
		ExclusiveStartKey: out.LastEvaluatedKey,
	})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	first, _ = out.Items[0]["sk"].NumberValue()
	assert.Equal(t, "4", first)
}

func TestQueryKeyConditionShapes(t *testing.T) {
	p := newTestProvider(t)
	createRangeTable(t, p, "tbl")
	seedRangeItems(t, p, "tbl")

	// Reversed operand order flips the comparison.
	out, err := p.Query(&QueryInput{
		TableName:              "tbl",
		KeyConditionExpression: strPtr(":v > sk AND pk = :p"),
		ExpressionAttributeValues: map[string]dynamo.AttributeValue{
			":p": dynamo.String("x"),
			":v": dynamo.Number("3"),
		},
	})
	require.NoError(t, err)
	assert.Len(t, out.Items, 2, "sk < 3")

	// Placeholder key names resolve.
	out, err = p.Query(&QueryInput{
		TableName:                "tbl",
		KeyConditionExpression:   strPtr("#p = :p"),
		ExpressionAttributeNames: map[string]string{"#p": "pk"},
		ExpressionAttributeValues: map[string]dynamo.AttributeValue{
			":p": dynamo.String("x"),
		},
	})
	require.NoError(t, err)
	assert.Len(t, out.Items, 5)
}

func TestQueryKeyConditionValidation(t *testing.T) {
	p := newTestProvider(t)
	createRangeTable(t, p, "tbl")
	values := map[string]dynamo.AttributeValue{
		":p": dynamo.String("x"),
		":v": dynamo.Number("1"),
	}

	cases := []struct {
		expression string
		message    string
	}{
		{"sk = :v", "Query condition missed key schema element: pk"},
		{"pk = :p OR sk = :v", "Unsupported operator in KeyConditionExpression: OR"},
		{"NOT pk = :p", "Unsupported operator in KeyConditionExpression: NOT"},
		{"pk = :p AND sk <> :v", "Unsupported operator on KeyConditionExpression: operator: <>"},
		{"pk = :p AND sk IN (:v)", "Unsupported operator on KeyConditionExpression: operator: IN"},
		{"pk = :p AND contains(sk, :v)", "Unsupported function in KeyConditionExpression: contains"},
		{"pk = :p AND pk = :v", "KeyConditionExpressions must only contain one condition per key"},
		{"pk < :p", "Query key condition not supported"},
		{"pk = :p AND data.inner = :v", "Key condition expression does not support nested attribute paths"},
	}
	for _, tt := range cases {
		t.Run(tt.expression, func(t *testing.T) {
			// Supply only the values the expression references, so the
			// unused-value check does not fire before key-condition validation.
			caseValues := map[string]dynamo.AttributeValue{}
			for ref, v := range values {
				if strings.Contains(tt.expression, ref) {
					caseValues[ref] = v
				}
			}
			_, err := p.Query(&QueryInput{
				TableName:                 "tbl",
				KeyConditionExpression:    strPtr(tt.expression),
				ExpressionAttributeValues: caseValues,
			})
			requireValidation(t, err, tt.message)
		})
	}

	_, err := p.Query(&QueryInput{TableName: "tbl"})
	requireValidation(t, err, apperrors.MsgKeyConditionRequired)

	_, err = p.Query(&QueryInput{TableName: "tbl", KeyConditionExpression: strPtr(" ")})
	requireValidation(t, err, "Invalid KeyConditionExpression: The expression can not be empty;")

	// Key condition value type must match the schema.
	_, err = p.Query(&QueryInput{
		TableName:              "tbl",
		KeyConditionExpression: strPtr("pk = :n"),
		ExpressionAttributeValues: map[string]dynamo.AttributeValue{
			":n": dynamo.Number("1"),
		},
	})
	requireValidation(t, err, "Condition parameter type does not match schema type for key attribute 'pk'")
}

func TestQueryFilterAndCounts(t *testing.T) {
	p := newTestProvider(t)
	createRangeTable(t, p, "tbl")
	seedRangeItems(t, p, "tbl")

	out, err := p.Query(&QueryInput{
		TableName:              "tbl",
		KeyConditionExpression: strPtr("pk = :p"),
		FilterExpression:       strPtr("data = :d"),
		ExpressionAttributeValues: map[string]dynamo.AttributeValue{
			":p": dynamo.String("x"),
			":d": dynamo.String("row3"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, out.ScannedCount, "pre-filter count")
	assert.Equal(t, 1, out.Count, "post-filter count")
	assert.Len(t, out.Items, 1)

	// Filters must not touch key attributes.
	_, err = p.Query(&QueryInput{
		TableName:              "tbl",
		KeyConditionExpression: strPtr("pk = :p"),
		FilterExpression:       strPtr("sk = :d"),
		ExpressionAttributeValues: map[string]dynamo.AttributeValue{
			":p": dynamo.String("x"),
			":d": dynamo.Number("1"),
		},
	})
	requireValidation(t, err, "Filter Expression can not contain key attribute sk")
}

func TestQuerySelect(t *testing.T) {
	p := newTestProvider(t)
	createRangeTable(t, p, "tbl")
	seedRangeItems(t, p, "tbl")

	out, err := p.Query(&QueryInput{
		TableName:              "tbl",
		KeyConditionExpression: strPtr("pk = :p"),
		ExpressionAttributeValues: map[string]dynamo.AttributeValue{
			":p": dynamo.String("x"),
		},
		Select: "COUNT",
	})
	require.NoError(t, err)
	assert.Nil(t, out.Items)
	assert.Equal(t, 5, out.Count)

	_, err = p.Query(&QueryInput{
		TableName:              "tbl",
		KeyConditionExpression: strPtr("pk = :p"),
		ExpressionAttributeValues: map[string]dynamo.AttributeValue{
			":p": dynamo.String("x"),
		},
		Select: "ALL_PROJECTED_ATTRIBUTES",
	})
	requireValidation(t, err, apperrors.MsgAllProjectedOnBaseTable)

	_, err = p.Query(&QueryInput{
		TableName:              "tbl",
		KeyConditionExpression: strPtr("pk = :p"),
		ExpressionAttributeValues: map[string]dynamo.AttributeValue{
			":p": dynamo.String("x"),
		},
		Select: "SPECIFIC_ATTRIBUTES",
	})
	requireValidation(t, err, apperrors.MsgSpecificAttributesNeedsProjection)

	_, err = p.Query(&QueryInput{
		TableName:              "tbl",
		KeyConditionExpression: strPtr("pk = :p"),
		ProjectionExpression:   strPtr("data"),
		ExpressionAttributeValues: map[string]dynamo.AttributeValue{
			":p": dynamo.String("x"),
		},
		Select: "ALL_ATTRIBUTES",
	})
	requireValidation(t, err, "Cannot specify the ProjectionExpression when choosing to get ALL_ATTRIBUTES results")
}

func TestQueryLegacyKeyConditions(t *testing.T) {
	p := newTestProvider(t)
	createRangeTable(t, p, "tbl")
	seedRangeItems(t, p, "tbl")

	out, err := p.Query(&QueryInput{
		TableName: "tbl",
		KeyConditions: map[string]Condition{
			"pk": {ComparisonOperator: "EQ", AttributeValueList: []dynamo.AttributeValue{dynamo.String("x")}},
			"sk": {ComparisonOperator: "GT", AttributeValueList: []dynamo.AttributeValue{dynamo.Number("3")}},
		},
	})
	require.NoError(t, err)
	assert.Len(t, out.Items, 2)

	// Legacy and modern key parameters are mutually exclusive.
	_, err = p.Query(&QueryInput{
		TableName:              "tbl",
		KeyConditionExpression: strPtr("pk = :p"),
		KeyConditions: map[string]Condition{
			"pk": {ComparisonOperator: "EQ", AttributeValueList: []dynamo.AttributeValue{dynamo.String("x")}},
		},
		ExpressionAttributeValues: map[string]dynamo.AttributeValue{
			":p": dynamo.String("x"),
		},
	})
	requireValidation(t, err, "Non-expression parameters: {KeyConditions} Expression parameters: {KeyConditionExpression}")
}

func TestScan(t *testing.T) {
	p := newTestProvider(t)
	createSimpleTable(t, p, "tbl")
	for i := 0; i < 10; i++ {
		seedItem(t, p, "tbl", dynamo.Item{
			"pk":  dynamo.String(fmt.Sprintf("p%d", i)),
			"mod": dynamo.Number(fmt.Sprintf("%d", i%2)),
		})
	}

	out, err := p.Scan(&ScanInput{TableName: "tbl"})
	require.NoError(t, err)
	assert.Len(t, out.Items, 10)

	out, err = p.Scan(&ScanInput{
		TableName:        "tbl",
		FilterExpression: strPtr("mod = :z"),
		ExpressionAttributeValues: map[string]dynamo.AttributeValue{
			":z": dynamo.Number("0"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 10, out.ScannedCount)
	assert.Equal(t, 5, out.Count)
}

func TestScanPagination(t *testing.T) {
	p := newTestProvider(t)
	createSimpleTable(t, p, "tbl")
	for i := 0; i < 7; i++ {
		seedItem(t, p, "tbl", dynamo.Item{"pk": dynamo.String(fmt.Sprintf("p%d", i))})
	}

	var collected []dynamo.Item
	var cursor dynamo.Item
	for {
		input := &ScanInput{TableName: "tbl", Limit: intPtr(3)}
		if cursor != nil {
			input.ExclusiveStartKey = cursor
		}
		out, err := p.Scan(input)
		require.NoError(t, err)
		collected = append(collected, out.Items...)
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		cursor = out.LastEvaluatedKey
	}
	assert.Len(t, collected, 7)
}

func TestParallelScan(t *testing.T) {
	p := newTestProvider(t)
	createSimpleTable(t, p, "tbl")
	for i := 0; i < 20; i++ {
		seedItem(t, p, "tbl", dynamo.Item{"pk": dynamo.String(fmt.Sprintf("p%d", i))})
	}

	const total = 3
	seen := map[string]bool{}
	for segment := 0; segment < total; segment++ {
		out, err := p.Scan(&ScanInput{
			TableName:     "tbl",
			Segment:       intPtr(segment),
			TotalSegments: intPtr(total),
		})
		require.NoError(t, err)
		for _, item := range out.Items {
			pk, _ := item["pk"].StringValue()
			assert.False(t, seen[pk], "segments must be disjoint")
			seen[pk] = true
		}
	}
	assert.Len(t, seen, 20)
}

func TestParallelScanValidation(t *testing.T) {
	p := newTestProvider(t)
	createSimpleTable(t, p, "tbl")

	_, err := p.Scan(&ScanInput{TableName: "tbl", Segment: intPtr(0)})
	requireValidation(t, err, apperrors.MsgSegmentWithoutTotal)

	_, err = p.Scan(&ScanInput{TableName: "tbl", TotalSegments: intPtr(2)})
	requireValidation(t, err, apperrors.MsgTotalWithoutSegment)

	_, err = p.Scan(&ScanInput{TableName: "tbl", Segment: intPtr(5), TotalSegments: intPtr(2)})
	requireValidation(t, err, "The Segment parameter is zero-indexed and must be less than parameter TotalSegments. Segment: 5, TotalSegments: 2")

	_, err = p.Scan(&ScanInput{TableName: "tbl", Segment: intPtr(0), TotalSegments: intPtr(2000000)})
	requireValidation(t, err, "totalSegments")
}

func TestBatchGetItem(t *testing.T) {
	p := newTestProvider(t)
	createSimpleTable(t, p, "tbl")
	seedItem(t, p, "tbl", dynamo.Item{"pk": dynamo.String("a"), "v": dynamo.Number("1")})
	seedItem(t, p, "tbl", dynamo.Item{"pk": dynamo.String("b"), "v": dynamo.Number("2")})

	out, err := p.BatchGetItem(&BatchGetItemInput{
		RequestItems: map[string]KeysAndAttributes{
			"tbl": {Keys: []dynamo.Item{
				{"pk": dynamo.String("a")},
				{"pk": dynamo.String("b")},
				{"pk": dynamo.String("missing")},
			}},
		},
	})
	require.NoError(t, err)
	assert.Len(t, out.Responses["tbl"], 2)
	assert.Empty(t, out.UnprocessedKeys)

	// Duplicate keys are rejected.
	_, err = p.BatchGetItem(&BatchGetItemInput{
		RequestItems: map[string]KeysAndAttributes{
			"tbl": {Keys: []dynamo.Item{
				{"pk": dynamo.String("a")},
				{"pk": dynamo.String("a")},
			}},
		},
	})
	requireValidation(t, err, apperrors.MsgDuplicateBatchKeys)

	// Over 100 keys total.
	keys := make([]dynamo.Item, 101)
	for i := range keys {
		keys[i] = dynamo.Item{"pk": dynamo.String(fmt.Sprintf("k%d", i))}
	}
	_, err = p.BatchGetItem(&BatchGetItemInput{
		RequestItems: map[string]KeysAndAttributes{"tbl": {Keys: keys}},
	})
	requireValidation(t, err, apperrors.MsgTooManyBatchGetItems)
}

func TestBatchWriteItem(t *testing.T) {
	p := newTestProvider(t)
	createSimpleTable(t, p, "tbl")
	seedItem(t, p, "tbl", dynamo.Item{"pk": dynamo.String("togo")})

	out, err := p.BatchWriteItem(&BatchWriteItemInput{
		RequestItems: map[string][]WriteRequest{
			"tbl": {
				{PutRequest: &PutRequest{Item: dynamo.Item{"pk": dynamo.String("new")}}},
				{DeleteRequest: &DeleteRequest{Key: dynamo.Item{"pk": dynamo.String("togo")}}},
			},
		},
	})
	require.NoError(t, err)
	assert.Empty(t, out.UnprocessedItems)

	get, err := p.GetItem(&GetItemInput{TableName: "tbl", Key: dynamo.Item{"pk": dynamo.String("new")}})
	require.NoError(t, err)
	assert.NotNil(t, get.Item)
	get, err = p.GetItem(&GetItemInput{TableName: "tbl", Key: dynamo.Item{"pk": dynamo.String("togo")}})
	require.NoError(t, err)
	assert.Nil(t, get.Item)
}

func TestBatchWriteItemValidatesBeforeExecuting(t *testing.T) {
	p := newTestProvider(t)
	createSimpleTable(t, p, "tbl")

	// The second request is invalid (missing key); the first must not run.
	_, err := p.BatchWriteItem(&BatchWriteItemInput{
		RequestItems: map[string][]WriteRequest{
			"tbl": {
				{PutRequest: &PutRequest{Item: dynamo.Item{"pk": dynamo.String("good")}}},
				{PutRequest: &PutRequest{Item: dynamo.Item{"other": dynamo.String("bad")}}},
			},
		},
	})
	require.Error(t, err)

	get, err := p.GetItem(&GetItemInput{TableName: "tbl", Key: dynamo.Item{"pk": dynamo.String("good")}})
	require.NoError(t, err)
	assert.Nil(t, get.Item, "validation failure must prevent every write in the batch")
}

func TestBatchWriteItemLimit(t *testing.T) {
	p := newTestProvider(t)
	createSimpleTable(t, p, "tbl")

	requests := make([]WriteRequest, 26)
	for i := range requests {
		requests[i] = WriteRequest{PutRequest: &PutRequest{
			Item: dynamo.Item{"pk": dynamo.String(fmt.Sprintf("k%d", i))}}}
	}
	_, err := p.BatchWriteItem(&BatchWriteItemInput{
		RequestItems: map[string][]WriteRequest{"tbl": requests},
	})
	requireValidation(t, err, "the request length 26 exceeds the limit of 25")
}
