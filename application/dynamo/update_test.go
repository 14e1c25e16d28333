package dynamo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"localaws/domain/dynamo"
	apperrors "localaws/pkg/errors"
)

func seedItem(t *testing.T, p *Provider, table string, item dynamo.Item) {
	t.Helper()
	_, err := p.PutItem(&PutItemInput{TableName: table, Item: item})
	require.NoError(t, err)
}

func TestUpdateItemSetAndReturnModes(t *testing.T) {
	p := newTestProvider(t)
	createSimpleTable(t, p, "tbl")
	seedItem(t, p, "tbl", dynamo.Item{
		"pk":   dynamo.String("k1"),
		"name": dynamo.String("Alice"),
		"age":  dynamo.Number("30"),
	})

	out, err := p.UpdateItem(&UpdateItemInput{
		TableName:                "tbl",
		Key:                      dynamo.Item{"pk": dynamo.String("k1")},
		UpdateExpression:         strPtr("SET #n = :v1, email = :v2"),
		ExpressionAttributeNames: map[string]string{"#n": "name"},
		ExpressionAttributeValues: map[string]dynamo.AttributeValue{
			":v1": dynamo.String("Bob"),
			":v2": dynamo.String("bob@x"),
		},
		ReturnValues: "UPDATED_OLD",
	})
	require.NoError(t, err)
	// Only the previously-present update target: no email, no pk, no age.
	require.Len(t, out.Attributes, 1)
	assert.True(t, out.Attributes["name"].Equal(dynamo.String("Alice")))

	get, err := p.GetItem(&GetItemInput{TableName: "tbl", Key: dynamo.Item{"pk": dynamo.String("k1")}})
	require.NoError(t, err)
	assert.True(t, get.Item["name"].Equal(dynamo.String("Bob")))
	assert.True(t, get.Item["email"].Equal(dynamo.String("bob@x")))

	out, err = p.UpdateItem(&UpdateItemInput{
		TableName:        "tbl",
		Key:              dynamo.Item{"pk": dynamo.String("k1")},
		UpdateExpression: strPtr("SET age = :a"),
		ExpressionAttributeValues: map[string]dynamo.AttributeValue{
			":a": dynamo.Number("31"),
		},
		ReturnValues: "ALL_NEW",
	})
	require.NoError(t, err)
	assert.Len(t, out.Attributes, 4)
	assert.True(t, out.Attributes["age"].Equal(dynamo.Number("31")))

	out, err = p.UpdateItem(&UpdateItemInput{
		TableName:        "tbl",
		Key:              dynamo.Item{"pk": dynamo.String("k1")},
		UpdateExpression: strPtr("SET age = :a"),
		ExpressionAttributeValues: map[string]dynamo.AttributeValue{
			":a": dynamo.Number("32"),
		},
		ReturnValues: "UPDATED_NEW",
	})
	require.NoError(t, err)
	require.Len(t, out.Attributes, 1)
	assert.True(t, out.Attributes["age"].Equal(dynamo.Number("32")))
}

func TestUpdateItemCreatesFromKey(t *testing.T) {
	p := newTestProvider(t)
	createSimpleTable(t, p, "tbl")

	_, err := p.UpdateItem(&UpdateItemInput{
		TableName:        "tbl",
		Key:              dynamo.Item{"pk": dynamo.String("fresh")},
		UpdateExpression: strPtr("SET v = :v"),
		ExpressionAttributeValues: map[string]dynamo.AttributeValue{
			":v": dynamo.Number("1"),
		},
	})
	require.NoError(t, err)

	get, err := p.GetItem(&GetItemInput{TableName: "tbl", Key: dynamo.Item{"pk": dynamo.String("fresh")}})
	require.NoError(t, err)
	require.NotNil(t, get.Item)
	assert.True(t, get.Item["v"].Equal(dynamo.Number("1")))
}

func TestUpdateItemSubtractiveOnlyDoesNotCreate(t *testing.T) {
	p := newTestProvider(t)
	createSimpleTable(t, p, "tbl")

	out, err := p.UpdateItem(&UpdateItemInput{
		TableName:        "tbl",
		Key:              dynamo.Item{"pk": dynamo.String("ghost")},
		UpdateExpression: strPtr("REMOVE gone"),
		ReturnValues:     "ALL_NEW",
	})
	require.NoError(t, err)
	assert.Empty(t, out.Attributes)

	get, err := p.GetItem(&GetItemInput{TableName: "tbl", Key: dynamo.Item{"pk": dynamo.String("ghost")}})
	require.NoError(t, err)
	assert.Nil(t, get.Item, "subtractive-only update must not store the item")
}

func TestUpdateItemKeyAttributeRejected(t *testing.T) {
	p := newTestProvider(t)
	createSimpleTable(t, p, "tbl")

	_, err := p.UpdateItem(&UpdateItemInput{
		TableName:        "tbl",
		Key:              dynamo.Item{"pk": dynamo.String("a")},
		UpdateExpression: strPtr("SET pk = :v"),
		ExpressionAttributeValues: map[string]dynamo.AttributeValue{
			":v": dynamo.String("other"),
		},
	})
	requireValidation(t, err, "Cannot update attribute (pk). This attribute is part of the key")
}

func TestUpdateItemOverlappingPaths(t *testing.T) {
	p := newTestProvider(t)
	createSimpleTable(t, p, "tbl")

	_, err := p.UpdateItem(&UpdateItemInput{
		TableName:        "tbl",
		Key:              dynamo.Item{"pk": dynamo.String("a")},
		UpdateExpression: strPtr("SET doc = :v REMOVE doc.inner"),
		ExpressionAttributeValues: map[string]dynamo.AttributeValue{
			":v": dynamo.Map(nil),
		},
	})
	requireValidation(t, err, "Two document paths overlap with each other")

	_, err = p.UpdateItem(&UpdateItemInput{
		TableName:        "tbl",
		Key:              dynamo.Item{"pk": dynamo.String("a")},
		UpdateExpression: strPtr("SET doc.a = :v REMOVE doc[0]"),
		ExpressionAttributeValues: map[string]dynamo.AttributeValue{
			":v": dynamo.Number("1"),
		},
	})
	requireValidation(t, err, "Two document paths conflict with each other")
}

func TestUpdateItemConditional(t *testing.T) {
	p := newTestProvider(t)
	createSimpleTable(t, p, "tbl")
	seedItem(t, p, "tbl", dynamo.Item{"pk": dynamo.String("a"), "v": dynamo.Number("1")})

	_, err := p.UpdateItem(&UpdateItemInput{
		TableName:           "tbl",
		Key:                 dynamo.Item{"pk": dynamo.String("a")},
		UpdateExpression:    strPtr("SET v = :new"),
		ConditionExpression: strPtr("v = :expected"),
		ExpressionAttributeValues: map[string]dynamo.AttributeValue{
			":new":      dynamo.Number("2"),
			":expected": dynamo.Number("999"),
		},
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.DynamoConditionalCheckFailed, err.(*apperrors.DynamoError).Type)

	// Value unchanged.
	get, err := p.GetItem(&GetItemInput{TableName: "tbl", Key: dynamo.Item{"pk": dynamo.String("a")}})
	require.NoError(t, err)
	assert.True(t, get.Item["v"].Equal(dynamo.Number("1")))
}

func TestUpdateItemLegacyAttributeUpdates(t *testing.T) {
	p := newTestProvider(t)
	createSimpleTable(t, p, "tbl")
	seedItem(t, p, "tbl", dynamo.Item{
		"pk":    dynamo.String("a"),
		"count": dynamo.Number("10"),
		"old":   dynamo.String("x"),
	})

	increment := dynamo.Number("5")
	value := dynamo.String("fresh")
	out, err := p.UpdateItem(&UpdateItemInput{
		TableName: "tbl",
		Key:       dynamo.Item{"pk": dynamo.String("a")},
		AttributeUpdates: map[string]AttributeValueUpdate{
			"count": {Action: "ADD", Value: &increment},
			"name":  {Action: "PUT", Value: &value},
			"old":   {Action: "DELETE"},
		},
		ReturnValues: "ALL_NEW",
	})
	require.NoError(t, err)
	assert.True(t, out.Attributes["count"].Equal(dynamo.Number("15")))
	assert.True(t, out.Attributes["name"].Equal(dynamo.String("fresh")))
	_, exists := out.Attributes["old"]
	assert.False(t, exists)
}

func TestUpdateItemLegacyAddList(t *testing.T) {
	p := newTestProvider(t)
	createSimpleTable(t, p, "tbl")
	seedItem(t, p, "tbl", dynamo.Item{
		"pk":    dynamo.String("a"),
		"items": dynamo.List([]dynamo.AttributeValue{dynamo.Number("1")}),
	})

	more := dynamo.List([]dynamo.AttributeValue{dynamo.Number("2"), dynamo.Number("3")})
	out, err := p.UpdateItem(&UpdateItemInput{
		TableName: "tbl",
		Key:       dynamo.Item{"pk": dynamo.String("a")},
		AttributeUpdates: map[string]AttributeValueUpdate{
			"items": {Action: "ADD", Value: &more},
		},
		ReturnValues: "ALL_NEW",
	})
	require.NoError(t, err)
	list, _ := out.Attributes["items"].ListValue()
	assert.Len(t, list, 3)

	// Legacy list ADD against a non-list attribute fails.
	seedItem(t, p, "tbl", dynamo.Item{"pk": dynamo.String("b"), "items": dynamo.Number("1")})
	_, err = p.UpdateItem(&UpdateItemInput{
		TableName: "tbl",
		Key:       dynamo.Item{"pk": dynamo.String("b")},
		AttributeUpdates: map[string]AttributeValueUpdate{
			"items": {Action: "ADD", Value: &more},
		},
	})
	requireValidation(t, err, "Type mismatch for ADD")
}

func TestUpdateItemNestedReturnValues(t *testing.T) {
	p := newTestProvider(t)
	createSimpleTable(t, p, "tbl")
	seedItem(t, p, "tbl", dynamo.Item{
		"pk": dynamo.String("a"),
		"doc": dynamo.Map(map[string]dynamo.AttributeValue{
			"x": dynamo.Number("1"),
			"y": dynamo.Number("2"),
		}),
	})

	out, err := p.UpdateItem(&UpdateItemInput{
		TableName:        "tbl",
		Key:              dynamo.Item{"pk": dynamo.String("a")},
		UpdateExpression: strPtr("SET doc.x = :new"),
		ExpressionAttributeValues: map[string]dynamo.AttributeValue{
			":new": dynamo.Number("10"),
		},
		ReturnValues: "UPDATED_OLD",
	})
	require.NoError(t, err)
	doc, ok := out.Attributes["doc"].MapValue()
	require.True(t, ok)
	// Minimal nested reconstruction: only the targeted sub-path.
	require.Len(t, doc, 1)
	assert.True(t, doc["x"].Equal(dynamo.Number("1")))
}

func TestUpdateItemSizeCap(t *testing.T) {
	p := newTestProvider(t)
	createSimpleTable(t, p, "tbl")

	big := make([]byte, 401*1024)
	_, err := p.UpdateItem(&UpdateItemInput{
		TableName:        "tbl",
		Key:              dynamo.Item{"pk": dynamo.String("a")},
		UpdateExpression: strPtr("SET blob = :b"),
		ExpressionAttributeValues: map[string]dynamo.AttributeValue{
			":b": dynamo.Binary(big),
		},
	})
	requireValidation(t, err, "Item size has exceeded the maximum allowed size")
}
