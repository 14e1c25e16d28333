// Package dynamo implements the DynamoDB request pipeline: wire
// request/response types, the validation pipeline, legacy parameter
// rewriting, and the provider orchestrating every table and item operation
// against the in-memory storage.
package dynamo

import (
	"localaws/domain/dynamo"
)

// AttributeDefinition declares an attribute's name and scalar type.
type AttributeDefinition struct {
	AttributeName string `json:"AttributeName"`
	AttributeType string `json:"AttributeType"`
}

// KeySchemaElement is one element of a table or index key schema.
type KeySchemaElement struct {
	AttributeName string `json:"AttributeName"`
	KeyType       string `json:"KeyType"`
}

// ProvisionedThroughput is the requested capacity for PROVISIONED tables.
type ProvisionedThroughput struct {
	ReadCapacityUnits  int64 `json:"ReadCapacityUnits"`
	WriteCapacityUnits int64 `json:"WriteCapacityUnits"`
}

// ProvisionedThroughputDescription echoes capacity in table descriptions.
type ProvisionedThroughputDescription struct {
	ReadCapacityUnits      int64 `json:"ReadCapacityUnits"`
	WriteCapacityUnits     int64 `json:"WriteCapacityUnits"`
	NumberOfDecreasesToday int64 `json:"NumberOfDecreasesToday"`
}

// Projection configures which attributes an index carries.
type Projection struct {
	ProjectionType   string   `json:"ProjectionType,omitempty"`
	NonKeyAttributes []string `json:"NonKeyAttributes,omitempty"`
}

// GlobalSecondaryIndex is a GSI definition. Accepted and described; queries
// against indexes are out of scope.
type GlobalSecondaryIndex struct {
	IndexName             string                 `json:"IndexName"`
	KeySchema             []KeySchemaElement     `json:"KeySchema"`
	Projection            *Projection            `json:"Projection,omitempty"`
	ProvisionedThroughput *ProvisionedThroughput `json:"ProvisionedThroughput,omitempty"`
}

// LocalSecondaryIndex is an LSI definition.
type LocalSecondaryIndex struct {
	IndexName  string             `json:"IndexName"`
	KeySchema  []KeySchemaElement `json:"KeySchema"`
	Projection *Projection        `json:"Projection,omitempty"`
}

// GlobalSecondaryIndexDescription echoes a GSI in table descriptions.
type GlobalSecondaryIndexDescription struct {
	IndexName      string             `json:"IndexName"`
	KeySchema      []KeySchemaElement `json:"KeySchema"`
	Projection     *Projection        `json:"Projection,omitempty"`
	IndexStatus    string             `json:"IndexStatus,omitempty"`
	IndexArn       string             `json:"IndexArn,omitempty"`
	ItemCount      int64              `json:"ItemCount"`
	IndexSizeBytes int64              `json:"IndexSizeBytes"`
}

// LocalSecondaryIndexDescription echoes an LSI in table descriptions.
type LocalSecondaryIndexDescription struct {
	IndexName      string             `json:"IndexName"`
	KeySchema      []KeySchemaElement `json:"KeySchema"`
	Projection     *Projection        `json:"Projection,omitempty"`
	IndexArn       string             `json:"IndexArn,omitempty"`
	ItemCount      int64              `json:"ItemCount"`
	IndexSizeBytes int64              `json:"IndexSizeBytes"`
}

// StreamSpecification is accepted and echoed; streams are not emitted.
type StreamSpecification struct {
	StreamEnabled  *bool  `json:"StreamEnabled,omitempty"`
	StreamViewType string `json:"StreamViewType,omitempty"`
}

// SSESpecification is accepted and echoed; no encryption is performed.
type SSESpecification struct {
	Enabled        *bool  `json:"Enabled,omitempty"`
	SSEType        string `json:"SSEType,omitempty"`
	KMSMasterKeyID string `json:"KMSMasterKeyId,omitempty"`
}

// Tag is one table tag.
type Tag struct {
	Key   string `json:"Key"`
	Value string `json:"Value"`
}

// BillingModeSummary echoes the billing mode in table descriptions.
type BillingModeSummary struct {
	BillingMode string `json:"BillingMode"`
}

// TableDescription is the table metadata document returned by the table
// management operations.
type TableDescription struct {
	TableName              string                            `json:"TableName"`
	TableStatus            string                            `json:"TableStatus"`
	TableArn               string                            `json:"TableArn"`
	TableId                string                            `json:"TableId"`
	CreationDateTime       float64                           `json:"CreationDateTime"`
	AttributeDefinitions   []AttributeDefinition             `json:"AttributeDefinitions"`
	KeySchema              []KeySchemaElement                `json:"KeySchema"`
	BillingModeSummary     *BillingModeSummary               `json:"BillingModeSummary,omitempty"`
	ProvisionedThroughput  *ProvisionedThroughputDescription `json:"ProvisionedThroughput,omitempty"`
	ItemCount              int64                             `json:"ItemCount"`
	TableSizeBytes         int64                             `json:"TableSizeBytes"`
	GlobalSecondaryIndexes []GlobalSecondaryIndexDescription `json:"GlobalSecondaryIndexes,omitempty"`
	LocalSecondaryIndexes  []LocalSecondaryIndexDescription  `json:"LocalSecondaryIndexes,omitempty"`
	StreamSpecification    *StreamSpecification              `json:"StreamSpecification,omitempty"`
	SSEDescription         *SSESpecification                 `json:"SSEDescription,omitempty"`
}

// Condition is the legacy comparison form used by KeyConditions, QueryFilter
// and ScanFilter.
type Condition struct {
	ComparisonOperator string                   `json:"ComparisonOperator"`
	AttributeValueList []dynamo.AttributeValue  `json:"AttributeValueList,omitempty"`
}

// ExpectedAttributeValue is one entry of the legacy Expected map.
type ExpectedAttributeValue struct {
	Value              *dynamo.AttributeValue  `json:"Value,omitempty"`
	Exists             *bool                   `json:"Exists,omitempty"`
	ComparisonOperator string                  `json:"ComparisonOperator,omitempty"`
	AttributeValueList []dynamo.AttributeValue `json:"AttributeValueList,omitempty"`
}

// AttributeValueUpdate is one entry of the legacy AttributeUpdates map.
type AttributeValueUpdate struct {
	Value  *dynamo.AttributeValue `json:"Value,omitempty"`
	Action string                 `json:"Action,omitempty"`
}

// CreateTableInput is the CreateTable request body.
type CreateTableInput struct {
	TableName              string                 `json:"TableName"`
	AttributeDefinitions   []AttributeDefinition  `json:"AttributeDefinitions"`
	KeySchema              []KeySchemaElement     `json:"KeySchema"`
	BillingMode            string                 `json:"BillingMode,omitempty"`
	ProvisionedThroughput  *ProvisionedThroughput `json:"ProvisionedThroughput,omitempty"`
	GlobalSecondaryIndexes []GlobalSecondaryIndex `json:"GlobalSecondaryIndexes,omitempty"`
	LocalSecondaryIndexes  []LocalSecondaryIndex  `json:"LocalSecondaryIndexes,omitempty"`
	StreamSpecification    *StreamSpecification   `json:"StreamSpecification,omitempty"`
	SSESpecification       *SSESpecification      `json:"SSESpecification,omitempty"`
	Tags                   []Tag                  `json:"Tags,omitempty"`
}

// CreateTableOutput is the CreateTable response body.
type CreateTableOutput struct {
	TableDescription *TableDescription `json:"TableDescription,omitempty"`
}

// DeleteTableInput is the DeleteTable request body.
type DeleteTableInput struct {
	TableName string `json:"TableName"`
}

// DeleteTableOutput is the DeleteTable response body.
type DeleteTableOutput struct {
	TableDescription *TableDescription `json:"TableDescription,omitempty"`
}

// DescribeTableInput is the DescribeTable request body.
type DescribeTableInput struct {
	TableName string `json:"TableName"`
}

// DescribeTableOutput is the DescribeTable response body.
type DescribeTableOutput struct {
	Table *TableDescription `json:"Table,omitempty"`
}

// ListTablesInput is the ListTables request body.
type ListTablesInput struct {
	ExclusiveStartTableName string `json:"ExclusiveStartTableName,omitempty"`
	Limit                   *int   `json:"Limit,omitempty"`
}

// ListTablesOutput is the ListTables response body.
type ListTablesOutput struct {
	TableNames             []string `json:"TableNames"`
	LastEvaluatedTableName string   `json:"LastEvaluatedTableName,omitempty"`
}

// UpdateTableInput is the UpdateTable request body. Accepted and validated;
// changes do not alter runtime behavior.
type UpdateTableInput struct {
	TableName             string                 `json:"TableName"`
	AttributeDefinitions  []AttributeDefinition  `json:"AttributeDefinitions,omitempty"`
	BillingMode           string                 `json:"BillingMode,omitempty"`
	ProvisionedThroughput *ProvisionedThroughput `json:"ProvisionedThroughput,omitempty"`
	StreamSpecification   *StreamSpecification   `json:"StreamSpecification,omitempty"`
	SSESpecification      *SSESpecification      `json:"SSESpecification,omitempty"`
}

// UpdateTableOutput is the UpdateTable response body.
type UpdateTableOutput struct {
	TableDescription *TableDescription `json:"TableDescription,omitempty"`
}

// PutItemInput is the PutItem request body.
type PutItemInput struct {
	TableName                           string                            `json:"TableName"`
	Item                                dynamo.Item                       `json:"Item"`
	ConditionExpression                 *string                           `json:"ConditionExpression,omitempty"`
	ConditionalOperator                 string                            `json:"ConditionalOperator,omitempty"`
	Expected                            map[string]ExpectedAttributeValue `json:"Expected,omitempty"`
	ExpressionAttributeNames            map[string]string                 `json:"ExpressionAttributeNames,omitempty"`
	ExpressionAttributeValues           map[string]dynamo.AttributeValue  `json:"ExpressionAttributeValues,omitempty"`
	ReturnValues                        string                            `json:"ReturnValues,omitempty"`
	ReturnValuesOnConditionCheckFailure string                            `json:"ReturnValuesOnConditionCheckFailure,omitempty"`
	ReturnConsumedCapacity              string                            `json:"ReturnConsumedCapacity,omitempty"`
	ReturnItemCollectionMetrics         string                            `json:"ReturnItemCollectionMetrics,omitempty"`
}

// PutItemOutput is the PutItem response body.
type PutItemOutput struct {
	Attributes dynamo.Item `json:"Attributes,omitempty"`
}

// GetItemInput is the GetItem request body.
type GetItemInput struct {
	TableName                string            `json:"TableName"`
	Key                      dynamo.Item       `json:"Key"`
	AttributesToGet          []string          `json:"AttributesToGet,omitempty"`
	ProjectionExpression     *string           `json:"ProjectionExpression,omitempty"`
	ExpressionAttributeNames map[string]string `json:"ExpressionAttributeNames,omitempty"`
	ConsistentRead           *bool             `json:"ConsistentRead,omitempty"`
	ReturnConsumedCapacity   string            `json:"ReturnConsumedCapacity,omitempty"`
}

// GetItemOutput is the GetItem response body.
type GetItemOutput struct {
	Item dynamo.Item `json:"Item,omitempty"`
}

// DeleteItemInput is the DeleteItem request body.
type DeleteItemInput struct {
	TableName                           string                            `json:"TableName"`
	Key                                 dynamo.Item                       `json:"Key"`
	ConditionExpression                 *string                           `json:"ConditionExpression,omitempty"`
	ConditionalOperator                 string                            `json:"ConditionalOperator,omitempty"`
	Expected                            map[string]ExpectedAttributeValue `json:"Expected,omitempty"`
	ExpressionAttributeNames            map[string]string                 `json:"ExpressionAttributeNames,omitempty"`
	ExpressionAttributeValues           map[string]dynamo.AttributeValue  `json:"ExpressionAttributeValues,omitempty"`
	ReturnValues                        string                            `json:"ReturnValues,omitempty"`
	ReturnValuesOnConditionCheckFailure string                            `json:"ReturnValuesOnConditionCheckFailure,omitempty"`
}

// DeleteItemOutput is the DeleteItem response body.
type DeleteItemOutput struct {
	Attributes dynamo.Item `json:"Attributes,omitempty"`
}

// UpdateItemInput is the UpdateItem request body.
type UpdateItemInput struct {
	TableName                           string                            `json:"TableName"`
	Key                                 dynamo.Item                       `json:"Key"`
	UpdateExpression                    *string                           `json:"UpdateExpression,omitempty"`
	ConditionExpression                 *string                           `json:"ConditionExpression,omitempty"`
	ConditionalOperator                 string                            `json:"ConditionalOperator,omitempty"`
	Expected                            map[string]ExpectedAttributeValue `json:"Expected,omitempty"`
	AttributeUpdates                    map[string]AttributeValueUpdate   `json:"AttributeUpdates,omitempty"`
	ExpressionAttributeNames            map[string]string                 `json:"ExpressionAttributeNames,omitempty"`
	ExpressionAttributeValues           map[string]dynamo.AttributeValue  `json:"ExpressionAttributeValues,omitempty"`
	ReturnValues                        string                            `json:"ReturnValues,omitempty"`
	ReturnValuesOnConditionCheckFailure string                            `json:"ReturnValuesOnConditionCheckFailure,omitempty"`
}

// UpdateItemOutput is the UpdateItem response body.
type UpdateItemOutput struct {
	Attributes dynamo.Item `json:"Attributes,omitempty"`
}

// QueryInput is the Query request body.
type QueryInput struct {
	TableName                 string                           `json:"TableName"`
	IndexName                 string                           `json:"IndexName,omitempty"`
	KeyConditionExpression    *string                          `json:"KeyConditionExpression,omitempty"`
	KeyConditions             map[string]Condition             `json:"KeyConditions,omitempty"`
	QueryFilter               map[string]Condition             `json:"QueryFilter,omitempty"`
	FilterExpression          *string                          `json:"FilterExpression,omitempty"`
	ProjectionExpression      *string                          `json:"ProjectionExpression,omitempty"`
	AttributesToGet           []string                         `json:"AttributesToGet,omitempty"`
	ConditionalOperator       string                           `json:"ConditionalOperator,omitempty"`
	ExpressionAttributeNames  map[string]string                `json:"ExpressionAttributeNames,omitempty"`
	ExpressionAttributeValues map[string]dynamo.AttributeValue `json:"ExpressionAttributeValues,omitempty"`
	Select                    string                           `json:"Select,omitempty"`
	Limit                     *int                             `json:"Limit,omitempty"`
	ScanIndexForward          *bool                            `json:"ScanIndexForward,omitempty"`
	ExclusiveStartKey         dynamo.Item                      `json:"ExclusiveStartKey,omitempty"`
	ConsistentRead            *bool                            `json:"ConsistentRead,omitempty"`
}

// QueryOutput is the Query response body.
type QueryOutput struct {
	Items            []dynamo.Item `json:"Items,omitempty"`
	Count            int           `json:"Count"`
	ScannedCount     int           `json:"ScannedCount"`
	LastEvaluatedKey dynamo.Item   `json:"LastEvaluatedKey,omitempty"`
}

// ScanInput is the Scan request body.
type ScanInput struct {
	TableName                 string                           `json:"TableName"`
	IndexName                 string                           `json:"IndexName,omitempty"`
	ScanFilter                map[string]Condition             `json:"ScanFilter,omitempty"`
	FilterExpression          *string                          `json:"FilterExpression,omitempty"`
	ProjectionExpression      *string                          `json:"ProjectionExpression,omitempty"`
	AttributesToGet           []string                         `json:"AttributesToGet,omitempty"`
	ConditionalOperator       string                           `json:"ConditionalOperator,omitempty"`
	ExpressionAttributeNames  map[string]string                `json:"ExpressionAttributeNames,omitempty"`
	ExpressionAttributeValues map[string]dynamo.AttributeValue `json:"ExpressionAttributeValues,omitempty"`
	Select                    string                           `json:"Select,omitempty"`
	Limit                     *int                             `json:"Limit,omitempty"`
	ExclusiveStartKey         dynamo.Item                      `json:"ExclusiveStartKey,omitempty"`
	Segment                   *int                             `json:"Segment,omitempty"`
	TotalSegments             *int                             `json:"TotalSegments,omitempty"`
	ConsistentRead            *bool                            `json:"ConsistentRead,omitempty"`
}

// ScanOutput is the Scan response body.
type ScanOutput struct {
	Items            []dynamo.Item `json:"Items,omitempty"`
	Count            int           `json:"Count"`
	ScannedCount     int           `json:"ScannedCount"`
	LastEvaluatedKey dynamo.Item   `json:"LastEvaluatedKey,omitempty"`
}

// KeysAndAttributes is one table's entry in a BatchGetItem request.
type KeysAndAttributes struct {
	Keys                     []dynamo.Item     `json:"Keys"`
	AttributesToGet          []string          `json:"AttributesToGet,omitempty"`
	ProjectionExpression     *string           `json:"ProjectionExpression,omitempty"`
	ExpressionAttributeNames map[string]string `json:"ExpressionAttributeNames,omitempty"`
	ConsistentRead           *bool             `json:"ConsistentRead,omitempty"`
}

// BatchGetItemInput is the BatchGetItem request body.
type BatchGetItemInput struct {
	RequestItems map[string]KeysAndAttributes `json:"RequestItems"`
}

// BatchGetItemOutput is the BatchGetItem response body.
type BatchGetItemOutput struct {
	Responses       map[string][]dynamo.Item     `json:"Responses"`
	UnprocessedKeys map[string]KeysAndAttributes `json:"UnprocessedKeys"`
}

// PutRequest is a BatchWriteItem put.
type PutRequest struct {
	Item dynamo.Item `json:"Item"`
}

// DeleteRequest is a BatchWriteItem delete.
type DeleteRequest struct {
	Key dynamo.Item `json:"Key"`
}

// WriteRequest is one BatchWriteItem request; exactly one field is set.
type WriteRequest struct {
	PutRequest    *PutRequest    `json:"PutRequest,omitempty"`
	DeleteRequest *DeleteRequest `json:"DeleteRequest,omitempty"`
}

// BatchWriteItemInput is the BatchWriteItem request body.
type BatchWriteItemInput struct {
	RequestItems map[string][]WriteRequest `json:"RequestItems"`
}

// BatchWriteItemOutput is the BatchWriteItem response body.
type BatchWriteItemOutput struct {
	UnprocessedItems map[string][]WriteRequest `json:"UnprocessedItems"`
}
