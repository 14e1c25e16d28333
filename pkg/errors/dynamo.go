// Package errors defines the typed error taxonomies for the two emulated
// wire protocols. Error messages surfaced by the DynamoDB validation
// pipeline are part of the public contract: SDK test suites assert on them
// verbatim, so they are kept as named constants here and must not be
// reworded.
package errors

import (
	"fmt"
	"net/http"
)

// DynamoErrorType identifies a DynamoDB wire-level error kind.
type DynamoErrorType string

const (
	DynamoValidationException            DynamoErrorType = "ValidationException"
	DynamoResourceNotFoundException      DynamoErrorType = "ResourceNotFoundException"
	DynamoResourceInUseException         DynamoErrorType = "ResourceInUseException"
	DynamoConditionalCheckFailed         DynamoErrorType = "ConditionalCheckFailedException"
	DynamoProvisionedThroughputExceeded  DynamoErrorType = "ProvisionedThroughputExceededException"
	DynamoInternalServerError            DynamoErrorType = "InternalServerError"
	DynamoSerializationException         DynamoErrorType = "SerializationException"
	DynamoUnknownOperationException      DynamoErrorType = "UnknownOperationException"
)

// dynamoTypePrefix is the namespace DynamoDB prepends to the error type in
// the JSON error body's __type field.
const dynamoTypePrefix = "com.amazonaws.dynamodb.v20120810#"

// Canonical DynamoDB validation messages. Callers key on these strings.
const (
	MsgConditionalRequestFailed = "The conditional request failed"
	MsgExpressionEmpty          = "The expression can not be empty;"
	MsgKeyConditionRequired     = "KeyConditionExpression is required for Query"
	MsgOneConditionPerKey       = "KeyConditionExpressions must only contain one condition per key"
	MsgKeyConditionNeedsEquality = "KeyConditionExpression must contain an equality condition on the partition key"
	MsgKeyConditionNoNestedPaths = "Key condition expression does not support nested attribute paths"
	MsgConditionalOperatorNeedsExpected = "ConditionalOperator cannot be used without Expected or with an empty Expected map"
	MsgTooManyBatchGetItems     = "Too many items requested for the BatchGetItem call"
	MsgDuplicateBatchKeys       = "Provided list of item keys contains duplicates"
	MsgNoProvisionedThroughput  = "No provisioned throughput specified for the table"
	MsgKeySchemaMissingHash     = "Key schema must contain a HASH key element"
	MsgTooManyKeySchemaElements = "Too many KeySchema elements; expected at most 2"
	MsgLimitNotPositive         = "Limit must be greater than 0"
	MsgNumberNotNumeric         = "The parameter cannot be converted to a numeric value"
	MsgNumberMalformed          = "The parameter cannot be converted to a numeric value: numeric value is not valid"
	MsgNumberOverflow           = "Number overflow. Attempting to store a number with magnitude larger than supported range"
	MsgNumberUnderflow          = "Number underflow. Attempting to store a number with magnitude smaller than supported range"
	MsgAttributesToGetAndProjection = "Cannot have both AttributesToGet and ProjectionExpression"
	MsgSegmentWithoutTotal      = "The TotalSegments parameter is required but was not present in the request when parameter Segment is present"
	MsgTotalWithoutSegment      = "The Segment parameter is required but was not present in the request when parameter TotalSegments is present"
	MsgAllProjectedOnBaseTable  = "ALL_PROJECTED_ATTRIBUTES is only supported for queries on secondary indexes"
	MsgSpecificAttributesNeedsProjection = "SPECIFIC_ATTRIBUTES requires either ProjectionExpression or AttributesToGet"
)

// DynamoError is a wire-renderable DynamoDB error. Item is populated only
// for conditional-check failures when the request asked for ALL_OLD.
type DynamoError struct {
	Type    DynamoErrorType
	Message string
	Item    interface{}
}

// Error implements the error interface.
func (e *DynamoError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// WireType returns the namespaced type string for the JSON error body.
func (e *DynamoError) WireType() string {
	return dynamoTypePrefix + string(e.Type)
}

// HTTPStatus maps the error kind to its HTTP status code.
func (e *DynamoError) HTTPStatus() int {
	switch e.Type {
	case DynamoInternalServerError:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// WithItem attaches the old item for the ALL_OLD condition-check return mode.
func (e *DynamoError) WithItem(item interface{}) *DynamoError {
	e.Item = item
	return e
}

// NewValidationError creates a ValidationException with the given message.
func NewValidationError(message string) *DynamoError {
	return &DynamoError{Type: DynamoValidationException, Message: message}
}

// NewValidationErrorf creates a ValidationException with a formatted message.
func NewValidationErrorf(format string, args ...interface{}) *DynamoError {
	return &DynamoError{Type: DynamoValidationException, Message: fmt.Sprintf(format, args...)}
}

// NewTableNotFoundError creates the ResourceNotFoundException raised when a
// request names a table that does not exist.
func NewTableNotFoundError() *DynamoError {
	return &DynamoError{
		Type:    DynamoResourceNotFoundException,
		Message: "Requested resource not found",
	}
}

// NewTableInUseError creates the ResourceInUseException raised when creating
// a table whose name is already taken.
func NewTableInUseError(name string) *DynamoError {
	return &DynamoError{
		Type:    DynamoResourceInUseException,
		Message: fmt.Sprintf("Table already exists: %s", name),
	}
}

// NewConditionalCheckFailedError creates the error raised when a condition
// expression evaluates to false.
func NewConditionalCheckFailedError() *DynamoError {
	return &DynamoError{
		Type:    DynamoConditionalCheckFailed,
		Message: MsgConditionalRequestFailed,
	}
}

// NewInternalServerError wraps an unexpected failure.
func NewInternalServerError(cause error) *DynamoError {
	return &DynamoError{
		Type:    DynamoInternalServerError,
		Message: cause.Error(),
	}
}

// NewSerializationError is raised when the request body is not valid
// DynamoDB JSON.
func NewSerializationError(message string) *DynamoError {
	return &DynamoError{Type: DynamoSerializationException, Message: message}
}

// NewUnknownOperationError is raised for an unrecognized X-Amz-Target.
func NewUnknownOperationError() *DynamoError {
	return &DynamoError{Type: DynamoUnknownOperationException, Message: ""}
}

// NewBothParametersError creates the canonical mutual-exclusion error for a
// legacy parameter supplied alongside its expression replacement.
func NewBothParametersError(nonExpression, expression string) *DynamoError {
	return NewValidationErrorf(
		"Can not use both expression and non-expression parameters in the same request: Non-expression parameters: {%s} Expression parameters: {%s}",
		nonExpression, expression)
}

// NewInvalidExpressionError wraps a parser or evaluator failure with the
// operation-level parameter name, e.g. "Invalid ProjectionExpression: ...".
func NewInvalidExpressionError(param string, cause error) *DynamoError {
	return NewValidationErrorf("Invalid %s: %s", param, cause.Error())
}

// NewEmptyExpressionError is the canonical error for an empty expression
// string in the named parameter.
func NewEmptyExpressionError(param string) *DynamoError {
	return NewValidationErrorf("Invalid %s: %s", param, MsgExpressionEmpty)
}
