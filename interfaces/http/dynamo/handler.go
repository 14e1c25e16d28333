// Package dynamo is the DynamoDB HTTP endpoint: X-Amz-Target dispatch,
// DynamoDB JSON decoding/encoding, and wire error rendering.
package dynamo

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	appdynamo "localaws/application/dynamo"
	apperrors "localaws/pkg/errors"
)

// targetPrefix is the service/version prefix of every X-Amz-Target value.
const targetPrefix = "DynamoDB_20120810."

// contentType is the DynamoDB JSON media type.
const contentType = "application/x-amz-json-1.0"

// Handler serves the single DynamoDB endpoint.
type Handler struct {
	provider *appdynamo.Provider
	logger   *zap.Logger
}

// NewHandler creates the endpoint handler.
func NewHandler(provider *appdynamo.Provider, logger *zap.Logger) *Handler {
	return &Handler{provider: provider, logger: logger}
}

// ServeHTTP resolves the operation from X-Amz-Target and dispatches.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	target := r.Header.Get("X-Amz-Target")
	operation := strings.TrimPrefix(target, targetPrefix)
	if operation == target || operation == "" {
		h.writeError(w, apperrors.NewUnknownOperationError())
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeError(w, apperrors.NewInternalServerError(err))
		return
	}

	output, opErr := h.dispatch(operation, body)
	if opErr != nil {
		h.logger.Debug("dynamodb operation failed",
			zap.String("operation", operation),
			zap.Error(opErr),
		)
		h.writeError(w, opErr)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(output); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

// dispatch decodes the body into the operation's input and invokes the
// provider.
func (h *Handler) dispatch(operation string, body []byte) (interface{}, error) {
	switch operation {
	case "CreateTable":
		return decodeAndCall(body, h.provider.CreateTable)
	case "DeleteTable":
		return decodeAndCall(body, h.provider.DeleteTable)
	case "DescribeTable":
		return decodeAndCall(body, h.provider.DescribeTable)
	case "ListTables":
		return decodeAndCall(body, h.provider.ListTables)
	case "UpdateTable":
		return decodeAndCall(body, h.provider.UpdateTable)
	case "PutItem":
		return decodeAndCall(body, h.provider.PutItem)
	case "GetItem":
		return decodeAndCall(body, h.provider.GetItem)
	case "DeleteItem":
		return decodeAndCall(body, h.provider.DeleteItem)
	case "UpdateItem":
		return decodeAndCall(body, h.provider.UpdateItem)
	case "Query":
		return decodeAndCall(body, h.provider.Query)
	case "Scan":
		return decodeAndCall(body, h.provider.Scan)
	case "BatchGetItem":
		return decodeAndCall(body, h.provider.BatchGetItem)
	case "BatchWriteItem":
		return decodeAndCall(body, h.provider.BatchWriteItem)
	default:
		return nil, apperrors.NewUnknownOperationError()
	}
}

// decodeAndCall decodes the request body into the handler's input type and
// invokes it.
func decodeAndCall[I any, O any](body []byte, call func(*I) (*O, error)) (interface{}, error) {
	input := new(I)
	if len(body) > 0 {
		if err := json.Unmarshal(body, input); err != nil {
			return nil, apperrors.NewSerializationError(err.Error())
		}
	}
	return call(input)
}

// errorBody is the DynamoDB JSON error document.
type errorBody struct {
	Type    string      `json:"__type"`
	Message string      `json:"message"`
	Item    interface{} `json:"Item,omitempty"`
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	dynamoErr, ok := err.(*apperrors.DynamoError)
	if !ok {
		dynamoErr = apperrors.NewInternalServerError(err)
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(dynamoErr.HTTPStatus())
	body := errorBody{
		Type:    dynamoErr.WireType(),
		Message: dynamoErr.Message,
		Item:    dynamoErr.Item,
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode error response", zap.Error(err))
	}
}
