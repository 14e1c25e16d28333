package dynamo

import (
	"localaws/domain/dynamo"
	"localaws/domain/dynamo/expression"
	apperrors "localaws/pkg/errors"
)

const (
	maxBatchGetKeys      = 100
	maxBatchWriteRequests = 25
)

// BatchGetItem looks up at most 100 keys across tables, applying each
// table's projection. The in-memory backend never leaves keys unprocessed.
func (p *Provider) BatchGetItem(input *BatchGetItemInput) (*BatchGetItemOutput, error) {
	totalKeys := 0
	for _, ka := range input.RequestItems {
		totalKeys += len(ka.Keys)
	}
	if totalKeys > maxBatchGetKeys {
		return nil, apperrors.NewValidationError(apperrors.MsgTooManyBatchGetItems)
	}

	responses := map[string][]dynamo.Item{}
	for _, tableName := range sortedMapKeys(input.RequestItems) {
		keysAndAttrs := input.RequestItems[tableName]
		table, err := p.tables.get(tableName)
		if err != nil {
			return nil, err
		}
		if err := detectDuplicateKeys(table, keysAndAttrs.Keys); err != nil {
			return nil, err
		}

		effectiveProjection := keysAndAttrs.ProjectionExpression
		if effectiveProjection == nil && len(keysAndAttrs.AttributesToGet) > 0 {
			projection := expression.ConvertAttributesToGet(keysAndAttrs.AttributesToGet)
			effectiveProjection = &projection
		}

		var projectionPaths []expression.AttributePath
		if effectiveProjection != nil {
			projectionPaths, err = expression.ParseProjection(*effectiveProjection)
			if err != nil {
				return nil, projectionError(err)
			}
			if len(keysAndAttrs.ExpressionAttributeNames) > 0 {
				set := expression.NewPlaceholderSet()
				set.CollectProjection(projectionPaths)
				if err := validateNoUnusedNames(keysAndAttrs.ExpressionAttributeNames, set.Names); err != nil {
					return nil, err
				}
			}
		}

		tableItems := []dynamo.Item{}
		for _, key := range keysAndAttrs.Keys {
			pk, err := dynamo.ExtractPrimaryKey(key, table.KeySchema)
			if err != nil {
				return nil, apperrors.NewValidationError(err.Error())
			}
			item, found := table.Storage.GetItem(pk)
			if !found {
				continue
			}
			if projectionPaths != nil {
				ctx := &expression.EvalContext{Item: item, Names: keysAndAttrs.ExpressionAttributeNames}
				item = ctx.ApplyProjection(projectionPaths)
			}
			tableItems = append(tableItems, item)
		}
		responses[tableName] = tableItems
	}

	return &BatchGetItemOutput{
		Responses:       responses,
		UnprocessedKeys: map[string]KeysAndAttributes{},
	}, nil
}

// BatchWriteItem executes at most 25 puts/deletes. Every request is
// validated against its table before any write runs, so a failure never
// leaves a partial batch behind.
func (p *Provider) BatchWriteItem(input *BatchWriteItemInput) (*BatchWriteItemOutput, error) {
	totalWrites := 0
	for _, requests := range input.RequestItems {
		totalWrites += len(requests)
	}
	if totalWrites > maxBatchWriteRequests {
		return nil, batchWriteTooManyError(totalWrites)
	}

	// Validation pass.
	for _, tableName := range sortedMapKeys(input.RequestItems) {
		requests := input.RequestItems[tableName]
		table, err := p.tables.get(tableName)
		if err != nil {
			return nil, err
		}

		keyItems := make([]dynamo.Item, 0, len(requests))
		for _, wr := range requests {
			switch {
			case wr.PutRequest != nil && wr.DeleteRequest != nil, wr.PutRequest == nil && wr.DeleteRequest == nil:
				return nil, apperrors.NewValidationError(
					"Supplied AttributeValue has more than one datatypes set, must contain exactly one of the supported datatypes")
			case wr.PutRequest != nil:
				keyItems = append(keyItems, wr.PutRequest.Item)
			default:
				keyItems = append(keyItems, wr.DeleteRequest.Key)
			}
		}
		if err := detectDuplicateKeys(table, keyItems); err != nil {
			return nil, err
		}

		for _, wr := range requests {
			if wr.PutRequest != nil {
				if err := validateKeyNotEmpty(table.KeySchema, wr.PutRequest.Item); err != nil {
					return nil, err
				}
				if err := validateItemNoEmptySets(wr.PutRequest.Item); err != nil {
					return nil, err
				}
				if err := validateNumbersInItem(wr.PutRequest.Item); err != nil {
					return nil, err
				}
				if err := validateItemSize(wr.PutRequest.Item); err != nil {
					return nil, err
				}
				if _, err := dynamo.ExtractPrimaryKey(wr.PutRequest.Item, table.KeySchema); err != nil {
					return nil, apperrors.NewValidationError(err.Error())
				}
			} else {
				if _, err := dynamo.ExtractPrimaryKey(wr.DeleteRequest.Key, table.KeySchema); err != nil {
					return nil, apperrors.NewValidationError(err.Error())
				}
			}
		}
	}

	// Execution pass.
	for _, tableName := range sortedMapKeys(input.RequestItems) {
		requests := input.RequestItems[tableName]
		table, err := p.tables.get(tableName)
		if err != nil {
			return nil, err
		}
		for _, wr := range requests {
			if wr.PutRequest != nil {
				if _, _, err := table.Storage.PutItem(wr.PutRequest.Item); err != nil {
					return nil, apperrors.NewValidationError(err.Error())
				}
			} else {
				pk, err := dynamo.ExtractPrimaryKey(wr.DeleteRequest.Key, table.KeySchema)
				if err != nil {
					return nil, apperrors.NewValidationError(err.Error())
				}
				table.Storage.DeleteItem(pk)
			}
		}
	}

	return &BatchWriteItemOutput{UnprocessedItems: map[string][]WriteRequest{}}, nil
}

// detectDuplicateKeys rejects repeated primary keys in one table's batch.
func detectDuplicateKeys(table *Table, items []dynamo.Item) error {
	seen := map[string]bool{}
	for _, item := range items {
		pk, err := dynamo.ExtractPrimaryKey(item, table.KeySchema)
		if err != nil {
			continue
		}
		encoded := pk.Encode()
		if seen[encoded] {
			return apperrors.NewValidationError(apperrors.MsgDuplicateBatchKeys)
		}
		seen[encoded] = true
	}
	return nil
}
