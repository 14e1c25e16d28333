package dynamo

import (
	"strings"

	"localaws/domain/dynamo"
	"localaws/domain/dynamo/expression"
	"localaws/infrastructure/persistence/memory"
	apperrors "localaws/pkg/errors"
)

// Query enumerates one partition in sort order, bounded by the key
// condition, then applies filter and projection. ScannedCount counts items
// before the filter; LastEvaluatedKey is the storage cursor, not the
// post-filter tail.
func (p *Provider) Query(input *QueryInput) (*QueryOutput, error) {
	table, err := p.tables.get(input.TableName)
	if err != nil {
		return nil, err
	}

	hasATG := len(input.AttributesToGet) > 0
	if err := validateSelect(input.Select, input.ProjectionExpression != nil, hasATG); err != nil {
		return nil, err
	}
	if input.Limit != nil && *input.Limit <= 0 {
		return nil, apperrors.NewValidationError(apperrors.MsgLimitNotPositive)
	}
	if input.ProjectionExpression != nil && hasATG {
		return nil, apperrors.NewValidationError(apperrors.MsgAttributesToGetAndProjection)
	}
	if input.AttributesToGet != nil && len(input.AttributesToGet) == 0 {
		return nil, apperrors.NewValidationError(
			"One or more parameter values are not valid. The AttributesToGet parameter must contain at least one element")
	}
	if hasATG {
		var exprParams []string
		if input.FilterExpression != nil {
			exprParams = append(exprParams, "FilterExpression")
		}
		if input.KeyConditionExpression != nil {
			exprParams = append(exprParams, "KeyConditionExpression")
		}
		if input.ProjectionExpression != nil {
			exprParams = append(exprParams, "ProjectionExpression")
		}
		if len(exprParams) > 0 {
			return nil, apperrors.NewBothParametersError("AttributesToGet", strings.Join(exprParams, ", "))
		}
	}
	if len(input.KeyConditions) > 0 && input.KeyConditionExpression != nil {
		return nil, apperrors.NewBothParametersError("KeyConditions", "KeyConditionExpression")
	}
	if len(input.QueryFilter) > 0 && input.FilterExpression != nil {
		return nil, apperrors.NewBothParametersError("QueryFilter", "FilterExpression")
	}

	// Legacy rewrites: KeyConditions, QueryFilter, AttributesToGet.
	if len(input.KeyConditions) > 0 {
		result := expression.ConvertKeyConditions(legacyConditions(input.KeyConditions), "")
		input.KeyConditionExpression = &result.Expression
		mergeNames(&input.ExpressionAttributeNames, result.Names)
		mergeValues(&input.ExpressionAttributeValues, result.Values)
	}
	if len(input.QueryFilter) > 0 {
		result := expression.ConvertQueryFilter(legacyConditions(input.QueryFilter), input.ConditionalOperator)
		input.FilterExpression = &result.Expression
		mergeNames(&input.ExpressionAttributeNames, result.Names)
		mergeValues(&input.ExpressionAttributeValues, result.Values)
	}
	if hasATG && input.ProjectionExpression == nil {
		projection := expression.ConvertAttributesToGet(input.AttributesToGet)
		input.ProjectionExpression = &projection
	}

	if input.KeyConditionExpression == nil {
		return nil, apperrors.NewValidationError(apperrors.MsgKeyConditionRequired)
	}
	if strings.TrimSpace(*input.KeyConditionExpression) == "" {
		return nil, apperrors.NewEmptyExpressionError("KeyConditionExpression")
	}
	if err := validateExpressionNotEmpty("FilterExpression", input.FilterExpression); err != nil {
		return nil, err
	}

	set := expression.NewPlaceholderSet()
	keyCondition, err := expression.ParseCondition(*input.KeyConditionExpression)
	if err != nil {
		return nil, expressionError(err)
	}
	set.CollectExpr(keyCondition)

	var filter expression.Expr
	if input.FilterExpression != nil {
		filter, err = expression.ParseCondition(*input.FilterExpression)
		if err != nil {
			return nil, expressionError(err)
		}
		set.CollectExpr(filter)
		if err := validateFilterNoKeyAttrs(filter, table.KeySchema, input.ExpressionAttributeNames); err != nil {
			return nil, err
		}
	}
	var projectionPaths []expression.AttributePath
	if input.ProjectionExpression != nil {
		projectionPaths, err = expression.ParseProjection(*input.ProjectionExpression)
		if err != nil {
			return nil, projectionError(err)
		}
		set.CollectProjection(projectionPaths)
	}
	if err := validateNoUnresolvedNames(input.ExpressionAttributeNames, set.Names); err != nil {
		return nil, err
	}
	if err := validateNoUnusedNames(input.ExpressionAttributeNames, set.Names); err != nil {
		return nil, err
	}
	if err := validateNoUnusedValues(input.ExpressionAttributeValues, set.Values); err != nil {
		return nil, err
	}

	if err := validateKeyConditionExpr(keyCondition, table.KeySchema, input.ExpressionAttributeNames); err != nil {
		return nil, err
	}
	partitionValue, sortCondition, err := extractKeyCondition(
		keyCondition, table.KeySchema, input.ExpressionAttributeNames, input.ExpressionAttributeValues)
	if err != nil {
		return nil, err
	}

	forward := true
	if input.ScanIndexForward != nil {
		forward = *input.ScanIndexForward
	}
	limit := 0
	if input.Limit != nil {
		limit = *input.Limit
	}
	var exclusiveStart *dynamo.PrimaryKey
	if len(input.ExclusiveStartKey) > 0 {
		start, err := dynamo.ExtractPrimaryKey(input.ExclusiveStartKey, table.KeySchema)
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
		exclusiveStart = &start
	}

	page := table.Storage.Query(partitionValue, sortCondition, forward, limit, exclusiveStart)
	scannedCount := len(page.Items)

	items, err := p.applyFilterAndProjection(page.Items, filter, projectionPaths, input.ExpressionAttributeNames, input.ExpressionAttributeValues)
	if err != nil {
		return nil, err
	}

	out := &QueryOutput{
		Count:        len(items),
		ScannedCount: scannedCount,
	}
	if page.LastKey != nil {
		out.LastEvaluatedKey = page.LastKey.Item(table.KeySchema)
	}
	if input.Select != "COUNT" {
		out.Items = items
	}
	return out, nil
}

// Scan iterates all items in deterministic order, optionally restricted to
// one parallel-scan segment, then applies filter and projection.
func (p *Provider) Scan(input *ScanInput) (*ScanOutput, error) {
	table, err := p.tables.get(input.TableName)
	if err != nil {
		return nil, err
	}

	hasATG := len(input.AttributesToGet) > 0
	if err := validateSelect(input.Select, input.ProjectionExpression != nil, hasATG); err != nil {
		return nil, err
	}
	if input.Limit != nil && *input.Limit <= 0 {
		return nil, apperrors.NewValidationError(apperrors.MsgLimitNotPositive)
	}
	if input.ProjectionExpression != nil && hasATG {
		return nil, apperrors.NewValidationError(apperrors.MsgAttributesToGetAndProjection)
	}
	if input.AttributesToGet != nil && len(input.AttributesToGet) == 0 {
		return nil, apperrors.NewValidationError(
			"One or more parameter values are not valid. The AttributesToGet parameter must contain at least one element")
	}
	if len(input.ScanFilter) > 0 && input.FilterExpression != nil {
		return nil, apperrors.NewBothParametersError("ScanFilter", "FilterExpression")
	}

	if len(input.ScanFilter) > 0 {
		result := expression.ConvertScanFilter(legacyConditions(input.ScanFilter), input.ConditionalOperator)
		input.FilterExpression = &result.Expression
		mergeNames(&input.ExpressionAttributeNames, result.Names)
		mergeValues(&input.ExpressionAttributeValues, result.Values)
	}
	if hasATG && input.ProjectionExpression == nil {
		projection := expression.ConvertAttributesToGet(input.AttributesToGet)
		input.ProjectionExpression = &projection
	}

	if err := validateExpressionNotEmpty("FilterExpression", input.FilterExpression); err != nil {
		return nil, err
	}

	set := expression.NewPlaceholderSet()
	var filter expression.Expr
	if input.FilterExpression != nil {
		filter, err = expression.ParseCondition(*input.FilterExpression)
		if err != nil {
			return nil, expressionError(err)
		}
		set.CollectExpr(filter)
	}
	var projectionPaths []expression.AttributePath
	if input.ProjectionExpression != nil {
		projectionPaths, err = expression.ParseProjection(*input.ProjectionExpression)
		if err != nil {
			return nil, projectionError(err)
		}
		set.CollectProjection(projectionPaths)
	}
	if err := validateNoUnusedNames(input.ExpressionAttributeNames, set.Names); err != nil {
		return nil, err
	}
	if err := validateNoUnusedValues(input.ExpressionAttributeValues, set.Values); err != nil {
		return nil, err
	}

	limit := 0
	if input.Limit != nil {
		limit = *input.Limit
	}
	var exclusiveStart *dynamo.PrimaryKey
	if len(input.ExclusiveStartKey) > 0 {
		start, err := dynamo.ExtractPrimaryKey(input.ExclusiveStartKey, table.KeySchema)
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
		exclusiveStart = &start
	}

	segment, totalSegments, err := validateParallelScan(input, exclusiveStart)
	if err != nil {
		return nil, err
	}
	if totalSegments > 0 && exclusiveStart != nil {
		if memory.SegmentOf(exclusiveStart.Partition, totalSegments) != segment {
			return nil, apperrors.NewValidationError(
				"The provided Exclusive start key does not map to the provided Segment and TotalSegments values.")
		}
	}

	page := table.Storage.Scan(limit, exclusiveStart, segment, totalSegments)
	scannedCount := len(page.Items)

	items, err := p.applyFilterAndProjection(page.Items, filter, projectionPaths, input.ExpressionAttributeNames, input.ExpressionAttributeValues)
	if err != nil {
		return nil, err
	}

	out := &ScanOutput{
		Count:        len(items),
		ScannedCount: scannedCount,
	}
	if page.LastKey != nil {
		out.LastEvaluatedKey = page.LastKey.Item(table.KeySchema)
	}
	if input.Select != "COUNT" {
		out.Items = items
	}
	return out, nil
}

// applyFilterAndProjection reduces a storage page by the filter expression
// and reshapes survivors through the projection.
func (p *Provider) applyFilterAndProjection(items []dynamo.Item, filter expression.Expr, projectionPaths []expression.AttributePath, names map[string]string, values map[string]dynamo.AttributeValue) ([]dynamo.Item, error) {
	if filter != nil {
		filtered := make([]dynamo.Item, 0, len(items))
		for _, item := range items {
			ctx := &expression.EvalContext{Item: item, Names: names, Values: values}
			matched, err := ctx.Evaluate(filter)
			if err != nil {
				return nil, expressionError(err)
			}
			if matched {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}
	if projectionPaths != nil {
		projected := make([]dynamo.Item, 0, len(items))
		for _, item := range items {
			ctx := &expression.EvalContext{Item: item, Names: names}
			projected = append(projected, ctx.ApplyProjection(projectionPaths))
		}
		items = projected
	}
	if items == nil {
		items = []dynamo.Item{}
	}
	return items, nil
}

func legacyConditions(conditions map[string]Condition) map[string]expression.LegacyCondition {
	out := make(map[string]expression.LegacyCondition, len(conditions))
	for name, cond := range conditions {
		out[name] = expression.LegacyCondition{
			ComparisonOperator: cond.ComparisonOperator,
			AttributeValueList: cond.AttributeValueList,
		}
	}
	return out
}
