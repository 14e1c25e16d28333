package dynamo

import (
	"strings"

	"localaws/domain/dynamo"
	"localaws/domain/dynamo/expression"
	apperrors "localaws/pkg/errors"
)

// PutItem validates and writes an item, optionally guarded by a condition.
func (p *Provider) PutItem(input *PutItemInput) (*PutItemOutput, error) {
	if err := validateTableName(input.TableName); err != nil {
		return nil, err
	}
	table, err := p.tables.get(input.TableName)
	if err != nil {
		return nil, err
	}
	if err := validateReturnValues(input.ReturnValues, "NONE", "ALL_OLD"); err != nil {
		return nil, err
	}
	if err := validateKeyNotEmpty(table.KeySchema, input.Item); err != nil {
		return nil, err
	}
	if err := validateItemNoEmptySets(input.Item); err != nil {
		return nil, err
	}
	if len(input.Expected) > 0 && input.ConditionExpression != nil {
		return nil, apperrors.NewBothParametersError("Expected", "ConditionExpression")
	}
	if len(input.Expected) > 0 {
		if err := validateExpected(input.Expected); err != nil {
			return nil, err
		}
		p.rewriteExpected(input.Expected, input.ConditionalOperator,
			&input.ConditionExpression, &input.ExpressionAttributeNames, &input.ExpressionAttributeValues)
	}
	if err := validateReturnValuesOnConditionCheckFailure(input.ReturnValuesOnConditionCheckFailure); err != nil {
		return nil, err
	}
	if err := validateNumbersInItem(input.Item); err != nil {
		return nil, err
	}
	if err := validateItemSize(input.Item); err != nil {
		return nil, err
	}
	if err := validateExpressionNotEmpty("ConditionExpression", input.ConditionExpression); err != nil {
		return nil, err
	}

	set := expression.NewPlaceholderSet()
	var condition expression.Expr
	if input.ConditionExpression != nil {
		condition, err = expression.ParseCondition(*input.ConditionExpression)
		if err != nil {
			return nil, expressionError(err)
		}
		set.CollectExpr(condition)
	}
	if err := validateNoUnusedNames(input.ExpressionAttributeNames, set.Names); err != nil {
		return nil, err
	}
	if err := validateNoUnusedValues(input.ExpressionAttributeValues, set.Values); err != nil {
		return nil, err
	}

	if condition != nil {
		pk, err := dynamo.ExtractPrimaryKey(input.Item, table.KeySchema)
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
		existing, _ := table.Storage.GetItem(pk)
		if err := p.checkCondition(condition, existing, input.ExpressionAttributeNames,
			input.ExpressionAttributeValues, input.ReturnValuesOnConditionCheckFailure); err != nil {
			return nil, err
		}
	}

	old, existed, err := table.Storage.PutItem(input.Item)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	out := &PutItemOutput{}
	if input.ReturnValues == "ALL_OLD" && existed {
		out.Attributes = old
	}
	return out, nil
}

// GetItem looks up one item and applies the requested projection.
func (p *Provider) GetItem(input *GetItemInput) (*GetItemOutput, error) {
	if err := validateTableName(input.TableName); err != nil {
		return nil, err
	}
	table, err := p.tables.get(input.TableName)
	if err != nil {
		return nil, err
	}
	if input.ProjectionExpression != nil && len(input.AttributesToGet) > 0 {
		return nil, apperrors.NewValidationError(apperrors.MsgAttributesToGetAndProjection)
	}
	if err := validateKeyOnlyHasKeyAttrs(table.KeySchema, input.Key); err != nil {
		return nil, err
	}
	if err := validateKeyTypes(table.KeySchema, input.Key); err != nil {
		return nil, err
	}
	if err := validateKeyNotEmpty(table.KeySchema, input.Key); err != nil {
		return nil, err
	}
	pk, err := dynamo.ExtractPrimaryKey(input.Key, table.KeySchema)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	if input.AttributesToGet != nil {
		if len(input.AttributesToGet) == 0 {
			return nil, apperrors.NewValidationError(
				"One or more parameter values are not valid. The AttributesToGet parameter must contain at least one element")
		}
		if err := validateNoDuplicateAttributesToGet(input.AttributesToGet); err != nil {
			return nil, err
		}
		if input.ProjectionExpression == nil {
			projection := expression.ConvertAttributesToGet(input.AttributesToGet)
			input.ProjectionExpression = &projection
		}
	}

	set := expression.NewPlaceholderSet()
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

	item, found := table.Storage.GetItem(pk)
	if !found {
		return &GetItemOutput{}, nil
	}
	if projectionPaths != nil {
		ctx := &expression.EvalContext{Item: item, Names: input.ExpressionAttributeNames}
		item = ctx.ApplyProjection(projectionPaths)
	}
	return &GetItemOutput{Item: item}, nil
}

// DeleteItem validates and removes an item, optionally guarded by a
// condition.
func (p *Provider) DeleteItem(input *DeleteItemInput) (*DeleteItemOutput, error) {
	if err := validateTableName(input.TableName); err != nil {
		return nil, err
	}
	table, err := p.tables.get(input.TableName)
	if err != nil {
		return nil, err
	}
	if err := validateReturnValues(input.ReturnValues, "NONE", "ALL_OLD"); err != nil {
		return nil, err
	}
	if err := validateReturnValuesOnConditionCheckFailure(input.ReturnValuesOnConditionCheckFailure); err != nil {
		return nil, err
	}
	if err := validateKeyOnlyHasKeyAttrs(table.KeySchema, input.Key); err != nil {
		return nil, err
	}
	if err := validateKeyNotEmpty(table.KeySchema, input.Key); err != nil {
		return nil, err
	}
	pk, err := dynamo.ExtractPrimaryKey(input.Key, table.KeySchema)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	if err := validateConditionalOperator(input.ConditionalOperator, input.Expected); err != nil {
		return nil, err
	}
	if len(input.Expected) > 0 && input.ConditionExpression != nil {
		return nil, apperrors.NewBothParametersError("Expected", "ConditionExpression")
	}
	if len(input.Expected) > 0 {
		if err := validateExpected(input.Expected); err != nil {
			return nil, err
		}
		p.rewriteExpected(input.Expected, input.ConditionalOperator,
			&input.ConditionExpression, &input.ExpressionAttributeNames, &input.ExpressionAttributeValues)
	}
	if err := validateExpressionNotEmpty("ConditionExpression", input.ConditionExpression); err != nil {
		return nil, err
	}

	set := expression.NewPlaceholderSet()
	var condition expression.Expr
	if input.ConditionExpression != nil {
		condition, err = expression.ParseCondition(*input.ConditionExpression)
		if err != nil {
			return nil, expressionError(err)
		}
		set.CollectExpr(condition)
	}
	if err := validateNoUnusedNames(input.ExpressionAttributeNames, set.Names); err != nil {
		return nil, err
	}
	if err := validateNoUnusedValues(input.ExpressionAttributeValues, set.Values); err != nil {
		return nil, err
	}

	if condition != nil {
		existing, _ := table.Storage.GetItem(pk)
		if err := p.checkCondition(condition, existing, input.ExpressionAttributeNames,
			input.ExpressionAttributeValues, input.ReturnValuesOnConditionCheckFailure); err != nil {
			return nil, err
		}
	}

	old, existed := table.Storage.DeleteItem(pk)

	out := &DeleteItemOutput{}
	if input.ReturnValues == "ALL_OLD" && existed {
		out.Attributes = old
	}
	return out, nil
}

// UpdateItem applies an update expression (or its legacy equivalent) to an
// item, creating it from the key map when absent, and computes the
// requested ReturnValues mode.
func (p *Provider) UpdateItem(input *UpdateItemInput) (*UpdateItemOutput, error) {
	if err := validateTableName(input.TableName); err != nil {
		return nil, err
	}
	table, err := p.tables.get(input.TableName)
	if err != nil {
		return nil, err
	}
	if err := validateReturnValues(input.ReturnValues, "NONE", "ALL_OLD", "ALL_NEW", "UPDATED_OLD", "UPDATED_NEW"); err != nil {
		return nil, err
	}
	if err := validateReturnValuesOnConditionCheckFailure(input.ReturnValuesOnConditionCheckFailure); err != nil {
		return nil, err
	}
	if err := validateConditionalOperator(input.ConditionalOperator, input.Expected); err != nil {
		return nil, err
	}
	if len(input.AttributeUpdates) > 0 && input.UpdateExpression != nil {
		return nil, apperrors.NewBothParametersError("AttributeUpdates", "UpdateExpression")
	}
	if len(input.AttributeUpdates) > 0 && input.ConditionExpression != nil {
		return nil, apperrors.NewBothParametersError("AttributeUpdates", "ConditionExpression")
	}
	if len(input.Expected) > 0 && input.UpdateExpression != nil {
		return nil, apperrors.NewBothParametersError("Expected", "UpdateExpression")
	}
	if len(input.Expected) > 0 && input.ConditionExpression != nil {
		return nil, apperrors.NewBothParametersError("Expected", "ConditionExpression")
	}
	if err := validateKeyOnlyHasKeyAttrs(table.KeySchema, input.Key); err != nil {
		return nil, err
	}
	if err := validateKeyNotEmpty(table.KeySchema, input.Key); err != nil {
		return nil, err
	}
	if err := validateNumbersInItem(input.Key); err != nil {
		return nil, err
	}
	pk, err := dynamo.ExtractPrimaryKey(input.Key, table.KeySchema)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	existing, exists := table.Storage.GetItem(pk)
	var item dynamo.Item
	if exists {
		item = existing.Clone()
	} else {
		item = input.Key.Clone()
	}

	if len(input.Expected) > 0 {
		if err := validateExpected(input.Expected); err != nil {
			return nil, err
		}
		p.rewriteExpected(input.Expected, input.ConditionalOperator,
			&input.ConditionExpression, &input.ExpressionAttributeNames, &input.ExpressionAttributeValues)
	}

	// The legacy ADD of a list has no modern equivalent; apply list appends
	// directly before translating the remaining updates.
	if len(input.AttributeUpdates) > 0 && input.UpdateExpression == nil {
		if err := applyLegacyListAdds(item, input.AttributeUpdates); err != nil {
			return nil, err
		}
		if remaining := pruneLegacyListAdds(input.AttributeUpdates); len(remaining) > 0 {
			legacy := map[string]expression.LegacyUpdate{}
			for name, update := range remaining {
				legacy[name] = expression.LegacyUpdate{Action: update.Action, Value: update.Value}
			}
			result := expression.ConvertAttributeUpdates(legacy)
			input.UpdateExpression = &result.Expression
			mergeNames(&input.ExpressionAttributeNames, result.Names)
			mergeValues(&input.ExpressionAttributeValues, result.Values)
		}
	}

	if err := validateNumbersInItem(input.ExpressionAttributeValues); err != nil {
		return nil, err
	}
	if err := validateValuesNoEmptySets(input.ExpressionAttributeValues); err != nil {
		return nil, err
	}
	if err := validateExpressionNotEmpty("ConditionExpression", input.ConditionExpression); err != nil {
		return nil, err
	}
	if err := validateExpressionNotEmpty("UpdateExpression", input.UpdateExpression); err != nil {
		return nil, err
	}

	set := expression.NewPlaceholderSet()
	var condition expression.Expr
	if input.ConditionExpression != nil {
		condition, err = expression.ParseCondition(*input.ConditionExpression)
		if err != nil {
			return nil, expressionError(err)
		}
		set.CollectExpr(condition)
	}
	var parsedUpdate *expression.UpdateExpression
	if input.UpdateExpression != nil {
		parsedUpdate, err = expression.ParseUpdate(*input.UpdateExpression)
		if err != nil {
			return nil, expressionError(err)
		}
		set.CollectUpdate(parsedUpdate)
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
	if parsedUpdate != nil {
		if err := validateUpdatePaths(parsedUpdate, table.KeySchema, input.ExpressionAttributeNames); err != nil {
			return nil, err
		}
	}

	if condition != nil {
		var conditionTarget dynamo.Item
		if exists {
			conditionTarget = existing
		}
		if err := p.checkCondition(condition, conditionTarget, input.ExpressionAttributeNames,
			input.ExpressionAttributeValues, input.ReturnValuesOnConditionCheckFailure); err != nil {
			return nil, err
		}
	}

	// Subtractive-only updates (no SET, no ADD) against a missing item do
	// not create it.
	subtractiveOnly := false
	if input.UpdateExpression != nil {
		upper := strings.ToUpper(strings.TrimSpace(*input.UpdateExpression))
		subtractiveOnly = !strings.Contains(upper, "SET ") && !strings.Contains(upper, "ADD ")
	}

	if parsedUpdate != nil {
		ctx := &expression.EvalContext{
			Item:   item,
			Names:  input.ExpressionAttributeNames,
			Values: input.ExpressionAttributeValues,
		}
		item, err = ctx.ApplyUpdate(parsedUpdate)
		if err != nil {
			return nil, expressionError(err)
		}
	}

	if !exists && subtractiveOnly && itemHasOnlyKeyAttrs(item, table.KeySchema) {
		return &UpdateItemOutput{}, nil
	}

	if err := validateItemSize(item); err != nil {
		return nil, err
	}

	old, existed, err := table.Storage.PutItem(item)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	oldForReturn := old
	if !existed && exists {
		oldForReturn = existing
	}

	attributes := computeUpdateReturnValues(
		input.ReturnValues, oldForReturn, item, table.KeySchema, parsedUpdate, input.ExpressionAttributeNames)
	return &UpdateItemOutput{Attributes: attributes}, nil
}

// checkCondition evaluates a condition against the current item (empty map
// when absent), raising ConditionalCheckFailed on false.
func (p *Provider) checkCondition(condition expression.Expr, existing dynamo.Item, names map[string]string, values map[string]dynamo.AttributeValue, returnValuesOnFailure string) error {
	target := existing
	if target == nil {
		target = dynamo.Item{}
	}
	ctx := &expression.EvalContext{Item: target, Names: names, Values: values}
	ok, err := ctx.Evaluate(condition)
	if err != nil {
		return expressionError(err)
	}
	if !ok {
		condErr := apperrors.NewConditionalCheckFailedError()
		if returnValuesOnFailure == "ALL_OLD" && existing != nil {
			condErr = condErr.WithItem(existing)
		}
		return condErr
	}
	return nil
}

// rewriteExpected translates the Expected map into a ConditionExpression
// and merges the synthesized placeholders into the request. User-supplied
// placeholders win on collision.
func (p *Provider) rewriteExpected(expected map[string]ExpectedAttributeValue, conditionalOperator string, condition **string, names *map[string]string, values *map[string]dynamo.AttributeValue) {
	legacy := map[string]expression.LegacyExpected{}
	for name, exp := range expected {
		legacy[name] = expression.LegacyExpected{
			Exists:             exp.Exists,
			Value:              exp.Value,
			ComparisonOperator: exp.ComparisonOperator,
			AttributeValueList: exp.AttributeValueList,
		}
	}
	result := expression.ConvertExpected(legacy, conditionalOperator)
	*condition = &result.Expression
	mergeNames(names, result.Names)
	mergeValues(values, result.Values)
}

func mergeNames(target *map[string]string, source map[string]string) {
	if *target == nil {
		*target = map[string]string{}
	}
	for k, v := range source {
		if _, exists := (*target)[k]; !exists {
			(*target)[k] = v
		}
	}
}

func mergeValues(target *map[string]dynamo.AttributeValue, source map[string]dynamo.AttributeValue) {
	if *target == nil {
		*target = map[string]dynamo.AttributeValue{}
	}
	for k, v := range source {
		if _, exists := (*target)[k]; !exists {
			(*target)[k] = v
		}
	}
}

// applyLegacyListAdds applies AttributeUpdates ADD actions carrying list
// values directly to the item (legacy list append).
func applyLegacyListAdds(item dynamo.Item, updates map[string]AttributeValueUpdate) error {
	for _, name := range sortedMapKeys(updates) {
		update := updates[name]
		if update.Action != "ADD" || update.Value == nil {
			continue
		}
		newItems, isList := update.Value.ListValue()
		if !isList {
			continue
		}
		existing, ok := item[name]
		if !ok {
			item[name] = *update.Value
			continue
		}
		existingList, isExistingList := existing.ListValue()
		if !isExistingList {
			return apperrors.NewValidationErrorf(
				"Type mismatch for ADD; operator type: L, existing type: %s", existing.AttrType())
		}
		merged := make([]dynamo.AttributeValue, 0, len(existingList)+len(newItems))
		merged = append(merged, existingList...)
		merged = append(merged, newItems...)
		item[name] = dynamo.List(merged)
	}
	return nil
}

// pruneLegacyListAdds returns the AttributeUpdates entries that still need
// expression translation after list adds were applied directly.
func pruneLegacyListAdds(updates map[string]AttributeValueUpdate) map[string]AttributeValueUpdate {
	remaining := map[string]AttributeValueUpdate{}
	for name, update := range updates {
		if update.Action == "ADD" && update.Value != nil {
			if _, isList := update.Value.ListValue(); isList {
				continue
			}
		}
		remaining[name] = update
	}
	return remaining
}

func itemHasOnlyKeyAttrs(item dynamo.Item, schema dynamo.KeySchema) bool {
	for name := range item {
		if !schema.IsKeyAttribute(name) {
			return false
		}
	}
	return true
}
