package dynamo

import (
	"strings"

	"localaws/domain/dynamo"
	"localaws/domain/dynamo/expression"
	"localaws/infrastructure/persistence/memory"
	apperrors "localaws/pkg/errors"
)

// validateKeyConditionExpr walks a parsed KeyConditionExpression rejecting
// the constructs the grammar forbids there: OR, NOT, IN, <> on the sort
// key, functions other than begins_with, non-key or nested paths, multiple
// conditions per key, and non-equality partition conditions.
func validateKeyConditionExpr(expr expression.Expr, schema dynamo.KeySchema, names map[string]string) error {
	pkCount, skCount := 0, 0
	if err := collectKeyConditionRefs(expr, schema, names, &pkCount, &skCount); err != nil {
		return err
	}
	if pkCount == 0 {
		return apperrors.NewValidationErrorf(
			"Query condition missed key schema element: %s", schema.Partition.Name)
	}
	if pkCount > 1 || skCount > 1 {
		return apperrors.NewValidationError(apperrors.MsgOneConditionPerKey)
	}
	return nil
}

func collectKeyConditionRefs(expr expression.Expr, schema dynamo.KeySchema, names map[string]string, pkCount, skCount *int) error {
	switch e := expr.(type) {
	case expression.CompareExpr:
		for _, operand := range []expression.Operand{e.Left, e.Right} {
			resolved, nested, isPath := keyConditionPathName(operand, names)
			if !isPath {
				continue
			}
			if err := validateKeyConditionPath(resolved, nested, schema); err != nil {
				return err
			}
			if resolved == schema.Partition.Name {
				if e.Op != expression.OpEq {
					return apperrors.NewValidationError("Query key condition not supported")
				}
				*pkCount++
			} else if schema.Sort != nil && resolved == schema.Sort.Name {
				if e.Op == expression.OpNe {
					return apperrors.NewValidationError("Unsupported operator on KeyConditionExpression: operator: <>")
				}
				*skCount++
			}
		}
		return nil
	case expression.BetweenExpr:
		resolved, nested, isPath := keyConditionPathName(e.Value, names)
		if isPath {
			if err := validateKeyConditionPath(resolved, nested, schema); err != nil {
				return err
			}
			if resolved == schema.Partition.Name {
				return apperrors.NewValidationError("Query key condition not supported")
			}
			*skCount++
		}
		return nil
	case expression.InExpr:
		return apperrors.NewValidationError("Unsupported operator on KeyConditionExpression: operator: IN")
	case expression.LogicalExpr:
		if e.Op == expression.OpOr {
			return apperrors.NewValidationError("Unsupported operator in KeyConditionExpression: OR")
		}
		if err := collectKeyConditionRefs(e.Left, schema, names, pkCount, skCount); err != nil {
			return err
		}
		return collectKeyConditionRefs(e.Right, schema, names, pkCount, skCount)
	case expression.NotExpr:
		return apperrors.NewValidationError("Unsupported operator in KeyConditionExpression: NOT")
	case expression.FunctionExpr:
		if e.Name != expression.FnBeginsWith {
			return apperrors.NewValidationErrorf("Unsupported function in KeyConditionExpression: %s", e.Name)
		}
		resolved, nested, isPath := keyConditionPathName(e.Args[0], names)
		if isPath {
			if err := validateKeyConditionPath(resolved, nested, schema); err != nil {
				return err
			}
			if resolved == schema.Partition.Name {
				return apperrors.NewValidationError("Query key condition not supported")
			}
			*skCount++
		}
		return nil
	}
	return nil
}

// keyConditionPathName resolves a path operand's name, flagging nested
// paths. The third return is false for value operands.
func keyConditionPathName(operand expression.Operand, names map[string]string) (string, bool, bool) {
	if operand.Kind != expression.OperandPath {
		return "", false, false
	}
	if len(operand.Path.Elements) > 1 {
		return "", true, true
	}
	name := operand.Path.Elements[0].Name
	if strings.HasPrefix(name, "#") {
		if resolved, ok := names[name]; ok {
			name = resolved
		}
	}
	return name, false, true
}

func validateKeyConditionPath(resolved string, nested bool, schema dynamo.KeySchema) error {
	if nested {
		return apperrors.NewValidationError(apperrors.MsgKeyConditionNoNestedPaths)
	}
	if !schema.IsKeyAttribute(resolved) {
		return apperrors.NewValidationErrorf(
			"Query condition missed key schema element: %s", schema.Partition.Name)
	}
	return nil
}

// extractKeyCondition pulls the partition value and optional sort condition
// out of a validated key condition expression. Accepted shapes: `pk = :v`
// alone, or `pk = :v AND <sortCond>` in either operand order. A key on the
// right of an ordered comparison flips the operator.
func extractKeyCondition(expr expression.Expr, schema dynamo.KeySchema, names map[string]string, values map[string]dynamo.AttributeValue) (dynamo.SortKey, *memory.SortCondition, error) {
	switch e := expr.(type) {
	case expression.CompareExpr:
		if e.Op != expression.OpEq {
			return dynamo.SortKey{}, nil, apperrors.NewValidationError(apperrors.MsgKeyConditionNeedsEquality)
		}
		pkVal, err := resolveKeyEquality(e.Left, e.Right, schema.Partition.Name, names, values)
		if err != nil {
			return dynamo.SortKey{}, nil, err
		}
		pk, err := keyValueToSortKey(pkVal, schema.Partition)
		if err != nil {
			return dynamo.SortKey{}, nil, err
		}
		return pk, nil, nil
	case expression.LogicalExpr:
		if e.Op != expression.OpAnd {
			return dynamo.SortKey{}, nil, apperrors.NewValidationError(apperrors.MsgKeyConditionNeedsEquality)
		}
		if pk, _, err := extractKeyCondition(e.Left, schema, names, values); err == nil {
			cond, err := extractSortCondition(e.Right, schema, names, values)
			if err != nil {
				return dynamo.SortKey{}, nil, err
			}
			return pk, cond, nil
		}
		if pk, _, err := extractKeyCondition(e.Right, schema, names, values); err == nil {
			cond, err := extractSortCondition(e.Left, schema, names, values)
			if err != nil {
				return dynamo.SortKey{}, nil, err
			}
			return pk, cond, nil
		}
		return dynamo.SortKey{}, nil, apperrors.NewValidationError(apperrors.MsgKeyConditionNeedsEquality)
	default:
		return dynamo.SortKey{}, nil, apperrors.NewValidationError(apperrors.MsgKeyConditionNeedsEquality)
	}
}

// extractSortCondition converts one condition node into a storage-level
// sort bound, validating value types against the sort key schema.
func extractSortCondition(expr expression.Expr, schema dynamo.KeySchema, names map[string]string, values map[string]dynamo.AttributeValue) (*memory.SortCondition, error) {
	if schema.Sort == nil {
		return nil, nil
	}
	sortAttr := *schema.Sort

	switch e := expr.(type) {
	case expression.CompareExpr:
		val, op, err := resolveSortComparison(e.Left, e.Right, sortAttr.Name, names, values, e.Op)
		if err != nil {
			return nil, err
		}
		if op == expression.OpNe {
			return nil, apperrors.NewValidationError("Sort key condition does not support <> operator")
		}
		key, err := keyValueToSortKey(val, sortAttr)
		if err != nil {
			return nil, err
		}
		return &memory.SortCondition{Op: compareOpToSortOp(op), Value: key}, nil
	case expression.BetweenExpr:
		low, err := resolveValueOperand(e.Low, values)
		if err != nil {
			return nil, err
		}
		high, err := resolveValueOperand(e.High, values)
		if err != nil {
			return nil, err
		}
		lowKey, err := keyValueToSortKey(low, sortAttr)
		if err != nil {
			return nil, err
		}
		highKey, err := keyValueToSortKey(high, sortAttr)
		if err != nil {
			return nil, err
		}
		return &memory.SortCondition{Op: memory.SortBetween, Value: lowKey, Upper: highKey}, nil
	case expression.FunctionExpr:
		if e.Name != expression.FnBeginsWith || len(e.Args) != 2 {
			return nil, nil
		}
		prefix, err := resolveValueOperand(e.Args[1], values)
		if err != nil {
			return nil, err
		}
		switch prefix.AttrType() {
		case dynamo.TypeString, dynamo.TypeBinary:
			key, err := dynamo.NewSortKey(prefix)
			if err != nil {
				return nil, apperrors.NewValidationError(err.Error())
			}
			return &memory.SortCondition{Op: memory.SortBeginsWith, Value: key}, nil
		default:
			return nil, apperrors.NewValidationError("begins_with requires a string or binary argument")
		}
	}
	return nil, nil
}

func compareOpToSortOp(op expression.CompareOp) memory.SortConditionOp {
	switch op {
	case expression.OpEq:
		return memory.SortEq
	case expression.OpLt:
		return memory.SortLt
	case expression.OpLe:
		return memory.SortLe
	case expression.OpGt:
		return memory.SortGt
	default:
		return memory.SortGe
	}
}

// resolveKeyEquality finds which side of an equality is the key path and
// resolves the other side's value reference.
func resolveKeyEquality(left, right expression.Operand, keyName string, names map[string]string, values map[string]dynamo.AttributeValue) (dynamo.AttributeValue, error) {
	if isKeyPath(left, keyName, names) {
		return resolveValueOperand(right, values)
	}
	if isKeyPath(right, keyName, names) {
		return resolveValueOperand(left, values)
	}
	return dynamo.AttributeValue{}, apperrors.NewValidationErrorf(
		"KeyConditionExpression must reference key attribute '%s'", keyName)
}

// resolveSortComparison resolves a sort comparison's value, flipping the
// operator when the key sits on the right-hand side.
func resolveSortComparison(left, right expression.Operand, keyName string, names map[string]string, values map[string]dynamo.AttributeValue, op expression.CompareOp) (dynamo.AttributeValue, expression.CompareOp, error) {
	if isKeyPath(left, keyName, names) {
		val, err := resolveValueOperand(right, values)
		return val, op, err
	}
	if isKeyPath(right, keyName, names) {
		val, err := resolveValueOperand(left, values)
		return val, op.Flip(), err
	}
	return dynamo.AttributeValue{}, op, apperrors.NewValidationErrorf(
		"KeyConditionExpression must reference key attribute '%s'", keyName)
}

func isKeyPath(operand expression.Operand, keyName string, names map[string]string) bool {
	if operand.Kind != expression.OperandPath || len(operand.Path.Elements) != 1 {
		return false
	}
	elem := operand.Path.Elements[0]
	if elem.Kind != expression.ElementAttribute {
		return false
	}
	name := elem.Name
	if strings.HasPrefix(name, "#") {
		if resolved, ok := names[name]; ok {
			name = resolved
		}
	}
	return name == keyName
}

func resolveValueOperand(operand expression.Operand, values map[string]dynamo.AttributeValue) (dynamo.AttributeValue, error) {
	if operand.Kind != expression.OperandValue {
		return dynamo.AttributeValue{}, apperrors.NewValidationError("Expected a value reference (:value) in key condition")
	}
	val, ok := values[operand.Ref]
	if !ok {
		return dynamo.AttributeValue{}, apperrors.NewValidationErrorf(
			"Value %s not found in ExpressionAttributeValues", operand.Ref)
	}
	return val, nil
}

// keyValueToSortKey validates the value's type against the key attribute
// and lowers it to its sortable projection.
func keyValueToSortKey(val dynamo.AttributeValue, attr dynamo.KeyAttribute) (dynamo.SortKey, error) {
	if val.AttrType() != attr.Type {
		return dynamo.SortKey{}, apperrors.NewValidationErrorf(
			"Condition parameter type does not match schema type for key attribute '%s'", attr.Name)
	}
	key, err := dynamo.NewSortKey(val)
	if err != nil {
		return dynamo.SortKey{}, apperrors.NewValidationError(err.Error())
	}
	return key, nil
}
