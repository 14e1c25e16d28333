package dynamo

import (
	"fmt"
	"sort"
	"strings"

	"localaws/domain/dynamo"
	"localaws/domain/dynamo/expression"
	apperrors "localaws/pkg/errors"
)

// Post-mutation items may not exceed 400 KiB.
const maxItemSizeBytes = 400 * 1024

const maxTotalSegments = 1000000

// validateTableName enforces DynamoDB's table name rules: 3-255 characters
// from [a-zA-Z0-9._-].
func validateTableName(name string) error {
	if len(name) < 3 || len(name) > 255 {
		return apperrors.NewValidationErrorf(
			"TableName must be at least 3 characters long and at most 255 characters long, but was %d characters",
			len(name))
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '.' || c == '_' || c == '-') {
			return apperrors.NewValidationErrorf(
				"1 validation error detected: Value '%s' at 'tableName' failed to satisfy constraint: Member must satisfy regular expression pattern: [a-zA-Z0-9_.-]+",
				name)
		}
	}
	return nil
}

// validateReturnValues restricts ReturnValues to the modes an operation
// supports.
func validateReturnValues(rv string, allowed ...string) error {
	if rv == "" {
		return nil
	}
	for _, a := range allowed {
		if rv == a {
			return nil
		}
	}
	return apperrors.NewValidationErrorf("Return values set to invalid value for this operation: %s", rv)
}

func validateReturnValuesOnConditionCheckFailure(rv string) error {
	if rv == "" || rv == "NONE" || rv == "ALL_OLD" {
		return nil
	}
	return apperrors.NewValidationErrorf(
		"1 validation error detected: Value '%s' at 'returnValuesOnConditionCheckFailure' failed to satisfy constraint: Member must satisfy enum value set: [NONE, ALL_OLD]",
		rv)
}

// validateKeyNotEmpty rejects empty string or binary values in key
// attributes.
func validateKeyNotEmpty(schema dynamo.KeySchema, item dynamo.Item) error {
	for _, ka := range keyAttributes(schema) {
		val, ok := item[ka.Name]
		if !ok {
			continue
		}
		if s, isS := val.StringValue(); isS && s == "" {
			return emptyKeyError(ka.Name)
		}
		if b, isB := val.BinaryValue(); isB && len(b) == 0 {
			return emptyKeyError(ka.Name)
		}
	}
	return nil
}

func emptyKeyError(name string) error {
	return apperrors.NewValidationErrorf(
		"One or more parameter values are not valid. The AttributeValue for a key attribute cannot contain an empty string value. Key: %s",
		name)
}

// validateKeyOnlyHasKeyAttrs rejects key maps carrying attributes outside
// the key schema.
func validateKeyOnlyHasKeyAttrs(schema dynamo.KeySchema, key dynamo.Item) error {
	for name := range key {
		if !schema.IsKeyAttribute(name) {
			return apperrors.NewValidationErrorf(
				"One or more parameter values are not valid. Number of user supplied keys don't match number of table schema keys. Keys provided: [%s], schema keys: [%s]",
				formatKeyNames(key), formatSchemaKeyNames(schema))
		}
	}
	return nil
}

// validateKeyTypes checks provided key values against the declared scalar
// types.
func validateKeyTypes(schema dynamo.KeySchema, key dynamo.Item) error {
	for _, ka := range keyAttributes(schema) {
		val, ok := key[ka.Name]
		if !ok {
			continue
		}
		if val.AttrType() != ka.Type {
			return apperrors.NewValidationErrorf(
				"The provided key element does not match the schema. Expected type %s for key column %s, got type %s",
				ka.Type, ka.Name, val.AttrType())
		}
	}
	return nil
}

func keyAttributes(schema dynamo.KeySchema) []dynamo.KeyAttribute {
	attrs := []dynamo.KeyAttribute{schema.Partition}
	if schema.Sort != nil {
		attrs = append(attrs, *schema.Sort)
	}
	return attrs
}

func formatKeyNames(key dynamo.Item) string {
	names := make([]string, 0, len(key))
	for name := range key {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func formatSchemaKeyNames(schema dynamo.KeySchema) string {
	names := []string{schema.Partition.Name}
	if schema.Sort != nil {
		names = append(names, schema.Sort.Name)
	}
	return strings.Join(names, ", ")
}

// validateNumbersInItem recursively validates every N value in the map.
func validateNumbersInItem(item map[string]dynamo.AttributeValue) error {
	for _, val := range item {
		if err := validateNumbersInValue(val); err != nil {
			return err
		}
	}
	return nil
}

func validateNumbersInValue(val dynamo.AttributeValue) error {
	switch val.AttrType() {
	case dynamo.TypeNumber:
		n, _ := val.NumberValue()
		return numberError(dynamo.ValidateNumber(n))
	case dynamo.TypeNumberSet:
		ns, _ := val.NumberSetValue()
		for _, n := range ns {
			if err := numberError(dynamo.ValidateNumber(n)); err != nil {
				return err
			}
		}
	case dynamo.TypeList:
		l, _ := val.ListValue()
		for _, v := range l {
			if err := validateNumbersInValue(v); err != nil {
				return err
			}
		}
	case dynamo.TypeMap:
		m, _ := val.MapValue()
		for _, v := range m {
			if err := validateNumbersInValue(v); err != nil {
				return err
			}
		}
	}
	return nil
}

func numberError(result dynamo.NumberValidationError) error {
	switch result {
	case dynamo.NumberOK:
		return nil
	case dynamo.NumberTooPrecise:
		return apperrors.NewValidationError("Attempting to store more than 38 significant digits in a Number")
	case dynamo.NumberOverflow:
		return apperrors.NewValidationError(apperrors.MsgNumberOverflow)
	case dynamo.NumberUnderflow:
		return apperrors.NewValidationError(apperrors.MsgNumberUnderflow)
	default:
		return apperrors.NewValidationError(apperrors.MsgNumberMalformed)
	}
}

// validateItemNoEmptySets rejects empty SS/NS/BS anywhere in an item,
// including nested in lists and maps.
func validateItemNoEmptySets(item dynamo.Item) error {
	for _, val := range item {
		if containsEmptySet(val) {
			return apperrors.NewValidationError(
				"One or more parameter values were invalid: An number of elements of the input set is empty")
		}
	}
	return nil
}

func containsEmptySet(val dynamo.AttributeValue) bool {
	if val.IsSet() && val.SetLen() == 0 {
		return true
	}
	switch val.AttrType() {
	case dynamo.TypeList:
		l, _ := val.ListValue()
		for _, v := range l {
			if containsEmptySet(v) {
				return true
			}
		}
	case dynamo.TypeMap:
		m, _ := val.MapValue()
		for _, v := range m {
			if containsEmptySet(v) {
				return true
			}
		}
	}
	return false
}

// validateValuesNoEmptySets rejects empty sets in ExpressionAttributeValues.
func validateValuesNoEmptySets(values map[string]dynamo.AttributeValue) error {
	for key, val := range values {
		if val.IsSet() && val.SetLen() == 0 {
			return apperrors.NewValidationErrorf(
				"One or more parameter values are not valid. The AttributeValue for a member of the ExpressionAttributeValues (%s) contains an empty set",
				key)
		}
	}
	return nil
}

// validateItemSize enforces the 400 KiB item cap.
func validateItemSize(item dynamo.Item) error {
	if item.Size() > maxItemSizeBytes {
		return apperrors.NewValidationErrorf(
			"Item size has exceeded the maximum allowed size of %d bytes", maxItemSizeBytes)
	}
	return nil
}

// validateExpressionNotEmpty rejects an empty expression string for the
// named parameter.
func validateExpressionNotEmpty(param string, expr *string) error {
	if expr != nil && strings.TrimSpace(*expr) == "" {
		return apperrors.NewEmptyExpressionError(param)
	}
	return nil
}

// validateConditionalOperator permits ConditionalOperator only alongside a
// non-empty Expected map.
func validateConditionalOperator(op string, expected map[string]ExpectedAttributeValue) error {
	if op != "" && len(expected) == 0 {
		return apperrors.NewValidationError(apperrors.MsgConditionalOperatorNeedsExpected)
	}
	return nil
}

// validateExpected checks each Expected entry for self-consistency and
// legal ComparisonOperator usage.
func validateExpected(expected map[string]ExpectedAttributeValue) error {
	for _, attrName := range sortedMapKeys(expected) {
		exp := expected[attrName]
		switch {
		case exp.ComparisonOperator != "":
			if exp.Value != nil || exp.Exists != nil {
				return apperrors.NewValidationErrorf(
					"One or more parameter values were invalid: Value or Exists cannot be used with ComparisonOperator for attribute (%s)",
					attrName)
			}
			if err := validateComparisonOperator(exp.ComparisonOperator, exp.AttributeValueList); err != nil {
				return err
			}
		case exp.Value == nil && exp.Exists == nil:
			return apperrors.NewValidationErrorf(
				"One or more parameter values were invalid: Value or ComparisonOperator must be used in Expected for attribute (%s)",
				attrName)
		case exp.Exists != nil && *exp.Exists && exp.Value == nil:
			return apperrors.NewValidationErrorf(
				"One or more parameter values were invalid: Exists is set to TRUE for attribute (%s), Value must also be set",
				attrName)
		case exp.Exists != nil && !*exp.Exists && exp.Value != nil:
			return apperrors.NewValidationErrorf(
				"One or more parameter values were invalid: Value cannot be used when Exists is set to FALSE for attribute (%s)",
				attrName)
		}
	}
	return nil
}

// validateComparisonOperator checks operand counts and value types per
// operator.
func validateComparisonOperator(op string, valueList []dynamo.AttributeValue) error {
	count := len(valueList)
	switch op {
	case "EQ", "NE", "LT", "LE", "GT", "GE", "BEGINS_WITH":
		if count != 1 {
			return comparisonArgCountError(op)
		}
	case "CONTAINS", "NOT_CONTAINS":
		if count != 1 {
			return comparisonArgCountError(op)
		}
		if !isScalar(valueList[0]) {
			return apperrors.NewValidationErrorf(
				"One or more parameter values were invalid: ComparisonOperator %s is not valid for %s AttributeValue type",
				op, valueList[0].AttrType())
		}
	case "BETWEEN":
		if count != 2 {
			return comparisonArgCountError(op)
		}
	case "IN":
		if count == 0 {
			return comparisonArgCountError(op)
		}
		for _, v := range valueList {
			if !isScalar(v) {
				return apperrors.NewValidationError(
					"One or more parameter values were invalid: ComparisonOperator IN is not valid for non-scalar AttributeValue type")
			}
		}
		first := valueList[0].AttrType()
		for _, v := range valueList[1:] {
			if v.AttrType() != first {
				return apperrors.NewValidationError(
					"One or more parameter values were invalid: AttributeValues inside AttributeValueList must all be of the same type")
			}
		}
	case "NULL", "NOT_NULL":
		if count != 0 {
			return comparisonArgCountError(op)
		}
	default:
		return apperrors.NewValidationErrorf(
			"1 validation error detected: Value '%s' at 'comparisonOperator' failed to satisfy constraint: Member must satisfy enum value set: [IN, NULL, BETWEEN, LT, NOT_CONTAINS, EQ, GT, NOT_NULL, NE, LE, BEGINS_WITH, GE, CONTAINS]",
			op)
	}
	return nil
}

func comparisonArgCountError(op string) error {
	return apperrors.NewValidationErrorf(
		"One or more parameter values were invalid: Invalid number of argument(s) for the %s ComparisonOperator", op)
}

func isScalar(v dynamo.AttributeValue) bool {
	switch v.AttrType() {
	case dynamo.TypeString, dynamo.TypeNumber, dynamo.TypeBinary:
		return true
	}
	return false
}

// validateNoDuplicateAttributesToGet rejects repeated names.
func validateNoDuplicateAttributesToGet(attrs []string) error {
	seen := map[string]bool{}
	for _, attr := range attrs {
		if seen[attr] {
			return apperrors.NewValidationErrorf(
				"One or more parameter values are not valid. Duplicate value in AttributesToGet: %s", attr)
		}
		seen[attr] = true
	}
	return nil
}

// validateNoUnusedNames rejects ExpressionAttributeNames entries no parsed
// expression referenced.
func validateNoUnusedNames(provided map[string]string, used map[string]bool) error {
	var unused []string
	for name := range provided {
		if !used[name] {
			unused = append(unused, name)
		}
	}
	if len(unused) > 0 {
		sort.Strings(unused)
		return apperrors.NewValidationErrorf(
			"Value provided in ExpressionAttributeNames unused in expressions: keys: {%s}",
			strings.Join(unused, ", "))
	}
	return nil
}

// validateNoUnusedValues rejects ExpressionAttributeValues entries no
// parsed expression referenced.
func validateNoUnusedValues(provided map[string]dynamo.AttributeValue, used map[string]bool) error {
	var unused []string
	for name := range provided {
		if !used[name] {
			unused = append(unused, name)
		}
	}
	if len(unused) > 0 {
		sort.Strings(unused)
		return apperrors.NewValidationErrorf(
			"Value provided in ExpressionAttributeValues unused in expressions: keys: {%s}",
			strings.Join(unused, ", "))
	}
	return nil
}

// validateNoUnresolvedNames rejects #references used by expressions but
// missing from ExpressionAttributeNames.
func validateNoUnresolvedNames(provided map[string]string, used map[string]bool) error {
	var missing []string
	for name := range used {
		if strings.HasPrefix(name, "#") {
			if _, ok := provided[name]; !ok {
				missing = append(missing, name)
			}
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return apperrors.NewValidationErrorf(
			"Value provided in ExpressionAttributeNames unused in expressions: unresolved attribute name reference: %s",
			strings.Join(missing, ", "))
	}
	return nil
}

// validateSelect checks Select against the projection-related parameters.
func validateSelect(sel string, hasProjection, hasAttributesToGet bool) error {
	switch sel {
	case "":
		return nil
	case "ALL_PROJECTED_ATTRIBUTES":
		return apperrors.NewValidationError(apperrors.MsgAllProjectedOnBaseTable)
	case "SPECIFIC_ATTRIBUTES":
		if !hasProjection && !hasAttributesToGet {
			return apperrors.NewValidationError(apperrors.MsgSpecificAttributesNeedsProjection)
		}
	case "ALL_ATTRIBUTES", "COUNT":
		if hasAttributesToGet {
			return apperrors.NewValidationErrorf(
				"Cannot specify the AttributesToGet when choosing to get %s results", sel)
		}
		if hasProjection {
			return apperrors.NewValidationErrorf(
				"Cannot specify the ProjectionExpression when choosing to get %s results", sel)
		}
	default:
		return apperrors.NewValidationErrorf(
			"1 validation error detected: Value '%s' at 'select' failed to satisfy constraint: Member must satisfy enum value set: [SPECIFIC_ATTRIBUTES, COUNT, ALL_ATTRIBUTES, ALL_PROJECTED_ATTRIBUTES]",
			sel)
	}
	return nil
}

// validateFilterNoKeyAttrs rejects filter expressions that reference key
// attributes.
func validateFilterNoKeyAttrs(expr expression.Expr, schema dynamo.KeySchema, names map[string]string) error {
	refs := collectTopLevelNames(expr)
	for _, ref := range refs {
		resolved := ref
		if strings.HasPrefix(ref, "#") {
			r, ok := names[ref]
			if !ok {
				continue
			}
			resolved = r
		}
		if schema.IsKeyAttribute(resolved) {
			return apperrors.NewValidationErrorf("Filter Expression can not contain key attribute %s", resolved)
		}
	}
	return nil
}

// collectTopLevelNames walks a condition collecting the first attribute
// name of every path operand.
func collectTopLevelNames(expr expression.Expr) []string {
	var out []string
	var walkOperand func(o expression.Operand)
	walkOperand = func(o expression.Operand) {
		if o.Kind == expression.OperandPath || o.Kind == expression.OperandSize {
			if len(o.Path.Elements) > 0 && o.Path.Elements[0].Kind == expression.ElementAttribute {
				out = append(out, o.Path.Elements[0].Name)
			}
		}
	}
	var walk func(e expression.Expr)
	walk = func(e expression.Expr) {
		switch n := e.(type) {
		case expression.CompareExpr:
			walkOperand(n.Left)
			walkOperand(n.Right)
		case expression.BetweenExpr:
			walkOperand(n.Value)
			walkOperand(n.Low)
			walkOperand(n.High)
		case expression.InExpr:
			walkOperand(n.Value)
			for _, o := range n.List {
				walkOperand(o)
			}
		case expression.LogicalExpr:
			walk(n.Left)
			walk(n.Right)
		case expression.NotExpr:
			walk(n.Inner)
		case expression.FunctionExpr:
			for _, o := range n.Args {
				walkOperand(o)
			}
		}
	}
	walk(expr)
	return out
}

// validateUpdatePaths rejects updates that target key attributes or carry
// overlapping/conflicting document paths.
func validateUpdatePaths(update *expression.UpdateExpression, schema dynamo.KeySchema, names map[string]string) error {
	ctx := &expression.EvalContext{Names: names}
	paths := update.TargetPaths()

	for _, path := range paths {
		if len(path.Elements) != 1 || path.Elements[0].Kind != expression.ElementAttribute {
			continue
		}
		name := path.Elements[0].Name
		if strings.HasPrefix(name, "#") {
			if resolved, ok := names[name]; ok {
				name = resolved
			}
		}
		if schema.IsKeyAttribute(name) {
			return apperrors.NewValidationErrorf(
				"Cannot update attribute (%s). This attribute is part of the key", name)
		}
	}

	resolved := make([]expression.AttributePath, len(paths))
	for i, path := range paths {
		r, err := ctx.ResolvePathNames(path)
		if err != nil {
			// Unresolved placeholders are reported by placeholder-usage
			// validation; fall back to the raw tokens here.
			r = path
		}
		resolved[i] = r
	}

	for i := 0; i < len(resolved); i++ {
		for j := i + 1; j < len(resolved); j++ {
			overlap, conflict := comparePaths(resolved[i], resolved[j])
			if overlap {
				return apperrors.NewValidationError(
					"Invalid UpdateExpression: Two document paths overlap with each other; must remove or rewrite one of these paths")
			}
			if conflict {
				return apperrors.NewValidationError(
					"Invalid UpdateExpression: Two document paths conflict with each other; must remove or rewrite one of these paths")
			}
		}
	}
	return nil
}

// comparePaths reports whether two resolved paths overlap (one is a prefix
// of the other) or conflict (dot vs index access at the same depth).
func comparePaths(a, b expression.AttributePath) (overlap, conflict bool) {
	minLen := len(a.Elements)
	if len(b.Elements) < minLen {
		minLen = len(b.Elements)
	}
	for i := 0; i < minLen; i++ {
		ea, eb := a.Elements[i], b.Elements[i]
		if ea.Kind != eb.Kind {
			return false, true
		}
		if ea.Kind == expression.ElementAttribute && ea.Name != eb.Name {
			return false, false
		}
		if ea.Kind == expression.ElementIndex && ea.Index != eb.Index {
			return false, false
		}
	}
	return true, false
}

// validateParallelScan checks the Segment/TotalSegments pair. Returns the
// effective (segment, totalSegments), with totalSegments zero when the scan
// is not parallel. The check that a resumed cursor maps to the requested
// segment is made by Scan, not here.
func validateParallelScan(input *ScanInput, exclusiveStart *dynamo.PrimaryKey) (int, int, error) {
	switch {
	case input.Segment != nil && input.TotalSegments != nil:
		seg, total := *input.Segment, *input.TotalSegments
		if total < 1 || total > maxTotalSegments {
			return 0, 0, apperrors.NewValidationErrorf(
				"1 validation error detected: Value '%d' at 'totalSegments' failed to satisfy constraint: Member must have value less than or equal to %d. The Segment parameter is required but was not present in the request when parameter TotalSegments is present",
				total, maxTotalSegments)
		}
		if seg < 0 || seg >= total {
			return 0, 0, apperrors.NewValidationErrorf(
				"The Segment parameter is zero-indexed and must be less than parameter TotalSegments. Segment: %d, TotalSegments: %d",
				seg, total)
		}
		return seg, total, nil
	case input.Segment != nil:
		return 0, 0, apperrors.NewValidationError(apperrors.MsgSegmentWithoutTotal)
	case input.TotalSegments != nil:
		return 0, 0, apperrors.NewValidationError(apperrors.MsgTotalWithoutSegment)
	default:
		return 0, 0, nil
	}
}

func sortedMapKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// expressionError wraps an expression failure as a ValidationException,
// keeping the expression package's message.
func expressionError(err error) error {
	if e, ok := err.(*expression.Error); ok {
		return apperrors.NewValidationError(e.Message)
	}
	return apperrors.NewValidationError(err.Error())
}

// projectionError wraps a projection parse failure with its parameter name.
func projectionError(err error) error {
	return apperrors.NewValidationErrorf("Invalid ProjectionExpression: %s", err.Error())
}

// batchWriteTooManyError renders the over-limit message for BatchWriteItem.
func batchWriteTooManyError(count int) error {
	return apperrors.NewValidationError(fmt.Sprintf(
		"Too many items in the BatchWriteItem request; the request length %d exceeds the limit of 25", count))
}
