package expression

import (
	"fmt"
	"sort"
	"strings"

	"localaws/domain/dynamo"
)

// Legacy parameter shapes. The provider maps its wire types onto these
// before translation.

// LegacyCondition is one entry of KeyConditions, QueryFilter or ScanFilter.
type LegacyCondition struct {
	ComparisonOperator string
	AttributeValueList []dynamo.AttributeValue
}

// LegacyExpected is one entry of the Expected map.
type LegacyExpected struct {
	Exists             *bool
	Value              *dynamo.AttributeValue
	ComparisonOperator string
	AttributeValueList []dynamo.AttributeValue
}

// LegacyUpdate is one entry of the AttributeUpdates map.
type LegacyUpdate struct {
	Action string
	Value  *dynamo.AttributeValue
}

// TranslationResult is a synthesized expression plus the fresh placeholder
// maps that make it self-contained. The placeholder prefixes are chosen so
// the maps never collide with user-supplied placeholders or with each other.
type TranslationResult struct {
	Expression string
	Names      map[string]string
	Values     map[string]dynamo.AttributeValue
}

// Placeholder prefixes per legacy parameter family. Each family gets its
// own prefix so that AttributeUpdates and Expected can coexist in one
// request.
const (
	prefixKeyConditionName  = "#lckc"
	prefixKeyConditionValue = ":lckv"
	prefixQueryFilterName   = "#lcqf"
	prefixQueryFilterValue  = ":lcqv"
	prefixScanFilterName    = "#lcsf"
	prefixScanFilterValue   = ":lcsv"
	prefixExpectedName      = "#lcexp"
	prefixExpectedValue     = ":lcexpv"
	prefixUpdateName        = "#lcattr"
	prefixUpdateValue       = ":lcval"
)

// ConvertKeyConditions translates a legacy KeyConditions map.
func ConvertKeyConditions(conditions map[string]LegacyCondition, conditionalOperator string) TranslationResult {
	return convertConditions(conditions, conditionalOperator, prefixKeyConditionName, prefixKeyConditionValue)
}

// ConvertQueryFilter translates a legacy QueryFilter map.
func ConvertQueryFilter(conditions map[string]LegacyCondition, conditionalOperator string) TranslationResult {
	return convertConditions(conditions, conditionalOperator, prefixQueryFilterName, prefixQueryFilterValue)
}

// ConvertScanFilter translates a legacy ScanFilter map.
func ConvertScanFilter(conditions map[string]LegacyCondition, conditionalOperator string) TranslationResult {
	return convertConditions(conditions, conditionalOperator, prefixScanFilterName, prefixScanFilterValue)
}

// ConvertAttributesToGet translates an AttributesToGet list into a
// projection expression. The legacy parameter only ever carried simple
// top-level names, so they are emitted directly.
func ConvertAttributesToGet(attrs []string) string {
	return strings.Join(attrs, ", ")
}

// convertConditions emits one fragment per attribute, sorted by attribute
// name for reproducible output, joined by AND unless the legacy
// ConditionalOperator asks for OR.
func convertConditions(conditions map[string]LegacyCondition, conditionalOperator, namePrefix, valPrefix string) TranslationResult {
	joiner := " AND "
	if conditionalOperator == "OR" {
		joiner = " OR "
	}
	result := TranslationResult{
		Names:  map[string]string{},
		Values: map[string]dynamo.AttributeValue{},
	}
	var parts []string
	counter := 0
	for _, attrName := range sortedKeys(conditions) {
		cond := conditions[attrName]
		namePlaceholder := fmt.Sprintf("%s%d", namePrefix, counter)
		result.Names[namePlaceholder] = attrName
		parts = append(parts, buildConditionFragment(
			namePlaceholder, cond.ComparisonOperator, cond.AttributeValueList,
			result.Values, counter, valPrefix))
		counter++
	}
	result.Expression = strings.Join(parts, joiner)
	return result
}

// ConvertExpected translates a legacy Expected map into a condition
// expression.
func ConvertExpected(expected map[string]LegacyExpected, conditionalOperator string) TranslationResult {
	joiner := " AND "
	if conditionalOperator == "OR" {
		joiner = " OR "
	}
	result := TranslationResult{
		Names:  map[string]string{},
		Values: map[string]dynamo.AttributeValue{},
	}
	var parts []string
	counter := 0
	for _, attrName := range sortedKeys(expected) {
		exp := expected[attrName]
		namePlaceholder := fmt.Sprintf("%s%d", prefixExpectedName, counter)
		result.Names[namePlaceholder] = attrName
		switch {
		case exp.ComparisonOperator != "":
			parts = append(parts, buildConditionFragment(
				namePlaceholder, exp.ComparisonOperator, exp.AttributeValueList,
				result.Values, counter, prefixExpectedValue))
		case exp.Value != nil:
			valPlaceholder := fmt.Sprintf("%s%d", prefixExpectedValue, counter)
			result.Values[valPlaceholder] = *exp.Value
			parts = append(parts, fmt.Sprintf("%s = %s", namePlaceholder, valPlaceholder))
		case exp.Exists != nil && !*exp.Exists:
			parts = append(parts, fmt.Sprintf("attribute_not_exists(%s)", namePlaceholder))
		default:
			parts = append(parts, fmt.Sprintf("attribute_exists(%s)", namePlaceholder))
		}
		counter++
	}
	result.Expression = strings.Join(parts, joiner)
	return result
}

// ConvertAttributeUpdates translates a legacy AttributeUpdates map into an
// update expression, partitioning actions into SET/REMOVE/ADD/DELETE
// clauses. PUT with no value is a no-op; DELETE with no value becomes
// REMOVE.
func ConvertAttributeUpdates(updates map[string]LegacyUpdate) TranslationResult {
	result := TranslationResult{
		Names:  map[string]string{},
		Values: map[string]dynamo.AttributeValue{},
	}
	var setParts, removeParts, addParts, deleteParts []string
	counter := 0
	for _, attrName := range sortedKeys(updates) {
		update := updates[attrName]
		namePlaceholder := fmt.Sprintf("%s%d", prefixUpdateName, counter)
		result.Names[namePlaceholder] = attrName

		action := update.Action
		if action == "" {
			action = "PUT"
		}
		switch action {
		case "PUT":
			if update.Value != nil {
				valPlaceholder := fmt.Sprintf("%s%d", prefixUpdateValue, counter)
				result.Values[valPlaceholder] = *update.Value
				setParts = append(setParts, fmt.Sprintf("%s = %s", namePlaceholder, valPlaceholder))
			}
		case "ADD":
			if update.Value != nil {
				valPlaceholder := fmt.Sprintf("%s%d", prefixUpdateValue, counter)
				result.Values[valPlaceholder] = *update.Value
				addParts = append(addParts, fmt.Sprintf("%s %s", namePlaceholder, valPlaceholder))
			}
		case "DELETE":
			if update.Value != nil {
				valPlaceholder := fmt.Sprintf("%s%d", prefixUpdateValue, counter)
				result.Values[valPlaceholder] = *update.Value
				deleteParts = append(deleteParts, fmt.Sprintf("%s %s", namePlaceholder, valPlaceholder))
			} else {
				removeParts = append(removeParts, namePlaceholder)
			}
		}
		counter++
	}

	var clauses []string
	if len(setParts) > 0 {
		clauses = append(clauses, "SET "+strings.Join(setParts, ", "))
	}
	if len(removeParts) > 0 {
		clauses = append(clauses, "REMOVE "+strings.Join(removeParts, ", "))
	}
	if len(addParts) > 0 {
		clauses = append(clauses, "ADD "+strings.Join(addParts, ", "))
	}
	if len(deleteParts) > 0 {
		clauses = append(clauses, "DELETE "+strings.Join(deleteParts, ", "))
	}
	result.Expression = strings.Join(clauses, " ")
	return result
}

// buildConditionFragment renders one legacy ComparisonOperator as an
// expression fragment, registering value placeholders as it goes.
//
// NULL and NOT_NULL keep their legacy meaning (attribute absent/present),
// and NOT_CONTAINS additionally requires the attribute to exist, matching
// the legacy API rather than the modern NOT contains(...) behavior.
func buildConditionFragment(namePlaceholder, op string, valueList []dynamo.AttributeValue, values map[string]dynamo.AttributeValue, counter int, valPrefix string) string {
	firstValue := func(placeholder string) {
		if len(valueList) > 0 {
			values[placeholder] = valueList[0]
		}
	}
	switch op {
	case "EQ", "NE", "LT", "LE", "GT", "GE":
		valPlaceholder := fmt.Sprintf("%s%d", valPrefix, counter)
		firstValue(valPlaceholder)
		return fmt.Sprintf("%s %s %s", namePlaceholder, legacyComparator(op), valPlaceholder)
	case "NULL":
		return fmt.Sprintf("attribute_not_exists(%s)", namePlaceholder)
	case "NOT_NULL":
		return fmt.Sprintf("attribute_exists(%s)", namePlaceholder)
	case "CONTAINS":
		valPlaceholder := fmt.Sprintf("%s%d", valPrefix, counter)
		firstValue(valPlaceholder)
		return fmt.Sprintf("contains(%s, %s)", namePlaceholder, valPlaceholder)
	case "NOT_CONTAINS":
		valPlaceholder := fmt.Sprintf("%s%d", valPrefix, counter)
		firstValue(valPlaceholder)
		return fmt.Sprintf("(attribute_exists(%s) AND NOT contains(%s, %s))", namePlaceholder, namePlaceholder, valPlaceholder)
	case "BEGINS_WITH":
		valPlaceholder := fmt.Sprintf("%s%d", valPrefix, counter)
		firstValue(valPlaceholder)
		return fmt.Sprintf("begins_with(%s, %s)", namePlaceholder, valPlaceholder)
	case "IN":
		inPlaceholders := make([]string, len(valueList))
		for i, v := range valueList {
			placeholder := fmt.Sprintf("%s%di%d", valPrefix, counter, i)
			values[placeholder] = v
			inPlaceholders[i] = placeholder
		}
		return fmt.Sprintf("%s IN (%s)", namePlaceholder, strings.Join(inPlaceholders, ", "))
	case "BETWEEN":
		lowPlaceholder := fmt.Sprintf("%s%dlo", valPrefix, counter)
		highPlaceholder := fmt.Sprintf("%s%dhi", valPrefix, counter)
		if len(valueList) > 0 {
			values[lowPlaceholder] = valueList[0]
		}
		if len(valueList) > 1 {
			values[highPlaceholder] = valueList[1]
		}
		return fmt.Sprintf("%s BETWEEN %s AND %s", namePlaceholder, lowPlaceholder, highPlaceholder)
	}
	// Unknown operators are rejected by request validation before
	// translation runs.
	return ""
}

func legacyComparator(op string) string {
	switch op {
	case "EQ":
		return "="
	case "NE":
		return "<>"
	case "LT":
		return "<"
	case "LE":
		return "<="
	case "GT":
		return ">"
	case "GE":
		return ">="
	}
	return op
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
