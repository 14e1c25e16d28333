package dynamo

import (
	"localaws/domain/dynamo"
	"localaws/domain/dynamo/expression"
)

// computeUpdateReturnValues renders the requested ReturnValues mode for
// UpdateItem. UPDATED_OLD and UPDATED_NEW return, per update-target path,
// the sub-value at that exact path in the old or new item: key attributes
// are excluded, nested paths reconstruct a minimal nested structure, list
// index targets yield a single-element list holding the affected element,
// and paths sharing a prefix deep-merge.
func computeUpdateReturnValues(returnValues string, oldItem, newItem dynamo.Item, schema dynamo.KeySchema, update *expression.UpdateExpression, names map[string]string) dynamo.Item {
	switch returnValues {
	case "ALL_OLD":
		if oldItem == nil {
			return nil
		}
		return oldItem
	case "ALL_NEW":
		return newItem
	case "UPDATED_OLD":
		if oldItem == nil || update == nil {
			return nil
		}
		return projectUpdateTargets(oldItem, update, schema, names)
	case "UPDATED_NEW":
		if update == nil {
			return nil
		}
		return projectUpdateTargets(newItem, update, schema, names)
	default:
		return nil
	}
}

// projectUpdateTargets extracts the values at every update-target path from
// the given item, reconstructing nested structure.
func projectUpdateTargets(item dynamo.Item, update *expression.UpdateExpression, schema dynamo.KeySchema, names map[string]string) dynamo.Item {
	ctx := &expression.EvalContext{Item: item, Names: names}
	result := dynamo.Item{}
	for _, path := range update.TargetPaths() {
		resolved, err := ctx.ResolvePathNames(path)
		if err != nil {
			continue
		}
		if len(resolved.Elements) == 0 || resolved.Elements[0].Kind != expression.ElementAttribute {
			continue
		}
		if schema.IsKeyAttribute(resolved.Elements[0].Name) {
			continue
		}
		value, ok := ctx.ResolvePath(resolved)
		if !ok {
			continue
		}
		insertAtResolvedPath(result, resolved.Elements, value.Clone())
	}
	return result
}

// insertAtResolvedPath inserts a value into the result map at a resolved
// path, wrapping nested elements in maps (for attribute steps) and
// single-element lists (for index steps), and deep-merging with any
// structure already present.
func insertAtResolvedPath(result dynamo.Item, path []expression.PathElement, value dynamo.AttributeValue) {
	if len(path) == 0 || path[0].Kind != expression.ElementAttribute {
		return
	}
	top := path[0].Name
	if len(path) == 1 {
		result[top] = value
		return
	}
	nested := wrapValueInPath(path[1:], value)
	if existing, ok := result[top]; ok {
		result[top] = mergeAttributeValues(existing, nested)
	} else {
		result[top] = nested
	}
}

func wrapValueInPath(path []expression.PathElement, value dynamo.AttributeValue) dynamo.AttributeValue {
	if len(path) == 0 {
		return value
	}
	inner := wrapValueInPath(path[1:], value)
	if path[0].Kind == expression.ElementAttribute {
		return dynamo.Map(map[string]dynamo.AttributeValue{path[0].Name: inner})
	}
	return dynamo.List([]dynamo.AttributeValue{inner})
}

// mergeAttributeValues deep-merges source into target: maps merge
// recursively, lists concatenate, anything else is overwritten by source.
func mergeAttributeValues(target, source dynamo.AttributeValue) dynamo.AttributeValue {
	targetMap, targetIsMap := target.MapValue()
	sourceMap, sourceIsMap := source.MapValue()
	if targetIsMap && sourceIsMap {
		for key, sourceVal := range sourceMap {
			if existing, ok := targetMap[key]; ok {
				targetMap[key] = mergeAttributeValues(existing, sourceVal)
			} else {
				targetMap[key] = sourceVal
			}
		}
		return target
	}
	targetList, targetIsList := target.ListValue()
	sourceList, sourceIsList := source.ListValue()
	if targetIsList && sourceIsList {
		return dynamo.List(append(targetList, sourceList...))
	}
	return source
}
