package expression

import (
	"bytes"
	"strings"

	"localaws/domain/dynamo"
)

// ApplyUpdate clones the context item and applies the update's actions in
// order: SET, REMOVE, ADD, DELETE. The original item is never mutated.
func (c *EvalContext) ApplyUpdate(update *UpdateExpression) (dynamo.Item, error) {
	result := c.Item.Clone()
	for _, action := range update.Set {
		value, err := c.resolveSetValue(action.Value)
		if err != nil {
			return nil, err
		}
		c.setPathValue(result, action.Path, value)
	}
	for _, path := range update.Remove {
		c.removePath(result, path)
	}
	for _, action := range update.Add {
		if err := c.applyAdd(result, action); err != nil {
			return nil, err
		}
	}
	for _, action := range update.Delete {
		if err := c.applyDelete(result, action); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (c *EvalContext) resolveSetValue(v SetValue) (dynamo.AttributeValue, error) {
	switch v.Kind {
	case SetOperand:
		val, ok, err := c.ResolveOperand(v.Operand)
		if err != nil {
			return dynamo.AttributeValue{}, err
		}
		if !ok {
			return dynamo.AttributeValue{}, invalidOperandErrorf("operand resolved to None")
		}
		return val, nil
	case SetPlus, SetMinus:
		a, aok, err := c.ResolveOperand(v.Left)
		if err != nil {
			return dynamo.AttributeValue{}, err
		}
		if !aok {
			return dynamo.AttributeValue{}, invalidOperandErrorf("left operand resolved to None")
		}
		b, bok, err := c.ResolveOperand(v.Right)
		if err != nil {
			return dynamo.AttributeValue{}, err
		}
		if !bok {
			return dynamo.AttributeValue{}, invalidOperandErrorf("right operand resolved to None")
		}
		return numericArithmetic(a, b, v.Kind == SetPlus)
	case SetIfNotExists:
		if existing, ok := c.ResolvePath(v.Path); ok {
			return existing.Clone(), nil
		}
		val, ok, err := c.ResolveOperand(v.Default)
		if err != nil {
			return dynamo.AttributeValue{}, err
		}
		if !ok {
			return dynamo.AttributeValue{}, invalidOperandErrorf("default operand resolved to None")
		}
		return val, nil
	case SetListAppend:
		a, aok, err := c.ResolveOperand(v.Left)
		if err != nil {
			return dynamo.AttributeValue{}, err
		}
		if !aok {
			return dynamo.AttributeValue{}, invalidOperandErrorf("first operand resolved to None")
		}
		b, bok, err := c.ResolveOperand(v.Right)
		if err != nil {
			return dynamo.AttributeValue{}, err
		}
		if !bok {
			return dynamo.AttributeValue{}, invalidOperandErrorf("second operand resolved to None")
		}
		la, laOK := a.ListValue()
		lb, lbOK := b.ListValue()
		if !laOK || !lbOK {
			return dynamo.AttributeValue{}, typeMismatchErrorf("list_append requires two list operands")
		}
		merged := make([]dynamo.AttributeValue, 0, len(la)+len(lb))
		merged = append(merged, la...)
		merged = append(merged, lb...)
		return dynamo.List(merged), nil
	}
	return dynamo.AttributeValue{}, invalidOperandErrorf("unsupported SET value")
}

// numericArithmetic adds or subtracts two N values using exact decimal
// arithmetic.
func numericArithmetic(a, b dynamo.AttributeValue, add bool) (dynamo.AttributeValue, error) {
	da, errA := a.Decimal()
	db, errB := b.Decimal()
	if errA != nil || errB != nil {
		return dynamo.AttributeValue{}, typeMismatchErrorf("arithmetic requires number operands")
	}
	if add {
		return dynamo.Number(da.Add(db).String()), nil
	}
	return dynamo.Number(da.Sub(db).String()), nil
}

// setPathValue writes through the item at the given path, materializing
// intermediate maps as needed. Writing through a list index replaces in
// bounds and is a no-op otherwise; writing through a non-container is a
// no-op at that level.
func (c *EvalContext) setPathValue(item dynamo.Item, path AttributePath, value dynamo.AttributeValue) {
	if len(path.Elements) == 0 || path.Elements[0].Kind != ElementAttribute {
		return
	}
	top := c.resolveNameLenient(path.Elements[0].Name)
	if len(path.Elements) == 1 {
		item[top] = value
		return
	}
	current, ok := item[top]
	if !ok {
		current = dynamo.Map(nil)
	}
	item[top] = c.setNested(current, path.Elements[1:], value)
}

func (c *EvalContext) setNested(current dynamo.AttributeValue, rest []PathElement, value dynamo.AttributeValue) dynamo.AttributeValue {
	elem := rest[0]
	switch elem.Kind {
	case ElementAttribute:
		m, ok := current.MapValue()
		if !ok {
			return current
		}
		name := c.resolveNameLenient(elem.Name)
		if len(rest) == 1 {
			m[name] = value
			return current
		}
		child, ok := m[name]
		if !ok {
			child = dynamo.Map(nil)
		}
		m[name] = c.setNested(child, rest[1:], value)
		return current
	case ElementIndex:
		l, ok := current.ListValue()
		if !ok || elem.Index >= len(l) {
			return current
		}
		if len(rest) == 1 {
			l[elem.Index] = value
			return current
		}
		l[elem.Index] = c.setNested(l[elem.Index], rest[1:], value)
		return current
	}
	return current
}

// removePath deletes the leaf the path names, recursing through maps and
// lists. Missing intermediate structure is a no-op.
func (c *EvalContext) removePath(item dynamo.Item, path AttributePath) {
	if len(path.Elements) == 0 || path.Elements[0].Kind != ElementAttribute {
		return
	}
	top := c.resolveNameLenient(path.Elements[0].Name)
	if len(path.Elements) == 1 {
		delete(item, top)
		return
	}
	current, ok := item[top]
	if !ok {
		return
	}
	item[top] = c.removeNested(current, path.Elements[1:])
}

func (c *EvalContext) removeNested(current dynamo.AttributeValue, rest []PathElement) dynamo.AttributeValue {
	elem := rest[0]
	switch elem.Kind {
	case ElementAttribute:
		m, ok := current.MapValue()
		if !ok {
			return current
		}
		name := c.resolveNameLenient(elem.Name)
		if len(rest) == 1 {
			delete(m, name)
			return current
		}
		child, ok := m[name]
		if !ok {
			return current
		}
		m[name] = c.removeNested(child, rest[1:])
		return current
	case ElementIndex:
		l, ok := current.ListValue()
		if !ok || elem.Index >= len(l) {
			return current
		}
		if len(rest) == 1 {
			spliced := make([]dynamo.AttributeValue, 0, len(l)-1)
			spliced = append(spliced, l[:elem.Index]...)
			spliced = append(spliced, l[elem.Index+1:]...)
			return dynamo.List(spliced)
		}
		l[elem.Index] = c.removeNested(l[elem.Index], rest[1:])
		return current
	}
	return current
}

// resolveNameLenient substitutes a #placeholder if the names map has it and
// falls back to the raw token otherwise. Placeholder validation runs before
// application, so an unresolved name here cannot occur on validated input.
func (c *EvalContext) resolveNameLenient(name string) string {
	if strings.HasPrefix(name, "#") {
		if resolved, ok := c.Names[name]; ok {
			return resolved
		}
	}
	return name
}

func (c *EvalContext) applyAdd(item dynamo.Item, action AddAction) error {
	addVal, ok, err := c.ResolveOperand(action.Value)
	if err != nil {
		return err
	}
	if !ok {
		return invalidOperandErrorf("value operand resolved to None")
	}
	name, err := c.topLevelName(action.Path)
	if err != nil {
		return err
	}
	existing, exists := item[name]
	if !exists {
		switch addVal.AttrType() {
		case dynamo.TypeNumber, dynamo.TypeStringSet, dynamo.TypeNumberSet, dynamo.TypeBinarySet:
			item[name] = addVal
			return nil
		default:
			return typeMismatchErrorf("ADD requires a number or set value")
		}
	}
	switch addVal.AttrType() {
	case dynamo.TypeNumber:
		result, err := numericArithmetic(existing, addVal, true)
		if err != nil {
			return err
		}
		item[name] = result
	case dynamo.TypeStringSet:
		set, ok := existing.StringSetValue()
		if !ok {
			return typeMismatchErrorf("ADD requires a number or set value")
		}
		add, _ := addVal.StringSetValue()
		item[name] = dynamo.StringSet(unionStrings(set, add))
	case dynamo.TypeNumberSet:
		set, ok := existing.NumberSetValue()
		if !ok {
			return typeMismatchErrorf("ADD requires a number or set value")
		}
		add, _ := addVal.NumberSetValue()
		item[name] = dynamo.NumberSet(unionStrings(set, add))
	case dynamo.TypeBinarySet:
		set, ok := existing.BinarySetValue()
		if !ok {
			return typeMismatchErrorf("ADD requires a number or set value")
		}
		add, _ := addVal.BinarySetValue()
		item[name] = dynamo.BinarySet(unionBinary(set, add))
	default:
		return typeMismatchErrorf("ADD requires a number or set value")
	}
	return nil
}

func (c *EvalContext) applyDelete(item dynamo.Item, action DeleteAction) error {
	delVal, ok, err := c.ResolveOperand(action.Value)
	if err != nil {
		return err
	}
	if !ok {
		return invalidOperandErrorf("value operand resolved to None")
	}
	name, err := c.topLevelName(action.Path)
	if err != nil {
		return err
	}
	existing, exists := item[name]
	if !exists {
		return nil
	}
	switch {
	case existing.AttrType() == dynamo.TypeStringSet && delVal.AttrType() == dynamo.TypeStringSet:
		set, _ := existing.StringSetValue()
		remove, _ := delVal.StringSetValue()
		item[name] = dynamo.StringSet(subtractStrings(set, remove))
	case existing.AttrType() == dynamo.TypeNumberSet && delVal.AttrType() == dynamo.TypeNumberSet:
		set, _ := existing.NumberSetValue()
		remove, _ := delVal.NumberSetValue()
		item[name] = dynamo.NumberSet(subtractStrings(set, remove))
	case existing.AttrType() == dynamo.TypeBinarySet && delVal.AttrType() == dynamo.TypeBinarySet:
		set, _ := existing.BinarySetValue()
		remove, _ := delVal.BinarySetValue()
		item[name] = dynamo.BinarySet(subtractBinary(set, remove))
	default:
		return typeMismatchErrorf("DELETE requires a set value matching the existing attribute type")
	}
	return nil
}

func (c *EvalContext) topLevelName(path AttributePath) (string, error) {
	if len(path.Elements) == 0 || path.Elements[0].Kind != ElementAttribute {
		return "", invalidOperandErrorf("path must start with an attribute name")
	}
	return c.ResolveName(path.Elements[0].Name)
}

func unionStrings(existing, add []string) []string {
	merged := append([]string(nil), existing...)
	for _, s := range add {
		if !containsString(merged, s) {
			merged = append(merged, s)
		}
	}
	return merged
}

func subtractStrings(existing, remove []string) []string {
	out := make([]string, 0, len(existing))
	for _, s := range existing {
		if !containsString(remove, s) {
			out = append(out, s)
		}
	}
	return out
}

func unionBinary(existing, add [][]byte) [][]byte {
	merged := append([][]byte(nil), existing...)
	for _, b := range add {
		if !containsBinary(merged, b) {
			merged = append(merged, b)
		}
	}
	return merged
}

func subtractBinary(existing, remove [][]byte) [][]byte {
	out := make([][]byte, 0, len(existing))
	for _, b := range existing {
		if !containsBinary(remove, b) {
			out = append(out, b)
		}
	}
	return out
}

func containsBinary(set [][]byte, v []byte) bool {
	for _, b := range set {
		if bytes.Equal(b, v) {
			return true
		}
	}
	return false
}
