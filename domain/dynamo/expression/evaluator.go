package expression

import (
	"bytes"
	"strconv"
	"strings"

	"localaws/domain/dynamo"
)

// EvalContext carries the item and the client-supplied placeholder maps an
// expression evaluates against. The three evaluation entry points
// (Evaluate, ApplyUpdate, ApplyProjection) are methods on it.
type EvalContext struct {
	Item   dynamo.Item
	Names  map[string]string
	Values map[string]dynamo.AttributeValue
}

// Evaluate evaluates a condition to a boolean.
func (c *EvalContext) Evaluate(expr Expr) (bool, error) {
	switch e := expr.(type) {
	case CompareExpr:
		return c.evalCompare(e.Left, e.Op, e.Right)
	case BetweenExpr:
		return c.evalBetween(e)
	case InExpr:
		return c.evalIn(e)
	case LogicalExpr:
		return c.evalLogical(e)
	case NotExpr:
		v, err := c.Evaluate(e.Inner)
		if err != nil {
			return false, err
		}
		return !v, nil
	case FunctionExpr:
		return c.evalFunction(e)
	}
	return false, invalidOperandErrorf("unsupported condition node")
}

func (c *EvalContext) evalCompare(left Operand, op CompareOp, right Operand) (bool, error) {
	lv, lok, err := c.ResolveOperand(left)
	if err != nil {
		return false, err
	}
	rv, rok, err := c.ResolveOperand(right)
	if err != nil {
		return false, err
	}
	// A missing side makes the comparison false.
	if !lok || !rok {
		return false, nil
	}
	return compareValues(lv, rv, op)
}

func (c *EvalContext) evalBetween(e BetweenExpr) (bool, error) {
	v, vok, err := c.ResolveOperand(e.Value)
	if err != nil {
		return false, err
	}
	lo, lok, err := c.ResolveOperand(e.Low)
	if err != nil {
		return false, err
	}
	hi, hok, err := c.ResolveOperand(e.High)
	if err != nil {
		return false, err
	}
	if !vok || !lok || !hok {
		return false, nil
	}
	geLow, err := compareValues(v, lo, OpGe)
	if err != nil {
		return false, err
	}
	if !geLow {
		return false, nil
	}
	return compareValues(v, hi, OpLe)
}

func (c *EvalContext) evalIn(e InExpr) (bool, error) {
	v, ok, err := c.ResolveOperand(e.Value)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	for _, candidate := range e.List {
		cv, cok, err := c.ResolveOperand(candidate)
		if err != nil {
			return false, err
		}
		if !cok {
			continue
		}
		eq, err := compareValues(v, cv, OpEq)
		if err != nil {
			return false, err
		}
		if eq {
			return true, nil
		}
	}
	return false, nil
}

func (c *EvalContext) evalLogical(e LogicalExpr) (bool, error) {
	left, err := c.Evaluate(e.Left)
	if err != nil {
		return false, err
	}
	if e.Op == OpAnd && !left {
		return false, nil
	}
	if e.Op == OpOr && left {
		return true, nil
	}
	return c.Evaluate(e.Right)
}

func (c *EvalContext) evalFunction(e FunctionExpr) (bool, error) {
	switch e.Name {
	case FnAttributeExists:
		_, ok := c.ResolvePath(e.Args[0].Path)
		return ok, nil
	case FnAttributeNotExists:
		_, ok := c.ResolvePath(e.Args[0].Path)
		return !ok, nil
	case FnAttributeType:
		typeVal, ok, err := c.ResolveOperand(e.Args[1])
		if err != nil {
			return false, err
		}
		expected, isString := "", false
		if ok {
			expected, isString = typeVal.StringValue()
		}
		if !isString {
			return false, typeMismatchErrorf("attribute_type second argument must be a string")
		}
		val, found := c.ResolvePath(e.Args[0].Path)
		if !found {
			return false, nil
		}
		return string(val.AttrType()) == expected, nil
	case FnBeginsWith:
		prefixVal, ok, err := c.ResolveOperand(e.Args[1])
		if err != nil {
			return false, err
		}
		var prefix string
		isString := false
		if ok {
			prefix, isString = prefixVal.StringValue()
		}
		if !isString {
			return false, typeMismatchErrorf("begins_with prefix must be a string")
		}
		val, found := c.ResolvePath(e.Args[0].Path)
		if !found {
			return false, nil
		}
		s, isS := val.StringValue()
		if !isS {
			return false, nil
		}
		return strings.HasPrefix(s, prefix), nil
	case FnContains:
		return c.evalContains(e.Args)
	case FnSize:
		return false, invalidOperandErrorf("size() cannot be used as a standalone condition; use it in a comparison")
	}
	return false, syntaxErrorf("Invalid function name; function: %s", e.Name)
}

func (c *EvalContext) evalContains(args []Operand) (bool, error) {
	search, ok, err := c.ResolveOperand(args[1])
	if err != nil {
		return false, err
	}
	attr, found := c.ResolvePath(args[0].Path)
	if !found || !ok {
		return false, nil
	}
	switch attr.AttrType() {
	case dynamo.TypeString:
		sub, isS := search.StringValue()
		if !isS {
			return false, nil
		}
		s, _ := attr.StringValue()
		return strings.Contains(s, sub), nil
	case dynamo.TypeStringSet:
		val, isS := search.StringValue()
		if !isS {
			return false, nil
		}
		set, _ := attr.StringSetValue()
		return containsString(set, val), nil
	case dynamo.TypeNumberSet:
		val, isN := search.NumberValue()
		if !isN {
			return false, nil
		}
		set, _ := attr.NumberSetValue()
		return containsString(set, val), nil
	case dynamo.TypeBinarySet:
		val, isB := search.BinaryValue()
		if !isB {
			return false, nil
		}
		set, _ := attr.BinarySetValue()
		for _, b := range set {
			if bytes.Equal(b, val) {
				return true, nil
			}
		}
		return false, nil
	case dynamo.TypeList:
		list, _ := attr.ListValue()
		for _, e := range list {
			if e.Equal(search) {
				return true, nil
			}
		}
		return false, nil
	}
	return false, nil
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Resolution
// ---------------------------------------------------------------------------

// ResolveOperand resolves an operand to its concrete value. The boolean
// reports presence; a :placeholder missing from the values map is an error.
func (c *EvalContext) ResolveOperand(o Operand) (dynamo.AttributeValue, bool, error) {
	switch o.Kind {
	case OperandPath:
		v, ok := c.ResolvePath(o.Path)
		return v, ok, nil
	case OperandValue:
		v, ok := c.Values[o.Ref]
		if !ok {
			return dynamo.AttributeValue{}, false, unresolvedValue(o.Ref)
		}
		return v, true, nil
	case OperandSize:
		v, ok := c.ResolvePath(o.Path)
		if !ok {
			return dynamo.AttributeValue{}, false, nil
		}
		return dynamo.Number(strconv.Itoa(operandSize(v))), true, nil
	}
	return dynamo.AttributeValue{}, false, invalidOperandErrorf("unsupported operand")
}

// ResolvePath walks a document path against the item, resolving #name
// placeholders through the names map. A placeholder missing from the map,
// or any structural mismatch along the way, yields absence.
func (c *EvalContext) ResolvePath(path AttributePath) (dynamo.AttributeValue, bool) {
	var current dynamo.AttributeValue
	for i, elem := range path.Elements {
		switch elem.Kind {
		case ElementAttribute:
			name := elem.Name
			if strings.HasPrefix(name, "#") {
				resolved, ok := c.Names[name]
				if !ok {
					return dynamo.AttributeValue{}, false
				}
				name = resolved
			}
			if i == 0 {
				v, ok := c.Item[name]
				if !ok {
					return dynamo.AttributeValue{}, false
				}
				current = v
			} else {
				m, ok := current.MapValue()
				if !ok {
					return dynamo.AttributeValue{}, false
				}
				v, ok := m[name]
				if !ok {
					return dynamo.AttributeValue{}, false
				}
				current = v
			}
		case ElementIndex:
			l, ok := current.ListValue()
			if !ok || elem.Index >= len(l) {
				return dynamo.AttributeValue{}, false
			}
			current = l[elem.Index]
		}
	}
	return current, true
}

// ResolveName maps a possibly-#-prefixed attribute name through the names
// map. Missing placeholders are an error.
func (c *EvalContext) ResolveName(name string) (string, error) {
	if !strings.HasPrefix(name, "#") {
		return name, nil
	}
	resolved, ok := c.Names[name]
	if !ok {
		return "", unresolvedName(name)
	}
	return resolved, nil
}

// ResolvePathNames returns the path with every #placeholder substituted.
func (c *EvalContext) ResolvePathNames(path AttributePath) (AttributePath, error) {
	out := AttributePath{Elements: make([]PathElement, len(path.Elements))}
	for i, e := range path.Elements {
		if e.Kind == ElementAttribute {
			name, err := c.ResolveName(e.Name)
			if err != nil {
				return AttributePath{}, err
			}
			out.Elements[i] = PathElement{Kind: ElementAttribute, Name: name}
		} else {
			out.Elements[i] = e
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Comparison
// ---------------------------------------------------------------------------

// compareValues orders two attribute values. Within a type, S and B compare
// lexicographically, N by exact decimal magnitude, BOOL with false < true.
// Across types, equality is false and inequality true; ordered comparisons
// are false.
func compareValues(left, right dynamo.AttributeValue, op CompareOp) (bool, error) {
	if left.AttrType() != right.AttrType() {
		return op == OpNe, nil
	}
	switch left.AttrType() {
	case dynamo.TypeString:
		a, _ := left.StringValue()
		b, _ := right.StringValue()
		return compareOrdered(strings.Compare(a, b), op), nil
	case dynamo.TypeBinary:
		a, _ := left.BinaryValue()
		b, _ := right.BinaryValue()
		return compareOrdered(bytes.Compare(a, b), op), nil
	case dynamo.TypeNumber:
		a, err := left.Decimal()
		if err != nil {
			n, _ := left.NumberValue()
			return false, typeMismatchErrorf("'%s' is not a valid number", n)
		}
		b, err := right.Decimal()
		if err != nil {
			n, _ := right.NumberValue()
			return false, typeMismatchErrorf("'%s' is not a valid number", n)
		}
		return compareOrdered(a.Cmp(b), op), nil
	case dynamo.TypeBool:
		a, _ := left.BoolValue()
		b, _ := right.BoolValue()
		return compareOrdered(compareBool(a, b), op), nil
	case dynamo.TypeNull:
		return op == OpEq || op == OpLe || op == OpGe, nil
	default:
		// Collection types support equality only.
		switch op {
		case OpEq:
			return left.Equal(right), nil
		case OpNe:
			return !left.Equal(right), nil
		}
		return false, nil
	}
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

func compareOrdered(cmp int, op CompareOp) bool {
	switch op {
	case OpEq:
		return cmp == 0
	case OpNe:
		return cmp != 0
	case OpLt:
		return cmp < 0
	case OpLe:
		return cmp <= 0
	case OpGt:
		return cmp > 0
	case OpGe:
		return cmp >= 0
	}
	return false
}

// operandSize is the size() function's accounting: byte length for scalars,
// element count for sets, lists and maps.
func operandSize(v dynamo.AttributeValue) int {
	switch v.AttrType() {
	case dynamo.TypeString:
		s, _ := v.StringValue()
		return len(s)
	case dynamo.TypeNumber:
		n, _ := v.NumberValue()
		return len(n)
	case dynamo.TypeBinary:
		b, _ := v.BinaryValue()
		return len(b)
	case dynamo.TypeStringSet, dynamo.TypeNumberSet, dynamo.TypeBinarySet:
		return v.SetLen()
	case dynamo.TypeList:
		l, _ := v.ListValue()
		return len(l)
	case dynamo.TypeMap:
		m, _ := v.MapValue()
		return len(m)
	case dynamo.TypeBool, dynamo.TypeNull:
		return 1
	}
	return 0
}
