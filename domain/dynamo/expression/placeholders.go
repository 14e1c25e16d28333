package expression

// PlaceholderSet accumulates the #name and :value placeholders referenced by
// parsed expressions. The provider diffs these sets against the
// client-supplied maps to detect unused and undefined placeholders.
type PlaceholderSet struct {
	Names  map[string]bool
	Values map[string]bool
}

// NewPlaceholderSet creates an empty set.
func NewPlaceholderSet() *PlaceholderSet {
	return &PlaceholderSet{Names: map[string]bool{}, Values: map[string]bool{}}
}

// CollectExpr records every placeholder referenced by a condition.
func (s *PlaceholderSet) CollectExpr(expr Expr) {
	switch e := expr.(type) {
	case CompareExpr:
		s.collectOperand(e.Left)
		s.collectOperand(e.Right)
	case BetweenExpr:
		s.collectOperand(e.Value)
		s.collectOperand(e.Low)
		s.collectOperand(e.High)
	case InExpr:
		s.collectOperand(e.Value)
		for _, o := range e.List {
			s.collectOperand(o)
		}
	case LogicalExpr:
		s.CollectExpr(e.Left)
		s.CollectExpr(e.Right)
	case NotExpr:
		s.CollectExpr(e.Inner)
	case FunctionExpr:
		for _, o := range e.Args {
			s.collectOperand(o)
		}
	}
}

// CollectUpdate records every placeholder referenced by an update
// expression.
func (s *PlaceholderSet) CollectUpdate(update *UpdateExpression) {
	for _, a := range update.Set {
		s.collectPath(a.Path)
		s.collectSetValue(a.Value)
	}
	for _, p := range update.Remove {
		s.collectPath(p)
	}
	for _, a := range update.Add {
		s.collectPath(a.Path)
		s.collectOperand(a.Value)
	}
	for _, a := range update.Delete {
		s.collectPath(a.Path)
		s.collectOperand(a.Value)
	}
}

// CollectProjection records every placeholder referenced by projection
// paths.
func (s *PlaceholderSet) CollectProjection(paths []AttributePath) {
	for _, p := range paths {
		s.collectPath(p)
	}
}

func (s *PlaceholderSet) collectSetValue(v SetValue) {
	switch v.Kind {
	case SetOperand:
		s.collectOperand(v.Operand)
	case SetPlus, SetMinus, SetListAppend:
		s.collectOperand(v.Left)
		s.collectOperand(v.Right)
	case SetIfNotExists:
		s.collectPath(v.Path)
		s.collectOperand(v.Default)
	}
}

func (s *PlaceholderSet) collectOperand(o Operand) {
	switch o.Kind {
	case OperandPath, OperandSize:
		s.collectPath(o.Path)
	case OperandValue:
		s.Values[o.Ref] = true
	}
}

func (s *PlaceholderSet) collectPath(p AttributePath) {
	for _, e := range p.Elements {
		if e.Kind == ElementAttribute && len(e.Name) > 0 && e.Name[0] == '#' {
			s.Names[e.Name] = true
		}
	}
}
