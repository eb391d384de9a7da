package promql

import (
	"fmt"
)

// checker validates a freshly parsed tree. It enforces everything the
// grammar cannot express: operand typing, modifier legality, matcher
// consistency and function signatures.
type checker struct {
	query string
}

func (c *checker) errf(pos PositionRange, format string, args ...any) error {
	return &ParseError{
		Kind:     SemanticError,
		Err:      fmt.Errorf(format, args...),
		Position: pos,
		Query:    c.query,
	}
}

// expectType raises an error if e is not of the wanted value type.
func (c *checker) expectType(e Expr, want ValueType, context string) error {
	if t := e.Type(); t != want {
		return c.errf(e.PositionRange(), "expected type %s in %s, got %s", documentedType(want), context, documentedType(t))
	}
	return nil
}

// check walks the tree in post-order and returns the first failing check.
//
// Some of these checks are redundant as the parsing stage does not allow
// them, but the costs are small and they keep programmatically built
// trees honest.
func (c *checker) check(e Expr) error {
	for _, child := range Children(e) {
		if err := c.check(child); err != nil {
			return err
		}
	}

	switch n := e.(type) {
	case *AggregateExpr:
		return c.checkAggregateExpr(n)
	case *BinaryExpr:
		return c.checkBinaryExpr(n)
	case *Call:
		return c.checkCall(n)
	case *UnaryExpr:
		if t := n.Expr.Type(); t != ValueTypeScalar && t != ValueTypeVector {
			return c.errf(n.PositionRange(), "unary expression only allowed on expressions of type scalar or instant vector, got %s", documentedType(t))
		}
	case *SubqueryExpr:
		if t := n.Expr.Type(); t != ValueTypeVector {
			return c.errf(n.PositionRange(), "subquery is only allowed on instant vector, got %s in %q instead", documentedType(t), n.String())
		}
		if n.Range <= 0 {
			return c.errf(n.PositionRange(), "subquery range must be greater than 0")
		}
		if n.Step < 0 {
			return c.errf(n.PositionRange(), "subquery step must not be negative")
		}
	case *MatrixSelector:
		if _, ok := unwrapParens(n.VectorSelector).(*VectorSelector); !ok {
			return c.errf(n.PositionRange(), "ranges only allowed for vector selectors")
		}
		if n.Range <= 0 {
			return c.errf(n.PositionRange(), "range must be greater than 0")
		}
	case *VectorSelector:
		return c.checkVectorSelector(n)
	case *ParenExpr, *NumberLiteral, *StringLiteral:
		// Nothing to do.
	}
	return nil
}

func (c *checker) checkAggregateExpr(n *AggregateExpr) error {
	if !n.Op.IsAggregator() {
		return c.errf(n.PositionRange(), "aggregation operator expected in aggregation expression but got %q", n.Op)
	}
	if n.Modifier != nil {
		if l, ok := firstDuplicateLabel(n.Modifier.Labels); ok {
			return c.errf(n.PositionRange(), "duplicate label %q in grouping clause", l)
		}
	}
	if err := c.expectType(n.Expr, ValueTypeVector, "aggregation expression"); err != nil {
		return err
	}
	switch n.Op {
	case TOPK, BOTTOMK, QUANTILE:
		if n.Param == nil {
			return c.errf(n.PositionRange(), "no parameter provided for operator %q", n.Op)
		}
		if err := c.expectType(n.Param, ValueTypeScalar, "aggregation parameter"); err != nil {
			return err
		}
	case COUNT_VALUES:
		if n.Param == nil {
			return c.errf(n.PositionRange(), "no parameter provided for operator %q", n.Op)
		}
		if err := c.expectType(n.Param, ValueTypeString, "aggregation parameter"); err != nil {
			return err
		}
	default:
		if n.Param != nil {
			return c.errf(n.PositionRange(), "parameter is not allowed for operator %q", n.Op)
		}
	}
	return nil
}

func (c *checker) checkBinaryExpr(n *BinaryExpr) error {
	if !n.Op.IsOperator() {
		return c.errf(n.PositionRange(), "binary expression does not support operator %q", n.Op)
	}
	lt, rt := n.LHS.Type(), n.RHS.Type()
	if lt != ValueTypeScalar && lt != ValueTypeVector || rt != ValueTypeScalar && rt != ValueTypeVector {
		return c.errf(n.PositionRange(), "binary expression must contain only scalar and instant vector types")
	}

	returnBool := n.Modifier != nil && n.Modifier.ReturnBool
	if returnBool && !n.Op.IsComparisonOperator() {
		return c.errf(n.PositionRange(), "bool modifier can only be used on comparison operators")
	}
	if n.Op.IsComparisonOperator() && !returnBool && lt == ValueTypeScalar && rt == ValueTypeScalar {
		return c.errf(n.PositionRange(), "comparisons between scalars must use BOOL modifier")
	}

	if lt != ValueTypeVector || rt != ValueTypeVector {
		if matching := binMatching(n); matching != nil {
			if len(matching.Labels) > 0 {
				return c.errf(n.PositionRange(), "vector matching only allowed between instant vectors")
			}
			// An empty on()/ignoring() clause is meaningless here.
			n.Modifier.Matching = nil
		}
		if n.Op.IsSetOperator() {
			return c.errf(n.PositionRange(), "set operator %q not allowed in binary scalar expression", n.Op)
		}
		return nil
	}

	card := CardOneToOne
	if n.Modifier != nil {
		card = n.Modifier.Card
	}
	if n.Op.IsSetOperator() {
		if card == CardOneToMany || card == CardManyToOne {
			return c.errf(n.PositionRange(), "no grouping allowed for %q operation", n.Op)
		}
		if card != CardManyToMany {
			return c.errf(n.PositionRange(), "set operations must always be many-to-many")
		}
	}

	matching := binMatching(n)
	if (card == CardManyToOne || card == CardOneToMany) && matching == nil {
		return c.errf(n.PositionRange(), "grouping modifier must be used together with an on or ignoring clause")
	}
	if matching != nil {
		if l, ok := firstDuplicateLabel(matching.Labels); ok {
			clause := "on"
			if matching.Exclude {
				clause = "ignoring"
			}
			return c.errf(n.PositionRange(), "duplicate label %q in %s clause", l, clause)
		}
		if !matching.Exclude {
			for _, l1 := range matching.Labels {
				for _, l2 := range n.Modifier.Include {
					if l1 == l2 {
						return c.errf(n.PositionRange(), "label %q must not occur in ON and GROUP clause at once", l1)
					}
				}
			}
		}
	}
	return nil
}

func binMatching(n *BinaryExpr) *LabelModifier {
	if n.Modifier == nil {
		return nil
	}
	return n.Modifier.Matching
}

func (c *checker) checkCall(n *Call) error {
	if n.Func == nil {
		return c.errf(n.PositionRange(), "function call without a function")
	}
	fn := n.Func
	nargs := len(fn.ArgTypes)
	switch {
	case fn.Variadic == 0:
		if nargs != len(n.Args) {
			return c.errf(n.PositionRange(), "expected %d argument(s) in call to %q, got %d", nargs, fn.Name, len(n.Args))
		}
	default:
		na := nargs - 1
		if na > len(n.Args) {
			return c.errf(n.PositionRange(), "expected at least %d argument(s) in call to %q, got %d", na, fn.Name, len(n.Args))
		}
		if nargsmax := na + fn.Variadic; fn.Variadic > 0 && nargsmax < len(n.Args) {
			return c.errf(n.PositionRange(), "expected at most %d argument(s) in call to %q, got %d", nargsmax, fn.Name, len(n.Args))
		}
	}
	for i, arg := range n.Args {
		k := i
		if k >= len(fn.ArgTypes) {
			k = len(fn.ArgTypes) - 1
		}
		if err := c.expectType(arg, fn.ArgTypes[k], fmt.Sprintf("call to function %q", fn.Name)); err != nil {
			return err
		}
	}
	return nil
}

func (c *checker) checkVectorSelector(n *VectorSelector) error {
	for _, group := range n.LabelMatchers.groups() {
		// Reject conflicting equality constraints on the metric name,
		// whether they come from the name field or explicit matchers.
		nameValue := ""
		for _, m := range group {
			if m.Name != MetricName || m.Op != MatchEqual {
				continue
			}
			if nameValue != "" && nameValue != m.Value {
				return c.errf(n.PositionRange(), "metric name must not be set twice: %q or %q", nameValue, m.Value)
			}
			nameValue = m.Value
		}

		// Compile regex matchers of programmatically built selectors.
		for _, m := range group {
			if m.IsRegex() && m.re == nil {
				mm, err := NewMatcher(m.Op, m.Name, m.Value)
				if err != nil {
					return c.errf(n.PositionRange(), "%s", err)
				}
				m.re = mm.re
			}
		}

		// A selector must contain at least one matcher not matching the
		// empty string to prevent implicit selection of all metrics.
		notEmpty := false
		for _, m := range group {
			if !m.Matches("") {
				notEmpty = true
				break
			}
		}
		if !notEmpty {
			return c.errf(n.PositionRange(), "vector selector must contain at least one non-empty matcher")
		}
	}
	return nil
}

func firstDuplicateLabel(labels []string) (string, bool) {
	if len(labels) < 2 {
		return "", false
	}
	seen := make(map[string]bool, len(labels))
	for _, l := range labels {
		if seen[l] {
			return l, true
		}
		seen[l] = true
	}
	return "", false
}
