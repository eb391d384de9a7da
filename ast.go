package promql

import (
	"math"
	"slices"
	"time"
)

// ValueType describes the runtime type an expression evaluates to.
type ValueType string

// The possible value types.
const (
	ValueTypeNone   ValueType = "none"
	ValueTypeScalar ValueType = "scalar"
	ValueTypeVector ValueType = "vector"
	ValueTypeMatrix ValueType = "matrix"
	ValueTypeString ValueType = "string"
)

// documentedType returns the type name as documented for users,
// i.e. "instant vector" rather than "vector".
func documentedType(t ValueType) string {
	switch t {
	case ValueTypeVector:
		return "instant vector"
	case ValueTypeMatrix:
		return "range vector"
	default:
		return string(t)
	}
}

// Expr is a single node of a parsed query.
//
// Nodes are assembled bottom-up by the parser; offset and @ suffixes are
// written into the selector or subquery node they follow while parsing.
// Nodes are not mutated after the semantic check accepts them.
type Expr interface {
	// AppendString appends the canonical string form of the expression to dst.
	AppendString(dst []byte) []byte

	// String returns the canonical string form of the expression.
	String() string

	// Type returns the value type the expression evaluates to.
	Type() ValueType

	// PositionRange returns the byte span of the expression in the query,
	// enclosing the spans of all child expressions.
	PositionRange() PositionRange

	expr()
}

// VectorMatchCardinality describes the cardinality relationship of the
// operands of a binary vector operation.
type VectorMatchCardinality int

// The possible cardinalities.
const (
	CardOneToOne VectorMatchCardinality = iota
	CardManyToOne
	CardOneToMany
	CardManyToMany
)

// String returns the user-facing name of c.
func (c VectorMatchCardinality) String() string {
	switch c {
	case CardOneToOne:
		return "one-to-one"
	case CardManyToOne:
		return "many-to-one"
	case CardOneToMany:
		return "one-to-many"
	case CardManyToMany:
		return "many-to-many"
	default:
		return "unknown"
	}
}

// LabelModifier is a label list attached to an aggregation or to the
// matching clause of a binary operation: `by`/`on` include the named
// labels, `without`/`ignoring` exclude them.
type LabelModifier struct {
	Exclude bool
	Labels  []string
}

// BinModifier decorates a binary operation with vector matching behavior
// and the `bool` flag of comparison operators.
type BinModifier struct {
	// Matching holds the `on`/`ignoring` clause; nil when unset.
	Matching *LabelModifier

	// Card is the cardinality of the operation. It is CardManyToOne or
	// CardOneToMany for `group_left`/`group_right`, CardManyToMany for
	// set operators and CardOneToOne otherwise.
	Card VectorMatchCardinality

	// Include holds the extra labels of a `group_left`/`group_right`
	// clause to carry over from the lower-cardinality side.
	Include []string

	// ReturnBool marks a comparison returning 0/1 instead of filtering.
	ReturnBool bool
}

// AggregateExpr represents an aggregation operation on a vector.
type AggregateExpr struct {
	Op       TokenKind      // The used aggregation operation.
	Expr     Expr           // The vector expression over which is aggregated.
	Param    Expr           // Parameter used by some aggregators, nil otherwise.
	Modifier *LabelModifier // The optional by/without grouping clause.

	PosRange PositionRange
}

// UnaryExpr represents the negation of its inner expression.
// Unary plus is absorbed during parsing and produces no node.
type UnaryExpr struct {
	Expr Expr

	StartPos Pos
}

// BinaryExpr represents a binary operation between two child expressions.
type BinaryExpr struct {
	Op  TokenKind // The operation of the expression.
	LHS Expr
	RHS Expr

	// Modifier holds vector matching behavior and the bool flag;
	// nil when the operation carries no modifiers.
	Modifier *BinModifier
}

// ParenExpr wraps an expression so it cannot be disassembled as a
// consequence of operator precedence.
type ParenExpr struct {
	Expr Expr

	PosRange PositionRange
}

// SubqueryExpr re-evaluates an instant vector expression over a range.
type SubqueryExpr struct {
	Expr  Expr
	Range time.Duration

	// Step is the re-evaluation interval; zero means the default step.
	Step time.Duration

	// Offset is the offset modifier as written in the query,
	// negative for `offset -<duration>`.
	Offset time.Duration

	// Timestamp holds the fixed evaluation timestamp of the @ modifier
	// in milliseconds; nil when @ is unset or uses start()/end().
	Timestamp  *int64
	StartOrEnd TokenKind // START or END when @ is used with start() or end().

	EndPos Pos
}

// NumberLiteral represents a scalar literal.
type NumberLiteral struct {
	Val float64

	PosRange PositionRange
}

// StringLiteral represents a string literal with its value already decoded.
type StringLiteral struct {
	Val string

	PosRange PositionRange
}

// VectorSelector selects a set of time series by label matchers at a
// single instant.
type VectorSelector struct {
	// Name is the metric name, empty for selectors like `{job="api"}`.
	// A non-empty name is mirrored by an implicit __name__ equality
	// matcher in LabelMatchers.
	Name          string
	LabelMatchers Matchers

	Offset     time.Duration
	Timestamp  *int64
	StartOrEnd TokenKind

	PosRange PositionRange
}

// MatrixSelector wraps a vector selector with a range, yielding a
// range vector. Offset and @ of the selector surface on the matrix.
type MatrixSelector struct {
	// VectorSelector is *VectorSelector once the parser accepted the query.
	VectorSelector Expr
	Range          time.Duration

	EndPos Pos
}

// Call represents a function call.
type Call struct {
	Func *Function
	Args []Expr

	PosRange PositionRange
}

func (*AggregateExpr) expr()  {}
func (*UnaryExpr) expr()      {}
func (*BinaryExpr) expr()     {}
func (*ParenExpr) expr()      {}
func (*SubqueryExpr) expr()   {}
func (*NumberLiteral) expr()  {}
func (*StringLiteral) expr()  {}
func (*VectorSelector) expr() {}
func (*MatrixSelector) expr() {}
func (*Call) expr()           {}

// Type implements the Expr interface.
func (e *AggregateExpr) Type() ValueType { return ValueTypeVector }

// Type implements the Expr interface.
func (e *UnaryExpr) Type() ValueType { return e.Expr.Type() }

// Type implements the Expr interface.
func (e *BinaryExpr) Type() ValueType {
	if e.LHS.Type() == ValueTypeScalar && e.RHS.Type() == ValueTypeScalar {
		return ValueTypeScalar
	}
	return ValueTypeVector
}

// Type implements the Expr interface.
func (e *ParenExpr) Type() ValueType { return e.Expr.Type() }

// Type implements the Expr interface.
func (e *SubqueryExpr) Type() ValueType { return ValueTypeMatrix }

// Type implements the Expr interface.
func (e *NumberLiteral) Type() ValueType { return ValueTypeScalar }

// Type implements the Expr interface.
func (e *StringLiteral) Type() ValueType { return ValueTypeString }

// Type implements the Expr interface.
func (e *VectorSelector) Type() ValueType { return ValueTypeVector }

// Type implements the Expr interface.
func (e *MatrixSelector) Type() ValueType { return ValueTypeMatrix }

// Type implements the Expr interface.
func (e *Call) Type() ValueType { return e.Func.ReturnType }

// PositionRange implements the Expr interface.
func (e *AggregateExpr) PositionRange() PositionRange { return e.PosRange }

// PositionRange implements the Expr interface.
func (e *UnaryExpr) PositionRange() PositionRange {
	return PositionRange{Start: e.StartPos, End: e.Expr.PositionRange().End}
}

// PositionRange implements the Expr interface.
func (e *BinaryExpr) PositionRange() PositionRange {
	return PositionRange{
		Start: e.LHS.PositionRange().Start,
		End:   e.RHS.PositionRange().End,
	}
}

// PositionRange implements the Expr interface.
func (e *ParenExpr) PositionRange() PositionRange { return e.PosRange }

// PositionRange implements the Expr interface.
func (e *SubqueryExpr) PositionRange() PositionRange {
	return PositionRange{Start: e.Expr.PositionRange().Start, End: e.EndPos}
}

// PositionRange implements the Expr interface.
func (e *NumberLiteral) PositionRange() PositionRange { return e.PosRange }

// PositionRange implements the Expr interface.
func (e *StringLiteral) PositionRange() PositionRange { return e.PosRange }

// PositionRange implements the Expr interface.
func (e *VectorSelector) PositionRange() PositionRange { return e.PosRange }

// PositionRange implements the Expr interface.
func (e *MatrixSelector) PositionRange() PositionRange {
	return PositionRange{Start: e.VectorSelector.PositionRange().Start, End: e.EndPos}
}

// PositionRange implements the Expr interface.
func (e *Call) PositionRange() PositionRange { return e.PosRange }

// Children returns the direct child expressions of node.
func Children(node Expr) []Expr {
	switch n := node.(type) {
	case *AggregateExpr:
		if n.Param != nil {
			return []Expr{n.Param, n.Expr}
		}
		return []Expr{n.Expr}
	case *UnaryExpr:
		return []Expr{n.Expr}
	case *BinaryExpr:
		return []Expr{n.LHS, n.RHS}
	case *ParenExpr:
		return []Expr{n.Expr}
	case *SubqueryExpr:
		return []Expr{n.Expr}
	case *MatrixSelector:
		return []Expr{n.VectorSelector}
	case *Call:
		return n.Args
	default:
		// Literals and selectors are leaves.
		return nil
	}
}

// Visitor is invoked by Walk for every node of the tree. If the Visitor
// returned from Visit is not nil, Walk continues with each child.
type Visitor interface {
	Visit(node Expr) (w Visitor)
}

// Walk traverses the tree rooted at node in depth-first order.
func Walk(v Visitor, node Expr) {
	if v = v.Visit(node); v == nil {
		return
	}
	for _, c := range Children(node) {
		Walk(v, c)
	}
}

type inspector func(Expr) bool

func (f inspector) Visit(node Expr) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// Inspect calls f for every node of the tree rooted at node.
// If f returns false, children of the current node are skipped.
func Inspect(node Expr, f func(Expr) bool) {
	Walk(inspector(f), node)
}

// Equal reports whether a and b are structurally equal: byte positions are
// ignored, matcher multisets compare as sets and grouping label lists
// compare as sets.
func Equal(a, b Expr) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case *AggregateExpr:
		y, ok := b.(*AggregateExpr)
		return ok && x.Op == y.Op && labelModifierEqual(x.Modifier, y.Modifier) &&
			Equal(x.Param, y.Param) && Equal(x.Expr, y.Expr)
	case *UnaryExpr:
		y, ok := b.(*UnaryExpr)
		return ok && Equal(x.Expr, y.Expr)
	case *BinaryExpr:
		y, ok := b.(*BinaryExpr)
		return ok && x.Op == y.Op && binModifierEqual(x.Modifier, y.Modifier) &&
			Equal(x.LHS, y.LHS) && Equal(x.RHS, y.RHS)
	case *ParenExpr:
		y, ok := b.(*ParenExpr)
		return ok && Equal(x.Expr, y.Expr)
	case *SubqueryExpr:
		y, ok := b.(*SubqueryExpr)
		return ok && x.Range == y.Range && x.Step == y.Step && x.Offset == y.Offset &&
			timestampEqual(x.Timestamp, y.Timestamp) && x.StartOrEnd == y.StartOrEnd &&
			Equal(x.Expr, y.Expr)
	case *NumberLiteral:
		y, ok := b.(*NumberLiteral)
		return ok && (x.Val == y.Val || math.IsNaN(x.Val) && math.IsNaN(y.Val))
	case *StringLiteral:
		y, ok := b.(*StringLiteral)
		return ok && x.Val == y.Val
	case *VectorSelector:
		y, ok := b.(*VectorSelector)
		return ok && x.Name == y.Name && x.Offset == y.Offset &&
			timestampEqual(x.Timestamp, y.Timestamp) && x.StartOrEnd == y.StartOrEnd &&
			x.LabelMatchers.Equal(&y.LabelMatchers)
	case *MatrixSelector:
		y, ok := b.(*MatrixSelector)
		return ok && x.Range == y.Range && Equal(x.VectorSelector, y.VectorSelector)
	case *Call:
		y, ok := b.(*Call)
		if !ok || x.Func.Name != y.Func.Name || len(x.Args) != len(y.Args) {
			return false
		}
		for i := range x.Args {
			if !Equal(x.Args[i], y.Args[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func labelModifierEqual(a, b *LabelModifier) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Exclude == b.Exclude && labelSetEqual(a.Labels, b.Labels)
}

func binModifierEqual(a, b *BinModifier) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Card == b.Card && a.ReturnBool == b.ReturnBool &&
		labelModifierEqual(a.Matching, b.Matching) && labelSetEqual(a.Include, b.Include)
}

func labelSetEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := slices.Clone(a)
	bs := slices.Clone(b)
	slices.Sort(as)
	slices.Sort(bs)
	return slices.Equal(as, bs)
}

func timestampEqual(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
