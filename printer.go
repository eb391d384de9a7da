package promql

import (
	"fmt"
	"slices"
	"strconv"
	"time"
)

// The canonical string form of an expression parses back into an equal
// tree: printing adds no parentheses of its own, ParenExpr nodes carry
// the ones the query had. Label sets print sorted; matcher lists keep
// their insertion order.

// AppendString implements the Expr interface.
func (e *AggregateExpr) AppendString(dst []byte) []byte {
	dst = append(dst, e.Op.String()...)
	if e.Modifier != nil {
		if e.Modifier.Exclude {
			dst = append(dst, " without ("...)
		} else {
			dst = append(dst, " by ("...)
		}
		dst = appendSortedLabels(dst, e.Modifier.Labels)
		dst = append(dst, ") "...)
	}
	dst = append(dst, '(')
	if e.Param != nil {
		dst = e.Param.AppendString(dst)
		dst = append(dst, ", "...)
	}
	dst = e.Expr.AppendString(dst)
	dst = append(dst, ')')
	return dst
}

// AppendString implements the Expr interface.
func (e *UnaryExpr) AppendString(dst []byte) []byte {
	dst = append(dst, '-')
	return e.Expr.AppendString(dst)
}

// AppendString implements the Expr interface.
func (e *BinaryExpr) AppendString(dst []byte) []byte {
	dst = e.LHS.AppendString(dst)
	dst = append(dst, ' ')
	dst = append(dst, e.Op.String()...)
	if m := e.Modifier; m != nil {
		if m.ReturnBool {
			dst = append(dst, " bool"...)
		}
		if m.Matching != nil {
			if m.Matching.Exclude {
				dst = append(dst, " ignoring ("...)
			} else {
				dst = append(dst, " on ("...)
			}
			dst = appendSortedLabels(dst, m.Matching.Labels)
			dst = append(dst, ')')
			switch m.Card {
			case CardManyToOne:
				dst = append(dst, " group_left ("...)
				dst = appendSortedLabels(dst, m.Include)
				dst = append(dst, ')')
			case CardOneToMany:
				dst = append(dst, " group_right ("...)
				dst = appendSortedLabels(dst, m.Include)
				dst = append(dst, ')')
			}
		}
	}
	dst = append(dst, ' ')
	return e.RHS.AppendString(dst)
}

// AppendString implements the Expr interface.
func (e *ParenExpr) AppendString(dst []byte) []byte {
	dst = append(dst, '(')
	dst = e.Expr.AppendString(dst)
	return append(dst, ')')
}

// AppendString implements the Expr interface.
func (e *SubqueryExpr) AppendString(dst []byte) []byte {
	dst = e.Expr.AppendString(dst)
	dst = append(dst, '[')
	dst = AppendDuration(dst, e.Range)
	dst = append(dst, ':')
	if e.Step != 0 {
		dst = AppendDuration(dst, e.Step)
	}
	dst = append(dst, ']')
	dst = appendAtSuffix(dst, e.Timestamp, e.StartOrEnd)
	dst = appendOffsetSuffix(dst, e.Offset)
	return dst
}

// AppendString implements the Expr interface.
func (e *NumberLiteral) AppendString(dst []byte) []byte {
	return strconv.AppendFloat(dst, e.Val, 'g', -1, 64)
}

// AppendString implements the Expr interface.
func (e *StringLiteral) AppendString(dst []byte) []byte {
	return strconv.AppendQuote(dst, e.Val)
}

// AppendString implements the Expr interface.
func (e *VectorSelector) AppendString(dst []byte) []byte {
	dst = e.appendStringNoModifiers(dst)
	dst = appendAtSuffix(dst, e.Timestamp, e.StartOrEnd)
	dst = appendOffsetSuffix(dst, e.Offset)
	return dst
}

// appendStringNoModifiers prints the selector without its offset and @
// suffixes, so a wrapping matrix selector can place them after the range.
func (e *VectorSelector) appendStringNoModifiers(dst []byte) []byte {
	dst = append(dst, e.Name...)

	// The implicit __name__ matcher derived from the name is not printed.
	visible := func(m *Matcher) bool {
		return e.Name == "" || m.Name != MetricName || m.Op != MatchEqual || m.Value != e.Name
	}
	hasVisible := false
	for _, group := range e.LabelMatchers.groups() {
		for _, m := range group {
			if visible(m) {
				hasVisible = true
			}
		}
	}
	if !hasVisible && e.Name != "" {
		return dst
	}

	dst = append(dst, '{')
	for i, group := range e.LabelMatchers.groups() {
		if i > 0 {
			dst = append(dst, " or "...)
		}
		first := true
		for _, m := range group {
			if !visible(m) {
				continue
			}
			if !first {
				dst = append(dst, ',')
			}
			first = false
			dst = m.AppendString(dst)
		}
	}
	return append(dst, '}')
}

// AppendString implements the Expr interface.
func (e *MatrixSelector) AppendString(dst []byte) []byte {
	vs, ok := unwrapParens(e.VectorSelector).(*VectorSelector)
	if !ok {
		// Only a tree that never passed the checker can end up here.
		dst = e.VectorSelector.AppendString(dst)
		dst = append(dst, '[')
		dst = AppendDuration(dst, e.Range)
		return append(dst, ']')
	}
	dst = vs.appendStringNoModifiers(dst)
	dst = append(dst, '[')
	dst = AppendDuration(dst, e.Range)
	dst = append(dst, ']')
	dst = appendAtSuffix(dst, vs.Timestamp, vs.StartOrEnd)
	dst = appendOffsetSuffix(dst, vs.Offset)
	return dst
}

// AppendString implements the Expr interface.
func (e *Call) AppendString(dst []byte) []byte {
	dst = append(dst, e.Func.Name...)
	dst = append(dst, '(')
	for i, arg := range e.Args {
		if i > 0 {
			dst = append(dst, ", "...)
		}
		dst = arg.AppendString(dst)
	}
	return append(dst, ')')
}

func appendOffsetSuffix(dst []byte, offset time.Duration) []byte {
	if offset == 0 {
		return dst
	}
	dst = append(dst, " offset "...)
	return AppendDuration(dst, offset)
}

func appendAtSuffix(dst []byte, ts *int64, startOrEnd TokenKind) []byte {
	switch {
	case ts != nil:
		dst = append(dst, " @ "...)
		return append(dst, fmt.Sprintf("%.3f", float64(*ts)/1000)...)
	case startOrEnd == START:
		return append(dst, " @ start()"...)
	case startOrEnd == END:
		return append(dst, " @ end()"...)
	}
	return dst
}

func appendSortedLabels(dst []byte, labels []string) []byte {
	sorted := slices.Clone(labels)
	slices.Sort(sorted)
	for i, l := range sorted {
		if i > 0 {
			dst = append(dst, ", "...)
		}
		dst = append(dst, l...)
	}
	return dst
}

// String implements the Expr interface.
func (e *AggregateExpr) String() string { return string(e.AppendString(nil)) }

// String implements the Expr interface.
func (e *UnaryExpr) String() string { return string(e.AppendString(nil)) }

// String implements the Expr interface.
func (e *BinaryExpr) String() string { return string(e.AppendString(nil)) }

// String implements the Expr interface.
func (e *ParenExpr) String() string { return string(e.AppendString(nil)) }

// String implements the Expr interface.
func (e *SubqueryExpr) String() string { return string(e.AppendString(nil)) }

// String implements the Expr interface.
func (e *NumberLiteral) String() string { return string(e.AppendString(nil)) }

// String implements the Expr interface.
func (e *StringLiteral) String() string { return string(e.AppendString(nil)) }

// String implements the Expr interface.
func (e *VectorSelector) String() string { return string(e.AppendString(nil)) }

// String implements the Expr interface.
func (e *MatrixSelector) String() string { return string(e.AppendString(nil)) }

// String implements the Expr interface.
func (e *Call) String() string { return string(e.AppendString(nil)) }
