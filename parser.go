// Package promql implements a lexer, parser and semantic validator for
// PromQL, the query language of Prometheus. The package targets the
// Prometheus v2.45 grammar.
package promql

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// SupportQuotedLabelNames accepts string literals in the label name
// position of matchers, i.e. `{"foo.bar"="baz"}` and the shorthand
// `{"metric name"}`. Unset it for strict v2.45 compatibility.
// It must be changed before the first Parse call.
var SupportQuotedLabelNames = true

// Parse parses the given PromQL query into an Expr.
//
// The returned expression tree has passed the semantic check and is not
// modified afterwards. On failure the returned error is a *ParseError
// carrying the error kind and the byte span of the offending input.
func Parse(q string) (Expr, error) {
	p := parser{
		lex:   newLexer(q),
		query: q,
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	if p.tok.Kind == EOF {
		return nil, p.syntaxErrf(p.tok.PositionRange(), "no expression found in input")
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.tok.Kind != EOF {
		return nil, p.unexpected("", "")
	}
	c := checker{query: q}
	if err := c.check(e); err != nil {
		return nil, err
	}
	return e, nil
}

// MustParse parses the given query and panics if it is invalid.
func MustParse(q string) Expr {
	e, err := Parse(q)
	if err != nil {
		panic(fmt.Sprintf("BUG: cannot parse %q: %s", q, err))
	}
	return e
}

// parser builds the expression tree from the token stream.
//
// Preconditions for all parser.parse* funcs:
// - p.tok holds the first token of the construct to parse.
//
// Postconditions for all parser.parse* funcs:
// - p.tok holds the next token after the parsed construct.
type parser struct {
	lex   *lexer
	query string

	tok      Token // Current lookahead token.
	ahead    Token // Peeked token, valid if hasAhead is set.
	hasAhead bool
}

// next advances to the next non-comment token. A lexer error surfaces
// as a LexError here.
func (p *parser) next() error {
	if p.hasAhead {
		p.tok = p.ahead
		p.hasAhead = false
	} else {
		p.tok = p.scan()
	}
	if p.tok.Kind == ERROR {
		return &ParseError{
			Kind:     LexError,
			Err:      fmt.Errorf("%s", p.tok.Val),
			Position: PositionRange{Start: p.tok.Pos, End: p.lex.pos},
			Query:    p.query,
		}
	}
	return nil
}

// peek returns the token after the current one without consuming it.
func (p *parser) peek() Token {
	if !p.hasAhead {
		p.ahead = p.scan()
		p.hasAhead = true
	}
	return p.ahead
}

func (p *parser) scan() Token {
	for {
		tok := p.lex.nextToken()
		if tok.Kind != COMMENT {
			return tok
		}
	}
}

func (p *parser) syntaxErrf(pos PositionRange, format string, args ...any) error {
	return &ParseError{
		Kind:     SyntaxError,
		Err:      fmt.Errorf(format, args...),
		Position: pos,
		Query:    p.query,
	}
}

func (p *parser) semanticErrf(pos PositionRange, format string, args ...any) error {
	return &ParseError{
		Kind:     SemanticError,
		Err:      fmt.Errorf(format, args...),
		Position: pos,
		Query:    p.query,
	}
}

func (p *parser) lexErrf(pos PositionRange, format string, args ...any) error {
	return &ParseError{
		Kind:     LexError,
		Err:      fmt.Errorf(format, args...),
		Position: pos,
		Query:    p.query,
	}
}

// unexpected returns a syntax error complaining about the current token,
// i.e. `unexpected identifier "foo" in label matching, expected string`.
func (p *parser) unexpected(context, expected string) error {
	var sb strings.Builder
	sb.WriteString("unexpected ")
	sb.WriteString(p.tok.desc())
	if context != "" {
		sb.WriteString(" in ")
		sb.WriteString(context)
	}
	if expected != "" {
		sb.WriteString(", expected ")
		sb.WriteString(expected)
	}
	return p.syntaxErrf(p.tok.PositionRange(), "%s", sb.String())
}

func (p *parser) parseExpr() (Expr, error) {
	return p.parseBinaryExpr(LowestPrec + 1)
}

// parseBinaryExpr parses binary operations with at least the given
// precedence, climbing into higher-precedence subexpressions on the right.
func (p *parser) parseBinaryExpr(minPrec int) (Expr, error) {
	lhs, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	for {
		op := p.tok.Kind
		prec := op.precedence()
		if prec < minPrec || prec == LowestPrec {
			return lhs, nil
		}
		if err := p.next(); err != nil {
			return nil, err
		}
		mod, err := p.parseBinModifier(op)
		if err != nil {
			return nil, err
		}
		nextPrec := prec + 1
		if op.isRightAssociative() {
			nextPrec = prec
		}
		rhs, err := p.parseBinaryExpr(nextPrec)
		if err != nil {
			return nil, err
		}
		lhs = &BinaryExpr{
			Op:       op,
			LHS:      lhs,
			RHS:      rhs,
			Modifier: mod,
		}
	}
}

// parseBinModifier parses the optional `bool`, `on`/`ignoring` and
// `group_left`/`group_right` clauses following a binary operator.
// It returns nil when the operation carries no modifiers.
func (p *parser) parseBinModifier(op TokenKind) (*BinModifier, error) {
	var mod *BinModifier
	ensure := func() *BinModifier {
		if mod == nil {
			mod = &BinModifier{}
		}
		return mod
	}

	if p.tok.Kind == BOOL {
		if !op.IsComparisonOperator() {
			return nil, p.semanticErrf(p.tok.PositionRange(), "bool modifier can only be used on comparison operators")
		}
		ensure().ReturnBool = true
		if err := p.next(); err != nil {
			return nil, err
		}
	}

	if p.tok.Kind == ON || p.tok.Kind == IGNORING {
		exclude := p.tok.Kind == IGNORING
		if err := p.next(); err != nil {
			return nil, err
		}
		labels, err := p.parseGroupingLabels()
		if err != nil {
			return nil, err
		}
		ensure().Matching = &LabelModifier{
			Exclude: exclude,
			Labels:  labels,
		}

		if p.tok.Kind == GROUP_LEFT || p.tok.Kind == GROUP_RIGHT {
			if op.IsSetOperator() {
				return nil, p.semanticErrf(p.tok.PositionRange(), "no grouping allowed for %q operation", op)
			}
			if p.tok.Kind == GROUP_LEFT {
				mod.Card = CardManyToOne
			} else {
				mod.Card = CardOneToMany
			}
			if err := p.next(); err != nil {
				return nil, err
			}
			// A parenthesized list right after group_left/group_right is
			// always its label list, never a parenthesized expression.
			if p.tok.Kind == LEFT_PAREN {
				include, err := p.parseGroupingLabels()
				if err != nil {
					return nil, err
				}
				mod.Include = include
			}
		}
	}

	if op.IsSetOperator() {
		if ensure().Card == CardOneToOne {
			mod.Card = CardManyToMany
		}
	}
	return mod, nil
}

// parseGroupingLabels parses a parenthesized label list. The list may be
// empty and may carry a trailing comma. Keywords are accepted as labels.
func (p *parser) parseGroupingLabels() ([]string, error) {
	if p.tok.Kind != LEFT_PAREN {
		return nil, p.unexpected("grouping opts", `"("`)
	}
	var labels []string
	for {
		if err := p.next(); err != nil {
			return nil, err
		}
		if p.tok.Kind == RIGHT_PAREN {
			break
		}
		if !p.tok.Kind.canBeGroupingLabel() {
			return nil, p.unexpected("grouping opts", "label")
		}
		labels = append(labels, p.tok.Val)
		if err := p.next(); err != nil {
			return nil, err
		}
		if p.tok.Kind == RIGHT_PAREN {
			break
		}
		if p.tok.Kind != COMMA {
			return nil, p.unexpected("grouping opts", `"," or ")"`)
		}
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	return labels, nil
}

// parseOperand parses a non-binary expression, folding unary signs.
func (p *parser) parseOperand() (Expr, error) {
	if p.tok.Kind == ADD || p.tok.Kind == SUB {
		op := p.tok.Kind
		start := p.tok.Pos
		if err := p.next(); err != nil {
			return nil, err
		}
		// The sign binds tighter than any binary operator except the
		// right-associative power, so `-1^2` parses as `-(1^2)` while
		// `-1*2` parses as `(-1)*2`.
		inner, err := p.parseBinaryExpr(POW.precedence())
		if err != nil {
			return nil, err
		}
		if op == ADD {
			// Unary plus is absorbed.
			return inner, nil
		}
		if nl, ok := inner.(*NumberLiteral); ok {
			nl.Val = -nl.Val
			nl.PosRange.Start = start
			return nl, nil
		}
		return &UnaryExpr{Expr: inner, StartPos: start}, nil
	}
	return p.parsePostfixExpr()
}

// parsePostfixExpr parses a primary expression with any number of range,
// subquery, offset and @ suffixes. offset and @ commute, but each may
// appear at most once per selector.
func (p *parser) parsePostfixExpr() (Expr, error) {
	e, err := p.parsePrimaryExpr()
	if err != nil {
		return nil, err
	}
	for {
		switch p.tok.Kind {
		case LEFT_BRACKET:
			e, err = p.parseMatrixOrSubquery(e)
		case OFFSET:
			e, err = p.parseOffset(e)
		case AT:
			e, err = p.parseAt(e)
		default:
			return e, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// parseMatrixOrSubquery parses `[<range>]` into a matrix selector and
// `[<range>:<step>?]` into a subquery over e.
func (p *parser) parseMatrixOrSubquery(e Expr) (Expr, error) {
	if err := p.next(); err != nil {
		return nil, err
	}
	rang, err := p.parseDurationVal()
	if err != nil {
		return nil, err
	}

	if p.tok.Kind == COLON {
		if err := p.next(); err != nil {
			return nil, err
		}
		var step time.Duration
		if p.tok.Kind == DURATION {
			step, err = p.parseDurationVal()
			if err != nil {
				return nil, err
			}
		}
		if p.tok.Kind != RIGHT_BRACKET {
			return nil, p.unexpected("subquery selector", `"]"`)
		}
		end := p.tok.PositionRange().End
		if err := p.next(); err != nil {
			return nil, err
		}
		return &SubqueryExpr{
			Expr:   e,
			Range:  rang,
			Step:   step,
			EndPos: end,
		}, nil
	}

	if p.tok.Kind != RIGHT_BRACKET {
		return nil, p.unexpected("subquery or range selector", `"]" or ":"`)
	}
	end := p.tok.PositionRange().End
	if err := p.next(); err != nil {
		return nil, err
	}
	vs, ok := unwrapParens(e).(*VectorSelector)
	if !ok {
		return nil, p.semanticErrf(e.PositionRange(), "ranges only allowed for vector selectors")
	}
	return &MatrixSelector{
		VectorSelector: vs,
		Range:          rang,
		EndPos:         end,
	}, nil
}

// unwrapParens strips paren wrappers off e.
func unwrapParens(e Expr) Expr {
	for {
		pe, ok := e.(*ParenExpr)
		if !ok {
			return e
		}
		e = pe.Expr
	}
}

// parseDurationVal consumes the current DURATION token and returns
// its value. Explicit duration literals must be greater than zero.
func (p *parser) parseDurationVal() (time.Duration, error) {
	if p.tok.Kind != DURATION {
		return 0, p.unexpected("", "duration")
	}
	pos := p.tok.PositionRange()
	d, err := ParseDuration(p.tok.Val)
	if err != nil {
		return 0, p.semanticErrf(pos, "%s", err)
	}
	if d == 0 {
		return 0, p.semanticErrf(pos, "duration must be greater than 0")
	}
	if err := p.next(); err != nil {
		return 0, err
	}
	return d, nil
}

// parseOffset parses an `offset [-]<duration>` suffix and attaches it to e.
func (p *parser) parseOffset(e Expr) (Expr, error) {
	if err := p.next(); err != nil {
		return nil, err
	}
	neg := false
	switch p.tok.Kind {
	case SUB:
		neg = true
		fallthrough
	case ADD:
		if err := p.next(); err != nil {
			return nil, err
		}
	}
	if p.tok.Kind != DURATION {
		return nil, p.unexpected("offset", "duration")
	}
	end := p.tok.PositionRange().End
	d, err := p.parseDurationVal()
	if err != nil {
		return nil, err
	}
	if neg {
		d = -d
	}

	var offsetp *time.Duration
	switch s := e.(type) {
	case *VectorSelector:
		offsetp = &s.Offset
	case *MatrixSelector:
		offsetp = &s.VectorSelector.(*VectorSelector).Offset
	case *SubqueryExpr:
		offsetp = &s.Offset
	default:
		return nil, p.semanticErrf(e.PositionRange(), "offset modifier must be preceded by an instant vector selector or range vector selector or a subquery")
	}
	if *offsetp != 0 {
		return nil, p.semanticErrf(e.PositionRange(), "offset may not be set multiple times")
	}
	*offsetp = d
	extendEnd(e, end)
	return e, nil
}

// parseAt parses an `@ <timestamp>`, `@ start()` or `@ end()` suffix
// and attaches it to e.
func (p *parser) parseAt(e Expr) (Expr, error) {
	atPos := p.tok.PositionRange()
	if err := p.next(); err != nil {
		return nil, err
	}

	var (
		ts         *int64
		startOrEnd TokenKind
		end        Pos
	)
	switch p.tok.Kind {
	case NUMBER, ADD, SUB:
		neg := p.tok.Kind == SUB
		if p.tok.Kind == ADD || p.tok.Kind == SUB {
			if err := p.next(); err != nil {
				return nil, err
			}
			if p.tok.Kind != NUMBER {
				return nil, p.unexpected("@ modifier", "number")
			}
		}
		val, err := parseNumber(p.tok.Val)
		if err != nil {
			return nil, p.lexErrf(p.tok.PositionRange(), "%s", err)
		}
		if neg {
			val = -val
		}
		ms := val * 1000
		if math.IsNaN(ms) || math.IsInf(ms, 0) || ms >= float64(math.MaxInt64) || ms <= float64(math.MinInt64) {
			return nil, p.semanticErrf(atPos, "timestamp out of bounds for @ modifier: %f", val)
		}
		v := int64(ms)
		ts = &v
		end = p.tok.PositionRange().End
		if err := p.next(); err != nil {
			return nil, err
		}
	case START, END:
		startOrEnd = p.tok.Kind
		if err := p.next(); err != nil {
			return nil, err
		}
		if p.tok.Kind != LEFT_PAREN {
			return nil, p.unexpected("@ modifier", `"("`)
		}
		if err := p.next(); err != nil {
			return nil, err
		}
		if p.tok.Kind != RIGHT_PAREN {
			return nil, p.unexpected("@ modifier", `")"`)
		}
		end = p.tok.PositionRange().End
		if err := p.next(); err != nil {
			return nil, err
		}
	default:
		return nil, p.unexpected("@ modifier", "number, start() or end()")
	}

	var (
		tsp    **int64
		soep   *TokenKind
		target Expr = e
	)
	switch s := e.(type) {
	case *VectorSelector:
		tsp, soep = &s.Timestamp, &s.StartOrEnd
	case *MatrixSelector:
		vs := s.VectorSelector.(*VectorSelector)
		tsp, soep = &vs.Timestamp, &vs.StartOrEnd
	case *SubqueryExpr:
		tsp, soep = &s.Timestamp, &s.StartOrEnd
	default:
		return nil, p.semanticErrf(e.PositionRange(), "@ modifier must be preceded by an instant vector selector or range vector selector or a subquery")
	}
	if *tsp != nil || *soep != 0 {
		return nil, p.semanticErrf(e.PositionRange(), "@ <timestamp> may not be set multiple times")
	}
	*tsp = ts
	*soep = startOrEnd
	extendEnd(target, end)
	return e, nil
}

// extendEnd grows the byte span of e to cover an offset or @ suffix.
func extendEnd(e Expr, end Pos) {
	switch s := e.(type) {
	case *VectorSelector:
		if end > s.PosRange.End {
			s.PosRange.End = end
		}
	case *MatrixSelector:
		if end > s.EndPos {
			s.EndPos = end
		}
	case *SubqueryExpr:
		if end > s.EndPos {
			s.EndPos = end
		}
	}
}

// parsePrimaryExpr parses literals, selectors, calls, aggregations and
// parenthesized expressions.
func (p *parser) parsePrimaryExpr() (Expr, error) {
	tok := p.tok
	switch {
	case tok.Kind == NUMBER:
		val, err := parseNumber(tok.Val)
		if err != nil {
			return nil, p.lexErrf(tok.PositionRange(), "%s", err)
		}
		if err := p.next(); err != nil {
			return nil, err
		}
		return &NumberLiteral{Val: val, PosRange: tok.PositionRange()}, nil

	case tok.Kind == DURATION:
		// A duration in number context is its seconds as a float.
		d, err := ParseDuration(tok.Val)
		if err != nil {
			return nil, p.semanticErrf(tok.PositionRange(), "%s", err)
		}
		if err := p.next(); err != nil {
			return nil, err
		}
		return &NumberLiteral{Val: d.Seconds(), PosRange: tok.PositionRange()}, nil

	case tok.Kind == STRING:
		s, err := unquoteString(tok.Val)
		if err != nil {
			return nil, p.lexErrf(tok.PositionRange(), "%s", err)
		}
		if err := p.next(); err != nil {
			return nil, err
		}
		return &StringLiteral{Val: s, PosRange: tok.PositionRange()}, nil

	case tok.Kind == LEFT_PAREN:
		return p.parseParenExpr()

	case tok.Kind.IsAggregator():
		if next := p.peek().Kind; next == LEFT_PAREN || next == BY || next == WITHOUT {
			return p.parseAggregateExpr()
		}
		return p.parseVectorSelector()

	case tok.Kind == IDENTIFIER && p.peek().Kind == LEFT_PAREN:
		return p.parseCall()

	case tok.Kind.canBeMetricName() || tok.Kind == LEFT_BRACE:
		return p.parseVectorSelector()

	case tok.Kind.IsReserved():
		return nil, p.semanticErrf(tok.PositionRange(), "%q is reserved and not yet supported", tok.Val)
	}
	return p.parseVectorSelectorFallback()
}

// parseVectorSelectorFallback reports the standard error for a token that
// cannot start an expression.
func (p *parser) parseVectorSelectorFallback() (Expr, error) {
	return nil, p.unexpected("", "expression")
}

func (p *parser) parseParenExpr() (Expr, error) {
	start := p.tok.Pos
	if err := p.next(); err != nil {
		return nil, err
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.tok.Kind != RIGHT_PAREN {
		return nil, p.unexpected("paren expression", `")"`)
	}
	end := p.tok.PositionRange().End
	if err := p.next(); err != nil {
		return nil, err
	}
	return &ParenExpr{
		Expr:     e,
		PosRange: PositionRange{Start: start, End: end},
	}, nil
}

func (p *parser) parseCall() (Expr, error) {
	nameTok := p.tok
	fn, ok := GetFunction(nameTok.Val)
	if !ok {
		return nil, p.semanticErrf(nameTok.PositionRange(), "unknown function with name %q", nameTok.Val)
	}
	if fn.Experimental && !EnableExperimentalFunctions {
		return nil, p.semanticErrf(nameTok.PositionRange(), "function %q is not enabled", nameTok.Val)
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	args, end, err := p.parseArgList()
	if err != nil {
		return nil, err
	}
	return &Call{
		Func: fn,
		Args: args,
		PosRange: PositionRange{
			Start: nameTok.Pos,
			End:   end,
		},
	}, nil
}

// parseArgList parses a parenthesized, comma-separated expression list.
// Trailing commas are rejected. It returns the end offset of the
// closing paren.
func (p *parser) parseArgList() ([]Expr, Pos, error) {
	if p.tok.Kind != LEFT_PAREN {
		return nil, 0, p.unexpected("call args", `"("`)
	}
	var args []Expr
	for {
		if err := p.next(); err != nil {
			return nil, 0, err
		}
		if p.tok.Kind == RIGHT_PAREN {
			if len(args) > 0 {
				return nil, 0, p.syntaxErrf(p.tok.PositionRange(), "trailing commas not allowed in function call args")
			}
			break
		}
		arg, err := p.parseExpr()
		if err != nil {
			return nil, 0, err
		}
		args = append(args, arg)
		if p.tok.Kind == COMMA {
			continue
		}
		if p.tok.Kind == RIGHT_PAREN {
			break
		}
		return nil, 0, p.unexpected("call args", `"," or ")"`)
	}
	end := p.tok.PositionRange().End
	if err := p.next(); err != nil {
		return nil, 0, err
	}
	return args, end, nil
}

func (p *parser) parseAggregateExpr() (Expr, error) {
	opTok := p.tok
	if err := p.next(); err != nil {
		return nil, err
	}

	var mod *LabelModifier
	if p.tok.Kind == BY || p.tok.Kind == WITHOUT {
		m, err := p.parseLabelModifier()
		if err != nil {
			return nil, err
		}
		mod = m
	}

	if p.tok.Kind != LEFT_PAREN {
		return nil, p.unexpected("aggregation", `"("`)
	}
	args, end, err := p.parseArgList()
	if err != nil {
		return nil, err
	}

	if mod == nil && (p.tok.Kind == BY || p.tok.Kind == WITHOUT) {
		m, err := p.parseLabelModifier()
		if err != nil {
			return nil, err
		}
		mod = m
	}

	if len(args) == 0 {
		return nil, p.semanticErrf(opTok.PositionRange(), "no arguments for aggregate expression provided")
	}
	desiredArgs := 1
	ae := &AggregateExpr{
		Op:       opTok.Kind,
		Modifier: mod,
	}
	if opTok.Kind.IsAggregatorWithParam() {
		desiredArgs = 2
		ae.Param = args[0]
	}
	if len(args) != desiredArgs {
		return nil, p.semanticErrf(opTok.PositionRange(), "wrong number of arguments for aggregate expression provided, expected %d, got %d", desiredArgs, len(args))
	}
	ae.Expr = args[desiredArgs-1]
	ae.PosRange = PositionRange{Start: opTok.Pos, End: end}
	return ae, nil
}

// parseLabelModifier parses a `by (...)` or `without (...)` clause.
func (p *parser) parseLabelModifier() (*LabelModifier, error) {
	exclude := p.tok.Kind == WITHOUT
	if err := p.next(); err != nil {
		return nil, err
	}
	labels, err := p.parseGroupingLabels()
	if err != nil {
		return nil, err
	}
	return &LabelModifier{
		Exclude: exclude,
		Labels:  labels,
	}, nil
}

// parseVectorSelector parses `metric`, `metric{...}` and `{...}` forms.
func (p *parser) parseVectorSelector() (Expr, error) {
	var (
		name  string
		start = p.tok.Pos
		end   = p.tok.PositionRange().End
	)
	if p.tok.Kind != LEFT_BRACE {
		name = p.tok.Val
		if err := p.next(); err != nil {
			return nil, err
		}
	}

	var matchers Matchers
	if p.tok.Kind == LEFT_BRACE {
		ms, e, err := p.parseLabelMatchers()
		if err != nil {
			return nil, err
		}
		matchers = ms
		end = e
	}

	if name != "" {
		// The metric name becomes an implicit __name__ equality matcher
		// in every alternative group.
		for _, group := range matchers.groups() {
			for _, m := range group {
				if m.Name == MetricName {
					return nil, p.semanticErrf(PositionRange{Start: start, End: end}, "metric name must not be set twice: %q or %q", name, m.Value)
				}
			}
		}
		nameMatcher := mustNewMatcher(MatchEqual, MetricName, name)
		if len(matchers.Or) > 0 {
			for i := range matchers.Or {
				matchers.Or[i] = append(matchers.Or[i], nameMatcher)
			}
		} else {
			matchers.Matchers = append(matchers.Matchers, nameMatcher)
		}
	}

	return &VectorSelector{
		Name:          name,
		LabelMatchers: matchers,
		PosRange:      PositionRange{Start: start, End: end},
	}, nil
}

// parseLabelMatchers parses a braced matcher list. Both comma and `or`
// separate matchers; `or` starts an alternative group. A trailing comma
// is allowed. It returns the end offset of the closing brace.
func (p *parser) parseLabelMatchers() (Matchers, Pos, error) {
	var (
		ms      Matchers
		groups  [][]*Matcher
		cur     []*Matcher
		afterOr bool
	)
	for {
		if err := p.next(); err != nil {
			return ms, 0, err
		}
		if p.tok.Kind == RIGHT_BRACE && !afterOr {
			break
		}
		m, err := p.parseLabelMatcher()
		if err != nil {
			return ms, 0, err
		}
		cur = append(cur, m)
		afterOr = false

		switch {
		case p.tok.Kind == COMMA:
			continue
		case p.tok.Kind == RIGHT_BRACE:
		case p.tok.Kind == IDENTIFIER && strings.EqualFold(p.tok.Val, "or"):
			groups = append(groups, cur)
			cur = nil
			afterOr = true
			continue
		default:
			return ms, 0, p.unexpected("label matching", `"," , "or" or "}"`)
		}
		break
	}
	end := p.tok.PositionRange().End
	if err := p.next(); err != nil {
		return ms, 0, err
	}

	if len(groups) > 0 {
		ms.Or = append(groups, cur)
	} else {
		ms.Matchers = cur
	}
	return ms, end, nil
}

// parseLabelMatcher parses a single `name <op> "value"` matcher.
// A string may stand for the label name, and a lone string is shorthand
// for a __name__ equality matcher.
func (p *parser) parseLabelMatcher() (*Matcher, error) {
	var name string
	switch {
	case p.tok.Kind == IDENTIFIER:
		name = p.tok.Val
	case p.tok.Kind == STRING && SupportQuotedLabelNames:
		decoded, err := unquoteString(p.tok.Val)
		if err != nil {
			return nil, p.lexErrf(p.tok.PositionRange(), "%s", err)
		}
		name = decoded
		switch next := p.peek().Kind; {
		case next == RIGHT_BRACE || next == COMMA ||
			(next == IDENTIFIER && strings.EqualFold(p.peek().Val, "or")):
			// A lone string selects the metric with that name.
			if err := p.next(); err != nil {
				return nil, err
			}
			return mustNewMatcher(MatchEqual, MetricName, name), nil
		}
	default:
		return nil, p.unexpected("label matching", "identifier or string")
	}
	if err := p.next(); err != nil {
		return nil, err
	}

	var op MatchOp
	switch p.tok.Kind {
	case EQL:
		op = MatchEqual
	case NEQ:
		op = MatchNotEqual
	case EQL_REGEX:
		op = MatchRegexp
	case NEQ_REGEX:
		op = MatchNotRegexp
	default:
		return nil, p.unexpected("label matching", `one of "=", "!=", "=~" or "!~"`)
	}
	if err := p.next(); err != nil {
		return nil, err
	}

	if p.tok.Kind != STRING {
		return nil, p.unexpected("label matching", "string")
	}
	valPos := p.tok.PositionRange()
	val, err := unquoteString(p.tok.Val)
	if err != nil {
		return nil, p.lexErrf(valPos, "%s", err)
	}
	if err := p.next(); err != nil {
		return nil, err
	}

	m, err := NewMatcher(op, name, val)
	if err != nil {
		return nil, p.semanticErrf(valPos, "%s", err)
	}
	return m, nil
}
