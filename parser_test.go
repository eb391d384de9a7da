package promql

import (
	"math"
	"strings"
	"testing"
	"time"
)

func mustParseExpr(t *testing.T, q string) Expr {
	t.Helper()
	e, err := Parse(q)
	if err != nil {
		t.Fatalf("unexpected error when parsing %q: %s", q, err)
	}
	if e == nil {
		t.Fatalf("parsing %q returned an empty tree", q)
	}
	return e
}

// vsel builds a vector selector with the implicit __name__ matcher the
// parser adds for a non-empty metric name.
func vsel(name string, ms ...*Matcher) *VectorSelector {
	v := &VectorSelector{Name: name}
	v.LabelMatchers.Matchers = append(v.LabelMatchers.Matchers, ms...)
	if name != "" {
		v.LabelMatchers.Matchers = append(v.LabelMatchers.Matchers, mustNewMatcher(MatchEqual, MetricName, name))
	}
	return v
}

func numLit(v float64) *NumberLiteral {
	return &NumberLiteral{Val: v}
}

func callExpr(name string, args ...Expr) *Call {
	fn, ok := GetFunction(name)
	if !ok {
		panic("unknown function in test: " + name)
	}
	return &Call{Func: fn, Args: args}
}

func tsp(ms int64) *int64 {
	return &ms
}

func checkParse(t *testing.T, q string, want Expr) {
	t.Helper()
	got := mustParseExpr(t, q)
	if !Equal(got, want) {
		t.Fatalf("unexpected AST for %q; got %s; want %s", q, got.String(), want.String())
	}
}

func TestParseNumberLiterals(t *testing.T) {
	f := func(q string, want float64) {
		t.Helper()
		checkParse(t, q, numLit(want))
	}

	f("1", 1)
	f("+Inf", math.Inf(1))
	f("-Inf", math.Inf(-1))
	f("Inf", math.Inf(1))
	f(".5", 0.5)
	f("5.", 5)
	f("123.4567", 123.4567)
	f("5e-3", 0.005)
	f("5e3", 5000)
	f("0xc", 12)
	f("0b101", 5)
	f("0o17", 15)
	f("0755", 493)
	f("08", 8)
	f("+5.5e-3", 0.0055)
	f("-0755", -493)
	f("NaN", math.NaN())
	// A duration in number context is its seconds as a float.
	f("5m", 300)
	f("1h30m", 5400)
	f("--5", 5)
	f("-+7", -7)
	f(strings.Repeat("9", 300), math.Inf(1))
}

func TestParseStringLiterals(t *testing.T) {
	f := func(q, want string) {
		t.Helper()
		checkParse(t, q, &StringLiteral{Val: want})
	}

	f(`"double-quoted string \" with escaped quote"`, `double-quoted string " with escaped quote`)
	f(`'single-quoted string \' with escaped quote'`, `single-quoted string ' with escaped quote`)
	f("`backtick-quoted string`", "backtick-quoted string")
	f(`"\a\b\f\n\r\t\v\\\" - \xFF\377ሴ\U00010111☺"`, "\a\b\f\n\r\t\v\\\" - \xff\xffሴ\U00010111☺")
}

func TestParseVectorSelectors(t *testing.T) {
	f := func(q string, want Expr) {
		t.Helper()
		checkParse(t, q, want)
	}

	f("foo", vsel("foo"))
	f("foo{}", vsel("foo"))
	f("min", vsel("min"))
	f(":node_memory_MemFree_bytes:sum", vsel(":node_memory_MemFree_bytes:sum"))
	f(`{a="b"}`, vsel("", mustNewMatcher(MatchEqual, "a", "b")))
	f(`{__name__="foo"}`, vsel("", mustNewMatcher(MatchEqual, MetricName, "foo")))
	f(`foo{a="b", c!="d", e=~"f", g!~"h"}`, vsel("foo",
		mustNewMatcher(MatchEqual, "a", "b"),
		mustNewMatcher(MatchNotEqual, "c", "d"),
		mustNewMatcher(MatchRegexp, "e", "f"),
		mustNewMatcher(MatchNotRegexp, "g", "h"),
	))
	// Trailing comma.
	f(`foo{a="b",}`, vsel("foo", mustNewMatcher(MatchEqual, "a", "b")))
	// Keywords fold back to label names inside braces.
	f(`{on="x", offset="y"}`, vsel("",
		mustNewMatcher(MatchEqual, "on", "x"),
		mustNewMatcher(MatchEqual, "offset", "y"),
	))
	// Operator words double as metric names.
	f(`offset{a="b"}`, vsel("offset", mustNewMatcher(MatchEqual, "a", "b")))
	f(`prometheus_http_requests_total{code="200", job="prometheus"}`, vsel("prometheus_http_requests_total",
		mustNewMatcher(MatchEqual, "code", "200"),
		mustNewMatcher(MatchEqual, "job", "prometheus"),
	))

	// Offsets and @.
	{
		v := vsel("foo")
		v.Offset = 5 * time.Minute
		f("foo offset 5m", v)
	}
	{
		v := vsel("foo")
		v.Offset = -7 * time.Minute
		f("foo offset -7m", v)
	}
	{
		v := vsel("foo")
		v.Offset = 90 * time.Minute
		f("foo OFFSET 1h30m", v)
	}
	{
		v := vsel("foo")
		v.Timestamp = tsp(1603774568000)
		f("foo @ 1603774568", v)
	}
	{
		v := vsel("foo")
		v.Timestamp = tsp(-100000)
		f("foo @ -100", v)
	}
	{
		v := vsel("foo")
		v.StartOrEnd = START
		f("foo @ start()", v)
	}
	{
		v := vsel("foo")
		v.StartOrEnd = END
		f("foo @ end()", v)
	}
	{
		v := vsel("foo")
		v.Offset = 5 * time.Minute
		v.Timestamp = tsp(100000)
		f("foo @ 100 offset 5m", v)
		f("foo offset 5m @ 100", v)
	}
	{
		v := vsel("http_requests_total",
			mustNewMatcher(MatchRegexp, "environment", "staging|testing|development"),
			mustNewMatcher(MatchNotEqual, "method", "GET"),
		)
		v.Timestamp = tsp(1609746000000)
		v.Offset = 5 * time.Minute
		f(`http_requests_total{environment=~"staging|testing|development",method!="GET"} @ 1609746000 offset 5m`, v)
	}
}

func TestParseQuotedLabelNames(t *testing.T) {
	checkParse(t, `{"foo"}`, vsel("", mustNewMatcher(MatchEqual, MetricName, "foo")))
	checkParse(t, `{"foo.bar"="baz"}`, vsel("", mustNewMatcher(MatchEqual, "foo.bar", "baz")))
	checkParse(t, `{"foo", a="b"}`, vsel("",
		mustNewMatcher(MatchEqual, MetricName, "foo"),
		mustNewMatcher(MatchEqual, "a", "b"),
	))

	SupportQuotedLabelNames = false
	defer func() { SupportQuotedLabelNames = true }()
	if _, err := Parse(`{"foo"}`); err == nil {
		t.Fatalf("expecting error for quoted label name in strict mode")
	}
}

func TestParseOrMatchers(t *testing.T) {
	{
		want := &VectorSelector{LabelMatchers: Matchers{Or: [][]*Matcher{
			{mustNewMatcher(MatchEqual, "a", "b")},
			{mustNewMatcher(MatchEqual, "c", "d")},
		}}}
		checkParse(t, `{a="b" or c="d"}`, want)
	}
	{
		nameMatcher := mustNewMatcher(MatchEqual, MetricName, "foo")
		want := &VectorSelector{Name: "foo", LabelMatchers: Matchers{Or: [][]*Matcher{
			{mustNewMatcher(MatchEqual, "a", "b"), nameMatcher},
			{mustNewMatcher(MatchEqual, "c", "d"), mustNewMatcher(MatchEqual, "e", "f"), nameMatcher},
		}}}
		checkParse(t, `foo{a="b" or c="d",e="f"}`, want)
	}
}

func TestParseMatrixAndSubquery(t *testing.T) {
	f := func(q string, want Expr) {
		t.Helper()
		checkParse(t, q, want)
	}

	f("foo[5m]", &MatrixSelector{VectorSelector: vsel("foo"), Range: 5 * time.Minute})
	f("foo[90m]", &MatrixSelector{VectorSelector: vsel("foo"), Range: 90 * time.Minute})
	f(`foo{a="b"}[1h30m]`, &MatrixSelector{
		VectorSelector: vsel("foo", mustNewMatcher(MatchEqual, "a", "b")),
		Range:          90 * time.Minute,
	})
	// Parens around the selector are stripped.
	f("(foo)[5m]", &MatrixSelector{VectorSelector: vsel("foo"), Range: 5 * time.Minute})
	{
		v := vsel("foo")
		v.Offset = time.Minute
		f("foo[5m] offset 1m", &MatrixSelector{VectorSelector: v, Range: 5 * time.Minute})
	}
	{
		v := vsel("foo")
		v.Timestamp = tsp(100000)
		f("foo[5m] @ 100", &MatrixSelector{VectorSelector: v, Range: 5 * time.Minute})
	}

	f("foo[5m:]", &SubqueryExpr{Expr: vsel("foo"), Range: 5 * time.Minute})
	f("foo[5m:10s]", &SubqueryExpr{Expr: vsel("foo"), Range: 5 * time.Minute, Step: 10 * time.Second})
	{
		sq := &SubqueryExpr{Expr: vsel("foo"), Range: 5 * time.Minute}
		sq.Offset = time.Minute
		f("foo[5m:] offset 1m", sq)
	}
	{
		sq := &SubqueryExpr{Expr: vsel("foo"), Range: 5 * time.Minute}
		sq.StartOrEnd = START
		f("foo[5m:] @ start()", sq)
	}
	f("rate(foo[5m])[1h:]", &SubqueryExpr{
		Expr:  callExpr("rate", &MatrixSelector{VectorSelector: vsel("foo"), Range: 5 * time.Minute}),
		Range: time.Hour,
	})
	f("min_over_time(rate(foo[5m])[30s:3s])", callExpr("min_over_time", &SubqueryExpr{
		Expr:  callExpr("rate", &MatrixSelector{VectorSelector: vsel("foo"), Range: 5 * time.Minute}),
		Range: 30 * time.Second,
		Step:  3 * time.Second,
	}))
	f("(foo + bar)[5m:]", &SubqueryExpr{
		Expr: &ParenExpr{Expr: &BinaryExpr{
			Op:  ADD,
			LHS: vsel("foo"),
			RHS: vsel("bar"),
		}},
		Range: 5 * time.Minute,
	})
}

func TestParseCalls(t *testing.T) {
	f := func(q string, want Expr) {
		t.Helper()
		checkParse(t, q, want)
	}

	f("time()", callExpr("time"))
	f("pi()", callExpr("pi"))
	f("rate(foo[5m])", callExpr("rate", &MatrixSelector{VectorSelector: vsel("foo"), Range: 5 * time.Minute}))
	f(`floor(some_metric{foo!="bar"})`, callExpr("floor", vsel("some_metric", mustNewMatcher(MatchNotEqual, "foo", "bar"))))
	f("round(rate(foo[5m]), 5)", callExpr("round",
		callExpr("rate", &MatrixSelector{VectorSelector: vsel("foo"), Range: 5 * time.Minute}),
		numLit(5),
	))
	f("year()", callExpr("year"))
	f(`label_join(foo, "dst", "-", "a", "b")`, callExpr("label_join",
		vsel("foo"),
		&StringLiteral{Val: "dst"},
		&StringLiteral{Val: "-"},
		&StringLiteral{Val: "a"},
		&StringLiteral{Val: "b"},
	))
	f("vector(1)", callExpr("vector", numLit(1)))
	f("1 + scalar(foo)", &BinaryExpr{Op: ADD, LHS: numLit(1), RHS: callExpr("scalar", vsel("foo"))})
}

func TestParseAggregateExprs(t *testing.T) {
	f := func(q string, want Expr) {
		t.Helper()
		checkParse(t, q, want)
	}

	f("sum(foo)", &AggregateExpr{Op: SUM, Expr: vsel("foo")})
	f("avg by (job) (foo)", &AggregateExpr{
		Op:       AVG,
		Modifier: &LabelModifier{Labels: []string{"job"}},
		Expr:     vsel("foo"),
	})
	f("sum by (job) (rate(http_requests_total[5m]))", &AggregateExpr{
		Op:       SUM,
		Modifier: &LabelModifier{Labels: []string{"job"}},
		Expr:     callExpr("rate", &MatrixSelector{VectorSelector: vsel("http_requests_total"), Range: 5 * time.Minute}),
	})
	// The modifier may follow the argument list instead.
	f("sum (foo) without (a, b)", &AggregateExpr{
		Op:       SUM,
		Modifier: &LabelModifier{Exclude: true, Labels: []string{"a", "b"}},
		Expr:     vsel("foo"),
	})
	f("sum by () (foo)", &AggregateExpr{
		Op:       SUM,
		Modifier: &LabelModifier{},
		Expr:     vsel("foo"),
	})
	// Keywords are legal grouping labels.
	f("sum without (and, by, avg, count, alert, annotations) (foo)", &AggregateExpr{
		Op:       SUM,
		Modifier: &LabelModifier{Exclude: true, Labels: []string{"and", "by", "avg", "count", "alert", "annotations"}},
		Expr:     vsel("foo"),
	})
	f("topk(5, foo)", &AggregateExpr{Op: TOPK, Param: numLit(5), Expr: vsel("foo")})
	f("bottomk(3, foo)", &AggregateExpr{Op: BOTTOMK, Param: numLit(3), Expr: vsel("foo")})
	f("quantile(0.9, foo)", &AggregateExpr{Op: QUANTILE, Param: numLit(0.9), Expr: vsel("foo")})
	f(`count_values("value", foo)`, &AggregateExpr{
		Op:    COUNT_VALUES,
		Param: &StringLiteral{Val: "value"},
		Expr:  vsel("foo"),
	})
	f("stddev(foo)", &AggregateExpr{Op: STDDEV, Expr: vsel("foo")})
	f("group(foo)", &AggregateExpr{Op: GROUP, Expr: vsel("foo")})
}

func TestParseBinaryExprs(t *testing.T) {
	f := func(q string, want Expr) {
		t.Helper()
		checkParse(t, q, want)
	}
	m2m := func() *BinModifier {
		return &BinModifier{Card: CardManyToMany}
	}

	f("1 + 1", &BinaryExpr{Op: ADD, LHS: numLit(1), RHS: numLit(1)})
	f("1 - 1", &BinaryExpr{Op: SUB, LHS: numLit(1), RHS: numLit(1)})
	f("1 * 1", &BinaryExpr{Op: MUL, LHS: numLit(1), RHS: numLit(1)})
	f("1 / 1", &BinaryExpr{Op: DIV, LHS: numLit(1), RHS: numLit(1)})
	f("1 % 1", &BinaryExpr{Op: MOD, LHS: numLit(1), RHS: numLit(1)})
	f("1 atan2 1", &BinaryExpr{Op: ATAN2, LHS: numLit(1), RHS: numLit(1)})
	f("1 == bool 1", &BinaryExpr{Op: EQLC, LHS: numLit(1), RHS: numLit(1), Modifier: &BinModifier{ReturnBool: true}})
	f("1 != bool 1", &BinaryExpr{Op: NEQ, LHS: numLit(1), RHS: numLit(1), Modifier: &BinModifier{ReturnBool: true}})
	f("1 > bool 1", &BinaryExpr{Op: GTR, LHS: numLit(1), RHS: numLit(1), Modifier: &BinModifier{ReturnBool: true}})
	f("+1 == bool 2", &BinaryExpr{Op: EQLC, LHS: numLit(1), RHS: numLit(2), Modifier: &BinModifier{ReturnBool: true}})

	// Precedence and associativity.
	f("-1^2", &UnaryExpr{Expr: &BinaryExpr{Op: POW, LHS: numLit(1), RHS: numLit(2)}})
	f("-1*2", &BinaryExpr{Op: MUL, LHS: numLit(-1), RHS: numLit(2)})
	f("-1+2", &BinaryExpr{Op: ADD, LHS: numLit(-1), RHS: numLit(2)})
	f("-1^-2", &UnaryExpr{Expr: &BinaryExpr{Op: POW, LHS: numLit(1), RHS: numLit(-2)}})
	f("+1 + -2 * 1", &BinaryExpr{
		Op:  ADD,
		LHS: numLit(1),
		RHS: &BinaryExpr{Op: MUL, LHS: numLit(-2), RHS: numLit(1)},
	})
	f("1 + 2/(3*1)", &BinaryExpr{
		Op:  ADD,
		LHS: numLit(1),
		RHS: &BinaryExpr{
			Op:  DIV,
			LHS: numLit(2),
			RHS: &ParenExpr{Expr: &BinaryExpr{Op: MUL, LHS: numLit(3), RHS: numLit(1)}},
		},
	})
	f("1 < bool 2 - 1 * 2", &BinaryExpr{
		Op:       LSS,
		Modifier: &BinModifier{ReturnBool: true},
		LHS:      numLit(1),
		RHS: &BinaryExpr{
			Op:  SUB,
			LHS: numLit(2),
			RHS: &BinaryExpr{Op: MUL, LHS: numLit(1), RHS: numLit(2)},
		},
	})
	f("2 ^ 3 ^ 4", &BinaryExpr{
		Op:  POW,
		LHS: numLit(2),
		RHS: &BinaryExpr{Op: POW, LHS: numLit(3), RHS: numLit(4)},
	})

	// Vector operands.
	f("foo * bar", &BinaryExpr{Op: MUL, LHS: vsel("foo"), RHS: vsel("bar")})
	f("foo * sum", &BinaryExpr{Op: MUL, LHS: vsel("foo"), RHS: vsel("sum")})
	f("foo == 1", &BinaryExpr{Op: EQLC, LHS: vsel("foo"), RHS: numLit(1)})
	f("foo == bool 1", &BinaryExpr{Op: EQLC, LHS: vsel("foo"), RHS: numLit(1), Modifier: &BinModifier{ReturnBool: true}})
	f("2.5 / bar", &BinaryExpr{Op: DIV, LHS: numLit(2.5), RHS: vsel("bar")})
	f("foo and bar", &BinaryExpr{Op: LAND, LHS: vsel("foo"), RHS: vsel("bar"), Modifier: m2m()})
	f("foo or bar", &BinaryExpr{Op: LOR, LHS: vsel("foo"), RHS: vsel("bar"), Modifier: m2m()})
	f("foo unless bar", &BinaryExpr{Op: LUNLESS, LHS: vsel("foo"), RHS: vsel("bar"), Modifier: m2m()})
	f("foo + bar or bla and blub", &BinaryExpr{
		Op:       LOR,
		Modifier: m2m(),
		LHS:      &BinaryExpr{Op: ADD, LHS: vsel("foo"), RHS: vsel("bar")},
		RHS:      &BinaryExpr{Op: LAND, LHS: vsel("bla"), RHS: vsel("blub"), Modifier: m2m()},
	})
	f("foo and bar unless baz or qux", &BinaryExpr{
		Op:       LOR,
		Modifier: m2m(),
		LHS: &BinaryExpr{
			Op:       LUNLESS,
			Modifier: m2m(),
			LHS:      &BinaryExpr{Op: LAND, LHS: vsel("foo"), RHS: vsel("bar"), Modifier: m2m()},
			RHS:      vsel("baz"),
		},
		RHS: vsel("qux"),
	})

	// Vector matching modifiers.
	f("foo * on(test, blub) bar", &BinaryExpr{
		Op:       MUL,
		LHS:      vsel("foo"),
		RHS:      vsel("bar"),
		Modifier: &BinModifier{Matching: &LabelModifier{Labels: []string{"test", "blub"}}},
	})
	f("foo * ignoring(test) bar", &BinaryExpr{
		Op:       MUL,
		LHS:      vsel("foo"),
		RHS:      vsel("bar"),
		Modifier: &BinModifier{Matching: &LabelModifier{Exclude: true, Labels: []string{"test"}}},
	})
	f("foo / on(instance) group_left(version) bar", &BinaryExpr{
		Op:  DIV,
		LHS: vsel("foo"),
		RHS: vsel("bar"),
		Modifier: &BinModifier{
			Matching: &LabelModifier{Labels: []string{"instance"}},
			Card:     CardManyToOne,
			Include:  []string{"version"},
		},
	})
	f("foo / on(instance) group_left bar", &BinaryExpr{
		Op:  DIV,
		LHS: vsel("foo"),
		RHS: vsel("bar"),
		Modifier: &BinModifier{
			Matching: &LabelModifier{Labels: []string{"instance"}},
			Card:     CardManyToOne,
		},
	})
	f("foo / ignoring(a, b) group_right(c) bar", &BinaryExpr{
		Op:  DIV,
		LHS: vsel("foo"),
		RHS: vsel("bar"),
		Modifier: &BinModifier{
			Matching: &LabelModifier{Exclude: true, Labels: []string{"a", "b"}},
			Card:     CardOneToMany,
			Include:  []string{"c"},
		},
	})
	f("foo and on() bar", &BinaryExpr{
		Op:  LAND,
		LHS: vsel("foo"),
		RHS: vsel("bar"),
		Modifier: &BinModifier{
			Matching: &LabelModifier{Labels: []string{}},
			Card:     CardManyToMany,
		},
	})
	// The label of an ignoring clause may repeat in group_left.
	f("foo * ignoring(a) group_left(a) bar", &BinaryExpr{
		Op:  MUL,
		LHS: vsel("foo"),
		RHS: vsel("bar"),
		Modifier: &BinModifier{
			Matching: &LabelModifier{Exclude: true, Labels: []string{"a"}},
			Card:     CardManyToOne,
			Include:  []string{"a"},
		},
	})
}

func TestParseParensAndUnary(t *testing.T) {
	f := func(q string, want Expr) {
		t.Helper()
		checkParse(t, q, want)
	}

	f("(1)", &ParenExpr{Expr: numLit(1)})
	f("((foo))", &ParenExpr{Expr: &ParenExpr{Expr: vsel("foo")}})
	f("-some_metric", &UnaryExpr{Expr: vsel("some_metric")})
	f("+some_metric", vsel("some_metric"))
	f("-(foo + bar)", &UnaryExpr{Expr: &ParenExpr{Expr: &BinaryExpr{Op: ADD, LHS: vsel("foo"), RHS: vsel("bar")}}})
	f("2 * -1", &BinaryExpr{Op: MUL, LHS: numLit(2), RHS: numLit(-1)})
}

func TestParseFailure(t *testing.T) {
	f := func(q string, kind ErrorKind, errMsgExpected string) {
		t.Helper()
		_, err := Parse(q)
		if err == nil {
			t.Fatalf("expecting error when parsing %q", q)
		}
		pe, ok := err.(*ParseError)
		if !ok {
			t.Fatalf("expecting *ParseError when parsing %q; got %T", q, err)
		}
		if pe.Kind != kind {
			t.Fatalf("unexpected error kind when parsing %q; got %s; want %s; err: %s", q, pe.Kind, kind, pe)
		}
		if !strings.Contains(pe.Error(), errMsgExpected) {
			t.Fatalf("unexpected error when parsing %q; got %q; want substring %q", q, pe.Error(), errMsgExpected)
		}
	}

	// Syntax errors.
	f("", SyntaxError, "no expression found in input")
	f("# just a comment\n", SyntaxError, "no expression found in input")
	f("1+", SyntaxError, "unexpected end of input")
	f("*foo", SyntaxError, "expected expression")
	f("foo bar", SyntaxError, `unexpected identifier "bar"`)
	f("1 1", SyntaxError, `unexpected number "1"`)
	f(`foo{bar}`, SyntaxError, "in label matching")
	f(`foo{bar=}`, SyntaxError, "in label matching, expected string")
	f(`foo{bar="baz" fuz="qux"}`, SyntaxError, "in label matching")
	f(`{a="b" or}`, SyntaxError, "in label matching")
	f("sum(foo) by (x) without (y)", SyntaxError, "unexpected")
	f("rate(foo[5m],)", SyntaxError, "trailing commas not allowed in function call args")
	f("foo and group_left bar", SyntaxError, "expected expression")
	f("foo @ bar", SyntaxError, "in @ modifier")
	f("foo offset bar", SyntaxError, "in offset, expected duration")
	f("(foo,", SyntaxError, `expected ")"`)

	// Lex errors.
	f("foo{", LexError, "unexpected end of input inside braces")
	f("foo[5m", LexError, "unclosed left bracket")
	f("(foo", LexError, "unclosed left parenthesis")
	f(`"unterminated`, LexError, "unterminated quoted string")
	f("foo[]", LexError, "missing unit character in duration")
	f("1 ~ 2", LexError, "unexpected character")

	// Semantic errors.
	f("foo offset 5m offset 10m", SemanticError, "offset may not be set multiple times")
	f("foo @ 100 @ 200", SemanticError, "@ <timestamp> may not be set multiple times")
	f("foo @ 100 offset 1m @ 200", SemanticError, "@ <timestamp> may not be set multiple times")
	f("foo @ Inf", SemanticError, "timestamp out of bounds for @ modifier")
	f("foo @ NaN", SemanticError, "timestamp out of bounds for @ modifier")
	f("1 offset 5m", SemanticError, "offset modifier must be preceded by")
	f("1 @ 100", SemanticError, "@ modifier must be preceded by")
	f("rate(foo[5m]) @ 100", SemanticError, "@ modifier must be preceded by")
	f("rate(foo[5m]) offset 1m", SemanticError, "offset modifier must be preceded by")
	f("foo[0s]", SemanticError, "duration must be greater than 0")
	f("foo[5m:0s]", SemanticError, "duration must be greater than 0")
	f("foo offset 0s", SemanticError, "duration must be greater than 0")
	f("foo[5s5m]", SemanticError, "not a valid duration string")
	f("foo[3.5h]", SemanticError, "not a valid duration string")
	f("(foo + bar)[5m]", SemanticError, "ranges only allowed for vector selectors")
	f("foo[5m][6m]", SemanticError, "ranges only allowed for vector selectors")
	f("1[5m:]", SemanticError, "subquery is only allowed on instant vector")
	f("{}", SemanticError, "vector selector must contain at least one non-empty matcher")
	f(`{x=~".*"}`, SemanticError, "vector selector must contain at least one non-empty matcher")
	f(`foo{__name__="bar"}`, SemanticError, "metric name must not be set twice")
	f(`{__name__="a", __name__="b"}`, SemanticError, "metric name must not be set twice")
	f(`{foo=~"*"}`, SemanticError, "invalid regular expression")
	f("1 == 1", SemanticError, "comparisons between scalars must use BOOL modifier")
	f("1 + bool 2", SemanticError, "bool modifier can only be used on comparison operators")
	f("1 and 1", SemanticError, "not allowed in binary scalar expression")
	f("foo and 1", SemanticError, "not allowed in binary scalar expression")
	f("1 or 1", SemanticError, "not allowed in binary scalar expression")
	f("foo and on(a) group_left bar", SemanticError, `no grouping allowed for "and" operation`)
	f("foo and on(a, a) bar", SemanticError, "duplicate label")
	f("foo * on(a) group_left(a) bar", SemanticError, "must not occur in ON and GROUP clause at once")
	f("sum by (a, a) (foo)", SemanticError, `duplicate label "a" in grouping clause`)
	f(`"foo" + "bar"`, SemanticError, "binary expression must contain only scalar and instant vector types")
	f(`-"foo"`, SemanticError, "unary expression only allowed")
	f("-foo[5m]", SemanticError, "unary expression only allowed")
	f("sum()", SemanticError, "no arguments for aggregate expression provided")
	f("sum(foo, bar)", SemanticError, "wrong number of arguments for aggregate expression provided, expected 1, got 2")
	f("topk(foo)", SemanticError, "wrong number of arguments for aggregate expression provided, expected 2, got 1")
	f("topk(foo, bar)", SemanticError, "expected type scalar in aggregation parameter, got instant vector")
	f(`count_values(5, foo)`, SemanticError, "expected type string in aggregation parameter, got scalar")
	f("sum(foo[5m])", SemanticError, "expected type instant vector in aggregation expression, got range vector")
	f("rate(foo)", SemanticError, `expected type range vector in call to function "rate", got instant vector`)
	f("rate(foo[5m], bar)", SemanticError, `expected 1 argument(s) in call to "rate", got 2`)
	f("rate()", SemanticError, `expected 1 argument(s) in call to "rate", got 0`)
	f("unknown_fn(foo)", SemanticError, `unknown function with name "unknown_fn"`)
	f("RATE(foo[5m])", SemanticError, "unknown function with name")
	f("mad_over_time(foo[5m])", SemanticError, `function "mad_over_time" is not enabled`)
	f("smoothed(foo)", SemanticError, "reserved and not yet supported")
	f("anchored", SemanticError, "reserved and not yet supported")
	f("limitk(5, foo)", SemanticError, "reserved and not yet supported")
	f("avg(foo) offset 5m", SemanticError, "offset modifier must be preceded by")
}
