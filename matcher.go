package promql

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/grafana/regexp"
)

// MetricName is the label holding the metric name of a time series.
const MetricName = "__name__"

// MatchOp is the operator of a label matcher.
type MatchOp int

// Possible MatchOps.
const (
	MatchEqual MatchOp = iota
	MatchNotEqual
	MatchRegexp
	MatchNotRegexp
)

// String returns the PromQL form of op.
func (op MatchOp) String() string {
	switch op {
	case MatchEqual:
		return "="
	case MatchNotEqual:
		return "!="
	case MatchRegexp:
		return "=~"
	case MatchNotRegexp:
		return "!~"
	default:
		panic(fmt.Sprintf("BUG: unknown match op %d", int(op)))
	}
}

// Matcher models the matching of a single label against a literal value
// or an anchored regular expression.
type Matcher struct {
	Op    MatchOp
	Name  string
	Value string

	re *regexp.Regexp
}

// NewMatcher returns a matcher for the given op, label name and value.
//
// For MatchRegexp and MatchNotRegexp the value is compiled as a fully
// anchored RE2 expression, i.e. "^(?:value)$"; a compile failure is
// returned as an error naming the user-visible pattern.
func NewMatcher(op MatchOp, name, value string) (*Matcher, error) {
	m := &Matcher{
		Op:    op,
		Name:  name,
		Value: value,
	}
	if op == MatchRegexp || op == MatchNotRegexp {
		re, err := regexp.Compile("^(?:" + value + ")$")
		if err != nil {
			return nil, fmt.Errorf("invalid regular expression %q: %s", value, err)
		}
		m.re = re
	}
	return m, nil
}

// mustNewMatcher is NewMatcher for matchers that cannot fail.
func mustNewMatcher(op MatchOp, name, value string) *Matcher {
	m, err := NewMatcher(op, name, value)
	if err != nil {
		panic(fmt.Sprintf("BUG: cannot create matcher %s%s%q: %s", name, op, value, err))
	}
	return m
}

// IsRegex returns true if m matches against a regular expression.
func (m *Matcher) IsRegex() bool {
	return m.Op == MatchRegexp || m.Op == MatchNotRegexp
}

// Matches returns whether m matches the given string value.
func (m *Matcher) Matches(s string) bool {
	switch m.Op {
	case MatchEqual:
		return m.Value == s
	case MatchNotEqual:
		return m.Value != s
	case MatchRegexp:
		return m.re.MatchString(s)
	case MatchNotRegexp:
		return !m.re.MatchString(s)
	default:
		panic(fmt.Sprintf("BUG: unknown match op %d", int(m.Op)))
	}
}

// Equal returns whether m and other match exactly the same way.
func (m *Matcher) Equal(other *Matcher) bool {
	return m.Op == other.Op && m.Name == other.Name && m.Value == other.Value
}

// AppendString appends the PromQL form of m to dst and returns the result.
func (m *Matcher) AppendString(dst []byte) []byte {
	plain := m.Name != ""
	for i, r := range m.Name {
		if !isAlpha(r) && (i == 0 || !isDigit(r)) {
			plain = false
			break
		}
	}
	if plain {
		dst = append(dst, m.Name...)
	} else {
		// Names that do not lex as identifiers print as quoted label names.
		dst = strconv.AppendQuote(dst, m.Name)
	}
	dst = append(dst, m.Op.String()...)
	dst = strconv.AppendQuote(dst, m.Value)
	return dst
}

// String returns the PromQL form of m.
func (m *Matcher) String() string {
	return string(m.AppendString(nil))
}

// Matchers is the matcher multiset of a vector selector.
//
// Matchers holds the plain comma-separated matcher list. When the selector
// uses the `or` separator, every alternative group lands in Or instead and
// Matchers stays empty. Insertion order is preserved for canonical
// printing; Equal and Hash treat each group as a set.
type Matchers struct {
	Matchers []*Matcher
	Or       [][]*Matcher
}

// groups returns all matcher groups of ms.
func (ms *Matchers) groups() [][]*Matcher {
	if len(ms.Or) > 0 {
		return ms.Or
	}
	return [][]*Matcher{ms.Matchers}
}

// IsEmpty returns true if ms holds no matchers at all.
func (ms *Matchers) IsEmpty() bool {
	return len(ms.Matchers) == 0 && len(ms.Or) == 0
}

// Equal returns whether ms and other are equal under set semantics:
// matcher order within a group does not matter, group order does.
func (ms *Matchers) Equal(other *Matchers) bool {
	a, b := ms.groups(), other.groups()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !matcherSetEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func matcherSetEqual(a, b []*Matcher) bool {
	if len(a) != len(b) {
		return false
	}
	return slices.Equal(sortedMatcherStrings(a), sortedMatcherStrings(b))
}

func sortedMatcherStrings(msList []*Matcher) []string {
	ss := make([]string, len(msList))
	for i, m := range msList {
		ss[i] = m.String()
	}
	slices.Sort(ss)
	return ss
}

// Hash returns an order-insensitive hash of ms, equal for all matcher
// sets that are Equal.
func (ms *Matchers) Hash() uint64 {
	d := xxhash.New()
	for _, group := range ms.groups() {
		for _, s := range sortedMatcherStrings(group) {
			_, _ = d.WriteString(s)
			_, _ = d.Write([]byte{0})
		}
		_, _ = d.Write([]byte{0xff})
	}
	return d.Sum64()
}

// AppendString appends the PromQL form of ms without braces to dst.
func (ms *Matchers) AppendString(dst []byte) []byte {
	if len(ms.Or) > 0 {
		for i, group := range ms.Or {
			if i > 0 {
				dst = append(dst, " or "...)
			}
			dst = appendMatcherList(dst, group)
		}
		return dst
	}
	return appendMatcherList(dst, ms.Matchers)
}

func appendMatcherList(dst []byte, msList []*Matcher) []byte {
	for i, m := range msList {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = m.AppendString(dst)
	}
	return dst
}

// String returns the PromQL form of ms without braces.
func (ms *Matchers) String() string {
	return string(ms.AppendString(nil))
}
