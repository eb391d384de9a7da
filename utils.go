package promql

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// unquoteString decodes a string literal with its surrounding quotes.
//
// Double- and single-quoted strings support the full Go escape set plus
// the escaped quote matching the delimiter; literal newlines are illegal.
// Backtick-quoted strings are returned verbatim with no escape processing.
// See https://prometheus.io/docs/prometheus/latest/querying/basics/#string-literals
func unquoteString(s string) (string, error) {
	if len(s) < 2 || s[0] != s[len(s)-1] {
		return "", fmt.Errorf("invalid quoted string %s", s)
	}
	quote := s[0]
	inner := s[1 : len(s)-1]
	switch quote {
	case '`':
		if strings.ContainsRune(inner, '`') {
			return "", fmt.Errorf("invalid quoted string %s", s)
		}
		return inner, nil
	case '"', '\'':
	default:
		return "", fmt.Errorf("invalid quote character %q", quote)
	}
	if strings.ContainsRune(inner, '\n') {
		return "", fmt.Errorf("invalid quoted string %s: unescaped newline", s)
	}
	if !strings.ContainsAny(inner, `\`+string(quote)) {
		return inner, nil
	}

	var sb strings.Builder
	sb.Grow(len(inner))
	for len(inner) > 0 {
		c, multibyte, rest, err := strconv.UnquoteChar(inner, quote)
		if err != nil {
			return "", fmt.Errorf("cannot unquote %s: %s", s, err)
		}
		if c < utf8.RuneSelf || !multibyte {
			sb.WriteByte(byte(c))
		} else {
			sb.WriteRune(c)
		}
		inner = rest
	}
	return sb.String(), nil
}

// parseNumber parses a number literal: decimal floats with optional
// exponent, hex/octal/binary integers in Go syntax, legacy 0-prefixed
// octals, NaN and Inf in any case. Decimal values beyond the float64
// range saturate to +/-Inf rather than failing.
func parseNumber(s string) (float64, error) {
	if n, err := strconv.ParseInt(s, 0, 64); err == nil {
		return float64(n), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err == nil || errors.Is(err, strconv.ErrRange) {
		return f, nil
	}
	return 0, fmt.Errorf("error parsing number: %q", s)
}
