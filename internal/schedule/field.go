// Package schedule implements the five-field cron-style schedule used to
// trigger reconciliation runs: field expression parsing and time matching,
// with no external scheduler dependency.
package schedule

import (
	"fmt"
	"strconv"
	"strings"
)

// FieldKind enumerates the supported field expression variants.
type FieldKind string

const (
	KindWildcard FieldKind = "wildcard"
	KindStep     FieldKind = "step"
	KindRange    FieldKind = "range"
	KindList     FieldKind = "list"
	KindLiteral  FieldKind = "literal"
)

// Field is one parsed calendar field expression. The zero Field matches
// nothing, so malformed expressions fail closed rather than firing.
type Field struct {
	Kind   FieldKind
	Step   int   // for KindStep
	Lo, Hi int   // for KindRange
	Values []int // for KindList
	Value  int   // for KindLiteral
	raw    string
}

// ParseField parses a single field expression and validates numeric parts
// against the [min, max] bounds for that calendar position. Leading zeros
// are accepted and normalized ("05" behaves like "5").
func ParseField(raw string, min, max int) (Field, error) {
	expr := strings.TrimSpace(raw)
	if expr == "" {
		return Field{}, fmt.Errorf("empty field expression")
	}

	switch {
	case expr == "*":
		return Field{Kind: KindWildcard, raw: expr}, nil

	case strings.HasPrefix(expr, "*/"):
		n, err := parseValue(expr[2:], 1, max)
		if err != nil {
			return Field{}, fmt.Errorf("step %q: %w", expr, err)
		}
		return Field{Kind: KindStep, Step: n, raw: expr}, nil

	case strings.Contains(expr, ","):
		var values []int
		for _, part := range strings.Split(expr, ",") {
			v, err := parseValue(part, min, max)
			if err != nil {
				return Field{}, fmt.Errorf("list %q: %w", expr, err)
			}
			values = append(values, v)
		}
		return Field{Kind: KindList, Values: values, raw: expr}, nil

	case strings.Contains(expr, "-"):
		parts := strings.SplitN(expr, "-", 2)
		lo, err := parseValue(parts[0], min, max)
		if err != nil {
			return Field{}, fmt.Errorf("range %q: %w", expr, err)
		}
		hi, err := parseValue(parts[1], min, max)
		if err != nil {
			return Field{}, fmt.Errorf("range %q: %w", expr, err)
		}
		if lo > hi {
			return Field{}, fmt.Errorf("range %q: low bound above high bound", expr)
		}
		return Field{Kind: KindRange, Lo: lo, Hi: hi, raw: expr}, nil

	default:
		v, err := parseValue(expr, min, max)
		if err != nil {
			return Field{}, fmt.Errorf("literal %q: %w", expr, err)
		}
		return Field{Kind: KindLiteral, Value: v, raw: expr}, nil
	}
}

func parseValue(raw string, min, max int) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("not a number")
	}
	if v < min || v > max {
		return 0, fmt.Errorf("value %d outside %d-%d", v, min, max)
	}
	return v, nil
}

// Matches evaluates the field against a sampled time component.
//
// Step intentionally uses value % n == 0 rather than cron's offset-from-min
// rule; downstream schedule strings depend on the observed behavior.
func (f Field) Matches(value int) bool {
	switch f.Kind {
	case KindWildcard:
		return true
	case KindStep:
		return f.Step > 0 && value%f.Step == 0
	case KindRange:
		return value >= f.Lo && value <= f.Hi
	case KindList:
		for _, v := range f.Values {
			if v == value {
				return true
			}
		}
		return false
	case KindLiteral:
		return value == f.Value
	default:
		// Unparsed or malformed fields never match.
		return false
	}
}

// String returns the original expression text.
func (f Field) String() string { return f.raw }
