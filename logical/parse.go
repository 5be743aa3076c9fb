package logical

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/cube2222/octodist/datatypes"
)

var (
	andSeparator = regexp.MustCompile(`(?i)\s+and\s+`)
	comparison   = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_]*)\s*(>=|<=|!=|=|<|>)\s*(.+?)\s*$`)
)

// ParsePredicate parses a conjunction of comparisons, like "usage > 0.5 AND host = 'h1'".
// Each comparison has a column on the left and a literal of the column's type on the right.
func ParsePredicate(schema datatypes.Schema, text string) (Expression, error) {
	parts := splitConjunction(strings.TrimSpace(text))
	conditions := make([]Expression, len(parts))
	for i, part := range parts {
		condition, err := parseComparison(schema, part)
		if err != nil {
			return Expression{}, err
		}
		conditions[i] = condition
	}
	return NewAnd(conditions...), nil
}

// splitConjunction splits on AND keywords which aren't inside a single-quoted literal.
func splitConjunction(text string) []string {
	var parts []string
	start := 0
	for _, loc := range andSeparator.FindAllStringIndex(text, -1) {
		if strings.Count(text[:loc[0]], "'")%2 == 1 {
			continue
		}
		parts = append(parts, text[start:loc[0]])
		start = loc[1]
	}
	return append(parts, text[start:])
}

func parseComparison(schema datatypes.Schema, text string) (Expression, error) {
	match := comparison.FindStringSubmatch(text)
	if match == nil {
		return Expression{}, errors.Errorf("invalid comparison: '%s'", text)
	}
	column, err := NewColumn(schema, match[1])
	if err != nil {
		return Expression{}, err
	}
	op, err := ParseOperator(match[2])
	if err != nil {
		return Expression{}, err
	}
	literal, err := parseLiteral(schema.Fields[column.Column.Index].Type, match[3])
	if err != nil {
		return Expression{}, errors.Wrapf(err, "column %s", match[1])
	}
	return NewBinaryOp(op, column, literal), nil
}

func parseLiteral(t datatypes.Type, text string) (Expression, error) {
	unquoted := text
	if len(text) >= 2 && text[0] == '\'' && text[len(text)-1] == '\'' {
		unquoted = text[1 : len(text)-1]
	}

	switch t {
	case datatypes.TypeInt64:
		v, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return Expression{}, errors.Errorf("invalid int: %s", text)
		}
		return NewInt(v), nil
	case datatypes.TypeFloat64:
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Expression{}, errors.Errorf("invalid float: %s", text)
		}
		return NewFloat(v), nil
	case datatypes.TypeBoolean:
		v, err := strconv.ParseBool(text)
		if err != nil {
			return Expression{}, errors.Errorf("invalid boolean: %s", text)
		}
		return NewBool(v), nil
	case datatypes.TypeString:
		return NewString(unquoted), nil
	case datatypes.TypeTimestamp:
		if millis, err := strconv.ParseInt(text, 10, 64); err == nil {
			return NewTimestamp(millis), nil
		}
		ts, err := time.Parse(time.RFC3339Nano, unquoted)
		if err != nil {
			return Expression{}, errors.Errorf("invalid timestamp: %s", text)
		}
		return NewTimestamp(ts.UnixMilli()), nil
	}
	return Expression{}, errors.Errorf("can't compare columns of type %s", t)
}
