package values

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goliatone/go-formflow/pkg/schema"
)

// Comparison policy shared by enable rules, mandatory rules and rule
// conditions:
//
//   - a nil (absent) stored value matches nothing except IS_EMPTY;
//   - booleans compare as booleans, also against "true"/"false" strings;
//   - when both operands are finite numbers or numeric strings they compare
//     numerically, and "" is never numeric so 0 never equals "";
//   - everything else compares by exact canonical string, ordering lexically.

// Matches reports whether stored satisfies a rule trigger. List values match
// when any element equals the trigger.
func Matches(stored, trigger any) bool {
	if stored == nil {
		return false
	}
	if items, ok := asList(stored); ok {
		for _, item := range items {
			if Equal(item, trigger) {
				return true
			}
		}
		return false
	}
	return Equal(stored, trigger)
}

// Equal compares two scalars under the package policy.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return false
	}
	if ab, bb, ok := boolPair(a, b); ok {
		return ab == bb
	}
	if an, bn, ok := numberPair(a, b); ok {
		return an == bn
	}
	return Text(a) == Text(b)
}

// Order returns -1, 0 or 1 comparing a to b. ok is false when the operands
// cannot be ordered (absent values or booleans).
func Order(a, b any) (int, bool) {
	if a == nil || b == nil {
		return 0, false
	}
	if _, _, ok := boolPair(a, b); ok {
		return 0, false
	}
	if an, bn, ok := numberPair(a, b); ok {
		switch {
		case an < bn:
			return -1, true
		case an > bn:
			return 1, true
		default:
			return 0, true
		}
	}
	return strings.Compare(Text(a), Text(b)), true
}

// Check evaluates a rule condition against the stored value. A nil stored
// value is treated as absent.
func Check(logic schema.ConditionLogic, stored, expected any) bool {
	switch schema.ConditionLogic(strings.ToUpper(strings.TrimSpace(string(logic)))) {
	case schema.LogicEmpty:
		return IsEmpty(stored)
	case schema.LogicNotEmpty:
		return !IsEmpty(stored)
	case schema.LogicEquals:
		return Equal(stored, expected)
	case schema.LogicNotEquals:
		return stored != nil && expected != nil && !Equal(stored, expected)
	case schema.LogicGreater:
		cmp, ok := Order(stored, expected)
		return ok && cmp > 0
	case schema.LogicGreaterOrEqual:
		cmp, ok := Order(stored, expected)
		return ok && cmp >= 0
	case schema.LogicLess:
		cmp, ok := Order(stored, expected)
		return ok && cmp < 0
	case schema.LogicLessOrEqual:
		cmp, ok := Order(stored, expected)
		return ok && cmp <= 0
	default:
		return false
	}
}

// IsEmpty reports whether value is absent, nil, the empty string or an empty
// list. Whitespace is not trimmed, so an IS_EMPTY condition treats " " as an
// answer while the required check in validation.Empty, which trims, does not.
func IsEmpty(value any) bool {
	if value == nil {
		return true
	}
	switch typed := value.(type) {
	case string:
		return typed == ""
	case []map[string]any:
		return len(typed) == 0
	case map[string]any:
		return len(typed) == 0
	}
	if items, ok := asList(value); ok {
		return len(items) == 0
	}
	return false
}

// Text returns the canonical string form of a scalar value.
func Text(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case []byte:
		return string(typed)
	case bool:
		return strconv.FormatBool(typed)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(typed), 'f', -1, 32)
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	case fmt.Stringer:
		return typed.String()
	default:
		return fmt.Sprint(value)
	}
}

// Strings returns list values as strings. Scalars become a single-element
// list unless empty.
func Strings(value any) []string {
	if items, ok := asList(value); ok {
		out := make([]string, 0, len(items))
		for _, item := range items {
			out = append(out, Text(item))
		}
		return out
	}
	if IsEmpty(value) {
		return nil
	}
	return []string{Text(value)}
}

func asList(value any) ([]any, bool) {
	switch typed := value.(type) {
	case []any:
		return typed, true
	case []string:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = item
		}
		return out, true
	default:
		return nil, false
	}
}

func boolPair(a, b any) (bool, bool, bool) {
	_, aIsBool := a.(bool)
	_, bIsBool := b.(bool)
	if !aIsBool && !bIsBool {
		return false, false, false
	}
	ab, okA := coerceBool(a)
	bb, okB := coerceBool(b)
	return ab, bb, okA && okB
}

func coerceBool(value any) (bool, bool) {
	switch typed := value.(type) {
	case bool:
		return typed, true
	case string:
		switch strings.ToLower(strings.TrimSpace(typed)) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return false, false
}

func numberPair(a, b any) (float64, float64, bool) {
	an, okA := coerceNumber(a)
	bn, okB := coerceNumber(b)
	return an, bn, okA && okB
}

func coerceNumber(value any) (float64, bool) {
	var f float64
	switch typed := value.(type) {
	case float64:
		f = typed
	case float32:
		f = float64(typed)
	case int:
		f = float64(typed)
	case int64:
		f = float64(typed)
	case int32:
		f = float64(typed)
	case uint:
		f = float64(typed)
	case uint64:
		f = float64(typed)
	case string:
		trimmed := strings.TrimSpace(typed)
		if trimmed == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
