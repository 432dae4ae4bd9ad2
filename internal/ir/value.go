package ir

import (
	"fmt"
	"strconv"
)

// IRValue is a sealed interface representing selector literal values.
// Only IRNull, IRString, IRInt and IRBool implement it.
type IRValue interface {
	irValue() // Sealed - only these types implement it
}

// IRNull represents an absent literal.
type IRNull struct{}

func (IRNull) irValue() {}

// MarshalJSON implements json.Marshaler for IRNull.
func (IRNull) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// IRString represents a string literal.
type IRString string

func (IRString) irValue() {}

// IRInt represents an integer literal.
type IRInt int64

func (IRInt) irValue() {}

// IRBool represents a boolean literal.
type IRBool bool

func (IRBool) irValue() {}

// ParseLiteral turns raw selector text into the narrowest IRValue.
// Integers become IRInt, everything else stays IRString.
func ParseLiteral(s string) IRValue {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return IRInt(n)
	}
	return IRString(s)
}

// ToParam converts an IRValue to a Go native type usable as a SQL parameter.
func ToParam(v IRValue) (any, error) {
	switch val := v.(type) {
	case IRString:
		return string(val), nil
	case IRInt:
		return int64(val), nil
	case IRBool:
		return bool(val), nil
	case IRNull:
		return nil, nil
	case nil:
		return nil, fmt.Errorf("nil IRValue")
	default:
		return nil, fmt.Errorf("unsupported IRValue type for SQL parameter: %T", v)
	}
}

// FromSQL normalizes a value scanned from a driver into the small set of
// Go types rows carry: nil, int64, float64, bool and string.
// Drivers hand back TEXT as []byte; those become strings.
func FromSQL(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(val)
	case int:
		return int64(val)
	case int32:
		return int64(val)
	case int16:
		return int64(val)
	case int8:
		return int64(val)
	case uint32:
		return int64(val)
	case float32:
		return float64(val)
	case int64, float64, bool, string:
		return val
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}

// AsInt64 interprets a row value as an integer identifier.
// Strings holding digits are accepted because aggregated and
// unioned columns often come back as TEXT.
func AsInt64(v any) (int64, bool) {
	switch val := v.(type) {
	case int64:
		return val, true
	case int:
		return int64(val), true
	case float64:
		return int64(val), val == float64(int64(val))
	case string:
		n, err := strconv.ParseInt(val, 10, 64)
		return n, err == nil
	case []byte:
		n, err := strconv.ParseInt(string(val), 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}
