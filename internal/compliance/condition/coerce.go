package condition

import (
	"encoding/json"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// toDecimal converts numeric Go values, json.Number and decimal values.
// Strings are only accepted when allowString is set.
func toDecimal(v any, allowString bool) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, true
	case *decimal.Decimal:
		if n == nil {
			return decimal.Decimal{}, false
		}
		return *n, true
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int8:
		return decimal.NewFromInt(int64(n)), true
	case int16:
		return decimal.NewFromInt(int64(n)), true
	case int32:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case uint:
		return fromUint(uint64(n)), true
	case uint8:
		return fromUint(uint64(n)), true
	case uint16:
		return fromUint(uint64(n)), true
	case uint32:
		return fromUint(uint64(n)), true
	case uint64:
		return fromUint(n), true
	case float32:
		return fromFloat(float64(n))
	case float64:
		return fromFloat(n)
	case string:
		if !allowString {
			return decimal.Decimal{}, false
		}
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		return d, err == nil
	}
	return decimal.Decimal{}, false
}

func fromUint(n uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(n), 0)
}

func fromFloat(f float64) (decimal.Decimal, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Decimal{}, false
	}
	return decimal.NewFromFloat(f), true
}

func isNumeric(v any) bool {
	_, ok := toDecimal(v, false)
	return ok
}

// equal compares value against the profile field value after coercing value
// to the field's type. ok is false when the two cannot be compared.
func equal(field, value any) (eq bool, ok bool) {
	if value == nil {
		return false, false
	}
	switch fv := field.(type) {
	case bool:
		bv, ok := toBool(value)
		if !ok {
			return false, false
		}
		return fv == bv, true
	case string:
		sv, ok := toString(value)
		if !ok {
			return false, false
		}
		return fv == sv, true
	}
	if fd, ok := toDecimal(field, false); ok {
		vd, ok := toDecimal(value, true)
		if !ok {
			return false, false
		}
		return fd.Equal(vd), true
	}
	return false, false
}

func toBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return false, false
}

func toString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case bool:
		return strconv.FormatBool(s), true
	}
	if d, ok := toDecimal(v, false); ok {
		return d.String(), true
	}
	return "", false
}

func compareNumeric(op Op, field, value any) bool {
	fd, ok := toDecimal(field, false)
	if !ok {
		return false
	}
	vd, ok := toDecimal(value, true)
	if !ok {
		return false
	}
	c := fd.Cmp(vd)
	switch op {
	case OpLt:
		return c < 0
	case OpLte:
		return c <= 0
	case OpGt:
		return c > 0
	case OpGte:
		return c >= 0
	}
	return false
}

func member(field, value any) bool {
	items, ok := asSlice(value)
	if !ok {
		return false
	}
	for _, item := range items {
		if eq, ok := equal(field, item); ok && eq {
			return true
		}
	}
	return false
}

func asSlice(v any) ([]any, bool) {
	if items, ok := v.([]any); ok {
		return items, true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, false
	}
	if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
