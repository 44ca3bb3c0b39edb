package where

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// IsScalar reports whether v is a plain value: string, number, bool or time.
// nil is not a scalar.
func IsScalar(v any) bool {
	switch v.(type) {
	case nil:
		return false
	case string, bool, time.Time, []byte,
		int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct, reflect.Pointer, reflect.Interface:
		return false
	}
	return true
}

// Canonical encodes a nested value into its comparable text form:
// compact JSON with object keys in sorted order. Scalars are returned untouched.
func Canonical(v any) any {
	if v == nil || IsScalar(v) {
		return v
	}
	buf, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(buf)
}

// StringOf renders a value the way equality compares it.
func StringOf(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format(time.RFC3339Nano)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	}
	if f, ok := toFloat(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	if s, ok := Canonical(v).(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func toFloat(v any) (float64, bool) {
	switch v := v.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

// CompareValues orders two values of the same kind.
// Numbers compare numerically whatever their Go type, strings lexically,
// times chronologically and false sorts before true.
// ok is false when the values are nil or of different kinds.
func CompareValues(a, b any) (cmp int, ok bool) {
	if fa, is_num := toFloat(a); is_num {
		fb, is_num := toFloat(b)
		if !is_num || math.IsNaN(fa) || math.IsNaN(fb) {
			return 0, false
		}
		switch {
		case fa < fb:
			return -1, true
		case fa > fb:
			return 1, true
		}
		return 0, true
	}

	switch a := a.(type) {
	case string:
		if b, is_str := b.(string); is_str {
			return strings.Compare(a, b), true
		}
	case time.Time:
		if b, is_time := b.(time.Time); is_time {
			return a.Compare(b), true
		}
	case bool:
		if b, is_bool := b.(bool); is_bool {
			switch {
			case a == b:
				return 0, true
			case !a:
				return -1, true
			}
			return 1, true
		}
	}
	return 0, false
}

// Equal is the membership test used by IN: numbers are equal across Go types,
// nested values are equal when their canonical forms are, anything else uses ==.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if cmp, ok := CompareValues(a, b); ok {
		return cmp == 0
	}
	a, b = Canonical(a), Canonical(b)
	if !reflect.TypeOf(a).Comparable() || !reflect.TypeOf(b).Comparable() {
		return false
	}
	return a == b
}

// listOf turns an IN literal into a list. A slice or array is used element by element;
// any other literal is a list of one.
func listOf(v any) []any {
	switch v := v.(type) {
	case nil:
		return nil
	case []any:
		return v
	case string, []byte:
		return []any{v}
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		list := make([]any, rv.Len())
		for i := range list {
			list[i] = rv.Index(i).Interface()
		}
		return list
	}
	return []any{v}
}
