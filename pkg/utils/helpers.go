package utils

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// ParseNumber coerces a scalar value to float64. Strings are trimmed and
// accepted in integer or decimal form ("120", "120.7", "1e3").
func ParseNumber(v interface{}) (float64, error) {
	switch val := v.(type) {
	case nil:
		return 0, fmt.Errorf("nil value")
	case string:
		return parseNumericString(val)
	case []byte:
		return parseNumericString(string(val))
	case bool:
		return 0, fmt.Errorf("boolean %v is not a number", val)
	case int:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case float64:
		return checkFinite(val)
	case float32:
		return checkFinite(float64(val))
	default:
		rv := reflect.ValueOf(v)
		if rv.Kind() >= reflect.Int && rv.Kind() <= reflect.Float64 {
			return checkFinite(rv.Convert(reflect.TypeOf(float64(0))).Float())
		}
		return parseNumericString(fmt.Sprint(v))
	}
}

func parseNumericString(s string) (float64, error) {
	s = strings.TrimSpace(s)
	// try int
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return float64(i), nil
	}
	// try float
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	return checkFinite(f)
}

func checkFinite(f float64) (float64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%v is not a finite number", f)
	}
	return f, nil
}

// FormatValue renders a row value the way it appears on a form.
// Nil values render as "N/A"; whole floats keep a trailing ".0".
func FormatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "N/A"
	case string:
		return val
	case []byte:
		return string(val)
	case float64:
		return formatFloat(val)
	case float32:
		return formatFloat(float64(val))
	case bool:
		if val {
			return "True"
		}
		return "False"
	case time.Time:
		return val.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprint(v)
	}
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}
