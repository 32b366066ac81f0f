package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	errNotString  = errors.New("not a string")
	errNotInteger = errors.New("not an integer")
	errNotFloat   = errors.New("not a number")
	errNotBoolean = errors.New("not a boolean")
)

const groupSeparators = ",'_ \u00a0\u202f"

// groupedNumber matches digits grouped in threes by one of groupSeparators,
// with an optional fraction: "1,234", "12 345.5".
var groupedNumber = regexp.MustCompile(`^[+-]?\d{1,3}(?:[,'_ \x{00a0}\x{202f}]\d{3})+(?:\.\d+)?$`)

// cleanNumeric trims s and strips its thousands separators. Text that uses
// separators anywhere but between groups of three digits, or mixes two
// kinds of separator, is reported as not numeric.
func cleanNumeric(s string) (string, bool) {
	s = strings.TrimSpace(s)
	i := strings.IndexAny(s, groupSeparators)
	if i < 0 {
		return s, true
	}
	if !groupedNumber.MatchString(s) {
		return "", false
	}
	sep, _ := utf8.DecodeRuneInString(s[i:])
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == sep:
		case strings.ContainsRune(groupSeparators, r):
			return "", false
		default:
			b.WriteRune(r)
		}
	}
	return b.String(), true
}

// CoerceString accepts text, and renders numbers and booleans as text.
func CoerceString(v any) (any, error) {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x), nil
	case json.Number:
		return x.String(), nil
	case bool:
		return strconv.FormatBool(x), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(x), nil
	}
	return nil, errNotString
}

// CoerceInteger accepts whole numbers as Go integers, integral floats, or
// text such as "1,234". Fractional values and non-numeric text are rejected.
func CoerceInteger(v any) (any, error) {
	switch x := v.(type) {
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint:
		if uint64(x) > math.MaxInt64 {
			return nil, errNotInteger
		}
		return int64(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return nil, errNotInteger
		}
		return int64(x), nil
	case float64:
		return integralFloat(x)
	case float32:
		return integralFloat(float64(x))
	case json.Number:
		return parseInteger(x.String())
	case string:
		return parseInteger(x)
	}
	return nil, errNotInteger
}

func parseInteger(s string) (any, error) {
	s, ok := cleanNumeric(s)
	if !ok || s == "" {
		return nil, errNotInteger
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, errNotInteger
	}
	return integralFloat(f)
}

func integralFloat(f float64) (any, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil, errNotInteger
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return nil, errNotInteger
	}
	return int64(f), nil
}

// CoerceFloat accepts any finite number, as a Go number or as text such as
// "1,234.5".
func CoerceFloat(v any) (any, error) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int8:
		f = float64(x)
	case int16:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint8:
		f = float64(x)
	case uint16:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case json.Number:
		return parseFloat(x.String())
	case string:
		return parseFloat(x)
	default:
		return nil, errNotFloat
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, errNotFloat
	}
	return f, nil
}

func parseFloat(s string) (any, error) {
	s, ok := cleanNumeric(s)
	if !ok || s == "" {
		return nil, errNotFloat
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, errNotFloat
	}
	return f, nil
}

// CoerceBoolean accepts booleans, the numbers 1 and 0, and the tokens
// true/false, yes/no, 1/0 in any letter case.
func CoerceBoolean(v any) (any, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		return parseBoolean(x)
	case json.Number:
		return parseBoolean(x.String())
	case int64:
		return intBoolean(x)
	case int:
		return intBoolean(int64(x))
	case float64:
		if x == 0 || x == 1 {
			return x == 1, nil
		}
	}
	return nil, errNotBoolean
}

func intBoolean(i int64) (any, error) {
	switch i {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return nil, errNotBoolean
}

func parseBoolean(s string) (any, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1":
		return true, nil
	case "false", "no", "0":
		return false, nil
	}
	return nil, errNotBoolean
}
