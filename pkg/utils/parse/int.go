// ABOUTME: Utility functions for coercing numeric strings from feed documents
// ABOUTME: Provides safe parsing with default values for attribute-level numbers

package parse

import (
	"math"
	"strconv"
	"strings"
)

// IntOrZero safely parses an integer from a string, returning 0 if parsing fails.
// Surrounding whitespace is ignored and integral decimals such as "120.0" are accepted.
func IntOrZero(s string) int {
	v, ok := Int(s)
	if !ok {
		return 0
	}
	return v
}

// Int64OrZero is IntOrZero for byte lengths and other large values
func Int64OrZero(s string) int64 {
	v, ok := Int64(s)
	if !ok {
		return 0
	}
	return v
}

// Int parses s as an int
func Int(s string) (int, bool) {
	v, ok := Int64(s)
	if !ok || v > math.MaxInt || v < math.MinInt {
		return 0, false
	}
	return int(v), true
}

// Int64 parses s as an int64, accepting integral floats
func Int64(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

// Float parses s as a finite float64
func Float(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
