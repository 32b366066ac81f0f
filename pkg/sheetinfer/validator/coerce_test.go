package validator

import (
	"encoding/json"
	"testing"
)

func TestCoerceInteger(t *testing.T) {
	tests := []struct {
		input    any
		expected any
		ok       bool
	}{
		{"1,234", int64(1234), true},
		{"1234", int64(1234), true},
		{" 1 234 ", int64(1234), true},
		{"1 234", int64(1234), true},
		{"-42", int64(-42), true},
		{"12.0", int64(12), true},
		{json.Number("77"), int64(77), true},
		{float64(5), int64(5), true},
		{int(9), int64(9), true},
		{"1'234'567", int64(1234567), true},
		{"12.5", nil, false},
		{"3,14", nil, false},
		{"12,5", nil, false},
		{"1,2,3", nil, false},
		{"1 2", nil, false},
		{"1,234 567", nil, false},
		{"1234,567", nil, false},
		{"abc", nil, false},
		{"", nil, false},
		{float64(1.5), nil, false},
		{true, nil, false},
	}

	for _, tt := range tests {
		result, err := CoerceInteger(tt.input)
		if (err == nil) != tt.ok {
			t.Errorf("CoerceInteger(%#v) error = %v, expected ok=%v", tt.input, err, tt.ok)
			continue
		}
		if result != tt.expected {
			t.Errorf("CoerceInteger(%#v) = %v (type: %T), expected %v (type: %T)",
				tt.input, result, result, tt.expected, tt.expected)
		}
	}
}

func TestCoerceFloat(t *testing.T) {
	tests := []struct {
		input    any
		expected any
		ok       bool
	}{
		{"12.5", 12.5, true},
		{"1,234.75", 1234.75, true},
		{"1,234.5", 1234.5, true},
		{"-12 345", -12345.0, true},
		{"3,14", nil, false},
		{"12,5", nil, false},
		{"1,2,3", nil, false},
		{"1 2", nil, false},
		{"1.234,5", nil, false},
		{" 3 ", 3.0, true},
		{int64(4), 4.0, true},
		{json.Number("0.25"), 0.25, true},
		{"abc", nil, false},
		{"NaN", nil, false},
		{"Inf", nil, false},
		{"", nil, false},
		{false, nil, false},
	}

	for _, tt := range tests {
		result, err := CoerceFloat(tt.input)
		if (err == nil) != tt.ok {
			t.Errorf("CoerceFloat(%#v) error = %v, expected ok=%v", tt.input, err, tt.ok)
			continue
		}
		if result != tt.expected {
			t.Errorf("CoerceFloat(%#v) = %v, expected %v", tt.input, result, tt.expected)
		}
	}
}

func TestCoerceBoolean(t *testing.T) {
	tests := []struct {
		input    any
		expected any
		ok       bool
	}{
		{"yes", true, true},
		{"Yes", true, true},
		{"1", true, true},
		{"true", true, true},
		{"TRUE", true, true},
		{"no", false, true},
		{"0", false, true},
		{"false", false, true},
		{" No ", false, true},
		{true, true, true},
		{int64(0), false, true},
		{float64(1), true, true},
		{json.Number("1"), true, true},
		{"y", nil, false},
		{"maybe", nil, false},
		{"2", nil, false},
		{"", nil, false},
		{int64(2), nil, false},
	}

	for _, tt := range tests {
		result, err := CoerceBoolean(tt.input)
		if (err == nil) != tt.ok {
			t.Errorf("CoerceBoolean(%#v) error = %v, expected ok=%v", tt.input, err, tt.ok)
			continue
		}
		if result != tt.expected {
			t.Errorf("CoerceBoolean(%#v) = %v, expected %v", tt.input, result, tt.expected)
		}
	}
}

func TestCoerceString(t *testing.T) {
	tests := []struct {
		input    any
		expected any
	}{
		{"  hello ", "hello"},
		{float64(12.5), "12.5"},
		{int64(3), "3"},
		{true, "true"},
		{json.Number("1e3"), "1e3"},
	}

	for _, tt := range tests {
		result, err := CoerceString(tt.input)
		if err != nil {
			t.Errorf("CoerceString(%#v) unexpected error: %v", tt.input, err)
			continue
		}
		if result != tt.expected {
			t.Errorf("CoerceString(%#v) = %v, expected %v", tt.input, result, tt.expected)
		}
	}

	if _, err := CoerceString([]string{"x"}); err == nil {
		t.Errorf("CoerceString should reject a slice")
	}
}
