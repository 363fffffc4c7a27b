package evaluator_test

import (
	"testing"

	"github.com/thomasrohde/lox/pkg/evaluator"
)

func TestTruthinessValues(t *testing.T) {
	tests := []struct {
		value    evaluator.Value
		expected bool
	}{
		{evaluator.NewNil(), false},
		{nil, false},
		{evaluator.NewBool(false), false},
		{evaluator.NewBool(true), true},
		{evaluator.NewNumber(0), true},
		{evaluator.NewNumber(-1), true},
		{evaluator.NewString(""), true},
		{evaluator.NewString("x"), true},
		{&evaluator.NativeFn{Name: "f"}, true},
	}
	for i, tt := range tests {
		if got := evaluator.Truthiness(tt.value); got != tt.expected {
			t.Errorf("case %d (%#v): got %v, want %v", i, tt.value, got, tt.expected)
		}
	}
}

func TestStringify(t *testing.T) {
	tests := []struct {
		value evaluator.Value
		want  string
	}{
		{evaluator.NewNil(), "nil"},
		{evaluator.NewBool(true), "true"},
		{evaluator.NewNumber(3), "3"},
		{evaluator.NewNumber(2.5), "2.5"},
		{evaluator.NewNumber(-0.5), "-0.5"},
		{evaluator.NewNumber(1e21), "1000000000000000000000"},
		{evaluator.NewString("raw \"text\""), "raw \"text\""},
		{&evaluator.NativeFn{Name: "clock"}, "<native fn clock>"},
	}
	for _, tt := range tests {
		if got := evaluator.Stringify(tt.value); got != tt.want {
			t.Errorf("Stringify(%#v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestValuesEqual(t *testing.T) {
	native := &evaluator.NativeFn{Name: "clock"}
	// Computed at run time so the sum keeps its rounding error.
	a, b := 0.1, 0.2
	if a+b == 0.3 {
		t.Fatal("0.1 + 0.2 rounded to exactly 0.3")
	}
	tests := []struct {
		name string
		a, b evaluator.Value
		want bool
	}{
		{"nil nil", evaluator.NewNil(), evaluator.NewNil(), true},
		{"nil false", evaluator.NewNil(), evaluator.NewBool(false), false},
		{"numbers", evaluator.NewNumber(1), evaluator.NewNumber(1), true},
		{"within epsilon", evaluator.NewNumber(a + b), evaluator.NewNumber(0.3), true},
		{"distinct numbers", evaluator.NewNumber(1), evaluator.NewNumber(1.0000001), false},
		{"string number", evaluator.NewString("1"), evaluator.NewNumber(1), false},
		{"strings", evaluator.NewString("a"), evaluator.NewString("a"), true},
		{"same native", native, native, true},
		{"distinct natives", native, &evaluator.NativeFn{Name: "clock"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := evaluator.ValuesEqual(tt.a, tt.b); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
