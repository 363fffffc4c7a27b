package evaluator

import "testing"

func TestEnvDefineShadowsOnlyInnermost(t *testing.T) {
	global := NewEnv(nil)
	global.Define("a", NewNumber(1))
	inner := global.Child()
	inner.Define("a", NewNumber(2))

	if v, _ := inner.Get("a"); !ValuesEqual(v, NewNumber(2)) {
		t.Errorf("inner a = %v, want 2", v)
	}
	if v, _ := global.Get("a"); !ValuesEqual(v, NewNumber(1)) {
		t.Errorf("global a = %v, want 1", v)
	}
	if inner.Enclosing() != global {
		t.Error("Enclosing should return the parent scope")
	}
}

func TestEnvGetDistinguishesUndefinedFromNoValue(t *testing.T) {
	env := NewEnv(nil)
	env.Define("declared", nil)

	v, ok := env.Get("declared")
	if !ok || v != nil {
		t.Errorf("declared binding: got (%v, %v), want (nil, true)", v, ok)
	}
	if _, ok := env.Get("missing"); ok {
		t.Error("missing binding should not be found")
	}
}

func TestEnvAssignWalksChain(t *testing.T) {
	global := NewEnv(nil)
	global.Define("x", NewNumber(1))
	inner := global.Child().Child()

	if !inner.Assign("x", NewNumber(5)) {
		t.Fatal("assign to outer binding failed")
	}
	if v, _ := global.Get("x"); !ValuesEqual(v, NewNumber(5)) {
		t.Errorf("x = %v, want 5", v)
	}
	if inner.Assign("y", NewNumber(1)) {
		t.Error("assign to undefined name should fail")
	}
	if global.Has("y") {
		t.Error("failed assign must not create a binding")
	}
}
