package stdlib

import (
	"testing"
	"time"

	"github.com/thomasrohde/lox/pkg/evaluator"
)

func TestRegisterDefaults(t *testing.T) {
	reg := NewRegistry()
	RegisterDefaults(reg)

	fn := reg.Get("clock")
	if fn == nil {
		t.Fatal("clock not registered")
	}
	if fn.Arity != 0 {
		t.Errorf("clock arity = %d, want 0", fn.Arity)
	}
	if reg.Get("missing") != nil {
		t.Error("unexpected function for unknown name")
	}
}

func TestClock(t *testing.T) {
	orig := now
	defer func() { now = orig }()
	now = func() time.Time { return time.Unix(1700000000, 500_000_000) }

	val, err := stdlibClock(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, ok := val.(evaluator.Number)
	if !ok {
		t.Fatalf("expected Number, got %T", val)
	}
	if n.Value != 1700000000.5 {
		t.Errorf("clock = %v, want 1700000000.5", n.Value)
	}
}

func TestNatives(t *testing.T) {
	reg := NewRegistry()
	reg.Register(Fn{Name: "zeta", Arity: 1, Execute: func(args []evaluator.Value) (evaluator.Value, error) {
		return args[0], nil
	}})
	RegisterDefaults(reg)

	natives := reg.Natives()
	if len(natives) != 2 {
		t.Fatalf("got %d natives, want 2", len(natives))
	}
	if natives[0].Name != "clock" || natives[1].Name != "zeta" {
		t.Errorf("natives not sorted: %s, %s", natives[0].Name, natives[1].Name)
	}
	if natives[1].Arity != 1 {
		t.Errorf("zeta arity = %d, want 1", natives[1].Arity)
	}
	got, _ := natives[1].Fn([]evaluator.Value{evaluator.NewString("x")})
	if evaluator.Stringify(got) != "x" {
		t.Errorf("zeta returned %v", got)
	}
}
