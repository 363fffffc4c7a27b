package stdlib

import (
	"time"

	"github.com/thomasrohde/lox/pkg/evaluator"
)

// now is replaced in tests.
var now = time.Now

// RegisterDefaults adds the built-in native functions.
func RegisterDefaults(r *Registry) {
	r.Register(Fn{Name: "clock", Arity: 0, Execute: stdlibClock})
}

// stdlibClock returns the current Unix time in seconds with sub-second precision.
func stdlibClock(args []evaluator.Value) (evaluator.Value, error) {
	t := now()
	return evaluator.NewNumber(float64(t.UnixNano()) / float64(time.Second)), nil
}
