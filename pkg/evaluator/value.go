// Package evaluator implements the Lox tree-walking interpreter.
package evaluator

import (
	"math"

	"github.com/thomasrohde/lox/pkg/ast"
	"github.com/thomasrohde/lox/pkg/lexer"
)

// Value is the interface for all Lox runtime values.
// Use the sealed marker method to restrict implementations to this package.
type Value interface {
	loxValue() // sealed marker
}

// Nil represents the nil value.
type Nil struct{}

func (Nil) loxValue() {}

// Bool represents a boolean value.
type Bool struct {
	Value bool
}

func (Bool) loxValue() {}

// Number represents a double-precision number.
type Number struct {
	Value float64
}

func (Number) loxValue() {}

// String represents an immutable string value.
type String struct {
	Value string
}

func (String) loxValue() {}

// NativeFn is a function implemented in Go and exposed to programs.
type NativeFn struct {
	Name  string
	Arity int
	Fn    func(args []Value) (Value, error)
}

func (*NativeFn) loxValue() {}

// Function is a user-defined function together with the scope it closes over.
type Function struct {
	Decl    *ast.FunctionStmt
	Closure *Env
}

func (*Function) loxValue() {}

// Callable is implemented by values that can appear as the callee of a call.
type Callable interface {
	Value
	ArityOf() int
	NameOf() string
}

func (n *NativeFn) ArityOf() int   { return n.Arity }
func (n *NativeFn) NameOf() string { return n.Name }
func (f *Function) ArityOf() int   { return len(f.Decl.Params) }
func (f *Function) NameOf() string { return f.Decl.Name.Lexeme }

// NewNil creates a nil value.
func NewNil() Value {
	return Nil{}
}

// NewBool creates a boolean value.
func NewBool(b bool) Value {
	return Bool{Value: b}
}

// NewNumber creates a numeric value.
func NewNumber(n float64) Value {
	return Number{Value: n}
}

// NewString creates a string value.
func NewString(s string) Value {
	return String{Value: s}
}

// Truthiness returns the boolean interpretation of a value.
// Only nil and false are falsy; 0 and "" are truthy.
func Truthiness(v Value) bool {
	switch val := v.(type) {
	case nil, Nil:
		return false
	case Bool:
		return val.Value
	default:
		return true
	}
}

// Stringify renders a value the way print shows it.
func Stringify(v Value) string {
	switch val := v.(type) {
	case nil, Nil:
		return "nil"
	case Bool:
		if val.Value {
			return "true"
		}
		return "false"
	case Number:
		return lexer.FormatNumber(val.Value)
	case String:
		return val.Value
	case *NativeFn:
		return "<native fn " + val.Name + ">"
	case *Function:
		return "<fn " + val.Decl.Name.Lexeme + ">"
	}
	return "nil"
}

// epsilon is the gap between 1.0 and the next representable float64.
const epsilon = 2.220446049250313e-16

// ValuesEqual implements == for two values. Values of different kinds are
// never equal; functions compare by identity.
func ValuesEqual(a, b Value) bool {
	switch av := a.(type) {
	case nil, Nil:
		switch b.(type) {
		case nil, Nil:
			return true
		}
		return false
	case Bool:
		bv, ok := b.(Bool)
		return ok && av.Value == bv.Value
	case Number:
		bv, ok := b.(Number)
		if !ok {
			return false
		}
		if av.Value == bv.Value {
			return true
		}
		return math.Abs(av.Value-bv.Value) < epsilon
	case String:
		bv, ok := b.(String)
		return ok && av.Value == bv.Value
	case *NativeFn:
		bv, ok := b.(*NativeFn)
		return ok && av == bv
	case *Function:
		bv, ok := b.(*Function)
		return ok && av == bv
	}
	return false
}

// typeNameOf returns the type name used in diagnostics and traces.
func typeNameOf(v Value) string {
	switch v.(type) {
	case nil, Nil:
		return "nil"
	case Bool:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case *NativeFn, *Function:
		return "function"
	default:
		return "unknown"
	}
}
