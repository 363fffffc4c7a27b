package evaluator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/thomasrohde/lox/pkg/ast"
	"github.com/thomasrohde/lox/pkg/diagnostics"
	"github.com/thomasrohde/lox/pkg/lexer"
)

// TraceEventType identifies the type of a trace event.
type TraceEventType string

const (
	TraceRunStart     TraceEventType = "run_start"
	TraceRunEnd       TraceEventType = "run_end"
	TraceFnCallStart  TraceEventType = "fn_call_start"
	TraceFnCallEnd    TraceEventType = "fn_call_end"
	TraceRuntimeError TraceEventType = "runtime_error"
)

// TraceEvent represents a single trace event emitted during execution.
type TraceEvent struct {
	Timestamp string         `json:"ts"`
	RunID     string         `json:"runId"`
	Event     TraceEventType `json:"event"`
	Line      int            `json:"line,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// Options configures an Interpreter.
type Options struct {
	Natives []*NativeFn
	Stdout  io.Writer // defaults to os.Stdout
	Trace   func(event TraceEvent)
	RunID   string
	Budget  Budget
}

// RuntimeError represents an error raised while executing a program.
type RuntimeError struct {
	Code    string
	Message string
	Line    int
}

func (e *RuntimeError) Error() string {
	return e.Message
}

// Diagnostic converts the error into a line-tagged diagnostic.
func (e *RuntimeError) Diagnostic() diagnostics.Diagnostic {
	return diagnostics.MakeDiag(e.Code, e.Message, e.Line, "")
}

// returnSignal carries a return value up to the nearest call boundary.
// It travels the error channel but is never a user-visible error.
type returnSignal struct {
	value Value
}

func (*returnSignal) Error() string {
	return "return outside of a function call"
}

// Interpreter executes Lox programs. The global scope persists across calls
// to Execute, so one Interpreter can back a REPL session.
type Interpreter struct {
	ctx     context.Context
	opts    Options
	out     io.Writer
	globals *Env
	env     *Env
	tracker BudgetTracker
	timed   bool
}

// New creates an Interpreter whose global scope holds the given natives.
func New(opts Options) *Interpreter {
	out := opts.Stdout
	if out == nil {
		out = os.Stdout
	}
	globals := NewEnv(nil)
	for _, fn := range opts.Natives {
		globals.Define(fn.Name, fn)
	}
	return &Interpreter{
		ctx:     context.Background(),
		opts:    opts,
		out:     out,
		globals: globals,
		env:     globals,
	}
}

// Globals returns the global scope.
func (in *Interpreter) Globals() *Env {
	return in.globals
}

// Tracker returns the resource counters of the most recent execution.
func (in *Interpreter) Tracker() BudgetTracker {
	return in.tracker
}

func (in *Interpreter) emit(event TraceEventType, line int, data map[string]any) {
	if in.opts.Trace == nil {
		return
	}
	in.opts.Trace(TraceEvent{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		RunID:     in.opts.RunID,
		Event:     event,
		Line:      line,
		Data:      data,
	})
}

// begin installs ctx, applying the time budget. The returned func releases it.
func (in *Interpreter) begin(ctx context.Context) context.CancelFunc {
	if ctx == nil {
		ctx = context.Background()
	}
	cancel := context.CancelFunc(func() {})
	in.timed = in.opts.Budget.TimeMs > 0
	if in.timed {
		ctx, cancel = context.WithTimeout(ctx, time.Duration(in.opts.Budget.TimeMs)*time.Millisecond)
	}
	in.ctx = ctx
	in.tracker = BudgetTracker{}
	in.env = in.globals
	return cancel
}

// Execute runs statements in the global scope. It stops at the first
// runtime error, which is returned as a *RuntimeError.
func (in *Interpreter) Execute(ctx context.Context, stmts []ast.Stmt) error {
	cancel := in.begin(ctx)
	defer cancel()

	start := hiresNow()
	in.emit(TraceRunStart, 0, map[string]any{"statements": len(stmts)})

	var err error
	for _, stmt := range stmts {
		if err = in.execute(stmt); err != nil {
			break
		}
	}

	var rs *returnSignal
	if errors.As(err, &rs) {
		err = &RuntimeError{Code: diagnostics.EInternal, Message: rs.Error()}
	}
	var rerr *RuntimeError
	if errors.As(err, &rerr) {
		in.emit(TraceRuntimeError, rerr.Line, map[string]any{"code": rerr.Code, "message": rerr.Message})
	}
	in.emit(TraceRunEnd, 0, map[string]any{
		"ok":         err == nil,
		"iterations": in.tracker.Iterations,
		"calls":      in.tracker.Calls,
		"maxDepth":   in.tracker.MaxDepth,
		"durationUs": hiresSinceMicros(start),
	})
	return err
}

// Evaluate evaluates a single expression in the global scope.
func (in *Interpreter) Evaluate(ctx context.Context, expr ast.Expr) (Value, error) {
	cancel := in.begin(ctx)
	defer cancel()

	val, err := in.evaluate(expr)
	var rs *returnSignal
	if errors.As(err, &rs) {
		return nil, &RuntimeError{Code: diagnostics.EInternal, Message: rs.Error()}
	}
	return val, err
}

func runtimeErr(line int, format string, args ...any) *RuntimeError {
	return &RuntimeError{Code: diagnostics.ERuntime, Message: fmt.Sprintf(format, args...), Line: line}
}

// checkContext reports cancellation or an exhausted time budget.
func (in *Interpreter) checkContext(line int) error {
	select {
	case <-in.ctx.Done():
	default:
		return nil
	}
	if in.timed && errors.Is(in.ctx.Err(), context.DeadlineExceeded) {
		return &RuntimeError{
			Code:    diagnostics.EBudget,
			Message: fmt.Sprintf("Time budget exceeded (%dms).", in.opts.Budget.TimeMs),
			Line:    line,
		}
	}
	return &RuntimeError{Code: diagnostics.ECancelled, Message: "Execution cancelled.", Line: line}
}

// tick accounts for one loop iteration.
func (in *Interpreter) tick(line int) error {
	if err := in.checkContext(line); err != nil {
		return err
	}
	if limit := in.opts.Budget.MaxIterations; limit > 0 && in.tracker.Iterations >= limit {
		return &RuntimeError{
			Code:    diagnostics.EBudget,
			Message: fmt.Sprintf("Iteration budget exceeded (max %d).", limit),
			Line:    line,
		}
	}
	in.tracker.Iterations++
	return nil
}

// --- Statements ---

func (in *Interpreter) execute(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.ExpressionStmt:
		_, err := in.evaluate(s.Expr)
		return err

	case *ast.PrintStmt:
		val, err := in.evaluate(s.Expr)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(in.out, Stringify(val)); err != nil {
			return &RuntimeError{Code: diagnostics.EIO, Message: fmt.Sprintf("print: %v", err), Line: s.Line}
		}
		return nil

	case *ast.VarStmt:
		var val Value = Nil{}
		if s.Initializer != nil {
			var err error
			if val, err = in.evaluate(s.Initializer); err != nil {
				return err
			}
		}
		in.env.Define(s.Name.Lexeme, val)
		return nil

	case *ast.BlockStmt:
		return in.executeBlock(s.Statements, in.env.Child())

	case *ast.IfStmt:
		cond, err := in.evaluate(s.Cond)
		if err != nil {
			return err
		}
		if Truthiness(cond) {
			return in.execute(s.Then)
		}
		if s.Else != nil {
			return in.execute(s.Else)
		}
		return nil

	case *ast.WhileStmt:
		return in.loop(s.Line, s.Cond, s.Body, nil)

	case *ast.ForStmt:
		// The initializer gets its own scope so the loop variable does not
		// leak into the enclosing one.
		prev := in.env
		in.env = prev.Child()
		defer func() { in.env = prev }()
		if s.Init != nil {
			if err := in.execute(s.Init); err != nil {
				return err
			}
		}
		return in.loop(s.Line, s.Cond, s.Body, s.Increment)

	case *ast.FunctionStmt:
		in.env.Define(s.Name.Lexeme, &Function{Decl: s, Closure: in.env})
		return nil

	case *ast.ReturnStmt:
		var val Value = Nil{}
		if s.Value != nil {
			var err error
			if val, err = in.evaluate(s.Value); err != nil {
				return err
			}
		}
		return &returnSignal{value: val}
	}
	return &RuntimeError{Code: diagnostics.EInternal, Message: fmt.Sprintf("unknown statement %T", stmt), Line: stmt.NodeLine()}
}

func (in *Interpreter) loop(line int, cond ast.Expr, body ast.Stmt, incr ast.Expr) error {
	for {
		c, err := in.evaluate(cond)
		if err != nil {
			return err
		}
		if !Truthiness(c) {
			return nil
		}
		if err := in.tick(line); err != nil {
			return err
		}
		if err := in.execute(body); err != nil {
			return err
		}
		if incr != nil {
			if _, err := in.evaluate(incr); err != nil {
				return err
			}
		}
	}
}

// executeBlock runs stmts with env as the active scope and restores the
// previous scope on every exit path.
func (in *Interpreter) executeBlock(stmts []ast.Stmt, env *Env) error {
	prev := in.env
	in.env = env
	defer func() { in.env = prev }()

	for _, stmt := range stmts {
		if err := in.execute(stmt); err != nil {
			return err
		}
	}
	return nil
}

// --- Expressions ---

func (in *Interpreter) evaluate(expr ast.Expr) (Value, error) {
	switch e := expr.(type) {
	case *ast.NumberLiteral:
		return Number{Value: e.Value}, nil
	case *ast.StringLiteral:
		return String{Value: e.Value}, nil
	case *ast.BoolLiteral:
		return Bool{Value: e.Value}, nil
	case *ast.NilLiteral:
		return Nil{}, nil
	case *ast.Grouping:
		return in.evaluate(e.Inner)
	case *ast.Unary:
		return in.evalUnary(e)
	case *ast.Binary:
		return in.evalBinary(e)
	case *ast.Logical:
		return in.evalLogical(e)
	case *ast.Variable:
		return in.lookup(e.Name)
	case *ast.Assign:
		val, err := in.evaluate(e.Value)
		if err != nil {
			return nil, err
		}
		if !in.env.Assign(e.Name.Lexeme, val) {
			return nil, runtimeErr(e.Name.Line, "Undefined variable '%s'.", e.Name.Lexeme)
		}
		return val, nil
	case *ast.Call:
		return in.evalCall(e)
	}
	return nil, &RuntimeError{Code: diagnostics.EInternal, Message: fmt.Sprintf("unknown expression %T", expr), Line: expr.NodeLine()}
}

func (in *Interpreter) lookup(name lexer.Token) (Value, error) {
	val, ok := in.env.Get(name.Lexeme)
	if !ok {
		return nil, runtimeErr(name.Line, "Undefined variable '%s'.", name.Lexeme)
	}
	if val == nil {
		return nil, runtimeErr(name.Line, "Uninitialized variable '%s'.", name.Lexeme)
	}
	return val, nil
}

func (in *Interpreter) evalUnary(e *ast.Unary) (Value, error) {
	operand, err := in.evaluate(e.Operand)
	if err != nil {
		return nil, err
	}
	switch e.Op.Type {
	case lexer.TokMinus:
		n, ok := operand.(Number)
		if !ok {
			return nil, runtimeErr(e.Op.Line, "Operand must be a number.")
		}
		return Number{Value: -n.Value}, nil
	case lexer.TokBang:
		return Bool{Value: !Truthiness(operand)}, nil
	}
	return nil, runtimeErr(e.Op.Line, "Unknown unary operator '%s'.", e.Op.Lexeme)
}

func (in *Interpreter) evalBinary(e *ast.Binary) (Value, error) {
	left, err := in.evaluate(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := in.evaluate(e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Op.Type {
	case lexer.TokEqualEqual:
		return Bool{Value: ValuesEqual(left, right)}, nil
	case lexer.TokBangEqual:
		return Bool{Value: !ValuesEqual(left, right)}, nil
	case lexer.TokPlus:
		switch l := left.(type) {
		case Number:
			if r, ok := right.(Number); ok {
				return Number{Value: l.Value + r.Value}, nil
			}
		case String:
			if r, ok := right.(String); ok {
				return String{Value: l.Value + r.Value}, nil
			}
		}
		return nil, runtimeErr(e.Op.Line, "Operands must be two numbers or two strings.")
	}

	l, lok := left.(Number)
	r, rok := right.(Number)
	if !lok || !rok {
		return nil, runtimeErr(e.Op.Line, "Operands must be numbers.")
	}
	switch e.Op.Type {
	case lexer.TokMinus:
		return Number{Value: l.Value - r.Value}, nil
	case lexer.TokStar:
		return Number{Value: l.Value * r.Value}, nil
	case lexer.TokSlash:
		if r.Value == 0 {
			return nil, runtimeErr(e.Op.Line, "Division by zero.")
		}
		return Number{Value: l.Value / r.Value}, nil
	case lexer.TokGreater:
		return Bool{Value: l.Value > r.Value}, nil
	case lexer.TokGreaterEqual:
		return Bool{Value: l.Value >= r.Value}, nil
	case lexer.TokLess:
		return Bool{Value: l.Value < r.Value}, nil
	case lexer.TokLessEqual:
		return Bool{Value: l.Value <= r.Value}, nil
	}
	return nil, runtimeErr(e.Op.Line, "Unknown binary operator '%s'.", e.Op.Lexeme)
}

// evalLogical short-circuits and yields the operand that decided the result.
func (in *Interpreter) evalLogical(e *ast.Logical) (Value, error) {
	left, err := in.evaluate(e.Left)
	if err != nil {
		return nil, err
	}
	if e.Op.Type == lexer.TokOr {
		if Truthiness(left) {
			return left, nil
		}
	} else if !Truthiness(left) {
		return left, nil
	}
	return in.evaluate(e.Right)
}

func (in *Interpreter) evalCall(e *ast.Call) (Value, error) {
	callee, err := in.evaluate(e.Callee)
	if err != nil {
		return nil, err
	}
	args := make([]Value, 0, len(e.Args))
	for _, a := range e.Args {
		val, err := in.evaluate(a)
		if err != nil {
			return nil, err
		}
		args = append(args, val)
	}

	fn, ok := callee.(Callable)
	if !ok {
		return nil, runtimeErr(e.Paren.Line, "Can only call functions.")
	}
	if len(args) != fn.ArityOf() {
		return nil, runtimeErr(e.Paren.Line, "Expected %d arguments but got %d.", fn.ArityOf(), len(args))
	}
	return in.call(fn, args, e.Paren.Line)
}

func (in *Interpreter) call(fn Callable, args []Value, line int) (Value, error) {
	if err := in.checkContext(line); err != nil {
		return nil, err
	}
	if in.tracker.CallDepth >= in.opts.Budget.callDepthLimit() {
		return nil, runtimeErr(line, "Stack overflow.")
	}
	in.tracker.CallDepth++
	in.tracker.Calls++
	if in.tracker.CallDepth > in.tracker.MaxDepth {
		in.tracker.MaxDepth = in.tracker.CallDepth
	}
	defer func() { in.tracker.CallDepth-- }()

	start := hiresNow()
	in.emit(TraceFnCallStart, line, map[string]any{"fn": fn.NameOf(), "arity": fn.ArityOf()})

	result, err := in.invoke(fn, args, line)

	in.emit(TraceFnCallEnd, line, map[string]any{
		"fn":         fn.NameOf(),
		"ok":         err == nil,
		"result":     typeNameOf(result),
		"durationUs": hiresSinceMicros(start),
	})
	return result, err
}

func (in *Interpreter) invoke(fn Callable, args []Value, line int) (Value, error) {
	switch f := fn.(type) {
	case *NativeFn:
		val, err := f.Fn(args)
		if err != nil {
			var rerr *RuntimeError
			if errors.As(err, &rerr) {
				return nil, rerr
			}
			return nil, runtimeErr(line, "%s: %v", f.Name, err)
		}
		if val == nil {
			val = Nil{}
		}
		return val, nil

	case *Function:
		env := f.Closure.Child()
		for i, param := range f.Decl.Params {
			env.Define(param.Lexeme, args[i])
		}
		err := in.executeBlock(f.Decl.Body, env)
		var rs *returnSignal
		if errors.As(err, &rs) {
			return rs.value, nil
		}
		if err != nil {
			return nil, err
		}
		return Nil{}, nil
	}
	return nil, runtimeErr(line, "Can only call functions.")
}
