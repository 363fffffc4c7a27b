// Package runtime provides the top-level Lox orchestrator: it wires the
// scanner, parser and interpreter together and maps failures to exit codes.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/thomasrohde/lox/pkg/ast"
	"github.com/thomasrohde/lox/pkg/config"
	"github.com/thomasrohde/lox/pkg/diagnostics"
	"github.com/thomasrohde/lox/pkg/evaluator"
	"github.com/thomasrohde/lox/pkg/formatter"
	"github.com/thomasrohde/lox/pkg/lexer"
	"github.com/thomasrohde/lox/pkg/parser"
	"github.com/thomasrohde/lox/pkg/stdlib"
	"github.com/thomasrohde/lox/pkg/validator"
)

// Exit codes follow the BSD sysexits convention.
const (
	ExitOK       = 0
	ExitUsage    = 64
	ExitDataErr  = 65
	ExitNoInput  = 66
	ExitSoftware = 70
)

// Phase names the pipeline stage that produced a DiagnosticError.
type Phase string

const (
	PhaseLex   Phase = "lex"
	PhaseParse Phase = "parse"
	PhaseCheck Phase = "check"
)

// Runtime wires together all Lox components for program execution.
type Runtime struct {
	natives *stdlib.Registry
	budget  evaluator.Budget
	stdout  io.Writer
	logger  *slog.Logger
	runID   string
	trace   func(event evaluator.TraceEvent)
}

// Option is a functional option for configuring the Runtime.
type Option func(*Runtime)

// WithNatives sets the native function registry.
func WithNatives(r *stdlib.Registry) Option {
	return func(rt *Runtime) {
		rt.natives = r
	}
}

// WithBudget sets the execution limits.
func WithBudget(b evaluator.Budget) Option {
	return func(rt *Runtime) {
		rt.budget = b
	}
}

// WithConfig applies the settings of a loaded configuration.
func WithConfig(cfg *config.Config) Option {
	return func(rt *Runtime) {
		rt.budget = cfg.Budget
	}
}

// WithStdout sets where print writes.
func WithStdout(w io.Writer) Option {
	return func(rt *Runtime) {
		rt.stdout = w
	}
}

// WithLogger sets the logger for phase progress.
func WithLogger(l *slog.Logger) Option {
	return func(rt *Runtime) {
		rt.logger = l
	}
}

// WithRunID sets the run ID for trace events.
func WithRunID(id string) Option {
	return func(rt *Runtime) {
		rt.runID = id
	}
}

// WithTrace sets the trace callback.
func WithTrace(fn func(event evaluator.TraceEvent)) Option {
	return func(rt *Runtime) {
		rt.trace = fn
	}
}

// New creates a new Runtime with the given options.
// By default the native defaults are registered, output goes to os.Stdout
// and logs are discarded.
func New(opts ...Option) *Runtime {
	natives := stdlib.NewRegistry()
	stdlib.RegisterDefaults(natives)

	rt := &Runtime{
		natives: natives,
		stdout:  os.Stdout,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		runID:   "cli",
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

func (rt *Runtime) newInterpreter() *evaluator.Interpreter {
	return evaluator.New(evaluator.Options{
		Natives: rt.natives.Natives(),
		Stdout:  rt.stdout,
		Trace:   rt.trace,
		RunID:   rt.runID,
		Budget:  rt.budget,
	})
}

// Tokenize scans source. The tokens are returned even when the scan
// reported errors, which come back as a *DiagnosticError.
func (rt *Runtime) Tokenize(source string) ([]lexer.Token, error) {
	start := time.Now()
	tokens, diags := lexer.Tokenize(source)
	rt.logger.Debug("scanned", "tokens", len(tokens), "errors", len(diags), "duration", time.Since(start))
	if len(diags) > 0 {
		return tokens, &DiagnosticError{Phase: PhaseLex, Diagnostics: diags}
	}
	return tokens, nil
}

// Parse scans and parses a program.
func (rt *Runtime) Parse(source string) ([]ast.Stmt, error) {
	tokens, err := rt.Tokenize(source)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	stmts, err := parser.Parse(tokens)
	if err != nil {
		return nil, parseFailure(err)
	}
	rt.logger.Debug("parsed", "statements", len(stmts), "duration", time.Since(start))
	return stmts, nil
}

// ParseExpr scans and parses a source holding a single expression.
func (rt *Runtime) ParseExpr(source string) (ast.Expr, error) {
	tokens, err := rt.Tokenize(source)
	if err != nil {
		return nil, err
	}
	expr, err := parser.ParseExpression(tokens)
	if err != nil {
		return nil, parseFailure(err)
	}
	rt.logger.Debug("parsed", "expression", expr.Kind())
	return expr, nil
}

func parseFailure(err error) error {
	var pe *parser.ParseError
	if errors.As(err, &pe) {
		return &DiagnosticError{Phase: PhaseParse, Diagnostics: []diagnostics.Diagnostic{pe.Diag}}
	}
	return err
}

// Run scans, parses and executes a program. Runtime failures are returned
// as *evaluator.RuntimeError.
func (rt *Runtime) Run(ctx context.Context, source string) error {
	stmts, err := rt.Parse(source)
	if err != nil {
		return err
	}
	start := time.Now()
	interp := rt.newInterpreter()
	err = interp.Execute(ctx, stmts)
	tracker := interp.Tracker()
	rt.logger.Debug("executed",
		"ok", err == nil,
		"calls", tracker.Calls,
		"iterations", tracker.Iterations,
		"maxDepth", tracker.MaxDepth,
		"duration", time.Since(start))
	return err
}

// Evaluate parses and evaluates a single expression.
func (rt *Runtime) Evaluate(ctx context.Context, source string) (evaluator.Value, error) {
	expr, err := rt.ParseExpr(source)
	if err != nil {
		return nil, err
	}
	return rt.newInterpreter().Evaluate(ctx, expr)
}

// Check parses and lints a program without executing it.
func (rt *Runtime) Check(source string) []diagnostics.Diagnostic {
	stmts, err := rt.Parse(source)
	if err != nil {
		return Diagnostics(err)
	}
	diags := validator.Validate(stmts, rt.natives.Names())
	rt.logger.Debug("checked", "diagnostics", len(diags))
	return diags
}

// Format parses and pretty-prints a program.
func (rt *Runtime) Format(source string) (string, error) {
	stmts, err := rt.Parse(source)
	if err != nil {
		return "", err
	}
	return formatter.Format(stmts), nil
}

// DiagnosticError wraps lexical, syntax or lint diagnostics as an error.
type DiagnosticError struct {
	Phase       Phase
	Diagnostics []diagnostics.Diagnostic
}

func (e *DiagnosticError) Error() string {
	msgs := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		msgs[i] = d.String()
	}
	return strings.Join(msgs, "; ")
}

// Diagnostics converts any pipeline error into diagnostics for display.
func Diagnostics(err error) []diagnostics.Diagnostic {
	if err == nil {
		return nil
	}
	var de *DiagnosticError
	if errors.As(err, &de) {
		return de.Diagnostics
	}
	var re *evaluator.RuntimeError
	if errors.As(err, &re) {
		return []diagnostics.Diagnostic{re.Diagnostic()}
	}
	code := diagnostics.EInternal
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
		code = diagnostics.EIO
	}
	return []diagnostics.Diagnostic{diagnostics.MakeDiag(code, err.Error(), 0, "")}
}

// ExitCode maps an error returned by the runtime to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var de *DiagnosticError
	if errors.As(err, &de) {
		return ExitDataErr
	}
	var re *evaluator.RuntimeError
	if errors.As(err, &re) {
		return ExitSoftware
	}
	var pe *fs.PathError
	if errors.As(err, &pe) {
		return ExitNoInput
	}
	return ExitSoftware
}

// ReadSource reads a program file. Failures wrap the underlying *fs.PathError
// so ExitCode reports them as unreadable input.
func ReadSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
