// Command lox is the Lox interpreter CLI.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/thomasrohde/lox/pkg/config"
	"github.com/thomasrohde/lox/pkg/diagnostics"
	"github.com/thomasrohde/lox/pkg/evaluator"
	"github.com/thomasrohde/lox/pkg/formatter"
	"github.com/thomasrohde/lox/pkg/help"
	"github.com/thomasrohde/lox/pkg/runtime"
	"github.com/thomasrohde/lox/pkg/stdlib"
)

const appName = "lox"

// app holds the streams and configuration shared by every command.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	cfg    *config.Config
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}
	if len(args) < 1 {
		a.usage(stderr)
		return runtime.ExitUsage
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(stderr, "%s: %s\n", appName, err)
		return runtime.ExitSoftware
	}
	cfg, err := config.Load(cwd)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %s\n", appName, err)
		return runtime.ExitUsage
	}
	a.cfg = cfg

	cmd := args[0]
	switch cmd {
	case "run":
		return a.cmdRun(args[1:])
	case "tokenize":
		return a.cmdTokenize(args[1:])
	case "parse":
		return a.cmdParse(args[1:])
	case "evaluate":
		return a.cmdEvaluate(args[1:])
	case "check":
		return a.cmdCheck(args[1:])
	case "fmt":
		return a.cmdFmt(args[1:])
	case "repl":
		return a.cmdRepl(args[1:])
	case "trace":
		return a.cmdTrace(args[1:])
	case "config":
		return a.cmdConfig(args[1:])
	case "help", "--help", "-h":
		return a.cmdHelp(args[1:])
	default:
		fmt.Fprintf(stderr, "%s: unknown command %q\n", appName, cmd)
		a.usage(stderr)
		return runtime.ExitUsage
	}
}

func (a *app) usage(w io.Writer) {
	fmt.Fprintf(w, `Usage:
  %[1]s run <file> [--json] [--trace <file.jsonl>] [--log-level <level>]
  %[1]s tokenize <file>                 Print the token stream.
  %[1]s parse <file>                    Print one expression in prefix form.
  %[1]s evaluate <file>                 Evaluate one expression and print it.
  %[1]s check <file> [--json]           Report static errors without running.
  %[1]s fmt <file> [--write]            Pretty-print a program.
  %[1]s repl                            Start the interactive prompt.
  %[1]s trace <file.jsonl> [--text|--json]
  %[1]s config                          Print the effective configuration.
  %[1]s help [topic]                    Show the language reference.
`, appName)
}

func (a *app) cmdHelp(args []string) int {
	if len(args) == 0 {
		a.usage(a.stdout)
		fmt.Fprintln(a.stdout)
		fmt.Fprint(a.stdout, help.QUICKREF)
		return runtime.ExitOK
	}
	name, content, err := help.MatchTopic(args[0])
	if err != nil {
		fmt.Fprintf(a.stderr, "%s: %s\n", appName, err)
		fmt.Fprintf(a.stderr, "topics: %s\n", strings.Join(help.TopicList, ", "))
		return runtime.ExitUsage
	}
	fmt.Fprint(a.stdout, content)
	if name == "natives" {
		reg := stdlib.NewRegistry()
		stdlib.RegisterDefaults(reg)
		fmt.Fprintln(a.stdout)
		fmt.Fprint(a.stdout, help.NativesIndex(reg))
	}
	return runtime.ExitOK
}

// cmdArgs holds the flags shared by the file commands.
type cmdArgs struct {
	file     string
	asJSON   bool
	write    bool
	text     bool
	trace    string
	logLevel string
}

// parseArgs reads the positional file argument and the flags in allowed.
// It returns false after printing a message when the arguments are invalid.
func (a *app) parseArgs(name string, args []string, allowed ...string) (cmdArgs, bool) {
	out := cmdArgs{asJSON: a.cfg.Diagnostics.Format == "json", logLevel: a.cfg.Log.Level}
	ok := func(flag string) bool {
		for _, f := range allowed {
			if f == flag {
				return true
			}
		}
		return false
	}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--json" && ok(arg):
			out.asJSON = true
		case arg == "--text" && ok(arg):
			out.text = true
		case arg == "--write" && ok(arg):
			out.write = true
		case (arg == "--trace" || arg == "--log-level") && ok(arg):
			if i+1 >= len(args) {
				fmt.Fprintf(a.stderr, "%s %s: %s needs a value\n", appName, name, arg)
				return out, false
			}
			i++
			if arg == "--trace" {
				out.trace = args[i]
			} else {
				out.logLevel = args[i]
			}
		case strings.HasPrefix(arg, "-") && arg != "-":
			fmt.Fprintf(a.stderr, "%s %s: unknown flag %s\n", appName, name, arg)
			return out, false
		default:
			if out.file != "" {
				fmt.Fprintf(a.stderr, "%s %s: unexpected argument %s\n", appName, name, arg)
				return out, false
			}
			out.file = arg
		}
	}
	if out.file == "" {
		fmt.Fprintf(a.stderr, "usage: %s %s <file>\n", appName, name)
		return out, false
	}
	return out, true
}

// readSource reads a program file, or stdin when file is "-".
func (a *app) readSource(file string, asJSON bool) (string, int) {
	if file == "-" {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			a.report(fmt.Errorf("read stdin: %w", err), asJSON)
			return "", runtime.ExitNoInput
		}
		return string(data), runtime.ExitOK
	}
	source, err := runtime.ReadSource(file)
	if err != nil {
		a.report(err, asJSON)
		return "", runtime.ExitCode(err)
	}
	return source, runtime.ExitOK
}

// report prints the diagnostics carried by err to stderr.
func (a *app) report(err error, asJSON bool) {
	fmt.Fprintln(a.stderr, diagnostics.FormatDiagnostics(runtime.Diagnostics(err), asJSON))
}

// newLogger builds the stderr logger at the given level.
func (a *app) newLogger(level string) (*slog.Logger, error) {
	lvl, err := config.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: lvl})), nil
}

func (a *app) newRuntime(logger *slog.Logger, extra ...runtime.Option) *runtime.Runtime {
	opts := []runtime.Option{
		runtime.WithConfig(a.cfg),
		runtime.WithStdout(a.stdout),
		runtime.WithLogger(logger),
	}
	return runtime.New(append(opts, extra...)...)
}

func (a *app) cmdRun(args []string) int {
	ca, ok := a.parseArgs("run", args, "--json", "--trace", "--log-level")
	if !ok {
		return runtime.ExitUsage
	}
	logger, err := a.newLogger(ca.logLevel)
	if err != nil {
		fmt.Fprintf(a.stderr, "%s run: %s\n", appName, err)
		return runtime.ExitUsage
	}
	source, code := a.readSource(ca.file, ca.asJSON)
	if code != runtime.ExitOK {
		return code
	}

	runID := fmt.Sprintf("run-%d", time.Now().UnixNano())
	opts := []runtime.Option{runtime.WithRunID(runID)}
	if ca.trace != "" {
		f, err := os.Create(ca.trace)
		if err != nil {
			a.report(fmt.Errorf("create trace file: %w", err), ca.asJSON)
			return runtime.ExitCode(err)
		}
		defer f.Close()
		enc := json.NewEncoder(f)
		opts = append(opts, runtime.WithTrace(func(ev evaluator.TraceEvent) {
			logger.Debug("trace", "event", ev.Event, "line", ev.Line)
			if err := enc.Encode(ev); err != nil {
				logger.Warn("trace write failed", "err", err)
			}
		}))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("run", "file", ca.file, "runId", runID)
	if err := a.newRuntime(logger, opts...).Run(ctx, source); err != nil {
		a.report(err, ca.asJSON)
		return runtime.ExitCode(err)
	}
	return runtime.ExitOK
}

func (a *app) cmdTokenize(args []string) int {
	ca, ok := a.parseArgs("tokenize", args, "--json")
	if !ok {
		return runtime.ExitUsage
	}
	source, code := a.readSource(ca.file, ca.asJSON)
	if code != runtime.ExitOK {
		return code
	}
	logger, err := a.newLogger(a.cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(a.stderr, "%s tokenize: %s\n", appName, err)
		return runtime.ExitUsage
	}
	tokens, err := a.newRuntime(logger).Tokenize(source)
	if err != nil {
		a.report(err, ca.asJSON)
	}
	for _, tok := range tokens {
		fmt.Fprintln(a.stdout, tok.String())
	}
	return runtime.ExitCode(err)
}

func (a *app) cmdParse(args []string) int {
	ca, ok := a.parseArgs("parse", args, "--json")
	if !ok {
		return runtime.ExitUsage
	}
	source, code := a.readSource(ca.file, ca.asJSON)
	if code != runtime.ExitOK {
		return code
	}
	logger, err := a.newLogger(a.cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(a.stderr, "%s parse: %s\n", appName, err)
		return runtime.ExitUsage
	}
	expr, err := a.newRuntime(logger).ParseExpr(source)
	if err != nil {
		a.report(err, ca.asJSON)
		return runtime.ExitCode(err)
	}
	fmt.Fprintln(a.stdout, formatter.Expr(expr))
	return runtime.ExitOK
}

func (a *app) cmdEvaluate(args []string) int {
	ca, ok := a.parseArgs("evaluate", args, "--json")
	if !ok {
		return runtime.ExitUsage
	}
	source, code := a.readSource(ca.file, ca.asJSON)
	if code != runtime.ExitOK {
		return code
	}
	logger, err := a.newLogger(a.cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(a.stderr, "%s evaluate: %s\n", appName, err)
		return runtime.ExitUsage
	}
	val, err := a.newRuntime(logger).Evaluate(context.Background(), source)
	if err != nil {
		a.report(err, ca.asJSON)
		return runtime.ExitCode(err)
	}
	fmt.Fprintln(a.stdout, evaluator.Stringify(val))
	return runtime.ExitOK
}

func (a *app) cmdCheck(args []string) int {
	ca, ok := a.parseArgs("check", args, "--json")
	if !ok {
		return runtime.ExitUsage
	}
	source, code := a.readSource(ca.file, ca.asJSON)
	if code != runtime.ExitOK {
		return code
	}
	logger, err := a.newLogger(a.cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(a.stderr, "%s check: %s\n", appName, err)
		return runtime.ExitUsage
	}
	diags := a.newRuntime(logger).Check(source)
	if len(diags) > 0 {
		fmt.Fprintln(a.stderr, diagnostics.FormatDiagnostics(diags, ca.asJSON))
		return runtime.ExitDataErr
	}
	if ca.asJSON {
		fmt.Fprintln(a.stdout, "[]")
	} else {
		fmt.Fprintln(a.stdout, "No errors found.")
	}
	return runtime.ExitOK
}

func (a *app) cmdFmt(args []string) int {
	ca, ok := a.parseArgs("fmt", args, "--write")
	if !ok {
		return runtime.ExitUsage
	}
	source, code := a.readSource(ca.file, false)
	if code != runtime.ExitOK {
		return code
	}
	logger, err := a.newLogger(a.cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(a.stderr, "%s fmt: %s\n", appName, err)
		return runtime.ExitUsage
	}
	formatted, err := a.newRuntime(logger).Format(source)
	if err != nil {
		a.report(err, false)
		return runtime.ExitCode(err)
	}

	if formatter.HasComments(source) {
		fmt.Fprintln(a.stderr, "warning: comments are not preserved by the formatter")
	}

	if ca.write && ca.file != "-" {
		if err := os.WriteFile(ca.file, []byte(formatted), 0o644); err != nil {
			fmt.Fprintf(a.stderr, "error writing file: %s\n", err)
			return runtime.ExitSoftware
		}
		return runtime.ExitOK
	}
	fmt.Fprint(a.stdout, formatted)
	return runtime.ExitOK
}

func (a *app) cmdConfig(args []string) int {
	if len(args) > 0 {
		fmt.Fprintf(a.stderr, "usage: %s config\n", appName)
		return runtime.ExitUsage
	}
	data, err := a.cfg.Encode()
	if err != nil {
		fmt.Fprintln(a.stderr, err)
		return runtime.ExitSoftware
	}
	if a.cfg.Source != "" {
		fmt.Fprintf(a.stdout, "# loaded from %s\n", a.cfg.Source)
	} else {
		fmt.Fprintln(a.stdout, "# built-in defaults")
	}
	a.stdout.Write(data)
	return runtime.ExitOK
}
