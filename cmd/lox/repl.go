package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/thomasrohde/lox/pkg/runtime"
)

func (a *app) cmdRepl(args []string) int {
	if len(args) > 0 {
		fmt.Fprintf(a.stderr, "usage: %s repl\n", appName)
		return runtime.ExitUsage
	}
	logger, err := a.newLogger(a.cfg.Log.Level)
	if err != nil {
		fmt.Fprintln(a.stderr, err)
		return runtime.ExitUsage
	}
	session := a.newRuntime(logger).NewSession()

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := a.cfg.HistoryPath()
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			_ = os.MkdirAll(filepath.Dir(histPath), 0o755)
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	for {
		code, ok := readByParseProbe(ln, session, a.cfg.Repl.Prompt, a.cfg.Repl.Continuation)
		if !ok {
			fmt.Fprintln(a.stdout)
			return runtime.ExitOK
		}
		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			switch strings.ToLower(trimmed) {
			case ":quit", ":q", ":exit":
				return runtime.ExitOK
			default:
				fmt.Fprintln(a.stdout, "unknown command. Type :quit to exit.")
			}
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))

		// Ctrl-C while a program runs cancels it instead of leaving the REPL.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		out, echo, err := session.Eval(ctx, code)
		stop()
		if err != nil {
			a.report(err, a.cfg.Diagnostics.Format == "json")
			continue
		}
		if echo {
			fmt.Fprintln(a.stdout, out)
		}
	}
}

// lineReader is the part of *liner.State the REPL reads from.
type lineReader interface {
	Prompt(prompt string) (string, error)
}

// readByParseProbe reads one or more lines until the accumulated input is
// no longer an unfinished program. ok is false at end of input.
func readByParseProbe(ln lineReader, session *runtime.Session, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		p := prompt
		if b.Len() > 0 {
			p = cont
		}
		line, err := ln.Prompt(p)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			// Ctrl-C discards the pending input.
			b.Reset()
			continue
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") || !session.NeedsMore(src) {
			return src, true
		}
	}
}
