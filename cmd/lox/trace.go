package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/thomasrohde/lox/pkg/evaluator"
	"github.com/thomasrohde/lox/pkg/runtime"
)

// TraceSummary aggregates the events of a trace file.
type TraceSummary struct {
	RunID         string         `json:"runId"`
	TotalEvents   int            `json:"totalEvents"`
	FnCalls       int            `json:"fnCalls"`
	CallsByName   map[string]int `json:"callsByName"`
	RuntimeErrors int            `json:"runtimeErrors"`
	OK            bool           `json:"ok"`
	StartTime     string         `json:"startTime,omitempty"`
	EndTime       string         `json:"endTime,omitempty"`
	DurationMs    float64        `json:"durationMs"`
	InvalidLines  int            `json:"invalidLines,omitempty"`
}

func (a *app) cmdTrace(args []string) int {
	ca, ok := a.parseArgs("trace", args, "--json", "--text")
	if !ok {
		return runtime.ExitUsage
	}

	f, err := os.Open(ca.file)
	if err != nil {
		a.report(fmt.Errorf("open trace: %w", err), false)
		return runtime.ExitNoInput
	}
	defer f.Close()

	summary, err := computeTraceSummary(f)
	if err != nil {
		a.report(fmt.Errorf("read trace: %w", err), false)
		return runtime.ExitNoInput
	}

	// JSON is the default output.
	if ca.text && !ca.asJSON {
		printTraceSummaryText(a.stdout, summary)
		return runtime.ExitOK
	}
	b, err := json.Marshal(summary)
	if err != nil {
		fmt.Fprintln(a.stderr, err)
		return runtime.ExitSoftware
	}
	fmt.Fprintln(a.stdout, string(b))
	return runtime.ExitOK
}

func computeTraceSummary(r io.Reader) (*TraceSummary, error) {
	summary := &TraceSummary{
		CallsByName: make(map[string]int),
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var event evaluator.TraceEvent
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			summary.InvalidLines++
			continue
		}

		summary.TotalEvents++
		if summary.RunID == "" {
			summary.RunID = event.RunID
		}

		switch event.Event {
		case evaluator.TraceRunStart:
			if summary.StartTime == "" {
				summary.StartTime = event.Timestamp
			}
		case evaluator.TraceRunEnd:
			summary.EndTime = event.Timestamp
			if ok, found := event.Data["ok"].(bool); found {
				summary.OK = ok
			}
		case evaluator.TraceFnCallStart:
			summary.FnCalls++
			if name, ok := event.Data["fn"].(string); ok {
				summary.CallsByName[name]++
			}
		case evaluator.TraceRuntimeError:
			summary.RuntimeErrors++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if summary.StartTime != "" && summary.EndTime != "" {
		start, err1 := time.Parse(time.RFC3339Nano, summary.StartTime)
		end, err2 := time.Parse(time.RFC3339Nano, summary.EndTime)
		if err1 == nil && err2 == nil {
			summary.DurationMs = float64(end.Sub(start).Microseconds()) / 1000
		}
	}

	return summary, nil
}

func printTraceSummaryText(w io.Writer, s *TraceSummary) {
	status := "ok"
	if !s.OK {
		status = "failed"
	}
	fmt.Fprintf(w, "Run: %s (%s)\n", s.RunID, status)
	fmt.Fprintf(w, "Events: %d\n", s.TotalEvents)
	fmt.Fprintf(w, "Calls: %d\n", s.FnCalls)
	names := make([]string, 0, len(s.CallsByName))
	for name := range s.CallsByName {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %d\n", name, s.CallsByName[name])
	}
	fmt.Fprintf(w, "Runtime errors: %d\n", s.RuntimeErrors)
	if s.DurationMs > 0 {
		fmt.Fprintf(w, "Duration: %.3fms\n", s.DurationMs)
	}
}
