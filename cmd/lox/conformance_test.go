package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/thomasrohde/lox/internal/testutil"
)

// scenariosRoot is the shared scenario corpus, relative to this package.
var scenariosRoot = filepath.Join("..", "..", "testdata", "scenarios")

func TestConformance(t *testing.T) {
	// Keep a user config from leaking into the expected output.
	t.Setenv("HOME", t.TempDir())

	dirs, err := testutil.ListScenarios(scenariosRoot)
	if err != nil {
		t.Fatalf("failed to list scenarios: %v", err)
	}
	if len(dirs) == 0 {
		t.Fatal("no scenarios found")
	}

	for _, dir := range dirs {
		dir := dir
		t.Run(filepath.Base(dir), func(t *testing.T) {
			scenario, err := testutil.LoadScenario(dir)
			if err != nil {
				t.Fatalf("failed to load scenario: %v", err)
			}

			var stdout, stderr bytes.Buffer
			exit := run(scenario.ResolveArgs(), strings.NewReader(scenario.Stdin), &stdout, &stderr)

			expect := scenario.Expect
			if exit != expect.ExitCode {
				t.Errorf("exit code: got %d, want %d\nstderr: %s", exit, expect.ExitCode, stderr.String())
			}
			if expect.Stdout != nil && stdout.String() != *expect.Stdout {
				t.Errorf("stdout:\n  got:  %q\n  want: %q", stdout.String(), *expect.Stdout)
			}
			if expect.StdoutContains != "" && !strings.Contains(stdout.String(), expect.StdoutContains) {
				t.Errorf("stdout %q does not contain %q", stdout.String(), expect.StdoutContains)
			}
			if expect.Stderr != nil && stderr.String() != *expect.Stderr {
				t.Errorf("stderr:\n  got:  %q\n  want: %q", stderr.String(), *expect.Stderr)
			}
			if expect.StderrContains != "" && !strings.Contains(stderr.String(), expect.StderrContains) {
				t.Errorf("stderr %q does not contain %q", stderr.String(), expect.StderrContains)
			}
		})
	}
}

// Formatting a passing program must not change what it prints.
func TestFormattedScenariosRunTheSame(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	dirs, err := testutil.ListScenarios(scenariosRoot)
	if err != nil {
		t.Fatalf("failed to list scenarios: %v", err)
	}
	for _, dir := range dirs {
		scenario, err := testutil.LoadScenario(dir)
		if err != nil {
			t.Fatalf("failed to load scenario: %v", err)
		}
		if !scenario.HasTag("run") || scenario.Expect.ExitCode != 0 || scenario.Expect.Stdout == nil || scenario.Cmd[1] == "-" {
			continue
		}
		t.Run(scenario.Name, func(t *testing.T) {
			source, err := scenario.ReadProgramFile()
			if err != nil {
				t.Fatal(err)
			}
			original := filepath.Join(t.TempDir(), "original.lox")
			if err := os.WriteFile(original, []byte(source), 0o644); err != nil {
				t.Fatal(err)
			}

			var formatted, stderr bytes.Buffer
			if code := run([]string{"fmt", original}, strings.NewReader(""), &formatted, &stderr); code != 0 {
				t.Fatalf("fmt exit %d: %s", code, stderr.String())
			}
			path := filepath.Join(t.TempDir(), "formatted.lox")
			if err := os.WriteFile(path, formatted.Bytes(), 0o644); err != nil {
				t.Fatal(err)
			}

			var stdout bytes.Buffer
			stderr.Reset()
			if code := run([]string{"run", path}, strings.NewReader(""), &stdout, &stderr); code != 0 {
				t.Fatalf("run exit %d: %s\nformatted:\n%s", code, stderr.String(), formatted.String())
			}
			if stdout.String() != *scenario.Expect.Stdout {
				t.Errorf("stdout:\n  got:  %q\n  want: %q", stdout.String(), *scenario.Expect.Stdout)
			}
		})
	}
}
