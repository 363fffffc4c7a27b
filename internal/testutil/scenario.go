// Package testutil provides shared test helpers for the Lox CLI tests.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ScenarioFile is the name of the file describing one scenario.
const ScenarioFile = "scenario.yaml"

// Scenario represents a CLI test case loaded from a scenario.yaml file.
type Scenario struct {
	Name   string         `yaml:"-"`
	Dir    string         `yaml:"-"`
	Cmd    []string       `yaml:"cmd"`
	Stdin  string         `yaml:"stdin,omitempty"`
	Tags   []string       `yaml:"tags,omitempty"`
	Expect ExpectedResult `yaml:"expect"`
}

// ExpectedResult describes the expected outcome of running a scenario.
// Empty fields are not checked.
type ExpectedResult struct {
	ExitCode       int     `yaml:"exitCode"`
	Stdout         *string `yaml:"stdout,omitempty"`
	StdoutContains string  `yaml:"stdoutContains,omitempty"`
	Stderr         *string `yaml:"stderr,omitempty"`
	StderrContains string  `yaml:"stderrContains,omitempty"`
}

// LoadScenario loads a scenario from a directory containing scenario.yaml.
func LoadScenario(dir string) (*Scenario, error) {
	file, err := os.Open(filepath.Join(dir, ScenarioFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var s Scenario
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", dir, err)
	}
	if len(s.Cmd) == 0 {
		return nil, fmt.Errorf("scenario %s: cmd is empty", dir)
	}
	s.Name = filepath.Base(dir)
	s.Dir = dir
	return &s, nil
}

// ListScenarios returns all scenario directories under the given root, sorted.
func ListScenarios(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(root, e.Name(), ScenarioFile)); err == nil {
			dirs = append(dirs, filepath.Join(root, e.Name()))
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// ResolveArgs returns the scenario command with arguments that name files in
// the scenario directory rewritten to absolute paths.
func (s *Scenario) ResolveArgs() []string {
	args := make([]string, len(s.Cmd))
	for i, arg := range s.Cmd {
		args[i] = arg
		if i == 0 || strings.HasPrefix(arg, "-") {
			continue
		}
		path := filepath.Join(s.Dir, arg)
		if _, err := os.Stat(path); err == nil {
			args[i] = path
		}
	}
	return args
}

// HasTag reports whether the scenario carries tag.
func (s *Scenario) HasTag(tag string) bool {
	for _, t := range s.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// ReadProgramFile reads the first file argument of the scenario command.
func (s *Scenario) ReadProgramFile() (string, error) {
	for _, arg := range s.Cmd[1:] {
		if arg == "" || strings.HasPrefix(arg, "-") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.Dir, arg))
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	return "", fmt.Errorf("scenario %s: no program file", s.Name)
}
