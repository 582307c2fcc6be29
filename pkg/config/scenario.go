package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultCycles is the simulated length used when a scenario omits it.
const DefaultCycles = 1000

// Scenario describes an evaluation: one task set run under several schedulers.
type Scenario struct {
	TaskSet    string            `yaml:"taskset"`
	Cycles     int               `yaml:"cycles,omitempty"`
	Schedulers []string          `yaml:"schedulers"`
	Scheduler  map[string]string `yaml:"scheduler,omitempty"`
	StopOnMiss bool              `yaml:"stopOnMiss,omitempty"`
}

// LoadScenario reads a scenario file. A relative task-set path is resolved
// against the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	sc, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if !filepath.IsAbs(sc.TaskSet) {
		sc.TaskSet = filepath.Join(filepath.Dir(path), sc.TaskSet)
	}
	return sc, nil
}

// ParseScenario parses and validates a scenario.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if sc.TaskSet == "" {
		return nil, fmt.Errorf("%w: scenario has no taskset", ErrInvalidValue)
	}
	if len(sc.Schedulers) == 0 {
		return nil, fmt.Errorf("%w: scenario lists no schedulers", ErrInvalidValue)
	}
	if sc.Cycles < 0 {
		return nil, fmt.Errorf("%w: cycles %d", ErrInvalidValue, sc.Cycles)
	}
	if sc.Cycles == 0 {
		sc.Cycles = DefaultCycles
	}
	return &sc, nil
}

// SchedulerConfig returns the scheduler configuration of the scenario.
func (s *Scenario) SchedulerConfig() (SchedulerConfig, error) {
	return FromMap(s.Scheduler)
}
