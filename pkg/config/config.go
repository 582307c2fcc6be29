package config

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/cuemby/rtsim/pkg/persist"
)

// ErrInvalidValue is returned for configuration values that cannot be parsed.
var ErrInvalidValue = errors.New("invalid configuration value")

const (
	KeyExecCancellations   = "execCancellations"
	KeyDlMissCancellations = "dlMissCancellations"
)

// SchedulerConfig controls which jobs a scheduler may sacrifice.
type SchedulerConfig struct {
	// ExecCancellations allows cancelling jobs that already executed.
	ExecCancellations bool `yaml:"execCancellations" json:"execCancellations"`
	// DlMissCancellations cancels jobs that can no longer meet their deadline.
	DlMissCancellations bool `yaml:"dlMissCancellations" json:"dlMissCancellations"`
}

// Default returns the configuration used when no key is given.
func Default() SchedulerConfig {
	return SchedulerConfig{
		ExecCancellations:   true,
		DlMissCancellations: true,
	}
}

// FromMap reads a scheduler configuration from key/value pairs. Missing keys
// keep their defaults; unknown keys are ignored.
func FromMap(kv map[string]string) (SchedulerConfig, error) {
	cfg := Default()
	for _, f := range []struct {
		key string
		dst *bool
	}{
		{KeyExecCancellations, &cfg.ExecCancellations},
		{KeyDlMissCancellations, &cfg.DlMissCancellations},
	} {
		key, dst := f.key, f.dst
		raw, ok := kv[key]
		if !ok {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return SchedulerConfig{}, fmt.Errorf("%w: %s=%q", ErrInvalidValue, key, raw)
		}
		*dst = v
	}
	return cfg, nil
}

func (c SchedulerConfig) ElementName() string { return "SchedulerConfiguration" }

func (c SchedulerConfig) WriteFields(e *persist.Element) {
	e.Set(KeyExecCancellations, c.ExecCancellations)
	e.Set(KeyDlMissCancellations, c.DlMissCancellations)
}
