package queue

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// configFile is the on-disk layout read by LoadConfigs:
//
//	defaults:
//	  priorities:
//	    critical: {preset: aggressive, capacity: 1000}
//	    bulk:     {preset: none, capacity: unbounded}
//	job_types:
//	  notification:
//	    priorities:
//	      high: {max_attempts: 4, initial_delay: 2s, max_delay: 1m, multiplier: 2, capacity: 5000}
//
// A job type inherits every class it does not list from defaults.
type configFile struct {
	Defaults jobTypeFile            `yaml:"defaults"`
	JobTypes map[string]jobTypeFile `yaml:"job_types"`
}

type jobTypeFile struct {
	Priorities map[string]priorityFile `yaml:"priorities"`
}

type priorityFile struct {
	Preset       string        `yaml:"preset"`
	MaxAttempts  int           `yaml:"max_attempts"`
	InitialDelay durationValue `yaml:"initial_delay"`
	MaxDelay     durationValue `yaml:"max_delay"`
	Multiplier   float64       `yaml:"multiplier"`
	Capacity     capacityValue `yaml:"capacity"`
}

// durationValue accepts Go duration strings such as "500ms" or "5m"
type durationValue struct {
	time.Duration
	set bool
}

func (d *durationValue) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	d.Duration, d.set = parsed, true
	return nil
}

// capacityValue is a positive integer or the word "unbounded"
type capacityValue struct {
	n         int
	unbounded bool
	set       bool
}

func (c *capacityValue) UnmarshalYAML(node *yaml.Node) error {
	if strings.EqualFold(node.Value, "unbounded") {
		c.unbounded, c.set = true, true
		return nil
	}
	n, err := strconv.Atoi(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: capacity must be an integer or \"unbounded\": %w", node.Line, err)
	}
	c.n, c.set = n, true
	return nil
}

// LoadConfigs reads per-job-type configurations from YAML. Every job type is
// validated like NewConfig: each priority class needs a policy and a capacity,
// either of its own or from defaults.
func LoadConfigs(r io.Reader) (map[string]*Config, error) {
	var file configFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, errors.Join(ErrInvalidConfigFile, err)
	}
	if len(file.JobTypes) == 0 {
		return nil, fmt.Errorf("%w: no job types defined", ErrInvalidConfigFile)
	}

	configs := make(map[string]*Config, len(file.JobTypes))
	for name, jt := range file.JobTypes {
		cfg, err := buildJobTypeConfig(file.Defaults, jt)
		if err != nil {
			return nil, fmt.Errorf("job type %q: %w", name, err)
		}
		configs[name] = cfg
	}
	return configs, nil
}

func buildJobTypeConfig(defaults, jt jobTypeFile) (*Config, error) {
	base, err := defaults.byPriority()
	if err != nil {
		return nil, fmt.Errorf("defaults: %w", err)
	}
	overrides, err := jt.byPriority()
	if err != nil {
		return nil, err
	}
	maps.Copy(base, overrides)

	var opts []ConfigOption
	for _, p := range Priorities() {
		pf, ok := base[p]
		if !ok {
			// NewConfig reports the missing class
			continue
		}

		policy, err := pf.retryPolicy()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		opts = append(opts, WithRetryPolicy(p, policy))

		switch {
		case !pf.Capacity.set:
			// left out on purpose; NewConfig reports the gap
		case pf.Capacity.unbounded:
			opts = append(opts, WithUnboundedCapacity(p))
		default:
			opts = append(opts, WithCapacity(p, pf.Capacity.n))
		}
	}

	return NewConfig(opts...)
}

// byPriority keys the block by parsed class, so "high" and "High" are the
// same entry. Listing a class twice is an error.
func (jt jobTypeFile) byPriority() (map[Priority]priorityFile, error) {
	out := make(map[Priority]priorityFile, len(jt.Priorities))
	for name, pf := range jt.Priorities {
		p, err := ParsePriority(name)
		if err != nil {
			return nil, err
		}
		if _, dup := out[p]; dup {
			return nil, fmt.Errorf("%w: priority %s listed more than once", ErrInvalidConfigFile, p)
		}
		out[p] = pf
	}
	return out, nil
}

func (pf priorityFile) retryPolicy() (RetryPolicy, error) {
	hasFields := pf.MaxAttempts != 0 || pf.InitialDelay.set || pf.MaxDelay.set || pf.Multiplier != 0
	if pf.Preset != "" && hasFields {
		return RetryPolicy{}, fmt.Errorf("%w: preset %q cannot be combined with explicit policy fields", ErrInvalidConfigFile, pf.Preset)
	}

	switch strings.ToLower(pf.Preset) {
	case "aggressive":
		return AggressiveRetryPolicy(), nil
	case "default":
		return DefaultRetryPolicy(), nil
	case "none", "no_retry":
		return NoRetryPolicy(), nil
	case "":
	default:
		return RetryPolicy{}, fmt.Errorf("%w: unknown preset %q", ErrInvalidRetryPolicy, pf.Preset)
	}

	if !hasFields {
		return RetryPolicy{}, fmt.Errorf("%w: neither preset nor policy fields given", ErrIncompleteConfig)
	}

	multiplier := pf.Multiplier
	if multiplier == 0 {
		multiplier = 1
	}
	maxDelay := pf.MaxDelay.Duration
	if !pf.MaxDelay.set {
		maxDelay = pf.InitialDelay.Duration
	}
	return NewRetryPolicy(pf.MaxAttempts, pf.InitialDelay.Duration, maxDelay, multiplier)
}
