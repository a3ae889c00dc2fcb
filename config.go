package xpbd

import (
	"os"

	"github.com/akmonengine/xpbd/constraint"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	ScheduleUniform     = "uniform"
	ScheduleExponential = "exponential"
)

// Config holds the solver tunables. It is passed to New and never read from
// global state.
type Config struct {
	// Gravity acceleration (m/s², or N/kg)
	Gravity [3]float64 `yaml:"gravity"`
	// Substeps per Update call
	Substeps int `yaml:"substeps"`
	// Gauss-Seidel sweeps per substep
	Iterations int `yaml:"iterations"`
	// Schedule is "uniform" or "exponential"
	Schedule string `yaml:"schedule"`

	ContactCompliance float64 `yaml:"contact_compliance"`
	LinearDamping     float64 `yaml:"linear_damping"`
	AngularDamping    float64 `yaml:"angular_damping"`

	// RestitutionThreshold, multiplied by |gravity|·dt, is the approach speed under
	// which contacts stop bouncing
	RestitutionThreshold float64 `yaml:"restitution_threshold"`
}

func DefaultConfig() Config {
	return Config{
		Gravity:              [3]float64{0, -9.81, 0},
		Substeps:             20,
		Iterations:           1,
		Schedule:             ScheduleUniform,
		ContactCompliance:    constraint.DefaultCompliance,
		RestitutionThreshold: 2,
	}
}

// LoadConfig reads a YAML file; absent keys keep their DefaultConfig value.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "read config %s", path)
	}

	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, errors.Wrapf(err, "load config %s", path)
	}
	return cfg, nil
}

func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "parse config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Substeps < 1 {
		return errors.Errorf("substeps must be at least 1, got %d", c.Substeps)
	}
	if c.Iterations < 1 {
		return errors.Errorf("iterations must be at least 1, got %d", c.Iterations)
	}
	if c.Schedule != ScheduleUniform && c.Schedule != ScheduleExponential {
		return errors.Errorf("unknown schedule %q", c.Schedule)
	}
	if c.ContactCompliance < 0 {
		return errors.Errorf("contact_compliance must not be negative, got %g", c.ContactCompliance)
	}
	if c.LinearDamping < 0 || c.AngularDamping < 0 {
		return errors.New("damping must not be negative")
	}
	if c.RestitutionThreshold < 0 {
		return errors.Errorf("restitution_threshold must not be negative, got %g", c.RestitutionThreshold)
	}
	return nil
}

func (c Config) GravityVector() mgl64.Vec3 {
	return mgl64.Vec3(c.Gravity)
}

// Scheduler returns the TimestepScheduler selected by Schedule.
func (c Config) Scheduler() TimestepScheduler {
	if c.Schedule == ScheduleExponential {
		return ExponentialSchedule{}
	}
	return UniformSchedule{}
}
