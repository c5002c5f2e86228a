package signal

import (
	"fmt"

	"github.com/dd0wney/cluso-signal/pkg/validation"
)

// Config holds every tunable of the timing computation. It is an explicit
// input to each optimization call; the core keeps no global state.
type Config struct {
	// Weights maps each recognized vehicle class to its PCU weight.
	Weights WeightTable `yaml:"weights"`

	// SaturationFlow is the sustainable lane capacity in PCU per hour.
	SaturationFlow float64 `yaml:"saturation_flow"`

	// StartupLostTime is the per-phase startup delay in seconds.
	StartupLostTime int `yaml:"startup_lost_time"`

	// YellowInterval is the fixed clearance interval per phase in seconds.
	YellowInterval int `yaml:"yellow_interval"`

	// MinCycle and MaxCycle bound the cycle length in seconds.
	MinCycle int `yaml:"min_cycle"`
	MaxCycle int `yaml:"max_cycle"`

	// MinGreen is the floor for any phase's green time in seconds.
	MinGreen int `yaml:"min_green"`

	// UnknownClassPolicy selects strict rejection or lenient zero-weight
	// handling of classes absent from the weight table.
	UnknownClassPolicy UnknownClassPolicy `yaml:"unknown_class_policy"`

	// OversaturationFallback, when true, substitutes a degraded timing at
	// MaxCycle for oversaturated input instead of returning an error. The
	// substitution is flagged on the result.
	OversaturationFallback bool `yaml:"oversaturation_fallback"`
}

// DefaultConfig returns the documented defaults: standard PCU weights,
// 1800 PCU/h saturation flow, 2s startup lost time, 3s yellow, cycle
// bounds [40s, 180s], 7s minimum green, strict unknown-class handling.
func DefaultConfig() Config {
	return Config{
		Weights:            DefaultWeights(),
		SaturationFlow:     1800,
		StartupLostTime:    2,
		YellowInterval:     3,
		MinCycle:           40,
		MaxCycle:           180,
		MinGreen:           7,
		UnknownClassPolicy: PolicyReject,
	}
}

// TotalLostTime returns L: the per-cycle seconds unavailable for vehicle
// movement across all four phases.
func (c Config) TotalLostTime() int {
	return NumPhases * (c.StartupLostTime + c.YellowInterval)
}

// Validate checks the configuration for internal consistency. Invalid
// configuration is fatal at load time and never deferred to request time.
func (c Config) Validate() error {
	cv := validation.NewConfigValidator("SignalConfig")

	cv.PositiveFloat("SaturationFlow", c.SaturationFlow).
		NonNegative("StartupLostTime", c.StartupLostTime).
		Positive("YellowInterval", c.YellowInterval).
		Positive("MinCycle", c.MinCycle).
		Positive("MaxCycle", c.MaxCycle).
		Positive("MinGreen", c.MinGreen).
		OneOf("UnknownClassPolicy", string(c.UnknownClassPolicy),
			[]string{string(PolicyReject), string(PolicyIgnore)}).
		Custom("MinCycle", func() error {
			if c.MinCycle > c.MaxCycle {
				return fmt.Errorf("minimum cycle %ds exceeds maximum %ds", c.MinCycle, c.MaxCycle)
			}
			return nil
		}).
		Custom("MinCycle", func() error {
			if c.MinCycle <= c.TotalLostTime() {
				return fmt.Errorf("minimum cycle %ds leaves no green time after %ds lost time",
					c.MinCycle, c.TotalLostTime())
			}
			return nil
		}).
		Custom("Weights", func() error {
			if len(c.Weights) == 0 {
				return fmt.Errorf("weight table is empty")
			}
			for class, w := range c.Weights {
				if w < 0 {
					return fmt.Errorf("negative weight %f for class %q", w, class)
				}
			}
			return nil
		})

	return cv.Validate()
}
