package impulse

import (
	"encoding/json"
	"fmt"
	"math"
)

// Limits are configuration bounds for interactive adjustment. They are
// defaults of the demo, not physical constraints of the simulation.
type Limits struct {
	MinSpeed  float64 `json:"min_speed" yaml:"min_speed"`
	SpeedStep float64 `json:"speed_step" yaml:"speed_step"`
	MaxDelay  float64 `json:"max_delay" yaml:"max_delay"`
	DelayStep float64 `json:"delay_step" yaml:"delay_step"`
}

// DefaultLimits returns the demo's adjustment bounds.
func DefaultLimits() Limits {
	return Limits{
		MinSpeed:  25,
		SpeedStep: 25,
		MaxDelay:  0.05,
		DelayStep: 0.001,
	}
}

// UnmarshalJSON decodes onto DefaultLimits, so fields missing from data keep
// their defaults.
func (l *Limits) UnmarshalJSON(data []byte) error {
	type plain Limits
	p := plain(DefaultLimits())
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*l = Limits(p)
	return nil
}

// Validate checks the limits are usable.
func (l Limits) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"min_speed", l.MinSpeed},
		{"speed_step", l.SpeedStep},
		{"max_delay", l.MaxDelay},
		{"delay_step", l.DelayStep},
	} {
		if !(f.v >= 0) || math.IsInf(f.v, 1) {
			return fmt.Errorf("%s must be finite and non-negative, got %v", f.name, f.v)
		}
	}
	return nil
}

func (l Limits) clampDelay(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return math.Min(v, l.MaxDelay)
}

// NudgeSpeed changes the speed by steps × SpeedStep, never going below
// MinSpeed (or below a tiny positive floor when MinSpeed is zero). A nudge
// that overflows to an infinite speed returns ErrInvalidSpeed and leaves the
// speed unchanged.
func (imp *Impulse) NudgeSpeed(steps int) error {
	floor := math.Max(imp.limits.MinSpeed, 1e-9)
	v := imp.speed + float64(steps)*imp.limits.SpeedStep
	return imp.SetSpeed(math.Max(floor, v))
}

// NudgeDelay1 changes the first synapse delay by steps × DelayStep.
func (imp *Impulse) NudgeDelay1(steps int) {
	imp.SetDelay1(imp.delay1 + float64(steps)*imp.limits.DelayStep)
}

// NudgeDelay2 changes the second synapse delay by steps × DelayStep.
func (imp *Impulse) NudgeDelay2(steps int) {
	imp.SetDelay2(imp.delay2 + float64(steps)*imp.limits.DelayStep)
}
