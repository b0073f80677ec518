package latency

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPredictedMs(t *testing.T) {
	tests := []struct {
		name   string
		length float64
		speed  float64
		d1, d2 float64
		want   float64
	}{
		{"travel only", 300, 300, 0, 0, 1000},
		{"with delays", 600, 300, 0.003, 0.002, 2005},
		{"demo defaults", 887.0608, 300, 0.003, 0.003, (887.0608/300 + 0.006) * 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, PredictedMs(tt.length, tt.speed, tt.d1, tt.d2), 1e-6)
		})
	}
}

func TestPredictedMs_ZeroSpeedIsGuarded(t *testing.T) {
	for _, speed := range []float64{0, -10} {
		got := PredictedMs(1, speed, 0, 0)
		assert.False(t, math.IsInf(got, 0) || math.IsNaN(got), "speed %v", speed)
		assert.InDelta(t, 1/MinSpeed*1000, got, 1)
	}
}

func TestMeasuredMs(t *testing.T) {
	assert.InDelta(t, 1500.0, MeasuredMs(1500*time.Millisecond), 1e-9)
	assert.InDelta(t, 0.25, MeasuredMs(250*time.Microsecond), 1e-9)
}

func TestMetresPerSecond(t *testing.T) {
	assert.InDelta(t, 0.1, MetresPerSecond(300, DefaultUnitsPerMetre), 1e-12)
	assert.InDelta(t, 0.1, MetresPerSecond(300, 0), 1e-12)
	assert.InDelta(t, 3.0, MetresPerSecond(300, 100), 1e-12)
}
