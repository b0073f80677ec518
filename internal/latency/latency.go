// Package latency predicts and measures end-to-end reflex time.
package latency

import (
	"math"
	"time"
)

// MinSpeed substitutes for non-positive speeds so the prediction never divides by zero.
const MinSpeed = 1e-9

// DefaultUnitsPerMetre scales layout distance units to metres (3000 units ~ 1 m).
const DefaultUnitsPerMetre = 3000.0

// PredictedMs returns (totalLength/speed + delay1 + delay2) in milliseconds.
func PredictedMs(totalLength, speed, delay1, delay2 float64) float64 {
	travel := totalLength / math.Max(MinSpeed, speed)
	return (travel + delay1 + delay2) * 1000
}

// MeasuredMs converts an elapsed run duration to milliseconds.
func MeasuredMs(elapsed time.Duration) float64 {
	return float64(elapsed) / float64(time.Millisecond)
}

// MetresPerSecond converts a speed in distance units per second to m/s.
func MetresPerSecond(speed, unitsPerMetre float64) float64 {
	if unitsPerMetre <= 0 {
		unitsPerMetre = DefaultUnitsPerMetre
	}
	return speed / unitsPerMetre
}
