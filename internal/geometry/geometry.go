// Package geometry provides arc-length helpers for planar polylines.
package geometry

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// PathLength returns the sum of the Euclidean distances between consecutive
// points. Empty and single-point paths have zero length.
func PathLength(points orb.LineString) float64 {
	if len(points) < 2 {
		return 0
	}
	return planar.Length(points)
}

// Interpolate returns the point at arc-length dist along points.
// Distances before the start clamp to the first point and distances past the
// end clamp to the last point. Zero-length steps resolve to their endpoint.
func Interpolate(points orb.LineString, dist float64) orb.Point {
	if len(points) == 0 {
		return orb.Point{}
	}
	if dist <= 0 {
		return points[0]
	}

	left := dist
	for i := 0; i < len(points)-1; i++ {
		a, b := points[i], points[i+1]
		step := planar.Distance(a, b)
		if left <= step {
			if step == 0 {
				return b
			}
			return lerp(a, b, left/step)
		}
		left -= step
	}
	return points[len(points)-1]
}

// Concat joins polylines end to end, dropping a leading point that repeats
// the previous polyline's last point.
func Concat(paths ...orb.LineString) orb.LineString {
	var out orb.LineString
	for _, p := range paths {
		for i, pt := range p {
			if i == 0 && len(out) > 0 && out[len(out)-1].Equal(pt) {
				continue
			}
			out = append(out, pt)
		}
	}
	return out
}

func lerp(a, b orb.Point, t float64) orb.Point {
	return orb.Point{
		a[0] + (b[0]-a[0])*t,
		a[1] + (b[1]-a[1])*t,
	}
}
