package impulse

import (
	"github.com/paulmach/orb"

	"github.com/cxd309/reflex-engine/internal/arc"
	"github.com/cxd309/reflex-engine/internal/geometry"
)

// Segment is one leg of the journey: its polyline, the synapse delay held on
// arrival and the station it ends at. Length is fixed when the segment is built.
type Segment struct {
	points       orb.LineString
	length       float64
	synapseDelay float64
	destination  string
}

// NewSegment builds a Segment, precomputing its length. Negative delays are
// treated as zero.
func NewSegment(points orb.LineString, synapseDelay float64, destination string) Segment {
	pts := make(orb.LineString, len(points))
	copy(pts, points)
	if !(synapseDelay > 0) {
		synapseDelay = 0
	}
	return Segment{
		points:       pts,
		length:       geometry.PathLength(pts),
		synapseDelay: synapseDelay,
		destination:  destination,
	}
}

// Length is the polyline length of the leg.
func (s Segment) Length() float64 { return s.length }

// SynapseDelay is the hold, in seconds, applied on reaching the destination.
func (s Segment) SynapseDelay() float64 { return s.synapseDelay }

// Destination names the station at the end of the leg.
func (s Segment) Destination() string { return s.destination }

// Points returns a copy of the segment's polyline.
func (s Segment) Points() orb.LineString {
	pts := make(orb.LineString, len(s.points))
	copy(pts, s.points)
	return pts
}

// PointAt returns the position dist units into the segment.
func (s Segment) PointAt(dist float64) orb.Point {
	return geometry.Interpolate(s.points, dist)
}

// buildSegments derives one Segment per leg, resolving each leg's delay slot
// against the configured synapse delays.
func buildSegments(layout arc.Layout, delay1, delay2 float64) []Segment {
	segs := make([]Segment, len(layout.Legs))
	for i, leg := range layout.Legs {
		var d float64
		switch leg.Delay {
		case arc.Synapse1:
			d = delay1
		case arc.Synapse2:
			d = delay2
		}
		segs[i] = NewSegment(leg.Points, d, leg.Destination)
	}
	return segs
}
