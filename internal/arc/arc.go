// Package arc describes the reflex-arc layout the impulse travels through:
// the named stations and the legs connecting them.
package arc

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"

	"github.com/cxd309/reflex-engine/internal/geometry"
)

// Station names along the arc, in travel order.
const (
	Receptor      = "Receptor"
	SensoryNeuron = "Sensory neuron"
	SpinalCord    = "Spinal cord"
	MotorNeuron   = "Motor neuron"
	Muscle        = "Muscle"
)

// Screen size the default layout was drawn for, in distance units.
const (
	Width  = 1500
	Height = 1000
)

// DelaySlot selects which configured synapse delay is held at the end of a leg.
type DelaySlot int

const (
	NoSynapse DelaySlot = iota
	Synapse1            // sensory neuron -> spinal cord
	Synapse2            // spinal cord -> motor neuron
)

// Station is a named waypoint on the arc.
type Station struct {
	Name string    `json:"name"`
	Loc  orb.Point `json:"loc"`
}

// Leg is one stretch of the arc ending at a station.
type Leg struct {
	Points      orb.LineString `json:"points"`
	Destination string         `json:"destination"`
	Delay       DelaySlot      `json:"delay"`
}

// Layout is the ordered set of stations and legs.
type Layout struct {
	Stations []Station
	Legs     []Leg
}

// Default returns the five-station arc used by the demo, with each leg bent
// through a midpoint so the path zig-zags rather than running straight.
func Default() Layout {
	mid := float64(Height / 2)
	receptor := orb.Point{110, mid}
	sensory := orb.Point{300, mid - 110}
	spinal := orb.Point{500, mid}
	motor := orb.Point{700, mid + 110}
	muscle := orb.Point{880, mid}

	return Layout{
		Stations: []Station{
			{Name: Receptor, Loc: receptor},
			{Name: SensoryNeuron, Loc: sensory},
			{Name: SpinalCord, Loc: spinal},
			{Name: MotorNeuron, Loc: motor},
			{Name: Muscle, Loc: muscle},
		},
		Legs: []Leg{
			{Points: orb.LineString{receptor, {200, mid - 55}, sensory}, Destination: SensoryNeuron, Delay: NoSynapse},
			{Points: orb.LineString{sensory, {400, mid - 55}, spinal}, Destination: SpinalCord, Delay: Synapse1},
			{Points: orb.LineString{spinal, {600, mid + 55}, motor}, Destination: MotorNeuron, Delay: Synapse2},
			{Points: orb.LineString{motor, {790, mid + 55}, muscle}, Destination: Muscle, Delay: NoSynapse},
		},
	}
}

// Validate checks that the layout has at least one leg and every leg is a
// real polyline.
func (l Layout) Validate() error {
	if len(l.Legs) == 0 {
		return fmt.Errorf("layout has no legs")
	}
	for i, leg := range l.Legs {
		if len(leg.Points) < 2 {
			return fmt.Errorf("leg %d (%q): need at least 2 points, got %d", i, leg.Destination, len(leg.Points))
		}
		if leg.Destination == "" {
			return fmt.Errorf("leg %d: missing destination", i)
		}
	}
	return nil
}

// Origin returns the name of the station the first leg leaves from.
func (l Layout) Origin() string {
	if len(l.Stations) == 0 {
		return Receptor
	}
	return l.Stations[0].Name
}

// TotalLength is the summed length of every leg.
func (l Layout) TotalLength() float64 {
	total := 0.0
	for _, leg := range l.Legs {
		total += geometry.PathLength(leg.Points)
	}
	return total
}

// Polyline returns all legs joined into a single path.
func (l Layout) Polyline() orb.LineString {
	paths := make([]orb.LineString, len(l.Legs))
	for i, leg := range l.Legs {
		paths[i] = leg.Points
	}
	return geometry.Concat(paths...)
}

// Station looks up a station by name.
func (l Layout) Station(name string) (Station, error) {
	for _, s := range l.Stations {
		if s.Name == name {
			return s, nil
		}
	}
	return Station{}, fmt.Errorf("station %q not found", name)
}

// StationAt returns the first station whose location lies within radius of
// (x, y).
func (l Layout) StationAt(x, y, radius float64) (Station, bool) {
	for _, s := range l.Stations {
		if math.Hypot(x-s.Loc[0], y-s.Loc[1]) <= radius {
			return s, true
		}
	}
	return Station{}, false
}
