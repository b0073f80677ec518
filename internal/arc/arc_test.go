package arc

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cxd309/reflex-engine/internal/geometry"
)

func TestDefault_Shape(t *testing.T) {
	l := Default()
	require.NoError(t, l.Validate())

	assert.Len(t, l.Stations, 5)
	require.Len(t, l.Legs, 4)
	assert.Equal(t, Receptor, l.Origin())

	wantDest := []string{SensoryNeuron, SpinalCord, MotorNeuron, Muscle}
	wantSlot := []DelaySlot{NoSynapse, Synapse1, Synapse2, NoSynapse}
	for i, leg := range l.Legs {
		assert.Equal(t, wantDest[i], leg.Destination)
		assert.Equal(t, wantSlot[i], leg.Delay)
	}
}

func TestDefault_LegsAreContiguous(t *testing.T) {
	l := Default()
	for i := 1; i < len(l.Legs); i++ {
		prev := l.Legs[i-1].Points
		assert.Equal(t, prev[len(prev)-1], l.Legs[i].Points[0], "leg %d", i)
	}
}

func TestTotalLength_MatchesPolyline(t *testing.T) {
	l := Default()
	assert.InDelta(t, geometry.PathLength(l.Polyline()), l.TotalLength(), 1e-9)
	assert.InDelta(t, 887.06, l.TotalLength(), 0.01)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		layout  Layout
		wantErr bool
	}{
		{"default", Default(), false},
		{"no legs", Layout{}, true},
		{"short leg", Layout{Legs: []Leg{{Points: orb.LineString{{0, 0}}, Destination: Muscle}}}, true},
		{"missing destination", Layout{Legs: []Leg{{Points: orb.LineString{{0, 0}, {1, 1}}}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.layout.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStationLookup(t *testing.T) {
	l := Default()

	s, err := l.Station(SpinalCord)
	require.NoError(t, err)
	assert.Equal(t, orb.Point{500, 500}, s.Loc)

	_, err = l.Station("Brain")
	assert.Error(t, err)

	hit, ok := l.StationAt(505, 495, 40)
	require.True(t, ok)
	assert.Equal(t, SpinalCord, hit.Name)

	_, ok = l.StationAt(0, 0, 40)
	assert.False(t, ok)
}
