package geometry

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func TestPathLength(t *testing.T) {
	tests := []struct {
		name   string
		points orb.LineString
		want   float64
	}{
		{"empty", nil, 0},
		{"single point", orb.LineString{{1, 1}}, 0},
		{"straight", orb.LineString{{0, 0}, {3, 4}}, 5},
		{"polyline", orb.LineString{{0, 0}, {3, 4}, {3, 10}}, 11},
		{"coincident points", orb.LineString{{2, 2}, {2, 2}, {2, 5}}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, PathLength(tt.points), 1e-9)
		})
	}
}

func TestInterpolate(t *testing.T) {
	path := orb.LineString{{0, 0}, {10, 0}, {10, 10}}

	tests := []struct {
		name string
		dist float64
		want orb.Point
	}{
		{"start", 0, orb.Point{0, 0}},
		{"negative clamps to start", -5, orb.Point{0, 0}},
		{"midway first step", 5, orb.Point{5, 0}},
		{"corner", 10, orb.Point{10, 0}},
		{"midway second step", 15, orb.Point{10, 5}},
		{"end", 20, orb.Point{10, 10}},
		{"beyond end clamps", 25, orb.Point{10, 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Interpolate(path, tt.dist)
			assert.InDelta(t, tt.want[0], got[0], 1e-9)
			assert.InDelta(t, tt.want[1], got[1], 1e-9)
		})
	}
}

func TestInterpolate_Boundaries(t *testing.T) {
	path := orb.LineString{{110, 500}, {200, 445}, {300, 390}}

	assert.Equal(t, path[0], Interpolate(path, 0))

	end := Interpolate(path, PathLength(path))
	assert.InDelta(t, path[2][0], end[0], 1e-9)
	assert.InDelta(t, path[2][1], end[1], 1e-9)

	assert.Equal(t, path[2], Interpolate(path, PathLength(path)+1))
}

func TestInterpolate_ZeroLengthStep(t *testing.T) {
	path := orb.LineString{{4, 4}, {4, 4}, {8, 4}}

	got := Interpolate(path, 0.5)
	assert.False(t, math.IsNaN(got[0]) || math.IsNaN(got[1]))
	assert.InDelta(t, 4.5, got[0], 1e-9)

	degenerate := orb.LineString{{1, 1}, {1, 1}}
	assert.Equal(t, orb.Point{1, 1}, Interpolate(degenerate, 3))
}

func TestInterpolate_Empty(t *testing.T) {
	assert.Equal(t, orb.Point{}, Interpolate(nil, 1))
}

func TestConcat(t *testing.T) {
	a := orb.LineString{{0, 0}, {1, 0}}
	b := orb.LineString{{1, 0}, {1, 1}}

	got := Concat(a, b)
	assert.Equal(t, orb.LineString{{0, 0}, {1, 0}, {1, 1}}, got)
	assert.InDelta(t, PathLength(a)+PathLength(b), PathLength(got), 1e-9)
}
