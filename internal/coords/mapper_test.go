package coords

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewMapper_RejectsZero verifies both sizes are validated at construction.
func TestNewMapper_RejectsZero(t *testing.T) {
	_, err := NewMapper(Size{W: 0, H: 0}, Size{W: 1280, H: 720})
	require.ErrorIs(t, err, ErrInvalidDimension)
	_, err = NewMapper(Size{W: 1920, H: 1080}, Size{W: 1280, H: 0})
	require.ErrorIs(t, err, ErrInvalidDimension)
}

// TestMapper_MatchesFunctions verifies the mapper agrees with the free functions.
func TestMapper_MatchesFunctions(t *testing.T) {
	screen := Size{W: 2560, H: 1440}
	surface := Size{W: 1280, H: 720}
	m, err := NewMapper(screen, surface)
	require.NoError(t, err)

	p := Point{X: 1000, Y: 333}
	want, err := ToSurfaceSpace(p, screen, surface)
	require.NoError(t, err)
	assert.Equal(t, want, m.ToSurface(p))

	back := m.ToScreen(m.ToSurface(p))
	assert.InDelta(t, p.X, back.X, 1e-9)
	assert.InDelta(t, p.Y, back.Y, 1e-9)
}

// TestMapper_NormToSurface verifies normalized coords map onto the surface size.
func TestMapper_NormToSurface(t *testing.T) {
	m, err := NewMapper(Size{W: 1920, H: 1080}, Size{W: 1280, H: 720})
	require.NoError(t, err)
	p := m.NormToSurface(0.5, 1)
	assert.Equal(t, Point{X: 640, Y: 720}, p)
}
