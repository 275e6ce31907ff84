package graphics_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retrobas/rbasic/internal/graphics"
)

// newHeadless returns a Host that never touches SDL, matching the
// batch/test usage path (Interactive=false).
func newHeadless(t *testing.T) *graphics.Host {
	t.Helper()
	h := graphics.New(false)
	h.EnsureScreen(32, 32)
	return h
}

func TestPSetPlotsCurrentColor(t *testing.T) {
	h := newHeadless(t)
	h.ColorRGB(255, 0, 0)
	h.PSet(10, 10)
	assert.True(t, h.PointNonBlack(10, 10))
	assert.False(t, h.PointNonBlack(0, 0))
}

func TestLineDrawsBetweenEndpointsAndUpdatesPen(t *testing.T) {
	h := newHeadless(t)
	h.ColorRGB(0, 255, 0)
	h.Line(0, 0, 5, 0)
	for x := 0; x <= 5; x++ {
		assert.True(t, h.PointNonBlack(x, 0), "x=%d should be lit", x)
	}
	px, py := h.PenPosition()
	assert.Equal(t, 5, px)
	assert.Equal(t, 0, py)
}

func TestLineToUsesCurrentPen(t *testing.T) {
	h := newHeadless(t)
	h.ColorRGB(0, 0, 255)
	h.SetPen(2, 2)
	h.LineTo(2, 8)
	for y := 2; y <= 8; y++ {
		assert.True(t, h.PointNonBlack(2, y))
	}
}

func TestBoxOutlineVsFill(t *testing.T) {
	h := newHeadless(t)
	h.ColorRGB(255, 255, 255)
	h.Box(5, 5, 10, 10, false)
	assert.True(t, h.PointNonBlack(5, 5))
	assert.False(t, h.PointNonBlack(7, 7), "interior of an unfilled box must stay clear")

	h2 := newHeadless(t)
	h2.ColorRGB(255, 255, 255)
	h2.Box(5, 5, 10, 10, true)
	assert.True(t, h2.PointNonBlack(7, 7), "interior of a filled box must be painted")
}

func TestPaintFloodFillsBoundedRegion(t *testing.T) {
	h := newHeadless(t)
	h.ColorRGB(255, 255, 255)
	h.Box(2, 2, 10, 10, false)
	h.Paint(5, 5)
	assert.True(t, h.PointNonBlack(5, 5))
	assert.True(t, h.PointNonBlack(9, 9))
	assert.False(t, h.PointNonBlack(15, 15), "fill must not leak past the box border")
}

func TestCircleSymmetry(t *testing.T) {
	h := newHeadless(t)
	h.ColorRGB(255, 255, 255)
	h.Circle(16, 16, 8)
	assert.True(t, h.PointNonBlack(24, 16))
	assert.True(t, h.PointNonBlack(8, 16))
	assert.True(t, h.PointNonBlack(16, 24))
	assert.True(t, h.PointNonBlack(16, 8))
}

func TestSaveWritesPNGFile(t *testing.T) {
	h := newHeadless(t)
	h.ColorRGB(10, 20, 30)
	h.PSet(1, 1)
	path := filepath.Join(t.TempDir(), "out.png")
	require.NoError(t, h.Save(path))
}

func TestSaveWithNoScreenErrors(t *testing.T) {
	h := graphics.New(false)
	err := h.Save(filepath.Join(t.TempDir(), "out.png"))
	require.Error(t, err)
}

func TestColorPaletteClampsIndex(t *testing.T) {
	h := newHeadless(t)
	h.ColorPalette(-5)
	h.PSet(0, 0)
	assert.False(t, h.PointNonBlack(0, 0), "palette index 0 is black")

	h.ColorPalette(999)
	h.PSet(1, 0)
	assert.True(t, h.PointNonBlack(1, 0), "out-of-range index clamps to the last (white) entry")
}
