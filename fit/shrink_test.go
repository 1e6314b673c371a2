package fit

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/overset/contract"
	"github.com/ByLCY/overset/geometry"
)

// frameHost is a single frame whose text needs a fixed height.
type frameHost struct {
	need    float64
	width   float64
	height  float64
	heights []float64
	failAt  int
}

func (h *frameHost) PageMargins() geometry.Margins {
	return geometry.Margins{Left: 10, Right: 10, Top: 10, Bottom: 10}
}
func (h *frameHost) PageSize() geometry.Size { return geometry.Size{Width: 120, Height: 70} }
func (h *frameHost) Unit() geometry.Unit     { return geometry.UnitMillimeters }

func (h *frameHost) TextOverflows(frame string) (bool, error) {
	return h.height < h.need, nil
}

func (h *frameHost) SizeObject(width, height float64, frame string) error {
	if h.failAt > 0 && len(h.heights)+1 == h.failAt {
		return contract.ErrNotFound
	}
	h.width, h.height = width, height
	h.heights = append(h.heights, height)
	return nil
}

func TestConvergesToFirstOddStepPastNeed(t *testing.T) {
	h := &frameHost{need: 40}
	res, err := Shrink(h, "Box", DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, StatusFitted, res.Status)
	assert.Equal(t, 41.0, res.Height)
	assert.Equal(t, 50.0, res.MaxHeight)
	assert.Equal(t, 100.0, res.Width)
	assert.Equal(t, 100.0, h.width)
	assert.Equal(t, 20, res.Steps)
}

func TestBoundedFailureStopsAtMaxHeight(t *testing.T) {
	h := &frameHost{need: 1000}
	res, err := Shrink(h, "Box", DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, StatusMaxHeightReached, res.Status)
	assert.Equal(t, res.MaxHeight, res.Height)
	assert.Equal(t, 50.0, h.height)
}

func TestProbeTallerThanPageIsClamped(t *testing.T) {
	h := &frameHost{need: 1000}
	res, err := Shrink(h, "Box", Options{Probe: 60, Step: 2})
	require.NoError(t, err)

	assert.Equal(t, StatusMaxHeightReached, res.Status)
	assert.Equal(t, 50.0, res.Height)
	assert.Equal(t, res.MaxHeight, res.Height)
	assert.Equal(t, []float64{50}, h.heights)
	assert.Zero(t, res.Steps)
}

func TestHeightsAreNonDecreasing(t *testing.T) {
	h := &frameHost{need: 49.5}
	res, err := Shrink(h, "Box", DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, StatusFitted, res.Status)
	assert.Equal(t, 50.0, res.Height, "last step is clamped to the max height")

	for i := 1; i < len(h.heights); i++ {
		assert.GreaterOrEqual(t, h.heights[i], h.heights[i-1])
	}
	assert.Equal(t, 1.0, h.heights[0])
}

func TestAlreadyFittingProbe(t *testing.T) {
	h := &frameHost{need: 0.5}
	res, err := Shrink(h, "Box", DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Height)
	assert.Zero(t, res.Steps)
}

func TestInvalidOptions(t *testing.T) {
	_, err := Shrink(&frameHost{}, "Box", Options{Probe: 1, Step: 0})
	assert.ErrorIs(t, err, ErrInvalidOptions)
	_, err = Shrink(&frameHost{}, "Box", Options{Probe: -1, Step: 2})
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestMaxStepsGuard(t *testing.T) {
	h := &frameHost{need: 40}
	res, err := Shrink(h, "Box", Options{Probe: 1, Step: 2, MaxSteps: 3})
	require.Error(t, err)
	assert.True(t, errors.Is(err, contract.ErrIterationBudget))
	assert.Equal(t, 7.0, res.Height)
}

func TestResizeErrorPropagates(t *testing.T) {
	h := &frameHost{need: 40, failAt: 3}
	_, err := Shrink(h, "Box", DefaultOptions())
	assert.ErrorIs(t, err, contract.ErrNotFound)
}
