package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrossName(t *testing.T) {
	assert.Equal(t, "a_x_b", CrossName("a", "b"))
}

func TestCrossNames(t *testing.T) {
	names := CrossNames([]Cross{
		{Left: []string{"a"}, Right: []string{"x", "y"}},
		{Left: []string{"b"}, Right: []string{"x"}},
	})
	assert.Equal(t, []string{"a_x_x", "a_x_y", "b_x_x"}, names)
}

func TestCrossingExpandsProducts(t *testing.T) {
	cb := NewCrossing(Float64sFactory.New(),
		[]string{"a", "b", "c"},
		[]Cross{{Left: []string{"a"}, Right: []string{"b", "c"}}})
	cb.Init(3)
	cb.Add(2)
	cb.Add(3)
	cb.Add(5)
	v, err := cb.Result()
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3, 5, 6, 10}, v)
	assert.Nil(t, cb.Rejections())
}

func TestCrossingRejectsMissingConstituent(t *testing.T) {
	cb := NewCrossing(Float64sFactory.New(),
		[]string{"a", "b"},
		[]Cross{{Left: []string{"a"}, Right: []string{"b"}}})
	cb.Init(2)
	cb.Add(2)
	cb.Skip()
	v, err := cb.Result()
	require.NoError(t, err)
	// The crossed slot is zero-filled, never dropped, so the total slot
	// count stays fixed.
	assert.Equal(t, []float64{2, 0, 0}, v)
	require.Contains(t, cb.Rejections(), "a_x_b")
}

func TestCrossingRejectsUnknownName(t *testing.T) {
	cb := NewCrossing(Float64sFactory.New(),
		[]string{"a"},
		[]Cross{{Left: []string{"a"}, Right: []string{"ghost"}}})
	cb.Init(1)
	cb.Add(1)
	v, err := cb.Result()
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0}, v)
	assert.Contains(t, cb.Rejections(), "a_x_ghost")
}

func TestCrossingNoCrossesPassesThrough(t *testing.T) {
	cb := NewCrossing(Float64sFactory.New(), []string{"a", "b"}, nil)
	cb.Init(2)
	cb.Add(1)
	cb.Add(2)
	v, err := cb.Result()
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, v)
}

func TestCrossingBaseDimensionMismatch(t *testing.T) {
	cb := NewCrossing(Float64sFactory.New(), []string{"a", "b"}, nil)
	cb.Init(2)
	cb.Add(1)
	_, err := cb.Result()
	assert.ErrorIs(t, err, ErrDimension)
}

func TestCrossingInitMustMatchBaseNames(t *testing.T) {
	cb := NewCrossing(Float64sFactory.New(), []string{"a", "b"}, nil)
	cb.Init(3)
	_, err := cb.Result()
	assert.ErrorIs(t, err, ErrDimension)
}
