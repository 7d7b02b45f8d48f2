package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloat64s(t *testing.T) {
	b := Float64sFactory.New()
	b.Init(3)
	b.Add(1.5)
	b.Skip()
	b.Add(-2.0)
	v, err := b.Result()
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, 0, -2.0}, v)
}

func TestFloat64sUnderfilled(t *testing.T) {
	b := Float64sFactory.New()
	b.Init(2)
	b.Add(1)
	_, err := b.Result()
	assert.ErrorIs(t, err, ErrDimension)
}

func TestFloat64sOverfilled(t *testing.T) {
	b := Float64sFactory.New()
	b.Init(1)
	b.Add(1)
	b.Add(2)
	_, err := b.Result()
	assert.ErrorIs(t, err, ErrDimension)
}

func TestFloat64sDoubleInit(t *testing.T) {
	b := Float64sFactory.New()
	b.Init(1)
	b.Init(1)
	b.Add(1)
	_, err := b.Result()
	assert.ErrorIs(t, err, ErrDimension)
}

func TestFloat64sSingleUse(t *testing.T) {
	b := Float64sFactory.New()
	b.Init(1)
	b.Add(1)
	_, err := b.Result()
	require.NoError(t, err)
	_, err = b.Result()
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestBulkHelpers(t *testing.T) {
	b := Float64sFactory.New()
	b.Init(5)
	AddAll(b, 1, 2, 3)
	SkipN(b, 2)
	v, err := b.Result()
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 0, 0}, v)
}

func TestMappedFactory(t *testing.T) {
	factory := Mapped(Float64sFactory, func(v any) (any, error) {
		vs := v.([]float64)
		sum := 0.0
		for _, x := range vs {
			sum += x
		}
		return sum, nil
	})
	b := factory.New()
	b.Init(3)
	AddAll(b, 1, 2, 3)
	v, err := b.Result()
	require.NoError(t, err)
	assert.Equal(t, 6.0, v)
}

func TestNamedMap(t *testing.T) {
	b := NamedMapFactory([]string{"a", "b", "c"}).New()
	b.Init(3)
	b.Add(1)
	b.Skip()
	b.Add(3)
	v, err := b.Result()
	require.NoError(t, err)
	// Skipped slots are omitted from the map.
	assert.Equal(t, map[string]float64{"a": 1, "c": 3}, v)
}

func TestNamedMapDimensionMismatch(t *testing.T) {
	b := NamedMapFactory([]string{"a", "b"}).New()
	b.Init(3)
	b.Add(1)
	b.Add(2)
	b.Add(3)
	_, err := b.Result()
	assert.ErrorIs(t, err, ErrDimension)
}
