package collection

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalMapPreservesOrder(t *testing.T) {
	items := make([]any, 100)
	for i := range items {
		items[i] = i
	}
	out, err := NewLocal(items, WithParallelism(8)).
		Map(func(v any) (any, error) { return v.(int) * 2, nil }).
		Seq()
	require.NoError(t, err)
	require.Len(t, out, 100)
	for i, v := range out {
		assert.Equal(t, i*2, v)
	}
}

func TestLocalMapSequential(t *testing.T) {
	out, err := NewLocal([]any{1, 2, 3}, WithParallelism(1)).
		Map(func(v any) (any, error) { return v.(int) + 1, nil }).
		Seq()
	require.NoError(t, err)
	assert.Equal(t, []any{2, 3, 4}, out)
}

func TestLocalMapError(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewLocal([]any{1, 2, 3}).
		Map(func(v any) (any, error) {
			if v.(int) == 2 {
				return nil, boom
			}
			return v, nil
		}).
		Seq()
	assert.ErrorIs(t, err, boom)
}

func TestLocalErrorPoisonsChain(t *testing.T) {
	boom := errors.New("boom")
	c := NewLocal([]any{1}).Map(func(any) (any, error) { return nil, boom })
	// Every derived collection keeps reporting the original error.
	_, err := c.Map(func(v any) (any, error) { return v, nil }).
		Reduce(func(a, b any) (any, error) { return a, nil }).
		Seq()
	assert.ErrorIs(t, err, boom)
}

func TestLocalReduce(t *testing.T) {
	out, err := NewLocal([]any{1.0, 2.0, 3.0, 4.0}).
		Reduce(func(a, b any) (any, error) { return a.(float64) + b.(float64), nil }).
		Seq()
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 10.0, out[0])
}

func TestLocalReduceSingleElement(t *testing.T) {
	out, err := Of(42).
		Reduce(func(a, b any) (any, error) { return nil, fmt.Errorf("must not combine") }).
		Seq()
	require.NoError(t, err)
	assert.Equal(t, []any{42}, out)
}

func TestLocalReduceEmpty(t *testing.T) {
	_, err := NewLocal(nil).
		Reduce(func(a, b any) (any, error) { return a, nil }).
		Seq()
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestLocalCrossBroadcast(t *testing.T) {
	out, err := NewLocal([]any{1, 2, 3}).Cross(Of("s")).Seq()
	require.NoError(t, err)
	require.Len(t, out, 3)
	for i, v := range out {
		p := v.(Pair)
		assert.Equal(t, i+1, p.A)
		assert.Equal(t, "s", p.B)
	}
}

func TestLocalCrossEmptyBroadcast(t *testing.T) {
	_, err := NewLocal([]any{1}).Cross(NewLocal(nil)).Seq()
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestLocalCrossProduct(t *testing.T) {
	out, err := NewLocal([]any{1, 2}).Cross(NewLocal([]any{"a", "b"})).Seq()
	require.NoError(t, err)
	require.Len(t, out, 4)
	assert.Equal(t, Pair{A: 1, B: "a"}, out[0])
	assert.Equal(t, Pair{A: 2, B: "b"}, out[3])
}
