package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirofumi/featran/builder"
	"github.com/hirofumi/featran/settings"
)

func testSet(t *testing.T) *Set {
	t.Helper()
	set, err := NewSet(
		MinMax("temp", Value("temp")),
		OneHot("device", Value("device")),
	)
	require.NoError(t, err)
	return set
}

func aggregateOver(t *testing.T, set *Set, records []map[string]any) []any {
	t.Helper()
	var partial []any
	for i, r := range records {
		raw, err := set.RawArray(r)
		require.NoError(t, err)
		p, err := set.Prepare(raw)
		require.NoError(t, err)
		if i == 0 {
			partial = p
			continue
		}
		partial, err = set.Sum(partial, p)
		require.NoError(t, err)
	}
	agg, err := set.Present(partial)
	require.NoError(t, err)
	return agg
}

var testRecords = []map[string]any{
	{"temp": 10.0, "device": "b"},
	{"temp": 20.0, "device": "a"},
	{"temp": 30.0, "device": "b"},
}

func TestNewSetValidation(t *testing.T) {
	_, err := NewSet()
	assert.Error(t, err)

	_, err = NewSet(MinMax("", Value("x")))
	assert.Error(t, err)

	_, err = NewSet(MinMax("x", Value("x")), Identity("x", Value("x")))
	assert.Error(t, err)
}

func TestWithCrossValidation(t *testing.T) {
	set := testSet(t)

	_, err := set.WithCross("temp", "ghost")
	assert.Error(t, err)

	_, err = set.WithCross("temp", "temp")
	assert.Error(t, err)

	crossed, err := set.WithCross("temp", "device")
	require.NoError(t, err)
	// The receiver is unchanged.
	assert.Empty(t, set.crosses)
	assert.Len(t, crossed.crosses, 1)
}

func TestRawArraySlotOrder(t *testing.T) {
	set := testSet(t)
	raw, err := set.RawArray(map[string]any{"temp": 21.5, "device": "a"})
	require.NoError(t, err)
	require.Len(t, raw, 2)
	assert.Equal(t, 21.5, raw[0])
	assert.Equal(t, "a", raw[1])
}

func TestRawArrayAbsentField(t *testing.T) {
	set := testSet(t)
	raw, err := set.RawArray(map[string]any{"device": "a"})
	require.NoError(t, err)
	assert.Nil(t, raw[0])
}

func TestAggregationProtocol(t *testing.T) {
	set := testSet(t)
	agg := aggregateOver(t, set, testRecords)

	mm := agg[0].(minMaxAggregate)
	assert.Equal(t, int64(3), mm.Count)
	assert.Equal(t, 10.0, mm.Min)
	assert.Equal(t, 30.0, mm.Max)

	oh := agg[1].(oneHotAggregate)
	assert.Equal(t, []string{"a", "b"}, oh.Vocabulary)
}

func TestFeatureNamesOrder(t *testing.T) {
	set := testSet(t)
	crossed, err := set.WithCross("temp", "device")
	require.NoError(t, err)
	agg := aggregateOver(t, crossed, testRecords)

	assert.Equal(t,
		[]string{"temp", "device_a", "device_b", "temp_x_device_a", "temp_x_device_b"},
		crossed.FeatureNames(agg))
	assert.Equal(t, []string{"temp", "device_a", "device_b"}, crossed.BaseNames(agg))
}

func TestFeatureValues(t *testing.T) {
	set := testSet(t)
	agg := aggregateOver(t, set, testRecords)

	raw, err := set.RawArray(map[string]any{"temp": 20.0, "device": "a"})
	require.NoError(t, err)
	b := builder.Float64sFactory.New()
	require.NoError(t, set.FeatureValues(raw, agg, b))
	v, err := b.Result()
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 1, 0}, v)
}

func TestFeatureValuesUnseenLabel(t *testing.T) {
	set := testSet(t)
	agg := aggregateOver(t, set, testRecords)

	raw, err := set.RawArray(map[string]any{"temp": 10.0, "device": "zzz"})
	require.NoError(t, err)
	b := builder.Float64sFactory.New()
	require.NoError(t, set.FeatureValues(raw, agg, b))
	v, err := b.Result()
	require.NoError(t, err)
	// Unseen vocabulary entries produce zero slots, not errors.
	assert.Equal(t, []float64{0, 0, 0}, v)
}

func TestSettingsRoundTrip(t *testing.T) {
	set := testSet(t)
	agg := aggregateOver(t, set, testRecords)

	items, err := set.Settings(agg)
	require.NoError(t, err)
	text, err := settings.Encode(items)
	require.NoError(t, err)

	parsed, err := settings.Parse(text)
	require.NoError(t, err)
	decoded, err := set.DecodeAggregators(parsed)
	require.NoError(t, err)

	assert.Equal(t, agg, decoded)
	assert.Equal(t, set.FeatureNames(agg), set.FeatureNames(decoded))
}

func TestDecodeAggregatorsMismatch(t *testing.T) {
	set := testSet(t)
	agg := aggregateOver(t, set, testRecords)
	items, err := set.Settings(agg)
	require.NoError(t, err)

	_, err = set.DecodeAggregators(items[:1])
	assert.ErrorIs(t, err, ErrSettingsMismatch)

	swapped := []settings.Setting{items[1], items[0]}
	_, err = set.DecodeAggregators(swapped)
	assert.ErrorIs(t, err, ErrSettingsMismatch)
}

func TestPresentWithNoValues(t *testing.T) {
	set, err := NewSet(MinMax("x", Value("x")))
	require.NoError(t, err)
	raw, err := set.RawArray(map[string]any{})
	require.NoError(t, err)
	partial, err := set.Prepare(raw)
	require.NoError(t, err)
	_, err = set.Present(partial)
	assert.ErrorIs(t, err, ErrNoValues)
}

func TestRegistry(t *testing.T) {
	tr, err := New(KindMinMax, "x", Value("x"))
	require.NoError(t, err)
	assert.Equal(t, KindMinMax, tr.Kind())
	assert.Equal(t, "x", tr.Name())

	_, err = New("ghost", "x", Value("x"))
	assert.Error(t, err)
}
