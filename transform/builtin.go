package transform

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/spf13/cast"

	"github.com/hirofumi/featran/builder"
)

const (
	KindMinMax   = "minmax"
	KindStandard = "standard"
	KindIdentity = "identity"
	KindOneHot   = "onehot"
)

func init() {
	Register(KindMinMax, MinMax)
	Register(KindStandard, Standard)
	Register(KindIdentity, Identity)
	Register(KindOneHot, OneHot)
}

// base carries the pieces every built-in shares.
type base struct {
	kind string
	name string
	sel  Selector
}

func (b *base) Kind() string { return b.kind }
func (b *base) Name() string { return b.name }

func (b *base) Extract(record any) (any, error) {
	return b.sel.Select(record)
}

// minMaxAggregate doubles as partial and finalized aggregate.
type minMaxAggregate struct {
	Count int64   `json:"count"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

type minMax struct {
	base
}

// MinMax scales values into [0,1] against the observed minimum and
// maximum. Replayed values outside the observed range are clamped.
func MinMax(name string, sel Selector) Transformer {
	return &minMax{base{kind: KindMinMax, name: name, sel: sel}}
}

func (t *minMax) Prepare(raw any) (any, error) {
	if raw == nil {
		return minMaxAggregate{}, nil
	}
	v, err := cast.ToFloat64E(raw)
	if err != nil {
		return nil, err
	}
	return minMaxAggregate{Count: 1, Min: v, Max: v}, nil
}

func (t *minMax) Sum(a, b any) (any, error) {
	x, y := a.(minMaxAggregate), b.(minMaxAggregate)
	if x.Count == 0 {
		return y, nil
	}
	if y.Count == 0 {
		return x, nil
	}
	return minMaxAggregate{
		Count: x.Count + y.Count,
		Min:   math.Min(x.Min, y.Min),
		Max:   math.Max(x.Max, y.Max),
	}, nil
}

func (t *minMax) Present(partial any) (any, error) {
	agg := partial.(minMaxAggregate)
	if agg.Count == 0 {
		return nil, ErrNoValues
	}
	return agg, nil
}

func (t *minMax) Names(any) []string { return []string{t.name} }

func (t *minMax) Values(raw, aggregate any, b builder.Builder) error {
	if raw == nil {
		b.Skip()
		return nil
	}
	v, err := cast.ToFloat64E(raw)
	if err != nil {
		return err
	}
	agg := aggregate.(minMaxAggregate)
	var x float64
	if d := agg.Max - agg.Min; d > 0 {
		x = math.Min(1, math.Max(0, (v-agg.Min)/d))
	}
	b.Add(x)
	return nil
}

func (t *minMax) EncodeAggregate(aggregate any) (json.RawMessage, error) {
	return json.Marshal(aggregate.(minMaxAggregate))
}

func (t *minMax) DecodeAggregate(data json.RawMessage) (any, error) {
	var agg minMaxAggregate
	if err := json.Unmarshal(data, &agg); err != nil {
		return nil, err
	}
	if agg.Count <= 0 || agg.Min > agg.Max {
		return nil, fmt.Errorf("invalid min-max state: count=%d min=%v max=%v", agg.Count, agg.Min, agg.Max)
	}
	return agg, nil
}

// standardAggregate carries count, mean and the sum of squared
// deviations (M2), which merges exactly under the parallel variance
// formula and round-trips without losing the mean/stddev it implies.
type standardAggregate struct {
	Count int64   `json:"count"`
	Mean  float64 `json:"mean"`
	M2    float64 `json:"m2"`
}

func (a standardAggregate) stddev() float64 {
	if a.Count < 2 {
		return 0
	}
	return math.Sqrt(a.M2 / float64(a.Count))
}

type standard struct {
	base
}

// Standard standardizes values to zero mean and unit variance against
// the observed distribution.
func Standard(name string, sel Selector) Transformer {
	return &standard{base{kind: KindStandard, name: name, sel: sel}}
}

func (t *standard) Prepare(raw any) (any, error) {
	if raw == nil {
		return standardAggregate{}, nil
	}
	v, err := cast.ToFloat64E(raw)
	if err != nil {
		return nil, err
	}
	return standardAggregate{Count: 1, Mean: v}, nil
}

func (t *standard) Sum(a, b any) (any, error) {
	x, y := a.(standardAggregate), b.(standardAggregate)
	if x.Count == 0 {
		return y, nil
	}
	if y.Count == 0 {
		return x, nil
	}
	n := x.Count + y.Count
	delta := y.Mean - x.Mean
	return standardAggregate{
		Count: n,
		Mean:  x.Mean + delta*float64(y.Count)/float64(n),
		M2:    x.M2 + y.M2 + delta*delta*float64(x.Count)*float64(y.Count)/float64(n),
	}, nil
}

func (t *standard) Present(partial any) (any, error) {
	agg := partial.(standardAggregate)
	if agg.Count == 0 {
		return nil, ErrNoValues
	}
	return agg, nil
}

func (t *standard) Names(any) []string { return []string{t.name} }

func (t *standard) Values(raw, aggregate any, b builder.Builder) error {
	if raw == nil {
		b.Skip()
		return nil
	}
	v, err := cast.ToFloat64E(raw)
	if err != nil {
		return err
	}
	agg := aggregate.(standardAggregate)
	var x float64
	if sd := agg.stddev(); sd > 0 {
		x = (v - agg.Mean) / sd
	}
	b.Add(x)
	return nil
}

func (t *standard) EncodeAggregate(aggregate any) (json.RawMessage, error) {
	return json.Marshal(aggregate.(standardAggregate))
}

func (t *standard) DecodeAggregate(data json.RawMessage) (any, error) {
	var agg standardAggregate
	if err := json.Unmarshal(data, &agg); err != nil {
		return nil, err
	}
	if agg.Count <= 0 || agg.M2 < 0 {
		return nil, fmt.Errorf("invalid standard state: count=%d m2=%v", agg.Count, agg.M2)
	}
	return agg, nil
}

type identityAggregate struct {
	Count int64 `json:"count"`
}

type identity struct {
	base
}

// Identity passes numeric values through unchanged. Its aggregate is
// only the observation count.
func Identity(name string, sel Selector) Transformer {
	return &identity{base{kind: KindIdentity, name: name, sel: sel}}
}

func (t *identity) Prepare(raw any) (any, error) {
	if raw == nil {
		return identityAggregate{}, nil
	}
	if _, err := cast.ToFloat64E(raw); err != nil {
		return nil, err
	}
	return identityAggregate{Count: 1}, nil
}

func (t *identity) Sum(a, b any) (any, error) {
	return identityAggregate{Count: a.(identityAggregate).Count + b.(identityAggregate).Count}, nil
}

func (t *identity) Present(partial any) (any, error) {
	return partial, nil
}

func (t *identity) Names(any) []string { return []string{t.name} }

func (t *identity) Values(raw, _ any, b builder.Builder) error {
	if raw == nil {
		b.Skip()
		return nil
	}
	v, err := cast.ToFloat64E(raw)
	if err != nil {
		return err
	}
	b.Add(v)
	return nil
}

func (t *identity) EncodeAggregate(aggregate any) (json.RawMessage, error) {
	return json.Marshal(aggregate.(identityAggregate))
}

func (t *identity) DecodeAggregate(data json.RawMessage) (any, error) {
	var agg identityAggregate
	if err := json.Unmarshal(data, &agg); err != nil {
		return nil, err
	}
	return agg, nil
}

// oneHotAggregate is the finalized, sorted vocabulary.
type oneHotAggregate struct {
	Vocabulary []string `json:"vocabulary"`
}

type oneHot struct {
	base
}

// OneHot encodes a categorical value against the vocabulary observed
// during aggregation, one output slot per label. Labels unseen during
// aggregation produce an all-zero row, not an error.
func OneHot(name string, sel Selector) Transformer {
	return &oneHot{base{kind: KindOneHot, name: name, sel: sel}}
}

func (t *oneHot) Prepare(raw any) (any, error) {
	vocab := make(map[string]struct{}, 1)
	if raw != nil {
		label, err := cast.ToStringE(raw)
		if err != nil {
			return nil, err
		}
		vocab[label] = struct{}{}
	}
	return vocab, nil
}

// Sum merges into the left partial. Partials are ephemeral and owned by
// the reduce pass, so in-place merging is safe.
func (t *oneHot) Sum(a, b any) (any, error) {
	x, y := a.(map[string]struct{}), b.(map[string]struct{})
	for label := range y {
		x[label] = struct{}{}
	}
	return x, nil
}

func (t *oneHot) Present(partial any) (any, error) {
	vocab := partial.(map[string]struct{})
	if len(vocab) == 0 {
		return nil, ErrNoValues
	}
	labels := make([]string, 0, len(vocab))
	for label := range vocab {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return oneHotAggregate{Vocabulary: labels}, nil
}

func (t *oneHot) Names(aggregate any) []string {
	agg := aggregate.(oneHotAggregate)
	names := make([]string, len(agg.Vocabulary))
	for i, label := range agg.Vocabulary {
		names[i] = t.name + "_" + label
	}
	return names
}

func (t *oneHot) Values(raw, aggregate any, b builder.Builder) error {
	agg := aggregate.(oneHotAggregate)
	if raw == nil {
		builder.SkipN(b, len(agg.Vocabulary))
		return nil
	}
	label, err := cast.ToStringE(raw)
	if err != nil {
		return err
	}
	for _, known := range agg.Vocabulary {
		if known == label {
			b.Add(1)
		} else {
			b.Skip()
		}
	}
	return nil
}

func (t *oneHot) EncodeAggregate(aggregate any) (json.RawMessage, error) {
	return json.Marshal(aggregate.(oneHotAggregate))
}

func (t *oneHot) DecodeAggregate(data json.RawMessage) (any, error) {
	var agg oneHotAggregate
	if err := json.Unmarshal(data, &agg); err != nil {
		return nil, err
	}
	if len(agg.Vocabulary) == 0 {
		return nil, fmt.Errorf("invalid one-hot state: empty vocabulary")
	}
	if !sort.StringsAreSorted(agg.Vocabulary) {
		return nil, fmt.Errorf("invalid one-hot state: vocabulary not sorted")
	}
	return agg, nil
}
