/*
 * Copyright 2025 The Featran Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package featran

import (
	"fmt"
	"sync"

	"github.com/hirofumi/featran/builder"
	"github.com/hirofumi/featran/collection"
	"github.com/hirofumi/featran/logger"
	"github.com/hirofumi/featran/settings"
	"github.com/hirofumi/featran/transform"
)

// FeatureResult is one record's extraction outcome: the built output
// value, the per-feature rejection reasons (nil when none) and the
// original record.
type FeatureResult struct {
	Value      any
	Rejections map[string]string
	Record     any
}

// Extractor runs batch feature extraction over a record collection.
//
// Every derived view (FeatureNames, FeatureSettings, FeatureValues,
// FeatureResults) reads one shared aggregate that is computed at most
// once for the lifetime of the instance, so all views are mutually
// consistent no matter how many of them are taken or in what order.
// An Extractor is safe for concurrent use once constructed.
type Extractor struct {
	set          *transform.Set
	records      collection.Collection
	settingsText string
	hasSettings  bool

	rawOnce sync.Once
	raws    collection.Collection

	aggOnce sync.Once
	agg     []any
	aggErr  error

	settingsOnce sync.Once
	settingsOut  string
	settingsErr  error
}

// New builds an extractor that derives the aggregate from records in a
// single pass. The input must not be empty: with no settings supplied
// there is nothing to reduce over.
func New(set *transform.Set, records []any, opts ...Option) (*Extractor, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("featran: no records and no settings: %w", collection.ErrEmpty)
	}
	cfg := newConfig(opts...)
	return FromCollection(set, collection.NewLocal(records, cfg.localOptions()...))
}

// NewWithSettings builds an extractor in replay mode: the aggregate is
// decoded from a previously produced settings string and never
// recomputed, so records may even be empty.
func NewWithSettings(set *transform.Set, records []any, settingsText string, opts ...Option) (*Extractor, error) {
	cfg := newConfig(opts...)
	return FromCollectionWithSettings(set, collection.NewLocal(records, cfg.localOptions()...), settingsText)
}

// FromCollection is New over an arbitrary collection backend. The
// backend must hold at least one record.
func FromCollection(set *transform.Set, records collection.Collection) (*Extractor, error) {
	if set == nil {
		return nil, fmt.Errorf("featran: nil transformer set")
	}
	return &Extractor{set: set, records: records}, nil
}

// FromCollectionWithSettings is NewWithSettings over an arbitrary
// collection backend.
func FromCollectionWithSettings(set *transform.Set, records collection.Collection, settingsText string) (*Extractor, error) {
	if set == nil {
		return nil, fmt.Errorf("featran: nil transformer set")
	}
	return &Extractor{set: set, records: records, settingsText: settingsText, hasSettings: true}, nil
}

// rawArrays pairs every record with its extracted raw array; built once
// and shared by the aggregation and materialization passes.
func (e *Extractor) rawArrays() collection.Collection {
	e.rawOnce.Do(func() {
		e.raws = e.records.Cross(collection.Of(e.set)).Map(rawMapFunc())
	})
	return e.raws
}

// aggregate computes (or decodes, in replay mode) the global summary.
// Guarded by a one-shot cell: the reduce pass runs at most once per
// Extractor regardless of how many views are derived from it.
func (e *Extractor) aggregate() ([]any, error) {
	e.aggOnce.Do(func() {
		var out collection.Collection
		if e.hasSettings {
			out = collection.Of(e.settingsText).
				Cross(collection.Of(e.set)).
				Map(decodeMapFunc())
		} else {
			out = e.rawArrays().
				Cross(collection.Of(e.set)).
				Map(prepareMapFunc()).
				Reduce(func(a, b any) (any, error) { return e.set.Sum(a.([]any), b.([]any)) }).
				Cross(collection.Of(e.set)).
				Map(presentMapFunc())
		}
		seq, err := out.Seq()
		if err != nil {
			e.aggErr = fmt.Errorf("featran: aggregate: %w", err)
			return
		}
		e.agg = seq[0].([]any)
		if e.hasSettings {
			logger.Debug("featran: aggregate decoded from settings for %d transformers", e.set.Len())
		} else {
			logger.Debug("featran: aggregate derived for %d transformers", e.set.Len())
		}
	})
	return e.agg, e.aggErr
}

// FeatureNames returns the ordered output feature names, base features
// first, crossing expansions after. The order is stable for the
// lifetime of the instance and matches every vector's slot order.
func (e *Extractor) FeatureNames() ([]string, error) {
	agg, err := e.aggregate()
	if err != nil {
		return nil, err
	}
	return e.set.FeatureNames(agg), nil
}

// FeatureSettings returns the serialized aggregate. In replay mode this
// is the supplied settings string verbatim.
func (e *Extractor) FeatureSettings() (string, error) {
	e.settingsOnce.Do(func() {
		if e.hasSettings {
			e.settingsOut = e.settingsText
			return
		}
		agg, err := e.aggregate()
		if err != nil {
			e.settingsErr = err
			return
		}
		items, err := e.set.Settings(agg)
		if err != nil {
			e.settingsErr = err
			return
		}
		e.settingsOut, e.settingsErr = settings.Encode(items)
	})
	return e.settingsOut, e.settingsErr
}

// FeatureResults extracts every record into an output value built by
// factory, together with its rejection map. Result order matches the
// input record order for order-preserving backends such as the local
// one.
func (e *Extractor) FeatureResults(factory builder.Factory) ([]FeatureResult, error) {
	agg, err := e.aggregate()
	if err != nil {
		return nil, err
	}
	out := e.rawArrays().
		Cross(collection.Of(agg)).
		Map(resultMapFunc(e.set, agg, factory))
	seq, err := out.Seq()
	if err != nil {
		return nil, fmt.Errorf("featran: feature results: %w", err)
	}
	results := make([]FeatureResult, len(seq))
	for i, v := range seq {
		results[i] = v.(FeatureResult)
	}
	logger.Debug("featran: extracted %d records", len(results))
	return results, nil
}

// FeatureValues is FeatureResults projected to plain []float64 vectors.
func (e *Extractor) FeatureValues() ([][]float64, error) {
	results, err := e.FeatureResults(builder.Float64sFactory)
	if err != nil {
		return nil, err
	}
	values := make([][]float64, len(results))
	for i, r := range results {
		values[i] = r.Value.([]float64)
	}
	return values, nil
}

// The map functions below are shared between the batch extractor and
// the single-record bridge, so both execution modes run the exact same
// transformation logic.

// rawMapFunc turns Pair{record, set} into Pair{record, rawArray}.
func rawMapFunc() collection.MapFunc {
	return func(v any) (any, error) {
		p := v.(collection.Pair)
		set := p.B.(*transform.Set)
		raw, err := set.RawArray(p.A)
		if err != nil {
			return nil, err
		}
		return collection.Pair{A: p.A, B: raw}, nil
	}
}

// prepareMapFunc turns Pair{Pair{record, rawArray}, set} into a
// per-record partial aggregate.
func prepareMapFunc() collection.MapFunc {
	return func(v any) (any, error) {
		p := v.(collection.Pair)
		set := p.B.(*transform.Set)
		rp := p.A.(collection.Pair)
		partial, err := set.Prepare(rp.B.([]any))
		if err != nil {
			return nil, err
		}
		return partial, nil
	}
}

// presentMapFunc finalizes the fully combined partial.
func presentMapFunc() collection.MapFunc {
	return func(v any) (any, error) {
		p := v.(collection.Pair)
		set := p.B.(*transform.Set)
		agg, err := set.Present(p.A.([]any))
		if err != nil {
			return nil, err
		}
		return agg, nil
	}
}

// decodeMapFunc turns Pair{settingsText, set} into a decoded aggregate.
func decodeMapFunc() collection.MapFunc {
	return func(v any) (any, error) {
		p := v.(collection.Pair)
		set := p.B.(*transform.Set)
		items, err := settings.Parse(p.A.(string))
		if err != nil {
			return nil, err
		}
		agg, err := set.DecodeAggregators(items)
		if err != nil {
			return nil, err
		}
		return agg, nil
	}
}

// resultMapFunc turns Pair{Pair{record, rawArray}, aggregate} into a
// FeatureResult: a fresh builder from factory is wrapped in a crossing
// builder configured with the set's declared crossings, the set drives
// Init/Add/Skip in feature order, and the finished value is read back
// with its rejections.
func resultMapFunc(set *transform.Set, aggregate []any, factory builder.Factory) collection.MapFunc {
	baseNames := set.BaseNames(aggregate)
	crosses := set.Crossings(aggregate)
	return func(v any) (any, error) {
		p := v.(collection.Pair)
		rp := p.A.(collection.Pair)
		agg := p.B.([]any)
		cb := builder.NewCrossing(factory.New(), baseNames, crosses)
		if err := set.FeatureValues(rp.B.([]any), agg, cb); err != nil {
			return nil, err
		}
		value, err := cb.Result()
		if err != nil {
			return nil, err
		}
		return FeatureResult{Value: value, Rejections: cb.Rejections(), Record: rp.A}, nil
	}
}
