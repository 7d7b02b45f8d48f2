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

// Package transform defines the transformer contract the extraction
// engine drives, the ordered Set composing transformers into one
// pipeline, and a catalog of built-in transformers (min-max scaling,
// standardization, identity passthrough, one-hot encoding).
//
// A transformer owns one feature's logic end to end: extracting a raw
// value from a record, preparing and summing a partial aggregate,
// presenting the finalized aggregate, and emitting named feature values
// against it. Aggregation is a two-phase protocol: Prepare runs per
// record, Sum combines partials (it must be associative and commutative,
// no combine order is guaranteed), Present finalizes exactly once.
package transform

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hirofumi/featran/builder"
	"github.com/hirofumi/featran/settings"
)

var (
	// ErrNoValues is returned by Present when a transformer observed no
	// values at all, leaving its aggregate undefined.
	ErrNoValues = errors.New("transform: no values observed")

	// ErrSettingsMismatch is returned when decoded settings do not line
	// up with the transformer set: wrong count, kind or name.
	ErrSettingsMismatch = errors.New("transform: settings do not match transformer set")
)

// Transformer is one named unit of feature logic. Raw values, partials
// and aggregates are transformer-local and opaque to everything else;
// a nil raw value means the record carries no value for this feature.
type Transformer interface {
	// Kind identifies the implementation, used in serialized settings.
	Kind() string

	// Name identifies this configured instance and prefixes its feature
	// names.
	Name() string

	// Extract pulls this transformer's raw value from a record. A nil
	// value with a nil error means the value is absent for this record.
	Extract(record any) (any, error)

	// Prepare derives a partial aggregate from one raw value.
	Prepare(raw any) (any, error)

	// Sum combines two partial aggregates. Must be associative and
	// commutative.
	Sum(a, b any) (any, error)

	// Present finalizes the fully combined partial into the aggregate.
	Present(partial any) (any, error)

	// Names lists the output feature names against an aggregate. The
	// count may depend on aggregate contents, such as vocabulary size.
	Names(aggregate any) []string

	// Values writes this transformer's slots for one record to b, in the
	// same order as Names, one Add or Skip per name.
	Values(raw, aggregate any, b builder.Builder) error

	// EncodeAggregate serializes the aggregate for settings output.
	EncodeAggregate(aggregate any) (json.RawMessage, error)

	// DecodeAggregate restores an aggregate from its serialized form.
	// Decoding is strict; malformed state is an error, never a partial
	// aggregate.
	DecodeAggregate(data json.RawMessage) (any, error)
}

// Set is an ordered composition of transformers defining one extraction
// pipeline, plus the declared feature crossings. Composition order is
// fixed at construction and drives both raw-array slot order and feature
// name order. A Set is immutable after construction and safe to share.
type Set struct {
	transformers []Transformer
	byName       map[string]int
	crosses      [][2]string
}

// NewSet composes transformers in order. Names must be unique and
// non-empty.
func NewSet(transformers ...Transformer) (*Set, error) {
	if len(transformers) == 0 {
		return nil, errors.New("transform: empty transformer set")
	}
	byName := make(map[string]int, len(transformers))
	for i, t := range transformers {
		if t.Name() == "" {
			return nil, fmt.Errorf("transform: transformer %d has empty name", i)
		}
		if _, dup := byName[t.Name()]; dup {
			return nil, fmt.Errorf("transform: duplicate transformer name %q", t.Name())
		}
		byName[t.Name()] = i
	}
	return &Set{transformers: transformers, byName: byName}, nil
}

// WithCross declares a pairwise crossing between two transformers by
// name and returns a new Set; the receiver is unchanged.
func (s *Set) WithCross(left, right string) (*Set, error) {
	if _, ok := s.byName[left]; !ok {
		return nil, fmt.Errorf("transform: cross references unknown transformer %q", left)
	}
	if _, ok := s.byName[right]; !ok {
		return nil, fmt.Errorf("transform: cross references unknown transformer %q", right)
	}
	if left == right {
		return nil, fmt.Errorf("transform: cross of %q with itself", left)
	}
	next := &Set{
		transformers: s.transformers,
		byName:       s.byName,
		crosses:      append(append([][2]string{}, s.crosses...), [2]string{left, right}),
	}
	return next, nil
}

// Len reports the number of transformers.
func (s *Set) Len() int { return len(s.transformers) }

// RawArray extracts one record into a fixed-length raw array, one slot
// per transformer. The array is ephemeral and owned by the pass that
// requested it.
func (s *Set) RawArray(record any) ([]any, error) {
	raw := make([]any, len(s.transformers))
	for i, t := range s.transformers {
		v, err := t.Extract(record)
		if err != nil {
			return nil, fmt.Errorf("transform: %s: extract: %w", t.Name(), err)
		}
		raw[i] = v
	}
	return raw, nil
}

// Prepare derives a per-record partial aggregate from a raw array.
func (s *Set) Prepare(raw []any) ([]any, error) {
	partial := make([]any, len(s.transformers))
	for i, t := range s.transformers {
		p, err := t.Prepare(raw[i])
		if err != nil {
			return nil, fmt.Errorf("transform: %s: prepare: %w", t.Name(), err)
		}
		partial[i] = p
	}
	return partial, nil
}

// Sum combines two partial aggregates slot by slot. Associative and
// commutative as long as every transformer's Sum is.
func (s *Set) Sum(a, b []any) ([]any, error) {
	out := make([]any, len(s.transformers))
	for i, t := range s.transformers {
		v, err := t.Sum(a[i], b[i])
		if err != nil {
			return nil, fmt.Errorf("transform: %s: sum: %w", t.Name(), err)
		}
		out[i] = v
	}
	return out, nil
}

// Present finalizes a fully combined partial into the aggregate.
func (s *Set) Present(partial []any) ([]any, error) {
	agg := make([]any, len(s.transformers))
	for i, t := range s.transformers {
		v, err := t.Present(partial[i])
		if err != nil {
			return nil, fmt.Errorf("transform: %s: present: %w", t.Name(), err)
		}
		agg[i] = v
	}
	return agg, nil
}

// BaseNames lists the non-crossed feature names in slot order.
func (s *Set) BaseNames(aggregate []any) []string {
	var names []string
	for i, t := range s.transformers {
		names = append(names, t.Names(aggregate[i])...)
	}
	return names
}

// Crossings expands the declared crossings against an aggregate into
// the name groups the crossing builder consumes.
func (s *Set) Crossings(aggregate []any) []builder.Cross {
	crosses := make([]builder.Cross, 0, len(s.crosses))
	for _, c := range s.crosses {
		li, ri := s.byName[c[0]], s.byName[c[1]]
		crosses = append(crosses, builder.Cross{
			Left:  s.transformers[li].Names(aggregate[li]),
			Right: s.transformers[ri].Names(aggregate[ri]),
		})
	}
	return crosses
}

// FeatureNames lists all output feature names in slot order: base names
// first, then crossing expansions. This is exactly the order Values
// populates.
func (s *Set) FeatureNames(aggregate []any) []string {
	return append(s.BaseNames(aggregate), builder.CrossNames(s.Crossings(aggregate))...)
}

// FeatureValues drives b for one record: Init with the base dimension,
// then one Add or Skip per base feature name in order. Crossed slots are
// appended by the crossing builder, not here.
func (s *Set) FeatureValues(raw []any, aggregate []any, b builder.Builder) error {
	b.Init(len(s.BaseNames(aggregate)))
	for i, t := range s.transformers {
		if err := t.Values(raw[i], aggregate[i], b); err != nil {
			return fmt.Errorf("transform: %s: values: %w", t.Name(), err)
		}
	}
	return nil
}

// Settings serializes an aggregate into ordered per-transformer settings
// records.
func (s *Set) Settings(aggregate []any) ([]settings.Setting, error) {
	items := make([]settings.Setting, len(s.transformers))
	for i, t := range s.transformers {
		data, err := t.EncodeAggregate(aggregate[i])
		if err != nil {
			return nil, fmt.Errorf("transform: %s: encode aggregate: %w", t.Name(), err)
		}
		items[i] = settings.Setting{Kind: t.Kind(), Name: t.Name(), Aggregate: data}
	}
	return items, nil
}

// DecodeAggregators restores an aggregate from parsed settings records.
// The records must match the set exactly: same count, same kinds, same
// names, same order.
func (s *Set) DecodeAggregators(items []settings.Setting) ([]any, error) {
	if len(items) != len(s.transformers) {
		return nil, fmt.Errorf("%w: %d settings for %d transformers",
			ErrSettingsMismatch, len(items), len(s.transformers))
	}
	agg := make([]any, len(s.transformers))
	for i, t := range s.transformers {
		if items[i].Kind != t.Kind() || items[i].Name != t.Name() {
			return nil, fmt.Errorf("%w: slot %d is %s/%s, want %s/%s",
				ErrSettingsMismatch, i, items[i].Kind, items[i].Name, t.Kind(), t.Name())
		}
		v, err := t.DecodeAggregate(items[i].Aggregate)
		if err != nil {
			return nil, fmt.Errorf("transform: %s: decode aggregate: %w", t.Name(), err)
		}
		agg[i] = v
	}
	return agg, nil
}
