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

// Package builder defines how one record's feature values are written
// into an output representation. A Builder is single-use: Init declares
// the slot count, Add and Skip fill slots in feature order, Result hands
// back the finished value. The Crossing decorator expands declared
// pairwise feature crossings on top of any inner builder.
package builder

import (
	"errors"
	"fmt"
)

var (
	// ErrDimension is returned when Add/Skip calls do not line up with the
	// dimension declared by Init: writing past the end, reading Result
	// before every slot is filled, or calling Init twice.
	ErrDimension = errors.New("builder: dimension mismatch")

	// ErrExhausted is returned when a single-use builder is used again
	// after Result.
	ErrExhausted = errors.New("builder: result already taken")
)

// Builder receives one record's feature values in feature order.
// Implementations never truncate or pad: any mismatch between the
// declared dimension and the Add/Skip stream is reported from Result.
type Builder interface {
	// Init declares the output dimension. Called exactly once, before any
	// Add or Skip.
	Init(dimension int)

	// Add appends one numeric slot.
	Add(value float64)

	// Skip appends one zero slot without consuming a value.
	Skip()

	// Result returns the finished output value. The builder must be fully
	// populated; afterwards it is exhausted.
	Result() (any, error)
}

// Factory constructs a fresh Builder per record. Passing a factory is
// how callers pick the output representation; no reflection is involved.
type Factory interface {
	New() Builder
}

// FactoryFunc adapts a plain function to Factory.
type FactoryFunc func() Builder

// New implements Factory.
func (f FactoryFunc) New() Builder { return f() }

// Mapped post-composes fn on every result produced by factory. Init,
// Add and Skip behavior is untouched; only the finished value is
// transformed.
func Mapped(factory Factory, fn func(any) (any, error)) Factory {
	return FactoryFunc(func() Builder {
		return &mapped{inner: factory.New(), fn: fn}
	})
}

type mapped struct {
	inner Builder
	fn    func(any) (any, error)
}

func (m *mapped) Init(dimension int) { m.inner.Init(dimension) }
func (m *mapped) Add(value float64)  { m.inner.Add(value) }
func (m *mapped) Skip()              { m.inner.Skip() }

func (m *mapped) Result() (any, error) {
	v, err := m.inner.Result()
	if err != nil {
		return nil, err
	}
	return m.fn(v)
}

// AddAll appends every value in vs. Pure iteration sugar.
func AddAll(b Builder, vs ...float64) {
	for _, v := range vs {
		b.Add(v)
	}
}

// SkipN appends n zero slots. Pure iteration sugar.
func SkipN(b Builder, n int) {
	for i := 0; i < n; i++ {
		b.Skip()
	}
}

// Float64s builds a []float64 vector. The zero value is not usable;
// construct via Float64sFactory.
type Float64s struct {
	values   []float64
	dim      int
	inited   bool
	overrun  bool
	finished bool
}

// Float64sFactory produces Float64s builders.
var Float64sFactory Factory = FactoryFunc(func() Builder { return &Float64s{} })

func (b *Float64s) Init(dimension int) {
	if b.inited {
		b.overrun = true
		return
	}
	b.inited = true
	b.dim = dimension
	b.values = make([]float64, 0, dimension)
}

func (b *Float64s) put(v float64) {
	if !b.inited || b.finished || len(b.values) >= b.dim {
		b.overrun = true
		return
	}
	b.values = append(b.values, v)
}

func (b *Float64s) Add(value float64) { b.put(value) }

func (b *Float64s) Skip() { b.put(0) }

func (b *Float64s) Result() (any, error) {
	if b.finished {
		return nil, ErrExhausted
	}
	if b.overrun || !b.inited || len(b.values) != b.dim {
		return nil, fmt.Errorf("float64s: %d of %d slots filled: %w", len(b.values), b.dim, ErrDimension)
	}
	b.finished = true
	return b.values, nil
}

// NamedMap builds a map[string]float64 keyed by feature name. Skipped
// slots are omitted from the map, which keeps sparse outputs small; the
// slot accounting is still exact.
type NamedMap struct {
	names    []string
	values   map[string]float64
	pos      int
	inited   bool
	overrun  bool
	finished bool
}

// NamedMapFactory produces NamedMap builders over a fixed name order.
// The names must match the extraction's feature names.
func NamedMapFactory(names []string) Factory {
	return FactoryFunc(func() Builder { return &NamedMap{names: names} })
}

func (b *NamedMap) Init(dimension int) {
	if b.inited || dimension != len(b.names) {
		b.overrun = true
		return
	}
	b.inited = true
	b.values = make(map[string]float64, dimension)
}

func (b *NamedMap) Add(value float64) {
	if !b.inited || b.finished || b.pos >= len(b.names) {
		b.overrun = true
		return
	}
	b.values[b.names[b.pos]] = value
	b.pos++
}

func (b *NamedMap) Skip() {
	if !b.inited || b.finished || b.pos >= len(b.names) {
		b.overrun = true
		return
	}
	b.pos++
}

func (b *NamedMap) Result() (any, error) {
	if b.finished {
		return nil, ErrExhausted
	}
	if b.overrun || !b.inited || b.pos != len(b.names) {
		return nil, fmt.Errorf("namedmap: %d of %d slots filled: %w", b.pos, len(b.names), ErrDimension)
	}
	b.finished = true
	return b.values, nil
}
