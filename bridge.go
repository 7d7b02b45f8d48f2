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
	"errors"
	"fmt"

	"github.com/hirofumi/featran/collection"
)

var (
	// ErrAlreadyFed is returned when a record is fed into a pipeline that
	// still holds an unconsumed record. One record must be in flight at a
	// time; this is a protocol violation by the caller, never silently
	// overwritten.
	ErrAlreadyFed = errors.New("featran: record already fed and not yet consumed")

	// ErrNothingFed is returned when a pipeline result is pulled with no
	// record buffered.
	ErrNothingFed = errors.New("featran: no record fed")
)

// feedCell is the single-slot buffer behind a pipeline: empty, or
// holding exactly one record between Feed and the pull that consumes it.
type feedCell struct {
	fed   bool
	value any
}

func (c *feedCell) feed(record any) error {
	if c.fed {
		return ErrAlreadyFed
	}
	c.value = record
	c.fed = true
	return nil
}

func (c *feedCell) take() (any, error) {
	if !c.fed {
		return nil, ErrNothingFed
	}
	c.fed = false
	return c.value, nil
}

// pipe is the single-element pull-based collection bridge. A chain of
// pipes is the same expression graph the batch extractor builds, but
// evaluated lazily: nothing runs until a pull, and each pull pushes the
// one buffered record through every stage synchronously. Pipes hold
// per-pipeline mutable state and must stay confined to one goroutine.
type pipe struct {
	pull func() (any, error)
}

// sourcePipe pulls from the pipeline's feed cell, consuming the
// buffered record.
func sourcePipe(cell *feedCell) *pipe {
	return &pipe{pull: cell.take}
}

// constPipe is the broadcast side of a Cross under this bridge: a
// logically constant stream whose value is observed, never consumed.
func constPipe(v any) *pipe {
	return &pipe{pull: func() (any, error) { return v, nil }}
}

func failPipe(err error) *pipe {
	return &pipe{pull: func() (any, error) { return nil, err }}
}

func (p *pipe) Map(fn collection.MapFunc) collection.Collection {
	return &pipe{pull: func() (any, error) {
		v, err := p.pull()
		if err != nil {
			return nil, err
		}
		return fn(v)
	}}
}

// Reduce is never needed in single-record mode: the aggregate is always
// decoded, not derived. Calling it is a wiring error.
func (p *pipe) Reduce(collection.CombineFunc) collection.Collection {
	return failPipe(fmt.Errorf("bridge: reduce: %w", collection.ErrUnsupported))
}

func (p *pipe) Cross(other collection.Collection) collection.Collection {
	o, ok := other.(*pipe)
	if !ok {
		return failPipe(fmt.Errorf("bridge: cross with non-bridge collection: %w", collection.ErrUnsupported))
	}
	return &pipe{pull: func() (any, error) {
		a, err := p.pull()
		if err != nil {
			return nil, err
		}
		b, err := o.pull()
		if err != nil {
			return nil, err
		}
		return collection.Pair{A: a, B: b}, nil
	}}
}

func (p *pipe) Seq() ([]any, error) {
	v, err := p.pull()
	if err != nil {
		return nil, err
	}
	return []any{v}, nil
}
