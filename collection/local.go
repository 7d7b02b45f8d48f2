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

package collection

import (
	"fmt"
	"runtime"
	"sync"
)

// Local is the slice-backed, in-process backend. Map fans out over a
// bounded worker pool but writes results by index, so element order is
// preserved even though the contract does not require it. Once an
// operation fails, the error sticks to every derived collection and
// surfaces from Seq.
type Local struct {
	items       []any
	parallelism int
	err         error
}

// NewLocal wraps items in a Local collection. The slice is not copied;
// callers must not mutate it while the collection is in use.
func NewLocal(items []any, opts ...LocalOption) *Local {
	l := &Local{items: items, parallelism: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Of builds a single-element Local holding v, the usual shape for the
// broadcast side of Cross.
func Of(v any) *Local {
	return &Local{items: []any{v}, parallelism: 1}
}

// LocalOption configures a Local collection.
type LocalOption func(*Local)

// WithParallelism bounds the Map worker pool. Values below 1 fall back
// to sequential execution.
func WithParallelism(n int) LocalOption {
	return func(l *Local) {
		if n < 1 {
			n = 1
		}
		l.parallelism = n
	}
}

func (l *Local) fail(err error) *Local {
	return &Local{parallelism: l.parallelism, err: err}
}

// Map applies fn to every element. The first error stops nothing
// mid-flight (workers drain their assigned elements) but poisons the
// result.
func (l *Local) Map(fn MapFunc) Collection {
	if l.err != nil {
		return l
	}
	out := make([]any, len(l.items))
	workers := l.parallelism
	if workers > len(l.items) {
		workers = len(l.items)
	}
	if workers <= 1 {
		for i, v := range l.items {
			r, err := fn(v)
			if err != nil {
				return l.fail(err)
			}
			out[i] = r
		}
		return &Local{items: out, parallelism: l.parallelism}
	}

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
		next     = make(chan int)
	)
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range next {
				r, err := fn(l.items[i])
				if err != nil {
					errOnce.Do(func() { firstErr = err })
					continue
				}
				out[i] = r
			}
		}()
	}
	for i := range l.items {
		next <- i
	}
	close(next)
	wg.Wait()
	if firstErr != nil {
		return l.fail(firstErr)
	}
	return &Local{items: out, parallelism: l.parallelism}
}

// Reduce folds all elements into a one-element collection. The combine
// function must be associative and commutative; Local happens to fold
// left-to-right but callers must not rely on that.
func (l *Local) Reduce(combine CombineFunc) Collection {
	if l.err != nil {
		return l
	}
	if len(l.items) == 0 {
		return l.fail(fmt.Errorf("reduce: %w", ErrEmpty))
	}
	acc := l.items[0]
	for _, v := range l.items[1:] {
		next, err := combine(acc, v)
		if err != nil {
			return l.fail(err)
		}
		acc = next
	}
	return &Local{items: []any{acc}, parallelism: l.parallelism}
}

// Cross pairs every element of the receiver with every element of other.
// With a singleton broadcast side this is the usual broadcast join and
// preserves the receiver's cardinality.
func (l *Local) Cross(other Collection) Collection {
	if l.err != nil {
		return l
	}
	bs, err := other.Seq()
	if err != nil {
		return l.fail(err)
	}
	if len(bs) == 0 {
		return l.fail(fmt.Errorf("cross: broadcast side: %w", ErrEmpty))
	}
	out := make([]any, 0, len(l.items)*len(bs))
	for _, a := range l.items {
		for _, b := range bs {
			out = append(out, Pair{A: a, B: b})
		}
	}
	return &Local{items: out, parallelism: l.parallelism}
}

// Seq materializes the collection or reports the first recorded error.
func (l *Local) Seq() ([]any, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.items, nil
}
