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
	"github.com/hirofumi/featran/transform"
)

// RecordExtractor extracts one record at a time, synchronously, against
// an aggregate decoded once from a settings string. It only ever runs in
// replay mode: the aggregate is supplied, never recomputed, and the
// reduce step is never invoked.
//
// Extract is safe for concurrent use: every calling goroutine works on
// its own pipeline instance taken from an internal pool, so the mutable
// single-slot pipeline state never crosses goroutines.
type RecordExtractor struct {
	set          *transform.Set
	settingsText string
	factory      builder.Factory

	agg   []any
	names []string

	pool sync.Pool
}

// NewRecordExtractor decodes settingsText against set and primes the
// feature names. factory picks the output representation for every
// Extract call.
func NewRecordExtractor(set *transform.Set, settingsText string, factory builder.Factory, opts ...Option) (*RecordExtractor, error) {
	if set == nil {
		return nil, fmt.Errorf("featran: nil transformer set")
	}
	newConfig(opts...)

	// Priming pass: run the settings through a throwaway bridge graph,
	// the same decode stage batch replay uses.
	seq, err := constPipe(settingsText).
		Cross(constPipe(set)).
		Map(decodeMapFunc()).
		Seq()
	if err != nil {
		return nil, fmt.Errorf("featran: record extractor: %w", err)
	}
	r := &RecordExtractor{
		set:          set,
		settingsText: settingsText,
		factory:      factory,
		agg:          seq[0].([]any),
	}
	r.names = set.FeatureNames(r.agg)
	r.pool.New = func() any { return r.NewPipeline() }
	logger.Debug("featran: record extractor primed, %d features", len(r.names))
	return r, nil
}

// FeatureNames returns the ordered output feature names, decoded once
// at construction and independent of any per-call state.
func (r *RecordExtractor) FeatureNames() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}

// FeatureSettings returns the settings string this extractor replays.
func (r *RecordExtractor) FeatureSettings() string {
	return r.settingsText
}

// Extract runs one record through the pipeline and returns its feature
// result. The feed-then-pull pair happens on a pipeline owned by the
// calling goroutine for the duration of the call.
func (r *RecordExtractor) Extract(record any) (FeatureResult, error) {
	p := r.pool.Get().(*Pipeline)
	defer r.pool.Put(p)
	return p.Extract(record)
}

// NewPipeline builds a standalone extraction pipeline. A Pipeline holds
// mutable single-slot state and must not be shared between goroutines;
// it exists for callers that want the explicit Feed/Pull protocol
// rather than Extract's pooled convenience.
func (r *RecordExtractor) NewPipeline() *Pipeline {
	cell := &feedCell{}
	results := sourcePipe(cell).
		Cross(constPipe(r.set)).
		Map(rawMapFunc()).
		Cross(constPipe(r.agg)).
		Map(resultMapFunc(r.set, r.agg, r.factory))
	return &Pipeline{cell: cell, results: results}
}

// Pipeline is a single-record extraction pipeline: a feed cell in front
// of the same expression graph batch extraction runs, bridged to
// synchronous execution. At any moment it is either empty or holding
// exactly one unconsumed record.
type Pipeline struct {
	cell    *feedCell
	results collection.Collection
}

// Feed buffers one record. Feeding while a previous record is still
// unconsumed returns ErrAlreadyFed.
func (p *Pipeline) Feed(record any) error {
	return p.cell.feed(record)
}

// Pull pushes the buffered record through the graph and returns its
// feature result, emptying the pipeline. Pulling an empty pipeline
// returns ErrNothingFed.
func (p *Pipeline) Pull() (FeatureResult, error) {
	seq, err := p.results.Seq()
	if err != nil {
		return FeatureResult{}, err
	}
	return seq[0].(FeatureResult), nil
}

// Extract is Feed followed by Pull.
func (p *Pipeline) Extract(record any) (FeatureResult, error) {
	if err := p.Feed(record); err != nil {
		return FeatureResult{}, err
	}
	return p.Pull()
}
