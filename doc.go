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

/*
Package featran computes numeric feature vectors from structured records
for statistical and ML consumption.

Extraction happens in two coupled phases. First a single pass over the
whole input derives a global per-feature summary (the aggregate: ranges,
means, vocabularies). Then every record is deterministically transformed
against that shared aggregate into a fixed-shape named vector, with
optional pairwise feature crossing and per-feature rejection reporting.
The aggregate can be serialized to a settings string and replayed later,
which skips the aggregation pass entirely and keeps extraction
consistent between training and serving.

# Batch extraction

	set, _ := transform.NewSet(
		transform.MinMax("temperature", transform.Value("temperature")),
		transform.OneHot("device", transform.Value("device")),
	)
	set, _ = set.WithCross("temperature", "device")

	records := []any{
		map[string]any{"device": "a", "temperature": 18.0},
		map[string]any{"device": "b", "temperature": 26.5},
	}

	fe, _ := featran.New(set, records)
	names, _ := fe.FeatureNames()     // fixed slot order, crossings last
	values, _ := fe.FeatureValues()   // one []float64 per record
	text, _ := fe.FeatureSettings()   // serialized aggregate for replay

# Single-record extraction

A RecordExtractor serves one record at a time against a previously
produced settings string, without re-running aggregation:

	re, _ := featran.NewRecordExtractor(set, text, builder.Float64sFactory)
	result, _ := re.Extract(map[string]any{"device": "a", "temperature": 21.0})

# Collection backends

The engine is written against the collection.Collection capability set
(Map, Reduce, Cross); the bundled backend is an in-process slice with a
bounded parallel Map, and any backend satisfying the contract can be
plugged in through FromCollection.
*/
package featran
