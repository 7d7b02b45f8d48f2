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

// Package settings defines the wire format for a serialized aggregate:
// an ordered JSON array with one record per transformer. Encoding then
// decoding a settings string must reproduce an aggregate that yields
// identical feature names and values; decoding is strict and fails fast
// rather than producing a partial aggregate.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformed is returned when a settings string cannot be parsed or
// does not line up with the transformer set decoding it.
var ErrMalformed = errors.New("settings: malformed settings")

// Setting is one transformer's serialized state. Kind identifies the
// transformer implementation, Name the configured instance, Aggregate
// its finalized aggregator state in a kind-specific encoding.
type Setting struct {
	Kind      string          `json:"kind"`
	Name      string          `json:"name"`
	Aggregate json.RawMessage `json:"aggregate"`
}

// Encode serializes the ordered settings records to text.
func Encode(items []Setting) (string, error) {
	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("settings: encode: %w", err)
	}
	return string(data), nil
}

// Parse decodes a settings string back into ordered settings records.
func Parse(text string) ([]Setting, error) {
	var items []Setting
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	for i, s := range items {
		if s.Kind == "" || s.Name == "" {
			return nil, fmt.Errorf("%w: record %d missing kind or name", ErrMalformed, i)
		}
	}
	return items, nil
}
