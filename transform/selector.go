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

package transform

// Selector pulls one transformer's raw value out of a record. Returning
// a nil value with a nil error marks the value as absent for that
// record; transformers turn absence into skipped slots.
type Selector interface {
	Select(record any) (any, error)
}

// SelectorFunc adapts a plain function to Selector.
type SelectorFunc func(record any) (any, error)

// Select implements Selector.
func (f SelectorFunc) Select(record any) (any, error) { return f(record) }

// Value selects a field from map-shaped records. A missing key or a nil
// record is reported as absent, not as an error.
func Value(field string) Selector {
	return SelectorFunc(func(record any) (any, error) {
		m, ok := record.(map[string]any)
		if !ok || m == nil {
			return nil, nil
		}
		v, ok := m[field]
		if !ok {
			return nil, nil
		}
		return v, nil
	})
}
