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

package builder

import "fmt"

// Cross declares one pairwise feature crossing by the base feature names
// of its two constituents. Every left×right name combination produces
// one additional output slot.
type Cross struct {
	Left  []string
	Right []string
}

// CrossName is the synthesized name of one crossed output slot.
func CrossName(left, right string) string {
	return left + "_x_" + right
}

// CrossNames expands the declared crossings into output slot names, in
// declaration order, right name varying fastest.
func CrossNames(crosses []Cross) []string {
	var names []string
	for _, c := range crosses {
		for _, l := range c.Left {
			for _, r := range c.Right {
				names = append(names, CrossName(l, r))
			}
		}
	}
	return names
}

// Crossing decorates an inner Builder. Base slots are forwarded
// unchanged and buffered by name; once the base stream is complete,
// Result emits one slot per declared cross combination (the product of
// the two constituent values). A combination whose constituents are not
// both populated is never a silent success: the slot is zero-filled via
// Skip and the reason is recorded in the rejection map under the crossed
// feature name, so the total slot count always matches the feature
// names.
type Crossing struct {
	inner     Builder
	baseNames []string
	index     map[string]int
	crosses   []Cross

	values     []float64
	present    []bool
	pos        int
	inited     bool
	overrun    bool
	rejections map[string]string
}

// NewCrossing wraps inner. baseNames must list the base feature names in
// stream order; crosses reference those names.
func NewCrossing(inner Builder, baseNames []string, crosses []Cross) *Crossing {
	index := make(map[string]int, len(baseNames))
	for i, n := range baseNames {
		index[n] = i
	}
	return &Crossing{
		inner:     inner,
		baseNames: baseNames,
		index:     index,
		crosses:   crosses,
	}
}

func (c *Crossing) crossDim() int {
	n := 0
	for _, cr := range c.crosses {
		n += len(cr.Left) * len(cr.Right)
	}
	return n
}

func (c *Crossing) Init(dimension int) {
	if c.inited || dimension != len(c.baseNames) {
		c.overrun = true
		return
	}
	c.inited = true
	c.values = make([]float64, dimension)
	c.present = make([]bool, dimension)
	c.inner.Init(dimension + c.crossDim())
}

func (c *Crossing) Add(value float64) {
	if !c.inited || c.pos >= len(c.baseNames) {
		c.overrun = true
		return
	}
	c.values[c.pos] = value
	c.present[c.pos] = true
	c.pos++
	c.inner.Add(value)
}

func (c *Crossing) Skip() {
	if !c.inited || c.pos >= len(c.baseNames) {
		c.overrun = true
		return
	}
	c.pos++
	c.inner.Skip()
}

// Result emits the crossing slots and returns the inner builder's value.
func (c *Crossing) Result() (any, error) {
	if c.overrun || !c.inited || c.pos != len(c.baseNames) {
		return nil, fmt.Errorf("crossing: %d of %d base slots filled: %w", c.pos, len(c.baseNames), ErrDimension)
	}
	for _, cr := range c.crosses {
		for _, l := range cr.Left {
			for _, r := range cr.Right {
				li, lok := c.index[l]
				ri, rok := c.index[r]
				switch {
				case !lok || !rok:
					c.reject(CrossName(l, r), "unknown constituent feature")
				case !c.present[li] || !c.present[ri]:
					c.reject(CrossName(l, r), "constituent feature absent for this record")
				default:
					c.inner.Add(c.values[li] * c.values[ri])
				}
			}
		}
	}
	return c.inner.Result()
}

func (c *Crossing) reject(name, reason string) {
	if c.rejections == nil {
		c.rejections = make(map[string]string)
	}
	c.rejections[name] = reason
	c.inner.Skip()
}

// Rejections reports why crossed slots could not be populated for this
// record, keyed by crossed feature name. Nil when every crossing
// succeeded.
func (c *Crossing) Rejections() map[string]string {
	return c.rejections
}
