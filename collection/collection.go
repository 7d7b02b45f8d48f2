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

// Package collection defines the container capability set the extraction
// engine is written against. The engine never touches a concrete backend
// directly; it only uses Map, Reduce and Cross, so any container that can
// provide those three operations (an in-process slice, a distributed
// dataset, a single-element bridge) can drive an extraction.
package collection

import "errors"

var (
	// ErrEmpty is returned when an operation needs at least one element,
	// such as Reduce or the broadcast side of Cross.
	ErrEmpty = errors.New("collection: empty collection")

	// ErrUnsupported is returned by backends that do not implement an
	// operation, such as Reduce on the single-element bridge.
	ErrUnsupported = errors.New("collection: operation not supported by this backend")
)

// MapFunc transforms one element into another.
type MapFunc func(v any) (any, error)

// CombineFunc folds two elements into one. Implementations used with
// Reduce must be associative and commutative; no backend guarantees an
// evaluation order.
type CombineFunc func(a, b any) (any, error)

// Pair is the element type produced by Cross.
type Pair struct {
	A any
	B any
}

// Collection is the backend contract. Errors raised inside Map, Reduce or
// Cross functions are carried by the returned collection and surface when
// Seq materializes it, so call chains stay linear.
type Collection interface {
	// Map applies fn to every element, preserving cardinality.
	Map(fn MapFunc) Collection

	// Reduce folds all elements via combine into a one-element collection.
	// Reducing an empty collection yields ErrEmpty.
	Reduce(combine CombineFunc) Collection

	// Cross pairs every element of the receiver with the value(s) of
	// other. The argument is the broadcast side and is expected to be
	// small, ideally a single element.
	Cross(other Collection) Collection

	// Seq materializes the collection, or reports the first error raised
	// anywhere in the chain that produced it.
	Seq() ([]any, error)
}
