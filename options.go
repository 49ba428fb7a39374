// Copyright 2025 The Ordmap Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ordmap

// option provides an interface to do work on a Map while it is being
// created.
type option[K, V any] interface {
	apply(m *Map[K, V])
}

type compareByIdentityOption[K, V any] struct{}

func (compareByIdentityOption[K, V]) apply(m *Map[K, V]) {
	m.byIdentity = true
}

// WithCompareByIdentity is an option to create the Map in
// compare-by-identity mode. The KeyOps must supply IdentityHash and
// Identical.
func WithCompareByIdentity[K, V any]() option[K, V] {
	return compareByIdentityOption[K, V]{}
}

type defaultValueOption[K, V any] struct {
	value V
}

func (op defaultValueOption[K, V]) apply(m *Map[K, V]) {
	m.defaultVal = op.value
	m.hasDefault = true
	m.defaultFn = nil
}

// WithDefaultValue is an option specifying the fixed value that
// GetOrDefault and GetOrInsert resolve on a lookup miss.
func WithDefaultValue[K, V any](value V) option[K, V] {
	return defaultValueOption[K, V]{value}
}

type defaultFuncOption[K, V any] struct {
	fn func(m *Map[K, V], key K) V
}

func (op defaultFuncOption[K, V]) apply(m *Map[K, V]) {
	m.defaultFn = op.fn
	m.hasDefault = false
}

// WithDefaultFunc is an option specifying a producer callback invoked
// with the map and the missing key on a lookup miss. GetOrDefault does
// not store the produced value; GetOrInsert does.
func WithDefaultFunc[K, V any](fn func(m *Map[K, V], key K) V) option[K, V] {
	return defaultFuncOption[K, V]{fn}
}

type writeBarrierOption[K, V any] struct {
	fn func(obj any)
}

func (op writeBarrierOption[K, V]) apply(m *Map[K, V]) {
	m.barrier = op.fn
}

// WithWriteBarrier is an option specifying the hook invoked on every
// key and value inserted into a shared map (see MarkShared) before the
// object is linked into the structure.
func WithWriteBarrier[K, V any](fn func(obj any)) option[K, V] {
	return writeBarrierOption[K, V]{fn}
}
