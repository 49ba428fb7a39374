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

// packedMax is the number of entries a compact store holds before the
// map promotes to a bucket store.
const packedMax = 8

// compactSlot is one (digest, key, value) triple in a compact store.
type compactSlot[K, V any] struct {
	hash  uint64
	key   K
	value V
}

// compactStore is the small-map representation: up to packedMax triples
// scanned linearly. Array order is insertion order, so no sequence list
// is needed. The live count is the owning Map's size; slots at index
// size and beyond are zero.
type compactStore[K, V any] struct {
	slots [packedMax]compactSlot[K, V]
}

// find returns the slot index holding key, or -1. The cached digest is
// compared before the key callback runs.
func (c *compactStore[K, V]) find(m *Map[K, V], key K, hash uint64) int {
	for i := 0; i < m.size; i++ {
		s := &c.slots[i]
		if m.sameKey(key, hash, s.key, s.hash) {
			return i
		}
	}
	return -1
}

// set appends a triple. The caller has already established that the key
// is absent and that the store is not full.
func (c *compactStore[K, V]) set(m *Map[K, V], key K, value V, hash uint64) {
	c.slots[m.size] = compactSlot[K, V]{hash: hash, key: key, value: value}
	m.size++
}

// remove deletes the slot at index i, shifting later triples left so
// insertion order is preserved. The vacated last slot is zeroed to drop
// key/value references.
func (c *compactStore[K, V]) remove(m *Map[K, V], i int) {
	copy(c.slots[i:m.size-1], c.slots[i+1:m.size])
	c.slots[m.size-1] = compactSlot[K, V]{}
	m.size--
}
