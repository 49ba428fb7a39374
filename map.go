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

// Package ordmap implements the insertion-ordered associative map used
// to back a dynamic-language Hash object: keys map to values, iteration
// yields entries in the order they were first inserted, and key
// comparison is pluggable (value equality or reference identity).
//
// # Representation
//
// A Map starts with no backing store at all. The first insert
// materializes a compact store: a fixed-size inline array of
// (digest, key, value) triples scanned linearly, which beats a hash
// table for the short keyword-argument and option maps that dominate
// real workloads. Array order is insertion order, so the compact store
// needs no ordering structure of its own.
//
// Once the compact array overflows, the map promotes to a bucket store:
// a chained hash table whose entries are additionally threaded onto a
// doubly-linked sequence list recording insertion order. Bucket
// placement and sequence position are independent, which is what lets a
// table resize relink every chain without disturbing iteration order.
// Entries live in an arena addressed by int32 handles rather than
// pointers, so the chain links and the sequence links never alias each
// other and survive bucket-array reallocation untouched.
//
// Key digests are cached alongside each key in both representations.
// Comparisons check the cached digest before invoking the key protocol,
// and a resize never re-hashes key material.
//
// # Concurrency
//
// A Map is NOT goroutine-safe and takes no locks. The embedding runtime
// must serialize access to each map, or mark a map shared (MarkShared)
// and supply a write barrier so keys and values are handed to the
// shared ownership domain before they become reachable from another
// execution context. No operation blocks or performs I/O.
package ordmap

// Map is an insertion-ordered map from keys to values. The zero value
// is not usable; construct with New.
type Map[K, V any] struct {
	ops KeyOps[K]

	// The active store representation. At most one of compact/table is
	// non-nil; both nil is the empty representation.
	compact *compactStore[K, V]
	table   *bucketStore[K, V]

	// Sequence-list ends. Held here rather than on the bucket store so
	// they survive a resize, which replaces only the bucket-head array.
	// Handles into the table's arena; nilEntry outside bucket mode.
	firstInSeq int32
	lastInSeq  int32

	// The number of live entries, regardless of representation.
	size int

	byIdentity bool

	shared  bool
	barrier func(obj any)

	defaultFn  func(m *Map[K, V], key K) V
	defaultVal V
	hasDefault bool
}

// New constructs an empty Map using the supplied key protocol.
// ops.Hash and ops.Equal are required. The identity pair is required
// only if compare-by-identity mode is ever enabled.
func New[K, V any](ops KeyOps[K], options ...option[K, V]) *Map[K, V] {
	if ops.Hash == nil || ops.Equal == nil {
		panic("ordmap: KeyOps.Hash and KeyOps.Equal are required")
	}
	m := &Map[K, V]{
		ops:        ops,
		firstInSeq: nilEntry,
		lastInSeq:  nilEntry,
	}
	for _, op := range options {
		op.apply(m)
	}
	if m.byIdentity {
		m.requireIdentityOps()
	}
	m.checkInvariants()
	return m
}

func (m *Map[K, V]) requireIdentityOps() {
	if m.ops.IdentityHash == nil || m.ops.Identical == nil {
		panic("ordmap: compare-by-identity requires KeyOps.IdentityHash and KeyOps.Identical")
	}
}

// Len returns the number of entries in the map.
func (m *Map[K, V]) Len() int {
	return m.size
}

// CompareByIdentity reports whether the map matches keys by reference
// identity rather than value equality.
func (m *Map[K, V]) CompareByIdentity() bool {
	return m.byIdentity
}

// Shared reports whether the map has been marked as reachable from more
// than one execution context.
func (m *Map[K, V]) Shared() bool {
	return m.shared
}

// MarkShared marks the map as reachable from more than one execution
// context. From this point every insert passes the key and value to the
// write barrier before linking them into the structure. Sharing the
// entries already present is the embedding runtime's responsibility: it
// walks the object graph when it shares the map object itself.
func (m *Map[K, V]) MarkShared() {
	m.shared = true
}

// Get retrieves the value stored under key. ok is false on a lookup
// miss; the default-value policy is not consulted.
func (m *Map[K, V]) Get(key K) (value V, ok bool) {
	if m.size == 0 {
		return value, false
	}
	h := m.hashKey(key)
	if m.compact != nil {
		if i := m.compact.find(m, key, h); i >= 0 {
			return m.compact.slots[i].value, true
		}
		return value, false
	}
	if e := m.table.find(m, key, h); e != nilEntry {
		return m.table.at(e).value, true
	}
	return value, false
}

// GetOrDefault retrieves the value stored under key, resolving the
// map's default-value policy on a miss: a fixed default is returned
// as-is, a producer callback is invoked with the map and the missing
// key, and with no policy configured the zero value is returned. The
// map is never mutated. See GetOrInsert for get-or-insert semantics.
func (m *Map[K, V]) GetOrDefault(key K) V {
	if v, ok := m.Get(key); ok {
		return v
	}
	return m.missing(key)
}

// GetOrInsert retrieves the value stored under key, or resolves the
// default-value policy and inserts the result before returning it.
func (m *Map[K, V]) GetOrInsert(key K) V {
	if v, ok := m.Get(key); ok {
		return v
	}
	v := m.missing(key)
	m.Put(key, v)
	return v
}

// missing resolves the default-value policy for an absent key.
func (m *Map[K, V]) missing(key K) V {
	if m.defaultFn != nil {
		return m.defaultFn(m, key)
	}
	if m.hasDefault {
		return m.defaultVal
	}
	var zero V
	return zero
}

// Put inserts an entry, overwriting and returning the previous value if
// the key is already present. An overwrite never changes the entry's
// position in iteration order; a fresh key is appended to the end.
func (m *Map[K, V]) Put(key K, value V) (prev V, replaced bool) {
	if m.shared && m.barrier != nil {
		// Establish cross-domain ownership before either object is
		// reachable through the map.
		m.barrier(key)
		m.barrier(value)
	}
	h := m.hashKey(key)

	switch {
	case m.compact != nil:
		if i := m.compact.find(m, key, h); i >= 0 {
			s := &m.compact.slots[i]
			prev, s.value = s.value, value
			replaced = true
			break
		}
		if m.size == packedMax {
			m.promote()
			m.table.insert(m, key, value, h)
			break
		}
		m.compact.set(m, key, value, h)
	case m.table != nil:
		if e := m.table.find(m, key, h); e != nilEntry {
			ent := m.table.at(e)
			prev, ent.value = ent.value, value
			replaced = true
			break
		}
		m.table.insert(m, key, value, h)
		if m.size*loadFactorDen > len(m.table.buckets)*loadFactorNum {
			m.table.relink(m, 2*len(m.table.buckets))
		}
	default:
		m.compact = &compactStore[K, V]{}
		m.compact.set(m, key, value, h)
	}

	m.checkInvariants()
	return prev, replaced
}

// Delete removes the entry stored under key, returning its value.
// Deleting an absent key is a noop. Surviving entries keep their
// relative iteration order.
func (m *Map[K, V]) Delete(key K) (value V, ok bool) {
	if m.size == 0 {
		return value, false
	}
	h := m.hashKey(key)
	if m.compact != nil {
		if i := m.compact.find(m, key, h); i >= 0 {
			value, ok = m.compact.slots[i].value, true
			m.compact.remove(m, i)
		}
	} else if e := m.table.find(m, key, h); e != nilEntry {
		value, ok = m.table.at(e).value, true
		m.table.remove(m, e)
	}
	m.checkInvariants()
	return value, ok
}

// All calls yield for each entry in insertion order, stopping early if
// yield returns false. The map should not be mutated during iteration;
// there is no guarantee that mutations will be visible to the
// iteration.
func (m *Map[K, V]) All(yield func(key K, value V) bool) {
	if m.compact != nil {
		for i := 0; i < m.size; i++ {
			s := &m.compact.slots[i]
			if !yield(s.key, s.value) {
				return
			}
		}
		return
	}
	if m.table == nil {
		return
	}
	for e := m.firstInSeq; e != nilEntry; {
		ent := m.table.at(e)
		next := ent.nextSeq
		if !yield(ent.key, ent.value) {
			return
		}
		e = next
	}
}

// Clear removes all entries, dropping the backing store. The map
// reverts to the empty representation and remains usable.
func (m *Map[K, V]) Clear() {
	m.compact = nil
	m.table = nil
	m.firstInSeq = nilEntry
	m.lastInSeq = nilEntry
	m.size = 0
	m.checkInvariants()
}

// SetCompareByIdentity switches the map to identity-mode key matching.
// Digests cached under value mode are invalid under identity mode, so
// every entry is re-digested and bucket placement rebuilt before the
// switch returns. Iteration order is unaffected. Noop if the map is
// already in identity mode.
func (m *Map[K, V]) SetCompareByIdentity() {
	if m.byIdentity {
		return
	}
	m.requireIdentityOps()
	m.byIdentity = true
	m.rehash()
	m.checkInvariants()
}

// rehash recomputes every cached digest under the active compare mode
// and, in bucket mode, rebuilds chain placement. The sequence list is
// untouched.
func (m *Map[K, V]) rehash() {
	switch {
	case m.compact != nil:
		for i := 0; i < m.size; i++ {
			s := &m.compact.slots[i]
			s.hash = m.hashKey(s.key)
		}
	case m.table != nil:
		for e := m.firstInSeq; e != nilEntry; e = m.table.at(e).nextSeq {
			ent := m.table.at(e)
			ent.hash = m.hashKey(ent.key)
		}
		m.table.relink(m, len(m.table.buckets))
	}
}

// promote replaces the compact store with a bucket store, appending
// each triple in compact-array order to both its bucket chain and the
// sequence tail. Appending in array order is what carries insertion
// order across the representation change. Digests cached on the compact
// slots stay valid and are reused.
func (m *Map[K, V]) promote() {
	c := m.compact
	n := m.size
	m.compact = nil
	m.table = newBucketStore[K, V](initialBucketCap)
	m.size = 0
	for i := 0; i < n; i++ {
		s := &c.slots[i]
		m.table.insert(m, s.key, s.value, s.hash)
	}
}
