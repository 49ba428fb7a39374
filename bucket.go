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

// nilEntry is the null entry handle.
const nilEntry int32 = -1

// Bucket store tuning. Capacities are always powers of two so bucket
// selection is a mask. initialBucketCap is the smallest power of two
// above packedMax scaled by the inverse load factor, so a freshly
// promoted store sits under its growth threshold. A store grows when
// size*loadFactorDen > capacity*loadFactorNum, i.e. at load factor 3/4.
const (
	initialBucketCap = 16
	loadFactorNum    = 3
	loadFactorDen    = 4
)

// entry is a bucket-store node. It is owned by exactly one bucket chain
// through nextLookup and additionally threaded onto the global sequence
// list through prevSeq/nextSeq. Free entries are chained through
// nextLookup.
type entry[K, V any] struct {
	hash       uint64
	key        K
	value      V
	nextLookup int32
	prevSeq    int32
	nextSeq    int32
}

// bucketStore is the large-map representation: a power-of-two array of
// chain heads over an arena of entries addressed by int32 handles.
// Handles rather than pointers keep the two linked structures (chain
// and sequence) free of aliasing concerns, and they remain valid across
// bucket-array reallocation since only the head array is replaced.
type bucketStore[K, V any] struct {
	buckets []int32
	entries []entry[K, V]
	free    int32
	mask    uint64
}

func newBucketStore[K, V any](capacity int) *bucketStore[K, V] {
	b := &bucketStore[K, V]{
		buckets: make([]int32, capacity),
		entries: make([]entry[K, V], 0, capacity*loadFactorNum/loadFactorDen),
		free:    nilEntry,
		mask:    uint64(capacity - 1),
	}
	for i := range b.buckets {
		b.buckets[i] = nilEntry
	}
	return b
}

// bucketIndex maps a digest to its chain head.
func (b *bucketStore[K, V]) bucketIndex(hash uint64) uint64 {
	return hash & b.mask
}

// at returns the entry for a handle.
func (b *bucketStore[K, V]) at(e int32) *entry[K, V] {
	return &b.entries[e]
}

// alloc returns a fresh entry handle, recycling freed handles first.
func (b *bucketStore[K, V]) alloc() int32 {
	if e := b.free; e != nilEntry {
		b.free = b.entries[e].nextLookup
		return e
	}
	b.entries = append(b.entries, entry[K, V]{})
	return int32(len(b.entries) - 1)
}

// release zeroes an entry, dropping its key/value references, and
// returns the handle to the free list.
func (b *bucketStore[K, V]) release(e int32) {
	b.entries[e] = entry[K, V]{nextLookup: b.free, prevSeq: nilEntry, nextSeq: nilEntry}
	b.free = e
}

// find returns the handle of the entry holding key, or nilEntry. The
// cached digest is compared before the key callback runs.
func (b *bucketStore[K, V]) find(m *Map[K, V], key K, hash uint64) int32 {
	for e := b.buckets[b.bucketIndex(hash)]; e != nilEntry; e = b.entries[e].nextLookup {
		ent := &b.entries[e]
		if m.sameKey(key, hash, ent.key, ent.hash) {
			return e
		}
	}
	return nilEntry
}

// insert links a new entry into its bucket chain and onto the tail of
// the sequence list. The caller has established the key is absent.
func (b *bucketStore[K, V]) insert(m *Map[K, V], key K, value V, hash uint64) {
	e := b.alloc()
	idx := b.bucketIndex(hash)
	b.entries[e] = entry[K, V]{
		hash:       hash,
		key:        key,
		value:      value,
		nextLookup: b.buckets[idx],
		prevSeq:    m.lastInSeq,
		nextSeq:    nilEntry,
	}
	b.buckets[idx] = e
	if m.lastInSeq != nilEntry {
		b.entries[m.lastInSeq].nextSeq = e
	} else {
		m.firstInSeq = e
	}
	m.lastInSeq = e
	m.size++
}

// remove unlinks an entry from its bucket chain and from the sequence
// list in one step, then recycles the handle.
func (b *bucketStore[K, V]) remove(m *Map[K, V], e int32) {
	ent := &b.entries[e]

	// Bucket chain.
	idx := b.bucketIndex(ent.hash)
	if b.buckets[idx] == e {
		b.buckets[idx] = ent.nextLookup
	} else {
		p := b.buckets[idx]
		for b.entries[p].nextLookup != e {
			p = b.entries[p].nextLookup
		}
		b.entries[p].nextLookup = ent.nextLookup
	}

	// Sequence list.
	if ent.prevSeq != nilEntry {
		b.entries[ent.prevSeq].nextSeq = ent.nextSeq
	} else {
		m.firstInSeq = ent.nextSeq
	}
	if ent.nextSeq != nilEntry {
		b.entries[ent.nextSeq].prevSeq = ent.prevSeq
	} else {
		m.lastInSeq = ent.prevSeq
	}

	b.release(e)
	m.size--
}

// relink rebuilds the bucket-head array at the given capacity, placing
// every live entry by its cached digest; key material is never
// re-hashed. The sequence list is not touched, so insertion order
// survives a resize by construction. Also used after a compare-mode
// switch once the cached digests have been recomputed.
func (b *bucketStore[K, V]) relink(m *Map[K, V], capacity int) {
	buckets := make([]int32, capacity)
	for i := range buckets {
		buckets[i] = nilEntry
	}
	b.mask = uint64(capacity - 1)
	for e := m.firstInSeq; e != nilEntry; e = b.entries[e].nextSeq {
		ent := &b.entries[e]
		idx := b.bucketIndex(ent.hash)
		ent.nextLookup = buckets[idx]
		buckets[idx] = e
	}
	b.buckets = buckets
}
