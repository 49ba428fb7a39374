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

import (
	"fmt"
	"strings"
)

// checkInvariants runs the full structural verifier when the package is
// built with the invariants tag. A violation indicates an engine bug,
// not a caller error, so it is fatal.
func (m *Map[K, V]) checkInvariants() {
	if invariantsEnabled {
		m.verifyStore()
	}
}

// verifyStore walks the entire structure and panics on the first broken
// invariant. Diagnostic only: it is O(n) and never runs on the
// production path of release builds.
func (m *Map[K, V]) verifyStore() {
	switch {
	case m.compact == nil && m.table == nil:
		if m.size != 0 {
			m.broken("empty store with size %d", m.size)
		}
		if m.firstInSeq != nilEntry || m.lastInSeq != nilEntry {
			m.broken("empty store with sequence ends %d/%d", m.firstInSeq, m.lastInSeq)
		}

	case m.compact != nil && m.table != nil:
		m.broken("both store representations present")

	case m.compact != nil:
		if m.size > packedMax {
			m.broken("compact store with size %d > %d", m.size, packedMax)
		}
		if m.firstInSeq != nilEntry || m.lastInSeq != nilEntry {
			m.broken("compact store with sequence ends %d/%d", m.firstInSeq, m.lastInSeq)
		}
		for i := 0; i < m.size; i++ {
			s := &m.compact.slots[i]
			if got := m.hashKey(s.key); got != s.hash {
				m.broken("compact slot %d: cached digest %#016x, recomputed %#016x", i, s.hash, got)
			}
		}

	default:
		m.verifyTable()
	}
}

func (m *Map[K, V]) verifyTable() {
	b := m.table

	// Every chain node must live in the bucket its digest selects, and
	// the chains must account for exactly size entries.
	live := make(map[int32]bool, m.size)
	for i := range b.buckets {
		for e := b.buckets[i]; e != nilEntry; e = b.entries[e].nextLookup {
			if live[e] {
				m.broken("entry %d linked into a chain twice", e)
			}
			live[e] = true
			if got := b.bucketIndex(b.entries[e].hash); got != uint64(i) {
				m.broken("entry %d in bucket %d, digest selects %d", e, i, got)
			}
		}
	}
	if len(live) != m.size {
		m.broken("chains hold %d entries, size is %d", len(live), m.size)
	}

	if (m.firstInSeq == nilEntry) != (m.size == 0) || (m.lastInSeq == nilEntry) != (m.size == 0) {
		m.broken("sequence ends %d/%d with size %d", m.firstInSeq, m.lastInSeq, m.size)
	}

	// The sequence list must visit every live entry exactly once, with
	// symmetric prev links, ending at lastInSeq.
	seen := 0
	prev := nilEntry
	for e := m.firstInSeq; e != nilEntry; e = b.entries[e].nextSeq {
		if !live[e] {
			m.broken("sequence entry %d not linked into any chain", e)
		}
		if b.entries[e].prevSeq != prev {
			m.broken("entry %d has prevSeq %d, expected %d", e, b.entries[e].prevSeq, prev)
		}
		seen++
		if seen > m.size {
			m.broken("sequence list cycle detected after %d entries", seen)
		}
		prev = e
	}
	if prev != m.lastInSeq {
		m.broken("sequence ends at %d, lastInSeq is %d", prev, m.lastInSeq)
	}
	if seen != m.size {
		m.broken("sequence holds %d entries, size is %d", seen, m.size)
	}
}

// broken reports a fatal invariant violation alongside a dump of the
// structure.
func (m *Map[K, V]) broken(format string, args ...any) {
	panic(fmt.Sprintf("ordmap: invariant failed: %s\n%s",
		fmt.Sprintf(format, args...), m.debugString()))
}

// debugString renders the internal structure for verifier panics.
func (m *Map[K, V]) debugString() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "size=%d identity=%t shared=%t\n", m.size, m.byIdentity, m.shared)
	switch {
	case m.compact != nil:
		fmt.Fprintf(&buf, "compact store, %d/%d slots\n", m.size, packedMax)
		for i := 0; i < m.size; i++ {
			s := &m.compact.slots[i]
			fmt.Fprintf(&buf, "  %2d: %#016x %v=%v\n", i, s.hash, s.key, s.value)
		}
	case m.table != nil:
		b := m.table
		fmt.Fprintf(&buf, "bucket store, capacity=%d arena=%d first=%d last=%d\n",
			len(b.buckets), len(b.entries), m.firstInSeq, m.lastInSeq)
		for i, e := range b.buckets {
			if e == nilEntry {
				continue
			}
			fmt.Fprintf(&buf, "  bucket %4d:", i)
			for ; e != nilEntry; e = b.entries[e].nextLookup {
				ent := &b.entries[e]
				fmt.Fprintf(&buf, " [%d %#016x %v=%v seq=%d/%d]",
					e, ent.hash, ent.key, ent.value, ent.prevSeq, ent.nextSeq)
			}
			buf.WriteString("\n")
		}
	default:
		buf.WriteString("empty store\n")
	}
	return buf.String()
}
