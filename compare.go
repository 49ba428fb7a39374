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

import "bytes"

// KeyOps supplies the key protocol for a Map. Hash and Equal drive
// value-mode comparison and are required. IdentityHash and Identical
// drive compare-by-identity mode and may be omitted when that mode is
// never enabled.
//
// Digests are cached on each entry, so Hash runs once per insert and
// once per lookup, never during a resize. A non-primitive key's own
// 64-bit digest is used as-is, without re-salting.
type KeyOps[K any] struct {
	// Hash returns the value-mode digest for a key.
	Hash func(key K) uint64
	// Equal reports whether two keys are the same key in value mode.
	// Only consulted after the cached digests match.
	Equal func(a, b K) bool
	// IdentityHash returns the identity-mode digest for a key,
	// typically derived from its address.
	IdentityHash func(key K) uint64
	// Identical reports whether two keys are the same object.
	Identical func(a, b K) bool
}

// hashKey digests key under the map's active compare mode.
func (m *Map[K, V]) hashKey(key K) uint64 {
	if m.byIdentity {
		return m.ops.IdentityHash(key)
	}
	return m.ops.Hash(key)
}

// sameKey reports whether a candidate key matches a stored key. Cached
// digests are compared first so mismatches never reach the callback.
func (m *Map[K, V]) sameKey(key K, hash uint64, stored K, storedHash uint64) bool {
	if hash != storedHash {
		return false
	}
	if m.byIdentity {
		return m.ops.Identical(key, stored)
	}
	return m.ops.Equal(key, stored)
}

// Int64KeyOps returns the key protocol for int64 keys. Identity and
// value modes coincide for scalars, where identity means bit identity.
func Int64KeyOps() KeyOps[int64] {
	return KeyOps[int64]{
		Hash:         HashInt64,
		Equal:        func(a, b int64) bool { return a == b },
		IdentityHash: HashInt64,
		Identical:    func(a, b int64) bool { return a == b },
	}
}

// StringKeyOps returns the value-mode key protocol for string keys.
// Go strings carry no usable reference identity, so the identity pair
// is left unconfigured; use pointer keys if identity mode is needed.
func StringKeyOps() KeyOps[string] {
	return KeyOps[string]{
		Hash:  HashString,
		Equal: func(a, b string) bool { return a == b },
	}
}

// BytesKeyOps returns the value-mode key protocol for []byte keys.
func BytesKeyOps() KeyOps[[]byte] {
	return KeyOps[[]byte]{
		Hash:  HashBytes,
		Equal: bytes.Equal,
	}
}

// PointerKeyOps returns the key protocol for pointer keys: value mode
// delegates to the supplied callbacks over the referents, identity mode
// compares the pointers themselves.
func PointerKeyOps[T any](hash func(*T) uint64, equal func(a, b *T) bool) KeyOps[*T] {
	return KeyOps[*T]{
		Hash:         hash,
		Equal:        equal,
		IdentityHash: HashPointer[T],
		Identical:    func(a, b *T) bool { return a == b },
	}
}
