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
	"math"
	"math/bits"
	"math/rand/v2"
	"unsafe"

	"github.com/cespare/xxhash/v2"
)

// Per-kind type salts. Fixed arbitrary constants so that values of
// different primitive kinds with identical bit patterns (integer 0,
// float 0.0, false) produce unrelated digests and never alias as keys.
// The boolean and integer constants match the engine this package was
// extracted from, keeping digests comparable across ports for a given
// seed.
const (
	saltBoolean  = 55927484
	saltInteger  = 1028093337
	saltFloat    = 1611229937
	saltString   = 432784956
	saltIdentity = 274164623
)

// hashSeed perturbs every digest produced by the mixer. Randomized once
// per process so attacker-chosen keys cannot engineer bucket collisions
// (hash flooding).
var hashSeed = rand.Uint64()

// hashStart begins an incremental digest for the given type salt.
func hashStart(salt uint64) uint64 {
	return hashSeed + salt
}

// hashUpdate folds a 64-bit word into the mixer state.
func hashUpdate(state, value uint64) uint64 {
	state += value
	state *= 0x9e3779b97f4a7c15
	return bits.RotateLeft64(state, 31)
}

// hashEnd finalizes the state into a well-distributed digest. This is
// the murmur3 64-bit finalizer, which fully avalanches single-bit
// differences in the state.
func hashEnd(state uint64) uint64 {
	state ^= state >> 33
	state *= 0xff51afd7ed558ccd
	state ^= state >> 33
	state *= 0xc4ceb9fe1a85ec53
	state ^= state >> 33
	return state
}

// HashBool returns the digest for a boolean key.
func HashBool(v bool) uint64 {
	var w uint64
	if v {
		w = 1
	}
	return hashEnd(hashUpdate(hashStart(saltBoolean), w))
}

// HashInt64 returns the digest for an integer key.
func HashInt64(v int64) uint64 {
	return hashEnd(hashUpdate(hashStart(saltInteger), uint64(v)))
}

// HashFloat64 returns the digest for a float key. The raw IEEE bits are
// hashed, so 0.0 and -0.0 produce distinct digests; canonicalize the
// sign before calling if the embedding runtime treats them as one key.
func HashFloat64(v float64) uint64 {
	return hashEnd(hashUpdate(hashStart(saltFloat), math.Float64bits(v)))
}

// HashString returns the digest for a string key.
func HashString(s string) uint64 {
	return hashEnd(hashUpdate(hashStart(saltString), xxhash.Sum64String(s)))
}

// HashBytes returns the digest for a byte-slice key. Equal byte content
// digests the same as the equivalent string.
func HashBytes(b []byte) uint64 {
	return hashEnd(hashUpdate(hashStart(saltString), xxhash.Sum64(b)))
}

// HashPointer returns an identity digest derived from the referent's
// address. Stable for as long as the referent is reachable, which holds
// for map keys since the map keeps them alive.
func HashPointer[T any](p *T) uint64 {
	return hashEnd(hashUpdate(hashStart(saltIdentity), uint64(uintptr(unsafe.Pointer(p)))))
}
