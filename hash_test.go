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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTypeSalts(t *testing.T) {
	// Integer 0, float 0.0 and false share an all-zero bit pattern but
	// must not collide as keys.
	require.NotEqual(t, HashInt64(0), HashFloat64(0))
	require.NotEqual(t, HashInt64(0), HashBool(false))
	require.NotEqual(t, HashFloat64(0), HashBool(false))
	require.NotEqual(t, HashInt64(1), HashBool(true))
}

func TestHashDeterminism(t *testing.T) {
	require.Equal(t, HashInt64(42), HashInt64(42))
	require.Equal(t, HashString("key"), HashString("key"))
	require.Equal(t, HashFloat64(1.5), HashFloat64(1.5))

	// Equal byte content digests the same regardless of container.
	require.Equal(t, HashString("key"), HashBytes([]byte("key")))
}

func TestHashFloatRawBits(t *testing.T) {
	// Raw IEEE bits are hashed, so the two zeros are distinct keys.
	require.NotEqual(t, HashFloat64(0), HashFloat64(math.Copysign(0, -1)))
}

func TestHashPointerIdentity(t *testing.T) {
	a := newStringRef("same")
	b := newStringRef("same")
	require.Equal(t, HashPointer(a), HashPointer(a))
	require.NotEqual(t, HashPointer(a), HashPointer(b))
}

func TestMixerDistribution(t *testing.T) {
	// Bucket selection uses only the low digest bits, so sequential
	// integers must spread across buckets rather than clustering.
	const n = 1 << 12
	counts := make([]int, 16)
	seen := make(map[uint64]struct{}, n)
	for i := int64(0); i < n; i++ {
		h := HashInt64(i)
		_, dup := seen[h]
		require.False(t, dup, "digest collision at %d", i)
		seen[h] = struct{}{}
		counts[h&15]++
	}
	for i, c := range counts {
		// Perfectly uniform would be 256 per bucket.
		require.Greater(t, c, 128, "bucket %d underloaded", i)
		require.Less(t, c, 512, "bucket %d overloaded", i)
	}
}

func TestMixerSeeded(t *testing.T) {
	// Digests must depend on the process seed, not on the raw input
	// alone, or flooding inputs could be precomputed offline.
	require.NotEqual(t, hashEnd(hashUpdate(0, 42)), HashInt64(42))
}
