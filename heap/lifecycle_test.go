/*
 * Copyright 2024 CloudWeGo Authors
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

package heap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAllocatorInitLayout(t *testing.T) {
	a, ok := newTestAllocator(2, 8)
	require.True(t, ok)
	require.Empty(t, a.Check())

	bp0 := a.ptr(uint32(prologueSize))
	assert.False(t, currAlloc(bp0), "the whole initial region starts out free")
	assert.True(t, prevAlloc(bp0), "the prologue pad reads as an allocated sentinel")

	epi := a.epilogueBP()
	assert.Equal(t, uint32(0), blockSize(epi))
	assert.True(t, currAlloc(epi))
}

func TestNewAllocatorReserveFailure(t *testing.T) {
	_, ok := newTestAllocator(100, 4) // initPages exceeds maxPages
	assert.False(t, ok)
}

func TestExtendCoalescesWithFreePredecessor(t *testing.T) {
	a, ok := newTestAllocator(1, 8)
	require.True(t, ok)

	before := blockSize(a.ptr(uint32(prologueSize)))
	require.True(t, a.extend(1))
	after := blockSize(a.ptr(uint32(prologueSize)))

	assert.Equal(t, before+uint32(testPageSize), after, "extend must grow the free predecessor by exactly one page")
	assert.Equal(t, 1, a.stats.ExtendCount)
	require.Empty(t, a.Check())
}

func TestExtendFormatsNewFreeBlockWhenPredecessorAllocated(t *testing.T) {
	a, ok := newTestAllocator(1, 8)
	require.True(t, ok)

	// consume the entire initial region so the block before the epilogue
	// is allocated, not free.
	whole := blockSize(a.ptr(uint32(prologueSize)))
	b := a.Alloc(int(whole) - headerSize)
	require.NotNil(t, b)

	oldEpilogueOff := a.offsetOf(a.epilogueBP())
	require.True(t, a.extend(1))

	newBP := a.ptr(oldEpilogueOff)
	assert.False(t, currAlloc(newBP), "the newly committed page must become a fresh free block")
	assert.True(t, prevAlloc(newBP), "its predecessor (the consumed block) is allocated")
	require.Empty(t, a.Check())
}

func TestExtendFailsAtReservationLimit(t *testing.T) {
	a, ok := newTestAllocator(1, 1)
	require.True(t, ok)
	assert.False(t, a.extend(1))
}

func TestPagesFor(t *testing.T) {
	a, ok := newTestAllocator(1, 8)
	require.True(t, ok)

	tests := []struct {
		size uint32
		want int
	}{
		{1, 1},
		{uint32(testPageSize), 1},
		{uint32(testPageSize) + 1, 2},
		{uint32(testPageSize) * 3, 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, a.pagesFor(tt.size))
	}
}
