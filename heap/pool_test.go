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

func TestPoolIndexBucketing(t *testing.T) {
	p := NewPool()
	tests := []struct {
		pages    int
		wantSame bool // whether it should land in the same bucket as pages-1
	}{
		{1, false},
		{2, false},
		{3, false},
		{4, true},
	}
	for _, tt := range tests {
		idx := p.poolIndex(tt.pages)
		assert.GreaterOrEqual(t, idx, 0)
		if tt.pages > 1 {
			assert.Equal(t, tt.wantSame, idx == p.poolIndex(tt.pages-1), "poolIndex(%d) vs poolIndex(%d)", tt.pages, tt.pages-1)
		}
	}
}

func TestPoolGetPutReuse(t *testing.T) {
	p := NewPool(WithSegmentProvider(newFakeProvider(testPageSize, 8)))

	a, ok := p.Get(2)
	require.True(t, ok)

	b := a.Alloc(50)
	require.NotNil(t, b)
	require.NotEmpty(t, a.stats.AllocCount)

	p.Put(a)

	a2, ok := p.Get(2)
	require.True(t, ok)
	assert.Same(t, a, a2, "Get should recycle the instance just Put back")
	assert.Equal(t, 0, a2.stats.AllocCount, "Reset must clear stats")
	assert.Empty(t, a2.Check())
}

func TestAllocatorReset(t *testing.T) {
	a, ok := newTestAllocator(4, 8)
	require.True(t, ok)

	b := a.Alloc(100)
	require.NotNil(t, b)
	require.NotZero(t, a.stats.AllocCount)

	a.Reset()

	assert.Zero(t, a.stats.AllocCount)
	assert.Zero(t, a.stats.LiveBytes)
	assert.Empty(t, a.Check())

	bp0 := a.ptr(uint32(prologueSize))
	assert.False(t, currAlloc(bp0))
}
