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

func TestOpTraceRecordAndRecent(t *testing.T) {
	tr := newOpTrace(4)

	tr.record(opAlloc, 0, 10, true)
	tr.record(opFree, 0, 20, true)
	tr.record(opRealloc, 0, 30, false)

	recent := tr.recent()
	require.Len(t, recent, 3)
	assert.Equal(t, opAlloc, recent[0].kind)
	assert.Equal(t, opFree, recent[1].kind)
	assert.Equal(t, opRealloc, recent[2].kind)
	assert.False(t, recent[2].ok)
}

func TestOpTraceWrapsAtCapacity(t *testing.T) {
	tr := newOpTrace(2)

	for i := 0; i < 5; i++ {
		tr.record(opAlloc, 0, i, true)
	}

	recent := tr.recent()
	require.Len(t, recent, 2, "capped ring must never report more than its capacity")
	assert.Equal(t, 3, recent[0].size)
	assert.Equal(t, 4, recent[1].size)
}

func TestOpKindString(t *testing.T) {
	assert.Equal(t, "alloc", opAlloc.String())
	assert.Equal(t, "free", opFree.String())
	assert.Equal(t, "realloc", opRealloc.String())
	assert.Equal(t, "?", opKind(99).String())
}

func TestAllocatorTracksOps(t *testing.T) {
	a, ok := newTestAllocator(2, 8)
	require.True(t, ok)

	b := a.Alloc(20)
	require.NotNil(t, b)
	a.Free(b)

	recent := a.trace.recent()
	require.GreaterOrEqual(t, len(recent), 2)
	assert.Equal(t, opAlloc, recent[len(recent)-2].kind)
	assert.Equal(t, opFree, recent[len(recent)-1].kind)
}
