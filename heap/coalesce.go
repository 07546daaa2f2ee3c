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

import "unsafe"

// Free returns a previously-allocated block to the heap, merging it
// with any free neighbor(s) via a four-case coalescing state machine
// keyed on the previous/next blocks' alloc bits. A nil slice is a
// no-op.
func (a *Allocator) Free(b []byte) {
	data := unsafe.SliceData(b)
	if data == nil {
		a.trace.record(opFree, 0, 0, true)
		return
	}
	a.free(unsafe.Pointer(data))
}

func (a *Allocator) free(bp unsafe.Pointer) {
	size := blockSize(bp)
	a.stats.FreeCount++
	a.stats.LiveBytes -= int(size)
	a.trace.record(opFree, uintptr(a.offsetOf(bp)), int(size), true)

	prevFree := !prevAlloc(bp)
	succ := nextBlock(bp)
	nextFree := !currAlloc(succ)

	switch {
	case !prevFree && !nextFree:
		a.coalesceNone(bp, succ)
	case !prevFree && nextFree:
		a.coalesceNext(bp, succ)
	case prevFree && !nextFree:
		a.coalescePrev(bp, succ)
	default:
		a.coalesceBoth(bp, succ)
	}
}

// coalesceNone: neither neighbor is free. bp just becomes a free block.
func (a *Allocator) coalesceNone(bp, succ unsafe.Pointer) {
	setCurrAlloc(bp, false)
	writeFooter(bp)
	setPrevAlloc(succ, false)
	a.bucketInsert(bp)
}

// coalesceNext: the successor is free, the predecessor is not. Absorb
// the successor into bp.
func (a *Allocator) coalesceNext(bp, succ unsafe.Pointer) {
	newSize := blockSize(bp) + blockSize(succ) + headerSize
	a.bucketRemove(succ)
	writeHeader(bp, newSize, false, true) // prev was allocated
	writeFooter(bp)
	a.bucketInsert(bp)
	// the block beyond succ already has prev_alloc=free from when succ
	// itself was freed; nothing further to update there.
}

// coalescePrev: the predecessor is free, the successor is not. Absorb bp
// into its predecessor.
func (a *Allocator) coalescePrev(bp, succ unsafe.Pointer) {
	q := prevBlock(bp)
	qPrevAlloc := prevAlloc(q)
	newSize := blockSize(q) + blockSize(bp) + headerSize
	a.updateBucket(q, func() {
		writeHeader(q, newSize, false, qPrevAlloc)
		writeFooter(q)
	})
	setPrevAlloc(succ, false)
}

// coalesceBoth: both neighbors are free. Absorb bp and its successor
// into the predecessor in one step.
func (a *Allocator) coalesceBoth(bp, succ unsafe.Pointer) {
	q := prevBlock(bp)
	qPrevAlloc := prevAlloc(q)
	newSize := blockSize(q) + blockSize(bp) + blockSize(succ) + 2*headerSize
	a.bucketRemove(succ)
	a.updateBucket(q, func() {
		writeHeader(q, newSize, false, qPrevAlloc)
		writeFooter(q)
	})
}
