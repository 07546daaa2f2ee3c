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
	"math/bits"
	"unsafe"
)

// bucket maps a block size to its size-class index: buckets are powers
// of two, so a block of size in [2^k, 2^(k+1)) lands in the same bucket
// as every other block that size, clamped to the fixed bucket count.
func bucket(size uint32) int {
	if size == 0 {
		size = 1
	}
	b := 30 - bits.LeadingZeros32(size) - 2
	if b < 0 {
		b = 0
	}
	if b > numBuckets-1 {
		b = numBuckets - 1
	}
	return b
}

// ptr converts a base-relative offset to an absolute address within the
// segment.
func (a *Allocator) ptr(off uint32) unsafe.Pointer { return unsafe.Add(a.base, int(off)) }

// offsetOf is ptr's inverse.
func (a *Allocator) offsetOf(p unsafe.Pointer) uint32 {
	return uint32(uintptr(p) - uintptr(a.base))
}

// bucketInsert adds a free block to the head of its bucket's list.
// LIFO, O(1).
//
// A head-slot/prev-link aliasing trick (writing through a node's prev
// pointer as if it were a next field, because the head slot aliases it)
// has no safe Go equivalent — a.heads is a Go array, not heap-segment
// bytes a block's link fields can point into. bucketRemove below
// branches explicitly on the offsetHead sentinel instead; the
// observable behavior (O(1) insert/remove, correct list contents) is
// identical.
func (a *Allocator) bucketInsert(bp unsafe.Pointer) {
	b := bucket(blockSize(bp))
	boff := a.offsetOf(bp)
	oldHead := a.heads[b]

	setLinkNext(bp, oldHead)
	setLinkPrev(bp, offsetHead)
	if oldHead != offsetNull {
		setLinkPrev(a.ptr(oldHead), boff)
	}
	a.heads[b] = boff
	a.stats.FreeBytes += int(blockSize(bp))
}

// bucketRemove unlinks a free block from its bucket's list. Must be
// called while bp's header still reflects the size it was inserted
// under — i.e. before any header mutation when the caller is about to
// resize and re-insert.
func (a *Allocator) bucketRemove(bp unsafe.Pointer) {
	b := bucket(blockSize(bp))
	p := linkPrev(bp)
	n := linkNext(bp)

	if p == offsetHead {
		a.heads[b] = n
	} else {
		setLinkNext(a.ptr(p), n)
	}
	if n != offsetNull {
		setLinkPrev(a.ptr(n), p)
	}
	a.stats.FreeBytes -= int(blockSize(bp))
}

// updateBucket removes bp from its current bucket, runs mutate (which
// is expected to change bp's header size in place), and re-inserts it
// under its new bucket. Always taking the remove+insert path rather
// than first checking whether the bucket actually changed is still
// O(1) and behaviorally identical; it just skips the micro-optimization
// of leaving an unmoved node's links untouched.
func (a *Allocator) updateBucket(bp unsafe.Pointer, mutate func()) {
	a.bucketRemove(bp)
	mutate()
	a.bucketInsert(bp)
}

// findFit searches the index for a free block of size >= target,
// honoring the allocator's configured search policy and per-bucket
// examination cutoffs.
func (a *Allocator) findFit(target uint32) (unsafe.Pointer, bool) {
	if a.policy == BestFit {
		return a.findBestFit(target)
	}
	return a.findFirstFit(target)
}

func (a *Allocator) findFirstFit(target uint32) (unsafe.Pointer, bool) {
	start := bucket(target)
	for b := start; b < numBuckets; b++ {
		off := a.heads[b]
		examined := 0
		for off != offsetNull && examined < a.bucketCutoff {
			bp := a.ptr(off)
			if blockSize(bp) >= target {
				return bp, true
			}
			off = linkNext(bp)
			examined++
		}
	}
	return nil, false
}

func (a *Allocator) findBestFit(target uint32) (unsafe.Pointer, bool) {
	start := bucket(target)
	for b := start; b < numBuckets; b++ {
		off := a.heads[b]
		examined := 0
		var best unsafe.Pointer
		var bestDiff uint32 = ^uint32(0)
		for off != offsetNull && examined < a.bestFitCutoff {
			bp := a.ptr(off)
			sz := blockSize(bp)
			if sz >= target {
				diff := sz - target
				if best == nil || diff < bestDiff {
					best, bestDiff = bp, diff
				}
			}
			off = linkNext(bp)
			examined++
		}
		if best != nil {
			return best, true
		}
	}
	return nil, false
}
