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

// Alloc services a variable-size allocation request. It returns nil
// for a zero-size request — treated as a no-op rather than an error —
// and nil on resource exhaustion.
//
// The returned slice is sized to exactly the requested length even
// though the underlying block (and the slice's cap) can be larger.
func (a *Allocator) Alloc(size int) []byte {
	if size <= 0 {
		return nil
	}
	asize := adjustSize(size)

	bp, ok := a.findFit(asize)
	if !ok {
		if !a.growToFit(asize) {
			a.trace.record(opAlloc, 0, size, false)
			return nil
		}
		bp, ok = a.findFit(asize)
		if !ok {
			// growToFit guarantees a fit; reaching here means a logic
			// error elsewhere, not a resource condition.
			a.trace.record(opAlloc, 0, size, false)
			return nil
		}
	}

	allocBP := a.place(bp, asize)
	n := blockSize(allocBP)

	a.stats.AllocCount++
	a.stats.LiveBytes += int(n)
	a.trace.record(opAlloc, uintptr(a.offsetOf(allocBP)), size, true)

	return unsafe.Slice((*byte)(allocBP), n)[:size]
}

// growToFit extends the heap segment by enough pages to cover asize,
// coalescing with the previously-last block if it was free.
func (a *Allocator) growToFit(asize uint32) bool {
	pages := a.pagesFor(asize)
	return a.extend(pages)
}

// place decides whether to split bp or consume it whole for a request
// of size asize, installs the allocated block, and returns its bp.
func (a *Allocator) place(bp unsafe.Pointer, asize uint32) unsafe.Pointer {
	total := blockSize(bp)
	remainder := int(total) - int(asize) - headerSize

	if remainder < minBlockSize {
		// consume whole
		a.bucketRemove(bp)
		setCurrAlloc(bp, true)
		succ := nextBlock(bp)
		setPrevAlloc(succ, true)
		return bp
	}

	// split: free remainder stays at the lower address, allocated block
	// moves to the higher address, so a subsequent coalesce of the
	// remainder with its predecessor never has to look past the new
	// allocation.
	a.bucketRemove(bp)

	predPrevAlloc := prevAlloc(bp)
	writeHeader(bp, uint32(remainder), false, predPrevAlloc)
	writeFooter(bp)
	a.bucketInsert(bp)

	allocBP := nextBlock(bp)
	writeHeader(allocBP, asize, true, false)

	succ := nextBlock(allocBP)
	setPrevAlloc(succ, true)
	return allocBP
}
