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

// Allocator is a single heap's worth of allocator state: the segment
// provider, the base address of the committed region, and the bucket
// heads of the segregated free-list index. Nothing about the
// algorithms restricts a process to one heap; each Allocator is
// independent, so a process can own as many as it likes (see Pool for
// a reuse pool of them).
//
// Allocator is not safe for concurrent use: all exported methods
// assume a single goroutine owns the instance at any instant.
type Allocator struct {
	provider SegmentProvider
	base     unsafe.Pointer
	size     int // committed bytes, mirrors provider.Size()
	pageSize int

	heads [numBuckets]uint32

	policy        SearchPolicy
	bucketCutoff  int
	bestFitCutoff int
	reallocMult   int

	stats Stats
	trace *opTrace
}

// Stats summarizes an Allocator's current state. It is purely
// diagnostic and never consulted by Alloc/Free/Realloc's decision
// logic.
type Stats struct {
	LiveBytes     int // sum of allocated blocks' payload sizes
	FreeBytes     int // sum of free blocks' block sizes
	AllocCount    int
	FreeCount     int
	ReallocCount  int
	ExtendCount   int
	CommittedSize int
}

// NewAllocator constructs and initializes a heap. It returns ok=false
// rather than an error when the segment provider cannot satisfy the
// initial reservation, so failures surface as a plain boolean rather
// than wrapped error values.
func NewAllocator(opts ...Option) (*Allocator, bool) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.InitPages <= 0 {
		o.InitPages = 3
	}

	provider := o.Provider
	if provider == nil {
		provider = newOSSegmentProvider(o.MaxReservationBytes)
	}

	base, ok := provider.Reserve(o.InitPages)
	if !ok {
		return nil, false
	}

	a := &Allocator{
		provider:      provider,
		base:          base,
		pageSize:      provider.PageSize(),
		policy:        o.Policy,
		bucketCutoff:  o.BucketCutoff,
		bestFitCutoff: o.BestFitCutoff,
		reallocMult:   o.ReallocMult,
		trace:         newOpTrace(64),
	}
	if a.bucketCutoff <= 0 {
		a.bucketCutoff = DefaultOptions().BucketCutoff
	}
	if a.bestFitCutoff <= 0 {
		a.bestFitCutoff = DefaultOptions().BestFitCutoff
	}
	if a.reallocMult <= 0 {
		a.reallocMult = 1
	}

	a.initLayout(provider.Size())
	return a, true
}

// initLayout lays out a freshly reserved segment: an 8-byte alignment
// pad, one free block spanning the rest of the region, and a terminal
// epilogue header.
func (a *Allocator) initLayout(total int) {
	a.size = total

	bp0 := a.ptr(uint32(prologueSize))
	size0 := uint32(total - prologueSize - epilogueSize)
	// the prologue pad is treated as an allocated sentinel so nothing
	// ever tries to coalesce left of the first real block.
	writeHeader(bp0, size0, false, true)
	writeFooter(bp0)
	a.bucketInsert(bp0)

	a.writeEpilogue(true)
}

// writeEpilogue (re)writes the zero-size terminal sentinel at the
// current end of the committed region. prevFree reports whether the
// block immediately preceding it is free.
func (a *Allocator) writeEpilogue(prevFree bool) {
	writeHeader(a.ptr(uint32(a.size)), 0, true, !prevFree)
}

func (a *Allocator) epilogueBP() unsafe.Pointer { return a.ptr(uint32(a.size)) }

// extend grows the committed segment by nPages pages and threads the
// new space into the free-list index, coalescing with the
// previously-last block when it was free.
func (a *Allocator) extend(nPages int) bool {
	oldSize := a.size
	oldEpilogue := a.ptr(uint32(oldSize))
	predWasFree := !prevAlloc(oldEpilogue)

	region, ok := a.provider.Extend(nPages)
	if !ok {
		return false
	}
	nbytes := nPages * a.pageSize
	a.size = oldSize + nbytes

	if predWasFree {
		pred := prevBlock(oldEpilogue)
		a.bucketRemove(pred)
		newSize := blockSize(pred) + uint32(nbytes)
		predPrevAlloc := prevAlloc(pred)
		writeHeader(pred, newSize, false, predPrevAlloc)
		writeFooter(pred)
		a.bucketInsert(pred)
	} else {
		newBP := region
		newSize := uint32(nbytes) - epilogueSize
		writeHeader(newBP, newSize, false, true)
		writeFooter(newBP)
		a.bucketInsert(newBP)
	}

	a.writeEpilogue(true)
	a.stats.ExtendCount++
	return true
}

// pagesFor rounds a block size up to a whole number of pages worth of
// bytes and returns the page count.
func (a *Allocator) pagesFor(size uint32) int {
	n := (int(size) + a.pageSize - 1) / a.pageSize
	if n < 1 {
		n = 1
	}
	return n
}
