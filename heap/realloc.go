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

// Realloc resizes a previously-allocated block.
//
// A nil oldptr behaves like Alloc(newsz). A zero newsz frees oldptr and
// returns nil, routed through the allocator's own Free rather than an
// external one.
//
// Otherwise Realloc tries, in order: shrink/reuse in place (never
// splits the tail — an intentional throughput tradeoff, preserved
// here), forward absorption of a free successor, and finally
// allocate+copy+free.
func (a *Allocator) Realloc(oldptr []byte, newsz int) []byte {
	data := unsafe.SliceData(oldptr)
	if data == nil {
		return a.Alloc(newsz)
	}
	if newsz == 0 {
		a.Free(oldptr)
		return nil
	}

	bp := unsafe.Pointer(data)
	oldsz := blockSize(bp)
	asize := adjustSize(newsz)

	a.stats.ReallocCount++

	if asize <= oldsz {
		a.trace.record(opRealloc, uintptr(a.offsetOf(bp)), newsz, true)
		return unsafe.Slice((*byte)(bp), oldsz)[:newsz]
	}

	succ := nextBlock(bp)
	if !currAlloc(succ) {
		combined := oldsz + blockSize(succ) + headerSize
		if combined >= asize {
			a.absorbSuccessor(bp, succ, combined)
			a.trace.record(opRealloc, uintptr(a.offsetOf(bp)), newsz, true)
			return unsafe.Slice((*byte)(bp), combined)[:newsz]
		}
	}

	out := a.reallocFallback(bp, oldsz, newsz)
	a.trace.record(opRealloc, 0, newsz, out != nil)
	return out
}

// absorbSuccessor grows bp in place by merging its free successor.
func (a *Allocator) absorbSuccessor(bp, succ unsafe.Pointer, combined uint32) {
	succSucc := nextBlock(succ)
	setPrevAlloc(succSucc, true)
	a.bucketRemove(succ)

	a.stats.LiveBytes += int(combined) - int(blockSize(bp))
	wasPrevAlloc := prevAlloc(bp)
	writeHeader(bp, combined, true, wasPrevAlloc)
	// harmless write: lies inside the (now larger) allocated block, even
	// though allocated blocks don't normally carry a footer.
	writeFooter(bp)
}

// reallocFallback allocates a fresh block, copies the overlapping
// prefix, and frees the old one. reallocMult scales the fallback
// request; the returned slice's length is still newsz regardless of
// the multiplier, matching Alloc's len-vs-cap convention.
func (a *Allocator) reallocFallback(bp unsafe.Pointer, oldsz uint32, newsz int) []byte {
	want := newsz * a.reallocMult
	if want < newsz {
		want = newsz
	}
	fresh := a.Alloc(want)
	if fresh == nil {
		return nil
	}

	n := min(int(oldsz), newsz)
	src := unsafe.Slice((*byte)(bp), oldsz)
	copy(fresh[:n], src[:n])

	a.free(bp)
	return fresh[:newsz]
}
