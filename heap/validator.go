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
	"fmt"
	"unsafe"
)

// Violation describes one broken invariant found by Check. The
// Invariant field is a stable numeric identifier for the checked
// property, kept mainly for tests — never compared against in
// production code.
type Violation struct {
	Invariant int
	Message   string
}

func (v Violation) String() string { return fmt.Sprintf("invariant %d: %s", v.Invariant, v.Message) }

// Check walks the entire heap and returns every invariant violation it
// finds. A conforming allocator yields no violations (a nil slice)
// after every public call.
//
// Check is O(blocks + free-list nodes) and does no allocation of its
// own beyond the returned slice; it is meant for tests and optional
// development-time assertions, not the hot Alloc/Free/Realloc paths.
func (a *Allocator) Check() []Violation {
	var v []Violation
	v = append(v, a.checkWalk()...)
	v = append(v, a.checkBuckets()...)
	return v
}

// checkWalk performs the contiguous forward walk of invariant 8,
// checking invariants 1, 2, 3 and 7 on every block it visits along the
// way.
func (a *Allocator) checkWalk() []Violation {
	var v []Violation

	bp := a.ptr(uint32(prologueSize))
	end := a.ptr(uint32(a.size))
	steps := 0
	maxSteps := a.size/minBlockSize + 2

	var prevFree bool
	for {
		if steps > maxSteps {
			v = append(v, Violation{8, "forward walk did not reach the epilogue in a finite number of steps"})
			return v
		}
		steps++

		if !a.inBounds(bp) {
			v = append(v, Violation{7, fmt.Sprintf("bp %p lies outside the heap segment", bp)})
			return v
		}
		if a.offsetOf(bp)%8 != 0 {
			v = append(v, Violation{7, fmt.Sprintf("bp %p is not 8-byte aligned", bp)})
		}

		if bp == end {
			if prevFree && prevAlloc(bp) {
				v = append(v, Violation{2, "epilogue's prev_alloc disagrees with the last real block's status"})
			}
			break
		}

		size := blockSize(bp)
		free := !currAlloc(bp)

		if free {
			footer := loadWord(footerPtr(bp, size))
			header := loadWord(headerPtr(bp))
			if footer != header {
				v = append(v, Violation{1, fmt.Sprintf("block at %p: header/footer mismatch", bp)})
			}
		}

		if prevAlloc(bp) != !prevFree {
			v = append(v, Violation{2, fmt.Sprintf("block at %p: prev_alloc bit disagrees with predecessor's actual status", bp)})
		}

		if free && prevFree {
			v = append(v, Violation{3, fmt.Sprintf("block at %p: two adjacent free blocks were not coalesced", bp)})
		}

		prevFree = free
		bp = nextBlock(bp)
	}

	return v
}

// checkBuckets verifies invariants 4, 5 and 6 by walking every bucket
// list and cross-checking each visited node against a direct
// bucket(size) computation.
func (a *Allocator) checkBuckets() []Violation {
	var v []Violation

	for b := 0; b < numBuckets; b++ {
		off := a.heads[b]
		prevWasHead := true
		prevOff := offsetHead

		seen := 0
		maxSeen := a.size/minBlockSize + 2
		for off != offsetNull {
			seen++
			if seen > maxSeen {
				v = append(v, Violation{6, fmt.Sprintf("bucket %d: list does not terminate (cycle suspected)", b)})
				break
			}

			bp := a.ptr(off)
			if currAlloc(bp) {
				v = append(v, Violation{4, fmt.Sprintf("bucket %d: node at offset %d is marked allocated", b, off)})
			}
			if got := bucket(blockSize(bp)); got != b {
				v = append(v, Violation{5, fmt.Sprintf("bucket %d: node at offset %d belongs in bucket %d", b, off, got)})
			}

			p := linkPrev(bp)
			if prevWasHead {
				if p != offsetHead {
					v = append(v, Violation{6, fmt.Sprintf("bucket %d: head node's prev does not point to the head slot", b)})
				}
			} else if p != prevOff {
				v = append(v, Violation{6, fmt.Sprintf("bucket %d: node at offset %d's prev does not point back to its predecessor", b, off)})
			}

			prevWasHead = false
			prevOff = off
			off = linkNext(bp)
		}
	}

	return v
}

func (a *Allocator) inBounds(p unsafe.Pointer) bool {
	off := uintptr(p) - uintptr(a.base)
	return off <= uintptr(a.size)
}
