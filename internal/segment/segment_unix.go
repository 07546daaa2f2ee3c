//go:build darwin || dragonfly || freebsd || linux || openbsd || netbsd || solaris

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

package segment

import (
	"fmt"
	"log"
	"syscall"
	"unsafe"
)

// Segment is a contiguous, growable, page-backed byte range.
//
// The whole reservation is made once at MaxBytes and grown in place
// with mprotect instead of re-mmap'ing, so that Extend can hand back a
// pointer that is always "old end" — appended pages must stay
// contiguous with the current segment.
type Segment struct {
	mem       []byte // full PROT_NONE reservation
	committed int     // bytes currently PROT_READ|PROT_WRITE, a prefix of mem
	pageSize  int
}

// Reserve mmaps a MaxBytes-sized PROT_NONE window and commits the first
// nPages pages of it. It is the unix implementation of the segment
// provider's "reserve N initial pages" contract.
func Reserve(nPages, maxBytes int) (*Segment, bool) {
	pageSize := PageSize()
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	// round the reservation itself up to a page multiple
	maxBytes = roundupPages(maxBytes, pageSize) * pageSize

	mem, err := syscall.Mmap(-1, 0, maxBytes, syscall.PROT_NONE, syscall.MAP_ANON|syscall.MAP_PRIVATE)
	if err != nil {
		log.Printf("segment: reserve %d bytes failed: %v", maxBytes, err)
		return nil, false
	}

	s := &Segment{mem: mem, pageSize: pageSize}
	want := nPages * pageSize
	if want > len(mem) {
		_ = syscall.Munmap(mem)
		return nil, false
	}
	if want > 0 {
		if err := syscall.Mprotect(mem[:want], syscall.PROT_READ|syscall.PROT_WRITE); err != nil {
			log.Printf("segment: commit %d bytes failed: %v", want, err)
			_ = syscall.Munmap(mem)
			return nil, false
		}
	}
	s.committed = want
	return s, true
}

// Extend commits nPages additional pages immediately after the current
// end of the segment and returns a pointer to the start of the newly
// committed region, which always equals the prior end.
func (s *Segment) Extend(nPages int) (unsafe.Pointer, bool) {
	grow := nPages * s.pageSize
	if grow <= 0 {
		return nil, false
	}
	newEnd := s.committed + grow
	if newEnd > len(s.mem) {
		log.Printf("segment: extend by %d bytes exceeds reservation of %d bytes", grow, len(s.mem))
		return nil, false
	}
	if err := syscall.Mprotect(s.mem[s.committed:newEnd], syscall.PROT_READ|syscall.PROT_WRITE); err != nil {
		log.Printf("segment: extend mprotect failed: %v", err)
		return nil, false
	}
	p := unsafe.Pointer(&s.mem[s.committed])
	s.committed = newEnd
	return p, true
}

// Base returns the address of the first byte of the segment.
func (s *Segment) Base() unsafe.Pointer {
	if len(s.mem) == 0 {
		return nil
	}
	return unsafe.Pointer(&s.mem[0])
}

// Size returns the number of currently committed bytes.
func (s *Segment) Size() int { return s.committed }

// PageSize returns the page size this segment was reserved with.
func (s *Segment) PageSize() int { return s.pageSize }

// Close releases the entire reservation. Heap allocators never shrink,
// so Close is only meant for tests tearing down a Segment between
// cases.
func (s *Segment) Close() error {
	if s.mem == nil {
		return nil
	}
	err := syscall.Munmap(s.mem)
	s.mem = nil
	s.committed = 0
	if err != nil {
		return fmt.Errorf("segment: munmap: %w", err)
	}
	return nil
}
