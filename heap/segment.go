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
	"unsafe"

	"github.com/cloudwego/heapalloc/internal/segment"
)

// SegmentProvider is the OS-facing collaborator the block-and-free-list
// engine delegates to: it owns page reservation and contiguous
// extension of the heap's backing address range. The engine only ever
// calls Reserve once and Extend thereafter.
type SegmentProvider interface {
	// Reserve sets aside nPages*PageSize() contiguous, 8-byte-aligned
	// bytes and returns the base address, or ok=false on failure. Called
	// exactly once per Allocator.
	Reserve(nPages int) (base unsafe.Pointer, ok bool)
	// Extend appends nPages pages immediately after the current end of
	// the segment and returns a pointer to the start of the new region,
	// which always equals the prior end.
	Extend(nPages int) (region unsafe.Pointer, ok bool)
	// Size returns the number of committed bytes in the segment.
	Size() int
	// PageSize returns the platform page size this provider allocates in
	// multiples of.
	PageSize() int
}

// osSegmentProvider is the default SegmentProvider, backed by
// internal/segment's mmap-reserved, mprotect-grown address range.
type osSegmentProvider struct {
	seg      *segment.Segment
	maxBytes int
}

func newOSSegmentProvider(maxBytes int) *osSegmentProvider {
	return &osSegmentProvider{maxBytes: maxBytes}
}

func (p *osSegmentProvider) Reserve(nPages int) (unsafe.Pointer, bool) {
	seg, ok := segment.Reserve(nPages, p.maxBytes)
	if !ok {
		return nil, false
	}
	p.seg = seg
	return seg.Base(), true
}

func (p *osSegmentProvider) Extend(nPages int) (unsafe.Pointer, bool) {
	if p.seg == nil {
		return nil, false
	}
	return p.seg.Extend(nPages)
}

func (p *osSegmentProvider) Size() int {
	if p.seg == nil {
		return 0
	}
	return p.seg.Size()
}

func (p *osSegmentProvider) PageSize() int {
	if p.seg == nil {
		return segment.PageSize()
	}
	return p.seg.PageSize()
}
