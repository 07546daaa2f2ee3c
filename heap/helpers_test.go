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

// fakeProvider is a SegmentProvider backed by a plain Go slice instead
// of mmap, the way buddy_test.go hands NewBuddyAllocator a plain
// make([]byte, size) arena. It lets the test suite exercise extension,
// coalescing-on-extend, and out-of-memory behavior deterministically
// and without touching the OS.
type fakeProvider struct {
	buf       []byte
	pageSize  int
	maxPages  int
	committed int
}

func newFakeProvider(pageSize, maxPages int) *fakeProvider {
	return &fakeProvider{
		buf:      make([]byte, pageSize*maxPages),
		pageSize: pageSize,
		maxPages: maxPages,
	}
}

func (p *fakeProvider) Reserve(nPages int) (unsafe.Pointer, bool) {
	if nPages <= 0 || nPages > p.maxPages {
		return nil, false
	}
	p.committed = nPages * p.pageSize
	return unsafe.Pointer(&p.buf[0]), true
}

func (p *fakeProvider) Extend(nPages int) (unsafe.Pointer, bool) {
	grow := nPages * p.pageSize
	newEnd := p.committed + grow
	if grow <= 0 || newEnd > len(p.buf) {
		return nil, false
	}
	ptr := unsafe.Pointer(&p.buf[p.committed])
	p.committed = newEnd
	return ptr, true
}

func (p *fakeProvider) Size() int     { return p.committed }
func (p *fakeProvider) PageSize() int { return p.pageSize }

const testPageSize = 256

// newTestAllocator builds an Allocator over a fakeProvider with
// testPageSize-byte pages, initPages committed up front and room to
// extend up to maxPages.
func newTestAllocator(initPages, maxPages int, opts ...Option) (*Allocator, bool) {
	all := append([]Option{
		WithInitPages(initPages),
		WithSegmentProvider(newFakeProvider(testPageSize, maxPages)),
	}, opts...)
	return NewAllocator(all...)
}

// unsafePtr recovers the bp a []byte returned by Alloc/Realloc names.
func unsafePtr(b []byte) unsafe.Pointer {
	return unsafe.Pointer(unsafe.SliceData(b))
}
