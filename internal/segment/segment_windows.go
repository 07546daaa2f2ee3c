//go:build windows

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
	"reflect"
	"syscall"
	"unsafe"
)

// Segment mirrors the unix implementation's contiguous-growable-range
// contract, but uses a two-call CreateFileMapping + MapViewOfFile
// approach rather than VirtualAlloc's MEM_RESERVE/MEM_COMMIT split (the
// latter isn't exposed by the standard "syscall" package on windows).
// The whole reservation is mapped as one page-file-backed view up
// front; Windows only backs the pages that are actually touched, so
// Extend just advances the "committed" watermark without a second
// syscall.
type Segment struct {
	handle    syscall.Handle
	addr      uintptr
	mem       []byte
	committed int
	pageSize  int
}

func Reserve(nPages, maxBytes int) (*Segment, bool) {
	pageSize := PageSize()
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	maxBytes = roundupPages(maxBytes, pageSize) * pageSize

	sizeHigh := uint32(int64(maxBytes) >> 32)
	sizeLow := uint32(int64(maxBytes) & 0xFFFFFFFF)
	h, err := syscall.CreateFileMapping(syscall.InvalidHandle, nil, syscall.PAGE_READWRITE, sizeHigh, sizeLow, nil)
	if err != nil {
		log.Printf("segment: CreateFileMapping failed: %v", err)
		return nil, false
	}
	addr, err := syscall.MapViewOfFile(h, syscall.FILE_MAP_WRITE, 0, 0, uintptr(maxBytes))
	if err != nil {
		log.Printf("segment: MapViewOfFile failed: %v", err)
		_ = syscall.CloseHandle(h)
		return nil, false
	}

	var mem []byte
	sh := (*reflect.SliceHeader)(unsafe.Pointer(&mem))
	sh.Data = addr
	sh.Len = maxBytes
	sh.Cap = maxBytes

	want := nPages * pageSize
	if want > maxBytes {
		_ = syscall.UnmapViewOfFile(addr)
		_ = syscall.CloseHandle(h)
		return nil, false
	}

	return &Segment{handle: h, addr: addr, mem: mem, committed: want, pageSize: pageSize}, true
}

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
	p := unsafe.Pointer(&s.mem[s.committed])
	s.committed = newEnd
	return p, true
}

func (s *Segment) Base() unsafe.Pointer {
	if len(s.mem) == 0 {
		return nil
	}
	return unsafe.Pointer(&s.mem[0])
}

func (s *Segment) Size() int     { return s.committed }
func (s *Segment) PageSize() int { return s.pageSize }

func (s *Segment) Close() error {
	if s.mem == nil {
		return nil
	}
	err := syscall.UnmapViewOfFile(s.addr)
	e2 := syscall.CloseHandle(s.handle)
	s.mem = nil
	s.committed = 0
	if err != nil {
		return fmt.Errorf("segment: UnmapViewOfFile: %w", err)
	}
	if e2 != nil {
		return fmt.Errorf("segment: CloseHandle: %w", e2)
	}
	return nil
}
