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

	"github.com/bytedance/gopkg/util/xxhash3"
)

// Checksum hashes the allocator's entire committed region, prologue pad
// through epilogue sentinel. It is purely diagnostic: tests use it to
// confirm that a failed or no-op operation (a rejected shrink, a nil
// Free) left every other byte in the heap untouched.
func (a *Allocator) Checksum() uint64 {
	buf := unsafe.Slice((*byte)(a.base), a.size)
	return xxhash3.Hash(buf)
}

// BlockChecksum hashes a single live block's payload, identified by the
// slice Alloc/Realloc handed back. Used by tests that mutate unrelated
// blocks between two allocations and want to assert a specific block's
// contents survived.
func BlockChecksum(b []byte) uint64 {
	data := unsafe.SliceData(b)
	if data == nil {
		return 0
	}
	bp := unsafe.Pointer(data)
	return xxhash3.Hash(unsafe.Slice((*byte)(bp), blockSize(bp)))
}
