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

// Package segment provides the OS-facing collaborator a heap allocator
// needs but does not itself implement: page-granular reservation of a
// contiguous address range, and contiguous append-only extension of it.
//
// A Segment reserves a large virtual window once (a PROT_NONE mapping on
// unix, a page-file-backed view on windows) and grows the committed prefix in front of it as
// Extend is called. Because the reservation never moves, a base address
// cached by a caller on Reserve stays valid for the Segment's entire
// lifetime — callers may keep raw unsafe.Pointer/uintptr arithmetic over
// it without revalidating on every access.
package segment

import "os"

// DefaultMaxBytes bounds how much address space a Segment reserves up
// front. It is large enough that no realistic allocator workload hits it,
// but finite so tests can construct a Segment with a small MaxBytes and
// deterministically exercise out-of-memory behavior.
const DefaultMaxBytes = 16 << 30 // 16GiB of reserved (not committed) address space

// PageSize returns the platform's page size.
func PageSize() int {
	return os.Getpagesize()
}

// roundupPages returns the number of whole pages needed to hold n bytes.
func roundupPages(n, pageSize int) int {
	return (n + pageSize - 1) / pageSize
}
