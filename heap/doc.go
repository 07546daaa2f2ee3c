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

// Package heap implements a general-purpose dynamic memory allocator
// over a single contiguous, growable byte range backed by page-granular
// OS reservations (see internal/segment).
//
// The engine uses boundary-tagged blocks (a packed header mirrored by a
// footer in free blocks only) and a segregated free-list index of 30
// buckets, bucketed by power-of-two size class. Allocation splits or
// consumes a free block found by a bounded bucket search; free runs a
// four-case coalescing state machine against both neighbors; realloc
// shrinks in place, grows in place by absorbing a free successor, or
// falls back to allocate+copy+free.
//
// The allocator is not safe for concurrent use: it assumes a single
// logical owner of the heap at any instant, the same way a process's
// own brk-based allocator assumes a single owner of its address space.
// Its zero value is not ready for use; construct one with NewAllocator.
package heap
