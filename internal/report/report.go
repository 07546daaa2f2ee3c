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

// Package report provides the small buffered-write helpers behind
// heap.Allocator's diagnostic Report/Dump output. Diagnostic output is
// produced once per call and handed off whole, so unlike a general
// purpose IO buffer neither writer here needs to support reading back
// what it wrote.
package report

// Writer is the narrow buffered-write contract heap diagnostics need:
// accumulate bytes, then deliver them to their destination.
type Writer interface {
	// WriteBinary appends bs to the buffer.
	WriteBinary(bs []byte) (n int, err error)
	// WrittenLen returns the number of bytes written since the last Flush.
	WrittenLen() int
	// Flush delivers the buffered bytes to the writer's destination and
	// resets WrittenLen to zero.
	Flush() error
}
