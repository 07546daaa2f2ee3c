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
	"io"

	"github.com/cloudwego/heapalloc/internal/report"
)

// Report writes a structured, human-readable dump of the heap to w: a
// summary line of committed, live and free bytes, one line per block in
// address order, the epilogue's offset, one line per non-empty bucket,
// and one line per operation held in the recent-operation trace, oldest
// first. Meant for tests and interactive debugging, not the hot path.
func (a *Allocator) Report(w io.Writer) error {
	sw := report.NewStreamWriter(w)
	a.writeReport(sw)
	return sw.Flush()
}

// Dump is Report without an io.Writer: it materializes the same report
// into a []byte.
func (a *Allocator) Dump() []byte {
	var out []byte
	bw := report.NewBufferWriter(&out)
	a.writeReport(bw)
	bw.Flush()
	return out
}

func (a *Allocator) writeReport(w report.Writer) {
	a.writeLine(w, fmt.Sprintf("heap: %d bytes committed, %d bytes live, %d bytes free",
		a.size, a.stats.LiveBytes, a.stats.FreeBytes))

	bp := a.ptr(uint32(prologueSize))
	end := a.epilogueBP()
	for bp != end {
		size := blockSize(bp)
		state := "free"
		if currAlloc(bp) {
			state = "alloc"
		}
		a.writeLine(w, fmt.Sprintf("  block off=%d size=%d %s", a.offsetOf(bp), size, state))
		bp = nextBlock(bp)
	}
	a.writeLine(w, fmt.Sprintf("  epilogue off=%d", a.offsetOf(end)))

	for b := 0; b < numBuckets; b++ {
		if a.heads[b] == offsetNull {
			continue
		}
		n := 0
		for off := a.heads[b]; off != offsetNull; off = linkNext(a.ptr(off)) {
			n++
		}
		a.writeLine(w, fmt.Sprintf("bucket %d: %d block(s)", b, n))
	}

	for _, e := range a.trace.recent() {
		a.writeLine(w, fmt.Sprintf("op %s off=%d size=%d ok=%t", e.kind, e.bp, e.size, e.ok))
	}
}

func (a *Allocator) writeLine(w report.Writer, s string) {
	w.WriteBinary([]byte(s))
	w.WriteBinary([]byte{'\n'})
}
