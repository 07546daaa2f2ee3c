/*
 * Copyright 2025 CloudWeGo Authors
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

package report

import "github.com/bytedance/gopkg/lang/dirtmake"

var _ Writer = (*BufferWriter)(nil)

// BufferWriter accumulates writes into a dirtmake-backed []byte and
// copies the result back into the caller's slice on Flush.
type BufferWriter struct {
	dst *[]byte
	buf []byte
	wn  int
}

// NewBufferWriter returns a BufferWriter that appends to *dst and
// writes the result back into it on Flush. Existing data in *dst is
// preserved ahead of the new writes.
func NewBufferWriter(dst *[]byte) *BufferWriter {
	return &BufferWriter{dst: dst, buf: *dst}
}

func (w *BufferWriter) grow(extra int) {
	need := len(w.buf) + extra
	if need <= cap(w.buf) {
		return
	}
	ncap := cap(w.buf)*2 + extra
	if ncap < need {
		ncap = need
	}
	grown := dirtmake.Bytes(len(w.buf), ncap)
	copy(grown, w.buf)
	w.buf = grown
}

func (w *BufferWriter) WriteBinary(bs []byte) (int, error) {
	w.grow(len(bs))
	w.buf = append(w.buf, bs...)
	w.wn += len(bs)
	return len(bs), nil
}

func (w *BufferWriter) WrittenLen() int { return w.wn }

// Flush writes the accumulated buffer back into the destination slice
// and resets WrittenLen to zero. A BufferWriter may keep accumulating
// after Flush; the next Flush includes everything written so far.
func (w *BufferWriter) Flush() error {
	*w.dst = w.buf
	w.wn = 0
	return nil
}
