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

package report

import (
	"io"

	"github.com/bytedance/gopkg/lang/mcache"
)

const initialChunkSize = 4 * 1024

var _ Writer = (*StreamWriter)(nil)

// StreamWriter accumulates writes into a single mcache-pooled chunk and
// hands the whole chunk to an underlying io.Writer on Flush, returning
// the chunk to the pool once delivered.
type StreamWriter struct {
	dst   io.Writer
	chunk []byte
	wn    int
	err   error
}

// NewStreamWriter returns a StreamWriter that flushes to dst.
func NewStreamWriter(dst io.Writer) *StreamWriter {
	return &StreamWriter{dst: dst}
}

func (w *StreamWriter) grow(extra int) {
	need := len(w.chunk) + extra
	if need <= cap(w.chunk) {
		return
	}
	ncap := cap(w.chunk)*2 + extra
	if ncap < initialChunkSize {
		ncap = initialChunkSize
	}
	grown := mcache.Malloc(len(w.chunk), ncap)
	copy(grown, w.chunk)
	if w.chunk != nil {
		mcache.Free(w.chunk)
	}
	w.chunk = grown
}

func (w *StreamWriter) WriteBinary(bs []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	w.grow(len(bs))
	w.chunk = append(w.chunk, bs...)
	w.wn += len(bs)
	return len(bs), nil
}

func (w *StreamWriter) WrittenLen() int { return w.wn }

// Flush writes any buffered bytes to dst and releases the chunk back to
// mcache. A StreamWriter may be reused for further writes after Flush.
func (w *StreamWriter) Flush() error {
	if w.err != nil {
		return w.err
	}
	if len(w.chunk) > 0 {
		if _, err := w.dst.Write(w.chunk); err != nil {
			w.err = err
			return err
		}
	}
	if w.chunk != nil {
		mcache.Free(w.chunk)
		w.chunk = nil
	}
	w.wn = 0
	return nil
}
