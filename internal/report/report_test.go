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
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamWriterFlushesToDestination(t *testing.T) {
	var buf bytes.Buffer
	w := NewStreamWriter(&buf)

	n, err := w.WriteBinary([]byte("hello "))
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	n, err = w.WriteBinary([]byte("world"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, 11, w.WrittenLen())

	require.NoError(t, w.Flush())
	assert.Equal(t, "hello world", buf.String())
	assert.Equal(t, 0, w.WrittenLen())
}

func TestStreamWriterGrowsAcrossManyWrites(t *testing.T) {
	var buf bytes.Buffer
	w := NewStreamWriter(&buf)

	chunk := bytes.Repeat([]byte("x"), 1024)
	for i := 0; i < 16; i++ {
		_, err := w.WriteBinary(chunk)
		require.NoError(t, err)
	}
	require.NoError(t, w.Flush())
	assert.Equal(t, 16*1024, buf.Len())
}

func TestStreamWriterReusableAfterFlush(t *testing.T) {
	var buf bytes.Buffer
	w := NewStreamWriter(&buf)

	_, err := w.WriteBinary([]byte("first"))
	require.NoError(t, err)
	require.NoError(t, w.Flush())

	_, err = w.WriteBinary([]byte("second"))
	require.NoError(t, err)
	require.NoError(t, w.Flush())

	assert.Equal(t, "firstsecond", buf.String())
}

func TestBufferWriterMaterializesIntoDestination(t *testing.T) {
	var out []byte
	w := NewBufferWriter(&out)

	_, err := w.WriteBinary([]byte("abc"))
	require.NoError(t, err)
	_, err = w.WriteBinary([]byte("def"))
	require.NoError(t, err)
	assert.Equal(t, 6, w.WrittenLen())

	require.NoError(t, w.Flush())
	assert.Equal(t, "abcdef", string(out))
	assert.Equal(t, 0, w.WrittenLen())
}

func TestBufferWriterPreservesExistingData(t *testing.T) {
	out := []byte("pre-")
	w := NewBufferWriter(&out)

	_, err := w.WriteBinary([]byte("fix"))
	require.NoError(t, err)
	require.NoError(t, w.Flush())

	assert.Equal(t, "pre-fix", string(out))
}

func TestBufferWriterGrowsAcrossManyWrites(t *testing.T) {
	var out []byte
	w := NewBufferWriter(&out)

	chunk := bytes.Repeat([]byte("y"), 512)
	for i := 0; i < 32; i++ {
		_, err := w.WriteBinary(chunk)
		require.NoError(t, err)
	}
	require.NoError(t, w.Flush())
	assert.Equal(t, 32*512, len(out))
}
