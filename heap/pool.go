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
	"math/bits"
	"sync"
)

// Nothing about the block-and-free-list engine restricts a process to
// one heap. Pool is a reuse pool of whole *Allocator instances,
// bucketed by committed size the same way a byte-buffer pool buckets
// by capacity: a caller that repeatedly spins up and tears down
// short-lived heaps of roughly the same size (one per request, say)
// avoids re-reserving OS segments on every cycle.
type Pool struct {
	buckets   []sync.Pool
	bits2idx  [64]int
	minPages  int
	maxPages  int
	newOption func(pages int) []Option
}

const (
	poolMinPages = 1
	poolMaxPages = 1 << 16
)

// NewPool builds a Pool. extra is applied, after WithInitPages, to
// every Allocator the pool constructs from scratch.
func NewPool(extra ...Option) *Pool {
	p := &Pool{
		minPages: poolMinPages,
		maxPages: poolMaxPages,
		newOption: func(pages int) []Option {
			opts := make([]Option, 0, len(extra)+1)
			opts = append(opts, WithInitPages(pages))
			opts = append(opts, extra...)
			return opts
		},
	}

	n := 0
	for sz := p.minPages; sz <= p.maxPages; sz <<= 1 {
		p.bits2idx[bits.Len(uint(sz))] = n
		n++
	}
	p.buckets = make([]sync.Pool, n)
	return p
}

// poolIndex returns the bucket a heap of pages committed pages belongs
// to: the smallest power-of-two bucket whose capacity is >= pages.
// Mirrors cache/mempool.poolIndex.
func (p *Pool) poolIndex(pages int) int {
	if pages <= p.minPages {
		return 0
	}
	if pages > p.maxPages {
		pages = p.maxPages
	}
	i := p.bits2idx[bits.Len(uint(pages))]
	if uint(pages)&(uint(pages)-1) == 0 {
		return i
	}
	return i + 1
}

// Get returns an Allocator with at least minPages committed, either
// recycled from the pool or freshly constructed. The returned
// Allocator's heap has been reset to its just-initialized state: all
// prior allocations are gone.
func (p *Pool) Get(minPages int) (*Allocator, bool) {
	if minPages <= 0 {
		minPages = poolMinPages
	}
	idx := p.poolIndex(minPages)
	if idx < len(p.buckets) {
		if v := p.buckets[idx].Get(); v != nil {
			a := v.(*Allocator)
			if a.pagesFor(uint32(a.size)) >= minPages {
				a.Reset()
				return a, true
			}
			p.buckets[idx].Put(a)
		}
	}
	return NewAllocator(p.newOption(minPages)...)
}

// Put returns a as a candidate for reuse. Put does not reset a; the
// reset happens lazily in Get, so a caller that never calls Get again
// pays nothing extra.
func (p *Pool) Put(a *Allocator) {
	if a == nil {
		return
	}
	idx := p.poolIndex(a.pagesFor(uint32(a.size)))
	if idx >= len(p.buckets) {
		return
	}
	p.buckets[idx].Put(a)
}

// Reset discards every live allocation and reinitializes the heap to
// the state NewAllocator would have left it in, without giving up the
// underlying OS segment reservation. Stats and the operation trace are
// cleared along with the block layout.
func (a *Allocator) Reset() {
	for i := range a.heads {
		a.heads[i] = offsetNull
	}
	a.stats = Stats{}
	a.trace = newOpTrace(len(a.trace.entries))
	a.initLayout(a.size)
}
