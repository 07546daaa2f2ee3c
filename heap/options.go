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

// SearchPolicy selects how the free-list index looks for a fit.
type SearchPolicy int

const (
	// FirstFit walks buckets ascending and returns the first block that
	// fits, giving up on a bucket after BucketCutoff examined nodes.
	FirstFit SearchPolicy = iota
	// BestFit walks the same way but keeps the tightest fit seen within
	// BestFitCutoff examined nodes of the first bucket that has any fit.
	BestFit
)

// numBuckets is the fixed number of segregated free-list buckets,
// determined by the bucket formula (30 - clz(s) - 2, clamped to
// [0,29]) and not configurable.
const numBuckets = 30

// Options configures the allocator's tunable knobs. Go has no
// equivalent of a build-time #define for a library, so they become a
// functional-option set with a paired DefaultOptions constructor.
type Options struct {
	// InitPages is the number of pages reserved at construction.
	// Default 3.
	InitPages int
	// BucketCutoff bounds how many nodes a first-fit search examines per
	// bucket before moving on. Default 5.
	BucketCutoff int
	// BestFitCutoff bounds how many nodes a best-fit search examines per
	// bucket. Default 15.
	BestFitCutoff int
	// Policy selects first-fit or best-fit search. Default FirstFit.
	Policy SearchPolicy
	// ReallocMult scales the fallback-path allocation size in Realloc.
	// Default 1.
	ReallocMult int
	// MaxReservationBytes bounds the virtual address space the segment
	// provider reserves up front; Extend fails once it would be
	// exceeded. Zero means segment.DefaultMaxBytes. A small value makes
	// out-of-memory behavior deterministic without actually exhausting
	// real memory. Only the default OS-backed provider reads it.
	MaxReservationBytes int
	// Provider overrides the default OS-backed segment provider. Tests
	// use this to swap in a fast, non-mmap'd fake.
	Provider SegmentProvider
}

// DefaultOptions returns the allocator's documented defaults.
func DefaultOptions() *Options {
	return &Options{
		InitPages:     3,
		BucketCutoff:  5,
		BestFitCutoff: 15,
		Policy:        FirstFit,
		ReallocMult:   1,
	}
}

// Option mutates an Options being built by NewAllocator.
type Option func(*Options)

// WithInitPages overrides InitPages.
func WithInitPages(n int) Option { return func(o *Options) { o.InitPages = n } }

// WithBucketCutoff overrides BucketCutoff.
func WithBucketCutoff(n int) Option { return func(o *Options) { o.BucketCutoff = n } }

// WithBestFitCutoff overrides BestFitCutoff.
func WithBestFitCutoff(n int) Option { return func(o *Options) { o.BestFitCutoff = n } }

// WithPolicy overrides the search policy.
func WithPolicy(p SearchPolicy) Option { return func(o *Options) { o.Policy = p } }

// WithReallocMult overrides ReallocMult.
func WithReallocMult(n int) Option { return func(o *Options) { o.ReallocMult = n } }

// WithMaxReservationBytes overrides the segment provider's reservation
// cap.
func WithMaxReservationBytes(n int) Option { return func(o *Options) { o.MaxReservationBytes = n } }

// WithSegmentProvider overrides the segment provider entirely.
func WithSegmentProvider(p SegmentProvider) Option { return func(o *Options) { o.Provider = p } }
