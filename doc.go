// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package kheap implements a kernel-mode dynamic memory allocator that
// serves allocation requests out of a single contiguous, caller-provided
// region of physical memory.
//
// It targets freestanding environments — bootloaders, microkernels,
// embedded executives — where no host allocator exists and the allocator
// itself is the root of all dynamic memory. The allocator's state lives
// entirely inside the memory range the caller hands it; no package-level
// bookkeeping memory is consumed beyond a handful of machine words per
// component.
//
// The package is built from four pieces, leaves first:
//
//   - SlabClass, a fixed-block-size free list allocator over one
//     contiguous byte range. Allocation and deallocation are O(1); the
//     free list is threaded through the free blocks themselves, so a
//     SlabClass consumes no memory beyond the range it owns.
//   - LargeAllocator, a free-list allocator for requests that do not fit
//     any slab size class.
//   - Heap, a composite of seven SlabClass instances (64, 128, 256, 512,
//     1024, 2048 and 4096 byte blocks) and one LargeAllocator, with a
//     pure routing function mapping every (size, alignment) request to
//     exactly one of the eight.
//   - LockedHeap, a spin-lock-protected wrapper around an optional Heap
//     exposing the global-allocator ABI (Alloc/Dealloc) the rest of a
//     kernel binds to.
//
// Deallocation is descriptor-driven: callers present the same
// (size, alignment) pair at Dealloc that they used at Alloc. The
// allocator does not store block headers to recover this information
// from the pointer alone — that would double the metadata overhead of
// every small allocation.
package kheap

import "os"

// trace enables verbose Fprintf-based tracing to os.Stderr of every
// slab and large-allocator allocate and deallocate call and of slab
// construction and grow; LargeAllocator.Extend is not traced. It is a
// compile-time switch,
// flipped locally when debugging; production kernels keep it false.
const trace = false

func init() {
	if trace {
		os.Stderr.WriteString("kheap: tracing enabled\n")
	}
}
