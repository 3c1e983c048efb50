// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kheap

import (
	"fmt"

	"github.com/cznic/mathutil"
)

// Configuration constants, part of the external interface contract.
const (
	// NumSlabs is the number of sub-allocators a Heap owns: seven
	// SlabClass instances plus one LargeAllocator.
	NumSlabs = 8

	// MinSlabSize is the smallest sub-range a Heap will hand to any of
	// its eight sub-allocators: one page.
	MinSlabSize = 4096

	// MinHeapSize is the smallest byte range NewHeap accepts.
	MinHeapSize = NumSlabs * MinSlabSize
)

// slabSizes is the fixed ladder of SlabClass block sizes, in the order
// Heap constructs and routes them.
var slabSizes = [7]int{64, 128, 256, 512, 1024, 2048, 4096}

// ClassTag names one of the eight sub-allocators a Heap owns.
type ClassTag int

// The eight ClassTag variants, in the order the Rust original's
// HeapAllocator enum declares them.
const (
	Slab64 ClassTag = iota
	Slab128
	Slab256
	Slab512
	Slab1024
	Slab2048
	Slab4096
	Large
)

func (c ClassTag) String() string {
	switch c {
	case Slab64:
		return "Slab64"
	case Slab128:
		return "Slab128"
	case Slab256:
		return "Slab256"
	case Slab512:
		return "Slab512"
	case Slab1024:
		return "Slab1024"
	case Slab2048:
		return "Slab2048"
	case Slab4096:
		return "Slab4096"
	case Large:
		return "Large"
	default:
		return fmt.Sprintf("ClassTag(%d)", int(c))
	}
}

// classSize returns the block size of the slab class c names, or 0 for
// Large (which has no fixed block size).
func (c ClassTag) classSize() int {
	if c == Large {
		return 0
	}
	return slabSizes[c]
}

// Layout is the (size, alignment) descriptor accompanying every
// allocation and deallocation request. alignment must be a power of two.
// Callers must present the same Layout at Dealloc that they used at
// Alloc — the allocator does not recover it from the pointer alone.
type Layout struct {
	Size  int
	Align int
}

// isPowerOfTwo reports whether n is a positive power of two, using the
// same bit-length trick the teacher package uses for its own size-class
// rounding (mathutil.BitLen(n) is the position of n's highest set bit
// plus one; n is a power of two iff shifting a single bit up to that
// position reproduces n exactly).
func isPowerOfTwo(n int) bool {
	return n > 0 && 1<<uint(mathutil.BitLen(n)-1) == n
}

// NewLayout builds a Layout, panicking if align is not a power of two or
// size is negative.
func NewLayout(size, align int) Layout {
	if size < 0 {
		panic("kheap: negative layout size")
	}
	if !isPowerOfTwo(align) {
		panic("kheap: layout alignment must be a power of two")
	}
	return Layout{Size: size, Align: align}
}

// layoutToAllocator is the pure routing function mapping a Layout to the
// ClassTag of the sub-allocator that must serve it. It has no mutable
// state and is safe to call without holding any lock.
//
// Rows are tried in order; the first whose predicate matches wins. Both
// size and alignment matter: a slab's natural alignment equals its block
// size, so a small request with a large alignment requirement must skip
// past slab classes that are too narrowly aligned even though they are
// big enough to hold the bytes.
func layoutToAllocator(l Layout) ClassTag {
	if l.Size > MinSlabSize || l.Align > MinSlabSize {
		return Large
	}
	for i, size := range slabSizes {
		if l.Size <= size && l.Align <= size {
			return ClassTag(i)
		}
	}
	// Unreachable: l.Size, l.Align <= 4096 == slabSizes[len-1], so the
	// loop above always matches by the time it reaches Slab4096.
	return Slab4096
}
