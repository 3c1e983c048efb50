// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kheap

import (
	"fmt"
	"os"
	"unsafe"
)

// ErrOutOfMemory is returned by Allocate when the routed allocator has
// no free block satisfying the request.
type ErrOutOfMemory struct {
	Size, Align int
}

func (e *ErrOutOfMemory) Error() string {
	return fmt.Sprintf("kheap: out of memory for size=%d align=%d", e.Size, e.Align)
}

const ptrSize = unsafe.Sizeof(uintptr(0))

// freeNode is the view of a free block's first machine word: the
// address of the next free block, or 0 meaning "end of list". It is
// never a live type distinct from the caller's bytes — it exists only
// while the block sits on the free list.
type freeNode struct {
	next uintptr
}

func loadNext(addr uintptr) uintptr {
	return (*freeNode)(unsafe.Pointer(addr)).next
}

func storeNext(addr, next uintptr) {
	(*freeNode)(unsafe.Pointer(addr)).next = next
}

// SlabClass is a fixed-block-size free-list allocator over one
// contiguous, caller-owned byte range. Its zero value is not usable; it
// must be built with newSlabClass.
//
// A SlabClass's free list is threaded through the free blocks
// themselves: no bookkeeping memory beyond the struct's own few words is
// consumed, regardless of how many blocks the class owns.
type SlabClass struct {
	blockSize int
	start     uintptr
	length    uintptr
	free      uintptr // address of the free-list head, or 0
	nfree     int
}

// newSlabClass constructs a SlabClass over [start, start+length),
// threading every block into a single free list in ascending-address
// order. Preconditions (violations panic — they are programmer bugs,
// not runtime conditions):
//
//   - blockSize is a power of two and >= the machine word size;
//   - start is aligned to blockSize;
//   - length is a positive multiple of blockSize.
func newSlabClass(start, length uintptr, blockSize int) *SlabClass {
	checkSlabPreconditions(start, length, blockSize)
	s := &SlabClass{blockSize: blockSize, start: start, length: length}
	s.threadRange(start, length)
	return s
}

func checkSlabPreconditions(start, length uintptr, blockSize int) {
	if blockSize <= 0 || blockSize&(blockSize-1) != 0 {
		panic("kheap: SlabClass block size must be a power of two")
	}
	if uintptr(blockSize) < ptrSize {
		panic("kheap: SlabClass block size must be >= pointer size")
	}
	if start%uintptr(blockSize) != 0 {
		panic("kheap: SlabClass start must be aligned to block size")
	}
	if length == 0 || length%uintptr(blockSize) != 0 {
		panic("kheap: SlabClass length must be a positive multiple of block size")
	}
}

// threadRange prepends every block in [start, start+length) to s's free
// list, in ascending-address order, and is used both by construction
// and by grow.
func (s *SlabClass) threadRange(start, length uintptr) {
	n := int(length) / s.blockSize
	if n == 0 {
		return
	}
	// Build ascending-address chain start, start+bs, ..., terminated by
	// the class's current head, then splice it in front.
	for i := n - 1; i >= 0; i-- {
		addr := start + uintptr(i*s.blockSize)
		if i == n-1 {
			storeNext(addr, s.free)
		} else {
			storeNext(addr, start+uintptr((i+1)*s.blockSize))
		}
	}
	s.free = start
	s.nfree += n
	if trace {
		fmt.Fprintf(os.Stderr, "kheap: slab[%d] threaded %d blocks at %#x\n", s.blockSize, n, start)
	}
}

// Allocate pops the head of the free list and returns its address. O(1).
func (s *SlabClass) Allocate() (uintptr, error) {
	if s.free == 0 {
		if trace {
			fmt.Fprintf(os.Stderr, "kheap: slab[%d] OOM\n", s.blockSize)
		}
		return 0, &ErrOutOfMemory{Size: s.blockSize, Align: s.blockSize}
	}
	p := s.free
	s.free = loadNext(p)
	s.nfree--
	if trace {
		fmt.Fprintf(os.Stderr, "kheap: slab[%d] allocate -> %#x\n", s.blockSize, p)
	}
	return p, nil
}

// Deallocate pushes ptr back onto the head of the free list. O(1).
//
// Precondition: ptr was returned by this SlabClass's Allocate and has
// not been freed since. Violating this (freeing a foreign pointer,
// double-freeing) is undefined behaviour; this implementation does not
// detect it.
func (s *SlabClass) Deallocate(ptr uintptr) {
	storeNext(ptr, s.free)
	s.free = ptr
	s.nfree++
	if trace {
		fmt.Fprintf(os.Stderr, "kheap: slab[%d] deallocate %#x\n", s.blockSize, ptr)
	}
}

// Grow extends the class with an additional owned range, splitting it
// into extraLength/blockSize blocks and prepending all of them to the
// free list. O(k) in the number of new blocks. Preconditions are the
// same as newSlabClass, checked against the extension range.
func (s *SlabClass) Grow(extraStart, extraLength uintptr) {
	checkSlabPreconditions(extraStart, extraLength, s.blockSize)
	s.length += extraLength
	s.threadRange(extraStart, extraLength)
}

// contains reports whether ptr lies within the range this class owns.
func (s *SlabClass) contains(ptr uintptr) bool {
	return ptr >= s.start && ptr < s.start+s.length
}

// capacity returns the total number of blocks this class owns.
func (s *SlabClass) capacity() int {
	return int(s.length) / s.blockSize
}

// freeCount returns the number of blocks currently on the free list; it
// exists to support the package's own invariant-checking tests.
func (s *SlabClass) freeCount() int {
	return s.nfree
}
