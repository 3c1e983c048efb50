// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kheap

import (
	"fmt"
	"os"
	"unsafe"
)

// LargeAllocator is the concrete implementation of the external
// collaborator contract spec.md §4.3 describes in the abstract: a
// free-list allocator for requests too big (or too strictly aligned)
// for any SlabClass. Heap only relies on New/Allocate/Deallocate/Extend
// and on the soundness of deallocating a previously-returned pointer
// with its original layout; the boundary-tag, first-fit algorithm below
// is one concrete choice satisfying that contract, not a requirement of
// it. Freed and split-off blocks are pushed onto the head of the free
// list, so the list is in LIFO order, not address order.
//
// Every physical block (free or allocated) begins with a word-sized
// header recording the block's total size, so adjacent blocks can be
// located and coalesced purely from addresses — no side table of block
// boundaries is kept. An allocated block additionally stores a
// back-pointer to its own header immediately before the pointer handed
// to the caller, which is what lets Deallocate locate the block's
// header when alignment padding separates the payload from the block's
// start.
type LargeAllocator struct {
	start uintptr
	end   uintptr // current extend cursor; owned range is [start, end)
	free  uintptr // head of the singly linked free list, or 0
}

const (
	bigWord        = unsafe.Sizeof(uintptr(0))
	bigHeaderSize  = bigWord // block.size
	bigLinkSize    = bigWord // free-list next pointer
	bigBackPtrSize = bigWord // back-pointer word before an allocated payload
	minBigBlock    = bigHeaderSize + bigLinkSize
)

func bigReadHeader(addr uintptr) uintptr        { return *(*uintptr)(unsafe.Pointer(addr)) }
func bigWriteHeader(addr, size uintptr)         { *(*uintptr)(unsafe.Pointer(addr)) = size }
func bigReadNext(addr uintptr) uintptr          { return *(*uintptr)(unsafe.Pointer(addr + bigHeaderSize)) }
func bigWriteNext(addr, next uintptr)           { *(*uintptr)(unsafe.Pointer(addr + bigHeaderSize)) = next }
func bigReadBackPtr(payload uintptr) uintptr    { return *(*uintptr)(unsafe.Pointer(payload - bigBackPtrSize)) }
func bigWriteBackPtr(payload, blockStart uintptr) {
	*(*uintptr)(unsafe.Pointer(payload - bigBackPtrSize)) = blockStart
}

func alignUp(x, align uintptr) uintptr {
	return (x + align - 1) &^ (align - 1)
}

// newLargeAllocator constructs a LargeAllocator over [start, start+length)
// as one initial free block.
func newLargeAllocator(start, length uintptr) *LargeAllocator {
	if length < minBigBlock {
		panic("kheap: LargeAllocator range too small")
	}
	a := &LargeAllocator{start: start, end: start + length}
	bigWriteHeader(start, length)
	bigWriteNext(start, 0)
	a.free = start
	return a
}

// Allocate finds the first free block able to hold a payload of
// l.Size bytes aligned to l.Align, splitting off any large-enough
// remainder back onto the free list.
func (a *LargeAllocator) Allocate(l Layout) (uintptr, error) {
	var prev uintptr
	cur := a.free
	for cur != 0 {
		size := bigReadHeader(cur)
		blockEnd := cur + size
		payload := alignUp(cur+bigHeaderSize+bigBackPtrSize, uintptr(l.Align))
		if payload+uintptr(l.Size) <= blockEnd {
			next := bigReadNext(cur)
			a.unlinkFree(prev, cur, next)
			a.commit(cur, size, payload, uintptr(l.Size))
			if trace {
				fmt.Fprintf(os.Stderr, "kheap: large allocate size=%d align=%d -> %#x\n", l.Size, l.Align, payload)
			}
			return payload, nil
		}
		prev = cur
		cur = bigReadNext(cur)
	}
	if trace {
		fmt.Fprintf(os.Stderr, "kheap: large OOM size=%d align=%d\n", l.Size, l.Align)
	}
	return 0, &ErrOutOfMemory{Size: l.Size, Align: l.Align}
}

// commit carves the allocated block out of the free block [blockStart,
// blockStart+blockSize), splitting off a trailing free remainder when
// it is big enough to stand on its own.
func (a *LargeAllocator) commit(blockStart, blockSize, payload, need uintptr) {
	blockEnd := blockStart + blockSize
	allocEnd := payload + need
	remaining := blockEnd - allocEnd
	if remaining >= minBigBlock {
		bigWriteHeader(allocEnd, remaining)
		a.pushFree(allocEnd)
		bigWriteHeader(blockStart, allocEnd-blockStart)
	} else {
		bigWriteHeader(blockStart, blockSize)
	}
	bigWriteBackPtr(payload, blockStart)
}

// Deallocate returns the block backing ptr to the free list, coalescing
// with any physically adjacent free neighbour.
//
// Precondition: ptr was returned by this LargeAllocator's Allocate with
// layout l and has not been freed since.
func (a *LargeAllocator) Deallocate(ptr uintptr, l Layout) {
	blockStart := bigReadBackPtr(ptr)
	size := bigReadHeader(blockStart)
	blockStart, size = a.coalesce(blockStart, size)
	bigWriteHeader(blockStart, size)
	a.pushFree(blockStart)
	if trace {
		fmt.Fprintf(os.Stderr, "kheap: large deallocate %#x size=%d align=%d\n", ptr, l.Size, l.Align)
	}
}

// coalesce absorbs any free block immediately preceding or following
// [start, start+size) into it, removing the absorbed neighbour(s) from
// the free list. It does not itself relink the merged result; callers
// push the (possibly grown) block afterward.
func (a *LargeAllocator) coalesce(start, size uintptr) (uintptr, uintptr) {
	// Forward neighbour.
	if _, nsize, ok := a.takeFreeAt(start + size); ok {
		size += nsize
	}
	// Backward neighbour: scan for a free block whose end equals start.
	var prev uintptr
	cur := a.free
	for cur != 0 {
		csize := bigReadHeader(cur)
		next := bigReadNext(cur)
		if cur+csize == start {
			a.unlinkFree(prev, cur, next)
			start = cur
			size = csize + size
			break
		}
		prev = cur
		cur = next
	}
	return start, size
}

// takeFreeAt removes the free block starting exactly at addr from the
// free list, if one exists, returning its size.
func (a *LargeAllocator) takeFreeAt(addr uintptr) (uintptr, uintptr, bool) {
	var prev uintptr
	cur := a.free
	for cur != 0 {
		next := bigReadNext(cur)
		if cur == addr {
			size := bigReadHeader(cur)
			a.unlinkFree(prev, cur, next)
			return cur, size, true
		}
		prev = cur
		cur = next
	}
	return 0, 0, false
}

func (a *LargeAllocator) pushFree(addr uintptr) {
	bigWriteNext(addr, a.free)
	a.free = addr
}

func (a *LargeAllocator) unlinkFree(prev, cur, next uintptr) {
	if prev == 0 {
		a.free = next
	} else {
		bigWriteNext(prev, next)
	}
}

// Extend grows the allocator by additionalLength bytes appended
// immediately after its current end cursor. Per the external contract
// (spec.md §9), this allocator can only be extended contiguously — the
// caller is responsible for ensuring the new memory really does abut
// the allocator's current end.
func (a *LargeAllocator) Extend(additionalLength uintptr) {
	if additionalLength == 0 {
		return
	}
	newBlockStart := a.end
	newBlockSize := additionalLength
	a.end += additionalLength
	start, size := a.coalesce(newBlockStart, newBlockSize)
	bigWriteHeader(start, size)
	a.pushFree(start)
}

// usableSize returns (size, size): the large allocator is assumed
// tight, so the caller's requested size is also the usable size.
func (a *LargeAllocator) usableSize(l Layout) (int, int) {
	return l.Size, l.Size
}
