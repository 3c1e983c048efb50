// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kheap

// bigAllocator is the external collaborator contract spec.md §4.3
// describes: Heap relies on nothing from its large-object sub-allocator
// beyond these four operations. *LargeAllocator is the concrete
// implementation this package ships (see large.go); tests substitute a
// generated mock to exercise Heap's routing and delegation in isolation
// from any particular large-allocator algorithm.
type bigAllocator interface {
	Allocate(l Layout) (uintptr, error)
	Deallocate(ptr uintptr, l Layout)
	Extend(additionalLength uintptr)
	usableSize(l Layout) (int, int)
}

// Heap is a composite allocator owning seven SlabClass instances
// (block sizes 64, 128, 256, 512, 1024, 2048 and 4096 bytes) and one
// large-object sub-allocator, plus the routing logic that maps each
// request to exactly one of them.
//
// Heap is not safe for concurrent use; LockedHeap supplies that.
type Heap struct {
	slabs [7]*SlabClass
	large bigAllocator
}

// NewHeap builds a Heap over [heapStart, heapStart+heapSize), splitting
// the range into NumSlabs equal sub-ranges handed, in order, to the
// seven SlabClass instances (64..4096) and then the LargeAllocator.
//
// This function is unsafe in spirit: the caller attests that
// [heapStart, heapStart+heapSize) is valid, page-aligned memory that
// will not be accessed through any other path for the Heap's lifetime.
//
// Preconditions (violations panic):
//   - heapStart is aligned to MinSlabSize (4096, the largest block size);
//   - heapSize >= MinHeapSize;
//   - heapSize is a multiple of MinHeapSize.
func NewHeap(heapStart, heapSize uintptr) *Heap {
	if heapStart%MinSlabSize != 0 {
		panic("kheap: heap start must be aligned to 4096")
	}
	if heapSize < MinHeapSize {
		panic("kheap: heap size below MinHeapSize")
	}
	if heapSize%MinHeapSize != 0 {
		panic("kheap: heap size must be a multiple of MinHeapSize")
	}

	subSize := heapSize / NumSlabs
	h := &Heap{}
	for i, bs := range slabSizes {
		sub := heapStart + uintptr(i)*subSize
		h.slabs[i] = newSlabClass(sub, subSize, bs)
	}
	largeStart := heapStart + uintptr(len(slabSizes))*subSize
	h.large = newLargeAllocator(largeStart, subSize)
	return h
}

// layoutToAllocator exposes the package-level pure routing function as a
// Heap method, per the external interface in spec.md §6.
func (h *Heap) layoutToAllocator(l Layout) ClassTag {
	return layoutToAllocator(l)
}

func (h *Heap) slabFor(tag ClassTag) *SlabClass {
	return h.slabs[tag]
}

// Allocate routes l to the appropriate sub-allocator and delegates to
// it. The returned pointer is at least l.Size bytes and at least
// l.Align-aligned.
func (h *Heap) Allocate(l Layout) (uintptr, error) {
	tag := layoutToAllocator(l)
	if tag == Large {
		return h.large.Allocate(l)
	}
	return h.slabFor(tag).Allocate()
}

// Deallocate routes l to the same sub-allocator Allocate would have used
// for it and delegates. Callers must present the same Layout used at
// Allocate; the allocator does not recover it from ptr alone.
func (h *Heap) Deallocate(ptr uintptr, l Layout) {
	tag := layoutToAllocator(l)
	if tag == Large {
		h.large.Deallocate(ptr, l)
		return
	}
	h.slabFor(tag).Deallocate(ptr)
}

// UsableSize returns (min, max) usable bytes for a request with layout
// l: (size, blockSize) for slab classes, (size, size) for the large
// allocator, which is assumed tight.
func (h *Heap) UsableSize(l Layout) (int, int) {
	tag := layoutToAllocator(l)
	if tag == Large {
		return h.large.usableSize(l)
	}
	return l.Size, h.slabFor(tag).blockSize
}

// Grow delegates growth to the sub-allocator named by which. For slab
// classes, the full [extraStart, extraStart+extraLength) range is
// threaded into the class's free list. For the large allocator, only
// extraLength is used — it tracks its own end cursor and can only be
// extended contiguously immediately after that cursor (spec.md §9).
func (h *Heap) Grow(extraStart, extraLength uintptr, which ClassTag) {
	if which == Large {
		h.large.Extend(extraLength)
		return
	}
	h.slabFor(which).Grow(extraStart, extraLength)
}
