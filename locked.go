// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kheap

import (
	"runtime"
	"sync/atomic"
)

// SpinLock is a busy-wait, non-reentrant mutual-exclusion primitive.
// Unlike sync.Mutex it never parks the calling goroutine — Lock spins
// until it wins the compare-and-swap, backing off with runtime.Gosched
// between attempts. It exists because spec.md §5 requires a lock that
// does not suspend: the allocator may be re-entered from an interrupt
// handler, and a parking lock would deadlock a holder that gets
// preempted by its own unlock path.
//
// SpinLock's zero value is unlocked and ready to use. It is not
// reentrant: a goroutine that calls Lock while already holding the lock
// will spin forever.
type SpinLock struct {
	held atomic.Bool
}

// Lock spins until the lock is acquired.
func (s *SpinLock) Lock() {
	for !s.held.CompareAndSwap(false, true) {
		runtime.Gosched()
	}
}

// Unlock releases the lock. Calling Unlock on an already-unlocked
// SpinLock, or from a goroutine that does not hold it, is undefined
// behaviour.
func (s *SpinLock) Unlock() {
	s.held.Store(false)
}

// nullPtr is the sentinel the global-allocator surface returns on
// failure: the zero address, never a valid block address since no
// caller-supplied heap range may include address 0.
const nullPtr = uintptr(0)

// LockedHeap wraps an optional Heap behind a SpinLock, serialising all
// access and exposing the global-allocator ABI the rest of a kernel
// binds to.
//
// States: empty (the zero value, or the result of Empty()) has no Heap
// and fails every operation with a panic, except Dealloc of nullPtr,
// which is a no-op; populated (the result of New,
// or Empty followed by Init) delegates to its Heap under the lock. The
// empty-to-populated transition is one-shot: calling Init twice panics.
// There is no populated-to-empty transition.
type LockedHeap struct {
	lock SpinLock
	heap *Heap
}

// Empty returns an uninitialised LockedHeap. Every allocation or
// deallocation attempt against it, other than Dealloc of nullPtr, panics
// until Init is called.
func Empty() *LockedHeap {
	return &LockedHeap{}
}

// New builds a LockedHeap already populated with a Heap over
// [heapStart, heapStart+heapSize). See NewHeap for preconditions.
func New(heapStart, heapSize uintptr) *LockedHeap {
	return &LockedHeap{heap: NewHeap(heapStart, heapSize)}
}

// Init populates an empty LockedHeap with a Heap over
// [heapStart, heapStart+heapSize). It panics if the LockedHeap has
// already been populated — the transition is one-shot, matching
// spec.md §4.4's "no re-initialisation contract" note: callers must
// initialise an allocator exactly once, before publishing it to other
// threads.
func (l *LockedHeap) Init(heapStart, heapSize uintptr) {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.heap != nil {
		panic("kheap: LockedHeap already initialised")
	}
	l.heap = NewHeap(heapStart, heapSize)
}

// mustHeap returns the wrapped Heap or panics if the LockedHeap is
// still empty. Callers must hold l.lock.
func (l *LockedHeap) mustHeap() *Heap {
	if l.heap == nil {
		panic("kheap: use of uninitialised LockedHeap")
	}
	return l.heap
}

// Alloc acquires the lock, delegates to the wrapped Heap, and returns
// the resulting pointer, or nullPtr on OutOfMemory. It panics if the
// LockedHeap is uninitialised.
func (l *LockedHeap) Alloc(layout Layout) uintptr {
	l.lock.Lock()
	defer l.lock.Unlock()
	p, err := l.mustHeap().Allocate(layout)
	if err != nil {
		return nullPtr
	}
	return p
}

// Dealloc acquires the lock and delegates to the wrapped Heap.
// Deallocating nullPtr is a no-op, matching the global-allocator ABI's
// "no-op on null" contract, even on an uninitialised LockedHeap. For
// any other ptr it panics if the LockedHeap is uninitialised.
func (l *LockedHeap) Dealloc(ptr uintptr, layout Layout) {
	if ptr == nullPtr {
		return
	}
	l.lock.Lock()
	defer l.lock.Unlock()
	l.mustHeap().Deallocate(ptr, layout)
}

// UsableSize acquires the lock and delegates to the wrapped Heap. It
// panics if the LockedHeap is uninitialised.
func (l *LockedHeap) UsableSize(layout Layout) (int, int) {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.mustHeap().UsableSize(layout)
}

// Grow acquires the lock and delegates growth to the named sub-
// allocator of the wrapped Heap. It panics if the LockedHeap is
// uninitialised.
func (l *LockedHeap) Grow(extraStart, extraLength uintptr, which ClassTag) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.mustHeap().Grow(extraStart, extraLength, which)
}
