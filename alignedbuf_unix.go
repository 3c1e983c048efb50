// Copyright 2011 Evan Shaw. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE-MMAP-GO file.

// Modifications (c) 2017 The Memory Authors.

//go:build darwin || dragonfly || freebsd || linux || openbsd || solaris || netbsd

package kheap

import (
	"syscall"
)

// newAlignedBuffer obtains size bytes of real, page-aligned OS memory
// for tests and benchmarks to hand to NewHeap/newSlabClass, standing in
// for the page-aligned physical range a paging subsystem would hand a
// kernel allocator in production. It is test support, not part of the
// allocator itself — the allocator never calls the OS for memory on its
// own.
func newAlignedBuffer(size int) []byte {
	flags := syscall.MAP_PRIVATE | syscall.MAP_ANON
	prot := syscall.PROT_READ | syscall.PROT_WRITE
	b, err := syscall.Mmap(-1, 0, size, prot, flags)
	if err != nil {
		panic("kheap: mmap failed: " + err.Error())
	}
	return b
}

// freeAlignedBuffer releases a buffer obtained from newAlignedBuffer.
func freeAlignedBuffer(b []byte) {
	if len(b) == 0 {
		return
	}
	if err := syscall.Munmap(b); err != nil {
		panic("kheap: munmap failed: " + err.Error())
	}
}
