// Copyright 2011 Evan Shaw. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE-MMAP-GO file.

// Modifications (c) 2017 The Memory Authors.

//go:build windows

package kheap

import (
	"os"
	"reflect"
	"syscall"
	"unsafe"
)

// handleMap recovers the file-mapping handle for an address returned by
// newAlignedBuffer, so freeAlignedBuffer can close it.
var handleMap = map[uintptr]syscall.Handle{}

// newAlignedBuffer obtains size bytes of real, page-aligned OS memory
// for tests and benchmarks to hand to NewHeap/newSlabClass. See the
// unix build's doc comment for why this exists only for tests.
func newAlignedBuffer(size int) []byte {
	flProtect := uint32(syscall.PAGE_READWRITE)
	dwDesiredAccess := uint32(syscall.FILE_MAP_WRITE)

	maxSizeHigh := uint32(int64(size) >> 32)
	maxSizeLow := uint32(int64(size) & 0xFFFFFFFF)
	h, errno := syscall.CreateFileMapping(syscall.Handle(^uintptr(0)), nil, flProtect, maxSizeHigh, maxSizeLow, nil)
	if h == 0 {
		panic(os.NewSyscallError("CreateFileMapping", errno).Error())
	}

	addr, errno := syscall.MapViewOfFile(h, dwDesiredAccess, 0, 0, uintptr(size))
	if addr == 0 {
		panic(os.NewSyscallError("MapViewOfFile", errno).Error())
	}

	handleMap[addr] = h
	var b []byte
	sh := (*reflect.SliceHeader)(unsafe.Pointer(&b))
	sh.Data = addr
	sh.Len = size
	sh.Cap = size
	return b
}

// freeAlignedBuffer releases a buffer obtained from newAlignedBuffer.
func freeAlignedBuffer(b []byte) {
	if len(b) == 0 {
		return
	}
	addr := uintptr(unsafe.Pointer(&b[0]))
	if err := syscall.UnmapViewOfFile(addr); err != nil {
		panic(err.Error())
	}
	if h, ok := handleMap[addr]; ok {
		delete(handleMap, addr)
		syscall.CloseHandle(h)
	}
}
