// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kheap

import "unsafe"

// bufAddr returns the address of a byte slice's backing array. b must
// be non-empty.
func bufAddr(b []byte) uintptr {
	return uintptr(unsafe.Pointer(&b[0]))
}
