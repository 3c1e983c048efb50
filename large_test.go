// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kheap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLargeOver(t *testing.T, size int) (*LargeAllocator, []byte) {
	t.Helper()
	buf := newAlignedBuffer(size)
	t.Cleanup(func() { freeAlignedBuffer(buf) })
	return newLargeAllocator(bufAddr(buf), uintptr(size)), buf
}

func TestLargeAllocateBasic(t *testing.T) {
	a, _ := newLargeOver(t, 64*1024)
	l := Layout{Size: 8192, Align: 8}
	p, err := a.Allocate(l)
	require.NoError(t, err)
	assert.Zero(t, p%uintptr(l.Align))
}

func TestLargeAllocateRespectsAlignment(t *testing.T) {
	a, _ := newLargeOver(t, 64*1024)
	l := Layout{Size: 5000, Align: 4096}
	p, err := a.Allocate(l)
	require.NoError(t, err)
	assert.Zero(t, p%4096, "pointer %#x not aligned to %d", p, l.Align)
}

func TestLargeDeallocateAllowsReuse(t *testing.T) {
	a, _ := newLargeOver(t, 64*1024)
	l := Layout{Size: 8192, Align: 8}

	p1, err := a.Allocate(l)
	require.NoError(t, err)
	a.Deallocate(p1, l)

	p2, err := a.Allocate(l)
	require.NoError(t, err)
	assert.Equal(t, p1, p2, "freed block should be reused by the next same-size allocation")
}

func TestLargeOutOfMemory(t *testing.T) {
	a, _ := newLargeOver(t, 16*1024)
	_, err := a.Allocate(Layout{Size: 32 * 1024, Align: 8})
	require.Error(t, err)
	var oom *ErrOutOfMemory
	assert.ErrorAs(t, err, &oom)
}

// TestLargeCoalesceRestoresCapacity frees two adjacent allocations and
// checks the merged space can satisfy a request neither one alone
// could have.
func TestLargeCoalesceRestoresCapacity(t *testing.T) {
	a, _ := newLargeOver(t, 32*1024)
	small := Layout{Size: 8000, Align: 8}

	p1, err := a.Allocate(small)
	require.NoError(t, err)
	p2, err := a.Allocate(small)
	require.NoError(t, err)

	a.Deallocate(p1, small)
	a.Deallocate(p2, small)

	big := Layout{Size: 15000, Align: 8}
	p3, err := a.Allocate(big)
	require.NoError(t, err)
	assert.NotZero(t, p3)
}

// TestLargeExtendContiguous is the §9 extend-from-end-cursor contract:
// Extend only ever grows the allocator immediately past its own end.
func TestLargeExtendContiguous(t *testing.T) {
	buf := newAlignedBuffer(32 * 1024)
	t.Cleanup(func() { freeAlignedBuffer(buf) })
	a := newLargeAllocator(bufAddr(buf), 16*1024)
	before := a.end

	a.Extend(16 * 1024)
	assert.Equal(t, before+16*1024, a.end)

	big := Layout{Size: 20000, Align: 8}
	p, err := a.Allocate(big)
	require.NoError(t, err)
	assert.NotZero(t, p)
}
