// Package storage holds the type-erased containers the world is built on:
// columns of raw component storage and the archetype tables that group them.
package storage

import (
	"reflect"
	"unsafe"

	"pkg.world.dev/ncs/component"
)

// Column is a type-erased vector of component values. Storage is backed by a
// typed slice allocated through reflect so the GC keeps scanning pointer
// fields, while reads and writes go through a cached base pointer. A parallel
// bitmap records which rows hold live values; only constructed rows are
// destroyed or returned by Get. Pointer-free columns copy their whole region
// as raw bytes when resized or cloned.
type Column struct {
	vtable      *component.VTable
	ref         reflect.Value
	base        unsafe.Pointer
	cap         int
	constructed []bool
}

// NewColumn returns an unbound column with no storage.
func NewColumn() *Column {
	return &Column{}
}

// Bind installs the component vtable and clears any previous binding state.
// Storage is not allocated until the first Resize or construct.
func (c *Column) Bind(vt *component.VTable) {
	c.vtable = vt
	c.ref = reflect.Value{}
	c.base = nil
	c.cap = 0
	c.constructed = nil
}

// VTable returns the dispatch table the column was bound with, or nil.
func (c *Column) VTable() *component.VTable {
	return c.vtable
}

// Capacity returns the number of rows the column has storage for.
func (c *Column) Capacity() int {
	return c.cap
}

// ElemSize returns the byte size of one element, or 0 when unbound.
func (c *Column) ElemSize() uintptr {
	if c.vtable == nil {
		return 0
	}
	return c.vtable.Size
}

// IsConstructed reports whether row holds a live value.
func (c *Column) IsConstructed(row int) bool {
	return row >= 0 && row < len(c.constructed) && c.constructed[row]
}

// MarkConstructed flips the bitmap for row without touching the bytes. The
// caller must have already written a valid value there.
func (c *Column) MarkConstructed(row int) {
	c.constructed[row] = true
}

// RowPointer returns the address of row without any liveness check. The row
// must be inside capacity.
func (c *Column) RowPointer(row int) unsafe.Pointer {
	return unsafe.Add(c.base, uintptr(row)*c.vtable.Size)
}

// Get returns a pointer to the value at row, or nil when the row is out of
// range, has no storage, or was never constructed.
func (c *Column) Get(row int) unsafe.Pointer {
	if c.base == nil || row < 0 || row >= c.cap || !c.constructed[row] {
		return nil
	}
	return c.RowPointer(row)
}

// Resize grows the column to at least newCap rows, relocating every
// constructed value into the new storage. Shrinking is not supported; calls
// with newCap at or below the current capacity are no-ops.
func (c *Column) Resize(newCap int) {
	if newCap <= c.cap {
		return
	}
	newRef := reflect.MakeSlice(reflect.SliceOf(c.vtable.Type), newCap, newCap)
	newBase := unsafe.Pointer(newRef.Pointer())

	if c.base != nil {
		if c.vtable.Trivial() {
			memCopy(newBase, c.base, uintptr(c.cap)*c.vtable.Size)
		} else {
			for row := 0; row < c.cap; row++ {
				if !c.constructed[row] {
					continue
				}
				src := c.RowPointer(row)
				dst := unsafe.Add(newBase, uintptr(row)*c.vtable.Size)
				c.vtable.Copy(dst, src)
				c.vtable.Drop(src)
			}
		}
	}

	bitmap := make([]bool, newCap)
	copy(bitmap, c.constructed)

	c.ref = newRef
	c.base = newBase
	c.cap = newCap
	c.constructed = bitmap
}

// DestroyAt drops the value at row and clears its constructed bit. Rows that
// were never constructed are left alone.
func (c *Column) DestroyAt(row int) {
	if !c.IsConstructed(row) {
		return
	}
	if !c.vtable.Trivial() {
		c.vtable.Drop(c.RowPointer(row))
	}
	c.constructed[row] = false
}

// CopyRow copy-constructs the value at srcRow of src into dstRow of c. Both
// columns must be bound to the same vtable and srcRow must be constructed.
func (c *Column) CopyRow(dstRow int, src *Column, srcRow int) {
	c.ensure(dstRow)
	dst := c.RowPointer(dstRow)
	from := src.RowPointer(srcRow)
	if c.vtable.Trivial() {
		memCopy(dst, from, c.vtable.Size)
	} else {
		if c.constructed[dstRow] {
			c.vtable.Drop(dst)
		}
		c.vtable.Copy(dst, from)
	}
	c.constructed[dstRow] = true
}

// MoveRow relocates the value at srcRow into dstRow of the same column and
// destroys the source slot. Used by swap-remove.
func (c *Column) MoveRow(dstRow, srcRow int) {
	if dstRow == srcRow {
		return
	}
	if !c.IsConstructed(srcRow) {
		c.DestroyAt(dstRow)
		return
	}
	dst := c.RowPointer(dstRow)
	src := c.RowPointer(srcRow)
	if c.vtable.Trivial() {
		memCopy(dst, src, c.vtable.Size)
	} else {
		if c.constructed[dstRow] {
			c.vtable.Drop(dst)
		}
		c.vtable.Copy(dst, src)
		c.vtable.Drop(src)
	}
	c.constructed[dstRow] = true
	c.constructed[srcRow] = false
}

// Reset destroys every constructed value and releases the storage while
// keeping the binding, so the column can be refilled later.
func (c *Column) Reset() {
	for row := 0; row < c.cap; row++ {
		c.DestroyAt(row)
	}
	c.ref = reflect.Value{}
	c.base = nil
	c.cap = 0
	c.constructed = nil
}

// Clone returns a deep copy of the column: same binding, same capacity, every
// constructed value copy-constructed into fresh storage.
func (c *Column) Clone() *Column {
	out := NewColumn()
	out.Bind(c.vtable)
	if c.cap == 0 {
		return out
	}
	out.Resize(c.cap)
	if c.vtable.Trivial() {
		memCopy(out.base, c.base, uintptr(c.cap)*c.vtable.Size)
	} else {
		for row := 0; row < c.cap; row++ {
			if !c.constructed[row] {
				continue
			}
			c.vtable.Copy(out.RowPointer(row), c.RowPointer(row))
		}
	}
	copy(out.constructed, c.constructed)
	return out
}

// Take moves the column's storage into a new column and leaves the source
// empty and unbound, with capacity 0.
func (c *Column) Take() *Column {
	out := &Column{
		vtable:      c.vtable,
		ref:         c.ref,
		base:        c.base,
		cap:         c.cap,
		constructed: c.constructed,
	}
	c.vtable = nil
	c.ref = reflect.Value{}
	c.base = nil
	c.cap = 0
	c.constructed = nil
	return out
}

// ensure grows the column so row is addressable, doubling capacity as the
// backing vector would.
func (c *Column) ensure(row int) {
	if row < c.cap {
		return
	}
	newCap := c.cap * 2
	if newCap < row+1 {
		newCap = row + 1
	}
	c.Resize(newCap)
}

// ConstructAt writes value into row, growing storage as needed. The column
// must be bound to T's vtable.
func ConstructAt[T any](c *Column, row int, value T) {
	c.ensure(row)
	p := c.RowPointer(row)
	if !c.vtable.Trivial() && c.constructed[row] {
		c.vtable.Drop(p)
	}
	*(*T)(p) = value
	c.constructed[row] = true
}

// GetAs returns a typed pointer to the value at row, or nil when the row is
// not constructed.
func GetAs[T any](c *Column, row int) *T {
	p := c.Get(row)
	if p == nil {
		return nil
	}
	return (*T)(p)
}

func memCopy(dst, src unsafe.Pointer, size uintptr) {
	if size == 0 {
		return
	}
	copy(unsafe.Slice((*byte)(dst), size), unsafe.Slice((*byte)(src), size))
}
