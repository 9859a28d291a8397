// Package component assigns world-local ids to Go component types and builds
// the per-type dispatch tables the type-erased columns operate through.
package component

import (
	"reflect"
	"unsafe"
)

// CopyFn copy-constructs one element from src into dst. Both pointers must
// address properly aligned storage of the vtable's type.
type CopyFn func(dst, src unsafe.Pointer)

// DropFn destroys one element in place, releasing anything it references.
type DropFn func(p unsafe.Pointer)

// VTable is the per-component-type dispatch table installed into columns at
// bind time. Copy and Drop are nil for pointer-free types, which tells the
// column to fall back to raw byte copies and to skip destruction entirely.
type VTable struct {
	Type reflect.Type
	Size uintptr
	Copy CopyFn
	Drop DropFn
}

// Trivial reports whether the column may treat elements as plain bytes.
func (v *VTable) Trivial() bool {
	return v.Copy == nil && v.Drop == nil
}

// Name returns the Go type name used in logs and debug dumps.
func (v *VTable) Name() string {
	return v.Type.String()
}

// NewVTable builds the dispatch table for t. Types that contain no Go
// pointers get nil thunks; everything else copies and drops through typed
// reflect operations so the GC observes every pointer write.
func NewVTable(t reflect.Type) *VTable {
	vt := &VTable{
		Type: t,
		Size: t.Size(),
	}
	if hasPointers(t) {
		vt.Copy = func(dst, src unsafe.Pointer) {
			reflect.NewAt(t, dst).Elem().Set(reflect.NewAt(t, src).Elem())
		}
		vt.Drop = func(p unsafe.Pointer) {
			reflect.NewAt(t, p).Elem().SetZero()
		}
	}
	return vt
}

// hasPointers reports whether values of t embed Go pointers anywhere, which
// decides between byte-copy and typed-copy column behavior.
func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Ptr, reflect.UnsafePointer, reflect.Map, reflect.Chan,
		reflect.Slice, reflect.String, reflect.Interface, reflect.Func:
		return true
	case reflect.Array:
		return t.Len() > 0 && hasPointers(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
