package component

import (
	"reflect"

	"github.com/rotisserie/eris"

	"pkg.world.dev/ncs/types"
)

// ErrTooManyComponents is raised when the 16-bit component-id space runs out.
var ErrTooManyComponents = eris.New("component id space exhausted")

const maxComponents = int(^types.ComponentID(0))

// Registry owns the component-type mapping for one world. The first time a
// Go type is observed it is assigned the next free ComponentID together with
// its vtable. Ids are process-local and never stable across runs.
type Registry struct {
	ids     map[reflect.Type]types.ComponentID
	vtables []*VTable
}

// NewRegistry creates an empty component registry.
func NewRegistry() *Registry {
	return &Registry{
		ids:     make(map[reflect.Type]types.ComponentID, 16),
		vtables: make([]*VTable, 0, 16),
	}
}

// Register returns the id for t, assigning one on first sight.
// Running out of the 16-bit id space is a programmer error and panics.
func (r *Registry) Register(t reflect.Type) types.ComponentID {
	if id, ok := r.ids[t]; ok {
		return id
	}
	if len(r.vtables) > maxComponents {
		panic(ErrTooManyComponents)
	}
	id := types.ComponentID(len(r.vtables))
	r.ids[t] = id
	r.vtables = append(r.vtables, NewVTable(t))
	return id
}

// Lookup returns the id for t without registering it.
func (r *Registry) Lookup(t reflect.Type) (types.ComponentID, bool) {
	id, ok := r.ids[t]
	return id, ok
}

// VTable returns the dispatch table for a registered id, or nil.
func (r *Registry) VTable(id types.ComponentID) *VTable {
	if int(id) >= len(r.vtables) {
		return nil
	}
	return r.vtables[id]
}

// VTables returns every registered dispatch table in id order. Callers must
// not mutate the slice.
func (r *Registry) VTables() []*VTable {
	return r.vtables
}

// Count returns the number of registered component types.
func (r *Registry) Count() int {
	return len(r.vtables)
}
