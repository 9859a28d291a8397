package storage

import (
	"pkg.world.dev/ncs/component"
	"pkg.world.dev/ncs/types"
)

const entitySeedCapacity = 16

// Archetype groups every entity that carries exactly the same component set.
// Component data lives in parallel columns indexed by the same row; the
// entities vector and its inverse row map tie rows back to entity ids.
type Archetype struct {
	id         types.ArchetypeID
	components []types.ComponentID
	columns    map[types.ComponentID]*Column
	entities   []uint64
	rows       map[uint64]int
	count      int

	addEdge    map[types.ComponentID]*Archetype
	removeEdge map[types.ComponentID]*Archetype

	flags types.DirtyFlags
}

// NewArchetype builds a table for the given sorted component set, binding one
// column per component through the registry. The id is derived from the set.
func NewArchetype(components []types.ComponentID, reg *component.Registry) *Archetype {
	a := &Archetype{
		id:         types.ArchHash(components),
		components: components,
		columns:    make(map[types.ComponentID]*Column, len(components)),
		rows:       make(map[uint64]int),
		addEdge:    make(map[types.ComponentID]*Archetype),
		removeEdge: make(map[types.ComponentID]*Archetype),
	}
	for _, c := range components {
		col := NewColumn()
		col.Bind(reg.VTable(c))
		a.columns[c] = col
	}
	return a
}

// ID returns the archetype's identity hash.
func (a *Archetype) ID() types.ArchetypeID {
	return a.id
}

// Components returns the sorted component-id set. Callers must not mutate it.
func (a *Archetype) Components() []types.ComponentID {
	return a.components
}

// Has reports whether the archetype's set contains c.
func (a *Archetype) Has(c types.ComponentID) bool {
	for _, id := range a.components {
		if id == c {
			return true
		}
		if id > c {
			return false
		}
	}
	return false
}

// Column returns the column for c, or nil when c is not in the set.
func (a *Archetype) Column(c types.ComponentID) *Column {
	return a.columns[c]
}

// EntityCount returns the number of live rows.
func (a *Archetype) EntityCount() int {
	return a.count
}

// EntityAt returns the entity id stored at row. The row must be live.
func (a *Archetype) EntityAt(row int) uint64 {
	return a.entities[row]
}

// RowOf returns the row holding id, if any.
func (a *Archetype) RowOf(id uint64) (int, bool) {
	row, ok := a.rows[id]
	return row, ok
}

// Flags returns the dirty flags accumulated since the last cache refresh.
func (a *Archetype) Flags() types.DirtyFlags {
	return a.flags
}

// MarkUpdated records an in-place component write.
func (a *Archetype) MarkUpdated() {
	a.flags |= types.FlagUpdated
}

// ClearFlag drops one dirty flag after a cache consumed it.
func (a *Archetype) ClearFlag(f types.DirtyFlags) {
	a.flags = a.flags.Clear(f)
}

// ClearFlags drops every dirty flag.
func (a *Archetype) ClearFlags() {
	a.flags = types.FlagNone
}

// Append reserves the next row for id, growing the entity vector and every
// column together when capacity runs out. The new row's column slots are
// unconstructed.
func (a *Archetype) Append(id uint64) int {
	row := a.count
	a.count++
	if row >= len(a.entities) {
		newCap := len(a.entities) * 2
		if newCap < entitySeedCapacity {
			newCap = entitySeedCapacity
		}
		grown := make([]uint64, newCap)
		copy(grown, a.entities)
		a.entities = grown
		for _, col := range a.columns {
			col.Resize(newCap)
		}
	}
	a.entities[row] = id
	a.rows[id] = row
	a.flags |= types.FlagAdded
	return row
}

// Remove swap-removes id's row. The departing row's component slots must
// have been destroyed by the caller already; the tail row is relocated into
// the hole so rows stay contiguous. When a relocation happened, the id of the
// entity that changed rows is returned so the caller can resync its location
// record.
func (a *Archetype) Remove(id uint64) (uint64, bool) {
	row, ok := a.rows[id]
	if !ok {
		return 0, false
	}
	var moved uint64
	var relocated bool
	last := a.count - 1
	if row != last {
		for _, col := range a.columns {
			col.MoveRow(row, last)
		}
		moved = a.entities[last]
		a.entities[row] = moved
		a.rows[moved] = row
		relocated = true
	}
	a.count--
	delete(a.rows, id)
	a.flags |= types.FlagRemoved
	return moved, relocated
}

// MoveTo migrates id's row into dest, copying every component the two sets
// share, then swap-removes the source row. Returns the destination row plus
// the id of the source entity that was relocated by the swap-remove, if any.
func (a *Archetype) MoveTo(dest *Archetype, id uint64) (int, uint64, bool) {
	row, ok := a.rows[id]
	if !ok {
		return -1, 0, false
	}
	destRow := dest.Append(id)
	for _, c := range a.components {
		destCol := dest.columns[c]
		if destCol == nil {
			continue
		}
		srcCol := a.columns[c]
		if !srcCol.IsConstructed(row) {
			continue
		}
		destCol.CopyRow(destRow, srcCol, row)
		srcCol.DestroyAt(row)
	}
	moved, relocated := a.Remove(id)
	return destRow, moved, relocated
}

// DestroyRow destroys every constructed component slot at row without
// touching the entity bookkeeping. Used before swap-remove on despawn.
func (a *Archetype) DestroyRow(row int) {
	for _, col := range a.columns {
		col.DestroyAt(row)
	}
}

// Dump captures the archetype's shape for logs and debug endpoints.
func (a *Archetype) Dump() ArchetypeDump {
	names := make([]string, 0, len(a.components))
	for _, c := range a.components {
		names = append(names, a.columns[c].VTable().Name())
	}
	return ArchetypeDump{
		ID:          uint64(a.id),
		Components:  names,
		EntityCount: a.count,
		Capacity:    len(a.entities),
		Flags:       uint8(a.flags),
	}
}

// ArchetypeDump is the JSON-friendly snapshot produced by Dump.
type ArchetypeDump struct {
	ID          uint64   `json:"id"`
	Components  []string `json:"components"`
	EntityCount int      `json:"entity_count"`
	Capacity    int      `json:"capacity"`
	Flags       uint8    `json:"flags"`
}
