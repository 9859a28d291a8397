package storage_test

import (
	"reflect"
	"testing"

	"pkg.world.dev/ncs/assert"
	"pkg.world.dev/ncs/component"
	"pkg.world.dev/ncs/storage"
	"pkg.world.dev/ncs/types"
)

type health struct{ HP int32 }

type tag struct{ Value string }

func registryWith(t *testing.T, specimens ...any) *component.Registry {
	t.Helper()
	reg := component.NewRegistry()
	for _, s := range specimens {
		reg.Register(reflect.TypeOf(s))
	}
	return reg
}

func TestArchetypeAppendGrowsEverything(t *testing.T) {
	reg := registryWith(t, health{}, tag{})
	a := storage.NewArchetype([]types.ComponentID{0, 1}, reg)

	for i := 0; i < 17; i++ {
		row := a.Append(uint64(i))
		assert.Equal(t, i, row)
	}
	assert.Equal(t, 17, a.EntityCount())
	assert.Assert(t, a.Column(0).Capacity() >= 17)
	assert.Assert(t, a.Column(1).Capacity() >= 17)
	assert.True(t, a.Flags().Has(types.FlagAdded))

	row, ok := a.RowOf(16)
	assert.True(t, ok)
	assert.Equal(t, 16, row)
	assert.Equal(t, uint64(16), a.EntityAt(16))
}

func TestArchetypeRootAppendsWithoutColumns(t *testing.T) {
	reg := component.NewRegistry()
	root := storage.NewArchetype(nil, reg)
	assert.Equal(t, types.ArchetypeID(0), root.ID())

	row := root.Append(42)
	assert.Equal(t, 0, row)
	assert.Equal(t, 1, root.EntityCount())
}

func TestArchetypeSwapRemoveRelocatesTail(t *testing.T) {
	reg := registryWith(t, tag{})
	a := storage.NewArchetype([]types.ComponentID{0}, reg)

	for i, name := range []string{"a", "b", "c"} {
		row := a.Append(uint64(i))
		storage.ConstructAt(a.Column(0), row, tag{Value: name})
	}

	// Despawn semantics: destroy the row first, then swap-remove.
	row, _ := a.RowOf(0)
	a.DestroyRow(row)
	moved, relocated := a.Remove(0)
	assert.True(t, relocated)
	assert.Equal(t, uint64(2), moved)

	assert.Equal(t, 2, a.EntityCount())
	assert.True(t, a.Flags().Has(types.FlagRemoved))

	// Entity 2 moved into row 0 with its value intact.
	movedRow, ok := a.RowOf(2)
	assert.True(t, ok)
	assert.Equal(t, 0, movedRow)
	assert.Equal(t, "c", storage.GetAs[tag](a.Column(0), 0).Value)
	assert.Equal(t, "b", storage.GetAs[tag](a.Column(0), 1).Value)
	assert.False(t, a.Column(0).IsConstructed(2))

	_, ok = a.RowOf(0)
	assert.False(t, ok)
}

func TestArchetypeRemoveLastRow(t *testing.T) {
	reg := registryWith(t, health{})
	a := storage.NewArchetype([]types.ComponentID{0}, reg)
	row := a.Append(7)
	storage.ConstructAt(a.Column(0), row, health{HP: 9})

	a.DestroyRow(row)
	_, relocated := a.Remove(7)
	assert.False(t, relocated)
	assert.Equal(t, 0, a.EntityCount())

	// Removing an unknown entity is a no-op.
	_, relocated = a.Remove(99)
	assert.False(t, relocated)
	assert.Equal(t, 0, a.EntityCount())
}

func TestArchetypeMoveToCopiesSharedColumns(t *testing.T) {
	reg := registryWith(t, health{}, tag{})
	src := storage.NewArchetype([]types.ComponentID{0}, reg)
	dst := storage.NewArchetype([]types.ComponentID{0, 1}, reg)

	row := src.Append(1)
	storage.ConstructAt(src.Column(0), row, health{HP: 50})

	destRow, _, relocated := src.MoveTo(dst, 1)
	assert.Equal(t, 0, destRow)
	assert.False(t, relocated)
	assert.Equal(t, 0, src.EntityCount())
	assert.Equal(t, 1, dst.EntityCount())
	assert.Equal(t, health{HP: 50}, *storage.GetAs[health](dst.Column(0), destRow))
	// The new component's slot stays unconstructed until someone writes it.
	assert.False(t, dst.Column(1).IsConstructed(destRow))
}

func TestArchetypeMoveToDropsUnsharedColumns(t *testing.T) {
	reg := registryWith(t, health{}, tag{})
	src := storage.NewArchetype([]types.ComponentID{0, 1}, reg)
	dst := storage.NewArchetype([]types.ComponentID{0}, reg)

	row := src.Append(1)
	storage.ConstructAt(src.Column(0), row, health{HP: 3})
	storage.ConstructAt(src.Column(1), row, tag{Value: "gone"})

	// Component 1 is not in dst; destroy it before migrating.
	src.Column(1).DestroyAt(row)
	destRow, _, _ := src.MoveTo(dst, 1)

	assert.Equal(t, health{HP: 3}, *storage.GetAs[health](dst.Column(0), destRow))
	assert.Nil(t, dst.Column(1))
}

func TestArchetypeDump(t *testing.T) {
	reg := registryWith(t, health{}, tag{})
	a := storage.NewArchetype([]types.ComponentID{0, 1}, reg)
	a.Append(1)

	dump := a.Dump()
	assert.Equal(t, uint64(a.ID()), dump.ID)
	assert.Len(t, dump.Components, 2)
	assert.Equal(t, 1, dump.EntityCount)
	assert.Equal(t, 16, dump.Capacity)
}

func TestGraphFindWithBuildsAndCachesEdges(t *testing.T) {
	reg := registryWith(t, health{}, tag{})
	g := storage.NewGraph(reg)
	root := g.Root()
	assert.Equal(t, 1, g.Count())

	withHealth := g.FindWith(root, 0)
	assert.DeepEqual(t, []types.ComponentID{0}, withHealth.Components())
	assert.Equal(t, 2, g.Count())

	// Cached edge: same pointer, no new archetype.
	assert.Assert(t, g.FindWith(root, 0) == withHealth)
	assert.Equal(t, 2, g.Count())

	// Already-present component returns the source itself.
	assert.Assert(t, g.FindWith(withHealth, 0) == withHealth)

	both := g.FindWith(withHealth, 1)
	assert.DeepEqual(t, []types.ComponentID{0, 1}, both.Components())
	assert.Equal(t, types.ArchHash([]types.ComponentID{0, 1}), both.ID())
}

func TestGraphFindWithoutReturnsToSmallerShape(t *testing.T) {
	reg := registryWith(t, health{}, tag{})
	g := storage.NewGraph(reg)
	both := g.FindWith(g.FindWith(g.Root(), 0), 1)

	withTag := g.FindWithout(both, 0)
	assert.DeepEqual(t, []types.ComponentID{1}, withTag.Components())

	// Absent component returns the source itself.
	assert.Assert(t, g.FindWithout(withTag, 0) == withTag)

	// Removing the last component lands on the permanent root.
	assert.Assert(t, g.FindWithout(withTag, 1) == g.Root())
}

func TestGraphShapeIdentityIsOrderIndependent(t *testing.T) {
	reg := registryWith(t, health{}, tag{})
	g := storage.NewGraph(reg)

	viaHealthFirst := g.FindWith(g.FindWith(g.Root(), 0), 1)
	viaTagFirst := g.FindWith(g.FindWith(g.Root(), 1), 0)
	assert.Assert(t, viaHealthFirst == viaTagFirst)
}
