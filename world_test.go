package ncs_test

import (
	"testing"

	"pkg.world.dev/ncs"
	"pkg.world.dev/ncs/assert"
	"pkg.world.dev/ncs/filter"
	"pkg.world.dev/ncs/types"
)

type Position struct{ X, Y, Z float32 }

type Velocity struct{ X, Y, Z float32 }

type Health struct{ Value int32 }

type Name struct{ Value string }

func newTestWorld(t *testing.T) *ncs.World {
	t.Helper()
	world, err := ncs.NewWorld()
	assert.NilError(t, err)
	t.Cleanup(func() {
		assert.NilError(t, world.Close())
	})
	return world
}

func TestEntityHandlesAreUnique(t *testing.T) {
	world := newTestWorld(t)

	seen := make(map[uint64]bool)
	for i := 0; i < 100; i++ {
		e := world.Entity()
		assert.False(t, seen[e.ID()])
		seen[e.ID()] = true
		assert.Equal(t, types.Generation(0), e.Generation())
	}
	assert.Equal(t, 100, world.EntityCount())
}

func TestSetGetRoundTrip(t *testing.T) {
	world := newTestWorld(t)
	e := world.Entity()

	ncs.Set(world, e, Position{X: 1, Y: 2, Z: 3})

	got := ncs.Get[Position](world, e)
	assert.NotNil(t, got)
	assert.Equal(t, Position{X: 1, Y: 2, Z: 3}, *got)
	assert.True(t, ncs.Has[Position](world, e))
	assert.False(t, ncs.Has[Velocity](world, e))
	assert.Nil(t, ncs.Get[Velocity](world, e))
}

func TestSetIsChainable(t *testing.T) {
	world := newTestWorld(t)
	e := world.Entity()

	ncs.Set(ncs.Set(world, e, Position{X: 1}), e, Velocity{X: 2})
	assert.True(t, ncs.Has[Position](world, e))
	assert.True(t, ncs.Has[Velocity](world, e))
}

func TestSetOverwritesInPlace(t *testing.T) {
	world := newTestWorld(t)
	e := world.Entity()

	ncs.Set(world, e, Health{Value: 10})
	archetypes := world.ArchetypeCount()

	ncs.Set(world, e, Health{Value: 20})
	assert.Equal(t, int32(20), ncs.Get[Health](world, e).Value)
	assert.Equal(t, archetypes, world.ArchetypeCount())
}

func TestSetPointerBearingComponent(t *testing.T) {
	world := newTestWorld(t)
	e := world.Entity()

	ncs.Set(world, e, Name{Value: "alice"})
	ncs.Set(world, e, Position{X: 1})
	assert.Equal(t, "alice", ncs.Get[Name](world, e).Value)

	ncs.Set(world, e, Name{Value: "bob"})
	assert.Equal(t, "bob", ncs.Get[Name](world, e).Value)
}

func TestRemoveReturnsToPreviousShape(t *testing.T) {
	world := newTestWorld(t)
	e := world.Entity()

	ncs.Set(world, e, Position{X: 1})
	ncs.Set(world, e, Velocity{X: 2})
	archetypes := world.ArchetypeCount()

	ncs.Remove[Velocity](world, e)
	assert.False(t, ncs.Has[Velocity](world, e))
	assert.True(t, ncs.Has[Position](world, e))
	assert.Equal(t, Position{X: 1}, *ncs.Get[Position](world, e))

	// The round trip reuses cached graph edges, no new archetypes appear.
	ncs.Set(world, e, Velocity{X: 3})
	ncs.Remove[Velocity](world, e)
	assert.Equal(t, archetypes, world.ArchetypeCount())
}

func TestRemoveAbsentComponentIsNoOp(t *testing.T) {
	world := newTestWorld(t)
	e := world.Entity()
	ncs.Set(world, e, Position{X: 1})

	ncs.Remove[Health](world, e)
	assert.True(t, ncs.Has[Position](world, e))

	// Removing from a component-less entity is fine too.
	empty := world.Entity()
	ncs.Remove[Position](world, empty)
}

func TestDespawnRecyclesIDWithBumpedGeneration(t *testing.T) {
	world := newTestWorld(t)
	e := world.Entity()
	ncs.Set(world, e, Position{X: 1})

	world.Despawn(e)
	assert.Equal(t, 0, world.EntityCount())
	assert.False(t, world.Alive(e))
	assert.False(t, ncs.Has[Position](world, e))
	assert.Nil(t, ncs.Get[Position](world, e))

	recycled := world.Entity()
	assert.Equal(t, e.ID(), recycled.ID())
	assert.Equal(t, e.Generation()+1, recycled.Generation())
	assert.True(t, world.Alive(recycled))

	// The recycled entity starts clean.
	assert.False(t, ncs.Has[Position](world, recycled))
}

func TestStaleHandleMutationsAreNoOps(t *testing.T) {
	world := newTestWorld(t)
	e := world.Entity()
	world.Despawn(e)
	recycled := world.Entity()

	ncs.Set(world, e, Position{X: 9})
	assert.False(t, ncs.Has[Position](world, e))
	assert.False(t, ncs.Has[Position](world, recycled))

	ncs.Remove[Position](world, e)
	world.Despawn(e)
	assert.True(t, world.Alive(recycled))
}

func TestDespawnMiddleEntityKeepsOthersIntact(t *testing.T) {
	world := newTestWorld(t)
	e1 := world.Entity()
	e2 := world.Entity()
	e3 := world.Entity()
	ncs.Set(world, e1, Name{Value: "one"})
	ncs.Set(world, e2, Name{Value: "two"})
	ncs.Set(world, e3, Name{Value: "three"})

	world.Despawn(e2)

	assert.Equal(t, "one", ncs.Get[Name](world, e1).Value)
	assert.Equal(t, "three", ncs.Get[Name](world, e3).Value)
	assert.Equal(t, 2, world.EntityCount())
}

func TestGenerationWrapsAround(t *testing.T) {
	world := newTestWorld(t)

	e := world.Entity()
	for i := 0; i < int(types.MaxGeneration); i++ {
		world.Despawn(e)
		e = world.Entity()
	}
	assert.Equal(t, types.MaxGeneration, e.Generation())

	world.Despawn(e)
	e = world.Entity()
	assert.Equal(t, types.Generation(0), e.Generation())
}

func TestRegisterComponentOrdersIDs(t *testing.T) {
	world := newTestWorld(t)
	posID := ncs.RegisterComponent[Position](world)
	velID := ncs.RegisterComponent[Velocity](world)
	assert.Equal(t, types.ComponentID(0), posID)
	assert.Equal(t, types.ComponentID(1), velID)
	assert.Equal(t, posID, ncs.RegisterComponent[Position](world))

	infos := world.RegisteredComponents()
	assert.Len(t, infos, 2)
	assert.Equal(t, "ncs_test.Position", infos[0].Name)
}

func TestSearchMatchesFilters(t *testing.T) {
	world := newTestWorld(t)
	posID := ncs.RegisterComponent[Position](world)
	velID := ncs.RegisterComponent[Velocity](world)

	e1 := world.Entity()
	ncs.Set(world, e1, Position{X: 1})
	e2 := world.Entity()
	ncs.Set(ncs.Set(world, e2, Position{X: 2}), e2, Velocity{X: 3})

	assert.Len(t, world.Search(filter.Contains(posID)), 2)
	assert.Len(t, world.Search(filter.Exact(posID, velID)), 1)
	assert.Len(t, world.Search(filter.Not(filter.Contains(velID))), 1)

	both := world.Search(filter.Contains(posID, velID))
	assert.Len(t, both, 1)
	assert.Equal(t, e2, both[0])
}

func TestDumpStateAndEntityLogging(t *testing.T) {
	world := newTestWorld(t)
	e := world.Entity()
	ncs.Set(world, e, Position{X: 1})

	world.LogEntity(e)
	assert.NilError(t, world.DumpState())
}

func TestWorldIDsAreDistinct(t *testing.T) {
	a := newTestWorld(t)
	b := newTestWorld(t)
	assert.Assert(t, a.ID() != b.ID())
}
