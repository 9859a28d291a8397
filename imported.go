package ncs

import (
	filter2 "pkg.world.dev/ncs/filter"
	"pkg.world.dev/ncs/types"
)

type (
	// EntityID is a single entity handle: 48 bits of id plus a 16-bit
	// generation that invalidates the handle on despawn.
	EntityID    = types.EntityID
	ComponentID = types.ComponentID
	ArchetypeID = types.ArchetypeID
	Generation  = types.Generation
)

var (
	All      = filter2.All
	And      = filter2.And
	Or       = filter2.Or
	Not      = filter2.Not
	Contains = filter2.Contains
	Exact    = filter2.Exact

	EncodeEntity = types.EncodeEntity
)
