package filter

import (
	"pkg.world.dev/ncs/types"
)

type all struct {
}

func All() ComponentFilter {
	return &all{}
}

func (f *all) MatchesComponents(_ []types.ComponentID) bool {
	return true
}
