package filter

import (
	"pkg.world.dev/ncs/types"
)

func Not(filter ComponentFilter) ComponentFilter {
	return &not{filter: filter}
}

type not struct {
	filter ComponentFilter
}

func (f *not) MatchesComponents(components []types.ComponentID) bool {
	return !f.filter.MatchesComponents(components)
}
