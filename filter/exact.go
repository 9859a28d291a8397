package filter

import (
	"pkg.world.dev/ncs/types"
)

type exact struct {
	components []types.ComponentID
}

// Exact matches archetypes that contain exactly the components specified.
func Exact(components ...types.ComponentID) ComponentFilter {
	return exact{
		components: components,
	}
}

func (f exact) MatchesComponents(components []types.ComponentID) bool {
	if len(components) != len(f.components) {
		return false
	}
	for _, c := range components {
		if !MatchComponent(f.components, c) {
			return false
		}
	}
	return true
}
