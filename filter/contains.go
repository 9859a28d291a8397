package filter

import (
	"pkg.world.dev/ncs/types"
)

type contains struct {
	components []types.ComponentID
}

// Contains matches archetypes that contain all the components specified.
func Contains(components ...types.ComponentID) ComponentFilter {
	return &contains{components: components}
}

func (f *contains) MatchesComponents(components []types.ComponentID) bool {
	for _, c := range f.components {
		if !MatchComponent(components, c) {
			return false
		}
	}
	return true
}
