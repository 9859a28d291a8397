package filter

import (
	"pkg.world.dev/ncs/types"
)

// MatchComponent returns true if the given component set contains c.
func MatchComponent(components []types.ComponentID, c types.ComponentID) bool {
	for _, id := range components {
		if id == c {
			return true
		}
	}
	return false
}
