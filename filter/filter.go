// Package filter expresses archetype shape predicates as composable values.
package filter

import (
	"pkg.world.dev/ncs/types"
)

// ComponentFilter decides whether an archetype's component set matches.
type ComponentFilter interface {
	// MatchesComponents returns true if the component set matches the filter.
	MatchesComponents(components []types.ComponentID) bool
}
