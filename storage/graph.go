package storage

import (
	"sort"

	"pkg.world.dev/ncs/component"
	"pkg.world.dev/ncs/types"
)

// Graph owns every archetype of one world and the lazily built edges between
// them. Edges are write-once: the first transition from a shape computes the
// destination set, the rest hit the cached edge.
type Graph struct {
	registry   *component.Registry
	byID       map[types.ArchetypeID]*Archetype
	archetypes []*Archetype
	root       *Archetype
}

// NewGraph creates a graph seeded with the permanent root archetype, the one
// with no components.
func NewGraph(reg *component.Registry) *Graph {
	g := &Graph{
		registry: reg,
		byID:     make(map[types.ArchetypeID]*Archetype),
	}
	g.root = g.getOrCreate(nil)
	return g
}

// Root returns the empty archetype every component-less entity lives in.
func (g *Graph) Root() *Archetype {
	return g.root
}

// Lookup returns the archetype with the given identity hash, or nil.
func (g *Graph) Lookup(id types.ArchetypeID) *Archetype {
	return g.byID[id]
}

// Archetypes returns every archetype in creation order. Callers must not
// mutate the slice.
func (g *Graph) Archetypes() []*Archetype {
	return g.archetypes
}

// Count returns the number of archetypes, the root included.
func (g *Graph) Count() int {
	return len(g.archetypes)
}

// FindWith returns the archetype whose set is source's plus c, creating it
// and caching the edge on first use. Returns source itself when it already
// has c.
func (g *Graph) FindWith(source *Archetype, c types.ComponentID) *Archetype {
	if target, ok := source.addEdge[c]; ok {
		return target
	}
	if source.Has(c) {
		return source
	}
	set := make([]types.ComponentID, 0, len(source.components)+1)
	set = append(set, source.components...)
	set = append(set, c)
	sort.Slice(set, func(i, j int) bool { return set[i] < set[j] })

	target := g.getOrCreate(set)
	source.addEdge[c] = target
	return target
}

// FindWithout returns the archetype whose set is source's minus c, creating
// it and caching the edge on first use. Returns source itself when it does
// not have c.
func (g *Graph) FindWithout(source *Archetype, c types.ComponentID) *Archetype {
	if target, ok := source.removeEdge[c]; ok {
		return target
	}
	if !source.Has(c) {
		return source
	}
	set := make([]types.ComponentID, 0, len(source.components)-1)
	for _, id := range source.components {
		if id != c {
			set = append(set, id)
		}
	}
	target := g.getOrCreate(set)
	source.removeEdge[c] = target
	return target
}

func (g *Graph) getOrCreate(components []types.ComponentID) *Archetype {
	id := types.ArchHash(components)
	if a, ok := g.byID[id]; ok {
		return a
	}
	a := NewArchetype(components, g.registry)
	g.byID[id] = a
	g.archetypes = append(g.archetypes, a)
	return a
}
