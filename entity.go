package ncs

import (
	"pkg.world.dev/ncs/storage"
	"pkg.world.dev/ncs/types"
)

// record locates an entity inside the archetype storage.
type record struct {
	arch *storage.Archetype
	row  int
}

// entityPool hands out 48-bit entity ids and recycles despawned ones. Live
// ids occupy the prefix [0, aliveCount) of the pool vector; indices maps an
// id back to its pool slot so despawn can swap it out of the prefix in O(1).
type entityPool struct {
	pool        []uint64
	indices     map[uint64]int
	generations map[uint64]types.Generation
	aliveCount  int
	nextEID     uint64
}

func newEntityPool(capacity int) *entityPool {
	if capacity < 0 {
		capacity = 0
	}
	return &entityPool{
		pool:        make([]uint64, 0, capacity),
		indices:     make(map[uint64]int, capacity),
		generations: make(map[uint64]types.Generation, capacity),
	}
}

// allocate returns the next live id and its generation. Despawned ids are
// recycled before fresh ones are minted; their generation was already bumped
// at despawn time.
func (p *entityPool) allocate() (uint64, types.Generation) {
	var id uint64
	if p.aliveCount < len(p.pool) {
		id = p.pool[p.aliveCount]
	} else {
		id = p.nextEID
		p.nextEID++
		p.pool = append(p.pool, id)
		p.generations[id] = 0
	}
	p.aliveCount++
	p.indices[id] = p.aliveCount - 1
	return id, p.generations[id]
}

// release returns id to the free region of the pool and bumps its generation
// so every outstanding handle goes stale.
func (p *entityPool) release(id uint64) {
	idx, ok := p.indices[id]
	if !ok {
		return
	}
	if last := p.aliveCount - 1; idx < last {
		p.pool[idx] = p.pool[last]
		p.indices[p.pool[idx]] = idx
		p.pool[last] = id
	}
	p.aliveCount--
	if p.generations[id] == types.MaxGeneration {
		p.generations[id] = 0
	} else {
		p.generations[id]++
	}
	delete(p.indices, id)
}

// validate reports whether e names an id this pool has issued at e's exact
// generation.
func (p *entityPool) validate(e types.EntityID) bool {
	gen, ok := p.generations[e.ID()]
	return ok && gen == e.Generation()
}

// generation returns the current generation for id.
func (p *entityPool) generation(id uint64) (types.Generation, bool) {
	gen, ok := p.generations[id]
	return gen, ok
}

// alive returns the number of live ids.
func (p *entityPool) alive() int {
	return p.aliveCount
}
