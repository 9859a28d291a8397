package ncs

import (
	"sort"
	"time"

	"pkg.world.dev/ncs/filter"
	"pkg.world.dev/ncs/statsd"
	"pkg.world.dev/ncs/storage"
	"pkg.world.dev/ncs/types"
)

// refresher is the type-erased slot a per-shape query cache occupies in the
// world's cache registry. The concrete type is *queryCache[R] for the shape's
// row type; the generic query functions re-assert it on every call.
type refresher any

// queryCache remembers the last materialized result for one query shape. The
// archetype pointer is the last archetype observed to match; freshness and
// incremental refreshes only consult that one, so for shapes spread over
// several archetypes a mutation elsewhere is picked up only by a full
// rebuild: when the tracked archetype carries more than one dirty flag or
// the entry is evicted.
type queryCache[R any] struct {
	arch     *storage.Archetype
	snapshot int
	rows     []R
}

// Row1 is one query result for a single-component shape. The component
// pointers are interior pointers into column storage and stay valid only
// until the next mutation that can relocate or reuse the row.
type Row1[A any] struct {
	Entity types.EntityID
	A      *A
}

// Row2 is one query result for a two-component shape.
type Row2[A, B any] struct {
	Entity types.EntityID
	A      *A
	B      *B
}

// Row3 is one query result for a three-component shape.
type Row3[A, B, C any] struct {
	Entity types.EntityID
	A      *A
	B      *B
	C      *C
}

// Row4 is one query result for a four-component shape.
type Row4[A, B, C, D any] struct {
	Entity types.EntityID
	A      *A
	B      *B
	C      *C
	D      *D
}

// Query1 returns every entity carrying A, with a pointer to its value.
func Query1[A any](w *World) []Row1[A] {
	ca := w.registry.Register(typeOf[A]())
	return runQuery(w, []types.ComponentID{ca},
		func(e types.EntityID, a *storage.Archetype, row int) Row1[A] {
			return Row1[A]{Entity: e, A: componentPtr[A](a, ca, row)}
		},
		func(r Row1[A]) types.EntityID { return r.Entity },
	)
}

// Query2 returns every entity carrying both A and B.
func Query2[A, B any](w *World) []Row2[A, B] {
	ca := w.registry.Register(typeOf[A]())
	cb := w.registry.Register(typeOf[B]())
	return runQuery(w, []types.ComponentID{ca, cb},
		func(e types.EntityID, a *storage.Archetype, row int) Row2[A, B] {
			return Row2[A, B]{
				Entity: e,
				A:      componentPtr[A](a, ca, row),
				B:      componentPtr[B](a, cb, row),
			}
		},
		func(r Row2[A, B]) types.EntityID { return r.Entity },
	)
}

// Query3 returns every entity carrying A, B, and C.
func Query3[A, B, C any](w *World) []Row3[A, B, C] {
	ca := w.registry.Register(typeOf[A]())
	cb := w.registry.Register(typeOf[B]())
	cc := w.registry.Register(typeOf[C]())
	return runQuery(w, []types.ComponentID{ca, cb, cc},
		func(e types.EntityID, a *storage.Archetype, row int) Row3[A, B, C] {
			return Row3[A, B, C]{
				Entity: e,
				A:      componentPtr[A](a, ca, row),
				B:      componentPtr[B](a, cb, row),
				C:      componentPtr[C](a, cc, row),
			}
		},
		func(r Row3[A, B, C]) types.EntityID { return r.Entity },
	)
}

// Query4 returns every entity carrying A, B, C, and D.
func Query4[A, B, C, D any](w *World) []Row4[A, B, C, D] {
	ca := w.registry.Register(typeOf[A]())
	cb := w.registry.Register(typeOf[B]())
	cc := w.registry.Register(typeOf[C]())
	cd := w.registry.Register(typeOf[D]())
	return runQuery(w, []types.ComponentID{ca, cb, cc, cd},
		func(e types.EntityID, a *storage.Archetype, row int) Row4[A, B, C, D] {
			return Row4[A, B, C, D]{
				Entity: e,
				A:      componentPtr[A](a, ca, row),
				B:      componentPtr[B](a, cb, row),
				C:      componentPtr[C](a, cc, row),
				D:      componentPtr[D](a, cd, row),
			}
		},
		func(r Row4[A, B, C, D]) types.EntityID { return r.Entity },
	)
}

// Search returns the handles of every live entity whose archetype matches f.
// Unlike the cached queries, Search always scans; it is the debug and tooling
// path, not the hot path.
func (w *World) Search(f filter.ComponentFilter) []types.EntityID {
	var out []types.EntityID
	for _, a := range w.graph.Archetypes() {
		if !f.MatchesComponents(a.Components()) {
			continue
		}
		for i := 0; i < a.EntityCount(); i++ {
			id := a.EntityAt(i)
			gen, ok := w.pool.generation(id)
			if !ok {
				continue
			}
			out = append(out, types.EncodeEntity(id, gen))
		}
	}
	return out
}

// runQuery is the shared engine behind Query1 through Query4. The shape is
// identified by the hash of its sorted component-id set, so permutations of
// the same components share one cache entry.
func runQuery[R any](
	w *World,
	cids []types.ComponentID,
	build func(types.EntityID, *storage.Archetype, int) R,
	entityOf func(R) types.EntityID,
) []R {
	sorted := append([]types.ComponentID(nil), cids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	key := types.ArchHash(sorted)

	// Permutations of one component set share the key. A permutation with a
	// different row type evicts the previous entry and rebuilds.
	var cache *queryCache[R]
	if existing, ok := w.caches[key]; ok {
		if typed, ok := existing.(*queryCache[R]); ok {
			cache = typed
			if rows, done := refreshCache(w, cache, build, entityOf); done {
				return rows
			}
		}
	}
	if cache == nil {
		cache = &queryCache[R]{}
		w.caches[key] = cache
	}

	statsd.EmitQueryCacheRebuild()
	start := time.Now()
	cache.rows = cache.rows[:0]
	cache.arch = nil
	cache.snapshot = 0
	match := filter.Contains(cids...)
	for _, a := range w.graph.Archetypes() {
		if !match.MatchesComponents(a.Components()) {
			continue
		}
		cache.arch = a
		cache.snapshot = a.EntityCount()
		for i := 0; i < a.EntityCount(); i++ {
			id := a.EntityAt(i)
			gen, ok := w.pool.generation(id)
			if !ok {
				continue
			}
			cache.rows = append(cache.rows, build(types.EncodeEntity(id, gen), a, i))
		}
	}
	statsd.EmitQueryRebuildDuration(time.Since(start))
	return cache.rows
}

// refreshCache serves a query from the cache when it is fresh or can be
// patched from a single dirty flag. It reports false when a full rebuild is
// required.
func refreshCache[R any](
	w *World,
	cache *queryCache[R],
	build func(types.EntityID, *storage.Archetype, int) R,
	entityOf func(R) types.EntityID,
) ([]R, bool) {
	a := cache.arch
	if a == nil {
		return nil, false
	}
	flags := a.Flags()

	if cache.snapshot == a.EntityCount() && flags == types.FlagNone {
		statsd.EmitQueryCacheHit()
		return cache.rows, true
	}

	switch flags {
	case types.FlagAdded:
		for i := cache.snapshot; i < a.EntityCount(); i++ {
			id := a.EntityAt(i)
			gen, ok := w.pool.generation(id)
			if !ok {
				continue
			}
			cache.rows = append(cache.rows, build(types.EncodeEntity(id, gen), a, i))
		}
		cache.snapshot = a.EntityCount()
		a.ClearFlag(types.FlagAdded)
		statsd.EmitQueryCacheRefresh("added")
		return cache.rows, true

	case types.FlagRemoved:
		kept := cache.rows[:0]
		for _, r := range cache.rows {
			// Swap-remove may have moved the entity to another row, so the
			// row is rebuilt at its current position.
			e := entityOf(r)
			if row, ok := a.RowOf(e.ID()); ok {
				kept = append(kept, build(e, a, row))
			}
		}
		cache.rows = kept
		cache.snapshot = a.EntityCount()
		a.ClearFlag(types.FlagRemoved)
		statsd.EmitQueryCacheRefresh("removed")
		return cache.rows, true

	case types.FlagUpdated:
		// In-place writes never move rows, so the cached pointers hold.
		a.ClearFlag(types.FlagUpdated)
		statsd.EmitQueryCacheRefresh("updated")
		return cache.rows, true
	}
	return nil, false
}

func componentPtr[T any](a *storage.Archetype, c types.ComponentID, row int) *T {
	return (*T)(a.Column(c).RowPointer(row))
}
