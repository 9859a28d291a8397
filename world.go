// Package ncs is an archetype-based entity-component store. Entities are
// 64-bit generational handles, components live in type-erased columns grouped
// by archetype, and queries resolve through a per-shape cache refreshed from
// archetype dirty flags.
package ncs

import (
	"os"
	"reflect"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"pkg.world.dev/ncs/codec"
	"pkg.world.dev/ncs/component"
	ncslog "pkg.world.dev/ncs/log"
	"pkg.world.dev/ncs/statsd"
	"pkg.world.dev/ncs/storage"
	"pkg.world.dev/ncs/types"
)

// World owns every piece of entity state: the archetype graph, the component
// registry, the entity pool, the entity location records, and the query
// caches. A world is single-threaded; callers serialize access themselves.
type World struct {
	id       uuid.UUID
	registry *component.Registry
	graph    *storage.Graph
	pool     *entityPool
	records  map[uint64]record
	caches   map[types.ArchetypeID]refresher

	Logger zerolog.Logger
}

// NewWorld creates an empty world configured from the environment.
func NewWorld(opts ...WorldOption) (*World, error) {
	cfg, err := loadWorldConfig()
	if err != nil {
		return nil, eris.Wrap(err, "failed to load world config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, eris.Wrapf(err, "invalid log level %q", cfg.LogLevel)
	}

	if cfg.StatsdAddress != "" {
		var tags []string
		if cfg.StatsdTags != "" {
			tags = strings.Split(cfg.StatsdTags, ",")
		}
		if err := statsd.Init(cfg.StatsdAddress, tags); err != nil {
			log.Warn().Err(err).Msg("failed to init statsd client, metrics are disabled")
		}
	}

	registry := component.NewRegistry()
	w := &World{
		id:       uuid.New(),
		registry: registry,
		graph:    storage.NewGraph(registry),
		pool:     newEntityPool(cfg.InitialEntityCapacity),
		records:  make(map[uint64]record, cfg.InitialEntityCapacity),
		caches:   make(map[types.ArchetypeID]refresher),
	}
	base := log.Logger
	if cfg.LogPretty {
		base = base.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	w.Logger = base.Level(level).With().Str("world_id", w.id.String()).Logger()

	for _, opt := range opts {
		if opt.worldOption != nil {
			opt.worldOption(w)
		}
	}

	w.Logger.Info().Msg("created new world")
	return w, nil
}

// ID returns the world's instance id, unique per construction.
func (w *World) ID() uuid.UUID {
	return w.id
}

// Entity allocates a live entity with no components. The returned handle is
// the only way to reach the entity afterwards.
func (w *World) Entity() types.EntityID {
	id, gen := w.pool.allocate()
	statsd.EmitEntityCreated()
	return types.EncodeEntity(id, gen)
}

// Despawn destroys e's components, frees its row, and retires the handle.
// The id is recycled with a bumped generation on a later Entity call. Stale
// handles are ignored.
func (w *World) Despawn(e types.EntityID) {
	if !w.pool.validate(e) {
		return
	}
	id := e.ID()
	if rec, ok := w.records[id]; ok {
		rec.arch.DestroyRow(rec.row)
		moved, relocated := rec.arch.Remove(id)
		delete(w.records, id)
		if relocated {
			w.records[moved] = record{arch: rec.arch, row: rec.row}
		}
	}
	w.pool.release(id)
	statsd.EmitEntityDespawned()
}

// Alive reports whether e's handle is still current.
func (w *World) Alive(e types.EntityID) bool {
	return w.pool.validate(e)
}

// EntityCount returns the number of live entities.
func (w *World) EntityCount() int {
	return w.pool.alive()
}

// ArchetypeCount returns the number of archetypes, the root included.
func (w *World) ArchetypeCount() int {
	return w.graph.Count()
}

// RegisteredComponents returns id/name pairs for every component type the
// world has seen.
func (w *World) RegisteredComponents() []ncslog.ComponentInfo {
	vts := w.registry.VTables()
	infos := make([]ncslog.ComponentInfo, 0, len(vts))
	for i, vt := range vts {
		infos = append(infos, ncslog.ComponentInfo{
			ID:   types.ComponentID(i), //nolint:gosec
			Name: vt.Name(),
		})
	}
	return infos
}

// LogEntity writes a debug line locating e: its id, generation, archetype,
// and component set. Stale handles log nothing.
func (w *World) LogEntity(e types.EntityID) {
	if !w.pool.validate(e) {
		return
	}
	rec, ok := w.records[e.ID()]
	if !ok {
		ncslog.Entity(&w.Logger, zerolog.DebugLevel, e, w.graph.Root().ID(), nil)
		return
	}
	ncslog.Entity(&w.Logger, zerolog.DebugLevel, e, rec.arch.ID(), w.componentInfos(rec.arch))
}

func (w *World) componentInfos(a *storage.Archetype) []ncslog.ComponentInfo {
	infos := make([]ncslog.ComponentInfo, 0, len(a.Components()))
	for _, c := range a.Components() {
		infos = append(infos, ncslog.ComponentInfo{
			ID:   c,
			Name: w.registry.VTable(c).Name(),
		})
	}
	return infos
}

// DumpState logs a summary of the world plus a JSON snapshot of every
// archetype at debug level.
func (w *World) DumpState() error {
	ncslog.World(&w.Logger, w, zerolog.DebugLevel)
	dumps := make([]storage.ArchetypeDump, 0, w.graph.Count())
	for _, a := range w.graph.Archetypes() {
		ncslog.Archetype(&w.Logger, zerolog.DebugLevel, a.ID(), w.componentInfos(a), a.EntityCount())
		dumps = append(dumps, a.Dump())
	}
	raw, err := codec.Encode(dumps)
	if err != nil {
		return eris.Wrap(err, "failed to encode archetype dumps")
	}
	w.Logger.Debug().
		Int("entity_count", w.pool.alive()).
		RawJSON("archetypes", raw).
		Msg("world state")
	return nil
}

// Close releases the world's storage: query caches are dropped and every
// column destroys its constructed values. The world must not be used after.
func (w *World) Close() error {
	for key := range w.caches {
		delete(w.caches, key)
	}
	for _, a := range w.graph.Archetypes() {
		for _, c := range a.Components() {
			a.Column(c).Reset()
		}
	}
	w.records = make(map[uint64]record)
	w.Logger.Info().Msg("world closed")
	return statsd.Close()
}

// RegisterComponent assigns (or returns) the world-local id for T. Set does
// this implicitly; explicit registration is only needed to control id order.
func RegisterComponent[T any](w *World) types.ComponentID {
	return w.registry.Register(typeOf[T]())
}

// Set writes a component value on e, creating the component (and migrating
// the entity to the matching archetype) when it is not already present.
// Chainable; a stale handle makes it a silent no-op.
func Set[T any](w *World, e types.EntityID, value T) *World {
	if !w.pool.validate(e) {
		return w
	}
	c := w.registry.Register(typeOf[T]())
	id := e.ID()

	rec, ok := w.records[id]
	if !ok {
		dest := w.graph.FindWith(w.graph.Root(), c)
		row := dest.Append(id)
		storage.ConstructAt(dest.Column(c), row, value)
		w.records[id] = record{arch: dest, row: row}
		return w
	}

	if rec.arch.Has(c) {
		// In-place overwrite. The column must not grow here: cached query
		// pointers into this archetype stay valid across UPDATED refreshes.
		col := rec.arch.Column(c)
		col.DestroyAt(rec.row)
		storage.ConstructAt(col, rec.row, value)
		rec.arch.MarkUpdated()
		return w
	}

	dest := w.graph.FindWith(rec.arch, c)
	destRow, moved, relocated := rec.arch.MoveTo(dest, id)
	storage.ConstructAt(dest.Column(c), destRow, value)
	w.records[id] = record{arch: dest, row: destRow}
	if relocated {
		w.records[moved] = record{arch: rec.arch, row: rec.row}
	}
	return w
}

// Get returns a pointer to e's component of type T, or nil when the handle
// is stale or the component is absent. The pointer is valid until the next
// mutation that may relocate the column.
func Get[T any](w *World, e types.EntityID) *T {
	if !w.pool.validate(e) {
		return nil
	}
	rec, ok := w.records[e.ID()]
	if !ok {
		return nil
	}
	c, ok := w.registry.Lookup(typeOf[T]())
	if !ok {
		return nil
	}
	col := rec.arch.Column(c)
	if col == nil {
		return nil
	}
	return storage.GetAs[T](col, rec.row)
}

// Has reports whether e currently carries a component of type T.
func Has[T any](w *World, e types.EntityID) bool {
	if !w.pool.validate(e) {
		return false
	}
	rec, ok := w.records[e.ID()]
	if !ok {
		return false
	}
	c, ok := w.registry.Lookup(typeOf[T]())
	if !ok {
		return false
	}
	col := rec.arch.Column(c)
	return col != nil && col.IsConstructed(rec.row)
}

// Remove deletes T from e, migrating the entity to the archetype without it.
// Chainable; absent components and stale handles are silent no-ops.
func Remove[T any](w *World, e types.EntityID) *World {
	if !w.pool.validate(e) {
		return w
	}
	id := e.ID()
	rec, ok := w.records[id]
	if !ok {
		return w
	}
	c, ok := w.registry.Lookup(typeOf[T]())
	if !ok || !rec.arch.Has(c) {
		return w
	}

	rec.arch.Column(c).DestroyAt(rec.row)
	dest := w.graph.FindWithout(rec.arch, c)
	destRow, moved, relocated := rec.arch.MoveTo(dest, id)
	w.records[id] = record{arch: dest, row: destRow}
	if relocated {
		w.records[moved] = record{arch: rec.arch, row: rec.row}
	}
	return w
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
