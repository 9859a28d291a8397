// Package log holds zerolog helpers for dumping world internals in a
// structured form.
package log

import (
	"sort"

	"github.com/rs/zerolog"

	"pkg.world.dev/ncs/types"
)

// ComponentInfo is the loggable identity of one registered component type.
type ComponentInfo struct {
	ID   types.ComponentID
	Name string
}

// Loggable is the slice of a world the helpers below know how to render.
type Loggable interface {
	RegisteredComponents() []ComponentInfo
	ArchetypeCount() int
	EntityCount() int
}

func loadComponentIntoArrayLogger(
	info ComponentInfo,
	arrayLogger *zerolog.Array,
) *zerolog.Array {
	dictLogger := zerolog.Dict()
	dictLogger = dictLogger.Int("component_id", int(info.ID))
	dictLogger = dictLogger.Str("component_name", info.Name)
	return arrayLogger.Dict(dictLogger)
}

func loadComponentsToEvent(zeroLoggerEvent *zerolog.Event, target Loggable) *zerolog.Event {
	components := target.RegisteredComponents()
	sort.Slice(components, func(i, j int) bool {
		return components[i].ID < components[j].ID
	})
	zeroLoggerEvent.Int("total_components", len(components))
	arrayLogger := zerolog.Arr()
	for _, info := range components {
		arrayLogger = loadComponentIntoArrayLogger(info, arrayLogger)
	}
	return zeroLoggerEvent.Array("components", arrayLogger)
}

// Components logs every registered component type of the target.
func Components(logger *zerolog.Logger, target Loggable, level zerolog.Level) {
	zeroLoggerEvent := logger.WithLevel(level)
	zeroLoggerEvent = loadComponentsToEvent(zeroLoggerEvent, target)
	zeroLoggerEvent.Send()
}

// World logs a summary of the target: component types plus entity and
// archetype counts.
func World(logger *zerolog.Logger, target Loggable, level zerolog.Level) {
	zeroLoggerEvent := logger.WithLevel(level)
	zeroLoggerEvent = loadComponentsToEvent(zeroLoggerEvent, target)
	zeroLoggerEvent.Int("total_entities", target.EntityCount())
	zeroLoggerEvent.Int("total_archetypes", target.ArchetypeCount())
	zeroLoggerEvent.Send()
}

// Archetype logs one archetype's shape and occupancy.
func Archetype(
	logger *zerolog.Logger, level zerolog.Level,
	archID types.ArchetypeID, components []ComponentInfo, entityCount int,
) {
	zeroLoggerEvent := logger.WithLevel(level)
	arrayLogger := zerolog.Arr()
	for _, info := range components {
		arrayLogger = loadComponentIntoArrayLogger(info, arrayLogger)
	}
	zeroLoggerEvent.Array("components", arrayLogger)
	zeroLoggerEvent.Uint64("archetype_id", uint64(archID))
	zeroLoggerEvent.Int("entity_count", entityCount)
	zeroLoggerEvent.Send()
}

// Entity logs one entity's location and component set.
func Entity(
	logger *zerolog.Logger, level zerolog.Level,
	entityID types.EntityID, archID types.ArchetypeID, components []ComponentInfo,
) {
	zeroLoggerEvent := logger.WithLevel(level)
	arrayLogger := zerolog.Arr()
	for _, info := range components {
		arrayLogger = loadComponentIntoArrayLogger(info, arrayLogger)
	}
	zeroLoggerEvent.Array("components", arrayLogger)
	zeroLoggerEvent.Uint64("entity_id", entityID.ID())
	zeroLoggerEvent.Uint16("generation", uint16(entityID.Generation()))
	zeroLoggerEvent.Uint64("archetype_id", uint64(archID))
	zeroLoggerEvent.Send()
}
