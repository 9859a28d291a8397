package ncs

import (
	"github.com/rs/zerolog"
)

// WorldOption augments how a World is constructed.
type WorldOption struct {
	worldOption func(*World)
}

// WithLogger replaces the world's logger. The world_id field is re-attached
// so log lines stay attributable when several worlds share a process.
func WithLogger(logger zerolog.Logger) WorldOption {
	return WorldOption{
		worldOption: func(w *World) {
			w.Logger = logger.With().Str("world_id", w.id.String()).Logger()
		},
	}
}
