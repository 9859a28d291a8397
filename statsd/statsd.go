// Package statsd is a helper package that wraps some common statsd methods.
// It hides the datadog dependency so if we decide to migrate away from datadog
// in the future, we only need to edit this single file. Until Init is called
// the package no-ops, so metrics are strictly opt-in.
package statsd

import (
	"time"

	ddstatsd "github.com/DataDog/datadog-go/v5/statsd"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"
)

var client ddstatsd.ClientInterface = &ddstatsd.NoOpClient{}

func Client() ddstatsd.ClientInterface {
	return client
}

// Init replaces the no-op client with a real one talking to address.
func Init(address string, tags []string) error {
	if address == "" {
		return eris.New("address must not be empty")
	}
	opts := []ddstatsd.Option{
		// The statsd namespace is the prefix of all metrics
		ddstatsd.WithNamespace("ncs"),
	}
	if len(tags) > 0 {
		opts = append(opts, ddstatsd.WithTags(tags))
	}

	newClient, err := ddstatsd.New(address, opts...)
	if err != nil {
		return err
	}
	client = newClient
	return nil
}

// Close flushes and shuts down the client, restoring the no-op default.
func Close() error {
	err := client.Close()
	client = &ddstatsd.NoOpClient{}
	return err
}

func EmitEntityCreated() {
	emitCount("entity.created", nil)
}

func EmitEntityDespawned() {
	emitCount("entity.despawned", nil)
}

func EmitQueryCacheHit() {
	emitCount("query.cache.hit", nil)
}

func EmitQueryCacheRebuild() {
	emitCount("query.cache.rebuild", nil)
}

func EmitQueryCacheRefresh(kind string) {
	emitCount("query.cache.refresh", []string{"kind:" + kind})
}

// EmitQueryRebuildDuration records how long one full cache rebuild took.
func EmitQueryRebuildDuration(d time.Duration) {
	if err := Client().Timing("query.cache.rebuild_duration", d, nil, 1); err != nil {
		log.Logger.Warn().Msgf("failed to emit query.cache.rebuild_duration stat: %v", err)
	}
}

func emitCount(name string, tags []string) {
	if err := Client().Count(name, 1, tags, 1); err != nil {
		log.Logger.Warn().Msgf("failed to emit %s stat: %v", name, err)
	}
}
