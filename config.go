package ncs

import (
	jlconfig "github.com/JeremyLoy/config"
	"github.com/rotisserie/eris"
)

// WorldConfig carries the environment-driven settings of a world. Every field
// has a usable default, so a world starts fine with nothing set.
type WorldConfig struct {
	LogLevel              string `config:"NCS_LOG_LEVEL"`
	LogPretty             bool   `config:"NCS_LOG_PRETTY"`
	StatsdAddress         string `config:"NCS_STATSD_ADDRESS"`
	StatsdTags            string `config:"NCS_STATSD_TAGS"`
	InitialEntityCapacity int    `config:"NCS_INITIAL_ENTITY_CAPACITY"`
}

func defaultWorldConfig() WorldConfig {
	return WorldConfig{
		LogLevel:              "info",
		InitialEntityCapacity: 16,
	}
}

func loadWorldConfig() (WorldConfig, error) {
	cfg := defaultWorldConfig()
	if err := jlconfig.FromEnv().To(&cfg); err != nil {
		return cfg, eris.Wrap(err, "failed to read config from environment")
	}
	return cfg, nil
}
