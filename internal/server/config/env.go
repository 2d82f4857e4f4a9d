package config

import "github.com/caarlos0/env/v11"

// EnvPrefix is prepended to every variable name declared in Config tags.
const EnvPrefix = "LIBERTALK_"

// parseEnv overlays variables that are set; unset ones keep the current value.
// Malformed values panic like malformed flags do.
func parseEnv(config *Config) {
	if err := env.ParseWithOptions(config, env.Options{Prefix: EnvPrefix}); err != nil {
		panic(err)
	}
}
