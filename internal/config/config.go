// internal/config/config.go
package config

import (
	"os"
	"strconv"
)

// Config is read once from the environment at startup. A .env file is
// honored via godotenv autoload in main.
type Config struct {
	Addr        string // listen address, e.g. ":8080"
	RulesetName string // named ruleset preset; empty means classic
	Seed        int64  // shuffle seed override, 0 means time-based
	RedisAddr   string // action journal target; empty disables the journal
	RedisQueue  string
}

// Load assembles the configuration from environment variables.
func Load() Config {
	cfg := Config{
		Addr:        ":8080",
		RulesetName: os.Getenv("AGONIA_RULESET"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		RedisQueue:  os.Getenv("REDIS_QUEUE"),
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.Addr = ":" + port
	}
	if seed := os.Getenv("AGONIA_SEED"); seed != "" {
		if v, err := strconv.ParseInt(seed, 10, 64); err == nil {
			cfg.Seed = v
		}
	}
	return cfg
}
