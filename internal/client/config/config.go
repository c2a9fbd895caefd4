// Package config holds the runtime settings of the cloudbank CLI.
package config

import "time"

type Config struct {
	ServerURL     string
	Token         string
	SecretKey     string
	Timeout       time.Duration
	TokenValidity time.Duration
}

// Flags are the global command-line flags, removed from the arguments
// before subcommand parsing.
var Flags = []string{"-a", "-t", "-k", "-i", "-c", "-config"}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.SecretKey = "secretKey"
	c.Timeout = 10 * time.Second
	c.TokenValidity = time.Hour
}

// LoadConfig applies defaults, then JSON, then environment, then flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
