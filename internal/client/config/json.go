package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/cloudbank/internal/flagx"
	"github.com/dmitrijs2005/cloudbank/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
type JsonConfig struct {
	ServerURL     string         `json:"server_url"`
	Token         string         `json:"token"`
	SecretKey     string         `json:"secret_key"`
	Timeout       timex.Duration `json:"timeout"`
	TokenValidity timex.Duration `json:"token_validity"`
}

// parseJson overlays cfg with the file named by -c or -config. Absent keys
// keep their current value. Read and parse errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.Token != "" {
		cfg.Token = jc.Token
	}
	if jc.SecretKey != "" {
		cfg.SecretKey = jc.SecretKey
	}
	if jc.Timeout.Duration > 0 {
		cfg.Timeout = jc.Timeout.Duration
	}
	if jc.TokenValidity.Duration > 0 {
		cfg.TokenValidity = jc.TokenValidity.Duration
	}
}
