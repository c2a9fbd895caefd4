package config

import "github.com/dmitrijs2005/cloudbank/internal/flagx"

func parseEnv(cfg *Config) {
	flagx.EnvString(&cfg.ServerURL, "CLOUDBANK_URL")
	flagx.EnvString(&cfg.Token, "CLOUDBANK_TOKEN")
	flagx.EnvString(&cfg.SecretKey, "JWT_SECRET_KEY")
	if err := flagx.EnvDuration(&cfg.Timeout, "CLOUDBANK_TIMEOUT"); err != nil {
		panic(err)
	}
}
