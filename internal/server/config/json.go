package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/cloudbank/internal/flagx"
	"github.com/dmitrijs2005/cloudbank/internal/timex"
)

// JsonConfig mirrors Config for JSON files. Intervals use timex.Duration so
// both "5s" and integer nanoseconds are accepted.
type JsonConfig struct {
	EndpointAddrHTTP    string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC    string         `json:"endpoint_addr_grpc"`
	DatabaseDSN         string         `json:"database_dsn"`
	SecretKey           string         `json:"secret_key"`
	NotifyURL           string         `json:"notify_url"`
	ServiceSecret       string         `json:"service_secret"`
	NotifyTimeout       timex.Duration `json:"notify_timeout"`
	RabbitMQURL         string         `json:"rabbitmq_url"`
	RabbitMQExchange    string         `json:"rabbitmq_exchange"`
	S3RootUser          string         `json:"s3_root_user"`
	S3RootPassword      string         `json:"s3_root_password"`
	S3Bucket            string         `json:"s3_bucket"`
	S3Region            string         `json:"s3_region"`
	S3BaseEndpoint      string         `json:"s3_base_endpoint"`
	OutboxPollInterval  timex.Duration `json:"outbox_poll_interval"`
	OutboxBatchSize     int            `json:"outbox_batch_size"`
	OutboxMaxAttempts   int            `json:"outbox_max_attempts"`
	TransferMaxAttempts int            `json:"transfer_max_attempts"`
	HealthCheckInterval timex.Duration `json:"health_check_interval"`
}

// parseJson overlays the keys present in the JSON file given with -c/-config.
// Keys absent from the file keep their current value. An unreadable or
// malformed file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.NotifyURL, c.NotifyURL)
	setString(&config.ServiceSecret, c.ServiceSecret)
	setString(&config.RabbitMQURL, c.RabbitMQURL)
	setString(&config.RabbitMQExchange, c.RabbitMQExchange)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	if c.NotifyTimeout.Duration > 0 {
		config.NotifyTimeout = c.NotifyTimeout.Duration
	}
	if c.OutboxPollInterval.Duration > 0 {
		config.OutboxPollInterval = c.OutboxPollInterval.Duration
	}
	if c.HealthCheckInterval.Duration > 0 {
		config.HealthCheckInterval = c.HealthCheckInterval.Duration
	}
	if c.OutboxBatchSize > 0 {
		config.OutboxBatchSize = c.OutboxBatchSize
	}
	if c.OutboxMaxAttempts > 0 {
		config.OutboxMaxAttempts = c.OutboxMaxAttempts
	}
	if c.TransferMaxAttempts > 0 {
		config.TransferMaxAttempts = c.TransferMaxAttempts
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
