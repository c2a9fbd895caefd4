package config

import (
	"os"

	"github.com/dmitrijs2005/cloudbank/internal/flagx"
)

// parseEnv overlays environment variables. TRANS_PORT is a bare port number
// for the HTTP listener. Malformed numeric or duration values panic.
func parseEnv(config *Config) {
	if port, ok := os.LookupEnv("TRANS_PORT"); ok && port != "" {
		config.EndpointAddrHTTP = ":" + port
	}
	flagx.EnvString(&config.EndpointAddrHTTP, "HTTP_ADDR")
	flagx.EnvString(&config.EndpointAddrGRPC, "GRPC_ADDR")
	flagx.EnvString(&config.DatabaseDSN, "DATABASE_DSN")
	flagx.EnvString(&config.SecretKey, "JWT_SECRET_KEY")
	flagx.EnvString(&config.NotifyURL, "NOTIFY_URL")
	flagx.EnvString(&config.ServiceSecret, "SERVICE_SECRET")
	flagx.EnvString(&config.RabbitMQURL, "RABBITMQ_URL")
	flagx.EnvString(&config.RabbitMQExchange, "RABBITMQ_EXCHANGE")
	flagx.EnvString(&config.S3RootUser, "S3_ROOT_USER")
	flagx.EnvString(&config.S3RootPassword, "S3_ROOT_PASSWORD")
	flagx.EnvString(&config.S3Bucket, "S3_BUCKET")
	flagx.EnvString(&config.S3Region, "S3_REGION")
	flagx.EnvString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")

	for _, err := range []error{
		flagx.EnvDuration(&config.NotifyTimeout, "NOTIFY_TIMEOUT"),
		flagx.EnvDuration(&config.OutboxPollInterval, "OUTBOX_POLL_INTERVAL"),
		flagx.EnvDuration(&config.HealthCheckInterval, "HEALTH_CHECK_INTERVAL"),
		flagx.EnvInt(&config.OutboxBatchSize, "OUTBOX_BATCH_SIZE"),
		flagx.EnvInt(&config.OutboxMaxAttempts, "OUTBOX_MAX_ATTEMPTS"),
		flagx.EnvInt(&config.TransferMaxAttempts, "TRANSFER_MAX_ATTEMPTS"),
	} {
		if err != nil {
			panic(err)
		}
	}
}
