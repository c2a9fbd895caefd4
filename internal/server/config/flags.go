package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/cloudbank/internal/flagx"
)

// parseFlags overlays the short command-line flags:
//
//	-a string   HTTP bind address (":8080")
//	-m string   gRPC health bind address (":50051")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-n string   notification service URL
//	-k string   notification service secret
//	-q string   RabbitMQ URL
//	-x string   RabbitMQ exchange
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 archive bucket
//	-g string   S3 region
//	-e string   S3 base endpoint
//	-i duration outbox poll interval
//	-t int      transfer attempts on balance conflicts
//
// os.Args is filtered first so flags owned by other parts of the program
// never reach this flag set.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-m", "-d", "-s", "-n", "-k", "-q", "-x", "-u", "-p", "-b", "-g", "-e", "-i", "-t",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.EndpointAddrGRPC, "m", config.EndpointAddrGRPC, "gRPC health address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.NotifyURL, "n", config.NotifyURL, "notification service URL")
	fs.StringVar(&config.ServiceSecret, "k", config.ServiceSecret, "notification service secret")
	fs.StringVar(&config.RabbitMQURL, "q", config.RabbitMQURL, "RabbitMQ URL")
	fs.StringVar(&config.RabbitMQExchange, "x", config.RabbitMQExchange, "RabbitMQ exchange")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 archive bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.DurationVar(&config.OutboxPollInterval, "i", config.OutboxPollInterval, "outbox poll interval")
	fs.IntVar(&config.TransferMaxAttempts, "t", config.TransferMaxAttempts, "transfer attempts on balance conflicts")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
