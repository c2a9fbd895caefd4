package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/dmitrijs2005/cloudbank/internal/server/config"
	"github.com/dmitrijs2005/cloudbank/internal/server/models"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) objectPutter {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ArchiveSink writes every event as a JSON object to an S3 bucket, giving
// the reporting side an immutable copy of each outcome.
type ArchiveSink struct {
	client objectPutter
	bucket string
	now    func() time.Time
}

// NewArchiveSink builds an S3 client for the configured endpoint and bucket.
func NewArchiveSink(ctx context.Context, cfg *sc.Config) (*ArchiveSink, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return &ArchiveSink{client: client, bucket: cfg.S3Bucket, now: time.Now}, nil
}

// ArchiveKey is the object key of an event delivered at t.
func ArchiveKey(t time.Time, ev *models.NotificationEvent) string {
	t = t.UTC()
	return fmt.Sprintf("transactions/%04d/%02d/%02d/%s-%s.json", t.Year(), t.Month(), t.Day(), ev.TransID, ev.Status)
}

func (s *ArchiveSink) Name() string { return "archive" }

func (s *ArchiveSink) Send(ctx context.Context, ev *models.NotificationEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	key := ArchiveKey(s.now(), ev)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}
