// Package storage publishes finished videos to S3.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

// Publisher uploads artifacts to one S3 bucket.
type Publisher struct {
	client *s3.Client
	bucket string
}

// Config selects the target bucket; Region falls back to the standard AWS
// config/credential chain when empty.
type Config struct {
	Bucket string
	Region string
}

// NewPublisher creates a Publisher using the default AWS configuration chain.
func NewPublisher(ctx context.Context, cfg Config) (*Publisher, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &Publisher{client: s3.NewFromConfig(awsCfg), bucket: cfg.Bucket}, nil
}

// PublishVideo uploads the video file under videos/<basename> and returns the
// object URI.
func (p *Publisher) PublishVideo(ctx context.Context, filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("open video: %w", err)
	}
	defer f.Close()

	key := "videos/" + filepath.Base(filePath)
	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String("video/mp4"),
	})
	if err != nil {
		return "", fmt.Errorf("upload video: %w", err)
	}

	uri := fmt.Sprintf("s3://%s/%s", p.bucket, key)
	log.Info().Str("uri", uri).Msg("video published to S3")
	return uri, nil
}
