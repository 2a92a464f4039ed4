// Package storage uploads media objects to an S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/database"
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/env"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var ErrMissingBucket = errors.New("media bucket is not configured")

type S3Client struct {
	svc       *s3.Client
	bucket    string
	publicURL string
}

// NewS3Client builds a client for MEDIA_BUCKET. S3_ENDPOINT switches to a
// path-style endpoint for local S3-compatible stores.
func NewS3Client(ctx context.Context) (*S3Client, error) {
	bucket := env.Get(env.MediaBucket)
	if bucket == "" {
		return nil, ErrMissingBucket
	}

	cfg, err := database.LoadAWSConfig(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := env.Get(env.S3Endpoint)
	clientOpts := []func(*s3.Options){}
	if endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		})
	}

	publicURL := env.Get(env.MediaPublicURL)
	if publicURL == "" {
		publicURL = defaultPublicURL(bucket, cfg.Region, endpoint)
	}

	return &S3Client{
		svc:       s3.NewFromConfig(cfg, clientOpts...),
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

func defaultPublicURL(bucket, region, endpoint string) string {
	if endpoint != "" {
		return strings.TrimRight(endpoint, "/") + "/" + bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
}

// PutObject streams body to key and returns the public URL of the object.
// size must be the exact body length.
func (c *S3Client) PutObject(ctx context.Context, key, contentType string, size int64, body io.Reader) (string, error) {
	_, err := c.svc.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return c.ObjectURL(key), nil
}

func (c *S3Client) ObjectURL(key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return c.publicURL + "/" + strings.Join(segments, "/")
}
