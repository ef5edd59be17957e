// Package sources checks that the S3 inputs of a run exist before any COPY
// is issued. It never touches the warehouse.
package sources

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"go.uber.org/zap"

	"github.com/ekaya-inc/songplay-etl/pkg/apperrors"
	"github.com/ekaya-inc/songplay-etl/pkg/config"
)

// CheckKind says whether a source is a key prefix or a single object.
type CheckKind string

const (
	CheckPrefix CheckKind = "prefix"
	CheckObject CheckKind = "object"
)

// Report is the outcome of one source check.
type Report struct {
	Name     string    `yaml:"name"`
	Location string    `yaml:"location"`
	Kind     CheckKind `yaml:"kind"`
	// FirstKey is the first object found under a prefix.
	FirstKey string `yaml:"first_key,omitempty"`
	// Size is the object size in bytes.
	Size int64 `yaml:"size,omitempty"`
}

// NewS3Client returns an S3 client for region. Anonymous clients can read
// public buckets without AWS credentials.
func NewS3Client(region string, anonymous bool) (s3iface.S3API, error) {
	awsCfg := &aws.Config{Region: aws.String(region)}
	if anonymous {
		awsCfg.Credentials = credentials.AnonymousCredentials
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return s3.New(sess), nil
}

// Checker verifies S3 sources.
type Checker struct {
	s3API  s3iface.S3API
	logger *zap.Logger
}

func NewChecker(s3API s3iface.S3API, logger *zap.Logger) *Checker {
	return &Checker{
		s3API:  s3API,
		logger: logger.Named("sources"),
	}
}

// CheckPrefix fails with apperrors.ErrSourceEmpty when no object exists under uri.
func (c *Checker) CheckPrefix(ctx context.Context, name, uri string) (*Report, error) {
	loc, err := ParseLocation(uri)
	if err != nil {
		return nil, err
	}

	out, err := c.s3API.ListObjectsV2WithContext(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(loc.Bucket),
		Prefix:  aws.String(loc.Key),
		MaxKeys: aws.Int64(1),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s (%s): %w", name, uri, err)
	}
	if len(out.Contents) == 0 {
		return nil, fmt.Errorf("%w: %s (%s)", apperrors.ErrSourceEmpty, name, uri)
	}

	report := &Report{
		Name:     name,
		Location: uri,
		Kind:     CheckPrefix,
		FirstKey: aws.StringValue(out.Contents[0].Key),
	}
	c.logger.Info("Source prefix found",
		zap.String("name", name),
		zap.String("location", uri),
		zap.String("first_key", report.FirstKey))
	return report, nil
}

// CheckObject fails when the object at uri cannot be read.
func (c *Checker) CheckObject(ctx context.Context, name, uri string) (*Report, error) {
	loc, err := ParseLocation(uri)
	if err != nil {
		return nil, err
	}
	if loc.Key == "" {
		return nil, fmt.Errorf("invalid S3 location %q: missing object key", uri)
	}

	out, err := c.s3API.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s (%s): %w", name, uri, err)
	}

	report := &Report{
		Name:     name,
		Location: uri,
		Kind:     CheckObject,
		Size:     aws.Int64Value(out.ContentLength),
	}
	c.logger.Info("Source object found",
		zap.String("name", name),
		zap.String("location", uri),
		zap.Int64("size", report.Size))
	return report, nil
}

// Verify checks the event and song prefixes and the JSONPaths object.
// Every source is checked; the returned error joins all failures.
func (c *Checker) Verify(ctx context.Context, cfg config.S3Config) ([]Report, error) {
	checks := []struct {
		name  string
		uri   string
		check func(context.Context, string, string) (*Report, error)
	}{
		{"log_data", cfg.LogData, c.CheckPrefix},
		{"log_jsonpath", cfg.LogJSONPath, c.CheckObject},
		{"song_data", cfg.SongData, c.CheckPrefix},
	}

	var reports []Report
	var errs []error
	for _, chk := range checks {
		report, err := chk.check(ctx, chk.name, chk.uri)
		if err != nil {
			c.logger.Error("Source check failed",
				zap.String("name", chk.name),
				zap.String("location", chk.uri),
				zap.Error(err))
			errs = append(errs, err)
			continue
		}
		reports = append(reports, *report)
	}
	return reports, errors.Join(errs...)
}
