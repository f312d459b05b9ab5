package target

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"ssb-go/internal/config"
	"ssb-go/internal/ssb"
)

// s3API is the subset of the S3 client used by S3Target.
type s3API interface {
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// uploader is satisfied by *manager.Uploader.
type uploader interface {
	Upload(ctx context.Context, in *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Target copies screenshots into an S3 bucket as
// <prefix>/<game name>/<screenshot>.jpg. Buckets have no folders, so
// EnsureGame does nothing.
type S3Target struct {
	client   s3API
	uploader uploader
	bucket   string
	prefix   string
}

// NewS3Target builds an S3 client from cfg. Credentials come from cfg when
// both keys are set and from the default AWS chain otherwise.
func NewS3Target(ctx context.Context, cfg config.TargetConfig) (*S3Target, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("s3 target requires s3_bucket to be set")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.S3Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.S3Region))
	}
	if cfg.S3AccessKeyID != "" && cfg.S3SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Target(client, manager.NewUploader(client), cfg.S3Bucket, cfg.S3Prefix), nil
}

func newS3Target(client s3API, up uploader, bucket, prefix string) *S3Target {
	return &S3Target{
		client:   client,
		uploader: up,
		bucket:   bucket,
		prefix:   strings.Trim(prefix, "/"),
	}
}

func (t *S3Target) key(game, name string) string {
	return path.Join(t.prefix, game, name)
}

func (t *S3Target) Has(ctx context.Context, game, name string) (bool, error) {
	_, err := t.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(t.bucket),
		Key:    aws.String(t.key(game, name)),
	})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("checking %s: %w", t.Location(game, name), err)
}

func (t *S3Target) EnsureGame(ctx context.Context, game string) error {
	return nil
}

// Put uploads r as game/name. An upload whose length does not match size
// is deleted again. Object permissions come from the bucket, so mode is
// unused.
func (t *S3Target) Put(ctx context.Context, game, name string, r io.Reader, size int64, mode fs.FileMode) error {
	key := t.key(game, name)
	body := &countingReader{r: r}

	_, err := t.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(t.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String("image/jpeg"),
	})
	if err != nil {
		return fmt.Errorf("uploading %s: %w", t.Location(game, name), err)
	}

	if body.n != size {
		_, delErr := t.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(t.bucket),
			Key:    aws.String(key),
		})
		err := fmt.Errorf("size mismatch: expected %d bytes, got %d", size, body.n)
		if delErr != nil {
			return errors.Join(err, fmt.Errorf("removing partial upload: %w", delErr))
		}
		return err
	}
	return nil
}

func (t *S3Target) Location(game, name string) string {
	return "s3://" + t.bucket + "/" + t.key(game, name)
}

// ValidateSetup verifies that the bucket exists and is reachable with the
// configured credentials.
func (t *S3Target) ValidateSetup(ctx context.Context) error {
	if _, err := t.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(t.bucket)}); err != nil {
		return fmt.Errorf("s3 bucket %s not accessible: %w", t.bucket, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	return errors.As(err, &notFound) || errors.As(err, &noSuchKey)
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// Compile-time check that S3Target implements ssb.Target interface
var _ ssb.Target = (*S3Target)(nil)
