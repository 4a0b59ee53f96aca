package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"github.com/Raymond9734/acme-dashboard-backend/internal/config"
)

// objectPutter is the subset of the S3 client used for uploads
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3ImageStore uploads images to an S3-compatible bucket (AWS S3, MinIO, ...)
type S3ImageStore struct {
	client        *s3.Client
	putter        objectPutter
	bucket        string
	publicBaseURL string
	keyPrefix     string
	newKey        func(filename string) string
	logger        *slog.Logger
}

// S3Option configures an S3ImageStore
type S3Option func(*S3ImageStore)

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) S3Option {
	return func(s *S3ImageStore) {
		s.logger = logger
	}
}

// NewS3ImageStore creates a store from configuration
func NewS3ImageStore(ctx context.Context, cfg *config.StorageConfig, opts ...S3Option) (*S3ImageStore, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKey == "" {
		return nil, errors.New("storage access key is required")
	}
	if cfg.SecretKey == "" {
		return nil, errors.New("storage secret key is required")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	endpoint := cfg.Endpoint
	if endpoint != "" && !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	publicBaseURL := cfg.PublicBaseURL
	if publicBaseURL == "" {
		publicBaseURL = defaultPublicBaseURL(endpoint, region, cfg.Bucket, cfg.UsePathStyle)
	}

	store := &S3ImageStore{
		client:        client,
		putter:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		keyPrefix:     "customers/",
		newKey:        func(filename string) string { return uuid.NewString() + "-" + filename },
		logger:        slog.Default(),
	}

	for _, opt := range opts {
		opt(store)
	}

	return store, nil
}

var _ ImageStore = (*S3ImageStore)(nil)

// Upload stores the image under customers/<uuid>-<filename> and returns its public URL
func (s *S3ImageStore) Upload(ctx context.Context, image Image) (string, error) {
	name := cleanFilename(image.Filename)
	if name == "" {
		return "", ErrEmptyImage
	}

	key := s.keyPrefix + s.newKey(name)

	_, err := s.putter.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(image.Data),
		ContentType: aws.String(image.ContentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	s.logger.Debug("image uploaded",
		slog.String("bucket", s.bucket),
		slog.String("key", key),
		slog.Int("bytes", len(image.Data)),
	)

	return s.publicBaseURL + "/" + key, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (s *S3ImageStore) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	s.logger.Info("creating storage bucket", slog.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}

	return nil
}

// Bucket returns the bucket name
func (s *S3ImageStore) Bucket() string {
	return s.bucket
}

func defaultPublicBaseURL(endpoint, region, bucket string, pathStyle bool) string {
	if endpoint != "" {
		endpoint = strings.TrimRight(endpoint, "/")
		if pathStyle {
			return endpoint + "/" + bucket
		}
		scheme, host, _ := strings.Cut(endpoint, "://")
		return scheme + "://" + bucket + "." + host
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
}
