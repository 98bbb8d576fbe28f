// Package media stores campaign banner images in S3 or an S3-compatible bucket.
package media

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/sponsorconnect/backend/internal/apperrors"
	"github.com/sponsorconnect/backend/internal/config"
	"go.uber.org/zap"
)

type Uploader interface {
	// Upload stores body under key and returns its public URL.
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// CheckImage validates a banner upload and returns the file extension to store it under.
func CheckImage(contentType string, size, maxBytes int64) (string, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", apperrors.Validation("missing or malformed content type")
	}
	ext, ok := imageTypes[mediaType]
	if !ok {
		return "", apperrors.Validation("banner must be a jpeg, png, webp or gif image")
	}
	if size <= 0 {
		return "", apperrors.Validation("banner is empty")
	}
	if maxBytes > 0 && size > maxBytes {
		return "", apperrors.Validation("banner exceeds %d bytes", maxBytes)
	}
	return ext, nil
}

// BannerKey is the object key of a new banner. Each upload gets a fresh key so
// cached copies of the previous banner never shadow the new one.
func BannerKey(campaignID uuid.UUID, ext string) string {
	return path.Join("banners", campaignID.String(), uuid.NewString()+ext)
}

type S3Uploader struct {
	uploader      *manager.Uploader
	bucket        string
	publicBaseURL string
	log           *zap.Logger
}

func NewS3Uploader(ctx context.Context, cfg *config.Config, log *zap.Logger) (*S3Uploader, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	if cfg.S3AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKeyID,
			cfg.S3SecretKey,
			"",
		)))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	base := cfg.S3PublicBaseURL
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.S3Region)
	}

	log.Info("s3 uploader ready", zap.String("bucket", cfg.S3Bucket), zap.String("endpoint", cfg.S3Endpoint))
	return &S3Uploader{
		uploader:      manager.NewUploader(client),
		bucket:        cfg.S3Bucket,
		publicBaseURL: strings.TrimRight(base, "/"),
		log:           log,
	}, nil
}

func (u *S3Uploader) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	_, err := u.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(u.bucket),
		Key:          aws.String(key),
		Body:         body,
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		u.log.Error("banner upload failed", zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return u.publicBaseURL + "/" + key, nil
}
