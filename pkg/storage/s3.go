package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"
)

const (
	// MaxPhotoSize is the maximum allowed file size for photo uploads (5MB).
	MaxPhotoSize = 5 * 1024 * 1024
	// FolderMenuItems is the S3 prefix for menu-item photos.
	FolderMenuItems = "menu-items"
	// FolderMenuCards is the S3 prefix for full menu-card photos.
	FolderMenuCards = "menu-cards"
)

// Allowed photo MIME types and their canonical extensions.
var allowedPhotoTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// S3Config holds S3 client configuration.
type S3Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	PhotosBucket    string
	CDNBaseURL      string
}

// S3 provides photo storage on S3 with type validation and public URLs.
type S3 struct {
	client   *s3.Client
	uploader *manager.Uploader
	cfg      S3Config
	logger   *zap.Logger
}

// NewS3 creates an S3 client using credentials from config or the environment
// (AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY).
func NewS3(ctx context.Context, cfg S3Config, logger *zap.Logger) (*S3, error) {
	accessKey := cfg.AccessKeyID
	secretKey := cfg.SecretAccessKey
	if accessKey == "" || secretKey == "" {
		accessKey = os.Getenv("AWS_ACCESS_KEY_ID")
		secretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	}
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if accessKey != "" && secretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKey, secretKey, "",
		)))
	} else if logger != nil {
		logger.Warn("S3 client using default credential chain (AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY not set)")
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg)
	uploader := manager.NewUploader(client)
	return &S3{
		client:   client,
		uploader: uploader,
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// ValidatePhotoType returns true if the content type is an allowed image type.
func ValidatePhotoType(contentType string) bool {
	_, ok := allowedPhotoTypes[strings.ToLower(contentType)]
	return ok
}

// PhotoKey returns a random S3 object key under the given folder, keeping the
// original file extension.
func PhotoKey(folder, filename string) string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return path.Join(folder, hex.EncodeToString(buf)+strings.ToLower(path.Ext(filename)))
}

// UploadPhoto streams a photo to the photos bucket and returns its public URL.
func (s *S3) UploadPhoto(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.PhotosBucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
		ACL:         types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}
	return s.ObjectURL(key), nil
}

// ObjectURL returns the public URL for an object, preferring the CDN base URL
// when configured.
func (s *S3) ObjectURL(key string) string {
	if s.cfg.CDNBaseURL != "" {
		return strings.TrimRight(s.cfg.CDNBaseURL, "/") + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.PhotosBucket, s.cfg.Region, key)
}

// KeyFromURL extracts the object key from a photo URL previously produced by
// ObjectURL. Returns empty string when the URL cannot be parsed.
func KeyFromURL(photoURL string) string {
	u, err := url.Parse(photoURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Path, "/")
}

// DeletePhoto removes a photo object from the photos bucket.
func (s *S3) DeletePhoto(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.PhotosBucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}
