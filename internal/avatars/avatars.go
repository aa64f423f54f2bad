package avatars

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var ErrInvalidKey = errors.New("invalid avatar key")

const keyPrefix = "avatars/"

// Service hands out short-lived download URLs for profile images stored in
// the object bucket the content store references by key.
type Service struct {
	bucket    string
	ttl       time.Duration
	presigner *s3.PresignClient
}

func New(bucket string, ttl time.Duration, presigner *s3.PresignClient) *Service {
	return &Service{bucket: bucket, ttl: ttl, presigner: presigner}
}

// ValidateKey rejects keys outside the avatar namespace and anything that
// could traverse out of it.
func ValidateKey(key string) error {
	if key == "" || !strings.HasPrefix(key, keyPrefix) {
		return ErrInvalidKey
	}
	if strings.Contains(key, "..") || strings.Contains(key, "//") {
		return ErrInvalidKey
	}
	return nil
}

// PresignDownload returns a presigned GET URL for the given avatar key.
func (s *Service) PresignDownload(ctx context.Context, key string) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}

	req := &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}

	ps, err := s.presigner.PresignGetObject(ctx, req, func(po *s3.PresignOptions) {
		po.Expires = s.ttl
	})

	if err != nil {
		return "", err
	}

	return ps.URL, nil
}
