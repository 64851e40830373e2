package objectstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"

	"hearsight/internal/contextutil"
)

var ossPatterns = []string{".aliyuncs.com/", ".oss-cn-", "oss://"}

// IsOSSURL reports whether rawURL points into Aliyun OSS.
func IsOSSURL(rawURL string) bool {
	if rawURL == "" {
		return false
	}
	for _, p := range ossPatterns {
		if strings.Contains(rawURL, p) {
			return true
		}
	}
	return false
}

// Normalize prefixes https:// to an OSS path stored without a scheme.
func Normalize(rawURL string) string {
	if strings.HasPrefix(rawURL, "http://") || strings.HasPrefix(rawURL, "https://") {
		return rawURL
	}
	if IsOSSURL(rawURL) && !strings.HasPrefix(rawURL, "oss://") {
		return "https://" + rawURL
	}
	return rawURL
}

// ObjectKey extracts the object key from an OSS URL, or "" if there is none.
func ObjectKey(rawURL string) string {
	if !IsOSSURL(rawURL) {
		return ""
	}
	u, err := url.Parse(Normalize(rawURL))
	if err != nil {
		return ""
	}
	// For oss://bucket/key the bucket parses as the host.
	return strings.TrimLeft(u.Path, "/")
}

type bucketSigner interface {
	SignURL(objectKey string, method oss.HTTPMethod, expiredInSec int64, options ...oss.Option) (string, error)
}

// OSSSigner produces time-limited GET URLs for objects in one bucket.
// A nil *OSSSigner leaves URLs unsigned.
type OSSSigner struct {
	bucket bucketSigner
}

// NewOSSSigner connects to the bucket. The SDK does not contact the server here.
func NewOSSSigner(endpoint, accessKeyID, accessKeySecret, bucketName string) (*OSSSigner, error) {
	client, err := oss.New(endpoint, accessKeyID, accessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create OSS client: %w", err)
	}
	bucket, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to open OSS bucket %s: %w", bucketName, err)
	}
	return &OSSSigner{bucket: bucket}, nil
}

// SignURL returns a signed URL valid for expires. Paths that are not OSS
// URLs, and any signing failure, fall back to the normalized input.
func (s *OSSSigner) SignURL(ctx context.Context, rawURL string, expires time.Duration) string {
	normalized := Normalize(rawURL)
	if s == nil || s.bucket == nil || !IsOSSURL(normalized) {
		return normalized
	}

	key := ObjectKey(normalized)
	if key == "" {
		return normalized
	}

	signed, err := s.bucket.SignURL(key, oss.HTTPGet, int64(expires/time.Second))
	if err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to sign OSS URL", "object_key", key, "error", err)
		return normalized
	}
	return signed
}
