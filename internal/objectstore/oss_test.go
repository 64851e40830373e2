package objectstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

type fakeBucket struct {
	gotKey     string
	gotMethod  oss.HTTPMethod
	gotExpires int64
	err        error
}

func (f *fakeBucket) SignURL(objectKey string, method oss.HTTPMethod, expiredInSec int64, _ ...oss.Option) (string, error) {
	f.gotKey = objectKey
	f.gotMethod = method
	f.gotExpires = expiredInSec
	if f.err != nil {
		return "", f.err
	}
	return "https://signed.example/" + objectKey + "?Expires=1", nil
}

func TestIsOSSURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://bucket.oss-cn-shanghai.aliyuncs.com/videos/a.mp4", true},
		{"bucket.oss-cn-hangzhou.aliyuncs.com/videos/a.mp4", true},
		{"oss://bucket/videos/a.mp4", true},
		{"/data/videos/a.mp4", false},
		{"https://cdn.example.com/a.mp4", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsOSSURL(tt.url); got != tt.want {
			t.Errorf("IsOSSURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"bucket.oss-cn-shanghai.aliyuncs.com/v/a.mp4", "https://bucket.oss-cn-shanghai.aliyuncs.com/v/a.mp4"},
		{"https://bucket.oss-cn-shanghai.aliyuncs.com/v/a.mp4", "https://bucket.oss-cn-shanghai.aliyuncs.com/v/a.mp4"},
		{"http://example.com/a.mp4", "http://example.com/a.mp4"},
		{"/local/a.mp4", "/local/a.mp4"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestObjectKey(t *testing.T) {
	if got := ObjectKey("https://bucket.oss-cn-shanghai.aliyuncs.com/videos/2025-12-07/abc_video.mp4"); got != "videos/2025-12-07/abc_video.mp4" {
		t.Errorf("ObjectKey() = %q", got)
	}
	if got := ObjectKey("/local/a.mp4"); got != "" {
		t.Errorf("ObjectKey(local) = %q, want empty", got)
	}
}

func TestOSSSigner_SignURL(t *testing.T) {
	ctx := context.Background()

	t.Run("signs OSS object", func(t *testing.T) {
		fb := &fakeBucket{}
		s := &OSSSigner{bucket: fb}

		got := s.SignURL(ctx, "bucket.oss-cn-shanghai.aliyuncs.com/videos/a.mp4", time.Hour)
		if got != "https://signed.example/videos/a.mp4?Expires=1" {
			t.Errorf("SignURL() = %q", got)
		}
		if fb.gotKey != "videos/a.mp4" || fb.gotMethod != oss.HTTPGet || fb.gotExpires != 3600 {
			t.Errorf("bucket called with key=%q method=%v expires=%d", fb.gotKey, fb.gotMethod, fb.gotExpires)
		}
	})

	t.Run("local path is returned unchanged", func(t *testing.T) {
		fb := &fakeBucket{}
		s := &OSSSigner{bucket: fb}
		if got := s.SignURL(ctx, "/data/a.mp4", time.Hour); got != "/data/a.mp4" {
			t.Errorf("SignURL() = %q", got)
		}
		if fb.gotKey != "" {
			t.Error("bucket should not be called for local paths")
		}
	})

	t.Run("signing failure falls back to normalized URL", func(t *testing.T) {
		s := &OSSSigner{bucket: &fakeBucket{err: errors.New("denied")}}
		got := s.SignURL(ctx, "bucket.oss-cn-shanghai.aliyuncs.com/videos/a.mp4", time.Hour)
		if got != "https://bucket.oss-cn-shanghai.aliyuncs.com/videos/a.mp4" {
			t.Errorf("SignURL() = %q", got)
		}
	})

	t.Run("nil signer", func(t *testing.T) {
		var s *OSSSigner
		if got := s.SignURL(ctx, "bucket.oss-cn-shanghai.aliyuncs.com/a.mp4", time.Hour); got != "https://bucket.oss-cn-shanghai.aliyuncs.com/a.mp4" {
			t.Errorf("SignURL() = %q", got)
		}
	})
}

func TestNewOSSSigner(t *testing.T) {
	s, err := NewOSSSigner("https://oss-cn-shanghai.aliyuncs.com", "id", "secret", "my-bucket")
	if err != nil {
		t.Fatalf("NewOSSSigner() error = %v", err)
	}
	got := s.SignURL(context.Background(), "https://my-bucket.oss-cn-shanghai.aliyuncs.com/v/a.mp4", time.Hour)
	if got == "https://my-bucket.oss-cn-shanghai.aliyuncs.com/v/a.mp4" {
		t.Error("expected a signed URL")
	}
}
