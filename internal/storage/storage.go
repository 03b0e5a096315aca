// Package storage issues presigned upload/download URLs. Backends are
// interchangeable; selection happens once at startup from configuration.
package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"

	"bookstore/internal/config"
)

// Backend grants time-limited direct access to a storage object without
// further authentication.
type Backend interface {
	PresignUpload(key string, ttl time.Duration) (string, map[string]string, error)
	PresignDownload(key string, ttl time.Duration) (string, error)
}

// Select returns the backend named by configuration, defaulting to local.
func Select(cfg *config.Settings) Backend {
	switch strings.ToLower(cfg.StorageBackend) {
	case "s3":
		return &S3Backend{Bucket: cfg.S3Bucket, Region: cfg.S3Region}
	case "gcs":
		return &GCSBackend{Bucket: cfg.GCSBucket}
	default:
		return &LocalBackend{Secret: []byte(cfg.SecretKey)}
	}
}

// ─── Local ────────────────────────────────────────────────────────────────────

// LocalBackend emulates presigning with an HMAC over the key and expiry,
// to be validated by a colocated upload/download service.
type LocalBackend struct {
	Secret []byte
}

func (b *LocalBackend) sign(key string, expiry int64) string {
	mac := hmac.New(sha256.New, b.Secret)
	fmt.Fprintf(mac, "%s:%d", key, expiry)
	return hex.EncodeToString(mac.Sum(nil))
}

func (b *LocalBackend) presign(path, key string, ttl time.Duration) string {
	expiry := time.Now().UTC().Add(ttl).Unix()
	q := url.Values{}
	q.Set("key", key)
	q.Set("exp", fmt.Sprintf("%d", expiry))
	q.Set("sig", b.sign(key, expiry))
	return path + "?" + q.Encode()
}

func (b *LocalBackend) PresignUpload(key string, ttl time.Duration) (string, map[string]string, error) {
	return b.presign("/storage/local/upload", sanitizeKey(key), ttl), map[string]string{}, nil
}

func (b *LocalBackend) PresignDownload(key string, ttl time.Duration) (string, error) {
	return b.presign("/storage/local/download", sanitizeKey(key), ttl), nil
}

// VerifySignature checks a presigned local URL's signature and expiry.
func (b *LocalBackend) VerifySignature(key string, expiry int64, sig string) bool {
	if time.Now().UTC().Unix() > expiry {
		return false
	}
	return hmac.Equal([]byte(b.sign(key, expiry)), []byte(sig))
}

func sanitizeKey(key string) string {
	key = strings.TrimPrefix(key, "/")
	return strings.ReplaceAll(key, "..", "")
}

// ─── S3 ───────────────────────────────────────────────────────────────────────

// S3Backend builds S3-shaped presigned URLs. Real deployments should swap in
// SDK-signed URLs; the URL shape is what the API contract promises.
type S3Backend struct {
	Bucket string
	Region string
}

func (b *S3Backend) objectURL(key string, ttl time.Duration) string {
	host := b.Bucket + ".s3"
	if b.Region != "" {
		host += "-" + b.Region
	}
	q := url.Values{}
	q.Set("X-Amz-Expires", fmt.Sprintf("%d", int(ttl.Seconds())))
	return fmt.Sprintf("https://%s.amazonaws.com/%s?%s", host, sanitizeKey(key), q.Encode())
}

func (b *S3Backend) PresignUpload(key string, ttl time.Duration) (string, map[string]string, error) {
	return b.objectURL(key, ttl), map[string]string{}, nil
}

func (b *S3Backend) PresignDownload(key string, ttl time.Duration) (string, error) {
	return b.objectURL(key, ttl), nil
}

// ─── GCS ──────────────────────────────────────────────────────────────────────

type GCSBackend struct {
	Bucket string
}

func (b *GCSBackend) objectURL(key string, ttl time.Duration) string {
	return fmt.Sprintf(
		"https://storage.googleapis.com/%s/%s?Expires=%d",
		b.Bucket, sanitizeKey(key), int(ttl.Seconds()),
	)
}

func (b *GCSBackend) PresignUpload(key string, ttl time.Duration) (string, map[string]string, error) {
	return b.objectURL(key, ttl), map[string]string{}, nil
}

func (b *GCSBackend) PresignDownload(key string, ttl time.Duration) (string, error) {
	return b.objectURL(key, ttl), nil
}
