// Package config loads the JSON file that names the object store a
// session replicates against: endpoint, bucket, and credentials.
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/olsdb/olsdb/objectlog"
)

// Config is the on-disk shape of the --config JSON file.
type Config struct {
	S3Bucket           string `json:"s3bucket"`
	S3BucketAuthKey    string `json:"s3bucket_auth_key"`
	S3BucketAuthSecret string `json:"s3bucket_auth_secret"`
}

// Load reads and decodes the config file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Endpoint and Bucket split cfg.S3Bucket on "/": the last path segment
// is the bucket name, everything before it is the endpoint URL. This
// reproduces the Python original's S3Bucket.__init__ behavior, so a
// single config value like "https://s3.example.com/mydb" yields
// endpoint "https://s3.example.com" and bucket "mydb".
func (c Config) Endpoint() string {
	i := strings.LastIndex(c.S3Bucket, "/")
	if i < 0 {
		return ""
	}
	return c.S3Bucket[:i]
}

func (c Config) Bucket() string {
	i := strings.LastIndex(c.S3Bucket, "/")
	if i < 0 {
		return c.S3Bucket
	}
	return c.S3Bucket[i+1:]
}

// ObjectLogStore builds the S3-backed objectlog.Store described by c,
// with the default 30s per-call timeout.
func (c Config) ObjectLogStore(ctx context.Context) (*objectlog.S3Store, error) {
	return objectlog.NewS3Store(ctx, objectlog.S3Config{
		Endpoint:  c.Endpoint(),
		Bucket:    c.Bucket(),
		AccessKey: c.S3BucketAuthKey,
		SecretKey: c.S3BucketAuthSecret,
		Timeout:   30 * time.Second,
	})
}
