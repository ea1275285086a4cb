package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Backend names a cache implementation.
type Backend string

const (
	BackendFile  Backend = "file"
	BackendRedis Backend = "redis"
	BackendNone  Backend = "none"
)

// Options selects and configures a backend for [Open].
type Options struct {
	Backend Backend
	// Dir is the FileCache directory.
	Dir   string
	Redis RedisConfig
}

// Open builds the configured backend, instrumented for observability.
func Open(ctx context.Context, opts Options) (Cache, error) {
	var (
		c   Cache
		err error
	)
	switch opts.Backend {
	case BackendFile, "":
		dir := opts.Dir
		if dir == "" {
			if dir, err = DefaultDir(); err != nil {
				return nil, err
			}
		}
		c, err = NewFileCache(dir)
	case BackendRedis:
		c, err = NewRedisCache(ctx, opts.Redis)
	case BackendNone:
		c = NewNullCache()
	default:
		return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
	}
	if err != nil {
		return nil, err
	}
	return Instrument(c, "render"), nil
}

// DefaultDir is the render cache directory under the user cache dir.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("locate cache dir: %w", err)
	}
	return filepath.Join(base, "vizlab", "render"), nil
}
