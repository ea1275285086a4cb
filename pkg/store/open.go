package store

import (
	"context"
	"os"
	"path/filepath"

	"github.com/matzehuels/vizlab/pkg/errors"
)

// Backend names a snapshot store implementation.
type Backend string

const (
	BackendBolt   Backend = "bolt"
	BackendSQLite Backend = "sqlite"
	BackendMongo  Backend = "mongo"
	BackendMemory Backend = "memory"
)

// Options selects and configures a backend for [Open].
type Options struct {
	Backend Backend
	// Path is the database file of the bolt and sqlite backends; empty
	// means a file under DefaultDir.
	Path  string
	Mongo MongoConfig
}

// Open returns the configured store. An empty backend means bolt.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case BackendBolt, "":
		path, err := pathOr(opts.Path, "snapshots.db")
		if err != nil {
			return nil, err
		}
		return wrapOpen(NewBoltStore(path))
	case BackendSQLite:
		path, err := pathOr(opts.Path, "snapshots.sqlite")
		if err != nil {
			return nil, err
		}
		return wrapOpen(NewSQLiteStore(path))
	case BackendMongo:
		if opts.Mongo.URI == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "mongo store: uri is required")
		}
		s, err := NewMongoStore(ctx, opts.Mongo)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeNetwork, err, "open snapshot store")
		}
		return s, nil
	case BackendMemory:
		return NewMemoryStore(), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown snapshot store %q (want bolt, sqlite, mongo or memory)", opts.Backend)
}

func wrapOpen[S Store](s S, err error) (Store, error) {
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "open snapshot store")
	}
	return s, nil
}

func pathOr(path, file string) (string, error) {
	if path != "" {
		return path, nil
	}
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, file), nil
}

// DefaultDir is the directory of the local snapshot databases.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "locate config directory")
	}
	return filepath.Join(base, "vizlab"), nil
}
