// Package store persists chart snapshots: a chart's view state at one
// moment, with its SVG rendering.
//
// Backends:
//   - [BoltStore]: a local bbolt file (CLI default)
//   - [SQLiteStore]: an embedded SQLite database, queryable by other tools
//   - [MongoStore]: a MongoDB collection shared by server replicas
//   - [MemoryStore]: process memory, for tests and throwaway servers
//
// Every backend returns [ErrNotFound] for missing snapshots.
package store

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/vizlab/pkg/view"
)

// ErrNotFound is returned when a snapshot does not exist.
var ErrNotFound = errors.New("snapshot not found")

// Snapshot is a stored view of a chart.
type Snapshot struct {
	ID        string     `json:"id" bson:"_id"`
	Chart     string     `json:"chart" bson:"chart"`
	Kind      string     `json:"kind" bson:"kind"`
	Title     string     `json:"title,omitempty" bson:"title,omitempty"`
	State     view.State `json:"state" bson:"state"`
	SVG       []byte     `json:"svg,omitempty" bson:"svg,omitempty"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
}

// ListOptions filters [Store.List].
type ListOptions struct {
	// Chart restricts the listing to one gallery chart.
	Chart string
	// Limit caps the result; 0 means no limit.
	Limit int
}

// Store is a snapshot repository.
type Store interface {
	// Save stores s, assigning an ID and creation time when unset.
	Save(ctx context.Context, s *Snapshot) error
	// Get returns the snapshot id with its SVG.
	Get(ctx context.Context, id string) (*Snapshot, error)
	// List returns snapshots newest first, without their SVG.
	List(ctx context.Context, opts ListOptions) ([]Snapshot, error)
	// Delete removes snapshot id.
	Delete(ctx context.Context, id string) error
	Close() error
}

// prepare assigns the ID and creation time of a new snapshot.
func prepare(s *Snapshot) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	// Stores round-trip timestamps at millisecond precision.
	s.CreatedAt = s.CreatedAt.Truncate(time.Millisecond)
}

// newestFirst sorts snapshots by creation time, newest first, breaking
// ties by ID so listings are stable.
func newestFirst(snaps []Snapshot) {
	slices.SortFunc(snaps, func(a, b Snapshot) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

// filter applies opts to snaps, which must be sorted, and strips the SVG.
func filter(snaps []Snapshot, opts ListOptions) []Snapshot {
	out := make([]Snapshot, 0, len(snaps))
	for _, s := range snaps {
		if opts.Chart != "" && s.Chart != opts.Chart {
			continue
		}
		s.SVG = nil
		out = append(out, s)
		if opts.Limit > 0 && len(out) == opts.Limit {
			break
		}
	}
	return out
}
