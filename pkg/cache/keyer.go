package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// RenderKeyOpts is everything besides the chart name that changes a
// rendered artifact.
type RenderKeyOpts struct {
	Kind    string `json:"kind"`
	Format  string `json:"format"`
	Animate bool   `json:"animate,omitempty"`
	// Config is a fingerprint of the chart config (size, options, sources).
	Config string `json:"config"`
	// State is a fingerprint of the view state.
	State string `json:"state"`
	// Data is a fingerprint of the loaded data, so a refresh that changes
	// the upstream files invalidates the artifact.
	Data string `json:"data,omitempty"`
}

// Keyer generates cache keys.
type Keyer interface {
	// RenderKey keys a rendered artifact of a chart.
	RenderKey(chart string, opts RenderKeyOpts) string
	// SnapshotKey keys the rendered output of a stored snapshot.
	SnapshotKey(id, format string) string
}

// DefaultKeyer produces "render:<chart>:<hash>" and "snapshot:<id>:<format>"
// keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) RenderKey(chart string, opts RenderKeyOpts) string {
	b, _ := json.Marshal(opts)
	return "render:" + chart + ":" + Hash(b)
}

func (DefaultKeyer) SnapshotKey(id, format string) string {
	return "snapshot:" + id + ":" + format
}

// Hash is the hex SHA-256 of data. Render keys and data fingerprints use
// it.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
