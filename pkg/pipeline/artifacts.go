package pipeline

import (
	"os"
	"path/filepath"
	"slices"

	"github.com/matzehuels/vizlab/pkg/errors"
	"github.com/matzehuels/vizlab/pkg/render/sink"
)

// ArtifactPath is where an artifact of chart name is written under dir.
func ArtifactPath(dir, name string, f sink.Format) string {
	return filepath.Join(dir, name+"."+f.Extension())
}

// WriteArtifacts writes every artifact to dir and returns the paths in
// format order.
func WriteArtifacts(dir, name string, artifacts map[sink.Format][]byte) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "create output directory %s", dir)
	}
	formats := make([]sink.Format, 0, len(artifacts))
	for f := range artifacts {
		formats = append(formats, f)
	}
	slices.SortFunc(formats, func(a, b sink.Format) int {
		return slices.Index(sink.Formats, a) - slices.Index(sink.Formats, b)
	})

	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		path := ArtifactPath(dir, name, f)
		if err := os.WriteFile(path, artifacts[f], 0o644); err != nil {
			return paths, errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
