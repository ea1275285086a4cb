package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/vizlab/pkg/chart"
)

func TestRecordFrames(t *testing.T) {
	ctx := context.Background()
	c, err := chart.Open(ctx, nil, chart.Config{Name: "wheel", Kind: chart.Pie})
	if err != nil {
		t.Fatalf("chart.Open() error: %v", err)
	}
	dir := t.TempDir()

	paths, err := recordFrames(ctx, c, c.Defaults(), frameRecorder{
		dir:      dir,
		name:     "wheel",
		frames:   3,
		interval: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("recordFrames() error: %v", err)
	}

	want := []string{
		filepath.Join(dir, "wheel-0000.svg"),
		filepath.Join(dir, "wheel-0001.svg"),
		filepath.Join(dir, "wheel-0002.svg"),
		filepath.Join(dir, "wheel-0003.svg"),
	}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Errorf("paths mismatch (-want +got):\n%s", diff)
	}
	first, err := os.ReadFile(paths[0])
	if err != nil {
		t.Fatal(err)
	}
	last, err := os.ReadFile(paths[len(paths)-1])
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(first), "<svg") {
		t.Errorf("frame 0 is not SVG: %.60s", first)
	}
	if string(first) == string(last) {
		t.Error("wheel did not rotate between the first and last frame")
	}
}

func TestRecordFramesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c, err := chart.Open(ctx, nil, chart.Config{Name: "wheel", Kind: chart.Pie})
	if err != nil {
		t.Fatalf("chart.Open() error: %v", err)
	}
	cancel()

	_, err = recordFrames(ctx, c, c.Defaults(), frameRecorder{
		dir:      t.TempDir(),
		name:     "wheel",
		frames:   100,
		interval: time.Hour,
	})
	if err == nil {
		t.Fatal("recordFrames() on a cancelled context should fail")
	}
}
