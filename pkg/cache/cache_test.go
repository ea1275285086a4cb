package cache

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit || data != nil {
		t.Errorf("Get = %q, %v, want miss", data, hit)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
	if n, err := c.(Clearer).Clear(ctx); n != 0 || err != nil {
		t.Errorf("Clear = %d, %v, want 0, nil", n, err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}

	if err := c.Set(ctx, "render:bar", []byte("<svg/>"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "render:bar")
	if err != nil || !hit || string(data) != "<svg/>" {
		t.Errorf("Get = %q, %v, %v, want <svg/>, true, nil", data, hit, err)
	}

	if err := c.Delete(ctx, "render:bar"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "render:bar"); hit {
		t.Error("Get after Delete should miss")
	}
	if err := c.Delete(ctx, "render:bar"); err != nil {
		t.Errorf("Delete of missing key error: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should miss")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed from disk")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(c.path("k"), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("Get(corrupt) = %v, %v, want miss without error", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	n, err := c.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear = %d, want 3", n)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("Get after Clear should miss")
	}
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	if _, err := Load(ctx, c, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load(missing) error = %v, want ErrNotFound", err)
	}
	_ = c.Set(ctx, "k", []byte("v"), 0)
	if data, err := Load(ctx, c, "k"); err != nil || string(data) != "v" {
		t.Errorf("Load(k) = %q, %v", data, err)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		backend Backend
		wantErr bool
	}{
		{BackendFile, false},
		{BackendNone, false},
		{"memcached", true},
	}
	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			c, err := Open(ctx, Options{Backend: tt.backend, Dir: t.TempDir()})
			if (err != nil) != tt.wantErr {
				t.Fatalf("Open(%q) error = %v, wantErr %v", tt.backend, err, tt.wantErr)
			}
			if c != nil {
				c.Close()
			}
		})
	}
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("VIZLAB_TEST_REDIS")
	if addr == "" {
		t.Skip("VIZLAB_TEST_REDIS not set")
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, RedisConfig{Addr: addr, Prefix: "vizlab-test:"})
	if err != nil {
		t.Fatalf("NewRedisCache error: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if data, hit, err := c.Get(ctx, "k"); err != nil || !hit || string(data) != "v" {
		t.Errorf("Get = %q, %v, %v", data, hit, err)
	}
	if n, err := c.Clear(ctx); err != nil || n < 1 {
		t.Errorf("Clear = %d, %v, want >= 1", n, err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("Get after Clear should miss")
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length = %d, want 64", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	base := RenderKeyOpts{Kind: "bar", Format: "svg", Config: "c1", State: "s1"}
	k1 := k.RenderKey("revenue", base)
	if !strings.HasPrefix(k1, "render:revenue:") {
		t.Errorf("RenderKey = %s, want render:revenue: prefix", k1)
	}
	if k1 != k.RenderKey("revenue", base) {
		t.Error("RenderKey should be deterministic")
	}

	variants := []RenderKeyOpts{
		{Kind: "bar", Format: "png", Config: "c1", State: "s1"},
		{Kind: "bar", Format: "svg", Config: "c1", State: "s2"},
		{Kind: "bar", Format: "svg", Config: "c1", State: "s1", Animate: true},
		{Kind: "bar", Format: "svg", Config: "c1", State: "s1", Data: "d2"},
	}
	for _, v := range variants {
		if k.RenderKey("revenue", v) == k1 {
			t.Errorf("RenderKey(%+v) collides with the base key", v)
		}
	}

	if got := k.SnapshotKey("abc", "png"); got != "snapshot:abc:png" {
		t.Errorf("SnapshotKey = %s, want snapshot:abc:png", got)
	}
}

func TestFileCacheRawArtifact(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	if err := c.Set(ctx, "render:bar", []byte("<svg/>\n"), 0); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(c.path("render:bar"))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(raw), "0\n<svg/>\n"; got != want {
		t.Errorf("entry file = %q, want %q", got, want)
	}
}
