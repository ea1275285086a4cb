// Package config loads the project file that describes a chart gallery.
//
// The file is vizlab.toml or vizlab.yaml; the extension picks the decoder.
// After decoding, environment variables override selected settings, then
// defaults fill the gaps and [Config.Validate] checks the result:
//
//	VIZLAB_CACHE       cache backend (file, redis, none)
//	VIZLAB_REDIS_ADDR  redis address for the cache and sessions
//	VIZLAB_STORE       snapshot store backend (bolt, sqlite, mongo, memory)
//	VIZLAB_MONGO_URI   mongo connection string
//	VIZLAB_ADDR        server listen address
//	VIZLAB_REFRESH     cron spec of the scheduled refresh
//
// Relative data sources are resolved against the data directory, which
// defaults to the directory holding the config file.
package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/vizlab/pkg/chart"
	"github.com/matzehuels/vizlab/pkg/errors"
	"github.com/matzehuels/vizlab/pkg/render/sink"
	"github.com/matzehuels/vizlab/pkg/schedule"
)

// Files are the names searched by [Find], in order.
var Files = []string{"vizlab.toml", "vizlab.yaml", "vizlab.yml"}

// Config is a chart gallery project.
type Config struct {
	Title string `toml:"title" yaml:"title"`
	// DataDir is the base of relative data sources.
	DataDir string `toml:"data_dir" yaml:"data_dir"`

	Output  Output  `toml:"output" yaml:"output"`
	Cache   Cache   `toml:"cache" yaml:"cache"`
	Store   Store   `toml:"store" yaml:"store"`
	Server  Server  `toml:"server" yaml:"server"`
	Refresh Refresh `toml:"refresh" yaml:"refresh"`

	Charts []chart.Config `toml:"charts" yaml:"charts"`

	// path is the file the config was loaded from, if any.
	path string
}

// Output configures rendered files.
type Output struct {
	Dir     string   `toml:"dir" yaml:"dir"`
	Formats []string `toml:"formats" yaml:"formats"`
	Animate bool     `toml:"animate" yaml:"animate"`
}

// Cache configures the render cache.
type Cache struct {
	Backend string `toml:"backend" yaml:"backend"`
	Dir     string `toml:"dir" yaml:"dir"`
	Redis   Redis  `toml:"redis" yaml:"redis"`
}

// Redis is a redis connection.
type Redis struct {
	Addr     string `toml:"addr" yaml:"addr"`
	Password string `toml:"password" yaml:"password"`
	DB       int    `toml:"db" yaml:"db"`
}

// Store configures the snapshot store.
type Store struct {
	Backend       string `toml:"backend" yaml:"backend"`
	Path          string `toml:"path" yaml:"path"`
	MongoURI      string `toml:"mongo_uri" yaml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database" yaml:"mongo_database"`
}

// Server configures the HTTP server.
type Server struct {
	Addr string `toml:"addr" yaml:"addr"`
	// Sessions is "memory", "file" or "redis".
	Sessions   string        `toml:"sessions" yaml:"sessions"`
	SessionDir string        `toml:"session_dir" yaml:"session_dir"`
	SessionTTL time.Duration `toml:"session_ttl" yaml:"session_ttl"`
}

// Refresh configures the scheduled re-render of the gallery.
type Refresh struct {
	// Schedule is a cron spec; empty disables the refresh.
	Schedule string `toml:"schedule" yaml:"schedule"`
	// Charts limits the refresh to these charts; empty means all.
	Charts  []string `toml:"charts" yaml:"charts"`
	OnStart bool     `toml:"on_start" yaml:"on_start"`
}

// Defaults.
const (
	DefaultOutputDir  = "out"
	DefaultAddr       = ":8080"
	DefaultSessionTTL = 2 * time.Hour
)

// Find returns the first config file from [Files] in dir, or "" if none
// exists.
func Find(dir string) string {
	for _, name := range Files {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Load reads the config at path. An empty path searches the working
// directory with [Find] and falls back to an empty gallery.
func Load(path string) (*Config, error) {
	if path == "" {
		path = Find(".")
	}
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "config file %s not found", path)
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config")
		}
		cfg, err = Parse(data, filepath.Ext(path))
		if err != nil {
			return nil, err
		}
		cfg.path = path
	}

	cfg.applyEnv()
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes a config file body; ext (".toml", ".yaml" or ".yml")
// picks the decoder. Environment overrides and defaults are not applied.
func Parse(data []byte, ext string) (*Config, error) {
	cfg := &Config{}
	switch strings.ToLower(ext) {
	case ".toml":
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "unknown config key %q", undecoded[0].String())
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && err != io.EOF {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported config format %q (want .toml or .yaml)", ext)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("VIZLAB_CACHE"); v != "" {
		c.Cache.Backend = v
	}
	if v := os.Getenv("VIZLAB_REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}
	if v := os.Getenv("VIZLAB_STORE"); v != "" {
		c.Store.Backend = v
	}
	if v := os.Getenv("VIZLAB_MONGO_URI"); v != "" {
		c.Store.MongoURI = v
	}
	if v := os.Getenv("VIZLAB_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("VIZLAB_REFRESH"); v != "" {
		c.Refresh.Schedule = v
	}
}

func (c *Config) setDefaults() {
	if c.DataDir == "" && c.path != "" {
		c.DataDir = filepath.Dir(c.path)
	}
	if c.DataDir != "" {
		if abs, err := filepath.Abs(c.DataDir); err == nil {
			c.DataDir = abs
		}
	}
	if c.Output.Dir == "" {
		c.Output.Dir = DefaultOutputDir
	}
	if len(c.Output.Formats) == 0 {
		c.Output.Formats = []string{string(sink.FormatSVG)}
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "file"
	}
	if c.Store.Backend == "" {
		c.Store.Backend = "bolt"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.Sessions == "" {
		c.Server.Sessions = "memory"
	}
	if c.Server.SessionTTL == 0 {
		c.Server.SessionTTL = DefaultSessionTTL
	}
	for i := range c.Charts {
		c.Charts[i].Sources = c.resolve(c.Charts[i].Sources)
	}
}

// resolve makes relative local sources relative to the data directory.
func (c *Config) resolve(sources map[string]string) map[string]string {
	if c.DataDir == "" || len(sources) == 0 {
		return sources
	}
	out := make(map[string]string, len(sources))
	for role, src := range sources {
		if src != "" && !errors.IsURL(src) && !filepath.IsAbs(src) {
			src = filepath.Join(c.DataDir, src)
		}
		out[role] = src
	}
	return out
}

// Validate checks the config for errors a run would hit later.
func (c *Config) Validate() error {
	seen := map[string]bool{}
	for i, ch := range c.Charts {
		if err := errors.ValidateChartName(ch.Name); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidChart, err, "charts[%d]", i)
		}
		if seen[ch.Name] {
			return errors.New(errors.ErrCodeInvalidChart, "duplicate chart name %q", ch.Name)
		}
		seen[ch.Name] = true
		if _, err := chart.ParseKind(string(ch.Kind)); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidChart, err, "chart %q", ch.Name)
		}
		for role, src := range ch.Sources {
			if err := validateSource(src); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "chart %q source %q", ch.Name, role)
			}
		}
	}
	for _, f := range c.Output.Formats {
		if _, err := sink.ParseFormat(f); err != nil {
			return err
		}
	}
	if !slices.Contains([]string{"file", "redis", "none"}, c.Cache.Backend) {
		return errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q (want file, redis or none)", c.Cache.Backend)
	}
	if c.Cache.Backend == "redis" && c.Cache.Redis.Addr == "" {
		return errors.New(errors.ErrCodeInvalidInput, "cache.redis.addr is required for the redis cache")
	}
	if !slices.Contains([]string{"bolt", "sqlite", "mongo", "memory"}, c.Store.Backend) {
		return errors.New(errors.ErrCodeInvalidInput, "unknown store backend %q (want bolt, sqlite, mongo or memory)", c.Store.Backend)
	}
	if c.Store.Backend == "mongo" && c.Store.MongoURI == "" {
		return errors.New(errors.ErrCodeInvalidInput, "store.mongo_uri is required for the mongo store")
	}
	if !slices.Contains([]string{"memory", "file", "redis"}, c.Server.Sessions) {
		return errors.New(errors.ErrCodeInvalidInput, "unknown session store %q (want memory, file or redis)", c.Server.Sessions)
	}
	if c.Server.Sessions == "redis" && c.Cache.Redis.Addr == "" {
		return errors.New(errors.ErrCodeInvalidInput, "cache.redis.addr is required for redis sessions")
	}
	if c.Refresh.Schedule != "" {
		if err := schedule.Validate(c.Refresh.Schedule); err != nil {
			return err
		}
	}
	for _, name := range c.Refresh.Charts {
		if !seen[name] {
			return errors.New(errors.ErrCodeInvalidChart, "refresh names unknown chart %q", name)
		}
	}
	return nil
}

func validateSource(src string) error {
	if errors.IsURL(src) {
		return errors.ValidateURL(src)
	}
	return errors.ValidatePath(src)
}

// Path returns the file the config was loaded from, or "".
func (c *Config) Path() string { return c.path }

// Chart returns the gallery chart called name.
func (c *Config) Chart(name string) (chart.Config, error) {
	for _, ch := range c.Charts {
		if ch.Name == name {
			return ch, nil
		}
	}
	return chart.Config{}, errors.New(errors.ErrCodeNotFound, "no chart named %q", name)
}

// Names returns the gallery chart names in file order.
func (c *Config) Names() []string {
	out := make([]string, len(c.Charts))
	for i, ch := range c.Charts {
		out[i] = ch.Name
	}
	return out
}

// Formats returns the configured output formats.
func (c *Config) Formats() []sink.Format {
	out := make([]sink.Format, 0, len(c.Output.Formats))
	for _, f := range c.Output.Formats {
		if pf, err := sink.ParseFormat(f); err == nil {
			out = append(out, pf)
		}
	}
	return out
}
