package scribe

import (
	"time"

	"github.com/jellydator/ttlcache/v3"
)

const liveConfigTTL = 30 * time.Second

// LiveConfig serves the on-disk configuration, re-reading the file at most
// once per TTL. Environment overrides are applied on every read.
type LiveConfig struct {
	path  string
	cache *ttlcache.Cache[string, *Config]
}

// NewLiveConfig creates a LiveConfig for the given config file path.
// An empty path means ConfigPath().
func NewLiveConfig(path string) *LiveConfig {
	if path == "" {
		path = ConfigPath()
	}
	c := ttlcache.New[string, *Config](
		ttlcache.WithTTL[string, *Config](liveConfigTTL),
		ttlcache.WithDisableTouchOnHit[string, *Config](),
	)
	go c.Start()
	return &LiveConfig{path: path, cache: c}
}

// Get returns the current configuration with environment overrides applied.
func (lc *LiveConfig) Get() (*Config, error) {
	cfg, err := lc.load()
	if err != nil {
		return nil, err
	}
	return Resolved(cfg), nil
}

// File returns a copy of the configuration as written on disk, without
// environment overrides.
func (lc *LiveConfig) File() (*Config, error) {
	cfg, err := lc.load()
	if err != nil {
		return nil, err
	}
	out := *cfg
	return &out, nil
}

func (lc *LiveConfig) load() (*Config, error) {
	if item := lc.cache.Get(lc.path); item != nil {
		return item.Value(), nil
	}
	cfg, err := LoadConfigFile(lc.path)
	if err != nil {
		return nil, err
	}
	lc.cache.Set(lc.path, cfg, ttlcache.DefaultTTL)
	return cfg, nil
}

// Invalidate drops the cached configuration so the next Get re-reads the file.
func (lc *LiveConfig) Invalidate() {
	lc.cache.Delete(lc.path)
}

// Close stops the cache expiration loop.
func (lc *LiveConfig) Close() {
	lc.cache.Stop()
}
