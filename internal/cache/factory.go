package cache

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
)

// Provider names accepted by New.
const (
	ProviderMemory = "memory"
	ProviderRedis  = "redis"
)

// ProviderConfig describes the table cache to build.
type ProviderConfig struct {
	// Provider selects the backend; empty means ProviderMemory. Case is ignored.
	Provider string

	// Size bounds the number of unified tables kept. It must be positive.
	Size int

	// TTL expires a table this long after it was stored. Zero disables expiry.
	TTL time.Duration

	OnEvict EvictCallback

	// Logger receives the redis failures that Get and Set cannot return.
	Logger Logger

	RedisAddress  string
	RedisPassword string
	RedisDB       int

	// KeyPrefix namespaces redis keys so several deployments can share a server.
	KeyPrefix string

	// Group, when set, labels the table cache metrics and turns them on.
	Group string
}

var constructors = map[string]func(ProviderConfig) (Cache, error){
	ProviderMemory: newMemoryCache,
	ProviderRedis:  newRedisCache,
}

// Providers returns the accepted provider names, sorted.
func Providers() []string {
	return slices.Sorted(maps.Keys(constructors))
}

// New builds the table cache described by cfg.
func New(cfg ProviderConfig) (Cache, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if name == "" {
		name = ProviderMemory
	}
	build, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("cache: unknown provider %q (known: %s)", cfg.Provider, strings.Join(Providers(), ", "))
	}
	if cfg.Size <= 0 {
		return nil, fmt.Errorf("cache: size must be positive, got %d", cfg.Size)
	}

	if cfg.Group == "" {
		return build(cfg)
	}
	return newMeteredCache(build, cfg)
}
