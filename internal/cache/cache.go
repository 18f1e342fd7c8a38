package cache

import "github.com/rs/zerolog"

// EvictCallback is called when an entry is evicted from the cache.
// Redis-backed caches report the key only; value is nil.
type EvictCallback func(key string, value []byte)

// Cache is a bounded key-value store used to memoize serialized unified
// tables under their source fingerprint.
type Cache interface {
	// Get returns the value stored under key and refreshes its recency.
	Get(key string) ([]byte, bool)

	// Set stores value under key, evicting the least recently used entries
	// when the cache is full.
	Set(key string, value []byte)

	// Remove drops key if present. Memory providers report it through OnEvict.
	Remove(key string)

	// Contains checks whether a key exists without affecting recency.
	Contains(key string) bool

	// Len returns the number of live entries.
	Len() int

	// Close releases any resources held by the cache (e.g., network connections).
	Close() error
}

// Logger receives errors that a cache operation could not return to its caller.
type Logger interface {
	Error(msg string, err error)
}

// zerologLogger adapts a zerolog.Logger to the Logger interface.
type zerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger wraps l so cache providers can report background failures.
func NewZerologLogger(l zerolog.Logger) Logger {
	return zerologLogger{log: l.With().Str("component", "cache").Logger()}
}

func (z zerologLogger) Error(msg string, err error) {
	z.log.Error().Err(err).Msg(msg)
}
