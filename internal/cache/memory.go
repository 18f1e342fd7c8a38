package cache

import "github.com/hashicorp/golang-lru/v2/expirable"

// memoryCache holds encoded tables in process. Payloads are copied in both
// directions: the loader reuses its encode buffer and callers may decode in
// place.
type memoryCache struct {
	tables *expirable.LRU[string, []byte]
}

func newMemoryCache(cfg ProviderConfig) (Cache, error) {
	var onEvict expirable.EvictCallback[string, []byte]
	if cfg.OnEvict != nil {
		onEvict = expirable.EvictCallback[string, []byte](cfg.OnEvict)
	}
	return &memoryCache{tables: expirable.NewLRU(cfg.Size, onEvict, cfg.TTL)}, nil
}

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}

func (m *memoryCache) Get(fingerprint string) ([]byte, bool) {
	payload, ok := m.tables.Get(fingerprint)
	if !ok {
		return nil, false
	}
	return clone(payload), true
}

func (m *memoryCache) Set(fingerprint string, payload []byte) {
	m.tables.Add(fingerprint, clone(payload))
}

// Remove also fires OnEvict, like an LRU eviction.
func (m *memoryCache) Remove(fingerprint string) {
	m.tables.Remove(fingerprint)
}

func (m *memoryCache) Contains(fingerprint string) bool {
	return m.tables.Contains(fingerprint)
}

func (m *memoryCache) Len() int {
	return m.tables.Len()
}

func (m *memoryCache) Close() error {
	return nil
}
