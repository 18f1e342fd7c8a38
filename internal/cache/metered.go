package cache

// meteredCache publishes the table cache metrics of one group around another
// Cache. Contains and Len pass straight through.
type meteredCache struct {
	Cache
	group string
}

// newMeteredCache builds the backend with an OnEvict that also counts
// evictions, then wraps it.
func newMeteredCache(build func(ProviderConfig) (Cache, error), cfg ProviderConfig) (*meteredCache, error) {
	group, next := cfg.Group, cfg.OnEvict
	cfg.OnEvict = func(fingerprint string, payload []byte) {
		EvictionsTotal.WithLabelValues(group).Inc()
		if next != nil {
			next(fingerprint, payload)
		}
	}

	backend, err := build(cfg)
	if err != nil {
		return nil, err
	}
	trackEntries(group, backend.Len)
	return &meteredCache{Cache: backend, group: group}, nil
}

func (m *meteredCache) Get(fingerprint string) ([]byte, bool) {
	payload, ok := m.Cache.Get(fingerprint)
	result := lookupMiss
	if ok {
		result = lookupHit
	}
	LookupsTotal.WithLabelValues(m.group, result).Inc()
	return payload, ok
}

func (m *meteredCache) Set(fingerprint string, payload []byte) {
	StoredBytes.WithLabelValues(m.group).Observe(float64(len(payload)))
	m.Cache.Set(fingerprint, payload)
}

func (m *meteredCache) Remove(fingerprint string) {
	InvalidationsTotal.WithLabelValues(m.group).Inc()
	m.Cache.Remove(fingerprint)
}

func (m *meteredCache) Close() error {
	untrackEntries(m.group)
	return m.Cache.Close()
}
