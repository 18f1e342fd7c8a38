package cache

import (
	"reflect"
	"testing"
	"time"
)

func TestNew_ProviderSelection(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		provider string
	}{
		{name: "empty defaults to memory", provider: ""},
		{name: "explicit memory", provider: "memory"},
		{name: "case and spaces ignored", provider: " Memory "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, err := New(ProviderConfig{Provider: tt.provider, Size: 4, TTL: time.Hour})
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			defer c.Close()

			if _, ok := c.(*memoryCache); !ok {
				t.Fatalf("Expected *memoryCache, got %T", c)
			}
		})
	}
}

func TestNew_GroupAddsMetrics(t *testing.T) {
	c, err := New(ProviderConfig{Provider: ProviderMemory, Size: 4, TTL: time.Hour, Group: "factory-group"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	if _, ok := c.(*meteredCache); !ok {
		t.Fatalf("Expected *meteredCache when Group is set, got %T", c)
	}
}

func TestNew_RejectsBadConfig(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		cfg  ProviderConfig
	}{
		{name: "unknown provider", cfg: ProviderConfig{Provider: "nonexistent", Size: 4}},
		{name: "zero size", cfg: ProviderConfig{Provider: ProviderMemory}},
		{name: "negative size", cfg: ProviderConfig{Provider: ProviderMemory, Size: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := New(tt.cfg); err == nil {
				t.Fatal("Expected an error")
			}
		})
	}
}

func TestProviders(t *testing.T) {
	t.Parallel()
	if got, want := Providers(), []string{"memory", "redis"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Expected providers %v, got %v", want, got)
	}
}

func TestNew_Redis_InvalidAddress(t *testing.T) {
	_, err := New(ProviderConfig{
		Provider:     ProviderRedis,
		Size:         100,
		TTL:          time.Hour,
		RedisAddress: "localhost:59999",
	})
	if err == nil {
		t.Fatal("Expected error when connecting to invalid Redis address")
	}
}
