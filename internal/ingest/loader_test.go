package ingest

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/Belphemur/CatalogLens/internal/apperrors"
	"github.com/Belphemur/CatalogLens/internal/cache"
	"github.com/Belphemur/CatalogLens/internal/client"
	"github.com/Belphemur/CatalogLens/internal/models"
	"github.com/Belphemur/CatalogLens/internal/parser"
	"github.com/Belphemur/CatalogLens/internal/testutil"
)

// fakeFetcher serves sources from memory and counts calls.
type fakeFetcher struct {
	mu    sync.Mutex
	files map[string][]byte
	calls int
}

func (f *fakeFetcher) Fetch(_ context.Context, location string) (*client.Source, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	data, ok := f.files[location]
	if !ok {
		return nil, fmt.Errorf("no such source %q", location)
	}
	return &client.Source{Location: location, Name: location, Data: data}, nil
}

// countingParser wraps the real parser and counts calls.
type countingParser struct {
	mu    sync.Mutex
	inner parser.TableParser
	calls int
}

func (p *countingParser) ParseTable(name string, data []byte) (*models.Table, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	return p.inner.ParseTable(name, data)
}

func newTestLoader(t *testing.T, files map[string][]byte, withCache bool) (*Loader, *countingParser) {
	t.Helper()
	var c cache.Cache
	if withCache {
		var err error
		c, err = cache.New(cache.ProviderConfig{Provider: "memory", Size: 4, TTL: time.Hour})
		if err != nil {
			t.Fatalf("cache.New: %v", err)
		}
		t.Cleanup(func() { _ = c.Close() })
	}
	p := &countingParser{inner: parser.NewTableParser(parser.Options{})}
	return NewLoader(&fakeFetcher{files: files}, p, c, DuplicatesCollapse, parser.Options{}), p
}

func fixtureFiles() map[string][]byte {
	return map[string][]byte{
		"titles.csv":  testutil.TitlesCSV(),
		"credits.csv": testutil.CreditsCSV(),
		"other.csv":   testutil.CSV([]string{"person", "award"}, []string{"Ann Lee", "Oscar"}),
	}
}

// ---------------------------------------------------------------------------
// Source count
// ---------------------------------------------------------------------------

func TestLoader_SourceCount(t *testing.T) {
	t.Parallel()
	loader, _ := newTestLoader(t, fixtureFiles(), false)

	_, err := loader.Load(context.Background(), nil)
	if !errors.Is(err, &apperrors.ErrNoInput{}) {
		t.Errorf("Expected ErrNoInput, got %v", err)
	}

	_, err = loader.Load(context.Background(), []string{"titles.csv", "credits.csv", "other.csv"})
	var tooMany *apperrors.ErrTooManyInputs
	if !errors.As(err, &tooMany) || tooMany.Count != 3 {
		t.Errorf("Expected ErrTooManyInputs{3}, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Single and merged loads
// ---------------------------------------------------------------------------

func TestLoader_SingleSourceUnchanged(t *testing.T) {
	t.Parallel()
	loader, _ := newTestLoader(t, fixtureFiles(), false)

	res, err := loader.Load(context.Background(), []string{"titles.csv"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if res.Table.Len() != len(testutil.TitlesRows) {
		t.Errorf("Expected %d rows, got %d", len(testutil.TitlesRows), res.Table.Len())
	}
	if !reflect.DeepEqual(res.Table.Columns, testutil.TitlesHeader) {
		t.Errorf("Expected columns %v, got %v", testutil.TitlesHeader, res.Table.Columns)
	}
	if res.Key != JoinNone || len(res.Warnings) != 0 {
		t.Errorf("Expected no join and no warnings, got key=%q warnings=%v", res.Key, res.Warnings)
	}
}

func TestLoader_TwoSourcesJoinOnID(t *testing.T) {
	t.Parallel()
	loader, _ := newTestLoader(t, fixtureFiles(), false)

	res, err := loader.Load(context.Background(), []string{"titles.csv", "credits.csv"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if res.Key != JoinID {
		t.Errorf("Expected id join, got %q", res.Key)
	}
	if res.Table.Len() != len(testutil.TitlesRows) {
		t.Errorf("Expected %d rows, got %d", len(testutil.TitlesRows), res.Table.Len())
	}
	if got, _ := res.Table.Text(0, "name"); got != "Ann Lee, Bob Ray" {
		t.Errorf("Expected collapsed credits, got %q", got)
	}
}

func TestLoader_NoJoinKeyWarning(t *testing.T) {
	t.Parallel()
	loader, _ := newTestLoader(t, fixtureFiles(), false)

	res, err := loader.Load(context.Background(), []string{"titles.csv", "other.csv"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if res.JoinWarning == nil || res.JoinWarning.Discarded != "other.csv" {
		t.Fatalf("Expected join warning discarding other.csv, got %+v", res.JoinWarning)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("Expected one warning, got %v", res.Warnings)
	}
	if res.Table.Len() != len(testutil.TitlesRows) || len(res.Table.Columns) != len(testutil.TitlesHeader) {
		t.Error("Expected the first source to be used unchanged")
	}
}

func TestLoader_SourceErrors(t *testing.T) {
	t.Parallel()
	files := fixtureFiles()
	files["broken.zip"] = []byte("not a zip")
	loader, _ := newTestLoader(t, files, false)

	tests := []struct {
		name    string
		sources []string
		failing string
	}{
		{name: "missing", sources: []string{"titles.csv", "missing.csv"}, failing: "missing.csv"},
		{name: "undecodable", sources: []string{"broken.zip"}, failing: "broken.zip"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loader.Load(context.Background(), tt.sources)
			var srcErr *apperrors.ErrSource
			if !errors.As(err, &srcErr) {
				t.Fatalf("Expected ErrSource, got %v", err)
			}
			if srcErr.Source != tt.failing {
				t.Errorf("Expected failing source %q, got %q", tt.failing, srcErr.Source)
			}
			if !IsSourceError(err) {
				t.Error("Expected IsSourceError to be true")
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Caching
// ---------------------------------------------------------------------------

func TestLoader_CachesByFingerprint(t *testing.T) {
	t.Parallel()
	loader, p := newTestLoader(t, fixtureFiles(), true)
	ctx := context.Background()

	first, err := loader.Load(ctx, []string{"titles.csv", "credits.csv"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	second, err := loader.Load(ctx, []string{"titles.csv", "credits.csv"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if first.Cached || !second.Cached {
		t.Errorf("Expected miss then hit, got cached=%v,%v", first.Cached, second.Cached)
	}
	if p.calls != 2 {
		t.Errorf("Expected the two sources to be parsed once, got %d parses", p.calls)
	}
	if first.Fingerprint != second.Fingerprint {
		t.Error("Expected identical fingerprints for identical inputs")
	}
	if !reflect.DeepEqual(first.Table.Columns, second.Table.Columns) || !reflect.DeepEqual(first.Table.Rows, second.Table.Rows) {
		t.Error("Expected cached table to equal the parsed one")
	}
}

func TestLoader_CachedCopiesAreIndependent(t *testing.T) {
	t.Parallel()
	loader, _ := newTestLoader(t, fixtureFiles(), true)
	ctx := context.Background()

	_, _ = loader.Load(ctx, []string{"titles.csv"})
	a, _ := loader.Load(ctx, []string{"titles.csv"})
	b, _ := loader.Load(ctx, []string{"titles.csv"})

	a.Table.Rows[0][1].Value = "Mutated"
	if got, _ := b.Table.Text(0, "title"); got != "Alpha" {
		t.Errorf("Expected independent copies, got %q", got)
	}
}

func TestLoader_UnreadableCacheEntryIsReplaced(t *testing.T) {
	t.Parallel()
	c, err := cache.New(cache.ProviderConfig{Provider: "memory", Size: 4})
	if err != nil {
		t.Fatalf("cache.New: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	p := &countingParser{inner: parser.NewTableParser(parser.Options{})}
	loader := NewLoader(&fakeFetcher{files: fixtureFiles()}, p, c, DuplicatesCollapse, parser.Options{})
	ctx := context.Background()

	first, err := loader.Load(ctx, []string{"titles.csv"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	c.Set(first.Fingerprint, []byte("not a zstd frame"))

	second, err := loader.Load(ctx, []string{"titles.csv"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if second.Cached {
		t.Error("Expected the unreadable entry to be ignored")
	}
	if p.calls != 2 {
		t.Errorf("Expected a second parse, got %d parses", p.calls)
	}

	third, err := loader.Load(ctx, []string{"titles.csv"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !third.Cached {
		t.Error("Expected the entry to be rewritten after the re-parse")
	}
}

func TestLoader_CachedWarningSurvives(t *testing.T) {
	t.Parallel()
	loader, _ := newTestLoader(t, fixtureFiles(), true)
	ctx := context.Background()

	_, _ = loader.Load(ctx, []string{"titles.csv", "other.csv"})
	res, err := loader.Load(ctx, []string{"titles.csv", "other.csv"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !res.Cached {
		t.Fatal("Expected cache hit")
	}
	if res.JoinWarning == nil || len(res.Warnings) != 1 {
		t.Errorf("Expected warning to be restored from cache, got %+v / %v", res.JoinWarning, res.Warnings)
	}
}

func TestLoader_FingerprintDependsOnContentAndOptions(t *testing.T) {
	t.Parallel()
	src := []*client.Source{{Name: "titles.csv", Data: []byte("id\n1\n")}}
	changed := []*client.Source{{Name: "titles.csv", Data: []byte("id\n2\n")}}

	collapse := NewLoader(nil, nil, nil, DuplicatesCollapse, parser.Options{})
	first := NewLoader(nil, nil, nil, DuplicatesFirst, parser.Options{})

	if collapse.fingerprint(src) == collapse.fingerprint(changed) {
		t.Error("Expected different content to change the fingerprint")
	}
	if collapse.fingerprint(src) == first.fingerprint(src) {
		t.Error("Expected different merge options to change the fingerprint")
	}
	if collapse.fingerprint(src) != collapse.fingerprint(src) {
		t.Error("Expected fingerprint to be deterministic")
	}
}
