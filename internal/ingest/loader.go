package ingest

import (
	"context"
	"encoding/hex"
	"errors"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"github.com/Belphemur/CatalogLens/internal/apperrors"
	"github.com/Belphemur/CatalogLens/internal/cache"
	"github.com/Belphemur/CatalogLens/internal/client"
	"github.com/Belphemur/CatalogLens/internal/config"
	"github.com/Belphemur/CatalogLens/internal/metrics"
	"github.com/Belphemur/CatalogLens/internal/models"
	"github.com/Belphemur/CatalogLens/internal/parser"
)

// Result is a unified table together with how it was built.
type Result struct {
	Table *models.Table
	// Key is the join column, or JoinNone for single sources and fallbacks.
	Key JoinKey
	// JoinWarning is set when two sources shared no join key.
	JoinWarning *apperrors.WarnNoJoinKey
	// Warnings are non-fatal conditions to surface to the user.
	Warnings []string
	// Fingerprint identifies the raw inputs and merge options.
	Fingerprint string
	// Cached is true when the table came from the cache.
	Cached bool
}

// Loader reads one or two sources into a unified table, memoizing the
// result under the fingerprint of the raw inputs.
type Loader struct {
	fetcher client.Client
	parser  parser.TableParser
	cache   cache.Cache
	policy  DuplicatePolicy
	// optionsKey is mixed into the fingerprint so changed options re-ingest.
	optionsKey string
}

// NewLoader creates a loader. A nil cache disables memoization.
func NewLoader(fetcher client.Client, p parser.TableParser, c cache.Cache, policy DuplicatePolicy, parseOpts parser.Options) *Loader {
	if policy == "" {
		policy = DuplicatesCollapse
	}
	return &Loader{
		fetcher:    fetcher,
		parser:     p,
		cache:      c,
		policy:     policy,
		optionsKey: string(policy) + "|" + parseOpts.Encoding + "|" + strconv.QuoteRune(parseOpts.Delimiter),
	}
}

// Load validates the source count, fetches the sources concurrently and
// returns the unified table.
func (l *Loader) Load(ctx context.Context, locations []string) (*Result, error) {
	logger := config.GetLogger()

	if len(locations) == 0 {
		metrics.LoadsTotal.WithLabelValues("error").Inc()
		return nil, apperrors.NewNoInputError()
	}
	if len(locations) > apperrors.MaxSources {
		metrics.LoadsTotal.WithLabelValues("error").Inc()
		return nil, apperrors.NewTooManyInputsError(len(locations))
	}

	sources, err := l.fetchAll(ctx, locations)
	if err != nil {
		metrics.LoadsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	fingerprint := l.fingerprint(sources)
	if res, ok := l.fromCache(fingerprint); ok {
		metrics.LoadsTotal.WithLabelValues("cached").Inc()
		logger.Debug().Str("fingerprint", fingerprint).Int("rows", res.Table.Len()).Msg("Unified table served from cache")
		return res, nil
	}

	res, err := l.build(ctx, sources)
	if err != nil {
		metrics.LoadsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	res.Fingerprint = fingerprint
	metrics.LoadsTotal.WithLabelValues("parsed").Inc()

	if l.cache != nil {
		payload, err := encodeLoad(res)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to cache unified table")
		} else {
			l.cache.Set(fingerprint, payload)
		}
	}

	logger.Info().
		Int("sources", len(sources)).
		Str("key", string(res.Key)).
		Int("rows", res.Table.Len()).
		Int("columns", len(res.Table.Columns)).
		Msg("Unified table loaded")
	return res, nil
}

func (l *Loader) fetchAll(ctx context.Context, locations []string) ([]*client.Source, error) {
	sources := make([]*client.Source, len(locations))
	g, gctx := errgroup.WithContext(ctx)
	for i, loc := range locations {
		g.Go(func() error {
			src, err := l.fetcher.Fetch(gctx, loc)
			if err != nil {
				return apperrors.NewSourceError(loc, err)
			}
			sources[i] = src
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sources, nil
}

// fingerprint hashes every source's name and bytes plus the load options.
func (l *Loader) fingerprint(sources []*client.Source) string {
	h := xxhash.New()
	_, _ = h.WriteString(l.optionsKey)
	for _, src := range sources {
		_, _ = h.WriteString("\x00" + src.Name + "\x00")
		_, _ = h.Write(src.Data)
	}
	var sum [8]byte
	return hex.EncodeToString(h.Sum(sum[:0]))
}

func (l *Loader) fromCache(fingerprint string) (*Result, bool) {
	if l.cache == nil {
		return nil, false
	}
	payload, ok := l.cache.Get(fingerprint)
	if !ok {
		return nil, false
	}
	res, err := decodeLoad(payload)
	if err != nil {
		logger := config.GetLogger()
		logger.Warn().Err(err).Str("fingerprint", fingerprint).Msg("Discarding unreadable cache entry")
		l.cache.Remove(fingerprint)
		return nil, false
	}
	res.Fingerprint = fingerprint
	res.Cached = true
	return res, true
}

func (l *Loader) build(ctx context.Context, sources []*client.Source) (*Result, error) {
	tables := make([]*models.Table, len(sources))
	g, _ := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			t, err := l.parser.ParseTable(src.Name, src.Data)
			if err != nil {
				return apperrors.NewSourceError(src.Location, err)
			}
			tables[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(tables) == 1 {
		return &Result{Table: tables[0], Key: JoinNone}, nil
	}

	merged := Merge(tables[0], tables[1], sources[0].Location, sources[1].Location, l.policy)
	metrics.MergeKeyTotal.WithLabelValues(string(merged.Key)).Inc()

	res := &Result{Table: merged.Table, Key: merged.Key, JoinWarning: merged.Warning}
	if merged.Warning != nil {
		logger := config.GetLogger()
		logger.Warn().
			Str("kept", merged.Warning.Kept).
			Str("discarded", merged.Warning.Discarded).
			Msg("Sources share no join key, using the first one only")
		res.Warnings = append(res.Warnings, merged.Warning.Error())
	}
	return res, nil
}

// IsSourceError reports whether err came from reading or decoding a source.
func IsSourceError(err error) bool {
	var srcErr *apperrors.ErrSource
	return errors.As(err, &srcErr)
}
