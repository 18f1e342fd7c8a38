package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/getsentry/sentry-go"

	"github.com/Belphemur/CatalogLens/internal/apperrors"
	"github.com/Belphemur/CatalogLens/internal/config"
	"github.com/Belphemur/CatalogLens/internal/dashboard"
	"github.com/Belphemur/CatalogLens/internal/filter"
	"github.com/Belphemur/CatalogLens/internal/ingest"
	"github.com/Belphemur/CatalogLens/internal/models"
)

// DefaultDashboardService implements DashboardService on top of a loader and
// a filter engine. It keeps no per-request state and is safe for concurrent use.
type DefaultDashboardService struct {
	loader TableLoader
	engine *filter.Engine
	policy *SourcePolicy
}

// NewDashboardService creates a service. Requests that do not name their own
// sources use the policy's configured ones; those that do are checked
// against the policy before anything is loaded.
func NewDashboardService(loader TableLoader, engine *filter.Engine, policy *SourcePolicy) DashboardService {
	return &DefaultDashboardService{
		loader: loader,
		engine: engine,
		policy: policy,
	}
}

// Options implements DashboardService.Options
func (s *DefaultDashboardService) Options(ctx context.Context, sources []string) (*models.FilterOptions, error) {
	res, err := s.load(ctx, sources)
	if err != nil {
		return nil, err
	}

	opts := filter.Options(res.Table)
	opts.Warnings = res.Warnings
	return &opts, nil
}

// Render implements DashboardService.Render
func (s *DefaultDashboardService) Render(ctx context.Context, sel models.Selection, sources []string) (*models.Dashboard, error) {
	logger := config.GetLogger()

	if err := filter.Validate(sel); err != nil {
		return nil, err
	}
	sel = normalizeSelection(sel)

	res, err := s.load(ctx, sources)
	if err != nil {
		return nil, err
	}

	filtered := s.engine.Apply(res.Table, sel)
	charts, unavailable := dashboard.Render(filtered, sel)

	logger.Debug().
		Int("total_rows", res.Table.Len()).
		Int("filtered_rows", filtered.Len()).
		Int("charts", len(charts)).
		Int("unavailable", len(unavailable)).
		Bool("cached", res.Cached).
		Msg("Dashboard rendered")

	return &models.Dashboard{
		Selection:    sel,
		TotalRows:    res.Table.Len(),
		FilteredRows: filtered.Len(),
		Charts:       charts,
		Unavailable:  unavailable,
		Warnings:     res.Warnings,
	}, nil
}

func (s *DefaultDashboardService) load(ctx context.Context, sources []string) (*ingest.Result, error) {
	var requested []string
	for _, src := range sources {
		if src = strings.TrimSpace(src); src != "" {
			requested = append(requested, src)
		}
	}

	if len(requested) > apperrors.MaxSources {
		return nil, apperrors.NewTooManyInputsError(len(requested))
	}

	resolved := s.policy.Defaults()
	if len(requested) > 0 {
		if err := s.policy.Check(requested); err != nil {
			logger := config.GetLogger()
			logger.Warn().Err(err).Msg("Rejected request source")
			return nil, err
		}
		resolved = requested
	}

	res, err := s.loader.Load(ctx, resolved)
	if err != nil {
		return nil, report(fmt.Errorf("failed to load sources: %w", err))
	}
	return res, nil
}

// normalizeSelection canonicalizes the genre scope. It runs after Validate.
func normalizeSelection(sel models.Selection) models.Selection {
	scope, _ := models.ParseGenreScope(string(sel.GenreScope))
	sel.GenreScope = scope
	return sel
}

// IsUserError reports whether err was caused by the request rather than by
// the system: a wrong source count, a source outside the allowlist or an
// inconsistent selection.
func IsUserError(err error) bool {
	return apperrors.IsInputCountError(err) ||
		errors.Is(err, &apperrors.ErrSourceNotAllowed{}) ||
		errors.Is(err, &apperrors.ErrInvalidSelection{})
}

// report sends unexpected errors to Sentry and returns err unchanged.
// Sentry drops events when no client was initialized.
func report(err error) error {
	if !IsUserError(err) {
		sentry.CaptureException(err)
	}
	return err
}
