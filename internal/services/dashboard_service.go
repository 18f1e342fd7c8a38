package services

import (
	"context"

	"github.com/Belphemur/CatalogLens/internal/ingest"
	"github.com/Belphemur/CatalogLens/internal/models"
)

// DashboardService defines the operations exposed by the transports
type DashboardService interface {
	// Options loads the sources and lists the values each filter control can offer
	Options(ctx context.Context, sources []string) (*models.FilterOptions, error)

	// Render loads the sources, applies the selection and builds every chart
	Render(ctx context.Context, sel models.Selection, sources []string) (*models.Dashboard, error)
}

// TableLoader produces the unified table for a list of sources
type TableLoader interface {
	Load(ctx context.Context, locations []string) (*ingest.Result, error)
}
