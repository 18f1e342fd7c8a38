package grpc

import (
	"context"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Belphemur/CatalogLens/internal/config"
	"github.com/Belphemur/CatalogLens/internal/metrics"
	"github.com/Belphemur/CatalogLens/internal/models"
	"github.com/Belphemur/CatalogLens/internal/services"
)

// server implements the DashboardServiceServer interface
type server struct {
	svc    services.DashboardService
	logger zerolog.Logger
}

// NewServer creates a new gRPC server instance
func NewServer(svc services.DashboardService) DashboardServiceServer {
	return &server{
		svc:    svc,
		logger: config.GetLogger(),
	}
}

// GetFilterOptions implements DashboardServiceServer.GetFilterOptions
func (s *server) GetFilterOptions(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in models.OptionsRequest
	if err := decodeStruct(req, &in); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	s.logger.Debug().Strs("sources", in.Sources).Msg("GetFilterOptions called")

	opts, err := s.svc.Options(ctx, in.Sources)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to get filter options")
		return nil, toStatus(err)
	}

	out, err := encodeStruct(opts)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	s.logger.Debug().Int("types", len(opts.Types)).Int("cast", len(opts.Cast)).Msg("GetFilterOptions completed")
	return out, nil
}

// RenderDashboard implements DashboardServiceServer.RenderDashboard
func (s *server) RenderDashboard(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in models.DashboardRequest
	if err := decodeStruct(req, &in); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	s.logger.Debug().Strs("sources", in.Sources).Msg("RenderDashboard called")

	dash, err := s.svc.Render(ctx, in.Selection, in.Sources)
	if err != nil {
		if services.IsUserError(err) {
			s.logger.Warn().Err(err).Msg("Rejected dashboard request")
		} else {
			s.logger.Error().Err(err).Msg("Failed to render dashboard")
		}
		return nil, toStatus(err)
	}

	out, err := encodeStruct(dash)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	metrics.DashboardsTotal.WithLabelValues("grpc").Inc()
	s.logger.Debug().
		Int("filtered_rows", dash.FilteredRows).
		Int("charts", len(dash.Charts)).
		Msg("RenderDashboard completed")
	return out, nil
}
