package grpc

import (
	"context"
	"errors"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Belphemur/CatalogLens/internal/apperrors"
)

// toStatus maps a service error to a gRPC status. Invalid selections carry a
// BadRequest detail naming the offending field.
func toStatus(err error) error {
	var invalid *apperrors.ErrInvalidSelection
	switch {
	case errors.As(err, &invalid):
		st := status.New(codes.InvalidArgument, err.Error())
		detailed, detailErr := st.WithDetails(&errdetails.BadRequest{
			FieldViolations: []*errdetails.BadRequest_FieldViolation{
				{Field: "selection." + invalid.Field, Description: invalid.Reason},
			},
		})
		if detailErr != nil {
			return st.Err()
		}
		return detailed.Err()
	case apperrors.IsInputCountError(err), errors.Is(err, &apperrors.ErrSourceNotAllowed{}):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
