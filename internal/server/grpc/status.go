package grpcserver

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/and161185/passbox/internal/errs"
)

var codeOf = []struct {
	err  error
	code codes.Code
}{
	{errs.ErrInvalidArgument, codes.InvalidArgument},
	{errs.ErrInvalidPasscodeLength, codes.InvalidArgument},
	{errs.ErrUsernameExists, codes.AlreadyExists},
	{errs.ErrDuplicateTitle, codes.AlreadyExists},
	{errs.ErrUserNotFound, codes.NotFound},
	{errs.ErrItemNotFound, codes.NotFound},
	{errs.ErrInvalidPassword, codes.Unauthenticated},
	{errs.ErrUnauthorized, codes.Unauthenticated},
	{errs.ErrAccountLocked, codes.FailedPrecondition},
	{errs.ErrRateLimited, codes.ResourceExhausted},
	{errs.ErrPersistenceInconsistency, codes.DataLoss},
	{context.Canceled, codes.Canceled},
	{context.DeadlineExceeded, codes.DeadlineExceeded},
}

// toStatus maps service errors to gRPC status. Unknown errors become a bare
// codes.Internal so storage details do not leak to clients.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	for _, c := range codeOf {
		if errors.Is(err, c.err) {
			if c.code == codes.DataLoss {
				return status.Error(c.code, "vault state is inconsistent")
			}
			return status.Error(c.code, err.Error())
		}
	}
	return status.Error(codes.Internal, "internal")
}
