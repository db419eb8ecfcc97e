package conductor

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"xdao.co/compository/model"
)

// mapRPC classifies a transport-level failure of op against endpoint.
func mapRPC(endpoint, op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return model.ConnectionError(endpoint, err)
	}
	st, ok := status.FromError(err)
	if !ok {
		return model.ConnectionError(endpoint, err)
	}

	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return model.ConnectionError(endpoint, err)
	case codes.Unimplemented:
		// The endpoint speaks gRPC but not the app interface.
		return model.ProtocolMismatchError(op, st.Message(), err)
	default:
		return model.RemoteError(op, st.Code().String()+": "+st.Message())
	}
}
