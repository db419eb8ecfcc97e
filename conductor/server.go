package conductor

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/compository/codec"
	"xdao.co/compository/keys"
)

// Handler answers app interface requests. Returning a *RemoteFailure sends
// a structured error envelope; any other error becomes an Internal status.
type Handler interface {
	AppInfo(ctx context.Context, installedAppID string) (*AppInfo, error)
	CallZome(ctx context.Context, call ZomeCall) ([]byte, error)
}

// Server exposes a Handler over the AppInterface gRPC service.
type Server struct {
	UnimplementedAppInterfaceServer
	Handler Handler
}

func (s *Server) Request(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	if s == nil || s.Handler == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing handler")
	}
	var req request
	if err := codec.Unmarshal(in.GetValue(), &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, "undecodable request envelope")
	}
	if req.Version != ProtocolVersion {
		return failure("ProtocolVersion", fmt.Sprintf("unsupported protocol version %d", req.Version))
	}

	switch req.Type {
	case TypeAppInfo:
		var in struct {
			InstalledAppID string `cbor:"installed_app_id"`
		}
		if err := codec.Unmarshal(req.Data, &in); err != nil {
			return nil, status.Error(codes.InvalidArgument, "undecodable app_info request")
		}
		info, err := s.Handler.AppInfo(ctx, in.InstalledAppID)
		if err != nil {
			return handlerError(err)
		}
		return reply(TypeAppInfo, info)
	case TypeZomeCall:
		var call ZomeCall
		if err := codec.Unmarshal(req.Data, &call); err != nil {
			return nil, status.Error(codes.InvalidArgument, "undecodable zome_call request")
		}
		if call.Signer != "" {
			msg, err := call.SigningBytes()
			if err != nil || !keys.Verify(call.Signer, msg, call.Signature) {
				return failure("Unauthorized", "zome call signature does not verify")
			}
		}
		out, err := s.Handler.CallZome(ctx, call)
		if err != nil {
			return handlerError(err)
		}
		return reply(TypeZomeCall, out)
	default:
		return failure("BadRequest", fmt.Sprintf("unknown request type %q", req.Type))
	}
}

func reply(typ string, data any) (*wrapperspb.BytesValue, error) {
	body, err := codec.Marshal(data)
	if err != nil {
		return nil, status.Error(codes.Internal, "encode response")
	}
	env, err := codec.Marshal(response{Type: typ, Data: body})
	if err != nil {
		return nil, status.Error(codes.Internal, "encode response envelope")
	}
	return wrapperspb.Bytes(env), nil
}

func failure(kind, message string) (*wrapperspb.BytesValue, error) {
	return reply(TypeError, RemoteFailure{Kind: kind, Message: message})
}

func handlerError(err error) (*wrapperspb.BytesValue, error) {
	var rf *RemoteFailure
	if errors.As(err, &rf) {
		return failure(rf.Kind, rf.Message)
	}
	return nil, status.Error(codes.Internal, err.Error())
}
