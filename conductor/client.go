package conductor

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/compository/codec"
	"xdao.co/compository/keys"
	"xdao.co/compository/model"
)

// DefaultMaxMsgBytes leaves room for a full 10 MiB chunk plus its envelope;
// the gRPC default of 4 MiB would reject chunk uploads.
const DefaultMaxMsgBytes = 32 * 1024 * 1024

// Client implements the app interface over gRPC.
type Client struct {
	cc     *grpc.ClientConn
	client AppInterfaceClient
	target string
	signer keys.Signer

	// Timeout applies per RPC when non-zero, in addition to any deadline
	// on the caller's context.
	Timeout time.Duration
}

type DialOptions struct {
	// Timeout bounds establishing the connection when non-zero. With a zero
	// Timeout the connection is established lazily by the first call.
	Timeout time.Duration

	// MaxMsgBytes sets both send/recv max sizes. Zero uses DefaultMaxMsgBytes.
	MaxMsgBytes int

	// Signer, when set, signs every zome call.
	Signer keys.Signer
}

// Dial connects to the conductor at endpoint, which is either host:port or a
// URL such as ws://localhost:8888 or grpc://localhost:8888.
func Dial(endpoint string, opts DialOptions) (*Client, error) {
	target, err := ParseTarget(endpoint)
	if err != nil {
		return nil, model.ConnectionError(endpoint, err)
	}

	maxMsg := opts.MaxMsgBytes
	if maxMsg <= 0 {
		maxMsg = DefaultMaxMsgBytes
	}
	cc, err := grpc.NewClient(target,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(
			grpc.MaxCallRecvMsgSize(maxMsg),
			grpc.MaxCallSendMsgSize(maxMsg),
		),
	)
	if err != nil {
		return nil, model.ConnectionError(endpoint, err)
	}

	c := NewClient(cc, endpoint, opts.Signer)
	if opts.Timeout > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
		defer cancel()
		if err := waitReady(ctx, cc); err != nil {
			_ = cc.Close()
			return nil, model.ConnectionError(endpoint, err)
		}
	}
	return c, nil
}

// NewClient wraps an existing connection. endpoint is used only for error
// context.
func NewClient(cc *grpc.ClientConn, endpoint string, signer keys.Signer) *Client {
	return &Client{cc: cc, client: NewAppInterfaceClient(cc), target: endpoint, signer: signer}
}

func waitReady(ctx context.Context, cc *grpc.ClientConn) error {
	cc.Connect()
	for {
		s := cc.GetState()
		switch s {
		case connectivity.Ready:
			return nil
		case connectivity.Shutdown:
			return fmt.Errorf("connection shut down")
		}
		if !cc.WaitForStateChange(ctx, s) {
			return fmt.Errorf("connection not ready (%s): %w", s, ctx.Err())
		}
	}
}

// ParseTarget turns a conductor URL into a gRPC dial target.
func ParseTarget(endpoint string) (string, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return "", fmt.Errorf("empty conductor endpoint")
	}
	if !strings.Contains(endpoint, "://") {
		return endpoint, nil
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid conductor URL %q: %w", endpoint, err)
	}
	switch u.Scheme {
	case "unix", "passthrough", "dns":
		return endpoint, nil
	case "grpc", "ws", "wss", "http", "https", "tcp":
		if u.Host == "" {
			return "", fmt.Errorf("conductor URL %q has no host", endpoint)
		}
		return u.Host, nil
	default:
		return "", fmt.Errorf("unsupported conductor URL scheme %q", u.Scheme)
	}
}

// Endpoint returns the endpoint the client was created for.
func (c *Client) Endpoint() string { return c.target }

func (c *Client) Close() error {
	if c == nil || c.cc == nil {
		return nil
	}
	return c.cc.Close()
}

// AppInfo fetches the info of an installed app. A nil *AppInfo with a nil
// error means the conductor has no app with that id.
func (c *Client) AppInfo(ctx context.Context, installedAppID string) (*AppInfo, error) {
	data, err := c.send(ctx, TypeAppInfo, TypeAppInfo, map[string]string{"installed_app_id": installedAppID})
	if err != nil {
		return nil, err
	}
	var info *AppInfo
	if err := codec.Unmarshal(data, &info); err != nil {
		return nil, model.ProtocolMismatchError(TypeAppInfo, "undecodable app info", err)
	}
	return info, nil
}

// CallZome invokes call and returns the CBOR-encoded function output.
func (c *Client) CallZome(ctx context.Context, call ZomeCall) ([]byte, error) {
	if c.signer != nil {
		call.Signer = c.signer.PublicKey()
		msg, err := call.SigningBytes()
		if err != nil {
			return nil, err
		}
		sig, err := c.signer.Sign(msg)
		if err != nil {
			return nil, fmt.Errorf("sign %s: %w", call.Procedure(), err)
		}
		call.Signature = sig
	}

	data, err := c.send(ctx, call.Procedure(), TypeZomeCall, call)
	if err != nil {
		return nil, err
	}
	var out []byte
	if err := codec.Unmarshal(data, &out); err != nil {
		return nil, model.ProtocolMismatchError(call.Procedure(), "zome call output is not a byte string", err)
	}
	return out, nil
}

func (c *Client) send(ctx context.Context, op, typ string, data any) (codec.RawMessage, error) {
	if c == nil || c.client == nil {
		return nil, model.ConnectionError("", fmt.Errorf("nil conductor client"))
	}
	body, err := codec.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", op, err)
	}
	env, err := codec.Marshal(request{Version: ProtocolVersion, Type: typ, Data: body})
	if err != nil {
		return nil, fmt.Errorf("encode %s envelope: %w", op, err)
	}

	ctx, cancel := c.ctx(ctx)
	defer cancel()

	reply, err := c.client.Request(ctx, wrapperspb.Bytes(env))
	if err != nil {
		return nil, mapRPC(c.target, op, err)
	}

	var resp response
	if err := codec.Unmarshal(reply.GetValue(), &resp); err != nil {
		return nil, model.ProtocolMismatchError(op, "undecodable response envelope", err)
	}
	switch resp.Type {
	case typ:
		return resp.Data, nil
	case TypeError:
		var failure RemoteFailure
		if err := codec.Unmarshal(resp.Data, &failure); err != nil {
			return nil, model.ProtocolMismatchError(op, "undecodable error response", err)
		}
		return nil, model.RemoteError(op, failure.Error())
	default:
		return nil, model.ProtocolMismatchError(op, fmt.Sprintf("expected %q response, got %q", typ, resp.Type), nil)
	}
}

func (c *Client) ctx(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	if c.Timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, c.Timeout)
}
