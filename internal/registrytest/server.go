package registrytest

import (
	"context"
	"net"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"xdao.co/compository/conductor"
	"xdao.co/compository/keys"
)

const maxMsgBytes = conductor.DefaultMaxMsgBytes

// Serve exposes h over an in-memory gRPC listener and returns a client
// connected to it. Both are torn down when the test ends.
func Serve(t testing.TB, h conductor.Handler, signer keys.Signer) *conductor.Client {
	t.Helper()

	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer(grpc.MaxRecvMsgSize(maxMsgBytes), grpc.MaxSendMsgSize(maxMsgBytes))
	conductor.RegisterAppInterfaceServer(srv, &conductor.Server{Handler: h})

	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	dialer := func(ctx context.Context, s string) (net.Conn, error) { return lis.DialContext(ctx) }
	cc, err := grpc.NewClient(
		"passthrough:///bufnet",
		grpc.WithContextDialer(dialer),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.MaxCallRecvMsgSize(maxMsgBytes), grpc.MaxCallSendMsgSize(maxMsgBytes)),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	client := conductor.NewClient(cc, "bufnet", signer)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// Listen serves h on a loopback TCP port and returns its address, for tests
// that dial like a real client.
func Listen(t testing.TB, h conductor.Handler) string {
	t.Helper()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := grpc.NewServer(grpc.MaxRecvMsgSize(maxMsgBytes), grpc.MaxSendMsgSize(maxMsgBytes))
	conductor.RegisterAppInterfaceServer(srv, &conductor.Server{Handler: h})
	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)
	return lis.Addr().String()
}
