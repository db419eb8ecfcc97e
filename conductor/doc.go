// Package conductor is the RPC channel to a conductor's app interface.
//
// The channel is a single gRPC connection carrying one unary method,
// AppInterface/Request. Request and response bodies are CBOR envelopes
// (see types.go), so the transport never needs generated protobuf code.
//
// A Client is established once with Dial and reused for every call. It is
// safe for concurrent use: gRPC multiplexes calls over one HTTP/2 connection
// and pairs each response with its own stream, so concurrent callers never
// see each other's responses. No call is ever retried.
package conductor
