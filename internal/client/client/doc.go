// Package client talks to the SmartQ auth service.
//
// Client is the transport-agnostic contract the CLI depends on; GRPCClient
// implements it over gRPC. GRPCClient keeps the current session token,
// attaches it to outgoing calls via an interceptor and maps gRPC status codes
// to the sentinel errors in errors.go, so callers match with errors.Is.
//
// All operations accept context.Context and honor cancellation. Each call is
// additionally bounded by the configured request timeout.
package client
