// Package client is the Go client of the Authentication service.
//
// GRPCClient manages the connection, tags every call with an x-request-id
// and maps gRPC status codes to sentinel errors (ErrUnavailable,
// ErrUnauthorized, ErrAlreadyExists, ErrInvalidArgument) that callers can
// match with errors.Is. Every method takes a context.Context and honours its
// cancellation and deadline.
package client
