// Package service contains the typed API request layer: each backend
// resource gets a small service issuing requests through the gateway.
package service

import "context"

// Gateway is the transport the services issue requests through. Satisfied
// by *gateway.Client; tests substitute fakes.
type Gateway interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
	DoRaw(ctx context.Context, method, path, contentType string, payload []byte, out any) error
}

// apiResponse is the backend's generic success/message/data wrapper, used
// by some endpoints and not others.
type apiResponse[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// odataResponse is the OData collection envelope.
type odataResponse[T any] struct {
	Value []T   `json:"value"`
	Count int64 `json:"@odata.count"`
}
