// Package svcctx carries the server's request-facing services through
// request contexts. It sits below both server and endpoints so neither
// imports the other.
package svcctx

import (
	"context"

	"github.com/jackzampolin/easel/internal/batch"
	"github.com/jackzampolin/easel/internal/provider"
	"github.com/jackzampolin/easel/internal/store"
)

// Services is the set a handler can reach: the prompt store, the image
// provider, and the batch runner. The server swaps the whole set
// atomically on config reload, so a handler sees one consistent stack
// for the life of its request.
type Services struct {
	Store    *store.Store
	Provider provider.ImageProvider
	Runner   *batch.Runner
}

type servicesKey struct{}

// WithServices attaches s to the context.
func WithServices(ctx context.Context, s *Services) context.Context {
	return context.WithValue(ctx, servicesKey{}, s)
}

// ServicesFrom extracts the service set, or nil before the server has
// initialized.
func ServicesFrom(ctx context.Context) *Services {
	s, _ := ctx.Value(servicesKey{}).(*Services)
	return s
}

// StoreFrom extracts the prompt store from the context.
func StoreFrom(ctx context.Context) *store.Store {
	if s := ServicesFrom(ctx); s != nil {
		return s.Store
	}
	return nil
}

// ProviderFrom extracts the image provider from the context.
func ProviderFrom(ctx context.Context) provider.ImageProvider {
	if s := ServicesFrom(ctx); s != nil {
		return s.Provider
	}
	return nil
}

// RunnerFrom extracts the batch runner from the context.
func RunnerFrom(ctx context.Context) *batch.Runner {
	if s := ServicesFrom(ctx); s != nil {
		return s.Runner
	}
	return nil
}
