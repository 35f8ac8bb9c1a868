package web

import (
	"context"

	"github.com/nmashkov/yatube-project/internal/core/domain"
)

// Clé privée pour le contexte (évite les collisions)
type contextKey struct{ name string }

var callerCtxKey = &contextKey{"caller"}

func withCaller(ctx context.Context, c domain.Caller) context.Context {
	return context.WithValue(ctx, callerCtxKey, c)
}

// CallerFrom returns the identity set by the session middleware, anonymous if none.
func CallerFrom(ctx context.Context) domain.Caller {
	c, _ := ctx.Value(callerCtxKey).(domain.Caller)
	return c
}
