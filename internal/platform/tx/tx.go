package tx

import "context"

// Manager groups the history writes of one completed meeting.
type Manager interface {
	Within(ctx context.Context, fn func(context.Context) error) error
}

// NoopManager runs fn directly. Each history sink commits on its own.
type NoopManager struct{}

func (NoopManager) Within(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

// Func adapts a plain function to Manager.
type Func func(ctx context.Context, fn func(context.Context) error) error

func (f Func) Within(ctx context.Context, fn func(context.Context) error) error {
	return f(ctx, fn)
}
