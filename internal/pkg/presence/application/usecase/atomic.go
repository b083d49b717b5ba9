package usecase

import "context"

// Atomic runs fn inside a scoped atomic unit that commits only if fn
// succeeds. Membership-mutating use cases run their durable writes through
// it so no partial state is visible on failure; the business layer can
// attach dependent side effects to the same unit via the context.
type Atomic func(ctx context.Context, fn func(ctx context.Context) error) error

// Passthrough is an Atomic that provides no transactional scope. Used where
// the backing store's single-row atomicity is sufficient, and in tests.
func Passthrough(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
