package runlock

import "context"

// LockT is a generic convenience wrapper around Coordinator.Lock for
// callers who want a typed result without an any type assertion at the
// call site.
func LockT[T any](ctx context.Context, c *Coordinator, name string, resources []string, body func(context.Context) (T, error)) (T, error) {
	var zero T
	res, err := c.Lock(ctx, name, resources, func(ctx context.Context) (any, error) {
		return body(ctx)
	})
	if err != nil {
		return zero, err
	}
	return res.(T), nil
}
