// Package reentrancy carries the canonical resource form of an enclosing
// Coordinator.Lock call through nested calls in the same logical chain.
// Go has no implicit task-local storage, so the frame rides on
// context.Context — the idiom spec'd for languages without a continuation-
// local-storage facility: every suspension point already threads ctx, so
// the frame follows cooperative scheduling for free and never leaks across
// goroutines that fork their own context.
package reentrancy

import "context"

type frameKey struct{}

// frame records the canonical resource form held by the outermost lock
// call in this context chain.
type frame struct {
	canonical string
}

// IsInsideLock reports whether a frame exists in ctx.
func IsInsideLock(ctx context.Context) bool {
	_, ok := ctx.Value(frameKey{}).(*frame)
	return ok
}

// CurrentResources returns the canonical resource form of the enclosing
// frame, if any.
func CurrentResources(ctx context.Context) (string, bool) {
	f, ok := ctx.Value(frameKey{}).(*frame)
	if !ok {
		return "", false
	}
	return f.canonical, true
}

// WithFrame returns a derived context carrying canonical as the current
// frame. The caller is expected to use the returned context for the
// duration of the critical section and discard it on return — there is no
// explicit pop, since the frame simply goes out of scope with the context
// it was attached to.
func WithFrame(ctx context.Context, canonical string) context.Context {
	return context.WithValue(ctx, frameKey{}, &frame{canonical: canonical})
}
