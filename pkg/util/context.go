package util

import "context"

type contextKey int

const verboseKey contextKey = iota

// WithVerbose marks the context as running in verbose mode.
func WithVerbose(ctx context.Context, verbose bool) context.Context {
	return context.WithValue(ctx, verboseKey, verbose)
}

// IsVerbose reports whether verbose mode is enabled on the context.
func IsVerbose(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	v, ok := ctx.Value(verboseKey).(bool)
	return ok && v
}
