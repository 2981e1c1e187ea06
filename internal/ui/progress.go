package ui

import "context"

// ProgressFunc receives short status lines such as "page 2/5".
type ProgressFunc func(msg string)

type progressKey struct{}

// WithProgress attaches fn to ctx so long-running loads can report status
// without knowing whether a spinner is shown.
func WithProgress(ctx context.Context, fn ProgressFunc) context.Context {
	return context.WithValue(ctx, progressKey{}, fn)
}

// ReportProgress forwards msg to the callback in ctx. It is a no-op for the
// MCP tools, which attach none.
func ReportProgress(ctx context.Context, msg string) {
	fn, _ := ctx.Value(progressKey{}).(ProgressFunc)
	if fn != nil {
		fn(msg)
	}
}
