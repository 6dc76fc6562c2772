package logger

import "context"

// ctxKey is unexported so request scoping cannot collide with keys
// from other packages
type ctxKey int

const requestIDKey ctxKey = iota

// WithRequestID returns a context carrying the request ID. Repository
// calls made with it tag their query traces, tying slow or failing SQL
// back to the request that issued it.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFrom returns the request ID carried by the context, or an
// empty string
func RequestIDFrom(ctx context.Context) string {
	requestID, _ := ctx.Value(requestIDKey).(string)
	return requestID
}
