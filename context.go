package fbsr

import "context"

type callerKey struct{}

// Caller represents the verified signed request stored for a request.
type Caller struct {
	Claims    Claims
	DevBypass bool
}

// BindCaller stores the caller inside the context for downstream consumers.
func BindCaller(ctx context.Context, caller Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// CallerFromContext retrieves a caller previously stored in the context.
func CallerFromContext(ctx context.Context) (Caller, bool) {
	if ctx == nil {
		return Caller{}, false
	}
	value := ctx.Value(callerKey{})
	if value == nil {
		return Caller{}, false
	}
	caller, ok := value.(Caller)
	return caller, ok
}
