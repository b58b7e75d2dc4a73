package instrument

import "context"

type correlationKey struct{}

// SetCorrelationID stores the request correlation ID in ctx.
func SetCorrelationID(ctx context.Context, cid string) context.Context {
	return context.WithValue(ctx, correlationKey{}, cid)
}

// GetCorrelationID returns the correlation ID stored in ctx, or "".
func GetCorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	cid, _ := ctx.Value(correlationKey{}).(string)
	return cid
}
