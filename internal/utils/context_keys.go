// intake-service/internal/utils/context_keys.go

package utils

import "context"

// ctxKey is unexported to prevent collisions.
type ctxKey string

// CtxKeyRequestID stores the X-Request-ID of the current request.
const CtxKeyRequestID ctxKey = "requestID"

// RequestID returns the request ID stored on ctx, or "".
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(CtxKeyRequestID).(string); ok {
		return id
	}
	return ""
}
