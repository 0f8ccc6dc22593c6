package middlewares

import "context"

type ctxKey string

const ctxRequestIDKey ctxKey = "request_id"

func setRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, rid)
}

// GetRequestID devuelve el request id del contexto ("" si no hay).
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxRequestIDKey).(string); ok {
		return v
	}
	return ""
}
