package middleware

import "context"

type contextKey string

const (
	ctxUserID contextKey = "user_id"
	ctxRole   contextKey = "actor_role"
	ctxEmail  contextKey = "email"
	ctxCartID contextKey = "cart_id"
	ctxReqID  contextKey = "request_id"
)

func stringFromContext(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}

func withString(ctx context.Context, key contextKey, value string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, key, value)
}

func UserIDFromContext(ctx context.Context) string { return stringFromContext(ctx, ctxUserID) }

func RoleFromContext(ctx context.Context) string { return stringFromContext(ctx, ctxRole) }

func EmailFromContext(ctx context.Context) string { return stringFromContext(ctx, ctxEmail) }

func RequestIDFromContext(ctx context.Context) string { return stringFromContext(ctx, ctxReqID) }

// CartIDFromContext returns the cart session resolved by CartSession.
func CartIDFromContext(ctx context.Context) string { return stringFromContext(ctx, ctxCartID) }

func WithUserID(ctx context.Context, userID string) context.Context {
	return withString(ctx, ctxUserID, userID)
}

func WithRole(ctx context.Context, role string) context.Context {
	return withString(ctx, ctxRole, role)
}

func WithCartID(ctx context.Context, cartID string) context.Context {
	return withString(ctx, ctxCartID, cartID)
}

func WithRequestID(ctx context.Context, reqID string) context.Context {
	return withString(ctx, ctxReqID, reqID)
}

func withEmail(ctx context.Context, email string) context.Context {
	return withString(ctx, ctxEmail, email)
}
