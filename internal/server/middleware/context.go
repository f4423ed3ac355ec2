package middleware

import "context"

type contextKey struct{ name string }

var (
	accountIDKey = contextKey{"account_id"}
	emailKey     = contextKey{"email"}
	requestIDKey = contextKey{"request_id"}
)

// WithIdentity returns a context carrying the authenticated account id and email.
// Handlers read them via GetAccountID and GetEmail.
func WithIdentity(ctx context.Context, accountID, email string) context.Context {
	ctx = context.WithValue(ctx, accountIDKey, accountID)
	ctx = context.WithValue(ctx, emailKey, email)
	return ctx
}

// GetAccountID returns the account id from context and true if set; otherwise "", false.
func GetAccountID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(accountIDKey).(string)
	return v, ok && v != ""
}

// GetEmail returns the account email from context and true if set; otherwise "", false.
func GetEmail(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(emailKey).(string)
	return v, ok
}

// WithRequestID returns a context carrying id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// GetRequestID returns the request id from context, or "".
func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}
