// Package logging is the portal's structured logger. Services log OTP
// issuance, delivery fallbacks and moderation decisions through it; the
// Fiber error handler logs failed requests.
package logging

import "context"

// Logger takes a message plus alternating key/value pairs:
//
//	log.Warn(ctx, "otp delivery failed", "email", u.Email, "error", err)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)
	With(args ...any) Logger
}

// ForRequest tags l with the request and caller ids, skipping the empty ones.
func ForRequest(l Logger, requestID, userID string) Logger {
	var args []any
	if requestID != "" {
		args = append(args, "request_id", requestID)
	}
	if userID != "" {
		args = append(args, "user_id", userID)
	}
	if len(args) == 0 {
		return l
	}
	return l.With(args...)
}
