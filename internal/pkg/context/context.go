package context

import "context"

type requestIDKey struct{}
type subjectKey struct{}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if s, ok := ctx.Value(requestIDKey{}).(string); ok {
		return s
	}
	return ""
}

// WithSubject stores the authenticated caller (token uid) for auditing.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectKey{}, subject)
}

func GetSubject(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if s, ok := ctx.Value(subjectKey{}).(string); ok {
		return s
	}
	return ""
}
