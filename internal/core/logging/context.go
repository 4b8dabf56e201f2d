package logging

import "context"

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	articleKey   contextKey = "article"
)

// WithRequestID adds an outbound API request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithArticle adds the article URI an operation is acting on to the context.
func WithArticle(ctx context.Context, uri string) context.Context {
	return context.WithValue(ctx, articleKey, uri)
}

// GetRequestID retrieves the request ID from the context.
// Returns empty string if not present.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// GetArticle retrieves the article URI from the context.
// Returns empty string if not present.
func GetArticle(ctx context.Context) string {
	if uri, ok := ctx.Value(articleKey).(string); ok {
		return uri
	}
	return ""
}
