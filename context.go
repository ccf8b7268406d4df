package oauth

import "context"

type contextKey int

const (
	subjectContextKey contextKey = iota
	accessTokenContextKey
)

// WithSubject attaches the authenticated end-user identifier to ctx. The
// core never authenticates a user itself (no session manager, no consent
// UI); whatever sits in front of AuthorizeEndpoint is expected to call this
// once it knows who is approving the request.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectContextKey, subject)
}

func subjectFromContext(ctx context.Context) string {
	s, _ := ctx.Value(subjectContextKey).(string)
	return s
}

func withAccessToken(ctx context.Context, token AccessToken) context.Context {
	return context.WithValue(ctx, accessTokenContextKey, token)
}

// AccessTokenFromContext returns the access token an Authorizer middleware
// validated for the current request, if any.
func AccessTokenFromContext(ctx context.Context) (AccessToken, bool) {
	t, ok := ctx.Value(accessTokenContextKey).(AccessToken)
	return t, ok
}
