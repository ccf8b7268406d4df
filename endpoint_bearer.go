package oauth

import (
	"fmt"
	"net/http"
	"strings"
)

// BearerError is an RFC 6750 §3 bearer token error, rendered as a
// WWW-Authenticate challenge rather than the OAuth JSON error body
// errors.go produces — this is the shape a resource server sends back to
// a client presenting a token, distinct from the InvalidClient *Error that
// RequireBearer returns.
type BearerError struct {
	Code        string
	Description string
	Status      int
	Scope       string
}

func (e *BearerError) Error() string { return e.Description }

// WriteHeader renders the WWW-Authenticate challenge and status.
func (e *BearerError) WriteHeader(w http.ResponseWriter) {
	parts := []string{`Bearer realm="oauth"`}
	if e.Scope != "" {
		parts = append(parts, fmt.Sprintf(`scope=%q`, e.Scope))
	}
	if e.Code != "" {
		parts = append(parts, fmt.Sprintf(`error=%q`, e.Code))
	}
	if e.Description != "" {
		parts = append(parts, fmt.Sprintf(`error_description=%q`, e.Description))
	}
	w.Header().Set("WWW-Authenticate", strings.Join(parts, ", "))
	w.WriteHeader(e.Status)
}

// CheckAuthorization validates a bearer token presented to a protected
// resource and confirms it carries scope. It never touches Storage's
// revoke/store methods; a resource server only ever reads.
func (s *Server) CheckAuthorization(r *http.Request, scope Scope) (AccessToken, *BearerError) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return nil, &BearerError{Status: http.StatusUnauthorized, Scope: scope.String()}
	}

	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, &BearerError{
			Code: "invalid_request", Description: "invalid authorization scheme",
			Status: http.StatusBadRequest, Scope: scope.String(),
		}
	}

	token, err := s.storage.LoadAccessToken(r.Context(), parts[1])
	if err != nil {
		return nil, &BearerError{
			Code: "invalid_token", Description: "token lookup failed",
			Status: http.StatusUnauthorized, Scope: scope.String(),
		}
	}
	if token == nil || token.Revoked() || !token.ExpiresAt().After(NowFunc()) {
		return nil, &BearerError{
			Code: "invalid_token", Description: "unknown or expired token",
			Status: http.StatusUnauthorized, Scope: scope.String(),
		}
	}
	if !token.Scope().Includes(scope) {
		return nil, &BearerError{
			Code: "insufficient_scope", Description: "token lacks required scope",
			Status: http.StatusForbidden, Scope: scope.String(),
		}
	}

	return token, nil
}

// Authorizer wraps a protected resource handler with a bearer token check,
// attaching the resolved AccessToken to the request context on success.
func (s *Server) Authorizer(scope Scope) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, berr := s.CheckAuthorization(r, scope)
			if berr != nil {
				berr.WriteHeader(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(withAccessToken(r.Context(), token)))
		})
	}
}
