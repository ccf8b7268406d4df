package oauth

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/256dpi/xo"
)

// Code is an OAuth 2.0 error code as defined by RFC 6749 §5.2 and the
// extensions this package implements (RFC 7636, 8628, 9126).
type Code string

const (
	InvalidRequest          Code = "invalid_request"
	InvalidClient           Code = "invalid_client"
	InvalidGrant            Code = "invalid_grant"
	InvalidScope            Code = "invalid_scope"
	UnauthorizedClient      Code = "unauthorized_client"
	UnsupportedGrantType    Code = "unsupported_grant_type"
	UnsupportedResponseType Code = "unsupported_response_type"
	AccessDenied            Code = "access_denied"
	ServerError             Code = "server_error"
	TemporarilyUnavailable  Code = "temporarily_unavailable"
	SlowDown                Code = "slow_down"
	AuthorizationPending    Code = "authorization_pending"
	ExpiredToken            Code = "expired_token"
)

var statusForCode = map[Code]int{
	InvalidRequest:          http.StatusBadRequest,
	InvalidClient:           http.StatusUnauthorized,
	InvalidGrant:            http.StatusForbidden,
	InvalidScope:            http.StatusBadRequest,
	UnauthorizedClient:      http.StatusForbidden,
	UnsupportedGrantType:    http.StatusBadRequest,
	UnsupportedResponseType: http.StatusBadRequest,
	AccessDenied:            http.StatusForbidden,
	ServerError:             http.StatusInternalServerError,
	TemporarilyUnavailable:  http.StatusBadGateway,
	SlowDown:                http.StatusBadRequest,
	AuthorizationPending:    http.StatusBadRequest,
	ExpiredToken:            http.StatusBadRequest,
}

// Status returns the HTTP status this code is mapped to, defaulting to 500
// for any code not in the table.
func (c Code) Status() int {
	if s, ok := statusForCode[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Error is the one error shape every endpoint in this package produces. It
// is shaped either as a bearer/JSON error or, when UseRedirect is set, as an
// authorization redirect error carrying RedirectURI/State/Issuer.
type Error struct {
	Code        Code
	Description string
	URI         string
	RedirectURI string
	State       string
	Issuer      string
	UseRedirect bool

	cause error
}

func (e *Error) Error() string {
	if e.Description != "" {
		return string(e.Code) + ": " + e.Description
	}
	return string(e.Code)
}

// E constructs a bare Error with the given code and description.
func E(code Code, description string) *Error {
	return &Error{Code: code, Description: description}
}

// AsError unwraps err into an *Error if one is anywhere in its chain,
// otherwise it collapses the error to a ServerError. The original error is
// never disclosed to the client; it is wrapped with xo and kept as the
// returned Error's cause (see Unwrap) for the operator.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var oe *Error
	if errors.As(err, &oe) {
		return oe
	}
	se := E(ServerError, "an unexpected error occurred")
	se.cause = xo.W(err)
	return se
}

// Unwrap returns the underlying error AsError collapsed into a ServerError,
// or nil.
func (e *Error) Unwrap() error { return e.cause }

type jsonError struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
	URI         string `json:"error_uri,omitempty"`
}

// WriteJSON writes the bearer/JSON error shape: application/json body with
// {error, error_description?, error_uri?} and the mapped status.
func WriteJSON(w http.ResponseWriter, err *Error) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	w.WriteHeader(err.Code.Status())
	_ = json.NewEncoder(w).Encode(jsonError{
		Error:       string(err.Code),
		Description: err.Description,
		URI:         err.URI,
	})
}

// WriteRedirect writes the authorization-redirect error shape: a 302 to
// err.RedirectURI carrying error, error_description?, error_uri?, iss and
// the original state. Callers must never invoke this before redirect_uri
// has been validated against the client's registered URIs.
func WriteRedirect(w http.ResponseWriter, r *http.Request, err *Error) {
	if err.RedirectURI == "" {
		WriteJSON(w, err)
		return
	}
	u, parseErr := url.Parse(err.RedirectURI)
	if parseErr != nil {
		WriteJSON(w, err)
		return
	}
	q := u.Query()
	q.Set("error", string(err.Code))
	if err.Description != "" {
		q.Set("error_description", err.Description)
	}
	if err.URI != "" {
		q.Set("error_uri", err.URI)
	}
	if err.Issuer != "" {
		q.Set("iss", err.Issuer)
	}
	if err.State != "" {
		q.Set("state", err.State)
	}
	u.RawQuery = q.Encode()
	http.Redirect(w, r, u.String(), http.StatusFound)
}

// ValidationIssue is a single failing field from a grant's schema
// validation, tagged with the OAuth code it should surface as.
type ValidationIssue struct {
	Path string
	Code Code
}

// AdaptValidation picks the OAuth code for a failed schema validation from
// the Code tagged on the first failing issue, defaulting to InvalidRequest,
// and names that issue's Path in the description. The caller tags each
// issue with its precise code (client_id/client_secret -> InvalidClient,
// scope -> InvalidScope); the built-in grants do not call it and return
// their *Error values directly.
func AdaptValidation(issues []ValidationIssue) *Error {
	if len(issues) == 0 {
		return E(InvalidRequest, "invalid request")
	}
	code := issues[0].Code
	if code == "" {
		code = InvalidRequest
	}
	return E(code, "invalid value for "+issues[0].Path)
}
