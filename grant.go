package oauth

import (
	"context"
	"time"
)

// TokenSpec describes one token to be minted by Storage.IssueTokens.
// Exchange, when set, names a prior opaque token/code value the adapter
// must atomically invalidate alongside minting this one (refresh rotation,
// device-code consumption).
type TokenSpec struct {
	TTL      time.Duration
	Exchange string
	Scope    Scope
	Claims   map[string]any
}

// Issuance is the result of a grant's Handle step: everything the token
// endpoint needs to know to call Storage.IssueTokens exactly once.
// ClientID is filled in by the token endpoint itself, not by the grant,
// since every grant already runs in the context of a resolved client.
type Issuance struct {
	ClientID     string
	AccessToken  *TokenSpec
	RefreshToken *TokenSpec
	IDToken      *TokenSpec
	Scope        Scope
	Subject      string
}

// IssuedTokens is what Storage.IssueTokens hands back after writing
// everything in one atomic operation.
type IssuedTokens struct {
	AccessToken  string
	RefreshToken string
	IDToken      string
	ExpiresIn    int
}

// Grant is the capability interface every grant type satisfies: a small
// value type, never a class hierarchy. The token endpoint is the only
// caller, and it always runs Validate then Handle in that order.
type Grant interface {
	// Type returns the canonical grant_type identifier this grant answers
	// to, e.g. "authorization_code" or
	// "urn:ietf:params:oauth:grant-type:device_code".
	Type() string
	// Validate parses params against the grant's schema and runs stateful
	// checks (token/code lookups, PKCE verification, expiry).
	Validate(ctx context.Context, params Values, client Client, srv *Server) (any, error)
	// Handle computes the issuance descriptor from a value Validate
	// produced. It never mints tokens itself.
	Handle(ctx context.Context, validated any, client Client, srv *Server) (*Issuance, error)
}
