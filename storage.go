package oauth

import (
	"context"
	"time"
)

// Client is a registered application, identified by ClientID. The core
// never assumes a concrete schema; any persistence adapter satisfies this
// interface by wrapping its own row or document type.
type Client interface {
	ID() string
	// SecretHash is nil for public clients.
	SecretHash() []byte
	Active() bool
	Revoked() bool
	AllowedGrantTypes() []string
	AllowedScopes() Scope
	// RedirectURIs is nil/empty for confidential, non-redirect-based
	// clients (a prerequisite for the client_credentials grant).
	RedirectURIs() []string
}

// AuthorizationCode is a single-use code bound to a client, subject and PKCE
// challenge, issued by the authorization endpoint and exchanged at the token
// endpoint.
type AuthorizationCode interface {
	Code() string
	ClientID() string
	Subject() string
	RedirectURI() string
	Scope() Scope
	ExpiresAt() time.Time
	UsedAt() *time.Time
	CodeChallenge() string
	CodeChallengeMethod() string
}

// PushedAuthorizationRequest is a stored set of authorization parameters,
// referenced later by an opaque request_uri (RFC 9126). UsedAt reflects
// whether the entry was already consumed as of the moment it was loaded —
// see Storage.LoadAuthorizationRequest.
type PushedAuthorizationRequest interface {
	ID() string
	ClientID() string
	Params() Values
	ExpiresAt() time.Time
	UsedAt() *time.Time
}

// AccessToken is a bearer credential, opaque from the core's perspective;
// the adapter decides its wire representation.
type AccessToken interface {
	Value() string
	ClientID() string
	Subject() string
	Scope() Scope
	ExpiresAt() time.Time
	Revoked() bool
}

// RefreshToken is exchanged for new access tokens and rotated on use.
type RefreshToken interface {
	Value() string
	ClientID() string
	Subject() string
	Scope() Scope
	ExpiresAt() time.Time
	Revoked() bool
}

// DeviceChallenge is the server-side state of an in-progress device
// authorization grant (RFC 8628). Approved is a tri-state: nil (pending),
// true (approved), false (denied).
type DeviceChallenge interface {
	DeviceCode() string
	UserCode() string
	ClientID() string
	Scope() Scope
	Approved() *bool
	ExpiresAt() time.Time
	UsedAt() *time.Time
}

// AuthorizationCodeParams describes a code to be created by
// Storage.StoreAuthorizationCode.
type AuthorizationCodeParams struct {
	ClientID            string
	Subject             string
	RedirectURI         string
	Scope               Scope
	TTL                 time.Duration
	CodeChallenge        string
	CodeChallengeMethod  string
}

// PushedAuthorizationRequestParams describes a PAR entry to be created by
// Storage.StoreAuthorizationRequest.
type PushedAuthorizationRequestParams struct {
	ClientID string
	Params   Values
	TTL      time.Duration
}

// DeviceChallengeParams describes a device challenge to be created by
// Storage.StoreDeviceChallenge.
type DeviceChallengeParams struct {
	ClientID     string
	Scope        Scope
	TTL          time.Duration
	PollInterval time.Duration
}

// ClientRegistration is the minimal RFC 7591-shaped input to
// Storage.RegisterClient.
type ClientRegistration struct {
	RedirectURIs            []string
	GrantTypes              []string
	TokenEndpointAuthMethod string
}

// Storage is the complete persistence contract the core consumes. It owns
// no opinion on the concrete database; every method is a narrow load,
// store, or revoke callback except IssueTokens, which is the single atomic
// write for a token response.
type Storage interface {
	LoadClient(ctx context.Context, id string) (Client, error)

	LoadAuthorizationCode(ctx context.Context, code string) (AuthorizationCode, error)
	StoreAuthorizationCode(ctx context.Context, params AuthorizationCodeParams) (AuthorizationCode, error)

	// LoadAuthorizationRequest atomically loads a pushed authorization
	// request and marks it used as of this call: the returned value's
	// UsedAt reflects its state immediately before this load, so a second
	// concurrent or subsequent load observes UsedAt set and rejects.
	LoadAuthorizationRequest(ctx context.Context, id string) (PushedAuthorizationRequest, error)
	StoreAuthorizationRequest(ctx context.Context, params PushedAuthorizationRequestParams) (PushedAuthorizationRequest, error)

	LoadAccessToken(ctx context.Context, value string) (AccessToken, error)
	LoadRefreshToken(ctx context.Context, value string) (RefreshToken, error)

	StoreDeviceChallenge(ctx context.Context, params DeviceChallengeParams) (DeviceChallenge, error)
	LoadDeviceChallenge(ctx context.Context, deviceCode string) (DeviceChallenge, error)
	// PollDeviceChallenge is the single atomic callback that both checks
	// and bumps the challenge's poll bookkeeping. It returns a SlowDown
	// *Error directly when the challenge's current poll interval (never
	// less than minInterval) hasn't elapsed since the last poll.
	PollDeviceChallenge(ctx context.Context, deviceCode string, minInterval time.Duration) (DeviceChallenge, error)

	RevokeAccessToken(ctx context.Context, value string) error
	RevokeRefreshToken(ctx context.Context, value string) error

	// IssueTokens performs every write for a token response atomically,
	// including any exchange-triggered revocation or consumption (refresh
	// rotation, device-code consumption, authorization-code consumption).
	// An Exchange naming an already-used code or device challenge is
	// rejected with an invalid_grant *Error rather than silently reused.
	IssueTokens(ctx context.Context, issuance *Issuance) (*IssuedTokens, error)

	// SigningKey returns the key (and its kid) used to sign ID tokens. The
	// core never owns a JWKS or key-rotation schedule.
	SigningKey(ctx context.Context) (key any, kid string, err error)

	LoadUserInfo(ctx context.Context, subject string, scope Scope) (map[string]any, error)
	RegisterClient(ctx context.Context, reg *ClientRegistration) (Client, error)
}
