package oauth

import (
	"time"

	"dario.cat/mergo"
)

// AuthorizationCodeOptions configures the authorization code grant,
// including PKCE (RFC 7636) and pushed authorization requests (RFC 9126).
// A nil *AuthorizationCodeOptions on Config disables the grant entirely.
type AuthorizationCodeOptions struct {
	TTL                           time.Duration
	CodeChallengeMethodsSupported []string
	ResponseTypesSupported        []string
	ResponseModesSupported        []string
}

func (o AuthorizationCodeOptions) withDefaults() AuthorizationCodeOptions {
	defaults := AuthorizationCodeOptions{
		TTL:                           5 * time.Minute,
		CodeChallengeMethodsSupported: []string{"S256"},
		ResponseTypesSupported:        []string{"code"},
		ResponseModesSupported:        []string{"query"},
	}
	mergeDefaults(&o, defaults)
	return o
}

// ClientCredentialsOptions configures the client credentials grant.
type ClientCredentialsOptions struct {
	// IssueRefreshToken enables refresh token issuance for this grant. By
	// spec, client credentials grants are refreshable only when explicitly
	// enabled.
	IssueRefreshToken bool
}

func (o ClientCredentialsOptions) withDefaults() ClientCredentialsOptions {
	return o
}

// RefreshTokenOptions configures the refresh token grant.
type RefreshTokenOptions struct{}

func (o RefreshTokenOptions) withDefaults() RefreshTokenOptions { return o }

// DeviceCodeOptions configures the device authorization grant (RFC 8628).
type DeviceCodeOptions struct {
	TTL                   time.Duration
	DevicePollingInterval time.Duration
}

func (o DeviceCodeOptions) withDefaults() DeviceCodeOptions {
	defaults := DeviceCodeOptions{
		TTL:                   15 * time.Minute,
		DevicePollingInterval: 5 * time.Second,
	}
	mergeDefaults(&o, defaults)
	return o
}

// PushedAuthorizationRequestOptions configures the PAR endpoint (RFC 9126).
type PushedAuthorizationRequestOptions struct {
	TTL      time.Duration
	Required bool
}

func (o PushedAuthorizationRequestOptions) withDefaults() PushedAuthorizationRequestOptions {
	defaults := PushedAuthorizationRequestOptions{
		TTL: time.Minute,
	}
	mergeDefaults(&o, defaults)
	return o
}

// TokenEndpointOptions configures the fields surfaced about the token
// endpoint in server metadata (RFC 8414).
type TokenEndpointOptions struct {
	AuthMethodsSupported         []string
	AuthSigningAlgValuesSupported []string
}

func (o TokenEndpointOptions) withDefaults() TokenEndpointOptions {
	defaults := TokenEndpointOptions{
		AuthMethodsSupported:          []string{"client_secret_post"},
		AuthSigningAlgValuesSupported: []string{"RS256"},
	}
	mergeDefaults(&o, defaults)
	return o
}

// TokenRevocationOptions enables RFC 7009 token revocation.
type TokenRevocationOptions struct{}

// TokenIntrospectionOptions enables RFC 7662 token introspection.
type TokenIntrospectionOptions struct{}

// ServerMetadataOptions enables the RFC 8414 metadata document.
type ServerMetadataOptions struct{}

// UserInfoOptions enables the OIDC userinfo endpoint.
type UserInfoOptions struct{}

// ClientRegistrationOptions enables the RFC 7591-shaped registration
// endpoint.
type ClientRegistrationOptions struct{}

// Config is the Authorization Server's immutable configuration. Every
// feature is either nil (disabled) or a populated options value (enabled,
// defaulted). Config is consumed once by New and never mutated afterwards;
// the resulting Server holds only its derived, already-defaulted form.
type Config struct {
	// Issuer is the absolute HTTPS issuer URL, used to derive BaseURI and
	// stamp the "iss" claim/parameter.
	Issuer string

	// BaseURI is the root endpoint prefix. Defaults to "<Issuer>/oauth/".
	BaseURI string

	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	// IDTokenTTL defaults to AccessTokenTTL when zero.
	IDTokenTTL time.Duration

	AuthorizationCode           *AuthorizationCodeOptions
	RefreshToken                *RefreshTokenOptions
	ClientCredentials           *ClientCredentialsOptions
	DeviceCode                  *DeviceCodeOptions
	PushedAuthorizationRequests *PushedAuthorizationRequestOptions
	TokenRevocation             *TokenRevocationOptions
	TokenIntrospection          *TokenIntrospectionOptions
	ServerMetadata              *ServerMetadataOptions
	UserInfo                    *UserInfoOptions
	ClientRegistration          *ClientRegistrationOptions

	Token TokenEndpointOptions

	Storage Storage
}

// mergeDefaults fills every zero-valued field of dst from defaults,
// matching the teacher's historic mergo.Merge(policy, defaultPolicy) call:
// the caller-supplied struct is the destination, so anything it already set
// wins, and mergo only fills in what was left at its zero value.
func mergeDefaults[T any](dst *T, defaults T) {
	if err := mergo.Merge(dst, defaults); err != nil {
		panic(err)
	}
}

// resolved is the fully-defaulted, read-only configuration a Server derives
// from Config at construction time.
type resolved struct {
	issuer          string
	baseURI         string
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
	idTokenTTL      time.Duration

	authorizationCode           *AuthorizationCodeOptions
	refreshToken                *RefreshTokenOptions
	clientCredentials           *ClientCredentialsOptions
	deviceCode                  *DeviceCodeOptions
	pushedAuthorizationRequests *PushedAuthorizationRequestOptions
	tokenRevocation             *TokenRevocationOptions
	tokenIntrospection          *TokenIntrospectionOptions
	serverMetadata              *ServerMetadataOptions
	userInfo                    *UserInfoOptions
	clientRegistration          *ClientRegistrationOptions

	token TokenEndpointOptions
}

func resolveConfig(c Config) resolved {
	r := resolved{
		issuer:          c.Issuer,
		baseURI:         c.BaseURI,
		accessTokenTTL:  c.AccessTokenTTL,
		refreshTokenTTL: c.RefreshTokenTTL,
		idTokenTTL:      c.IDTokenTTL,
		token:           c.Token.withDefaults(),
	}

	if r.baseURI == "" {
		r.baseURI = r.issuer + "/oauth/"
	}
	if r.accessTokenTTL == 0 {
		r.accessTokenTTL = time.Hour
	}
	if r.refreshTokenTTL == 0 {
		r.refreshTokenTTL = 7 * 24 * time.Hour
	}
	if r.idTokenTTL == 0 {
		r.idTokenTTL = r.accessTokenTTL
	}

	if c.AuthorizationCode != nil {
		opts := c.AuthorizationCode.withDefaults()
		r.authorizationCode = &opts
	}
	if c.RefreshToken != nil {
		opts := c.RefreshToken.withDefaults()
		r.refreshToken = &opts
	}
	if c.ClientCredentials != nil {
		opts := c.ClientCredentials.withDefaults()
		r.clientCredentials = &opts
	}
	if c.DeviceCode != nil {
		opts := c.DeviceCode.withDefaults()
		r.deviceCode = &opts
	}
	if c.PushedAuthorizationRequests != nil {
		opts := c.PushedAuthorizationRequests.withDefaults()
		r.pushedAuthorizationRequests = &opts
	}
	r.tokenRevocation = c.TokenRevocation
	r.tokenIntrospection = c.TokenIntrospection
	r.serverMetadata = c.ServerMetadata
	r.userInfo = c.UserInfo
	r.clientRegistration = c.ClientRegistration

	return r
}

// grantEnabled reports whether grantType's owning feature family is enabled
// on this configuration. New consults this to derive its grant registry
// from cfg rather than trusting whatever Grant values it was handed:
// disabling a family must make its grant_type answer unsupported_grant_type
// even if a caller still constructs and passes its handler.
func (r resolved) grantEnabled(grantType string) bool {
	switch grantType {
	case "authorization_code":
		return r.authorizationCode != nil
	case "refresh_token":
		return r.refreshToken != nil
	case "client_credentials":
		return r.clientCredentials != nil
	case "urn:ietf:params:oauth:grant-type:device_code":
		return r.deviceCode != nil
	default:
		// An unrecognized grant_type is a caller-defined extension grant;
		// New admits it as-is rather than rejecting an unknown family.
		return true
	}
}
