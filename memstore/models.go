package memstore

import (
	"time"

	oauth "github.com/vellumauth/core"
)

// client is the in-memory Client record.
type client struct {
	id           string
	secretHash   []byte
	active       bool
	revoked      bool
	grantTypes   []string
	scopes       oauth.Scope
	redirectURIs []string
}

func (c *client) ID() string                 { return c.id }
func (c *client) SecretHash() []byte         { return c.secretHash }
func (c *client) Active() bool               { return c.active }
func (c *client) Revoked() bool              { return c.revoked }
func (c *client) AllowedGrantTypes() []string { return c.grantTypes }
func (c *client) AllowedScopes() oauth.Scope { return c.scopes }
func (c *client) RedirectURIs() []string     { return c.redirectURIs }

// authorizationCode is the in-memory AuthorizationCode record.
type authorizationCode struct {
	code                string
	clientID            string
	subject             string
	redirectURI         string
	scope               oauth.Scope
	expiresAt           time.Time
	usedAt              *time.Time
	codeChallenge       string
	codeChallengeMethod string
}

func (c *authorizationCode) Code() string                { return c.code }
func (c *authorizationCode) ClientID() string             { return c.clientID }
func (c *authorizationCode) Subject() string              { return c.subject }
func (c *authorizationCode) RedirectURI() string           { return c.redirectURI }
func (c *authorizationCode) Scope() oauth.Scope            { return c.scope }
func (c *authorizationCode) ExpiresAt() time.Time          { return c.expiresAt }
func (c *authorizationCode) UsedAt() *time.Time            { return c.usedAt }
func (c *authorizationCode) CodeChallenge() string          { return c.codeChallenge }
func (c *authorizationCode) CodeChallengeMethod() string    { return c.codeChallengeMethod }

// pushedAuthorizationRequest is the in-memory PAR record.
type pushedAuthorizationRequest struct {
	id        string
	clientID  string
	params    oauth.Values
	expiresAt time.Time
	usedAt    *time.Time
}

func (p *pushedAuthorizationRequest) ID() string          { return p.id }
func (p *pushedAuthorizationRequest) ClientID() string    { return p.clientID }
func (p *pushedAuthorizationRequest) Params() oauth.Values { return p.params }
func (p *pushedAuthorizationRequest) ExpiresAt() time.Time { return p.expiresAt }
func (p *pushedAuthorizationRequest) UsedAt() *time.Time   { return p.usedAt }

// accessToken is the in-memory AccessToken record.
type accessToken struct {
	value     string
	clientID  string
	subject   string
	scope     oauth.Scope
	expiresAt time.Time
	revoked   bool
}

func (t *accessToken) Value() string        { return t.value }
func (t *accessToken) ClientID() string      { return t.clientID }
func (t *accessToken) Subject() string       { return t.subject }
func (t *accessToken) Scope() oauth.Scope    { return t.scope }
func (t *accessToken) ExpiresAt() time.Time  { return t.expiresAt }
func (t *accessToken) Revoked() bool         { return t.revoked }

// refreshToken is the in-memory RefreshToken record.
type refreshToken struct {
	value     string
	clientID  string
	subject   string
	scope     oauth.Scope
	expiresAt time.Time
	revoked   bool
}

func (t *refreshToken) Value() string       { return t.value }
func (t *refreshToken) ClientID() string     { return t.clientID }
func (t *refreshToken) Subject() string      { return t.subject }
func (t *refreshToken) Scope() oauth.Scope   { return t.scope }
func (t *refreshToken) ExpiresAt() time.Time { return t.expiresAt }
func (t *refreshToken) Revoked() bool        { return t.revoked }

// deviceChallenge is the in-memory DeviceChallenge record, plus the poll
// bookkeeping (lastPoll/interval) PollDeviceChallenge needs for RFC 8628
// slow_down backoff.
type deviceChallenge struct {
	deviceCode string
	userCode   string
	clientID   string
	scope      oauth.Scope
	approved   *bool
	expiresAt  time.Time
	usedAt     *time.Time

	lastPoll time.Time
	interval time.Duration
}

func (d *deviceChallenge) DeviceCode() string  { return d.deviceCode }
func (d *deviceChallenge) UserCode() string     { return d.userCode }
func (d *deviceChallenge) ClientID() string     { return d.clientID }
func (d *deviceChallenge) Scope() oauth.Scope   { return d.scope }
func (d *deviceChallenge) Approved() *bool      { return d.approved }
func (d *deviceChallenge) ExpiresAt() time.Time { return d.expiresAt }
func (d *deviceChallenge) UsedAt() *time.Time   { return d.usedAt }
