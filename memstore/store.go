// Package memstore is a reference in-memory Storage adapter, grounded on
// the teacher's mgo-backed collections (flame/authenticator.go) but
// rebuilt around plain maps guarded by a mutex rather than a database
// driver. It exists for tests and local development, not production use.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	oauth "github.com/vellumauth/core"
)

// Store is a mutex-guarded, in-memory implementation of oauth.Storage.
type Store struct {
	mu sync.Mutex

	clients       map[string]*client
	codes         map[string]*authorizationCode
	requests      map[string]*pushedAuthorizationRequest
	accessTokens  map[string]*accessToken
	refreshTokens map[string]*refreshToken
	devices       map[string]*deviceChallenge
	userCodes     map[string]string // user_code -> device_code
	userInfo      map[string]map[string]any

	signingKey []byte
	signingKid string
}

// New builds an empty Store with a random HMAC signing key for ID tokens.
func New() *Store {
	return &Store{
		clients:       make(map[string]*client),
		codes:         make(map[string]*authorizationCode),
		requests:      make(map[string]*pushedAuthorizationRequest),
		accessTokens:  make(map[string]*accessToken),
		refreshTokens: make(map[string]*refreshToken),
		devices:       make(map[string]*deviceChallenge),
		userCodes:     make(map[string]string),
		userInfo:      make(map[string]map[string]any),
		signingKey:    []byte(randomToken(32)),
		signingKid:    "default",
	}
}

func (s *Store) LoadClient(_ context.Context, id string) (oauth.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clients[id]
	if !ok {
		return nil, nil
	}
	return c, nil
}

func (s *Store) LoadAuthorizationCode(_ context.Context, code string) (oauth.AuthorizationCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.codes[code]
	if !ok {
		return nil, nil
	}
	return c, nil
}

func (s *Store) StoreAuthorizationCode(_ context.Context, params oauth.AuthorizationCodeParams) (oauth.AuthorizationCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := &authorizationCode{
		code:                randomToken(24),
		clientID:            params.ClientID,
		subject:             params.Subject,
		redirectURI:         params.RedirectURI,
		scope:               params.Scope,
		expiresAt:           oauth.NowFunc().Add(params.TTL),
		codeChallenge:       params.CodeChallenge,
		codeChallengeMethod: params.CodeChallengeMethod,
	}
	s.codes[c.code] = c
	return c, nil
}

// LoadAuthorizationRequest atomically loads a PAR entry and marks it used:
// the snapshot returned reflects UsedAt as of immediately before this call,
// so a caller's already-used check still sees the pre-consumption state
// while a second, concurrent or later, call observes it consumed.
func (s *Store) LoadAuthorizationRequest(_ context.Context, id string) (oauth.PushedAuthorizationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.requests[id]
	if !ok {
		return nil, nil
	}

	snapshot := *p
	if p.usedAt == nil {
		now := oauth.NowFunc()
		p.usedAt = &now
	}
	return &snapshot, nil
}

func (s *Store) StoreAuthorizationRequest(_ context.Context, params oauth.PushedAuthorizationRequestParams) (oauth.PushedAuthorizationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := &pushedAuthorizationRequest{
		id:        uuid.NewString(),
		clientID:  params.ClientID,
		params:    params.Params,
		expiresAt: oauth.NowFunc().Add(params.TTL),
	}
	s.requests[p.id] = p
	return p, nil
}

func (s *Store) LoadAccessToken(_ context.Context, value string) (oauth.AccessToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.accessTokens[value]
	if !ok {
		return nil, nil
	}
	return t, nil
}

func (s *Store) LoadRefreshToken(_ context.Context, value string) (oauth.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.refreshTokens[value]
	if !ok {
		return nil, nil
	}
	return t, nil
}

func (s *Store) StoreDeviceChallenge(_ context.Context, params oauth.DeviceChallengeParams) (oauth.DeviceChallenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var userCode string
	for {
		userCode = randomUserCode()
		if _, taken := s.userCodes[userCode]; !taken {
			break
		}
	}

	d := &deviceChallenge{
		deviceCode: randomToken(32),
		userCode:   userCode,
		clientID:   params.ClientID,
		scope:      params.Scope,
		expiresAt:  oauth.NowFunc().Add(params.TTL),
		interval:   params.PollInterval,
	}
	s.devices[d.deviceCode] = d
	s.userCodes[userCode] = d.deviceCode
	return d, nil
}

func (s *Store) LoadDeviceChallenge(_ context.Context, deviceCode string) (oauth.DeviceChallenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.devices[deviceCode]
	if !ok {
		return nil, nil
	}
	return d, nil
}

// PollDeviceChallenge atomically checks and bumps the challenge's poll
// bookkeeping. Polling faster than the current interval doubles it (RFC
// 8628 §3.5 slow_down) and reports the error directly rather than letting
// the caller retry at the old, now-too-fast cadence.
func (s *Store) PollDeviceChallenge(_ context.Context, deviceCode string, minInterval time.Duration) (oauth.DeviceChallenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.devices[deviceCode]
	if !ok {
		return nil, nil
	}

	now := oauth.NowFunc()
	interval := d.interval
	if interval < minInterval {
		interval = minInterval
	}
	if !d.lastPoll.IsZero() && now.Sub(d.lastPoll) < interval {
		d.interval = interval * 2
		d.lastPoll = now
		return nil, oauth.E(oauth.SlowDown, "polling too frequently")
	}
	d.lastPoll = now

	return d, nil
}

func (s *Store) RevokeAccessToken(_ context.Context, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.accessTokens[value]; ok {
		t.revoked = true
	}
	return nil
}

func (s *Store) RevokeRefreshToken(_ context.Context, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.refreshTokens[value]; ok {
		t.revoked = true
	}
	return nil
}

// IssueTokens is the single atomic write behind every grant: it consumes
// or rejects an already-consumed TokenSpec.Exchange, mints the access
// token, optionally rotates or revokes the refresh token, and persists the
// new one if requested. ID token signing happens one layer up, in the
// core's token endpoint, since only it knows the issuer.
func (s *Store) IssueTokens(_ context.Context, issuance *oauth.Issuance) (*oauth.IssuedTokens, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := oauth.NowFunc()
	out := &oauth.IssuedTokens{}

	if exchange := issuance.AccessToken.Exchange; exchange != "" {
		// The device code and authorization code grants name their
		// consumed credential as the exchange value: marking it used here,
		// atomically with minting the access token, is what prevents a
		// second poll or a replayed code from succeeding.
		switch {
		case s.devices[exchange] != nil:
			d := s.devices[exchange]
			if d.usedAt != nil {
				return nil, oauth.E(oauth.InvalidGrant, "device code already exchanged")
			}
			used := now
			d.usedAt = &used
		case s.codes[exchange] != nil:
			c := s.codes[exchange]
			if c.usedAt != nil {
				return nil, oauth.E(oauth.InvalidGrant, "authorization code already used")
			}
			used := now
			c.usedAt = &used
		}
	}

	at := &accessToken{
		value:     randomToken(32),
		clientID:  issuance.ClientID,
		subject:   issuance.Subject,
		scope:     issuance.AccessToken.Scope,
		expiresAt: now.Add(issuance.AccessToken.TTL),
	}
	s.accessTokens[at.value] = at
	out.AccessToken = at.value
	out.ExpiresIn = int(issuance.AccessToken.TTL.Seconds())

	if issuance.RefreshToken != nil {
		if issuance.RefreshToken.Exchange != "" {
			if old, ok := s.refreshTokens[issuance.RefreshToken.Exchange]; ok {
				old.revoked = true
			}
		}
		rt := &refreshToken{
			value:     randomToken(32),
			clientID:  issuance.ClientID,
			subject:   issuance.Subject,
			scope:     issuance.RefreshToken.Scope,
			expiresAt: now.Add(issuance.RefreshToken.TTL),
		}
		s.refreshTokens[rt.value] = rt
		out.RefreshToken = rt.value
	}

	return out, nil
}

func (s *Store) SigningKey(_ context.Context) (any, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signingKey, s.signingKid, nil
}

func (s *Store) LoadUserInfo(_ context.Context, subject string, _ oauth.Scope) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	claims, ok := s.userInfo[subject]
	if !ok {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(claims))
	for k, v := range claims {
		out[k] = v
	}
	return out, nil
}

func (s *Store) RegisterClient(_ context.Context, reg *oauth.ClientRegistration) (oauth.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := &client{
		id:           uuid.NewString(),
		active:       true,
		grantTypes:   reg.GrantTypes,
		redirectURIs: reg.RedirectURIs,
	}
	s.clients[c.id] = c
	return c, nil
}
