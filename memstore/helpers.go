package memstore

import (
	"golang.org/x/crypto/bcrypt"

	oauth "github.com/vellumauth/core"
)

// HashSecret bcrypt-hashes a client secret for use with AddClient, matching
// the cost heat.Hash uses for client secrets.
func HashSecret(secret string) []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return hash
}

// AddClient registers a client directly, bypassing RegisterClient. Intended
// for tests and local fixtures that need a known client_id.
func (s *Store) AddClient(id string, secretHash []byte, grantTypes []string, scopes oauth.Scope, redirectURIs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clients[id] = &client{
		id:           id,
		secretHash:   secretHash,
		active:       true,
		grantTypes:   grantTypes,
		scopes:       scopes,
		redirectURIs: redirectURIs,
	}
}

// SetUserInfo seeds the claims LoadUserInfo returns for subject.
func (s *Store) SetUserInfo(subject string, claims map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userInfo[subject] = claims
}

// ApproveDevice resolves a user-facing user_code to its device challenge
// and records the end user's approve/deny decision, the second-screen half
// of the device authorization grant the core itself has no view into.
func (s *Store) ApproveDevice(userCode string, approve bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	deviceCode, ok := s.userCodes[userCode]
	if !ok {
		return false
	}
	d, ok := s.devices[deviceCode]
	if !ok {
		return false
	}
	d.approved = &approve
	return true
}
