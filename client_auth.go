package oauth

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

// authenticateClient resolves the calling client and, for confidential
// clients (those with a stored secret hash), verifies it. Credentials are
// read from the HTTP Basic Authorization header first, falling back to the
// client_id/client_secret body parameters (client_secret_basic and
// client_secret_post; TokenEndpointOptions.AuthMethodsSupported advertises
// only client_secret_post unless configured otherwise). Public clients
// (no SecretHash) authenticate by client_id alone, per RFC 6749 §2.3.
//
// A bad or missing secret is reported as invalid_client for every grant
// except client_credentials, where it is reported as invalid_request: that
// grant has no other credential to fall back on, so a secret problem is a
// malformed request rather than an unidentifiable client.
func (s *Server) authenticateClient(r *http.Request, params Values, grantType string) (Client, error) {
	id, secret, ok := r.BasicAuth()
	if !ok {
		id = params["client_id"]
		secret = params["client_secret"]
	}

	client, err := ResolveClient(r.Context(), s.storage, id)
	if err != nil {
		return nil, err
	}

	secretCode := InvalidClient
	if grantType == "client_credentials" {
		secretCode = InvalidRequest
	}

	if client.SecretHash() != nil {
		if secret == "" {
			return nil, E(secretCode, "missing client_secret")
		}
		if err := bcrypt.CompareHashAndPassword(client.SecretHash(), []byte(secret)); err != nil {
			return nil, E(secretCode, "invalid client_secret")
		}
	}

	return client, nil
}
