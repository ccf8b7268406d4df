package oauth

import "net/http"

// RevocationEndpoint implements RFC 7009 token revocation. It always
// answers 200 regardless of outcome: an unknown token, a token belonging
// to a different client, or a disabled feature all swallow silently,
// since RFC 7009 §2.2 forbids using the response to signal whether a
// token existed.
func (s *Server) RevocationEndpoint(w http.ResponseWriter, r *http.Request) {
	defer w.WriteHeader(http.StatusOK)

	if s.cfg.tokenRevocation == nil {
		return
	}

	params, err := ParseBody(r)
	if err != nil {
		return
	}

	client, err := s.authenticateClient(r, params, "")
	if err != nil {
		return
	}

	value := params["token"]
	if value == "" {
		return
	}

	ctx := r.Context()

	revokeAccess := func() bool {
		token, err := s.storage.LoadAccessToken(ctx, value)
		if err != nil || token == nil {
			return false
		}
		if token.ClientID() == client.ID() {
			_ = s.storage.RevokeAccessToken(ctx, value)
		}
		return true
	}
	revokeRefresh := func() bool {
		token, err := s.storage.LoadRefreshToken(ctx, value)
		if err != nil || token == nil {
			return false
		}
		if token.ClientID() == client.ID() {
			_ = s.storage.RevokeRefreshToken(ctx, value)
		}
		return true
	}

	if params["token_type_hint"] == "refresh_token" {
		if revokeRefresh() {
			return
		}
		revokeAccess()
		return
	}

	if revokeAccess() {
		return
	}
	revokeRefresh()
}
