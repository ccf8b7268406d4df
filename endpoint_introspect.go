package oauth

import (
	"encoding/json"
	"net/http"
)

type introspectionResponse struct {
	Active    bool   `json:"active"`
	Scope     string `json:"scope,omitempty"`
	ClientID  string `json:"client_id,omitempty"`
	Username  string `json:"username,omitempty"`
	TokenType string `json:"token_type,omitempty"`
	Exp       int64  `json:"exp,omitempty"`
}

// IntrospectionEndpoint implements RFC 7662 token introspection for access
// tokens. Refresh tokens are not introspectable: every disqualifying
// condition (unknown, revoked, expired, or belonging to a different
// caller) collapses to the same {"active":false}, so a caller learns
// nothing about a token it doesn't own.
func (s *Server) IntrospectionEndpoint(w http.ResponseWriter, r *http.Request) {
	if s.cfg.tokenIntrospection == nil {
		WriteJSON(w, E(InvalidRequest, "introspection not enabled"))
		return
	}

	params, err := ParseBody(r)
	if err != nil {
		WriteJSON(w, AsError(err))
		return
	}

	client, err := s.authenticateClient(r, params, "")
	if err != nil {
		WriteJSON(w, AsError(err))
		return
	}

	inactive := func() { writeJSONBody(w, http.StatusOK, introspectionResponse{Active: false}) }

	value := params["token"]
	if value == "" {
		inactive()
		return
	}

	token, err := s.storage.LoadAccessToken(r.Context(), value)
	if err != nil {
		WriteJSON(w, AsError(err))
		return
	}
	if token == nil || token.Revoked() || !token.ExpiresAt().After(NowFunc()) || token.ClientID() != client.ID() {
		inactive()
		return
	}

	writeJSONBody(w, http.StatusOK, introspectionResponse{
		Active:    true,
		Scope:     token.Scope().String(),
		ClientID:  token.ClientID(),
		Username:  token.Subject(),
		TokenType: "Bearer",
		Exp:       token.ExpiresAt().Unix(),
	})
}

func writeJSONBody(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
