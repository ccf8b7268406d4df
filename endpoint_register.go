package oauth

import (
	"encoding/json"
	"net/http"
)

type registrationRequest struct {
	RedirectURIs            []string `json:"redirect_uris"`
	GrantTypes              []string `json:"grant_types"`
	TokenEndpointAuthMethod string   `json:"token_endpoint_auth_method"`
}

type registrationResponse struct {
	ClientID                string   `json:"client_id"`
	RedirectURIs            []string `json:"redirect_uris,omitempty"`
	GrantTypes              []string `json:"grant_types,omitempty"`
	TokenEndpointAuthMethod string   `json:"token_endpoint_auth_method,omitempty"`
}

// ClientRegistrationEndpoint implements a minimal RFC 7591-shaped dynamic
// client registration endpoint. Unlike every other endpoint, its body
// carries array fields (redirect_uris, grant_types), so it decodes JSON
// directly rather than through ParseBody's flat Values, which rejects
// nested values by design.
func (s *Server) ClientRegistrationEndpoint(w http.ResponseWriter, r *http.Request) {
	if s.cfg.clientRegistration == nil {
		WriteJSON(w, E(InvalidRequest, "client registration not enabled"))
		return
	}

	var req registrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSON(w, E(InvalidRequest, "malformed registration request"))
		return
	}
	for _, ru := range req.RedirectURIs {
		if !validRedirectURI(ru) {
			WriteJSON(w, E(InvalidRequest, "invalid redirect_uri: "+ru))
			return
		}
	}

	client, err := s.storage.RegisterClient(r.Context(), &ClientRegistration{
		RedirectURIs:            req.RedirectURIs,
		GrantTypes:              req.GrantTypes,
		TokenEndpointAuthMethod: req.TokenEndpointAuthMethod,
	})
	if err != nil {
		WriteJSON(w, AsError(err))
		return
	}

	writeJSONBody(w, http.StatusCreated, registrationResponse{
		ClientID:                client.ID(),
		RedirectURIs:            client.RedirectURIs(),
		GrantTypes:              client.AllowedGrantTypes(),
		TokenEndpointAuthMethod: req.TokenEndpointAuthMethod,
	})
}
