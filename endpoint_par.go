package oauth

import (
	"net/http"
)

// PAREndpoint implements the RFC 9126 pushed authorization request
// endpoint: an authenticated client submits the full set of authorization
// parameters ahead of the front-channel redirect and receives an opaque
// request_uri to present at the authorization endpoint instead.
func (s *Server) PAREndpoint(w http.ResponseWriter, r *http.Request) {
	if s.cfg.pushedAuthorizationRequests == nil {
		WriteJSON(w, E(InvalidRequest, "pushed authorization requests not enabled"))
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

	ap := parseAuthorizationParams(params)
	if ap.RedirectURI == "" || !containsString(client.RedirectURIs(), ap.RedirectURI) || !validRedirectURI(ap.RedirectURI) {
		WriteJSON(w, E(InvalidRequest, "invalid redirect_uri"))
		return
	}

	delete(params, "client_secret")

	par, err := s.storage.StoreAuthorizationRequest(r.Context(), PushedAuthorizationRequestParams{
		ClientID: client.ID(),
		Params:   params,
		TTL:      s.cfg.pushedAuthorizationRequests.TTL,
	})
	if err != nil {
		WriteJSON(w, AsError(err))
		return
	}

	resp := struct {
		RequestURI string `json:"request_uri"`
		ExpiresIn  int    `json:"expires_in"`
	}{
		RequestURI: parRequestURNPrefix + par.ID(),
		ExpiresIn:  int(s.cfg.pushedAuthorizationRequests.TTL.Seconds()),
	}

	writeJSONBody(w, http.StatusCreated, resp)
}
