package oauth

import "net/http"

// UserInfoEndpoint implements the OpenID Connect UserInfo endpoint: a
// bearer-authenticated request scoped to "openid" returns whatever claims
// Storage.LoadUserInfo supplies for the token's subject, plus the
// mandatory "sub" claim.
func (s *Server) UserInfoEndpoint(w http.ResponseWriter, r *http.Request) {
	if s.cfg.userInfo == nil {
		WriteJSON(w, E(InvalidRequest, "userinfo not enabled"))
		return
	}

	token, berr := s.CheckAuthorization(r, Scope{"openid"})
	if berr != nil {
		berr.WriteHeader(w)
		return
	}

	claims, err := s.storage.LoadUserInfo(r.Context(), token.Subject(), token.Scope())
	if err != nil {
		WriteJSON(w, AsError(err))
		return
	}
	if claims == nil {
		claims = make(map[string]any, 1)
	}
	claims["sub"] = token.Subject()

	writeJSONBody(w, http.StatusOK, claims)
}
