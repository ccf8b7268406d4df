package oauth

import (
	"net/http"
	"net/url"
	"strings"
)

const parRequestURNPrefix = "urn:ietf:params:oauth:request_uri:"

func parRequestID(ref string) (string, bool) {
	if !strings.HasPrefix(ref, parRequestURNPrefix) {
		return "", false
	}
	id := strings.TrimPrefix(ref, parRequestURNPrefix)
	return id, id != ""
}

// AuthorizeEndpoint implements the RFC 6749 §3.1 authorization endpoint for
// the authorization code flow (response_type=code only; OAuth 2.1 drops
// the implicit grant). Errors discovered before the redirect_uri has been
// validated against the client's registry are reported directly as JSON
// (never as a redirect) to avoid becoming an open redirect; once
// redirect_uri is validated, every subsequent error is delivered back to
// the client via redirErr.
func (s *Server) AuthorizeEndpoint(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		WriteJSON(w, E(InvalidRequest, "malformed request"))
		return
	}
	params, err := flattenForm(r.Form)
	if err != nil {
		WriteJSON(w, AsError(err))
		return
	}

	if s.cfg.authorizationCode == nil {
		WriteJSON(w, E(UnsupportedResponseType, "authorization code grant not enabled"))
		return
	}

	ctx := r.Context()

	if ref := params["request_uri"]; ref != "" {
		id, ok := parRequestID(ref)
		if !ok {
			WriteJSON(w, E(InvalidRequest, "invalid request_uri"))
			return
		}
		par, err := s.storage.LoadAuthorizationRequest(ctx, id)
		if err != nil {
			WriteJSON(w, AsError(err))
			return
		}
		if par == nil || par.UsedAt() != nil || !par.ExpiresAt().After(NowFunc()) {
			WriteJSON(w, E(InvalidRequest, "unknown or expired request_uri"))
			return
		}
		if clientID := params["client_id"]; clientID != "" && clientID != par.ClientID() {
			WriteJSON(w, E(InvalidRequest, "client_id does not match the pushed request"))
			return
		}

		merged := make(Values, len(par.Params())+1)
		for k, v := range par.Params() {
			merged[k] = v
		}
		merged["client_id"] = par.ClientID()
		params = merged
	} else if s.cfg.pushedAuthorizationRequests != nil && s.cfg.pushedAuthorizationRequests.Required {
		WriteJSON(w, E(InvalidRequest, "pushed authorization request required"))
		return
	}

	ap := parseAuthorizationParams(params)

	client, err := ResolveClient(ctx, s.storage, ap.ClientID)
	if err != nil {
		WriteJSON(w, AsError(err))
		return
	}
	if ap.RedirectURI == "" || !containsString(client.RedirectURIs(), ap.RedirectURI) || !validRedirectURI(ap.RedirectURI) {
		WriteJSON(w, E(InvalidRequest, "invalid redirect_uri"))
		return
	}

	redirErr := func(code Code, description string) *Error {
		return &Error{
			Code:        code,
			Description: description,
			RedirectURI: ap.RedirectURI,
			State:       ap.State,
			Issuer:      s.cfg.issuer,
			UseRedirect: true,
		}
	}

	if ap.ResponseType != "code" || !containsString(s.cfg.authorizationCode.ResponseTypesSupported, ap.ResponseType) {
		WriteRedirect(w, r, redirErr(UnsupportedResponseType, "only the code response type is supported"))
		return
	}

	scope, err := ResolveScope(ap.Scope, client, true)
	if err != nil {
		e := AsError(err)
		WriteRedirect(w, r, redirErr(e.Code, e.Description))
		return
	}

	if ap.CodeChallenge == "" {
		WriteRedirect(w, r, redirErr(InvalidRequest, "missing code_challenge"))
		return
	}
	method := ap.CodeChallengeMethod
	if method == "" {
		method = "plain"
	}
	if !containsString(s.cfg.authorizationCode.CodeChallengeMethodsSupported, method) {
		WriteRedirect(w, r, redirErr(InvalidRequest, "unsupported code_challenge_method"))
		return
	}

	subject := subjectFromContext(ctx)
	if subject == "" {
		WriteRedirect(w, r, redirErr(AccessDenied, "no authenticated subject"))
		return
	}

	code, err := s.storage.StoreAuthorizationCode(ctx, AuthorizationCodeParams{
		ClientID:            client.ID(),
		Subject:             subject,
		RedirectURI:         ap.RedirectURI,
		Scope:               scope,
		TTL:                 s.cfg.authorizationCode.TTL,
		CodeChallenge:       ap.CodeChallenge,
		CodeChallengeMethod: method,
	})
	if err != nil {
		WriteRedirect(w, r, redirErr(ServerError, "failed to store authorization code"))
		return
	}

	q := url.Values{}
	q.Set("code", code.Code())
	if ap.State != "" {
		q.Set("state", ap.State)
	}
	q.Set("iss", s.cfg.issuer)
	http.Redirect(w, r, appendQuery(ap.RedirectURI, q), http.StatusFound)
}
