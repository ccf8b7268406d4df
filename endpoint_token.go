package oauth

import (
	"context"
	"net/http"

	"github.com/vellumauth/core/idtoken"
)

// tokenResponse is the RFC 6749 §5.1 access token response shape, extended
// with the OIDC id_token member.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	IDToken      string `json:"id_token,omitempty"`
	Scope        string `json:"scope,omitempty"`
}

// TokenEndpoint implements the RFC 6749 §3.2 token endpoint: parse, resolve
// and authenticate the client, dispatch to the matching Grant, let it
// validate and handle the request, decide ancillary token issuance, mint
// everything through a single Storage.IssueTokens call, and shape the
// response. Every grant shares this exact pipeline; only Validate/Handle
// differ.
func (s *Server) TokenEndpoint(w http.ResponseWriter, r *http.Request) {
	params, err := ParseBody(r)
	if err != nil {
		WriteJSON(w, AsError(err))
		return
	}

	grantType := params["grant_type"]

	client, err := s.authenticateClient(r, params, grantType)
	if err != nil {
		WriteJSON(w, AsError(err))
		return
	}

	if grantType == "" {
		WriteJSON(w, E(InvalidRequest, "missing grant_type"))
		return
	}

	g, ok := s.grants[grantType]
	if !ok {
		WriteJSON(w, E(UnsupportedGrantType, "grant type not supported"))
		return
	}
	if !containsString(client.AllowedGrantTypes(), grantType) {
		WriteJSON(w, E(UnauthorizedClient, "client is not allowed to use this grant type"))
		return
	}

	ctx := r.Context()

	validated, err := g.Validate(ctx, params, client, s)
	if err != nil {
		WriteJSON(w, AsError(err))
		return
	}

	issuance, err := g.Handle(ctx, validated, client, s)
	if err != nil {
		WriteJSON(w, AsError(err))
		return
	}
	issuance.ClientID = client.ID()

	s.decideAncillaryIssuance(issuance, grantType)

	tokens, err := s.storage.IssueTokens(ctx, issuance)
	if err != nil {
		WriteJSON(w, AsError(err))
		return
	}

	if issuance.IDToken != nil {
		signed, err := s.signIDToken(ctx, issuance)
		if err != nil {
			WriteJSON(w, AsError(err))
			return
		}
		tokens.IDToken = signed
	}

	writeTokenResponse(w, tokens, issuance.Scope)
}

// signIDToken builds and signs the OIDC ID token for issuance, using
// whatever key material Storage.SigningKey supplies. The core owns this
// step rather than the adapter, since only the core knows the issuer URL
// an ID token must assert.
func (s *Server) signIDToken(ctx context.Context, issuance *Issuance) (string, error) {
	material, kid, err := s.storage.SigningKey(ctx)
	if err != nil {
		return "", err
	}

	now := NowFunc()
	claims := idtoken.Claims(
		s.cfg.issuer,
		issuance.Subject,
		issuance.ClientID,
		now,
		now.Add(issuance.IDToken.TTL),
		issuance.IDToken.Claims,
	)

	signed, err := idtoken.Sign(claims, idtoken.Key{Material: material, Kid: kid})
	if err != nil {
		return "", E(ServerError, "failed to sign id_token")
	}
	return signed, nil
}

// decideAncillaryIssuance fills in the TTL/Scope a grant left unset on its
// issuance and decides whether a refresh token or ID token accompanies the
// access token. A grant that already attached a RefreshToken (client
// credentials with IssueRefreshToken, or a rotating refresh exchange) is
// respected as-is, just defaulted rather than replaced.
func (s *Server) decideAncillaryIssuance(issuance *Issuance, grantType string) {
	if issuance.AccessToken == nil {
		issuance.AccessToken = &TokenSpec{}
	}
	if issuance.AccessToken.TTL == 0 {
		issuance.AccessToken.TTL = s.cfg.accessTokenTTL
	}
	if issuance.AccessToken.Scope == nil {
		issuance.AccessToken.Scope = issuance.Scope
	}

	if issuance.RefreshToken == nil && issuance.Subject != "" &&
		issuance.Scope.Contains("offline_access") && s.cfg.refreshToken != nil {
		if _, ok := s.grants["refresh_token"]; ok {
			issuance.RefreshToken = &TokenSpec{}
		}
	}
	if issuance.RefreshToken != nil {
		if issuance.RefreshToken.TTL == 0 {
			issuance.RefreshToken.TTL = s.cfg.refreshTokenTTL
		}
		if issuance.RefreshToken.Scope == nil {
			issuance.RefreshToken.Scope = issuance.Scope
		}
	}

	if issuance.IDToken == nil && issuance.Subject != "" && issuance.Scope.Contains("openid") {
		issuance.IDToken = &TokenSpec{}
	}
	if issuance.IDToken != nil && issuance.IDToken.TTL == 0 {
		issuance.IDToken.TTL = s.cfg.idTokenTTL
	}
}

func writeTokenResponse(w http.ResponseWriter, tokens *IssuedTokens, scope Scope) {
	resp := tokenResponse{
		AccessToken:  tokens.AccessToken,
		TokenType:    "Bearer",
		ExpiresIn:    tokens.ExpiresIn,
		RefreshToken: tokens.RefreshToken,
		IDToken:      tokens.IDToken,
		Scope:        scope.String(),
	}

	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	writeJSONBody(w, http.StatusOK, resp)
}
