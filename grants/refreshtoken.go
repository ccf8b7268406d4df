package grants

import (
	"context"

	oauth "github.com/vellumauth/core"
	"github.com/vellumauth/core/grant"
)

// RefreshTokenGrantType is the grant_type identifier for RFC 6749 §6
// refresh exchanges.
const RefreshTokenGrantType = "refresh_token"

type refreshTokenValidated struct {
	token   oauth.RefreshToken
	scope   oauth.Scope
	subject string
}

// RefreshToken builds the grant answering grant_type=refresh_token. A
// successful exchange always rotates: Handle sets
// Issuance.RefreshToken.Exchange to the old token's value so
// Storage.IssueTokens revokes it atomically with minting the replacement.
func RefreshToken(opts oauth.RefreshTokenOptions) oauth.Grant {
	return grant.New(RefreshTokenGrantType, opts, validateRefreshToken, handleRefreshToken)
}

func validateRefreshToken(ctx context.Context, params oauth.Values, client oauth.Client, srv *oauth.Server, _ oauth.RefreshTokenOptions) (any, error) {
	value := params["refresh_token"]
	if value == "" {
		return nil, oauth.E(oauth.InvalidRequest, "missing refresh_token")
	}

	token, err := srv.Storage().LoadRefreshToken(ctx, value)
	if err != nil {
		return nil, err
	}
	if token == nil || token.Revoked() {
		return nil, oauth.E(oauth.InvalidGrant, "unknown refresh token")
	}
	if !token.ExpiresAt().After(oauth.NowFunc()) {
		return nil, oauth.E(oauth.InvalidGrant, "expired refresh token")
	}
	if token.ClientID() != client.ID() {
		return nil, oauth.E(oauth.InvalidClient, "refresh token was issued to a different client")
	}

	scope := token.Scope()
	if requested := oauth.ParseScope(params["scope"]); !requested.Empty() {
		if !token.Scope().Includes(requested) {
			return nil, oauth.E(oauth.InvalidScope, "scope exceeds the originally granted scope")
		}
		scope = requested
	}

	return &refreshTokenValidated{token: token, scope: scope, subject: token.Subject()}, nil
}

func handleRefreshToken(_ context.Context, validated any, _ oauth.Client, _ *oauth.Server, _ oauth.RefreshTokenOptions) (*oauth.Issuance, error) {
	v := validated.(*refreshTokenValidated)
	return &oauth.Issuance{
		Scope:   v.scope,
		Subject: v.subject,
		RefreshToken: &oauth.TokenSpec{
			Exchange: v.token.Value(),
			Scope:    v.scope,
		},
	}, nil
}
