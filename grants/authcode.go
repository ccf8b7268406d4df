package grants

import (
	"context"

	oauth "github.com/vellumauth/core"
	"github.com/vellumauth/core/grant"
)

// AuthorizationCodeGrantType is the grant_type identifier for RFC 6749
// §4.1 exchanges (grant.go's Grant.Type value).
const AuthorizationCodeGrantType = "authorization_code"

type authCodeValidated struct {
	code oauth.AuthorizationCode
}

// AuthorizationCode builds the grant answering
// grant_type=authorization_code, including PKCE verification (RFC 7636).
// PAR binding (RFC 9126) is handled earlier, at the authorization endpoint
// that issues the code — by the time a code reaches this grant it already
// carries whatever challenge/redirect_uri/scope the original request
// (pushed or not) established.
func AuthorizationCode(opts oauth.AuthorizationCodeOptions) oauth.Grant {
	return grant.New(AuthorizationCodeGrantType, opts, validateAuthCode, handleAuthCode)
}

func validateAuthCode(ctx context.Context, params oauth.Values, client oauth.Client, srv *oauth.Server, _ oauth.AuthorizationCodeOptions) (any, error) {
	codeValue := params["code"]
	redirectURI := params["redirect_uri"]
	verifier := params["code_verifier"]

	if codeValue == "" {
		return nil, oauth.E(oauth.InvalidRequest, "missing code")
	}
	if redirectURI == "" {
		return nil, oauth.E(oauth.InvalidRequest, "missing redirect_uri")
	}

	code, err := srv.Storage().LoadAuthorizationCode(ctx, codeValue)
	if err != nil {
		return nil, err
	}
	if code == nil {
		return nil, oauth.E(oauth.InvalidGrant, "unknown code")
	}
	if code.UsedAt() != nil {
		return nil, oauth.E(oauth.InvalidGrant, "code already used")
	}
	if !code.ExpiresAt().After(oauth.NowFunc()) {
		return nil, oauth.E(oauth.InvalidGrant, "code expired")
	}
	if code.ClientID() != client.ID() {
		return nil, oauth.E(oauth.InvalidGrant, "code issued to a different client")
	}
	if code.RedirectURI() != redirectURI {
		return nil, oauth.E(oauth.InvalidGrant, "redirect_uri does not match the authorization request")
	}

	if code.CodeChallenge() != "" {
		if verifier == "" {
			return nil, oauth.E(oauth.InvalidRequest, "missing code_verifier")
		}
		method := code.CodeChallengeMethod()
		if method != "" && method != "plain" && method != "S256" {
			return nil, oauth.E(oauth.InvalidGrant, "unsupported code_challenge_method")
		}
		if !VerifyPKCE(method, code.CodeChallenge(), verifier) {
			return nil, oauth.E(oauth.InvalidGrant, "code_verifier does not match code_challenge")
		}
	}

	return &authCodeValidated{code: code}, nil
}

func handleAuthCode(_ context.Context, validated any, _ oauth.Client, _ *oauth.Server, _ oauth.AuthorizationCodeOptions) (*oauth.Issuance, error) {
	v := validated.(*authCodeValidated)
	return &oauth.Issuance{
		Scope:   v.code.Scope(),
		Subject: v.code.Subject(),
		AccessToken: &oauth.TokenSpec{
			// Names the code so Storage.IssueTokens can mark it used
			// atomically with minting the access token, preventing a
			// replayed exchange of the same code from succeeding.
			Exchange: v.code.Code(),
		},
	}, nil
}
