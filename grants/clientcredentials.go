package grants

import (
	"context"

	oauth "github.com/vellumauth/core"
	"github.com/vellumauth/core/grant"
)

// ClientCredentialsGrantType is the grant_type identifier for RFC 6749
// §4.4 machine-to-machine exchanges.
const ClientCredentialsGrantType = "client_credentials"

type clientCredentialsValidated struct {
	scope oauth.Scope
}

// ClientCredentials builds the grant answering
// grant_type=client_credentials. Eligibility (the spec.md §9 Open
// Question) is resolved as: the client must have a secret AND must carry
// no registered redirect URIs — a pure machine client, disjoint from the
// authorization-code client population. Client authentication itself
// (verifying the secret) already happened in the token endpoint's
// authenticateClient step before Validate is ever called.
func ClientCredentials(opts oauth.ClientCredentialsOptions) oauth.Grant {
	return grant.New(ClientCredentialsGrantType, opts, validateClientCredentials, handleClientCredentials)
}

func validateClientCredentials(_ context.Context, params oauth.Values, client oauth.Client, _ *oauth.Server, _ oauth.ClientCredentialsOptions) (any, error) {
	if client.SecretHash() == nil || len(client.RedirectURIs()) > 0 {
		return nil, oauth.E(oauth.UnauthorizedClient, "client is not eligible for the client_credentials grant")
	}

	scope, err := oauth.ResolveScope(oauth.ParseScope(params["scope"]), client, true)
	if err != nil {
		return nil, err
	}

	return &clientCredentialsValidated{scope: scope}, nil
}

func handleClientCredentials(_ context.Context, validated any, _ oauth.Client, _ *oauth.Server, opts oauth.ClientCredentialsOptions) (*oauth.Issuance, error) {
	v := validated.(*clientCredentialsValidated)

	issuance := &oauth.Issuance{
		Scope: v.scope,
	}
	if opts.IssueRefreshToken {
		issuance.RefreshToken = &oauth.TokenSpec{}
	}

	return issuance, nil
}
