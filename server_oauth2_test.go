package oauth_test

import (
	"net/http"
	"testing"

	oauth2 "github.com/256dpi/oauth2/v2"
	"github.com/256dpi/serve"
	"github.com/stretchr/testify/require"

	oauth "github.com/vellumauth/core"
)

// This exercises the ecosystem's oauth2 client library against the server's
// own token endpoint, the same serve.Local-as-RoundTripper harness the
// teacher's own test tooling uses to talk to itself without a real socket.
func TestOAuth2ClientAgainstUnsupportedGrant(t *testing.T) {
	srv, _ := newIntegrationServer(t, oauth.Config{
		ClientCredentials: &oauth.ClientCredentialsOptions{},
	})

	httpClient := &http.Client{Transport: serve.Local(srv.Endpoint("/oauth/"))}

	authClient := oauth2.NewClientWithClient(oauth2.ClientConfig{
		BaseURI:       "/oauth",
		TokenEndpoint: "/token",
	}, httpClient)

	_, err := authClient.Authenticate(oauth2.TokenRequest{
		GrantType: oauth2.PasswordGrantType,
		Scope:     []string{"profile"},
		ClientID:  "service-1",
		Username:  "someone",
		Password:  "whatever",
	})
	require.Error(t, err)
}
