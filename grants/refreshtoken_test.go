package grants_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oauth "github.com/vellumauth/core"
	"github.com/vellumauth/core/grants"
	"github.com/vellumauth/core/memstore"
)

func issueRefreshToken(t *testing.T, ctx context.Context, store *memstore.Store, clientID, subject string, scope oauth.Scope) *oauth.IssuedTokens {
	t.Helper()
	tokens, err := store.IssueTokens(ctx, &oauth.Issuance{
		ClientID: clientID,
		Subject:  subject,
		Scope:    scope,
		AccessToken:  &oauth.TokenSpec{TTL: time.Hour, Scope: scope},
		RefreshToken: &oauth.TokenSpec{TTL: 7 * 24 * time.Hour, Scope: scope},
	})
	require.NoError(t, err)
	return tokens
}

func TestRefreshTokenGrantRotates(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	srv := newTestServer(t, store, oauth.Config{RefreshToken: &oauth.RefreshTokenOptions{}})

	store.AddClient("client-1", nil, []string{grants.RefreshTokenGrantType}, oauth.Scope{"profile", "email"}, nil)
	client, _ := store.LoadClient(ctx, "client-1")

	tokens := issueRefreshToken(t, ctx, store, "client-1", "user-1", oauth.Scope{"profile", "email"})

	g := grants.RefreshToken(oauth.RefreshTokenOptions{})
	validated, err := g.Validate(ctx, oauth.Values{"refresh_token": tokens.RefreshToken}, client, srv)
	require.NoError(t, err)

	issuance, err := g.Handle(ctx, validated, client, srv)
	require.NoError(t, err)
	assert.Equal(t, "user-1", issuance.Subject)
	require.NotNil(t, issuance.RefreshToken)
	assert.Equal(t, tokens.RefreshToken, issuance.RefreshToken.Exchange)
}

func TestRefreshTokenGrantNarrowsScope(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	srv := newTestServer(t, store, oauth.Config{RefreshToken: &oauth.RefreshTokenOptions{}})

	store.AddClient("client-1", nil, []string{grants.RefreshTokenGrantType}, oauth.Scope{"profile", "email"}, nil)
	client, _ := store.LoadClient(ctx, "client-1")

	tokens := issueRefreshToken(t, ctx, store, "client-1", "user-1", oauth.Scope{"profile", "email"})

	g := grants.RefreshToken(oauth.RefreshTokenOptions{})
	validated, err := g.Validate(ctx, oauth.Values{"refresh_token": tokens.RefreshToken, "scope": "profile"}, client, srv)
	require.NoError(t, err)

	issuance, err := g.Handle(ctx, validated, client, srv)
	require.NoError(t, err)
	assert.Equal(t, oauth.Scope{"profile"}, issuance.Scope)
}

func TestRefreshTokenGrantRejectsScopeEscalation(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	srv := newTestServer(t, store, oauth.Config{RefreshToken: &oauth.RefreshTokenOptions{}})

	store.AddClient("client-1", nil, []string{grants.RefreshTokenGrantType}, oauth.Scope{"profile"}, nil)
	client, _ := store.LoadClient(ctx, "client-1")

	tokens := issueRefreshToken(t, ctx, store, "client-1", "user-1", oauth.Scope{"profile"})

	g := grants.RefreshToken(oauth.RefreshTokenOptions{})
	_, err := g.Validate(ctx, oauth.Values{"refresh_token": tokens.RefreshToken, "scope": "profile admin"}, client, srv)
	require.Error(t, err)
	assert.Equal(t, oauth.InvalidScope, oauth.AsError(err).Code)
}

func TestRefreshTokenGrantRejectsWrongClient(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	srv := newTestServer(t, store, oauth.Config{RefreshToken: &oauth.RefreshTokenOptions{}})

	store.AddClient("client-1", nil, []string{grants.RefreshTokenGrantType}, oauth.Scope{"profile"}, nil)
	store.AddClient("client-2", nil, []string{grants.RefreshTokenGrantType}, oauth.Scope{"profile"}, nil)
	other, _ := store.LoadClient(ctx, "client-2")

	tokens := issueRefreshToken(t, ctx, store, "client-1", "user-1", oauth.Scope{"profile"})

	g := grants.RefreshToken(oauth.RefreshTokenOptions{})
	_, err := g.Validate(ctx, oauth.Values{"refresh_token": tokens.RefreshToken}, other, srv)
	require.Error(t, err)
	assert.Equal(t, oauth.InvalidClient, oauth.AsError(err).Code)
}
