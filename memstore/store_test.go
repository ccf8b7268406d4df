package memstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oauth "github.com/vellumauth/core"
	"github.com/vellumauth/core/memstore"
)

func TestIssueTokensRotatesRefreshToken(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()

	first, err := store.IssueTokens(ctx, &oauth.Issuance{
		ClientID: "client-1", Subject: "user-1",
		AccessToken:  &oauth.TokenSpec{TTL: time.Hour},
		RefreshToken: &oauth.TokenSpec{TTL: 24 * time.Hour},
	})
	require.NoError(t, err)
	require.NotEmpty(t, first.RefreshToken)

	second, err := store.IssueTokens(ctx, &oauth.Issuance{
		ClientID: "client-1", Subject: "user-1",
		AccessToken:  &oauth.TokenSpec{TTL: time.Hour},
		RefreshToken: &oauth.TokenSpec{TTL: 24 * time.Hour, Exchange: first.RefreshToken},
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	old, err := store.LoadRefreshToken(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.True(t, old.Revoked())
}

func TestIssueTokensConsumesDeviceChallenge(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()

	challenge, err := store.StoreDeviceChallenge(ctx, oauth.DeviceChallengeParams{
		ClientID: "device-client", TTL: time.Minute, PollInterval: time.Second,
	})
	require.NoError(t, err)

	_, err = store.IssueTokens(ctx, &oauth.Issuance{
		ClientID: "device-client",
		AccessToken: &oauth.TokenSpec{TTL: time.Hour, Exchange: challenge.DeviceCode()},
	})
	require.NoError(t, err)

	reloaded, err := store.LoadDeviceChallenge(ctx, challenge.DeviceCode())
	require.NoError(t, err)
	assert.NotNil(t, reloaded.UsedAt())
}

func TestIssueTokensRejectsAlreadyConsumedDeviceChallenge(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()

	challenge, err := store.StoreDeviceChallenge(ctx, oauth.DeviceChallengeParams{
		ClientID: "device-client", TTL: time.Minute, PollInterval: time.Second,
	})
	require.NoError(t, err)

	issuance := func() *oauth.Issuance {
		return &oauth.Issuance{
			ClientID:    "device-client",
			AccessToken: &oauth.TokenSpec{TTL: time.Hour, Exchange: challenge.DeviceCode()},
		}
	}

	_, err = store.IssueTokens(ctx, issuance())
	require.NoError(t, err)

	_, err = store.IssueTokens(ctx, issuance())
	require.Error(t, err)
	assert.Equal(t, oauth.InvalidGrant, oauth.AsError(err).Code)
}

func TestIssueTokensConsumesAndRejectsReplayedAuthorizationCode(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()

	code, err := store.StoreAuthorizationCode(ctx, oauth.AuthorizationCodeParams{
		ClientID: "client-1", Subject: "user-1", RedirectURI: "https://app.example/callback",
		TTL: time.Minute,
	})
	require.NoError(t, err)

	issuance := func() *oauth.Issuance {
		return &oauth.Issuance{
			ClientID:    "client-1",
			Subject:     "user-1",
			AccessToken: &oauth.TokenSpec{TTL: time.Hour, Exchange: code.Code()},
		}
	}

	_, err = store.IssueTokens(ctx, issuance())
	require.NoError(t, err)

	reloaded, err := store.LoadAuthorizationCode(ctx, code.Code())
	require.NoError(t, err)
	assert.NotNil(t, reloaded.UsedAt())

	_, err = store.IssueTokens(ctx, issuance())
	require.Error(t, err)
	assert.Equal(t, oauth.InvalidGrant, oauth.AsError(err).Code)
}

func TestLoadAuthorizationRequestConsumesOnFirstLoad(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()

	stored, err := store.StoreAuthorizationRequest(ctx, oauth.PushedAuthorizationRequestParams{
		ClientID: "client-1", Params: oauth.Values{"scope": "profile"}, TTL: time.Minute,
	})
	require.NoError(t, err)

	first, err := store.LoadAuthorizationRequest(ctx, stored.ID())
	require.NoError(t, err)
	assert.Nil(t, first.UsedAt())

	second, err := store.LoadAuthorizationRequest(ctx, stored.ID())
	require.NoError(t, err)
	assert.NotNil(t, second.UsedAt())
}

func TestPollDeviceChallengeSlowDown(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()

	challenge, err := store.StoreDeviceChallenge(ctx, oauth.DeviceChallengeParams{
		ClientID: "device-client", TTL: time.Minute, PollInterval: time.Minute,
	})
	require.NoError(t, err)

	_, err = store.PollDeviceChallenge(ctx, challenge.DeviceCode(), time.Minute)
	require.NoError(t, err)

	_, err = store.PollDeviceChallenge(ctx, challenge.DeviceCode(), time.Minute)
	require.Error(t, err)
	assert.Equal(t, oauth.SlowDown, oauth.AsError(err).Code)
}

func TestRegisterClientAssignsID(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()

	client, err := store.RegisterClient(ctx, &oauth.ClientRegistration{
		RedirectURIs: []string{"https://app.example/callback"},
		GrantTypes:   []string{"authorization_code"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, client.ID())
	assert.True(t, client.Active())
	assert.Equal(t, []string{"https://app.example/callback"}, client.RedirectURIs())
}

func TestSweepRemovesExpiredEntries(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()

	code, err := store.StoreAuthorizationCode(ctx, oauth.AuthorizationCodeParams{
		ClientID: "client-1", TTL: -time.Minute,
	})
	require.NoError(t, err)

	janitor := memstore.NewJanitor(store, 10*time.Millisecond)
	defer janitor.Stop()

	require.Eventually(t, func() bool {
		reloaded, err := store.LoadAuthorizationCode(ctx, code.Code())
		return err == nil && reloaded == nil
	}, time.Second, 10*time.Millisecond)
}
