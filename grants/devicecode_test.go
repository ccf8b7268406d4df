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

func TestDeviceCodeGrantAuthorizationPending(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	srv := newTestServer(t, store, oauth.Config{DeviceCode: &oauth.DeviceCodeOptions{DevicePollingInterval: 5 * time.Second}})

	store.AddClient("device-client", nil, []string{grants.DeviceCodeGrantType}, nil, nil)
	client, _ := store.LoadClient(ctx, "device-client")

	challenge, err := store.StoreDeviceChallenge(ctx, oauth.DeviceChallengeParams{
		ClientID: "device-client", TTL: time.Minute, PollInterval: 5 * time.Second,
	})
	require.NoError(t, err)

	g := grants.DeviceCode(oauth.DeviceCodeOptions{DevicePollingInterval: 5 * time.Second})
	_, err = g.Validate(ctx, oauth.Values{"device_code": challenge.DeviceCode()}, client, srv)
	require.Error(t, err)
	assert.Equal(t, oauth.AuthorizationPending, oauth.AsError(err).Code)
}

func TestDeviceCodeGrantSlowDown(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	srv := newTestServer(t, store, oauth.Config{DeviceCode: &oauth.DeviceCodeOptions{DevicePollingInterval: time.Minute}})

	store.AddClient("device-client", nil, []string{grants.DeviceCodeGrantType}, nil, nil)
	client, _ := store.LoadClient(ctx, "device-client")

	challenge, err := store.StoreDeviceChallenge(ctx, oauth.DeviceChallengeParams{
		ClientID: "device-client", TTL: time.Minute, PollInterval: time.Minute,
	})
	require.NoError(t, err)

	g := grants.DeviceCode(oauth.DeviceCodeOptions{DevicePollingInterval: time.Minute})
	params := oauth.Values{"device_code": challenge.DeviceCode()}

	_, err = g.Validate(ctx, params, client, srv)
	require.Error(t, err)
	assert.Equal(t, oauth.AuthorizationPending, oauth.AsError(err).Code)

	_, err = g.Validate(ctx, params, client, srv)
	require.Error(t, err)
	assert.Equal(t, oauth.SlowDown, oauth.AsError(err).Code)
}

func TestDeviceCodeGrantApprovedSucceeds(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	srv := newTestServer(t, store, oauth.Config{DeviceCode: &oauth.DeviceCodeOptions{DevicePollingInterval: 5 * time.Second}})

	store.AddClient("device-client", nil, []string{grants.DeviceCodeGrantType}, nil, nil)
	client, _ := store.LoadClient(ctx, "device-client")

	challenge, err := store.StoreDeviceChallenge(ctx, oauth.DeviceChallengeParams{
		ClientID: "device-client", Scope: oauth.Scope{"profile"}, TTL: time.Minute, PollInterval: 5 * time.Second,
	})
	require.NoError(t, err)
	require.True(t, store.ApproveDevice(challenge.UserCode(), true))

	g := grants.DeviceCode(oauth.DeviceCodeOptions{DevicePollingInterval: 5 * time.Second})
	validated, err := g.Validate(ctx, oauth.Values{"device_code": challenge.DeviceCode()}, client, srv)
	require.NoError(t, err)

	issuance, err := g.Handle(ctx, validated, client, srv)
	require.NoError(t, err)
	assert.True(t, issuance.Scope.Contains("profile"))
	assert.Equal(t, challenge.DeviceCode(), issuance.AccessToken.Exchange)
}

func TestDeviceCodeGrantDenied(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	srv := newTestServer(t, store, oauth.Config{DeviceCode: &oauth.DeviceCodeOptions{DevicePollingInterval: 5 * time.Second}})

	store.AddClient("device-client", nil, []string{grants.DeviceCodeGrantType}, nil, nil)
	client, _ := store.LoadClient(ctx, "device-client")

	challenge, err := store.StoreDeviceChallenge(ctx, oauth.DeviceChallengeParams{
		ClientID: "device-client", TTL: time.Minute, PollInterval: 5 * time.Second,
	})
	require.NoError(t, err)
	require.True(t, store.ApproveDevice(challenge.UserCode(), false))

	g := grants.DeviceCode(oauth.DeviceCodeOptions{DevicePollingInterval: 5 * time.Second})
	_, err = g.Validate(ctx, oauth.Values{"device_code": challenge.DeviceCode()}, client, srv)
	require.Error(t, err)
	assert.Equal(t, oauth.AccessDenied, oauth.AsError(err).Code)
}
