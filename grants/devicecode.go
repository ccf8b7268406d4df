package grants

import (
	"context"

	oauth "github.com/vellumauth/core"
	"github.com/vellumauth/core/grant"
)

// DeviceCodeGrantType is the grant_type identifier for RFC 8628 device flow
// exchanges.
const DeviceCodeGrantType = "urn:ietf:params:oauth:grant-type:device_code"

type deviceCodeValidated struct {
	challenge oauth.DeviceChallenge
}

// DeviceCode builds the grant answering
// grant_type=urn:ietf:params:oauth:grant-type:device_code (RFC 8628 §3.4).
// Storage.PollDeviceChallenge is the single atomic callback that both
// checks and bumps the challenge's poll bookkeeping, returning a SlowDown
// *oauth.Error directly when the caller polled too fast — this grant just
// propagates whatever it returns.
func DeviceCode(opts oauth.DeviceCodeOptions) oauth.Grant {
	return grant.New(DeviceCodeGrantType, opts, validateDeviceCode, handleDeviceCode)
}

func validateDeviceCode(ctx context.Context, params oauth.Values, client oauth.Client, srv *oauth.Server, opts oauth.DeviceCodeOptions) (any, error) {
	deviceCode := params["device_code"]
	if deviceCode == "" {
		return nil, oauth.E(oauth.InvalidRequest, "missing device_code")
	}

	challenge, err := srv.Storage().PollDeviceChallenge(ctx, deviceCode, opts.DevicePollingInterval)
	if err != nil {
		return nil, err
	}
	if challenge == nil {
		return nil, oauth.E(oauth.InvalidGrant, "unknown device_code")
	}
	if challenge.ClientID() != client.ID() {
		return nil, oauth.E(oauth.InvalidGrant, "device code issued to a different client")
	}
	if challenge.UsedAt() != nil {
		return nil, oauth.E(oauth.InvalidGrant, "device code already exchanged")
	}
	if !challenge.ExpiresAt().After(oauth.NowFunc()) {
		return nil, oauth.E(oauth.ExpiredToken, "device code expired")
	}

	switch {
	case challenge.Approved() == nil:
		return nil, oauth.E(oauth.AuthorizationPending, "authorization pending")
	case !*challenge.Approved():
		return nil, oauth.E(oauth.AccessDenied, "user denied the request")
	}

	return &deviceCodeValidated{challenge: challenge}, nil
}

func handleDeviceCode(_ context.Context, validated any, _ oauth.Client, _ *oauth.Server, _ oauth.DeviceCodeOptions) (*oauth.Issuance, error) {
	v := validated.(*deviceCodeValidated)
	return &oauth.Issuance{
		Scope: v.challenge.Scope(),
		AccessToken: &oauth.TokenSpec{
			// Names the device code so Storage.IssueTokens can mark the
			// challenge used atomically with minting the access token,
			// preventing a second poll from succeeding.
			Exchange: v.challenge.DeviceCode(),
		},
	}, nil
}
