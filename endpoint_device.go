package oauth

import (
	"net/http"
	"net/url"
)

// deviceCodeGrantType mirrors grants.DeviceCodeGrantType's value. Duplicated
// as a literal rather than imported to keep package oauth free of a
// dependency on its own grants subpackage.
const deviceCodeGrantType = "urn:ietf:params:oauth:grant-type:device_code"

// DeviceAuthorizationEndpoint implements the RFC 8628 §3.1 device
// authorization endpoint: a device with no browser registers itself and
// receives a device_code/user_code pair plus a verification URI for the
// user to visit on a second screen.
func (s *Server) DeviceAuthorizationEndpoint(w http.ResponseWriter, r *http.Request) {
	if s.cfg.deviceCode == nil {
		WriteJSON(w, E(InvalidRequest, "device authorization grant not enabled"))
		return
	}

	params, err := ParseBody(r)
	if err != nil {
		WriteJSON(w, AsError(err))
		return
	}

	client, err := s.authenticateClient(r, params, "")
	if err != nil {
		WriteJSON(w, AsError(err))
		return
	}
	if !containsString(client.AllowedGrantTypes(), deviceCodeGrantType) {
		WriteJSON(w, E(UnauthorizedClient, "client is not allowed to use the device code grant"))
		return
	}

	scope, err := ResolveScope(ParseScope(params["scope"]), client, true)
	if err != nil {
		WriteJSON(w, AsError(err))
		return
	}

	challenge, err := s.storage.StoreDeviceChallenge(r.Context(), DeviceChallengeParams{
		ClientID:     client.ID(),
		Scope:        scope,
		TTL:          s.cfg.deviceCode.TTL,
		PollInterval: s.cfg.deviceCode.DevicePollingInterval,
	})
	if err != nil {
		WriteJSON(w, AsError(err))
		return
	}

	verificationURI := s.cfg.baseURI + "device"
	resp := struct {
		DeviceCode              string `json:"device_code"`
		UserCode                string `json:"user_code"`
		VerificationURI         string `json:"verification_uri"`
		VerificationURIComplete string `json:"verification_uri_complete"`
		ExpiresIn               int    `json:"expires_in"`
		Interval                int    `json:"interval"`
	}{
		DeviceCode:              challenge.DeviceCode(),
		UserCode:                challenge.UserCode(),
		VerificationURI:         verificationURI,
		VerificationURIComplete: appendQuery(verificationURI, url.Values{"user_code": {challenge.UserCode()}}),
		ExpiresIn:               int(s.cfg.deviceCode.TTL.Seconds()),
		Interval:                int(s.cfg.deviceCode.DevicePollingInterval.Seconds()),
	}

	writeJSONBody(w, http.StatusOK, resp)
}
