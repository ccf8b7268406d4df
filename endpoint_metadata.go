package oauth

import (
	"net/http"
	"sort"
)

// ServerMetadata is the RFC 8414 authorization server metadata document.
// Fields for disabled features are omitted entirely rather than emitted
// empty, so a client can detect support purely from field presence.
type ServerMetadata struct {
	Issuer                                     string   `json:"issuer"`
	AuthorizationEndpoint                      string   `json:"authorization_endpoint,omitempty"`
	TokenEndpoint                               string   `json:"token_endpoint"`
	DeviceAuthorizationEndpoint                string   `json:"device_authorization_endpoint,omitempty"`
	RevocationEndpoint                          string   `json:"revocation_endpoint,omitempty"`
	IntrospectionEndpoint                       string   `json:"introspection_endpoint,omitempty"`
	UserinfoEndpoint                            string   `json:"userinfo_endpoint,omitempty"`
	RegistrationEndpoint                        string   `json:"registration_endpoint,omitempty"`
	PushedAuthorizationRequestEndpoint          string   `json:"pushed_authorization_request_endpoint,omitempty"`
	RequirePushedAuthorizationRequests          bool     `json:"require_pushed_authorization_requests,omitempty"`
	ResponseTypesSupported                      []string `json:"response_types_supported,omitempty"`
	ResponseModesSupported                      []string `json:"response_modes_supported,omitempty"`
	GrantTypesSupported                         []string `json:"grant_types_supported,omitempty"`
	CodeChallengeMethodsSupported                []string `json:"code_challenge_methods_supported,omitempty"`
	TokenEndpointAuthMethodsSupported            []string `json:"token_endpoint_auth_methods_supported,omitempty"`
	RevocationEndpointAuthMethodsSupported       []string `json:"revocation_endpoint_auth_methods_supported,omitempty"`
	IntrospectionEndpointAuthMethodsSupported    []string `json:"introspection_endpoint_auth_methods_supported,omitempty"`
	// AuthorizationResponseIssParameterSupported is always true: the
	// authorization endpoint unconditionally sets iss on every redirect
	// (RFC 9207).
	AuthorizationResponseIssParameterSupported bool `json:"authorization_response_iss_parameter_supported"`
}

// Metadata builds the server's current metadata document from its resolved
// configuration and registered grants.
func (s *Server) Metadata() ServerMetadata {
	grantTypes := make([]string, 0, len(s.grants))
	for gt := range s.grants {
		grantTypes = append(grantTypes, gt)
	}
	sort.Strings(grantTypes)

	m := ServerMetadata{
		Issuer:                            s.cfg.issuer,
		TokenEndpoint:                     s.cfg.baseURI + "token",
		GrantTypesSupported:               grantTypes,
		TokenEndpointAuthMethodsSupported: s.cfg.token.AuthMethodsSupported,
		AuthorizationResponseIssParameterSupported: true,
	}

	if ac := s.cfg.authorizationCode; ac != nil {
		m.AuthorizationEndpoint = s.cfg.baseURI + "authorize"
		m.ResponseTypesSupported = ac.ResponseTypesSupported
		m.ResponseModesSupported = ac.ResponseModesSupported
		m.CodeChallengeMethodsSupported = ac.CodeChallengeMethodsSupported
	}
	if s.cfg.deviceCode != nil {
		m.DeviceAuthorizationEndpoint = s.cfg.baseURI + "device"
	}
	if s.cfg.tokenRevocation != nil {
		m.RevocationEndpoint = s.cfg.baseURI + "token/revoke"
		m.RevocationEndpointAuthMethodsSupported = s.cfg.token.AuthMethodsSupported
	}
	if s.cfg.tokenIntrospection != nil {
		m.IntrospectionEndpoint = s.cfg.baseURI + "tokeninfo"
		m.IntrospectionEndpointAuthMethodsSupported = s.cfg.token.AuthMethodsSupported
	}
	if s.cfg.userInfo != nil {
		m.UserinfoEndpoint = s.cfg.baseURI + "userinfo"
	}
	if s.cfg.clientRegistration != nil {
		m.RegistrationEndpoint = s.cfg.baseURI + "register"
	}
	if par := s.cfg.pushedAuthorizationRequests; par != nil {
		m.PushedAuthorizationRequestEndpoint = s.cfg.baseURI + "par"
		m.RequirePushedAuthorizationRequests = par.Required
	}

	return m
}

// MetadataEndpoint serves the metadata document, meant to be mounted at
// /.well-known/oauth-authorization-server.
func (s *Server) MetadataEndpoint(w http.ResponseWriter, r *http.Request) {
	writeJSONBody(w, http.StatusOK, s.Metadata())
}
