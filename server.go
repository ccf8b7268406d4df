package oauth

import (
	"net/http"
	"strings"
)

// Server is the Authorization Server orchestrator: immutable configuration
// plus the set of enabled grant handlers, built once by New and never
// mutated afterwards. It owns no persistent state of its own; Storage is
// its only stateful collaborator, matching spec.md §5's request-scoped,
// stateless concurrency model.
type Server struct {
	cfg     resolved
	grants  map[string]Grant
	storage Storage
}

// New builds a Server from cfg, registering a handler for each grant in
// grants whose family cfg enables. A grant whose family is disabled (its
// Config field left nil) is silently dropped rather than registered: the
// token endpoint then answers its grant_type with unsupported_grant_type,
// regardless of whether a caller still constructed and passed its handler.
// It panics on missing Issuer or Storage, mirroring the teacher's
// NewAuthenticator construction-time sanity checks (there: secret length;
// here: the two values every endpoint needs to function at all).
func New(cfg Config, grants ...Grant) *Server {
	if cfg.Issuer == "" {
		panic("oauth: missing issuer")
	}
	if cfg.Storage == nil {
		panic("oauth: missing storage")
	}

	rc := resolveConfig(cfg)
	srv := &Server{
		cfg:     rc,
		storage: cfg.Storage,
		grants:  make(map[string]Grant, len(grants)),
	}
	for _, g := range grants {
		if !rc.grantEnabled(g.Type()) {
			continue
		}
		srv.grants[g.Type()] = g
	}

	return srv
}

// Storage returns the persistence adapter the server was constructed with.
func (s *Server) Storage() Storage { return s.storage }

// Issuer returns the configured issuer URL.
func (s *Server) Issuer() string { return s.cfg.issuer }

// Endpoint returns a single http.Handler that dispatches every OAuth
// surface by path segment under prefix, mirroring
// flame.Authenticator.Endpoint's strings.Split-based routing: the core
// stays framework-agnostic, so this is the thinnest possible net/http
// adapter rather than a dependency on any router package.
func (s *Server) Endpoint(prefix string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		trimmed := strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
		segs := strings.Split(trimmed, "/")

		switch segs[0] {
		case "token":
			if len(segs) == 2 && segs[1] == "revoke" {
				s.RevocationEndpoint(w, r)
				return
			}
			s.TokenEndpoint(w, r)
		case "authorize":
			s.AuthorizeEndpoint(w, r)
		case "par":
			s.PAREndpoint(w, r)
		case "device":
			s.DeviceAuthorizationEndpoint(w, r)
		case "tokeninfo":
			s.IntrospectionEndpoint(w, r)
		case "userinfo":
			s.UserInfoEndpoint(w, r)
		case "register":
			s.ClientRegistrationEndpoint(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// WellKnownHandler serves the RFC 8414 metadata document, meant to be
// mounted at /.well-known/oauth-authorization-server.
func (s *Server) WellKnownHandler() http.Handler {
	return http.HandlerFunc(s.MetadataEndpoint)
}
