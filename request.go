package oauth

import (
	"context"
	"encoding/json"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/256dpi/xo"
	"github.com/asaskevich/govalidator"
)

// NowFunc is the single time-offset seam used everywhere a request needs
// "now". Tests override it so expiry and device-polling-interval checks
// don't have to sleep in real time.
var NowFunc = time.Now

// Values is the flat, string-valued request payload every grant schema and
// request utility consumes, regardless of which content type it arrived in.
type Values map[string]string

// ParseBody accepts application/x-www-form-urlencoded, multipart/form-data,
// and application/json, and returns a flat key-value mapping. A parameter
// present with an empty value is treated as absent. A parameter repeated
// (form: same key twice, JSON: a non-scalar value) is rejected as
// invalid_request; unrecognized parameters are kept and left for callers to
// ignore.
func ParseBody(r *http.Request) (Values, error) {
	ct := r.Header.Get("Content-Type")
	mt, _, _ := mime.ParseMediaType(ct)

	switch mt {
	case "application/json":
		return parseJSONBody(r)
	case "multipart/form-data":
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return nil, E(InvalidRequest, "malformed multipart body")
		}
		return flattenForm(r.Form)
	default:
		if err := r.ParseForm(); err != nil {
			return nil, E(InvalidRequest, "malformed form body")
		}
		return flattenForm(r.Form)
	}
}

func flattenForm(form url.Values) (Values, error) {
	out := make(Values, len(form))
	for k, v := range form {
		if len(v) > 1 {
			return nil, E(InvalidRequest, "duplicated parameter: "+k)
		}
		if len(v) == 0 || v[0] == "" {
			continue
		}
		out[k] = v[0]
	}
	return out, nil
}

func parseJSONBody(r *http.Request) (Values, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return nil, E(InvalidRequest, "malformed json body")
	}

	out := make(Values, len(raw))
	for k, v := range raw {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			if s != "" {
				out[k] = s
			}
			continue
		}

		var f float64
		if err := json.Unmarshal(v, &f); err == nil {
			out[k] = strconv.FormatFloat(f, 'f', -1, 64)
			continue
		}

		var b bool
		if err := json.Unmarshal(v, &b); err == nil {
			out[k] = strconv.FormatBool(b)
			continue
		}

		return nil, E(InvalidRequest, "nested value not allowed for parameter: "+k)
	}
	return out, nil
}

// ResolveClient loads the client identified by id and rejects it with
// InvalidClient when missing, inactive, or revoked.
func ResolveClient(ctx context.Context, storage Storage, id string) (Client, error) {
	if id == "" {
		return nil, E(InvalidClient, "missing client_id")
	}
	client, err := storage.LoadClient(ctx, id)
	if err != nil {
		return nil, xo.W(err)
	}
	if client == nil || !client.Active() || client.Revoked() {
		return nil, E(InvalidClient, "unknown or inactive client")
	}
	return client, nil
}

// ResolveScope intersects requested with the client's allowed scopes. In
// strict mode any requested scope the client isn't allowed fails the whole
// request with InvalidScope; otherwise disallowed scopes are silently
// dropped, narrowing the grant.
func ResolveScope(requested Scope, client Client, strict bool) (Scope, error) {
	if requested.Empty() {
		return nil, nil
	}
	allowed := client.AllowedScopes()
	var out Scope
	for _, s := range requested {
		if allowed.Contains(s) {
			out = append(out, s)
		} else if strict {
			return nil, E(InvalidScope, "scope not allowed: "+s)
		}
	}
	return out, nil
}

// RequireBearer reads the Authorization: Bearer <token> header and resolves
// it to an access token. It rejects a missing header, wrong scheme, or an
// unknown/revoked/expired token with InvalidClient. No endpoint in this
// package calls it: introspection and revocation authenticate their caller
// with client credentials through authenticateClient, and protected
// resources use CheckAuthorization.
func RequireBearer(r *http.Request, ctx context.Context, storage Storage) (AccessToken, error) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return nil, E(InvalidClient, "missing authorization header")
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, E(InvalidClient, "invalid authorization scheme")
	}

	token, err := storage.LoadAccessToken(ctx, parts[1])
	if err != nil {
		return nil, xo.W(err)
	}
	if token == nil || token.Revoked() || !token.ExpiresAt().After(NowFunc()) {
		return nil, E(InvalidClient, "unknown or expired token")
	}
	return token, nil
}

// Scope is an ordered set of OAuth scope values.
type Scope []string

// ParseScope splits a space-delimited scope string per RFC 6749 §3.3.
func ParseScope(s string) Scope {
	if s == "" {
		return nil
	}
	return Scope(strings.Fields(s))
}

func (s Scope) String() string { return strings.Join(s, " ") }

func (s Scope) Contains(v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// Includes reports whether every scope in other is also in s.
func (s Scope) Includes(other Scope) bool {
	for _, o := range other {
		if !s.Contains(o) {
			return false
		}
	}
	return true
}

func (s Scope) Empty() bool { return len(s) == 0 }

// AuthorizationParams is the parsed query/body of an authorization or PAR
// request, before PAR merging and defaulting.
type AuthorizationParams struct {
	ClientID             string
	RedirectURI          string
	ResponseType         string
	State                string
	Scope                Scope
	CodeChallenge        string
	CodeChallengeMethod  string
}

func parseAuthorizationParams(params Values) AuthorizationParams {
	return AuthorizationParams{
		ClientID:            params["client_id"],
		RedirectURI:         params["redirect_uri"],
		ResponseType:        params["response_type"],
		State:               params["state"],
		Scope:               ParseScope(params["scope"]),
		CodeChallenge:       params["code_challenge"],
		CodeChallengeMethod: params["code_challenge_method"],
	}
}

// validRedirectURI enforces spec.md §4.3.1 step 2: HTTPS, http://localhost
// (loopback), or a private-use URI scheme for native apps.
func validRedirectURI(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "https":
		return govalidator.IsURL(raw)
	case "http":
		h := u.Hostname()
		return (h == "localhost" || h == "127.0.0.1" || h == "::1") && govalidator.IsURL(raw)
	case "":
		return false
	default:
		return true
	}
}

func appendQuery(base string, q url.Values) string {
	u, err := url.Parse(base)
	if err != nil {
		if strings.Contains(base, "?") {
			return base + "&" + q.Encode()
		}
		return base + "?" + q.Encode()
	}
	existing := u.Query()
	for k, vs := range q {
		for _, v := range vs {
			existing.Add(k, v)
		}
	}
	u.RawQuery = existing.Encode()
	return u.String()
}
