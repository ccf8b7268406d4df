// Package idtoken signs OpenID Connect ID tokens. It mirrors heat's
// jwt.go/notary.go shape (claims in, signed compact JWT out) but is
// generalized to accept whatever key type Storage.SigningKey hands back,
// since the core does not mandate HMAC, RSA, or any particular algorithm.
package idtoken

import (
	"crypto/ecdsa"
	"crypto/rsa"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Key is the signing key material an adapter supplies via
// Storage.SigningKey, plus its "kid" for the JWT header.
type Key struct {
	Material any
	Kid      string
}

// Claims assembles the mandatory OIDC claim set (OpenID Connect Core §2)
// plus any extra claims a grant attached via TokenSpec.Claims. Extra never
// overrides the mandatory claims.
func Claims(issuer, subject, audience string, issuedAt, expiresAt time.Time, extra map[string]any) map[string]any {
	claims := make(map[string]any, len(extra)+5)
	for k, v := range extra {
		claims[k] = v
	}
	claims["iss"] = issuer
	claims["sub"] = subject
	claims["aud"] = audience
	claims["iat"] = issuedAt.Unix()
	claims["exp"] = expiresAt.Unix()
	return claims
}

// Sign builds and signs a compact JWT from claims, choosing the signing
// algorithm from the key material's concrete Go type.
func Sign(claims map[string]any, key Key) (string, error) {
	method, err := signingMethod(key.Material)
	if err != nil {
		return "", err
	}

	token := jwt.NewWithClaims(method, jwt.MapClaims(claims))
	if key.Kid != "" {
		token.Header["kid"] = key.Kid
	}

	return token.SignedString(key.Material)
}

func signingMethod(material any) (jwt.SigningMethod, error) {
	switch material.(type) {
	case []byte:
		return jwt.SigningMethodHS256, nil
	case *rsa.PrivateKey:
		return jwt.SigningMethodRS256, nil
	case *ecdsa.PrivateKey:
		return jwt.SigningMethodES256, nil
	default:
		return nil, fmt.Errorf("idtoken: unsupported signing key type %T", material)
	}
}
