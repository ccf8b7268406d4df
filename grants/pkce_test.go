package grants

import (
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifyPKCEPlain(t *testing.T) {
	assert.True(t, VerifyPKCE("plain", "abc123", "abc123"))
	assert.True(t, VerifyPKCE("", "abc123", "abc123"))
	assert.False(t, VerifyPKCE("plain", "abc123", "xyz789"))
}

func TestVerifyPKCES256(t *testing.T) {
	verifier := "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
	sum := sha256.Sum256([]byte(verifier))
	challenge := base64.RawURLEncoding.EncodeToString(sum[:])

	assert.True(t, VerifyPKCE("S256", challenge, verifier))
	assert.False(t, VerifyPKCE("S256", challenge, "wrong-verifier"))
}

func TestVerifyPKCEUnknownMethod(t *testing.T) {
	assert.False(t, VerifyPKCE("bogus", "abc123", "abc123"))
}
