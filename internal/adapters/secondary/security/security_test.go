package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmashkov/yatube-project/internal/core/domain"
	"github.com/nmashkov/yatube-project/internal/core/ports"
)

var (
	_ ports.PasswordHasher = (*Argon2Hasher)(nil)
	_ ports.TokenProvider  = (*JWTProvider)(nil)
)

// Paramètres réduits pour garder les tests rapides
var testParams = &Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16}

func TestArgon2Hasher_RoundTrip(t *testing.T) {
	h := NewArgon2Hasher(testParams)

	hash, err := h.Hash("correct horse")
	require.NoError(t, err)
	assert.Contains(t, hash, "$argon2id$v=19$m=1024,t=1,p=1$")

	assert.NoError(t, h.Compare(hash, "correct horse"))
	assert.ErrorIs(t, h.Compare(hash, "wrong horse"), ErrMismatchedPassword)
}

func TestArgon2Hasher_SaltsDiffer(t *testing.T) {
	h := NewArgon2Hasher(testParams)
	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestArgon2Hasher_MalformedHash(t *testing.T) {
	h := NewArgon2Hasher(testParams)
	for _, bad := range []string{"", "plain", "$bcrypt$v=19$m=1,t=1,p=1$aa$bb", "$argon2id$v=1$m=1,t=1,p=1$aa$bb"} {
		assert.ErrorIs(t, h.Compare(bad, "x"), ErrMalformedHash, bad)
	}
}

func TestJWTProvider_RoundTrip(t *testing.T) {
	p, err := NewJWTProvider("0123456789abcdef0123", time.Hour)
	require.NoError(t, err)

	token, err := p.Generate(&domain.User{ID: 42, Username: "leo"})
	require.NoError(t, err)

	id, err := p.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
}

func TestJWTProvider_Rejects(t *testing.T) {
	p, err := NewJWTProvider("0123456789abcdef0123", time.Hour)
	require.NoError(t, err)
	token, err := p.Generate(&domain.User{ID: 1, Username: "leo"})
	require.NoError(t, err)

	other, err := NewJWTProvider("another-secret-0123456", time.Hour)
	require.NoError(t, err)
	_, err = other.Validate(token)
	assert.Error(t, err, "foreign signature")

	p.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = p.Validate(token)
	assert.Error(t, err, "expired")

	_, err = p.Validate("not-a-token")
	assert.Error(t, err)
}

func TestNewJWTProvider_ShortSecret(t *testing.T) {
	_, err := NewJWTProvider("short", time.Hour)
	assert.Error(t, err)
}
