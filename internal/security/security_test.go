package security

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestCheckPIN(t *testing.T) {
	hashed, err := HashPIN("4321")
	require.NoError(t, err)
	require.True(t, IsHashedPIN(hashed))

	tests := []struct {
		name       string
		stored     string
		pin        string
		wantMatch  bool
		wantRehash bool
	}{
		{name: "default plain PIN", stored: "1234", pin: "1234", wantMatch: true, wantRehash: true},
		{name: "wrong plain PIN", stored: "1234", pin: "0000", wantMatch: false},
		{name: "hashed PIN", stored: hashed, pin: "4321", wantMatch: true},
		{name: "wrong hashed PIN", stored: hashed, pin: "1234", wantMatch: false},
		{name: "empty PIN", stored: "1234", pin: "", wantMatch: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match, rehash := CheckPIN(tt.stored, tt.pin)
			assert.Equal(t, tt.wantMatch, match)
			assert.Equal(t, tt.wantRehash, rehash)
		})
	}
}

func TestTokenManager(t *testing.T) {
	m, err := NewTokenManager("secret", time.Hour)
	require.NoError(t, err)

	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	token, sessionID, expires, err := m.Issue()
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), expires)
	assert.NotEmpty(t, sessionID)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, sessionID, claims.ID)

	now = now.Add(2 * time.Hour)
	_, err = m.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManagerRejectsForeignTokens(t *testing.T) {
	issuer, err := NewTokenManager("one", time.Hour)
	require.NoError(t, err)
	verifier, err := NewTokenManager("two", time.Hour)
	require.NoError(t, err)

	token, _, _, err := issuer.Issue()
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = verifier.Validate("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRandomSecretWhenEmpty(t *testing.T) {
	a, err := NewTokenManager("", time.Hour)
	require.NoError(t, err)
	b, err := NewTokenManager("", time.Hour)
	require.NoError(t, err)

	assert.NotEqual(t, a.secret, b.secret)
}

func TestCSRF(t *testing.T) {
	g := NewCSRFGenerator("secret")

	token, err := g.GenerateToken("session-1")
	require.NoError(t, err)

	assert.True(t, g.ValidateToken("session-1", token))
	assert.False(t, g.ValidateToken("session-2", token))
	assert.False(t, g.ValidateToken("session-1", ""))

	_, err = g.GenerateToken("")
	assert.Error(t, err)
}

func TestRateLimiter(t *testing.T) {
	defer goleak.VerifyNone(t)

	rl := NewRateLimiter(2, time.Minute)
	defer rl.Stop()

	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("5.6.7.8"))

	now = now.Add(time.Minute)
	assert.True(t, rl.Allow("1.2.3.4"))
}

func TestGetClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", GetClientIP(r))

	r.Header.Set("X-Real-IP", "10.0.0.2")
	assert.Equal(t, "10.0.0.2", GetClientIP(r))

	r.Header.Set("X-Forwarded-For", "10.0.0.3, 10.0.0.4")
	assert.Equal(t, "10.0.0.3", GetClientIP(r))
}

func TestCookies(t *testing.T) {
	r := httptest.NewRequest("GET", "https://example.com/", nil)
	expires := time.Now().Add(time.Hour)

	c := CreateSessionCookie(r, "parent_token", "abc", expires)
	assert.True(t, c.Secure)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, "abc", c.Value)

	d := CreateDeleteCookie(httptest.NewRequest("GET", "/", nil), "parent_token")
	assert.False(t, d.Secure)
	assert.Equal(t, -1, d.MaxAge)
}
