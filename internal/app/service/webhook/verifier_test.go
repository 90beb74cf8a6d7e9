package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func signWith(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifier_Verify_HMAC(t *testing.T) {
	const secret = "whsec_test_secret"
	body := []byte(`{"type":"INITIAL_PURCHASE","event":{"app_user_id":"u1"}}`)
	v := NewVerifier(secret)

	t.Run("valid signature accepts", func(t *testing.T) {
		ok, err := v.Verify(body, signWith(secret, body), "")
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("wrong secret rejects", func(t *testing.T) {
		ok, err := v.Verify(body, signWith("some_other_secret", body), "")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("tampered body rejects", func(t *testing.T) {
		sig := signWith(secret, body)
		tampered := append([]byte(nil), body...)
		tampered[len(tampered)-2] = 'x'
		ok, err := v.Verify(tampered, sig, "")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("malformed signature is a plain mismatch", func(t *testing.T) {
		for _, sig := range []string{"zzzz", "deadbeef", "not hex at all"} {
			ok, err := v.Verify(body, sig, "")
			require.NoError(t, err)
			require.False(t, ok)
		}
	})

	t.Run("signature header wins over auth header", func(t *testing.T) {
		// A correct bearer must not rescue a bad signature.
		ok, err := v.Verify(body, "bad-signature", secret)
		require.NoError(t, err)
		require.False(t, ok)
	})
}

func TestVerifier_Verify_BearerFallback(t *testing.T) {
	const secret = "whsec_test_secret"
	body := []byte(`{}`)
	v := NewVerifier(secret)

	t.Run("matching secret accepts", func(t *testing.T) {
		ok, err := v.Verify(body, "", secret)
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("bearer prefix accepted", func(t *testing.T) {
		ok, err := v.Verify(body, "", "Bearer "+secret)
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("wrong secret rejects", func(t *testing.T) {
		ok, err := v.Verify(body, "", "nope")
		require.NoError(t, err)
		require.False(t, ok)
	})
}

func TestVerifier_Verify_NoHeaders(t *testing.T) {
	v := NewVerifier("whsec_test_secret")
	ok, err := v.Verify([]byte(`{}`), "", "")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerifier_Verify_MissingSecret(t *testing.T) {
	// No configuration must mean reject-all with an error, never accept.
	v := NewVerifier("")
	body := []byte(`{}`)
	ok, err := v.Verify(body, signWith("", body), "")
	require.ErrorIs(t, err, ErrSecretNotConfigured)
	require.False(t, ok)
}

func TestVerifier_Sign_MatchesVerify(t *testing.T) {
	v := NewVerifier("whsec_test_secret")
	body := []byte(`{"event":{}}`)
	ok, err := v.Verify(body, v.Sign(body), "")
	require.NoError(t, err)
	require.True(t, ok)
}
