package session

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/petrelhq/petrel/pkg/auth"
)

func testClaims(userID string) *auth.Claims {
	return &auth.Claims{
		Email: "o@example.com",
		Role:  "user",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestIdentityAttachmentIsTransactionLocal(t *testing.T) {
	// set_config's third argument decides the setting's lifetime. A false
	// (session-scoped) value would bind the caller id to one pooled
	// connection, miss the handle's other queries, and bleed into whichever
	// request reuses that connection next. It must stay transaction-local.
	require.Contains(t, setIdentitySQL, "set_config('petrel.user_id'")
	require.True(t, strings.HasSuffix(strings.TrimSuffix(setIdentitySQL, ")"), "true"),
		"identity setting must be transaction-local (is_local=true)")
}

func TestFactory_IdentityOnlyHandle(t *testing.T) {
	f := NewFactory(nil, zap.NewNop().Sugar())
	h := f.New(context.Background(), testClaims("u1"), "tok")

	require.NotNil(t, h)
	assert.Nil(t, h.DB())
	assert.Equal(t, "u1", h.UserID())
	assert.Equal(t, "o@example.com", h.Email())
	assert.Equal(t, "user", h.Role())
	assert.Equal(t, "tok", h.Token())
}

func TestHandle_CommitRollbackWithoutTransaction(t *testing.T) {
	f := NewFactory(nil, zap.NewNop().Sugar())
	h := f.New(context.Background(), testClaims("u1"), "tok")

	// Identity-only handles have nothing to finish; both must be safe no-ops
	// and stay safe when called repeatedly.
	assert.NoError(t, h.Commit())
	h.Rollback()
	assert.NoError(t, h.Commit())
}

func TestFactory_FreshHandlePerCall(t *testing.T) {
	f := NewFactory(nil, zap.NewNop().Sugar())

	h1 := f.New(context.Background(), testClaims("u1"), "tok1")
	h2 := f.New(context.Background(), testClaims("u2"), "tok2")

	// Handles are never cached or shared between requests.
	assert.NotSame(t, h1, h2)
	assert.Equal(t, "u1", h1.UserID())
	assert.Equal(t, "u2", h2.UserID())
}
