package session

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/petrelhq/petrel/pkg/auth"
	"github.com/petrelhq/petrel/pkg/logctx"
)

// setIdentitySQL attaches the caller id for database-level row policies.
// The third set_config argument must stay true (transaction-local): a
// session-scoped setting would bind to whichever pooled connection ran the
// statement, miss the handle's other queries, and survive into unrelated
// requests that later reuse the connection.
const setIdentitySQL = "SELECT set_config('petrel.user_id', ?, true)"

// Handle is a request-scoped, identity-bound datastore handle. One handle is
// built per request and discarded at request end; it must never be cached or
// shared across requests, or one caller's authorization context would leak
// into another's.
//
// When a datastore is attached the handle wraps a single transaction, which
// pins all of its queries to one connection and scopes the identity setting
// to exactly this request's work. The owner must finish it with Commit or
// Rollback.
type Handle struct {
	db     *gorm.DB
	inTx   bool
	claims *auth.Claims
	token  string
}

// DB returns the request-scoped gorm handle. Services using it still apply
// explicit ownership filters; those are the authoritative check.
func (h *Handle) DB() *gorm.DB { return h.db }

func (h *Handle) UserID() string { return h.claims.UserID() }
func (h *Handle) Email() string  { return h.claims.Email }
func (h *Handle) Role() string   { return h.claims.Role }

// Token returns the raw bearer the handle was built from.
func (h *Handle) Token() string { return h.token }

// Commit finalizes the handle's transaction. No-op on identity-only handles.
func (h *Handle) Commit() error {
	if !h.inTx {
		return nil
	}
	h.inTx = false
	return h.db.Commit().Error
}

// Rollback discards the handle's transaction. No-op on identity-only
// handles or after Commit.
func (h *Handle) Rollback() {
	if !h.inTx {
		return
	}
	h.inTx = false
	h.db.Rollback()
}

// Factory builds per-request handles from verified claims.
type Factory struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewFactory(db *gorm.DB, log *zap.SugaredLogger) *Factory {
	return &Factory{db: db, log: log}
}

// New constructs a fresh handle for one request. The caller identity is
// exposed to database-level row policies via a transaction-local setting; if
// that fails the request proceeds on explicit ownership filters alone, which
// is degraded but safe since the database policy is a secondary hardening
// layer, not the authoritative check.
func (f *Factory) New(ctx context.Context, claims *auth.Claims, token string) *Handle {
	// A factory without a datastore still hands out identity-only handles;
	// middleware tests rely on this.
	if f.db == nil {
		return &Handle{claims: claims, token: token}
	}

	tx := f.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		logctx.FromCtx(ctx, f.log).Warnw("failed to begin request transaction, proceeding without identity attachment",
			"err", tx.Error, "user_id", claims.UserID())
		scoped := f.db.WithContext(ctx).Session(&gorm.Session{NewDB: true})
		return &Handle{db: scoped, claims: claims, token: token}
	}

	if err := tx.Exec(setIdentitySQL, claims.UserID()).Error; err != nil {
		logctx.FromCtx(ctx, f.log).Warnw("failed to attach caller identity to datastore session",
			"err", err, "user_id", claims.UserID())
	}

	return &Handle{db: tx, inTx: true, claims: claims, token: token}
}
