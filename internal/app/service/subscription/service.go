package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/petrelhq/petrel/internal/app/service/session"
	"github.com/petrelhq/petrel/internal/models"
	"github.com/petrelhq/petrel/pkg/logctx"
	"github.com/petrelhq/petrel/pkg/tool"
	"github.com/petrelhq/petrel/pkg/types"
)

// Service owns subscription state transitions driven by billing webhooks.
// All write paths are idempotent and safe under out-of-order or concurrent
// delivery: lookups key on the original transaction id and updates are
// conditional on what was read (compare-and-set), never blind read-then-write.
type Service struct {
	store store
	log   *zap.SugaredLogger
}

func NewService(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{store: &gormStore{db: db}, log: log}
}

// PurchaseParams describes a purchase or renewal event.
type PurchaseParams struct {
	UserID                string
	ProductID             string
	PeriodType            string
	TransactionID         string
	OriginalTransactionID string
	PurchaseAt            time.Time
	ExpireAt              *time.Time
	EventAt               time.Time
	AutoRenew             bool
}

func (p *PurchaseParams) validate() error {
	if p.UserID == "" {
		return fmt.Errorf("purchase event has no user id")
	}
	if p.OriginalTransactionID == "" {
		return fmt.Errorf("purchase event has no original transaction id")
	}
	return nil
}

// ApplyPurchase handles initial and non-renewing purchases. Reapplying the
// same event is a no-op: the row is keyed by original transaction id and
// only created when absent.
func (s *Service) ApplyPurchase(ctx context.Context, p PurchaseParams) error {
	if err := p.validate(); err != nil {
		return err
	}

	existing, err := s.store.byOriginalTxnID(ctx, p.OriginalTransactionID)
	if err != nil {
		return err
	}
	if existing != nil {
		logctx.FromCtx(ctx, s.log).Debugw("duplicate purchase delivery ignored",
			"original_transaction_id", p.OriginalTransactionID)
		return nil
	}

	txnID := p.TransactionID
	if txnID == "" {
		txnID = p.OriginalTransactionID
	}
	sub := &models.Subscription{
		ID:                    tool.GenerateUUIDV7(),
		UserID:                p.UserID,
		ProductID:             p.ProductID,
		Tier:                  TierFromProduct(p.ProductID, p.PeriodType),
		Status:                types.SubscriptionStatusActive,
		PurchaseAt:            p.PurchaseAt,
		ExpireAt:              p.ExpireAt,
		AutoRenew:             p.AutoRenew,
		OriginalTransactionID: p.OriginalTransactionID,
		LatestTransactionID:   txnID,
		LatestEventAt:         p.EventAt,
	}
	if err := s.store.create(ctx, sub); err != nil {
		// Unique index on original_transaction_id turns a create/create race
		// between concurrent deliveries into a duplicate-key error.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			logctx.FromCtx(ctx, s.log).Debugw("purchase lost create race, already applied",
				"original_transaction_id", p.OriginalTransactionID)
			return nil
		}
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return nil
}

// ApplyRenewal moves the expiry and latest transaction id forward. Events
// carrying a transaction older than what is stored are dropped; the forward
// update is guarded by the transaction id that was read, so two concurrent
// deliveries cannot interleave into a regression.
func (s *Service) ApplyRenewal(ctx context.Context, p PurchaseParams) error {
	if err := p.validate(); err != nil {
		return err
	}

	stored, err := s.store.byOriginalTxnID(ctx, p.OriginalTransactionID)
	if err != nil {
		return err
	}
	if stored == nil {
		// Renewal delivered before the initial purchase. Create the row now;
		// the late INITIAL_PURCHASE becomes a duplicate no-op.
		logctx.FromCtx(ctx, s.log).Infow("renewal before initial purchase, creating subscription",
			"original_transaction_id", p.OriginalTransactionID)
		p.AutoRenew = true
		return s.ApplyPurchase(ctx, p)
	}

	if CompareTransactionIDs(p.TransactionID, stored.LatestTransactionID) <= 0 {
		logctx.FromCtx(ctx, s.log).Debugw("stale renewal ignored",
			"original_transaction_id", p.OriginalTransactionID,
			"incoming", p.TransactionID, "stored", stored.LatestTransactionID)
		return nil
	}

	rows, err := s.store.advanceRenewal(ctx, stored.ID, stored.LatestTransactionID, map[string]any{
		"status":                types.SubscriptionStatusActive,
		"expire_at":             p.ExpireAt,
		"auto_renew":            true,
		"latest_transaction_id": p.TransactionID,
		"latest_event_at":       p.EventAt,
	})
	if err != nil {
		return fmt.Errorf("failed to apply renewal: %w", err)
	}
	if rows == 0 {
		logctx.FromCtx(ctx, s.log).Debugw("renewal lost update race, newer state already applied",
			"original_transaction_id", p.OriginalTransactionID)
	}
	return nil
}

// transition applies a status-level change guarded by the event timestamp so
// out-of-order deliveries cannot overwrite newer state. A zero-row update
// (stale event or unknown subscription) is a logged no-op, not an error.
func (s *Service) transition(ctx context.Context, originalTxnID string, eventAt time.Time, changes map[string]any) error {
	if originalTxnID == "" {
		return fmt.Errorf("event has no original transaction id")
	}
	changes["latest_event_at"] = eventAt

	rows, err := s.store.applyTransition(ctx, originalTxnID, eventAt, changes)
	if err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}
	if rows == 0 {
		logctx.FromCtx(ctx, s.log).Debugw("subscription transition skipped (stale event or unknown subscription)",
			"original_transaction_id", originalTxnID, "event_at", eventAt)
	}
	return nil
}

// ApplyCancellation turns auto-renew off. The expiry date is untouched: the
// entitlement persists until it runs out.
func (s *Service) ApplyCancellation(ctx context.Context, originalTxnID string, eventAt time.Time) error {
	return s.transition(ctx, originalTxnID, eventAt, map[string]any{
		"status":     types.SubscriptionStatusCancelled,
		"auto_renew": false,
	})
}

func (s *Service) ApplyUncancellation(ctx context.Context, originalTxnID string, eventAt time.Time) error {
	return s.transition(ctx, originalTxnID, eventAt, map[string]any{
		"status":     types.SubscriptionStatusActive,
		"auto_renew": true,
	})
}

func (s *Service) ApplyExpiration(ctx context.Context, originalTxnID string, eventAt time.Time) error {
	return s.transition(ctx, originalTxnID, eventAt, map[string]any{
		"status":     types.SubscriptionStatusExpired,
		"auto_renew": false,
	})
}

// ApplyRevocation tears the entitlement down immediately: unlike a customer
// cancellation, a refund or fraud revocation does not let the remaining paid
// period run out.
func (s *Service) ApplyRevocation(ctx context.Context, originalTxnID string, eventAt time.Time) error {
	return s.transition(ctx, originalTxnID, eventAt, map[string]any{
		"status":     types.SubscriptionStatusRevoked,
		"auto_renew": false,
		"expire_at":  eventAt,
	})
}

// ApplyBillingIssue puts the subscription into grace period when the provider
// grants one (entitlement extended to the grace deadline), billing retry
// otherwise.
func (s *Service) ApplyBillingIssue(ctx context.Context, originalTxnID string, graceExpireAt *time.Time, eventAt time.Time) error {
	changes := map[string]any{"status": types.SubscriptionStatusBillingRetry}
	if graceExpireAt != nil {
		changes["status"] = types.SubscriptionStatusGracePeriod
		changes["expire_at"] = graceExpireAt
	}
	return s.transition(ctx, originalTxnID, eventAt, changes)
}

func (s *Service) ApplyPause(ctx context.Context, originalTxnID string, eventAt time.Time) error {
	return s.transition(ctx, originalTxnID, eventAt, map[string]any{
		"status": types.SubscriptionStatusPaused,
	})
}

// ApplyTransfer re-associates the subscription with a new owning user.
func (s *Service) ApplyTransfer(ctx context.Context, originalTxnID, newUserID string, eventAt time.Time) error {
	if newUserID == "" {
		return fmt.Errorf("transfer event has no destination user id")
	}
	return s.transition(ctx, originalTxnID, eventAt, map[string]any{
		"user_id": newUserID,
	})
}

// ApplyAlias re-points every subscription from an aliased user id to the
// canonical one.
func (s *Service) ApplyAlias(ctx context.Context, aliasUserID, canonicalUserID string) error {
	if aliasUserID == "" || canonicalUserID == "" || aliasUserID == canonicalUserID {
		return nil
	}
	rows, err := s.store.reassignUser(ctx, aliasUserID, canonicalUserID)
	if err != nil {
		return fmt.Errorf("failed to apply alias: %w", err)
	}
	logctx.FromCtx(ctx, s.log).Infow("subscriber alias applied",
		"alias", aliasUserID, "canonical", canonicalUserID, "rows", rows)
	return nil
}

// GetForUser returns the caller's newest subscription through their
// request-scoped handle, nil when they never purchased.
func (s *Service) GetForUser(ctx context.Context, h *session.Handle) (*models.Subscription, error) {
	var sub models.Subscription
	err := h.DB().WithContext(ctx).
		Where("user_id = ?", h.UserID()).
		Order("purchase_at desc").
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return &sub, nil
}
