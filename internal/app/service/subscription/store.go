package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/petrelhq/petrel/internal/models"
)

// store is the persistence seam for subscription state. All mutating
// operations are conditional: the row count tells the caller whether its
// guard held, and a zero count is how lost races surface.
type store interface {
	// byOriginalTxnID returns (nil, nil) when no row exists.
	byOriginalTxnID(ctx context.Context, originalTxnID string) (*models.Subscription, error)
	create(ctx context.Context, sub *models.Subscription) error
	// advanceRenewal updates the row only while latest_transaction_id still
	// equals guardTxnID.
	advanceRenewal(ctx context.Context, id, guardTxnID string, changes map[string]any) (int64, error)
	// applyTransition updates the row only while latest_event_at <= eventAt.
	applyTransition(ctx context.Context, originalTxnID string, eventAt time.Time, changes map[string]any) (int64, error)
	reassignUser(ctx context.Context, fromUserID, toUserID string) (int64, error)
}

type gormStore struct {
	db *gorm.DB
}

func (g *gormStore) byOriginalTxnID(ctx context.Context, originalTxnID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := g.db.WithContext(ctx).
		Where("original_transaction_id = ?", originalTxnID).
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up subscription: %w", err)
	}
	return &sub, nil
}

func (g *gormStore) create(ctx context.Context, sub *models.Subscription) error {
	return g.db.WithContext(ctx).Create(sub).Error
}

func (g *gormStore) advanceRenewal(ctx context.Context, id, guardTxnID string, changes map[string]any) (int64, error) {
	res := g.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("id = ? AND latest_transaction_id = ?", id, guardTxnID).
		Updates(changes)
	return res.RowsAffected, res.Error
}

func (g *gormStore) applyTransition(ctx context.Context, originalTxnID string, eventAt time.Time, changes map[string]any) (int64, error) {
	res := g.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("original_transaction_id = ? AND latest_event_at <= ?", originalTxnID, eventAt).
		Updates(changes)
	return res.RowsAffected, res.Error
}

func (g *gormStore) reassignUser(ctx context.Context, fromUserID, toUserID string) (int64, error) {
	res := g.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("user_id = ?", fromUserID).
		Update("user_id", toUserID)
	return res.RowsAffected, res.Error
}
