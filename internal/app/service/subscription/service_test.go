package subscription

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/petrelhq/petrel/internal/models"
	"github.com/petrelhq/petrel/pkg/types"
)

// fakeStore keeps one row per original transaction id and enforces the same
// conditional-update guards as the real store.
type fakeStore struct {
	rows      map[string]*models.Subscription
	createErr error
	creates   int
	updates   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: map[string]*models.Subscription{}}
}

func (f *fakeStore) byOriginalTxnID(_ context.Context, id string) (*models.Subscription, error) {
	if sub, ok := f.rows[id]; ok {
		cp := *sub
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeStore) create(_ context.Context, sub *models.Subscription) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.rows[sub.OriginalTransactionID]; ok {
		return gorm.ErrDuplicatedKey
	}
	f.creates++
	cp := *sub
	f.rows[sub.OriginalTransactionID] = &cp
	return nil
}

func (f *fakeStore) advanceRenewal(_ context.Context, id, guardTxnID string, changes map[string]any) (int64, error) {
	for _, sub := range f.rows {
		if sub.ID == id && sub.LatestTransactionID == guardTxnID {
			f.apply(sub, changes)
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeStore) applyTransition(_ context.Context, originalTxnID string, eventAt time.Time, changes map[string]any) (int64, error) {
	sub, ok := f.rows[originalTxnID]
	if !ok || sub.LatestEventAt.After(eventAt) {
		return 0, nil
	}
	f.apply(sub, changes)
	return 1, nil
}

func (f *fakeStore) reassignUser(_ context.Context, from, to string) (int64, error) {
	var n int64
	for _, sub := range f.rows {
		if sub.UserID == from {
			sub.UserID = to
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) apply(sub *models.Subscription, changes map[string]any) {
	f.updates++
	for k, v := range changes {
		switch k {
		case "status":
			sub.Status = v.(types.SubscriptionStatus)
		case "auto_renew":
			sub.AutoRenew = v.(bool)
		case "expire_at":
			switch t := v.(type) {
			case *time.Time:
				sub.ExpireAt = t
			case time.Time:
				sub.ExpireAt = &t
			}
		case "latest_transaction_id":
			sub.LatestTransactionID = v.(string)
		case "latest_event_at":
			sub.LatestEventAt = v.(time.Time)
		case "user_id":
			sub.UserID = v.(string)
		}
	}
}

func newTestService(store *fakeStore) *Service {
	return &Service{store: store, log: zap.NewNop().Sugar()}
}

func purchase(txnID string, at time.Time) PurchaseParams {
	expire := at.Add(30 * 24 * time.Hour)
	return PurchaseParams{
		UserID:                "u1",
		ProductID:             "petrel_monthly",
		TransactionID:         txnID,
		OriginalTransactionID: "ot1",
		PurchaseAt:            at,
		ExpireAt:              &expire,
		EventAt:               at,
		AutoRenew:             true,
	}
}

func TestApplyPurchase_DuplicateDeliveryIsNoOp(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	at := time.Now().UTC()

	require.NoError(t, svc.ApplyPurchase(context.Background(), purchase("t1", at)))
	require.NoError(t, svc.ApplyPurchase(context.Background(), purchase("t1", at)))

	assert.Equal(t, 1, store.creates, "reapplying the same purchase must yield exactly one row")
	assert.Len(t, store.rows, 1)
}

func TestApplyPurchase_CreateRaceTolerated(t *testing.T) {
	store := newFakeStore()
	store.createErr = gorm.ErrDuplicatedKey
	svc := newTestService(store)

	// The lookup saw nothing but a concurrent delivery created the row first.
	err := svc.ApplyPurchase(context.Background(), purchase("t1", time.Now().UTC()))
	assert.NoError(t, err)
}

func TestApplyPurchase_Validation(t *testing.T) {
	svc := newTestService(newFakeStore())

	p := purchase("t1", time.Now().UTC())
	p.UserID = ""
	assert.Error(t, svc.ApplyPurchase(context.Background(), p))

	p = purchase("t1", time.Now().UTC())
	p.OriginalTransactionID = ""
	assert.Error(t, svc.ApplyPurchase(context.Background(), p))
}

func TestApplyRenewal_AdvancesState(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	at := time.Now().UTC()

	require.NoError(t, svc.ApplyPurchase(context.Background(), purchase("100", at)))

	renewAt := at.Add(30 * 24 * time.Hour)
	require.NoError(t, svc.ApplyRenewal(context.Background(), purchase("101", renewAt)))

	sub := store.rows["ot1"]
	assert.Equal(t, "101", sub.LatestTransactionID)
	assert.Equal(t, types.SubscriptionStatusActive, sub.Status)
	assert.True(t, sub.AutoRenew)
	require.NotNil(t, sub.ExpireAt)
	assert.Equal(t, renewAt.Add(30*24*time.Hour), *sub.ExpireAt)
}

func TestApplyRenewal_StaleTransactionIsNoOp(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	at := time.Now().UTC()

	require.NoError(t, svc.ApplyPurchase(context.Background(), purchase("200", at)))
	before := *store.rows["ot1"]

	// Replays of the stored transaction and older ones must change nothing.
	for _, stale := range []string{"200", "199", "42"} {
		require.NoError(t, svc.ApplyRenewal(context.Background(), purchase(stale, at.Add(time.Hour))))
	}

	after := store.rows["ot1"]
	assert.Equal(t, before.LatestTransactionID, after.LatestTransactionID)
	assert.Equal(t, before.ExpireAt, after.ExpireAt)
	assert.Zero(t, store.updates)
}

func TestApplyRenewal_BeforePurchaseCreatesRow(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	at := time.Now().UTC()

	require.NoError(t, svc.ApplyRenewal(context.Background(), purchase("300", at)))
	require.Len(t, store.rows, 1)
	assert.True(t, store.rows["ot1"].AutoRenew)

	// The late initial purchase is now a duplicate no-op.
	require.NoError(t, svc.ApplyPurchase(context.Background(), purchase("299", at)))
	assert.Equal(t, 1, store.creates)
	assert.Equal(t, "300", store.rows["ot1"].LatestTransactionID)
}

func TestTransitions_GuardedByEventTime(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	at := time.Now().UTC()

	require.NoError(t, svc.ApplyPurchase(context.Background(), purchase("400", at)))
	require.NoError(t, svc.ApplyCancellation(context.Background(), "ot1", at.Add(time.Hour)))
	require.Equal(t, types.SubscriptionStatusCancelled, store.rows["ot1"].Status)

	// An older uncancellation arriving late must not resurrect the row.
	require.NoError(t, svc.ApplyUncancellation(context.Background(), "ot1", at.Add(time.Minute)))
	assert.Equal(t, types.SubscriptionStatusCancelled, store.rows["ot1"].Status)

	// Unknown subscription is a logged no-op, not an error.
	assert.NoError(t, svc.ApplyExpiration(context.Background(), "ot-unknown", at))
}

func TestApplyCancellation_KeepsExpiry(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	at := time.Now().UTC()

	require.NoError(t, svc.ApplyPurchase(context.Background(), purchase("500", at)))
	expiry := *store.rows["ot1"].ExpireAt

	require.NoError(t, svc.ApplyCancellation(context.Background(), "ot1", at.Add(time.Hour)))

	sub := store.rows["ot1"]
	assert.False(t, sub.AutoRenew)
	require.NotNil(t, sub.ExpireAt)
	assert.Equal(t, expiry, *sub.ExpireAt, "cancellation keeps the paid period")
}

func TestApplyRevocation_EndsEntitlementImmediately(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	at := time.Now().UTC()

	require.NoError(t, svc.ApplyPurchase(context.Background(), purchase("600", at)))

	revokeAt := at.Add(time.Hour)
	require.NoError(t, svc.ApplyRevocation(context.Background(), "ot1", revokeAt))

	sub := store.rows["ot1"]
	assert.Equal(t, types.SubscriptionStatusRevoked, sub.Status)
	assert.False(t, sub.AutoRenew)
	require.NotNil(t, sub.ExpireAt)
	assert.Equal(t, revokeAt, *sub.ExpireAt)
	assert.False(t, sub.Valid())
}

func TestApplyBillingIssue_GraceAndRetry(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	at := time.Now().UTC()

	require.NoError(t, svc.ApplyPurchase(context.Background(), purchase("700", at)))

	grace := at.Add(16 * 24 * time.Hour)
	require.NoError(t, svc.ApplyBillingIssue(context.Background(), "ot1", &grace, at.Add(time.Hour)))
	sub := store.rows["ot1"]
	assert.Equal(t, types.SubscriptionStatusGracePeriod, sub.Status)
	assert.Equal(t, grace, *sub.ExpireAt)

	require.NoError(t, svc.ApplyBillingIssue(context.Background(), "ot1", nil, at.Add(2*time.Hour)))
	assert.Equal(t, types.SubscriptionStatusBillingRetry, store.rows["ot1"].Status)
}

func TestApplyAlias_RewritesAllRows(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	at := time.Now().UTC()

	require.NoError(t, svc.ApplyPurchase(context.Background(), purchase("800", at)))
	require.NoError(t, svc.ApplyAlias(context.Background(), "u1", "u-canonical"))
	assert.Equal(t, "u-canonical", store.rows["ot1"].UserID)

	// Degenerate inputs are no-ops.
	assert.NoError(t, svc.ApplyAlias(context.Background(), "", "u2"))
	assert.NoError(t, svc.ApplyAlias(context.Background(), "u2", "u2"))
}

func TestApplyTransfer_RequiresTarget(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	at := time.Now().UTC()

	require.NoError(t, svc.ApplyPurchase(context.Background(), purchase("900", at)))
	assert.Error(t, svc.ApplyTransfer(context.Background(), "ot1", "", at.Add(time.Hour)))

	require.NoError(t, svc.ApplyTransfer(context.Background(), "ot1", "u-new", at.Add(time.Hour)))
	assert.Equal(t, "u-new", store.rows["ot1"].UserID)
}
