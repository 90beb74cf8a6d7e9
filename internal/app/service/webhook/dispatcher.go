package webhook

import (
	"context"
	"encoding/json"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/petrelhq/petrel/internal/app/service/eventlog"
	"github.com/petrelhq/petrel/internal/app/service/subscription"
	"github.com/petrelhq/petrel/internal/models"
	"github.com/petrelhq/petrel/pkg/logctx"
)

const providerName = "billing"

// SubscriptionApplier is the slice of the subscription service the
// dispatcher drives. Every method is idempotent.
type SubscriptionApplier interface {
	ApplyPurchase(ctx context.Context, p subscription.PurchaseParams) error
	ApplyRenewal(ctx context.Context, p subscription.PurchaseParams) error
	ApplyCancellation(ctx context.Context, originalTxnID string, eventAt time.Time) error
	ApplyRevocation(ctx context.Context, originalTxnID string, eventAt time.Time) error
	ApplyUncancellation(ctx context.Context, originalTxnID string, eventAt time.Time) error
	ApplyExpiration(ctx context.Context, originalTxnID string, eventAt time.Time) error
	ApplyBillingIssue(ctx context.Context, originalTxnID string, graceExpireAt *time.Time, eventAt time.Time) error
	ApplyPause(ctx context.Context, originalTxnID string, eventAt time.Time) error
	ApplyTransfer(ctx context.Context, originalTxnID, newUserID string, eventAt time.Time) error
	ApplyAlias(ctx context.Context, aliasUserID, canonicalUserID string) error
}

// Dispatcher maps verified webhook events onto subscription state
// transitions. It must only see payloads that passed the Verifier.
type Dispatcher struct {
	subs SubscriptionApplier
	logs *eventlog.Service
	log  *zap.SugaredLogger
}

func NewDispatcher(subs SubscriptionApplier, logs *eventlog.Service, log *zap.SugaredLogger) *Dispatcher {
	return &Dispatcher{subs: subs, logs: logs, log: log}
}

func (d *Dispatcher) saveLog(ctx context.Context, entry *models.WebhookEventLog) {
	if d.logs != nil {
		d.logs.Save(ctx, entry)
	}
}

// Process parses a verified delivery, records it, and dispatches it. The
// returned error is for server-side logging only: the webhook endpoint
// acknowledges regardless, because the provider retries on non-2xx and
// uncontrolled retries of a partially applied mutation are worse than a
// single dropped update surfaced via logs.
func (d *Dispatcher) Process(ctx context.Context, traceID string, body []byte) (procErr error) {
	p, err := ParsePayload(body)
	if err != nil {
		d.saveLog(ctx, &models.WebhookEventLog{
			Provider:  providerName,
			TraceID:   traceID,
			EventType: "unparseable",
			EventTime: time.Now(),
			Payload:   datatypes.JSON(body),
			Status:    models.WebhookEventLogStatusHandleFailed,
		})
		return err
	}

	evt := &p.Event
	entry := models.WebhookEventLog{
		Provider:      providerName,
		TraceID:       traceID,
		EventType:     p.Type,
		TransactionID: evt.OriginalTransactionID,
		EventTime:     evt.EventTime(),
		Payload:       datatypes.JSON(body),
	}
	if evt.AppUserID != "" {
		entry.UserID = lo.ToPtr(evt.AppUserID)
	}

	received := entry
	received.Status = models.WebhookEventLogStatusReceived
	d.saveLog(ctx, &received)

	procErr = d.Dispatch(ctx, p)

	done := entry
	done.Status = models.WebhookEventLogStatusHandled
	if procErr != nil {
		done.Status = models.WebhookEventLogStatusHandleFailed
		resBytes, _ := json.Marshal(map[string]any{"error": procErr.Error()})
		done.Result = lo.ToPtr(datatypes.JSON(resBytes))
	}
	d.saveLog(ctx, &done)

	return procErr
}

// Dispatch routes one verified event to its handler. Exactly one handler
// runs per event; the default arm acknowledges unknown kinds so new provider
// event types never cause retry storms.
func (d *Dispatcher) Dispatch(ctx context.Context, p *Payload) error {
	evt := &p.Event

	switch p.Kind() {
	case EventKindInitialPurchase:
		return d.subs.ApplyPurchase(ctx, purchaseParams(evt, true))
	case EventKindNonRenewingPurchase:
		return d.subs.ApplyPurchase(ctx, purchaseParams(evt, false))
	case EventKindRenewal:
		return d.subs.ApplyRenewal(ctx, purchaseParams(evt, true))
	case EventKindCancellation:
		if isRevocationReason(evt.CancelReason) {
			return d.subs.ApplyRevocation(ctx, evt.OriginalTransactionID, evt.EventTime())
		}
		return d.subs.ApplyCancellation(ctx, evt.OriginalTransactionID, evt.EventTime())
	case EventKindUncancellation:
		return d.subs.ApplyUncancellation(ctx, evt.OriginalTransactionID, evt.EventTime())
	case EventKindExpiration:
		return d.subs.ApplyExpiration(ctx, evt.OriginalTransactionID, evt.EventTime())
	case EventKindBillingIssue:
		return d.subs.ApplyBillingIssue(ctx, evt.OriginalTransactionID, evt.GracePeriodExpirationAt(), evt.EventTime())
	case EventKindSubscriptionPaused:
		return d.subs.ApplyPause(ctx, evt.OriginalTransactionID, evt.EventTime())
	case EventKindTransfer:
		return d.subs.ApplyTransfer(ctx, evt.OriginalTransactionID, transferTarget(evt), evt.EventTime())
	case EventKindSubscriberAlias:
		return d.subs.ApplyAlias(ctx, evt.OriginalAppUserID, evt.AppUserID)
	default:
		logctx.FromCtx(ctx, d.log).Infow("unknown webhook event kind acknowledged", "type", p.Type)
		return nil
	}
}

// isRevocationReason separates "entitlement removed now" cancellations from
// ordinary unsubscribes, which keep the remaining paid period.
func isRevocationReason(reason string) bool {
	switch reason {
	case "CUSTOMER_SUPPORT", "FRAUD", "REFUND":
		return true
	default:
		return false
	}
}

func purchaseParams(evt *Event, autoRenew bool) subscription.PurchaseParams {
	return subscription.PurchaseParams{
		UserID:                evt.AppUserID,
		ProductID:             evt.ProductID,
		PeriodType:            evt.PeriodType,
		TransactionID:         evt.TransactionID,
		OriginalTransactionID: evt.OriginalTransactionID,
		PurchaseAt:            evt.PurchasedAt(),
		ExpireAt:              evt.ExpirationAt(),
		EventAt:               evt.EventTime(),
		AutoRenew:             autoRenew,
	}
}

func transferTarget(evt *Event) string {
	if len(evt.TransferredTo) > 0 {
		return evt.TransferredTo[0]
	}
	if evt.NewAppUserID != "" {
		return evt.NewAppUserID
	}
	return evt.AppUserID
}
