package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/petrelhq/petrel/internal/app/service/webhook"
	"github.com/petrelhq/petrel/pkg/logctx"
	"github.com/petrelhq/petrel/pkg/response"
	"go.uber.org/zap"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw request body.
const SignatureHeader = "X-Webhook-Signature"

const webhookBodyLimit = 1 << 20 // 1MiB

// ApiBillingWebhook handles subscription lifecycle events from the billing
// provider. The raw body is captured and verified before any JSON parsing:
// verifying one byte sequence and acting on a differently decoded equivalent
// is the bug class this ordering exists to prevent.
//
// The endpoint acknowledges with 200 even when handling fails internally;
// the provider retries non-2xx responses and uncontrolled retries of a
// partially applied mutation are worse than one dropped update surfaced via
// logs. The only non-200 is 401 on signature verification failure.
func ApiBillingWebhook(v *webhook.Verifier, d *webhook.Dispatcher, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, webhookBodyLimit))
		if err != nil {
			logctx.FromGin(c, log).Warnw("webhook_body_read_failed", "error", err.Error())
			c.JSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, nil))
			return
		}

		ok, err := v.Verify(body, c.GetHeader(SignatureHeader), c.GetHeader("Authorization"))
		if err != nil {
			// Missing secret: cannot verify anything, so reject everything.
			logctx.FromGin(c, log).Errorw("webhook_verification_unavailable", "error", err.Error())
			c.JSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, nil))
			return
		}
		if !ok {
			logctx.FromGin(c, log).Warnw("webhook_signature_rejected")
			c.JSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, nil))
			return
		}

		traceID := c.GetString("traceID")
		if err := d.Process(c.Request.Context(), traceID, body); err != nil {
			logctx.FromGin(c, log).Errorw("webhook_handle_error", "error", err.Error())
		}
		c.JSON(http.StatusOK, gin.H{"status": "success"})
	}
}

func RegisterWebhookRoutes(r gin.IRouter, v *webhook.Verifier, d *webhook.Dispatcher, log *zap.SugaredLogger) {
	r.POST("/billing", ApiBillingWebhook(v, d, log))
}
