package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	mw "github.com/petrelhq/petrel/internal/app/api/middleware"
	mfasvc "github.com/petrelhq/petrel/internal/app/service/mfa"
	"github.com/petrelhq/petrel/pkg/response"
)

type verifyMfaReq struct {
	Code string `json:"code" binding:"required"`
}

// @Summary      Issue MFA challenge
// @Tags         MFA
// @Produce      json
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/mfa/challenge [post]
func ApiIssueMfaChallenge(svc *mfasvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h, ok := mw.SessionFromGin(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, nil))
			return
		}
		challenge, code, err := svc.IssueChallenge(c.Request.Context(), h)
		if err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, nil))
			return
		}
		// The plaintext code is returned exactly once. Delivery over an
		// out-of-band channel is wired at the notification layer.
		c.JSON(http.StatusOK, response.OKT(gin.H{
			"challenge_id": challenge.ID,
			"code":         code,
			"expires_at":   challenge.ExpiresAt,
		}))
	}
}

// @Summary      Verify MFA challenge
// @Tags         MFA
// @Accept       json
// @Produce      json
// @Param        request body handlers.verifyMfaReq true "Code"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/mfa/verify [post]
func ApiVerifyMfaChallenge(svc *mfasvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h, ok := mw.SessionFromGin(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, nil))
			return
		}
		var req verifyMfaReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		err := svc.VerifyChallenge(c.Request.Context(), h, req.Code)
		if errors.Is(err, mfasvc.ErrNoChallenge) || errors.Is(err, mfasvc.ErrCodeMismatch) {
			c.JSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, err.Error()))
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, nil))
			return
		}
		c.JSON(http.StatusOK, response.OKT(gin.H{"verified": true}))
	}
}

func RegisterMfaRoutes(r gin.IRouter, svc *mfasvc.Service) {
	r.POST("/mfa/challenge", ApiIssueMfaChallenge(svc))
	r.POST("/mfa/verify", ApiVerifyMfaChallenge(svc))
}
