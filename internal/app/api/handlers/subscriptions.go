package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	mw "github.com/petrelhq/petrel/internal/app/api/middleware"
	subsvc "github.com/petrelhq/petrel/internal/app/service/subscription"
	"github.com/petrelhq/petrel/pkg/response"
	"github.com/petrelhq/petrel/pkg/types"
)

// @Summary      Current subscription
// @Tags         Subscriptions
// @Produce      json
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/subscription [get]
func ApiGetSubscription(svc *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h, ok := mw.SessionFromGin(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, nil))
			return
		}
		sub, err := svc.GetForUser(c.Request.Context(), h)
		if err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, nil))
			return
		}
		if sub == nil {
			// Never subscribed reads the same as fully lapsed.
			c.JSON(http.StatusOK, response.OKT(&types.SubscriptionInfo{
				Status: types.SubscriptionStatusExpired,
				Tier:   types.SubscriptionTierUnknown,
			}))
			return
		}
		c.JSON(http.StatusOK, response.OKT(sub.Info()))
	}
}

func RegisterSubscriptionRoutes(r gin.IRouter, svc *subsvc.Service) {
	r.GET("/subscription", ApiGetSubscription(svc))
}
