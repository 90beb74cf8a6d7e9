package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	wlsvc "github.com/petrelhq/petrel/internal/app/service/waitlist"
	"github.com/petrelhq/petrel/pkg/response"
)

type waitlistSignupReq struct {
	Email  string `json:"email" binding:"required"`
	Source string `json:"source"`
}

// @Summary      Join waitlist
// @Tags         Waitlist
// @Accept       json
// @Produce      json
// @Param        request body handlers.waitlistSignupReq true "Signup"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/waitlist [post]
func ApiWaitlistSignup(svc *wlsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req waitlistSignupReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		signup, err := svc.Signup(c.Request.Context(), req.Email, req.Source)
		if errors.Is(err, wlsvc.ErrInvalidEmail) {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, nil))
			return
		}
		c.JSON(http.StatusOK, response.OKT(gin.H{"email": signup.Email}))
	}
}

func RegisterWaitlistRoutes(r gin.IRouter, svc *wlsvc.Service) {
	r.POST("/waitlist", ApiWaitlistSignup(svc))
}
