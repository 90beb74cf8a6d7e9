package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	mw "github.com/petrelhq/petrel/internal/app/api/middleware"
	hesvc "github.com/petrelhq/petrel/internal/app/service/healthevent"
	petsvc "github.com/petrelhq/petrel/internal/app/service/pet"
	"github.com/petrelhq/petrel/internal/models"
	"github.com/petrelhq/petrel/pkg/response"
	"github.com/petrelhq/petrel/pkg/types"
)

type createHealthEventReq struct {
	Kind       string          `json:"kind" binding:"required"`
	OccurredAt *time.Time      `json:"occurred_at"`
	Title      string          `json:"title" binding:"required"`
	Notes      string          `json:"notes"`
	Data       json.RawMessage `json:"data"`
}

// @Summary      Record health event
// @Tags         HealthEvents
// @Accept       json
// @Produce      json
// @Param        id      path  string                          true  "Pet id"
// @Param        request body  handlers.createHealthEventReq  true  "Event"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/pets/{id}/events [post]
func ApiCreateHealthEvent(svc *hesvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h, ok := mw.SessionFromGin(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, nil))
			return
		}
		var req createHealthEventReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		params := hesvc.CreateParams{
			Kind:  models.HealthEventKind(req.Kind),
			Title: req.Title,
			Notes: req.Notes,
			Data:  datatypes.JSON(req.Data),
		}
		if req.OccurredAt != nil {
			params.OccurredAt = *req.OccurredAt
		}

		evt, err := svc.Create(c.Request.Context(), h, c.Param("id"), params)
		if errors.Is(err, petsvc.ErrPetNotFound) {
			c.JSON(http.StatusNotFound, response.ErrorT[any](response.APIResponseCodeNotFound, nil))
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, nil))
			return
		}
		c.JSON(http.StatusOK, response.OKT(evt))
	}
}

func ApiListHealthEvents(svc *hesvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h, ok := mw.SessionFromGin(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, nil))
			return
		}
		q := types.ParsePageQuery(c.Query("from"), c.Query("size"), c.Query("sort_by"), c.Query("sort_order"), hesvc.SortFields...)

		page, err := svc.ListForPet(c.Request.Context(), h, c.Param("id"), q)
		if errors.Is(err, petsvc.ErrPetNotFound) {
			c.JSON(http.StatusNotFound, response.ErrorT[any](response.APIResponseCodeNotFound, nil))
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, nil))
			return
		}
		c.JSON(http.StatusOK, response.OKT(page))
	}
}

func ApiDeleteHealthEvent(svc *hesvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h, ok := mw.SessionFromGin(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, nil))
			return
		}
		err := svc.Delete(c.Request.Context(), h, c.Param("id"))
		if errors.Is(err, hesvc.ErrEventNotFound) {
			c.JSON(http.StatusNotFound, response.ErrorT[any](response.APIResponseCodeNotFound, nil))
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, nil))
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

func RegisterHealthEventRoutes(r gin.IRouter, svc *hesvc.Service) {
	r.POST("/pets/:id/events", ApiCreateHealthEvent(svc))
	r.GET("/pets/:id/events", ApiListHealthEvents(svc))
	r.DELETE("/events/:id", ApiDeleteHealthEvent(svc))
}
