package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	mw "github.com/petrelhq/petrel/internal/app/api/middleware"
	foodsvc "github.com/petrelhq/petrel/internal/app/service/fooditem"
	"github.com/petrelhq/petrel/pkg/response"
	"github.com/petrelhq/petrel/pkg/types"
)

type createFoodItemReq struct {
	Name            string          `json:"name" binding:"required"`
	Brand           string          `json:"brand"`
	Barcode         *string         `json:"barcode"`
	CaloriesPer100g float64         `json:"calories_per_100g"`
	Nutrition       json.RawMessage `json:"nutrition"`
	Notes           string          `json:"notes"`
}

type updateFoodItemReq struct {
	Name            *string         `json:"name"`
	Brand           *string         `json:"brand"`
	Barcode         *string         `json:"barcode"`
	CaloriesPer100g *float64        `json:"calories_per_100g"`
	Nutrition       json.RawMessage `json:"nutrition"`
	Notes           *string         `json:"notes"`
}

// @Summary      Create food item
// @Tags         FoodItems
// @Accept       json
// @Produce      json
// @Param        request body handlers.createFoodItemReq true "Food item"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/food-items [post]
func ApiCreateFoodItem(svc *foodsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h, ok := mw.SessionFromGin(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, nil))
			return
		}
		var req createFoodItemReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		item, err := svc.Create(c.Request.Context(), h, foodsvc.CreateParams{
			Name:            req.Name,
			Brand:           req.Brand,
			Barcode:         req.Barcode,
			CaloriesPer100g: req.CaloriesPer100g,
			Nutrition:       datatypes.JSON(req.Nutrition),
			Notes:           req.Notes,
		})
		if err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(item))
	}
}

func ApiListFoodItems(svc *foodsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h, ok := mw.SessionFromGin(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, nil))
			return
		}
		q := types.ParsePageQuery(c.Query("from"), c.Query("size"), c.Query("sort_by"), c.Query("sort_order"), foodsvc.SortFields...)

		page, err := svc.List(c.Request.Context(), h, q)
		if err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, nil))
			return
		}
		c.JSON(http.StatusOK, response.OKT(page))
	}
}

func ApiGetFoodItem(svc *foodsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h, ok := mw.SessionFromGin(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, nil))
			return
		}
		item, err := svc.Get(c.Request.Context(), h, c.Param("id"))
		if errors.Is(err, foodsvc.ErrFoodItemNotFound) {
			c.JSON(http.StatusNotFound, response.ErrorT[any](response.APIResponseCodeNotFound, nil))
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, nil))
			return
		}
		c.JSON(http.StatusOK, response.OKT(item))
	}
}

func ApiUpdateFoodItem(svc *foodsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h, ok := mw.SessionFromGin(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, nil))
			return
		}
		var req updateFoodItemReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		item, err := svc.Update(c.Request.Context(), h, c.Param("id"), foodsvc.UpdateParams{
			Name:            req.Name,
			Brand:           req.Brand,
			Barcode:         req.Barcode,
			CaloriesPer100g: req.CaloriesPer100g,
			Nutrition:       datatypes.JSON(req.Nutrition),
			Notes:           req.Notes,
		})
		if errors.Is(err, foodsvc.ErrFoodItemNotFound) {
			c.JSON(http.StatusNotFound, response.ErrorT[any](response.APIResponseCodeNotFound, nil))
			return
		}
		if err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(item))
	}
}

func ApiDeleteFoodItem(svc *foodsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h, ok := mw.SessionFromGin(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, nil))
			return
		}
		err := svc.Delete(c.Request.Context(), h, c.Param("id"))
		if errors.Is(err, foodsvc.ErrFoodItemNotFound) {
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

func RegisterFoodItemRoutes(r gin.IRouter, svc *foodsvc.Service) {
	r.POST("/food-items", ApiCreateFoodItem(svc))
	r.GET("/food-items", ApiListFoodItems(svc))
	r.GET("/food-items/:id", ApiGetFoodItem(svc))
	r.PATCH("/food-items/:id", ApiUpdateFoodItem(svc))
	r.DELETE("/food-items/:id", ApiDeleteFoodItem(svc))
}
