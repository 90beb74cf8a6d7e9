package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	mw "github.com/petrelhq/petrel/internal/app/api/middleware"
	petsvc "github.com/petrelhq/petrel/internal/app/service/pet"
	"github.com/petrelhq/petrel/internal/models"
	"github.com/petrelhq/petrel/pkg/response"
	"github.com/petrelhq/petrel/pkg/types"
)

type createPetReq struct {
	Name      string     `json:"name" binding:"required"`
	Species   string     `json:"species"`
	Breed     string     `json:"breed"`
	BirthDate *time.Time `json:"birth_date"`
	WeightKg  *float64   `json:"weight_kg"`
	Notes     string     `json:"notes"`
}

type updatePetReq struct {
	Name      *string    `json:"name"`
	Species   *string    `json:"species"`
	Breed     *string    `json:"breed"`
	BirthDate *time.Time `json:"birth_date"`
	WeightKg  *float64   `json:"weight_kg"`
	Notes     *string    `json:"notes"`
}

// @Summary      Create pet
// @Tags         Pets
// @Accept       json
// @Produce      json
// @Param        request body handlers.createPetReq true "Pet"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/pets [post]
func ApiCreatePet(svc *petsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h, ok := mw.SessionFromGin(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, nil))
			return
		}
		var req createPetReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		pet, err := svc.Create(c.Request.Context(), h, petsvc.CreateParams{
			Name:      req.Name,
			Species:   models.PetSpecies(req.Species),
			Breed:     req.Breed,
			BirthDate: req.BirthDate,
			WeightKg:  req.WeightKg,
			Notes:     req.Notes,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, nil))
			return
		}
		c.JSON(http.StatusOK, response.OKT(pet))
	}
}

// @Summary      List pets
// @Tags         Pets
// @Produce      json
// @Param        from   query  int     false  "offset"
// @Param        size   query  int     false  "page size"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/pets [get]
func ApiListPets(svc *petsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h, ok := mw.SessionFromGin(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, nil))
			return
		}
		q := types.ParsePageQuery(c.Query("from"), c.Query("size"), c.Query("sort_by"), c.Query("sort_order"), petsvc.SortFields...)

		page, err := svc.List(c.Request.Context(), h, q)
		if err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, nil))
			return
		}
		c.JSON(http.StatusOK, response.OKT(page))
	}
}

func ApiGetPet(svc *petsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h, ok := mw.SessionFromGin(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, nil))
			return
		}
		pet, err := svc.Get(c.Request.Context(), h, c.Param("id"))
		if errors.Is(err, petsvc.ErrPetNotFound) {
			c.JSON(http.StatusNotFound, response.ErrorT[any](response.APIResponseCodeNotFound, nil))
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, nil))
			return
		}
		c.JSON(http.StatusOK, response.OKT(pet))
	}
}

func ApiUpdatePet(svc *petsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h, ok := mw.SessionFromGin(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, nil))
			return
		}
		var req updatePetReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		params := petsvc.UpdateParams{
			Name:      req.Name,
			Breed:     req.Breed,
			BirthDate: req.BirthDate,
			WeightKg:  req.WeightKg,
			Notes:     req.Notes,
		}
		if req.Species != nil {
			sp := models.PetSpecies(*req.Species)
			params.Species = &sp
		}

		pet, err := svc.Update(c.Request.Context(), h, c.Param("id"), params)
		if errors.Is(err, petsvc.ErrPetNotFound) {
			c.JSON(http.StatusNotFound, response.ErrorT[any](response.APIResponseCodeNotFound, nil))
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, nil))
			return
		}
		c.JSON(http.StatusOK, response.OKT(pet))
	}
}

func ApiDeletePet(svc *petsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h, ok := mw.SessionFromGin(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, nil))
			return
		}
		err := svc.Delete(c.Request.Context(), h, c.Param("id"))
		if errors.Is(err, petsvc.ErrPetNotFound) {
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

func RegisterPetRoutes(r gin.IRouter, svc *petsvc.Service) {
	r.POST("/pets", ApiCreatePet(svc))
	r.GET("/pets", ApiListPets(svc))
	r.GET("/pets/:id", ApiGetPet(svc))
	r.PATCH("/pets/:id", ApiUpdatePet(svc))
	r.DELETE("/pets/:id", ApiDeletePet(svc))
}
