package fooditem

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/petrelhq/petrel/internal/app/service/auditlog"
	"github.com/petrelhq/petrel/internal/app/service/session"
	"github.com/petrelhq/petrel/internal/models"
	"github.com/petrelhq/petrel/pkg/sanitize"
	"github.com/petrelhq/petrel/pkg/tool"
	"github.com/petrelhq/petrel/pkg/types"
)

var ErrFoodItemNotFound = errors.New("food item not found")

var SortFields = []string{"created_at", "name", "brand"}

type Service struct {
	log   *zap.SugaredLogger
	audit *auditlog.Service
}

func NewService(log *zap.SugaredLogger, audit *auditlog.Service) *Service {
	return &Service{log: log, audit: audit}
}

type CreateParams struct {
	Name            string
	Brand           string
	Barcode         *string
	CaloriesPer100g float64
	Nutrition       datatypes.JSON
	Notes           string
}

type UpdateParams struct {
	Name            *string
	Brand           *string
	Barcode         *string
	CaloriesPer100g *float64
	Nutrition       datatypes.JSON
	Notes           *string
}

func (s *Service) Create(ctx context.Context, h *session.Handle, p CreateParams) (*models.FoodItem, error) {
	if p.Name == "" {
		return nil, fmt.Errorf("food item name is required")
	}
	if p.CaloriesPer100g < 0 {
		return nil, fmt.Errorf("calories cannot be negative")
	}
	item := &models.FoodItem{
		ID:              tool.GenerateUUIDV7(),
		UserID:          h.UserID(),
		Name:            sanitize.Text(p.Name),
		Brand:           sanitize.Text(p.Brand),
		Barcode:         p.Barcode,
		CaloriesPer100g: p.CaloriesPer100g,
		Nutrition:       p.Nutrition,
		Notes:           sanitize.Text(p.Notes),
	}
	if err := h.DB().WithContext(ctx).Create(item).Error; err != nil {
		return nil, fmt.Errorf("failed to create food item: %w", err)
	}
	s.audit.Record(ctx, lo.ToPtr(h.UserID()), "create", "food_item", item.ID, item)
	return item, nil
}

func (s *Service) Get(ctx context.Context, h *session.Handle, id string) (*models.FoodItem, error) {
	var item models.FoodItem
	err := h.DB().WithContext(ctx).
		Where("id = ? AND user_id = ?", id, h.UserID()).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrFoodItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get food item: %w", err)
	}
	return &item, nil
}

func (s *Service) List(ctx context.Context, h *session.Handle, q types.PageQuery) (*types.Page[*models.FoodItem], error) {
	base := h.DB().WithContext(ctx).Model(&models.FoodItem{}).Where("user_id = ?", h.UserID())

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count food items: %w", err)
	}

	var items []*models.FoodItem
	if err := base.Order(q.OrderClause()).Offset(q.From).Limit(q.Size).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list food items: %w", err)
	}
	return &types.Page[*models.FoodItem]{Items: items, Total: total, From: q.From, Size: q.Size}, nil
}

func (s *Service) Update(ctx context.Context, h *session.Handle, id string, p UpdateParams) (*models.FoodItem, error) {
	if _, err := s.Get(ctx, h, id); err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if p.Name != nil {
		if *p.Name == "" {
			return nil, fmt.Errorf("food item name cannot be empty")
		}
		changes["name"] = sanitize.Text(*p.Name)
	}
	if p.Brand != nil {
		changes["brand"] = sanitize.Text(*p.Brand)
	}
	if p.Barcode != nil {
		changes["barcode"] = p.Barcode
	}
	if p.CaloriesPer100g != nil {
		if *p.CaloriesPer100g < 0 {
			return nil, fmt.Errorf("calories cannot be negative")
		}
		changes["calories_per_100g"] = *p.CaloriesPer100g
	}
	if p.Nutrition != nil {
		changes["nutrition"] = p.Nutrition
	}
	if p.Notes != nil {
		changes["notes"] = sanitize.Text(*p.Notes)
	}
	if len(changes) > 0 {
		err := h.DB().WithContext(ctx).Model(&models.FoodItem{}).
			Where("id = ? AND user_id = ?", id, h.UserID()).
			Updates(changes).Error
		if err != nil {
			return nil, fmt.Errorf("failed to update food item: %w", err)
		}
		s.audit.Record(ctx, lo.ToPtr(h.UserID()), "update", "food_item", id, changes)
	}
	return s.Get(ctx, h, id)
}

func (s *Service) Delete(ctx context.Context, h *session.Handle, id string) error {
	res := h.DB().WithContext(ctx).
		Where("id = ? AND user_id = ?", id, h.UserID()).
		Delete(&models.FoodItem{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete food item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrFoodItemNotFound
	}
	s.audit.Record(ctx, lo.ToPtr(h.UserID()), "delete", "food_item", id, nil)
	return nil
}
