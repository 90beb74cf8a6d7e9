package pet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/petrelhq/petrel/internal/app/service/auditlog"
	"github.com/petrelhq/petrel/internal/app/service/session"
	"github.com/petrelhq/petrel/internal/models"
	"github.com/petrelhq/petrel/pkg/sanitize"
	"github.com/petrelhq/petrel/pkg/tool"
	"github.com/petrelhq/petrel/pkg/types"
)

var ErrPetNotFound = errors.New("pet not found")

// SortFields is the allow-list for pet listing.
var SortFields = []string{"created_at", "name", "birth_date"}

type Service struct {
	log   *zap.SugaredLogger
	audit *auditlog.Service
}

func NewService(log *zap.SugaredLogger, audit *auditlog.Service) *Service {
	return &Service{log: log, audit: audit}
}

type CreateParams struct {
	Name      string
	Species   models.PetSpecies
	Breed     string
	BirthDate *time.Time
	WeightKg  *float64
	Notes     string
}

type UpdateParams struct {
	Name      *string
	Species   *models.PetSpecies
	Breed     *string
	BirthDate *time.Time
	WeightKg  *float64
	Notes     *string
}

func normalizeSpecies(sp models.PetSpecies) models.PetSpecies {
	switch sp {
	case models.PetSpeciesDog, models.PetSpeciesCat:
		return sp
	default:
		return models.PetSpeciesOther
	}
}

func (s *Service) Create(ctx context.Context, h *session.Handle, p CreateParams) (*models.Pet, error) {
	if p.Name == "" {
		return nil, fmt.Errorf("pet name is required")
	}
	pet := &models.Pet{
		ID:        tool.GenerateUUIDV7(),
		UserID:    h.UserID(),
		Name:      sanitize.Text(p.Name),
		Species:   normalizeSpecies(p.Species),
		Breed:     sanitize.Text(p.Breed),
		BirthDate: p.BirthDate,
		WeightKg:  p.WeightKg,
		Notes:     sanitize.Text(p.Notes),
	}
	if err := h.DB().WithContext(ctx).Create(pet).Error; err != nil {
		return nil, fmt.Errorf("failed to create pet: %w", err)
	}
	s.audit.Record(ctx, lo.ToPtr(h.UserID()), "create", "pet", pet.ID, pet)
	return pet, nil
}

func (s *Service) Get(ctx context.Context, h *session.Handle, id string) (*models.Pet, error) {
	var pet models.Pet
	err := h.DB().WithContext(ctx).
		Where("id = ? AND user_id = ?", id, h.UserID()).
		First(&pet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pet: %w", err)
	}
	return &pet, nil
}

func (s *Service) List(ctx context.Context, h *session.Handle, q types.PageQuery) (*types.Page[*models.Pet], error) {
	base := h.DB().WithContext(ctx).Model(&models.Pet{}).Where("user_id = ?", h.UserID())

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count pets: %w", err)
	}

	var items []*models.Pet
	if err := base.Order(q.OrderClause()).Offset(q.From).Limit(q.Size).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list pets: %w", err)
	}
	return &types.Page[*models.Pet]{Items: items, Total: total, From: q.From, Size: q.Size}, nil
}

func (s *Service) Update(ctx context.Context, h *session.Handle, id string, p UpdateParams) (*models.Pet, error) {
	pet, err := s.Get(ctx, h, id)
	if err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if p.Name != nil {
		if *p.Name == "" {
			return nil, fmt.Errorf("pet name cannot be empty")
		}
		changes["name"] = sanitize.Text(*p.Name)
	}
	if p.Species != nil {
		changes["species"] = normalizeSpecies(*p.Species)
	}
	if p.Breed != nil {
		changes["breed"] = sanitize.Text(*p.Breed)
	}
	if p.BirthDate != nil {
		changes["birth_date"] = p.BirthDate
	}
	if p.WeightKg != nil {
		changes["weight_kg"] = p.WeightKg
	}
	if p.Notes != nil {
		changes["notes"] = sanitize.Text(*p.Notes)
	}
	if len(changes) == 0 {
		return pet, nil
	}

	err = h.DB().WithContext(ctx).Model(&models.Pet{}).
		Where("id = ? AND user_id = ?", id, h.UserID()).
		Updates(changes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to update pet: %w", err)
	}
	s.audit.Record(ctx, lo.ToPtr(h.UserID()), "update", "pet", id, changes)
	return s.Get(ctx, h, id)
}

func (s *Service) Delete(ctx context.Context, h *session.Handle, id string) error {
	res := h.DB().WithContext(ctx).
		Where("id = ? AND user_id = ?", id, h.UserID()).
		Delete(&models.Pet{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete pet: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrPetNotFound
	}
	s.audit.Record(ctx, lo.ToPtr(h.UserID()), "delete", "pet", id, nil)
	return nil
}
