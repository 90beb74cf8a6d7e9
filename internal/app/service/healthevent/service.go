package healthevent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/petrelhq/petrel/internal/app/service/auditlog"
	petsvc "github.com/petrelhq/petrel/internal/app/service/pet"
	"github.com/petrelhq/petrel/internal/app/service/session"
	"github.com/petrelhq/petrel/internal/models"
	"github.com/petrelhq/petrel/pkg/sanitize"
	"github.com/petrelhq/petrel/pkg/tool"
	"github.com/petrelhq/petrel/pkg/types"
)

var ErrEventNotFound = errors.New("health event not found")

var SortFields = []string{"occurred_at", "created_at"}

type Service struct {
	log   *zap.SugaredLogger
	pets  *petsvc.Service
	audit *auditlog.Service
}

func NewService(log *zap.SugaredLogger, pets *petsvc.Service, audit *auditlog.Service) *Service {
	return &Service{log: log, pets: pets, audit: audit}
}

type CreateParams struct {
	Kind       models.HealthEventKind
	OccurredAt time.Time
	Title      string
	Notes      string
	Data       datatypes.JSON
}

func normalizeKind(k models.HealthEventKind) models.HealthEventKind {
	switch k {
	case models.HealthEventKindVetVisit, models.HealthEventKindVaccination,
		models.HealthEventKindMedication, models.HealthEventKindWeightCheck,
		models.HealthEventKindSymptom:
		return k
	default:
		return models.HealthEventKindOther
	}
}

// Create records a health event for one of the caller's pets. The pet is
// loaded through the same handle first, so a foreign pet id fails as
// not-found before anything is written.
func (s *Service) Create(ctx context.Context, h *session.Handle, petID string, p CreateParams) (*models.HealthEvent, error) {
	if p.Title == "" {
		return nil, fmt.Errorf("event title is required")
	}
	if _, err := s.pets.Get(ctx, h, petID); err != nil {
		return nil, err
	}

	occurredAt := p.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}
	evt := &models.HealthEvent{
		ID:         tool.GenerateUUIDV7(),
		UserID:     h.UserID(),
		PetID:      petID,
		Kind:       normalizeKind(p.Kind),
		OccurredAt: occurredAt,
		Title:      sanitize.Text(p.Title),
		Notes:      sanitize.Text(p.Notes),
		Data:       p.Data,
	}
	if err := h.DB().WithContext(ctx).Create(evt).Error; err != nil {
		return nil, fmt.Errorf("failed to create health event: %w", err)
	}
	s.audit.Record(ctx, lo.ToPtr(h.UserID()), "create", "health_event", evt.ID, evt)
	return evt, nil
}

func (s *Service) ListForPet(ctx context.Context, h *session.Handle, petID string, q types.PageQuery) (*types.Page[*models.HealthEvent], error) {
	if _, err := s.pets.Get(ctx, h, petID); err != nil {
		return nil, err
	}

	base := h.DB().WithContext(ctx).Model(&models.HealthEvent{}).
		Where("pet_id = ? AND user_id = ?", petID, h.UserID())

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count health events: %w", err)
	}

	var items []*models.HealthEvent
	if err := base.Order(q.OrderClause()).Offset(q.From).Limit(q.Size).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list health events: %w", err)
	}
	return &types.Page[*models.HealthEvent]{Items: items, Total: total, From: q.From, Size: q.Size}, nil
}

func (s *Service) Delete(ctx context.Context, h *session.Handle, id string) error {
	res := h.DB().WithContext(ctx).
		Where("id = ? AND user_id = ?", id, h.UserID()).
		Delete(&models.HealthEvent{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete health event: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrEventNotFound
	}
	s.audit.Record(ctx, lo.ToPtr(h.UserID()), "delete", "health_event", id, nil)
	return nil
}
