package auditlog

import (
	"context"
	"encoding/json"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/petrelhq/petrel/internal/models"
	"github.com/petrelhq/petrel/pkg/logctx"
	"github.com/petrelhq/petrel/pkg/tool"
)

// Service records mutating API actions. Writes are asynchronous and
// best-effort: a failed audit write is logged, never surfaced to the caller.
type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service { return &Service{db: db, log: log} }

// Record persists one audit entry. detail may be nil or any
// JSON-marshalable snapshot of the change.
func (s *Service) Record(ctx context.Context, userID *string, action, entity, entityID string, detail any) {
	var traceID string
	if tid, ok := ctx.Value("traceID").(string); ok {
		traceID = tid
	}

	entry := &models.AuditLog{
		ID:       tool.GenerateUUIDV7(),
		UserID:   userID,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		TraceID:  traceID,
	}
	if detail != nil {
		if b, err := json.Marshal(detail); err == nil {
			entry.Detail = datatypes.JSON(b)
		}
	}

	go func() {
		if err := s.db.Create(entry).Error; err != nil {
			logctx.FromCtx(ctx, s.log).Errorf("failed to save audit log: %v", err)
		}
	}()
}

var Module = fx.Options(
	fx.Provide(New),
)
