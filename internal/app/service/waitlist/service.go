package waitlist

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/petrelhq/petrel/internal/models"
	"github.com/petrelhq/petrel/pkg/logctx"
	"github.com/petrelhq/petrel/pkg/sanitize"
	"github.com/petrelhq/petrel/pkg/tool"
)

var ErrInvalidEmail = errors.New("invalid email address")

// Service handles pre-launch waitlist signups. The endpoint is public, so
// this is the one service that works on the root DB handle instead of a
// request-scoped one.
type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewService(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

// Signup registers an email. Signing up twice is not an error; the first
// row wins and the duplicate is acknowledged quietly.
func (s *Service) Signup(ctx context.Context, email, source string) (*models.WaitlistSignup, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}

	entry := &models.WaitlistSignup{
		ID:     tool.GenerateUUIDV7(),
		Email:  email,
		Source: sanitize.Text(source),
	}
	err := s.db.WithContext(ctx).
		Where("email = ?", email).
		FirstOrCreate(entry).Error
	if err != nil {
		return nil, fmt.Errorf("failed to save waitlist signup: %w", err)
	}
	logctx.FromCtx(ctx, s.log).Infow("waitlist_signup", "email", email, "source", source)
	return entry, nil
}

var Module = fx.Options(
	fx.Provide(NewService),
)
