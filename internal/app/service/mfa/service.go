package mfa

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/petrelhq/petrel/internal/app/service/session"
	"github.com/petrelhq/petrel/internal/models"
	cfgpkg "github.com/petrelhq/petrel/pkg/config"
	"github.com/petrelhq/petrel/pkg/logctx"
	"github.com/petrelhq/petrel/pkg/tool"
)

var (
	ErrNoChallenge  = errors.New("no active mfa challenge")
	ErrCodeMismatch = errors.New("mfa code does not match")
)

// Service issues and verifies single-use second-factor codes. Only a bcrypt
// hash of the code is stored; the plaintext is handed to the delivery
// channel once and forgotten.
type Service struct {
	cfg *cfgpkg.Config
	log *zap.SugaredLogger
}

func NewService(cfg *cfgpkg.Config, log *zap.SugaredLogger) *Service {
	return &Service{cfg: cfg, log: log}
}

// IssueChallenge creates a fresh challenge for the caller and returns the
// plaintext code exactly once. Any previous unconsumed challenges are
// invalidated so only the newest code can be redeemed.
func (s *Service) IssueChallenge(ctx context.Context, h *session.Handle) (*models.MfaChallenge, string, error) {
	code, err := generateCode(s.cfg.MFA.CodeLength)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate mfa code: %w", err)
	}
	hash, err := hashCode(code)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash mfa code: %w", err)
	}

	now := time.Now()
	challenge := &models.MfaChallenge{
		ID:        tool.GenerateUUIDV7(),
		UserID:    h.UserID(),
		CodeHash:  hash,
		ExpiresAt: now.Add(s.cfg.MFA.ChallengeTTL),
	}

	err = h.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.MfaChallenge{}).
			Where("user_id = ? AND consumed_at IS NULL", h.UserID()).
			Update("consumed_at", now).Error; err != nil {
			return err
		}
		return tx.Create(challenge).Error
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to save mfa challenge: %w", err)
	}

	logctx.FromCtx(ctx, s.log).Infow("mfa_challenge_issued", "user_id", h.UserID(), "challenge_id", challenge.ID)
	return challenge, code, nil
}

// VerifyChallenge redeems the caller's newest active challenge. A correct
// code consumes the challenge; it cannot be replayed.
func (s *Service) VerifyChallenge(ctx context.Context, h *session.Handle, code string) error {
	var challenge models.MfaChallenge
	err := h.DB().WithContext(ctx).
		Where("user_id = ? AND consumed_at IS NULL AND expires_at > ?", h.UserID(), time.Now()).
		Order("created_at desc").
		First(&challenge).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNoChallenge
	}
	if err != nil {
		return fmt.Errorf("failed to load mfa challenge: %w", err)
	}

	if !checkCode(challenge.CodeHash, code) {
		return ErrCodeMismatch
	}

	res := h.DB().WithContext(ctx).Model(&models.MfaChallenge{}).
		Where("id = ? AND consumed_at IS NULL", challenge.ID).
		Update("consumed_at", time.Now())
	if res.Error != nil {
		return fmt.Errorf("failed to consume mfa challenge: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// Consumed concurrently; single-use means the other redeem wins.
		return ErrNoChallenge
	}
	return nil
}

func generateCode(length int) (string, error) {
	if length <= 0 {
		length = 6
	}
	const digits = "0123456789"
	// Bytes at or above 250 are rejected: 250 is the largest multiple of 10
	// below 256, so the modulo stays uniform over the digits.
	const limit = 250
	out := make([]byte, 0, length)
	buf := make([]byte, length*2)
	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			out = append(out, digits[int(b)%len(digits)])
			if len(out) == length {
				break
			}
		}
	}
	return string(out), nil
}

func hashCode(code string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	return string(b), err
}

func checkCode(hash, code string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}
