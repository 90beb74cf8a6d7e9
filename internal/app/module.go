package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/petrelhq/petrel/internal/app/api/server"
	"github.com/petrelhq/petrel/internal/app/service/auditlog"
	"github.com/petrelhq/petrel/internal/app/service/eventlog"
	"github.com/petrelhq/petrel/internal/app/service/fooditem"
	"github.com/petrelhq/petrel/internal/app/service/healthevent"
	"github.com/petrelhq/petrel/internal/app/service/mfa"
	"github.com/petrelhq/petrel/internal/app/service/pet"
	"github.com/petrelhq/petrel/internal/app/service/session"
	"github.com/petrelhq/petrel/internal/app/service/subscription"
	"github.com/petrelhq/petrel/internal/app/service/waitlist"
	"github.com/petrelhq/petrel/internal/app/service/webhook"
	"github.com/petrelhq/petrel/internal/platform/db"
	"github.com/petrelhq/petrel/pkg/config"
	"github.com/petrelhq/petrel/pkg/logger"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	server.Module,
	session.Module,
	subscription.Module,
	eventlog.Module,
	auditlog.Module,
	webhook.Module,
	pet.Module,
	healthevent.Module,
	fooditem.Module,
	waitlist.Module,
	mfa.Module,
)
