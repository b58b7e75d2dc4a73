package otp

import (
	"errors"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/xceltrack/xceltrack-api/internal/otp/inbound"
	"github.com/xceltrack/xceltrack-api/internal/otp/outbound/cache"
	"github.com/xceltrack/xceltrack-api/internal/otp/outbound/db"
	"github.com/xceltrack/xceltrack-api/internal/otp/outbound/email"
	"github.com/xceltrack/xceltrack-api/internal/otp/usecase"
	"github.com/xceltrack/xceltrack-api/internal/pkg/clock"
	"github.com/xceltrack/xceltrack-api/internal/pkg/config"
	"github.com/xceltrack/xceltrack-api/internal/pkg/instrument"
	"github.com/xceltrack/xceltrack-api/internal/pkg/mail"
	"github.com/xceltrack/xceltrack-api/internal/pkg/router"
	"github.com/xceltrack/xceltrack-api/internal/pkg/scheduler"
	"github.com/xceltrack/xceltrack-api/internal/pkg/uid"
	"github.com/xceltrack/xceltrack-api/internal/pkg/validator"
)

const (
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

var (
	ErrRedisRequired = errors.New("otp: redis store selected but no redis client configured")
	ErrUnknownStore  = errors.New("otp: unknown store driver")
)

type Dependency struct {
	DBConn     db.Conn                    `validate:"required"`
	CacheConn  redis.Cmdable              // required when modules.otp.store is redis
	Router     *router.Router             `validate:"required"`
	Scheduler  *scheduler.Scheduler       `validate:"required"`
	Mail       mail.Mail                  `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	RateLimit  router.Middleware          // optional, wraps both endpoints
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	var store usecase.Store
	switch driver := strings.ToLower(dep.Config.GetString("modules.otp.store")); driver {
	case "", StorePostgres:
		store = db.NewDB(dep.DBConn, dep.Instrument)
	case StoreRedis:
		if dep.CacheConn == nil {
			return ErrRedisRequired
		}
		store = cache.NewCache(dep.CacheConn, dep.Instrument)
	default:
		return ErrUnknownStore
	}

	uc := usecase.New(usecase.Dependency{
		Store: store,
		Mail: email.New(dep.Mail, dep.Instrument, dep.Clock, email.Config{
			Subject: dep.Config.GetString("modules.otp.mail_subject"),
			Brand:   dep.Config.GetString("modules.otp.brand_name"),
		}),
		Validator:  dep.Validator,
		Config:     dep.Config,
		Code:       uid.NewNumericCode(),
		Clock:      dep.Clock,
		Instrument: dep.Instrument,
	})

	var mws []router.Middleware
	if dep.RateLimit != nil {
		mws = append(mws, dep.RateLimit)
	}
	inbound.RegisterHTTPEndpoint(dep.Router, uc, mws...)

	return inbound.RegisterCron(dep.Scheduler, dep.Config.GetString("modules.otp.sweep_schedule"), uc)
}
