package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/xceltrack/xceltrack-api/internal/otp/entity"
	"github.com/xceltrack/xceltrack-api/internal/pkg/clock"
	"github.com/xceltrack/xceltrack-api/internal/pkg/config"
	"github.com/xceltrack/xceltrack-api/internal/pkg/instrument"
	"github.com/xceltrack/xceltrack-api/internal/pkg/uid"
	"github.com/xceltrack/xceltrack-api/internal/pkg/validator"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultTTL         = 10 * time.Minute
	defaultMaxAttempts = 5
)

// Store keeps at most one record per email. Implemented by the postgres
// and redis drivers under outbound.
type Store interface {
	Upsert(ctx context.Context, rec entity.Record) error
	Get(ctx context.Context, email string) (*entity.Record, error)
	IncrementAttempts(ctx context.Context, email string) (int, error)
	Delete(ctx context.Context, email string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type repoMail interface {
	SendOTP(ctx context.Context, d entity.Delivery) error
}

type Usecase struct {
	store     Store
	mail      repoMail
	validator validator.Validator
	code      uid.StringID
	clock     clock.Clocker
	ins       instrument.Instrumentation

	ttl          time.Duration
	maxAttempts  int
	debugLogCode bool

	issued   metric.Int64Counter
	verified metric.Int64Counter
}

type Dependency struct {
	Store      Store
	Mail       repoMail
	Validator  validator.Validator
	Config     config.Config
	Code       uid.StringID
	Clock      clock.Clocker
	Instrument instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	s := &Usecase{
		store:       dep.Store,
		mail:        dep.Mail,
		validator:   dep.Validator,
		code:        dep.Code,
		clock:       dep.Clock,
		ins:         dep.Instrument,
		ttl:         dep.Config.GetMinute("modules.otp.ttl_minutes"),
		maxAttempts: dep.Config.GetInt("modules.otp.max_attempts"),
	}

	if s.ttl <= 0 {
		s.ttl = defaultTTL
	}
	if s.maxAttempts <= 0 {
		s.maxAttempts = defaultMaxAttempts
	}

	if dep.Config.GetBool("modules.otp.debug_log_code") {
		switch env := dep.Config.GetString("app.env"); env {
		case "local", "development":
			s.debugLogCode = true
			slog.Warn("otp codes will be written to the debug log", "env", env)
		default:
			slog.Warn("modules.otp.debug_log_code ignored outside local and development", "env", env)
		}
	}

	meter := s.ins.Meter("otp.usecase")
	var err error
	if s.issued, err = meter.Int64Counter("otp.issued", metric.WithDescription("OTP codes issued and handed to mail")); err != nil {
		slog.Error("failed to create otp.issued counter", "error", err)
	}
	if s.verified, err = meter.Int64Counter("otp.verification", metric.WithDescription("OTP verification outcomes")); err != nil {
		slog.Error("failed to create otp.verification counter", "error", err)
	}

	return s
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("otp.usecase").Start(ctx, name)
}
