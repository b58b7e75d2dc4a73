package account

import (
	"github.com/casbin/casbin/v3"
	"github.com/xceltrack/xceltrack-api/internal/account/inbound"
	"github.com/xceltrack/xceltrack-api/internal/account/outbound/db"
	"github.com/xceltrack/xceltrack-api/internal/account/outbound/idp"
	"github.com/xceltrack/xceltrack-api/internal/account/usecase"
	"github.com/xceltrack/xceltrack-api/internal/pkg/clock"
	"github.com/xceltrack/xceltrack-api/internal/pkg/config"
	"github.com/xceltrack/xceltrack-api/internal/pkg/instrument"
	"github.com/xceltrack/xceltrack-api/internal/pkg/router"
	"github.com/xceltrack/xceltrack-api/internal/pkg/uid"
	"github.com/xceltrack/xceltrack-api/internal/pkg/validator"
)

type Dependency struct {
	DBConn     db.Conn                    `validate:"required"`
	IDP        *idp.IDP                   `validate:"required"`
	Enforcer   *casbin.Enforcer           `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	uc := usecase.New(usecase.Dependency{
		RepoDB:     db.NewDB(dep.DBConn, dep.Instrument),
		RepoIDP:    dep.IDP,
		Enforcer:   dep.Enforcer,
		Validator:  dep.Validator,
		Config:     dep.Config,
		UID:        dep.UID,
		Clock:      dep.Clock,
		Instrument: dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}
