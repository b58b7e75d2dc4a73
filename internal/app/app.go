package app

import (
	"context"
	"net/http"

	"github.com/casbin/casbin/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/xceltrack/xceltrack-api/internal/account/outbound/idp"
	"github.com/xceltrack/xceltrack-api/internal/pkg/clock"
	"github.com/xceltrack/xceltrack-api/internal/pkg/config"
	"github.com/xceltrack/xceltrack-api/internal/pkg/goroutine"
	"github.com/xceltrack/xceltrack-api/internal/pkg/instrument"
	"github.com/xceltrack/xceltrack-api/internal/pkg/jwt"
	"github.com/xceltrack/xceltrack-api/internal/pkg/mail"
	"github.com/xceltrack/xceltrack-api/internal/pkg/router"
	"github.com/xceltrack/xceltrack-api/internal/pkg/scheduler"
	"github.com/xceltrack/xceltrack-api/internal/pkg/uid"
	"github.com/xceltrack/xceltrack-api/internal/pkg/validator"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	uid       uid.NumberID
	uuid      uid.StringID
	jwt       jwt.JWT

	// resources
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	mail      mail.Mail
	idp       *idp.IDP
	casbin    *casbin.Enforcer
	scheduler *scheduler.Scheduler

	// server
	router     *router.Router
	httpServer *http.Server

	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initAuth()
	app.initDatabase()
	app.initCache()
	app.initMail()
	app.initIDP()
	app.initCasbin()
	app.initHTTPServer()
	app.initScheduler()
	app.initModules()
	app.initClosers()

	return app
}
