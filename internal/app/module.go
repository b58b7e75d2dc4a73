package app

import (
	"log/slog"
	"os"

	"github.com/xceltrack/xceltrack-api/internal/account"
	"github.com/xceltrack/xceltrack-api/internal/otp"
	"github.com/xceltrack/xceltrack-api/internal/pkg/router"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.otp.enabled") {
		dep := otp.Dependency{
			DBConn:     a.dbConn,
			Router:     a.router,
			Scheduler:  a.scheduler,
			Mail:       a.mail,
			Config:     a.config,
			Instrument: a.ins,
			Validator:  a.validator,
			Clock:      a.clock,
		}
		if a.cacheConn != nil {
			dep.CacheConn = a.cacheConn
			if a.config.GetBool("ratelimit.enabled") {
				dep.RateLimit = router.RateLimit(a.cacheConn, router.RateLimitConfig{
					Requests: a.config.GetInt("ratelimit.requests"),
					Window:   a.config.GetSecond("ratelimit.window_seconds"),
				})
			}
		} else if a.config.GetBool("ratelimit.enabled") {
			slog.Warn("ratelimit.enabled ignored without redis")
		}

		if err := otp.New(dep); err != nil {
			slog.Error("failed to init module otp", "error", err)
			os.Exit(1)
		}
	}

	if a.config.GetBool("modules.account.enabled") {
		if err := account.New(account.Dependency{
			DBConn:     a.dbConn,
			IDP:        a.idp,
			Enforcer:   a.casbin,
			Router:     a.router,
			Config:     a.config,
			Instrument: a.ins,
			Validator:  a.validator,
			UID:        a.uid,
			Clock:      a.clock,
		}); err != nil {
			slog.Error("failed to init module account", "error", err)
			os.Exit(1)
		}
	}
}
