package app

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/sethvargo/go-retry"
	"github.com/xceltrack/xceltrack-api/internal/account/outbound/idp"
	"github.com/xceltrack/xceltrack-api/internal/pkg/authz"
	"github.com/xceltrack/xceltrack-api/internal/pkg/clock"
	"github.com/xceltrack/xceltrack-api/internal/pkg/config"
	"github.com/xceltrack/xceltrack-api/internal/pkg/goroutine"
	"github.com/xceltrack/xceltrack-api/internal/pkg/instrument"
	"github.com/xceltrack/xceltrack-api/internal/pkg/jwt"
	"github.com/xceltrack/xceltrack-api/internal/pkg/mail"
	"github.com/xceltrack/xceltrack-api/internal/pkg/migration"
	"github.com/xceltrack/xceltrack-api/internal/pkg/router"
	"github.com/xceltrack/xceltrack-api/internal/pkg/scheduler"
	"github.com/xceltrack/xceltrack-api/internal/pkg/uid"
	"github.com/xceltrack/xceltrack-api/internal/pkg/validator"
	"golang.org/x/oauth2/google"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

const (
	AuthDriverOIDC = "oidc"
	AuthDriverHMAC = "hmac"
)

func (a *App) initConfig() {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "/config/config.yaml"
		if os.Getenv("LOCAL") == "true" {
			path = "./config/config.yaml"
		}
	}

	cfg, err := config.NewViper(path)
	if err != nil {
		slog.Error("failed to init config", "error", err)
		os.Exit(1)
	}

	//nolint:errcheck,gosec // ignore error
	os.Setenv("TZ", cfg.GetString("app.tz"))

	a.config = cfg
}

func (a *App) initInstrument() {
	ins, err := instrument.New(context.Background(), &instrument.Config{
		Enabled:          a.config.GetBool("instrument.enabled"),
		ServiceName:      a.config.GetString("instrument.service_name"),
		ServiceVersion:   a.config.GetString("instrument.service_version"),
		Environment:      a.config.GetString("instrument.env"),
		OTLPEndpoint:     a.config.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       a.config.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: a.config.GetFloat64("instrument.trace_sample_ratio"),
		MetricsInterval:  a.config.GetSecond("instrument.metric_interval_seconds"),
		LogLevel:         a.config.GetString("instrument.log_level"),
		MaskFields:       a.config.GetArray("instrument.log_mask_fields"),
	})
	if err != nil {
		slog.Error("failed to init instrumentation", "error", err)
		os.Exit(1)
	}
	a.ins = ins
}

func (a *App) initLibraries() {
	a.clock = clock.New()
	a.uuid = uid.NewUUID()
	a.goroutine = goroutine.NewManager(a.config.GetInt("app.server.max_goroutine"))

	validator, err := validator.NewV10Validator()
	if err != nil {
		slog.Error("failed to init validation v10 validator", "error", err)
		os.Exit(1)
	}
	a.validator = validator

	snow, err := uid.NewSnowflake()
	if err != nil {
		slog.Error("failed to init uid number snowflake", "error", err)
		os.Exit(1)
	}
	a.uid = snow
}

// initAuth picks the bearer token verifier. oidc verifies identity provider
// ID tokens; hmac verifies locally signed tokens for development and tests.
func (a *App) initAuth() {
	switch driver := strings.ToLower(strings.TrimSpace(a.config.GetString("auth.driver"))); driver {
	case AuthDriverOIDC:
		ctx, cancel := context.WithTimeout(a.ctx, 10*time.Second)
		defer cancel()

		verifier, err := jwt.NewOIDC(ctx, jwt.OIDCConfig{
			Issuer:   a.config.GetString("auth.oidc.issuer"),
			Audience: a.config.GetString("auth.oidc.audience"),
		})
		if err != nil {
			slog.Error("failed to init oidc verifier", "error", err)
			os.Exit(1)
		}
		a.jwt = verifier

	case AuthDriverHMAC:
		verifier, err := jwt.NewSymmetric(jwt.SymmetricConfig{
			Secret:    []byte(a.config.GetString("auth.hmac.secret")),
			Issuer:    a.config.GetString("auth.hmac.issuer"),
			Audiences: a.config.GetArray("auth.hmac.audiences"),
			TTL:       a.config.GetMinute("auth.hmac.ttl_minutes"),
			Clock:     a.clock,
		})
		if err != nil {
			slog.Error("failed to init hmac verifier", "error", err)
			os.Exit(1)
		}
		a.jwt = verifier

	default:
		slog.Error("unknown auth driver", "driver", driver)
		os.Exit(1)
	}
}

func (a *App) initDatabase() {
	dsn := a.config.GetString("database.url")

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		slog.Error("failed to parse DB connection string.", "error", err)
		os.Exit(1)
	}

	config.MaxConns = a.config.GetInt32("database.pool.max_conns")
	config.MinConns = a.config.GetInt32("database.pool.min_conns")
	config.MaxConnLifetime = a.config.GetSecond("database.pool.max_conn_lifetime_seconds")
	config.MaxConnIdleTime = a.config.GetSecond("database.pool.max_conn_idle_seconds")
	config.HealthCheckPeriod = a.config.GetSecond("database.pool.health_check_period_seconds")

	pool, err := pgxpool.NewWithConfig(a.ctx, config)
	if err != nil {
		slog.Error("failed to create DB connection pool", "error", err)
		os.Exit(1)
	}

	if err := a.ping("database", pool.Ping); err != nil {
		slog.Error("failed to ping DB", "error", err)
		os.Exit(1)
	}

	if a.config.GetBool("database.migrate") {
		if err := migration.Up(dsn); err != nil {
			slog.Error("failed to migrate DB", "error", err)
			os.Exit(1)
		}
	}

	a.dbConn = pool
}

// initCache connects to redis when redis.url is set. Without it the OTP
// store must be postgres and rate limiting stays off.
func (a *App) initCache() {
	url := strings.TrimSpace(a.config.GetString("redis.url"))
	if url == "" {
		slog.Info("redis not configured")
		return
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		slog.Error("failed to parse redis url", "error", err)
		os.Exit(1)
	}

	rdb := redis.NewClient(opt)

	if err := a.ping("redis", func(ctx context.Context) error { return rdb.Ping(ctx).Err() }); err != nil {
		slog.Error("failed to init redis", "error", err)
		os.Exit(1)
	}

	a.cacheConn = rdb
}

// ping retries fn with exponential backoff for up to five attempts.
func (a *App) ping(name string, fn func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(4, retry.NewExponential(500*time.Millisecond))

	return retry.Do(a.ctx, backoff, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		if err := fn(pingCtx); err != nil {
			slog.Warn("ping failed, retrying", "name", name, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
}

func (a *App) initMail() {
	mail, err := mail.NewSMTP(mail.SMTPConfig{
		Host:     a.config.GetString("mail.host"),
		Port:     a.config.GetInt("mail.port"),
		Username: a.config.GetString("mail.username"),
		Password: a.config.GetString("mail.password"),
		From:     a.config.GetString("mail.from"),
		TLS:      a.config.GetString("mail.tls"),
	})
	if err != nil {
		slog.Error("failed to init mail", "error", err)
		os.Exit(1)
	}

	a.mail = mail
}

// initIDP builds the identity provider admin client used by the account
// module. Credentials come from a file or base64 JSON; an endpoint override
// with without_auth targets an emulator.
func (a *App) initIDP() {
	if !a.config.GetBool("modules.account.enabled") {
		return
	}

	var opts []option.ClientOption
	if a.config.GetBool("idp.without_auth") {
		opts = append(opts, option.WithoutAuthentication())
	}
	if v := strings.TrimSpace(a.config.GetString("idp.credentials_file")); v != "" {
		// #nosec G304 -- path is from trusted config file.
		credsJSON, err := os.ReadFile(v)
		if err != nil {
			slog.Error("failed to read idp credentials file", "error", err)
			os.Exit(1)
		}
		creds, err := google.CredentialsFromJSON(a.ctx, credsJSON, identitytoolkit.CloudPlatformScope)
		if err != nil {
			slog.Error("failed to parse idp credentials file", "error", err)
			os.Exit(1)
		}
		opts = append(opts, option.WithCredentials(creds))
	}
	if v := a.config.GetBinary("idp.credentials_json"); len(v) > 0 {
		creds, err := google.CredentialsFromJSON(a.ctx, v, identitytoolkit.CloudPlatformScope)
		if err != nil {
			slog.Error("failed to parse idp credentials json", "error", err)
			os.Exit(1)
		}
		opts = append(opts, option.WithCredentials(creds))
	}
	if v := strings.TrimSpace(a.config.GetString("idp.endpoint")); v != "" {
		opts = append(opts, option.WithEndpoint(v))
	}
	if v := strings.TrimSpace(a.config.GetString("idp.project_id")); v != "" {
		opts = append(opts, option.WithQuotaProject(v))
	}

	client, err := idp.New(a.ctx, a.ins, opts...)
	if err != nil {
		slog.Error("failed to init idp client", "error", err)
		os.Exit(1)
	}

	a.idp = client
}

func (a *App) initCasbin() {
	e, err := authz.New()
	if err != nil {
		slog.Error("failed to init casbin", "error", err)
		os.Exit(1)
	}

	a.casbin = e
}

func (a *App) initHTTPServer() {
	a.router = router.NewRouter(router.Config{
		Config:     a.config,
		UUID:       a.uuid,
		JWT:        a.jwt,
		Instrument: a.ins,
	})

	a.router.GET("/health", a.health)

	routerWithCORS := cors.New(cors.Options{
		AllowedOrigins: a.config.GetArray("app.server.cors"),
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{router.HeaderCorrelationID, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
	}).Handler(a.router)

	a.httpServer = &http.Server{
		Addr:              a.config.GetString("app.server.http.address"),
		Handler:           routerWithCORS,
		ReadTimeout:       a.config.GetSecond("app.server.http.read_timeout_seconds"),
		ReadHeaderTimeout: a.config.GetSecond("app.server.http.read_header_timeout_seconds"),
		WriteTimeout:      a.config.GetSecond("app.server.http.write_timeout_seconds"),
		IdleTimeout:       a.config.GetSecond("app.server.http.idle_timeout_seconds"),
	}
}

func (a *App) initScheduler() {
	opts := []scheduler.Option{scheduler.WithJobTimeout(time.Minute)}
	if tz := a.config.GetString("app.tz"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			slog.Error("failed to load scheduler location", "tz", tz, "error", err)
			os.Exit(1)
		}
		opts = append(opts, scheduler.WithLocation(loc))
	}

	a.scheduler = scheduler.New(a.goroutine, opts...)
}

func (a *App) initClosers() {
	a.closers = []struct {
		name string
		fn   func(context.Context) error
	}{
		{
			name: "Instrument",
			fn: func(ctx context.Context) error {
				return a.ins.Shutdown(ctx)
			},
		},
		{
			name: "Mail",
			fn: func(context.Context) error {
				return a.mail.Close()
			},
		},
		{
			name: "Redis",
			fn: func(context.Context) error {
				if a.cacheConn == nil {
					return nil
				}
				return a.cacheConn.Close()
			},
		},
		{
			name: "Database",
			fn: func(context.Context) error {
				a.dbConn.Close()

				return nil
			},
		},
		{
			name: "Config",
			fn: func(context.Context) error {
				return a.config.Close()
			},
		},
	}
}
