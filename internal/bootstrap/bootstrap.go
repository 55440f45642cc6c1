package bootstrap

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/studycrew/web/internal/app/client"
	appControllers "github.com/studycrew/web/internal/app/controllers"
	appRoutes "github.com/studycrew/web/internal/app/routes"
	"github.com/studycrew/web/internal/app/session"
	"github.com/studycrew/web/internal/app/views"
	"github.com/studycrew/web/internal/config"
	appMiddleware "github.com/studycrew/web/internal/middleware"
	pkgAuth "github.com/studycrew/web/internal/pkg/auth"
	"github.com/studycrew/web/internal/pkg/email"
	"github.com/studycrew/web/internal/pkg/helpers"
	"github.com/studycrew/web/internal/pkg/logger"
	"github.com/studycrew/web/internal/pkg/markdown"
	"github.com/studycrew/web/internal/pkg/validation"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Backend             *client.Client
	Signer              *pkgAuth.ValueSigner
	EmailSender         email.Sender
	PageController      *appControllers.PageController
	AuthController      *appControllers.AuthController
	DashboardController *appControllers.DashboardController
	AuthMiddleware      *appMiddleware.AuthMiddleware
	Flasher             *appMiddleware.Flasher
	Logger              zerolog.Logger
}

// LoadConfigAndSetupLogger loads .env, the configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	dotEnvLoaded, err := config.LoadDotEnv(".env")
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load .env file")
		return nil, zerolog.Logger{}, err
	}

	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err // Return zero logger and the error
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger // Get the configured global logger
	lgr.Info().
		Str("logLevel", string(logLevel)).
		Str("logFormat", cfg.Logging.Format).
		Bool("dotEnv", dotEnvLoaded).
		Msg("Logger configured")
	return cfg, lgr, nil
}

// randomKey returns n random bytes. Used in development when no key is configured,
// which means sessions do not survive a restart.
func randomKey(n int) ([]byte, error) {
	key := make([]byte, n)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return key, nil
}

// BuildDependencies initializes the backend client, session signing and controllers.
func BuildDependencies(cfg *config.Config, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	var err error
	deps.Backend, err = client.New(client.Config{
		BaseURL: cfg.Backend.BaseURL,
		Timeout: helpers.ParseDuration(cfg.Backend.Timeout, 10*time.Second),
	}, logger.Component("backend"))
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to create backend client")
		return nil, fmt.Errorf("failed to create backend client: %w", err)
	}

	secret := cfg.Session.Secret
	if secret == "" {
		key, err := randomKey(32)
		if err != nil {
			return nil, err
		}
		secret = hex.EncodeToString(key)
		lgr.Warn().Msg("SESSION_SECRET not set - using a random secret, sessions will not survive a restart")
	}

	maxAge := helpers.ParseDuration(cfg.Session.MaxAge, 720*time.Hour)
	deps.Signer = pkgAuth.NewValueSigner(pkgAuth.SignerConfig{
		SecretKey:   secret,
		TokenIssuer: cfg.Session.Issuer,
		TTL:         maxAge,
	})

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(
		deps.Signer,
		deps.Backend,
		session.CookieOptions{Secure: cfg.Session.SecureCookies, MaxAge: maxAge},
		logger.Component("session"),
	)
	deps.Flasher = appMiddleware.NewFlasher(deps.Signer, cfg.Session.SecureCookies, logger.Component("flash"))

	deps.EmailSender = email.NewSender(email.Config{
		ResendAPIKey: cfg.Email.ResendAPIKey,
		From:         cfg.Email.From,
	}, lgr)

	deps.PageController, err = appControllers.NewPageController(
		views.Content,
		markdown.New(),
		deps.EmailSender,
		cfg.Email.ContactTo,
		logger.Component("pages"),
	)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to prepare content pages")
		return nil, err
	}

	deps.AuthController = appControllers.NewAuthController(logger.Component("auth"))
	deps.DashboardController = appControllers.NewDashboardController(deps.Backend, logger.Component("dashboard"))

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware, templates and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	validation.Register()

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestID(), appMiddleware.RequestLogger(lgr))

	tmpl, err := views.Templates(appControllers.Funcs())
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	// Assets are served before the session middlewares run
	router.StaticFS("/static", views.Static())

	router.Use(deps.Flasher.Middleware(), deps.AuthMiddleware.Session())

	appRoutes.SetupRouter(router,
		deps.PageController,
		deps.AuthController,
		deps.DashboardController,
		deps.AuthMiddleware,
	)

	return router, nil
}

// WrapHandler adds CSRF protection and security headers around the router.
func WrapHandler(cfg *config.Config, router http.Handler, lgr zerolog.Logger) (http.Handler, error) {
	var key []byte
	if cfg.CSRF.Key != "" {
		var err error
		if key, err = cfg.CSRFKey(); err != nil {
			return nil, err
		}
	} else {
		var err error
		if key, err = randomKey(32); err != nil {
			return nil, err
		}
		lgr.Warn().Msg("CSRF_KEY not set - using a random key")
	}

	return appMiddleware.Chain(router,
		appMiddleware.CSRF(appMiddleware.CSRFConfig{
			Key:            key,
			Secure:         cfg.Session.SecureCookies,
			TrustedOrigins: cfg.CSRF.TrustedOrigins,
			Logger:         logger.Component("csrf"),
		}),
		appMiddleware.SecurityHeaders,
	), nil
}
