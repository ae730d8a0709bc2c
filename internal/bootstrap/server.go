package bootstrap

import (
	"easyncd/config"
	"easyncd/infra/middleware"
	"easyncd/pkg/logger"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
)

// NewServer builds the fiber app serving the EAS endpoint (spec §6): the
// global middleware stack, then the command-gated chain (auth, rate
// limit, provisioning) in front of the single POST route, plus the
// unauthenticated OPTIONS discovery route.
func NewServer(cfg *config.Config) (*fiber.App, func(), error) {
	logLevel := logger.LevelInfo
	if cfg.Debug {
		logLevel = logger.LevelDebug
	}
	logger.Init(logger.Config{
		Level:   logLevel,
		Service: "easyncd",
		Redact:  cfg.RedactLogs,
	})

	deps, cleanup, err := NewDependencies(cfg)
	if err != nil {
		logger.Default().WithError(err).Error("dependencies_init_failed")
		return nil, func() {}, err
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          middleware.ErrorHandler(),
		DisableStartupMessage: !cfg.Debug,
		StrictRouting:         false,
		CaseSensitive:         false,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		BodyLimit:             10 * 1024 * 1024,
	})

	app.Use(middleware.Recover())
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger())

	const easPath = "/Microsoft-Server-ActiveSync"
	app.Options(easPath, deps.Handlers.Options)
	app.Post(easPath,
		middleware.BasicAuth(deps.Store),
		middleware.RateLimit(deps.RateLimiter),
		middleware.ProvisioningGate(deps.ProvisionService),
		deps.Handlers.Dispatch,
	)

	logger.Default().Info("server_initialized")
	return app, cleanup, nil
}
