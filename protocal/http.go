package protocal

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"creatorlink-shell/configs"
	httpAdapter "creatorlink-shell/internal/adapters/input/http"
	"creatorlink-shell/internal/adapters/output/authapi"
	"creatorlink-shell/internal/adapters/output/memory"
	"creatorlink-shell/internal/adapters/output/postgres"
	"creatorlink-shell/internal/application"
	"creatorlink-shell/internal/domain"
	"creatorlink-shell/internal/ports/output"
	"creatorlink-shell/pkg/database_driver/gorm"

	swagger "github.com/arsmn/fiber-swagger/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	gormio "gorm.io/gorm"
)

// newApp builds the fiber app with the middleware every route shares. A
// panicking handler answers 500 instead of taking the process down.
func newApp(debug bool) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: !debug})
	app.Use(recover.New(recover.Config{EnableStackTrace: debug}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept,Authorization",
	}))
	return app
}

// ServeHTTP func
func ServeHTTP() error {
	fs := pflag.NewFlagSet("creatorlink-shell", pflag.ExitOnError)
	configs.BindFlags(fs)
	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}
	cfg, err := configs.LoadFlags(fs)
	if err != nil {
		return err
	}
	if cfg.App.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logrus.Info("Environment: ", cfg.App.Env)

	app := newApp(cfg.App.Debug)

	// Output adapter (diagnostics journal)
	var (
		journal output.EventJournal
		db      *gormio.DB
	)
	switch cfg.Journal.Driver {
	case "postgres":
		dbConGorm, err := gorm.ConnectToPostgreSQL(cfg.Postgres)
		if err != nil {
			return err
		}
		db = dbConGorm.Postgres
		repo, err := postgres.NewEventRepository(db)
		if err != nil {
			gorm.DisconnectPostgres(db)
			return err
		}
		journal = repo
	default:
		journal = memory.NewEventJournal(cfg.Journal.Capacity)
	}

	// Wire up the hexagonal architecture layers
	// Output adapters (backend auth API, session store)
	authClient, err := authapi.NewAuthClientAdapter(cfg.Backend)
	if err != nil {
		return err
	}
	store := memory.NewMemorySessionStore()

	// Application services (use cases)
	cache, err := application.NewQueryCache(store, authClient, cfg.Session.StaleAfter, cfg.Session.EvictAfter,
		application.WithCacheJournal(journal))
	if err != nil {
		return err
	}
	resolver := application.NewSessionResolver(cache, authClient,
		application.WithResolverJournal(journal),
		application.WithPendingTimeout(cfg.Session.PendingTimeout))
	gate := application.NewRouteGate(nil, cfg.Session.PresentationTimeout)
	resolver.Subscribe(gate.Observe)
	resolver.Subscribe(func(s domain.ResolutionState) {
		logrus.WithFields(logrus.Fields{
			"phase":         s.Phase().String(),
			"is_pending":    s.IsPending,
			"has_timed_out": s.HasTimedOut,
		}).Debug("Session state")
	})
	diagnostics := application.NewDiagnosticsService(journal)

	// Input adapter (HTTP handler)
	hdl := httpAdapter.New(resolver, gate, diagnostics, db)

	app.Get("/swagger/*", swagger.HandlerDefault) // default
	hdl.Register(app)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		for range c {
			logrus.Println("Gracefull shut down ...")
			if err := app.Shutdown(); err != nil {
				logrus.Println("Error when shutdown server: ", err)
			}
			if db != nil {
				gorm.DisconnectPostgres(db)
			}
		}
	}()

	resolver.Resolve(context.Background())

	logrus.Println("Listerning on port: ", cfg.App.Port)
	return app.Listen(":" + cfg.App.Port)
}
