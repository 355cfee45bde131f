package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/RafaelPasos/PaystubGen-App/internal/application/auth"
	"github.com/RafaelPasos/PaystubGen-App/internal/docstore"
	"github.com/RafaelPasos/PaystubGen-App/internal/docstore/memory"
	"github.com/RafaelPasos/PaystubGen-App/internal/docstore/postgres"
	infrapdf "github.com/RafaelPasos/PaystubGen-App/internal/infrastructure/pdf"
	httpRouter "github.com/RafaelPasos/PaystubGen-App/internal/interfaces/http"
	"github.com/RafaelPasos/PaystubGen-App/internal/scheduler"
	"github.com/RafaelPasos/PaystubGen-App/internal/sync"
	"github.com/RafaelPasos/PaystubGen-App/pkg/config"
	"github.com/RafaelPasos/PaystubGen-App/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Backend).
		Msg("iniciando aplicación")

	ctx := context.Background()
	bus := docstore.NewErrorBus()

	// Oyente único de diagnóstico: todos los rechazos del almacén pasan por
	// aquí, los call-sites no manejan la presentación del fallo.
	bus.Subscribe(func(e *docstore.StoreError) {
		log.Warn().
			Str("op", string(e.Operation)).
			Str("path", e.Path).
			Err(e.Err).
			Msg("operación del almacén rechazada")
	})

	var store docstore.Store
	switch cfg.Store.Backend {
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		pgStore, err := postgres.NewStore(ctx, pool, bus, log)
		if err != nil {
			log.Fatal().Err(err).Msg("inicializar almacén de documentos")
		}
		defer pgStore.Close()
		store = pgStore
	default:
		store = memory.New(bus)
	}

	provider := sync.NewProvider(store, bus, log, sync.Options{})
	provider.Start(ctx)
	defer provider.Stop()

	sched, err := scheduler.New(cfg.Store.BackfillCron, provider, log)
	if err != nil {
		log.Fatal().Err(err).Msg("configurar scheduler")
	}
	sched.Start()
	defer sched.Stop()

	gate := auth.NewAdminGate(cfg.Admin, cfg.JWT)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "PaystubGen API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "loading": provider.Loading()})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Provider:  provider,
		Sheets:    infrapdf.NewPaySheetGenerator(),
		Gate:      gate,
		JWTSecret: cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
