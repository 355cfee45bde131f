// Siembra explícita del catálogo por defecto contra PostgreSQL. Idempotente:
// si ya existen equipos no escribe nada. Pensado para aprovisionar un entorno
// nuevo sin depender de la siembra automática del arranque del API.
package main

import (
	"context"
	"time"

	"github.com/RafaelPasos/PaystubGen-App/internal/docstore"
	"github.com/RafaelPasos/PaystubGen-App/internal/docstore/postgres"
	"github.com/RafaelPasos/PaystubGen-App/internal/sync"
	"github.com/RafaelPasos/PaystubGen-App/pkg/config"
	"github.com/RafaelPasos/PaystubGen-App/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "info"})
	log.Info().Str("db", cfg.DB.DBName).Msg("siembra del catálogo por defecto")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	bus := docstore.NewErrorBus()
	store, err := postgres.NewStore(ctx, pool, bus, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacén de documentos")
	}
	defer store.Close()

	seeded, err := sync.NewSeeder(store, nil, log).Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("siembra fallida")
	}
	if seeded {
		log.Info().Msg("catálogo por defecto sembrado")
	} else {
		log.Info().Msg("ya existen equipos; no se sembró nada")
	}

	count, quantity, err := store.ProductionTotals(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("totales de producción")
	}
	log.Info().
		Int64("entries", count).
		Str("quantity", quantity.String()).
		Msg("estado de la producción registrada")
}
