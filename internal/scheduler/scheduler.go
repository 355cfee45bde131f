// Package scheduler corre el pase periódico de mantenimiento de catálogos:
// equipos que quedaron sin ítems (altas a medias, rellenos fallidos) reciben
// su catálogo por defecto en el siguiente tick.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/RafaelPasos/PaystubGen-App/internal/sync"
	"github.com/RafaelPasos/PaystubGen-App/pkg/logger"
)

// Scheduler envuelve el cron del pase de catálogos.
type Scheduler struct {
	cron *cron.Cron
	log  *logger.Logger
}

// New programa el pase sobre el provider con la expresión cron dada. Una
// expresión vacía desactiva el scheduler (New devuelve uno inerte).
func New(spec string, provider *sync.Provider, log *logger.Logger) (*Scheduler, error) {
	c := cron.New()
	if spec != "" {
		_, err := c.AddFunc(spec, func() {
			log.Debug().Msg("pase periódico de catálogos")
			provider.BackfillCatalogs(context.Background())
		})
		if err != nil {
			return nil, fmt.Errorf("programar pase de catálogos: %w", err)
		}
	}
	return &Scheduler{cron: c, log: log}, nil
}

// Start arranca el cron en su propia goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("scheduler de catálogos iniciado")
}

// Stop detiene el cron y espera a que termine el pase en curso.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("scheduler de catálogos detenido")
}
