package catalog

import (
	"context"
	"time"

	"github.com/pippoche/svbot/pkg/logger"
)

// Scheduler fuerza un refresh completo a una hora local fija cada día,
// independiente de la ventana de frescura, para acotar la obsolescencia del
// snapshot. Es una tarea cancelable: vive hasta que el contexto se cierra.
type Scheduler struct {
	cache *Cache
	hour  int // hora local del refresh diario (0-23)
	log   *logger.Logger
	now   func() time.Time
}

// NewScheduler construye el planificador del refresh diario.
func NewScheduler(cache *Cache, hour int, log *logger.Logger) *Scheduler {
	return &Scheduler{cache: cache, hour: hour, log: log, now: time.Now}
}

// Run bloquea hasta que ctx se cancele, disparando un refresh forzado en cada
// marca horaria. Un refresh fallido se registra y se reintenta al día
// siguiente; nunca tumba el proceso.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		wait := time.Until(s.nextRun())
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		if err := s.cache.Refresh(ctx, true); err != nil {
			s.log.Error().Err(err).Msg("refresh diario fallido, se conserva el snapshot anterior")
		} else {
			s.log.Info().Int("hour", s.hour).Msg("refresh diario completado")
		}
	}
}

func (s *Scheduler) nextRun() time.Time {
	now := s.now()
	next := time.Date(now.Year(), now.Month(), now.Day(), s.hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
