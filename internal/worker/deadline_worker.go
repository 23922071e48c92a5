package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/primeivy/portal-backend/internal/service"
)

// DeadlinePollInterval is the 1 Hz cadence at which session deadlines are
// checked. Transitions inside a session fire exactly once regardless of
// polling frequency.
const DeadlinePollInterval = 1 * time.Second

// DeadlineWorker polls every active exam session so module timers and
// break countdowns fire even when a student's client goes quiet.
type DeadlineWorker struct {
	sessions *service.SessionService
	log      zerolog.Logger
}

func NewDeadlineWorker(sessions *service.SessionService, log zerolog.Logger) *DeadlineWorker {
	return &DeadlineWorker{
		sessions: sessions,
		log:      log.With().Str("component", "deadline_worker").Logger(),
	}
}

func (w *DeadlineWorker) Start(ctx context.Context) {
	w.log.Info().Msg("DeadlineWorker started")

	ticker := time.NewTicker(DeadlinePollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("DeadlineWorker stopped")
			return
		case <-ticker.C:
			w.sessions.Tick()
		}
	}
}
