package poller

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Poller calls pollMethod every interval until the context is cancelled or Stop is called.
// A failing poll is logged and the next tick runs as usual.
type Poller struct {
	name       string
	interval   time.Duration
	quit       chan struct{}
	pollMethod func(ctx context.Context) error
}

func NewPoller(name string, interval time.Duration, pollMethod func(ctx context.Context) error) *Poller {
	return &Poller{
		name:       name,
		interval:   interval,
		quit:       make(chan struct{}),
		pollMethod: pollMethod,
	}
}

func (p *Poller) Start(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	logger := log.Ctx(ctx).With().Str("poller", p.name).Logger()
	logger.Info().Msgf("Starting poller with interval %s", p.interval)

	for {
		select {
		case <-ticker.C:
			logger.Debug().Msg("Executing poll method")
			if err := p.pollMethod(ctx); err != nil {
				logger.Error().Err(err).Msg("Error polling")
			} else {
				logger.Debug().Msg("Poll method executed successfully")
			}
		case <-ctx.Done():
			logger.Info().Msg("Poller stopped due to context cancellation")
			return
		case <-p.quit:
			logger.Info().Msg("Poller stopped")
			return
		}
	}
}

func (p *Poller) Stop() {
	close(p.quit)
}
