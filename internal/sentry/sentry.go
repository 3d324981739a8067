package sentry

import (
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/comanda/comanda/internal/config"
	"github.com/comanda/comanda/internal/logger"
)

// Service reports the failure classes that warrant operator attention:
// invalid status transitions and integrity failures on credentials that were
// previously valid. Signature rejections and duplicates are routine and are
// never escalated here.
type Service struct {
	cfg    *config.Configuration
	logger *logger.Logger
}

// NewSentryService creates a new Sentry service
func NewSentryService(cfg *config.Configuration, logger *logger.Logger) *Service {
	return &Service{
		cfg:    cfg,
		logger: logger,
	}
}

// Start initializes the Sentry SDK when enabled
func (s *Service) Start() error {
	if !s.cfg.Sentry.Enabled {
		s.logger.Info("sentry is disabled")
		return nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              s.cfg.Sentry.DSN,
		Environment:      s.cfg.Sentry.Environment,
		TracesSampleRate: s.cfg.Sentry.SampleRate,
	})
	if err != nil {
		s.logger.Errorw("failed to initialize sentry", "error", err)
		return err
	}

	s.logger.Infow("sentry initialized",
		"environment", s.cfg.Sentry.Environment,
		"sample_rate", s.cfg.Sentry.SampleRate,
	)
	return nil
}

// Stop flushes buffered events before shutdown
func (s *Service) Stop() {
	if s.cfg.Sentry.Enabled {
		sentry.Flush(2 * time.Second)
	}
}

// CaptureException captures an error in Sentry
func (s *Service) CaptureException(err error) {
	if !s.cfg.Sentry.Enabled {
		return
	}
	sentry.CaptureException(err)
}
