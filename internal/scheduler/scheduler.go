package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sefazor/omnitemplates-backend/internal/models"
	"go.uber.org/zap"
)

const cleanupTimeout = 10 * time.Minute

type CleanupRunner interface {
	Run(ctx context.Context) (*models.CleanupResult, error)
}

type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
}

// cronLogger cron'un iç loglarını zap'e yönlendirir.
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}

func New(logger *zap.Logger) *Scheduler {
	logger = logger.Named("scheduler")
	cl := cronLogger{log: logger.Sugar()}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger: logger,
	}
}

// AddCleanup boş schedule işi devre dışı bırakır.
func (s *Scheduler) AddCleanup(schedule string, runner CleanupRunner) error {
	if schedule == "" {
		s.logger.Info("cleanup schedule disabled")
		return nil
	}

	_, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
		defer cancel()

		if _, err := runner.Run(ctx); err != nil {
			s.logger.Error("scheduled cleanup failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid cleanup schedule %q: %w", schedule, err)
	}

	s.logger.Info("cleanup scheduled", zap.String("schedule", schedule))
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop çalışan işlerin bitmesini bekler.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out")
	}
}
