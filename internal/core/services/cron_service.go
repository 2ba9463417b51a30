package services

import (
	"context"
	"fmt"
	"time"

	"mfs-service/internal/adapters/persistence/repositories"
	"mfs-service/internal/core/domain"
	"mfs-service/internal/pkg/metrics"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const digestTimeout = 30 * time.Second

// CronService runs scheduled account jobs
type CronService struct {
	cron     *cron.Cron
	userRepo repositories.UserRepository
	metrics  *metrics.Metrics
	log      *zap.Logger
	schedule string
}

// NewCronService creates a cron service with the pending digest on schedule
func NewCronService(userRepo repositories.UserRepository, schedule string, m *metrics.Metrics, log *zap.Logger) *CronService {
	log = log.Named("cron")
	cl := cronLogger{log.Sugar()}

	return &CronService{
		cron:     cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		userRepo: userRepo,
		metrics:  m,
		log:      log,
		schedule: schedule,
	}
}

// Start registers the jobs and starts the scheduler
func (s *CronService) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.runPendingDigest); err != nil {
		return fmt.Errorf("invalid pending digest schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.log.Info("CronService started", zap.String("pending_digest", s.schedule))
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("CronService stopped")
}

func (s *CronService) runPendingDigest() {
	ctx, cancel := context.WithTimeout(context.Background(), digestTimeout)
	defer cancel()

	if _, err := s.PendingDigest(ctx); err != nil {
		s.log.Error("Pending digest failed", zap.Error(err))
	}
}

// PendingDigest counts accounts awaiting activation and publishes the count
func (s *CronService) PendingDigest(ctx context.Context) (int64, error) {
	pending, err := s.userRepo.Count(ctx, domain.UserFilter{Status: domain.StatusPending})
	if err != nil {
		return 0, err
	}

	s.metrics.PendingAccounts.Set(float64(pending))
	s.log.Info("Pending accounts digest", zap.Int64("pending", pending))
	return pending, nil
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
