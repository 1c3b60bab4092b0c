package job

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"forum-api/internal/repository"
)

// CleanupJob clears expired password reset tokens and old read notifications
type CleanupJob struct {
	userRepo         repository.UserRepository
	notificationRepo repository.NotificationRepository
	retention        time.Duration
	timeout          time.Duration
	now              func() time.Time
	logger           *zap.Logger
}

// NewCleanupJob creates a new CleanupJob instance.
// Read notifications older than retentionDays are removed; zero keeps them forever.
func NewCleanupJob(
	userRepo repository.UserRepository,
	notificationRepo repository.NotificationRepository,
	retentionDays int,
	logger *zap.Logger,
) *CleanupJob {
	return &CleanupJob{
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		retention:        time.Duration(retentionDays) * 24 * time.Hour,
		timeout:          time.Minute,
		now:              time.Now,
		logger:           logger,
	}
}

// Run executes the cleanup job. It satisfies cron.Job.
func (j *CleanupJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	now := j.now().UTC()
	j.logger.Info("Starting cleanup job")

	tokens, err := j.userRepo.ClearExpiredResetTokens(ctx, now)
	if err != nil {
		j.logger.Error("Failed to clear expired reset tokens", zap.Error(err))
	}

	var notifications int64
	if j.retention > 0 {
		notifications, err = j.notificationRepo.DeleteReadBefore(ctx, now.Add(-j.retention))
		if err != nil {
			j.logger.Error("Failed to delete old read notifications", zap.Error(err))
		}
	}

	j.logger.Info("Cleanup job completed",
		zap.Int64("reset_tokens_cleared", tokens),
		zap.Int64("notifications_deleted", notifications),
	)
}

// NewScheduler registers the cleanup job on spec (standard cron syntax or @every).
// The caller starts and stops the returned scheduler.
func NewScheduler(spec string, cleanup *CleanupJob, logger *zap.Logger) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(
		cron.Recover(cron.DefaultLogger),
		cron.SkipIfStillRunning(cron.DefaultLogger),
	))
	if _, err := c.AddJob(spec, cleanup); err != nil {
		return nil, err
	}
	logger.Info("Cleanup job scheduled", zap.String("schedule", spec))
	return c, nil
}
