package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/social-services/internal/config"
	"github.com/spec-kit/social-services/internal/domain"
	"github.com/spec-kit/social-services/internal/service"
)

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}

// OfferLister is the part of the job offer service the digest needs.
type OfferLister interface {
	ListPublic(ctx context.Context, filter service.JobOfferListFilter) ([]domain.JobOffer, error)
}

// DigestSender delivers the offer digest.
type DigestSender interface {
	SendJobDigest(ctx context.Context, offers []domain.JobOffer) (int, error)
}

const digestPageSize = 100

// JobDigest returns a job emailing public offers confirmed since the previous run.
func JobDigest(offers OfferLister, sender DigestSender, interval time.Duration, logger *zap.Logger) Job {
	since := time.Now()
	return Job{
		Name:     "job_offer_digest",
		Interval: interval,
		Run: func(ctx context.Context) error {
			runStarted := time.Now()
			cutoff := since
			var fresh []domain.JobOffer
			for offset := 0; ; offset += digestPageSize {
				page, err := offers.ListPublic(ctx, service.JobOfferListFilter{
					ConfirmedSince: &cutoff,
					Limit:          digestPageSize,
					Offset:         offset,
				})
				if err != nil {
					return err
				}
				fresh = append(fresh, page...)
				if len(page) < digestPageSize {
					break
				}
			}
			sent, err := sender.SendJobDigest(ctx, fresh)
			if err != nil {
				return err
			}
			since = runStarted
			logger.Info("job offer digest sent", zap.Int("offers", len(fresh)), zap.Int("recipients", sent))
			return nil
		},
	}
}

// TempCleanup returns a job deleting stale files from the configured temp directory.
func TempCleanup(cfg config.SchedulerConfig, logger *zap.Logger) Job {
	maxAge := cfg.Interval(cfg.TempFileMaxAgeMins)
	return Job{
		Name:     "temp_cleanup",
		Interval: cfg.Interval(cfg.CleanupIntervalMins),
		Run: func(ctx context.Context) error {
			removed, err := CleanupTempFiles(cfg.TempDir, maxAge, time.Now())
			if err != nil {
				return err
			}
			if removed > 0 {
				logger.Info("temp files removed", zap.String("dir", cfg.TempDir), zap.Int("count", removed))
			}
			return nil
		},
	}
}
