// Package jobs runs the periodic background work of the daemon.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/lifehub/studycore/internal/domain"
	"github.com/lifehub/studycore/internal/importer"
	"github.com/lifehub/studycore/internal/logger"
	"github.com/lifehub/studycore/internal/retention"
)

type Summarizer interface {
	Summarize(ctx context.Context, userID string) ([]retention.Summary, error)
}

type DueCounter interface {
	DueCards(ctx context.Context, scope domain.Scope, asOf time.Time) ([]domain.Flashcard, error)
}

type Syncer interface {
	SyncAll(ctx context.Context) ([]importer.Report, error)
}

type Config struct {
	UserID          string
	SummaryInterval time.Duration
	SyncInterval    time.Duration
}

// Jobs schedules the retention digest and the deck source sync. A zero interval
// disables the job.
type Jobs struct {
	scheduler  *gocron.Scheduler
	cfg        Config
	summarizer Summarizer
	due        DueCounter
	syncer     Syncer
	log        *logger.Logger
}

func New(cfg Config, summarizer Summarizer, due DueCounter, syncer Syncer, log *logger.Logger) *Jobs {
	if log == nil {
		log = logger.Nop()
	}
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Jobs{
		scheduler:  s,
		cfg:        cfg,
		summarizer: summarizer,
		due:        due,
		syncer:     syncer,
		log:        log.With("component", "jobs"),
	}
}

// Start registers the jobs and runs them in the background. Each job runs once
// immediately, then on its interval.
func (j *Jobs) Start(ctx context.Context) error {
	if j.cfg.SummaryInterval > 0 {
		if _, err := j.scheduler.Every(j.cfg.SummaryInterval).Do(func() { j.RunDigest(ctx) }); err != nil {
			return fmt.Errorf("failed to schedule retention digest: %w", err)
		}
	}
	if j.cfg.SyncInterval > 0 {
		if _, err := j.scheduler.Every(j.cfg.SyncInterval).Do(func() { j.RunDeckSync(ctx) }); err != nil {
			return fmt.Errorf("failed to schedule deck sync: %w", err)
		}
	}
	j.scheduler.StartAsync()
	j.log.Info("jobs started", "summary_interval", j.cfg.SummaryInterval, "sync_interval", j.cfg.SyncInterval)
	return nil
}

// Stop terminates all scheduled jobs.
func (j *Jobs) Stop() {
	j.scheduler.Stop()
	j.log.Info("jobs stopped")
}

// RunDigest logs the retention summary of every topic and the number of cards due.
func (j *Jobs) RunDigest(ctx context.Context) {
	summaries, err := j.summarizer.Summarize(ctx, j.cfg.UserID)
	if err != nil {
		j.log.Error("retention summary failed", "user_id", j.cfg.UserID, "error", err)
		return
	}
	needsReview := 0
	for _, s := range summaries {
		if s.Topic.Status == domain.TopicNeedsReview {
			needsReview++
		}
		j.log.Info("topic retention",
			"topic_id", s.Topic.ID,
			"topic", s.Topic.Name,
			"status", s.Topic.Status,
			"average", s.Average,
			"samples", s.Samples,
			"trend", s.Trend,
		)
	}

	due, err := j.due.DueCards(ctx, domain.AllScope{UserID: j.cfg.UserID}, time.Now())
	if err != nil {
		j.log.Error("due card count failed", "user_id", j.cfg.UserID, "error", err)
		return
	}
	j.log.Info("study digest", "user_id", j.cfg.UserID, "topics", len(summaries), "needs_review", needsReview, "due_cards", len(due))
}

// RunDeckSync re-imports every deck with a source.
func (j *Jobs) RunDeckSync(ctx context.Context) {
	reports, err := j.syncer.SyncAll(ctx)
	if err != nil {
		j.log.Warn("deck sync finished with errors", "synced", len(reports), "error", err)
		return
	}
	j.log.Info("deck sync complete", "synced", len(reports))
}
