package services

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/GabKongroo/NothingSpecial/internal/events"
	"github.com/GabKongroo/NothingSpecial/internal/logger"
	"github.com/GabKongroo/NothingSpecial/internal/migration"
	"github.com/GabKongroo/NothingSpecial/internal/models"
	"github.com/GabKongroo/NothingSpecial/pkg/validation"
	"github.com/google/uuid"
)

var (
	ErrMigrationRunning = errors.New("a migration run is already in progress")
	ErrInvalidRunID     = errors.New("invalid run id")
)

// MigrationDeps are the collaborators of a migration run.
type MigrationDeps struct {
	Source       migration.Source
	RootID       string
	Store        migration.ObjectStore
	Transcoder   migration.Transcoder
	Catalog      migration.Catalog
	Layout       migration.Layout
	DefaultPrice float64
}

// ProgressReader returns the last snapshot of a run.
type ProgressReader interface {
	Get(ctx context.Context, runID string) (*migration.Progress, error)
}

type MigrationService struct {
	deps      MigrationDeps
	reporter  migration.Reporter
	progress  ProgressReader
	publisher events.Publisher
	auditor   Auditor
	running   atomic.Bool
}

func NewMigrationService(deps MigrationDeps, progress *ProgressStore, publisher events.Publisher, auditor Auditor) *MigrationService {
	s := &MigrationService{deps: deps, publisher: publisher, auditor: auditor}
	if progress != nil {
		s.reporter = progress
		s.progress = progress
	}
	if s.publisher == nil {
		s.publisher = events.NopPublisher{}
	}
	return s
}

// WithReporter adds a reporter that receives every snapshot alongside the
// progress store.
func (s *MigrationService) WithReporter(r migration.Reporter) *MigrationService {
	if s.reporter == nil {
		s.reporter = r
	} else {
		s.reporter = migration.MultiReporter{s.reporter, r}
	}
	return s
}

// Run executes a migration synchronously. An empty runID gets a generated
// one. Only one run may execute per process at a time.
func (s *MigrationService) Run(ctx context.Context, actor, runID string) (migration.Result, error) {
	if runID == "" {
		runID = uuid.New().String()
	}
	if !validation.ValidateRunID(runID) {
		return migration.Result{}, ErrInvalidRunID
	}
	if !s.running.CompareAndSwap(false, true) {
		return migration.Result{}, ErrMigrationRunning
	}
	defer s.running.Store(false)

	start := time.Now()
	walker := migration.NewWalker(s.deps.Source, s.deps.RootID)
	publisher := migration.NewPublisher(s.deps.Source, s.deps.Store, s.deps.Transcoder, s.deps.Layout)
	orchestrator := migration.NewOrchestrator(walker, publisher, s.deps.Store, s.deps.Catalog, migration.Options{
		DefaultPrice: s.deps.DefaultPrice,
		OnInsert: func(ctx context.Context, beat models.Beat) {
			_ = s.publisher.Publish(ctx, events.RoutingBeatCreated, events.BeatCreatedEvent{
				BeatID:     beat.ID,
				Title:      beat.Title,
				Genre:      beat.Genre,
				Mood:       beat.Mood,
				Price:      beat.Price,
				RunID:      runID,
				OccurredAt: time.Now().UTC(),
			})
		},
	})

	result := orchestrator.Run(ctx, runID, s.reporter)
	logger.Info("migration run finished",
		logger.String("run_id", runID),
		logger.Bool("success", result.Success),
		logger.Duration("took", time.Since(start)))

	if s.auditor != nil {
		_ = s.auditor.LogAction(ctx, actor, "run_migration", "migration", runID, map[string]interface{}{
			"success":  result.Success,
			"summary":  result.Summary,
			"inserted": result.Inserted,
			"skipped":  result.Skipped,
			"unlisted": result.Unlisted,
		}, "")
	}
	return result, nil
}

// Progress returns the last recorded snapshot of runID.
func (s *MigrationService) Progress(ctx context.Context, runID string) (*migration.Progress, error) {
	if s.progress == nil {
		return nil, ErrProgressNotFound
	}
	return s.progress.Get(ctx, runID)
}
