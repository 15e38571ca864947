package migration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/GabKongroo/NothingSpecial/internal/logger"
	"github.com/GabKongroo/NothingSpecial/internal/models"
)

var (
	ErrStoreUnreachable = errors.New("object store unreachable")
	ErrNoBeatsFound     = errors.New("no beats found in source tree")
)

// Result is the outcome of a run. Unlisted counts genre and mood folders
// whose contents were never seen.
type Result struct {
	RunID    string `json:"run_id"`
	Success  bool   `json:"success"`
	Summary  string `json:"summary"`
	Inserted int    `json:"inserted"`
	Skipped  int    `json:"skipped"`
	Unlisted int    `json:"unlisted"`
	Err      error  `json:"-"`
}

// Options tune an Orchestrator.
type Options struct {
	// DefaultPrice is the price of newly catalogued beats.
	DefaultPrice float64
	// OnInsert is called after each beat is catalogued.
	OnInsert func(ctx context.Context, beat models.Beat)
	// Now overrides the clock used for progress timestamps.
	Now func() time.Time
}

// Orchestrator runs a full migration: walk, publish, catalog.
type Orchestrator struct {
	walker    *Walker
	publisher *Publisher
	store     ObjectStore
	catalog   Catalog
	opts      Options
}

func NewOrchestrator(walker *Walker, publisher *Publisher, store ObjectStore, catalog Catalog, opts Options) *Orchestrator {
	if opts.DefaultPrice <= 0 {
		opts.DefaultPrice = models.DefaultBeatPrice
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Orchestrator{walker: walker, publisher: publisher, store: store, catalog: catalog, opts: opts}
}

type run struct {
	o        *Orchestrator
	ctx      context.Context
	reporter Reporter
	progress Progress
}

func (r *run) report(state State, percent int, msg string) {
	r.progress.State = state
	if percent >= 0 {
		r.progress.Percent = percent
	}
	r.progress.Message = msg
	r.progress.UpdatedAt = r.o.opts.Now()
	if r.reporter != nil {
		r.reporter.Report(r.ctx, r.progress)
	}
}

func (r *run) fail(err error) Result {
	r.report(StateFailed, percentDone, err.Error())
	logger.Error("migration failed", logger.String("run_id", r.progress.RunID), logger.ErrorField(err))
	return Result{
		RunID:    r.progress.RunID,
		Success:  false,
		Summary:  err.Error(),
		Inserted: r.progress.Inserted,
		Skipped:  r.progress.Skipped,
		Unlisted: r.progress.Unlisted,
		Err:      err,
	}
}

// Run executes one migration to completion. Per beat failures count as
// skipped; only an unreachable object store or an empty source tree fail
// the run.
func (o *Orchestrator) Run(ctx context.Context, runID string, reporter Reporter) Result {
	r := &run{o: o, ctx: ctx, reporter: reporter, progress: Progress{RunID: runID}}
	r.report(StateInit, 0, "starting migration")
	logger.Info("migration started", logger.String("run_id", runID))

	if err := o.store.Ping(ctx); err != nil {
		return r.fail(fmt.Errorf("%w: %v", ErrStoreUnreachable, err))
	}
	r.report(StateInit, percentConnected, "object store reachable")

	r.report(StateEnumeratingGenres, percentConnected, "listing genres")
	genres, err := o.walker.Genres(ctx)
	if err != nil {
		logger.Error("genre listing failed", logger.String("run_id", runID), logger.ErrorField(err))
		return r.fail(fmt.Errorf("%w: %v", ErrNoBeatsFound, err))
	}
	r.report(StateEnumeratingGenres, percentGenres, fmt.Sprintf("found %d genres", len(genres)))

	for i, genre := range genres {
		r.progress.Genre = genre.Name
		r.report(StateProcessingMood, genrePercent(i, len(genres)), fmt.Sprintf("processing genre %s", genre.Name))
		err := o.walker.WalkGenre(ctx, genre, func(bf BeatFolder) error {
			r.evaluate(bf)
			return nil
		})
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			listErrs := ListErrors(err)
			for _, le := range listErrs {
				r.unlisted(le)
			}
			if len(listErrs) == 0 {
				logger.Warn("genre walk interrupted",
					logger.String("run_id", runID),
					logger.String("genre", genre.Name),
					logger.ErrorField(err))
			}
		}
	}
	r.progress.Genre = ""

	r.report(StateFinalizing, percentFinal, "finalizing")
	total := r.progress.Inserted + r.progress.Skipped
	if total == 0 {
		return r.fail(ErrNoBeatsFound)
	}

	summary := Summary(r.progress.Inserted, r.progress.Skipped, r.progress.Unlisted)
	r.report(StateComplete, percentDone, summary)
	logger.Info("migration completed",
		logger.String("run_id", runID),
		logger.Int("inserted", r.progress.Inserted),
		logger.Int("skipped", r.progress.Skipped),
		logger.Int("unlisted", r.progress.Unlisted))

	return Result{
		RunID:    runID,
		Success:  true,
		Summary:  summary,
		Inserted: r.progress.Inserted,
		Skipped:  r.progress.Skipped,
		Unlisted: r.progress.Unlisted,
	}
}

// Summary formats the final operator message. Folders that could not be
// listed are mentioned only when there are some.
func Summary(inserted, skipped, unlisted int) string {
	rate := 0.0
	if total := inserted + skipped; total > 0 {
		rate = float64(inserted) / float64(total) * 100
	}
	msg := fmt.Sprintf("Migration completed: %d beats inserted, %d skipped (%.1f%% success rate)", inserted, skipped, rate)
	if unlisted > 0 {
		msg += fmt.Sprintf("; %d folders could not be listed", unlisted)
	}
	return msg
}

func (r *run) unlisted(le *ListError) {
	r.progress.Unlisted++
	logger.Warn("folder listing failed",
		logger.String("run_id", r.progress.RunID),
		logger.String("path", le.Path),
		logger.ErrorField(le.Err))
	r.report(StateSkipped, -1, fmt.Sprintf("could not list %s: %v", le.Path, le.Err))
}

func (r *run) skip(bf BeatFolder, reason string) {
	r.progress.Skipped++
	logger.Info("beat skipped",
		logger.String("run_id", r.progress.RunID),
		logger.String("genre", bf.Genre),
		logger.String("mood", bf.Mood),
		logger.String("folder", bf.Folder),
		logger.String("reason", reason))
	r.report(StateSkipped, -1, fmt.Sprintf("skipped %s/%s/%s: %s", bf.Genre, bf.Mood, bf.Folder, reason))
}

func (r *run) evaluate(bf BeatFolder) {
	ctx := r.ctx
	r.report(StateEvaluatingBeat, -1, fmt.Sprintf("evaluating %s/%s/%s", bf.Genre, bf.Mood, bf.Folder))

	if bf.Err != nil {
		r.skip(bf, fmt.Sprintf("listing failed: %v", bf.Err))
		return
	}
	if !bf.Valid {
		r.skip(bf, "no file follows the naming convention")
		return
	}

	exists, err := r.o.catalog.ExistsBySource(ctx, bf.Genre, bf.Mood, bf.Folder, bf.Title)
	if err != nil {
		r.skip(bf, fmt.Sprintf("catalog lookup failed: %v", err))
		return
	}
	if exists {
		r.skip(bf, "already catalogued")
		return
	}

	published := r.o.publisher.Publish(ctx, bf.Title, bf.Files)
	if !published.Complete() {
		reason := "missing assets"
		if len(published.Problems) > 0 {
			reason = published.Problems[0]
		}
		r.skip(bf, reason)
		return
	}

	// Another run may have inserted it while assets were transferring.
	exists, err = r.o.catalog.ExistsBySource(ctx, bf.Genre, bf.Mood, bf.Folder, bf.Title)
	if err != nil {
		r.skip(bf, fmt.Sprintf("catalog lookup failed: %v", err))
		return
	}
	if exists {
		r.skip(bf, "already catalogued")
		return
	}

	price := r.o.opts.DefaultPrice
	original := price
	beat := models.Beat{
		Title:         bf.Title,
		Genre:         bf.Genre,
		Mood:          bf.Mood,
		Folder:        bf.Folder,
		FileKey:       published.FileKey,
		PreviewKey:    published.PreviewKey,
		ImageKey:      published.ImageKey,
		Price:         price,
		OriginalPrice: &original,
		Available:     true,
	}
	if err := r.o.catalog.Create(ctx, &beat); err != nil {
		r.skip(bf, fmt.Sprintf("insert failed: %v", err))
		return
	}

	r.progress.Inserted++
	r.report(StateInserted, -1, fmt.Sprintf("inserted %s", bf.Title))
	logger.Info("beat inserted",
		logger.String("run_id", r.progress.RunID),
		logger.Uint("beat_id", beat.ID),
		logger.String("title", beat.Title))
	if r.o.opts.OnInsert != nil {
		r.o.opts.OnInsert(ctx, beat)
	}
}
