package migration

import (
	"context"
	"time"
)

// State is a step of a migration run.
type State string

const (
	StateInit              State = "INIT"
	StateEnumeratingGenres State = "ENUMERATING_GENRES"
	StateProcessingMood    State = "PROCESSING_MOOD"
	StateEvaluatingBeat    State = "EVALUATING_BEAT"
	StateSkipped           State = "SKIPPED"
	StateInserted          State = "INSERTED"
	StateFinalizing        State = "FINALIZING"
	StateComplete          State = "COMPLETE"
	StateFailed            State = "FAILED"
)

// Progress is a snapshot of a running migration.
type Progress struct {
	RunID     string    `json:"run_id"`
	State     State     `json:"state"`
	Percent   int       `json:"percent"`
	Message   string    `json:"message"`
	Genre     string    `json:"genre,omitempty"`
	Inserted  int       `json:"inserted"`
	Skipped   int       `json:"skipped"`
	Unlisted  int       `json:"unlisted"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Done reports whether the run reached a terminal state.
func (p Progress) Done() bool {
	return p.State == StateComplete || p.State == StateFailed
}

// Reporter receives progress snapshots of a single run.
type Reporter interface {
	Report(ctx context.Context, p Progress)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(ctx context.Context, p Progress)

func (f ReporterFunc) Report(ctx context.Context, p Progress) { f(ctx, p) }

// MultiReporter fans snapshots out to several reporters.
type MultiReporter []Reporter

func (m MultiReporter) Report(ctx context.Context, p Progress) {
	for _, r := range m {
		if r != nil {
			r.Report(ctx, p)
		}
	}
}

const (
	percentConnected = 10
	percentGenres    = 20
	percentGenresEnd = 80
	percentFinal     = 90
	percentDone      = 100
)

// genrePercent maps the index of the genre being processed into the 20-80
// band.
func genrePercent(index, total int) int {
	if total <= 0 {
		return percentGenres
	}
	p := percentGenres + index*(percentGenresEnd-percentGenres)/total
	if p < percentGenres {
		return percentGenres
	}
	if p > percentGenresEnd {
		return percentGenresEnd
	}
	return p
}
