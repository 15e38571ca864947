package migration

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// BeatFolder is one beat directory found during a walk. Title is empty and
// Valid false when no file follows the naming convention or the folder
// could not be listed (Err set).
type BeatFolder struct {
	Genre  string
	Mood   string
	Folder string
	Title  string
	Files  []Entry
	Valid  bool
	Err    error
}

// ListError reports a genre or mood folder that could not be listed. Nothing
// under it was visited.
type ListError struct {
	Path string
	Err  error
}

func (e *ListError) Error() string {
	return fmt.Sprintf("list %s: %v", e.Path, e.Err)
}

func (e *ListError) Unwrap() error {
	return e.Err
}

// Walker traverses genre, mood and beat folders under a root. Each call
// starts a fresh traversal.
type Walker struct {
	source Source
	rootID string
}

func NewWalker(source Source, rootID string) *Walker {
	return &Walker{source: source, rootID: rootID}
}

// Genres lists the genre folders in source order.
func (w *Walker) Genres(ctx context.Context) ([]Entry, error) {
	children, err := w.source.ListChildren(ctx, w.rootID)
	if err != nil {
		return nil, fmt.Errorf("list root folder: %w", err)
	}
	return folders(children), nil
}

// WalkGenre calls fn for every beat folder of genre. Beat folders within a
// mood are visited in case-insensitive name order. An error from fn stops
// the walk and is returned. Moods that cannot be listed are passed over and
// returned at the end as joined *ListError values.
func (w *Walker) WalkGenre(ctx context.Context, genre Entry, fn func(BeatFolder) error) error {
	moods, err := w.source.ListChildren(ctx, genre.ID)
	if err != nil {
		return &ListError{Path: genre.Name, Err: err}
	}

	var unlisted []error
	for _, mood := range folders(moods) {
		children, err := w.source.ListChildren(ctx, mood.ID)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			unlisted = append(unlisted, &ListError{Path: genre.Name + "/" + mood.Name, Err: err})
			continue
		}
		beats := folders(children)
		sort.SliceStable(beats, func(i, j int) bool {
			return strings.ToLower(beats[i].Name) < strings.ToLower(beats[j].Name)
		})

		for _, beat := range beats {
			if err := ctx.Err(); err != nil {
				return err
			}
			bf := BeatFolder{Genre: genre.Name, Mood: mood.Name, Folder: beat.Name}
			entries, err := w.source.ListChildren(ctx, beat.ID)
			if err != nil {
				bf.Err = err
			} else {
				bf.Files = files(entries)
				bf.Title, bf.Valid = ExtractTitle(bf.Files)
			}
			if err := fn(bf); err != nil {
				return err
			}
		}
	}
	return errors.Join(unlisted...)
}

// ListErrors returns the *ListError values carried by err, which may be a
// single error or a join of several.
func ListErrors(err error) []*ListError {
	var errs []error
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	} else if err != nil {
		errs = []error{err}
	}

	var out []*ListError
	for _, e := range errs {
		var le *ListError
		if errors.As(e, &le) {
			out = append(out, le)
		}
	}
	return out
}

func folders(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.IsFolder {
			out = append(out, e)
		}
	}
	return out
}

func files(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if !e.IsFolder {
			out = append(out, e)
		}
	}
	return out
}
