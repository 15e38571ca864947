package migration

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalkerOrderAndTitles(t *testing.T) {
	tree := newFakeTree()
	trap := tree.folder("root", "Trap")
	tree.file("root", "stray.txt")
	dark := tree.folder(trap, "Dark")
	tree.beat(dark, "zulu", "Zulu")
	tree.beat(dark, "Alpha", "Alpha")
	tree.beat(dark, "bravo", "Bravo")
	empty := tree.folder(dark, "Charlie")
	tree.file(empty, "readme.md")

	w := NewWalker(tree, "root")
	genres, err := w.Genres(context.Background())
	require.NoError(t, err)
	require.Len(t, genres, 1)
	assert.Equal(t, "Trap", genres[0].Name)

	var seen []BeatFolder
	err = w.WalkGenre(context.Background(), genres[0], func(bf BeatFolder) error {
		seen = append(seen, bf)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, seen, 4)
	names := []string{seen[0].Folder, seen[1].Folder, seen[2].Folder, seen[3].Folder}
	assert.Equal(t, []string{"Alpha", "bravo", "Charlie", "zulu"}, names)
	assert.Equal(t, "Alpha", seen[0].Title)
	assert.True(t, seen[0].Valid)
	assert.Equal(t, "Trap", seen[0].Genre)
	assert.Equal(t, "Dark", seen[0].Mood)
	assert.Len(t, seen[0].Files, 3)
	assert.False(t, seen[2].Valid)
	assert.Empty(t, seen[2].Title)
}

func TestWalkerBeatListingErrorIsYielded(t *testing.T) {
	tree := newFakeTree()
	genre := tree.folder("root", "Trap")
	mood := tree.folder(genre, "Dark")
	broken := tree.beat(mood, "Broken", "Broken")
	tree.listErr[broken] = errors.New("quota exceeded")

	w := NewWalker(tree, "root")
	var seen []BeatFolder
	err := w.WalkGenre(context.Background(), Entry{ID: genre, Name: "Trap"}, func(bf BeatFolder) error {
		seen = append(seen, bf)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, seen, 1)
	assert.Error(t, seen[0].Err)
	assert.False(t, seen[0].Valid)
}

func TestWalkerPassesOverUnlistableMood(t *testing.T) {
	tree := newFakeTree()
	genre := tree.folder("root", "Trap")
	broken := tree.folder(genre, "Broken")
	tree.listErr[broken] = errors.New("quota exceeded")
	mood := tree.folder(genre, "Dark")
	tree.beat(mood, "A", "A")

	var seen []BeatFolder
	err := NewWalker(tree, "root").WalkGenre(context.Background(), Entry{ID: genre, Name: "Trap"}, func(bf BeatFolder) error {
		seen = append(seen, bf)
		return nil
	})
	require.Error(t, err)
	require.Len(t, seen, 1)
	assert.Equal(t, "Dark", seen[0].Mood)

	listErrs := ListErrors(err)
	require.Len(t, listErrs, 1)
	assert.Equal(t, "Trap/Broken", listErrs[0].Path)
	assert.EqualError(t, listErrs[0].Err, "quota exceeded")
}

func TestWalkerGenreListingError(t *testing.T) {
	tree := newFakeTree()
	genre := tree.folder("root", "Trap")
	tree.listErr[genre] = errors.New("gone")

	err := NewWalker(tree, "root").WalkGenre(context.Background(), Entry{ID: genre, Name: "Trap"}, func(BeatFolder) error {
		t.Fatal("no beat folder expected")
		return nil
	})
	listErrs := ListErrors(err)
	require.Len(t, listErrs, 1)
	assert.Equal(t, "Trap", listErrs[0].Path)
	assert.Empty(t, ListErrors(nil))
}

func TestWalkerStopsOnCallbackError(t *testing.T) {
	tree := newFakeTree()
	genre := tree.folder("root", "Trap")
	mood := tree.folder(genre, "Dark")
	tree.beat(mood, "A", "A")
	tree.beat(mood, "B", "B")

	stop := errors.New("stop")
	calls := 0
	err := NewWalker(tree, "root").WalkGenre(context.Background(), Entry{ID: genre, Name: "Trap"}, func(BeatFolder) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestWalkerRootError(t *testing.T) {
	tree := newFakeTree()
	tree.listErr["root"] = errors.New("not found")
	_, err := NewWalker(tree, "root").Genres(context.Background())
	assert.Error(t, err)
}
