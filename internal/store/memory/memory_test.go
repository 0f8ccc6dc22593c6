package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hallapmark/vaiki-backend/internal/store/core"
)

func TestMovies(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.GetMovieBySlug(ctx, "nope")
	require.ErrorIs(t, err, core.ErrNotFound)
	_, err = s.GetFeaturedMovie(ctx)
	require.ErrorIs(t, err, core.ErrNotFound)

	a := &core.Movie{Slug: "a", Title: "A", HLSPath: "/a/master.m3u8", Categories: []string{"classics"}}
	b := &core.Movie{Slug: "b", Title: "B", Featured: true}
	c := &core.Movie{Slug: "c", Title: "C", Featured: true}
	for _, m := range []*core.Movie{a, b, c} {
		require.NoError(t, s.UpsertMovie(ctx, m))
		require.NotZero(t, m.ID)
	}

	list, err := s.ListMovies(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, []string{"a", "b", "c"}, []string{list[0].Slug, list[1].Slug, list[2].Slug})

	f, err := s.GetFeaturedMovie(ctx)
	require.NoError(t, err)
	require.Equal(t, "b", f.Slug)

	// upsert conserva el id
	id := a.ID
	a2 := &core.Movie{Slug: "a", Title: "A (restored)", HLSPath: "/a/master.m3u8"}
	require.NoError(t, s.UpsertMovie(ctx, a2))
	require.Equal(t, id, a2.ID)
	n, err := s.CountMovies(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	got, err := s.GetMovieBySlug(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, "A (restored)", got.Title)
	require.True(t, got.Playable())
}

func TestMovies_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.UpsertMovie(ctx, &core.Movie{Slug: "a", Title: "A", Categories: []string{"classics"}}))

	got, err := s.GetMovieBySlug(ctx, "a")
	require.NoError(t, err)
	got.Categories[0] = "mutated"

	again, err := s.GetMovieBySlug(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, []string{"classics"}, again.Categories)
}

func TestMovies_Invalid(t *testing.T) {
	s := New()
	err := s.UpsertMovie(context.Background(), &core.Movie{Slug: "x", Title: "X", HLSPath: "x/master.m3u8"})
	require.ErrorIs(t, err, core.ErrInvalid)
}

func TestCategories_VisibleOrdered(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, c := range []*core.Category{
		{Slug: "comedies", Title: "Comedies", OrderIndex: 2, Visible: true},
		{Slug: "hidden", Title: "Hidden", OrderIndex: 0, Visible: false},
		{Slug: "classics", Title: "Classics", OrderIndex: 0, Visible: true},
		{Slug: "anti-war", Title: "Anti-War", OrderIndex: 1, Visible: true},
	} {
		require.NoError(t, s.UpsertCategory(ctx, c))
	}

	got, err := s.ListVisibleCategories(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, "classics", got[0].Slug)
	require.Equal(t, "anti-war", got[1].Slug)
	require.Equal(t, "comedies", got[2].Slug)

	n, err := s.CountCategories(ctx)
	require.NoError(t, err)
	require.Equal(t, 4, n)
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().ListMovies(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
