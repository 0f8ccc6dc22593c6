package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hallapmark/vaiki-backend/internal/store/core"
)

func TestNewMovieDTO_UnknownYearAndDurationAreNull(t *testing.T) {
	b, err := json.Marshal(NewMovieDTO(core.Movie{Slug: "x", Title: "X", HLSPath: "/x/master.m3u8"}))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	require.Contains(t, got, "year")
	require.Nil(t, got["year"])
	require.Nil(t, got["durationMinutes"])
	require.Equal(t, []any{}, got["categories"])
	require.NotContains(t, got, "hlsPath")
	require.NotContains(t, string(b), "master.m3u8")
}

func TestNewMovieDTO_CopiesCategories(t *testing.T) {
	m := core.Movie{Slug: "nosferatu", Title: "Nosferatu", Year: 1922, DurationMinutes: 94, Categories: []string{"classics"}}
	d := NewMovieDTO(m)
	require.Equal(t, 1922, *d.Year)
	require.Equal(t, 94, *d.DurationMinutes)

	d.Categories[0] = "mutated"
	require.Equal(t, "classics", m.Categories[0])
}

func TestNewMovieDTO_EmptyCategoriesSerializeAsList(t *testing.T) {
	for _, cats := range [][]string{nil, {}} {
		b, err := json.Marshal(NewMovieDTO(core.Movie{Slug: "x", Title: "X", Categories: cats}))
		require.NoError(t, err)
		require.Contains(t, string(b), `"categories":[]`)
	}
}

func TestNewCategoryDTOs_Empty(t *testing.T) {
	b, err := json.Marshal(NewCategoryDTOs(nil))
	require.NoError(t, err)
	require.Equal(t, "[]", string(b))
}
