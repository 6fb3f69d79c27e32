package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movie-discovery-picker/internal/models"
	"movie-discovery-picker/internal/tmdb"
)

func genreCatalog() *fakeCatalog {
	catalog := newFakeCatalog()
	catalog.genres["movie"] = []tmdb.Genre{{ID: 28, Name: "Action"}, {ID: 18, Name: "Drama"}}
	catalog.genres["tv"] = []tmdb.Genre{{ID: 18, Name: "Drama"}, {ID: 10765, Name: "Sci-Fi & Fantasy"}}
	return catalog
}

func TestGenreSync(t *testing.T) {
	store := &fakeGenreStore{}
	svc := NewGenreService(genreCatalog(), store)

	n, err := svc.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	require.Len(t, store.rows, 4)
	assert.Equal(t, models.MediaTV, store.rows[2].MediaType)
	assert.Equal(t, 18, store.rows[2].TMDBId)

	// a second sync updates in place
	n, err = svc.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Len(t, store.rows, 4)
}

func TestGenreSyncWithoutStore(t *testing.T) {
	_, err := NewGenreService(genreCatalog(), nil).Sync(context.Background())
	assert.ErrorIs(t, err, ErrGenreStoreUnavailable)
}

func TestGenreSyncCatalogFailure(t *testing.T) {
	catalog := genreCatalog()
	catalog.errs["/genre/tv/list"] = &tmdb.CatalogError{Status: 503, Body: "down"}
	store := &fakeGenreStore{}

	n, err := NewGenreService(catalog, store).Sync(context.Background())
	var catalogErr *tmdb.CatalogError
	require.True(t, errors.As(err, &catalogErr))
	assert.Equal(t, 2, n)
}

func TestGenreListPrefersStore(t *testing.T) {
	catalog := genreCatalog()
	store := &fakeGenreStore{rows: []models.Genre{{ID: 1, TMDBId: 35, Name: "Comedy", MediaType: models.MediaMovie}}}

	genres, err := NewGenreService(catalog, store).List(context.Background(), models.MediaMovie)
	require.NoError(t, err)
	assert.Equal(t, store.rows, genres)
	assert.Empty(t, catalog.Calls())
}

func TestGenreListFallsBackToCatalog(t *testing.T) {
	tests := []struct {
		name  string
		store GenreStore
	}{
		{name: "no store"},
		{name: "empty store", store: &fakeGenreStore{}},
		{name: "failing store", store: &fakeGenreStore{listErr: errors.New("connection refused")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			genres, err := NewGenreService(genreCatalog(), tt.store).List(context.Background(), models.MediaTV)
			require.NoError(t, err)
			assert.Equal(t, []models.Genre{
				{TMDBId: 18, Name: "Drama", MediaType: models.MediaTV},
				{TMDBId: 10765, Name: "Sci-Fi & Fantasy", MediaType: models.MediaTV},
			}, genres)
		})
	}
}

func TestGenreListAllAndInvalid(t *testing.T) {
	svc := NewGenreService(genreCatalog(), nil)

	genres, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, genres, 4)

	_, err = svc.List(context.Background(), "person")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
