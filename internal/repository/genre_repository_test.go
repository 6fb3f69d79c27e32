package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movie-discovery-picker/internal/models"
)

func newMockRepo(t *testing.T) (*GenreRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewGenreRepository(db), mock
}

func TestUpsertGenre(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO genres (tmdb_id, name, media_type, updated_at)")).
		WithArgs(10765, "Sci-Fi & Fantasy", "tv").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))

	id, err := repo.UpsertGenre(context.Background(), 10765, "Sci-Fi & Fantasy", models.MediaTV)
	require.NoError(t, err)
	assert.Equal(t, 4, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertGenreError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("INSERT INTO genres").WillReturnError(errors.New("connection lost"))

	_, err := repo.UpsertGenre(context.Background(), 28, "Action", models.MediaMovie)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upsert genre 28")
}

func TestListGenresFiltersByMediaType(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, tmdb_id, name, media_type FROM genres WHERE media_type = $1 ORDER BY media_type, name")).
		WithArgs("movie").
		WillReturnRows(sqlmock.NewRows([]string{"id", "tmdb_id", "name", "media_type"}).
			AddRow(1, 28, "Action", "movie").
			AddRow(2, 35, "Comedy", "movie"))

	genres, err := repo.ListGenres(context.Background(), models.MediaMovie)
	require.NoError(t, err)
	require.Len(t, genres, 2)
	assert.Equal(t, models.Genre{ID: 1, TMDBId: 28, Name: "Action", MediaType: models.MediaMovie}, genres[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListGenresAll(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, tmdb_id, name, media_type FROM genres ORDER BY media_type, name")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tmdb_id", "name", "media_type"}))

	genres, err := repo.ListGenres(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, genres)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByNameNormalizes(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT DISTINCT tmdb_id FROM genres").
		WithArgs("sci-fi_&_fantasy").
		WillReturnRows(sqlmock.NewRows([]string{"tmdb_id"}).AddRow(10765))

	ids, err := repo.FindByName(context.Background(), " Sci-Fi & Fantasy ")
	require.NoError(t, err)
	assert.Equal(t, []int{10765}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}
