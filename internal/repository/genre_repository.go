package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"movie-discovery-picker/internal/models"
)

// GenreRepository handles database operations for the genre catalog.
type GenreRepository struct {
	db *sql.DB
}

// NewGenreRepository creates a new GenreRepository.
func NewGenreRepository(db *sql.DB) *GenreRepository {
	return &GenreRepository{db: db}
}

// UpsertGenre inserts or renames a genre for one media type.
func (r *GenreRepository) UpsertGenre(ctx context.Context, tmdbID int, name string, mediaType models.MediaType) (int, error) {
	var id int
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO genres (tmdb_id, name, media_type, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (tmdb_id, media_type) DO UPDATE SET
			name = EXCLUDED.name,
			updated_at = EXCLUDED.updated_at
		RETURNING id
	`, tmdbID, name, string(mediaType)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert genre %d: %w", tmdbID, err)
	}
	return id, nil
}

// ListGenres returns stored genres, optionally restricted to one media type.
func (r *GenreRepository) ListGenres(ctx context.Context, mediaType models.MediaType) ([]models.Genre, error) {
	query := `SELECT id, tmdb_id, name, media_type FROM genres`
	args := []any{}
	if mediaType != "" {
		query += ` WHERE media_type = $1`
		args = append(args, string(mediaType))
	}
	query += ` ORDER BY media_type, name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list genres query failed: %w", err)
	}
	defer rows.Close()

	genres := make([]models.Genre, 0)
	for rows.Next() {
		var g models.Genre
		var media string
		if err := rows.Scan(&g.ID, &g.TMDBId, &g.Name, &media); err != nil {
			slog.Error("failed to scan genre row", "error", err)
			continue
		}
		g.MediaType = models.MediaType(media)
		genres = append(genres, g)
	}
	return genres, rows.Err()
}

// FindByName returns the TMDB ids whose lowercased, underscore-joined name
// equals name. Movie and TV ids for the same name may differ.
func (r *GenreRepository) FindByName(ctx context.Context, name string) ([]int, error) {
	slug := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT tmdb_id FROM genres
		WHERE LOWER(REPLACE(name, ' ', '_')) = $1
		ORDER BY tmdb_id
	`, slug)
	if err != nil {
		return nil, fmt.Errorf("find genre query failed: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan genre id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
