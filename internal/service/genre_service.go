package service

import (
	"context"
	"fmt"
	"log/slog"

	"movie-discovery-picker/internal/models"
)

var genreMediaTypes = []models.MediaType{models.MediaMovie, models.MediaTV}

// GenreService keeps the genre catalog in sync with TMDB.
type GenreService struct {
	catalog Catalog
	store   GenreStore
}

// NewGenreService creates a GenreService. store may be nil.
func NewGenreService(catalog Catalog, store GenreStore) *GenreService {
	return &GenreService{catalog: catalog, store: store}
}

// Sync upserts the movie and series genre lists into the store and returns
// how many rows were written.
func (s *GenreService) Sync(ctx context.Context) (int, error) {
	if s.store == nil {
		return 0, ErrGenreStoreUnavailable
	}

	synced := 0
	for _, media := range genreMediaTypes {
		genres, err := s.catalog.Genres(ctx, string(media))
		if err != nil {
			return synced, fmt.Errorf("failed to fetch %s genres: %w", media, err)
		}
		for _, g := range genres {
			if _, err := s.store.UpsertGenre(ctx, g.ID, g.Name, media); err != nil {
				return synced, err
			}
			synced++
		}
	}

	slog.Info("genre sync completed", "count", synced)
	return synced, nil
}

// List returns genres for media ("" for all). The store is preferred; the
// catalog answers when the store is missing, failing or empty.
func (s *GenreService) List(ctx context.Context, media models.MediaType) ([]models.Genre, error) {
	if media != "" {
		if _, ok := models.ParseMediaType(string(media)); !ok {
			return nil, fmt.Errorf("%w: unknown media type %q", ErrInvalidRequest, media)
		}
	}

	if s.store != nil {
		genres, err := s.store.ListGenres(ctx, media)
		if err != nil {
			slog.Warn("genre store read failed, using catalog", "error", err)
		} else if len(genres) > 0 {
			return genres, nil
		}
	}

	types := genreMediaTypes
	if media != "" {
		types = []models.MediaType{media}
	}
	out := make([]models.Genre, 0)
	for _, m := range types {
		genres, err := s.catalog.Genres(ctx, string(m))
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s genres: %w", m, err)
		}
		for _, g := range genres {
			out = append(out, models.Genre{TMDBId: g.ID, Name: g.Name, MediaType: m})
		}
	}
	return out, nil
}
