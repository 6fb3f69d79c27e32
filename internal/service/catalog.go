package service

import (
	"context"
	"net/url"

	"movie-discovery-picker/internal/models"
	"movie-discovery-picker/internal/tmdb"
)

// Catalog is the subset of the TMDB client the pipeline uses.
type Catalog interface {
	SearchMulti(ctx context.Context, query string) ([]tmdb.Item, error)
	Discover(ctx context.Context, media string, params url.Values) ([]tmdb.Item, error)
	Trending(ctx context.Context, media string) ([]tmdb.Item, error)
	Recommendations(ctx context.Context, media string, id int) ([]tmdb.Item, error)
	Detail(ctx context.Context, media string, id int) (*tmdb.Detail, error)
	Genres(ctx context.Context, media string) ([]tmdb.Genre, error)
}

// GenreStore persists the catalog's genre lists.
type GenreStore interface {
	UpsertGenre(ctx context.Context, tmdbID int, name string, mediaType models.MediaType) (int, error)
	ListGenres(ctx context.Context, mediaType models.MediaType) ([]models.Genre, error)
	FindByName(ctx context.Context, name string) ([]int, error)
}
