package service

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"sync"

	"movie-discovery-picker/internal/models"
	"movie-discovery-picker/internal/tmdb"
)

type catalogCall struct {
	Endpoint string
	Params   url.Values
}

// fakeCatalog answers by endpoint. A missing endpoint yields an empty list.
type fakeCatalog struct {
	mu       sync.Mutex
	calls    []catalogCall
	results  map[string][]tmdb.Item
	errs     map[string]error
	discover func(media string, params url.Values) ([]tmdb.Item, error)
	detail   *tmdb.Detail
	genres   map[string][]tmdb.Genre
	blocking map[string]bool
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		results:  map[string][]tmdb.Item{},
		errs:     map[string]error{},
		genres:   map[string][]tmdb.Genre{},
		blocking: map[string]bool{},
	}
}

func (f *fakeCatalog) record(ctx context.Context, endpoint string, params url.Values) ([]tmdb.Item, error) {
	f.mu.Lock()
	f.calls = append(f.calls, catalogCall{Endpoint: endpoint, Params: cloneValues(params)})
	block := f.blocking[endpoint]
	items, err := f.results[endpoint], f.errs[endpoint]
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return items, err
}

func (f *fakeCatalog) Calls() []catalogCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]catalogCall(nil), f.calls...)
}

func (f *fakeCatalog) callsTo(endpoint string) []catalogCall {
	var out []catalogCall
	for _, c := range f.Calls() {
		if c.Endpoint == endpoint {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeCatalog) SearchMulti(ctx context.Context, query string) ([]tmdb.Item, error) {
	return f.record(ctx, "/search/multi?"+query, url.Values{"query": {query}})
}

func (f *fakeCatalog) Discover(ctx context.Context, media string, params url.Values) ([]tmdb.Item, error) {
	endpoint := "/discover/" + media
	if f.discover != nil {
		f.mu.Lock()
		f.calls = append(f.calls, catalogCall{Endpoint: endpoint, Params: cloneValues(params)})
		f.mu.Unlock()
		return f.discover(media, params)
	}
	return f.record(ctx, endpoint, params)
}

func (f *fakeCatalog) Trending(ctx context.Context, media string) ([]tmdb.Item, error) {
	return f.record(ctx, "/trending/"+media+"/week", nil)
}

func (f *fakeCatalog) Recommendations(ctx context.Context, media string, id int) ([]tmdb.Item, error) {
	return f.record(ctx, "/"+media+"/"+strconv.Itoa(id)+"/recommendations", nil)
}

func (f *fakeCatalog) Detail(ctx context.Context, media string, id int) (*tmdb.Detail, error) {
	endpoint := "/" + media + "/" + strconv.Itoa(id)
	if _, err := f.record(ctx, endpoint, nil); err != nil {
		return nil, err
	}
	if f.detail == nil {
		return nil, &tmdb.CatalogError{Status: 404, Body: "not found"}
	}
	return f.detail, nil
}

func (f *fakeCatalog) Genres(ctx context.Context, media string) ([]tmdb.Genre, error) {
	endpoint := "/genre/" + media + "/list"
	if _, err := f.record(ctx, endpoint, nil); err != nil {
		return nil, err
	}
	return f.genres[media], nil
}

// fakeCompleter answers per call site.
type fakeCompleter struct {
	mu        sync.Mutex
	responses map[string]string
	errs      map[string]error
	prompts   map[string]string
}

func newFakeCompleter() *fakeCompleter {
	return &fakeCompleter{responses: map[string]string{}, errs: map[string]error{}, prompts: map[string]string{}}
}

func (f *fakeCompleter) CompleteJSON(_ context.Context, call, _, user string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts[call] = user
	if err := f.errs[call]; err != nil {
		return "", err
	}
	resp, ok := f.responses[call]
	if !ok {
		return "", errors.New("no canned response for " + call)
	}
	return resp, nil
}

func (f *fakeCompleter) prompt(call string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.prompts[call]
}

// fakeGenreStore is an in-memory GenreStore.
type fakeGenreStore struct {
	mu      sync.Mutex
	rows    []models.Genre
	byName  map[string][]int
	listErr error
}

func (s *fakeGenreStore) UpsertGenre(_ context.Context, tmdbID int, name string, media models.MediaType) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, g := range s.rows {
		if g.TMDBId == tmdbID && g.MediaType == media {
			s.rows[i].Name = name
			return g.ID, nil
		}
	}
	id := len(s.rows) + 1
	s.rows = append(s.rows, models.Genre{ID: id, TMDBId: tmdbID, Name: name, MediaType: media})
	return id, nil
}

func (s *fakeGenreStore) ListGenres(_ context.Context, media models.MediaType) ([]models.Genre, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []models.Genre
	for _, g := range s.rows {
		if media == "" || g.MediaType == media {
			out = append(out, g)
		}
	}
	return out, nil
}

func (s *fakeGenreStore) FindByName(_ context.Context, name string) ([]int, error) {
	return s.byName[name], nil
}

func movie(id int, title string, genres ...int) tmdb.Item {
	return tmdb.Item{ID: id, Title: title, GenreIDs: genres, VoteAverage: 7, Popularity: 100, VoteCount: 500, ReleaseDate: "2015-01-01"}
}

func series(id int, name string) tmdb.Item {
	return tmdb.Item{ID: id, Name: name, FirstAirDate: "2019-03-01", VoteAverage: 8, VoteCount: 300}
}
