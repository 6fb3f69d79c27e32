package tmdb

import (
	"encoding/json"
	"fmt"
)

// CatalogError is returned when TMDB answers with a non-success status.
type CatalogError struct {
	Status int
	Body   string
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("TMDB API returned status %d: %s", e.Status, e.Body)
}

// ---- TMDB Response Types ----

// Item is one entry of a TMDB list endpoint. Movie records carry title and
// release_date, series records carry name and first_air_date; multi search
// also returns people, tagged media_type=person.
type Item struct {
	ID           int     `json:"id"`
	Title        string  `json:"title,omitempty"`
	Name         string  `json:"name,omitempty"`
	Overview     string  `json:"overview,omitempty"`
	PosterPath   string  `json:"poster_path,omitempty"`
	BackdropPath string  `json:"backdrop_path,omitempty"`
	ReleaseDate  string  `json:"release_date,omitempty"`
	FirstAirDate string  `json:"first_air_date,omitempty"`
	VoteAverage  float64 `json:"vote_average,omitempty"`
	VoteCount    int     `json:"vote_count,omitempty"`
	Popularity   float64 `json:"popularity,omitempty"`
	GenreIDs     []int   `json:"genre_ids,omitempty"`
	MediaType    string  `json:"media_type,omitempty"`
}

// ListResponse is the envelope of every TMDB list endpoint.
type ListResponse struct {
	Page         int    `json:"page"`
	Results      []Item `json:"results"`
	TotalPages   int    `json:"total_pages"`
	TotalResults int    `json:"total_results"`
}

// Genre is a genre from TMDB.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// GenreListResponse is the TMDB genre/{movie,tv}/list response.
type GenreListResponse struct {
	Genres []Genre `json:"genres"`
}

// Detail is the /movie/{id} or /tv/{id} record with videos, credits and
// recommendations appended.
type Detail struct {
	ID              int          `json:"id"`
	Title           string       `json:"title"`
	Name            string       `json:"name"`
	Tagline         string       `json:"tagline"`
	Overview        string       `json:"overview"`
	ReleaseDate     string       `json:"release_date"`
	FirstAirDate    string       `json:"first_air_date"`
	Runtime         int          `json:"runtime"`
	EpisodeRunTime  []int        `json:"episode_run_time"`
	VoteAverage     float64      `json:"vote_average"`
	PosterPath      string       `json:"poster_path"`
	BackdropPath    string       `json:"backdrop_path"`
	Genres          []Genre      `json:"genres"`
	Videos          VideoList    `json:"videos"`
	Credits         Credits      `json:"credits"`
	Recommendations ListResponse `json:"recommendations"`
}

// VideoList is the appended videos block of a detail record.
type VideoList struct {
	Results []Video `json:"results"`
}

// Video is a trailer or clip.
type Video struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Site string `json:"site"`
	Type string `json:"type"`
}

// Credits is the appended credits block of a detail record.
type Credits struct {
	Cast []CastMember `json:"cast"`
}

// CastMember is one billed performer.
type CastMember struct {
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path"`
}

func decode[T any](body []byte, what string) (*T, error) {
	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", what, err)
	}
	return &out, nil
}
