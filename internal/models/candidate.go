package models

// MediaType distinguishes movie and series records.
type MediaType string

const (
	MediaMovie MediaType = "movie"
	MediaTV    MediaType = "tv"
)

// ParseMediaType returns the media type for s, or false if s is neither movie nor tv.
func ParseMediaType(s string) (MediaType, bool) {
	switch MediaType(s) {
	case MediaMovie, MediaTV:
		return MediaType(s), true
	}
	return "", false
}

// Strategy tags which catalog query produced a candidate.
type Strategy string

const (
	StrategySeed       Strategy = "seed"
	StrategyDiscover   Strategy = "discover"
	StrategyUnderrated Strategy = "underrated"
	StrategyTrending   Strategy = "trending"
	StrategySearch     Strategy = "search"
)

// Candidate is a catalog entry undergoing scoring. It is built fresh per
// request and never stored.
type Candidate struct {
	ID           int       `json:"id"`
	Title        string    `json:"title"`
	Overview     string    `json:"overview"`
	PosterPath   string    `json:"poster_path"`
	BackdropPath string    `json:"backdrop_path"`
	ReleaseDate  string    `json:"release_date"`
	VoteAverage  float64   `json:"vote_average"`
	VoteCount    int       `json:"vote_count"`
	Popularity   float64   `json:"popularity"`
	GenreIDs     []int     `json:"genre_ids"`
	MediaType    MediaType `json:"media_type"`
	Strategy     Strategy  `json:"strategy,omitempty"`
	MatchScore   float64   `json:"match_score"`
	VibeScore    int       `json:"vibe_score"`
	MatchReason  string    `json:"match_reason,omitempty"`
}

// StrategyStatus reports how one strategy of a recommendation request went.
type StrategyStatus struct {
	Name  string `json:"name"`
	OK    bool   `json:"ok"`
	Count int    `json:"count"`
	Error string `json:"error,omitempty"`
}

// RecommendationResponse is returned to the presentation layer.
type RecommendationResponse struct {
	Results    []Candidate      `json:"results"`
	AIRanked   bool             `json:"ai_ranked"`
	Intent     *Intent          `json:"intent,omitempty"`
	Strategies []StrategyStatus `json:"strategies"`
	Warnings   []string         `json:"warnings,omitempty"`
}

const (
	TMDBImageBaseW500 = "https://image.tmdb.org/t/p/w500"
	TMDBImageBaseW780 = "https://image.tmdb.org/t/p/w780"
)
