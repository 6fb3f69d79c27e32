package models

// Genre is a catalog genre.
type Genre struct {
	ID        int       `json:"id"`
	TMDBId    int       `json:"tmdb_id"`
	Name      string    `json:"name"`
	MediaType MediaType `json:"media_type"`
}

// Video is a trailer or clip attached to a title.
type Video struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Site string `json:"site"`
	Type string `json:"type"`
}

// CastMember is one billed performer.
type CastMember struct {
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path"`
}

// TitleDetail is the full record shown in the detail view.
type TitleDetail struct {
	ID              int          `json:"id"`
	MediaType       MediaType    `json:"media_type"`
	Title           string       `json:"title"`
	Tagline         string       `json:"tagline,omitempty"`
	Overview        string       `json:"overview"`
	ReleaseDate     string       `json:"release_date"`
	Runtime         int          `json:"runtime"`
	VoteAverage     float64      `json:"vote_average"`
	Genres          []string     `json:"genres"`
	PosterURL       string       `json:"poster_url,omitempty"`
	BackdropURL     string       `json:"backdrop_url,omitempty"`
	Videos          []Video      `json:"videos"`
	Cast            []CastMember `json:"cast"`
	Recommendations []Candidate  `json:"recommendations"`
}
