package models

import "strings"

// Era is a coarse release window.
type Era string

const (
	EraNone    Era = ""
	EraClassic Era = "classic"
	Era90s     Era = "90s"
	Era2000s   Era = "2000s"
	EraModern  Era = "modern"
)

// ParseEra maps free text onto a known era; anything unrecognized is EraNone.
func ParseEra(s string) Era {
	switch Era(strings.ToLower(strings.TrimSpace(s))) {
	case EraClassic:
		return EraClassic
	case Era90s:
		return Era90s
	case Era2000s:
		return Era2000s
	case EraModern:
		return EraModern
	}
	return EraNone
}

// DateRange is an inclusive release-date window. Empty bounds are open.
type DateRange struct {
	From string
	To   string
}

// Range returns the release window of the era.
func (e Era) Range() DateRange {
	switch e {
	case EraClassic:
		return DateRange{To: "1989-12-31"}
	case Era90s:
		return DateRange{From: "1990-01-01", To: "1999-12-31"}
	case Era2000s:
		return DateRange{From: "2000-01-01", To: "2009-12-31"}
	case EraModern:
		return DateRange{From: "2010-01-01"}
	}
	return DateRange{}
}

// Intent is the structured query an LLM derives from a free-text prompt.
type Intent struct {
	RepresentativeTitles []string `json:"representative_titles"`
	SearchQueries        []string `json:"search_queries"`
	GenreNames           []string `json:"genre_names"`
	Era                  Era      `json:"era"`
	IncludeTV            bool     `json:"include_tv"`
	Keywords             []string `json:"keywords"`
}

// PromptRequest is the body of a prompt-driven recommendation request.
type PromptRequest struct {
	Prompt string `json:"prompt"`
}
