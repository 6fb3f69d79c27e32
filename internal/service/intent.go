package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"movie-discovery-picker/internal/llm"
	"movie-discovery-picker/internal/models"
)

const (
	// maxIntentSearches bounds the per-list fan-out of a runaway answer. The
	// prompt asks for 5 titles and 3 queries.
	maxIntentSearches = 20
	maxPromptLength   = 1000
)

const intentSystemPrompt = "You are a master cinephile and industry expert. Your goal is to find movies and TV shows " +
	"that specifically answer the user's question, even if the user doesn't know the titles. Return ONLY JSON."

// genreTable maps normalized genre names onto TMDB movie genre ids.
var genreTable = map[string]int{
	"action":          28,
	"adventure":       12,
	"animation":       16,
	"comedy":          35,
	"crime":           80,
	"documentary":     99,
	"drama":           18,
	"family":          10751,
	"fantasy":         14,
	"history":         36,
	"horror":          27,
	"music":           10402,
	"mystery":         9648,
	"romance":         10749,
	"science_fiction": 878,
	"sci-fi":          878,
	"thriller":        53,
	"war":             10752,
	"western":         37,
}

// IntentExpander turns a free-text prompt into a structured Intent.
type IntentExpander struct {
	llm    llm.Completer
	genres GenreStore
}

// NewIntentExpander creates an IntentExpander. store may be nil.
func NewIntentExpander(completer llm.Completer, store GenreStore) *IntentExpander {
	return &IntentExpander{llm: completer, genres: store}
}

func intentUserPrompt(prompt string) string {
	return fmt.Sprintf(`Prompt: %q

Return JSON with:
- representative_titles: string[] (5 specific movies/shows that BEST answer this exact prompt, e.g. ["The Social Network", "Silicon Valley", "Steve Jobs"])
- search_queries: string[] (3 general search terms, e.g. ["startup marketing", "user growth movie"])
- genre_names: string[]
- era: "classic" | "90s" | "2000s" | "modern" | null
- include_tv: boolean (true if series fit the prompt better)
- keywords: string[] (thematic tags for scoring, e.g. ["entrepreneur", "growth", "marketing"])`, prompt)
}

type rawIntent struct {
	RepresentativeTitles []string `json:"representative_titles"`
	SearchQueries        []string `json:"search_queries"`
	GenreNames           []string `json:"genre_names"`
	Era                  *string  `json:"era"`
	IncludeTV            bool     `json:"include_tv"`
	Keywords             []string `json:"keywords"`
}

// Expand asks the LLM for the intent behind prompt. Transport failures are
// returned wrapped; unusable answers come back as *IntentParseError.
func (e *IntentExpander) Expand(ctx context.Context, prompt string) (*models.Intent, error) {
	raw, err := e.llm.CompleteJSON(ctx, "intent", intentSystemPrompt, intentUserPrompt(prompt))
	if err != nil {
		if errors.Is(err, llm.ErrEmptyCompletion) {
			return nil, &IntentParseError{Err: err}
		}
		return nil, fmt.Errorf("intent expansion failed: %w: %w", ErrLLMFailed, err)
	}
	return parseIntent(raw)
}

func parseIntent(raw string) (*models.Intent, error) {
	var parsed rawIntent
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, &IntentParseError{Raw: raw, Err: err}
	}

	intent := &models.Intent{
		RepresentativeTitles: cleanStrings(parsed.RepresentativeTitles, maxIntentSearches),
		SearchQueries:        cleanStrings(parsed.SearchQueries, maxIntentSearches),
		GenreNames:           cleanStrings(parsed.GenreNames, 0),
		IncludeTV:            parsed.IncludeTV,
		Keywords:             cleanStrings(parsed.Keywords, 0),
	}
	if parsed.Era != nil {
		intent.Era = models.ParseEra(*parsed.Era)
	}

	if len(intent.RepresentativeTitles) == 0 && len(intent.SearchQueries) == 0 && len(intent.GenreNames) == 0 {
		return nil, &IntentParseError{Raw: raw, Err: errors.New("intent has no titles, queries or genres")}
	}
	return intent, nil
}

// cleanStrings trims entries, drops empties and duplicates, and keeps at most
// limit entries when limit > 0.
func cleanStrings(in []string, limit int) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// GenreIDs resolves genre names to TMDB ids. The fixed table wins; unknown
// names are looked up in the genre store when one is configured.
func (e *IntentExpander) GenreIDs(ctx context.Context, names []string) []int {
	var ids []int
	seen := make(map[int]bool)
	add := func(id int) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	for _, name := range names {
		key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
		if id, ok := genreTable[key]; ok {
			add(id)
			continue
		}
		if e.genres == nil {
			continue
		}
		found, err := e.genres.FindByName(ctx, name)
		if err != nil {
			slog.Warn("genre lookup failed", "genre", name, "error", err)
			continue
		}
		for _, id := range found {
			add(id)
		}
	}
	return ids
}
