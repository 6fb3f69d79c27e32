package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Runtime is the viewer's preferred length. It is collected but does not
// filter or score candidates: discover results carry no runtime.
type Runtime string

const (
	RuntimeUnset    Runtime = ""
	RuntimeShort    Runtime = "short"
	RuntimeStandard Runtime = "standard"
	RuntimeLong     Runtime = "long"
)

// QuizAnswers are the accumulated quiz selections.
type QuizAnswers struct {
	Genres      []int   `json:"genres"`
	Era         Era     `json:"era"`
	Mood        string  `json:"mood"`
	Runtime     Runtime `json:"runtime"`
	SeedMovieID string  `json:"seed_movie_id"`
}

// Validate normalizes enum fields and rejects malformed input.
func (q *QuizAnswers) Validate() error {
	q.Era = ParseEra(string(q.Era))
	q.Mood = strings.ToLower(strings.TrimSpace(q.Mood))
	switch q.Runtime {
	case RuntimeUnset, RuntimeShort, RuntimeStandard, RuntimeLong:
	default:
		return fmt.Errorf("unknown runtime %q", q.Runtime)
	}
	for _, g := range q.Genres {
		if g <= 0 {
			return fmt.Errorf("invalid genre id %d", g)
		}
	}
	if q.SeedMovieID != "" {
		if _, _, err := ParseSeedKey(q.SeedMovieID); err != nil {
			return err
		}
	}
	return nil
}

// ParseSeedKey splits a "movie-<id>" or "tv-<id>" composite key.
func ParseSeedKey(key string) (MediaType, int, error) {
	kind, rawID, ok := strings.Cut(strings.TrimSpace(key), "-")
	if !ok {
		return "", 0, fmt.Errorf("invalid seed key %q", key)
	}
	mediaType, ok := ParseMediaType(kind)
	if !ok {
		return "", 0, fmt.Errorf("invalid seed media type %q", kind)
	}
	id, err := strconv.Atoi(rawID)
	if err != nil || id <= 0 {
		return "", 0, fmt.Errorf("invalid seed id %q", rawID)
	}
	return mediaType, id, nil
}

// QuizOption is one answer of a quiz step. Value is a string, an int genre
// id or nil ("any").
type QuizOption struct {
	Label      string `json:"label"`
	Value      any    `json:"value"`
	NextStepID string `json:"next_step_id,omitempty"`
}

// QuizStep is one question of the quiz wizard; Key names the QuizAnswers field it fills.
type QuizStep struct {
	ID       string       `json:"id"`
	Key      string       `json:"key"`
	Question string       `json:"question"`
	Options  []QuizOption `json:"options"`
}

func eraOptions() []QuizOption {
	return []QuizOption{
		{Label: "Modern (2010+)", Value: "modern", NextStepID: "runtime"},
		{Label: "2000s Nostalgia", Value: "2000s", NextStepID: "runtime"},
		{Label: "90s Revolution", Value: "90s", NextStepID: "runtime"},
		{Label: "Cinematic Classics", Value: "classic", NextStepID: "runtime"},
	}
}

// MovieQuiz returns the quiz tree served to the wizard. The seed step has no
// options: the wizard fills it through title search.
func MovieQuiz() []QuizStep {
	return []QuizStep{
		{ID: "seed", Key: "seed_movie_id", Question: "Name a movie you loved recently.", Options: []QuizOption{}},
		{ID: "vibe", Key: "pacing", Question: "What's the target vibe for today?", Options: []QuizOption{
			{Label: "Light & Easy", Value: "light", NextStepID: "genres_light"},
			{Label: "Dark & Intense", Value: "intense", NextStepID: "genres_dark"},
			{Label: "Something Epic", Value: "epic", NextStepID: "genres_epic"},
			{Label: "Surprise Me", Value: "surprise", NextStepID: "genres_surprise"},
		}},
		{ID: "genres_light", Key: "genres", Question: "Which light vibes suit you?", Options: []QuizOption{
			{Label: "Gut-Busting Comedy", Value: 35, NextStepID: "mood_light"},
			{Label: "Feel-Good Romance", Value: 10749, NextStepID: "mood_light"},
			{Label: "Wholesome Animation", Value: 16, NextStepID: "mood_light"},
			{Label: "Relaxing Docs", Value: 99, NextStepID: "mood_light"},
		}},
		{ID: "mood_light", Key: "mood", Question: "How relaxed are we talking?", Options: []QuizOption{
			{Label: "I need a belly laugh", Value: "light", NextStepID: "era_light"},
			{Label: "Just pure chill", Value: "relaxed", NextStepID: "era_light"},
			{Label: "Sweet & Heartwarming", Value: "emotional", NextStepID: "era_light"},
			{Label: "Balanced Comfort", Value: "balanced", NextStepID: "era_light"},
		}},
		{ID: "era_light", Key: "era", Question: "Choose your time capsule.", Options: eraOptions()},
		{ID: "genres_dark", Key: "genres", Question: "Pick your poison.", Options: []QuizOption{
			{Label: "Nightmare Fuel (Horror)", Value: 27, NextStepID: "mood_dark"},
			{Label: "Dark Mysteries", Value: 9648, NextStepID: "mood_dark"},
			{Label: "Gritty Crime", Value: 80, NextStepID: "mood_dark"},
			{Label: "Psychological Thrillers", Value: 53, NextStepID: "mood_dark"},
		}},
		{ID: "mood_dark", Key: "mood", Question: "How deep into the dark side?", Options: []QuizOption{
			{Label: "On the edge of my seat", Value: "intense", NextStepID: "era_dark"},
			{Label: "Emotional & Heavy", Value: "emotional", NextStepID: "era_dark"},
			{Label: "Cold & Calculated", Value: "relaxed", NextStepID: "era_dark"},
			{Label: "Gory & Chaotic", Value: "light", NextStepID: "era_dark"},
		}},
		{ID: "era_dark", Key: "era", Question: "Choose your time capsule.", Options: eraOptions()},
		{ID: "genres_epic", Key: "genres", Question: "What kind of journey?", Options: []QuizOption{
			{Label: "Adrenaline Action", Value: 28, NextStepID: "mood_epic"},
			{Label: "Grand Sci-Fi", Value: 878, NextStepID: "mood_epic"},
			{Label: "High Fantasy", Value: 14, NextStepID: "mood_epic"},
			{Label: "War & History", Value: 10752, NextStepID: "mood_epic"},
		}},
		{ID: "mood_epic", Key: "mood", Question: "What's the emotional stakes?", Options: []QuizOption{
			{Label: "Heroic & Inspiring", Value: "light", NextStepID: "era_epic"},
			{Label: "Serious & High Stakes", Value: "intense", NextStepID: "era_epic"},
			{Label: "Grand & Majestic", Value: "relaxed", NextStepID: "era_epic"},
			{Label: "Tragic & Powerful", Value: "emotional", NextStepID: "era_epic"},
		}},
		{ID: "era_epic", Key: "era", Question: "Choose your time capsule.", Options: eraOptions()},
		{ID: "genres_surprise", Key: "genres", Question: "Let's take a wild card.", Options: []QuizOption{
			{Label: "Indie Gems", Value: 18, NextStepID: "runtime"},
			{Label: "Western Grit", Value: 37, NextStepID: "runtime"},
			{Label: "Music & Dreams", Value: 10402, NextStepID: "runtime"},
			{Label: "Random Blockbuster", Value: 28, NextStepID: "runtime"},
		}},
		{ID: "runtime", Key: "runtime", Question: "How long is your journey?", Options: []QuizOption{
			{Label: "Under 100m (Quick)", Value: "short"},
			{Label: "Standard Length", Value: "standard"},
			{Label: "Over 150m (Epic)", Value: "long"},
			{Label: "Any duration", Value: nil},
		}},
	}
}
