package service

import (
	"strings"

	"movie-discovery-picker/internal/models"
	"movie-discovery-picker/internal/tmdb"
)

const maxPromptCandidates = 50

// normalize maps a movie or series record onto a Candidate. People and
// records without a title are rejected.
func normalize(item tmdb.Item, strategy models.Strategy) (models.Candidate, bool) {
	var media models.MediaType
	if item.MediaType != "" {
		m, ok := models.ParseMediaType(item.MediaType)
		if !ok {
			return models.Candidate{}, false
		}
		media = m
	} else if item.FirstAirDate != "" {
		media = models.MediaTV
	} else {
		media = models.MediaMovie
	}

	title := item.Title
	if title == "" {
		title = item.Name
	}
	if strings.TrimSpace(title) == "" {
		return models.Candidate{}, false
	}

	releaseDate := item.ReleaseDate
	if releaseDate == "" {
		releaseDate = item.FirstAirDate
	}

	genres := item.GenreIDs
	if genres == nil {
		genres = []int{}
	}

	return models.Candidate{
		ID:           item.ID,
		Title:        title,
		Overview:     item.Overview,
		PosterPath:   item.PosterPath,
		BackdropPath: item.BackdropPath,
		ReleaseDate:  releaseDate,
		VoteAverage:  item.VoteAverage,
		VoteCount:    item.VoteCount,
		Popularity:   item.Popularity,
		GenreIDs:     genres,
		MediaType:    media,
		Strategy:     strategy,
	}, true
}

// Merge flattens batches in order and keeps the first record seen for each id.
func Merge(batches []Batch) []models.Candidate {
	seen := make(map[int]bool)
	out := make([]models.Candidate, 0)
	for _, batch := range batches {
		for _, item := range batch.Items {
			c, ok := normalize(item, batch.Strategy)
			if !ok || seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			out = append(out, c)
		}
	}
	return out
}

// FilterRelevant keeps candidates whose title or overview mentions one of
// keywords, or that have more than 200 votes. No keywords keeps everything.
func FilterRelevant(candidates []models.Candidate, keywords []string) []models.Candidate {
	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			lowered = append(lowered, k)
		}
	}
	if len(lowered) == 0 {
		return candidates
	}

	out := make([]models.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.VoteCount > 200 || mentionsAny(strings.ToLower(c.Title+" "+c.Overview), lowered) {
			out = append(out, c)
		}
	}
	return out
}

func mentionsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

func truncate(candidates []models.Candidate, n int) []models.Candidate {
	if len(candidates) > n {
		return candidates[:n]
	}
	return candidates
}
