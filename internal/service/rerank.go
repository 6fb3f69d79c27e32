package service

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"

	"movie-discovery-picker/internal/llm"
	"movie-discovery-picker/internal/metrics"
	"movie-discovery-picker/internal/models"
)

const (
	defaultAIScore     = 50
	defaultMatchReason = "A solid choice based on your interests."
	maxOverviewChars   = 400
)

// rankingWrapperKeys are the top-level keys models have been seen to nest
// the ranking array under, in lookup order.
var rankingWrapperKeys = []string{"movies", "results", "ranking", "items"}

// RerankContext is what the model is told about the request.
type RerankContext struct {
	Prompt  string
	Genres  []int
	Era     models.Era
	Mood    string
	Runtime models.Runtime
	Seed    string
}

// RerankResult is the outcome of a best-effort re-rank. When Reranked is
// false, Candidates is the input list untouched and Err says why.
type RerankResult struct {
	Candidates []models.Candidate
	Reranked   bool
	Err        error
}

// Reranker asks the LLM to reorder and annotate heuristic candidates.
type Reranker struct {
	llm llm.Completer
}

func NewReranker(completer llm.Completer) *Reranker {
	return &Reranker{llm: completer}
}

// Rerank never fails: any problem yields the input list with Reranked=false.
func (r *Reranker) Rerank(ctx context.Context, candidates []models.Candidate, rc RerankContext) RerankResult {
	ranked, err := r.rank(ctx, candidates, rc)
	if err != nil {
		slog.Warn("AI re-rank failed, returning heuristic order", "error", err, "candidates", len(candidates))
		metrics.RerankOutcomesTotal.WithLabelValues("fallback").Inc()
		return RerankResult{Candidates: candidates, Err: err}
	}
	metrics.RerankOutcomesTotal.WithLabelValues("ai").Inc()
	return RerankResult{Candidates: ranked, Reranked: true}
}

func (r *Reranker) rank(ctx context.Context, candidates []models.Candidate, rc RerankContext) ([]models.Candidate, error) {
	raw, err := r.llm.CompleteJSON(ctx, "rerank", "", rerankPrompt(candidates, rc))
	if err != nil {
		return nil, &RerankError{Reason: "completion failed", Err: err}
	}

	entries, err := rankingEntries(raw)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]rankingEntry, len(entries))
	for _, e := range entries {
		if _, dup := byID[e.id]; !dup && e.id != "" {
			byID[e.id] = e
		}
	}

	out := make([]models.Candidate, len(candidates))
	matched := 0
	for i, c := range candidates {
		c.MatchScore = defaultAIScore
		c.VibeScore = defaultAIScore
		c.MatchReason = defaultMatchReason
		if e, ok := byID[strconv.Itoa(c.ID)]; ok {
			matched++
			if e.matchScore != 0 {
				c.MatchScore = max(e.matchScore, 0)
			}
			if e.vibeScore != 0 {
				c.VibeScore = int(math.Round(min(max(e.vibeScore, 0), 100)))
			}
			if e.matchReason != "" {
				c.MatchReason = e.matchReason
			}
		}
		out[i] = c
	}
	if matched == 0 {
		return nil, &RerankError{Reason: "no candidate ids in answer", Err: ErrNoRankingData}
	}

	slices.SortStableFunc(out, func(a, b models.Candidate) int {
		return cmp.Compare(b.MatchScore, a.MatchScore)
	})
	return out, nil
}

func rerankPrompt(candidates []models.Candidate, rc RerankContext) string {
	var sb strings.Builder
	sb.WriteString("You are a movie expert and cinephile. Re-rank these movies for a user based on this context:\n")
	if rc.Prompt != "" {
		fmt.Fprintf(&sb, "User Prompt: %q\n", rc.Prompt)
		sb.WriteString("\nCRITICAL: prioritize movies that directly fulfill the goal of that prompt " +
			"(e.g. teaching a specific skill, matching a very specific theme).\n")
	} else {
		fmt.Fprintf(&sb, "Genres: %s\nEra: %s\nMood: %s\nRuntime: %s\n",
			joinIDs(rc.Genres), orAny(string(rc.Era)), orAny(rc.Mood), orAny(string(rc.Runtime)))
		if media, id, err := models.ParseSeedKey(rc.Seed); err == nil {
			fmt.Fprintf(&sb, "Seed: the user picked %s %d as a favorite; prefer titles close to it.\n", media, id)
		}
	}

	sb.WriteString("\nMovies:\n")
	for i, c := range candidates {
		fmt.Fprintf(&sb, "%d. %s (ID: %d, Overview: %s)\n", i+1, c.Title, c.ID, clip(c.Overview, maxOverviewChars))
	}

	sb.WriteString(`
Return a JSON object {"movies": [...]} whose array holds objects with these fields exactly:
- id: (the original movie id)
- matchScore: (0-100 based on preference match)
- vibeScore: (0-100, specific to the mood/vibe)
- matchReason: (A punchy, witty, 1-sentence reason why this movie fits their specific request. Be creative and personal!)

Order the array from best match to worst. Return ONLY the JSON.`)
	return sb.String()
}

func orAny(s string) string {
	if s == "" {
		return "Any"
	}
	return s
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

type rankingEntry struct {
	id          string
	matchScore  float64
	vibeScore   float64
	matchReason string
}

// rankingEntries finds the ranking array in raw. A bare array is accepted;
// otherwise the wrapper keys are tried in order, and a wrapper holding an
// object contributes its values.
func rankingEntries(raw string) ([]rankingEntry, error) {
	trimmed := bytes.TrimSpace([]byte(raw))
	var list []json.RawMessage

	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, &RerankError{Reason: "malformed ranking array", Err: err}
		}
	} else {
		var top map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &top); err != nil {
			return nil, &RerankError{Reason: "malformed JSON", Err: err}
		}
		found := false
		for _, key := range rankingWrapperKeys {
			value, ok := top[key]
			if !ok {
				continue
			}
			items, ok := wrapperItems(value)
			if !ok {
				continue
			}
			list, found = items, true
			break
		}
		if !found {
			return nil, &RerankError{Reason: "no known wrapper key", Err: ErrNoRankingData}
		}
	}

	entries := make([]rankingEntry, 0, len(list))
	for _, item := range list {
		if e, ok := parseRankingEntry(item); ok {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func wrapperItems(value json.RawMessage) ([]json.RawMessage, bool) {
	var list []json.RawMessage
	if err := json.Unmarshal(value, &list); err == nil {
		return list, true
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(value, &obj); err != nil {
		return nil, false
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	list = make([]json.RawMessage, 0, len(obj))
	for _, k := range keys {
		list = append(list, obj[k])
	}
	return list, true
}

func parseRankingEntry(raw json.RawMessage) (rankingEntry, bool) {
	var fields struct {
		ID          json.RawMessage `json:"id"`
		MatchScore  json.RawMessage `json:"matchScore"`
		VibeScore   json.RawMessage `json:"vibeScore"`
		MatchReason json.RawMessage `json:"matchReason"`
	}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return rankingEntry{}, false
	}

	var reason string
	_ = json.Unmarshal(fields.MatchReason, &reason)

	return rankingEntry{
		id:          idKey(fields.ID),
		matchScore:  looseNumber(fields.MatchScore),
		vibeScore:   looseNumber(fields.VibeScore),
		matchReason: strings.TrimSpace(reason),
	}, true
}

// idKey renders a numeric or string id in canonical integer form so that
// 27205, "27205" and 27205.0 compare equal.
func idKey(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		if n, err := strconv.ParseFloat(s, 64); err == nil && n == math.Trunc(n) {
			return strconv.FormatInt(int64(n), 10)
		}
		return s
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil && n == math.Trunc(n) {
		return strconv.FormatInt(int64(n), 10)
	}
	return ""
}

// looseNumber reads a JSON number or numeric string; anything else is 0.
func looseNumber(raw json.RawMessage) float64 {
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return n
		}
	}
	return 0
}
