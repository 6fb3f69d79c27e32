package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movie-discovery-picker/internal/llm"
	"movie-discovery-picker/internal/models"
)

const startupIntent = `{
	"representative_titles": ["The Social Network"],
	"search_queries": ["startup"],
	"genre_names": ["drama"],
	"era": null,
	"include_tv": false,
	"keywords": ["startup", "entrepreneur"]
}`

func TestExpandParsesIntent(t *testing.T) {
	completer := newFakeCompleter()
	completer.responses["intent"] = startupIntent

	intent, err := NewIntentExpander(completer, nil).Expand(context.Background(), "movies about startup culture")
	require.NoError(t, err)

	assert.Equal(t, []string{"The Social Network"}, intent.RepresentativeTitles)
	assert.Equal(t, []string{"startup"}, intent.SearchQueries)
	assert.Equal(t, []string{"drama"}, intent.GenreNames)
	assert.Equal(t, models.EraNone, intent.Era)
	assert.False(t, intent.IncludeTV)
	assert.Equal(t, []string{"startup", "entrepreneur"}, intent.Keywords)
	assert.Contains(t, completer.prompt("intent"), `"movies about startup culture"`)
}

func TestParseIntentNormalizes(t *testing.T) {
	intent, err := parseIntent(`{
		"representative_titles": ["A", " a ", "", "B", "C", "D", "E", "F"],
		"search_queries": ["q1", "q2", "q3", "q4"],
		"era": "Modern",
		"include_tv": true
	}`)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C", "D", "E", "F"}, intent.RepresentativeTitles)
	assert.Equal(t, []string{"q1", "q2", "q3", "q4"}, intent.SearchQueries)
	assert.Equal(t, models.EraModern, intent.Era)
	assert.True(t, intent.IncludeTV)
	assert.Empty(t, intent.Keywords)
}

func TestParseIntentBoundsRunawayLists(t *testing.T) {
	titles := make([]string, maxIntentSearches+5)
	for i := range titles {
		titles[i] = fmt.Sprintf("Title %d", i)
	}
	raw, err := json.Marshal(map[string]any{"representative_titles": titles})
	require.NoError(t, err)

	intent, err := parseIntent(string(raw))
	require.NoError(t, err)
	assert.Len(t, intent.RepresentativeTitles, maxIntentSearches)
	assert.Equal(t, "Title 0", intent.RepresentativeTitles[0])
}

func TestParseIntentUnknownEra(t *testing.T) {
	intent, err := parseIntent(`{"genre_names":["horror"],"era":"1970s"}`)
	require.NoError(t, err)
	assert.Equal(t, models.EraNone, intent.Era)
}

func TestParseIntentErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: "Sure! Here are some movies"},
		{name: "wrong types", raw: `{"representative_titles": "The Social Network"}`},
		{name: "nothing usable", raw: `{"keywords": ["startup"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseIntent(tt.raw)
			var parseErr *IntentParseError
			require.True(t, errors.As(err, &parseErr))
			assert.Equal(t, tt.raw, parseErr.Raw)
		})
	}
}

func TestExpandTransportErrorIsNotParseError(t *testing.T) {
	completer := newFakeCompleter()
	completer.errs["intent"] = errors.New("dial tcp: connection refused")

	_, err := NewIntentExpander(completer, nil).Expand(context.Background(), "anything")
	require.Error(t, err)
	var parseErr *IntentParseError
	assert.False(t, errors.As(err, &parseErr))
	assert.Contains(t, err.Error(), "intent expansion failed")
	assert.ErrorIs(t, err, ErrLLMFailed)
}

func TestExpandEmptyCompletionIsParseError(t *testing.T) {
	completer := newFakeCompleter()
	completer.errs["intent"] = llm.ErrEmptyCompletion

	_, err := NewIntentExpander(completer, nil).Expand(context.Background(), "anything")
	var parseErr *IntentParseError
	require.True(t, errors.As(err, &parseErr))
	assert.ErrorIs(t, err, llm.ErrEmptyCompletion)
}

func TestGenreIDs(t *testing.T) {
	store := &fakeGenreStore{byName: map[string][]int{"Sci-Fi & Fantasy": {10765}}}
	e := NewIntentExpander(newFakeCompleter(), store)

	ids := e.GenreIDs(context.Background(), []string{"Drama", "Science Fiction", "sci-fi", "Sci-Fi & Fantasy", "Nonexistent"})
	assert.Equal(t, []int{18, 878, 10765}, ids)
}

func TestGenreIDsWithoutStore(t *testing.T) {
	e := NewIntentExpander(newFakeCompleter(), nil)

	ids := e.GenreIDs(context.Background(), []string{"Sci-Fi & Fantasy", "war"})
	assert.Equal(t, []int{10752}, ids)
}
