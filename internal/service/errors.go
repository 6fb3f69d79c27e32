package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest wraps malformed quiz answers, prompts and lookups.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrLLMUnavailable is returned by the prompt flow when no LLM is configured.
	ErrLLMUnavailable = errors.New("llm is not configured")
	// ErrLLMFailed marks a chat completion that failed upstream.
	ErrLLMFailed = errors.New("llm request failed")
	// ErrAllStrategiesFailed is a soft failure: it is reported as a warning
	// next to an empty result list.
	ErrAllStrategiesFailed = errors.New("all candidate strategies failed")
	// ErrNoRankingData means the re-rank answer held nothing usable.
	ErrNoRankingData = errors.New("no ranking data")
	// ErrGenreStoreUnavailable is returned when the genre database is not connected.
	ErrGenreStoreUnavailable = errors.New("genre store is not configured")
)

// IntentParseError is returned when the intent completion cannot be used.
type IntentParseError struct {
	Raw string
	Err error
}

func (e *IntentParseError) Error() string {
	return fmt.Sprintf("failed to parse intent: %v", e.Err)
}

func (e *IntentParseError) Unwrap() error { return e.Err }

// RerankError describes why an AI re-rank was abandoned.
type RerankError struct {
	Reason string
	Err    error
}

func (e *RerankError) Error() string {
	if e.Err == nil {
		return "rerank failed: " + e.Reason
	}
	return fmt.Sprintf("rerank failed: %s: %v", e.Reason, e.Err)
}

func (e *RerankError) Unwrap() error { return e.Err }
