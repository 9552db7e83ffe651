package insight

import (
	"fmt"

	"google.golang.org/genai"
)

const (
	DefaultLocation = "your current neighborhood"

	// FallbackInsightText is shown when no insight could be fetched.
	FallbackInsightText = "AI is ready to provide safety advice based on your surroundings."
)

type InsightResult struct {
	Text    string                  `json:"text"`
	Sources []*genai.GroundingChunk `json:"sources"`
}

type GroundingLink struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

type HavenResult struct {
	Text  string          `json:"text"`
	Links []GroundingLink `json:"links"`
}

// RemoteServiceError wraps every failure of a generate call: transport, auth,
// or a response without candidates.
type RemoteServiceError struct {
	Op  string
	Err error
}

func (e *RemoteServiceError) Error() string {
	if e.Err == nil {
		return e.Op + ": remote service error"
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteServiceError) Unwrap() error { return e.Err }
