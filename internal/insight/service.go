package insight

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"guardian-angel-api/config"

	"google.golang.org/genai"
)

const (
	insightPrompt = "Provide a brief safety overview and 3 quick self-defense tips for someone in %s."
	havenPrompt   = "Find 5 safe locations nearby like police stations, 24/7 hospitals, or well-lit public areas for a woman seeking safety."
)

var errNoCandidates = errors.New("no candidates in response")

// Replaced in tests.
var genaiGenerateContentHook = func(c *genai.Client, ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return c.Models.GenerateContent(ctx, model, contents, cfg)
}

type InsightService struct {
	Client *genai.Client
	Config *config.Config
}

func NewInsightService(client *genai.Client, cfg *config.Config) *InsightService {
	return &InsightService{Client: client, Config: cfg}
}

func (is *InsightService) GetSafetyInsights(ctx context.Context, location string) (*InsightResult, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		location = DefaultLocation
	}

	resp, err := is.generate(ctx, "safety insights", is.Config.InsightModel, fmt.Sprintf(insightPrompt, location), &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	})
	if err != nil {
		return nil, err
	}

	result := &InsightResult{Text: resp.Text(), Sources: []*genai.GroundingChunk{}}
	if md := resp.Candidates[0].GroundingMetadata; md != nil {
		for _, chunk := range md.GroundingChunks {
			if chunk != nil {
				result.Sources = append(result.Sources, chunk)
			}
		}
	}
	return result, nil
}

func (is *InsightService) FindSafeHavens(ctx context.Context, lat, lng float64) (*HavenResult, error) {
	resp, err := is.generate(ctx, "safe havens", is.Config.HavenModel, havenPrompt, &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleMaps: &genai.GoogleMaps{}}},
		ToolConfig: &genai.ToolConfig{
			RetrievalConfig: &genai.RetrievalConfig{
				LatLng: &genai.LatLng{Latitude: &lat, Longitude: &lng},
			},
		},
	})
	if err != nil {
		return nil, err
	}

	result := &HavenResult{Text: resp.Text(), Links: []GroundingLink{}}
	if md := resp.Candidates[0].GroundingMetadata; md != nil {
		result.Links = mapsLinks(md.GroundingChunks)
	}
	return result, nil
}

func (is *InsightService) generate(ctx context.Context, op, model, prompt string, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	contents := []*genai.Content{
		{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	resp, err := genaiGenerateContentHook(is.Client, ctx, model, contents, cfg)
	if err != nil {
		return nil, &RemoteServiceError{Op: op, Err: fmt.Errorf("generation error: %w", err)}
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return nil, &RemoteServiceError{Op: op, Err: errNoCandidates}
	}
	return resp, nil
}

// mapsLinks keeps only map chunks that carry a URI.
func mapsLinks(chunks []*genai.GroundingChunk) []GroundingLink {
	links := []GroundingLink{}
	for _, chunk := range chunks {
		if chunk == nil || chunk.Maps == nil || chunk.Maps.URI == "" {
			continue
		}
		links = append(links, GroundingLink{URI: chunk.Maps.URI, Title: chunk.Maps.Title})
	}
	return links
}
