package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/citescope/internal/core/domain"
)

const defaultLimit = 20

// AnalyseInput is the input schema for the analyse tool.
type AnalyseInput struct {
	Name     string   `json:"name,omitempty" jsonschema:"label for the run"`
	Window   string   `json:"window,omitempty" jsonschema:"trailing window as a Go duration such as 168h (default from settings)"`
	AsOf     string   `json:"as_of,omitempty" jsonschema:"window end as RFC 3339 (default now)"`
	QueryIDs []string `json:"query_ids,omitempty" jsonschema:"restrict the run to these tracked query IDs"`
}

// RunOutput summarises a stored run.
type RunOutput struct {
	RunID           string         `json:"run_id"`
	Name            string         `json:"name,omitempty"`
	WindowStart     string         `json:"window_start"`
	WindowEnd       string         `json:"window_end"`
	Events          int            `json:"events"`
	Rejected        int            `json:"rejected"`
	Gaps            int            `json:"gaps"`
	Unevaluated     int            `json:"unevaluated"`
	Patterns        int            `json:"patterns"`
	Exclusions      int            `json:"exclusions"`
	Recommendations int            `json:"recommendations"`
	MeanScore       *float64       `json:"mean_score,omitempty"`
	ByTier          map[string]int `json:"by_tier"`
	TopOpportunity  []string       `json:"top_opportunities"`
	QuickWins       []string       `json:"quick_wins"`
}

// RunInput selects a stored run; an empty run_id means the latest.
type RunInput struct {
	RunID string `json:"run_id,omitempty" jsonschema:"run ID (default latest run)"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of items to return (default 20)"`
}

// GapsInput is the input schema for the list_gaps tool.
type GapsInput struct {
	RunID   string `json:"run_id,omitempty" jsonschema:"run ID (default latest run)"`
	Limit   int    `json:"limit,omitempty" jsonschema:"maximum number of gaps to return (default 20)"`
	GapType string `json:"gap_type,omitempty" jsonschema:"only gaps of this type: absent, uncontested, competitor_dominated, underperforming, leading"`
}

// GapOutput is one ranked content gap.
type GapOutput struct {
	Rank              int      `json:"rank"`
	QueryID           string   `json:"query_id"`
	QueryText         string   `json:"query_text,omitempty"`
	Score             float64  `json:"opportunity_score"`
	GapType           string   `json:"gap_type"`
	LeadingCompetitor string   `json:"leading_competitor,omitempty"`
	MissingFeatures   []string `json:"missing_features"`
	Reasoning         []string `json:"reasoning"`
	SuggestedFormat   string   `json:"suggested_format"`
	ContentAngles     []string `json:"content_angles"`
	Effort            string   `json:"effort"`
}

// GapsOutput is the output schema for the list_gaps tool.
type GapsOutput struct {
	RunID       string      `json:"run_id"`
	Gaps        []GapOutput `json:"gaps"`
	Unevaluated []string    `json:"unevaluated"`
	Count       int         `json:"count"`
}

// PatternOutput is one supported feature cluster.
type PatternOutput struct {
	Signature    string             `json:"signature"`
	CitationRate float64            `json:"citation_rate"`
	BaselineRate float64            `json:"baseline_rate"`
	Deviation    float64            `json:"deviation"`
	SampleSize   int                `json:"sample_size"`
	Engines      []string           `json:"engines"`
	EngineRates  map[string]float64 `json:"engine_rates"`
}

// PreferenceOutput is an engine's dominant content type.
type PreferenceOutput struct {
	Engine      string  `json:"engine"`
	ContentType string  `json:"content_type"`
	Share       float64 `json:"share"`
}

// PatternsOutput is the output schema for the list_patterns tool.
type PatternsOutput struct {
	RunID       string             `json:"run_id"`
	Patterns    []PatternOutput    `json:"patterns"`
	Preferences []PreferenceOutput `json:"engine_preferences"`
	Excluded    int                `json:"excluded_clusters"`
	Count       int                `json:"count"`
}

// RecommendationsInput is the input schema for the recommendations tool.
type RecommendationsInput struct {
	RunID    string `json:"run_id,omitempty" jsonschema:"run ID (default latest run)"`
	Limit    int    `json:"limit,omitempty" jsonschema:"maximum number of recommendations to return (default 20)"`
	Priority string `json:"priority,omitempty" jsonschema:"only recommendations of this tier: high, medium, low"`
}

// RecommendationOutput is one ranked recommendation.
type RecommendationOutput struct {
	ID           string  `json:"id"`
	Priority     string  `json:"priority"`
	Score        float64 `json:"score"`
	QueryID      string  `json:"query_id"`
	Action       string  `json:"action"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Corroborated bool    `json:"corroborated"`
	Effort       string  `json:"effort"`
}

// RecommendationsOutput is the output schema for the recommendations tool.
type RecommendationsOutput struct {
	RunID           string                 `json:"run_id"`
	Recommendations []RecommendationOutput `json:"recommendations"`
	Count           int                    `json:"count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyse",
		Description: "Run a citation analysis over stored events and store the result",
	}, s.handleAnalyse)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_gaps",
		Description: "List ranked content gaps of a run with factor reasoning",
	}, s.handleListGaps)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_patterns",
		Description: "List content feature patterns AI engines favour, with per-engine rates",
	}, s.handleListPatterns)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "recommendations",
		Description: "List prioritised content recommendations of a run",
	}, s.handleRecommendations)
}

func (s *Server) handleAnalyse(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnalyseInput,
) (*mcp.CallToolResult, RunOutput, error) {
	spec := domain.RunSpec{Name: input.Name, QueryIDs: input.QueryIDs}
	if input.Window != "" {
		d, err := time.ParseDuration(input.Window)
		if err != nil {
			return nil, RunOutput{}, fmt.Errorf("window: %w", err)
		}
		spec.Window = d
	}
	if input.AsOf != "" {
		t, err := time.Parse(time.RFC3339, input.AsOf)
		if err != nil {
			return nil, RunOutput{}, fmt.Errorf("as_of: %w", err)
		}
		spec.AsOf = t
	}

	run, err := s.ports.Analysis.Run(ctx, spec)
	if err != nil {
		return nil, RunOutput{}, err
	}
	return nil, runOutput(run), nil
}

func (s *Server) handleListGaps(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GapsInput,
) (*mcp.CallToolResult, GapsOutput, error) {
	run, err := s.run(ctx, input.RunID)
	if err != nil {
		return nil, GapsOutput{}, err
	}

	out := GapsOutput{RunID: run.ID, Gaps: []GapOutput{}, Unevaluated: []string{}}
	limit := limitOf(input.Limit)
	for i := range run.Gaps {
		g := &run.Gaps[i]
		if input.GapType != "" && string(g.GapType) != input.GapType {
			continue
		}
		if len(out.Gaps) == limit {
			break
		}
		out.Gaps = append(out.Gaps, gapOutput(g))
	}
	for _, u := range run.Unevaluated {
		out.Unevaluated = append(out.Unevaluated, u.QueryID+": "+u.Reason)
	}
	out.Count = len(out.Gaps)
	return nil, out, nil
}

func (s *Server) handleListPatterns(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RunInput,
) (*mcp.CallToolResult, PatternsOutput, error) {
	run, err := s.run(ctx, input.RunID)
	if err != nil {
		return nil, PatternsOutput{}, err
	}

	out := PatternsOutput{RunID: run.ID, Patterns: []PatternOutput{}, Preferences: []PreferenceOutput{}}
	limit := limitOf(input.Limit)
	for _, p := range run.Patterns {
		if len(out.Patterns) == limit {
			break
		}
		po := PatternOutput{
			Signature:    p.SignatureKey,
			CitationRate: p.CitationRate,
			BaselineRate: p.BaselineRate,
			Deviation:    p.Deviation,
			SampleSize:   p.SampleSize,
			Engines:      make([]string, len(p.EnginesObserved)),
			EngineRates:  make(map[string]float64, len(p.EngineRates)),
		}
		for i, e := range p.EnginesObserved {
			po.Engines[i] = string(e)
		}
		for _, r := range p.EngineRates {
			po.EngineRates[string(r.Engine)] = r.CitationRate
		}
		out.Patterns = append(out.Patterns, po)
	}
	for _, p := range run.Preferences {
		out.Preferences = append(out.Preferences, PreferenceOutput{
			Engine:      string(p.Engine),
			ContentType: p.ContentType,
			Share:       p.Share,
		})
	}
	for _, e := range run.Exclusions {
		if e.Kind == domain.ExclusionCluster {
			out.Excluded++
		}
	}
	out.Count = len(out.Patterns)
	return nil, out, nil
}

func (s *Server) handleRecommendations(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RecommendationsInput,
) (*mcp.CallToolResult, RecommendationsOutput, error) {
	run, err := s.run(ctx, input.RunID)
	if err != nil {
		return nil, RecommendationsOutput{}, err
	}
	seq, err := s.ports.Analysis.Recommendations(ctx, run.ID)
	if err != nil {
		return nil, RecommendationsOutput{}, err
	}

	out := RecommendationsOutput{RunID: run.ID, Recommendations: []RecommendationOutput{}}
	limit := limitOf(input.Limit)
	for r := range seq {
		if input.Priority != "" && string(r.Tier) != input.Priority {
			continue
		}
		if len(out.Recommendations) == limit {
			break
		}
		out.Recommendations = append(out.Recommendations, RecommendationOutput{
			ID:           r.ID,
			Priority:     string(r.Tier),
			Score:        r.Score,
			QueryID:      r.QueryID,
			Action:       string(r.Action),
			Title:        r.Title,
			Description:  r.Description,
			Corroborated: r.Corroborated,
			Effort:       string(r.Effort),
		})
	}
	out.Count = len(out.Recommendations)
	return nil, out, nil
}

// run loads a stored run, the latest when id is empty.
func (s *Server) run(ctx context.Context, id string) (*domain.RunResult, error) {
	if id == "" {
		return s.ports.Analysis.Latest(ctx)
	}
	return s.ports.Analysis.Get(ctx, id)
}

func limitOf(n int) int {
	if n <= 0 {
		return defaultLimit
	}
	return n
}

func runOutput(run *domain.RunResult) RunOutput {
	out := RunOutput{
		RunID:           run.ID,
		Name:            run.Name,
		WindowStart:     run.Window.Start().Format(time.RFC3339),
		WindowEnd:       run.Window.End.Format(time.RFC3339),
		Events:          run.Events,
		Rejected:        len(run.Normalisation.Rejected),
		Gaps:            len(run.Gaps),
		Unevaluated:     len(run.Unevaluated),
		Patterns:        len(run.Patterns),
		Exclusions:      len(run.Exclusions),
		Recommendations: len(run.Recommendations),
		ByTier:          make(map[string]int, len(run.Summary.ByTier)),
		TopOpportunity:  append([]string{}, run.Summary.TopOpportunities...),
		QuickWins:       append([]string{}, run.Summary.QuickWins...),
	}
	if v, ok := run.Summary.MeanScore.Get(); ok {
		out.MeanScore = &v
	}
	for tier, n := range run.Summary.ByTier {
		out.ByTier[string(tier)] = n
	}
	return out
}

func gapOutput(g *domain.ContentGap) GapOutput {
	out := GapOutput{
		Rank:            g.Rank,
		QueryID:         g.QueryID,
		QueryText:       g.QueryText,
		Score:           g.OpportunityScore,
		GapType:         string(g.GapType),
		MissingFeatures: make([]string, len(g.MissingFeatures)),
		Reasoning:       make([]string, len(g.Reasoning)),
		SuggestedFormat: g.SuggestedFormat,
		ContentAngles:   append([]string{}, g.ContentAngles...),
		Effort:          string(g.Effort),
	}
	if g.LeadingCompetitorDomain != nil {
		out.LeadingCompetitor = *g.LeadingCompetitorDomain
	}
	for i, f := range g.MissingFeatures {
		out.MissingFeatures[i] = string(f)
	}
	for i, r := range g.Reasoning {
		out.Reasoning[i] = fmt.Sprintf("%s: %.2f x %.2f = %.3f", r.Factor, r.RawValue, r.Weight, r.Contribution)
	}
	return out
}
