package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/citescope/internal/core/domain"
)

const uriScheme = "citescope://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "runs",
		Name:        "runs",
		Description: "Stored analysis runs, newest first",
		MIMEType:    "application/json",
	}, s.handleRunsResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "runs/latest",
		Name:        "latest-run",
		Description: "Full result of the most recent analysis run",
		MIMEType:    "application/json",
	}, s.handleRunResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "runs/{runId}",
		Name:        "run",
		Description: "Full result of a stored analysis run",
		MIMEType:    "application/json",
	}, s.handleRunResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "queries",
		Name:        "queries",
		Description: "Tracked queries with their owner domains",
		MIMEType:    "application/json",
	}, s.handleQueriesResource)
}

func (s *Server) handleRunsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	runs, err := s.ports.Analysis.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	if runs == nil {
		runs = []domain.RunInfo{}
	}
	return jsonResource(req.Params.URI, runs)
}

// handleRunResource serves citescope://runs/latest and citescope://runs/{runId}.
func (s *Server) handleRunResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id := extractRunID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if id == "latest" {
		id = ""
	}

	run, err := s.run(ctx, id)
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrNoRuns) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("loading run: %w", err)
	}
	return jsonResource(req.Params.URI, run)
}

func (s *Server) handleQueriesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	queries := []domain.TrackedQuery{}
	if s.ports.Queries != nil {
		list, err := s.ports.Queries.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing queries: %w", err)
		}
		queries = append(queries, list...)
	}
	return jsonResource(req.Params.URI, queries)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractRunID extracts the run ID from a URI like citescope://runs/{runId}.
func extractRunID(uri string) string {
	const prefix = uriScheme + "runs/"
	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
