// Package mcp provides an MCP (Model Context Protocol) server adapter for citescope.
// It lets AI assistants run analyses and read content gaps, patterns and
// recommendations.
package mcp

import "errors"

// ErrMissingAnalysisService is returned when the analysis service is not provided.
var ErrMissingAnalysisService = errors.New("mcp: analysis service is required")
