package mcp

import (
	"github.com/custodia-labs/citescope/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server needs.
type Ports struct {
	// Analysis runs and reads analyses. Required.
	Analysis driving.AnalysisService

	// Queries lists tracked queries. Optional.
	Queries driving.QueryService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Analysis == nil {
		return ErrMissingAnalysisService
	}
	return nil
}
