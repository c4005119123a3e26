package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/citescope/internal/core/domain"
)

func readRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: uri}}
}

func TestServer_handleRunResource(t *testing.T) {
	ctx := context.Background()
	server := newTestServer(t, newMock())

	for _, uri := range []string{"citescope://runs/latest", "citescope://runs/run-1"} {
		res, err := server.handleRunResource(ctx, readRequest(uri))
		require.NoError(t, err, uri)
		require.Len(t, res.Contents, 1)

		var run domain.RunResult
		require.NoError(t, json.Unmarshal([]byte(res.Contents[0].Text), &run))
		assert.Equal(t, "run-1", run.ID)
		assert.Equal(t, domain.Known(0.51), run.Summary.MeanScore)
	}

	_, err := server.handleRunResource(ctx, readRequest("citescope://runs/missing"))
	assert.Error(t, err)
	_, err = server.handleRunResource(ctx, readRequest("citescope://runs/a/b"))
	assert.Error(t, err)
}

func TestServer_handleRunsAndQueriesResources(t *testing.T) {
	ctx := context.Background()
	server, err := NewServer(&Ports{
		Analysis: newMock(),
		Queries:  &mockQueryService{queries: []domain.TrackedQuery{{ID: "q1", Text: "best crm"}}},
	})
	require.NoError(t, err)

	res, err := server.handleRunsResource(ctx, readRequest("citescope://runs"))
	require.NoError(t, err)
	var infos []domain.RunInfo
	require.NoError(t, json.Unmarshal([]byte(res.Contents[0].Text), &infos))
	require.Len(t, infos, 1)
	assert.Equal(t, 2, infos[0].Gaps)

	res, err = server.handleQueriesResource(ctx, readRequest("citescope://queries"))
	require.NoError(t, err)
	assert.Contains(t, res.Contents[0].Text, `"query_id": "q1"`)
}

func TestServer_handleQueriesResource_NoQueryPort(t *testing.T) {
	server := newTestServer(t, newMock())
	server.ports.Queries = nil

	res, err := server.handleQueriesResource(context.Background(), readRequest("citescope://queries"))

	require.NoError(t, err)
	assert.Equal(t, "[]", res.Contents[0].Text)
}

func TestExtractRunID(t *testing.T) {
	assert.Equal(t, "abc", extractRunID("citescope://runs/abc"))
	assert.Equal(t, "latest", extractRunID("citescope://runs/latest"))
	assert.Empty(t, extractRunID("citescope://queries"))
	assert.Empty(t, extractRunID("citescope://runs/a/b"))
}
