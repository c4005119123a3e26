package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/citescope/internal/core/domain"
)

func TestAnalyseCmd_PrintsSummary(t *testing.T) {
	setupTestServices(t)
	seed(t)

	out, err := execute(t, "", "analyse", "--name", "daily", asOfFlag)

	require.NoError(t, err)
	assert.Contains(t, out, "(daily)")
	assert.Contains(t, out, "Events: 10")
	assert.Contains(t, out, "Gaps: 2 evaluated, 0 unevaluated")
	assert.Contains(t, out, "best crm for startups")
}

func TestAnalyseCmd_JSON(t *testing.T) {
	setupTestServices(t)
	seed(t)

	out, err := execute(t, "", "analyse", "--json", "--query", "q2", asOfFlag)

	require.NoError(t, err)
	var res domain.RunResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, testAsOf.Equal(res.Window.End))
	require.Len(t, res.Gaps, 1)
	assert.Equal(t, "q2", res.Gaps[0].QueryID)
}

func TestAnalyseCmd_SeveralWindows(t *testing.T) {
	setupTestServices(t)
	seed(t)

	out, err := execute(t, "", "analyse", "--window", "24h", "--window", "3h", asOfFlag)

	require.NoError(t, err)
	assert.Contains(t, out, "(window-24h0m0s)")
	assert.Contains(t, out, "(window-3h0m0s)")

	runs, err := analysisService.List(t.Context())
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestAnalyseCmd_BadAsOf(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "", "analyse", "--as-of", "yesterday")

	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestAnalyseCmd_UnknownQuery(t *testing.T) {
	setupTestServices(t)
	seed(t)

	_, err := execute(t, "", "analyse", "--query", "missing", asOfFlag)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRunsCmd(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "", "runs")
	require.NoError(t, err)
	assert.Contains(t, out, "No analysis runs")

	seed(t)
	_, err = execute(t, "", "analyse", "--name", "weekly", asOfFlag)
	require.NoError(t, err)

	out, err = execute(t, "", "runs")
	require.NoError(t, err)
	assert.Contains(t, out, "weekly")
	assert.Contains(t, out, "gaps=2")
}
