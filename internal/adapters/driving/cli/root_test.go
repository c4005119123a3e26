package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/citescope/internal/adapters/driven/feed"
	"github.com/custodia-labs/citescope/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/citescope/internal/core/domain"
	"github.com/custodia-labs/citescope/internal/core/services"
)

const asOfFlag = "--as-of=2026-03-10T12:00:00Z"

var testAsOf = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// setupTestServices wires real services over in-memory stores.
func setupTestServices(t *testing.T) {
	t.Helper()
	settings := services.NewSettingsService(memory.NewConfigStore())
	citations := memory.NewCitationStore()
	queries := memory.NewQueryStore()
	results := memory.NewResultStore()
	Configure(Services{
		Ingest:   services.NewIngestService(citations, queries, settings),
		Analysis: services.NewAnalysisService(citations, queries, results, settings),
		Query:    services.NewQueryService(queries, settings),
		Settings: settings,
	})
	t.Cleanup(func() { Configure(Services{}) })
}

// execute runs the root command with args and returns its standard output.
// Log output goes to a separate buffer.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()
	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores every flag to its default between executions.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func intPtr(v int) *int { return &v }

// records builds n citations of host for query, an hour apart before testAsOf.
func records(n int, query, host string, position int) []domain.RawCitation {
	out := make([]domain.RawCitation, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.RawCitation{
			QueryID:      query,
			Engine:       "perplexity",
			URL:          fmt.Sprintf("https://%s/page-%d", host, i),
			CitationType: "ai_overview",
			Position:     intPtr(position),
			ObservedAt:   testAsOf.Add(-time.Duration(i+1) * time.Hour),
		})
	}
	return out
}

func writeRecords(t *testing.T, recs []domain.RawCitation) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "batch.jsonl")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, feed.WriteRecords(f, recs))
	return path
}

// seed tracks two queries, registers a competitor and ingests a batch.
func seed(t *testing.T) {
	t.Helper()
	_, err := execute(t, "", "competitors", "add", "rival.com")
	require.NoError(t, err)
	_, err = execute(t, "", "query", "add", "q1", "best crm for startups", "--owner", "acme.com", "--priority", "2")
	require.NoError(t, err)
	_, err = execute(t, "", "query", "add", "q2", "how to migrate crm data", "--owner", "acme.com")
	require.NoError(t, err)

	batch := records(5, "q1", "rival.com", 1)
	batch = append(batch, records(3, "q2", "rival.com", 2)...)
	batch = append(batch, records(2, "q2", "acme.com", 1)...)
	_, err = execute(t, "", "ingest", writeRecords(t, batch))
	require.NoError(t, err)
}

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "citescope", rootCmd.Use)
}

func TestRootCmd_HasCommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{
		"ingest", "analyse", "runs", "gaps", "patterns", "profiles",
		"recommend", "query", "competitors", "settings", "watch", "mcp", "version",
	} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestRootCmd_BootstrapOnFirstUse(t *testing.T) {
	called := false
	released := false
	SetBootstrap(func(cfg, data string) (Services, func() error, error) {
		called = true
		assert.Equal(t, "/tmp/cfg", cfg)
		settings := services.NewSettingsService(memory.NewConfigStore())
		queries := memory.NewQueryStore()
		return Services{
			Analysis: services.NewAnalysisService(memory.NewCitationStore(), queries, memory.NewResultStore(), settings),
			Query:    services.NewQueryService(queries, settings),
			Settings: settings,
		}, func() error { released = true; return nil }, nil
	})
	t.Cleanup(func() {
		SetBootstrap(nil)
		Configure(Services{})
	})

	out, err := execute(t, "", "--config-dir", "/tmp/cfg", "query", "list")

	require.NoError(t, err)
	assert.True(t, called)
	assert.True(t, released)
	assert.Contains(t, out, "No tracked queries")
}

func TestRootCmd_VersionSkipsBootstrap(t *testing.T) {
	SetBootstrap(func(string, string) (Services, func() error, error) {
		t.Fatal("bootstrap should not run")
		return Services{}, nil, nil
	})
	t.Cleanup(func() { SetBootstrap(nil) })

	_, err := execute(t, "", "version")

	assert.NoError(t, err)
}

func TestCommands_WithoutServices(t *testing.T) {
	tests := [][]string{
		{"ingest", "x.jsonl"},
		{"analyse"},
		{"runs"},
		{"gaps"},
		{"patterns"},
		{"recommend"},
		{"query", "list"},
		{"competitors", "list"},
		{"settings", "show"},
	}
	for _, args := range tests {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			_, err := execute(t, "", args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "not configured")
		})
	}
}
