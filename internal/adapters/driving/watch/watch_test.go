package watch

import (
	"context"
	"iter"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/custodia-labs/citescope/internal/core/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeIngest struct {
	mu      sync.Mutex
	batches [][]domain.RawCitation
}

func (f *fakeIngest) Ingest(_ context.Context, records []domain.RawCitation) (*domain.NormalisationReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, records)
	return &domain.NormalisationReport{Received: len(records), Accepted: len(records)}, nil
}

func (f *fakeIngest) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.batches)
}

type fakeAnalysis struct {
	runs chan domain.RunSpec
	err  error
}

func (f *fakeAnalysis) Run(_ context.Context, spec domain.RunSpec) (*domain.RunResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.runs <- spec
	return &domain.RunResult{ID: "run", Name: spec.Name}, nil
}

func (f *fakeAnalysis) RunMany(context.Context, []domain.RunSpec) ([]*domain.RunResult, error) {
	return nil, nil
}
func (f *fakeAnalysis) Get(context.Context, string) (*domain.RunResult, error) { return nil, nil }
func (f *fakeAnalysis) Latest(context.Context) (*domain.RunResult, error)      { return nil, nil }
func (f *fakeAnalysis) List(context.Context) ([]domain.RunInfo, error)         { return nil, nil }
func (f *fakeAnalysis) Recommendations(context.Context, string) (iter.Seq[domain.Recommendation], error) {
	return nil, nil
}

const batch = `{"query_id":"q1","engine":"perplexity","url":"https://rival.com/a","observed_at":"2026-03-01T10:00:00Z"}
`

// drop writes a batch beside the inbox and renames it in.
func drop(t *testing.T, dir, name string) {
	t.Helper()
	tmp := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(tmp, []byte(batch), 0600))
	require.NoError(t, os.Rename(tmp, filepath.Join(dir, name)))
}

func TestNew_Validation(t *testing.T) {
	_, err := New(t.TempDir(), nil, &fakeAnalysis{}, Options{})
	assert.Error(t, err)

	_, err = New(filepath.Join(t.TempDir(), "missing"), &fakeIngest{}, &fakeAnalysis{}, Options{})
	assert.ErrorIs(t, err, os.ErrNotExist)

	file := filepath.Join(t.TempDir(), "f.jsonl")
	require.NoError(t, os.WriteFile(file, nil, 0600))
	_, err = New(file, &fakeIngest{}, &fakeAnalysis{}, Options{})
	assert.Error(t, err)
}

func TestWatcher_IngestsExistingAndNewFiles(t *testing.T) {
	inbox := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(inbox, "001.jsonl"), []byte(batch), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(inbox, "notes.txt"), []byte("ignored"), 0600))

	ingest := &fakeIngest{}
	analysis := &fakeAnalysis{runs: make(chan domain.RunSpec, 4)}
	w, err := New(inbox, ingest, analysis, Options{
		MinInterval: 10 * time.Millisecond,
		Spec:        domain.RunSpec{Name: "inbox"},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	select {
	case spec := <-analysis.runs:
		assert.Equal(t, "inbox", spec.Name)
	case <-time.After(5 * time.Second):
		t.Fatal("no analysis after existing file")
	}

	drop(t, inbox, "002.jsonl")
	select {
	case <-analysis.runs:
	case <-time.After(5 * time.Second):
		t.Fatal("no analysis after new file")
	}
	assert.Equal(t, 2, ingest.count())

	cancel()
	assert.NoError(t, <-done)
}

func TestWatcher_ConfigurationErrorStops(t *testing.T) {
	inbox := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(inbox, "001.jsonl"), []byte(batch), 0600))

	analysis := &fakeAnalysis{err: &domain.ConfigurationError{Field: "weights", Reason: "invalid"}}
	w, err := New(inbox, &fakeIngest{}, analysis, Options{MinInterval: time.Millisecond})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = w.Run(ctx)

	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestWatcher_ProcessSkipsSeenAndMalformed(t *testing.T) {
	inbox := t.TempDir()
	ingest := &fakeIngest{}
	w, err := New(inbox, ingest, &fakeAnalysis{}, Options{})
	require.NoError(t, err)

	good := filepath.Join(inbox, "good.jsonl")
	bad := filepath.Join(inbox, "bad.jsonl")
	require.NoError(t, os.WriteFile(good, []byte(batch), 0600))
	require.NoError(t, os.WriteFile(bad, []byte("{oops\n"), 0600))

	ctx := context.Background()
	w.process(ctx, good)
	w.process(ctx, good)
	w.process(ctx, bad)

	assert.Equal(t, 1, ingest.count())
	assert.Len(t, w.trigger, 1)
}
