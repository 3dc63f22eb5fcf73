package harvest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nattapongw/dede-harvester/internal/classify"
	"github.com/nattapongw/dede-harvester/internal/manifest"
)

type fakeFetcher struct {
	calls     int
	referrers []string
	body      []byte
	err       error
}

func (f *fakeFetcher) Fetch(_ context.Context, _, referrer string) ([]byte, error) {
	f.calls++
	f.referrers = append(f.referrers, referrer)
	if f.err != nil {
		return nil, f.err
	}
	return f.body, nil
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func intPtr(v int) *int { return &v }

func newPipeline(t *testing.T, fetcher *fakeFetcher, force bool) (*Pipeline, *manifest.Store, string) {
	t.Helper()
	root := t.TempDir()
	store := manifest.NewStore(filepath.Join(root, "manifest.json"), zap.NewNop())
	cfg := PipelineConfig{
		OutputRoot:   root,
		Product:      "dede-energy",
		MinYear:      2010,
		ForceRefresh: force,
	}
	clock := fixedClock{t: time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)}
	return NewPipeline(cfg, store, fetcher, clock, zap.NewNop()), store, root
}

func TestRetrieveIfNeededSavesAndRecords(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{body: []byte("spreadsheet-bytes")}
	pipeline, store, root := newPipeline(t, fetcher, false)

	href := "https://example.go.th/files/energy_2567_january_december.xlsx"
	link := ResolvedLink{
		LinkRecord: LinkRecord{Href: href, Text: "Energy 2567"},
		Year:       intPtr(2024),
		Period:     classify.PeriodAnnual,
	}

	outcome, err := pipeline.RetrieveIfNeeded(context.Background(), link, "https://example.go.th/hub")
	require.NoError(t, err)
	assert.Equal(t, OutcomeRetrieved, outcome)
	assert.Equal(t, []string{"https://example.go.th/hub"}, fetcher.referrers)

	dest := filepath.Join(root, "dede-energy", "2024", "energy_2567_january_december.xlsx")
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, []byte("spreadsheet-bytes"), data)

	m := store.Load()
	entry, ok := m.Items[manifest.Key("dede-energy", href)]
	require.True(t, ok)
	assert.Equal(t, 2024, entry.YearGregorian)
	assert.Equal(t, 2567, entry.YearBuddhist)
	assert.Equal(t, dest, entry.SavedPath)
	assert.Equal(t, time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC), entry.SavedAt)
}

func TestRetrieveIfNeededIsIdempotent(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{body: []byte("bytes")}
	pipeline, _, _ := newPipeline(t, fetcher, false)

	link := ResolvedLink{
		LinkRecord: LinkRecord{Href: "https://example.go.th/files/energy_2562.xlsx"},
		Year:       intPtr(2019),
		Period:     classify.PeriodAnnual,
	}

	outcome, err := pipeline.RetrieveIfNeeded(context.Background(), link, "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeRetrieved, outcome)

	outcome, err = pipeline.RetrieveIfNeeded(context.Background(), link, "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkippedOnDisk, outcome)
	assert.Equal(t, 1, fetcher.calls, "second run must perform zero network fetches")
}

func TestRetrieveIfNeededRefetchesWhenFileDeleted(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{body: []byte("bytes")}
	pipeline, store, _ := newPipeline(t, fetcher, false)

	link := ResolvedLink{
		LinkRecord: LinkRecord{Href: "https://example.go.th/files/energy_2563.xlsx"},
		Year:       intPtr(2020),
		Period:     classify.PeriodAnnual,
	}

	_, err := pipeline.RetrieveIfNeeded(context.Background(), link, "")
	require.NoError(t, err)

	m := store.Load()
	saved := m.Items[manifest.Key("dede-energy", link.Href)].SavedPath
	require.NoError(t, os.Remove(saved))

	outcome, err := pipeline.RetrieveIfNeeded(context.Background(), link, "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeRetrieved, outcome)
	assert.Equal(t, 2, fetcher.calls)
}

func TestRetrieveIfNeededForceRefresh(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{body: []byte("bytes")}
	pipeline, _, _ := newPipeline(t, fetcher, true)

	link := ResolvedLink{
		LinkRecord: LinkRecord{Href: "https://example.go.th/files/energy_2564.xlsx"},
		Year:       intPtr(2021),
		Period:     classify.PeriodAnnual,
	}

	for range 2 {
		outcome, err := pipeline.RetrieveIfNeeded(context.Background(), link, "")
		require.NoError(t, err)
		assert.Equal(t, OutcomeRetrieved, outcome)
	}
	assert.Equal(t, 2, fetcher.calls)
}

func TestRetrieveIfNeededSkipsBelowMinYear(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{body: []byte("bytes")}
	pipeline, _, _ := newPipeline(t, fetcher, false)

	link := ResolvedLink{
		LinkRecord: LinkRecord{Href: "https://example.go.th/files/energy_2540.xlsx"},
		Year:       intPtr(1997),
		Period:     classify.PeriodAnnual,
	}

	outcome, err := pipeline.RetrieveIfNeeded(context.Background(), link, "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkippedYear, outcome)
	assert.Zero(t, fetcher.calls)
}

func TestRetrieveIfNeededUnknownYearDirectory(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{body: []byte("bytes")}
	pipeline, _, root := newPipeline(t, fetcher, false)

	link := ResolvedLink{
		LinkRecord: LinkRecord{Href: "https://example.go.th/files/energy_balance.xlsx"},
		Period:     classify.PeriodAnnual,
	}

	outcome, err := pipeline.RetrieveIfNeeded(context.Background(), link, "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeRetrieved, outcome)
	assert.FileExists(t, filepath.Join(root, "dede-energy", "unknown", "energy_balance.xlsx"))
}

func TestRetrieveIfNeededFetchError(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("status 503")
	fetcher := &fakeFetcher{err: wantErr}
	pipeline, store, _ := newPipeline(t, fetcher, false)

	link := ResolvedLink{
		LinkRecord: LinkRecord{Href: "https://example.go.th/files/energy_2565.xlsx"},
		Year:       intPtr(2022),
		Period:     classify.PeriodAnnual,
	}

	_, err := pipeline.RetrieveIfNeeded(context.Background(), link, "")
	require.ErrorIs(t, err, wantErr)

	m := store.Load()
	assert.Empty(t, m.Items, "failed fetches must not create manifest entries")
}
