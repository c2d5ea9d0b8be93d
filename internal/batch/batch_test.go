package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/NRDB-Companion/internal/metrics"
)

func TestReadURLs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decks.txt")
	content := "# tournament decks\nhttps://netrunnerdb.com/en/decklist/1/a\n\n  https://netrunnerdb.com/en/decklist/2/b  \n#skip\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	urls, err := ReadURLs(path)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://netrunnerdb.com/en/decklist/1/a",
		"https://netrunnerdb.com/en/decklist/2/b",
	}, urls)

	_, err = ReadURLs(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestProcessContinuesOnError(t *testing.T) {
	boom := errors.New("boom")
	var progress []int
	var failed []string

	result, err := Process(context.Background(), []string{"a", "bad", "c"},
		func(_ context.Context, input string) (string, error) {
			if input == "bad" {
				return "", boom
			}
			return input + ".pdf", nil
		},
		Options{
			OnProgress: func(current, total int, _ string) {
				assert.Equal(t, 3, total)
				progress = append(progress, current)
			},
			OnError: func(input string, err error) {
				assert.ErrorIs(t, err, boom)
				failed = append(failed, input)
			},
		})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, progress)
	assert.Equal(t, []string{"bad"}, failed)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.Success)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, "c.pdf", result.Items[2].Output)
	assert.Len(t, result.Failures(), 1)
	assert.InDelta(t, 66.67, result.SuccessRate(), 0.01)
	assert.Equal(t, "Processed 3 decklists: 2 succeeded, 1 failed (66.7% success)", result.Summary())
}

func TestProcessStopOnError(t *testing.T) {
	calls := 0
	result, err := Process(context.Background(), []string{"a", "b", "c"},
		func(context.Context, string) (string, error) {
			calls++
			return "", errors.New("fail")
		},
		Options{StopOnError: true})
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, result.Failed)
	assert.Len(t, result.Items, 1)
}

func TestProcessCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	result, err := Process(ctx, []string{"a", "b"},
		func(context.Context, string) (string, error) {
			cancel()
			return "ok", nil
		},
		Options{})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, result.Success)
}

func TestEmptyResult(t *testing.T) {
	result := &Result{}
	assert.Zero(t, result.SuccessRate())
}

func TestProcessRecordsDurations(t *testing.T) {
	m := metrics.NewCollector()
	result, err := Process(context.Background(), []string{"a", "b"},
		func(context.Context, string) (string, error) {
			time.Sleep(time.Millisecond)
			return "ok", nil
		},
		Options{Metrics: m})
	require.NoError(t, err)

	assert.Equal(t, 2, m.Stats().DeckLatency.Count)
	for _, item := range result.Items {
		assert.GreaterOrEqual(t, item.Duration, time.Millisecond)
	}
}
