// Package batch runs an operation over a list of decklist URLs and collects
// per-item outcomes.
package batch

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ramonehamilton/NRDB-Companion/internal/metrics"
)

// Item is the outcome of processing a single input.
type Item struct {
	Input    string
	Output   string
	Err      error
	Duration time.Duration
}

// OK reports whether the item succeeded.
func (i Item) OK() bool {
	return i.Err == nil
}

// Result summarizes a batch run.
type Result struct {
	Success int
	Failed  int
	Total   int
	Items   []Item
}

// SuccessRate returns the percentage of successful items.
func (r *Result) SuccessRate() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Success) / float64(r.Total) * 100
}

// Failures returns the items that failed.
func (r *Result) Failures() []Item {
	var failed []Item
	for _, item := range r.Items {
		if !item.OK() {
			failed = append(failed, item)
		}
	}
	return failed
}

// Summary returns a one-line description of the run.
func (r *Result) Summary() string {
	return fmt.Sprintf("Processed %d decklists: %d succeeded, %d failed (%.1f%% success)",
		r.Total, r.Success, r.Failed, r.SuccessRate())
}

// Func processes one input and returns a description of what it produced,
// typically an output path.
type Func func(ctx context.Context, input string) (string, error)

// Options configures Process.
type Options struct {
	// StopOnError aborts the run after the first failure.
	StopOnError bool
	// OnProgress is called before each item with its 1-based position.
	OnProgress func(current, total int, input string)
	// OnError is called for each failed item.
	OnError func(input string, err error)
	// Metrics receives the duration of every item.
	Metrics *metrics.Collector
}

// ReadURLs reads one input per line, skipping blank lines and lines
// starting with '#'.
func ReadURLs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open batch file: %w", err)
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	return urls, nil
}

// Process runs fn for every input in order. Failures are recorded and the
// run continues unless opts.StopOnError is set. A cancelled context stops
// the run and is returned alongside the partial result.
func Process(ctx context.Context, inputs []string, fn Func, opts Options) (*Result, error) {
	result := &Result{Total: len(inputs), Items: make([]Item, 0, len(inputs))}

	for i, input := range inputs {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if opts.OnProgress != nil {
			opts.OnProgress(i+1, len(inputs), input)
		}

		start := time.Now()
		output, err := fn(ctx, input)
		elapsed := time.Since(start)
		opts.Metrics.RecordDeck(elapsed)
		result.Items = append(result.Items, Item{Input: input, Output: output, Err: err, Duration: elapsed})
		if err == nil {
			result.Success++
			continue
		}

		result.Failed++
		if opts.OnError != nil {
			opts.OnError(input, err)
		}
		if opts.StopOnError {
			break
		}
	}

	return result, nil
}
