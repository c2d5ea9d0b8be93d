// Package charts renders collection statistics as interactive HTML charts.
package charts

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// ErrNoData is returned when there is nothing to plot.
var ErrNoData = errors.New("no data to chart")

// ChartConfig holds configuration for charts.
type ChartConfig struct {
	Title    string
	Subtitle string
	Width    string // e.g. "1200px"
	Height   string
	Theme    string
	Colors   []string // owned, missing
}

// DefaultChartConfig returns default chart configuration.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Title:  "Pack Completion",
		Width:  "1200px",
		Height: "600px",
		Theme:  "light",
		Colors: []string{"#3BA272", "#EE6666"},
	}
}

// PackCompletion is the owned/total card count of one pack.
type PackCompletion struct {
	Name  string
	Owned int
	Total int
}

// Missing returns the number of distinct cards not owned.
func (p PackCompletion) Missing() int {
	if p.Owned >= p.Total {
		return 0
	}
	return p.Total - p.Owned
}

// Percentage returns the completion percentage.
func (p PackCompletion) Percentage() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Owned) / float64(p.Total) * 100
}

// NewPackCompletionChart builds a stacked bar chart of owned and missing
// cards per pack, in the order given.
func NewPackCompletionChart(packs []PackCompletion, config ChartConfig) (*charts.Bar, error) {
	if len(packs) == 0 {
		return nil, ErrNoData
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  config.Width,
			Height: config.Height,
			Theme:  config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    config.Title,
			Subtitle: config.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
		}),
		charts.WithXAxisOpts(opts.XAxis{
			AxisLabel: &opts.AxisLabel{Rotate: 45, Interval: "0"},
		}),
		charts.WithColorsOpts(opts.Colors(config.Colors)),
	)

	labels := make([]string, len(packs))
	owned := make([]opts.BarData, len(packs))
	missing := make([]opts.BarData, len(packs))
	for i, p := range packs {
		labels[i] = p.Name
		owned[i] = opts.BarData{Value: p.Owned}
		missing[i] = opts.BarData{Value: p.Missing()}
	}

	stacked := charts.WithBarChartOpts(opts.BarChart{Stack: "cards"})
	bar.SetXAxis(labels).
		AddSeries("Owned", owned, stacked).
		AddSeries("Missing", missing, stacked).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show: opts.Bool(false),
			}),
		)

	return bar, nil
}

// RenderPackCompletion writes the pack completion chart to outputPath.
func RenderPackCompletion(packs []PackCompletion, config ChartConfig, outputPath string) error {
	bar, err := NewPackCompletionChart(packs, config)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create chart directory: %w", err)
		}
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	if err := bar.Render(f); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}

	return nil
}

// OpenInBrowser opens the given file path in the default web browser.
func OpenInBrowser(filePath string) error {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", absPath)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", absPath)
	case "linux":
		cmd = exec.Command("xdg-open", absPath)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
