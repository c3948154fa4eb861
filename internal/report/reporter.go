// Package report renders completed benchmark runs into filesystem artifacts
// and dispatches alerts for threshold and regression violations.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"perfbench/internal/benchmark"
	"perfbench/internal/regression"
)

// DefaultDir is where report artifacts land unless configured otherwise.
const DefaultDir = "test-results/performance/reports"

// Options selects the output directory and which artifact formats to emit.
// Every format is independently toggleable.
type Options struct {
	OutputDir string
	Markdown  bool
	JSON      bool
	HTML      bool
	CSV       bool
}

// DefaultOptions emits everything.
func DefaultOptions() Options {
	return Options{OutputDir: DefaultDir, Markdown: true, JSON: true, HTML: true, CSV: true}
}

// Generated describes one report generation's artifacts.
type Generated struct {
	ID     string   `json:"id"`
	Files  []string `json:"files"`
	Alerts []Alert  `json:"alerts"`
}

// Reporter renders results and pushes alerts into channels.
type Reporter struct {
	opts     Options
	channels []AlertChannel
	logger   *slog.Logger
}

func NewReporter(opts Options, channels []AlertChannel, logger *slog.Logger) *Reporter {
	if opts.OutputDir == "" {
		opts.OutputDir = DefaultDir
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reporter{opts: opts, channels: channels, logger: logger}
}

// jsonArtifact is the structured machine-parseable artifact shape.
type jsonArtifact struct {
	Result     *benchmark.TestResult `json:"result"`
	Regression *regression.Report    `json:"regression,omitempty"`
	Alerts     []Alert               `json:"alerts"`
}

// Generate renders the enabled artifacts and dispatches alerts. A failing
// alert channel is logged and skipped; it never fails the generation.
func (r *Reporter) Generate(ctx context.Context, result *benchmark.TestResult, reg *regression.Report) (*Generated, error) {
	if result == nil {
		return nil, fmt.Errorf("cannot generate report for nil result")
	}
	if err := os.MkdirAll(r.opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}

	gen := &Generated{
		ID:     fmt.Sprintf("%s-%s", sanitize(result.Name), time.Now().UTC().Format("20060102T150405Z")),
		Alerts: EvaluateAlerts(result, reg),
	}

	if r.opts.Markdown {
		if err := r.writeArtifact(gen, "md", []byte(RenderMarkdown(result, reg))); err != nil {
			return nil, err
		}
	}
	if r.opts.JSON {
		data, err := json.MarshalIndent(jsonArtifact{Result: result, Regression: reg, Alerts: gen.Alerts}, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal report: %w", err)
		}
		if err := r.writeArtifact(gen, "json", data); err != nil {
			return nil, err
		}
	}
	if r.opts.HTML {
		html, err := RenderHTML(result, reg)
		if err != nil {
			return nil, err
		}
		if err := r.writeArtifact(gen, "html", []byte(html)); err != nil {
			return nil, err
		}
	}
	if r.opts.CSV {
		csvText, err := RenderCSV(result)
		if err != nil {
			return nil, err
		}
		if err := r.writeArtifact(gen, "csv", []byte(csvText)); err != nil {
			return nil, err
		}
	}

	r.dispatch(ctx, gen.Alerts)
	return gen, nil
}

func (r *Reporter) writeArtifact(gen *Generated, ext string, data []byte) error {
	path := filepath.Join(r.opts.OutputDir, gen.ID+"."+ext)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s report: %w", ext, err)
	}
	gen.Files = append(gen.Files, path)
	return nil
}

// dispatch fans alerts out to every channel, swallowing per-channel errors.
func (r *Reporter) dispatch(ctx context.Context, alerts []Alert) {
	for _, ch := range r.channels {
		if err := ch.Send(ctx, alerts); err != nil {
			r.logger.Warn("alert channel dispatch failed", "channel", ch.Name(), "error", err)
		}
	}
}

func sanitize(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			out = append(out, r)
		default:
			out = append(out, '-')
		}
	}
	return string(out)
}
