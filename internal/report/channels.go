package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/slack-go/slack"
)

var (
	alertLowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	alertMediumStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	alertHighStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	alertCritStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// ConsoleChannel writes alerts to a terminal-ish writer, colored by severity
// unless the environment disables color.
type ConsoleChannel struct {
	out   io.Writer
	color bool
}

func NewConsoleChannel(out io.Writer) *ConsoleChannel {
	if out == nil {
		out = os.Stderr
	}
	return &ConsoleChannel{out: out, color: !termenv.EnvNoColor()}
}

func (c *ConsoleChannel) Name() string { return "console" }

func (c *ConsoleChannel) Send(ctx context.Context, alerts []Alert) error {
	for _, a := range alerts {
		line := fmt.Sprintf("[%s/%s] %s", strings.ToUpper(a.Severity), a.Type, a.Message)
		if c.color {
			line = severityStyle(a.Severity).Render(line)
		}
		if _, err := fmt.Fprintln(c.out, line); err != nil {
			return err
		}
	}
	return nil
}

func severityStyle(severity string) lipgloss.Style {
	switch severity {
	case AlertSeverityCritical:
		return alertCritStyle
	case AlertSeverityHigh:
		return alertHighStyle
	case AlertSeverityMedium:
		return alertMediumStyle
	default:
		return alertLowStyle
	}
}

// FileChannel writes all alerts from the most recent report generation to a
// single JSON file, overwritten each time.
type FileChannel struct {
	path string
}

func NewFileChannel(path string) *FileChannel {
	return &FileChannel{path: path}
}

func (f *FileChannel) Name() string { return "file" }

func (f *FileChannel) Send(ctx context.Context, alerts []Alert) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("failed to create alerts directory: %w", err)
	}
	if alerts == nil {
		alerts = []Alert{}
	}
	data, err := json.MarshalIndent(alerts, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal alerts: %w", err)
	}
	return os.WriteFile(f.path, data, 0o644)
}

// SlackChannel posts an alert summary to a Slack incoming webhook.
type SlackChannel struct {
	webhookURL string
}

func NewSlackChannel(webhookURL string) *SlackChannel {
	return &SlackChannel{webhookURL: webhookURL}
}

func (s *SlackChannel) Name() string { return "slack" }

func (s *SlackChannel) Send(ctx context.Context, alerts []Alert) error {
	if s.webhookURL == "" {
		return fmt.Errorf("slack webhook URL is not configured")
	}
	if len(alerts) == 0 {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, ":rotating_light: *%d performance alert(s)*\n", len(alerts))
	for _, a := range alerts {
		fmt.Fprintf(&b, "• [%s/%s] %s\n", a.Severity, a.Type, a.Message)
	}

	msg := &slack.WebhookMessage{Text: b.String()}
	if err := slack.PostWebhookContext(ctx, s.webhookURL, msg); err != nil {
		return fmt.Errorf("failed to post slack alert: %w", err)
	}
	return nil
}
