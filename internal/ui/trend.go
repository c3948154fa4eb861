// Package ui holds the terminal views: the interactive history browser and
// the shared lipgloss styles used by the CLI output.
package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"perfbench/internal/history"
)

type trendKeyMap struct {
	Quit key.Binding
	Up   key.Binding
	Down key.Binding
}

func (k trendKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Quit}
}

func (k trendKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Quit},
	}
}

var trendKeys = trendKeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "move up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "move down"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q/ctrl+c", "quit"),
	),
}

// runItem represents one stored run in the list pane.
type runItem struct {
	index int
	rec   history.Record
}

func (i runItem) Title() string {
	return i.rec.Timestamp.Format("2006-01-02 15:04:05")
}

func (i runItem) Description() string {
	commit := i.rec.CommitHash
	if len(commit) > 8 {
		commit = commit[:8]
	}
	if commit == "" {
		commit = "no commit"
	}
	return fmt.Sprintf("%s · %d benchmarks", commit, len(i.rec.Benchmarks))
}

func (i runItem) FilterValue() string { return i.rec.CommitHash }

// TrendModel is the interactive browser over stored history records: a run
// list on the left, per-run details and duration sparklines on the right.
type TrendModel struct {
	keys trendKeyMap
	help help.Model

	records []history.Record
	runList list.Model
	details viewport.Model

	width  int
	height int
}

// NewTrendModel builds the browser. Records are displayed newest first.
func NewTrendModel(records []history.Record) TrendModel {
	sorted := make([]history.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})

	items := make([]list.Item, len(sorted))
	for i, rec := range sorted {
		items[i] = runItem{index: i, rec: rec}
	}
	runList := list.New(items, list.NewDefaultDelegate(), 0, 0)
	runList.Title = "Benchmark Runs"
	runList.Styles.Title = listTitleStyle
	runList.SetShowStatusBar(false)

	m := TrendModel{
		keys:    trendKeys,
		help:    help.New(),
		records: sorted,
		runList: runList,
		details: viewport.New(0, 0),
	}
	m.updateDetails()
	return m
}

func (m TrendModel) Init() tea.Cmd {
	return tea.EnterAltScreen
}

func (m TrendModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

		listWidth := m.width / 3
		m.runList.SetSize(listWidth-4, m.height-6)
		m.details.Width = m.width - listWidth - 4
		m.details.Height = m.height - 6

	case tea.KeyMsg:
		if m.runList.FilterState() == list.Filtering {
			break
		}
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
	}

	var listCmd, detailsCmd tea.Cmd
	m.runList, listCmd = m.runList.Update(msg)
	m.details, detailsCmd = m.details.Update(msg)
	m.updateDetails()

	return m, tea.Batch(listCmd, detailsCmd)
}

func (m TrendModel) View() string {
	if len(m.records) == 0 {
		return "No benchmark history recorded yet.\n\nPress q to quit."
	}
	if m.width == 0 {
		return "Loading..."
	}

	header := headerStyle.Render(fmt.Sprintf("Performance History (%d runs)", len(m.records)))
	listView := runListStyle.Render(m.runList.View())
	detailsView := detailsStyle.Render(m.details.View())
	content := lipgloss.JoinHorizontal(lipgloss.Top, listView, detailsView)
	footer := footerStyle.Render(m.help.View(m.keys))

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (m *TrendModel) updateDetails() {
	item, ok := m.runList.SelectedItem().(runItem)
	if !ok {
		m.details.SetContent("Select a run to see details.")
		return
	}
	m.details.SetContent(m.renderRun(item.rec))
}

func (m *TrendModel) renderRun(rec history.Record) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Recorded: %s\n", rec.Timestamp.Format(time.RFC822))
	if rec.CommitHash != "" {
		fmt.Fprintf(&b, "Commit:   %s\n", rec.CommitHash)
	}
	fmt.Fprintf(&b, "Platform: %s/%s (%s)\n\n", rec.Platform.OS, rec.Platform.Arch, rec.Platform.GoVersion)

	for _, bm := range rec.Benchmarks {
		fmt.Fprintf(&b, "%s\n", bm.Name)
		fmt.Fprintf(&b, "  duration %s  memory %+d B", bm.Sample.Duration.Round(time.Microsecond), bm.Sample.MemoryDelta)
		if bm.Sample.CPUPercent != nil {
			fmt.Fprintf(&b, "  cpu %.1f%%", *bm.Sample.CPUPercent)
		}
		b.WriteString("\n")
		fmt.Fprintf(&b, "  trend %s %s\n\n", m.sparkline(bm.Name), m.trendArrow(bm.Name))
	}

	return b.String()
}

// durationSeries collects the duration of one benchmark name across all
// records, oldest first.
func (m *TrendModel) durationSeries(name string) []float64 {
	var series []float64
	for i := len(m.records) - 1; i >= 0; i-- {
		for _, bm := range m.records[i].Benchmarks {
			if bm.Name == name {
				series = append(series, float64(bm.Sample.Duration))
			}
		}
	}
	return series
}

func (m *TrendModel) sparkline(name string) string {
	return Sparkline(m.durationSeries(name))
}

func (m *TrendModel) trendArrow(name string) string {
	series := m.durationSeries(name)
	if len(series) < 2 {
		return trendFlatStyle.Render("→")
	}
	first, last := series[0], series[len(series)-1]
	switch {
	case last > first*1.05:
		return trendUpStyle.Render("↑ slower")
	case last < first*0.95:
		return trendDownStyle.Render("↓ faster")
	default:
		return trendFlatStyle.Render("→ stable")
	}
}

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders a series as unicode block characters, scaled to the
// series' own min and max. Empty input yields an empty string.
func Sparkline(series []float64) string {
	if len(series) == 0 {
		return ""
	}
	lo, hi := series[0], series[0]
	for _, v := range series {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	out := make([]rune, len(series))
	for i, v := range series {
		idx := 0
		if hi > lo {
			idx = int((v - lo) / (hi - lo) * float64(len(sparkRunes)-1))
		}
		out[i] = sparkRunes[idx]
	}
	return string(out)
}

// StartTrend runs the browser until the user quits.
func StartTrend(records []history.Record) error {
	p := tea.NewProgram(NewTrendModel(records), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
