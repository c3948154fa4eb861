package report

import (
	"fmt"
	"html/template"
	"strings"

	"perfbench/internal/benchmark"
	"perfbench/internal/regression"
)

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"fmtDuration": fmtDuration,
	"fmtBytes": func(v any) string {
		switch x := v.(type) {
		case int64:
			return fmtBytes(float64(x))
		case float64:
			return fmtBytes(x)
		}
		return "-"
	},
	"fmtCPU": func(cpu *float64) string {
		if cpu == nil {
			return "-"
		}
		return fmt.Sprintf("%.1f%%", *cpu)
	},
	"fmtPct": func(pct float64) string {
		return fmt.Sprintf("%+.1f%%", pct)
	},
	"fmtPctPtr": func(pct *float64) string {
		if pct == nil {
			return "-"
		}
		return fmt.Sprintf("%+.1f%%", *pct)
	},
	"verdict": func(b benchmark.Benchmark) string {
		if b.Passed() {
			return "pass"
		}
		return "fail"
	},
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Performance Report: {{.Result.Name}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 2rem; color: #222; }
h1 { border-bottom: 2px solid #7d56f4; padding-bottom: .4rem; }
table { border-collapse: collapse; margin: 1rem 0; }
th, td { border: 1px solid #ddd; padding: .4rem .8rem; text-align: left; }
th { background: #f5f2ff; }
.pass { color: #1a7f37; font-weight: bold; }
.fail { color: #cf222e; font-weight: bold; }
.severity-minor { color: #9a6700; }
.severity-moderate { color: #bc4c00; }
.severity-major { color: #cf222e; }
.severity-critical { color: #a40e26; font-weight: bold; }
</style>
</head>
<body>
<h1>Performance Report: {{.Result.Name}}</h1>
<p>Generated {{.Result.Timestamp.Format "2006-01-02 15:04:05 MST"}} —
<span class="{{if .Result.Passed}}pass{{else}}fail{{end}}">{{if .Result.Passed}}PASSED{{else}}FAILED{{end}}</span></p>
<h2>Summary</h2>
<ul>
<li>Iterations: {{len .Result.Benchmarks}} ({{.Result.Summary.PassedIterations}} passed, {{.Result.Summary.FailedIterations}} failed)</li>
<li>Duration: avg {{fmtDuration .Result.Summary.AverageDuration}}, min {{fmtDuration .Result.Summary.MinDuration}}, max {{fmtDuration .Result.Summary.MaxDuration}}</li>
<li>Memory delta: avg {{fmtBytes .Result.Summary.AverageMemoryDelta}}</li>
</ul>
<h2>Benchmarks</h2>
<table>
<tr><th>Name</th><th>Duration</th><th>Memory Δ</th><th>CPU</th><th>Result</th></tr>
{{range .Result.Benchmarks}}
<tr><td>{{.Name}}</td><td>{{fmtDuration .Sample.Duration}}</td><td>{{fmtBytes .Sample.MemoryDelta}}</td><td>{{fmtCPU .Sample.CPUPercent}}</td><td class="{{verdict .}}">{{verdict .}}</td></tr>
{{end}}
</table>
{{if .Regression}}{{if .Regression.Analyses}}
<h2>Regression Analysis</h2>
<p>{{.Regression.Summary}}</p>
<table>
<tr><th>Name</th><th>Severity</th><th>Duration Δ</th><th>Memory Δ</th><th>CPU Δ</th></tr>
{{range .Regression.Analyses}}
<tr><td>{{.Name}}</td><td class="severity-{{.Severity}}">{{.Severity}}</td><td>{{fmtPct .DurationDeltaPct}}</td><td>{{fmtPct .MemoryDeltaPct}}</td><td>{{fmtPctPtr .CPUDeltaPct}}</td></tr>
{{end}}
</table>
{{end}}{{end}}
</body>
</html>
`))

type htmlData struct {
	Result     *benchmark.TestResult
	Regression *regression.Report
}

// RenderHTML produces the styled document.
func RenderHTML(result *benchmark.TestResult, reg *regression.Report) (string, error) {
	var b strings.Builder
	if err := htmlTemplate.Execute(&b, htmlData{Result: result, Regression: reg}); err != nil {
		return "", fmt.Errorf("failed to render HTML report: %w", err)
	}
	return b.String(), nil
}
