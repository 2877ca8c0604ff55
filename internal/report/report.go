// Package report renders an analysis as the fixed-structure HTML document that is
// printed to PDF.
package report

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/fadilmartias/resume-analyzer/internal/result"
)

const (
	NoMissingSkills = "None identified"
	NoEvaluation    = "No evaluation summary available."
	NoMentorship    = "No mentorship recommendations available."
	NoCoverLetter   = "No cover letter generated."
)

var funcs = template.FuncMap{
	"percent":    result.FormatPercent,
	"paragraphs": paragraphs,
}

var page = template.Must(template.New("report").Funcs(funcs).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Resume Analysis Report - {{.Name}}</title>
<style>
  @page { size: A4; margin: 18mm; }
  body { font-family: Arial, sans-serif; color: #2c3e50; }
  h1 { margin-bottom: 4px; }
  .meta { color: #7f8c8d; margin-top: 0; }
  .section { margin-bottom: 20px; page-break-inside: avoid; }
  .score { font-size: 32px; font-weight: bold; }
  table { border-collapse: collapse; width: 100%; }
  td, th { border-bottom: 1px solid #ecf0f1; padding: 6px 4px; text-align: left; }
  td.value { text-align: right; width: 80px; }
  .skill { color: #e74c3c; }
  .empty { color: #95a5a6; font-style: italic; }
</style>
</head>
<body>
<h1>Resume Analysis Report</h1>
<p class="meta">Generated on {{.ReportDate}}</p>

<div class="section" id="candidate">
  <h2>Candidate: {{.Name}}</h2>
  <p>Email: {{.Email}}</p>
  {{- if .JobTitle}}
  <p>Target role: {{.JobTitle}}{{if .CompanyName}} at {{.CompanyName}}{{end}}</p>
  {{- end}}
</div>

<div class="section" id="score">
  <h2>Overall Score</h2>
  <div class="score">{{percent .Score}}</div>
</div>

<div class="section" id="breakdown">
  <h2>Breakdown</h2>
  {{- if .Breakdown}}
  <table>
    <tr><th>Category</th><th>Score</th></tr>
    {{- range .Breakdown}}
    <tr><td>{{.Label}}</td><td class="value">{{percent .Score}}</td></tr>
    {{- end}}
  </table>
  {{- else}}
  <p class="empty">No breakdown available.</p>
  {{- end}}
</div>

<div class="section" id="missing-skills">
  <h2>Missing Skills</h2>
  {{- if .MissingSkills}}
  <ul>
    {{- range .MissingSkills}}
    <li class="skill">{{.}}</li>
    {{- end}}
  </ul>
  {{- else}}
  <p class="empty">` + NoMissingSkills + `</p>
  {{- end}}
</div>

<div class="section" id="evaluation">
  <h2>Resume Evaluation</h2>
  {{- if .Evaluation}}
  <ul>
    {{- range .Evaluation}}
    <li>{{.}}</li>
    {{- end}}
  </ul>
  {{- else}}
  <p class="empty">` + NoEvaluation + `</p>
  {{- end}}
</div>

<div class="section" id="mentorship">
  <h2>Mentorship Recommendations</h2>
  {{- if .Mentorship}}
  <ul>
    {{- range .Mentorship}}
    <li>{{.}}</li>
    {{- end}}
  </ul>
  {{- else}}
  <p class="empty">` + NoMentorship + `</p>
  {{- end}}
</div>

<div class="section" id="cover-letter">
  <h2>Cover Letter</h2>
  {{- with paragraphs .CoverLetter}}
  {{- range .}}
  <p>{{.}}</p>
  {{- end}}
  {{- else}}
  <p class="empty">` + NoCoverLetter + `</p>
  {{- end}}
</div>
</body>
</html>
`))

// Render produces the report HTML. Every user-supplied value is escaped.
func Render(r result.Results) (string, error) {
	var buf bytes.Buffer
	if err := page.Execute(&buf, r); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func paragraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
