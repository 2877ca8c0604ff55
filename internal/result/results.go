package result

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/fadilmartias/resume-analyzer/internal/dto"
)

const reportDateLayout = "January 2, 2006"

type Category struct {
	Key   string
	Label string
	Score float64
}

// Results is the presentation shape shared by the CLI and the PDF report.
type Results struct {
	Name          string
	Email         string
	JobTitle      string
	CompanyName   string
	Score         float64
	Breakdown     []Category
	MissingSkills []string
	Evaluation    []string
	Mentorship    []string
	CoverLetter   string
	ReportDate    string
}

func Normalize(rec dto.AnalysisRecordDTO) Results {
	date := rec.Date
	if date.IsZero() {
		date = rec.CreatedAt
	}
	reportDate := ""
	if !date.IsZero() {
		reportDate = date.Format(reportDateLayout)
	}

	return Results{
		Name:          rec.Name,
		Email:         rec.Email,
		JobTitle:      rec.JobTitle,
		CompanyName:   rec.CompanyName,
		Score:         nonNegative(rec.Score),
		Breakdown:     categories(rec.Breakdown),
		MissingSkills: ParseVariant(rec.MissingSkills).Skills(),
		Evaluation:    ParseVariant(rec.EvaluationOfResume).Lines(),
		Mentorship:    ParseVariant(rec.Mentorship).Lines(),
		CoverLetter:   strings.TrimSpace(rec.CoverLetter),
		ReportDate:    reportDate,
	}
}

func (r Results) ScoreLabel() string {
	return FormatPercent(r.Score)
}

func FormatPercent(v float64) string {
	return fmt.Sprintf("%.0f%%", v)
}

func categories(breakdown map[string]float64) []Category {
	out := make([]Category, 0, len(breakdown))
	for key, score := range breakdown {
		out = append(out, Category{Key: key, Label: Humanize(key), Score: nonNegative(score)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Humanize turns "keywordMatch" or "keyword_match" into "Keyword Match".
func Humanize(key string) string {
	var b strings.Builder
	prevLower := false
	for i, r := range key {
		switch {
		case r == '_' || r == '-':
			b.WriteRune(' ')
			prevLower = false
			continue
		case unicode.IsUpper(r) && prevLower:
			b.WriteRune(' ')
		}
		if i == 0 || b.Len() > 0 && strings.HasSuffix(b.String(), " ") {
			r = unicode.ToUpper(r)
		}
		b.WriteRune(r)
		prevLower = unicode.IsLower(r) || unicode.IsDigit(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
