package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"

	"github.com/fadilmartias/resume-analyzer/internal/dto"
	"github.com/fadilmartias/resume-analyzer/internal/logger"
)

// AnalysisWriter stores a finished analysis on the backend.
type AnalysisWriter interface {
	PostAnalysis(ctx context.Context, body dto.AnalyzeResumeRequest) (*dto.AnalysisRecordDTO, error)
}

// DemoGateway stands in for the workflow: it fabricates a plausible result and
// writes it back through the backend, so polling behaves exactly as in
// production.
type DemoGateway struct {
	writer AnalysisWriter
	score  func() int
}

func NewDemoGateway(writer AnalysisWriter) *DemoGateway {
	return &DemoGateway{
		writer: writer,
		score:  func() int { return rand.IntN(30) + 70 },
	}
}

func (g *DemoGateway) Submit(ctx context.Context, s Submission) (*Ack, error) {
	s, err := s.Validate()
	if err != nil {
		return nil, err
	}

	if _, err := g.writer.PostAnalysis(ctx, MockAnalysis(s, g.score())); err != nil {
		return nil, err
	}
	logger.Ctx(ctx).Info().Str("email", s.Email).Msg("demo analysis written")
	return &Ack{Email: s.Email, StatusCode: http.StatusAccepted}, nil
}

var demoBreakdown = map[string]float64{
	"JavaScript":         85,
	"React":              80,
	"Python":             60,
	"Communication":      90,
	"Project Management": 70,
}

var demoMissingSkills = []string{"Docker", "AWS", "TypeScript", "Agile Methodology"}

var demoEvaluation = []string{
	"Strong technical foundation with room for improvement in cloud technologies",
	"Excellent communication skills highlighted throughout resume",
	"Missing some key industry-standard tools and methodologies",
	"Experience aligns well with desired role requirements",
}

var demoMentorship = []string{
	"Connect with senior developers in your field through LinkedIn",
	"Join tech communities and attend virtual meetups",
	"Consider finding a mentor through ADPList or MentorCruise",
}

const demoCoverLetter = `Dear Hiring Manager,

I am excited to apply for the %s position. With my strong background in software development and passion for creating innovative solutions, I believe I would be a valuable addition to your team.

My experience includes working with modern technologies and frameworks, and I have consistently demonstrated my ability to learn quickly and adapt to new challenges. I am particularly drawn to this role because it aligns perfectly with my career goals and interests.

I would welcome the opportunity to discuss how my skills and enthusiasm can contribute to your team's success.

Best regards,
%s`

// MockAnalysis builds the demo result for a validated submission.
func MockAnalysis(s Submission, score int) dto.AnalyzeResumeRequest {
	breakdown := make(map[string]*float64, len(demoBreakdown))
	for k, v := range demoBreakdown {
		breakdown[k] = &v
	}
	return dto.AnalyzeResumeRequest{
		Name:               s.Name,
		Email:              s.Email,
		Score:              float64(score),
		Breakdown:          breakdown,
		MissingSkills:      mustMarshal(demoMissingSkills),
		JD:                 s.JobDescription,
		EvaluationOfResume: mustMarshal(demoEvaluation),
		Mentorship:         mustMarshal(demoMentorship),
		CoverLetter:        fmt.Sprintf(demoCoverLetter, s.DesiredJobTitle, s.Name),
		JobTitle:           s.DesiredJobTitle,
		CompanyName:        s.CompanyName,
	}
}

func mustMarshal(v []string) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
