package gateway

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Submission is one resume + job description pair handed to the analysis
// workflow. The resume is either a file on disk (ResumePath) or an open reader
// with a filename.
type Submission struct {
	Name            string
	Email           string
	ResumePath      string
	Resume          io.Reader
	ResumeFilename  string
	JobDescription  string
	DesiredJobTitle string
	CompanyName     string
}

// Ack is the workflow's acknowledgement. It carries no analysis data; results
// arrive later through the backend.
type Ack struct {
	Email      string
	StatusCode int
}

// Gateway forwards a submission to whatever produces the analysis.
type Gateway interface {
	Submit(ctx context.Context, s Submission) (*Ack, error)
}

// ValidationError lists the mandatory fields a submission is missing.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Missing, ", ")
}

// GatewayError is a non-2xx answer from the webhook.
type GatewayError struct {
	StatusCode int
	Body       string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("webhook responded with status %d", e.StatusCode)
}

// Validate checks every mandatory field and returns a copy with the email
// lowercased and trimmed. Other fields are forwarded as given; whitespace-only
// values count as missing.
func (s Submission) Validate() (Submission, error) {
	s.Email = strings.ToLower(strings.TrimSpace(s.Email))

	blank := func(v string) bool { return strings.TrimSpace(v) == "" }
	var missing []string
	if blank(s.Name) {
		missing = append(missing, "name")
	}
	if s.Email == "" {
		missing = append(missing, "email")
	}
	if s.ResumePath == "" && s.Resume == nil {
		missing = append(missing, "resume")
	}
	if blank(s.JobDescription) {
		missing = append(missing, "jobDescription")
	}
	if blank(s.DesiredJobTitle) {
		missing = append(missing, "desiredJobTitle")
	}
	if blank(s.CompanyName) {
		missing = append(missing, "companyName")
	}
	if len(missing) > 0 {
		return s, &ValidationError{Missing: missing}
	}

	if s.ResumeFilename == "" && s.ResumePath != "" {
		s.ResumeFilename = filepath.Base(s.ResumePath)
	}
	if s.ResumeFilename == "" {
		s.ResumeFilename = "resume.pdf"
	}
	return s, nil
}
