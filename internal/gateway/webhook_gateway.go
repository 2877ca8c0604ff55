package gateway

import (
	"context"
	"os"
	"time"

	"github.com/fadilmartias/resume-analyzer/internal/config"
	"github.com/fadilmartias/resume-analyzer/internal/logger"
	"github.com/go-resty/resty/v2"
)

// WebhookGateway posts submissions as multipart/form-data to the analysis
// workflow. One attempt per submission.
type WebhookGateway struct {
	URL  string
	http *resty.Client
}

func NewWebhookGateway(cfg *config.WebhookConfig) *WebhookGateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &WebhookGateway{
		URL:  cfg.URL,
		http: resty.New().SetTimeout(timeout).SetRetryCount(0),
	}
}

func (g *WebhookGateway) Submit(ctx context.Context, s Submission) (*Ack, error) {
	s, err := s.Validate()
	if err != nil {
		return nil, err
	}

	resume := s.Resume
	if resume == nil {
		f, err := os.Open(s.ResumePath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		resume = f
	}

	resp, err := g.http.R().
		SetContext(ctx).
		SetMultipartFormData(map[string]string{
			"name":            s.Name,
			"email":           s.Email,
			"jobDescription":  s.JobDescription,
			"desiredJobTitle": s.DesiredJobTitle,
			"companyName":     s.CompanyName,
		}).
		SetFileReader("resume", s.ResumeFilename, resume).
		Post(g.URL)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, &GatewayError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	logger.Ctx(ctx).Info().Str("email", s.Email).Int("status", resp.StatusCode()).Msg("submission forwarded to webhook")
	return &Ack{Email: s.Email, StatusCode: resp.StatusCode()}, nil
}
