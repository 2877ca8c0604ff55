package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fadilmartias/resume-analyzer/internal/dto"
	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

// ErrNotFoundYet means the backend has no result for the email yet. Pollers
// treat it as "keep waiting", not as a failure.
var ErrNotFoundYet = errors.New("analysis not available yet")

// StatusError is any other non-2xx answer from the backend.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend responded with status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend responded with status %d: %s", e.StatusCode, e.Message)
}

// APIClient talks to the resume-analyzer backend.
type APIClient struct {
	http *resty.Client
}

func NewAPIClient(baseURL string, timeout time.Duration) *APIClient {
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Accept", "application/json")
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return &APIClient{http: c}
}

// FetchLatest reads the latest analysis for email, optionally narrowed to name.
func (c *APIClient) FetchLatest(ctx context.Context, email, name string) (*dto.AnalysisRecordDTO, error) {
	req := c.http.R().SetContext(ctx)
	if name != "" {
		req.SetQueryParam("name", name)
	}
	resp, err := req.Get("/api/resume-analysis/" + url.PathEscape(email))
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return nil, ErrNotFoundYet
	case !resp.IsSuccess():
		return nil, statusError(resp)
	}

	data := gjson.GetBytes(resp.Body(), "data")
	if !data.Exists() || data.Type == gjson.Null {
		return nil, ErrNotFoundYet
	}

	var record dto.AnalysisRecordDTO
	if err := json.Unmarshal([]byte(data.Raw), &record); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}
	return &record, nil
}

// PostAnalysis writes a result back through the same endpoint the analysis
// workflow uses.
func (c *APIClient) PostAnalysis(ctx context.Context, body dto.AnalyzeResumeRequest) (*dto.AnalysisRecordDTO, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post("/api/analyze-resume")
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, statusError(resp)
	}

	var record dto.AnalysisRecordDTO
	if err := json.Unmarshal([]byte(gjson.GetBytes(resp.Body(), "data").Raw), &record); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}
	return &record, nil
}

// PDF is a downloaded report.
type PDF struct {
	Filename string
	Content  []byte
}

// DownloadPDF fetches the rendered report. Anything other than a 200 with a
// non-empty application/pdf body is an error.
func (c *APIClient) DownloadPDF(ctx context.Context, email string) (*PDF, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/pdf").
		Get("/api/generate-pdf/" + url.PathEscape(email))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, ErrNotFoundYet
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, statusError(resp)
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header().Get("Content-Type"))
	if mediaType != "application/pdf" {
		return nil, fmt.Errorf("unexpected content type %q", resp.Header().Get("Content-Type"))
	}
	if len(resp.Body()) == 0 {
		return nil, errors.New("empty pdf body")
	}

	return &PDF{Filename: attachmentName(resp.Header().Get("Content-Disposition")), Content: resp.Body()}, nil
}

// attachmentName reads the filename parameter leniently; the backend sends it
// unquoted and emails contain characters mime.ParseMediaType rejects.
func attachmentName(disposition string) string {
	_, rest, ok := strings.Cut(disposition, "filename=")
	if !ok {
		return "resume-analysis.pdf"
	}
	name, _, _ := strings.Cut(rest, ";")
	name = strings.Trim(strings.TrimSpace(name), `"`)
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "resume-analysis.pdf"
	}
	return name
}

func statusError(resp *resty.Response) *StatusError {
	return &StatusError{
		StatusCode: resp.StatusCode(),
		Message:    gjson.GetBytes(resp.Body(), "message").String(),
	}
}
