package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/fadilmartias/resume-analyzer/internal/model"
	"github.com/fadilmartias/resume-analyzer/internal/repository"
	"github.com/fadilmartias/resume-analyzer/internal/usecase"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type stubRenderer struct {
	content []byte
	err     error
}

func (s *stubRenderer) RenderHTMLToPDF(context.Context, string) ([]byte, error) {
	return s.content, s.err
}

type testServer struct {
	app      *fiber.App
	db       *gorm.DB
	renderer *stubRenderer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "handler.db")), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&model.AnalysisRecord{}))

	renderer := &stubRenderer{content: []byte("%PDF-1.4 test")}
	uc := usecase.NewAnalysisUsecase(repository.NewAnalysisRepository(db), nil, renderer)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	NewAnalysisHandler(uc).RegisterRoutes(app)
	return &testServer{app: app, db: db, renderer: renderer}
}

func (s *testServer) do(t *testing.T, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

const anaPayload = `{
	"name": "Ana",
	"email": "Ana@x.com",
	"score": 82,
	"breakdown": {"keywordMatch": 90, "experience": null},
	"missingSkills": ["Docker"],
	"evaluationOfResume": "Strong backend profile.",
	"mentorship": {"cloud": "Take an AWS course"},
	"coverLetter": "Dear hiring manager",
	"job_Title": "Backend Engineer",
	"company_name": "Acme"
}`

func TestAnalyzeResumeStoresAndReturnsRecord(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, postJSON("/api/analyze-resume", anaPayload))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(body))

	assert.True(t, gjson.GetBytes(body, "success").Bool())
	assert.Equal(t, "ana@x.com", gjson.GetBytes(body, "data.email").String())
	assert.Equal(t, 82.0, gjson.GetBytes(body, "data.score").Float())
	assert.Equal(t, 90.0, gjson.GetBytes(body, "data.breakdown.keywordMatch").Float())
	assert.False(t, gjson.GetBytes(body, "data.breakdown.experience").Exists())
	assert.Equal(t, "Docker", gjson.GetBytes(body, "data.missingSkills.0").String())
}

func TestAnalyzeResumeRejectsInvalidBody(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, postJSON("/api/analyze-resume", `{"name":"Ana","score":-1}`))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.False(t, gjson.GetBytes(body, "success").Bool())
	assert.True(t, gjson.GetBytes(body, "details.email").Exists())
	assert.True(t, gjson.GetBytes(body, "details.score").Exists())

	var count int64
	require.NoError(t, s.db.Model(&model.AnalysisRecord{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAnalyzeResumeRepeatedPostKeepsOneRecord(t *testing.T) {
	s := newTestServer(t)

	for i := 0; i < 3; i++ {
		resp, body := s.do(t, postJSON("/api/analyze-resume", anaPayload))
		require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(body))
	}

	var count int64
	require.NoError(t, s.db.Model(&model.AnalysisRecord{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestResumeAnalysisLookup(t *testing.T) {
	s := newTestServer(t)

	resp, _ := s.do(t, httptest.NewRequest(http.MethodGet, "/api/resume-analysis/ana@x.com", nil))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	s.do(t, postJSON("/api/analyze-resume", anaPayload))

	resp, body := s.do(t, httptest.NewRequest(http.MethodGet, "/api/resume-analysis/ANA%40x.com?name=Ana", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, "Ana", gjson.GetBytes(body, "data.name").String())

	resp, _ = s.do(t, httptest.NewRequest(http.MethodGet, "/api/resume-analysis/ana@x.com?name=Bob", nil))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestResumeAnalysisHistory(t *testing.T) {
	s := newTestServer(t)
	s.do(t, postJSON("/api/analyze-resume", anaPayload))
	s.do(t, postJSON("/api/analyze-resume", `{"name":"Ana B","email":"ana@x.com","score":70}`))

	resp, body := s.do(t, httptest.NewRequest(http.MethodGet, "/api/resume-analysis/ana@x.com/history?page=1&page_size=1", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
	assert.Len(t, gjson.GetBytes(body, "data").Array(), 1)
	assert.EqualValues(t, 2, gjson.GetBytes(body, "pagination.total_items").Int())
}

func TestGeneratePDF(t *testing.T) {
	s := newTestServer(t)

	resp, _ := s.do(t, httptest.NewRequest(http.MethodGet, "/api/generate-pdf/ana@x.com", nil))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	s.do(t, postJSON("/api/analyze-resume", anaPayload))

	resp, body := s.do(t, httptest.NewRequest(http.MethodGet, "/api/generate-pdf/ana@x.com", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
	assert.Equal(t, "attachment; filename=resume-analysis-ana@x.com.pdf", resp.Header.Get(fiber.HeaderContentDisposition))
	assert.Equal(t, []byte("%PDF-1.4 test"), body)
}

func TestGeneratePDFRenderFailure(t *testing.T) {
	s := newTestServer(t)
	s.do(t, postJSON("/api/analyze-resume", anaPayload))
	s.renderer.err = errors.New("chrome crashed")

	resp, body := s.do(t, httptest.NewRequest(http.MethodGet, "/api/generate-pdf/ana@x.com", nil))
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.NotEqual(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
	assert.False(t, gjson.GetBytes(body, "success").Bool())
}

func TestStoreUnavailable(t *testing.T) {
	s := newTestServer(t)
	sqlDB, err := s.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	resp, _ := s.do(t, httptest.NewRequest(http.MethodGet, "/api/resume-analysis/ana@x.com", nil))
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestLegacyUserEndpoints(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, httptest.NewRequest(http.MethodGet, "/api/data/user", nil))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Email query parameter is required.", gjson.GetBytes(body, "message").String())

	req := httptest.NewRequest(http.MethodGet, "/api/data/user", nil)
	req.Header.Set("email", "ana@x.com")
	resp, body = s.do(t, req)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "User not found with the provided email.", gjson.GetBytes(body, "message").String())

	resp, body = s.do(t, postJSON("/api/users", anaPayload))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(body))
	assert.Equal(t, "User data saved successfully", gjson.GetBytes(body, "message").String())

	resp, body = s.do(t, req)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Ana", gjson.GetBytes(body, "data.name").String())

	resp, _ = s.do(t, httptest.NewRequest(http.MethodGet, "/api/data/user?email=ana@x.com", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestErrorHandlerUsesEnvelope(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, httptest.NewRequest(http.MethodGet, "/api/unknown", nil))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.False(t, gjson.GetBytes(body, "success").Bool())
	assert.NotEmpty(t, gjson.GetBytes(body, "message").String())
}
