package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/fadilmartias/resume-analyzer/internal/dto"
	"github.com/fadilmartias/resume-analyzer/internal/logger"
	"github.com/fadilmartias/resume-analyzer/internal/middleware"
	"github.com/fadilmartias/resume-analyzer/internal/repository"
	"github.com/fadilmartias/resume-analyzer/internal/response"
	"github.com/fadilmartias/resume-analyzer/internal/service"
	"github.com/fadilmartias/resume-analyzer/internal/usecase"
	"github.com/fadilmartias/resume-analyzer/internal/util"
	"github.com/gofiber/fiber/v2"
)

type AnalysisHandler struct {
	uc *usecase.AnalysisUsecase
}

func NewAnalysisHandler(uc *usecase.AnalysisUsecase) *AnalysisHandler {
	return &AnalysisHandler{uc: uc}
}

func (h *AnalysisHandler) RegisterRoutes(app *fiber.App) {
	api := app.Group("/api")
	api.Post("/analyze-resume", h.AnalyzeResume)
	api.Get("/resume-analysis/:email", h.ResumeAnalysis)
	api.Get("/resume-analysis/:email/history", h.History)
	api.Get("/generate-pdf/:email", middleware.RateLimiter(10, time.Minute), h.GeneratePDF)

	// earlier client revisions
	api.Post("/users", h.CreateUser)
	api.Get("/data/user", h.UserData)
}

// AnalyzeResume is the write-back endpoint called by the analysis workflow.
func (h *AnalysisHandler) AnalyzeResume(c *fiber.Ctx) error {
	req, reqErr := decodeAnalyzeResume(c.Body())
	if reqErr != nil {
		return badRequest(c, reqErr)
	}

	record, err := h.uc.SaveAnalysis(c.UserContext(), *req)
	if err != nil {
		return h.failure(c, err, "Failed to save resume analysis")
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Resume analysis saved successfully",
		Data:    dto.FromAnalysisRecord(record),
	})
}

func (h *AnalysisHandler) ResumeAnalysis(c *fiber.Ctx) error {
	email, reqErr := emailParam(c)
	if reqErr != nil {
		return badRequest(c, reqErr)
	}

	record, err := h.uc.GetLatest(c.UserContext(), email, strings.TrimSpace(c.Query("name")))
	if err != nil {
		return h.failure(c, err, "No resume analysis found for this email")
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get resume analysis",
		Data:    dto.FromAnalysisRecord(record),
	})
}

func (h *AnalysisHandler) History(c *fiber.Ctx) error {
	email, reqErr := emailParam(c)
	if reqErr != nil {
		return badRequest(c, reqErr)
	}
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("page_size", 10)
	if pageSize > 100 {
		pageSize = 100
	}

	records, total, err := h.uc.ListHistory(c.UserContext(), email, page, pageSize)
	if err != nil {
		return h.failure(c, err, "Failed to list resume analyses")
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message:    "Success list resume analyses",
		Data:       dto.FromAnalysisRecords(records),
		Pagination: response.NewPagination(page, pageSize, total),
	})
}

func (h *AnalysisHandler) GeneratePDF(c *fiber.Ctx) error {
	email, reqErr := emailParam(c)
	if reqErr != nil {
		return badRequest(c, reqErr)
	}

	pdf, err := h.uc.GeneratePDF(c.UserContext(), email)
	if err != nil {
		return h.failure(c, err, "No resume analysis found for this email")
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", pdf.Filename))
	return c.Status(fiber.StatusOK).Send(pdf.Content)
}

// CreateUser is the legacy write path. Same contract as AnalyzeResume.
func (h *AnalysisHandler) CreateUser(c *fiber.Ctx) error {
	req, reqErr := decodeAnalyzeResume(c.Body())
	if reqErr != nil {
		return badRequest(c, reqErr)
	}

	record, err := h.uc.SaveAnalysis(c.UserContext(), *req)
	if err != nil {
		return h.failure(c, err, "Failed to save user data")
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "User data saved successfully",
		Data:    dto.FromAnalysisRecord(record),
	})
}

// UserData is the legacy read path; the email arrives in the "email" header.
func (h *AnalysisHandler) UserData(c *fiber.Ctx) error {
	email := strings.TrimSpace(c.Get("email"))
	if email == "" {
		email = strings.TrimSpace(c.Query("email"))
	}
	if email == "" {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "Email query parameter is required.",
		})
	}

	record, err := h.uc.GetLatest(c.UserContext(), email, "")
	if err != nil {
		return h.failure(c, err, "User not found with the provided email.")
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "User data fetched successfully.",
		Data:    dto.FromAnalysisRecord(record),
	})
}

// requestError is a client mistake detected before the usecase is called.
type requestError struct {
	message string
	details any
	cause   error
}

func (e *requestError) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

func badRequest(c *fiber.Ctx, err *requestError) error {
	return util.ErrorResponse(c, util.ErrorResponseFormat{
		Code:    fiber.StatusBadRequest,
		Message: err.message,
		Details: err.details,
	}, err)
}

func decodeAnalyzeResume(body []byte) (*dto.AnalyzeResumeRequest, *requestError) {
	if err := dto.ValidateAnalyzeResume(body); err != nil {
		reqErr := &requestError{message: "Invalid analysis payload", cause: err}
		var schemaErr *dto.SchemaError
		if errors.As(err, &schemaErr) {
			reqErr.details = schemaErr.Fields
		}
		return nil, reqErr
	}

	var req dto.AnalyzeResumeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, &requestError{message: "Invalid analysis payload", cause: err}
	}
	return &req, nil
}

func emailParam(c *fiber.Ctx) (string, *requestError) {
	raw := c.Params("email")
	email, err := url.PathUnescape(raw)
	if err != nil {
		email = raw
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return "", &requestError{message: "Email is required"}
	}
	return email, nil
}

// failure maps usecase errors onto HTTP statuses: missing records are 404,
// render failures 500 and store outages 503.
func (h *AnalysisHandler) failure(c *fiber.Ctx, err error, notFoundMessage string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusNotFound,
			Message: notFoundMessage,
		})
	case errors.Is(err, service.ErrRender):
		logger.Ctx(c.UserContext()).Error().Err(err).Msg("pdf generation failed")
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusInternalServerError,
			Message: "Failed to generate PDF",
		}, err)
	default:
		logger.Ctx(c.UserContext()).Error().Err(err).Msg("analysis store unavailable")
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusServiceUnavailable,
			Message: "Analysis store unavailable",
		}, err)
	}
}
