package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/fadilmartias/resume-analyzer/internal/cache"
	"github.com/fadilmartias/resume-analyzer/internal/dto"
	"github.com/fadilmartias/resume-analyzer/internal/logger"
	"github.com/fadilmartias/resume-analyzer/internal/model"
	"github.com/fadilmartias/resume-analyzer/internal/report"
	"github.com/fadilmartias/resume-analyzer/internal/result"
	"github.com/fadilmartias/resume-analyzer/internal/service"
)

type AnalysisRepositoryInterface interface {
	Upsert(ctx context.Context, key model.AnalysisKey, fields model.AnalysisFields) (*model.AnalysisRecord, error)
	FindLatestByEmail(ctx context.Context, email, name string) (*model.AnalysisRecord, error)
	ListByEmail(ctx context.Context, email string, page, pageSize int) ([]model.AnalysisRecord, int64, error)
	Ping(ctx context.Context) error
}

type AnalysisUsecase struct {
	repo     AnalysisRepositoryInterface
	cache    cache.AnalysisCache
	renderer service.PDFRendererInterface
}

func NewAnalysisUsecase(repo AnalysisRepositoryInterface, c cache.AnalysisCache, renderer service.PDFRendererInterface) *AnalysisUsecase {
	if c == nil {
		c = cache.NopAnalysisCache{}
	}
	return &AnalysisUsecase{repo: repo, cache: c, renderer: renderer}
}

// SaveAnalysis stores a workflow result, creating or updating the (email, name) record.
func (uc *AnalysisUsecase) SaveAnalysis(ctx context.Context, req dto.AnalyzeResumeRequest) (*model.AnalysisRecord, error) {
	key := req.Key()
	record, err := uc.repo.Upsert(ctx, key, req.Fields())
	if err != nil {
		return nil, err
	}
	if err := uc.cache.Invalidate(ctx, key.Email); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("email", key.Email).Msg("failed to invalidate analysis cache")
	}
	logger.Ctx(ctx).Info().
		Str("email", record.Email).
		Str("id", record.ID.String()).
		Float64("score", record.Score).
		Msg("analysis stored")
	return record, nil
}

// GetLatest returns the newest record for email (and name, when given).
func (uc *AnalysisUsecase) GetLatest(ctx context.Context, email, name string) (*model.AnalysisRecord, error) {
	email = model.NormalizeEmail(email)
	cached, err := uc.cache.Get(ctx, email, name)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		logger.Ctx(ctx).Warn().Err(err).Str("email", email).Msg("analysis cache read failed")
	}

	version, versionErr := uc.cache.Version(ctx, email)

	record, err := uc.repo.FindLatestByEmail(ctx, email, name)
	if err != nil {
		return nil, err
	}
	if versionErr != nil {
		return record, nil
	}
	switch err := uc.cache.Set(ctx, email, name, version, record); {
	case err == nil:
	case errors.Is(err, cache.ErrStale):
		logger.Ctx(ctx).Debug().Str("email", email).Msg("analysis changed during read, not cached")
	default:
		logger.Ctx(ctx).Warn().Err(err).Str("email", email).Msg("analysis cache write failed")
	}
	return record, nil
}

func (uc *AnalysisUsecase) ListHistory(ctx context.Context, email string, page, pageSize int) ([]model.AnalysisRecord, int64, error) {
	return uc.repo.ListByEmail(ctx, email, page, pageSize)
}

func (uc *AnalysisUsecase) Ready(ctx context.Context) bool {
	return uc.repo.Ping(ctx) == nil
}

type PDFReport struct {
	Filename string
	Content  []byte
}

// GeneratePDF renders the latest record for email. Failures after the lookup are
// reported as service.ErrRender.
func (uc *AnalysisUsecase) GeneratePDF(ctx context.Context, email string) (*PDFReport, error) {
	record, err := uc.GetLatest(ctx, email, "")
	if err != nil {
		return nil, err
	}

	html, err := report.Render(result.Normalize(dto.FromAnalysisRecord(record)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", service.ErrRender, err)
	}

	content, err := uc.renderer.RenderHTMLToPDF(ctx, html)
	if err != nil {
		if !errors.Is(err, service.ErrRender) {
			err = fmt.Errorf("%w: %w", service.ErrRender, err)
		}
		return nil, err
	}
	if len(content) == 0 {
		return nil, fmt.Errorf("%w: empty document", service.ErrRender)
	}

	return &PDFReport{Filename: ReportFilename(record.Email), Content: content}, nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9@._-]+`)

// ReportFilename derives the download name from the email, e.g.
// resume-analysis-ana@x.com.pdf.
func ReportFilename(email string) string {
	safe := unsafeFilenameChars.ReplaceAllString(model.NormalizeEmail(email), "_")
	if safe == "" {
		safe = "report"
	}
	return "resume-analysis-" + safe + ".pdf"
}
