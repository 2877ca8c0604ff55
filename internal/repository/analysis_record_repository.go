package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fadilmartias/resume-analyzer/internal/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound         = errors.New("analysis record not found")
	ErrStoreUnavailable = errors.New("analysis store unavailable")
)

// columns rewritten when an upsert hits an existing (email, name) row.
// created_at is intentionally absent.
var upsertColumns = []string{
	"score",
	"breakdown",
	"missing_skills",
	"jd",
	"job_title",
	"company_name",
	"evaluation_of_resume",
	"mentorship",
	"cover_letter",
	"date",
	"updated_at",
}

type AnalysisRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewAnalysisRepository(db *gorm.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db, now: time.Now}
}

// Upsert creates or updates the record for key in a single statement, relying on
// the unique (email, name) index so concurrent callers never produce duplicates.
func (r *AnalysisRepository) Upsert(ctx context.Context, key model.AnalysisKey, fields model.AnalysisFields) (*model.AnalysisRecord, error) {
	now := r.now().UTC()
	record := model.AnalysisRecord{
		Email:              key.Email,
		Name:               key.Name,
		Score:              fields.Score,
		Breakdown:          datatypes.NewJSONType(fields.Breakdown),
		MissingSkills:      fields.MissingSkills,
		JD:                 fields.JD,
		JobTitle:           fields.JobTitle,
		CompanyName:        fields.CompanyName,
		EvaluationOfResume: fields.EvaluationOfResume,
		Mentorship:         fields.Mentorship,
		CoverLetter:        fields.CoverLetter,
		Date:               now,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}, {Name: "name"}},
			DoUpdates: clause.AssignmentColumns(upsertColumns),
		}).
		Create(&record).Error
	if err != nil {
		return nil, storeError(err)
	}

	var stored model.AnalysisRecord
	err = r.db.WithContext(ctx).
		Where("email = ? AND name = ?", key.Email, key.Name).
		First(&stored).Error
	if err != nil {
		return nil, storeError(err)
	}
	return &stored, nil
}

// FindLatestByEmail returns the most recently created record for email, narrowed
// to name when it is not empty.
func (r *AnalysisRepository) FindLatestByEmail(ctx context.Context, email, name string) (*model.AnalysisRecord, error) {
	query := r.db.WithContext(ctx).Where("email = ?", model.NormalizeEmail(email))
	if name != "" {
		query = query.Where("name = ?", name)
	}

	var record model.AnalysisRecord
	if err := query.Order("created_at DESC").First(&record).Error; err != nil {
		return nil, storeError(err)
	}
	return &record, nil
}

// ListByEmail pages through every record for email, newest first.
func (r *AnalysisRepository) ListByEmail(ctx context.Context, email string, page, pageSize int) ([]model.AnalysisRecord, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	byEmail := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&model.AnalysisRecord{}).Where("email = ?", model.NormalizeEmail(email))
	}

	var total int64
	if err := byEmail().Count(&total).Error; err != nil {
		return nil, 0, storeError(err)
	}

	var records []model.AnalysisRecord
	err := byEmail().Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&records).Error
	if err != nil {
		return nil, 0, storeError(err)
	}
	return records, total, nil
}

func (r *AnalysisRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return storeError(err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return storeError(err)
	}
	return nil
}

func storeError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}
