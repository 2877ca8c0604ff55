package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AnalysisRecord is one resume-vs-job-description analysis, keyed by (email, name).
// MissingSkills, EvaluationOfResume and Mentorship keep whatever JSON shape the
// workflow sent; see package result for normalization.
type AnalysisRecord struct {
	ID                 uuid.UUID                              `gorm:"type:uuid;primaryKey" json:"id"`
	Email              string                                 `gorm:"type:varchar(320);not null;uniqueIndex:idx_analysis_email_name,priority:1;index:idx_analysis_email_created,priority:1" json:"email"`
	Name               string                                 `gorm:"type:varchar(255);not null;uniqueIndex:idx_analysis_email_name,priority:2" json:"name"`
	Score              float64                                `gorm:"type:float;not null;default:0" json:"score"`
	Breakdown          datatypes.JSONType[map[string]float64] `gorm:"type:jsonb" json:"breakdown"`
	MissingSkills      datatypes.JSON                         `gorm:"type:jsonb" json:"missingSkills"`
	JD                 string                                 `gorm:"column:jd;type:text" json:"jd"`
	JobTitle           string                                 `gorm:"column:job_title;type:varchar(255)" json:"job_Title"`
	CompanyName        string                                 `gorm:"column:company_name;type:varchar(255)" json:"company_name"`
	EvaluationOfResume datatypes.JSON                         `gorm:"type:jsonb" json:"evaluationOfResume"`
	Mentorship         datatypes.JSON                         `gorm:"type:jsonb" json:"mentorship"`
	CoverLetter        string                                 `gorm:"type:text" json:"coverLetter"`
	Date               time.Time                              `json:"date"`
	CreatedAt          time.Time                              `gorm:"index:idx_analysis_email_created,priority:2,sort:desc" json:"createdAt"`
	UpdatedAt          time.Time                              `json:"updatedAt"`
}

func (r *AnalysisRecord) TableName() string {
	return "analysis_records"
}

func (r *AnalysisRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	r.Email = NormalizeEmail(r.Email)
	return nil
}

// AnalysisKey is the natural key used for upserts.
type AnalysisKey struct {
	Email string
	Name  string
}

func NewAnalysisKey(email, name string) AnalysisKey {
	return AnalysisKey{Email: NormalizeEmail(email), Name: strings.TrimSpace(name)}
}

// AnalysisFields are the mutable fields written by an upsert.
type AnalysisFields struct {
	Score              float64
	Breakdown          map[string]float64
	MissingSkills      datatypes.JSON
	JD                 string
	JobTitle           string
	CompanyName        string
	EvaluationOfResume datatypes.JSON
	Mentorship         datatypes.JSON
	CoverLetter        string
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
