package dto

import (
	"encoding/json"
	"time"

	"github.com/fadilmartias/resume-analyzer/internal/model"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AnalyzeResumeRequest is the body the analysis workflow posts back with its results.
type AnalyzeResumeRequest struct {
	Name               string              `json:"name"`
	Email              string              `json:"email"`
	Score              float64             `json:"score"`
	Breakdown          map[string]*float64 `json:"breakdown"`
	MissingSkills      json.RawMessage     `json:"missingSkills"`
	JD                 string              `json:"jd"`
	EvaluationOfResume json.RawMessage     `json:"evaluationOfResume"`
	Mentorship         json.RawMessage     `json:"mentorship"`
	CoverLetter        string              `json:"coverLetter"`
	JobTitle           string              `json:"job_Title"`
	CompanyName        string              `json:"company_name"`
}

func (r AnalyzeResumeRequest) Key() model.AnalysisKey {
	return model.NewAnalysisKey(r.Email, r.Name)
}

// Fields drops null sub-scores so they never reach arithmetic downstream.
func (r AnalyzeResumeRequest) Fields() model.AnalysisFields {
	breakdown := make(map[string]float64, len(r.Breakdown))
	for category, value := range r.Breakdown {
		if value != nil {
			breakdown[category] = *value
		}
	}
	return model.AnalysisFields{
		Score:              r.Score,
		Breakdown:          breakdown,
		MissingSkills:      rawJSON(r.MissingSkills),
		JD:                 r.JD,
		JobTitle:           r.JobTitle,
		CompanyName:        r.CompanyName,
		EvaluationOfResume: rawJSON(r.EvaluationOfResume),
		Mentorship:         rawJSON(r.Mentorship),
		CoverLetter:        r.CoverLetter,
	}
}

func rawJSON(raw json.RawMessage) datatypes.JSON {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return datatypes.JSON(raw)
}

type AnalysisRecordDTO struct {
	ID                 uuid.UUID          `json:"id"`
	Name               string             `json:"name"`
	Email              string             `json:"email"`
	Score              float64            `json:"score"`
	Breakdown          map[string]float64 `json:"breakdown"`
	MissingSkills      json.RawMessage    `json:"missingSkills"`
	JD                 string             `json:"jd"`
	JobTitle           string             `json:"job_Title"`
	CompanyName        string             `json:"company_name"`
	EvaluationOfResume json.RawMessage    `json:"evaluationOfResume"`
	Mentorship         json.RawMessage    `json:"mentorship"`
	CoverLetter        string             `json:"coverLetter"`
	Date               time.Time          `json:"date"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
}

func FromAnalysisRecord(r *model.AnalysisRecord) AnalysisRecordDTO {
	breakdown := r.Breakdown.Data()
	if breakdown == nil {
		breakdown = map[string]float64{}
	}
	return AnalysisRecordDTO{
		ID:                 r.ID,
		Name:               r.Name,
		Email:              r.Email,
		Score:              r.Score,
		Breakdown:          breakdown,
		MissingSkills:      jsonOrNull(r.MissingSkills),
		JD:                 r.JD,
		JobTitle:           r.JobTitle,
		CompanyName:        r.CompanyName,
		EvaluationOfResume: jsonOrNull(r.EvaluationOfResume),
		Mentorship:         jsonOrNull(r.Mentorship),
		CoverLetter:        r.CoverLetter,
		Date:               r.Date.UTC(),
		CreatedAt:          r.CreatedAt.UTC(),
		UpdatedAt:          r.UpdatedAt.UTC(),
	}
}

func FromAnalysisRecords(records []model.AnalysisRecord) []AnalysisRecordDTO {
	out := make([]AnalysisRecordDTO, 0, len(records))
	for i := range records {
		out = append(out, FromAnalysisRecord(&records[i]))
	}
	return out
}

func jsonOrNull(j datatypes.JSON) json.RawMessage {
	if len(j) == 0 {
		return json.RawMessage("null")
	}
	return json.RawMessage(j)
}
