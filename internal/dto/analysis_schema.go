package dto

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const analyzeResumeSchema = `{
  "type": "object",
  "required": ["name", "email", "score"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "email": {"type": "string", "format": "email"},
    "score": {"type": "number", "minimum": 0},
    "breakdown": {
      "type": ["object", "null"],
      "additionalProperties": {"type": ["number", "null"], "minimum": 0}
    },
    "missingSkills": {"type": ["array", "object", "string", "null"]},
    "evaluationOfResume": {"type": ["array", "object", "string", "null"]},
    "mentorship": {"type": ["array", "object", "string", "null"]},
    "jd": {"type": ["string", "null"]},
    "coverLetter": {"type": ["string", "null"]},
    "job_Title": {"type": ["string", "null"]},
    "company_name": {"type": ["string", "null"]}
  }
}`

var analyzeResumeSchemaLoader = gojsonschema.NewStringLoader(analyzeResumeSchema)

// SchemaError lists every violation keyed by the offending field.
type SchemaError struct {
	Fields map[string]string
}

func (e *SchemaError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "schema validation failed: " + strings.Join(parts, "; ")
}

// ValidateAnalyzeResume checks a raw request body before it is decoded.
func ValidateAnalyzeResume(body []byte) error {
	res, err := gojsonschema.Validate(analyzeResumeSchemaLoader, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return &SchemaError{Fields: map[string]string{"(root)": err.Error()}}
	}
	if res.Valid() {
		return nil
	}
	fields := make(map[string]string, len(res.Errors()))
	for _, e := range res.Errors() {
		fields[e.Field()] = e.Description()
	}
	return &SchemaError{Fields: fields}
}
