package audit

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dhima/audit-store/internal/models"
	"github.com/xeipuuv/gojsonschema"
)

// documentSchema describes the JSON shape accepted from HTTP clients and the ingest topic.
// It checks structure only; type and scope names are resolved by the enum tables.
const documentSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["auditType", "auditScope"],
	"properties": {
		"auditType":  {"type": "string", "minLength": 1},
		"auditScope": {"type": "string", "minLength": 1},
		"createdAt":  {"type": "string", "format": "date-time"},
		"createdBy":  {"type": "string"},
		"klass":      {"type": "string"},
		"uid":        {"type": "string"},
		"code":       {"type": "string"},
		"data":       {}
	}
}`

var compiledSchema = mustCompileSchema(documentSchema)

func mustCompileSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("invalid audit document schema: %v", err))
	}
	return schema
}

// Problem is one reason a document was rejected.
type Problem struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// DocumentError reports why an inbound audit document could not be accepted.
type DocumentError struct {
	Problems []Problem
}

func (e *DocumentError) Error() string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.Field + ": " + p.Message
	}
	return "invalid audit document: " + strings.Join(msgs, "; ")
}

// document is the wire form of an audit. Data may be a JSON string, which is stored
// verbatim, or any other JSON value, which is stored as its JSON text.
type document struct {
	AuditType  string          `json:"auditType"`
	AuditScope string          `json:"auditScope"`
	CreatedAt  *time.Time      `json:"createdAt"`
	CreatedBy  string          `json:"createdBy"`
	Klass      string          `json:"klass"`
	UID        string          `json:"uid"`
	Code       string          `json:"code"`
	Data       json.RawMessage `json:"data"`
}

// ValidateDocument checks raw against the document schema.
func ValidateDocument(raw []byte) error {
	result, err := compiledSchema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return &DocumentError{Problems: []Problem{{Field: "(root)", Message: err.Error()}}}
	}
	if result.Valid() {
		return nil
	}

	problems := make([]Problem, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		problems = append(problems, Problem{Field: re.Field(), Message: re.Description()})
	}
	return &DocumentError{Problems: problems}
}

// DecodeDocument validates raw and converts it into an Audit. The returned audit has no ID.
func DecodeDocument(raw []byte) (*models.Audit, error) {
	if err := ValidateDocument(raw); err != nil {
		return nil, err
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &DocumentError{Problems: []Problem{{Field: "(root)", Message: err.Error()}}}
	}

	var problems []Problem
	auditType, err := models.ParseAuditType(doc.AuditType)
	if err != nil {
		problems = append(problems, Problem{Field: "auditType", Message: err.Error()})
	}
	auditScope, err := models.ParseAuditScope(doc.AuditScope)
	if err != nil {
		problems = append(problems, Problem{Field: "auditScope", Message: err.Error()})
	}
	if len(problems) > 0 {
		return nil, &DocumentError{Problems: problems}
	}

	audit := &models.Audit{
		AuditType:  auditType,
		AuditScope: auditScope,
		CreatedBy:  doc.CreatedBy,
		Klass:      doc.Klass,
		UID:        doc.UID,
		Code:       doc.Code,
		Data:       decodeData(doc.Data),
	}
	if doc.CreatedAt != nil {
		audit.CreatedAt = doc.CreatedAt.UTC()
	}

	return audit, nil
}

func decodeData(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
