package models

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUnknownAuditType is returned when a stored or submitted audit type name has no matching variant.
	ErrUnknownAuditType = errors.New("unknown audit type")
	// ErrUnknownAuditScope is returned when a stored or submitted audit scope name has no matching variant.
	ErrUnknownAuditScope = errors.New("unknown audit scope")
)

// AuditType classifies the action that was audited.
type AuditType string

const (
	AuditTypeRead     AuditType = "READ"
	AuditTypeCreate   AuditType = "CREATE"
	AuditTypeUpdate   AuditType = "UPDATE"
	AuditTypeDelete   AuditType = "DELETE"
	AuditTypeSearch   AuditType = "SEARCH"
	AuditTypeSecurity AuditType = "SECURITY"
)

var auditTypesByName = map[string]AuditType{
	"READ":     AuditTypeRead,
	"CREATE":   AuditTypeCreate,
	"UPDATE":   AuditTypeUpdate,
	"DELETE":   AuditTypeDelete,
	"SEARCH":   AuditTypeSearch,
	"SECURITY": AuditTypeSecurity,
}

// ParseAuditType resolves a stored name to its AuditType. Matching is exact.
func ParseAuditType(name string) (AuditType, error) {
	t, ok := auditTypesByName[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAuditType, name)
	}
	return t, nil
}

// AuditScope classifies what kind of object or operation a record covers.
type AuditScope string

const (
	AuditScopeMetadata  AuditScope = "METADATA"
	AuditScopeTracker   AuditScope = "TRACKER"
	AuditScopeAggregate AuditScope = "AGGREGATE"
)

var auditScopesByName = map[string]AuditScope{
	"METADATA":  AuditScopeMetadata,
	"TRACKER":   AuditScopeTracker,
	"AGGREGATE": AuditScopeAggregate,
}

// ParseAuditScope resolves a stored name to its AuditScope. Matching is exact.
func ParseAuditScope(name string) (AuditScope, error) {
	s, ok := auditScopesByName[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAuditScope, name)
	}
	return s, nil
}

// Audit is a stored fact describing an action taken on a tracked object.
// The target is referenced by Klass and UID only.
type Audit struct {
	ID         int64      `json:"id" example:"42"`
	AuditType  AuditType  `json:"auditType" example:"UPDATE"`
	AuditScope AuditScope `json:"auditScope" example:"METADATA"`
	CreatedAt  time.Time  `json:"createdAt" example:"2025-11-05T10:30:00Z"`
	CreatedBy  string     `json:"createdBy" example:"admin"`
	Klass      string     `json:"klass" example:"org.hisp.dhis.dataelement.DataElement"`
	UID        string     `json:"uid" example:"fbfJHSPpUQD"`
	Code       string     `json:"code,omitempty" example:"DE_ANC1"`
	Data       string     `json:"data,omitempty" swaggertype:"string"`
} // @name Audit

// Range bounds a query by creation time. Either end may be open.
type Range struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

// AuditQuery carries the criteria callers use to narrow audit reads and deletes.
type AuditQuery struct {
	AuditTypes  []AuditType  `json:"auditType,omitempty"`
	AuditScopes []AuditScope `json:"auditScope,omitempty"`
	Klasses     []string     `json:"klass,omitempty"`
	UIDs        []string     `json:"uid,omitempty"`
	Codes       []string     `json:"code,omitempty"`
	Range       Range        `json:"range"`
}

// IsEmpty reports whether no criteria are set.
func (q AuditQuery) IsEmpty() bool {
	return len(q.AuditTypes) == 0 &&
		len(q.AuditScopes) == 0 &&
		len(q.Klasses) == 0 &&
		len(q.UIDs) == 0 &&
		len(q.Codes) == 0 &&
		q.Range.From == nil &&
		q.Range.To == nil
}

// ListAuditsQuery represents query parameters for listing and counting audits.
type ListAuditsQuery struct {
	AuditType  []string   `form:"auditType" binding:"omitempty,dive,oneof=READ CREATE UPDATE DELETE SEARCH SECURITY" example:"UPDATE"`
	AuditScope []string   `form:"auditScope" binding:"omitempty,dive,oneof=METADATA TRACKER AGGREGATE" example:"METADATA"`
	Klass      []string   `form:"klass"`
	UID        []string   `form:"uid"`
	Code       []string   `form:"code"`
	From       *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To         *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
} // @name ListAuditsQuery

// ToAuditQuery converts bound request parameters into store criteria.
// Names were checked by the binding rules, so unknown values are dropped.
func (q ListAuditsQuery) ToAuditQuery() AuditQuery {
	out := AuditQuery{
		Klasses: q.Klass,
		UIDs:    q.UID,
		Codes:   q.Code,
		Range:   Range{From: q.From, To: q.To},
	}
	for _, name := range q.AuditType {
		if t, err := ParseAuditType(name); err == nil {
			out.AuditTypes = append(out.AuditTypes, t)
		}
	}
	for _, name := range q.AuditScope {
		if s, err := ParseAuditScope(name); err == nil {
			out.AuditScopes = append(out.AuditScopes, s)
		}
	}
	return out
}

// AuditListResponse represents the response for listing audits.
type AuditListResponse struct {
	Audits []Audit `json:"audits"`
	Total  int     `json:"total" example:"1"`
} // @name AuditListResponse

// AuditCountResponse represents the response for counting audits.
type AuditCountResponse struct {
	Count int `json:"count" example:"0"`
} // @name AuditCountResponse

// CreateAuditResponse is returned after an audit is persisted.
type CreateAuditResponse struct {
	ID int64 `json:"id" example:"42"`
} // @name CreateAuditResponse
