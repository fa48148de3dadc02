package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAuditType_WhenKnownName_ThenReturnsVariant(t *testing.T) {
	for name, want := range map[string]AuditType{
		"READ":     AuditTypeRead,
		"CREATE":   AuditTypeCreate,
		"UPDATE":   AuditTypeUpdate,
		"DELETE":   AuditTypeDelete,
		"SEARCH":   AuditTypeSearch,
		"SECURITY": AuditTypeSecurity,
	} {
		got, err := ParseAuditType(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got)
	}
}

func TestParseAuditType_WhenNameNotExact_ThenReturnsUnknown(t *testing.T) {
	for _, name := range []string{"", "read", " READ", "ARCHIVE"} {
		_, err := ParseAuditType(name)
		assert.ErrorIs(t, err, ErrUnknownAuditType, name)
	}
}

func TestParseAuditScope_WhenKnownName_ThenReturnsVariant(t *testing.T) {
	for name, want := range map[string]AuditScope{
		"METADATA":  AuditScopeMetadata,
		"TRACKER":   AuditScopeTracker,
		"AGGREGATE": AuditScopeAggregate,
	} {
		got, err := ParseAuditScope(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got)
	}
}

func TestParseAuditScope_WhenUnknown_ThenErrorNamesValue(t *testing.T) {
	_, err := ParseAuditScope("DATASET")

	assert.ErrorIs(t, err, ErrUnknownAuditScope)
	assert.EqualError(t, err, `unknown audit scope: "DATASET"`)
}

func TestAuditQuery_IsEmpty(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, AuditQuery{}.IsEmpty())
	assert.True(t, AuditQuery{UIDs: []string{}}.IsEmpty())
	assert.False(t, AuditQuery{Codes: []string{"DE_1"}}.IsEmpty())
	assert.False(t, AuditQuery{Range: Range{From: &from}}.IsEmpty())
	assert.False(t, AuditQuery{AuditScopes: []AuditScope{AuditScopeTracker}}.IsEmpty())
}

func TestListAuditsQuery_ToAuditQuery_WhenParamsSet_ThenMapsCriteria(t *testing.T) {
	// Arrange
	to := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	q := ListAuditsQuery{
		AuditType:  []string{"CREATE", "bogus"},
		AuditScope: []string{"TRACKER"},
		Klass:      []string{"TrackedEntity"},
		UID:        []string{"a", "b"},
		To:         &to,
	}

	// Act
	out := q.ToAuditQuery()

	// Assert
	assert.Equal(t, AuditQuery{
		AuditTypes:  []AuditType{AuditTypeCreate},
		AuditScopes: []AuditScope{AuditScopeTracker},
		Klasses:     []string{"TrackedEntity"},
		UIDs:        []string{"a", "b"},
		Range:       Range{To: &to},
	}, out)
}
