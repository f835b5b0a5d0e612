package validation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracker/internal/tracker/models"
)

func validRoot(uid string) *models.Root {
	return &models.Root{UID: uid, TrackedEntityType: "nEenWmSyUEp", OrgUnit: "DiszpKrYNg8"}
}

func validEnrollment(uid, root string) *models.Enrollment {
	return &models.Enrollment{UID: uid, Root: root, Program: "IpHINAT79UW", OrgUnit: "DiszpKrYNg8"}
}

func validEvent(uid, enrollment string) *models.Event {
	return &models.Event{UID: uid, Enrollment: enrollment, ProgramStage: "A03MvHHogjR", OrgUnit: "DiszpKrYNg8"}
}

func runDefault(t *testing.T, bundle *models.Bundle) *Reporter {
	t.Helper()
	r := NewReporter(models.IdSchemeParams{}, false)
	require.NoError(t, NewDefaultRunner().Run(context.Background(), r, bundle))
	return r
}

func codesOf(issues []Issue) []ErrorCode {
	out := make([]ErrorCode, 0, len(issues))
	for _, issue := range issues {
		out = append(out, issue.Code)
	}
	return out
}

func TestDefaultRules(t *testing.T) {
	tests := []struct {
		name     string
		bundle   *models.Bundle
		expected []ErrorCode
	}{
		{
			name: "valid hierarchy",
			bundle: &models.Bundle{
				ImportStrategy: models.StrategyCreate,
				Roots:          []*models.Root{validRoot("PQfMcpmXeFE")},
				Enrollments:    []*models.Enrollment{validEnrollment("MNWZ6hnuhSw", "PQfMcpmXeFE")},
				Events:         []*models.Event{validEvent("ZwwuwNp6gVd", "MNWZ6hnuhSw")},
			},
			expected: []ErrorCode{},
		},
		{
			name: "invalid uid stops further checks",
			bundle: &models.Bundle{
				ImportStrategy: models.StrategyCreate,
				Roots:          []*models.Root{{UID: "1bad"}},
			},
			expected: []ErrorCode{E1048},
		},
		{
			name: "duplicate uid in payload",
			bundle: &models.Bundle{
				ImportStrategy: models.StrategyCreate,
				Roots:          []*models.Root{validRoot("PQfMcpmXeFE"), validRoot("PQfMcpmXeFE")},
			},
			expected: []ErrorCode{E1007},
		},
		{
			name: "create of stored root",
			bundle: &models.Bundle{
				ImportStrategy: models.StrategyCreate,
				Roots:          []*models.Root{validRoot("PQfMcpmXeFE")},
				Existing:       stored(ident(models.KindRoot, "PQfMcpmXeFE")),
			},
			expected: []ErrorCode{E1002},
		},
		{
			name: "update of missing event",
			bundle: &models.Bundle{
				ImportStrategy: models.StrategyUpdate,
				Events:         []*models.Event{validEvent("ZwwuwNp6gVd", "MNWZ6hnuhSw")},
				Existing:       stored(ident(models.KindEnrollment, "MNWZ6hnuhSw")),
			},
			expected: []ErrorCode{E1032},
		},
		{
			name: "create and update resolves per record",
			bundle: &models.Bundle{
				ImportStrategy: models.StrategyCreateAndUpdate,
				Roots:          []*models.Root{validRoot("PQfMcpmXeFE"), validRoot("Kj6vYde4LHh")},
				Existing:       stored(ident(models.KindRoot, "PQfMcpmXeFE")),
			},
			expected: []ErrorCode{},
		},
		{
			name: "missing required properties",
			bundle: &models.Bundle{
				ImportStrategy: models.StrategyCreate,
				Roots:          []*models.Root{{UID: "PQfMcpmXeFE"}},
			},
			expected: []ErrorCode{E1121, E1121},
		},
		{
			name: "enrollment root neither in payload nor stored",
			bundle: &models.Bundle{
				ImportStrategy: models.StrategyCreate,
				Enrollments:    []*models.Enrollment{validEnrollment("MNWZ6hnuhSw", "PQfMcpmXeFE")},
			},
			expected: []ErrorCode{E1068},
		},
		{
			name: "event enrollment missing",
			bundle: &models.Bundle{
				ImportStrategy: models.StrategyCreate,
				Events:         []*models.Event{validEvent("ZwwuwNp6gVd", "MNWZ6hnuhSw")},
			},
			expected: []ErrorCode{E1033},
		},
		{
			name: "duplicated data element",
			bundle: &models.Bundle{
				ImportStrategy: models.StrategyCreate,
				Enrollments:    []*models.Enrollment{validEnrollment("MNWZ6hnuhSw", "PQfMcpmXeFE")},
				Events: []*models.Event{func() *models.Event {
					e := validEvent("ZwwuwNp6gVd", "MNWZ6hnuhSw")
					e.DataValues = []models.DataValue{
						{DataElement: "sWoqcoByYmD", Value: "1"},
						{DataElement: "sWoqcoByYmD", Value: "2"},
					}
					return e
				}()},
				Existing: stored(ident(models.KindRoot, "PQfMcpmXeFE")),
			},
			expected: []ErrorCode{E1304},
		},
		{
			name: "delete skips parent checks",
			bundle: &models.Bundle{
				ImportStrategy: models.StrategyDelete,
				Enrollments:    []*models.Enrollment{{UID: "MNWZ6hnuhSw", Root: "PQfMcpmXeFE"}},
				Existing:       stored(ident(models.KindEnrollment, "MNWZ6hnuhSw")),
			},
			expected: []ErrorCode{},
		},
		{
			name: "delete of missing relationship",
			bundle: &models.Bundle{
				ImportStrategy: models.StrategyDelete,
				Relationships:  []*models.Relationship{{UID: "oLT07jKRu9e"}},
			},
			expected: []ErrorCode{E4016},
		},
		{
			name: "relationship with unresolvable endpoint",
			bundle: &models.Bundle{
				ImportStrategy: models.StrategyCreate,
				Roots:          []*models.Root{validRoot("PQfMcpmXeFE")},
				Relationships: []*models.Relationship{{
					UID: "oLT07jKRu9e", RelationshipType: "Mv8R4MPcNcX",
					From: models.RootEndpoint("PQfMcpmXeFE"),
				}},
			},
			expected: []ErrorCode{E4001},
		},
		{
			name: "relationship to itself",
			bundle: &models.Bundle{
				ImportStrategy: models.StrategyCreate,
				Roots:          []*models.Root{validRoot("PQfMcpmXeFE")},
				Relationships: []*models.Relationship{{
					UID: "oLT07jKRu9e", RelationshipType: "Mv8R4MPcNcX",
					From: models.RootEndpoint("PQfMcpmXeFE"),
					To:   models.RootEndpoint("PQfMcpmXeFE"),
				}},
			},
			expected: []ErrorCode{E4000},
		},
		{
			name: "relationship endpoint not found",
			bundle: &models.Bundle{
				ImportStrategy: models.StrategyCreate,
				Roots:          []*models.Root{validRoot("PQfMcpmXeFE")},
				Relationships: []*models.Relationship{{
					UID: "oLT07jKRu9e", RelationshipType: "Mv8R4MPcNcX",
					From: models.RootEndpoint("PQfMcpmXeFE"),
					To:   models.EventEndpoint("ZwwuwNp6gVd"),
				}},
			},
			expected: []ErrorCode{E4012},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := runDefault(t, tt.bundle)
			assert.Equal(t, tt.expected, codesOf(r.Errors()))
		})
	}
}

func TestDefaultRules_DuplicateInvalidatesBothOccurrences(t *testing.T) {
	first, second := validRoot("PQfMcpmXeFE"), validRoot("PQfMcpmXeFE")
	bundle := &models.Bundle{ImportStrategy: models.StrategyCreate, Roots: []*models.Root{first, second}}

	r := runDefault(t, bundle)
	got := FilterPersistable(bundle, r.InvalidIdentities(), nil)

	assert.Empty(t, got.Roots)
}

func TestDefaultRunner_StateIsPerRun(t *testing.T) {
	bundle := &models.Bundle{ImportStrategy: models.StrategyCreate, Roots: []*models.Root{validRoot("PQfMcpmXeFE")}}
	runner := NewDefaultRunner()

	for range 2 {
		r := NewReporter(models.IdSchemeParams{}, false)
		require.NoError(t, runner.Run(context.Background(), r, bundle))
		assert.False(t, r.HasErrors(), "a second run must not see the first run's uids")
	}
}
