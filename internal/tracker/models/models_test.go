package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "tracker/pkg/domain-errors"
)

// TestParseEndpoint_Invariants validates the boundary invariant:
// "a relationship item references exactly one record"
func TestParseEndpoint_Invariants(t *testing.T) {
	t.Run("rejects empty item", func(t *testing.T) {
		_, err := ParseEndpoint("", "", "")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects item with two references", func(t *testing.T) {
		_, err := ParseEndpoint("Root0000001", "", "Event000001")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		assert.Contains(t, err.Error(), "got 2")
	})

	t.Run("accepts each single reference", func(t *testing.T) {
		cases := []struct {
			root, enrollment, event string
			want                    Identity
		}{
			{"Root0000001", "", "", NewIdentity(KindRoot, "Root0000001")},
			{"", "Enrol000001", "", NewIdentity(KindEnrollment, "Enrol000001")},
			{"", "", "Event000001", NewIdentity(KindEvent, "Event000001")},
		}
		for _, tc := range cases {
			ep, err := ParseEndpoint(tc.root, tc.enrollment, tc.event)
			require.NoError(t, err)
			id, ok := ep.Identity()
			require.True(t, ok)
			assert.Equal(t, tc.want, id)

			root, enrollment, event := ep.Fields()
			assert.Equal(t, tc.root, root)
			assert.Equal(t, tc.enrollment, enrollment)
			assert.Equal(t, tc.event, event)
		}
	})

	t.Run("zero endpoint is unresolvable", func(t *testing.T) {
		_, ok := Endpoint{}.Identity()
		assert.False(t, ok)
		_, ok = RootEndpoint("").Identity()
		assert.False(t, ok)
	})
}

func TestImportStrategy(t *testing.T) {
	t.Run("parse defaults to create and update", func(t *testing.T) {
		st, err := ParseImportStrategy("")
		require.NoError(t, err)
		assert.Equal(t, StrategyCreateAndUpdate, st)
	})

	t.Run("parse is case insensitive", func(t *testing.T) {
		st, err := ParseImportStrategy("delete")
		require.NoError(t, err)
		assert.True(t, st.IsDelete())
	})

	t.Run("parse rejects unknown", func(t *testing.T) {
		_, err := ParseImportStrategy("UPSERT")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("create and update resolves against storage", func(t *testing.T) {
		assert.Equal(t, StrategyUpdate, StrategyCreateAndUpdate.Resolve(true))
		assert.Equal(t, StrategyCreate, StrategyCreateAndUpdate.Resolve(false))
		assert.Equal(t, StrategyDelete, StrategyDelete.Resolve(false))
	})
}

func TestParseValidationMode(t *testing.T) {
	mode, err := ParseValidationMode("fail_fast")
	require.NoError(t, err)
	assert.Equal(t, ValidationFailFast, mode)

	mode, err = ParseValidationMode("")
	require.NoError(t, err)
	assert.Equal(t, ValidationFull, mode)

	_, err = ParseValidationMode("LENIENT")
	assert.Error(t, err)
}

func TestIsValidUID(t *testing.T) {
	assert.True(t, IsValidUID("a1234567890"))
	assert.True(t, IsValidUID("Root0000001"))
	assert.False(t, IsValidUID("1bcdefghijk"), "must start with a letter")
	assert.False(t, IsValidUID("abc"), "too short")
	assert.False(t, IsValidUID("abcdefghij-"), "non alphanumeric")
}

func TestIdSchemeParams_Render(t *testing.T) {
	ou := MetadataObject{Type: MetadataOrgUnit, UID: "OrgUnit0001", Code: "OU_NORTH", Name: "North"}

	t.Run("default renders uid", func(t *testing.T) {
		assert.Equal(t, "OrgUnit0001", ou.Render(IdSchemeParams{}))
	})

	t.Run("per type scheme overrides default", func(t *testing.T) {
		params := IdSchemeParams{Default: IdSchemeName, OrgUnit: IdSchemeCode}
		assert.Equal(t, "OU_NORTH", ou.Render(params))
	})

	t.Run("missing identifier falls back to uid", func(t *testing.T) {
		bare := MetadataObject{Type: MetadataProgram, UID: "Program0001"}
		assert.Equal(t, "Program0001", bare.Render(IdSchemeParams{Default: IdSchemeCode}))
	})
}

func TestBundle_Contains(t *testing.T) {
	b := &Bundle{
		Roots:       []*Root{{UID: "Root0000001"}},
		Enrollments: []*Enrollment{{UID: "Enrol000001", Root: "Root0000001"}},
	}

	assert.True(t, b.Contains(NewIdentity(KindRoot, "Root0000001")))
	assert.True(t, b.Contains(NewIdentity(KindEnrollment, "Enrol000001")))
	assert.False(t, b.Contains(NewIdentity(KindEnrollment, "Root0000001")), "kind is part of identity")
	assert.False(t, b.Exists(NewIdentity(KindRoot, "Root0000001")), "nil snapshot means nothing stored")
	assert.Equal(t, 2, b.Size())
}
