package ruleengine

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracker/internal/tracker/models"
	dErrors "tracker/pkg/domain-errors"
)

const ancRules = `
rules:
  - uid: rLmIw2Jj2Lu
    name: hemoglobin required at visit
    program: IpHINAT79UW
    programStage: A03MvHHogjR
    target: event
    action:
      kind: SET_MANDATORY_FIELD
      dataElement: vANAXwtLwcT
  - uid: rGb2tQ1Awzi
    name: low weight
    program: IpHINAT79UW
    target: event
    conditions:
      - dataElement: sWoqcoByYmD
        operator: equals
        value: "low"
    action:
      kind: SHOW_ERROR
      message: weight is below threshold
  - uid: rFiTcXHkP9R
    name: enrollment outside clinic
    program: IpHINAT79UW
    target: enrollment
    conditions:
      - field: orgUnit
        operator: not_equals
        value: DiszpKrYNg8
    action:
      kind: SHOW_WARNING
      message: enrolled outside home clinic
`

func TestLoadDeclarative(t *testing.T) {
	t.Run("parses rules and indexes by program", func(t *testing.T) {
		engine, err := LoadDeclarative(strings.NewReader(ancRules))
		require.NoError(t, err)
		assert.Len(t, engine.byProgram["IpHINAT79UW"], 3)
	})

	t.Run("empty document yields no rules", func(t *testing.T) {
		engine, err := LoadDeclarative(strings.NewReader(""))
		require.NoError(t, err)
		assert.Empty(t, engine.byProgram)
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		_, err := LoadDeclarative(strings.NewReader("rules:\n  - uid: a\n    colour: red\n"))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("unsupported operator is rejected", func(t *testing.T) {
		doc := `
rules:
  - uid: rBad0000001
    program: IpHINAT79UW
    target: event
    conditions:
      - dataElement: sWoqcoByYmD
        operator: greater_than
    action:
      kind: SHOW_ERROR
`
		_, err := LoadDeclarative(strings.NewReader(doc))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported operator")
	})

	t.Run("misspelled condition field is rejected", func(t *testing.T) {
		doc := `
rules:
  - uid: rBad0000003
    program: IpHINAT79UW
    target: event
    conditions:
      - field: orgunit
        operator: missing
    action:
      kind: SHOW_ERROR
`
		_, err := LoadDeclarative(strings.NewReader(doc))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		assert.Contains(t, err.Error(), `unknown event field "orgunit"`)
	})

	t.Run("condition fields are checked per target", func(t *testing.T) {
		tests := []struct {
			name      string
			target    Target
			condition Condition
			wantErr   string
		}{
			{"stage on enrollment", TargetEnrollment, Condition{Field: "programStage", Operator: OpPresent}, "unknown enrollment field"},
			{"data element on enrollment", TargetEnrollment, Condition{DataElement: "sWoqcoByYmD", Operator: OpPresent}, "require target event"},
			{"no subject", TargetEvent, Condition{Operator: OpMissing}, "field or dataElement"},
			{"stage on event", TargetEvent, Condition{Field: "programStage", Operator: OpPresent}, ""},
			{"status on enrollment", TargetEnrollment, Condition{Field: "status", Operator: OpEquals, Value: "ACTIVE"}, ""},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := NewDeclarative([]Rule{{
					UID: "rBad0000004", Program: "IpHINAT79UW", Target: tt.target,
					Conditions: []Condition{tt.condition},
					Action:     Action{Kind: ShowError},
				}})
				if tt.wantErr == "" {
					require.NoError(t, err)
					return
				}
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			})
		}
	})

	t.Run("mandatory field without data element is rejected", func(t *testing.T) {
		_, err := NewDeclarative([]Rule{{
			UID: "rBad0000002", Program: "IpHINAT79UW", Target: TargetEvent,
			Action: Action{Kind: SetMandatoryField},
		}})
		require.Error(t, err)
	})
}

func TestDeclarative_EvaluateEvent(t *testing.T) {
	engine, err := LoadDeclarative(strings.NewReader(ancRules))
	require.NoError(t, err)

	t.Run("stage scoped rule applies only to its stage", func(t *testing.T) {
		event := &models.Event{UID: "ZwwuwNp6gVd", Program: "IpHINAT79UW", ProgramStage: "A03MvHHogjR"}
		effects, err := engine.EvaluateEvent(context.Background(), nil, event)
		require.NoError(t, err)
		require.Len(t, effects, 1)
		assert.Equal(t, SetMandatoryField, effects[0].Kind)
		assert.Equal(t, "vANAXwtLwcT", effects[0].DataElement)

		event.ProgramStage = "ZzYYXq4fJie"
		effects, err = engine.EvaluateEvent(context.Background(), nil, event)
		require.NoError(t, err)
		assert.Empty(t, effects)
	})

	t.Run("equals matches captured value", func(t *testing.T) {
		event := &models.Event{
			UID: "ZwwuwNp6gVd", Program: "IpHINAT79UW", ProgramStage: "ZzYYXq4fJie",
			DataValues: []models.DataValue{{DataElement: "sWoqcoByYmD", Value: "low"}},
		}
		effects, err := engine.EvaluateEvent(context.Background(), nil, event)
		require.NoError(t, err)
		require.Len(t, effects, 1)
		assert.Equal(t, ShowError, effects[0].Kind)
		assert.Equal(t, "rGb2tQ1Awzi", effects[0].RuleUID)
	})

	t.Run("other programs have no rules", func(t *testing.T) {
		effects, err := engine.EvaluateEvent(context.Background(), nil, &models.Event{Program: "eBAyeGv0exc"})
		require.NoError(t, err)
		assert.Empty(t, effects)
	})
}

func TestDeclarative_EvaluateEnrollment(t *testing.T) {
	engine, err := LoadDeclarative(strings.NewReader(ancRules))
	require.NoError(t, err)

	home := &models.Enrollment{UID: "MNWZ6hnuhSw", Program: "IpHINAT79UW", OrgUnit: "DiszpKrYNg8"}
	effects, err := engine.EvaluateEnrollment(context.Background(), nil, home)
	require.NoError(t, err)
	assert.Empty(t, effects)

	away := &models.Enrollment{UID: "MNWZ6hnuhSw", Program: "IpHINAT79UW", OrgUnit: "g8upMTyEZGZ"}
	effects, err = engine.EvaluateEnrollment(context.Background(), nil, away)
	require.NoError(t, err)
	require.Len(t, effects, 1)
	assert.Equal(t, ShowWarning, effects[0].Kind)
}

func TestCondition_Matches(t *testing.T) {
	tests := []struct {
		name     string
		op       Operator
		value    string
		present  bool
		expected bool
	}{
		{"missing when absent", OpMissing, "", false, true},
		{"missing treats empty as absent", OpMissing, "", true, true},
		{"missing when present", OpMissing, "x", true, false},
		{"present when present", OpPresent, "x", true, true},
		{"equals same value", OpEquals, "a", true, true},
		{"equals different value", OpEquals, "b", true, false},
		{"not equals absent", OpNotEquals, "", false, true},
		{"not equals same value", OpNotEquals, "a", true, false},
		{"no operator always matches", "", "", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Condition{Operator: tt.op, Value: "a"}
			assert.Equal(t, tt.expected, c.matches(tt.value, tt.present))
		})
	}
}
