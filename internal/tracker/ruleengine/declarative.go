package ruleengine

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"tracker/internal/tracker/models"
	dErrors "tracker/pkg/domain-errors"
)

// Operator compares a record value against a rule condition.
type Operator string

const (
	OpMissing   Operator = "missing"
	OpPresent   Operator = "present"
	OpEquals    Operator = "equals"
	OpNotEquals Operator = "not_equals"
)

// Target selects which records a rule is evaluated for.
type Target string

const (
	TargetEnrollment Target = "enrollment"
	TargetEvent      Target = "event"
)

// Condition tests one field or data element. An empty Operator always matches.
type Condition struct {
	// Field is one of status, orgUnit, programStage. Ignored when DataElement is set.
	Field       string   `yaml:"field"`
	DataElement string   `yaml:"dataElement"`
	Operator    Operator `yaml:"operator"`
	Value       string   `yaml:"value"`
}

// Action is the effect raised when every condition of a rule matches.
type Action struct {
	Kind        EffectKind `yaml:"kind"`
	Message     string     `yaml:"message"`
	DataElement string     `yaml:"dataElement"`
}

// Rule is one declarative program rule.
type Rule struct {
	UID          string      `yaml:"uid"`
	Name         string      `yaml:"name"`
	Program      string      `yaml:"program"`
	ProgramStage string      `yaml:"programStage"`
	Target       Target      `yaml:"target"`
	Conditions   []Condition `yaml:"conditions"`
	Action       Action      `yaml:"action"`
}

// conditionFields lists the record fields a condition may test, per target.
var conditionFields = map[Target][]string{
	TargetEnrollment: {"status", "orgUnit"},
	TargetEvent:      {"status", "orgUnit", "programStage"},
}

type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// Declarative is an Engine backed by rules loaded from YAML. It is immutable
// after construction.
type Declarative struct {
	byProgram map[string][]Rule
}

// NewDeclarative indexes rules by program after checking each one.
func NewDeclarative(rules []Rule) (*Declarative, error) {
	d := &Declarative{byProgram: make(map[string][]Rule)}
	for i, rule := range rules {
		if err := rule.check(); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, fmt.Sprintf("rule %d", i))
		}
		d.byProgram[rule.Program] = append(d.byProgram[rule.Program], rule)
	}
	return d, nil
}

// LoadDeclarative parses a YAML rule document.
func LoadDeclarative(r io.Reader) (*Declarative, error) {
	var doc ruleFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "failed to parse rule file")
	}
	return NewDeclarative(doc.Rules)
}

// LoadDeclarativeFile opens path and parses it with LoadDeclarative.
func LoadDeclarativeFile(path string) (*Declarative, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rule file: %w", err)
	}
	defer f.Close()
	return LoadDeclarative(f)
}

func (r Rule) check() error {
	switch {
	case r.UID == "":
		return dErrors.New(dErrors.CodeValidation, "uid is required")
	case r.Program == "":
		return dErrors.New(dErrors.CodeValidation, "program is required")
	case r.Target != TargetEnrollment && r.Target != TargetEvent:
		return dErrors.New(dErrors.CodeValidation, "target must be enrollment or event")
	case !r.Action.Kind.IsValid():
		return dErrors.New(dErrors.CodeValidation, "unsupported action kind: "+string(r.Action.Kind))
	case r.Action.Kind == SetMandatoryField && r.Action.DataElement == "":
		return dErrors.New(dErrors.CodeValidation, "SET_MANDATORY_FIELD requires dataElement")
	}
	for _, c := range r.Conditions {
		switch c.Operator {
		case "", OpMissing, OpPresent, OpEquals, OpNotEquals:
		default:
			return dErrors.New(dErrors.CodeValidation, "unsupported operator: "+string(c.Operator))
		}
		if err := c.checkSubject(r.Target); err != nil {
			return err
		}
	}
	return nil
}

// checkSubject rejects conditions that could never read a value, which would
// otherwise evaluate as missing on every record.
func (c Condition) checkSubject(target Target) error {
	if c.DataElement != "" {
		if target != TargetEvent {
			return dErrors.New(dErrors.CodeValidation, "dataElement conditions require target event")
		}
		return nil
	}
	if c.Field == "" {
		return dErrors.New(dErrors.CodeValidation, "condition requires field or dataElement")
	}
	if !slices.Contains(conditionFields[target], c.Field) {
		return dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("unknown %s field %q, expected one of %v", target, c.Field, conditionFields[target]))
	}
	return nil
}

func (r Rule) effect() Effect {
	return Effect{
		Kind:        r.Action.Kind,
		RuleUID:     r.UID,
		Message:     r.Action.Message,
		DataElement: r.Action.DataElement,
	}
}

func (d *Declarative) EvaluateEnrollment(_ context.Context, _ *models.Bundle, e *models.Enrollment) ([]Effect, error) {
	var effects []Effect
	for _, rule := range d.byProgram[e.Program] {
		if rule.Target != TargetEnrollment {
			continue
		}
		if matchAll(rule.Conditions, func(c Condition) (string, bool) { return enrollmentValue(e, c) }) {
			effects = append(effects, rule.effect())
		}
	}
	return effects, nil
}

func (d *Declarative) EvaluateEvent(_ context.Context, _ *models.Bundle, e *models.Event) ([]Effect, error) {
	var effects []Effect
	for _, rule := range d.byProgram[e.Program] {
		if rule.Target != TargetEvent {
			continue
		}
		if rule.ProgramStage != "" && rule.ProgramStage != e.ProgramStage {
			continue
		}
		if matchAll(rule.Conditions, func(c Condition) (string, bool) { return eventValue(e, c) }) {
			effects = append(effects, rule.effect())
		}
	}
	return effects, nil
}

func matchAll(conditions []Condition, lookup func(Condition) (string, bool)) bool {
	for _, c := range conditions {
		value, ok := lookup(c)
		if !c.matches(value, ok) {
			return false
		}
	}
	return true
}

func (c Condition) matches(value string, present bool) bool {
	present = present && value != ""
	switch c.Operator {
	case OpMissing:
		return !present
	case OpPresent:
		return present
	case OpEquals:
		return present && value == c.Value
	case OpNotEquals:
		return !present || value != c.Value
	}
	return true
}

func enrollmentValue(e *models.Enrollment, c Condition) (string, bool) {
	switch c.Field {
	case "status":
		return string(e.Status), true
	case "orgUnit":
		return e.OrgUnit, true
	}
	return "", false
}

func eventValue(e *models.Event, c Condition) (string, bool) {
	if c.DataElement != "" {
		return e.DataValue(c.DataElement)
	}
	switch c.Field {
	case "status":
		return string(e.Status), true
	case "orgUnit":
		return e.OrgUnit, true
	case "programStage":
		return e.ProgramStage, true
	}
	return "", false
}
