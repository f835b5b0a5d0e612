package ruleengine_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"tracker/internal/tracker/models"
	"tracker/internal/tracker/ruleengine"
	"tracker/internal/tracker/ruleengine/mocks"
	"tracker/internal/tracker/validation"
)

// =============================================================================
// Rule Engine Runner Test Suite
// =============================================================================
// Justification for unit tests: the runner translates engine effects into
// findings. Tests pin the code for each effect kind, the completed-status
// gating, fail-fast propagation and engine failures.

type RunnerSuite struct {
	suite.Suite
	ctrl   *gomock.Controller
	engine *mocks.MockEngine
	runner *ruleengine.Runner
}

func TestRunnerSuite(t *testing.T) {
	suite.Run(t, new(RunnerSuite))
}

func (s *RunnerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.engine = mocks.NewMockEngine(s.ctrl)
	var err error
	s.runner, err = ruleengine.NewRunner(s.engine,
		ruleengine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	s.Require().NoError(err)
}

func (s *RunnerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func eventBundle(status models.Status, values ...models.DataValue) (*models.Bundle, *models.Event) {
	event := &models.Event{
		UID:          "ZwwuwNp6gVd",
		Enrollment:   "MNWZ6hnuhSw",
		Program:      "IpHINAT79UW",
		ProgramStage: "A03MvHHogjR",
		OrgUnit:      "DiszpKrYNg8",
		Status:       status,
		DataValues:   values,
	}
	return &models.Bundle{
		ImportStrategy: models.StrategyCreate,
		ValidationMode: models.ValidationFull,
		Events:         []*models.Event{event},
	}, event
}

func codes(issues []validation.Issue) []validation.ErrorCode {
	out := make([]validation.ErrorCode, 0, len(issues))
	for _, issue := range issues {
		out = append(out, issue.Code)
	}
	return out
}

// =============================================================================
// Constructor Tests
// =============================================================================

func (s *RunnerSuite) TestNew() {
	s.Run("nil engine returns error", func() {
		_, err := ruleengine.NewRunner(nil)
		s.Require().Error(err)
		s.Contains(err.Error(), "engine is required")
	})
}

// =============================================================================
// Effect Mapping Tests
// =============================================================================

func (s *RunnerSuite) TestEffects() {
	s.Run("show error and show warning", func() {
		bundle, event := eventBundle(models.StatusActive)
		s.engine.EXPECT().EvaluateEvent(gomock.Any(), bundle, event).Return([]ruleengine.Effect{
			{Kind: ruleengine.ShowError, RuleUID: "rule0000001", Message: "weight too low"},
			{Kind: ruleengine.ShowWarning, RuleUID: "rule0000002", Message: "check height"},
		}, nil)

		rep := validation.NewReporter(models.IdSchemeParams{}, false)
		s.Require().NoError(s.runner.Run(context.Background(), rep, bundle))

		s.Equal([]validation.ErrorCode{validation.E1300}, codes(rep.Errors()))
		s.Equal([]validation.ErrorCode{validation.E1301}, codes(rep.Warnings()))
		s.True(rep.IsInvalid(event))
	})

	s.Run("on-complete effects only fire for completed records", func() {
		bundle, event := eventBundle(models.StatusActive)
		effects := []ruleengine.Effect{
			{Kind: ruleengine.ErrorOnComplete, RuleUID: "rule0000003", Message: "needs outcome"},
			{Kind: ruleengine.WarningOnComplete, RuleUID: "rule0000004", Message: "late"},
		}
		s.engine.EXPECT().EvaluateEvent(gomock.Any(), bundle, event).Return(effects, nil)

		rep := validation.NewReporter(models.IdSchemeParams{}, false)
		s.Require().NoError(s.runner.Run(context.Background(), rep, bundle))
		s.False(rep.HasErrors())
		s.False(rep.HasWarnings())

		completedBundle, completed := eventBundle(models.StatusCompleted)
		s.engine.EXPECT().EvaluateEvent(gomock.Any(), completedBundle, completed).Return(effects, nil)

		rep = validation.NewReporter(models.IdSchemeParams{}, false)
		s.Require().NoError(s.runner.Run(context.Background(), rep, completedBundle))
		s.Equal([]validation.ErrorCode{validation.E1302}, codes(rep.Errors()))
		s.Equal([]validation.ErrorCode{validation.E1303}, codes(rep.Warnings()))
	})

	s.Run("mandatory field is satisfied by a non-empty value", func() {
		bundle, event := eventBundle(models.StatusActive, models.DataValue{DataElement: "sWoqcoByYmD", Value: "12"})
		s.engine.EXPECT().EvaluateEvent(gomock.Any(), bundle, event).Return([]ruleengine.Effect{
			{Kind: ruleengine.SetMandatoryField, RuleUID: "rule0000005", DataElement: "sWoqcoByYmD"},
			{Kind: ruleengine.SetMandatoryField, RuleUID: "rule0000006", DataElement: "qrur9Dvnyt5"},
		}, nil)

		rep := validation.NewReporter(models.IdSchemeParams{}, false)
		s.Require().NoError(s.runner.Run(context.Background(), rep, bundle))

		errs := rep.Errors()
		s.Require().Len(errs, 1)
		s.Equal(validation.E1305, errs[0].Code)
		s.Contains(errs[0].Message, "qrur9Dvnyt5")
	})
}

// =============================================================================
// Failure Handling Tests
// =============================================================================

func (s *RunnerSuite) TestFailures() {
	s.Run("engine error becomes E1200 against the record", func() {
		bundle, event := eventBundle(models.StatusActive)
		s.engine.EXPECT().EvaluateEvent(gomock.Any(), bundle, event).Return(nil, errors.New("expression invalid"))

		rep := validation.NewReporter(models.IdSchemeParams{}, false)
		s.Require().NoError(s.runner.Run(context.Background(), rep, bundle))

		errs := rep.Errors()
		s.Require().Len(errs, 1)
		s.Equal(validation.E1200, errs[0].Code)
		s.Equal(event.UID, errs[0].UID)
	})

	s.Run("fail fast stops after the first error", func() {
		bundle, event := eventBundle(models.StatusActive)
		second := &models.Event{UID: "QsAhMiZtnl2", Enrollment: "MNWZ6hnuhSw", Program: "IpHINAT79UW"}
		bundle.Events = append(bundle.Events, second)
		s.engine.EXPECT().EvaluateEvent(gomock.Any(), bundle, event).Return([]ruleengine.Effect{
			{Kind: ruleengine.ShowError, RuleUID: "rule0000001", Message: "first"},
			{Kind: ruleengine.ShowError, RuleUID: "rule0000002", Message: "second"},
		}, nil)

		rep := validation.NewReporter(models.IdSchemeParams{}, true)
		err := s.runner.Run(context.Background(), rep, bundle)

		s.ErrorIs(err, validation.ErrFailFast)
		s.Equal(1, rep.ErrorCount())
	})

	s.Run("invalid records and deletions are not evaluated", func() {
		bundle, event := eventBundle(models.StatusActive)
		rep := validation.NewReporter(models.IdSchemeParams{}, false)
		_ = rep.AddError(event, validation.E1048, "Event", event.UID)
		s.Require().NoError(s.runner.Run(context.Background(), rep, bundle))

		bundle.ImportStrategy = models.StrategyDelete
		s.Require().NoError(s.runner.Run(context.Background(), validation.NewReporter(models.IdSchemeParams{}, false), bundle))
	})
}
