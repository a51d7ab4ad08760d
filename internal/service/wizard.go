package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/example/coursewizard/internal/auth"
	"github.com/example/coursewizard/internal/domain"
	"github.com/example/coursewizard/internal/observability"
	"github.com/example/coursewizard/internal/steps"
	"github.com/example/coursewizard/internal/storage"
)

const tracerName = "github.com/example/coursewizard/internal/service"

// User-facing messages returned with a transition.
const (
	MessageSubmitted = "Your submission has been recorded."
	messageCompleted = "Progress saved. (step %d completed)"
	messageBack      = "Progress saved. (back to step %d)"
)

// ResultStatus is the outcome of a successful Advance.
type ResultStatus string

const (
	StatusContinue  ResultStatus = "continue"
	StatusSubmitted ResultStatus = "submitted" // terminal
)

// WizardService moves drafts through the steps of a wizard.
type WizardService struct {
	storage storage.Storage
	table   *steps.Table
	authz   auth.Authorizer
	metrics *observability.Metrics
	tracer  trace.Tracer
}

// Option configures a WizardService.
type Option func(*WizardService)

// WithMetrics records advance latency and outcomes.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *WizardService) { s.metrics = m }
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(s *WizardService) { s.tracer = t }
}

// NewWizard creates a WizardService for one step table.
func NewWizard(store storage.Storage, table *steps.Table, authz auth.Authorizer, opts ...Option) *WizardService {
	s := &WizardService{
		storage: store,
		table:   table,
		authz:   authz,
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Steps returns the step table the service validates against.
func (s *WizardService) Steps() *steps.Table {
	return s.table
}

// AdvanceRequest is one step submission.
type AdvanceRequest struct {
	DraftID int64 // 0 starts a new draft
	Step    int
	Scope   int64
	Owner   auth.Identity
	Action  domain.Action
	Fields  map[string]any

	// ExpectedVersion is the draft version the client last saw. Zero skips
	// the check.
	ExpectedVersion int64
}

// TransitionResult is the outcome of a successful Advance.
type TransitionResult struct {
	Status   ResultStatus
	NextStep int // 0 when submitted
	DraftID  int64
	Message  string
	Version  int64
}

// Advance validates and merges one step submission into its draft and
// decides which step follows. Validation failures are returned as
// *domain.ValidationError and leave the draft untouched.
func (s *WizardService) Advance(ctx context.Context, req *AdvanceRequest) (*TransitionResult, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request is required", domain.ErrInvalidArgument)
	}

	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "wizard.Advance", trace.WithAttributes(
		attribute.Int64("wizard.draft_id", req.DraftID),
		attribute.Int("wizard.step", req.Step),
		attribute.Int64("wizard.scope", req.Scope),
		attribute.String("wizard.action", string(req.Action)),
	))
	defer span.End()

	result, err := s.advance(ctx, req)

	s.observe(req.Action, time.Since(start), result, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.String("wizard.status", string(result.Status)),
		attribute.Int64("wizard.draft_id", result.DraftID),
	)
	return result, nil
}

func (s *WizardService) advance(ctx context.Context, req *AdvanceRequest) (*TransitionResult, error) {
	if !req.Action.Valid() {
		return nil, fmt.Errorf("%w: unknown action %q", domain.ErrInvalidState, req.Action)
	}
	if !s.table.Contains(req.Step) {
		return nil, fmt.Errorf("%w: step %d outside [1, %d]", domain.ErrInvalidState, req.Step, s.table.MaxSteps())
	}
	if req.Action == domain.ActionBack && req.Step == 1 {
		return nil, fmt.Errorf("%w: cannot go back from step 1", domain.ErrInvalidState)
	}
	if req.Owner.UserID == 0 {
		return nil, domain.ErrUnauthenticated
	}
	if !s.authz.HasCapability(ctx, req.Owner, auth.CapabilityUse, req.Scope) {
		return nil, fmt.Errorf("%w: user %d in scope %d", domain.ErrPermissionDenied, req.Owner.UserID, req.Scope)
	}

	uow, err := s.storage.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	var draft *domain.Draft
	var isNew bool
	switch r := s.resolve(ctx, uow, req).(type) {
	case found:
		draft = r.draft
	case create:
		draft, isNew = r.draft, true
	case rejected:
		return nil, r.err
	}

	fields, err := s.collect(req)
	if err != nil {
		return nil, err
	}
	draft.Payload.Overlay(fields)

	t := s.transition(req)
	if err := draft.SetStatus(t.status); err != nil {
		return nil, err
	}
	draft.CurrentStep = t.currentStep
	draft.Touch()

	if isNew {
		if err := uow.Drafts().Create(ctx, draft); err != nil {
			return nil, fmt.Errorf("failed to create draft: %w", err)
		}
	} else if err := uow.Drafts().Update(ctx, draft); err != nil {
		return nil, fmt.Errorf("failed to update draft %d: %w", draft.ID, err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	result := &TransitionResult{
		Status:   StatusContinue,
		NextStep: t.nextStep,
		DraftID:  draft.ID,
		Version:  draft.Version,
	}
	switch {
	case t.status == domain.DraftStatusSubmitted:
		result.Status = StatusSubmitted
		result.Message = MessageSubmitted
		log.Printf("wizard: draft %d submitted by user %d in scope %d", draft.ID, draft.Owner, draft.Scope)
	case req.Action == domain.ActionBack:
		result.Message = fmt.Sprintf(messageBack, t.nextStep)
	default:
		result.Message = fmt.Sprintf(messageCompleted, req.Step)
	}
	return result, nil
}

// resolution is the outcome of looking up the draft a request targets:
// found, create or rejected.
type resolution interface {
	isResolution()
}

type found struct{ draft *domain.Draft }

type create struct{ draft *domain.Draft }

type rejected struct{ err error }

func (found) isResolution()    {}
func (create) isResolution()   {}
func (rejected) isResolution() {}

func (s *WizardService) resolve(ctx context.Context, uow storage.UnitOfWork, req *AdvanceRequest) resolution {
	if req.DraftID == 0 {
		if req.Step != 1 || req.Action != domain.ActionNext {
			return rejected{fmt.Errorf("%w: a new draft starts at step 1", domain.ErrInvalidState)}
		}
		return create{domain.NewDraft(req.Owner.UserID, req.Scope, 1)}
	}

	draft, err := uow.Drafts().Get(ctx, req.DraftID)
	if err != nil {
		return rejected{fmt.Errorf("failed to load draft %d: %w", req.DraftID, err)}
	}
	if draft.Owner != req.Owner.UserID || draft.Scope != req.Scope {
		return rejected{fmt.Errorf("%w: draft %d", domain.ErrPermissionDenied, draft.ID)}
	}
	if draft.IsSubmitted() {
		return rejected{fmt.Errorf("%w: draft %d is already submitted", domain.ErrInvalidState, draft.ID)}
	}
	if req.ExpectedVersion != 0 && req.ExpectedVersion != draft.Version {
		log.Printf("wizard: draft %d version %d, client saw %d", draft.ID, draft.Version, req.ExpectedVersion)
		return rejected{fmt.Errorf("%w: draft %d changed since version %d", domain.ErrConcurrentModify, draft.ID, req.ExpectedVersion)}
	}
	return found{draft}
}

// collect turns the submitted fields into payload values. Forward moves are
// validated; moving back keeps whatever coerces cleanly.
func (s *WizardService) collect(req *AdvanceRequest) (domain.Payload, error) {
	if req.Action == domain.ActionBack {
		return s.table.Coerce(req.Step, req.Fields), nil
	}
	fields, errs := s.table.Validate(req.Step, req.Fields)
	if len(errs) > 0 {
		return nil, &domain.ValidationError{Step: req.Step, Fields: errs}
	}
	return fields, nil
}

type transition struct {
	status      domain.DraftStatus
	currentStep int
	nextStep    int
}

func (s *WizardService) transition(req *AdvanceRequest) transition {
	switch {
	case req.Action == domain.ActionBack:
		return transition{status: domain.DraftStatusDraft, currentStep: req.Step - 1, nextStep: req.Step - 1}
	case s.table.IsLast(req.Step):
		return transition{status: domain.DraftStatusSubmitted, currentStep: req.Step}
	default:
		return transition{status: domain.DraftStatusDraft, currentStep: req.Step, nextStep: req.Step + 1}
	}
}

func (s *WizardService) observe(action domain.Action, d time.Duration, result *TransitionResult, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.AdvanceDuration().WithLabel(string(action)).Observe(d)
	s.metrics.Transitions().Inc(outcome(result, err))
}

func outcome(result *TransitionResult, err error) string {
	if err == nil {
		return string(result.Status)
	}
	if _, ok := domain.AsValidationError(err); ok {
		return "invalid"
	}
	for _, e := range []error{
		domain.ErrNotFound,
		domain.ErrPermissionDenied,
		domain.ErrInvalidState,
		domain.ErrConcurrentModify,
		domain.ErrUnauthenticated,
	} {
		if errors.Is(err, e) {
			return e.Error()
		}
	}
	return "error"
}

// GetDraft loads a draft owned by owner.
func (s *WizardService) GetDraft(ctx context.Context, owner auth.Identity, id int64) (*domain.Draft, error) {
	if owner.UserID == 0 {
		return nil, domain.ErrUnauthenticated
	}
	if id <= 0 {
		return nil, fmt.Errorf("%w: draft id must be positive", domain.ErrInvalidArgument)
	}

	uow, err := s.storage.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	draft, err := uow.Drafts().Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load draft %d: %w", id, err)
	}
	if draft.Owner != owner.UserID || !s.authz.HasCapability(ctx, owner, auth.CapabilityUse, draft.Scope) {
		return nil, fmt.Errorf("%w: draft %d", domain.ErrPermissionDenied, id)
	}
	return draft, nil
}
