// Package driver runs the wizard on the client side: it presents one step
// at a time, submits it to the backend and follows the transition that
// comes back until the draft is submitted or the user closes the wizard.
package driver

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"github.com/example/coursewizard/internal/domain"
	"github.com/example/coursewizard/internal/endpoint"
)

// ErrClosed is returned by a Presenter when the user closes the wizard.
var ErrClosed = errors.New("wizard closed")

// Backend is the wizard server as seen by a session.
type Backend interface {
	Advance(ctx context.Context, req *endpoint.AdvanceRequest) (*endpoint.AdvanceResponse, error)
	GetDraft(ctx context.Context, id int64) (*endpoint.Draft, error)
	Steps(ctx context.Context) (*endpoint.StepsResponse, error)
}

// StepView is everything a Presenter needs to render one step.
type StepView struct {
	Step     endpoint.StepView
	MaxSteps int
	// Values holds previously entered or saved values by field name.
	Values map[string]any
	// Errors holds field errors from the last submission of this step.
	Errors map[string]string
}

// ShowBack reports whether the back control is offered.
func (v StepView) ShowBack() bool {
	return v.Step.Number > 1 && v.Step.BackLabel != ""
}

// Input is what the user submitted for a step.
type Input struct {
	Action domain.Action
	Fields map[string]any
}

// Presenter renders a step and collects the user's input. It returns
// ErrClosed when the user closes the wizard.
type Presenter interface {
	Present(ctx context.Context, view StepView) (Input, error)
}

// Level is the severity of a notification.
type Level int

const (
	LevelInfo Level = iota
	LevelError
)

// Notifier shows messages to the user.
type Notifier interface {
	Notify(level Level, message string)
}

// Outcome describes how a session ended.
type Outcome struct {
	DraftID   int64
	Submitted bool
	Closed    bool
}

// Session drives one wizard run. A Session is not safe for concurrent use;
// each open wizard owns its own Session.
type Session struct {
	backend   Backend
	presenter Presenter
	notifier  Notifier
	scope     int64

	table   *endpoint.StepsResponse
	draftID int64
	step    int
	version int64
	values  map[string]any
	errs    map[string]string
}

// NewSession creates a session for the wizard in scope.
func NewSession(backend Backend, presenter Presenter, notifier Notifier, scope int64) *Session {
	return &Session{
		backend:   backend,
		presenter: presenter,
		notifier:  notifier,
		scope:     scope,
	}
}

// Run starts a new draft at step 1.
func (s *Session) Run(ctx context.Context) (*Outcome, error) {
	if err := s.loadTable(ctx); err != nil {
		return nil, err
	}
	s.draftID, s.step, s.version = 0, 1, 0
	s.values = map[string]any{}
	return s.loop(ctx)
}

// Resume re-enters a saved draft, prefilled with its payload. A zero step
// resumes at the draft's current step.
func (s *Session) Resume(ctx context.Context, draftID int64, step int) (*Outcome, error) {
	if err := s.loadTable(ctx); err != nil {
		return nil, err
	}
	d, err := s.backend.GetDraft(ctx, draftID)
	if err != nil {
		s.notifier.Notify(LevelError, userMessage(err))
		return nil, fmt.Errorf("failed to load draft %d: %w", draftID, err)
	}
	if d.Status == string(domain.DraftStatusSubmitted) {
		s.notifier.Notify(LevelError, "This draft has already been submitted.")
		return nil, fmt.Errorf("%w: draft %d is already submitted", domain.ErrInvalidState, draftID)
	}
	if step == 0 {
		step = d.CurrentStep
	}
	if step < 1 || step > s.table.MaxSteps {
		return nil, fmt.Errorf("%w: step %d outside [1, %d]", domain.ErrInvalidState, step, s.table.MaxSteps)
	}

	s.scope = d.Scope
	s.draftID, s.step, s.version = d.ID, step, d.Version
	s.values = maps.Clone(d.Payload)
	if s.values == nil {
		s.values = map[string]any{}
	}
	return s.loop(ctx)
}

func (s *Session) loadTable(ctx context.Context) error {
	table, err := s.backend.Steps(ctx)
	if err != nil {
		s.notifier.Notify(LevelError, userMessage(err))
		return fmt.Errorf("failed to load steps: %w", err)
	}
	if table.MaxSteps < 1 || len(table.Steps) != table.MaxSteps {
		return fmt.Errorf("%w: malformed step table", domain.ErrInvalidArgument)
	}
	s.table = table
	s.errs = nil
	return nil
}

func (s *Session) loop(ctx context.Context) (*Outcome, error) {
	for {
		input, err := s.presenter.Present(ctx, s.view())
		if errors.Is(err, ErrClosed) {
			return &Outcome{DraftID: s.draftID, Closed: true}, nil
		}
		if err != nil {
			return nil, err
		}
		if input.Action == "" {
			input.Action = domain.ActionNext
		}
		maps.Copy(s.values, input.Fields)

		resp, err := s.backend.Advance(ctx, &endpoint.AdvanceRequest{
			Scope:   s.scope,
			Step:    s.step,
			DraftID: s.draftID,
			Action:  string(input.Action),
			Fields:  input.Fields,
			Version: s.version,
		})
		if err != nil {
			if closeErr := s.handleError(ctx, err); closeErr != nil {
				return nil, closeErr
			}
			continue
		}
		s.errs = nil

		s.notifier.Notify(LevelInfo, resp.Message)
		if resp.Status == "submitted" {
			return &Outcome{DraftID: resp.RecordID, Submitted: true}, nil
		}
		s.draftID, s.step, s.version = resp.DraftID, resp.NextStep, resp.Version
	}
}

// handleError notifies the user about err. It returns a non-nil error when
// the wizard must close; otherwise the same step is presented again.
func (s *Session) handleError(ctx context.Context, err error) error {
	if ve, ok := domain.AsValidationError(err); ok {
		s.errs = ve.Fields
		s.notifier.Notify(LevelError, "Please correct the highlighted fields.")
		return nil
	}

	s.notifier.Notify(LevelError, userMessage(err))
	switch {
	case errors.Is(err, domain.ErrPermissionDenied), errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("wizard closed: %w", err)
	case errors.Is(err, domain.ErrConcurrentModify):
		s.refresh(ctx)
	}
	return nil
}

// refresh reloads the draft after a conflicting write so the next
// submission is made against the current version.
func (s *Session) refresh(ctx context.Context) {
	if s.draftID == 0 {
		return
	}
	d, err := s.backend.GetDraft(ctx, s.draftID)
	if err != nil {
		return
	}
	s.version = d.Version
	for name, v := range d.Payload {
		if _, entered := s.values[name]; !entered {
			s.values[name] = v
		}
	}
}

func (s *Session) view() StepView {
	return StepView{
		Step:     s.table.Steps[s.step-1],
		MaxSteps: s.table.MaxSteps,
		Values:   maps.Clone(s.values),
		Errors:   s.errs,
	}
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "This draft could not be found. Please start over."
	case errors.Is(err, domain.ErrPermissionDenied):
		return "You are not allowed to use this wizard here."
	case errors.Is(err, domain.ErrConcurrentModify):
		return "This draft was changed elsewhere. Please review the step and submit it again."
	case errors.Is(err, domain.ErrInvalidState):
		return "This step cannot be submitted: " + err.Error()
	case errors.Is(err, domain.ErrUnauthenticated):
		return "Please sign in again."
	default:
		return "Something went wrong: " + err.Error()
	}
}
