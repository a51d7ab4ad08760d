package endpoint

import (
	"encoding/json"
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/example/coursewizard/internal/domain"
	"github.com/example/coursewizard/internal/service"
	"github.com/example/coursewizard/internal/steps"
)

// AdvanceRequest is the wire form of a step submission.
type AdvanceRequest struct {
	Scope   int64          `json:"scope"`
	Step    int            `json:"step"`
	DraftID int64          `json:"draftId"`
	Action  string         `json:"action"`
	Fields  map[string]any `json:"fields"`
	Version int64          `json:"version,omitempty"`
}

// AdvanceResponse is the wire form of a transition. Continue responses
// carry NextStep and DraftID; submitted responses carry RecordID.
type AdvanceResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	NextStep int    `json:"nextStep,omitempty"`
	DraftID  int64  `json:"draftId,omitempty"`
	RecordID int64  `json:"recordId,omitempty"`
	Version  int64  `json:"version,omitempty"`
}

// ValidationResponse is returned instead of an AdvanceResponse when the
// submitted fields fail validation. It has no status field.
type ValidationResponse struct {
	Step   int               `json:"step"`
	Errors map[string]string `json:"errors"`
}

// DraftRequest identifies one draft.
type DraftRequest struct {
	ID int64 `json:"id"`
}

// Draft is the wire form of a draft.
type Draft struct {
	ID          int64          `json:"id"`
	Owner       int64          `json:"owner"`
	Scope       int64          `json:"scope"`
	Status      string         `json:"status"`
	CurrentStep int            `json:"currentStep"`
	Payload     map[string]any `json:"payload"`
	Version     int64          `json:"version"`
	CreatedAt   time.Time      `json:"createdAt"`
	ModifiedAt  time.Time      `json:"modifiedAt"`
}

// StepsResponse describes the wizard shape for presentation.
type StepsResponse struct {
	Table    string     `json:"table"`
	MaxSteps int        `json:"maxSteps"`
	Steps    []StepView `json:"steps"`
}

// StepView is one step with its navigation labels.
type StepView struct {
	Number      int           `json:"number"`
	Title       string        `json:"title"`
	Note        string        `json:"note,omitempty"`
	SubmitLabel string        `json:"submitLabel"`
	BackLabel   string        `json:"backLabel,omitempty"`
	Fields      []steps.Field `json:"fields"`
}

// PrivacyRequest selects the drafts of an owner, optionally in one scope.
type PrivacyRequest struct {
	Owner int64 `json:"owner"`
	Scope int64 `json:"scope,omitempty"`
}

// ExportResponse lists exported drafts.
type ExportResponse struct {
	Drafts []Draft `json:"drafts"`
}

// DeleteResponse reports how many drafts were erased.
type DeleteResponse struct {
	Deleted int64 `json:"deleted"`
}

func fromTransition(r *service.TransitionResult) *AdvanceResponse {
	resp := &AdvanceResponse{Status: string(r.Status), Message: r.Message}
	if r.Status == service.StatusSubmitted {
		resp.RecordID = r.DraftID
		return resp
	}
	resp.NextStep = r.NextStep
	resp.DraftID = r.DraftID
	resp.Version = r.Version
	return resp
}

// FromDraft converts a domain draft to its wire form.
func FromDraft(d *domain.Draft) Draft {
	return Draft{
		ID:          d.ID,
		Owner:       d.Owner,
		Scope:       d.Scope,
		Status:      string(d.Status),
		CurrentStep: d.CurrentStep,
		Payload:     d.Payload.Plain(),
		Version:     d.Version,
		CreatedAt:   d.CreatedAt,
		ModifiedAt:  d.ModifiedAt,
	}
}

func fromTable(t *steps.Table) *StepsResponse {
	resp := &StepsResponse{Table: t.Name(), MaxSteps: t.MaxSteps()}
	for _, s := range t.Steps() {
		resp.Steps = append(resp.Steps, StepView{
			Number:      s.Number,
			Title:       s.Title,
			Note:        s.Note,
			SubmitLabel: t.SubmitLabel(s.Number),
			BackLabel:   t.BackLabel(s.Number),
			Fields:      s.Fields,
		})
	}
	return resp
}

// ToStruct encodes a wire message as a structpb.Struct for the gRPC
// transport. v must encode to a JSON object.
func ToStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	s := &structpb.Struct{}
	if err := protojson.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	return s, nil
}

// FromStruct decodes a structpb.Struct into the wire message v.
func FromStruct(s *structpb.Struct, v any) error {
	if s == nil {
		s = &structpb.Struct{}
	}
	data, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("decode message: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	return nil
}
