package endpoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/example/coursewizard/internal/auth"
	"github.com/example/coursewizard/internal/domain"
	"github.com/example/coursewizard/internal/service"
	"github.com/example/coursewizard/internal/steps"
	"github.com/example/coursewizard/internal/storage/sqlite"
)

func TestMapErrorToStatus(t *testing.T) {
	tests := []struct {
		err      error
		wantCode codes.Code
		wantHTTP int
	}{
		{domain.ErrNotFound, codes.NotFound, http.StatusNotFound},
		{fmt.Errorf("load: %w", domain.ErrPermissionDenied), codes.PermissionDenied, http.StatusForbidden},
		{domain.ErrInvalidState, codes.FailedPrecondition, http.StatusConflict},
		{domain.ErrConcurrentModify, codes.Aborted, http.StatusConflict},
		{domain.ErrInvalidArgument, codes.InvalidArgument, http.StatusBadRequest},
		{domain.ErrUnauthenticated, codes.Unauthenticated, http.StatusUnauthorized},
		{&domain.ValidationError{Step: 1, Fields: domain.FieldErrors{"title": "Required"}}, codes.InvalidArgument, http.StatusUnprocessableEntity},
		{errors.New("disk on fire"), codes.Internal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		st, _ := status.FromError(MapErrorToStatus(tt.err))
		if st.Code() != tt.wantCode {
			t.Errorf("%v: code = %v, want %v", tt.err, st.Code(), tt.wantCode)
		}
		if got := HTTPStatus(tt.err); got != tt.wantHTTP {
			t.Errorf("%v: http = %d, want %d", tt.err, got, tt.wantHTTP)
		}
	}

	if msg := PublicMessage(errors.New("secret path /var/db")); msg != "internal error" {
		t.Errorf("internal message leaked: %q", msg)
	}
	if st, _ := status.FromError(MapErrorToStatus(errors.New("x"))); st.Message() != "internal error" {
		t.Errorf("internal status message = %q", st.Message())
	}
}

func TestErrorFromStatusRoundTrip(t *testing.T) {
	for _, sentinel := range []error{
		domain.ErrNotFound,
		domain.ErrPermissionDenied,
		domain.ErrInvalidState,
		domain.ErrConcurrentModify,
		domain.ErrInvalidArgument,
		domain.ErrUnauthenticated,
	} {
		got := ErrorFromStatus(MapErrorToStatus(fmt.Errorf("op: %w", sentinel)))
		if !errors.Is(got, sentinel) {
			t.Errorf("round trip of %v = %v", sentinel, got)
		}
	}

	ve := &domain.ValidationError{Step: 2, Fields: domain.FieldErrors{"a": "Required", "b": "Must be text"}}
	got, ok := domain.AsValidationError(ErrorFromStatus(MapErrorToStatus(ve)))
	if !ok {
		t.Fatal("validation error lost in transit")
	}
	if diff := cmp.Diff(ve, got); diff != "" {
		t.Errorf("validation error mismatch (-want +got):\n%s", diff)
	}

	internal := ErrorFromStatus(status.Error(codes.Internal, "internal error"))
	if status.Code(internal) != codes.Internal {
		t.Errorf("internal status = %v", internal)
	}
}

func TestStructRoundTrip(t *testing.T) {
	in := &AdvanceRequest{
		Scope: 42, Step: 2, DraftID: 7, Action: "next", Version: 3,
		Fields: map[string]any{"title": "x", "count": float64(2), "attachments": []any{"a", "b"}},
	}
	s, err := ToStruct(in)
	if err != nil {
		t.Fatalf("ToStruct: %v", err)
	}
	var out AdvanceRequest
	if err := FromStruct(s, &out); err != nil {
		t.Fatalf("FromStruct: %v", err)
	}
	if diff := cmp.Diff(in, &out); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	bad, _ := ToStruct(map[string]any{"step": "two"})
	if err := FromStruct(bad, &out); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestValidateAdvanceRequest(t *testing.T) {
	tests := []struct {
		name string
		req  *AdvanceRequest
		ok   bool
	}{
		{"valid", &AdvanceRequest{Scope: 1, Step: 1, Action: "next"}, true},
		{"nil", nil, false},
		{"no scope", &AdvanceRequest{Step: 1}, false},
		{"negative draft", &AdvanceRequest{Scope: 1, DraftID: -1}, false},
		{"negative version", &AdvanceRequest{Scope: 1, Version: -1}, false},
		// step range is a wizard state rule
		{"step zero", &AdvanceRequest{Scope: 1, Step: 0}, true},
	}
	for _, tt := range tests {
		err := validateAdvanceRequest(tt.req)
		if (err == nil) != tt.ok {
			t.Errorf("%s: err = %v", tt.name, err)
		}
		if err != nil && !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("%s: expected ErrInvalidArgument, got %v", tt.name, err)
		}
	}
}

func TestEndpointsAdvance(t *testing.T) {
	store, err := sqlite.New(filepath.Join(t.TempDir(), "wizard.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatal(err)
	}
	eps := MakeEndpoints(service.NewWizard(store, steps.Feedback, auth.ClaimsAuthorizer{}))

	if _, err := eps.Advance(context.Background(), &AdvanceRequest{Scope: 5, Step: 1, Action: "next"}); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("anonymous advance: %v", err)
	}

	ctx := auth.NewContext(context.Background(), auth.Identity{UserID: 3, Scopes: []int64{5}})
	resp, err := eps.Advance(ctx, &AdvanceRequest{Scope: 5, Step: 1, Action: "next", Fields: map[string]any{"title": "x"}})
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	cont := resp.(*AdvanceResponse)
	if cont.Status != "continue" || cont.NextStep != 2 || cont.DraftID == 0 || cont.RecordID != 0 {
		t.Fatalf("continue response = %+v", cont)
	}

	for step := 2; step <= 3; step++ {
		resp, err = eps.Advance(ctx, &AdvanceRequest{Scope: 5, Step: step, DraftID: cont.DraftID, Action: "next"})
		if err != nil {
			t.Fatalf("step %d: %v", step, err)
		}
	}
	done := resp.(*AdvanceResponse)
	want := &AdvanceResponse{Status: "submitted", Message: service.MessageSubmitted, RecordID: cont.DraftID}
	if diff := cmp.Diff(want, done); diff != "" {
		t.Errorf("submitted response (-want +got):\n%s", diff)
	}

	got, err := eps.GetDraft(ctx, &DraftRequest{ID: cont.DraftID})
	if err != nil {
		t.Fatalf("get draft: %v", err)
	}
	if d := got.(*Draft); d.Status != "submitted" || d.Payload["title"] != "x" {
		t.Errorf("draft = %+v", d)
	}

	table, _ := eps.Steps(ctx, nil)
	st := table.(*StepsResponse)
	if st.MaxSteps != 3 || st.Steps[0].BackLabel != "" || st.Steps[1].BackLabel != "Back" || st.Steps[2].SubmitLabel != "Submit" {
		t.Errorf("steps = %+v", st)
	}
}
