package domain

import (
	"errors"
	"testing"
)

func TestValidDraftStatusTransition(t *testing.T) {
	tests := []struct {
		from, to DraftStatus
		want     bool
	}{
		{DraftStatusDraft, DraftStatusDraft, true},
		{DraftStatusDraft, DraftStatusSubmitted, true},
		{DraftStatusSubmitted, DraftStatusDraft, false},
		{DraftStatusSubmitted, DraftStatusSubmitted, false},
		{"", DraftStatusDraft, true},
		{"", DraftStatusSubmitted, false},
	}

	for _, tt := range tests {
		if got := ValidDraftStatusTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("ValidDraftStatusTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestDraftSetStatusSubmittedIsTerminal(t *testing.T) {
	d := NewDraft(7, 42, 1)
	if err := d.SetStatus(DraftStatusSubmitted); err != nil {
		t.Fatalf("SetStatus(submitted) = %v", err)
	}
	err := d.SetStatus(DraftStatusDraft)
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	if !d.IsSubmitted() {
		t.Error("draft should remain submitted")
	}
}

func TestPayloadOverlayKeepsEarlierKeys(t *testing.T) {
	p := Payload{"a": IntValue(1), "title": StringValue("old")}
	p.Overlay(Payload{"b": IntValue(2), "title": StringValue("new")})

	if len(p) != 3 {
		t.Fatalf("expected 3 keys, got %d", len(p))
	}
	if !p["a"].Equal(IntValue(1)) {
		t.Errorf("a = %v", p["a"])
	}
	if !p["title"].Equal(StringValue("new")) {
		t.Errorf("title = %v, want new", p["title"])
	}
}

func TestPayloadCloneIsDeep(t *testing.T) {
	p := Payload{"attachments": FilesValue("f1", "f2")}
	c := p.Clone()
	c["attachments"].Files[0] = "changed"

	if p["attachments"].Files[0] != "f1" {
		t.Error("clone shares file slice with original")
	}
}

func TestPayloadStorageEncoding(t *testing.T) {
	p := Payload{
		"title":       StringValue("x"),
		"n":           IntValue(3),
		"attachments": FilesValue("draft:1/a.pdf"),
		"description": RichTextValue("<p>hi</p>"),
	}
	s, err := MarshalPayload(p)
	if err != nil {
		t.Fatalf("MarshalPayload: %v", err)
	}
	got, err := UnmarshalPayload(s)
	if err != nil {
		t.Fatalf("UnmarshalPayload: %v", err)
	}
	for k, v := range p {
		if !got[k].Equal(v) {
			t.Errorf("%s = %#v, want %#v", k, got[k], v)
		}
	}

	empty, err := UnmarshalPayload("")
	if err != nil || len(empty) != 0 {
		t.Errorf("UnmarshalPayload(\"\") = %v, %v", empty, err)
	}
}

func TestValidationErrorMessageIsSorted(t *testing.T) {
	err := &ValidationError{Step: 1, Fields: FieldErrors{"title": "Required", "category": "Too long"}}
	want := "validation failed: category: Too long; title: Required"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	wrapped := errors.Join(errors.New("context"), err)
	ve, ok := AsValidationError(wrapped)
	if !ok || ve.Step != 1 {
		t.Errorf("AsValidationError = %v, %v", ve, ok)
	}
}
