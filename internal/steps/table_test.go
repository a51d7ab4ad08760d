package steps

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/example/coursewizard/internal/domain"
)

func TestBuiltinTables(t *testing.T) {
	tests := []struct {
		name     string
		maxSteps int
	}{
		{"feedback", 3},
		{"catquiz", 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := Builtin(tt.name)
			if err != nil {
				t.Fatalf("Builtin(%q): %v", tt.name, err)
			}
			if table.MaxSteps() != tt.maxSteps {
				t.Errorf("MaxSteps() = %d, want %d", table.MaxSteps(), tt.maxSteps)
			}
			for i, s := range table.Steps() {
				if s.Number != i+1 {
					t.Errorf("step %d numbered %d", i+1, s.Number)
				}
			}
		})
	}

	if _, err := Builtin("nope"); err == nil {
		t.Error("expected error for unknown table")
	}
}

func TestContainsRejectsOutOfRange(t *testing.T) {
	for _, n := range []int{-1, 0, 4, 100} {
		if Feedback.Contains(n) {
			t.Errorf("Contains(%d) = true", n)
		}
		if _, ok := Feedback.Step(n); ok {
			t.Errorf("Step(%d) found", n)
		}
	}
	for n := 1; n <= 3; n++ {
		if !Feedback.Contains(n) {
			t.Errorf("Contains(%d) = false", n)
		}
	}
}

func TestLabels(t *testing.T) {
	tests := []struct {
		step       int
		wantSubmit string
		wantBack   string
	}{
		{1, LabelNext, ""},
		{2, LabelNext, LabelBack},
		{3, LabelSubmit, LabelBack},
	}
	for _, tt := range tests {
		if got := Feedback.SubmitLabel(tt.step); got != tt.wantSubmit {
			t.Errorf("SubmitLabel(%d) = %q, want %q", tt.step, got, tt.wantSubmit)
		}
		if got := Feedback.BackLabel(tt.step); got != tt.wantBack {
			t.Errorf("BackLabel(%d) = %q, want %q", tt.step, got, tt.wantBack)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		table      *Table
		step       int
		raw        map[string]any
		want       domain.Payload
		wantErrors domain.FieldErrors
	}{
		{
			name:  "title required",
			table: Feedback,
			step:  1,
			raw:   map[string]any{"category": "bugs"},
			wantErrors: domain.FieldErrors{
				"title": "Required",
			},
		},
		{
			name:       "blank title is missing",
			table:      Feedback,
			step:       1,
			raw:        map[string]any{"title": "   "},
			wantErrors: domain.FieldErrors{"title": "Required"},
		},
		{
			name:       "title must be text",
			table:      Feedback,
			step:       1,
			raw:        map[string]any{"title": 12.0},
			wantErrors: domain.FieldErrors{"title": "Must be text"},
		},
		{
			name:  "control fields are ignored",
			table: Feedback,
			step:  1,
			raw: map[string]any{
				"title": "x", "step": 1.0, "draftId": 0.0, "scope": 42.0,
				"action": "next", "sesskey": "abc", "version": 3.0,
			},
			want: domain.Payload{"title": domain.StringValue("x")},
		},
		{
			name:  "undeclared fields are inferred",
			table: Feedback,
			step:  3,
			raw:   map[string]any{"a": 1.0, "b": "two", "c": []any{"ref"}},
			want: domain.Payload{
				"a": domain.IntValue(1),
				"b": domain.StringValue("two"),
				"c": domain.FilesValue("ref"),
			},
		},
		{
			name:       "undeclared boolean is rejected",
			table:      Feedback,
			step:       3,
			raw:        map[string]any{"flag": true},
			wantErrors: domain.FieldErrors{"flag": "Unsupported value"},
		},
		{
			name:  "attachments limited to five",
			table: Feedback,
			step:  2,
			raw: map[string]any{
				"attachments": []any{"1", "2", "3", "4", "5", "6"},
			},
			wantErrors: domain.FieldErrors{"attachments": "At most 5 files"},
		},
		{
			name:  "rich text editor object is sanitised",
			table: Feedback,
			step:  2,
			raw: map[string]any{
				"description": map[string]any{"text": `<p>hi</p><script>alert(1)</script>`, "format": 1.0},
			},
			want: domain.Payload{"description": domain.RichTextValue("<p>hi</p>")},
		},
		{
			name:  "catquiz selection accepts numeric strings",
			table: CatQuiz,
			step:  1,
			raw:   map[string]any{"select_catquiz": "17"},
			want:  domain.Payload{"select_catquiz": domain.IntValue(17)},
		},
		{
			name:       "catquiz selection below minimum",
			table:      CatQuiz,
			step:       1,
			raw:        map[string]any{"select_catquiz": 0.0},
			wantErrors: domain.FieldErrors{"select_catquiz": "Must be at least 1"},
		},
		{
			name:       "catquiz selection must be whole",
			table:      CatQuiz,
			step:       1,
			raw:        map[string]any{"select_catquiz": 1.5},
			wantErrors: domain.FieldErrors{"select_catquiz": "Must be a whole number"},
		},
		{
			name:  "json numbers",
			table: CatQuiz,
			step:  4,
			raw:   map[string]any{"extra": json.Number("9")},
			want:  domain.Payload{"extra": domain.IntValue(9)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, errs := tt.table.Validate(tt.step, tt.raw)
			if diff := cmp.Diff(tt.wantErrors, errs); diff != "" {
				t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
			}
			if tt.wantErrors != nil {
				if got != nil {
					t.Errorf("expected nil payload on failure, got %v", got)
				}
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("payload mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCoerceSkipsRulesAndDropsBadValues(t *testing.T) {
	got := Feedback.Coerce(1, map[string]any{
		"title":    "",
		"category": 5.0,
		"extra":    2.0,
		"action":   "back",
	})
	want := domain.Payload{
		"title": domain.StringValue(""),
		"extra": domain.IntValue(2),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestNewRejectsBadTables(t *testing.T) {
	tests := []struct {
		name  string
		steps []Step
		want  string
	}{
		{"empty", nil, "at least one step"},
		{"reserved", []Step{{Fields: []Field{{Name: "action", Kind: domain.KindString}}}}, "reserved"},
		{"duplicate", []Step{{Fields: []Field{
			{Name: "a", Kind: domain.KindString},
			{Name: "a", Kind: domain.KindInt},
		}}}, "duplicate"},
		{"kind", []Step{{Fields: []Field{{Name: "a", Kind: "date"}}}}, "unknown kind"},
		{"unnamed", []Step{{Fields: []Field{{Kind: domain.KindString}}}}, "name is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("t", tt.steps...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("New() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	table, err := LoadFile("testdata/survey.yaml")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if table.Name() != "survey" || table.MaxSteps() != 3 {
		t.Fatalf("got %s with %d steps", table.Name(), table.MaxSteps())
	}

	_, errs := table.Validate(1, map[string]any{"nickname": "ok", "age": 12.0})
	if diff := cmp.Diff(domain.FieldErrors{"age": "Must be at least 16"}, errs); diff != "" {
		t.Errorf("field errors mismatch (-want +got):\n%s", diff)
	}

	_, errs = table.Validate(2, map[string]any{"rating": "great"})
	if diff := cmp.Diff(domain.FieldErrors{"rating": "Not a valid choice"}, errs); diff != "" {
		t.Errorf("field errors mismatch (-want +got):\n%s", diff)
	}
}

func TestResolvePrefersFile(t *testing.T) {
	table, err := Resolve("feedback", "testdata/survey.yaml")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if table.Name() != "survey" {
		t.Errorf("Resolve picked %q", table.Name())
	}

	table, err = Resolve("catquiz", "")
	if err != nil || table.MaxSteps() != 6 {
		t.Errorf("Resolve(catquiz) = %v, %v", table, err)
	}
}

func TestParseRequiresName(t *testing.T) {
	if _, err := Parse([]byte("steps:\n  - title: x\n")); err == nil {
		t.Error("expected error for missing name")
	}
}
