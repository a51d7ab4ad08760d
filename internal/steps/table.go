// Package steps describes the shape of the wizard: which fields each step
// collects and how submitted values are checked. A Table is immutable once
// built and safe for concurrent use.
package steps

import (
	"fmt"
	"slices"

	"github.com/example/coursewizard/internal/domain"
)

// Button labels shown by presenters.
const (
	LabelNext   = "Continue"
	LabelSubmit = "Submit"
	LabelBack   = "Back"
)

// controlFields carry wizard state alongside a submission and never enter a
// draft payload.
var controlFields = []string{"step", "draftid", "draftId", "courseid", "scope", "action", "sesskey", "id", "version"}

// IsControlField reports whether name is reserved for wizard state.
func IsControlField(name string) bool {
	return slices.Contains(controlFields, name)
}

// Field declares one input collected by a step.
type Field struct {
	Name      string           `yaml:"name" json:"name"`
	Label     string           `yaml:"label" json:"label"`
	Kind      domain.ValueKind `yaml:"kind" json:"kind"`
	Required  bool             `yaml:"required" json:"required"`
	MaxLength int              `yaml:"maxLength" json:"maxLength,omitempty"`
	Min       *int64           `yaml:"min" json:"min,omitempty"`
	Max       *int64           `yaml:"max" json:"max,omitempty"`
	MaxFiles  int              `yaml:"maxFiles" json:"maxFiles,omitempty"`
	Options   []string         `yaml:"options" json:"options,omitempty"`
}

// Step is one numbered stage of the wizard.
type Step struct {
	Number int     `yaml:"-" json:"number"`
	Title  string  `yaml:"title" json:"title"`
	Note   string  `yaml:"note" json:"note,omitempty"`
	Fields []Field `yaml:"fields" json:"fields"`
}

// Field returns the declared field called name.
func (s Step) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Table maps step numbers 1..MaxSteps to their definitions.
type Table struct {
	name  string
	steps []Step
}

// New builds a table from steps in order; steps are numbered from 1.
func New(name string, steps ...Step) (*Table, error) {
	if len(steps) == 0 {
		return nil, fmt.Errorf("step table %q: at least one step is required", name)
	}
	t := &Table{name: name, steps: make([]Step, len(steps))}
	for i, s := range steps {
		s.Number = i + 1
		s.Fields = slices.Clone(s.Fields)
		if err := checkStep(s); err != nil {
			return nil, fmt.Errorf("step table %q: %w", name, err)
		}
		t.steps[i] = s
	}
	return t, nil
}

// MustNew is like New but panics on error. Intended for built-in tables.
func MustNew(name string, steps ...Step) *Table {
	t, err := New(name, steps...)
	if err != nil {
		panic(err)
	}
	return t
}

func checkStep(s Step) error {
	seen := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		if f.Name == "" {
			return fmt.Errorf("step %d: field name is required", s.Number)
		}
		if IsControlField(f.Name) {
			return fmt.Errorf("step %d: field %q is reserved", s.Number, f.Name)
		}
		if seen[f.Name] {
			return fmt.Errorf("step %d: duplicate field %q", s.Number, f.Name)
		}
		seen[f.Name] = true
		switch f.Kind {
		case domain.KindString, domain.KindInt, domain.KindFiles, domain.KindRichText:
		default:
			return fmt.Errorf("step %d: field %q has unknown kind %q", s.Number, f.Name, f.Kind)
		}
	}
	return nil
}

// Name identifies the table, e.g. "feedback".
func (t *Table) Name() string { return t.name }

// MaxSteps is the number of steps; the last step submits the draft.
func (t *Table) MaxSteps() int { return len(t.steps) }

// Contains reports whether n is a valid step number.
func (t *Table) Contains(n int) bool { return n >= 1 && n <= len(t.steps) }

// IsLast reports whether n is the final step.
func (t *Table) IsLast(n int) bool { return n == len(t.steps) }

// Step returns the definition of step n.
func (t *Table) Step(n int) (Step, bool) {
	if !t.Contains(n) {
		return Step{}, false
	}
	return t.steps[n-1], true
}

// Steps returns all step definitions in order.
func (t *Table) Steps() []Step {
	return slices.Clone(t.steps)
}

// SubmitLabel is the label of the forward control on step n.
func (t *Table) SubmitLabel(n int) string {
	if n < len(t.steps) {
		return LabelNext
	}
	return LabelSubmit
}

// BackLabel is the label of the back control on step n; empty when the
// control is hidden.
func (t *Table) BackLabel(n int) string {
	if n > 1 {
		return LabelBack
	}
	return ""
}
