package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/example/coursewizard/internal/domain"
	"github.com/example/coursewizard/internal/steps"
)

const closeLabel = "Close"

// InputConfig configures a single line prompt.
type InputConfig struct {
	Message string
	Default string
	Help    string
}

// SelectConfig configures a single choice prompt.
type SelectConfig struct {
	Message      string
	Options      []string
	DefaultIndex int
	Help         string
}

// TextAreaConfig configures a multi-line prompt.
type TextAreaConfig struct {
	Message string
	Default string
	Help    string
}

// PromptDriver abstracts the terminal so the presenter can be tested
// without one.
type PromptDriver interface {
	Input(ctx context.Context, cfg InputConfig) (string, error)
	Select(ctx context.Context, cfg SelectConfig) (int, error)
	TextArea(ctx context.Context, cfg TextAreaConfig) (string, error)
}

// TerminalPresenter renders steps as interactive terminal prompts.
type TerminalPresenter struct {
	driver PromptDriver
	out    io.Writer
}

// NewTerminalPresenter creates a presenter that prompts through driver and
// writes step headers to out. A nil driver prompts on the process terminal.
func NewTerminalPresenter(driver PromptDriver, out io.Writer) *TerminalPresenter {
	if driver == nil {
		driver = SurveyDriver{}
	}
	return &TerminalPresenter{driver: driver, out: out}
}

// Present prompts for every field of the step and then for the navigation
// control. Entered values travel with both controls.
func (p *TerminalPresenter) Present(ctx context.Context, view StepView) (Input, error) {
	fmt.Fprintf(p.out, "\nStep %d of %d: %s\n", view.Step.Number, view.MaxSteps, view.Step.Title)
	if view.Step.Note != "" {
		fmt.Fprintln(p.out, view.Step.Note)
	}

	fields := make(map[string]any, len(view.Step.Fields))
	for _, f := range view.Step.Fields {
		v, ok, err := p.promptField(ctx, f, view.Values[f.Name], view.Errors[f.Name])
		if err != nil {
			return Input{}, err
		}
		if ok {
			fields[f.Name] = v
		}
	}

	options := []string{view.Step.SubmitLabel}
	if view.ShowBack() {
		options = append(options, view.Step.BackLabel)
	}
	options = append(options, closeLabel)
	idx, err := p.driver.Select(ctx, SelectConfig{Message: "What next?", Options: options})
	if err != nil {
		return Input{}, err
	}
	switch {
	case idx < 0 || options[idx] == closeLabel:
		return Input{}, ErrClosed
	case idx == 0:
		return Input{Action: domain.ActionNext, Fields: fields}, nil
	default:
		return Input{Action: domain.ActionBack, Fields: fields}, nil
	}
}

// promptField asks for one field. ok is false when the field was left
// empty and should not be sent.
func (p *TerminalPresenter) promptField(ctx context.Context, f steps.Field, current any, problem string) (any, bool, error) {
	label := f.Label
	if label == "" {
		label = f.Name
	}
	if f.Required {
		label += " *"
	}
	if problem != "" {
		fmt.Fprintf(p.out, "  ! %s: %s\n", label, problem)
	}
	def := displayValue(current)

	switch {
	case len(f.Options) > 0:
		idx, err := p.driver.Select(ctx, SelectConfig{
			Message:      label,
			Options:      f.Options,
			DefaultIndex: indexOf(f.Options, def),
		})
		if err != nil {
			return nil, false, err
		}
		if idx < 0 {
			return nil, false, nil
		}
		return f.Options[idx], true, nil

	case f.Kind == domain.KindRichText:
		text, err := p.driver.TextArea(ctx, TextAreaConfig{Message: label, Default: def})
		if err != nil {
			return nil, false, err
		}
		return text, true, nil
	}

	text, err := p.driver.Input(ctx, InputConfig{Message: label, Default: def, Help: help(f)})
	if err != nil {
		return nil, false, err
	}
	text = strings.TrimSpace(text)

	switch f.Kind {
	case domain.KindInt:
		if text == "" {
			return nil, false, nil
		}
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			return n, true, nil
		}
		// The server reports the malformed number against the field.
		return text, true, nil
	case domain.KindFiles:
		if text == "" {
			return nil, false, nil
		}
		var refs []string
		for _, ref := range strings.Split(text, ",") {
			if ref = strings.TrimSpace(ref); ref != "" {
				refs = append(refs, ref)
			}
		}
		return refs, true, nil
	default:
		return text, true, nil
	}
}

func help(f steps.Field) string {
	switch {
	case f.Kind == domain.KindFiles:
		return "Comma-separated attachment references"
	case f.Kind == domain.KindInt && f.Min != nil && f.Max != nil:
		return fmt.Sprintf("A whole number from %d to %d", *f.Min, *f.Max)
	case f.MaxLength > 0:
		return fmt.Sprintf("At most %d characters", f.MaxLength)
	}
	return ""
}

// displayValue renders a saved value as prompt default text.
func displayValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == math.Trunc(v) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []string:
		return strings.Join(v, ", ")
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, displayValue(item))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(v)
	}
}

// SurveyDriver prompts on the process terminal.
type SurveyDriver struct{}

func (SurveyDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	prompt := &survey.Input{
		Message: cfg.Message,
		Default: cfg.Default,
		Help:    cfg.Help,
	}
	if err := survey.AskOne(prompt, &out); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func (SurveyDriver) Select(ctx context.Context, cfg SelectConfig) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var out string
	prompt := &survey.Select{
		Message: cfg.Message,
		Options: cfg.Options,
		Help:    cfg.Help,
	}
	if cfg.DefaultIndex >= 0 && cfg.DefaultIndex < len(cfg.Options) {
		prompt.Default = cfg.Options[cfg.DefaultIndex]
	}
	if err := survey.AskOne(prompt, &out); err != nil {
		return 0, translateSurveyErr(err)
	}
	return indexOf(cfg.Options, out), nil
}

func (SurveyDriver) TextArea(ctx context.Context, cfg TextAreaConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	prompt := &survey.Multiline{
		Message: cfg.Message,
		Default: cfg.Default,
		Help:    cfg.Help,
	}
	if err := survey.AskOne(prompt, &out); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrClosed
	}
	return err
}

func indexOf(options []string, value string) int {
	for i, option := range options {
		if option == value {
			return i
		}
	}
	return -1
}

// WriterNotifier prints notifications as lines on a writer.
type WriterNotifier struct {
	W io.Writer
}

func (n WriterNotifier) Notify(level Level, message string) {
	if message == "" {
		return
	}
	prefix := ""
	if level == LevelError {
		prefix = "error: "
	}
	fmt.Fprintln(n.W, prefix+message)
}
