package steps

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/example/coursewizard/internal/domain"
)

const (
	msgRequired    = "Required"
	msgText        = "Must be text"
	msgWholeNumber = "Must be a whole number"
	msgChoice      = "Not a valid choice"
	msgFiles       = "Must be a list of attachment references"
	msgUnsupported = "Unsupported value"
)

// Validate coerces the raw values submitted for step n and applies the
// step's rules. Control fields are ignored. Undeclared fields are kept with
// a kind inferred from their JSON shape. On failure the returned payload is
// nil and errs lists every offending field.
func (t *Table) Validate(n int, raw map[string]any) (domain.Payload, domain.FieldErrors) {
	step, ok := t.Step(n)
	if !ok {
		return nil, domain.FieldErrors{"step": fmt.Sprintf("Step %d does not exist", n)}
	}

	out := make(domain.Payload, len(raw))
	errs := domain.FieldErrors{}

	for _, f := range step.Fields {
		v, present := raw[f.Name]
		if !present || v == nil {
			if f.Required {
				errs.Add(f.Name, msgRequired)
			}
			continue
		}
		val, err := coerce(f.Kind, v)
		if err != "" {
			errs.Add(f.Name, err)
			continue
		}
		if msg := checkField(f, val); msg != "" {
			errs.Add(f.Name, msg)
			continue
		}
		out[f.Name] = val
	}

	for name, v := range raw {
		if IsControlField(name) || v == nil {
			continue
		}
		if _, declared := step.Field(name); declared {
			continue
		}
		val, ok := infer(v)
		if !ok {
			errs.Add(name, msgUnsupported)
			continue
		}
		out[name] = val
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return out, nil
}

// Coerce converts the raw values for step n without enforcing required or
// limit rules. Values that cannot be coerced are dropped. It is used when a
// submission only navigates back.
func (t *Table) Coerce(n int, raw map[string]any) domain.Payload {
	step, _ := t.Step(n)
	out := make(domain.Payload, len(raw))
	for name, v := range raw {
		if IsControlField(name) || v == nil {
			continue
		}
		if f, declared := step.Field(name); declared {
			if val, msg := coerce(f.Kind, v); msg == "" {
				out[name] = val
			}
			continue
		}
		if val, ok := infer(v); ok {
			out[name] = val
		}
	}
	return out
}

func coerce(kind domain.ValueKind, v any) (domain.Value, string) {
	switch kind {
	case domain.KindString:
		s, ok := v.(string)
		if !ok {
			return domain.Value{}, msgText
		}
		return domain.StringValue(s), ""
	case domain.KindInt:
		n, ok := toInt(v)
		if !ok {
			return domain.Value{}, msgWholeNumber
		}
		return domain.IntValue(n), ""
	case domain.KindRichText:
		s, ok := richText(v)
		if !ok {
			return domain.Value{}, msgText
		}
		return domain.RichTextValue(SanitizeRichText(s)), ""
	case domain.KindFiles:
		refs, ok := toRefs(v)
		if !ok {
			return domain.Value{}, msgFiles
		}
		return domain.FilesValue(refs...), ""
	default:
		return domain.Value{}, msgUnsupported
	}
}

func checkField(f Field, v domain.Value) string {
	switch v.Kind {
	case domain.KindString, domain.KindRichText:
		if f.Required && strings.TrimSpace(v.Str) == "" {
			return msgRequired
		}
		if f.MaxLength > 0 && utf8.RuneCountInString(v.Str) > f.MaxLength {
			return fmt.Sprintf("At most %d characters", f.MaxLength)
		}
		if len(f.Options) > 0 && v.Str != "" && !slices.Contains(f.Options, v.Str) {
			return msgChoice
		}
	case domain.KindInt:
		if f.Min != nil && v.Int < *f.Min {
			return fmt.Sprintf("Must be at least %d", *f.Min)
		}
		if f.Max != nil && v.Int > *f.Max {
			return fmt.Sprintf("Must be at most %d", *f.Max)
		}
		if len(f.Options) > 0 && !slices.Contains(f.Options, strconv.FormatInt(v.Int, 10)) {
			return msgChoice
		}
	case domain.KindFiles:
		if f.Required && len(v.Files) == 0 {
			return msgRequired
		}
		if f.MaxFiles > 0 && len(v.Files) > f.MaxFiles {
			return fmt.Sprintf("At most %d files", f.MaxFiles)
		}
	}
	return ""
}

// infer picks a kind for an undeclared field.
func infer(v any) (domain.Value, bool) {
	switch x := v.(type) {
	case string:
		return domain.StringValue(x), true
	case []any, []string:
		refs, ok := toRefs(x)
		if !ok {
			return domain.Value{}, false
		}
		return domain.FilesValue(refs...), true
	case int, int32, int64, float64, json.Number:
		n, ok := toInt(v)
		if !ok {
			return domain.Value{}, false
		}
		return domain.IntValue(n), true
	default:
		return domain.Value{}, false
	}
}

func toInt(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) || x > math.MaxInt64 || x < math.MinInt64 {
			return 0, false
		}
		return int64(x), true
	case json.Number:
		n, err := x.Int64()
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// richText accepts a plain string or an editor object carrying a "text" key.
func richText(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case map[string]any:
		s, ok := x["text"].(string)
		return s, ok
	default:
		return "", false
	}
}

func toRefs(v any) ([]string, bool) {
	switch x := v.(type) {
	case string:
		if strings.TrimSpace(x) == "" {
			return nil, true
		}
		return []string{x}, true
	case []string:
		for _, r := range x {
			if strings.TrimSpace(r) == "" {
				return nil, false
			}
		}
		return x, true
	case []any:
		refs := make([]string, 0, len(x))
		for _, item := range x {
			s, ok := item.(string)
			if !ok || strings.TrimSpace(s) == "" {
				return nil, false
			}
			refs = append(refs, s)
		}
		return refs, true
	default:
		return nil, false
	}
}
