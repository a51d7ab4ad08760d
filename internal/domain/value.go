package domain

import (
	"encoding/json"
	"fmt"
	"slices"
)

// ValueKind tags the type held by a Value.
type ValueKind string

const (
	KindString   ValueKind = "string"
	KindInt      ValueKind = "int"
	KindFiles    ValueKind = "files"    // opaque attachment references
	KindRichText ValueKind = "richtext" // sanitised HTML
)

// Value is a single payload entry. Exactly one of the payload fields is
// meaningful, selected by Kind.
type Value struct {
	Kind  ValueKind `json:"kind"`
	Str   string    `json:"str,omitempty"`
	Int   int64     `json:"int,omitempty"`
	Files []string  `json:"files,omitempty"`
}

// StringValue returns a string Value.
func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }

// IntValue returns an int Value.
func IntValue(n int64) Value { return Value{Kind: KindInt, Int: n} }

// FilesValue returns a Value holding attachment references.
func FilesValue(refs ...string) Value {
	return Value{Kind: KindFiles, Files: slices.Clone(refs)}
}

// RichTextValue returns a rich-text Value. The caller is responsible for
// sanitising html.
func RichTextValue(html string) Value { return Value{Kind: KindRichText, Str: html} }

// Interface returns the plain Go value used on the wire.
func (v Value) Interface() any {
	switch v.Kind {
	case KindInt:
		return v.Int
	case KindFiles:
		out := make([]any, len(v.Files))
		for i, f := range v.Files {
			out[i] = f
		}
		return out
	default:
		return v.Str
	}
}

func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return fmt.Sprintf("%d", v.Int)
	case KindFiles:
		return fmt.Sprintf("%v", v.Files)
	default:
		return v.Str
	}
}

// Equal reports whether two values hold the same kind and content.
func (v Value) Equal(o Value) bool {
	return v.Kind == o.Kind && v.Str == o.Str && v.Int == o.Int && slices.Equal(v.Files, o.Files)
}

// Payload is the accumulated field data of a draft.
type Payload map[string]Value

// Clone returns a deep copy of p.
func (p Payload) Clone() Payload {
	out := make(Payload, len(p))
	for k, v := range p {
		v.Files = slices.Clone(v.Files)
		out[k] = v
	}
	return out
}

// Overlay writes every entry of fields onto p. Existing keys absent from
// fields are kept.
func (p Payload) Overlay(fields Payload) {
	for k, v := range fields {
		v.Files = slices.Clone(v.Files)
		p[k] = v
	}
}

// Plain converts the payload into wire form.
func (p Payload) Plain() map[string]any {
	out := make(map[string]any, len(p))
	for k, v := range p {
		out[k] = v.Interface()
	}
	return out
}

// MarshalPayload encodes p for storage.
func MarshalPayload(p Payload) (string, error) {
	if p == nil {
		p = Payload{}
	}
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// UnmarshalPayload decodes a stored payload. Empty input yields an empty
// payload.
func UnmarshalPayload(s string) (Payload, error) {
	p := Payload{}
	if s == "" || s == "null" {
		return p, nil
	}
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return p, nil
}
