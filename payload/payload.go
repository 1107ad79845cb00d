// Package payload packs structured values into the flat string carried
// by inline-keyboard callback buttons and recovers them on the way back.
// A schema is a named prefix plus an ordered field list; the wire form
// is "prefix|field1|field2|...".
package payload

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// MaxPayloadBytes is the platform's limit on a callback payload.
const MaxPayloadBytes = 1024

// ErrPayloadTooLong reports a packed payload over the platform limit.
var ErrPayloadTooLong = errors.New("payload: packed value exceeds 1024 bytes")

// ErrBadPrefix reports an unpack attempt against a different schema.
var ErrBadPrefix = errors.New("payload: prefix mismatch")

// Schema describes one callback payload layout. The zero separator
// defaults to '|'.
type Schema struct {
	prefix    string
	separator string
	fields    []string
}

// Option configures a Schema.
type Option func(*Schema)

// WithSeparator replaces the default '|' separator.
func WithSeparator(sep string) Option {
	return func(s *Schema) { s.separator = sep }
}

// WithPrefix overrides the prefix, which otherwise equals the schema name.
func WithPrefix(prefix string) Option {
	return func(s *Schema) { s.prefix = prefix }
}

// New builds a schema with the given name and ordered fields. A prefix
// containing the separator could never round-trip, so it panics.
func New(name string, fields []string, opts ...Option) *Schema {
	s := &Schema{prefix: name, separator: "|", fields: fields}
	for _, opt := range opts {
		opt(s)
	}
	if strings.Contains(s.prefix, s.separator) {
		panic(fmt.Sprintf("payload: prefix %q contains separator %q", s.prefix, s.separator))
	}
	return s
}

// Prefix returns the schema's wire prefix.
func (s *Schema) Prefix() string { return s.prefix }

// Fields returns the schema's ordered field names.
func (s *Schema) Fields() []string { return s.fields }

// Pack serialises values into the wire string. Every schema field must
// be present; nil values serialise as the empty string. A value that
// contains the separator cannot round-trip and is rejected.
func (s *Schema) Pack(values map[string]any) (string, error) {
	parts := make([]string, 0, len(s.fields)+1)
	parts = append(parts, s.prefix)
	for _, field := range s.fields {
		v, ok := values[field]
		if !ok {
			return "", errors.Errorf("payload: missing field %q", field)
		}
		rendered := render(v)
		if strings.Contains(rendered, s.separator) {
			return "", errors.Errorf("payload: field %q contains separator %q", field, s.separator)
		}
		parts = append(parts, rendered)
	}
	for field := range values {
		if !s.hasField(field) {
			return "", errors.Errorf("payload: unknown field %q", field)
		}
	}
	packed := strings.Join(parts, s.separator)
	if len(packed) > MaxPayloadBytes {
		return "", errors.Wrapf(ErrPayloadTooLong, "%d bytes", len(packed))
	}
	return packed, nil
}

// Unpack parses a wire string produced by Pack. The prefix and the
// exact field count must match; values come back positionally as
// strings, empty string standing in for an absent value.
func (s *Schema) Unpack(packed string) (map[string]string, error) {
	parts := strings.Split(packed, s.separator)
	if parts[0] != s.prefix {
		return nil, errors.Wrapf(ErrBadPrefix, "want %q, got %q", s.prefix, parts[0])
	}
	if len(parts)-1 != len(s.fields) {
		return nil, errors.Errorf("payload: want %d fields, got %d", len(s.fields), len(parts)-1)
	}
	out := make(map[string]string, len(s.fields))
	for i, field := range s.fields {
		out[field] = parts[i+1]
	}
	return out, nil
}

// Matches reports whether a wire string belongs to this schema without
// fully unpacking it.
func (s *Schema) Matches(packed string) bool {
	head, _, _ := strings.Cut(packed, s.separator)
	return head == s.prefix
}

func (s *Schema) hasField(name string) bool {
	for _, f := range s.fields {
		if f == name {
			return true
		}
	}
	return false
}

func render(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
