package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/eutype/internal/common"
)

const (
	EnvelopeVersion = "1.0"
	EnvelopeType    = "EUTYPE Document"

	// PlaceholderHTML is the body of a freshly created document.
	PlaceholderHTML = "<p>Start typing...</p>"
)

var ErrNotEnvelope = errors.New("content is not a document envelope")

// Envelope is the JSON container stored as the content of a .ty file.
type Envelope struct {
	Version  string    `json:"version"`
	Type     string    `json:"type"`
	Name     string    `json:"name"`
	Created  Timestamp `json:"created"`
	Modified Timestamp `json:"modified"`
	HTML     string    `json:"html"`
	Text     string    `json:"text"`
}

// NewEnvelope builds an envelope whose created and modified times are both
// now.
func NewEnvelope(name, html, text string, now time.Time) Envelope {
	return Envelope{
		Version:  EnvelopeVersion,
		Type:     EnvelopeType,
		Name:     name,
		Created:  NewTimestamp(now),
		Modified: NewTimestamp(now),
		HTML:     html,
		Text:     text,
	}
}

// Revise returns a copy carrying new content and name with Modified set to
// now. Created is kept, or set to now when it was never known.
func (e Envelope) Revise(name, html, text string, now time.Time) Envelope {
	out := e
	out.Version = EnvelopeVersion
	out.Type = EnvelopeType
	out.Name = name
	out.HTML = html
	out.Text = text
	out.Modified = NewTimestamp(now)
	if !out.Created.IsSet() {
		out.Created = NewTimestamp(now)
	}
	return out
}

// Marshal encodes the envelope as 2-space indented JSON. Markup in html is
// written as is, not as \u003c escapes.
func (e Envelope) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(e); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Filename is the storage name of the envelope: its name plus ".ty".
func (e Envelope) Filename() string {
	return e.Name + common.DocumentExt
}

// ParseEnvelope decodes content as an envelope. Anything that is not a JSON
// object, or an object carrying none of the html, text and name fields,
// yields ErrNotEnvelope. A field of the wrong type is left empty rather than
// rejecting the envelope.
func ParseEnvelope(content []byte) (Envelope, error) {
	trimmed := strings.TrimSpace(string(content))
	if !strings.HasPrefix(trimmed, "{") {
		return Envelope{}, ErrNotEnvelope
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &fields); err != nil {
		return Envelope{}, ErrNotEnvelope
	}
	_, hasHTML := fields["html"]
	_, hasText := fields["text"]
	_, hasName := fields["name"]
	if !hasHTML && !hasText && !hasName {
		return Envelope{}, ErrNotEnvelope
	}

	var e Envelope
	decodeField(fields, "version", &e.Version)
	decodeField(fields, "type", &e.Type)
	decodeField(fields, "name", &e.Name)
	decodeField(fields, "created", &e.Created)
	decodeField(fields, "modified", &e.Modified)
	decodeField(fields, "html", &e.HTML)
	decodeField(fields, "text", &e.Text)
	return e, nil
}

func decodeField(fields map[string]json.RawMessage, key string, dst any) {
	if raw, ok := fields[key]; ok {
		_ = json.Unmarshal(raw, dst)
	}
}

// DocumentName strips the .ty extension from a stored filename.
func DocumentName(filename string) string {
	return strings.TrimSuffix(filename, common.DocumentExt)
}
