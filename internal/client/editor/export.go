package editor

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"unicode"

	"github.com/dmitrijs2005/eutype/internal/client/models"
	"github.com/dmitrijs2005/eutype/internal/common"
)

// Format is an export target.
type Format string

const (
	FormatHTML Format = "html"
	FormatText Format = "txt"
	FormatTy   Format = "ty"
	FormatPDF  Format = "pdf"
)

// ParseFormat accepts a format name as typed by the user.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))); f {
	case FormatHTML, FormatText, FormatTy, FormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("%w: unsupported export format %q", common.ErrInvalidInput, s)
	}
}

// Artifact is an exported file held in memory.
type Artifact struct {
	Filename string
	MimeType string
	Data     []byte
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <style>
    body { font-family: Calibri, Arial, sans-serif; max-width: 210mm; margin: 20mm auto; padding: 20mm; }
  </style>
</head>
<body>{{.Body}}</body>
</html>
`

var documentPage = template.Must(template.New("document").Parse(pageTemplate))

type pageData struct {
	Title string
	Body  template.HTML
}

// RenderPage wraps a document body in a standalone HTML page.
func RenderPage(title, body string) ([]byte, error) {
	var buf bytes.Buffer
	if err := documentPage.Execute(&buf, pageData{Title: title, Body: template.HTML(body)}); err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	return buf.Bytes(), nil
}

// Export renders the in-memory document. The stored document and the dirty
// flag are left untouched.
func (c *Controller) Export(ctx context.Context, format Format) (*Artifact, error) {
	env, err := c.snapshot()
	if err != nil {
		return nil, err
	}
	base := sanitizeFilename(env.Name)

	switch format {
	case FormatHTML:
		data, err := RenderPage(env.Name, env.HTML)
		if err != nil {
			return nil, err
		}
		return &Artifact{Filename: base + ".html", MimeType: "text/html", Data: data}, nil
	case FormatText:
		return &Artifact{Filename: base + ".txt", MimeType: "text/plain", Data: []byte(env.Text)}, nil
	case FormatTy:
		data, err := env.Marshal()
		if err != nil {
			return nil, fmt.Errorf("marshal envelope: %w", err)
		}
		return &Artifact{Filename: base + common.DocumentExt, MimeType: "application/json", Data: data}, nil
	case FormatPDF:
		page, err := RenderPage(env.Name, env.HTML)
		if err != nil {
			return nil, err
		}
		data, err := c.pdf.PrintPDF(ctx, string(page))
		if err != nil {
			return nil, err
		}
		return &Artifact{Filename: base + ".pdf", MimeType: "application/pdf", Data: data}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported export format %q", common.ErrInvalidInput, format)
	}
}

// snapshot builds an envelope from the current surface without recording it.
func (c *Controller) snapshot() (models.Envelope, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isOpenLocked() {
		return models.Envelope{}, ErrNoDocument
	}
	return c.base.Revise(c.name, c.surface.GetHTML(), c.surface.GetText(), c.now()), nil
}

// sanitizeFilename keeps letters, digits, '-' and '_', turns spaces into
// hyphens and caps the length.
func sanitizeFilename(name string) string {
	const maxRunes = 50

	var b strings.Builder
	n := 0
	for _, r := range name {
		if n == maxRunes {
			break
		}
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('-')
		default:
			continue
		}
		n++
	}
	if b.Len() == 0 {
		return "document"
	}
	return b.String()
}
