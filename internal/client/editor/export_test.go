package editor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/dmitrijs2005/eutype/internal/client/models"
	"github.com/dmitrijs2005/eutype/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" .PDF")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)

	f, err = ParseFormat("txt")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)

	_, err = ParseFormat("docx")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestExport(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.ctrl.Export(ctx, FormatText)
	require.ErrorIs(t, err, ErrNoDocument)

	h.open(t)
	h.buf.Apply("<p>AB</p>")

	txt, err := h.ctrl.Export(ctx, FormatText)
	require.NoError(t, err)
	assert.Equal(t, "Letter.txt", txt.Filename)
	assert.Equal(t, "text/plain", txt.MimeType)
	assert.Equal(t, "AB", string(txt.Data))

	page, err := h.ctrl.Export(ctx, FormatHTML)
	require.NoError(t, err)
	assert.Equal(t, "Letter.html", page.Filename)
	assert.Contains(t, string(page.Data), "<title>Letter</title>")
	assert.Contains(t, string(page.Data), "<body><p>AB</p></body>")

	ty, err := h.ctrl.Export(ctx, FormatTy)
	require.NoError(t, err)
	assert.Equal(t, "Letter.ty", ty.Filename)
	env, err := models.ParseEnvelope(ty.Data)
	require.NoError(t, err)
	assert.Equal(t, "<p>AB</p>", env.HTML)
	assert.True(t, env.Created.Equal(created))
	assert.True(t, env.Modified.Equal(saveAt))

	pdf, err := h.ctrl.Export(ctx, FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "Letter.pdf", pdf.Filename)
	assert.Equal(t, "application/pdf", pdf.MimeType)
	assert.True(t, strings.HasPrefix(h.pdf.page, "<!DOCTYPE html>"))
	assert.Contains(t, h.pdf.page, "<p>AB</p>")

	_, err = h.ctrl.Export(ctx, Format("docx"))
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	// Exports never save or clear the dirty flag.
	assert.Empty(t, h.store.saved())
	assert.True(t, h.ctrl.Status().Dirty)
}

func TestExport_PDFError(t *testing.T) {
	h := newHarness(t)
	h.pdf.err = ErrPDFUnavailable
	h.open(t)

	_, err := h.ctrl.Export(context.Background(), FormatPDF)
	assert.True(t, errors.Is(err, ErrPDFUnavailable))
	assert.False(t, h.ctrl.Status().Dirty)
}

func TestRenderPage_EscapesTitle(t *testing.T) {
	out, err := RenderPage("Q&A <draft>", "<p>kept</p>")
	require.NoError(t, err)
	assert.Contains(t, string(out), "<title>Q&amp;A &lt;draft&gt;</title>")
	assert.Contains(t, string(out), "<p>kept</p>")
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "Mijn-brief-v2final", sanitizeFilename("Mijn brief: v2/final"))
	assert.Equal(t, "document", sanitizeFilename(""))
	assert.Equal(t, "document", sanitizeFilename("€€"))
	assert.Len(t, sanitizeFilename(strings.Repeat("a", 80)), 50)
	assert.Equal(t, "Één", sanitizeFilename("Één"))
	assert.Equal(t, "Résumé-2024", sanitizeFilename("Résumé 2024"))
	assert.Equal(t, "Привет", sanitizeFilename("Привет!"))
	assert.Equal(t, 50, utf8.RuneCountInString(sanitizeFilename(strings.Repeat("é", 80))))
}
