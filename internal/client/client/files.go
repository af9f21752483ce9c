package client

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/eutype/internal/client/models"
)

type fileEnvelope struct {
	File models.FileInfo `json:"file"`
}

func (c *HTTPClient) ListFiles(ctx context.Context, folderID string) (*models.Listing, error) {
	var q url.Values
	if folderID != "" {
		q = url.Values{"folder_id": {folderID}}
	}
	var l models.Listing
	if err := c.do(ctx, request{method: http.MethodGet, segments: []string{"files", "list"}, query: q}, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

func (c *HTTPClient) GetFile(ctx context.Context, id models.FileID) (*models.FileInfo, error) {
	var fe fileEnvelope
	if err := c.do(ctx, request{method: http.MethodGet, segments: []string{"files", id.String()}}, &fe); err != nil {
		return nil, err
	}
	return &fe.File, nil
}

func (c *HTTPClient) GetFileContent(ctx context.Context, id models.FileID) (*models.FileContent, error) {
	var fc models.FileContent
	if err := c.do(ctx, request{method: http.MethodGet, segments: []string{"files", id.String(), "content"}}, &fc); err != nil {
		return nil, err
	}
	return &fc, nil
}

// UpdateFileContent replaces the content of a file, sent as the "content"
// field of a urlencoded form.
func (c *HTTPClient) UpdateFileContent(ctx context.Context, id models.FileID, content []byte) error {
	form := url.Values{"content": {string(content)}}
	return c.do(ctx, request{
		method:      http.MethodPut,
		segments:    []string{"files", id.String(), "content"},
		body:        strings.NewReader(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
	}, nil)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Upload creates a new file from content via a multipart form with the
// fields file, folder_id (when set) and app_type.
func (c *HTTPClient) Upload(ctx context.Context, filename string, content []byte, folderID, appType string) (*models.FileInfo, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(filename)))
	h.Set("Content-Type", "application/json")
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("multipart: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return nil, fmt.Errorf("multipart: %w", err)
	}
	if folderID != "" {
		if err := mw.WriteField("folder_id", folderID); err != nil {
			return nil, fmt.Errorf("multipart: %w", err)
		}
	}
	if appType != "" {
		if err := mw.WriteField("app_type", appType); err != nil {
			return nil, fmt.Errorf("multipart: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("multipart: %w", err)
	}

	var fe fileEnvelope
	err = c.do(ctx, request{
		method:      http.MethodPost,
		segments:    []string{"files", "upload"},
		body:        &buf,
		contentType: mw.FormDataContentType(),
	}, &fe)
	if err != nil {
		return nil, err
	}
	return &fe.File, nil
}

func (c *HTTPClient) RenameFile(ctx context.Context, id models.FileID, newName string) error {
	form := url.Values{"new_name": {newName}}
	return c.do(ctx, request{
		method:      http.MethodPut,
		segments:    []string{"files", id.String(), "rename"},
		body:        strings.NewReader(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
	}, nil)
}

func (c *HTTPClient) DeleteFile(ctx context.Context, id models.FileID) error {
	return c.do(ctx, request{method: http.MethodDelete, segments: []string{"files", id.String()}}, nil)
}

// Download returns the raw bytes of a file.
func (c *HTTPClient) Download(ctx context.Context, id models.FileID) ([]byte, error) {
	var b []byte
	if err := c.do(ctx, request{method: http.MethodGet, segments: []string{"files", id.String(), "download"}}, &b); err != nil {
		return nil, err
	}
	return b, nil
}

func (c *HTTPClient) StorageUsage(ctx context.Context) (*models.StorageUsage, error) {
	var u models.StorageUsage
	if err := c.do(ctx, request{method: http.MethodGet, segments: []string{"storage", "usage"}}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
