package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/eutype/internal/common"
)

// FileID identifies a file in the file service. The service may send ids as
// JSON numbers or strings; both decode to the same textual form.
type FileID string

func (id *FileID) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = FileID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("file id: %w", err)
	}
	*id = FileID(n.String())
	return nil
}

func (id FileID) String() string { return string(id) }

// FileInfo is one file record as listed by the file service.
type FileInfo struct {
	ID         FileID    `json:"id"`
	Filename   string    `json:"filename"`
	Size       int64     `json:"size"`
	CreatedAt  Timestamp `json:"created_at"`
	ModifiedAt Timestamp `json:"modified_at"`
	AppType    string    `json:"app_type"`
	FolderID   FileID    `json:"folder_id,omitempty"`
	MimeType   string    `json:"mime_type,omitempty"`
}

// IsDocument reports whether the file is an EUTYPE document: its name ends
// in .ty or it was uploaded with the eutype app type.
func (f FileInfo) IsDocument() bool {
	return strings.HasSuffix(f.Filename, common.DocumentExt) || f.AppType == common.AppType
}

// Folder is a folder entry in a listing.
type Folder struct {
	ID   FileID `json:"id"`
	Name string `json:"name"`
}

// Listing is the payload of a folder listing.
type Listing struct {
	Files   []FileInfo `json:"files"`
	Folders []Folder   `json:"folders"`
}

// Documents returns only the EUTYPE documents of the listing, in order.
func (l Listing) Documents() []FileInfo {
	out := make([]FileInfo, 0, len(l.Files))
	for _, f := range l.Files {
		if f.IsDocument() {
			out = append(out, f)
		}
	}
	return out
}

// FileContent is the raw content of a file with its descriptive fields.
type FileContent struct {
	Content    string    `json:"content"`
	Filename   string    `json:"filename"`
	ModifiedAt Timestamp `json:"modified_at"`
}

// StorageUsage reports quota consumption.
type StorageUsage struct {
	UsedBytes  int64 `json:"used_bytes"`
	QuotaBytes int64 `json:"quota_bytes"`
}

// HumanSize formats a byte count as B, KB or MB with one decimal for the
// larger units.
func HumanSize(n int64) string {
	switch {
	case n < 1024:
		return strconv.FormatInt(n, 10) + " B"
	case n < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(n)/(1024*1024))
	}
}
