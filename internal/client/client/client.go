package client

import (
	"context"

	"github.com/dmitrijs2005/eutype/internal/client/models"
)

// Client is the transport-agnostic contract of the backend gateway.
type Client interface {
	// Validate asks whether the current session credential is accepted.
	// It never triggers the unauthorized hook.
	Validate(ctx context.Context) (*models.SessionStatus, error)
	Me(ctx context.Context) (*models.User, error)
	Logout(ctx context.Context) error

	ListFiles(ctx context.Context, folderID string) (*models.Listing, error)
	GetFile(ctx context.Context, id models.FileID) (*models.FileInfo, error)
	GetFileContent(ctx context.Context, id models.FileID) (*models.FileContent, error)
	UpdateFileContent(ctx context.Context, id models.FileID, content []byte) error
	Upload(ctx context.Context, filename string, content []byte, folderID, appType string) (*models.FileInfo, error)
	RenameFile(ctx context.Context, id models.FileID, newName string) error
	DeleteFile(ctx context.Context, id models.FileID) error
	Download(ctx context.Context, id models.FileID) ([]byte, error)
	StorageUsage(ctx context.Context) (*models.StorageUsage, error)
}
