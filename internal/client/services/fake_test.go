package services

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/eutype/internal/client/models"
)

// fakeClient implements client.Client for service tests.
type fakeClient struct {
	mu sync.Mutex

	ValidateRet *models.SessionStatus
	ValidateErr error
	LogoutErr   error
	LogoutCalls int
	MeRet       *models.User
	MeErr       error
	MeCalls     int

	ListRet      *models.Listing
	ListErr      error
	LastFolderID string

	FileRet *models.FileInfo
	FileErr error

	ContentRet *models.FileContent
	ContentErr error

	UpdateErr   error
	UpdatedID   models.FileID
	UpdatedBody []byte

	UploadRet      *models.FileInfo
	UploadErr      error
	UploadName     string
	UploadBody     []byte
	UploadFolderID string
	UploadAppType  string

	RenameErr  error
	RenamedID  models.FileID
	RenamedTo  string
	DeleteErr  error
	DeletedID  models.FileID
	Downloaded []byte
	UsageRet   *models.StorageUsage
	UsageErr   error
	UsageDelay time.Duration
}

func (f *fakeClient) Validate(ctx context.Context) (*models.SessionStatus, error) {
	return f.ValidateRet, f.ValidateErr
}

func (f *fakeClient) Me(ctx context.Context) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.MeCalls++
	return f.MeRet, f.MeErr
}

func (f *fakeClient) Logout(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LogoutCalls++
	return f.LogoutErr
}

func (f *fakeClient) ListFiles(ctx context.Context, folderID string) (*models.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastFolderID = folderID
	return f.ListRet, f.ListErr
}

func (f *fakeClient) GetFile(ctx context.Context, id models.FileID) (*models.FileInfo, error) {
	return f.FileRet, f.FileErr
}

func (f *fakeClient) GetFileContent(ctx context.Context, id models.FileID) (*models.FileContent, error) {
	return f.ContentRet, f.ContentErr
}

func (f *fakeClient) UpdateFileContent(ctx context.Context, id models.FileID, content []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.UpdatedID = id
	f.UpdatedBody = content
	return f.UpdateErr
}

func (f *fakeClient) Upload(ctx context.Context, filename string, content []byte, folderID, appType string) (*models.FileInfo, error) {
	f.UploadName, f.UploadBody, f.UploadFolderID, f.UploadAppType = filename, content, folderID, appType
	return f.UploadRet, f.UploadErr
}

func (f *fakeClient) RenameFile(ctx context.Context, id models.FileID, newName string) error {
	f.RenamedID, f.RenamedTo = id, newName
	return f.RenameErr
}

func (f *fakeClient) DeleteFile(ctx context.Context, id models.FileID) error {
	f.DeletedID = id
	return f.DeleteErr
}

func (f *fakeClient) Download(ctx context.Context, id models.FileID) ([]byte, error) {
	return f.Downloaded, nil
}

func (f *fakeClient) StorageUsage(ctx context.Context) (*models.StorageUsage, error) {
	if f.UsageDelay > 0 {
		select {
		case <-time.After(f.UsageDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.UsageRet, f.UsageErr
}
