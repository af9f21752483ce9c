package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/eutype/internal/client/models"
	"github.com/dmitrijs2005/eutype/internal/common"
	"github.com/dmitrijs2005/eutype/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleListing() *models.Listing {
	return &models.Listing{
		Files: []models.FileInfo{
			{ID: "1", Filename: "a.ty"},
			{ID: "2", Filename: "b.png"},
			{ID: "3", Filename: "c.json", AppType: "eutype"},
		},
		Folders: []models.Folder{{ID: "9", Name: "Work"}},
	}
}

func TestFileService_List_FiltersAndRemembersFolder(t *testing.T) {
	fc := &fakeClient{ListRet: sampleListing()}
	repos := newRepos(t)
	svc := NewFileService(fc, repos.Metadata, repos.Recent, logging.Nop())
	ctx := context.Background()

	l, err := svc.List(ctx, "9")
	require.NoError(t, err)

	require.Len(t, l.Files, 2)
	assert.Equal(t, models.FileID("1"), l.Files[0].ID)
	assert.Equal(t, models.FileID("3"), l.Files[1].ID)
	assert.Len(t, l.Folders, 1)
	assert.Equal(t, "9", fc.LastFolderID)
	assert.Equal(t, "9", svc.LastFolder(ctx))
}

func TestFileService_Overview_Concurrent(t *testing.T) {
	fc := &fakeClient{
		ListRet:    sampleListing(),
		UsageRet:   &models.StorageUsage{UsedBytes: 5, QuotaBytes: 10},
		UsageDelay: 10 * time.Millisecond,
	}
	svc := NewFileService(fc, nil, nil, logging.Nop())

	ov, err := svc.Overview(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, ov.Listing.Files, 2)
	require.NotNil(t, ov.Usage)
	assert.Equal(t, int64(5), ov.Usage.UsedBytes)
}

func TestFileService_Overview_UsageFailureTolerated(t *testing.T) {
	fc := &fakeClient{ListRet: sampleListing(), UsageErr: errors.New("no usage endpoint")}
	svc := NewFileService(fc, nil, nil, logging.Nop())

	ov, err := svc.Overview(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, ov.Usage)
	assert.Len(t, ov.Listing.Files, 2)
}

func TestFileService_Overview_ListFailureFails(t *testing.T) {
	boom := errors.New("list down")
	fc := &fakeClient{ListErr: boom, UsageRet: &models.StorageUsage{}, UsageDelay: time.Second}
	svc := NewFileService(fc, nil, nil, logging.Nop())

	start := time.Now()
	_, err := svc.Overview(context.Background(), "")
	require.ErrorIs(t, err, boom)
	assert.Less(t, time.Since(start), 900*time.Millisecond, "usage call must be cancelled")
}

func TestFileService_Rename(t *testing.T) {
	fc := &fakeClient{}
	svc := NewFileService(fc, nil, nil, logging.Nop())

	require.NoError(t, svc.Rename(context.Background(), "4", " New.ty "))
	assert.Equal(t, models.FileID("4"), fc.RenamedID)
	assert.Equal(t, "New.ty", fc.RenamedTo)

	require.ErrorIs(t, svc.Rename(context.Background(), "4", "  "), common.ErrInvalidInput)
}

func TestFileService_Delete_ForgetsRecent(t *testing.T) {
	fc := &fakeClient{}
	repos := newRepos(t)
	ctx := context.Background()
	require.NoError(t, repos.Recent.Touch(ctx, "4", "Doomed", time.Now()))

	svc := NewFileService(fc, repos.Metadata, repos.Recent, logging.Nop())
	require.NoError(t, svc.Delete(ctx, "4"))

	assert.Equal(t, models.FileID("4"), fc.DeletedID)
	docs, err := svc.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestFileService_Delete_Error(t *testing.T) {
	boom := errors.New("forbidden")
	svc := NewFileService(&fakeClient{DeleteErr: boom}, nil, nil, logging.Nop())

	require.ErrorIs(t, svc.Delete(context.Background(), "4"), boom)
}

func TestFileService_Recent_PrunesToLimit(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()
	base := time.Now()
	for i, id := range []models.FileID{"a", "b", "c"} {
		require.NoError(t, repos.Recent.Touch(ctx, id, string(id), base.Add(time.Duration(i)*time.Second)))
	}

	svc := NewFileService(&fakeClient{}, nil, repos.Recent, logging.Nop())
	docs, err := svc.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	all, err := repos.Recent.List(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestFileService_NilRepos(t *testing.T) {
	svc := NewFileService(&fakeClient{ListRet: &models.Listing{}}, nil, nil, logging.Nop())
	ctx := context.Background()

	_, err := svc.List(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "", svc.LastFolder(ctx))

	docs, err := svc.Recent(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestFileService_InfoDownloadUsage(t *testing.T) {
	fc := &fakeClient{
		FileRet:    &models.FileInfo{ID: "1", Filename: "x.ty", Size: 2048},
		Downloaded: []byte("raw"),
		UsageRet:   &models.StorageUsage{UsedBytes: 1, QuotaBytes: 2},
	}
	svc := NewFileService(fc, nil, nil, logging.Nop())
	ctx := context.Background()

	info, err := svc.Info(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, int64(2048), info.Size)

	b, err := svc.Download(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, []byte("raw"), b)

	u, err := svc.Usage(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), u.QuotaBytes)
}
