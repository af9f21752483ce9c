package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/eutype/internal/client/client"
	"github.com/dmitrijs2005/eutype/internal/client/models"
	"github.com/dmitrijs2005/eutype/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/eutype/internal/client/repositories/recent"
	"github.com/dmitrijs2005/eutype/internal/common"
	"github.com/dmitrijs2005/eutype/internal/logging"
	"golang.org/x/sync/errgroup"
)

// Overview is what the File Picker shows: the filtered listing and, when
// the backend reports it, the storage usage.
type Overview struct {
	Listing models.Listing
	Usage   *models.StorageUsage
}

// FileService backs the File Picker. Listings contain EUTYPE documents only.
type FileService interface {
	List(ctx context.Context, folderID string) (*models.Listing, error)
	Overview(ctx context.Context, folderID string) (*Overview, error)
	Info(ctx context.Context, id models.FileID) (*models.FileInfo, error)
	Rename(ctx context.Context, id models.FileID, newName string) error
	Delete(ctx context.Context, id models.FileID) error
	Download(ctx context.Context, id models.FileID) ([]byte, error)
	Usage(ctx context.Context) (*models.StorageUsage, error)
	Recent(ctx context.Context, limit int) ([]models.RecentDocument, error)
	// LastFolder is the folder of the previous listing, or "" for the root.
	LastFolder(ctx context.Context) string
}

type fileService struct {
	client client.Client
	prefs  metadata.Repository
	recent recent.Repository
	log    logging.Logger
}

// NewFileService builds a FileService. prefs and recent may be nil.
func NewFileService(c client.Client, prefs metadata.Repository, r recent.Repository, log logging.Logger) FileService {
	return &fileService{client: c, prefs: prefs, recent: r, log: log}
}

func (s *fileService) List(ctx context.Context, folderID string) (*models.Listing, error) {
	l, err := s.client.ListFiles(ctx, folderID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	s.rememberFolder(ctx, folderID)
	return &models.Listing{Files: l.Documents(), Folders: l.Folders}, nil
}

// Overview fetches the listing and the storage usage concurrently. A failed
// usage call is logged and leaves Usage nil; a failed listing fails the
// whole call.
func (s *fileService) Overview(ctx context.Context, folderID string) (*Overview, error) {
	var (
		listing *models.Listing
		usage   *models.StorageUsage
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		l, err := s.List(gctx, folderID)
		if err != nil {
			return err
		}
		listing = l
		return nil
	})
	g.Go(func() error {
		u, err := s.client.StorageUsage(gctx)
		if err != nil {
			s.log.Warn(gctx, "storage usage unavailable", "error", err)
			return nil
		}
		usage = u
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &Overview{Listing: *listing, Usage: usage}, nil
}

func (s *fileService) Info(ctx context.Context, id models.FileID) (*models.FileInfo, error) {
	f, err := s.client.GetFile(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("file info %s: %w", id, err)
	}
	return f, nil
}

func (s *fileService) Rename(ctx context.Context, id models.FileID, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return fmt.Errorf("%w: new name is required", common.ErrInvalidInput)
	}
	if err := s.client.RenameFile(ctx, id, newName); err != nil {
		return fmt.Errorf("rename %s: %w", id, err)
	}
	return nil
}

func (s *fileService) Delete(ctx context.Context, id models.FileID) error {
	if err := s.client.DeleteFile(ctx, id); err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	if s.recent != nil {
		if err := s.recent.Delete(ctx, id); err != nil {
			s.log.Warn(ctx, "forget deleted document failed", "file_id", id, "error", err)
		}
	}
	return nil
}

func (s *fileService) Download(ctx context.Context, id models.FileID) ([]byte, error) {
	b, err := s.client.Download(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", id, err)
	}
	return b, nil
}

func (s *fileService) Usage(ctx context.Context) (*models.StorageUsage, error) {
	u, err := s.client.StorageUsage(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage usage: %w", err)
	}
	return u, nil
}

func (s *fileService) Recent(ctx context.Context, limit int) ([]models.RecentDocument, error) {
	if s.recent == nil {
		return []models.RecentDocument{}, nil
	}
	if err := s.recent.Prune(ctx, limit); err != nil {
		s.log.Warn(ctx, "prune recent documents failed", "error", err)
	}
	docs, err := s.recent.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("recent documents: %w", err)
	}
	return docs, nil
}

func (s *fileService) LastFolder(ctx context.Context) string {
	if s.prefs == nil {
		return ""
	}
	v, _, err := s.prefs.Get(ctx, metadata.KeyLastFolder)
	if err != nil {
		s.log.Warn(ctx, "read last folder failed", "error", err)
		return ""
	}
	return v
}

func (s *fileService) rememberFolder(ctx context.Context, folderID string) {
	if s.prefs == nil {
		return
	}
	if err := s.prefs.Set(ctx, metadata.KeyLastFolder, folderID); err != nil {
		s.log.Warn(ctx, "remember folder failed", "error", err)
	}
}
