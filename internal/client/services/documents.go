package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/eutype/internal/client/client"
	"github.com/dmitrijs2005/eutype/internal/client/models"
	"github.com/dmitrijs2005/eutype/internal/client/repositories/recent"
	"github.com/dmitrijs2005/eutype/internal/common"
	"github.com/dmitrijs2005/eutype/internal/logging"
)

// LoadedDocument is a document as fetched for editing.
type LoadedDocument struct {
	FileID   models.FileID
	Envelope models.Envelope
	// Native is false when the stored content was not an envelope and was
	// taken verbatim as the HTML body.
	Native     bool
	ModifiedAt time.Time
}

// DocumentStore maps documents onto the file service: load, save and
// create.
type DocumentStore interface {
	Load(ctx context.Context, id models.FileID) (*LoadedDocument, error)
	Save(ctx context.Context, id models.FileID, env models.Envelope) error
	Create(ctx context.Context, name, folderID string) (*models.FileInfo, error)
}

type documentStore struct {
	client client.Client
	recent recent.Repository
	log    logging.Logger
	now    func() time.Time
}

// NewDocumentStore builds a DocumentStore. recent may be nil, in which case
// nothing is remembered locally.
func NewDocumentStore(c client.Client, r recent.Repository, log logging.Logger) DocumentStore {
	return &documentStore{client: c, recent: r, log: log, now: time.Now}
}

// Load fetches the content of a file and parses it as an envelope. Content
// that is not an envelope becomes the HTML body of a synthetic envelope
// named after the file.
func (s *documentStore) Load(ctx context.Context, id models.FileID) (*LoadedDocument, error) {
	fc, err := s.client.GetFileContent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load document %s: %w", id, err)
	}

	doc := &LoadedDocument{FileID: id, ModifiedAt: fc.ModifiedAt.Time}

	env, err := models.ParseEnvelope([]byte(fc.Content))
	if err == nil {
		doc.Native = true
		if env.Name == "" {
			env.Name = models.DocumentName(fc.Filename)
		}
	} else {
		env = models.Envelope{
			Version: models.EnvelopeVersion,
			Type:    models.EnvelopeType,
			Name:    models.DocumentName(fc.Filename),
			HTML:    fc.Content,
		}
	}
	doc.Envelope = env

	if s.recent != nil {
		if err := s.recent.Touch(ctx, id, env.Name, s.now()); err != nil {
			s.log.Warn(ctx, "remember opened document failed", "file_id", id, "error", err)
		}
	}
	return doc, nil
}

// Save serializes env and replaces the stored content of the file.
func (s *documentStore) Save(ctx context.Context, id models.FileID, env models.Envelope) error {
	data, err := env.Marshal()
	if err != nil {
		return fmt.Errorf("encode document %s: %w", id, err)
	}
	if err := s.client.UpdateFileContent(ctx, id, data); err != nil {
		return fmt.Errorf("save document %s: %w", id, err)
	}

	if s.recent != nil {
		if err := s.recent.MarkSaved(ctx, id, env.Name, env.Modified.Time); err != nil {
			s.log.Warn(ctx, "remember saved document failed", "file_id", id, "error", err)
		}
	}
	return nil
}

// Create uploads a new document holding the placeholder body as
// "<name>.ty" tagged with the eutype app type.
func (s *documentStore) Create(ctx context.Context, name, folderID string) (*models.FileInfo, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: document name is required", common.ErrInvalidInput)
	}

	env := models.NewEnvelope(name, models.PlaceholderHTML, "Start typing...", s.now())
	data, err := env.Marshal()
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}

	info, err := s.client.Upload(ctx, env.Filename(), data, folderID, common.AppType)
	if err != nil {
		return nil, fmt.Errorf("create document %q: %w", name, err)
	}
	s.log.Info(ctx, "document created", "file_id", info.ID, "name", name)
	return info, nil
}
