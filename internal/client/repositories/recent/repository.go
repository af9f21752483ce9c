// Package recent remembers which documents the user opened and saved, so the
// File Picker can offer them without another listing round trip.
package recent

import (
	"context"
	"time"

	"github.com/dmitrijs2005/eutype/internal/client/models"
)

type Repository interface {
	// Touch records that a document was opened at the given time.
	Touch(ctx context.Context, id models.FileID, name string, at time.Time) error
	// MarkSaved records a successful save and the name it was saved under.
	MarkSaved(ctx context.Context, id models.FileID, name string, at time.Time) error
	// List returns up to limit documents, most recently opened first.
	List(ctx context.Context, limit int) ([]models.RecentDocument, error)
	Delete(ctx context.Context, id models.FileID) error
	// Prune keeps only the keep most recently opened documents.
	Prune(ctx context.Context, keep int) error
}
