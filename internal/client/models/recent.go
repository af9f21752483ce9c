package models

import "time"

// RecentDocument is a locally remembered document the user opened.
type RecentDocument struct {
	FileID   FileID
	Name     string
	OpenedAt time.Time
	SavedAt  time.Time
}
