// Package models defines the data exchanged between the EUTYPE client
// packages: the Document Envelope stored in .ty files, file-service listings,
// the signed-in user, recent-document records and navigation intents.
package models
