// Package common contains constants and sentinel errors shared by the EUTYPE
// client packages.
package common

const (
	// RequestIDHeaderName carries a per-request correlation id on outbound
	// HTTP calls.
	RequestIDHeaderName = "X-Request-ID"

	// AppType tags uploads so the file service can tell EUTYPE documents
	// apart from other files.
	AppType = "eutype"

	// DocumentExt is the file extension of stored EUTYPE documents.
	DocumentExt = ".ty"
)
