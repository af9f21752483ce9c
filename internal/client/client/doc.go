// Package client is the API gateway of the EUTYPE client.
//
// # Overview
//
// Client is the transport-agnostic contract for the backend: session
// validation and logout, folder listing, file metadata, content read and
// write, upload, rename, delete, download and storage usage. HTTPClient
// implements it over REST with a cookie jar carrying the session
// credential, a request id header on every call, an optional rate limiter
// and an optional wire trace.
//
// # Rejections
//
// Any 401 or 403 response to a protected call runs the hook registered with
// OnUnauthorized once for that response, then returns an *APIError that
// matches ErrUnauthorized. Validate and Logout are public and never run the
// hook. A guard installed with SetGuard can stop protected calls before
// anything is sent, e.g. once a redirect to the login portal is underway.
//
// # Error Handling
//
// Transport failures wrap ErrUnavailable. Non-2xx responses are *APIError
// values carrying the FastAPI "detail" message when present. FormatError
// renders any of these for display.
package client
