package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
)

// APIError is a non-2xx response. It matches ErrUnauthorized for 401 and
// 403 and ErrNotFound for 404 under errors.Is.
type APIError struct {
	StatusCode int
	// Detail is the human-readable message extracted from a FastAPI style
	// {"detail": ...} body, or "" when the body carried none.
	Detail string
}

func newAPIError(status int, body []byte) *APIError {
	return &APIError{StatusCode: status, Detail: parseDetail(body)}
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("request failed with status code %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("request failed with status code %d", e.StatusCode)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// parseDetail understands the three shapes "detail" takes: a string, a list
// of validation items carrying msg or message, and an object with msg.
func parseDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(payload.Detail, &s); err == nil {
		return s
	}

	var items []json.RawMessage
	if err := json.Unmarshal(payload.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			msgs = append(msgs, itemMessage(item))
		}
		return strings.Join(msgs, ", ")
	}

	return itemMessage(payload.Detail)
}

func itemMessage(raw json.RawMessage) string {
	var obj struct {
		Msg     string `json:"msg"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		if obj.Msg != "" {
			return obj.Msg
		}
		if obj.Message != "" {
			return obj.Message
		}
	}
	return string(raw)
}

// FormatError turns any error returned by this package into a message fit
// for the user.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
		switch apiErr.StatusCode {
		case http.StatusUnauthorized:
			return "Not authorized. Please sign in again."
		case http.StatusForbidden:
			return "No access to this resource."
		case http.StatusNotFound:
			return "Resource not found."
		case http.StatusInternalServerError:
			return "Server error. Please try again later."
		}
		return apiErr.Error()
	}

	if errors.Is(err, ErrUnavailable) {
		return "Network error. Check your internet connection."
	}

	if msg := err.Error(); msg != "" {
		return msg
	}
	return "An unknown error occurred."
}
