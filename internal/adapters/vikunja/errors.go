package vikunja

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/hylla/vitui/internal/app"
)

// ErrMissingBaseURL is returned when the client is built without a server URL.
var ErrMissingBaseURL = errors.New("vikunja: base url is required")

// StatusError reports a non-2xx response. Body holds the raw response text.
type StatusError struct {
	StatusCode int    `json:"-"`
	Code       int    `json:"code"`
	Message    string `json:"message"`
	Body       string `json:"-"`
}

// Error returns the server's message when it sent one, else the raw body.
func (e *StatusError) Error() string {
	detail := strings.TrimSpace(e.Message)
	if detail == "" {
		detail = strings.TrimSpace(e.Body)
	}
	if detail == "" {
		detail = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("vikunja: status %d: %s", e.StatusCode, detail)
}

// Is maps a 404 onto app.ErrNotFound.
func (e *StatusError) Is(target error) bool {
	return target == app.ErrNotFound && e.StatusCode == http.StatusNotFound
}
