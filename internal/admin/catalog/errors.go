package catalog

import (
	"fmt"
	"html"
	"net/http"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// bodyText reduces a non-JSON response body, often an HTML error page from
// the script host, to a single line of text.
var bodyText = bluemonday.StrictPolicy()

// ValidationError reports input rejected before any remote call was made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ProtocolError signals that the endpoint answered with something other than
// the expected list payload.
type ProtocolError struct {
	Status  int
	Message string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("catalog: unexpected list response (%d): %s", e.Status, e.Message)
}

// RemoteError carries a write failure reported by the endpoint.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

func newRemoteError(status int, message string) *RemoteError {
	message = strings.TrimSpace(message)
	if message == "" {
		message = fmt.Sprintf("HTTP %d", status)
	}
	return &RemoteError{Status: status, Message: message}
}

func statusOK(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}

func plainText(body string) string {
	text := html.UnescapeString(bodyText.Sanitize(body))
	return strings.Join(strings.Fields(text), " ")
}
