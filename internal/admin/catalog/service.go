package catalog

import (
	"context"
	"errors"
)

// ErrNotConfigured indicates that no catalog endpoint has been wired.
var ErrNotConfigured = errors.New("catalog service not configured")

// Service talks to the spreadsheet-backed catalog endpoint.
type Service interface {
	// List fetches every row and returns them normalized, in remote order.
	List(ctx context.Context) ([]Product, error)
	// Create appends a new row.
	Create(ctx context.Context, draft Draft) (Envelope, error)
	// Update overwrites the given fields on the row whose title matches businessKey.
	Update(ctx context.Context, businessKey string, changes Changes) (Envelope, error)
	// Delete removes the row whose title matches businessKey.
	Delete(ctx context.Context, businessKey string) (Envelope, error)
}

// Envelope is the decoded write acknowledgement.
type Envelope struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	// Fields keeps any extra keys the endpoint returned.
	Fields map[string]any `json:"-"`
}
