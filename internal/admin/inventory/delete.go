package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"finitefield.org/stock-admin/internal/admin/catalog"
)

// DeletePhase tracks progress through the two-step delete confirmation.
type DeletePhase int

const (
	// DeletePhaseProceed waits for the operator to acknowledge the delete.
	DeletePhaseProceed DeletePhase = iota + 1
	// DeletePhaseConfirm waits for the confirmation literal to be typed.
	DeletePhaseConfirm
)

// DeleteTicket is a pending delete. It has no remote effect until confirmed.
type DeleteTicket struct {
	ID          string
	BusinessKey string
	Title       string
	Phase       DeletePhase
	CreatedAt   time.Time
}

// BeginDelete opens a ticket for the row keyed by businessKey. Only one delete
// is pending at a time; a new ticket replaces any earlier one.
func (c *Controller) BeginDelete(businessKey string) (DeleteTicket, error) {
	p, ok := c.store.Find(businessKey)
	if !ok {
		return DeleteTicket{}, ErrProductNotFound
	}
	ticket := DeleteTicket{
		ID:          c.newID(),
		BusinessKey: p.BusinessKey,
		Title:       p.Title,
		Phase:       DeletePhaseProceed,
		CreatedAt:   c.clock(),
	}

	c.ticketMu.Lock()
	if c.pending != nil {
		c.logger.Debug("delete ticket replaced", zap.String("ticket", c.pending.ID))
	}
	c.pending = &ticket
	c.ticketMu.Unlock()
	return ticket, nil
}

// Ticket returns the pending ticket with id.
func (c *Controller) Ticket(id string) (DeleteTicket, error) {
	c.ticketMu.Lock()
	defer c.ticketMu.Unlock()
	t, err := c.pendingLocked(id)
	if err != nil {
		return DeleteTicket{}, err
	}
	return *t, nil
}

// ProceedDelete moves a ticket from the acknowledgement step to the typed confirmation step.
func (c *Controller) ProceedDelete(id string) (DeleteTicket, error) {
	c.ticketMu.Lock()
	defer c.ticketMu.Unlock()
	t, err := c.pendingLocked(id)
	if err != nil {
		return DeleteTicket{}, err
	}
	if t.Phase != DeletePhaseProceed {
		return *t, ErrTicketPhase
	}
	t.Phase = DeletePhaseConfirm
	return *t, nil
}

// ConfirmDelete deletes the row when typed matches the confirmation literal,
// ignoring case and surrounding whitespace. A mismatch leaves the ticket open.
func (c *Controller) ConfirmDelete(ctx context.Context, id, typed string) error {
	c.ticketMu.Lock()
	pending, err := c.pendingLocked(id)
	if err != nil {
		c.ticketMu.Unlock()
		return err
	}
	t := *pending
	if t.Phase != DeletePhaseConfirm {
		c.ticketMu.Unlock()
		return ErrTicketPhase
	}
	if !strings.EqualFold(strings.TrimSpace(typed), c.literal) {
		c.ticketMu.Unlock()
		return &catalog.ValidationError{
			Field:   "confirmation",
			Message: fmt.Sprintf("Escribe %s para confirmar.", c.literal),
		}
	}
	c.pending = nil
	c.ticketMu.Unlock()

	if _, err := c.service.Delete(ctx, t.BusinessKey); err != nil {
		c.logger.Warn("delete product failed", zap.String("key", t.BusinessKey), zap.Error(err))
		return fmt.Errorf("inventory: delete: %w", err)
	}
	c.logger.Info("product deleted", zap.String("key", t.BusinessKey))
	return c.relist(ctx, EventDeleted, t.BusinessKey)
}

// CancelDelete discards the ticket with id at either step. Unknown or
// superseded ids are ignored.
func (c *Controller) CancelDelete(id string) {
	c.ticketMu.Lock()
	if c.pending != nil && c.pending.ID == id {
		c.pending = nil
	}
	c.ticketMu.Unlock()
}

// DiscardDelete drops whatever delete is pending. Opening another dialog or
// reloading the page dismisses the delete dialog.
func (c *Controller) DiscardDelete() {
	c.ticketMu.Lock()
	c.pending = nil
	c.ticketMu.Unlock()
}

// pendingLocked returns the pending ticket when it matches id and has not
// outlived the ticket TTL. Expired tickets are dropped. ticketMu must be held.
func (c *Controller) pendingLocked(id string) (*DeleteTicket, error) {
	t := c.pending
	if t == nil || t.ID != id {
		return nil, ErrTicketNotFound
	}
	if c.clock().Sub(t.CreatedAt) > c.ticketTTL {
		c.pending = nil
		return nil, ErrTicketNotFound
	}
	return t, nil
}
