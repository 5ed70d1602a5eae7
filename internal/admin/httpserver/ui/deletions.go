package ui

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	custommw "finitefield.org/stock-admin/internal/admin/httpserver/middleware"
	"finitefield.org/stock-admin/internal/admin/inventory"
	inventorytpl "finitefield.org/stock-admin/internal/admin/templates/inventory"
)

// BeginDelete opens a delete ticket for the posted key and shows the first step.
func (h *Handlers) BeginDelete(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.controller.BeginDelete(strings.TrimSpace(r.PostFormValue("key")))
	if err != nil {
		logError(r, "delete_begin", err)
		http.Error(w, userMessage(err), http.StatusNotFound)
		return
	}
	h.renderModal(w, r, http.StatusOK, inventorytpl.DeleteModal(h.deleteModal(r, ticket)))
}

// ProceedDelete advances the ticket to the typed confirmation step.
func (h *Handlers) ProceedDelete(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.controller.ProceedDelete(chi.URLParam(r, "ticketID"))
	if err != nil {
		logError(r, "delete_proceed", err)
		http.Error(w, userMessage(err), http.StatusConflict)
		return
	}
	h.renderModal(w, r, http.StatusOK, inventorytpl.DeleteModal(h.deleteModal(r, ticket)))
}

// ConfirmDelete removes the product when the typed text matches the
// confirmation literal. A mismatch re-renders the confirmation step.
func (h *Handlers) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "ticketID")
	ticket, err := h.controller.Ticket(id)
	if err != nil {
		logError(r, "delete_confirm", err)
		http.Error(w, userMessage(err), http.StatusConflict)
		return
	}

	typed := r.PostFormValue("confirmation")
	if err := h.controller.ConfirmDelete(r.Context(), id, typed); err != nil {
		logError(r, "delete_confirm", err)
		data := h.deleteModal(r, ticket)
		data.Typed = typed
		data.Error = userMessage(err)
		h.renderModal(w, r, failureStatus(err), inventorytpl.DeleteModal(data))
		return
	}
	h.completeMutation(w, r, "Producto eliminado.")
}

// CancelDelete discards the ticket and clears the modal.
func (h *Handlers) CancelDelete(w http.ResponseWriter, r *http.Request) {
	h.controller.CancelDelete(chi.URLParam(r, "ticketID"))
	if !custommw.IsHTMXRequest(r.Context()) {
		h.redirectToPage(w, r)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) deleteModal(r *http.Request, ticket inventory.DeleteTicket) inventorytpl.DeleteModalData {
	paths := h.paths(r)
	return inventorytpl.DeleteModalData{
		TicketID:   ticket.ID,
		Title:      ticket.Title,
		Confirming: ticket.Phase == inventory.DeletePhaseConfirm,
		Literal:    h.controller.ConfirmationLiteral(),
		ProceedURL: paths.Delete(ticket.ID, "proceed"),
		ConfirmURL: paths.Delete(ticket.ID, "confirm"),
		CancelURL:  paths.Delete(ticket.ID, "cancel"),
		CSRFToken:  custommw.CSRFTokenFromContext(r.Context()),
	}
}
