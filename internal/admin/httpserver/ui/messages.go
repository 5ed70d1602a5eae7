package ui

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"finitefield.org/stock-admin/internal/admin/catalog"
	custommw "finitefield.org/stock-admin/internal/admin/httpserver/middleware"
	"finitefield.org/stock-admin/internal/admin/inventory"
	"finitefield.org/stock-admin/internal/platform/observability"
)

// userMessage maps controller and catalog failures to operator-facing text.
func userMessage(err error) string {
	var (
		validationErr *catalog.ValidationError
		remoteErr     *catalog.RemoteError
		protocolErr   *catalog.ProtocolError
	)
	switch {
	case errors.As(err, &validationErr):
		return validationErr.Message
	case errors.Is(err, inventory.ErrProductNotFound):
		return "El producto ya no existe en el inventario. Actualiza la lista."
	case errors.Is(err, inventory.ErrTicketNotFound), errors.Is(err, inventory.ErrTicketPhase):
		return "La solicitud de eliminación expiró. Vuelve a intentarlo."
	case errors.Is(err, catalog.ErrNotConfigured):
		return "El catálogo remoto no está configurado."
	case errors.As(err, &remoteErr):
		return "El servidor rechazó la operación: " + remoteErr.Message
	case errors.As(err, &protocolErr):
		return "El servidor respondió con datos inesperados. Intenta de nuevo."
	default:
		return "No se pudo completar la operación. Revisa tu conexión e intenta de nuevo."
	}
}

// errorField returns the form field a validation failure refers to.
func errorField(err error) string {
	var validationErr *catalog.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Field
	}
	return ""
}

func isValidation(err error) bool {
	var validationErr *catalog.ValidationError
	return errors.As(err, &validationErr)
}

func logError(r *http.Request, action string, err error) {
	logger := observability.FromContext(r.Context())
	if isValidation(err) {
		logger.Debug("inventory action rejected", zap.String("action", action), zap.Error(err))
		return
	}
	logger.Warn("inventory action failed", zap.String("action", action), zap.Error(err))
}

// triggerToast raises the toast, modal:close and inventory:changed client events.
func triggerToast(w http.ResponseWriter, message, tone string) {
	events := map[string]any{
		"toast":       map[string]string{"message": message, "tone": tone},
		"modal:close": true,
	}
	events[inventory.TopicChanged] = true
	payload, err := json.Marshal(events)
	if err != nil {
		return
	}
	custommw.TriggerClientEvent(w, string(payload))
}
