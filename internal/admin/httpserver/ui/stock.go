package ui

import (
	"net/http"
	"strconv"
	"strings"

	"finitefield.org/stock-admin/internal/admin/catalog"
	custommw "finitefield.org/stock-admin/internal/admin/httpserver/middleware"
	"finitefield.org/stock-admin/internal/admin/inventory"
	inventorytpl "finitefield.org/stock-admin/internal/admin/templates/inventory"
)

// StockForm renders the add or subtract modal for ?key=&direction=.
func (h *Handlers) StockForm(w http.ResponseWriter, r *http.Request) {
	h.controller.DiscardDelete()
	q := r.URL.Query()
	product, ok := h.controller.Store().Find(q.Get("key"))
	if !ok {
		http.Error(w, userMessage(inventory.ErrProductNotFound), http.StatusNotFound)
		return
	}
	dir, ok := inventory.ParseDirection(q.Get("direction"))
	if !ok {
		http.Error(w, "Dirección inválida.", http.StatusBadRequest)
		return
	}

	h.renderModal(w, r, http.StatusOK, inventorytpl.StockForm(inventorytpl.StockFormData{
		Action:       h.paths(r).Stock,
		CSRFToken:    custommw.CSRFTokenFromContext(r.Context()),
		BusinessKey:  product.BusinessKey,
		Title:        product.Title,
		CurrentStock: product.DisplayStock(),
		Direction:    directionValue(dir),
	}))
}

// AdjustStock applies the posted delta against a fresh read of the product.
func (h *Handlers) AdjustStock(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(r.PostFormValue("key"))
	dir, ok := inventory.ParseDirection(r.PostFormValue("direction"))
	if !ok {
		http.Error(w, "Dirección inválida.", http.StatusBadRequest)
		return
	}

	form := inventorytpl.StockFormData{
		Action:      h.paths(r).Stock,
		CSRFToken:   custommw.CSRFTokenFromContext(r.Context()),
		BusinessKey: key,
		Direction:   directionValue(dir),
		Delta:       strings.TrimSpace(r.PostFormValue("delta")),
	}
	if product, found := h.controller.Store().Find(key); found {
		form.Title = product.Title
		form.CurrentStock = product.DisplayStock()
	}

	delta, err := strconv.Atoi(form.Delta)
	if err != nil {
		err = &catalog.ValidationError{Field: "delta", Message: "La cantidad debe ser un entero positivo."}
	} else {
		err = h.controller.AdjustStock(r.Context(), key, delta, dir)
	}
	if err != nil {
		logError(r, "adjust_stock", err)
		form.Error = userMessage(err)
		h.renderModal(w, r, failureStatus(err), inventorytpl.StockForm(form))
		return
	}

	message := "Inventario agregado."
	if dir == inventory.DirectionSubtract {
		message = "Inventario retirado."
	}
	h.completeMutation(w, r, message)
}

func directionValue(dir inventory.Direction) string {
	if dir == inventory.DirectionSubtract {
		return "subtract"
	}
	return "add"
}
