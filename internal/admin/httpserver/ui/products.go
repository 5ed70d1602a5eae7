package ui

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"finitefield.org/stock-admin/internal/admin/catalog"
	custommw "finitefield.org/stock-admin/internal/admin/httpserver/middleware"
	"finitefield.org/stock-admin/internal/admin/inventory"
	inventorytpl "finitefield.org/stock-admin/internal/admin/templates/inventory"
)

// NewProductForm renders an empty create modal.
func (h *Handlers) NewProductForm(w http.ResponseWriter, r *http.Request) {
	h.controller.DiscardDelete()
	form := h.formData(r, false)
	form.Stock = "0"
	form.Price = "0.00"
	if snap := h.controller.Snapshot(inventory.DefaultViewState()); snap.LimitReached {
		form.Error = inventorytpl.LimitMessage(snap.RecordLimit)
	}
	h.renderModal(w, r, http.StatusOK, inventorytpl.ProductForm(form))
}

// CreateProduct validates the posted form and appends the product remotely.
func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	form := h.formData(r, false)
	input, err := h.parseProductInput(r, &form)
	if err == nil {
		err = h.controller.Create(r.Context(), input)
	}
	if err != nil {
		logError(r, "create", err)
		form.Error = userMessage(err)
		form.ErrorField = errorField(err)
		h.renderModal(w, r, failureStatus(err), inventorytpl.ProductForm(form))
		return
	}
	h.completeMutation(w, r, "Producto agregado.")
}

// EditProductForm renders the edit modal for the product named by ?key=.
func (h *Handlers) EditProductForm(w http.ResponseWriter, r *http.Request) {
	h.controller.DiscardDelete()
	target, err := h.controller.BeginEdit(r.URL.Query().Get("key"))
	if err != nil {
		logError(r, "edit", err)
		http.Error(w, userMessage(err), http.StatusNotFound)
		return
	}

	form := h.formData(r, true)
	p := target.Product
	form.BusinessKey = target.BusinessKey
	form.Title = p.Title
	form.Category = p.Category
	form.ImageURL = p.ImageURL
	form.Stock = strconv.Itoa(p.Stock)
	form.Price = p.Price.StringFixed(2)
	h.renderModal(w, r, http.StatusOK, inventorytpl.ProductForm(form))
}

// UpdateProduct overwrites the editable fields of the product keyed by the
// posted key. The title is never sent.
func (h *Handlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	form := h.formData(r, true)
	form.BusinessKey = strings.TrimSpace(r.PostFormValue("key"))

	target, err := h.controller.BeginEdit(form.BusinessKey)
	if err != nil {
		logError(r, "update", err)
		form.Error = userMessage(err)
		h.renderModal(w, r, http.StatusNotFound, inventorytpl.ProductForm(form))
		return
	}

	input, err := h.parseProductInput(r, &form)
	form.Title = target.Product.Title
	if err == nil {
		err = h.controller.Update(r.Context(), target, input)
	}
	if err != nil {
		logError(r, "update", err)
		form.Error = userMessage(err)
		form.ErrorField = errorField(err)
		h.renderModal(w, r, failureStatus(err), inventorytpl.ProductForm(form))
		return
	}
	h.completeMutation(w, r, "Producto actualizado.")
}

func (h *Handlers) formData(r *http.Request, editing bool) inventorytpl.FormData {
	paths := h.paths(r)
	action := paths.Products
	if editing {
		action = paths.EditProduct
	}
	snap := h.controller.Snapshot(inventory.DefaultViewState())
	return inventorytpl.FormData{
		Editing:    editing,
		Action:     action,
		CSRFToken:  custommw.CSRFTokenFromContext(r.Context()),
		Categories: inventorytpl.CategoryLabels(snap.Categories),
	}
}

// parseProductInput reads the posted product fields into input and echoes the
// raw values back into form so a failed submit re-renders what was typed.
func (h *Handlers) parseProductInput(r *http.Request, form *inventorytpl.FormData) (inventory.ProductInput, error) {
	form.Title = clean(r.PostFormValue(inventorytpl.FieldTitle))
	form.Category = clean(r.PostFormValue(inventorytpl.FieldCategory))
	form.ImageURL = clean(r.PostFormValue(inventorytpl.FieldImage))
	form.Stock = strings.TrimSpace(r.PostFormValue(inventorytpl.FieldStock))
	form.Price = strings.TrimSpace(r.PostFormValue(inventorytpl.FieldPrice))

	input := inventory.ProductInput{
		Title:    form.Title,
		Category: form.Category,
		ImageURL: form.ImageURL,
	}

	if form.Stock != "" {
		stock, err := strconv.Atoi(form.Stock)
		if err != nil {
			return input, &catalog.ValidationError{Field: "stock", Message: "El inventario debe ser un número entero."}
		}
		input.Stock = stock
	}
	if form.Price != "" {
		price, err := decimal.NewFromString(form.Price)
		if err != nil {
			return input, &catalog.ValidationError{Field: "price", Message: "El precio debe ser un número."}
		}
		input.Price = price
	}
	return input, nil
}

func failureStatus(err error) int {
	switch {
	case isValidation(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, inventory.ErrProductNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}
