package ui

import (
	"net/http"
	"strings"

	"github.com/a-h/templ"

	custommw "finitefield.org/stock-admin/internal/admin/httpserver/middleware"
	"finitefield.org/stock-admin/internal/admin/inventory"
	"finitefield.org/stock-admin/internal/admin/templates/helpers"
	inventorytpl "finitefield.org/stock-admin/internal/admin/templates/inventory"
	"finitefield.org/stock-admin/internal/platform/config"
)

const (
	defaultPageTitle      = "Control de Stock"
	defaultCurrencySymbol = "$"
)

// Dependencies collects the collaborators required by the UI handlers.
type Dependencies struct {
	Controller     *inventory.Controller
	PageTitle      string
	CurrencySymbol string
	Theme          config.Theme
}

// Handlers exposes HTTP handlers for inventory pages, fragments and actions.
type Handlers struct {
	controller *inventory.Controller
	title      string
	symbol     string
	themeCSS   string
}

// NewHandlers wires the UI handler set.
func NewHandlers(deps Dependencies) *Handlers {
	if deps.Controller == nil {
		panic("inventory controller is required")
	}
	title := strings.TrimSpace(deps.PageTitle)
	if title == "" {
		title = defaultPageTitle
	}
	symbol := strings.TrimSpace(deps.CurrencySymbol)
	if symbol == "" {
		symbol = defaultCurrencySymbol
	}
	theme := deps.Theme
	if theme == (config.Theme{}) {
		theme = config.DefaultTheme()
	}
	return &Handlers{
		controller: deps.Controller,
		title:      title,
		symbol:     symbol,
		themeCSS:   helpers.ThemeStyle(theme),
	}
}

// InventoryPage renders the full inventory page with SSR.
func (h *Handlers) InventoryPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.controller.DiscardDelete()
	state := parseViewState(r)
	snap := h.controller.Snapshot(state)
	paths := h.paths(r)
	csrf := custommw.CSRFTokenFromContext(ctx)

	operator := ""
	if op, ok := custommw.OperatorFromContext(ctx); ok {
		operator = op.DisplayName()
	}

	table := inventorytpl.BuildTable(paths, snap, h.symbol, csrf, "")
	page := inventorytpl.BuildPage(h.title, custommw.EnvironmentFromContext(ctx), operator, csrf, h.themeCSS, paths, snap, table, canonicalQuery(snap.State))

	templ.Handler(inventorytpl.Index(page)).ServeHTTP(w, r)
}

// InventoryTable renders the product grid fragment for htmx requests.
func (h *Handlers) InventoryTable(w http.ResponseWriter, r *http.Request) {
	state := parseViewState(r)
	snap := h.controller.Snapshot(state)
	paths := h.paths(r)

	if canonical := canonicalURL(paths.Page, snap.State); canonical != "" {
		w.Header().Set("HX-Push-Url", canonical)
	}
	h.renderSnapshot(w, r, snap, "")
}

// Refresh refetches the catalog and re-renders the grid. A failed refresh keeps
// the previous rows on screen with an error banner.
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	errMsg := ""
	if err := h.controller.Refresh(r.Context()); err != nil {
		logError(r, "refresh", err)
		errMsg = userMessage(err)
	}
	if !custommw.IsHTMXRequest(r.Context()) {
		h.redirectToPage(w, r)
		return
	}
	h.renderTable(w, r, parseViewState(r), errMsg)
}

// Healthz reports liveness.
func Healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handlers) paths(r *http.Request) inventorytpl.Paths {
	return inventorytpl.NewPaths(custommw.BasePathFromContext(r.Context()))
}

func (h *Handlers) renderTable(w http.ResponseWriter, r *http.Request, state inventory.ViewState, errMsg string) {
	h.renderSnapshot(w, r, h.controller.Snapshot(state), errMsg)
}

func (h *Handlers) renderSnapshot(w http.ResponseWriter, r *http.Request, snap inventory.Snapshot, errMsg string) {
	table := inventorytpl.BuildTable(h.paths(r), snap, h.symbol, custommw.CSRFTokenFromContext(r.Context()), errMsg)
	table.OOB = true
	templ.Handler(inventorytpl.Table(table)).ServeHTTP(w, r)
}

// completeMutation answers a successful modal action: htmx callers get the
// refreshed grid retargeted over the table, everyone else is redirected.
func (h *Handlers) completeMutation(w http.ResponseWriter, r *http.Request, message string) {
	if !custommw.IsHTMXRequest(r.Context()) {
		h.redirectToPage(w, r)
		return
	}
	w.Header().Set("HX-Retarget", "#"+inventorytpl.TableID)
	w.Header().Set("HX-Reswap", "outerHTML")
	triggerToast(w, message, "success")
	h.renderTable(w, r, parseViewState(r), "")
}

func (h *Handlers) redirectToPage(w http.ResponseWriter, r *http.Request) {
	target := canonicalURL(h.paths(r).Page, parseViewState(r))
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *Handlers) renderModal(w http.ResponseWriter, r *http.Request, status int, component templ.Component) {
	// htmx does not swap non-2xx bodies.
	if status == http.StatusOK || custommw.IsHTMXRequest(r.Context()) {
		templ.Handler(component).ServeHTTP(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := component.Render(r.Context(), w); err != nil {
		logError(r, "render", err)
	}
}

// clean trims operator text input. Values are stored as typed and escaped on
// output.
func clean(raw string) string {
	return strings.TrimSpace(raw)
}
