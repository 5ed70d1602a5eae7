package ui

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"finitefield.org/stock-admin/internal/admin/export"
)

const exportBaseName = "inventario"

// Export downloads the current projection as CSV or XLSX.
func (h *Handlers) Export(w http.ResponseWriter, r *http.Request) {
	format, ok := export.ParseFormat(chi.URLParam(r, "format"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	snap := h.controller.Snapshot(parseViewState(r))

	var buf bytes.Buffer
	if err := export.Write(&buf, format, snap.Products); err != nil {
		logError(r, "export", err)
		http.Error(w, "No se pudo generar el archivo.", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+format.Filename(exportBaseName)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = w.Write(buf.Bytes())
}
