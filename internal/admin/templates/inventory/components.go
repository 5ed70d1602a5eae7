package inventory

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"finitefield.org/stock-admin/internal/admin/templates/helpers"
)

// htmlWriter accumulates the first write error so components read top to bottom.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) attr(name, value string) {
	h.raw(" " + name + `="`)
	h.text(value)
	h.raw(`"`)
}

func (h *htmlWriter) csrfField(token string) {
	h.raw(`<input type="hidden" name="csrf_token"`)
	h.attr("value", token)
	h.raw(`>`)
}

func (h *htmlWriter) errorAlert(msg string) {
	if msg == "" {
		return
	}
	h.raw(`<div class="alert rounded-md bg-rose-50 px-4 py-3 text-sm text-rose-700" role="alert">`)
	h.text(msg)
	h.raw(`</div>`)
}

func component(fn func(h *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		fn(h)
		return h.err
	})
}

// Index renders the full inventory page.
func Index(page PageData) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<!DOCTYPE html><html lang="es"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>`)
		h.text(page.Title)
		h.raw(`</title><style>`)
		// ThemeCSS is built from validated colours and font names only.
		h.raw(page.ThemeCSS)
		h.raw(`body{background:var(--bg-color);color:var(--text-color);font-family:var(--font-family);font-size:var(--font-size)}`)
		h.raw(`.card{background:var(--card-color)}.btn-primary{background:var(--primary-color);color:#fff}.muted{color:var(--secondary-color)}`)
		h.raw(`</style><script src="https://unpkg.com/htmx.org@1.9.12" defer></script></head>`)

		h.raw(`<body`)
		h.attr("hx-headers", `{"X-CSRF-Token":"`+page.CSRFToken+`"}`)
		h.raw(`><header class="flex items-center justify-between px-6 py-4"><div><h1 class="text-2xl font-semibold">`)
		h.text(page.Title)
		h.raw(`</h1><span class="env-badge muted text-xs">`)
		h.text(page.Environment)
		h.raw(`</span></div>`)
		if page.Operator != "" {
			h.raw(`<span class="operator muted text-sm">`)
			h.text(page.Operator)
			h.raw(`</span>`)
		}
		h.raw(`</header><main class="px-6 pb-12">`)

		writeToolbar(h, page)
		writeTable(h, page.Table)

		h.raw(`</main><div`)
		h.attr("id", ModalID)
		h.raw(`></div>`)
		h.raw(`<script>document.body.addEventListener("modal:close",function(){document.getElementById("` + ModalID + `").innerHTML=""});</script>`)
		h.raw(`</body></html>`)
	})
}

func writeToolbar(h *htmlWriter, page PageData) {
	h.raw(`<form class="flex flex-wrap items-center gap-3 py-4"`)
	h.attr("id", FiltersID)
	h.attr("action", page.Paths.Page)
	h.attr("hx-get", page.Paths.Table)
	h.attr("hx-target", "#"+TableID)
	h.attr("hx-swap", "outerHTML")
	h.attr("hx-push-url", "true")
	h.attr("hx-trigger", "change, keyup changed delay:300ms from:input[name='q']")
	h.raw(`>`)
	writeCategorySelect(h, page.Filters.Categories, false)

	h.raw(`<select name="sort" class="rounded-md border px-3 py-2">`)
	for _, opt := range page.Filters.Sorts {
		writeOption(h, opt)
	}
	h.raw(`</select><input type="search" name="q" placeholder="Buscar producto" class="rounded-md border px-3 py-2"`)
	h.attr("value", page.Filters.Query)
	h.raw(`></form>`)

	h.raw(`<div class="flex flex-wrap gap-3 pb-4"><button type="button" class="btn-primary rounded-md px-4 py-2"`)
	h.attr("hx-get", page.Paths.NewProduct)
	h.attr("hx-target", "#"+ModalID)
	h.raw(`>Nuevo producto</button><button type="button" class="rounded-md border px-4 py-2"`)
	h.attr("hx-post", page.Paths.Refresh)
	h.attr("hx-target", "#"+TableID)
	h.attr("hx-swap", "outerHTML")
	h.attr("hx-include", "#"+FiltersID)
	h.raw(`>Actualizar</button>`)
	for _, link := range page.ExportLinks {
		h.raw(`<a class="export-link rounded-md border px-4 py-2"`)
		h.attr("href", link.URL)
		h.raw(`>Exportar `)
		h.text(link.Label)
		h.raw(`</a>`)
	}
	h.raw(`</div>`)
}

func writeOption(h *htmlWriter, opt SelectOption) {
	h.raw(`<option`)
	h.attr("value", opt.Value)
	if opt.Selected {
		h.raw(` selected`)
	}
	h.raw(`>`)
	h.text(opt.Label)
	h.raw(`</option>`)
}

func writeCategorySelect(h *htmlWriter, options []SelectOption, oob bool) {
	h.raw(`<select name="category" class="rounded-md border px-3 py-2"`)
	h.attr("id", CategorySelectID)
	if oob {
		h.raw(` hx-swap-oob="outerHTML"`)
	}
	h.raw(`>`)
	for _, opt := range options {
		writeOption(h, opt)
	}
	h.raw(`</select>`)
}

// Table renders the swappable stats and product grid.
func Table(data TableData) templ.Component {
	return component(func(h *htmlWriter) {
		writeTable(h, data)
	})
}

func writeTable(h *htmlWriter, data TableData) {
	h.raw(`<section`)
	h.attr("id", TableID)
	h.attr("data-count", strconv.Itoa(len(data.Cards)))
	h.raw(`>`)
	h.errorAlert(data.Error)
	if data.LimitWarning != "" {
		h.raw(`<div class="limit-warning rounded-md bg-amber-50 px-4 py-3 text-sm text-amber-700">`)
		h.text(data.LimitWarning)
		h.raw(`</div>`)
	}

	h.raw(`<dl class="stats grid grid-cols-3 gap-4 py-4">`)
	h.raw(`<div class="card rounded-lg p-4"><dt class="muted text-sm">Productos</dt><dd class="stat-total text-2xl font-semibold">`)
	h.text(strconv.Itoa(data.Stats.Total))
	h.raw(`</dd></div><div class="card rounded-lg p-4"><dt class="muted text-sm">Stock bajo</dt><dd class="stat-low text-2xl font-semibold">`)
	h.text(strconv.Itoa(data.Stats.LowCount))
	h.raw(`</dd></div><div class="card rounded-lg p-4"><dt class="muted text-sm">Valor total</dt><dd class="stat-value text-2xl font-semibold">`)
	h.text(data.Stats.TotalValue)
	h.raw(`</dd></div></dl>`)

	if data.EmptyMessage != "" {
		h.raw(`<p class="empty-state muted py-8 text-center">`)
		h.text(data.EmptyMessage)
		h.raw(`</p>`)
	} else {
		h.raw(`<div class="grid grid-cols-1 gap-4 md:grid-cols-3">`)
		for _, card := range data.Cards {
			writeCard(h, data, card)
		}
		h.raw(`</div>`)
	}
	h.raw(`</section>`)

	if data.OOB {
		writeCategorySelect(h, data.Categories, true)
	}
}

func writeCard(h *htmlWriter, data TableData, card CardData) {
	h.raw(`<article class="product-card card rounded-lg p-4 shadow-sm"`)
	h.attr("data-id", card.DisplayID)
	h.attr("data-key", card.BusinessKey)
	h.raw(`>`)
	if card.ImageURL != "" {
		h.raw(`<img class="h-40 w-full rounded-md object-cover" loading="lazy"`)
		h.attr("src", card.ImageURL)
		h.attr("alt", card.Title)
		h.raw(`>`)
	}
	h.raw(`<p class="product-category muted text-xs uppercase">`)
	h.text(card.Category)
	h.raw(`</p><h2 class="product-title text-lg font-semibold">`)
	h.text(card.Title)
	h.raw(`</h2><p class="product-price">`)
	h.text(card.Price)
	h.raw(`</p><p class="product-stock"><span class="stock-count">`)
	h.text(strconv.Itoa(card.Stock))
	h.raw(`</span> <span`)
	h.attr("class", "stock-badge "+helpers.BadgeClass(card.StockTone))
	h.attr("data-tone", card.StockTone)
	h.raw(`>`)
	h.text(card.StockLabel)
	h.raw(`</span></p><p class="product-value muted text-sm">Valor: `)
	h.text(card.Value)
	h.raw(`</p>`)

	h.raw(`<div class="flex gap-2 pt-3">`)
	writeModalButton(h, "action-add", card.AddURL, "+ Stock")
	writeModalButton(h, "action-subtract", card.SubtractURL, "- Stock")
	writeModalButton(h, "action-edit", card.EditURL, "Editar")
	h.raw(`<form class="action-delete"`)
	h.attr("hx-post", data.Paths.Deletions)
	h.attr("hx-target", "#"+ModalID)
	h.raw(`>`)
	h.csrfField(data.CSRFToken)
	h.raw(`<input type="hidden" name="key"`)
	h.attr("value", card.BusinessKey)
	h.raw(`><button type="submit" class="rounded-md border border-rose-300 px-2 py-1 text-rose-700">Eliminar</button></form>`)
	h.raw(`</div></article>`)
}

func writeModalButton(h *htmlWriter, class, url, label string) {
	h.raw(`<button type="button"`)
	h.attr("class", class+" rounded-md border px-2 py-1")
	h.attr("hx-get", url)
	h.attr("hx-target", "#"+ModalID)
	h.raw(`>`)
	h.text(label)
	h.raw(`</button>`)
}

func openModal(h *htmlWriter, title string) {
	h.raw(`<div class="modal fixed inset-0 flex items-center justify-center bg-slate-900/40"><div class="card w-full max-w-md rounded-lg p-6 shadow-lg"><h3 class="modal-title pb-4 text-lg font-semibold">`)
	h.text(title)
	h.raw(`</h3>`)
}

func closeModal(h *htmlWriter) {
	h.raw(`</div></div>`)
}

func formAttrs(h *htmlWriter, action string) {
	h.attr("action", action)
	h.raw(` method="post"`)
	h.attr("hx-post", action)
	h.attr("hx-target", "#"+ModalID)
	h.attr("hx-include", "#"+FiltersID)
}

func writeField(h *htmlWriter, label, name, typ, value string, invalid bool, extra string) {
	h.raw(`<label class="block pb-3"><span class="muted text-sm">`)
	h.text(label)
	h.raw(`</span><input class="mt-1 w-full rounded-md border px-3 py-2"`)
	h.attr("type", typ)
	h.attr("name", name)
	h.attr("value", value)
	if invalid {
		h.raw(` aria-invalid="true"`)
	}
	if extra != "" {
		h.raw(" " + extra)
	}
	h.raw(`></label>`)
}

func cancelButton(h *htmlWriter) {
	h.raw(`<button type="button" class="rounded-md border px-4 py-2" onclick="document.getElementById('` + ModalID + `').innerHTML=''">Cancelar</button>`)
}

// ProductForm renders the create or edit modal.
func ProductForm(data FormData) templ.Component {
	return component(func(h *htmlWriter) {
		title := "Nuevo producto"
		if data.Editing {
			title = "Editar producto"
		}
		openModal(h, title)
		h.errorAlert(data.Error)
		h.raw(`<form class="product-form"`)
		formAttrs(h, data.Action)
		h.raw(`>`)
		h.csrfField(data.CSRFToken)
		if data.Editing {
			h.raw(`<input type="hidden" name="key"`)
			h.attr("value", data.BusinessKey)
			h.raw(`>`)
			writeField(h, "Producto", FieldTitle, "text", data.Title, data.ErrorField == "title", "readonly")
		} else {
			writeField(h, "Producto", FieldTitle, "text", data.Title, data.ErrorField == "title", "required")
		}
		writeField(h, "Categoría", FieldCategory, "text", data.Category, data.ErrorField == "category", `required list="category-options"`)
		h.raw(`<datalist id="category-options">`)
		for _, c := range data.Categories {
			h.raw(`<option`)
			h.attr("value", c)
			h.raw(`></option>`)
		}
		h.raw(`</datalist>`)
		writeField(h, "Imagen (URL)", FieldImage, "url", data.ImageURL, data.ErrorField == "image", "")
		writeField(h, "Inventario", FieldStock, "number", data.Stock, data.ErrorField == "stock", `min="0" step="1"`)
		writeField(h, "Precio", FieldPrice, "number", data.Price, data.ErrorField == "price", `min="0" step="0.01"`)
		h.raw(`<div class="flex justify-end gap-2 pt-2">`)
		cancelButton(h)
		h.raw(`<button type="submit" class="btn-primary rounded-md px-4 py-2">Guardar</button></div></form>`)
		closeModal(h)
	})
}

// StockForm renders the stock adjustment modal.
func StockForm(data StockFormData) templ.Component {
	return component(func(h *htmlWriter) {
		title := "Agregar inventario"
		if data.Direction == "subtract" {
			title = "Retirar inventario"
		}
		openModal(h, title)
		h.raw(`<p class="pb-3"><strong class="stock-product">`)
		h.text(data.Title)
		h.raw(`</strong> <span class="muted">Disponible: <span class="stock-current">`)
		h.text(strconv.Itoa(data.CurrentStock))
		h.raw(`</span></span></p>`)
		h.errorAlert(data.Error)
		h.raw(`<form class="stock-form"`)
		formAttrs(h, data.Action)
		h.raw(`>`)
		h.csrfField(data.CSRFToken)
		h.raw(`<input type="hidden" name="key"`)
		h.attr("value", data.BusinessKey)
		h.raw(`><input type="hidden" name="direction"`)
		h.attr("value", data.Direction)
		h.raw(`>`)
		writeField(h, "Cantidad", "delta", "number", data.Delta, data.Error != "", `min="1" step="1" required autofocus`)
		h.raw(`<div class="flex justify-end gap-2 pt-2">`)
		cancelButton(h)
		h.raw(`<button type="submit" class="btn-primary rounded-md px-4 py-2">Aplicar</button></div></form>`)
		closeModal(h)
	})
}

// DeleteModal renders either step of the delete confirmation.
func DeleteModal(data DeleteModalData) templ.Component {
	return component(func(h *htmlWriter) {
		openModal(h, "Eliminar producto")
		h.raw(`<div class="delete-modal"`)
		h.attr("data-ticket", data.TicketID)
		if data.Confirming {
			h.raw(` data-step="confirm">`)
		} else {
			h.raw(` data-step="proceed">`)
		}
		h.errorAlert(data.Error)
		if !data.Confirming {
			h.raw(`<p class="pb-4">¿Seguro que deseas eliminar <strong class="delete-title">`)
			h.text(data.Title)
			h.raw(`</strong>? Esta acción no se puede deshacer.</p><form class="delete-proceed flex justify-end gap-2"`)
			formAttrs(h, data.ProceedURL)
			h.raw(`>`)
			h.csrfField(data.CSRFToken)
			writeDeleteCancel(h, data)
			h.raw(`<button type="submit" class="rounded-md bg-rose-600 px-4 py-2 text-white">Continuar</button></form>`)
		} else {
			h.raw(`<p class="pb-4">Escribe <strong class="delete-literal">`)
			h.text(data.Literal)
			h.raw(`</strong> para eliminar <strong class="delete-title">`)
			h.text(data.Title)
			h.raw(`</strong>.</p><form class="delete-confirm"`)
			formAttrs(h, data.ConfirmURL)
			h.raw(`>`)
			h.csrfField(data.CSRFToken)
			writeField(h, "Confirmación", "confirmation", "text", data.Typed, data.Error != "", `autocomplete="off" required autofocus`)
			h.raw(`<div class="flex justify-end gap-2 pt-2">`)
			writeDeleteCancel(h, data)
			h.raw(`<button type="submit" class="rounded-md bg-rose-600 px-4 py-2 text-white">Eliminar</button></div></form>`)
		}
		h.raw(`</div>`)
		closeModal(h)
	})
}

func writeDeleteCancel(h *htmlWriter, data DeleteModalData) {
	h.raw(`<button type="button" class="delete-cancel rounded-md border px-4 py-2"`)
	h.attr("hx-post", data.CancelURL)
	h.attr("hx-target", "#"+ModalID)
	h.attr("hx-vals", `{"csrf_token":"`+data.CSRFToken+`"}`)
	h.raw(`>Cancelar</button>`)
}
