package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"

	"github.com/ppchow/pettington-product-navigator/internal/catalog"
	"github.com/ppchow/pettington-product-navigator/internal/navigator"
	"github.com/ppchow/pettington-product-navigator/ui/views"
)

func (h *Handlers) PrintSelect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	browser := h.browser(w, r)
	if err := browser.Ensure(ctx); err != nil {
		h.loggerFromContext(ctx).Error("failed to load default collection", "error", err)
	}

	if err := views.PrintSelectPage(browser.View(ctx)).Render(ctx, w); err != nil {
		h.loggerFromContext(ctx).Error("failed to render print selection", "error", err)
		http.Error(w, "Failed to render print selection", http.StatusInternalServerError)
	}
}

// SavePrintSelection replaces the selected variants and print flags from the
// print-select form.
func (h *Handlers) SavePrintSelection(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	selected := make(map[string][]string)
	for _, value := range r.PostForm["variant"] {
		productID, variantID, ok := strings.Cut(value, "|")
		if !ok || productID == "" || variantID == "" {
			http.Error(w, "Invalid variant selection", http.StatusBadRequest)
			return
		}
		selected[productID] = append(selected[productID], variantID)
	}

	browser := h.browser(w, r)
	browser.SetPrintSelection(selected)
	browser.SetPrintOptions(catalog.PrintOptions{
		ShowDiscountPrice: formFlag(r, "show_discount_price"),
		ShowSKU:           formFlag(r, "show_sku"),
	})
	h.respond(w, r, browser, "/print-select")
}

func (h *Handlers) TogglePrintProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := url.PathUnescape(mux.Vars(r)["id"])
	if err != nil || productID == "" {
		http.Error(w, "Invalid product", http.StatusBadRequest)
		return
	}

	browser := h.browser(w, r)
	if _, err := browser.TogglePrintProduct(productID); err != nil {
		if errors.Is(err, navigator.ErrUnknownProduct) {
			http.Error(w, "Unknown product", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to update selection", http.StatusInternalServerError)
		return
	}
	h.respond(w, r, browser, "/print-select")
}

func (h *Handlers) ClearPrintSelection(w http.ResponseWriter, r *http.Request) {
	browser := h.browser(w, r)
	browser.ClearPrintSelection()
	h.respond(w, r, browser, "/print-select")
}

// Print renders the printable two-column sheet of the selection.
func (h *Handlers) Print(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	doc := h.exportDocument(w, r)
	if err := views.PrintPage(doc).Render(ctx, w); err != nil {
		h.loggerFromContext(ctx).Error("failed to render print page", "error", err)
		http.Error(w, "Failed to render print page", http.StatusInternalServerError)
	}
}

func formFlag(r *http.Request, name string) bool {
	switch strings.ToLower(strings.TrimSpace(r.PostFormValue(name))) {
	case "1", "true", "on", "yes":
		return true
	default:
		return false
	}
}
