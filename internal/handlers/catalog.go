package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/getsentry/sentry-go/attribute"
	"github.com/gorilla/mux"

	"github.com/ppchow/pettington-product-navigator/internal/navigator"
	"github.com/ppchow/pettington-product-navigator/internal/observability"
	"github.com/ppchow/pettington-product-navigator/internal/session"
	"github.com/ppchow/pettington-product-navigator/ui/views"
)

func (h *Handlers) browser(w http.ResponseWriter, r *http.Request) *navigator.Browser {
	if browser := session.BrowserFromContext(r.Context()); browser != nil {
		return browser
	}
	browser, _ := h.sessionManager.Browser(w, r)
	return browser
}

// Catalog renders the collection tabs, filters and product grid.
func (h *Handlers) Catalog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	browser := h.browser(w, r)
	if err := browser.Ensure(ctx); err != nil {
		h.loggerFromContext(ctx).Error("failed to load default collection", "error", err)
	}

	if err := views.CatalogPage(browser.View(ctx)).Render(ctx, w); err != nil {
		h.loggerFromContext(ctx).Error("failed to render catalog page", "error", err)
		http.Error(w, "Failed to render catalog", http.StatusInternalServerError)
	}
}

// CatalogJSON returns the browser view for scripted clients.
func (h *Handlers) CatalogJSON(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	browser := h.browser(w, r)
	if err := browser.Ensure(ctx); err != nil {
		h.loggerFromContext(ctx).Error("failed to load default collection", "error", err)
	}
	h.writeView(w, r, browser)
}

func (h *Handlers) SelectCollection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	handle := mux.Vars(r)["handle"]
	browser := h.browser(w, r)

	if err := browser.SelectCollection(ctx, handle); err != nil {
		if errors.Is(err, navigator.ErrUnknownCollection) {
			http.Error(w, "Unknown collection", http.StatusNotFound)
			return
		}
		h.loggerFromContext(ctx).Error("failed to select collection", "collection", handle, "error", err)
		http.Error(w, "Failed to select collection", http.StatusInternalServerError)
		return
	}
	observability.Count(ctx, "navigator.collection.selected", attribute.String("collection", handle))
	h.respond(w, r, browser, "/")
}

func (h *Handlers) Reload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	browser := h.browser(w, r)
	if err := browser.Reload(ctx); err != nil {
		h.loggerFromContext(ctx).Error("failed to reload collection", "error", err)
		http.Error(w, "Failed to reload collection", http.StatusInternalServerError)
		return
	}
	h.respond(w, r, browser, "/")
}

func (h *Handlers) ToggleFilter(w http.ResponseWriter, r *http.Request) {
	dimension, err := navigator.ParseDimension(mux.Vars(r)["dimension"])
	if err != nil {
		http.Error(w, "Unknown filter", http.StatusNotFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	value := strings.TrimSpace(r.PostFormValue("value"))
	if value == "" {
		http.Error(w, "Filter value is required", http.StatusBadRequest)
		return
	}

	browser := h.browser(w, r)
	if _, err := browser.ToggleFilter(dimension, value); err != nil {
		http.Error(w, "Unknown filter", http.StatusBadRequest)
		return
	}
	h.respond(w, r, browser, "/")
}

func (h *Handlers) ClearFilters(w http.ResponseWriter, r *http.Request) {
	browser := h.browser(w, r)
	browser.ClearFilters()
	h.respond(w, r, browser, "/")
}

func (h *Handlers) DismissBanner(w http.ResponseWriter, r *http.Request) {
	browser := h.browser(w, r)
	browser.DismissBanner()
	h.respond(w, r, browser, "/")
}

// ClearCache drops every cached catalog entry and reloads the current
// collection from the storefront.
func (h *Handlers) ClearCache(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	if err := h.catalog.ClearCache(ctx); err != nil {
		logger.Error("failed to clear cache", "error", err)
		http.Error(w, "Failed to clear cache", http.StatusInternalServerError)
		return
	}
	logger.Info("catalog cache cleared")

	browser := h.browser(w, r)
	if err := browser.Reload(ctx); err != nil {
		logger.Error("failed to reload after clearing cache", "error", err)
	}
	h.respond(w, r, browser, "/")
}

// respond answers a state change with the view for JSON clients and a
// redirect for form posts.
func (h *Handlers) respond(w http.ResponseWriter, r *http.Request, browser *navigator.Browser, redirect string) {
	if wantsJSON(r) {
		h.writeView(w, r, browser)
		return
	}
	http.Redirect(w, r, redirect, http.StatusSeeOther)
}

func (h *Handlers) writeView(w http.ResponseWriter, r *http.Request, browser *navigator.Browser) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(browser.View(r.Context())); err != nil {
		h.loggerFromContext(r.Context()).Error("failed to encode catalog view", "error", err)
	}
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
