package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go/attribute"

	"github.com/ppchow/pettington-product-navigator/internal/export"
	"github.com/ppchow/pettington-product-navigator/internal/observability"
)

func (h *Handlers) exportDocument(w http.ResponseWriter, r *http.Request) export.Document {
	browser := h.browser(w, r)
	view := browser.View(r.Context())
	items, options := browser.PrintItems()
	return export.Document{
		Title:        view.CollectionTitle,
		Items:        items,
		Options:      options,
		SelectedTags: view.SelectedTags,
		GeneratedAt:  time.Now(),
	}
}

func (h *Handlers) ExportDOCX(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	layout, err := export.ParseDOCXLayout(r.URL.Query().Get("layout"))
	if err != nil {
		http.Error(w, "Unknown layout", http.StatusBadRequest)
		return
	}
	doc := h.exportDocument(w, r)
	if len(doc.Items) == 0 {
		http.Error(w, "Nothing selected for export", http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteDOCX(&buf, layout, doc); err != nil {
		logger.Error("failed to generate docx", "layout", layout, "error", err)
		http.Error(w, "Error generating document", http.StatusInternalServerError)
		return
	}

	h.recordExport(r, "docx", layout)
	writeAttachment(w, export.DOCXContentType, exportFilename(layout, "docx"), buf.Bytes())
}

func (h *Handlers) ExportPDF(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	layout, err := export.ParsePDFLayout(r.URL.Query().Get("layout"))
	if err != nil {
		http.Error(w, "Unknown layout", http.StatusBadRequest)
		return
	}
	doc := h.exportDocument(w, r)
	if len(doc.Items) == 0 {
		http.Error(w, "Nothing selected for export", http.StatusBadRequest)
		return
	}

	var pdf []byte
	switch layout {
	case export.LayoutCompact:
		pdf, err = h.compactPDF.Render(ctx, doc)
	default:
		var html []byte
		html, err = export.PrintHTML(ctx, doc)
		if err == nil {
			pdf, err = h.pdfRenderer.RenderPDF(ctx, html)
		}
	}
	if err != nil {
		if ctx.Err() != nil {
			logger.Warn("pdf export canceled", "layout", layout, "error", err)
			return
		}
		logger.Error("failed to generate pdf", "layout", layout, "error", err)
		http.Error(w, "Error generating PDF", http.StatusInternalServerError)
		return
	}

	h.recordExport(r, "pdf", layout)
	writeAttachment(w, export.PDFContentType, exportFilename(layout, "pdf"), pdf)
}

func (h *Handlers) recordExport(r *http.Request, format string, layout export.Layout) {
	h.metrics.IncExport(format, string(layout))
	observability.Count(r.Context(), "navigator.export.generated",
		attribute.String("format", format),
		attribute.String("layout", string(layout)),
	)
}

func exportFilename(layout export.Layout, ext string) string {
	if layout == export.LayoutGrid || layout == export.LayoutPrint {
		return "product-list." + ext
	}
	return fmt.Sprintf("product-list-%s.%s", layout, ext)
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
