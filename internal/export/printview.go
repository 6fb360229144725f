package export

import (
	"bytes"
	"context"
	"fmt"

	"github.com/a-h/templ"

	"github.com/ppchow/pettington-product-navigator/internal/catalog"
)

// PrintStyles is the stylesheet of the print view. It is inlined into the
// standalone document so headless Chrome needs no asset server.
const PrintStyles = `
.print-sheet{font-family:"Noto Sans TC","PingFang TC",sans-serif;color:#1f2937;margin:0 auto;max-width:210mm;padding:12mm}
.print-sheet h1{font-size:20px;margin:0 0 12px}
.print-row{display:grid;grid-template-columns:1fr 1fr;gap:12px;margin-bottom:12px;break-inside:avoid;page-break-inside:avoid}
.print-card{border:1px solid #d1d5db;border-radius:6px;padding:10px;min-height:40mm}
.print-card.placeholder{border:none}
.print-card img{max-width:100%;max-height:45mm;object-fit:contain;display:block;margin:0 auto 8px}
.print-card h2{font-size:14px;margin:0 0 4px}
.print-vendor{font-size:11px;color:#6b7280;margin:0 0 6px}
.print-variant{display:flex;justify-content:space-between;font-size:12px;padding:2px 0;border-top:1px dashed #e5e7eb}
.print-sku{color:#6b7280;margin-left:4px}
.price-original{text-decoration:line-through;color:#808080;margin-right:4px}
.price-current.discounted{color:#dc2626;font-weight:700}
.price-current.price-unavailable{color:#6b7280;font-style:italic}
@media print{.print-sheet{padding:0}.no-print{display:none}}
`

// ImageSource sanitises a product image URL for use in a src attribute.
func ImageSource(image catalog.Image) string {
	return string(templ.URL(image.URL))
}

// ImageAlt falls back to the product title when the image has no alt text.
func ImageAlt(image catalog.Image, title string) string {
	if image.AltText != "" {
		return image.AltText
	}
	return title
}

// PrintHTML renders the print view as a standalone HTML document.
func PrintHTML(ctx context.Context, doc Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := printDocument(doc).Render(ctx, &buf); err != nil {
		return nil, fmt.Errorf("failed to render print view: %w", err)
	}
	return buf.Bytes(), nil
}
