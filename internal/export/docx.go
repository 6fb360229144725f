package export

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/ppchow/pettington-product-navigator/internal/catalog"
)

const DOCXContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

const (
	docxContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`

	docxRootRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`

	docxDocumentStart = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`

	// A4 with 500 twip margins.
	docxDocumentEnd = `<w:sectPr><w:pgSz w:w="11906" w:h="16838"/><w:pgMar w:top="500" w:right="500" w:bottom="500" w:left="500" w:header="0" w:footer="0" w:gutter="0"/></w:sectPr></w:body></w:document>`

	docxTableBorders = `<w:tblBorders><w:top w:val="single" w:sz="4"/><w:left w:val="single" w:sz="4"/><w:bottom w:val="single" w:sz="4"/><w:right w:val="single" w:sz="4"/><w:insideH w:val="single" w:sz="4"/><w:insideV w:val="single" w:sz="4"/></w:tblBorders>`
)

type run struct {
	text   string
	bold   bool
	strike bool
	color  string
	size   int
}

// WriteDOCX writes doc as a Word document in the given layout: grid puts two
// products per table row, compact lists one variant per row.
func WriteDOCX(w io.Writer, layout Layout, doc Document) error {
	var body bytes.Buffer
	switch layout {
	case LayoutGrid:
		writeGridBody(&body, doc)
	case LayoutCompact:
		writeCompactBody(&body, doc)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownLayout, layout)
	}

	archive := zip.NewWriter(w)
	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", docxContentTypes},
		{"_rels/.rels", docxRootRels},
		{"word/document.xml", docxDocumentStart + body.String() + docxDocumentEnd},
	}
	for _, part := range parts {
		f, err := archive.Create(part.name)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", part.name, err)
		}
		if _, err := io.WriteString(f, part.content); err != nil {
			return fmt.Errorf("failed to write %s: %w", part.name, err)
		}
	}
	if err := archive.Close(); err != nil {
		return fmt.Errorf("failed to finish docx: %w", err)
	}
	return nil
}

func writeGridBody(b *bytes.Buffer, doc Document) {
	paragraph(b, "", run{text: doc.title(), bold: true, size: 32})
	if len(doc.Items) == 0 {
		return
	}

	b.WriteString(`<w:tbl><w:tblPr><w:tblW w:w="5000" w:type="pct"/>` + docxTableBorders + `</w:tblPr><w:tblGrid><w:gridCol w:w="5453"/><w:gridCol w:w="5453"/></w:tblGrid>`)
	for _, row := range Pairs(doc.Items) {
		b.WriteString(`<w:tr>`)
		for _, item := range row {
			b.WriteString(`<w:tc><w:tcPr><w:tcW w:w="2500" w:type="pct"/></w:tcPr>`)
			if item == nil {
				paragraph(b, "")
			} else {
				writeGridCell(b, *item, doc.Options)
			}
			b.WriteString(`</w:tc>`)
		}
		b.WriteString(`</w:tr>`)
	}
	b.WriteString(`</w:tbl>`)
}

func writeGridCell(b *bytes.Buffer, item catalog.PrintItem, options catalog.PrintOptions) {
	paragraph(b, "", run{text: item.Product.Title, bold: true, size: 24})
	if item.Product.Vendor != "" {
		paragraph(b, "", run{text: item.Product.Vendor, color: "6B7280", size: 18})
	}
	for _, variant := range item.Variants {
		runs := []run{{text: variant.Title}}
		if sku := SKU(variant, options); sku != "" {
			runs = append(runs, run{text: " (SKU: " + sku + ")", color: "6B7280"})
		}
		runs = append(runs, run{text: "  "})
		runs = append(runs, priceRuns(DisplayPrice(variant, options))...)
		paragraph(b, "", runs...)
	}
}

func writeCompactBody(b *bytes.Buffer, doc Document) {
	paragraph(b, "", run{text: doc.title() + " (Compact View)", bold: true, size: 32})

	widths := []int{25, 20, 15, 15, 25}
	b.WriteString(`<w:tbl><w:tblPr><w:tblW w:w="5000" w:type="pct"/>` + docxTableBorders + `</w:tblPr><w:tblGrid>`)
	for _, width := range widths {
		fmt.Fprintf(b, `<w:gridCol w:w="%d"/>`, width*109)
	}
	b.WriteString(`</w:tblGrid><w:tr>`)
	for i, header := range []string{"Product", "Variant", "SKU", "Price", "Tags"} {
		cell(b, widths[i], "", "center", run{text: header, bold: true})
	}
	b.WriteString(`</w:tr>`)

	for _, item := range doc.Items {
		tags := strings.Join(VisibleTags(item.Product, doc.SelectedTags), ", ")
		for i, variant := range item.Variants {
			merge := "restart"
			if len(item.Variants) == 1 {
				merge = ""
			} else if i > 0 {
				merge = "continue"
			}

			b.WriteString(`<w:tr>`)
			if i == 0 {
				cell(b, widths[0], merge, "", run{text: item.Product.Title, bold: true})
			} else {
				cell(b, widths[0], merge, "")
			}
			cell(b, widths[1], "", "", run{text: variant.Title})
			cell(b, widths[2], "", "", run{text: SKU(variant, doc.Options)})
			cell(b, widths[3], "", "", priceRuns(DisplayPrice(variant, doc.Options))...)
			if i == 0 {
				cell(b, widths[4], merge, "", run{text: tags})
			} else {
				cell(b, widths[4], merge, "")
			}
			b.WriteString(`</w:tr>`)
		}
	}
	b.WriteString(`</w:tbl>`)
}

func priceRuns(price PriceDisplay) []run {
	if price.Discounted() {
		return []run{
			{text: price.Original, strike: true, color: "808080"},
			{text: " "},
			{text: price.Current, bold: true, color: "FF0000"},
		}
	}
	if price.Unavailable {
		return []run{{text: price.Current, color: "808080"}}
	}
	return []run{{text: price.Current}}
}

func cell(b *bytes.Buffer, widthPct int, vMerge, align string, runs ...run) {
	fmt.Fprintf(b, `<w:tc><w:tcPr><w:tcW w:w="%d" w:type="pct"/>`, widthPct*50)
	if vMerge == "restart" {
		b.WriteString(`<w:vMerge w:val="restart"/>`)
	} else if vMerge == "continue" {
		b.WriteString(`<w:vMerge/>`)
	}
	b.WriteString(`</w:tcPr>`)
	paragraph(b, align, runs...)
	b.WriteString(`</w:tc>`)
}

func paragraph(b *bytes.Buffer, align string, runs ...run) {
	b.WriteString(`<w:p>`)
	if align != "" {
		fmt.Fprintf(b, `<w:pPr><w:jc w:val="%s"/></w:pPr>`, align)
	}
	for _, r := range runs {
		if r.text == "" {
			continue
		}
		b.WriteString(`<w:r>`)
		if r.bold || r.strike || r.color != "" || r.size > 0 {
			b.WriteString(`<w:rPr>`)
			if r.bold {
				b.WriteString(`<w:b/>`)
			}
			if r.strike {
				b.WriteString(`<w:strike/>`)
			}
			if r.color != "" {
				fmt.Fprintf(b, `<w:color w:val="%s"/>`, r.color)
			}
			if r.size > 0 {
				fmt.Fprintf(b, `<w:sz w:val="%d"/>`, r.size)
			}
			b.WriteString(`</w:rPr>`)
		}
		b.WriteString(`<w:t xml:space="preserve">`)
		_ = xml.EscapeText(b, []byte(r.text))
		b.WriteString(`</w:t></w:r>`)
	}
	b.WriteString(`</w:p>`)
}
