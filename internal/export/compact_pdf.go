package export

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/johnfercher/maroto/pkg/color"
	"github.com/johnfercher/maroto/pkg/consts"
	"github.com/johnfercher/maroto/pkg/pdf"
	"github.com/johnfercher/maroto/pkg/props"
)

const compactFontFamily = "navigator"

// CompactPDF renders the compact product table with thumbnails.
type CompactPDF struct {
	thumbnails *Thumbnailer
	// fontPath points at a TTF with CJK glyphs; without it the core font is
	// used and non-Latin text will not render.
	fontPath string
}

func NewCompactPDF(thumbnails *Thumbnailer, fontPath string) *CompactPDF {
	return &CompactPDF{thumbnails: thumbnails, fontPath: fontPath}
}

func (c *CompactPDF) Render(ctx context.Context, doc Document) ([]byte, error) {
	var thumbs map[string][]byte
	if c.thumbnails != nil {
		thumbs = c.thumbnails.Thumbnails(ctx, doc.Items)
	}

	m := pdf.NewMaroto(consts.Portrait, consts.A4)
	m.SetPageMargins(10, 10, 10)
	family := consts.Arial
	if c.fontPath != "" {
		m.AddUTF8Font(compactFontFamily, consts.Normal, c.fontPath)
		m.AddUTF8Font(compactFontFamily, consts.Bold, c.fontPath)
		m.SetDefaultFontFamily(compactFontFamily)
		family = compactFontFamily
	}

	darkGray := color.Color{Red: 38, Green: 38, Blue: 34}
	mediumGray := color.Color{Red: 128, Green: 128, Blue: 128}
	red := color.Color{Red: 220, Green: 38, Blue: 38}

	m.Row(12, func() {
		m.Col(12, func() {
			m.Text(doc.title()+" (Compact View)", props.Text{Size: 16, Style: consts.Bold, Color: darkGray, Family: family})
		})
	})

	header := []struct {
		label string
		width uint
	}{{"Image", 2}, {"Product", 3}, {"Variant", 2}, {"SKU", 2}, {"Price", 1}, {"Tags", 2}}
	m.Row(7, func() {
		for _, h := range header {
			m.Col(h.width, func() {
				m.Text(h.label, props.Text{Size: 9, Style: consts.Bold, Align: consts.Center, Family: family})
			})
		}
	})
	m.Line(1)

	var renderErr error
	for _, item := range doc.Items {
		tags := strings.Join(VisibleTags(item.Product, doc.SelectedTags), ", ")
		for i, variant := range item.Variants {
			price := DisplayPrice(variant, doc.Options)
			m.Row(22, func() {
				m.Col(2, func() {
					if i > 0 {
						return
					}
					thumb, ok := thumbs[item.Product.ID]
					if !ok {
						m.Text("No Image", props.Text{Size: 7, Align: consts.Center, Color: mediumGray, Family: family})
						return
					}
					if err := m.Base64Image(base64.StdEncoding.EncodeToString(thumb), consts.Jpg, props.Rect{Center: true, Percent: 90}); err != nil && renderErr == nil {
						renderErr = fmt.Errorf("failed to add image for %s: %w", item.Product.ID, err)
					}
				})
				m.Col(3, func() {
					if i == 0 {
						m.Text(item.Product.Title, props.Text{Size: 8, Style: consts.Bold, Family: family})
					}
				})
				m.Col(2, func() {
					m.Text(variant.Title, props.Text{Size: 8, Family: family})
				})
				m.Col(2, func() {
					m.Text(SKU(variant, doc.Options), props.Text{Size: 8, Family: family})
				})
				m.Col(1, func() {
					if price.Discounted() {
						m.Text(price.Original, props.Text{Size: 7, Color: mediumGray, Family: family})
						m.Text(price.Current, props.Text{Top: 4, Size: 8, Style: consts.Bold, Color: red, Family: family})
						return
					}
					if price.Unavailable {
						m.Text(price.Current, props.Text{Size: 7, Color: mediumGray, Family: family})
						return
					}
					m.Text(price.Current, props.Text{Size: 8, Family: family})
				})
				m.Col(2, func() {
					if i == 0 {
						m.Text(tags, props.Text{Size: 7, Family: family})
					}
				})
			})
		}
		m.Line(0.5)
	}
	if renderErr != nil {
		return nil, renderErr
	}

	buf, err := m.Output()
	if err != nil {
		return nil, fmt.Errorf("failed to generate compact PDF: %w", err)
	}
	return buf.Bytes(), nil
}
