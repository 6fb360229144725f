// Package export renders the print selection as a print page, Word documents
// and PDFs.
package export

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/ppchow/pettington-product-navigator/internal/catalog"
)

var ErrUnknownLayout = errors.New("unknown export layout")

type Layout string

const (
	LayoutGrid    Layout = "grid"
	LayoutCompact Layout = "compact"
	LayoutPrint   Layout = "print"
)

// ParseDOCXLayout accepts grid or compact; empty means grid.
func ParseDOCXLayout(value string) (Layout, error) {
	switch Layout(value) {
	case "", LayoutGrid:
		return LayoutGrid, nil
	case LayoutCompact:
		return LayoutCompact, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownLayout, value)
	}
}

// ParsePDFLayout accepts print or compact; empty means print.
func ParsePDFLayout(value string) (Layout, error) {
	switch Layout(value) {
	case "", LayoutPrint:
		return LayoutPrint, nil
	case LayoutCompact:
		return LayoutCompact, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownLayout, value)
	}
}

// Document is everything an export needs: the selected items in list order,
// the print flags and the tag chips active at export time.
type Document struct {
	Title        string
	Items        []catalog.PrintItem
	Options      catalog.PrintOptions
	SelectedTags []string
	GeneratedAt  time.Time
}

// Pairs groups items two per row. The second cell of the last row is nil for
// an odd count.
func Pairs(items []catalog.PrintItem) [][2]*catalog.PrintItem {
	rows := make([][2]*catalog.PrintItem, 0, (len(items)+1)/2)
	for i := 0; i < len(items); i += 2 {
		var row [2]*catalog.PrintItem
		row[0] = &items[i]
		if i+1 < len(items) {
			row[1] = &items[i+1]
		}
		rows = append(rows, row)
	}
	return rows
}

// VisibleTags keeps the product tags that are among the selected tag chips.
func VisibleTags(product catalog.Product, selected []string) []string {
	tags := make([]string, 0, len(product.Tags))
	for _, tag := range product.Tags {
		if slices.Contains(selected, tag) {
			tags = append(tags, tag)
		}
	}
	return tags
}

func (d Document) VariantCount() int {
	total := 0
	for _, item := range d.Items {
		total += len(item.Variants)
	}
	return total
}

func (d Document) title() string {
	if d.Title != "" {
		return d.Title
	}
	return "Product List"
}
