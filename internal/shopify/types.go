package shopify

import (
	"strings"
	"time"

	"github.com/ppchow/pettington-product-navigator/internal/catalog"
)

type money struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

type image struct {
	URL     string  `json:"url"`
	AltText *string `json:"altText"`
	Width   int     `json:"width"`
	Height  int     `json:"height"`
}

type collectionNode struct {
	ID     string `json:"id"`
	Handle string `json:"handle"`
	Title  string `json:"title"`
}

type collectionsData struct {
	Collections struct {
		Edges []struct {
			Node collectionNode `json:"node"`
		} `json:"edges"`
	} `json:"collections"`
}

type variantNode struct {
	ID               string  `json:"id"`
	Title            string  `json:"title"`
	SKU              *string `json:"sku"`
	AvailableForSale bool    `json:"availableForSale"`
	Price            *money  `json:"price"`
	CompareAtPrice   *money  `json:"compareAtPrice"`
}

type productNode struct {
	ID            string   `json:"id"`
	Handle        string   `json:"handle"`
	Title         string   `json:"title"`
	Vendor        string   `json:"vendor"`
	Description   string   `json:"description"`
	Tags          []string `json:"tags"`
	FeaturedImage *image   `json:"featuredImage"`
	Images        struct {
		Edges []struct {
			Node image `json:"node"`
		} `json:"edges"`
	} `json:"images"`
	Variants struct {
		Edges []struct {
			Node variantNode `json:"node"`
		} `json:"edges"`
	} `json:"variants"`
}

type collectionProductsData struct {
	Collection *struct {
		collectionNode
		Products struct {
			Edges []struct {
				Node *productNode `json:"node"`
			} `json:"edges"`
		} `json:"products"`
	} `json:"collection"`
}

type metaobjectData struct {
	Metaobject *struct {
		Handle    string    `json:"handle"`
		UpdatedAt time.Time `json:"updatedAt"`
		Fields    []struct {
			Key   string  `json:"key"`
			Value *string `json:"value"`
		} `json:"fields"`
	} `json:"metaobject"`
}

func (c collectionNode) toCatalog() catalog.Collection {
	return catalog.Collection{ID: c.ID, Handle: c.Handle, Title: c.Title}
}

func (i image) toCatalog() catalog.Image {
	alt := ""
	if i.AltText != nil {
		alt = *i.AltText
	}
	return catalog.Image{URL: i.URL, AltText: alt, Width: i.Width, Height: i.Height}
}

func (p productNode) toCatalog(collectionHandle string) catalog.Product {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}

	images := make([]catalog.Image, 0, len(p.Images.Edges)+1)
	if p.FeaturedImage != nil && p.FeaturedImage.URL != "" {
		images = append(images, p.FeaturedImage.toCatalog())
	}
	for _, edge := range p.Images.Edges {
		if edge.Node.URL == "" || (p.FeaturedImage != nil && edge.Node.URL == p.FeaturedImage.URL) {
			continue
		}
		images = append(images, edge.Node.toCatalog())
	}

	variants := make([]catalog.Variant, 0, len(p.Variants.Edges))
	for _, edge := range p.Variants.Edges {
		variants = append(variants, edge.Node.toCatalog())
	}

	return catalog.Product{
		ID:          p.ID,
		Handle:      p.Handle,
		Title:       p.Title,
		Vendor:      strings.TrimSpace(p.Vendor),
		Description: p.Description,
		Tags:        tags,
		Collection:  collectionHandle,
		Images:      images,
		Variants:    variants,
	}
}

func (v variantNode) toCatalog() catalog.Variant {
	variant := catalog.Variant{
		ID:        v.ID,
		Title:     v.Title,
		Available: v.AvailableForSale,
	}
	if v.SKU != nil {
		variant.SKU = *v.SKU
	}
	if v.Price != nil {
		variant.Price = v.Price.Amount
	}
	if v.CompareAtPrice != nil {
		variant.CompareAtPrice = v.CompareAtPrice.Amount
	}
	return variant
}
