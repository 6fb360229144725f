package shopify

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

var collectionsQuery = mustParseQuery("Collections", `
query Collections($first: Int!) {
  collections(first: $first) {
    edges {
      node {
        id
        handle
        title
      }
    }
  }
}`)

var collectionProductsQuery = mustParseQuery("CollectionProducts", `
query CollectionProducts($handle: String!, $first: Int!, $variantsFirst: Int!) {
  collection(handle: $handle) {
    id
    handle
    title
    products(first: $first) {
      edges {
        node {
          id
          handle
          title
          vendor
          description
          tags
          featuredImage {
            url
            altText
            width
            height
          }
          images(first: 5) {
            edges {
              node {
                url
                altText
                width
                height
              }
            }
          }
          variants(first: $variantsFirst) {
            edges {
              node {
                id
                title
                sku
                availableForSale
                price {
                  amount
                  currencyCode
                }
                compareAtPrice {
                  amount
                  currencyCode
                }
              }
            }
          }
        }
      }
    }
  }
}`)

var discountSettingsQuery = mustParseQuery("DiscountSettings", `
query DiscountSettings($type: String!, $handle: String!) {
  metaobject(handle: {type: $type, handle: $handle}) {
    handle
    updatedAt
    fields {
      key
      value
    }
  }
}`)

// parseQuery checks that query is a single named operation.
func parseQuery(name, query string) (string, error) {
	doc, err := parser.ParseQuery(&ast.Source{Name: name, Input: query})
	if err != nil {
		return "", fmt.Errorf("failed to parse %s query: %w", name, err)
	}
	if len(doc.Operations) != 1 {
		return "", fmt.Errorf("%s query must contain exactly one operation, got %d", name, len(doc.Operations))
	}
	if op := doc.Operations[0]; op.Name != name {
		return "", fmt.Errorf("%s query declares operation %q", name, op.Name)
	}
	return query, nil
}

func mustParseQuery(name, query string) string {
	parsed, err := parseQuery(name, query)
	if err != nil {
		panic(err)
	}
	return parsed
}
