// Package shopify is a minimal Shopify Storefront GraphQL client for the
// catalog reads the navigator needs.
package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/machinebox/graphql"

	"github.com/ppchow/pettington-product-navigator/internal/catalog"
)

const (
	DefaultAPIVersion      = "2024-01"
	DefaultPageSize        = 250
	DefaultVariantPageSize = 100

	maxErrorBodyLength = 512
)

type Config struct {
	StoreDomain     string
	AccessToken     string
	APIVersion      string
	PageSize        int
	VariantPageSize int
	SettingsType    string
	SettingsHandle  string
}

// RequestObserver receives the outcome of every storefront round trip.
type RequestObserver interface {
	ObserveStorefrontRequest(operation string, duration time.Duration, err error)
}

type Client struct {
	endpoint        string
	accessToken     string
	pageSize        int
	variantPageSize int
	settingsType    string
	settingsHandle  string
	httpClient      *http.Client
	gql             *graphql.Client
	observer        RequestObserver
	logger          *slog.Logger
}

func NewClient(cfg Config, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	domain := strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(cfg.StoreDomain), "https://"), "/")
	if domain == "" {
		return nil, fmt.Errorf("store domain is required")
	}
	if strings.TrimSpace(cfg.AccessToken) == "" {
		return nil, fmt.Errorf("storefront access token is required")
	}

	version := cfg.APIVersion
	if version == "" {
		version = DefaultAPIVersion
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	variantPageSize := cfg.VariantPageSize
	if variantPageSize <= 0 {
		variantPageSize = DefaultVariantPageSize
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "shopify")

	endpoint := fmt.Sprintf("https://%s/api/%s/graphql.json", domain, version)
	classifying := newStorefrontHTTPClient(httpClient, logger)
	return &Client{
		endpoint:        endpoint,
		accessToken:     cfg.AccessToken,
		pageSize:        pageSize,
		variantPageSize: variantPageSize,
		settingsType:    cfg.SettingsType,
		settingsHandle:  cfg.SettingsHandle,
		httpClient:      classifying,
		gql:             graphql.NewClient(endpoint, graphql.WithHTTPClient(classifying)),
		logger:          logger,
	}, nil
}

// WithObserver returns a copy of the client reporting to observer.
func (c *Client) WithObserver(observer RequestObserver) *Client {
	clone := *c
	clone.observer = observer
	return &clone
}

// WithEndpoint returns a copy of the client that talks to endpoint instead of
// the storefront derived from the store domain.
func (c *Client) WithEndpoint(endpoint string) *Client {
	clone := *c
	clone.endpoint = endpoint
	clone.gql = graphql.NewClient(endpoint, graphql.WithHTTPClient(c.httpClient))
	return &clone
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

// SettingsConfigured reports whether a discount settings metaobject is set up.
func (c *Client) SettingsConfigured() bool {
	return c.settingsType != "" && c.settingsHandle != ""
}

func (c *Client) Collections(ctx context.Context) ([]catalog.Collection, error) {
	var data collectionsData
	err := c.execute(ctx, "Collections", collectionsQuery, map[string]any{
		"first": c.pageSize,
	}, &data)
	if err != nil {
		return nil, err
	}

	collections := make([]catalog.Collection, 0, len(data.Collections.Edges))
	for _, edge := range data.Collections.Edges {
		if edge.Node.Handle == "" {
			continue
		}
		collections = append(collections, edge.Node.toCatalog())
	}
	return collections, nil
}

// ProductsByCollection lists the products of the collection with handle. The
// handle is sent as a GraphQL variable.
func (c *Client) ProductsByCollection(ctx context.Context, handle string) ([]catalog.Product, error) {
	var data collectionProductsData
	err := c.execute(ctx, "CollectionProducts", collectionProductsQuery, map[string]any{
		"handle":        handle,
		"first":         c.pageSize,
		"variantsFirst": c.variantPageSize,
	}, &data)
	if err != nil {
		return nil, err
	}
	if data.Collection == nil {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, handle)
	}

	products := make([]catalog.Product, 0, len(data.Collection.Products.Edges))
	for _, edge := range data.Collection.Products.Edges {
		if edge.Node == nil {
			continue
		}
		products = append(products, edge.Node.toCatalog(handle))
	}
	return products, nil
}

// DiscountSettings reads the discount settings metaobject.
func (c *Client) DiscountSettings(ctx context.Context) (catalog.DiscountSettings, error) {
	if !c.SettingsConfigured() {
		return catalog.DiscountSettings{}, fmt.Errorf("%w: metaobject type and handle are not configured", ErrSettingsNotFound)
	}

	var data metaobjectData
	err := c.execute(ctx, "DiscountSettings", discountSettingsQuery, map[string]any{
		"type":   c.settingsType,
		"handle": c.settingsHandle,
	}, &data)
	if err != nil {
		return catalog.DiscountSettings{}, err
	}
	if data.Metaobject == nil {
		return catalog.DiscountSettings{}, fmt.Errorf("%w: %s/%s", ErrSettingsNotFound, c.settingsType, c.settingsHandle)
	}

	fields := make([]catalog.MetaobjectField, 0, len(data.Metaobject.Fields))
	for _, field := range data.Metaobject.Fields {
		value := ""
		if field.Value != nil {
			value = *field.Value
		}
		fields = append(fields, catalog.MetaobjectField{Key: field.Key, Value: value})
	}

	settings, err := catalog.ParseDiscountSettings(fields)
	if err != nil {
		return catalog.DiscountSettings{}, err
	}
	settings.UpdatedAt = data.Metaobject.UpdatedAt
	return settings, nil
}

func (c *Client) execute(ctx context.Context, operation, query string, variables map[string]any, out any) (err error) {
	start := time.Now()
	defer func() {
		if c.observer != nil {
			c.observer.ObserveStorefrontRequest(operation, time.Since(start), err)
		}
	}()

	req := graphql.NewRequest(query)
	for name, value := range variables {
		req.Var(name, value)
	}
	req.Header.Set("X-Shopify-Storefront-Access-Token", c.accessToken)

	var data json.RawMessage
	if err := c.gql.Run(ctx, req, &data); err != nil {
		return classify(ctx, operation, err)
	}
	if len(data) == 0 || string(data) == "null" {
		return fmt.Errorf("%w: %s: missing data", ErrInvalidResponse, operation)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidResponse, operation, err)
	}
	return nil
}

// classify maps a graphql client error onto the package's error kinds.
func classify(ctx context.Context, operation string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(ctxErr, context.DeadlineExceeded) {
		return fmt.Errorf("%s request canceled: %w", operation, ctxErr)
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	if IsUnreachable(err) {
		return fmt.Errorf("%s: %w", operation, err)
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return fmt.Errorf("%w: %s: %v", ErrInvalidResponse, operation, err)
	}

	// The graphql client surfaces the first entry of the errors array.
	if message, ok := strings.CutPrefix(err.Error(), "graphql: "); ok {
		return &GraphQLError{Operation: operation, Messages: []string{message}}
	}
	return fmt.Errorf("%w: %s: %v", ErrInvalidResponse, operation, err)
}
