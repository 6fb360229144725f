package catalog

// Package catalog provides navigation.yaml parsing functionality.

import (
	_ "embed"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

//go:embed navigation.yaml
var defaultNavigationYAML []byte

type NavigationConfig struct {
	DefaultCollection  string              `yaml:"default_collection"`
	AllowedCollections []string            `yaml:"allowed_collections"`
	CollectionOrder    []string            `yaml:"collection_order"`
	CollectionTitles   map[string]string   `yaml:"collection_titles"`
	CollectionTags     map[string][]string `yaml:"collection_tags"`
	HideVendorFilter   []string            `yaml:"hide_vendor_filter"`
	PetTypes           []string            `yaml:"pet_types"`
	DiscountMarkers    Markers             `yaml:"discount_markers"`
}

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(content []byte) (*NavigationConfig, error) {
	var config NavigationConfig
	if err := yaml.Unmarshal(content, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return &config, nil
}

func (p *Parser) ParseFromString(content string) (*NavigationConfig, error) {
	return p.Parse([]byte(content))
}

// DefaultNavigationConfig returns the built-in storefront navigation.
func DefaultNavigationConfig() (*NavigationConfig, error) {
	return NewParser().Parse(defaultNavigationYAML)
}

// Navigation answers the storefront questions the config encodes: which
// collections are surfaced, in what order, under which title, and which
// filter chips each one shows.
type Navigation struct {
	config NavigationConfig
}

func NewNavigation(config *NavigationConfig) *Navigation {
	if config == nil {
		config = &NavigationConfig{}
	}
	return &Navigation{config: *config}
}

func (n *Navigation) DefaultCollection() string {
	if n.config.DefaultCollection != "" {
		return n.config.DefaultCollection
	}
	if len(n.config.AllowedCollections) > 0 {
		return n.config.AllowedCollections[0]
	}
	return ""
}

func (n *Navigation) IsAllowed(handle string) bool {
	return slices.Contains(n.config.AllowedCollections, handle)
}

func (n *Navigation) AllowedHandles() []string {
	return slices.Clone(n.config.AllowedCollections)
}

// Collections keeps the allowed collections and sorts them by priority.
func (n *Navigation) Collections(collections []Collection) []Collection {
	return SortCollections(FilterAllowed(collections, n.config.AllowedCollections), n.config.CollectionOrder)
}

func (n *Navigation) DisplayTitle(collection Collection) string {
	return DisplayTitle(collection, n.config.CollectionTitles)
}

// TitleForHandle is used when only the handle is known, e.g. for a cached
// product list whose collection record is not loaded.
func (n *Navigation) TitleForHandle(handle string) string {
	return DisplayTitle(Collection{Handle: handle, Title: handle}, n.config.CollectionTitles)
}

func (n *Navigation) TagChips(handle string) []string {
	return slices.Clone(n.config.CollectionTags[handle])
}

func (n *Navigation) ShowVendorFilter(handle string) bool {
	return !slices.Contains(n.config.HideVendorFilter, handle)
}

func (n *Navigation) PetTypes() []string {
	return slices.Clone(n.config.PetTypes)
}

func (n *Navigation) Markers() Markers {
	return n.config.DiscountMarkers
}
