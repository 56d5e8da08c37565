package presenter

import (
	"errors"
	"fmt"

	"TraderExplorer/internal/viewmodel"
)

// ErrUnknownView is returned for names outside the catalog.
var ErrUnknownView = errors.New("unknown view")

type constructor func(viewmodel.Fetcher, *Formatter, ...viewmodel.Option) View

// NavItem is one entry of the dashboard navigation.
type NavItem struct {
	Name  string
	Title string
	Path  string
}

// Catalog creates independent view instances. Views never share state.
type Catalog struct {
	fetcher  viewmodel.Fetcher
	format   *Formatter
	observer viewmodel.Observer
}

var catalogOrder = []struct {
	name  string
	title string
	path  string
	new   constructor
}{
	{ViewOverview, "Overview", "/", NewOverview},
	{ViewArchetypes, "Archetypes", "/archetypes", NewArchetypes},
	{ViewFootprint, "Footprint", "/footprint", NewFootprint},
	{ViewLabels, "Labels", "/labels", NewLabels},
	{ViewTopics, "Topics", "/topics", NewTopics},
}

// NewCatalog creates a catalog. observer may be nil.
func NewCatalog(fetcher viewmodel.Fetcher, fm *Formatter, observer viewmodel.Observer) *Catalog {
	return &Catalog{fetcher: fetcher, format: fm, observer: observer}
}

// New creates a fresh, unmounted view.
func (c *Catalog) New(name string) (View, error) {
	for _, e := range catalogOrder {
		if e.name != name {
			continue
		}
		var opts []viewmodel.Option
		if c.observer != nil {
			opts = append(opts, viewmodel.WithObserver(c.observer))
		}
		return e.new(c.fetcher, c.format, opts...), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownView, name)
}

// Names lists views in navigation order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(catalogOrder))
	for _, e := range catalogOrder {
		names = append(names, e.name)
	}
	return names
}

// Nav returns the navigation entries.
func (c *Catalog) Nav() []NavItem {
	items := make([]NavItem, 0, len(catalogOrder))
	for _, e := range catalogOrder {
		items = append(items, NavItem{Name: e.name, Title: e.title, Path: e.path})
	}
	return items
}
