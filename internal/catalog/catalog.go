// Package catalog holds the immutable category/item/price snapshot loaded at
// startup and the fuzzy matcher used to resolve typed category names.
package catalog

import (
	"context"
	"sort"
)

// Item is a single orderable position. Prices are whole som.
type Item struct {
	Name  string
	Price int64
}

// Source provides the one-shot catalog fetch performed at process start.
type Source interface {
	Fetch(ctx context.Context) (map[string]map[string]int64, error)
}

// Catalog is a read-only snapshot of categories and their items. Category and
// item listings are sorted lexicographically so keyboards and fuzzy-match tie
// breaking stay deterministic.
type Catalog struct {
	prices     map[string]map[string]int64
	categories []string
	items      map[string][]Item
}

// New builds a Catalog from raw category -> item -> price data. The input maps
// are copied; the snapshot never changes afterwards.
func New(data map[string]map[string]int64) *Catalog {
	c := &Catalog{
		prices: make(map[string]map[string]int64, len(data)),
		items:  make(map[string][]Item, len(data)),
	}

	for category, items := range data {
		priceCopy := make(map[string]int64, len(items))
		sorted := make([]Item, 0, len(items))
		for name, price := range items {
			priceCopy[name] = price
			sorted = append(sorted, Item{Name: name, Price: price})
		}

		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

		c.prices[category] = priceCopy
		c.items[category] = sorted
		c.categories = append(c.categories, category)
	}

	sort.Strings(c.categories)

	return c
}

// Load fetches the catalog from src and freezes it into a snapshot.
func Load(ctx context.Context, src Source) (*Catalog, error) {
	data, err := src.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	return New(data), nil
}

// Categories returns all category names in lexicographic order.
func (c *Catalog) Categories() []string {
	out := make([]string, len(c.categories))
	copy(out, c.categories)
	return out
}

// HasCategory reports whether the category exists.
func (c *Catalog) HasCategory(category string) bool {
	_, ok := c.prices[category]
	return ok
}

// Items returns the category's items sorted by name, or nil for an unknown
// category.
func (c *Catalog) Items(category string) []Item {
	items, ok := c.items[category]
	if !ok {
		return nil
	}

	out := make([]Item, len(items))
	copy(out, items)
	return out
}

// Price looks up the price of an item within a category.
func (c *Catalog) Price(category, item string) (int64, bool) {
	items, ok := c.prices[category]
	if !ok {
		return 0, false
	}

	price, ok := items[item]
	return price, ok
}
