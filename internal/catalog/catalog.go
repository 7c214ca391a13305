// Package catalog holds the product catalog used to name products and
// supply target ROAS values.
package catalog

import (
	"sort"
	"strings"
	"sync"
	"time"

	"adreport/internal/config"
	"adreport/internal/extract"
	"adreport/internal/models"
)

// Catalog is an in-memory product catalog safe for concurrent use.
type Catalog struct {
	mu       sync.RWMutex
	products map[string]models.Product
	loadedAt time.Time
}

// New creates a catalog holding the given products.
func New(products []models.Product) *Catalog {
	c := &Catalog{}
	c.Replace(products)
	return c
}

// FromRules converts the rules file products to catalog entries with normalized codes.
func FromRules(rules *config.Rules) []models.Product {
	products := make([]models.Product, 0, len(rules.Products))
	for _, p := range rules.Products {
		products = append(products, models.Product{
			Code:   extract.NormalizeCode(p.Code),
			Name:   strings.TrimSpace(p.Name),
			Target: p.Target,
		})
	}
	return products
}

// Lookup returns the product for a code.
func (c *Catalog) Lookup(code string) (models.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.products[extract.NormalizeCode(code)]
	return p, ok
}

// List returns every product ordered by code.
func (c *Catalog) List() []models.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.Product, 0, len(c.products))
	for _, p := range c.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Replace swaps the whole catalog, e.g. after a refresh from the database.
func (c *Catalog) Replace(products []models.Product) {
	m := make(map[string]models.Product, len(products))
	for _, p := range products {
		p.Code = extract.NormalizeCode(p.Code)
		if p.Code == "" {
			continue
		}
		m[p.Code] = p
	}

	c.mu.Lock()
	c.products = m
	c.loadedAt = time.Now()
	c.mu.Unlock()
}

// Put adds or replaces one product.
func (c *Catalog) Put(p models.Product) {
	p.Code = extract.NormalizeCode(p.Code)
	c.mu.Lock()
	c.products[p.Code] = p
	c.mu.Unlock()
}

// Delete removes a product and reports whether it existed.
func (c *Catalog) Delete(code string) bool {
	code = extract.NormalizeCode(code)
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.products[code]
	delete(c.products, code)
	return ok
}

// Len returns the number of products.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.products)
}

// LoadedAt returns when the catalog was last replaced.
func (c *Catalog) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedAt
}
