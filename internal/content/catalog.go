package content

import (
	"sort"

	"github.com/example/quizbot/pkg/models"
)

// Catalog is the immutable set of loaded tests. It is safe for concurrent reads.
type Catalog struct {
	tests map[string]*models.TestDefinition
	order []string
}

// NewCatalog builds a catalog from definitions, ordered by slug
func NewCatalog(defs ...*models.TestDefinition) *Catalog {
	c := &Catalog{tests: make(map[string]*models.TestDefinition, len(defs))}
	for _, d := range defs {
		c.tests[d.Slug] = d
	}
	for slug := range c.tests {
		c.order = append(c.order, slug)
	}
	sort.Strings(c.order)
	return c
}

// Get returns the test with the given slug
func (c *Catalog) Get(slug string) (*models.TestDefinition, bool) {
	t, ok := c.tests[slug]
	return t, ok
}

// List returns the menu entries in slug order
func (c *Catalog) List() []models.TestSummary {
	out := make([]models.TestSummary, 0, len(c.order))
	for _, slug := range c.order {
		out = append(out, models.TestSummary{Slug: slug, Title: c.tests[slug].Title})
	}
	return out
}

// Len returns the number of tests
func (c *Catalog) Len() int {
	return len(c.order)
}
