// internal/catalog/catalog.go
//
// Catalog: the canonical, deduplicated company list with lookups by slug and
// by id, plus the eligible candidate pool the daily target is drawn from.
//
// Constraints:
//   • id and slug are each unique; New reports every duplicate at once.
//   • Entity order is the dataset order and never changes after New, so pool
//     indices are stable for a given dataset version.
//   • A Catalog is immutable and safe for concurrent readers.

package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/robalobadob/ycdle/internal/apperr"
)

// DefaultEligibleBadge marks the companies a daily target may be drawn from.
const DefaultEligibleBadge = "top_company"

// Catalog is an immutable, indexed list of entities.
type Catalog struct {
	version  string
	entities []Entity
	bySlug   map[string]int
	byID     map[string]int
}

// New indexes entities under version. Entities are used as given; callers
// sanitize first (Load does).
func New(version string, entities []Entity) (*Catalog, error) {
	slugAt := make(map[string][]int, len(entities))
	idAt := make(map[string][]int, len(entities))
	for i, e := range entities {
		if e.Slug != "" {
			slugAt[e.Slug] = append(slugAt[e.Slug], i)
		}
		if e.ID != "" {
			idAt[e.ID] = append(idAt[e.ID], i)
		}
	}

	var problems []string
	problems = append(problems, duplicates("slug", slugAt)...)
	problems = append(problems, duplicates("id", idAt)...)
	if len(problems) > 0 {
		return nil, apperr.New("catalog.index", apperr.KindInvalidInput,
			"duplicates found: "+strings.Join(problems, "; "))
	}

	c := &Catalog{
		version:  version,
		entities: append([]Entity(nil), entities...),
		bySlug:   make(map[string]int, len(slugAt)),
		byID:     make(map[string]int, len(idAt)),
	}
	for k, at := range slugAt {
		c.bySlug[k] = at[0]
	}
	for k, at := range idAt {
		c.byID[k] = at[0]
	}
	return c, nil
}

// duplicates lists keys that occur more than once, sorted for stable output.
func duplicates(field string, at map[string][]int) []string {
	var out []string
	for k, idx := range at {
		if len(idx) > 1 {
			out = append(out, fmt.Sprintf("%s %q at indices %v", field, k, idx))
		}
	}
	sort.Strings(out)
	return out
}

// Version is the dataset version tag stamped into game state.
func (c *Catalog) Version() string { return c.version }

// Len returns the number of entities.
func (c *Catalog) Len() int { return len(c.entities) }

// At returns the entity at index i. It panics if i is out of range.
func (c *Catalog) At(i int) Entity { return c.entities[i] }

// All returns a copy of the entity list in catalog order.
func (c *Catalog) All() []Entity { return append([]Entity(nil), c.entities...) }

// BySlug looks up an entity by slug.
func (c *Catalog) BySlug(slug string) (Entity, bool) {
	i, ok := c.bySlug[slug]
	if !ok {
		return Entity{}, false
	}
	return c.entities[i], true
}

// ByID looks up an entity by its canonical string id.
func (c *Catalog) ByID(id string) (Entity, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Entity{}, false
	}
	return c.entities[i], true
}

// Eligible returns the candidate pool: entities carrying badge, in catalog
// order, under the same version. An empty badge keeps every entity.
func (c *Catalog) Eligible(badge string) *Catalog {
	if strings.TrimSpace(badge) == "" {
		return c
	}
	keep := make([]Entity, 0, len(c.entities))
	for _, e := range c.entities {
		if e.HasBadge(badge) {
			keep = append(keep, e)
		}
	}
	// A subset of a valid catalog cannot contain duplicates.
	pool, _ := New(c.version, keep)
	return pool
}
