package catalog

import (
	"strings"

	"go.uber.org/zap"
)

// Catalog holds all loaded item definitions indexed by id, lowercased name
// and synonym, tag, and type. It is read-only after loading completes.
type Catalog struct {
	logger *zap.Logger
	items  map[string]*ItemDef
	names  map[string]string   // lowercased name/synonym → item id
	tags   map[string][]string // tag → item ids
	types  map[ItemType][]string
}

// New returns an empty Catalog.
//
// Precondition: logger must not be nil.
// Postcondition: all internal indexes are initialised.
func New(logger *zap.Logger) *Catalog {
	return &Catalog{
		logger: logger,
		items:  make(map[string]*ItemDef),
		names:  make(map[string]string),
		tags:   make(map[string][]string),
		types:  make(map[ItemType][]string),
	}
}

// Register adds d to the catalog, indexing its name, synonyms, tags, and type.
// A duplicate id overwrites the previous definition with a warning.
//
// Precondition: d is non-nil, normalized, and valid.
// Postcondition: ByID(d.ID) returns d; every lowercased synonym and the name
// itself resolve via ByName; d.ID appears in each tag's index.
func (c *Catalog) Register(d *ItemDef) {
	if _, exists := c.items[d.ID]; exists {
		c.logger.Warn("duplicate item id overwrites existing definition",
			zap.String("item_id", d.ID),
		)
		c.unindex(d.ID)
	}
	c.items[d.ID] = d

	c.names[strings.ToLower(d.Name)] = d.ID
	for _, syn := range d.Synonyms {
		c.names[strings.ToLower(syn)] = d.ID
	}
	for _, tag := range d.Tags {
		c.tags[tag] = append(c.tags[tag], d.ID)
	}
	c.types[d.Type] = append(c.types[d.Type], d.ID)
}

// unindex removes id from the name, tag, and type indexes before
// re-registration, so a replaced definition leaves no stale entries behind.
func (c *Catalog) unindex(id string) {
	old := c.items[id]
	delete(c.names, strings.ToLower(old.Name))
	for _, syn := range old.Synonyms {
		delete(c.names, strings.ToLower(syn))
	}
	for _, tag := range old.Tags {
		c.tags[tag] = removeID(c.tags[tag], id)
	}
	c.types[old.Type] = removeID(c.types[old.Type], id)
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// ByID returns the ItemDef for the given id and whether it was found.
func (c *Catalog) ByID(id string) (*ItemDef, bool) {
	d, ok := c.items[id]
	return d, ok
}

// ByName looks up an item by exact name or synonym, case-insensitively.
//
// Postcondition: ok is true iff the lowercased name is indexed.
func (c *Catalog) ByName(name string) (*ItemDef, bool) {
	id, ok := c.names[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, false
	}
	return c.items[id], true
}

// Resolve looks up an item by name first, then by id. It is the lookup used
// by player-facing commands, which accept either form.
func (c *Catalog) Resolve(nameOrID string) (*ItemDef, bool) {
	if d, ok := c.ByName(nameOrID); ok {
		return d, true
	}
	return c.ByID(nameOrID)
}

// ByTag returns all items carrying the given tag.
func (c *Catalog) ByTag(tag string) []*ItemDef {
	return c.collect(c.tags[strings.ToLower(tag)])
}

// ByType returns all items of the given type.
func (c *Catalog) ByType(t ItemType) []*ItemDef {
	return c.collect(c.types[t])
}

// Search returns all items whose name, synonyms, description, or tags contain
// the given substring, case-insensitively.
func (c *Catalog) Search(substr string) []*ItemDef {
	needle := strings.ToLower(strings.TrimSpace(substr))
	if needle == "" {
		return nil
	}
	var out []*ItemDef
	for _, d := range c.items {
		if c.matches(d, needle) {
			out = append(out, d)
		}
	}
	return out
}

func (c *Catalog) matches(d *ItemDef, needle string) bool {
	if strings.Contains(strings.ToLower(d.Name), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(d.Description), needle) {
		return true
	}
	for _, syn := range d.Synonyms {
		if strings.Contains(strings.ToLower(syn), needle) {
			return true
		}
	}
	for _, tag := range d.Tags {
		if strings.Contains(tag, needle) {
			return true
		}
	}
	return false
}

func (c *Catalog) collect(ids []string) []*ItemDef {
	if len(ids) == 0 {
		return nil
	}
	out := make([]*ItemDef, 0, len(ids))
	for _, id := range ids {
		if d, ok := c.items[id]; ok {
			out = append(out, d)
		}
	}
	return out
}

// All returns every registered item definition in unspecified order.
func (c *Catalog) All() []*ItemDef {
	out := make([]*ItemDef, 0, len(c.items))
	for _, d := range c.items {
		out = append(out, d)
	}
	return out
}

// Len returns the number of registered item definitions.
func (c *Catalog) Len() int {
	return len(c.items)
}
