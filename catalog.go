package integra

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed events.yaml
var defaultEvents []byte

// EventCatalog resolves event codes into their descriptions.
type EventCatalog interface {
	Lookup(code int, restore bool) (EventDescription, bool)
}

type EventDescription struct {
	// Category is the id of the long description group of the event.
	Category int    `yaml:"category"`
	Text     string `yaml:"text"`
}

type catalogEntry struct {
	Code             int  `yaml:"code"`
	Restore          bool `yaml:"restore"`
	EventDescription `yaml:",inline"`
}

type catalogKey struct {
	code    int
	restore bool
}

// Catalog is a read-only EventCatalog.
type Catalog struct {
	entries map[catalogKey]EventDescription
}

var _ EventCatalog = (*Catalog)(nil)

// LoadCatalog reads a YAML list of {code, restore, category, text} entries.
// When a (code, restore) pair is repeated, the last entry wins.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var entries []catalogEntry
	if err := yaml.NewDecoder(r).Decode(&entries); err != nil && err != io.EOF {
		return nil, fmt.Errorf("could not load event catalog: %w", err)
	}

	c := &Catalog{entries: make(map[catalogKey]EventDescription, len(entries))}
	for _, e := range entries {
		c.entries[catalogKey{e.Code, e.Restore}] = e.EventDescription
	}
	return c, nil
}

var defaultCatalog = sync.OnceValues(func() (*Catalog, error) {
	return LoadCatalog(bytes.NewReader(defaultEvents))
})

// DefaultCatalog returns the catalog of INTEGRA event descriptions shipped
// with this package.
func DefaultCatalog() (*Catalog, error) {
	return defaultCatalog()
}

func (c *Catalog) Lookup(code int, restore bool) (EventDescription, bool) {
	d, ok := c.entries[catalogKey{code, restore}]
	return d, ok
}

func (c *Catalog) Len() int { return len(c.entries) }
