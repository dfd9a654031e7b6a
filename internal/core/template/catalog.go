package template

import (
	"fmt"
	"slices"
	"sync"

	"github.com/zeusync/compose/internal/core/entity"
	"github.com/zeusync/compose/internal/core/observability/log"
)

// Catalog holds the templates of the last successfully loaded document and
// creates entities by template name. It is safe for concurrent use; created
// entities belong to the caller.
type Catalog struct {
	registry *Registry
	log      log.Log

	mu        sync.RWMutex
	templates map[string]*Template
	names     []string
}

func NewCatalog(registry *Registry, logger log.Log) *Catalog {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Catalog{
		registry:  registry,
		log:       logger,
		templates: make(map[string]*Template),
	}
}

func (c *Catalog) Registry() *Registry {
	return c.registry
}

// Load validates every template of doc and then replaces the catalog content
// in one step. On error the previous content is kept.
func (c *Catalog) Load(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: nil document", ErrInvalidTemplate)
	}

	templates := make(map[string]*Template, len(doc.Templates))
	names := make([]string, 0, len(doc.Templates))
	for _, spec := range doc.Templates {
		t := &Template{spec: spec, registry: c.registry, log: c.log}
		if err := t.validate(); err != nil {
			return err
		}
		if _, dup := templates[spec.Name]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateTemplate, spec.Name)
		}
		templates[spec.Name] = t
		names = append(names, spec.Name)
	}
	slices.Sort(names)

	c.mu.Lock()
	c.templates = templates
	c.names = names
	c.mu.Unlock()

	c.log.Debug("template catalog loaded", log.Int("templates", len(names)))
	return nil
}

// LoadFile reads a document from path and loads it.
func (c *Catalog) LoadFile(path string) error {
	doc, err := LoadFile(path)
	if err != nil {
		return err
	}
	return c.Load(doc)
}

func (c *Catalog) Get(name string) (*Template, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.templates[name]
	return t, ok
}

// Create builds an entity from the named template.
func (c *Catalog) Create(name string) (*entity.Entity, error) {
	t, ok := c.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTemplate, name)
	}
	return t.Create()
}

// Factory returns a factory that resolves name on every call, so it follows
// catalog reloads.
func (c *Catalog) Factory(name string) entity.Factory {
	return entity.FactoryFunc(func() (*entity.Entity, error) {
		return c.Create(name)
	})
}

// Names returns the template names, sorted.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.names)
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.templates)
}
