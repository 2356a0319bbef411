// Package catalog holds the fixed, ordered set of named validators.
//
// Registration happens once during setup. Registration order is the canonical
// run order and is stable across runs, which keeps diagnostics reproducible.
// A catalog is sealed before it is run and is read-only afterwards.
package catalog

import (
	"fmt"

	"github.com/lattice-substrate/cryptval/valerr"
)

// Kind distinguishes validators that accept the thorough flag.
type Kind int

const (
	// KindSimple validators ignore the thorough flag.
	KindSimple Kind = iota
	// KindThorough validators receive the thorough flag.
	KindThorough
)

func (k Kind) String() string {
	switch k {
	case KindSimple:
		return "simple"
	case KindThorough:
		return "thorough"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// SimpleFunc is a zero-argument validator. A non-nil error is an internal
// failure of the validator and always fails the entry.
type SimpleFunc func() (bool, error)

// ThoroughFunc is a validator parameterized by the thorough flag.
type ThoroughFunc func(thorough bool) (bool, error)

// Entry is one named validator. The zero value is not usable; build entries
// with Simple or Thorough.
type Entry struct {
	name     string
	kind     Kind
	simple   SimpleFunc
	thorough ThoroughFunc
}

// Simple returns an entry that ignores the thorough flag.
func Simple(name string, fn SimpleFunc) Entry {
	return Entry{name: name, kind: KindSimple, simple: fn}
}

// Thorough returns an entry that receives the thorough flag.
func Thorough(name string, fn ThoroughFunc) Entry {
	return Entry{name: name, kind: KindThorough, thorough: fn}
}

// Name returns the entry's unique name.
func (e Entry) Name() string { return e.name }

// Kind returns the entry's kind.
func (e Entry) Kind() Kind { return e.kind }

// Run invokes the validator, passing thorough through only for KindThorough
// entries.
func (e Entry) Run(thorough bool) (bool, error) {
	switch e.kind {
	case KindThorough:
		return e.thorough(thorough)
	default:
		return e.simple()
	}
}

func (e Entry) valid() bool {
	switch e.kind {
	case KindSimple:
		return e.simple != nil
	case KindThorough:
		return e.thorough != nil
	default:
		return false
	}
}

// Catalog is an ordered registry of entries keyed by name.
type Catalog struct {
	entries []Entry
	index   map[string]int
	sealed  bool
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{index: make(map[string]int)}
}

// Register appends e. Names must be unique.
func (c *Catalog) Register(e Entry) error {
	if c.sealed {
		return valerr.New(valerr.CatalogSealed, e.name, "catalog is sealed; register validators before running")
	}
	if e.name == "" {
		return valerr.New(valerr.InvalidConfig, "", "validator name is required")
	}
	if !e.valid() {
		return valerr.New(valerr.InvalidConfig, e.name, "validator function is required")
	}
	if _, ok := c.index[e.name]; ok {
		return valerr.New(valerr.DuplicateValidator, e.name, "validator already registered")
	}
	c.index[e.name] = len(c.entries)
	c.entries = append(c.entries, e)
	return nil
}

// MustRegister registers entries in order and panics on the first
// configuration error. It is meant for static catalog declarations.
func (c *Catalog) MustRegister(entries ...Entry) {
	for _, e := range entries {
		if err := c.Register(e); err != nil {
			panic(err)
		}
	}
}

// Lookup returns the entry registered under name.
func (c *Catalog) Lookup(name string) (Entry, error) {
	i, ok := c.index[name]
	if !ok {
		return Entry{}, valerr.New(valerr.UnknownValidator, name, "validator not registered")
	}
	return c.entries[i], nil
}

// Contains reports whether name is registered.
func (c *Catalog) Contains(name string) bool {
	_, ok := c.index[name]
	return ok
}

// All returns the entries in registration order.
func (c *Catalog) All() []Entry {
	return append([]Entry(nil), c.entries...)
}

// Names returns the entry names in registration order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.entries))
	for i, e := range c.entries {
		names[i] = e.name
	}
	return names
}

// Len returns the number of registered entries.
func (c *Catalog) Len() int { return len(c.entries) }

// Seal makes the catalog read-only. Sealing twice is harmless.
func (c *Catalog) Seal() { c.sealed = true }

// Sealed reports whether Seal has been called.
func (c *Catalog) Sealed() bool { return c.sealed }
