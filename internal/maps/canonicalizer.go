// Package maps reconciles the many spellings of a map name (display
// names, internal layer identifiers, partial aliases) with the canonical
// identifier the remote mutation API requires.
package maps

import (
	"context"

	"hllrotate/internal/gateway/command"
	"hllrotate/internal/logger"
	"hllrotate/internal/pkg/text"
)

// CatalogSource supplies the server's map catalog. MapCatalog is called at
// most once per process; its failure degrades resolution to the static
// alias table.
type CatalogSource interface {
	MapCatalog(ctx context.Context) ([]command.MapEntry, error)
}

// Canonicalizer resolves arbitrary map-name strings to canonical layer
// identifiers. Lookup priority per name: live rotation snapshot, server
// catalog, static alias table, then unchanged passthrough.
type Canonicalizer struct {
	catalog CatalogSource

	fetched bool
	learned map[string]string // normalized key -> canonical, from the catalog
	static  map[string]string // normalized key -> canonical, compiled-in
	display map[string]string // canonical -> preferred display name
}

// NewCanonicalizer builds a canonicalizer seeded with the static alias
// table. catalog may be nil; resolution then relies on live data and the
// static table alone.
func NewCanonicalizer(catalog CatalogSource) *Canonicalizer {
	c := &Canonicalizer{
		catalog: catalog,
		learned: make(map[string]string),
		static:  make(map[string]string),
		display: make(map[string]string),
	}
	for _, e := range staticEntries {
		c.static[text.NormalizeKey(e.canonical)] = e.canonical
		c.static[text.NormalizeKey(e.display)] = e.canonical
		for _, a := range e.aliases {
			c.static[text.NormalizeKey(a)] = e.canonical
		}
		c.display[e.canonical] = e.display
	}
	return c
}

// Resolve maps each requested name to its canonical identifier,
// one-to-one with the input. Names that resolve nowhere pass through
// unchanged; the remote server gets the final say.
func (c *Canonicalizer) Resolve(ctx context.Context, requested []string, live []command.MapEntry) []string {
	liveLookup := buildLookup(live)
	c.ensureCatalog(ctx)

	out := make([]string, 0, len(requested))
	for _, name := range requested {
		key := text.NormalizeKey(name)
		switch {
		case key == "":
			out = append(out, name)
		case liveLookup[key] != "":
			out = append(out, liveLookup[key])
		case c.learned[key] != "":
			out = append(out, c.learned[key])
		case c.static[key] != "":
			out = append(out, c.static[key])
		default:
			logger.Debugf("maps: no canonical match for %q, passing through", name)
			out = append(out, name)
		}
	}
	return out
}

// DisplayName returns the preferred display name for a canonical
// identifier, falling back to the identifier itself.
func (c *Canonicalizer) DisplayName(canonical string) string {
	if d := c.display[canonical]; d != "" {
		return d
	}
	return canonical
}

// ensureCatalog lazily loads the server catalog exactly once per process.
// The table is append-only and never invalidated; map catalogs only change
// with game updates, which come with a process restart.
func (c *Canonicalizer) ensureCatalog(ctx context.Context) {
	if c.fetched || c.catalog == nil {
		return
	}
	c.fetched = true
	entries, err := c.catalog.MapCatalog(ctx)
	if err != nil {
		logger.Debugf("maps: catalog fetch failed, static aliases only: %v", err)
		return
	}
	for _, e := range entries {
		canonical := e.Canonical()
		if canonical == "" {
			continue
		}
		for _, k := range e.Keys() {
			c.learned[text.NormalizeKey(k)] = canonical
		}
		if e.PrettyName != "" {
			c.display[canonical] = e.PrettyName
		}
	}
	logger.Infof("maps: catalog loaded, %d aliases known", len(c.learned))
}

// buildLookup indexes every identifier a snapshot entry carries to that
// entry's canonical identifier.
func buildLookup(entries []command.MapEntry) map[string]string {
	if len(entries) == 0 {
		return nil
	}
	lookup := make(map[string]string)
	for _, e := range entries {
		canonical := e.Canonical()
		if canonical == "" {
			continue
		}
		for _, k := range e.Keys() {
			lookup[text.NormalizeKey(k)] = canonical
		}
	}
	return lookup
}
