package provider

import (
	"fmt"
	"sort"
	"strings"
)

// OpenFunc opens one session against the given DSN.
type OpenFunc func(dsn string) (Session, error)

// Registry maps engine names to session openers. It is built once at
// process start and passed by reference into operations; there is no
// ambient lookup.
type Registry struct {
	openers map[string]OpenFunc
}

func NewRegistry(openers map[string]OpenFunc) *Registry {
	m := make(map[string]OpenFunc, len(openers))
	for name, open := range openers {
		m[strings.ToLower(name)] = open
	}
	return &Registry{openers: m}
}

// Open opens a session for the named engine.
func (r *Registry) Open(engine, dsn string) (Session, error) {
	open, ok := r.openers[strings.ToLower(engine)]
	if !ok {
		return nil, fmt.Errorf("unknown engine %q (known: %s)", engine, strings.Join(r.Engines(), ", "))
	}
	return open(dsn)
}

// Engines lists the registered engine names, sorted.
func (r *Registry) Engines() []string {
	names := make([]string, 0, len(r.openers))
	for name := range r.openers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
