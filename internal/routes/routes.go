// Package routes holds the panel's static route table: which view renders
// at which URL path.
package routes

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when no entry matches a path or name.
var ErrNotFound = errors.New("route not found")

// Entry maps a path to a named view. View is an opaque handle owned by the
// UI layer.
type Entry struct {
	Path string
	Name string
	View any
}

// Table is an ordered, read-only set of entries with unique paths and names.
type Table struct {
	entries []Entry
	byPath  map[string]int
	byName  map[string]int
}

// New validates entries and builds a Table.
func New(entries ...Entry) (*Table, error) {
	t := &Table{
		entries: make([]Entry, 0, len(entries)),
		byPath:  make(map[string]int, len(entries)),
		byName:  make(map[string]int, len(entries)),
	}
	for i, e := range entries {
		if !strings.HasPrefix(e.Path, "/") {
			return nil, fmt.Errorf("route %d: path %q must start with /", i, e.Path)
		}
		if strings.TrimSpace(e.Name) == "" {
			return nil, fmt.Errorf("route %d (%s): name is required", i, e.Path)
		}
		if j, dup := t.byPath[e.Path]; dup {
			return nil, fmt.Errorf("route %d: duplicate path %q (already used by %s)", i, e.Path, t.entries[j].Name)
		}
		if j, dup := t.byName[e.Name]; dup {
			return nil, fmt.Errorf("route %d: duplicate name %q (already used by %s)", i, e.Name, t.entries[j].Path)
		}
		t.byPath[e.Path] = len(t.entries)
		t.byName[e.Name] = len(t.entries)
		t.entries = append(t.entries, e)
	}
	return t, nil
}

// MustNew is New that panics on an invalid table.
func MustNew(entries ...Entry) *Table {
	t, err := New(entries...)
	if err != nil {
		panic(err)
	}
	return t
}

// Route names of the standard table.
const (
	Home         = "Home"
	PPTControl   = "PPTControl"
	VideoControl = "VideoControl"
	Settings     = "Settings"
)

// Standard builds the panel's table. views maps route names to view
// handles; missing names get a nil view.
func Standard(views map[string]any) (*Table, error) {
	return New(
		Entry{Path: "/", Name: Home, View: views[Home]},
		Entry{Path: "/ppt", Name: PPTControl, View: views[PPTControl]},
		Entry{Path: "/video", Name: VideoControl, View: views[VideoControl]},
		Entry{Path: "/settings", Name: Settings, View: views[Settings]},
	)
}

// Resolve returns the entry whose path matches exactly.
func (t *Table) Resolve(path string) (Entry, error) {
	i, ok := t.byPath[path]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return t.entries[i], nil
}

// ByName returns the entry with the given name.
func (t *Table) ByName(name string) (Entry, error) {
	i, ok := t.byName[name]
	if !ok {
		return Entry{}, fmt.Errorf("%w: name %s", ErrNotFound, name)
	}
	return t.entries[i], nil
}

// Entries returns the entries in declaration order.
func (t *Table) Entries() []Entry {
	return append([]Entry(nil), t.entries...)
}

// Len returns the number of entries.
func (t *Table) Len() int { return len(t.entries) }
