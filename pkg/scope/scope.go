// Package scope tracks lexical shadowing with one counter per name instead of
// a stack of scopes. A name is bound while its count is positive.
package scope

import (
	"fmt"
	"maps"
)

// UnderflowError is raised (as a panic) when a name is released more often
// than it was bound, which means the traversal releasing it is unbalanced.
type UnderflowError struct {
	Name string
}

func (e *UnderflowError) Error() string {
	return fmt.Sprintf("scope: %q released without a matching bind", e.Name)
}

// Table maps names to how many enclosing bindings currently shadow them. It
// must not be shared by concurrent walks.
type Table struct {
	counts map[string]int
}

func NewTable(bound ...string) *Table {
	t := &Table{counts: make(map[string]int)}
	t.Increment(bound...)
	return t
}

func (t *Table) Increment(names ...string) {
	for _, name := range names {
		t.counts[name]++
	}
}

// Decrement releases one binding per name. It panics with *UnderflowError
// when a count would go negative.
func (t *Table) Decrement(names ...string) {
	for _, name := range names {
		if t.counts[name] <= 0 {
			panic(&UnderflowError{Name: name})
		}
		t.counts[name]--
		if t.counts[name] == 0 {
			delete(t.counts, name)
		}
	}
}

func (t *Table) IsBound(name string) bool {
	return t.counts[name] > 0
}

func (t *Table) Count(name string) int {
	return t.counts[name]
}

// Len is the number of names with a positive count.
func (t *Table) Len() int {
	return len(t.counts)
}

// Snapshot copies the current counts.
func (t *Table) Snapshot() map[string]int {
	return maps.Clone(t.counts)
}

// Restore replaces the counts with a copy of snapshot.
func (t *Table) Restore(snapshot map[string]int) {
	t.counts = maps.Clone(snapshot)
	if t.counts == nil {
		t.counts = make(map[string]int)
	}
}

// Region collects the names bound inside one block-scoped region so they can
// all be released when the region ends, however many declarations bound them.
type Region struct {
	table *Table
	names []string
}

func (t *Table) Open() *Region {
	return &Region{table: t}
}

// Bind increments names and remembers them for Close.
func (r *Region) Bind(names ...string) {
	r.table.Increment(names...)
	r.names = append(r.names, names...)
}

// Close releases every name bound through this region.
func (r *Region) Close() {
	r.table.Decrement(r.names...)
	r.names = nil
}
