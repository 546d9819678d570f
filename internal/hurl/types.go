package hurl

import "errors"

// ErrNoEntries is returned when a request file parses cleanly but contains
// no entries to benchmark.
var ErrNoEntries = errors.New("expected file to have an entry")

// File is a parsed request file: one or more entries in source order.
type File struct {
	Entries []Entry
}

// First returns the first entry, the one the benchmark drives.
func (f *File) First() (*Entry, error) {
	if f == nil || len(f.Entries) == 0 {
		return nil, ErrNoEntries
	}
	return &f.Entries[0], nil
}

// Entry is a single request specification. Response blocks that follow the
// request in the source are parsed past but not retained; the benchmark
// never validates responses.
type Entry struct {
	Request Request
}

// Request holds the method, templated URL, and templated header list of one
// entry, in source order.
type Request struct {
	Method  string
	URL     Template
	Headers []Header
}

// Header is one name/value pair; both sides may contain placeholders.
type Header struct {
	Name  Template
	Value Template
}

// ElementKind discriminates template elements.
type ElementKind int

const (
	// ElementString is a literal text segment.
	ElementString ElementKind = iota
	// ElementPlaceholder is a {{name}} variable reference.
	ElementPlaceholder
)

// TemplateElement is one segment of a template: literal text or a placeholder
// name (without braces).
type TemplateElement struct {
	Kind  ElementKind
	Value string
}

// Template is a sequence of literal and placeholder segments.
type Template struct {
	Elements []TemplateElement
}
