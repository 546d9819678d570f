package transport

import (
	"fmt"

	"github.com/hurlbench/hurlbench/internal/hurl"
)

// HeaderField is one name/value pair. Order is preserved from the request
// file.
type HeaderField struct {
	Name  string
	Value string
}

// Descriptor is the fully resolved request every worker repeats: target URL,
// method, and header list. It is immutable after construction; workers get
// their own copy via Clone and must not mutate it.
type Descriptor struct {
	URL     string
	Method  string
	Headers []HeaderField
}

// FromFile resolves the first entry of a parsed request file into a
// Descriptor. Zero entries is a configuration failure; unresolvable
// placeholders surface as hurl.UnsupportedFeatureError.
func FromFile(file *hurl.File) (*Descriptor, error) {
	entry, err := file.First()
	if err != nil {
		return nil, err
	}
	return FromEntry(entry)
}

// FromEntry resolves one entry into a Descriptor.
func FromEntry(entry *hurl.Entry) (*Descriptor, error) {
	url, err := entry.Request.URL.Resolve()
	if err != nil {
		return nil, fmt.Errorf("resolve url: %w", err)
	}

	headers := make([]HeaderField, 0, len(entry.Request.Headers))
	for _, h := range entry.Request.Headers {
		name, err := h.Name.Resolve()
		if err != nil {
			return nil, fmt.Errorf("resolve header name: %w", err)
		}
		value, err := h.Value.Resolve()
		if err != nil {
			return nil, fmt.Errorf("resolve header %s: %w", name, err)
		}
		headers = append(headers, HeaderField{Name: name, Value: value})
	}

	return &Descriptor{
		URL:     url,
		Method:  entry.Request.Method,
		Headers: headers,
	}, nil
}

// Clone returns an independent copy for a worker to hold.
func (d *Descriptor) Clone() *Descriptor {
	if d == nil {
		return nil
	}
	clone := *d
	clone.Headers = append([]HeaderField(nil), d.Headers...)
	return &clone
}

// String renders the endpoint banner line printed at startup.
func (d *Descriptor) String() string {
	return fmt.Sprintf("%s: %s, %d headers, no body", d.Method, d.URL, len(d.Headers))
}
