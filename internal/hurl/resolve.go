package hurl

import (
	"fmt"
	"strings"
)

// UnsupportedFeatureError is returned when a request file uses a construct
// the benchmark cannot drive, such as a template placeholder that would need
// per-request resolution.
type UnsupportedFeatureError struct {
	Feature string
}

func (e *UnsupportedFeatureError) Error() string {
	return fmt.Sprintf("unsupported feature: %s", e.Feature)
}

// Resolve flattens the template into a plain string. Placeholders fail with
// UnsupportedFeatureError; the run must abort at setup rather than send a
// request with an unresolved value.
func (t Template) Resolve() (string, error) {
	var b strings.Builder
	for _, el := range t.Elements {
		switch el.Kind {
		case ElementString:
			b.WriteString(el.Value)
		case ElementPlaceholder:
			return "", &UnsupportedFeatureError{
				Feature: fmt.Sprintf("template placeholder {{%s}}", el.Value),
			}
		}
	}
	return b.String(), nil
}
