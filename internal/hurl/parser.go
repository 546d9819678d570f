// Package hurl parses the subset of the hurl request-file format that the
// benchmark consumes: entries made of a method line followed by header lines.
// Response blocks, sections, and bodies are recognized and skipped.
package hurl

import (
	"fmt"
	"os"
	"strings"
)

// ParseError reports a malformed request file with its source location.
// Line and Column are 1-based.
type ParseError struct {
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d column %d: %s", e.Line, e.Column, e.Message)
}

// ParseFile reads and parses a request file from disk.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open request file: %w", err)
	}
	return Parse(string(data))
}

type parseMode int

const (
	// Between entries, or inside a response/body region: only a method line
	// starts new content.
	modeScan parseMode = iota
	// Directly after a method line: header lines attach to the entry.
	modeHeaders
)

// Parse parses request-file text into entries.
func Parse(input string) (*File, error) {
	file := &File{}
	lines := strings.Split(input, "\n")

	mode := modeScan
	for i := 0; i < len(lines); i++ {
		raw := strings.TrimSuffix(lines[i], "\r")
		line := strings.TrimSpace(raw)
		lineNo := i + 1

		if line == "" {
			if mode == modeHeaders {
				mode = modeScan
			}
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "```") {
			// Fenced body: consume until the closing fence.
			i = skipFence(lines, i)
			mode = modeScan
			continue
		}

		if method, rest, ok := splitMethodLine(line); ok {
			url, err := parseTemplate(rest, lineNo, 1+len(method)+1+indentOf(raw))
			if err != nil {
				return nil, err
			}
			if len(url.Elements) == 0 {
				return nil, &ParseError{Line: lineNo, Column: len(raw) + 1, Message: "expecting a url"}
			}
			file.Entries = append(file.Entries, Entry{Request: Request{Method: method, URL: url}})
			mode = modeHeaders
			continue
		}

		if isMethodToken(line) {
			return nil, &ParseError{Line: lineNo, Column: len(raw) + 1, Message: "expecting a url"}
		}

		if mode == modeHeaders {
			if strings.HasPrefix(line, "[") || strings.HasPrefix(line, "HTTP") {
				// Section or response block: nothing further attaches.
				mode = modeScan
				continue
			}
			name, value, ok := splitHeaderLine(line)
			if !ok {
				return nil, &ParseError{Line: lineNo, Column: indentOf(raw) + 1, Message: "expecting ':'"}
			}
			entry := &file.Entries[len(file.Entries)-1]
			nameTpl, err := parseTemplate(name, lineNo, indentOf(raw)+1)
			if err != nil {
				return nil, err
			}
			valueTpl, err := parseTemplate(value, lineNo, indentOf(raw)+len(name)+2)
			if err != nil {
				return nil, err
			}
			entry.Request.Headers = append(entry.Request.Headers, Header{Name: nameTpl, Value: valueTpl})
			continue
		}

		// modeScan: response headers, asserts, and bodies are skipped.
	}

	return file, nil
}

// splitMethodLine recognizes an entry-opening line: an all-uppercase method
// token followed by whitespace and the target.
func splitMethodLine(line string) (method, rest string, ok bool) {
	idx := strings.IndexAny(line, " \t")
	if idx <= 0 {
		return "", "", false
	}
	token := line[:idx]
	for _, r := range token {
		if r < 'A' || r > 'Z' {
			return "", "", false
		}
	}
	// "HTTP 200" opens a response block, not an entry.
	if token == "HTTP" {
		return "", "", false
	}
	return token, strings.TrimSpace(line[idx:]), true
}

// isMethodToken recognizes a lone method token, which can only mean the url
// was left off the entry line.
func isMethodToken(line string) bool {
	if len(line) < 3 || line == "HTTP" {
		return false
	}
	for _, r := range line {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func splitHeaderLine(line string) (name, value string, ok bool) {
	idx := strings.Index(line, ":")
	if idx <= 0 {
		return "", "", false
	}
	return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:]), true
}

// parseTemplate lexes a string into literal and {{placeholder}} segments.
// col is the 1-based column of the string's first byte, used for error
// locations.
func parseTemplate(s string, lineNo, col int) (Template, error) {
	var tpl Template
	for len(s) > 0 {
		open := strings.Index(s, "{{")
		if open < 0 {
			tpl.Elements = append(tpl.Elements, TemplateElement{Kind: ElementString, Value: s})
			break
		}
		if open > 0 {
			tpl.Elements = append(tpl.Elements, TemplateElement{Kind: ElementString, Value: s[:open]})
		}
		end := strings.Index(s[open:], "}}")
		if end < 0 {
			return Template{}, &ParseError{Line: lineNo, Column: col + open, Message: "expecting '}}'"}
		}
		name := strings.TrimSpace(s[open+2 : open+end])
		tpl.Elements = append(tpl.Elements, TemplateElement{Kind: ElementPlaceholder, Value: name})
		consumed := open + end + 2
		col += consumed
		s = s[consumed:]
	}
	return tpl, nil
}

func skipFence(lines []string, start int) int {
	for j := start + 1; j < len(lines); j++ {
		if strings.HasPrefix(strings.TrimSpace(lines[j]), "```") {
			return j
		}
	}
	return len(lines) - 1
}

func indentOf(raw string) int {
	return len(raw) - len(strings.TrimLeft(raw, " \t"))
}
