// Package parser decodes flat class-database exports: an INI-style container
// whose CategoryData sections hold one 9-field CSV record per key.
package parser

import (
	"fmt"
	"sort"
	"strings"
)

// CategoryPrefix marks container sections that hold class records.
const CategoryPrefix = "CategoryData_"

// ValidationSection is the optional metadata section of an export.
const ValidationSection = "Validation"

// headerKey is the per-section key describing the record column layout.
const headerKey = "header"

// headerFields is the expected column count of both the header row and
// every class record.
const headerFields = 9

// Pair is one key=value entry within a section, in file order.
type Pair struct {
	Key   string
	Value string
}

// Section is a named group of key=value pairs.
type Section struct {
	Name  string
	Pairs []Pair
}

// Document is a parsed export container.
type Document struct {
	sections map[string]*Section
	order    []string
}

// ContainerError reports a structural problem in the export container.
type ContainerError struct {
	Line   int
	Reason string
}

func (e *ContainerError) Error() string {
	return fmt.Sprintf("container error at line %d: %s", e.Line, e.Reason)
}

// ParseDocument scans raw export bytes into sections. The text encoding is
// normalised first (UTF-8 with Windows-1252/Latin-1 fallback). Duplicate
// sections and duplicate keys within a section are structural errors, same
// as the strict mode of the original export writer.
func ParseDocument(data []byte) (*Document, error) {
	text, err := DecodeText(data)
	if err != nil {
		return nil, err
	}

	doc := &Document{sections: make(map[string]*Section)}
	var current *Section
	var seen map[string]struct{}

	for i, line := range strings.Split(text, "\n") {
		lineNo := i + 1
		trimmed := strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if trimmed == "" || trimmed[0] == ';' || trimmed[0] == '#' {
			continue
		}

		if trimmed[0] == '[' {
			if !strings.HasSuffix(trimmed, "]") {
				return nil, &ContainerError{Line: lineNo, Reason: "unterminated section header"}
			}
			name := strings.TrimSpace(trimmed[1 : len(trimmed)-1])
			if name == "" {
				return nil, &ContainerError{Line: lineNo, Reason: "empty section name"}
			}
			if _, dup := doc.sections[name]; dup {
				return nil, &ContainerError{Line: lineNo, Reason: fmt.Sprintf("duplicate section %q", name)}
			}
			current = &Section{Name: name}
			seen = make(map[string]struct{})
			doc.sections[name] = current
			doc.order = append(doc.order, name)
			continue
		}

		eq := strings.Index(trimmed, "=")
		if eq < 0 {
			return nil, &ContainerError{Line: lineNo, Reason: "entry without '='"}
		}
		if current == nil {
			return nil, &ContainerError{Line: lineNo, Reason: "entry before any section"}
		}

		key := strings.TrimSpace(trimmed[:eq])
		if key == "" {
			return nil, &ContainerError{Line: lineNo, Reason: "entry with empty key"}
		}
		if _, dup := seen[key]; dup {
			return nil, &ContainerError{Line: lineNo, Reason: fmt.Sprintf("duplicate key %q in section %q", key, current.Name)}
		}
		seen[key] = struct{}{}
		current.Pairs = append(current.Pairs, Pair{Key: key, Value: strings.TrimSpace(trimmed[eq+1:])})
	}

	return doc, nil
}

// Categories returns the sorted names of all CategoryData sections.
func (d *Document) Categories() []string {
	var out []string
	for _, name := range d.order {
		if strings.HasPrefix(name, CategoryPrefix) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Section returns the named section, or nil when absent.
func (d *Document) Section(name string) *Section {
	return d.sections[name]
}

// Header returns the column layout declared by a category section, or nil
// when the section or its header row is absent or malformed.
func (d *Document) Header(category string) []string {
	sec := d.sections[category]
	if sec == nil {
		return nil
	}
	for _, p := range sec.Pairs {
		if !strings.EqualFold(p.Key, headerKey) {
			continue
		}
		fields, err := splitCSVRow(p.Value)
		if err != nil || len(fields) != headerFields {
			return nil
		}
		return fields
	}
	return nil
}

// RecordPairs returns the class entries of a category section, excluding the
// header row. The result is nil for unknown sections.
func (d *Document) RecordPairs(category string) []Pair {
	sec := d.sections[category]
	if sec == nil {
		return nil
	}
	out := make([]Pair, 0, len(sec.Pairs))
	for _, p := range sec.Pairs {
		if strings.EqualFold(p.Key, headerKey) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// ValidationInfo returns the key/value pairs of the Validation section,
// or an empty map when the section is absent.
func (d *Document) ValidationInfo() map[string]string {
	out := make(map[string]string)
	sec := d.sections[ValidationSection]
	if sec == nil {
		return out
	}
	for _, p := range sec.Pairs {
		out[p.Key] = strings.Trim(p.Value, `"`)
	}
	return out
}
