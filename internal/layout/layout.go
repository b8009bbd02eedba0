// Package layout projects the internal record table onto fixed-schema output
// tables. Each output column is filled by a small template such as
// "{차량번호}, {비고}까지"; layouts are declared in YAML.
package layout

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/a3tai/notice-postmoa/internal/records"
)

// Kind selects the writer used for a layout.
type Kind string

const (
	KindSpreadsheet Kind = "spreadsheet"
	KindEnvelope    Kind = "envelope"
)

var (
	ErrInvalidLayout      = errors.New("invalid layout")
	ErrUnknownTarget      = errors.New("unknown target column")
	ErrUnknownPlaceholder = errors.New("unknown placeholder")
)

//go:embed layouts.yaml
var defaultLayouts []byte

var placeholderPattern = regexp.MustCompile(`\{([\p{L}\p{N}_]+)\}`)

// Mapping fills one output column for every record.
type Mapping struct {
	Target       string `yaml:"target"`
	Template     string `yaml:"template"`
	ExtraPattern string `yaml:"extra_pattern,omitempty"`
	ExtraValue   string `yaml:"extra_value,omitempty"`

	extra *regexp.Regexp
}

// Placeholders returns the record columns referenced by the template.
func (m *Mapping) Placeholders() []string {
	var names []string
	for _, match := range placeholderPattern.FindAllStringSubmatch(m.Template, -1) {
		names = append(names, match[1])
	}
	return names
}

func (m *Mapping) compile() error {
	for _, name := range m.Placeholders() {
		if !records.IsColumn(name) {
			return fmt.Errorf("%w: {%s} in column %q", ErrUnknownPlaceholder, name, m.Target)
		}
	}
	m.extra = nil
	if m.ExtraPattern != "" {
		re, err := regexp.Compile(m.ExtraPattern)
		if err != nil {
			return fmt.Errorf("%w: column %q: extra pattern: %v", ErrInvalidLayout, m.Target, err)
		}
		m.extra = re
	}
	return nil
}

// Render evaluates the template against r. Templates without placeholders
// are constants; the extra pattern only applies to templated values.
func (m *Mapping) Render(r records.Record) (string, error) {
	names := m.Placeholders()
	if len(names) == 0 {
		return m.Template, nil
	}

	out := m.Template
	for _, name := range names {
		v, err := r.Get(name)
		if err != nil {
			return "", fmt.Errorf("%w: {%s}", ErrUnknownPlaceholder, name)
		}
		out = strings.ReplaceAll(out, "{"+name+"}", v)
	}

	if m.ExtraPattern != "" {
		if m.extra == nil {
			if err := m.compile(); err != nil {
				return "", err
			}
		}
		out = m.extra.ReplaceAllString(out, m.ExtraValue)
	}
	return out, nil
}

// Layout describes one output table.
type Layout struct {
	Name     string    `yaml:"name"`
	Kind     Kind      `yaml:"kind"`
	Suffix   string    `yaml:"suffix"`
	Columns  []string  `yaml:"columns"`
	Mappings []Mapping `yaml:"mappings"`

	// Envelope is only used by envelope layouts.
	Envelope *EnvelopeGeometry `yaml:"envelope,omitempty"`
}

// Validate checks targets, placeholders and extra patterns and prepares the
// mappings for rendering.
func (l *Layout) Validate() error {
	if l.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidLayout)
	}
	switch l.Kind {
	case KindSpreadsheet:
	case KindEnvelope:
		if l.Envelope == nil {
			return fmt.Errorf("%w: %s: envelope geometry is required", ErrInvalidLayout, l.Name)
		}
	default:
		return fmt.Errorf("%w: %s: unknown kind %q", ErrInvalidLayout, l.Name, l.Kind)
	}
	if l.Suffix == "" {
		return fmt.Errorf("%w: %s: file suffix is required", ErrInvalidLayout, l.Name)
	}
	if len(l.Columns) == 0 {
		return fmt.Errorf("%w: %s: no columns", ErrInvalidLayout, l.Name)
	}

	seen := make(map[string]bool, len(l.Columns))
	for _, c := range l.Columns {
		if seen[c] {
			return fmt.Errorf("%w: %s: duplicate column %q", ErrInvalidLayout, l.Name, c)
		}
		seen[c] = true
	}

	for i := range l.Mappings {
		m := &l.Mappings[i]
		if !seen[m.Target] {
			return fmt.Errorf("%w: %s: %q", ErrUnknownTarget, l.Name, m.Target)
		}
		if err := m.compile(); err != nil {
			return fmt.Errorf("%s: %w", l.Name, err)
		}
	}
	return nil
}

// Apply renders rows into a sheet with the layout's columns. Columns with no
// mapping stay empty; zero rows give a header-only sheet.
func (l *Layout) Apply(rows []records.Record) (*Sheet, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}

	index := make(map[string]int, len(l.Columns))
	for i, c := range l.Columns {
		index[c] = i
	}

	sheet := &Sheet{
		Name:    l.Name,
		Columns: append([]string(nil), l.Columns...),
		Rows:    make([][]string, 0, len(rows)),
	}

	for _, r := range rows {
		row := make([]string, len(l.Columns))
		for i := range l.Mappings {
			m := &l.Mappings[i]
			if m.Template == "" {
				continue
			}
			v, err := m.Render(r)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", l.Name, err)
			}
			row[index[m.Target]] = v
		}
		sheet.Rows = append(sheet.Rows, row)
	}

	return sheet, nil
}

// Sheet is a rendered output table.
type Sheet struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// Value returns the cell at row and column, or "" if either is unknown.
func (s *Sheet) Value(row int, column string) string {
	if row < 0 || row >= len(s.Rows) {
		return ""
	}
	for i, c := range s.Columns {
		if c == column {
			return s.Rows[row][i]
		}
	}
	return ""
}

// Set is the collection of layouts used for one export.
type Set struct {
	Layouts []Layout `yaml:"layouts"`
}

// Parse decodes and validates a YAML layout set.
func Parse(data []byte) (*Set, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: layout file is empty", ErrInvalidLayout)
	}

	var set Set
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("decode layouts: %w", err)
	}
	if len(set.Layouts) == 0 {
		return nil, fmt.Errorf("%w: no layouts defined", ErrInvalidLayout)
	}

	names := make(map[string]bool, len(set.Layouts))
	for i := range set.Layouts {
		l := &set.Layouts[i]
		if err := l.Validate(); err != nil {
			return nil, err
		}
		if names[l.Name] {
			return nil, fmt.Errorf("%w: duplicate layout name %q", ErrInvalidLayout, l.Name)
		}
		names[l.Name] = true
	}
	return &set, nil
}

// Load reads layouts from path, or returns the built-in layouts when path
// is empty.
func Load(path string) (*Set, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layouts %s: %w", path, err)
	}
	set, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("layouts %s: %w", path, err)
	}
	return set, nil
}

// Default returns the built-in Postmoa and envelope layouts.
func Default() (*Set, error) {
	return Parse(defaultLayouts)
}

// Get returns the layout called name.
func (s *Set) Get(name string) (*Layout, bool) {
	for i := range s.Layouts {
		if s.Layouts[i].Name == name {
			return &s.Layouts[i], true
		}
	}
	return nil, false
}

// OfKind returns the layouts of kind k in declaration order.
func (s *Set) OfKind(k Kind) []*Layout {
	var out []*Layout
	for i := range s.Layouts {
		if s.Layouts[i].Kind == k {
			out = append(out, &s.Layouts[i])
		}
	}
	return out
}
