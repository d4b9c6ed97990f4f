// Package fixedwidth parses lines of fixed-width text files using
// declarative column layouts.
//
// This is a pure package. A Schema describes where each field sits in a
// line, and Parse slices a line accordingly. Parsing never fails: short lines
// produce empty fields, and non-numeric integers resolve to absent values.
// Whether a record is acceptable is decided by the caller.
package fixedwidth

import (
	"fmt"
	"io"
	"slices"

	"gopkg.in/yaml.v3"
)

// Kind is the type a field value is coerced to.
type Kind string

const (
	// String fields keep trimmed text.
	String Kind = "string"
	// Int fields hold base-10 integers.
	Int Kind = "int"
)

// Field describes one column range of a line.
type Field struct {
	// Name is the key used to read the value from a Record.
	Name string `yaml:"name"`

	// Start is the first column of the field, 1-based and inclusive,
	// as data providers usually publish layouts.
	Start int `yaml:"start"`

	// End is the last column of the field, 1-based and inclusive.
	End int `yaml:"end"`

	// Kind is String when empty.
	Kind Kind `yaml:"kind"`

	// Required fields are reported by Record.Missing when blank.
	Required bool `yaml:"required"`
}

// Schema is an ordered set of fields for one file format.
type Schema struct {
	// Name identifies the layout in logs and reports.
	Name string `yaml:"name"`

	// HasHeader is true when the first line of a file holds column titles.
	HasHeader bool `yaml:"has_header"`

	Fields []Field `yaml:"fields"`

	index map[string]int
}

// LoadSchema decodes a YAML layout and validates it.
func LoadSchema(r io.Reader) (*Schema, error) {
	var res Schema
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&res); err != nil {
		return nil, fmt.Errorf("cannot decode layout: %w", err)
	}
	if err := res.Validate(); err != nil {
		return nil, err
	}
	return &res, nil
}

// Validate checks that column ranges are sane and names are unique.
// It also builds the name index used by Record accessors.
func (s *Schema) Validate() error {
	if len(s.Fields) == 0 {
		return fmt.Errorf("layout %q has no fields", s.Name)
	}

	idx := make(map[string]int, len(s.Fields))
	for i, f := range s.Fields {
		if f.Name == "" {
			return fmt.Errorf("layout %q: field #%d has no name", s.Name, i+1)
		}
		if _, ok := idx[f.Name]; ok {
			return fmt.Errorf("layout %q: duplicate field %q", s.Name, f.Name)
		}
		if f.Start < 1 || f.End < f.Start {
			return fmt.Errorf("layout %q: field %q has invalid range %d-%d",
				s.Name, f.Name, f.Start, f.End)
		}
		switch f.Kind {
		case "":
			s.Fields[i].Kind = String
		case String, Int:
		default:
			return fmt.Errorf("layout %q: field %q has unknown kind %q",
				s.Name, f.Name, f.Kind)
		}
		idx[f.Name] = i
	}

	sorted := slices.Clone(s.Fields)
	slices.SortFunc(sorted, func(a, b Field) int { return a.Start - b.Start })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Start <= sorted[i-1].End {
			return fmt.Errorf("layout %q: fields %q and %q overlap",
				s.Name, sorted[i-1].Name, sorted[i].Name)
		}
	}

	s.index = idx
	return nil
}

// Width is the last column covered by any field.
func (s *Schema) Width() int {
	var res int
	for _, f := range s.Fields {
		res = max(res, f.End)
	}
	return res
}

// Has reports whether the layout defines a field.
func (s *Schema) Has(name string) bool {
	_, ok := s.lookup(name)
	return ok
}

func (s *Schema) lookup(name string) (int, bool) {
	if s.index == nil {
		for i, f := range s.Fields {
			if f.Name == name {
				return i, true
			}
		}
		return 0, false
	}
	i, ok := s.index[name]
	return i, ok
}
