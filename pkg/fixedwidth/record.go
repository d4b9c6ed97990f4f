package fixedwidth

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Record holds the trimmed values of one parsed line.
type Record struct {
	schema *Schema
	values []string
}

// Parse slices a line according to the schema. Columns beyond the end of
// the line are empty. Offsets count characters, not bytes, so multi-byte
// text in one field does not shift the following fields.
func (s *Schema) Parse(line string) Record {
	line = strings.TrimRight(line, "\r\n")
	res := Record{schema: s, values: make([]string, len(s.Fields))}

	if isASCII(line) {
		for i, f := range s.Fields {
			res.values[i] = strings.TrimSpace(slice(line, len(line), f))
		}
		return res
	}

	runes := []rune(line)
	for i, f := range s.Fields {
		start, end, ok := bounds(len(runes), f)
		if !ok {
			continue
		}
		res.values[i] = strings.TrimSpace(string(runes[start:end]))
	}
	return res
}

// String returns the trimmed value of a field. The second value is false
// when the field is blank or not part of the layout.
func (r Record) String(name string) (string, bool) {
	i, ok := r.schema.lookup(name)
	if !ok || r.values[i] == "" {
		return "", false
	}
	return r.values[i], true
}

// StringPtr is String for nullable columns.
func (r Record) StringPtr(name string) *string {
	s, ok := r.String(name)
	if !ok {
		return nil
	}
	return &s
}

// Int returns the integer value of a field. Blank or non-numeric values
// are absent, never zero.
func (r Record) Int(name string) (int, bool) {
	s, ok := r.String(name)
	if !ok {
		return 0, false
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return i, true
}

// IntPtr is Int for nullable columns.
func (r Record) IntPtr(name string) *int {
	i, ok := r.Int(name)
	if !ok {
		return nil
	}
	return &i
}

// Missing lists required fields that are blank.
func (r Record) Missing() []string {
	var res []string
	for i, f := range r.schema.Fields {
		if f.Required && r.values[i] == "" {
			res = append(res, f.Name)
		}
	}
	return res
}

func slice(line string, n int, f Field) string {
	start, end, ok := bounds(n, f)
	if !ok {
		return ""
	}
	return line[start:end]
}

// bounds converts 1-based inclusive columns to a 0-based half-open range
// clipped to a line of length n.
func bounds(n int, f Field) (int, int, bool) {
	start := f.Start - 1
	if start >= n {
		return 0, 0, false
	}
	return start, min(f.End, n), true
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
