package fixedwidth

import (
	"strings"
	"unicode/utf8"
)

// Format renders values into a line of the schema's width. Values are
// left-aligned and cut to the field size; unknown names are ignored and
// columns between fields are filled with sep.
func (s *Schema) Format(values map[string]string, sep rune) string {
	line := make([]rune, s.Width())
	for i := range line {
		line[i] = ' '
	}
	covered := make([]bool, len(line))
	for _, f := range s.Fields {
		for i := f.Start - 1; i < f.End; i++ {
			covered[i] = true
		}
		v, ok := values[f.Name]
		if !ok {
			continue
		}
		size := f.End - f.Start + 1
		if utf8.RuneCountInString(v) > size {
			v = string([]rune(v)[:size])
		}
		copy(line[f.Start-1:], []rune(v))
	}
	for i := range line {
		if !covered[i] {
			line[i] = sep
		}
	}
	return strings.TrimRight(string(line), " ")
}
