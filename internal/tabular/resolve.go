package tabular

import "strings"

// FieldSpec describes a semantic field by phrases that must all appear in a
// column name (case-insensitive substring match).
type FieldSpec struct {
	Name     string   `yaml:"name" mapstructure:"name"`
	Phrases  []string `yaml:"phrases" mapstructure:"phrases"`
	Required bool     `yaml:"required" mapstructure:"required"`
}

// Matches reports whether every phrase occurs in the column name.
func (f FieldSpec) Matches(column string) bool {
	low := strings.ToLower(column)
	for _, p := range f.Phrases {
		if !strings.Contains(low, strings.ToLower(p)) {
			return false
		}
	}
	return true
}

// Resolution maps field names to the columns they resolved to. Optional
// fields with no match are absent.
type Resolution map[string]Column

// Lookup returns the column resolved for field.
func (r Resolution) Lookup(field string) (Column, bool) {
	c, ok := r[field]
	return c, ok
}

// Resolve picks, for each field, the leftmost column whose name matches all
// of the field's phrases. A required field without a match fails with
// *RequiredColumnMissingError; fields are checked in the order given.
func Resolve(cols []Column, fields []FieldSpec) (Resolution, error) {
	res := make(Resolution, len(fields))
	for _, f := range fields {
		found := false
		for _, c := range cols {
			if f.Matches(c.Name) {
				res[f.Name] = c
				found = true
				break
			}
		}
		if !found && f.Required {
			seen := make([]string, len(cols))
			for i, c := range cols {
				seen[i] = c.Name
			}
			return nil, &RequiredColumnMissingError{Field: f.Name, Phrases: f.Phrases, Seen: seen}
		}
	}
	return res, nil
}
