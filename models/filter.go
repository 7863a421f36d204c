package models

import "fmt"

// SearchField names a text column a user listing can be filtered on.
type SearchField string

const (
	FieldName     SearchField = "name"
	FieldLocation SearchField = "location"
)

// ParseSearchField converts a route parameter into a SearchField.
func ParseSearchField(s string) (SearchField, error) {
	switch SearchField(s) {
	case FieldName, FieldLocation:
		return SearchField(s), nil
	default:
		return "", fmt.Errorf("unknown search field %q", s)
	}
}

// Filter is a substring match on one field. An empty Term matches everything.
type Filter struct {
	Field         SearchField `json:"field"`
	Term          string      `json:"term"`
	CaseSensitive bool        `json:"case_sensitive"`
}

// IsEmpty reports whether the filter matches every record.
func (f Filter) IsEmpty() bool {
	return f.Term == ""
}
