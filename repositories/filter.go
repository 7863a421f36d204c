package repositories

import (
	"fmt"
	"strings"

	"github.com/blogem/contacts/database"
	"github.com/blogem/contacts/models"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// filterColumn maps a search field onto its column. Column names are never
// taken from input directly.
func filterColumn(field models.SearchField) (string, error) {
	switch field {
	case models.FieldName:
		return "name", nil
	case models.FieldLocation:
		return "location", nil
	default:
		return "", fmt.Errorf("unsupported filter field %q", field)
	}
}

// whereClause renders f as a WHERE clause and its arguments. An empty filter
// renders nothing.
//
// The insensitive match lowers both sides with database.LowerFunc before LIKE,
// since SQLite itself only folds ASCII. instr() is an exact substring test
// for the sensitive one.
func whereClause(f models.Filter) (string, []any, error) {
	if f.IsEmpty() {
		return "", nil, nil
	}

	column, err := filterColumn(f.Field)
	if err != nil {
		return "", nil, err
	}

	if f.CaseSensitive {
		return " WHERE instr(" + column + ", ?) > 0", []any{f.Term}, nil
	}
	term := "%" + likeEscaper.Replace(strings.ToLower(f.Term)) + "%"
	return " WHERE " + database.LowerFunc + "(" + column + `) LIKE ? ESCAPE '\'`, []any{term}, nil
}
