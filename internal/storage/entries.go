package storage

import (
	"fmt"

	"controle/internal/core"
)

// Kinds are stored in lower-case English so the CHECK constraint stays
// independent from display labels.
func kindToDB(k core.Kind) string {
	if k == core.Income {
		return "income"
	}
	return "expense"
}

func kindFromDB(s string) (core.Kind, error) {
	k, err := core.ParseKind(s)
	if err != nil {
		return 0, fmt.Errorf("stored kind %q: %w", s, err)
	}
	return k, nil
}
