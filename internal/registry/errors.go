package registry

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotSelected is returned when no database is current and none was named.
var ErrNotSelected = errors.New("No database selected. Use switch_database() or provide a database name.")

// NotFoundError reports a lookup for a name the registry does not hold. It
// carries every known name so callers can surface the alternatives.
type NotFoundError struct {
	Name  string
	Known []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Database '%s' not found. Available databases: %s", e.Name, strings.Join(e.Known, ", "))
}
