package generation

import (
	"errors"
	"fmt"
)

var (
	ErrNoTables             = errors.New("no tables to generate")
	ErrProjectNotFound      = errors.New("project not found")
	ErrUnknownDBMS          = errors.New("unrecognized DBMS")
	ErrConnectionUnresolved = errors.New("database connection could not be resolved")
)

// MappingError reports a file column that neither index nor name resolves.
type MappingError struct {
	Path   string
	Column string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("file %s has no column %q", e.Path, e.Column)
}
