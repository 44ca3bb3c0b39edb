package where

import (
	"fmt"
	"net/http"
)

// TableNotFoundError is raised when a qualified column names a table the catalog does not know.
type TableNotFoundError struct {
	Table string
}

func (e *TableNotFoundError) Error() string {
	return fmt.Sprintf("Table %s not found", e.Table)
}

func (e *TableNotFoundError) Status() int { return http.StatusNotFound }
