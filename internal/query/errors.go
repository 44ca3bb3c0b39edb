package query

import (
	"errors"
	"net/http"
)

// StatusError is an error that knows the status a client should see.
// Both *builder.QueryError and *where.TableNotFoundError implement it.
type StatusError interface {
	error
	Status() int
}

// ErrorStatus returns the status carried by err, or 400 when it carries none.
func ErrorStatus(err error) int {
	var status_err StatusError
	if errors.As(err, &status_err) {
		return status_err.Status()
	}
	return http.StatusBadRequest
}
