package builder

import "net/http"

// QueryError carries the status a client should see for a failed request.
type QueryError struct {
	msg    string
	status int
}

func NewQueryError(status int, msg string) *QueryError {
	return &QueryError{msg: msg, status: status}
}

func (e QueryError) Error() string { return e.msg }
func (e QueryError) Status() int   { return e.status }

func badRequest(msg string) *QueryError { return NewQueryError(http.StatusBadRequest, msg) }
