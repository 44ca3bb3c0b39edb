package conn

import (
	"fmt"
	"net/http"

	"github.com/tobsdb/flatdb/internal/builder"
	"github.com/tobsdb/flatdb/pkg"
)

type RequestAction string

const (
	RequestActionCreate     RequestAction = "create"
	RequestActionCreateMany RequestAction = "createMany"
	RequestActionFind       RequestAction = "findUnique"
	RequestActionFindMany   RequestAction = "findMany"
	RequestActionCount      RequestAction = "count"
	RequestActionDelete     RequestAction = "deleteUnique"
	RequestActionDeleteMany RequestAction = "deleteMany"
	RequestActionUpdate     RequestAction = "updateUnique"
	RequestActionUpdateMany RequestAction = "updateMany"
)

func (action RequestAction) IsReadOnly() bool {
	return action == RequestActionFind || action == RequestActionFindMany || action == RequestActionCount
}

// ActionHandler runs one request against schema.
// Read-only actions share the schema lock; the rest take it exclusively.
func ActionHandler(schema *builder.Schema, action RequestAction, raw []byte) Response {
	var res Response
	handle := func() { res = dispatch(schema, action, raw) }

	if action.IsReadOnly() {
		pkg.RLockWrap(schema, handle)
	} else {
		pkg.LockWrap(schema, handle)
	}
	return res
}

func dispatch(schema *builder.Schema, action RequestAction, raw []byte) Response {
	switch action {
	case RequestActionCreate:
		return CreateReqHandler(schema, raw)
	case RequestActionCreateMany:
		return CreateManyReqHandler(schema, raw)
	case RequestActionFind:
		return FindReqHandler(schema, raw)
	case RequestActionFindMany:
		return FindManyReqHandler(schema, raw)
	case RequestActionCount:
		return CountReqHandler(schema, raw)
	case RequestActionDelete:
		return DeleteReqHandler(schema, raw)
	case RequestActionDeleteMany:
		return DeleteManyReqHandler(schema, raw)
	case RequestActionUpdate:
		return UpdateReqHandler(schema, raw)
	case RequestActionUpdateMany:
		return UpdateManyReqHandler(schema, raw)
	default:
		return NewErrorResponse(http.StatusBadRequest, fmt.Sprintf("unknown action: %s", action))
	}
}
