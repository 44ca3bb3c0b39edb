package conn

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tobsdb/flatdb/internal/builder"
	"github.com/tobsdb/flatdb/internal/query"
	"github.com/tobsdb/flatdb/internal/where"
	"github.com/tobsdb/flatdb/pkg"
)

type Response struct {
	Data    any    `json:"data"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	// don't manually set this. it comes from the client
	ReqId int `json:"__tdb_client_req_id__"`
}

func NewErrorResponse(status int, err string) Response {
	return Response{Message: err, Status: status}
}

func NewResponse(status int, message string, data any) Response {
	return Response{Data: data, Message: message, Status: status}
}

func (r Response) Marshal() []byte {
	buf, err := json.Marshal(r)
	if err != nil {
		pkg.ErrorLog("marshal response", err)
		buf, _ = json.Marshal(NewErrorResponse(http.StatusInternalServerError, err.Error()))
	}
	return buf
}

// errorResponse keeps the status an error carries; anything else is a bad request.
func errorResponse(err error) Response {
	return NewErrorResponse(query.ErrorStatus(err), err.Error())
}

type CreateRequest struct {
	Table string         `json:"table"`
	Data  query.QueryArg `json:"data"`
}

func CreateReqHandler(schema *builder.Schema, raw []byte) Response {
	var req CreateRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}

	res, err := query.Create(schema, req.Table, req.Data)
	if err != nil {
		return errorResponse(err)
	}

	return NewResponse(
		http.StatusCreated,
		fmt.Sprintf("Created new row in table %s", req.Table),
		res,
	)
}

type CreateManyRequest struct {
	Table string           `json:"table"`
	Data  []query.QueryArg `json:"data"`
}

func CreateManyReqHandler(schema *builder.Schema, raw []byte) Response {
	var req CreateManyRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}

	created_rows, err := query.CreateMany(schema, req.Table, req.Data)
	if err != nil {
		res := errorResponse(err)
		res.Data = created_rows
		return res
	}

	return NewResponse(
		http.StatusCreated,
		fmt.Sprintf("Created %d new rows in table %s", len(created_rows), req.Table),
		created_rows,
	)
}

func FindManyReqHandler(schema *builder.Schema, raw []byte) Response {
	var req query.FindRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}

	args, err := req.Args(schema)
	if err != nil {
		return errorResponse(err)
	}

	rows, err := query.FindMany(schema, args)
	if err != nil {
		return errorResponse(err)
	}

	return NewResponse(
		http.StatusOK,
		fmt.Sprintf("Found %d rows in table %s", len(rows), req.Table),
		rows,
	)
}

type WhereRequest struct {
	Table string          `json:"table"`
	Where json.RawMessage `json:"where"`
}

// decode reads the where clause. Actions that change many rows pass allow_empty_where as
// false, so a missing clause cannot reach every row of the table.
func (req WhereRequest) decode(schema *builder.Schema, allow_empty_where bool) (where.Expr, error) {
	expr, err := where.Decode(req.Where, query.Resolver(schema))
	if err != nil {
		return nil, err
	}
	if !allow_empty_where && isEmptyWhere(expr) {
		return nil, builder.NewQueryError(http.StatusBadRequest, "Where constraints cannot be empty")
	}
	return expr, nil
}

func isEmptyWhere(expr where.Expr) bool {
	switch expr.(type) {
	case nil, where.Empty, *where.Empty:
		return true
	}
	return false
}

func CountReqHandler(schema *builder.Schema, raw []byte) Response {
	var req WhereRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}

	expr, err := req.decode(schema, true)
	if err != nil {
		return errorResponse(err)
	}

	n, err := query.Count(schema, req.Table, expr)
	if err != nil {
		return errorResponse(err)
	}

	return NewResponse(http.StatusOK, fmt.Sprintf("Counted %d rows in table %s", n, req.Table), n)
}

func DeleteManyReqHandler(schema *builder.Schema, raw []byte) Response {
	var req WhereRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}

	expr, err := req.decode(schema, false)
	if err != nil {
		return errorResponse(err)
	}

	n, err := query.DeleteMany(schema, req.Table, expr)
	if err != nil {
		return errorResponse(err)
	}

	return NewResponse(http.StatusOK, fmt.Sprintf("Deleted %d rows in table %s", n, req.Table), n)
}

type UpdateManyRequest struct {
	WhereRequest
	Data query.QueryArg `json:"data"`
}

func UpdateManyReqHandler(schema *builder.Schema, raw []byte) Response {
	var req UpdateManyRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}

	expr, err := req.decode(schema, false)
	if err != nil {
		return errorResponse(err)
	}

	rows, err := query.UpdateMany(schema, req.Table, expr, req.Data)
	if err != nil {
		res := errorResponse(err)
		res.Data = rows
		return res
	}

	return NewResponse(http.StatusOK, fmt.Sprintf("Updated %d rows in table %s", len(rows), req.Table), rows)
}

// UniqueRequest names one row by a primary key or unique field in Where.
type UniqueRequest struct {
	Table string         `json:"table"`
	Where query.QueryArg `json:"where"`
	Data  query.QueryArg `json:"data"`
}

func FindReqHandler(schema *builder.Schema, raw []byte) Response {
	var req UniqueRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}

	row, err := query.FindUnique(schema, req.Table, req.Where)
	if err != nil {
		return errorResponse(err)
	}

	return NewResponse(http.StatusOK, fmt.Sprintf("Found row in table %s", req.Table), row)
}

func UpdateReqHandler(schema *builder.Schema, raw []byte) Response {
	var req UniqueRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}

	row, err := query.UpdateUnique(schema, req.Table, req.Where, req.Data)
	if err != nil {
		return errorResponse(err)
	}

	return NewResponse(http.StatusOK, fmt.Sprintf("Updated row in table %s", req.Table), row)
}

func DeleteReqHandler(schema *builder.Schema, raw []byte) Response {
	var req UniqueRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}

	row, err := query.DeleteUnique(schema, req.Table, req.Where)
	if err != nil {
		return errorResponse(err)
	}

	return NewResponse(http.StatusOK, fmt.Sprintf("Deleted row in table %s", req.Table), row)
}
