package conn_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/tobsdb/flatdb/internal/builder"
	. "github.com/tobsdb/flatdb/internal/conn"
	"gotest.tools/assert"
)

func reqEncode(v map[string]any) []byte {
	buf, _ := json.Marshal(v)
	return buf
}

func newTestSchema(t *testing.T) *builder.Schema {
	schema, err := builder.ParseSchema(`
$TABLE a {
    id Int key(primary)
    b Int unique(true)
    c String optional(true)
}`)
	assert.NilError(t, err)
	return schema
}

func newPopulatedTestSchema(t *testing.T, n int) *builder.Schema {
	schema := newTestSchema(t)
	for i := 1; i <= n; i++ {
		res := CreateReqHandler(schema, reqEncode(map[string]any{"table": "a", "data": map[string]any{"b": i}}))
		assert.Equal(t, res.Status, http.StatusCreated, res.Message)
	}
	return schema
}

func TestCreateReqHandler(t *testing.T) {
	t.Run("table not found", func(t *testing.T) {
		schema := newTestSchema(t)
		res := CreateReqHandler(schema, reqEncode(map[string]any{"table": "b", "data": map[string]any{"a": 1}}))

		assert.Equal(t, res.Status, http.StatusNotFound, res.Message)
		assert.Equal(t, res.Message, "Table b not found")
	})

	t.Run("simple create", func(t *testing.T) {
		schema := newTestSchema(t)
		res := CreateReqHandler(schema, reqEncode(map[string]any{"table": "a", "data": map[string]any{"b": 1}}))

		assert.Equal(t, res.Status, http.StatusCreated, res.Message)
		assert.Equal(t, res.Message, "Created new row in table a")
		assert.Equal(t, res.Data.(builder.TDBTableRow).Get("b"), 1)
	})

	t.Run("duplicate error", func(t *testing.T) {
		schema := newTestSchema(t)
		raw := reqEncode(map[string]any{"table": "a", "data": map[string]any{"b": 1}})
		CreateReqHandler(schema, raw)
		res := CreateReqHandler(schema, raw)

		assert.Equal(t, res.Status, http.StatusConflict, res.Message)
		assert.Equal(t, res.Message, "Value for unique field b already exists")
	})

	t.Run("bad json", func(t *testing.T) {
		res := CreateReqHandler(newTestSchema(t), []byte(`{"table": `))
		assert.Equal(t, res.Status, http.StatusBadRequest)
	})
}

func TestCreateManyReqHandler(t *testing.T) {
	schema := newTestSchema(t)
	res := CreateManyReqHandler(schema, reqEncode(map[string]any{
		"table": "a",
		"data":  []map[string]any{{"b": 1}, {"b": 2}, {"b": 1}},
	}))

	assert.Equal(t, res.Status, http.StatusConflict, res.Message)
	assert.Equal(t, len(res.Data.([]builder.TDBTableRow)), 2)

	res = CreateManyReqHandler(schema, reqEncode(map[string]any{
		"table": "a",
		"data":  []map[string]any{{"b": 3}, {"b": 4}},
	}))
	assert.Equal(t, res.Status, http.StatusCreated, res.Message)
	assert.Equal(t, res.Message, "Created 2 new rows in table a")
}

func TestFindManyReqHandler(t *testing.T) {
	schema := newPopulatedTestSchema(t, 10)

	t.Run("where and window", func(t *testing.T) {
		res := FindManyReqHandler(schema, reqEncode(map[string]any{
			"table":    "a",
			"where":    map[string]any{"b": map[string]any{"gte": 3, "lt": 8}},
			"order_by": []map[string]any{{"column": "b", "desc": true}},
			"offset":   1,
			"limit":    2,
			"columns":  []string{"b"},
		}))

		assert.Equal(t, res.Status, http.StatusOK, res.Message)
		assert.DeepEqual(t, res.Data, []map[string]any{{"b": 6}, {"b": 5}})
	})

	t.Run("unknown table in where", func(t *testing.T) {
		res := FindManyReqHandler(schema, reqEncode(map[string]any{
			"table": "a",
			"where": map[string]any{"column": "x.b", "op": "=", "value": 1},
		}))

		assert.Equal(t, res.Status, http.StatusNotFound, res.Message)
		assert.Equal(t, res.Message, "Table x not found")
	})

	t.Run("invalid where", func(t *testing.T) {
		res := FindManyReqHandler(schema, reqEncode(map[string]any{
			"table": "a",
			"where": map[string]any{"op": "=", "value": 1},
		}))

		assert.Equal(t, res.Status, http.StatusBadRequest, res.Message)
		assert.Equal(t, res.Message, "Where comparison is missing a column")
	})

	t.Run("unknown operator matches everything", func(t *testing.T) {
		res := FindManyReqHandler(schema, reqEncode(map[string]any{
			"table": "a",
			"where": map[string]any{"column": "b", "op": "SOUNDS LIKE", "value": 1},
		}))

		assert.Equal(t, res.Status, http.StatusOK, res.Message)
		assert.Equal(t, len(res.Data.([]map[string]any)), 10)
	})
}

func TestCountReqHandler(t *testing.T) {
	schema := newPopulatedTestSchema(t, 10)
	res := CountReqHandler(schema, reqEncode(map[string]any{
		"table": "a",
		"where": map[string]any{"column": "b", "op": "in", "value": []int{1, 2, 30}},
	}))

	assert.Equal(t, res.Status, http.StatusOK, res.Message)
	assert.Equal(t, res.Data, 2)
}

func TestDeleteManyReqHandler(t *testing.T) {
	schema := newPopulatedTestSchema(t, 10)

	res := DeleteManyReqHandler(schema, reqEncode(map[string]any{
		"table": "a",
		"where": map[string]any{"column": "b", "op": ">", "value": 7},
	}))
	assert.Equal(t, res.Status, http.StatusOK, res.Message)
	assert.Equal(t, res.Data, 3)
	assert.Equal(t, res.Message, "Deleted 3 rows in table a")

	res = CountReqHandler(schema, reqEncode(map[string]any{"table": "a"}))
	assert.Equal(t, res.Data, 7)

	t.Run("empty where is refused", func(t *testing.T) {
		for _, req := range []map[string]any{
			{"table": "a"},
			{"table": "a", "where": map[string]any{}},
			{"table": "a", "where": map[string]any{"and": []any{}}},
		} {
			res := DeleteManyReqHandler(schema, reqEncode(req))
			assert.Equal(t, res.Status, http.StatusBadRequest, res.Message)
			assert.Equal(t, res.Message, "Where constraints cannot be empty")
		}

		res := CountReqHandler(schema, reqEncode(map[string]any{"table": "a"}))
		assert.Equal(t, res.Data, 7)
	})
}

func TestUpdateManyReqHandler(t *testing.T) {
	schema := newPopulatedTestSchema(t, 10)

	res := UpdateManyReqHandler(schema, reqEncode(map[string]any{
		"table": "a",
		"where": map[string]any{"column": "b", "op": ">", "value": 7},
		"data":  map[string]any{"c": "big"},
	}))
	assert.Equal(t, res.Status, http.StatusOK, res.Message)
	assert.Equal(t, res.Message, "Updated 3 rows in table a")

	res = CountReqHandler(schema, reqEncode(map[string]any{
		"table": "a",
		"where": map[string]any{"c": "big"},
	}))
	assert.Equal(t, res.Data, 3)

	t.Run("empty where is refused", func(t *testing.T) {
		res := UpdateManyReqHandler(schema, reqEncode(map[string]any{
			"table": "a",
			"data":  map[string]any{"c": "all"},
		}))
		assert.Equal(t, res.Status, http.StatusBadRequest, res.Message)
		assert.Equal(t, res.Message, "Where constraints cannot be empty")
	})

	t.Run("stops at the first failure", func(t *testing.T) {
		res := UpdateManyReqHandler(schema, reqEncode(map[string]any{
			"table": "a",
			"where": map[string]any{"column": "b", "op": "<=", "value": 2},
			"data":  map[string]any{"b": 100},
		}))
		assert.Equal(t, res.Status, http.StatusConflict, res.Message)
		assert.Equal(t, len(res.Data.([]builder.TDBTableRow)), 1)
	})
}

func TestUniqueReqHandlers(t *testing.T) {
	schema := newPopulatedTestSchema(t, 3)

	t.Run("find by unique field", func(t *testing.T) {
		res := FindReqHandler(schema, reqEncode(map[string]any{"table": "a", "where": map[string]any{"b": 2}}))
		assert.Equal(t, res.Status, http.StatusOK, res.Message)
		assert.Equal(t, res.Data.(builder.TDBTableRow).Get("id"), 2)
	})

	t.Run("other constraints must match", func(t *testing.T) {
		res := FindReqHandler(schema, reqEncode(map[string]any{"table": "a", "where": map[string]any{"id": 2, "c": "x"}}))
		assert.Equal(t, res.Status, http.StatusNotFound, res.Message)
		assert.Equal(t, res.Message, "No row found in table a")
	})

	t.Run("needs a unique field", func(t *testing.T) {
		res := FindReqHandler(schema, reqEncode(map[string]any{"table": "a", "where": map[string]any{"c": "x"}}))
		assert.Equal(t, res.Status, http.StatusBadRequest, res.Message)
		assert.Equal(t, res.Message, "Unique fields not included in findUnique request")

		res = FindReqHandler(schema, reqEncode(map[string]any{"table": "a", "where": map[string]any{}}))
		assert.Equal(t, res.Message, "Where constraints cannot be empty")
	})

	t.Run("update", func(t *testing.T) {
		res := UpdateReqHandler(schema, reqEncode(map[string]any{
			"table": "a",
			"where": map[string]any{"id": 2},
			"data":  map[string]any{"c": "x", "b": map[string]any{"increment": 10}},
		}))
		assert.Equal(t, res.Status, http.StatusOK, res.Message)
		assert.Equal(t, res.Data.(builder.TDBTableRow).Get("b"), 12)

		res = FindReqHandler(schema, reqEncode(map[string]any{"table": "a", "where": map[string]any{"b": 12, "c": "x"}}))
		assert.Equal(t, res.Status, http.StatusOK, res.Message)
	})

	t.Run("delete", func(t *testing.T) {
		res := DeleteReqHandler(schema, reqEncode(map[string]any{"table": "a", "where": map[string]any{"b": 1}}))
		assert.Equal(t, res.Status, http.StatusOK, res.Message)
		assert.Equal(t, res.Message, "Deleted row in table a")

		res = DeleteReqHandler(schema, reqEncode(map[string]any{"table": "a", "where": map[string]any{"b": 1}}))
		assert.Equal(t, res.Status, http.StatusNotFound, res.Message)

		res = CountReqHandler(schema, reqEncode(map[string]any{"table": "a"}))
		assert.Equal(t, res.Data, 2)
	})
}

func TestActionHandler(t *testing.T) {
	schema := newPopulatedTestSchema(t, 2)

	res := ActionHandler(schema, RequestActionCount, reqEncode(map[string]any{"table": "a"}))
	assert.Equal(t, res.Status, http.StatusOK, res.Message)
	assert.Equal(t, res.Data, 2)

	res = ActionHandler(schema, RequestActionFind, reqEncode(map[string]any{"table": "a", "where": map[string]any{"id": 1}}))
	assert.Equal(t, res.Status, http.StatusOK, res.Message)

	res = ActionHandler(schema, "dropTable", nil)
	assert.Equal(t, res.Status, http.StatusBadRequest)
	assert.Equal(t, res.Message, "unknown action: dropTable")

	assert.Assert(t, RequestActionFindMany.IsReadOnly())
	assert.Assert(t, RequestActionFind.IsReadOnly())
	assert.Assert(t, !RequestActionDeleteMany.IsReadOnly())
	assert.Assert(t, !RequestActionUpdateMany.IsReadOnly())
}
