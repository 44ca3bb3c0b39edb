package query_test

import (
	"net/http"
	"testing"

	"github.com/tobsdb/flatdb/internal/builder"
	. "github.com/tobsdb/flatdb/internal/query"
	"github.com/tobsdb/flatdb/internal/where"
	"gotest.tools/assert"
)

func TestCreate(t *testing.T) {
	t.Run("create", func(t *testing.T) {
		schema := newTestSchema(t)
		row, err := Create(schema, "user", QueryArg{"name": "ada"})
		assert.NilError(t, err)
		assert.Equal(t, row.Get("name"), "ada")
		assert.Equal(t, row.Get("id"), 1)
	})

	t.Run("unknown table", func(t *testing.T) {
		schema := newTestSchema(t)
		_, err := Create(schema, "comment", QueryArg{})
		assert.Equal(t, ErrorStatus(err), http.StatusNotFound)
	})

	t.Run("create many stops at the first failure", func(t *testing.T) {
		schema := newTestSchema(t)
		created, err := CreateMany(schema, "user", []QueryArg{
			{"name": "ada"},
			{"name": 1},
			{"name": "cat"},
		})
		assert.ErrorContains(t, err, "Invalid field type for name")
		assert.Equal(t, ErrorStatus(err), http.StatusBadRequest)
		assert.Equal(t, len(created), 1)

		n, err := Count(schema, "user", nil)
		assert.NilError(t, err)
		assert.Equal(t, n, 1)
	})
}

func TestFindMany(t *testing.T) {
	schema := newTestSchema(t)
	seed(t, schema)

	rows, err := FindMany(schema, FindArgs{
		Table:   "user",
		Where:   where.Compare(where.Unqualified("NAME"), where.OpEqual, "bob"),
		Columns: []string{"id", "name"},
	})
	assert.NilError(t, err)
	assert.DeepEqual(t, rows, []map[string]any{{"id": 2, "name": "bob"}})

	t.Run("joined columns keep their table", func(t *testing.T) {
		rows, err := FindMany(schema, FindArgs{
			Table:   "user",
			Joins:   []Join{{Table: "post", LeftKey: "id", RightKey: "author"}},
			Where:   where.Compare(where.Qualified("post", "title"), where.OpEqual, "hello"),
			Columns: []string{"id", "post.id", "post.title"},
		})
		assert.NilError(t, err)
		assert.DeepEqual(t, rows, []map[string]any{{"id": 2, "post.id": 3, "post.title": "hello"}})
	})
}

func TestUpdateMany(t *testing.T) {
	schema := newTestSchema(t)
	seed(t, schema)

	rows, err := UpdateMany(schema, "post", where.Compare(where.Unqualified("author"), where.OpEqual, 1), QueryArg{"title": "old"})
	assert.NilError(t, err)
	assert.Equal(t, len(rows), 2)

	n, err := Count(schema, "post", where.Compare(where.Unqualified("title"), where.OpEqual, "old"))
	assert.NilError(t, err)
	assert.Equal(t, n, 2)

	_, err = UpdateMany(schema, "post", nil, QueryArg{"author": 9})
	assert.ErrorContains(t, err, "No row found for relation table user")
}

func TestFindUnique(t *testing.T) {
	schema := newTestSchema(t)
	seed(t, schema)

	row, err := FindUnique(schema, "post", QueryArg{"id": float64(3), "title": "hello"})
	assert.NilError(t, err)
	assert.Equal(t, row.Get("author"), 2)

	_, err = FindUnique(schema, "post", QueryArg{"id": 3, "title": "nope"})
	assert.Equal(t, ErrorStatus(err), http.StatusNotFound)

	_, err = FindUnique(schema, "t", QueryArg{"a": 1})
	assert.ErrorContains(t, err, "Table does not have any unique fields")

	_, err = FindUnique(schema, "post", QueryArg{"views": 1})
	assert.ErrorContains(t, err, "Field views does not exist on table post")

	row, err = DeleteUnique(schema, "post", QueryArg{"id": 1})
	assert.NilError(t, err)
	assert.Equal(t, row.Get("title"), "engines")

	row, err = UpdateUnique(schema, "post", QueryArg{"id": 2}, QueryArg{"title": "renamed"})
	assert.NilError(t, err)
	assert.Equal(t, row.Get("title"), "renamed")

	n, err := Count(schema, "post", nil)
	assert.NilError(t, err)
	assert.Equal(t, n, 2)
}

func TestCountAndDeleteMany(t *testing.T) {
	schema := newTestSchema(t)
	seed(t, schema)

	by_ada := where.Compare(where.Unqualified("author"), where.OpEqual, 1)

	n, err := Count(schema, "post", by_ada)
	assert.NilError(t, err)
	assert.Equal(t, n, 2)

	deleted, err := DeleteMany(schema, "post", by_ada)
	assert.NilError(t, err)
	assert.Equal(t, deleted, 2)

	n, err = Count(schema, "post", nil)
	assert.NilError(t, err)
	assert.Equal(t, n, 1)

	_, err = DeleteMany(schema, "post", where.Compare(where.Qualified("x", "a"), where.OpEqual, 1))
	assert.ErrorContains(t, err, "Table x not found")

	_, err = Count(schema, "comment", nil)
	assert.ErrorContains(t, err, "Table comment not found")
}

func TestErrorStatus(t *testing.T) {
	assert.Equal(t, ErrorStatus(builder.NewQueryError(http.StatusConflict, "taken")), http.StatusConflict)
	assert.Equal(t, ErrorStatus(&where.TableNotFoundError{Table: "a"}), http.StatusNotFound)
	assert.Equal(t, ErrorStatus(http.ErrBodyNotAllowed), http.StatusBadRequest)
}
