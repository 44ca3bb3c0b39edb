package builder_test

import (
	"fmt"
	"os"
	"path"
	"strings"
	"testing"
	"time"

	. "github.com/tobsdb/flatdb/internal/builder"
	"gotest.tools/assert"
)

func TestWriteAndLoadSchema(t *testing.T) {
	base := t.TempDir()

	s := newTestSchema(t)
	s.SetBase(base)
	user, _ := s.GetTable("user")
	post, _ := s.GetTable("post")

	// enough rows to spill over several pages
	for i := 0; i < 200; i++ {
		_, err := user.Insert(map[string]any{
			"name":  strings.Repeat("n", 50),
			"email": fmt.Sprintf("user%d@x.io", i),
		})
		assert.NilError(t, err)
	}
	_, err := post.Insert(map[string]any{
		"author": 3,
		"title":  "t",
		"tags":   map[string]any{"lang": "go", "n": 1.0},
	})
	assert.NilError(t, err)
	assert.Assert(t, user.Delete(7))

	assert.Assert(t, s.Dirty())
	assert.NilError(t, s.WriteToFile())
	assert.Assert(t, !s.Dirty())
	assert.Assert(t, HasSavedSchema(base))

	pages, err := os.ReadDir(path.Join(base, "user", PAGES_DIR))
	assert.NilError(t, err)
	assert.Assert(t, len(pages) > 1, "expected more than one page")

	loaded, err := LoadSchema(base)
	assert.NilError(t, err)
	assert.Equal(t, loaded.Base(), base)

	loaded_user, _ := loaded.GetTable("user")
	assert.Equal(t, loaded_user.Len(), 199)
	assert.DeepEqual(t, loaded_user.Scan(), user.Scan())

	loaded_post, _ := loaded.GetTable("post")
	assert.DeepEqual(t, loaded_post.Scan(), post.Scan())

	// ids and unique indexes survive the round trip
	row, err := loaded_user.Insert(map[string]any{"name": "x", "email": "new@x.io"})
	assert.NilError(t, err)
	assert.Equal(t, row.Get("id"), 201)
	_, err = loaded_user.Insert(map[string]any{"name": "x", "email": "user1@x.io"})
	assert.ErrorContains(t, err, "Value for unique field email already exists")
}

func TestWriteDates(t *testing.T) {
	base := t.TempDir()
	s, err := ParseSchema("$TABLE e {\n at Date\n}")
	assert.NilError(t, err)
	s.SetBase(base)

	e, _ := s.GetTable("e")
	at := time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC)
	_, err = e.Insert(map[string]any{"at": at})
	assert.NilError(t, err)
	assert.NilError(t, s.WriteToFile())

	loaded, err := LoadSchema(base)
	assert.NilError(t, err)
	loaded_e, _ := loaded.GetTable("e")
	row, ok := loaded_e.Row(1)
	assert.Assert(t, ok)
	assert.Assert(t, row.Get("at").(time.Time).Equal(at))
}

func TestInMemWriteIsNoop(t *testing.T) {
	s := newTestSchema(t)
	assert.Assert(t, s.InMem())
	assert.NilError(t, s.WriteToFile())
}

func TestLoadSchemaMissing(t *testing.T) {
	_, err := LoadSchema(t.TempDir())
	assert.Assert(t, err != nil)
	assert.Assert(t, !HasSavedSchema(t.TempDir()))
}
