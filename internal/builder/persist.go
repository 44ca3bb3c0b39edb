package builder

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/tobsdb/flatdb/internal/paging"
)

const (
	SCHEMA_FILE = "schema.tdb"
	META_FILE   = "meta.tdb"
	PAGES_DIR   = "pages"
)

// tableMeta is what a table keeps next to its pages.
type tableMeta struct {
	FirstPage string `json:"first_page"`
	IdTracker int64  `json:"id_tracker"`
}

func GobRegisterTypes() {
	gob.Register(int(0))
	gob.Register(float64(0.))
	gob.Register(string(""))
	gob.Register(time.Time{})
	gob.Register(bool(false))
	gob.Register([]any{})
	gob.Register(map[string]any{})
}

func init() { GobRegisterTypes() }

// LoadSchema restores a schema and its rows from a directory written by WriteToFile.
func LoadSchema(base string) (*Schema, error) {
	data, err := os.ReadFile(path.Join(base, SCHEMA_FILE))
	if err != nil {
		return nil, err
	}

	schema, err := ParseSchema(string(data))
	if err != nil {
		return nil, err
	}
	schema.SetBase(base)

	for _, table := range schema.Tables.Values() {
		if err := table.loadFromFile(); err != nil {
			return nil, fmt.Errorf("failed to load table %s: %w", table.Name, err)
		}
	}
	schema.last_write.Store(time.Now().UnixNano())

	return schema, nil
}

// HasSavedSchema reports whether base holds a written schema.
func HasSavedSchema(base string) bool {
	_, err := os.Stat(path.Join(base, SCHEMA_FILE))
	return err == nil
}

func (s *Schema) WriteToFile() error {
	if s.InMem() {
		return nil
	}
	started := time.Now().UnixNano()

	if err := os.MkdirAll(s.base, 0755); err != nil {
		return err
	}
	if err := os.WriteFile(path.Join(s.base, SCHEMA_FILE), []byte(s.Source), 0644); err != nil {
		return err
	}

	for _, table := range s.Tables.Values() {
		if err := table.WriteToFile(); err != nil {
			return fmt.Errorf("failed to write table %s: %w", table.Name, err)
		}
	}

	s.last_write.Store(started)
	return nil
}

func (t *Table) Base() string {
	return path.Join(t.Schema.Base(), t.Name)
}

// WriteToFile rewrites the table's page chain and meta file.
// Pages are written to a scratch directory first and swapped in when complete.
func (t *Table) WriteToFile() error {
	base := t.Base()
	if err := os.MkdirAll(base, 0755); err != nil {
		return err
	}

	pages_dir := path.Join(base, PAGES_DIR)
	tmp_dir := pages_dir + ".tmp"
	if err := os.RemoveAll(tmp_dir); err != nil {
		return err
	}
	if err := os.Mkdir(tmp_dir, 0755); err != nil {
		return err
	}

	first_page, err := writePages(tmp_dir, t.Entries())
	if err != nil {
		return err
	}

	if err := os.RemoveAll(pages_dir); err != nil {
		return err
	}
	if err := os.Rename(tmp_dir, pages_dir); err != nil {
		return err
	}
	t.first_page_id = first_page.String()

	meta, err := json.Marshal(tableMeta{FirstPage: t.first_page_id, IdTracker: t.IdTracker.Load()})
	if err != nil {
		return err
	}
	return os.WriteFile(path.Join(base, META_FILE), meta, 0644)
}

func writePages(base string, entries []RowEntry) (uuid.UUID, error) {
	page := paging.NewPage(uuid.Nil, uuid.Nil)
	first_page := page.Id()

	for _, entry := range entries {
		var buf bytes.Buffer
		if err := gob.NewEncoder(&buf).Encode(entry); err != nil {
			return uuid.Nil, err
		}

		err := page.Push(buf.Bytes())
		if errors.Is(err, paging.ERR_PAGE_OVERFLOW) {
			next := paging.NewPage(page.Id(), uuid.Nil)
			page.Next = next.Id()
			if err := page.WriteToFile(base); err != nil {
				return uuid.Nil, err
			}
			page = next
			err = page.Push(buf.Bytes())
		}
		if err != nil {
			return uuid.Nil, fmt.Errorf("row %d: %w", entry.Id, err)
		}
	}

	if err := page.WriteToFile(base); err != nil {
		return uuid.Nil, err
	}
	return first_page, nil
}

func (t *Table) loadFromFile() error {
	meta_buf, err := os.ReadFile(path.Join(t.Base(), META_FILE))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	var meta tableMeta
	if err := json.Unmarshal(meta_buf, &meta); err != nil {
		return err
	}

	pages_dir := path.Join(t.Base(), PAGES_DIR)
	if len(meta.FirstPage) == 0 {
		return nil
	}
	page_id, err := uuid.Parse(meta.FirstPage)
	if err != nil {
		return err
	}
	for page_id != uuid.Nil {
		page, err := paging.LoadPageUUID(pages_dir, page_id)
		if err != nil {
			return err
		}

		r := page.NewReader()
		for r.ReadNext() {
			var entry RowEntry
			if err := gob.NewDecoder(bytes.NewReader(r.Buf)).Decode(&entry); err != nil {
				return err
			}
			t.restore(entry)
		}
		if err := r.Err(); err != nil {
			return err
		}

		page_id = page.Next
	}

	t.trackId(int(meta.IdTracker))
	t.first_page_id = meta.FirstPage
	return nil
}

// restore puts a saved row back without re-validating it.
func (t *Table) restore(entry RowEntry) {
	if entry.Row == nil {
		entry.Row = TDBTableRow{}
	}
	if !t.rows.Insert(entry.Id, entry.Row) {
		t.rows.Replace(entry.Id, entry.Row)
	}
	for _, field := range t.uniqueFields() {
		if value := entry.Row.Get(field.Name); value != nil {
			t.IndexMap(field.Name).Set(value, entry.Id)
		}
	}
	t.trackId(entry.Id)
}
