package builder

import (
	"sync"

	"github.com/tobsdb/flatdb/pkg"
	sorted "github.com/tobshub/go-sortedmap"
)

// Maps row field name to its saved data
type TDBTableRow = pkg.Map[string, any]

// RowEntry is a stored row together with the id it is kept under.
type RowEntry struct {
	Id  int
	Row TDBTableRow
}

func tdbTableRowsComparisonFunc(a, b RowEntry) bool {
	return a.Id < b.Id
}

// Maps row id to its saved data, ordered by id
type TDBTableRows struct {
	locker sync.RWMutex
	Map    *sorted.SortedMap[int, RowEntry]
}

func NewTDBTableRows() *TDBTableRows {
	return &TDBTableRows{Map: sorted.New[int, RowEntry](0, tdbTableRowsComparisonFunc)}
}

func (r *TDBTableRows) Get(id int) (TDBTableRow, bool) {
	r.locker.RLock()
	defer r.locker.RUnlock()
	entry, ok := r.Map.Get(id)
	if !ok {
		return nil, false
	}
	return entry.Row, true
}

func (r *TDBTableRows) Insert(id int, row TDBTableRow) bool {
	r.locker.Lock()
	defer r.locker.Unlock()
	return r.Map.Insert(id, RowEntry{id, row})
}

func (r *TDBTableRows) Replace(id int, row TDBTableRow) {
	r.locker.Lock()
	defer r.locker.Unlock()
	r.Map.Replace(id, RowEntry{id, row})
}

func (r *TDBTableRows) Delete(id int) bool {
	r.locker.Lock()
	defer r.locker.Unlock()
	return r.Map.Delete(id)
}

func (r *TDBTableRows) Has(id int) bool {
	r.locker.RLock()
	defer r.locker.RUnlock()
	_, ok := r.Map.Get(id)
	return ok
}

func (r *TDBTableRows) Len() int {
	r.locker.RLock()
	defer r.locker.RUnlock()
	return r.Map.Len()
}

// Entries returns a snapshot of every row in id order.
func (r *TDBTableRows) Entries() []RowEntry {
	r.locker.RLock()
	defer r.locker.RUnlock()

	entries := make([]RowEntry, 0, r.Map.Len())
	if r.Map.Len() == 0 {
		return entries
	}

	iterCh, err := r.Map.IterCh()
	if err != nil {
		return entries
	}

	for rec := range iterCh.Records() {
		entries = append(entries, rec.Val)
	}
	return entries
}
