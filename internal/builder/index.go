package builder

import (
	"fmt"
	"sync"
	"time"

	"github.com/tobsdb/flatdb/pkg"
)

type (
	TDBTableIndexMap struct {
		locker sync.RWMutex
		Map    map[string]int
	}
	// index field name -> index value -> row id
	TDBTableIndexes = pkg.Map[string, *TDBTableIndexMap]
)

func NewTDBTableIndexMap() *TDBTableIndexMap {
	return &TDBTableIndexMap{Map: make(map[string]int)}
}

func formatIndexValue(v any) string {
	if t, ok := v.(time.Time); ok {
		return t.UTC().Format(time.RFC3339Nano)
	}
	return fmt.Sprintf("%v", v)
}

func (m *TDBTableIndexMap) Has(key any) bool {
	m.locker.RLock()
	defer m.locker.RUnlock()
	_, ok := m.Map[formatIndexValue(key)]
	return ok
}

func (m *TDBTableIndexMap) Get(key any) (int, bool) {
	m.locker.RLock()
	defer m.locker.RUnlock()
	val, ok := m.Map[formatIndexValue(key)]
	return val, ok
}

func (m *TDBTableIndexMap) Set(key any, value int) {
	m.locker.Lock()
	defer m.locker.Unlock()
	m.Map[formatIndexValue(key)] = value
}

func (m *TDBTableIndexMap) Delete(key any) {
	m.locker.Lock()
	defer m.locker.Unlock()
	delete(m.Map, formatIndexValue(key))
}

func (m *TDBTableIndexMap) Len() int {
	m.locker.RLock()
	defer m.locker.RUnlock()
	return len(m.Map)
}
