package conn_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tobsdb/flatdb/internal/builder"
	. "github.com/tobsdb/flatdb/internal/conn"
	"gotest.tools/assert"
)

func newTestServer(t *testing.T, schema *builder.Schema) *httptest.Server {
	srv := httptest.NewServer(NewServer(schema, 0).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	assert.NilError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, req map[string]any) Response {
	assert.NilError(t, conn.WriteJSON(req))
	var res Response
	assert.NilError(t, conn.ReadJSON(&res))
	return res
}

func TestServerWebsocket(t *testing.T) {
	srv := newTestServer(t, newTestSchema(t))
	conn := dial(t, srv)

	res := roundTrip(t, conn, map[string]any{
		"action":                "create",
		"table":                 "a",
		"data":                  map[string]any{"b": 1, "c": "one"},
		"__tdb_client_req_id__": 7,
	})
	assert.Equal(t, res.Status, http.StatusCreated, res.Message)
	assert.Equal(t, res.ReqId, 7)

	res = roundTrip(t, conn, map[string]any{
		"action":                "findMany",
		"table":                 "a",
		"where":                 map[string]any{"column": "c", "op": "like", "value": "O%"},
		"__tdb_client_req_id__": 8,
	})
	assert.Equal(t, res.Status, http.StatusOK, res.Message)
	assert.Equal(t, res.ReqId, 8)
	assert.DeepEqual(t, res.Data, []any{map[string]any{"id": 1.0, "b": 1.0, "c": "one"}})

	res = roundTrip(t, conn, map[string]any{"action": "dropTable"})
	assert.Equal(t, res.Status, http.StatusBadRequest)
	assert.Equal(t, res.Message, "unknown action: dropTable")

	assert.NilError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	var bad Response
	assert.NilError(t, conn.ReadJSON(&bad))
	assert.Equal(t, bad.Status, http.StatusBadRequest)
}

func TestServerHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t, newTestSchema(t))

	res, err := http.Get(srv.URL + "/health")
	assert.NilError(t, err)
	body, _ := io.ReadAll(res.Body)
	res.Body.Close()
	assert.Equal(t, res.StatusCode, http.StatusOK)
	assert.Equal(t, string(body), "ok")

	conn := dial(t, srv)
	roundTrip(t, conn, map[string]any{"action": "count", "table": "a"})

	res, err = http.Get(srv.URL + "/metrics")
	assert.NilError(t, err)
	body, _ = io.ReadAll(res.Body)
	res.Body.Close()
	assert.Assert(t, strings.Contains(string(body), `flatdb_requests_total{action="count",status="200"}`))
	assert.Assert(t, strings.Contains(string(body), "flatdb_rows_scanned_total"))
}

func TestServerFlush(t *testing.T) {
	base := t.TempDir()
	schema := newTestSchema(t)
	schema.SetBase(base)
	s := NewServer(schema, time.Hour)

	// nothing changed yet
	assert.NilError(t, s.Flush())
	assert.Assert(t, !builder.HasSavedSchema(base))

	CreateReqHandler(schema, reqEncode(map[string]any{"table": "a", "data": map[string]any{"b": 1}}))
	assert.NilError(t, s.Flush())
	assert.Assert(t, builder.HasSavedSchema(base))

	loaded, err := builder.LoadSchema(base)
	assert.NilError(t, err)
	table, _ := loaded.GetTable("a")
	assert.Equal(t, table.Len(), 1)
}

func TestServerListenFlushesOnShutdown(t *testing.T) {
	base := t.TempDir()
	schema := newTestSchema(t)
	schema.SetBase(base)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewServer(schema, time.Hour).Listen(ctx, 0) }()

	CreateReqHandler(schema, reqEncode(map[string]any{"table": "a", "data": map[string]any{"b": 1}}))
	cancel()

	select {
	case err := <-done:
		assert.NilError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}

	loaded, err := builder.LoadSchema(base)
	assert.NilError(t, err)
	table, _ := loaded.GetTable("a")
	assert.Equal(t, table.Len(), 1)
}
