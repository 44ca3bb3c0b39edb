package conn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tobsdb/flatdb/internal/builder"
	"github.com/tobsdb/flatdb/pkg"
)

type WsRequest struct {
	Action RequestAction `json:"action"`
	ReqId  int           `json:"__tdb_client_req_id__"` // used in tdb clients
}

var Upgrader = websocket.Upgrader{
	WriteBufferSize: 1024 * 10,
	ReadBufferSize:  1024 * 10,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type Server struct {
	schema         *builder.Schema
	write_interval time.Duration
}

// NewServer serves schema. A write_interval of zero or less never flushes on a timer;
// in-memory schemas are never written at all.
func NewServer(schema *builder.Schema, write_interval time.Duration) *Server {
	return &Server{schema, write_interval}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/", s.HandleConnection)
	return mux
}

func (s *Server) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := Upgrader.Upgrade(w, r, nil)
	if err != nil {
		pkg.ErrorLog("upgrade", err)
		return
	}
	defer conn.Close()

	ConnectionsOpen.Inc()
	defer ConnectionsOpen.Dec()
	pkg.InfoLog("New connection from", conn.RemoteAddr())
	defer pkg.InfoLog("Connection closed from", conn.RemoteAddr())

	for {
		_, buf, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				pkg.ErrorLog("conn read error", err)
			}
			return
		}

		res := s.handleMessage(buf)
		if err := conn.WriteMessage(websocket.TextMessage, res.Marshal()); err != nil {
			pkg.ErrorLog("writing response", err)
			return
		}
	}
}

func (s *Server) handleMessage(buf []byte) Response {
	started := time.Now()

	var req WsRequest
	if err := json.Unmarshal(buf, &req); err != nil {
		pkg.DebugLog("parsing request", err)
		return NewErrorResponse(http.StatusBadRequest, err.Error())
	}

	res := ActionHandler(s.schema, req.Action, buf)
	res.ReqId = req.ReqId
	observeRequest(req.Action, res.Status, started)
	return res
}

// Flush writes the schema to disk if rows changed since the last write.
func (s *Server) Flush() error {
	if s.schema.InMem() || !s.schema.Dirty() {
		return nil
	}

	pkg.DebugLog("writing database to disk")
	if err := pkg.RLockValue(s.schema, s.schema.WriteToFile); err != nil {
		WritesTotal.WithLabelValues("error").Inc()
		return err
	}
	WritesTotal.WithLabelValues("ok").Inc()
	return nil
}

// Listen serves on port until ctx is done, then shuts down and flushes once more.
func (s *Server) Listen(ctx context.Context, port int) error {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.Handler(),
	}

	serve_err := make(chan error, 1)
	go func() {
		err := server.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			serve_err <- err
		}
		close(serve_err)
	}()

	var ticks <-chan time.Time
	if !s.schema.InMem() && s.write_interval > 0 {
		ticker := time.NewTicker(s.write_interval)
		defer ticker.Stop()
		ticks = ticker.C
	}

	pkg.InfoLog("flatdb listening on port", port)

	for {
		select {
		case <-ticks:
			if err := s.Flush(); err != nil {
				pkg.ErrorLog("failed to write database", err)
			}
		case err, ok := <-serve_err:
			if ok && err != nil {
				return err
			}
			serve_err = nil
		case <-ctx.Done():
			pkg.DebugLog("Shutting down...")
			shutdown_ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdown_ctx); err != nil {
				pkg.ErrorLog("shutdown", err)
			}
			return s.Flush()
		}
	}
}
