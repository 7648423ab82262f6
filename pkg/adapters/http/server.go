// Package http exposes a workspace of documents over a REST + SSE API.
//
// Mutations go through the workspace Manager so concurrent requests against
// the same document are serialized. After every successful mutation the
// handler broadcasts a SnapshotDiff to the document's SSE subscribers, which
// lets canvas frontends apply partial updates instead of refetching.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/internal/logging"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/workspace"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server wires the document API onto a workspace Manager.
type Server struct {
	manager *workspace.Manager
	streams *StreamManager
	logger  *slog.Logger

	registry *prometheus.Registry
	ops      *prometheus.CounterVec
	opErrors *prometheus.CounterVec
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a Server around the given workspace manager.
func NewServer(manager *workspace.Manager, opts ...Option) *Server {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	s := &Server{
		manager:  manager,
		streams:  NewStreamManager(),
		logger:   logging.NewNop(),
		registry: registry,
		ops: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "espalier_operations_total",
			Help: "Total document operations handled, labeled by operation.",
		}, []string{"op"}),
		opErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "espalier_operation_errors_total",
			Help: "Total document operations that failed, labeled by operation.",
		}, []string{"op"}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewHandler creates the HTTP handler for a workspace manager.
func NewHandler(manager *workspace.Manager, opts ...Option) http.Handler {
	return NewServer(manager, opts...).Handler()
}

// Handler builds the chi router for the server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.getHealth)
	r.Get("/info", s.getInfo)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/documents", func(r chi.Router) {
		r.Get("/", s.listDocuments)
		r.Route("/{docID}", func(r chi.Router) {
			r.Get("/", s.getDocument)
			r.Put("/", s.putDocument)
			r.Delete("/", s.deleteDocument)

			r.Post("/nodes", s.addNode)
			r.Patch("/nodes/{nodeID}", s.updateNode)
			r.Delete("/nodes/{nodeID}", s.removeNode)

			r.Post("/connections", s.connect)
			r.Delete("/connections/{connID}", s.disconnect)

			r.Post("/undo", s.undo)
			r.Post("/redo", s.redo)

			r.Put("/viewport", s.putViewport)
			r.Post("/viewport/reset", s.resetViewport)

			r.Get("/events", s.subscribeEvents)
		})
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// mutate runs fn against the document under the workspace lock, broadcasts
// the resulting diff to SSE subscribers, and records operation metrics.
func (s *Server) mutate(ctx context.Context, docID, op string, fn func(*espalier.Document) error) error {
	s.ops.WithLabelValues(op).Inc()

	err := s.manager.With(ctx, docID, func(doc *espalier.Document) error {
		before := doc.Serialize()
		if err := fn(doc); err != nil {
			return err
		}

		diff := domain.Diff(before, doc.Serialize())
		if diff == nil {
			return nil
		}
		bytes, err := json.Marshal(diff)
		if err == nil {
			s.streams.Broadcast(docID, string(bytes))
		}
		return nil
	})
	if err != nil {
		s.opErrors.WithLabelValues(op).Inc()
	}
	return err
}

// writeError maps domain sentinels to HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNodeNotFound),
		errors.Is(err, domain.ErrConnectionNotFound),
		errors.Is(err, domain.ErrDocumentNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateID):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrIncompatiblePort):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidSnapshot),
		errors.Is(err, domain.ErrInvalidDocumentID):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed", "op", op, "err", err)
	} else {
		s.logger.Warn("Request rejected", "op", op, "status", status, "err", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encode failed", "error", err)
	}
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "espalier-http",
		"version": strings.TrimSpace(espalier.Version),
	})
}

func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.manager.List(r.Context())
	if err != nil {
		s.writeError(w, "list", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"documents": docs})
}

func (s *Server) getDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	snap, err := s.manager.Snapshot(r.Context(), docID)
	if err != nil {
		s.writeError(w, "get_document", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) putDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")

	var snap domain.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	err := s.mutate(r.Context(), docID, "load", func(doc *espalier.Document) error {
		return doc.Load(&snap)
	})
	if err != nil {
		s.writeError(w, "load", err)
		return
	}
	writeJSON(w, http.StatusOK, &snap)
}

func (s *Server) deleteDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	if err := s.manager.Delete(r.Context(), docID); err != nil {
		s.writeError(w, "delete_document", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) addNode(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")

	var node domain.Node
	if err := json.NewDecoder(r.Body).Decode(&node); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var created domain.Node
	err := s.mutate(r.Context(), docID, "add_node", func(doc *espalier.Document) error {
		var err error
		created, err = doc.AddNode(node)
		return err
	})
	if err != nil {
		s.writeError(w, "add_node", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) updateNode(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	nodeID := chi.URLParam(r, "nodeID")

	var patch domain.NodePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var updated domain.Node
	err := s.mutate(r.Context(), docID, "update_node", func(doc *espalier.Document) error {
		if err := doc.UpdateNode(nodeID, patch); err != nil {
			return err
		}
		var err error
		updated, err = doc.Node(nodeID)
		return err
	})
	if err != nil {
		s.writeError(w, "update_node", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) removeNode(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	nodeID := chi.URLParam(r, "nodeID")

	err := s.mutate(r.Context(), docID, "remove_node", func(doc *espalier.Document) error {
		return doc.RemoveNode(nodeID)
	})
	if err != nil {
		s.writeError(w, "remove_node", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// connectRequest is the POST /connections body.
type connectRequest struct {
	SourceNodeID string `json:"sourceNodeId"`
	SourcePortID string `json:"sourcePortId"`
	TargetNodeID string `json:"targetNodeId"`
	TargetPortID string `json:"targetPortId"`
}

func (s *Server) connect(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")

	var body connectRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var conn domain.Connection
	err := s.mutate(r.Context(), docID, "connect", func(doc *espalier.Document) error {
		var err error
		conn, err = doc.Connect(body.SourceNodeID, body.SourcePortID, body.TargetNodeID, body.TargetPortID)
		return err
	})
	if err != nil {
		s.writeError(w, "connect", err)
		return
	}
	writeJSON(w, http.StatusCreated, conn)
}

func (s *Server) disconnect(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	connID := chi.URLParam(r, "connID")

	err := s.mutate(r.Context(), docID, "disconnect", func(doc *espalier.Document) error {
		return doc.Disconnect(connID)
	})
	if err != nil {
		s.writeError(w, "disconnect", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// historyResponse reports the history state after an undo or redo.
type historyResponse struct {
	CanUndo bool `json:"canUndo"`
	CanRedo bool `json:"canRedo"`
}

func (s *Server) undo(w http.ResponseWriter, r *http.Request) {
	s.history(w, r, "undo", func(doc *espalier.Document) { doc.Undo() })
}

func (s *Server) redo(w http.ResponseWriter, r *http.Request) {
	s.history(w, r, "redo", func(doc *espalier.Document) { doc.Redo() })
}

func (s *Server) history(w http.ResponseWriter, r *http.Request, op string, step func(*espalier.Document)) {
	docID := chi.URLParam(r, "docID")

	var resp historyResponse
	err := s.mutate(r.Context(), docID, op, func(doc *espalier.Document) error {
		step(doc)
		resp = historyResponse{CanUndo: doc.CanUndo(), CanRedo: doc.CanRedo()}
		return nil
	})
	if err != nil {
		s.writeError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) putViewport(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")

	var vp domain.Viewport
	if err := json.NewDecoder(r.Body).Decode(&vp); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var applied domain.Viewport
	err := s.mutate(r.Context(), docID, "viewport", func(doc *espalier.Document) error {
		cur := doc.Viewport()
		doc.Pan(vp.PanX-cur.PanX, vp.PanY-cur.PanY)
		doc.SetZoom(vp.Zoom)
		applied = doc.Viewport()
		return nil
	})
	if err != nil {
		s.writeError(w, "viewport", err)
		return
	}
	// Zoom clamping means the applied viewport can differ from the request.
	writeJSON(w, http.StatusOK, applied)
}

func (s *Server) resetViewport(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")

	err := s.mutate(r.Context(), docID, "viewport", func(doc *espalier.Document) error {
		doc.ResetView()
		return nil
	})
	if err != nil {
		s.writeError(w, "viewport", err)
		return
	}
	writeJSON(w, http.StatusOK, domain.DefaultViewport())
}

// StreamManager handles active SSE connections
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // DocID -> Set of Channels
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
	}
}

func (sm *StreamManager) Subscribe(docID string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[docID]; !ok {
		sm.subscribers[docID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[docID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[docID]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, docID)
			}
		}
	}
}

func (sm *StreamManager) Broadcast(docID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if subs, ok := sm.subscribers[docID]; ok {
		for ch := range subs {
			select {
			case ch <- msg:
			default:
				// Drop message if channel is full (slow client)
				slog.Warn("SSE: Client buffer full, dropping message", "doc_id", docID)
			}
		}
	}
}

// subscribeEvents handles GET /documents/{docID}/events (SSE).
func (s *Server) subscribeEvents(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SSE: Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	s.logger.Info("SSE: Subscribing to document updates", "doc_id", docID)

	ch, cancel := s.streams.Subscribe(docID)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected", "doc_id", docID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
