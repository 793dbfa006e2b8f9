package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/raft"
	"github.com/heysubinoy/pyazkv/internal/cluster"
	"github.com/heysubinoy/pyazkv/pkg/kv"
)

const joinTimeout = 10 * time.Second

// Server wraps a kv.Store and exposes HTTP endpoints for KV operations
// and for running whole programs through an Executor.
// Raft is nil unless the store is Raft-backed.
type Server struct {
	Store    kv.Store[string]
	Raft     *raft.Raft
	Executor *kv.Executor[string]
	Logger   hclog.Logger
}

// NewServer creates a new HTTP server with the given store.
func NewServer(store kv.Store[string], raftNode *raft.Raft, exec *kv.Executor[string], logger hclog.Logger) *Server {
	if exec == nil {
		exec = &kv.Executor[string]{Logger: logger}
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Server{
		Store:    store,
		Raft:     raftNode,
		Executor: exec,
		Logger:   logger,
	}
}

// RegisterRoutes registers all HTTP handlers on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/get", s.handleGet)
	mux.HandleFunc("/put", s.handlePut)
	mux.HandleFunc("/delete", s.handleDelete)
	mux.HandleFunc("/program", s.handleProgram)
	if s.Raft != nil {
		mux.HandleFunc("/join", s.handleJoin)
	}
}

// handleJoin handles POST /join requests on the leader.
// Expects: {"id": "node2", "addr": "127.0.0.1:7001"}
func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.redirectToLeader(w, r) {
		return
	}

	var req struct {
		ID   string `json:"id"`
		Addr string `json:"addr"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.ID == "" || req.Addr == "" {
		http.Error(w, "Missing id or addr field", http.StatusBadRequest)
		return
	}

	if err := cluster.Join(s.Raft, req.ID, req.Addr, joinTimeout); err != nil {
		s.Logger.Error("join failed", "id", req.ID, "addr", req.Addr, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.Logger.Info("node joined", "id", req.ID, "addr", req.Addr)
	w.WriteHeader(http.StatusNoContent)
}

// redirectToLeader answers for followers and reports whether it did.
func (s *Server) redirectToLeader(w http.ResponseWriter, r *http.Request) bool {
	if s.Raft == nil || s.Raft.State() == raft.Leader {
		return false
	}
	leader := s.Raft.Leader()
	if leader == "" {
		http.Error(w, "Not leader and no leader known", http.StatusServiceUnavailable)
		return true
	}
	w.Header().Set("Location", "http://"+string(leader)+r.URL.Path)
	http.Error(w, "Not leader. Redirect to leader.", http.StatusTemporaryRedirect)
	return true
}

// handleGet handles GET /get?key=foo requests.
// Returns the value as plain text or appropriate error codes.
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.redirectToLeader(w, r) {
		return
	}

	key := r.URL.Query().Get("key")
	if key == "" {
		http.Error(w, "Missing key parameter", http.StatusBadRequest)
		return
	}

	value, ok, err := s.Store.Get(r.Context(), key)
	if err != nil {
		s.Logger.Error("get failed", "key", key, "error", err)
		http.Error(w, "Failed to get key", errorStatus(err))
		return
	}
	if !ok {
		http.Error(w, "Key not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte(value))
}

// handlePut handles POST /put requests with JSON body.
// Expects: {"key": "foo", "value": "bar"}
func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.redirectToLeader(w, r) {
		return
	}

	var req struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if req.Key == "" {
		http.Error(w, "Missing key field", http.StatusBadRequest)
		return
	}

	if err := s.Store.Put(r.Context(), req.Key, req.Value); err != nil {
		s.Logger.Error("put failed", "key", req.Key, "error", err)
		http.Error(w, "Failed to put key", errorStatus(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleDelete handles POST /delete requests with JSON body.
// Expects: {"key": "foo"}
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.redirectToLeader(w, r) {
		return
	}

	var req struct {
		Key string `json:"key"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if req.Key == "" {
		http.Error(w, "Missing key field", http.StatusBadRequest)
		return
	}

	if err := s.Store.Delete(r.Context(), req.Key); err != nil {
		s.Logger.Error("delete failed", "key", req.Key, "error", err)
		http.Error(w, "Failed to delete key", errorStatus(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type programCommand struct {
	Op    string `json:"op"`
	Key   string `json:"key"`
	Value string `json:"value,omitempty"`
}

type programResult struct {
	Op    string `json:"op"`
	Key   string `json:"key"`
	Value string `json:"value,omitempty"`
	Found bool   `json:"found,omitempty"`
	Error string `json:"error,omitempty"`
}

// handleProgram handles POST /program requests.
// Expects: {"commands": [{"op": "put", "key": "foo", "value": "bar"}, {"op": "get", "key": "foo"}]}
// Empty keys are accepted here and rejected by the executor at dispatch.
func (s *Server) handleProgram(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.redirectToLeader(w, r) {
		return
	}

	var req struct {
		Commands []programCommand `json:"commands"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	program := kv.NewProgram[string]()
	for _, c := range req.Commands {
		op, err := kv.ParseOp(c.Op)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		program = program.Append(kv.Command[string]{Op: op, Key: c.Key, Value: c.Value})
	}

	results, err := s.Executor.Run(r.Context(), program, s.Store)
	var f *kv.Failure
	if err != nil && results == nil && errors.As(err, &f) {
		writeJSON(w, errorStatus(err), map[string]interface{}{
			"error": f.Err.Error(),
			"index": f.Index,
		})
		return
	}

	out := make([]programResult, 0, len(results))
	for _, res := range results {
		pr := programResult{Op: res.Op.String(), Key: res.Key, Value: res.Value, Found: res.Found}
		if res.Err != nil {
			pr.Error = res.Err.Error()
		}
		out = append(out, pr)
	}

	// A cancelled run keeps its partial results but is not a success.
	if errors.Is(err, kv.ErrCancelled) {
		body := map[string]interface{}{"results": out, "error": err.Error()}
		if f := cancelledAt(err); f != nil {
			body["index"] = f.Index
		}
		writeJSON(w, http.StatusServiceUnavailable, body)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"results": out})
}

// cancelledAt finds the Failure that stopped a run on cancellation.
func cancelledAt(err error) *kv.Failure {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			if f := cancelledAt(e); f != nil {
				return f
			}
		}
		return nil
	}
	var f *kv.Failure
	if errors.As(err, &f) && errors.Is(f.Err, kv.ErrCancelled) {
		return f
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, kv.ErrKeyEmpty):
		return http.StatusBadRequest
	case errors.Is(err, kv.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, kv.ErrCancelled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
