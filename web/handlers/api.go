// Package handlers provides the JSON HTTP API and websocket feed for
// docgraph.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/scrypster/docgraph/internal/llm"
	"github.com/scrypster/docgraph/internal/services"
	"github.com/scrypster/docgraph/internal/storage"
	"github.com/scrypster/docgraph/pkg/types"
)

// maxBodyBytes caps request bodies; documents are the largest payload.
const maxBodyBytes = 10 << 20

// defaultGraphDepth is used by the entity graph route without ?depth=.
const defaultGraphDepth = 2

// APIHandlers contains HTTP handlers for the REST API.
type APIHandlers struct {
	svc *services.GraphService
}

// NewAPIHandlers creates handlers over svc.
func NewAPIHandlers(svc *services.GraphService) *APIHandlers {
	return &APIHandlers{svc: svc}
}

// GetStats handles GET /api/stats.
func (h *APIHandlers) GetStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.Store().Stats())
}

// ListEntities handles GET /api/entities, optionally filtered by ?type=.
func (h *APIHandlers) ListEntities(w http.ResponseWriter, r *http.Request) {
	var entities []*types.Entity
	if t := r.URL.Query().Get("type"); t != "" {
		entities = h.svc.Store().GetEntitiesByType(t)
	} else {
		entities = h.svc.Store().Entities()
	}
	if entities == nil {
		entities = []*types.Entity{}
	}
	respondJSON(w, http.StatusOK, EntityListResponse{Entities: entities, Total: len(entities)})
}

// GetEntity handles GET /api/entities/{id}.
func (h *APIHandlers) GetEntity(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	e := h.svc.Store().GetEntity(id)
	if e == nil {
		respondError(w, http.StatusNotFound, CodeNotFound, "entity not found", nil)
		return
	}
	rels := h.svc.Store().GetRelationshipsForEntity(id)
	if rels == nil {
		rels = []*types.Relationship{}
	}
	respondJSON(w, http.StatusOK, EntityResponse{Entity: e, Relationships: rels})
}

// GetEntityGraph handles GET /api/entities/{id}/graph?depth=N.
func (h *APIHandlers) GetEntityGraph(w http.ResponseWriter, r *http.Request) {
	depth := parseInt(r.URL.Query().Get("depth"), defaultGraphDepth)
	n, err := h.svc.Neighborhood(r.Context(), r.PathValue("id"), depth)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, CodeNotFound, "entity not found", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, CodeInternal, "traversal failed", err)
		return
	}

	resp := GraphResponse{
		Root:      n.Root,
		Nodes:     make([]GraphNode, 0, len(n.Nodes)),
		Edges:     n.Edges,
		Truncated: n.Truncated,
	}
	if resp.Edges == nil {
		resp.Edges = []*types.Relationship{}
	}
	for _, node := range n.Nodes {
		gn := GraphNode{ID: node.ID, Entity: node.Entity, Depth: node.Depth, Parent: node.Parent}
		if node.Via != nil {
			gn.Via = node.Via.ID
		}
		resp.Nodes = append(resp.Nodes, gn)
	}
	respondJSON(w, http.StatusOK, resp)
}

// PostDocument handles POST /api/documents.
func (h *APIHandlers) PostDocument(w http.ResponseWriter, r *http.Request) {
	var req DocumentRequest
	if !decodeBody(w, r, &req, false) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, CodeInvalidInput, "name is required", nil)
		return
	}
	sum, err := h.svc.ProcessDocument(req.Text, req.Name, req.DocumentType)
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeInvalidInput, "failed to process document", err)
		return
	}
	respondJSON(w, http.StatusCreated, sum)
}

// PostSamples handles POST /api/samples.
func (h *APIHandlers) PostSamples(w http.ResponseWriter, r *http.Request) {
	var req SamplesRequest
	if !decodeBody(w, r, &req, true) {
		return
	}
	res, err := h.svc.LoadSamples(req.Directory)
	if err != nil {
		respondError(w, http.StatusInternalServerError, CodeInternal, "failed to load samples", err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// PostQuery handles POST /api/query.
func (h *APIHandlers) PostQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if !decodeBody(w, r, &req, false) {
		return
	}
	if req.Explain {
		respondJSON(w, http.StatusOK, h.svc.Explain(req.Question))
		return
	}
	respondJSON(w, http.StatusOK, h.svc.Query(req.Question))
}

// GetExamples handles GET /api/examples.
func (h *APIHandlers) GetExamples(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, ExamplesResponse{Questions: h.svc.ExampleQuestions()})
}

// SaveGraph handles POST /api/graph/save.
func (h *APIHandlers) SaveGraph(w http.ResponseWriter, r *http.Request) {
	var req SnapshotRequest
	if !decodeBody(w, r, &req, true) {
		return
	}
	path := h.svc.ResolveSnapshotPath(req.File)
	if err := h.svc.Save(path); err != nil {
		respondError(w, http.StatusInternalServerError, CodeInternal, "failed to save graph", err)
		return
	}
	respondJSON(w, http.StatusOK, SnapshotResponse{Path: path, Stats: h.svc.Store().Stats()})
}

// LoadGraph handles POST /api/graph/load. A missing file is not an error;
// the response reports loaded=false and the graph is unchanged.
func (h *APIHandlers) LoadGraph(w http.ResponseWriter, r *http.Request) {
	var req SnapshotRequest
	if !decodeBody(w, r, &req, true) {
		return
	}
	path := h.svc.ResolveSnapshotPath(req.File)
	ok, err := h.svc.Load(path)
	if errors.Is(err, storage.ErrMalformedSnapshot) {
		respondError(w, http.StatusUnprocessableEntity, CodeMalformedGraph, "graph file is malformed", err)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, CodeInternal, "failed to load graph", err)
		return
	}
	respondJSON(w, http.StatusOK, SnapshotResponse{Path: path, Loaded: ok, Stats: h.svc.Store().Stats()})
}

// ClearGraph handles POST /api/graph/clear.
func (h *APIHandlers) ClearGraph(w http.ResponseWriter, r *http.Request) {
	h.svc.Clear()
	respondJSON(w, http.StatusOK, SnapshotResponse{Stats: h.svc.Store().Stats()})
}

// ListBackups handles GET /api/graph/backups.
func (h *APIHandlers) ListBackups(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Backups()
	if err != nil {
		respondError(w, http.StatusInternalServerError, CodeInternal, "failed to list backups", err)
		return
	}
	resp := BackupListResponse{Backups: make([]BackupEntry, 0, len(list))}
	for _, b := range list {
		resp.Backups = append(resp.Backups, BackupEntry{
			File:      filepath.Base(b.Path),
			Timestamp: b.Timestamp,
			Size:      b.Size,
		})
	}
	respondJSON(w, http.StatusOK, resp)
}

// PostChat handles POST /api/chat.
func (h *APIHandlers) PostChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if !decodeBody(w, r, &req, false) {
		return
	}
	answer, err := h.svc.Ask(r.Context(), req.Prompt)
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, ChatResponse{Answer: answer, Model: h.svc.AssistantModel()})
	case errors.Is(err, llm.ErrEmptyPrompt):
		respondError(w, http.StatusBadRequest, CodeInvalidInput, "prompt is required", nil)
	case errors.Is(err, services.ErrAssistantDisabled), errors.Is(err, llm.ErrCircuitOpen):
		respondError(w, http.StatusServiceUnavailable, CodeUnavailable, "assistant unavailable", err)
	default:
		respondError(w, http.StatusBadGateway, CodeUnavailable, "assistant request failed", err)
	}
}

// Helper functions

// decodeBody reads a JSON body into dst. With optional set an empty body
// leaves dst untouched. It writes the error response itself and reports
// whether the handler should continue.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}, optional bool) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || (optional && errors.Is(err, io.EOF)) {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		respondError(w, http.StatusRequestEntityTooLarge, CodeInvalidInput, "request body too large", nil)
		return false
	}
	respondError(w, http.StatusBadRequest, CodeInvalidInput, "failed to parse request body", err)
	return false
}

// parseInt parses an integer from a string, returning defaultValue if parsing fails.
func parseInt(s string, defaultValue int) int {
	if s == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return val
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already sent.
		log.Printf("http: encode response: %v", err)
	}
}

// respondError writes an error response with the given status code.
func respondError(w http.ResponseWriter, statusCode int, code, message string, err error) {
	errResp := ErrorResponse{
		Error: message,
		Code:  code,
	}
	if err != nil {
		errResp.Details = map[string]interface{}{
			"error": err.Error(),
		}
	}
	respondJSON(w, statusCode, errResp)
}
