package handlers

import (
	"time"

	"github.com/scrypster/docgraph/internal/storage"
	"github.com/scrypster/docgraph/pkg/types"
)

// ErrorResponse is the standard error response format for the API.
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error codes carried in ErrorResponse.Code.
const (
	CodeInvalidInput   = "INVALID_INPUT"
	CodeNotFound       = "NOT_FOUND"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeRateLimited    = "RATE_LIMITED"
	CodeMalformedGraph = "MALFORMED_GRAPH"
	CodeUnavailable    = "UNAVAILABLE"
	CodeInternal       = "INTERNAL"
)

// DocumentRequest is the body of POST /api/documents.
type DocumentRequest struct {
	Name         string `json:"name"`
	Text         string `json:"text"`
	DocumentType string `json:"document_type"`
}

// SamplesRequest is the optional body of POST /api/samples.
type SamplesRequest struct {
	Directory string `json:"directory,omitempty"`
}

// QueryRequest is the body of POST /api/query.
type QueryRequest struct {
	Question string `json:"question"`
	Explain  bool   `json:"explain,omitempty"` // include the retrieval trace
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Prompt string `json:"prompt"`
}

// ChatResponse is the assistant's reply.
type ChatResponse struct {
	Answer string `json:"answer"`
	Model  string `json:"model"`
}

// SnapshotRequest is the optional body of POST /api/graph/save and /load.
// File is a bare name inside the data directory.
type SnapshotRequest struct {
	File string `json:"file,omitempty"`
}

// SnapshotResponse reports a save, load or clear.
type SnapshotResponse struct {
	Path   string        `json:"path,omitempty"`
	Loaded bool          `json:"loaded"`
	Stats  storage.Stats `json:"stats"`
}

// BackupEntry is one saved copy of an earlier graph file. File is relative
// to the backup directory.
type BackupEntry struct {
	File      string    `json:"file"`
	Timestamp time.Time `json:"timestamp"`
	Size      int64     `json:"size"`
}

// BackupListResponse is GET /api/graph/backups, newest first.
type BackupListResponse struct {
	Backups []BackupEntry `json:"backups"`
}

// EntityResponse is GET /api/entities/{id}: the entity and every
// relationship touching it.
type EntityResponse struct {
	Entity        *types.Entity         `json:"entity"`
	Relationships []*types.Relationship `json:"relationships"`
}

// EntityListResponse is GET /api/entities.
type EntityListResponse struct {
	Entities []*types.Entity `json:"entities"`
	Total    int             `json:"total"`
}

// GraphNode is one node of GET /api/entities/{id}/graph.
type GraphNode struct {
	ID     string        `json:"id"`
	Entity *types.Entity `json:"entity,omitempty"`
	Depth  int           `json:"depth"`
	Parent string        `json:"parent,omitempty"`
	Via    string        `json:"via,omitempty"`
}

// GraphResponse is the bounded neighbourhood of one entity.
type GraphResponse struct {
	Root      string                `json:"root"`
	Nodes     []GraphNode           `json:"nodes"`
	Edges     []*types.Relationship `json:"edges"`
	Truncated bool                  `json:"truncated"`
}

// ExamplesResponse is GET /api/examples.
type ExamplesResponse struct {
	Questions []string `json:"questions"`
}
