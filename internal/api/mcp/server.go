package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/scrypster/docgraph/internal/engine"
	"github.com/scrypster/docgraph/internal/extraction"
	"github.com/scrypster/docgraph/internal/storage"
)

// ProtocolVersion is the MCP revision this server speaks.
const ProtocolVersion = "2024-11-05"

const defaultExploreDepth = 2

// graphService is the subset of services.GraphService the tools call.
type graphService interface {
	Store() storage.GraphReader
	Query(question string) *engine.Result
	ExampleQuestions() []string
	ProcessDocument(text, name, documentType string) (*extraction.Summary, error)
	Neighborhood(ctx context.Context, id string, depth int) (*engine.Neighborhood, error)
	Save(path string) error
}

type toolHandler func(ctx context.Context, args json.RawMessage) (interface{}, error)

// Server implements the MCP tools protocol over a graph service.
type Server struct {
	svc      graphService
	autoSave bool
	version  string
	tools    map[string]toolHandler
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithAutoSave persists the graph after every ingest_document call.
func WithAutoSave(enabled bool) ServerOption {
	return func(s *Server) {
		s.autoSave = enabled
	}
}

// WithVersion sets the version reported in serverInfo.
func WithVersion(v string) ServerOption {
	return func(s *Server) {
		s.version = v
	}
}

// NewServer creates an MCP server backed by svc.
func NewServer(svc graphService, opts ...ServerOption) *Server {
	s := &Server{svc: svc, version: "1.0.0"}
	for _, opt := range opts {
		opt(s)
	}
	s.tools = map[string]toolHandler{
		"query_graph":       s.handleQueryGraph,
		"ingest_document":   s.handleIngestDocument,
		"get_entity":        s.handleGetEntity,
		"explore_entity":    s.handleExploreEntity,
		"graph_stats":       s.handleGraphStats,
		"example_questions": s.handleExampleQuestions,
	}
	return s
}

// HandleRequest processes one JSON-RPC 2.0 message. Notifications yield a
// nil response, which the transport does not write.
func (s *Server) HandleRequest(ctx context.Context, requestJSON []byte) ([]byte, error) {
	var req JSONRPCRequest
	if err := json.Unmarshal(requestJSON, &req); err != nil {
		return s.errorResponse(nil, ErrCodeParseError, "Parse error", err.Error())
	}
	if req.JSONRPC != "2.0" {
		return s.errorResponse(req.ID, ErrCodeInvalidRequest, "Invalid JSON-RPC version", nil)
	}
	if strings.HasPrefix(req.Method, "notifications/") {
		return nil, nil
	}

	var result interface{}
	switch req.Method {
	case "initialize":
		result = MCPInitializeResult{
			ProtocolVersion: ProtocolVersion,
			Capabilities:    MCPServerCapabilities{Tools: &MCPToolsCapability{}},
			ServerInfo:      MCPServerInfo{Name: "docgraph", Version: s.version},
		}
	case "ping":
		result = map[string]interface{}{}
	case "tools/list":
		result = MCPToolsListResult{Tools: s.buildToolsList()}
	case "tools/call":
		var p MCPToolCallParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return s.errorResponse(req.ID, ErrCodeInvalidParams, "Invalid params", err.Error())
		}
		result = s.callTool(ctx, p)
	default:
		return s.errorResponse(req.ID, ErrCodeMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method), nil)
	}
	return s.successResponse(req.ID, result)
}

// callTool runs a tool and wraps its result in the MCP content envelope.
// Tool failures are reported in-band with IsError set.
func (s *Server) callTool(ctx context.Context, p MCPToolCallParams) *MCPToolCallResult {
	handler, ok := s.tools[p.Name]
	if !ok {
		return toolError(fmt.Errorf("unknown tool: %s", p.Name))
	}
	args := p.Arguments
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	result, err := handler(ctx, args)
	if err != nil {
		return toolError(err)
	}
	text, err := json.Marshal(result)
	if err != nil {
		return toolError(fmt.Errorf("marshal result: %w", err))
	}
	return &MCPToolCallResult{Content: []MCPToolCallContent{{Type: "text", Text: string(text)}}}
}

func toolError(err error) *MCPToolCallResult {
	return &MCPToolCallResult{
		Content: []MCPToolCallContent{{Type: "text", Text: err.Error()}},
		IsError: true,
	}
}

func (s *Server) handleQueryGraph(_ context.Context, raw json.RawMessage) (interface{}, error) {
	var args QueryGraphArgs
	if err := unmarshalArgs(raw, &args); err != nil {
		return nil, err
	}
	if strings.TrimSpace(args.Question) == "" {
		return nil, fmt.Errorf("%w: question is required", storage.ErrInvalidInput)
	}
	return s.svc.Query(args.Question), nil
}

func (s *Server) handleIngestDocument(_ context.Context, raw json.RawMessage) (interface{}, error) {
	var args IngestDocumentArgs
	if err := unmarshalArgs(raw, &args); err != nil {
		return nil, err
	}
	if strings.TrimSpace(args.Text) == "" {
		return nil, fmt.Errorf("%w: text is required", storage.ErrInvalidInput)
	}
	if args.DocumentType == "" {
		args.DocumentType = extraction.DocumentTypeGeneric
	}
	sum, err := s.svc.ProcessDocument(args.Text, args.Name, args.DocumentType)
	if err != nil {
		return nil, err
	}
	if s.autoSave {
		if err := s.svc.Save(""); err != nil {
			log.Printf("mcp: save after ingest: %v", err)
		}
	}
	return sum, nil
}

func (s *Server) handleGetEntity(_ context.Context, raw json.RawMessage) (interface{}, error) {
	var args GetEntityArgs
	if err := unmarshalArgs(raw, &args); err != nil {
		return nil, err
	}
	e := s.svc.Store().GetEntity(args.ID)
	if e == nil {
		return nil, fmt.Errorf("%w: entity %q", storage.ErrNotFound, args.ID)
	}
	return GetEntityResult{
		Entity:        e,
		Relationships: s.svc.Store().GetRelationshipsForEntity(args.ID),
	}, nil
}

func (s *Server) handleExploreEntity(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	var args ExploreEntityArgs
	if err := unmarshalArgs(raw, &args); err != nil {
		return nil, err
	}
	if args.Depth <= 0 {
		args.Depth = defaultExploreDepth
	}
	n, err := s.svc.Neighborhood(ctx, args.ID, args.Depth)
	if err != nil {
		return nil, err
	}
	res := ExploreEntityResult{Root: n.Root, Truncated: n.Truncated, Nodes: make([]ExploreNode, 0, len(n.Nodes))}
	for _, v := range n.Nodes {
		node := ExploreNode{ID: v.ID, Depth: v.Depth, Parent: v.Parent}
		if v.Entity != nil {
			node.Name, node.Type = v.Entity.Name, v.Entity.Type
		}
		if v.Via != nil {
			node.Via = v.Via.Type
		}
		res.Nodes = append(res.Nodes, node)
	}
	return res, nil
}

func (s *Server) handleGraphStats(context.Context, json.RawMessage) (interface{}, error) {
	return s.svc.Store().Stats(), nil
}

func (s *Server) handleExampleQuestions(context.Context, json.RawMessage) (interface{}, error) {
	return ExampleQuestionsResult{Questions: s.svc.ExampleQuestions()}, nil
}

// buildToolsList returns the tool definitions in a stable order.
func (s *Server) buildToolsList() []MCPTool {
	str := func(desc string) map[string]interface{} {
		return map[string]interface{}{"type": "string", "description": desc}
	}
	return []MCPTool{
		{
			Name:        "query_graph",
			Description: "Answer a natural-language question from the document graph. Returns the answer with the matching entities, relationships and text chunks.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"required":   []string{"question"},
				"properties": map[string]interface{}{"question": str("The question to answer")},
			},
		},
		{
			Name:        "ingest_document",
			Description: "Extract entities, relationships and text chunks from a document into the graph.",
			InputSchema: map[string]interface{}{
				"type":     "object",
				"required": []string{"text", "name"},
				"properties": map[string]interface{}{
					"text":          str("Full document text"),
					"name":          str("Document name, e.g. the file name"),
					"document_type": map[string]interface{}{"type": "string", "enum": []string{extraction.DocumentTypeBankingPolicy, extraction.DocumentTypeGeneric}},
				},
			},
		},
		{
			Name:        "get_entity",
			Description: "Look up one entity by ID together with every relationship touching it.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"required":   []string{"id"},
				"properties": map[string]interface{}{"id": str("Entity ID, e.g. entity-1a2b3c4d")},
			},
		},
		{
			Name:        "explore_entity",
			Description: "Walk the graph outward from an entity and list what is reachable within depth hops.",
			InputSchema: map[string]interface{}{
				"type":     "object",
				"required": []string{"id"},
				"properties": map[string]interface{}{
					"id":    str("Entity ID to start from"),
					"depth": map[string]interface{}{"type": "integer", "description": "Maximum hops (default 2)"},
				},
			},
		},
		{
			Name:        "graph_stats",
			Description: "Count entities, relationships and chunks, broken down by type.",
			InputSchema: map[string]interface{}{"type": "object", "properties": map[string]interface{}{}},
		},
		{
			Name:        "example_questions",
			Description: "Suggest questions the current graph can answer.",
			InputSchema: map[string]interface{}{"type": "object", "properties": map[string]interface{}{}},
		},
	}
}

func unmarshalArgs(raw json.RawMessage, dest interface{}) error {
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("%w: %v", storage.ErrInvalidInput, err)
	}
	return nil
}

func (s *Server) successResponse(id interface{}, result interface{}) ([]byte, error) {
	return json.Marshal(JSONRPCResponse{JSONRPC: "2.0", Result: result, ID: id})
}

func (s *Server) errorResponse(id interface{}, code int, message string, data interface{}) ([]byte, error) {
	return json.Marshal(JSONRPCResponse{
		JSONRPC: "2.0",
		Error:   &JSONRPCError{Code: code, Message: message, Data: data},
		ID:      id,
	})
}
