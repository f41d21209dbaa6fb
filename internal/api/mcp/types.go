// Package mcp exposes the document graph to MCP clients as JSON-RPC 2.0
// tools served over stdio.
package mcp

import (
	"encoding/json"

	"github.com/scrypster/docgraph/pkg/types"
)

// QueryGraphArgs contains arguments for the query_graph tool.
type QueryGraphArgs struct {
	Question string `json:"question"`
}

// IngestDocumentArgs contains arguments for the ingest_document tool.
type IngestDocumentArgs struct {
	Text         string `json:"text"`
	Name         string `json:"name"`
	DocumentType string `json:"document_type,omitempty"` // banking_policy or generic
}

// GetEntityArgs contains arguments for the get_entity tool.
type GetEntityArgs struct {
	ID string `json:"id"`
}

// GetEntityResult is an entity with every relationship touching it.
type GetEntityResult struct {
	Entity        *types.Entity         `json:"entity"`
	Relationships []*types.Relationship `json:"relationships"`
}

// ExploreEntityArgs contains arguments for the explore_entity tool.
type ExploreEntityArgs struct {
	ID    string `json:"id"`
	Depth int    `json:"depth,omitempty"` // default 2
}

// ExploreNode is one entity reached from the root.
type ExploreNode struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	Type   string `json:"type,omitempty"`
	Depth  int    `json:"depth"`
	Parent string `json:"parent,omitempty"`
	Via    string `json:"via,omitempty"` // relationship type
}

// ExploreEntityResult is the bounded neighbourhood of an entity.
type ExploreEntityResult struct {
	Root      string        `json:"root"`
	Nodes     []ExploreNode `json:"nodes"`
	Truncated bool          `json:"truncated,omitempty"`
}

// ExampleQuestionsResult lists suggested questions.
type ExampleQuestionsResult struct {
	Questions []string `json:"questions"`
}

// JSONRPCRequest represents a JSON-RPC 2.0 request.
type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"` // Must be "2.0"
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      interface{}     `json:"id"` // string, number, or null
}

// JSONRPCResponse represents a JSON-RPC 2.0 response.
type JSONRPCResponse struct {
	JSONRPC string        `json:"jsonrpc"`
	Result  interface{}   `json:"result,omitempty"`
	Error   *JSONRPCError `json:"error,omitempty"`
	ID      interface{}   `json:"id"`
}

// JSONRPCError represents a JSON-RPC 2.0 error.
type JSONRPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// JSON-RPC error codes
const (
	ErrCodeParseError     = -32700
	ErrCodeInvalidRequest = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternalError  = -32603
)

// MCPServerInfo identifies this MCP server.
type MCPServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// MCPServerCapabilities describes what this server supports.
type MCPServerCapabilities struct {
	Tools *MCPToolsCapability `json:"tools,omitempty"`
}

// MCPToolsCapability signals that the server exposes tools.
type MCPToolsCapability struct{}

// MCPInitializeResult is the response to the initialize request.
type MCPInitializeResult struct {
	ProtocolVersion string                `json:"protocolVersion"`
	Capabilities    MCPServerCapabilities `json:"capabilities"`
	ServerInfo      MCPServerInfo         `json:"serverInfo"`
}

// MCPTool describes a single tool exposed via tools/list.
type MCPTool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// MCPToolsListResult is the response to the tools/list request.
type MCPToolsListResult struct {
	Tools []MCPTool `json:"tools"`
}

// MCPToolCallParams holds the parameters sent in a tools/call request.
type MCPToolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// MCPToolCallContent is a single content block in a tool call response.
type MCPToolCallContent struct {
	Type string `json:"type"` // always "text"
	Text string `json:"text"`
}

// MCPToolCallResult is the response to a tools/call request.
type MCPToolCallResult struct {
	Content []MCPToolCallContent `json:"content"`
	IsError bool                 `json:"isError,omitempty"`
}
