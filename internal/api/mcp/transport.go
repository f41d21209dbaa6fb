package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
)

// maxLine bounds one JSON-RPC message; documents sent to ingest_document
// travel inline.
const maxLine = 8 * 1024 * 1024

// StdioTransport reads line-delimited JSON-RPC 2.0 requests from in and
// writes one response line per request to out. Nothing else may be written
// to out, so diagnostics go through the standard logger, which must not
// point at stdout.
type StdioTransport struct {
	server *Server
	in     io.Reader
	out    io.Writer
}

// NewStdioTransport constructs a StdioTransport.
//
//	t := mcp.NewStdioTransport(srv, os.Stdin, os.Stdout)
//	err := t.Serve(ctx)
func NewStdioTransport(srv *Server, in io.Reader, out io.Writer) *StdioTransport {
	return &StdioTransport{server: srv, in: in, out: out}
}

// Serve handles requests in arrival order until in reaches EOF or ctx is
// cancelled. A clean EOF returns nil.
func (t *StdioTransport) Serve(ctx context.Context) error {
	scanner := bufio.NewScanner(t.in)
	scanner.Buffer(make([]byte, 64*1024), maxLine)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		resp, err := t.server.HandleRequest(ctx, line)
		if err != nil {
			log.Printf("mcp: handler error: %v", err)
			resp = internalErrorResponse(line, err)
		}
		if resp == nil {
			continue
		}
		if _, err := fmt.Fprintf(t.out, "%s\n", resp); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read request: %w", err)
	}
	log.Println("mcp: input closed")
	return nil
}

// internalErrorResponse builds an error frame carrying the request ID when
// it can be recovered.
func internalErrorResponse(rawRequest []byte, handlerErr error) []byte {
	var partial struct {
		ID interface{} `json:"id"`
	}
	_ = json.Unmarshal(rawRequest, &partial)

	data, err := json.Marshal(JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      partial.ID,
		Error:   &JSONRPCError{Code: ErrCodeInternalError, Message: handlerErr.Error()},
	})
	if err != nil {
		return []byte(`{"jsonrpc":"2.0","id":null,"error":{"code":-32603,"message":"internal error"}}`)
	}
	return data
}
