// Package mcp exposes the document workspace as an MCP server, so agent
// tooling can inspect and edit canvases through tools instead of raw HTTP.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/workspace"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// DocumentResponse is the unified structured result across document tools.
type DocumentResponse struct {
	Snapshot *domain.Snapshot `json:"snapshot" jsonschema_description:"The full document snapshot after the operation"`
	CanUndo  bool             `json:"canUndo" jsonschema_description:"Whether an undo entry is available"`
	CanRedo  bool             `json:"canRedo" jsonschema_description:"Whether a redo entry is available"`
}

// NodeResponse is returned by tools that create or modify a single node.
type NodeResponse struct {
	Node    domain.Node `json:"node" jsonschema_description:"The node after the operation"`
	CanUndo bool        `json:"canUndo" jsonschema_description:"Whether an undo entry is available"`
}

// Server wraps a workspace Manager and exposes it as an MCP Server.
type Server struct {
	manager   *workspace.Manager
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(manager *workspace.Manager) *Server {
	s := &Server{
		manager:   manager,
		mcpServer: server.NewMCPServer("espalier-mcp", strings.TrimSpace(espalier.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		// Create a timeout context for the graceful shutdown
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		fmt.Println("\nShutdown signal received, shutting down server...")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slog.Debug("CORS Middleware", "method", r.Method, "path", r.URL.Path)
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With, Baggage, Sentry-Trace")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: get_document
	getTool := mcp.NewTool("get_document",
		mcp.WithDescription("Get the full snapshot of a document: nodes, connections and viewport."),
		mcp.WithString("doc_id", mcp.Required(), mcp.Description("Document identifier")),
		mcp.WithOutputSchema[DocumentResponse](),
	)
	s.mcpServer.AddTool(getTool, mcp.NewStructuredToolHandler(s.handleGetDocument))

	// TOOL: add_node
	addTool := mcp.NewTool("add_node",
		mcp.WithDescription("Add a node to a document. Creates the document if it does not exist."),
		mcp.WithString("doc_id", mcp.Required(), mcp.Description("Document identifier")),
		mcp.WithString("type", mcp.Required(), mcp.Description("Node type identifier, e.g. 'http_request'")),
		mcp.WithString("title", mcp.Description("Display title (optional)")),
		mcp.WithNumber("x", mcp.Description("Canvas X coordinate (optional)")),
		mcp.WithNumber("y", mcp.Description("Canvas Y coordinate (optional)")),
		mcp.WithString("configuration", mcp.Description("JSON object of string configuration values (optional)")),
		mcp.WithOutputSchema[NodeResponse](),
	)
	s.mcpServer.AddTool(addTool, mcp.NewStructuredToolHandler(s.handleAddNode))

	// TOOL: update_node
	updateTool := mcp.NewTool("update_node",
		mcp.WithDescription("Apply a partial update to a node: title, position and configuration entries."),
		mcp.WithString("doc_id", mcp.Required(), mcp.Description("Document identifier")),
		mcp.WithString("node_id", mcp.Required(), mcp.Description("Node identifier")),
		mcp.WithString("title", mcp.Description("New display title (optional)")),
		mcp.WithNumber("x", mcp.Description("New canvas X coordinate (optional, requires y)")),
		mcp.WithNumber("y", mcp.Description("New canvas Y coordinate (optional, requires x)")),
		mcp.WithString("configuration", mcp.Description("JSON object of string values to upsert (optional)")),
		mcp.WithOutputSchema[NodeResponse](),
	)
	s.mcpServer.AddTool(updateTool, mcp.NewStructuredToolHandler(s.handleUpdateNode))

	// TOOL: remove_node
	removeTool := mcp.NewTool("remove_node",
		mcp.WithDescription("Remove a node and its connections as one undoable step."),
		mcp.WithString("doc_id", mcp.Required(), mcp.Description("Document identifier")),
		mcp.WithString("node_id", mcp.Required(), mcp.Description("Node identifier")),
		mcp.WithOutputSchema[DocumentResponse](),
	)
	s.mcpServer.AddTool(removeTool, mcp.NewStructuredToolHandler(s.handleRemoveNode))

	// TOOL: connect
	connectTool := mcp.NewTool("connect",
		mcp.WithDescription("Create a connection between a source port and a target port."),
		mcp.WithString("doc_id", mcp.Required(), mcp.Description("Document identifier")),
		mcp.WithString("source_node_id", mcp.Required(), mcp.Description("Source node identifier")),
		mcp.WithString("source_port_id", mcp.Required(), mcp.Description("Source (output) port identifier")),
		mcp.WithString("target_node_id", mcp.Required(), mcp.Description("Target node identifier")),
		mcp.WithString("target_port_id", mcp.Required(), mcp.Description("Target (input) port identifier")),
	)
	s.mcpServer.AddTool(connectTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		docID := request.GetString("doc_id", "")
		var conn domain.Connection
		err := s.manager.With(ctx, docID, func(doc *espalier.Document) error {
			var err error
			conn, err = doc.Connect(
				request.GetString("source_node_id", ""),
				request.GetString("source_port_id", ""),
				request.GetString("target_node_id", ""),
				request.GetString("target_port_id", ""),
			)
			return err
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("connect failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(conn)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	// TOOL: disconnect
	disconnectTool := mcp.NewTool("disconnect",
		mcp.WithDescription("Remove a connection by id."),
		mcp.WithString("doc_id", mcp.Required(), mcp.Description("Document identifier")),
		mcp.WithString("connection_id", mcp.Required(), mcp.Description("Connection identifier")),
		mcp.WithOutputSchema[DocumentResponse](),
	)
	s.mcpServer.AddTool(disconnectTool, mcp.NewStructuredToolHandler(s.handleDisconnect))

	// TOOL: undo / redo
	undoTool := mcp.NewTool("undo",
		mcp.WithDescription("Revert the most recent mutating action on a document."),
		mcp.WithString("doc_id", mcp.Required(), mcp.Description("Document identifier")),
		mcp.WithOutputSchema[DocumentResponse](),
	)
	s.mcpServer.AddTool(undoTool, mcp.NewStructuredToolHandler(s.handleUndo))

	redoTool := mcp.NewTool("redo",
		mcp.WithDescription("Re-apply the most recently undone action on a document."),
		mcp.WithString("doc_id", mcp.Required(), mcp.Description("Document identifier")),
		mcp.WithOutputSchema[DocumentResponse](),
	)
	s.mcpServer.AddTool(redoTool, mcp.NewStructuredToolHandler(s.handleRedo))

	// TOOL: list_documents
	s.mcpServer.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List the document ids stored in the workspace."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		docs, err := s.manager.List(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(docs)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

// Handler methods for structured tools

func (s *Server) handleGetDocument(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (DocumentResponse, error) {
	docID, _ := args["doc_id"].(string)

	var resp DocumentResponse
	err := s.manager.View(ctx, docID, func(doc *espalier.Document) error {
		resp = documentResponse(doc)
		return nil
	})
	if err != nil {
		return DocumentResponse{}, fmt.Errorf("get document failed: %w", err)
	}
	return resp, nil
}

func (s *Server) handleAddNode(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (NodeResponse, error) {
	docID, _ := args["doc_id"].(string)

	node := domain.Node{}
	node.Type, _ = args["type"].(string)
	node.Title, _ = args["title"].(string)
	if x, ok := args["x"].(float64); ok {
		node.Position.X = x
	}
	if y, ok := args["y"].(float64); ok {
		node.Position.Y = y
	}
	if cfgStr, ok := args["configuration"].(string); ok && cfgStr != "" {
		if err := json.Unmarshal([]byte(cfgStr), &node.Configuration); err != nil {
			return NodeResponse{}, fmt.Errorf("invalid configuration JSON: %w", err)
		}
	}

	var resp NodeResponse
	err := s.manager.With(ctx, docID, func(doc *espalier.Document) error {
		created, err := doc.AddNode(node)
		if err != nil {
			return err
		}
		resp = NodeResponse{Node: created, CanUndo: doc.CanUndo()}
		return nil
	})
	if err != nil {
		return NodeResponse{}, fmt.Errorf("add node failed: %w", err)
	}
	return resp, nil
}

func (s *Server) handleUpdateNode(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (NodeResponse, error) {
	docID, _ := args["doc_id"].(string)
	nodeID, _ := args["node_id"].(string)

	patch := domain.NodePatch{}
	if title, ok := args["title"].(string); ok {
		patch.Title = &title
	}
	x, hasX := args["x"].(float64)
	y, hasY := args["y"].(float64)
	if hasX && hasY {
		patch.Position = &domain.Position{X: x, Y: y}
	}
	if cfgStr, ok := args["configuration"].(string); ok && cfgStr != "" {
		if err := json.Unmarshal([]byte(cfgStr), &patch.Configuration); err != nil {
			return NodeResponse{}, fmt.Errorf("invalid configuration JSON: %w", err)
		}
	}

	var resp NodeResponse
	err := s.manager.With(ctx, docID, func(doc *espalier.Document) error {
		if err := doc.UpdateNode(nodeID, patch); err != nil {
			return err
		}
		updated, err := doc.Node(nodeID)
		if err != nil {
			return err
		}
		resp = NodeResponse{Node: updated, CanUndo: doc.CanUndo()}
		return nil
	})
	if err != nil {
		return NodeResponse{}, fmt.Errorf("update node failed: %w", err)
	}
	return resp, nil
}

func (s *Server) handleRemoveNode(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (DocumentResponse, error) {
	docID, _ := args["doc_id"].(string)
	nodeID, _ := args["node_id"].(string)

	var resp DocumentResponse
	err := s.manager.With(ctx, docID, func(doc *espalier.Document) error {
		if err := doc.RemoveNode(nodeID); err != nil {
			return err
		}
		resp = documentResponse(doc)
		return nil
	})
	if err != nil {
		return DocumentResponse{}, fmt.Errorf("remove node failed: %w", err)
	}
	return resp, nil
}

func (s *Server) handleDisconnect(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (DocumentResponse, error) {
	docID, _ := args["doc_id"].(string)
	connID, _ := args["connection_id"].(string)

	var resp DocumentResponse
	err := s.manager.With(ctx, docID, func(doc *espalier.Document) error {
		if err := doc.Disconnect(connID); err != nil {
			return err
		}
		resp = documentResponse(doc)
		return nil
	})
	if err != nil {
		return DocumentResponse{}, fmt.Errorf("disconnect failed: %w", err)
	}
	return resp, nil
}

func (s *Server) handleUndo(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (DocumentResponse, error) {
	docID, _ := args["doc_id"].(string)

	var resp DocumentResponse
	err := s.manager.With(ctx, docID, func(doc *espalier.Document) error {
		doc.Undo()
		resp = documentResponse(doc)
		return nil
	})
	if err != nil {
		return DocumentResponse{}, fmt.Errorf("undo failed: %w", err)
	}
	return resp, nil
}

func (s *Server) handleRedo(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (DocumentResponse, error) {
	docID, _ := args["doc_id"].(string)

	var resp DocumentResponse
	err := s.manager.With(ctx, docID, func(doc *espalier.Document) error {
		doc.Redo()
		resp = documentResponse(doc)
		return nil
	})
	if err != nil {
		return DocumentResponse{}, fmt.Errorf("redo failed: %w", err)
	}
	return resp, nil
}

func documentResponse(doc *espalier.Document) DocumentResponse {
	return DocumentResponse{
		Snapshot: doc.Serialize(),
		CanUndo:  doc.CanUndo(),
		CanRedo:  doc.CanRedo(),
	}
}

func (s *Server) registerResources() {
	// EXPOSE: espalier://documents
	s.mcpServer.AddResource(mcp.NewResource("espalier://documents", "Stored Document IDs",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		docs, err := s.manager.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list documents: %w", err)
		}
		jsonBytes, _ := json.Marshal(docs)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "espalier://documents",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
