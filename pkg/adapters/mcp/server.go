package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/asyncresource"
	"github.com/aretw0/asyncresource/internal/sanitize"
	"github.com/aretw0/asyncresource/pkg/domain"
	"github.com/aretw0/asyncresource/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// DefaultWaitTimeout bounds how long dispatch_action waits for settlement.
const DefaultWaitTimeout = 30 * time.Second

// StateResponse is the structured result of get_state and dispatch_action.
type StateResponse struct {
	Session  string          `json:"session" jsonschema_description:"Session the resource belongs to"`
	Snapshot domain.Snapshot `json:"snapshot" jsonschema_description:"Latest state of the resource"`
	Settled  bool            `json:"settled" jsonschema_description:"True when the dispatched action has completed"`
}

// Server exposes session resources as MCP tools.
type Server struct {
	host        ports.ResourceHost
	mcpServer   *server.MCPServer
	waitTimeout time.Duration
}

// Option configures the Server.
type Option func(*Server)

// WithWaitTimeout overrides DefaultWaitTimeout.
func WithWaitTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.waitTimeout = d
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(host ports.ResourceHost, opts ...Option) *Server {
	s := &Server{
		host:        host,
		mcpServer:   server.NewMCPServer("asyncresource-mcp", strings.TrimSpace(asyncresource.Version)),
		waitTimeout: DefaultWaitTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	// TOOL: list_actions
	s.mcpServer.AddTool(mcp.NewTool("list_actions",
		mcp.WithDescription("List the actions that can be dispatched on a session's resource."),
		mcp.WithString("session", mcp.Required(), mcp.Description("Session ID")),
	), s.handleListActions)

	// TOOL: get_state
	stateTool := mcp.NewTool("get_state",
		mcp.WithDescription("Get the current state of a session's resource."),
		mcp.WithString("session", mcp.Required(), mcp.Description("Session ID")),
	)
	s.mcpServer.AddTool(stateTool, mcp.NewStructuredToolHandler(s.handleGetState))

	// TOOL: dispatch_action
	dispatchTool := mcp.NewTool("dispatch_action",
		mcp.WithDescription("Start an action on a session's resource and optionally wait until it settles."),
		mcp.WithString("session", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithString("action", mcp.Required(), mcp.Description("Action name")),
		mcp.WithString("args", mcp.Description("JSON value passed as the action arguments (optional)")),
		mcp.WithBoolean("wait", mcp.Description("Wait for the action to resolve or reject (default true)")),
	)
	s.mcpServer.AddTool(dispatchTool, mcp.NewStructuredToolHandler(s.handleDispatch))

	// TOOL: delete_session
	s.mcpServer.AddTool(mcp.NewTool("delete_session",
		mcp.WithDescription("Drop a session and its stored state."),
		mcp.WithString("session", mcp.Required(), mcp.Description("Session ID")),
	), s.handleDeleteSession)
}

func (s *Server) handleListActions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session", "")
	if sessionID == "" {
		return mcp.NewToolResultError("session is required"), nil
	}
	names, err := s.host.Actions(ctx, sessionID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list actions failed: %v", err)), nil
	}
	jsonBytes, err := json.Marshal(names)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode actions failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleDeleteSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session", "")
	if sessionID == "" {
		return mcp.NewToolResultError("session is required"), nil
	}
	if err := s.host.Delete(ctx, sessionID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("delete failed: %v", err)), nil
	}
	return mcp.NewToolResultText("deleted " + sessionID), nil
}

// Handler methods for structured tools

func (s *Server) handleGetState(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (StateResponse, error) {
	sessionID, _ := args["session"].(string)
	if sessionID == "" {
		return StateResponse{}, errors.New("session is required")
	}
	snap, err := s.host.State(ctx, sessionID)
	if err != nil {
		return StateResponse{}, fmt.Errorf("get state failed: %w", err)
	}
	return StateResponse{Session: sessionID, Snapshot: snap, Settled: !snap.Status.InFlight()}, nil
}

func (s *Server) handleDispatch(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (StateResponse, error) {
	sessionID, _ := args["session"].(string)
	action, _ := args["action"].(string)
	if sessionID == "" || action == "" {
		return StateResponse{}, errors.New("session and action are required")
	}

	var actionArgs any
	if raw, ok := args["args"].(string); ok && strings.TrimSpace(raw) != "" {
		clean, err := sanitize.Input(raw, 0)
		if err != nil {
			slog.Warn("MCP Dispatch: args rejected", "error", err, "size", len(raw))
			return StateResponse{}, fmt.Errorf("%w: %v", domain.ErrInvalidArguments, err)
		}
		if err := json.Unmarshal([]byte(clean), &actionArgs); err != nil {
			return StateResponse{}, fmt.Errorf("%w: %v", domain.ErrInvalidArguments, err)
		}
	}

	wait := true
	if w, ok := args["wait"].(bool); ok {
		wait = w
	}

	done, err := s.host.Dispatch(ctx, sessionID, action, actionArgs)
	if err != nil {
		return StateResponse{}, fmt.Errorf("dispatch failed: %w", err)
	}

	settled := false
	if wait {
		timer := time.NewTimer(s.waitTimeout)
		defer timer.Stop()
		select {
		case <-done:
			settled = true
		case <-timer.C:
			slog.Warn("MCP Dispatch: action still running", "session_id", sessionID, "action", action)
		case <-ctx.Done():
			return StateResponse{}, ctx.Err()
		}
	}

	snap, err := s.host.State(ctx, sessionID)
	if err != nil {
		return StateResponse{}, fmt.Errorf("get state failed: %w", err)
	}
	return StateResponse{Session: sessionID, Snapshot: snap, Settled: settled}, nil
}
