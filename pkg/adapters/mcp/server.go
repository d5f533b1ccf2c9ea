package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/inferschema"
	"github.com/aretw0/inferschema/pkg/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	recordsURI      = "inferschema://records"
	recordURIPrefix = recordsURI + "/"
)

// RecordInfo summarizes one record for list_records.
type RecordInfo struct {
	Name    string `json:"name" jsonschema_description:"Record name"`
	Doc     string `json:"doc,omitempty" jsonschema_description:"Record documentation"`
	Builtin bool   `json:"builtin" jsonschema_description:"Whether the record ships with the catalog"`
}

// ListRecordsResponse is the structured result of list_records.
type ListRecordsResponse struct {
	Records []RecordInfo `json:"records" jsonschema_description:"Every record the catalog resolves"`
}

// Violation is one field failure reported by validate_payload.
type Violation struct {
	Field  string `json:"field" jsonschema_description:"Dotted path of the failing field"`
	Reason string `json:"reason" jsonschema_description:"What was expected"`
}

// ValidateResponse is the structured result of validate_payload.
type ValidateResponse struct {
	Valid      bool           `json:"valid" jsonschema_description:"Whether the payload decoded"`
	Normalized map[string]any `json:"normalized,omitempty" jsonschema_description:"Canonical wire form when valid"`
	Errors     []Violation    `json:"errors,omitempty" jsonschema_description:"Field failures when invalid"`
}

type describeArgs struct {
	Name string `json:"name"`
}

type validateArgs struct {
	Name    string `json:"name"`
	Payload string `json:"payload"`
	Unknown string `json:"unknown,omitempty"`
}

// Server exposes a catalog as an MCP Server.
type Server struct {
	catalog   *inferschema.Catalog
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(cat *inferschema.Catalog) *Server {
	s := &Server{
		catalog:   cat,
		mcpServer: server.NewMCPServer("inferschema-mcp", strings.TrimSpace(inferschema.Version)),
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

		slog.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: list_records
	s.mcpServer.AddTool(mcp.NewTool("list_records",
		mcp.WithDescription("List every record the catalog can decode, built-in and registered."),
		mcp.WithOutputSchema[ListRecordsResponse](),
	), mcp.NewStructuredToolHandler(s.handleListRecords))

	// TOOL: describe_record
	s.mcpServer.AddTool(mcp.NewTool("describe_record",
		mcp.WithDescription("Describe a record and the records it references as Markdown."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Record name, e.g. TextToSpeechInput")),
	), mcp.NewTypedToolHandler(s.handleDescribeRecord))

	// TOOL: validate_payload
	s.mcpServer.AddTool(mcp.NewTool("validate_payload",
		mcp.WithDescription("Decode a JSON payload against a record and return its canonical form or the failing fields."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Record name")),
		mcp.WithString("payload", mcp.Required(), mcp.Description("JSON object to validate")),
		mcp.WithString("unknown", mcp.Enum("drop", "reject", "preserve"), mcp.Description("Policy for undeclared keys (default: catalog setting)")),
		mcp.WithOutputSchema[ValidateResponse](),
	), mcp.NewStructuredToolHandler(s.handleValidatePayload))
}

func (s *Server) handleListRecords(ctx context.Context, _ mcp.CallToolRequest, _ map[string]any) (ListRecordsResponse, error) {
	names, err := s.catalog.Records(ctx)
	if err != nil {
		return ListRecordsResponse{}, err
	}
	resp := ListRecordsResponse{Records: make([]RecordInfo, 0, len(names))}
	for _, name := range names {
		info := RecordInfo{Name: name, Builtin: s.catalog.IsBuiltin(name)}
		if r, err := s.catalog.Record(ctx, name); err == nil {
			info.Doc = r.Doc()
		} else {
			slog.Warn("MCP list_records: record does not resolve", "record", name, "error", err)
		}
		resp.Records = append(resp.Records, info)
	}
	return resp, nil
}

func (s *Server) handleDescribeRecord(ctx context.Context, _ mcp.CallToolRequest, args describeArgs) (*mcp.CallToolResult, error) {
	md, err := s.catalog.Describe(ctx, args.Name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("describe failed: %v", err)), nil
	}
	return mcp.NewToolResultText(md), nil
}

func (s *Server) handleValidatePayload(ctx context.Context, _ mcp.CallToolRequest, args validateArgs) (ValidateResponse, error) {
	var opts []schema.Option
	if args.Unknown != "" {
		policy, err := schema.ParseUnknownFieldPolicy(args.Unknown)
		if err != nil {
			return ValidateResponse{}, err
		}
		opts = append(opts, schema.WithUnknownFields(policy))
	}

	obj, err := s.catalog.DecodeJSON(ctx, args.Name, []byte(args.Payload), opts...)
	if err != nil {
		violations := schema.Violations(err)
		if len(violations) == 0 {
			return ValidateResponse{}, err
		}
		resp := ValidateResponse{Errors: make([]Violation, 0, len(violations))}
		for _, v := range violations {
			resp.Errors = append(resp.Errors, Violation{Field: v.Key, Reason: v.Reason})
		}
		return resp, nil
	}
	return ValidateResponse{Valid: true, Normalized: obj.ToWire()}, nil
}

func (s *Server) registerResources() {
	// EXPOSE: inferschema://records
	s.mcpServer.AddResource(mcp.NewResource(recordsURI, "Record definitions",
		mcp.WithMIMEType("application/json"),
	), s.handleReadRecords)

	// EXPOSE: inferschema://records/{name}
	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(recordsURI+"/{name}", "Record definition",
		mcp.WithTemplateMIMEType("application/json"),
	), s.handleReadRecord)
}

func (s *Server) handleReadRecords(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	names, err := s.catalog.Records(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defs := make([]schema.Definition, 0, len(names))
	for _, name := range names {
		def, err := s.catalog.Definition(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", name, err)
		}
		defs = append(defs, def)
	}
	return jsonContents(recordsURI, defs)
}

func (s *Server) handleReadRecord(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	name := strings.TrimPrefix(request.Params.URI, recordURIPrefix)
	def, err := s.catalog.Definition(ctx, name)
	if err != nil {
		return nil, err
	}
	return jsonContents(request.Params.URI, def)
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
