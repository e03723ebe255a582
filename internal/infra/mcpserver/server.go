package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"fantasygw/internal/domain"
	"fantasygw/internal/infra/dispatch"
	"fantasygw/internal/infra/telemetry"
)

// Executor is the dispatch surface the MCP tools forward to.
type Executor interface {
	Execute(ctx context.Context, req domain.ToolRequest) domain.ExecuteResponse
	Tools() []dispatch.ToolEntry
}

// Server exposes every (sport, tool) pair as an MCP tool named
// "<sport>_<tool>". Calls go through the same dispatcher as /execute.
type Server struct {
	server *mcp.Server
	exec   Executor
	logger *zap.Logger
}

func New(exec Executor, version string, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		server: mcp.NewServer(&mcp.Implementation{Name: domain.ServiceName, Version: version}, &mcp.ServerOptions{HasTools: true}),
		exec:   exec,
		logger: logger.Named("mcp"),
	}

	schema, err := toolInputSchema()
	if err != nil {
		return nil, err
	}
	for _, entry := range exec.Tools() {
		tool := mcp.Tool{
			Name:        ToolName(entry.Sport, entry.Tool),
			Description: entry.Description,
			InputSchema: schema,
		}
		s.server.AddTool(&tool, s.handler(entry))
	}
	return s, nil
}

// ToolName is the MCP-facing name of a sport tool.
func ToolName(sport, tool string) string {
	return sport + "_" + tool
}

// MCP returns the underlying server for custom transports.
func (s *Server) MCP() *mcp.Server {
	return s.server
}

// Handler serves the streamable HTTP transport.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, &mcp.StreamableHTTPOptions{JSONResponse: true})
}

func (s *Server) handler(entry dispatch.ToolEntry) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var params domain.ToolParams
		if req != nil && req.Params != nil && len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
				return toolResult(domain.Fail(domain.CodeMissingParam, "invalid tool arguments: "+err.Error())), nil
			}
		}
		params.Sport = entry.Sport

		ctx, _ = telemetry.EnsureRequestMeta(ctx, telemetry.RequestMeta{})
		resp := s.exec.Execute(ctx, domain.ToolRequest{Tool: entry.Tool, Params: params})
		if !resp.Success {
			telemetry.LoggerWithRequest(ctx, s.logger).Debug("mcp tool call failed",
				telemetry.SportField(entry.Sport),
				telemetry.ToolField(entry.Tool),
				telemetry.CodeField(string(resp.Code)),
			)
		}
		return toolResult(resp), nil
	}
}

func toolResult(resp domain.ExecuteResponse) *mcp.CallToolResult {
	raw, err := json.Marshal(resp)
	if err != nil {
		raw = fmt.Appendf(nil, `{"success":false,"error":%q,"code":%q}`, err.Error(), domain.CodeInternal)
	}
	return &mcp.CallToolResult{
		Content:           []mcp.Content{&mcp.TextContent{Text: string(raw)}},
		StructuredContent: json.RawMessage(raw),
		IsError:           !resp.Success,
	}
}

// toolInputSchema derives the argument schema from ToolParams. The sport is
// fixed by the tool name, so it is not an argument.
func toolInputSchema() (*jsonschema.Schema, error) {
	schema, err := jsonschema.For[domain.ToolParams](nil)
	if err != nil {
		return nil, fmt.Errorf("derive tool input schema: %w", err)
	}
	delete(schema.Properties, "sport")
	schema.Required = slices.DeleteFunc(schema.Required, func(name string) bool { return name == "sport" })
	return schema, nil
}
