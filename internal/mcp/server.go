// Package mcp provides Model Context Protocol server functionality.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/helixml/codevar/domain/search"
	"github.com/helixml/codevar/domain/variable"
)

// Searcher provides the variable search operations for MCP tools.
type Searcher interface {
	RequestVariable(ctx context.Context, value string, page int, languages []string) search.State
	RequestSourceCode(ctx context.Context, id int64) (string, search.State, error)
}

// Server wraps the MCP server with codevar tools.
type Server struct {
	mcpServer *server.MCPServer
	searcher  Searcher
	version   string
	logger    *slog.Logger
}

// NewServer creates a new MCP server backed by searcher.
func NewServer(searcher Searcher, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if version == "" {
		version = "dev"
	}

	s := &Server{
		searcher: searcher,
		version:  version,
		logger:   logger.With(slog.String("component", "mcp")),
	}

	mcpServer := server.NewMCPServer(
		"codevar",
		version,
		server.WithToolCapabilities(true),
	)

	s.registerTools(mcpServer)

	s.mcpServer = mcpServer
	return s
}

// registerTools registers all codevar tools with the MCP server.
func (s *Server) registerTools(mcpServer *server.MCPServer) {
	searchTool := mcp.NewTool("search_variables",
		mcp.WithDescription("Find variable names used in public code for a concept. "+
			"Non-English queries are translated first. Each call returns one page of candidates."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The concept to name, e.g. \"user name\""),
		),
		mcp.WithNumber("page",
			mcp.Description("Zero-based result page (default: 0)"),
		),
		mcp.WithString("languages",
			mcp.Description("Comma separated language filter, e.g. \"Go,Python\""),
		),
	)
	mcpServer.AddTool(searchTool, s.handleSearchVariables)

	sourceTool := mcp.NewTool("get_source",
		mcp.WithDescription("Get the source file of a search result by its numeric id"),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("The id of a result from the repos of a candidate"),
		),
	)
	mcpServer.AddTool(sourceTool, s.handleGetSource)

	versionTool := mcp.NewTool("get_version",
		mcp.WithDescription("Get the codevar server version"),
	)
	mcpServer.AddTool(versionTool, s.handleGetVersion)
}

type candidateResult struct {
	Keyword  string  `json:"keyword"`
	Language string  `json:"language"`
	Link     string  `json:"link"`
	Repos    int     `json:"repos"`
	IDs      []int64 `json:"ids"`
}

type searchResult struct {
	Query       string            `json:"query"`
	Page        int               `json:"page"`
	Translated  bool              `json:"translated"`
	Suggestions []string          `json:"suggestions"`
	Candidates  []candidateResult `json:"candidates"`
}

// handleSearchVariables handles the search_variables tool invocation.
func (s *Server) handleSearchVariables(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil || search.NormalizeQuery(query) == "" {
		return mcp.NewToolResultError("query is required"), nil
	}

	page := request.GetInt("page", 0)
	if page < 0 {
		return mcp.NewToolResultError(fmt.Sprintf("invalid page: %d", page)), nil
	}

	languages := splitList(request.GetString("languages", ""))

	state := s.searcher.RequestVariable(ctx, query, page, languages)

	var latest []variable.Candidate
	if n := len(state.VariableList); n > 0 {
		latest = state.VariableList[n-1]
	}

	result := searchResult{
		Query:       query,
		Page:        state.Page,
		Translated:  variable.IsNonLatin(query),
		Suggestions: state.Suggestion,
		Candidates:  make([]candidateResult, len(latest)),
	}
	if state.SearchValue != nil {
		result.Query = *state.SearchValue
	}
	for i, c := range latest {
		ids := make([]int64, len(c.RepoList))
		for j, r := range c.RepoList {
			ids[j] = r.ID
		}
		result.Candidates[i] = candidateResult{
			Keyword:  c.Keyword,
			Language: c.RepoLang,
			Link:     c.RepoLink,
			Repos:    len(c.RepoList),
			IDs:      ids,
		}
	}

	jsonBytes, err := json.Marshal(result)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// handleGetSource handles the get_source tool invocation.
func (s *Server) handleGetSource(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := int64(request.GetInt("id", 0))
	if id <= 0 {
		return mcp.NewToolResultError("id must be a positive integer"), nil
	}

	code, _, err := s.searcher.RequestSourceCode(ctx, id)
	if err != nil {
		s.logger.Error("failed to get source", slog.Int64("id", id), slog.Any("error", err))
		return mcp.NewToolResultError(fmt.Sprintf("failed to get source %d: %v", id, err)), nil
	}

	return mcp.NewToolResultText(code), nil
}

// handleGetVersion handles the get_version tool invocation.
func (s *Server) handleGetVersion(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(s.version), nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// MCPServer returns the underlying MCP server for stdio serving.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio runs the MCP server on stdio.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
