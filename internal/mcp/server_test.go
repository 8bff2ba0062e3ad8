package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/helixml/codevar/domain/search"
	"github.com/helixml/codevar/domain/variable"
)

// fakeSearcher implements Searcher with canned state.
type fakeSearcher struct {
	state     search.State
	sourceErr error
	code      string
	overtaken bool

	value     string
	page      int
	languages []string
	sourceID  int64
}

func (f *fakeSearcher) RequestVariable(_ context.Context, value string, page int, languages []string) search.State {
	f.value = value
	f.page = page
	f.languages = languages
	return f.state
}

func (f *fakeSearcher) RequestSourceCode(_ context.Context, id int64) (string, search.State, error) {
	f.sourceID = id
	if f.sourceErr != nil {
		return "", f.state, f.sourceErr
	}
	if f.overtaken {
		return f.code, f.state, nil
	}
	return f.code, f.state.WithSourceCode(f.code), nil
}

// sendMessage marshals a JSON-RPC request, sends it through HandleMessage,
// and returns the JSONRPCResponse.
func sendMessage(t *testing.T, srv *Server, method string, id int, params map[string]any) mcp.JSONRPCResponse {
	t.Helper()

	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  method,
	}
	if params != nil {
		msg["params"] = params
	}

	raw, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	result := srv.MCPServer().HandleMessage(context.Background(), raw)

	resp, ok := result.(mcp.JSONRPCResponse)
	if !ok {
		t.Fatalf("expected JSONRPCResponse, got %T: %+v", result, result)
	}
	return resp
}

// resultJSON re-marshals the Result field through JSON into dst.
func resultJSON(t *testing.T, resp mcp.JSONRPCResponse, dst any) {
	t.Helper()
	b, err := json.Marshal(resp.Result)
	if err != nil {
		t.Fatalf("marshal result: %v", err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		t.Fatalf("unmarshal result into %T: %v", dst, err)
	}
}

func textFromContent(t *testing.T, result mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	b, err := json.Marshal(result.Content[0])
	if err != nil {
		t.Fatalf("marshal content: %v", err)
	}
	var tc struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(b, &tc); err != nil {
		t.Fatalf("unmarshal text content: %v", err)
	}
	return tc.Text
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) mcp.CallToolResult {
	t.Helper()
	sendMessage(t, srv, "initialize", 1, initializeParams())
	resp := sendMessage(t, srv, "tools/call", 2, map[string]any{
		"name":      name,
		"arguments": args,
	})
	var result mcp.CallToolResult
	resultJSON(t, resp, &result)
	return result
}

func initializeParams() map[string]any {
	return map[string]any{
		"protocolVersion": "2025-06-18",
		"capabilities":    map[string]any{},
		"clientInfo": map[string]any{
			"name":    "test-client",
			"version": "0.0.1",
		},
	}
}

func testState() search.State {
	return search.NewState().WithPage(search.Page{
		SearchValue: "user name",
		Page:        1,
		SearchLang:  []string{"Go"},
		Suggestion:  []string{"user", "name"},
		Variables: []variable.Candidate{
			{
				Keyword:  "userName",
				RepoLink: "https://github.com/acme/app",
				RepoLang: "Go",
				Color:    "#ff0000",
				RepoList: []variable.RepoRef{{ID: 7, Repo: "https://github.com/acme/app", Language: "Go"}},
			},
		},
	})
}

func testServer() (*Server, *fakeSearcher) {
	f := &fakeSearcher{state: testState(), code: "package main\n"}
	return NewServer(f, "0.1.0-test", nil), f
}

func TestServer_Initialize(t *testing.T) {
	srv, _ := testServer()
	resp := sendMessage(t, srv, "initialize", 1, initializeParams())

	var result mcp.InitializeResult
	resultJSON(t, resp, &result)

	if result.ServerInfo.Name != "codevar" {
		t.Errorf("expected server name codevar, got %s", result.ServerInfo.Name)
	}
	if result.ServerInfo.Version != "0.1.0-test" {
		t.Errorf("expected version 0.1.0-test, got %s", result.ServerInfo.Version)
	}
	if result.Capabilities.Tools == nil {
		t.Error("expected tools capability to be present")
	}
}

func TestServer_ListTools(t *testing.T) {
	srv, _ := testServer()
	sendMessage(t, srv, "initialize", 1, initializeParams())

	resp := sendMessage(t, srv, "tools/list", 2, nil)

	var result mcp.ListToolsResult
	resultJSON(t, resp, &result)

	tools := map[string]mcp.Tool{}
	for _, tool := range result.Tools {
		tools[tool.Name] = tool
	}
	for _, name := range []string{"search_variables", "get_source", "get_version"} {
		if _, ok := tools[name]; !ok {
			t.Errorf("missing tool: %s", name)
		}
	}
	if len(tools) != 3 {
		t.Errorf("expected 3 tools, got %d", len(tools))
	}

	searchTool := tools["search_variables"]
	for _, param := range []string{"query", "page", "languages"} {
		if _, ok := searchTool.InputSchema.Properties[param]; !ok {
			t.Errorf("search_variables missing %s parameter", param)
		}
	}
	if len(searchTool.InputSchema.Required) != 1 || searchTool.InputSchema.Required[0] != "query" {
		t.Errorf("expected only query to be required, got %v", searchTool.InputSchema.Required)
	}
}

func TestServer_SearchVariables(t *testing.T) {
	srv, fake := testServer()

	result := callTool(t, srv, "search_variables", map[string]any{
		"query":     "user name",
		"page":      1,
		"languages": "Go, Python,,",
	})
	if result.IsError {
		t.Fatalf("expected success, got error: %s", textFromContent(t, result))
	}

	if fake.value != "user name" {
		t.Errorf("expected query forwarded, got %q", fake.value)
	}
	if fake.page != 1 {
		t.Errorf("expected page 1, got %d", fake.page)
	}
	if strings.Join(fake.languages, "|") != "Go|Python" {
		t.Errorf("expected languages [Go Python], got %v", fake.languages)
	}

	var out searchResult
	if err := json.Unmarshal([]byte(textFromContent(t, result)), &out); err != nil {
		t.Fatalf("unmarshal search result: %v", err)
	}
	if out.Query != "user name" {
		t.Errorf("expected query user name, got %s", out.Query)
	}
	if len(out.Candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(out.Candidates))
	}
	c := out.Candidates[0]
	if c.Keyword != "userName" || c.Language != "Go" || c.Repos != 1 {
		t.Errorf("unexpected candidate: %+v", c)
	}
	if len(c.IDs) != 1 || c.IDs[0] != 7 {
		t.Errorf("expected ids [7], got %v", c.IDs)
	}
	if strings.Join(out.Suggestions, " ") != "user name" {
		t.Errorf("expected suggestions [user name], got %v", out.Suggestions)
	}
}

func TestServer_SearchVariablesMissingQuery(t *testing.T) {
	for name, args := range map[string]map[string]any{
		"missing": {},
		"blank":   {"query": "   "},
	} {
		t.Run(name, func(t *testing.T) {
			srv, fake := testServer()
			result := callTool(t, srv, "search_variables", args)
			if !result.IsError {
				t.Fatal("expected error response")
			}
			if text := textFromContent(t, result); !strings.Contains(text, "query is required") {
				t.Errorf("expected 'query is required', got: %s", text)
			}
			if fake.value != "" {
				t.Error("expected no search for an invalid query")
			}
		})
	}
}

func TestServer_SearchVariablesTranslatedFollowsQuery(t *testing.T) {
	// the session flag stays set after an earlier non-Latin search
	state := testState()
	state.IsNonLatin = true
	f := &fakeSearcher{state: state}
	srv := NewServer(f, "", nil)

	tests := []struct {
		query string
		want  bool
	}{
		{"user", false},
		{"用户", true},
	}
	for _, tt := range tests {
		result := callTool(t, srv, "search_variables", map[string]any{"query": tt.query})
		if result.IsError {
			t.Fatalf("expected success, got error: %s", textFromContent(t, result))
		}
		var out searchResult
		if err := json.Unmarshal([]byte(textFromContent(t, result)), &out); err != nil {
			t.Fatalf("unmarshal search result: %v", err)
		}
		if out.Translated != tt.want {
			t.Errorf("query %q: translated = %v, want %v", tt.query, out.Translated, tt.want)
		}
	}
}

func TestServer_SearchVariablesEmptyPage(t *testing.T) {
	f := &fakeSearcher{state: search.NewState()}
	srv := NewServer(f, "", nil)

	result := callTool(t, srv, "search_variables", map[string]any{"query": "x"})
	if result.IsError {
		t.Fatalf("expected success, got error: %s", textFromContent(t, result))
	}

	var out searchResult
	if err := json.Unmarshal([]byte(textFromContent(t, result)), &out); err != nil {
		t.Fatalf("unmarshal search result: %v", err)
	}
	if len(out.Candidates) != 0 {
		t.Errorf("expected no candidates, got %d", len(out.Candidates))
	}
}

func TestServer_GetSource(t *testing.T) {
	srv, fake := testServer()

	result := callTool(t, srv, "get_source", map[string]any{"id": 7})
	if result.IsError {
		t.Fatalf("expected success, got error: %s", textFromContent(t, result))
	}
	if fake.sourceID != 7 {
		t.Errorf("expected id 7 forwarded, got %d", fake.sourceID)
	}
	if text := textFromContent(t, result); text != "package main\n" {
		t.Errorf("unexpected source: %q", text)
	}
}

func TestServer_GetSourceIgnoresSelectedSource(t *testing.T) {
	// a reset that overtakes the fetch leaves a different selected source
	f := &fakeSearcher{
		state:     search.NewState().WithSourceCode("package other\n"),
		code:      "package main\n",
		overtaken: true,
	}
	srv := NewServer(f, "", nil)

	result := callTool(t, srv, "get_source", map[string]any{"id": 3})
	if result.IsError {
		t.Fatalf("expected success, got error: %s", textFromContent(t, result))
	}
	if text := textFromContent(t, result); text != "package main\n" {
		t.Errorf("expected fetched source, got %q", text)
	}
}

func TestServer_GetSourceErrors(t *testing.T) {
	t.Run("invalid id", func(t *testing.T) {
		srv, fake := testServer()
		result := callTool(t, srv, "get_source", map[string]any{"id": 0})
		if !result.IsError {
			t.Fatal("expected error response")
		}
		if fake.sourceID != 0 {
			t.Error("expected no fetch for an invalid id")
		}
	})

	t.Run("fetch failure", func(t *testing.T) {
		srv, fake := testServer()
		fake.sourceErr = errors.New("boom")
		result := callTool(t, srv, "get_source", map[string]any{"id": 9})
		if !result.IsError {
			t.Fatal("expected error response")
		}
		if text := textFromContent(t, result); !strings.Contains(text, "boom") {
			t.Errorf("expected cause in error, got: %s", text)
		}
	})
}

func TestServer_GetVersion(t *testing.T) {
	srv, _ := testServer()

	result := callTool(t, srv, "get_version", map[string]any{})
	if result.IsError {
		t.Fatal("expected success, got error")
	}
	if text := textFromContent(t, result); text != "0.1.0-test" {
		t.Errorf("expected version 0.1.0-test, got %s", text)
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"Go", 1},
		{" Go , Rust ", 2},
		{",,", 0},
	}
	for _, tt := range tests {
		if got := splitList(tt.in); len(got) != tt.want {
			t.Errorf("splitList(%q) = %v, want %d items", tt.in, got, tt.want)
		}
	}
}

var _ Searcher = (*fakeSearcher)(nil)
