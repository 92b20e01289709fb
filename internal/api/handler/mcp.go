package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pairreview/pairreview/internal/localreview"
	"github.com/pairreview/pairreview/internal/model"
	"github.com/pairreview/pairreview/internal/orchestrator"
	"github.com/pairreview/pairreview/internal/prompt"
	"github.com/pairreview/pairreview/internal/store"
)

// MCPHandler serves the machine protocol endpoint: a JSON-RPC 2.0 request
// dispatcher answering initialize/tools/list/tools/call, every response
// framed as a single event-stream frame per SPEC_FULL.md section 6.2.
type MCPHandler struct {
	store   store.Store
	manager *localreview.Manager
	prompts *prompt.Builder
}

// NewMCPHandler creates an MCPHandler.
func NewMCPHandler(s store.Store, m *localreview.Manager, p *prompt.Builder) *MCPHandler {
	return &MCPHandler{store: s, manager: m, prompts: p}
}

type jsonRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

type jsonRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *jsonRPCError   `json:"error,omitempty"`
}

type jsonRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

var mcpTools = []gin.H{
	{
		"name":        "get_analysis_prompt",
		"description": "Render the prompt that would be sent to a provider for a given review and level.",
		"inputSchema": gin.H{
			"type": "object",
			"properties": gin.H{
				"reviewId": gin.H{"type": "integer"},
				"level":    gin.H{"type": "integer"},
				"provider": gin.H{"type": "string"},
				"model":    gin.H{"type": "string"},
			},
			"required": []string{"reviewId", "provider", "model"},
		},
	},
	{
		"name":        "get_user_comments",
		"description": "List active user-authored comments for a review.",
		"inputSchema": gin.H{
			"type":       "object",
			"properties": gin.H{"reviewId": gin.H{"type": "integer"}},
			"required":   []string{"reviewId"},
		},
	},
	{
		"name":        "get_ai_analysis_runs",
		"description": "List analysis runs recorded for a review.",
		"inputSchema": gin.H{
			"type":       "object",
			"properties": gin.H{"reviewId": gin.H{"type": "integer"}},
			"required":   []string{"reviewId"},
		},
	},
	{
		"name":        "get_ai_suggestions",
		"description": "List AI suggestions for a review, optionally scoped to one run.",
		"inputSchema": gin.H{
			"type": "object",
			"properties": gin.H{
				"reviewId": gin.H{"type": "integer"},
				"runId":    gin.H{"type": "string"},
			},
			"required": []string{"reviewId"},
		},
	},
}

// Handle serves POST /mcp.
func (h *MCPHandler) Handle(c *gin.Context) {
	var req jsonRPCRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeFrame(c, jsonRPCResponse{JSONRPC: "2.0", Error: &jsonRPCError{Code: -32700, Message: "parse error"}})
		return
	}

	var resp jsonRPCResponse
	resp.JSONRPC = "2.0"
	resp.ID = req.ID

	switch req.Method {
	case "initialize":
		resp.Result = gin.H{
			"serverInfo":      gin.H{"name": "pair-review"},
			"protocolVersion": "2024-11-05",
			"capabilities":    gin.H{"tools": gin.H{}},
		}
	case "tools/list":
		resp.Result = gin.H{"tools": mcpTools}
	case "tools/call":
		resp.Result = h.callTool(req.Params)
	default:
		resp.Error = &jsonRPCError{Code: -32601, Message: "method not found: " + req.Method}
	}

	h.writeFrame(c, resp)
}

func (h *MCPHandler) writeFrame(c *gin.Context, resp jsonRPCResponse) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	body, err := json.Marshal(resp)
	if err != nil {
		body = []byte(`{"jsonrpc":"2.0","error":{"code":-32603,"message":"internal error"}}`)
	}
	fmt.Fprintf(c.Writer, "data: %s\n\n", body)
	c.Writer.Flush()
}

type toolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// callTool dispatches a tools/call request and always returns a
// {content:[{type:"text", text}]} result; a tool-level failure is encoded
// as {error} inside the text payload rather than as a JSON-RPC error.
func (h *MCPHandler) callTool(raw json.RawMessage) gin.H {
	var params toolCallParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return textResult(gin.H{"error": "invalid tool call params"})
	}

	var args map[string]interface{}
	_ = json.Unmarshal(params.Arguments, &args)

	switch params.Name {
	case "get_analysis_prompt":
		return textResult(h.toolGetAnalysisPrompt(args))
	case "get_user_comments":
		return textResult(h.toolGetUserComments(args))
	case "get_ai_analysis_runs":
		return textResult(h.toolGetAIAnalysisRuns(args))
	case "get_ai_suggestions":
		return textResult(h.toolGetAISuggestions(args))
	default:
		return textResult(gin.H{"error": "unknown tool: " + params.Name})
	}
}

func textResult(payload gin.H) gin.H {
	body, err := json.Marshal(payload)
	if err != nil {
		body = []byte(`{"error":"failed to encode tool result"}`)
	}
	return gin.H{"content": []gin.H{{"type": "text", "text": string(body)}}}
}

func (h *MCPHandler) loadReviewArg(args map[string]interface{}) (*model.Review, error) {
	reviewID, ok := uintArg(args, "reviewId")
	if !ok {
		return nil, fmt.Errorf("reviewId is required")
	}
	return h.store.Review().GetByID(reviewID)
}

func (h *MCPHandler) toolGetAnalysisPrompt(args map[string]interface{}) gin.H {
	review, err := h.loadReviewArg(args)
	if err != nil {
		return gin.H{"error": err.Error()}
	}
	diff, err := h.manager.Load(context.Background(), review)
	if err != nil {
		return gin.H{"error": err.Error()}
	}
	level := 1
	if v, ok := args["level"].(float64); ok {
		level = int(v)
	}
	voice := orchestrator.Voice{
		Provider: stringField(args, "provider"),
		Model:    stringField(args, "model"),
	}
	text, err := h.prompts.Build(context.Background(), orchestrator.PromptRequest{
		Review: review,
		Diff:   diff,
		Level:  level,
		Voice:  voice,
	})
	if err != nil {
		return gin.H{"error": err.Error()}
	}
	return gin.H{"prompt": text}
}

func (h *MCPHandler) toolGetUserComments(args map[string]interface{}) gin.H {
	review, err := h.loadReviewArg(args)
	if err != nil {
		return gin.H{"error": err.Error()}
	}
	comments, err := h.store.Comment().List(review.ID, false)
	if err != nil {
		return gin.H{"error": err.Error()}
	}
	var userComments []model.Comment
	for _, c := range comments {
		if c.Source == model.CommentSourceUser {
			userComments = append(userComments, c)
		}
	}
	return gin.H{"comments": userComments}
}

func (h *MCPHandler) toolGetAIAnalysisRuns(args map[string]interface{}) gin.H {
	review, err := h.loadReviewArg(args)
	if err != nil {
		return gin.H{"error": err.Error()}
	}
	runs, err := h.store.AnalysisRun().ListByReview(review.ID)
	if err != nil {
		return gin.H{"error": err.Error()}
	}
	return gin.H{"runs": runs}
}

func (h *MCPHandler) toolGetAISuggestions(args map[string]interface{}) gin.H {
	review, err := h.loadReviewArg(args)
	if err != nil {
		return gin.H{"error": err.Error()}
	}
	comments, err := h.store.Comment().List(review.ID, true)
	if err != nil {
		return gin.H{"error": err.Error()}
	}
	runID, _ := args["runId"].(string)
	var suggestions []model.Comment
	for _, c := range comments {
		if c.Source != model.CommentSourceAI {
			continue
		}
		if runID != "" && (c.AIRunID == nil || *c.AIRunID != runID) {
			continue
		}
		suggestions = append(suggestions, c)
	}
	return gin.H{"suggestions": suggestions}
}

func uintArg(args map[string]interface{}, key string) (uint, bool) {
	v, ok := args[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return uint(n), true
	case string:
		parsed, err := strconv.ParseUint(n, 10, 64)
		if err != nil {
			return 0, false
		}
		return uint(parsed), true
	default:
		return 0, false
	}
}
