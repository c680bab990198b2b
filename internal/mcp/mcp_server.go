// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/ArnoldoM23/pess/core"
	"github.com/ArnoldoM23/pess/internal/contract"
	"github.com/ArnoldoM23/pess/internal/scorestore"
	"github.com/ArnoldoM23/pess/internal/sink"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the PESS MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) (*server.MCPServer, error) {
	s := server.NewMCPServer(
		"PESS Scoring Server",
		"1.0.0",
		server.WithLogging(),
	)

	// One pipeline serves all tool calls so health counters and version
	// history accumulate across the session.
	pipeline, err := core.NewPipeline(baseCfg, mgr.GetRecordStore(), scorestore.NewMemoryHistoryStore(), sink.FromConfig(baseCfg))
	if err != nil {
		return nil, err
	}

	h := &toolHandler{
		baseCfg:  baseCfg,
		mgr:      mgr,
		pipeline: pipeline,
	}

	// --- 1. Tool: score_session ---
	s.AddTool(mcp.NewTool("score_session",
		mcp.WithDescription("Score one prompt session through the full pipeline and return the 0-100 effectiveness score with dimensional breakdown."),
		mcp.WithString("payload", mcp.Description("Scoring request payload as a JSON object."), mcp.Required()),
		mcp.WithString("source", mcp.Description("Payload source shape. Defaults to 'mcp'."), mcp.Enum("promptbuilder", "mcp", "vscode_extension", "manual")),
	), h.handleScoreSession)

	// --- 2. Tool: score_batch ---
	s.AddTool(mcp.NewTool("score_batch",
		mcp.WithDescription("Score a batch of prompt sessions. Items are independent; a failed item never blocks the rest."),
		mcp.WithString("payloads", mcp.Description("Scoring request payloads as a JSON array of objects."), mcp.Required()),
		mcp.WithString("source", mcp.Description("Payload source shape applied to the whole batch. Defaults to 'mcp'."), mcp.Enum("promptbuilder", "mcp", "vscode_extension", "manual")),
	), h.handleScoreBatch)

	// --- 3. Tool: submit_feedback ---
	s.AddTool(mcp.NewTool("submit_feedback",
		mcp.WithDescription("Attach post-hoc feedback to a previously scored session."),
		mcp.WithString("scoring_id", mcp.Description("Scoring ID the feedback refers to."), mcp.Required()),
		mcp.WithString("feedback_type", mcp.Description("Kind of feedback being submitted."), mcp.Required(), mcp.Enum("developer_satisfaction", "pr_review", "retry_feedback", "manual_edit")),
		mcp.WithString("session_id", mcp.Description("Session ID the score belongs to.")),
		mcp.WithNumber("rating", mcp.Description("Rating on a 0-5 scale.")),
		mcp.WithString("comment", mcp.Description("Free-form comment.")),
	), h.handleSubmitFeedback)

	// --- 4. Tool: pipeline_health ---
	s.AddTool(mcp.NewTool("pipeline_health",
		mcp.WithDescription("Report per-stage throughput, failure counts and latency for this server's pipeline."),
	), h.handlePipelineHealth)

	// --- 5. Tool: template_analytics ---
	s.AddTool(mcp.NewTool("template_analytics",
		mcp.WithDescription("Aggregate per-template score performance over a lookback window, flagging underperforming templates."),
		mcp.WithNumber("lookback_days", mcp.Description("Lookback window in days. Defaults to the configured window.")),
	), h.handleTemplateAnalytics)

	// --- 6. Tool: bump_version ---
	s.AddTool(mcp.NewTool("bump_version",
		mcp.WithDescription("Increment the pipeline score version. Subsequent scores carry the new version and correlation hashes."),
		mcp.WithString("kind", mcp.Description("Which version component to bump."), mcp.Required(), mcp.Enum("major", "minor", "patch")),
	), h.handleBumpVersion)

	return s, nil
}

// StartMCPServer starts the PESS MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s, err := NewMCPServer(baseCfg, mgr)
	if err != nil {
		return err
	}
	return server.ServeStdio(s)
}
