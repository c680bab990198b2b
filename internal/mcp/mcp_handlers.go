package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ArnoldoM23/pess/core"
	"github.com/ArnoldoM23/pess/internal/contract"
	"github.com/ArnoldoM23/pess/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg  *contract.Config
	mgr      contract.StoreManager
	pipeline *core.Pipeline
}

// batchItemResult is the per-item view returned by score_batch. Items carry
// their own identity and error so callers match by ID, never by position.
type batchItemResult struct {
	SessionID  string  `json:"session_id"`
	ScoringID  string  `json:"scoring_id,omitempty"`
	FinalScore float64 `json:"final_score"`
	Label      string  `json:"label,omitempty"`
	Error      string  `json:"error,omitempty"`
}

func (h *toolHandler) resolveSource(request mcp.CallToolRequest) (schema.SourceTag, error) {
	src := schema.SourceTag(request.GetString("source", string(schema.MCPSource)))
	if _, ok := schema.ValidSources[src]; !ok {
		return "", fmt.Errorf("unsupported source %q", src)
	}
	return src, nil
}

func (h *toolHandler) handleScoreSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	src, err := h.resolveSource(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(request.GetString("payload", "")), &payload); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("payload must be a JSON object: %v", err)), nil
	}

	result := h.pipeline.Process(ctx, src, payload, nil)
	if result.Err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scoring failed: %v", result.Err)), nil
	}

	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleScoreBatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	src, err := h.resolveSource(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var payloads []map[string]any
	if err := json.Unmarshal([]byte(request.GetString("payloads", "")), &payloads); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("payloads must be a JSON array of objects: %v", err)), nil
	}
	if len(payloads) == 0 {
		return mcp.NewToolResultError("payloads must contain at least one scoring request"), nil
	}

	results := h.pipeline.ProcessBatch(ctx, src, payloads, nil)

	items := make([]batchItemResult, len(results))
	var failed int
	for i, r := range results {
		items[i] = batchItemResult{
			SessionID:  r.SessionID,
			ScoringID:  r.ScoringID,
			FinalScore: r.FinalScore,
		}
		if r.Err != nil {
			items[i].Error = r.Err.Error()
			failed++
			continue
		}
		items[i].Label = contract.GetPlainLabel(r.FinalScore)
	}

	response := struct {
		Scored int               `json:"scored"`
		Failed int               `json:"failed"`
		Items  []batchItemResult `json:"items"`
	}{
		Scored: len(results) - failed,
		Failed: failed,
		Items:  items,
	}

	jsonData, _ := json.MarshalIndent(response, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleBumpVersion(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind := request.GetString("kind", "")
	next, err := h.pipeline.Versioner().Increment(kind)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := struct {
		ScoreVersion string `json:"score_version"`
	}{ScoreVersion: next}

	jsonData, _ := json.MarshalIndent(response, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleSubmitFeedback(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	store := h.mgr.GetRecordStore()
	if store == nil {
		return mcp.NewToolResultError("no store backend configured; submit_feedback requires persistence"), nil
	}

	scoringID := request.GetString("scoring_id", "")
	if scoringID == "" {
		return mcp.NewToolResultError("scoring_id is required"), nil
	}

	fbType := schema.FeedbackType(request.GetString("feedback_type", ""))
	if _, ok := schema.ValidFeedbackTypes[fbType]; !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unsupported feedback type %q", fbType)), nil
	}

	fb := &schema.FeedbackData{
		FeedbackID: schema.NewFeedbackID(),
		ScoringID:  scoringID,
		SessionID:  request.GetString("session_id", ""),
		Type:       fbType,
		Timestamp:  time.Now().UTC(),
		Comment:    request.GetString("comment", ""),
	}
	if rating := request.GetFloat("rating", -1); rating >= 0 {
		if rating > 5 {
			return mcp.NewToolResultError("rating must be between 0 and 5"), nil
		}
		fb.Rating = &rating
	}

	if err := store.SaveFeedback(ctx, fb); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to save feedback: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(fb, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handlePipelineHealth(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	health := h.pipeline.Health()
	jsonData, _ := json.MarshalIndent(health, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleTemplateAnalytics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	store := h.mgr.GetRecordStore()
	if store == nil {
		return mcp.NewToolResultError("no store backend configured; template_analytics requires persistence"), nil
	}

	days := request.GetInt("lookback_days", h.baseCfg.LookbackDays)
	if days <= 0 {
		return mcp.NewToolResultError("lookback_days must be positive"), nil
	}

	templates, err := store.GetTemplatePerformance(ctx, days)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analytics query failed: %v", err)), nil
	}

	response := struct {
		LookbackDays int                     `json:"lookback_days"`
		Templates    []schema.TemplateRecord `json:"templates"`
	}{
		LookbackDays: days,
		Templates:    templates,
	}

	jsonData, _ := json.MarshalIndent(response, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
