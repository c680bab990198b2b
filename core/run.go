package core

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ArnoldoM23/pess/internal/contract"
	"github.com/ArnoldoM23/pess/internal/outwriter"
	"github.com/ArnoldoM23/pess/internal/scorestore"
	"github.com/ArnoldoM23/pess/internal/sink"
	"github.com/ArnoldoM23/pess/schema"
)

// newConfiguredPipeline wires a pipeline from the validated config and the
// store manager, with the standard sink set.
func newConfiguredPipeline(cfg *contract.Config, mgr contract.StoreManager) (*Pipeline, error) {
	return NewPipeline(cfg, mgr.GetRecordStore(), scorestore.NewMemoryHistoryStore(), sink.FromConfig(cfg))
}

// readInputBytes reads the payload source. An empty path or "-" means stdin.
func readInputBytes(inputFile string) ([]byte, error) {
	if inputFile == "" || inputFile == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read payload from stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(inputFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read payload file: %w", err)
	}
	return data, nil
}

// readScorePayload reads a single scoring request as one JSON object.
func readScorePayload(inputFile string) (map[string]any, error) {
	data, err := readInputBytes(inputFile)
	if err != nil {
		return nil, err
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("payload must be a JSON object: %w", err)
	}
	return payload, nil
}

// readScorePayloadBatch reads a batch of scoring requests as a JSON array.
func readScorePayloadBatch(inputFile string) ([]map[string]any, error) {
	data, err := readInputBytes(inputFile)
	if err != nil {
		return nil, err
	}
	var payloads []map[string]any
	if err := json.Unmarshal(data, &payloads); err != nil {
		return nil, fmt.Errorf("payloads must be a JSON array of objects: %w", err)
	}
	if len(payloads) == 0 {
		return nil, fmt.Errorf("payloads must contain at least one scoring request")
	}
	return payloads, nil
}

// logScoringHeader prints a concise, 2-line header for each scoring phase.
// Suppressed for machine-readable outputs so pipes stay clean.
func logScoringHeader(cfg *contract.Config, count int) {
	if cfg.Output != schema.TextOut {
		return
	}
	brain, store := "", ""
	if cfg.UseEmojis {
		brain, store = "🧠 ", "📦 "
	}
	fmt.Printf("%spess: Scoring %d session(s) from source %q (Version: %s)\n", brain, count, cfg.Source, cfg.ScoreVersion)
	fmt.Printf("%sStore: %s | Workers: %d\n\n", store, cfg.StoreBackend, cfg.Workers)
}

// ExecuteScoreSession scores a single session payload and prints the result.
// It serves as the main entry point for the 'score' command.
func ExecuteScoreSession(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	payload, err := readScorePayload(cfg.InputFile)
	if err != nil {
		return err
	}
	logScoringHeader(cfg, 1)

	pipeline, err := newConfiguredPipeline(cfg, mgr)
	if err != nil {
		return err
	}

	result := pipeline.Process(ctx, cfg.Source, payload, nil)
	duration := time.Since(start)

	ow := outwriter.NewOutWriter()
	if err := ow.WriteScores([]schema.PipelineResult{*result}, cfg, duration); err != nil {
		return err
	}
	return result.Err
}

// ExecuteScoreBatch scores a batch of session payloads stage by stage and
// prints the results. Per-item failures are reported in the output without
// failing the command.
func ExecuteScoreBatch(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	payloads, err := readScorePayloadBatch(cfg.InputFile)
	if err != nil {
		return err
	}
	logScoringHeader(cfg, len(payloads))

	pipeline, err := newConfiguredPipeline(cfg, mgr)
	if err != nil {
		return err
	}

	results := pipeline.ProcessBatch(ctx, cfg.Source, payloads, nil)
	duration := time.Since(start)

	flattened := make([]schema.PipelineResult, len(results))
	for i, r := range results {
		flattened[i] = *r
	}
	return outwriter.NewOutWriter().WriteScores(flattened, cfg, duration)
}

// ExecuteScoreHealth prints per-stage pipeline health. When an input file is
// given, its batch is scored first so the counters reflect real traffic;
// without one the snapshot shows an idle pipeline.
func ExecuteScoreHealth(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	pipeline, err := newConfiguredPipeline(cfg, mgr)
	if err != nil {
		return err
	}

	if cfg.InputFile != "" {
		payloads, err := readScorePayloadBatch(cfg.InputFile)
		if err != nil {
			return err
		}
		logScoringHeader(cfg, len(payloads))
		pipeline.ProcessBatch(ctx, cfg.Source, payloads, nil)
	}

	return outwriter.NewOutWriter().WriteHealth(pipeline.Health(), cfg)
}

// ExecuteRecentScores lists recently persisted scores from the record store.
func ExecuteRecentScores(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	store := mgr.GetRecordStore()
	if store == nil {
		return fmt.Errorf("no store backend configured")
	}

	scores, err := store.GetRecentScores(ctx, cfg.LookbackDays, cfg.ResultLimit)
	if err != nil {
		return fmt.Errorf("failed to query recent scores: %w", err)
	}
	return outwriter.NewOutWriter().WriteRecent(scores, cfg)
}

// ExecuteTemplateAnalytics prints per-template performance aggregates over the
// configured lookback window, optionally filtered to one template.
func ExecuteTemplateAnalytics(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	store := mgr.GetRecordStore()
	if store == nil {
		return fmt.Errorf("no store backend configured")
	}

	templates, err := store.GetTemplatePerformance(ctx, cfg.LookbackDays)
	if err != nil {
		return fmt.Errorf("failed to query template performance: %w", err)
	}
	if cfg.TemplateFilter != "" {
		filtered := templates[:0]
		for _, tmpl := range templates {
			if tmpl.TemplateName == cfg.TemplateFilter {
				filtered = append(filtered, tmpl)
			}
		}
		templates = filtered
	}
	return outwriter.NewOutWriter().WriteAnalytics(templates, cfg)
}

// ExecuteSessionSummary prints the aggregate record for one session.
func ExecuteSessionSummary(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	store := mgr.GetRecordStore()
	if store == nil {
		return fmt.Errorf("no store backend configured")
	}
	if cfg.SessionFilter == "" {
		return fmt.Errorf("--session is required")
	}

	rec, err := store.GetSessionSummary(ctx, cfg.SessionFilter)
	if err != nil {
		return fmt.Errorf("failed to query session summary: %w", err)
	}
	return outwriter.NewOutWriter().WriteSession(rec, cfg)
}

// ExecuteSubmitFeedback validates and persists one feedback submission.
func ExecuteSubmitFeedback(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, fb *schema.FeedbackData) error {
	store := mgr.GetRecordStore()
	if store == nil {
		return fmt.Errorf("no store backend configured; feedback requires persistence")
	}

	if fb.ScoringID == "" {
		return fmt.Errorf("--scoring-id is required")
	}
	if _, ok := schema.ValidFeedbackTypes[fb.Type]; !ok {
		return fmt.Errorf("unsupported feedback type %q", fb.Type)
	}
	if fb.Rating != nil && (*fb.Rating < 0 || *fb.Rating > 5) {
		return fmt.Errorf("rating must be between 0 and 5")
	}

	if fb.FeedbackID == "" {
		fb.FeedbackID = schema.NewFeedbackID()
	}
	if fb.Timestamp.IsZero() {
		fb.Timestamp = time.Now().UTC()
	}

	if err := store.SaveFeedback(ctx, fb); err != nil {
		return fmt.Errorf("failed to save feedback: %w", err)
	}

	if cfg.Output == schema.JSONOut {
		data, _ := json.MarshalIndent(fb, "", "  ")
		fmt.Println(string(data))
		return nil
	}
	fmt.Printf("Feedback %s recorded for %s.\n", fb.FeedbackID, fb.ScoringID)
	return nil
}
