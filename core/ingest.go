package core

import (
	"fmt"
	"maps"
	"math"
	"strconv"
	"time"

	"github.com/ArnoldoM23/pess/internal/contract"
	"github.com/ArnoldoM23/pess/schema"
)

// requiredFields must be present and non-null in every scoring request.
var requiredFields = []string{
	"session_id", "ticket_id", "task_type", "template_name",
	"template_version", "prompt_hash",
}

// droppedFilesKey carries the count of non-string file entries the ingestor had
// to discard, so the normalizer can account for them in its quality report.
const droppedFilesKey = "ingest_dropped_files"

// promptbuilderFields maps the prompt-building service's camelCase payload keys
// to canonical field names.
var promptbuilderFields = map[string]string{
	"sessionId":       "session_id",
	"ticketId":        "ticket_id",
	"taskType":        "task_type",
	"templateName":    "template_name",
	"templateVersion": "template_version",
	"promptHash":      "prompt_hash",
	"retryCount":      "retry_count",
	"editSimilarity":  "edit_similarity",
	"complexityScore": "complexity_score",
	"perfBefore":      "perf_before",
	"perfAfter":       "perf_after",
	"filesReferenced": "files_referenced",
	"testCoverage":    "test_coverage",
	"generationTime":  "generation_time",
	"executionTime":   "execution_time",
}

// Ingestor accepts structured payloads from the known sources, applies the
// source-specific field mapping, validates required fields, and produces a
// canonical ScoringInput.
type Ingestor struct{}

// NewIngestor returns a ready ingestor.
func NewIngestor() *Ingestor {
	return &Ingestor{}
}

// Ingest maps and validates one raw payload into a ScoringInput.
func (ing *Ingestor) Ingest(source schema.SourceTag, payload map[string]any) (*schema.ScoringInput, error) {
	mapped, err := mapBySource(source, payload)
	if err != nil {
		return nil, err
	}
	if err := validateRequiredFields(mapped); err != nil {
		return nil, err
	}
	if err := validateFieldTypes(mapped); err != nil {
		return nil, err
	}

	in, err := buildScoringInput(mapped)
	if err != nil {
		return nil, err
	}

	if in.Metadata == nil {
		in.Metadata = make(map[string]any)
	}
	in.Metadata["ingestion_source"] = string(source)
	in.Metadata["ingestion_timestamp"] = time.Now().UTC().Format(contract.DateTimeFormat)

	return in, nil
}

// IngestBatch maps and validates payloads independently. It returns one slot
// per payload in both slices: a failed item leaves a nil input and a non-nil
// error at its index, and never blocks the remaining items.
func (ing *Ingestor) IngestBatch(source schema.SourceTag, payloads []map[string]any) ([]*schema.ScoringInput, []error) {
	inputs := make([]*schema.ScoringInput, len(payloads))
	errs := make([]error, len(payloads))
	for i, payload := range payloads {
		inputs[i], errs[i] = ing.Ingest(source, payload)
	}
	return inputs, errs
}

func mapBySource(source schema.SourceTag, payload map[string]any) (map[string]any, error) {
	switch source {
	case schema.PromptBuilderSource:
		return mapPromptBuilderPayload(payload), nil
	case schema.MCPSource:
		return mapMCPPayload(payload), nil
	case schema.VSCodeSource:
		return mapVSCodePayload(payload), nil
	case schema.ManualSource:
		return mapManualPayload(payload), nil
	default:
		return nil, &UnsupportedSourceError{Source: source}
	}
}

func mapPromptBuilderPayload(payload map[string]any) map[string]any {
	mapped := make(map[string]any, len(payload))
	for pbField, canonical := range promptbuilderFields {
		if v, ok := payload[pbField]; ok {
			mapped[canonical] = v
		}
	}
	if meta, ok := payload["metadata"]; ok {
		mapped["metadata"] = meta
	}
	return mapped
}

func mapMCPPayload(payload map[string]any) map[string]any {
	mapped := make(map[string]any)
	request, ok := payload["scoring_request"].(map[string]any)
	if !ok {
		return mapped
	}
	for _, field := range requiredFields {
		if v, ok := request[field]; ok {
			mapped[field] = v
		}
	}
	if metrics, ok := request["metrics"].(map[string]any); ok {
		mapped["retry_count"] = valueOr(metrics, "retry_count", 0)
		mapped["edit_similarity"] = valueOr(metrics, "edit_similarity", 1.0)
		mapped["complexity_score"] = valueOr(metrics, "complexity_score", 0.5)
		mapped["perf_before"] = valueOr(metrics, "perf_before", 0.0)
		mapped["perf_after"] = valueOr(metrics, "perf_after", 0.0)
		mapped["test_coverage"] = valueOr(metrics, "test_coverage", 0.0)
		mapped["generation_time"] = valueOr(metrics, "generation_time", 0.0)
		mapped["execution_time"] = valueOr(metrics, "execution_time", 0.0)
	}
	if files, ok := request["files_referenced"]; ok {
		mapped["files_referenced"] = files
	}
	if meta, ok := request["metadata"]; ok {
		mapped["metadata"] = meta
	}
	return mapped
}

func mapVSCodePayload(payload map[string]any) map[string]any {
	mapped := make(map[string]any)
	data, ok := payload["scoring_data"].(map[string]any)
	if !ok {
		return mapped
	}
	for _, field := range requiredFields {
		if v, ok := data[field]; ok {
			mapped[field] = v
		}
	}
	if metrics, ok := data["metrics"].(map[string]any); ok {
		maps.Copy(mapped, metrics)
	}
	if files, ok := data["files"]; ok {
		mapped["files_referenced"] = files
	}

	meta := make(map[string]any)
	if m, ok := data["metadata"].(map[string]any); ok {
		maps.Copy(meta, m)
	}
	if v, ok := payload["vscode_version"]; ok {
		meta["vscode_version"] = v
	}
	if v, ok := payload["extension_version"]; ok {
		meta["extension_version"] = v
	}
	mapped["metadata"] = meta
	return mapped
}

func mapManualPayload(payload map[string]any) map[string]any {
	// Manual payloads are already in canonical shape.
	mapped := make(map[string]any, len(payload))
	maps.Copy(mapped, payload)
	return mapped
}

func valueOr(m map[string]any, key string, fallback any) any {
	if v, ok := m[key]; ok {
		return v
	}
	return fallback
}

func validateRequiredFields(mapped map[string]any) error {
	var missing []string
	for _, field := range requiredFields {
		if v, ok := mapped[field]; !ok || v == nil {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return &MissingFieldError{Fields: missing}
	}
	return nil
}

var stringFields = []string{"session_id", "ticket_id", "template_name", "template_version", "prompt_hash"}

var numericFields = []string{
	"retry_count", "edit_similarity", "complexity_score",
	"perf_before", "perf_after", "test_coverage",
	"generation_time", "execution_time",
}

func validateFieldTypes(mapped map[string]any) error {
	for _, field := range stringFields {
		if v, ok := mapped[field]; ok {
			if _, isStr := v.(string); !isStr {
				return &TypeValidationError{Field: field, Reason: "must be a string"}
			}
		}
	}
	for _, field := range numericFields {
		if v, ok := mapped[field]; ok {
			if _, err := toFloat(v); err != nil {
				return &TypeValidationError{Field: field, Reason: "must be numeric"}
			}
		}
	}
	if hash, ok := mapped["prompt_hash"].(string); ok && len(hash) != 64 {
		return &TypeValidationError{Field: "prompt_hash", Reason: "must be a 64-character SHA256 hash"}
	}
	return nil
}

// toFloat coerces JSON-decoded numeric shapes into float64.
func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		return strconv.ParseFloat(n, 64)
	default:
		return 0, fmt.Errorf("unsupported numeric type %T", v)
	}
}

func buildScoringInput(mapped map[string]any) (*schema.ScoringInput, error) {
	taskType := schema.TaskType(fmt.Sprintf("%v", mapped["task_type"]))
	if !taskType.IsValid() {
		contract.LogWarn("unknown task type, defaulting to feature", fmt.Errorf("task_type %q", taskType))
		taskType = schema.FeatureTask
	}

	in := &schema.ScoringInput{
		SessionID:       mapped["session_id"].(string),
		TicketID:        mapped["ticket_id"].(string),
		TaskType:        taskType,
		TemplateName:    mapped["template_name"].(string),
		TemplateVersion: mapped["template_version"].(string),
		PromptHash:      mapped["prompt_hash"].(string),
		EditSimilarity:  1.0,
		ComplexityScore: 0.5,
	}

	if v, ok := mapped["retry_count"]; ok {
		f, _ := toFloat(v)
		in.RetryCount = int(math.Round(f))
	}
	numeric := map[string]*float64{
		"edit_similarity":  &in.EditSimilarity,
		"complexity_score": &in.ComplexityScore,
		"perf_before":      &in.PerfBefore,
		"perf_after":       &in.PerfAfter,
		"test_coverage":    &in.TestCoverage,
		"generation_time":  &in.GenerationTime,
		"execution_time":   &in.ExecutionTime,
	}
	for field, dst := range numeric {
		if v, ok := mapped[field]; ok {
			f, _ := toFloat(v)
			*dst = f
		}
	}

	files, dropped := coerceFileList(mapped["files_referenced"])
	in.FilesReferenced = files

	if meta, ok := mapped["metadata"].(map[string]any); ok {
		in.Metadata = make(map[string]any, len(meta))
		maps.Copy(in.Metadata, meta)
	}
	if dropped > 0 {
		if in.Metadata == nil {
			in.Metadata = make(map[string]any)
		}
		in.Metadata[droppedFilesKey] = dropped
	}

	return in, nil
}

// coerceFileList converts a decoded file list into strings, reporting how many
// non-string entries had to be discarded.
func coerceFileList(v any) ([]string, int) {
	switch list := v.(type) {
	case nil:
		return nil, 0
	case []string:
		return list, 0
	case []any:
		files := make([]string, 0, len(list))
		dropped := 0
		for _, item := range list {
			if s, ok := item.(string); ok {
				files = append(files, s)
			} else {
				dropped++
			}
		}
		return files, dropped
	default:
		return nil, 0
	}
}
