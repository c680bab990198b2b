package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ArnoldoM23/pess/internal/contract"
	"github.com/ArnoldoM23/pess/schema"
)

// Versioner stamps outputs with the pipeline version and a deterministic
// correlation hash, and feeds the append-only history indices.
type Versioner struct {
	mu      sync.Mutex
	major   int
	minor   int
	patch   int
	history contract.HistoryStore
}

// NewVersioner parses an initial "vMAJOR.MINOR.PATCH" version string and binds
// the history store. History may be nil when version analytics are not wanted.
func NewVersioner(version string, history contract.HistoryStore) (*Versioner, error) {
	major, minor, patch, err := parseVersion(version)
	if err != nil {
		return nil, err
	}
	return &Versioner{major: major, minor: minor, patch: patch, history: history}, nil
}

func parseVersion(version string) (int, int, int, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(version), "v")
	parts := strings.Split(trimmed, ".")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid version %q: expected vMAJOR.MINOR.PATCH", version)
	}
	nums := make([]int, 3)
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0, 0, 0, fmt.Errorf("invalid version %q: component %q is not a non-negative integer", version, part)
		}
		nums[i] = n
	}
	return nums[0], nums[1], nums[2], nil
}

// Version returns the current pipeline version string.
func (v *Versioner) Version() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.versionLocked()
}

func (v *Versioner) versionLocked() string {
	return fmt.Sprintf("v%d.%d.%d", v.major, v.minor, v.patch)
}

// Increment bumps the version. Kind must be "major", "minor", or "patch";
// lower components reset to zero on a higher bump.
func (v *Versioner) Increment(kind string) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	switch kind {
	case "major":
		v.major++
		v.minor = 0
		v.patch = 0
	case "minor":
		v.minor++
		v.patch = 0
	case "patch":
		v.patch++
	default:
		return "", fmt.Errorf("invalid increment type %q: must be major, minor, or patch", kind)
	}
	return v.versionLocked(), nil
}

// CorrelationHash derives the 16-character hash binding a version to the exact
// template, version, and prompt that produced a score. It is a pure function:
// identical inputs always yield the same hash.
func CorrelationHash(version, templateName, templateVersion, promptHash string) string {
	content := version + ":" + templateName + ":" + templateVersion + ":" + promptHash
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])[:16]
}

// Version stamps one output with the current version and correlation hash,
// advances its pipeline stage, and appends it to the history indices.
func (v *Versioner) VersionScore(out *schema.ScoringOutput) *schema.ScoringOutput {
	versioned := out.Clone()
	versioned.PipelineStage = schema.VersionStage
	versioned.ScoreVersion = v.Version()
	versioned.TemplateCorrelation.VersionHash = CorrelationHash(
		versioned.ScoreVersion,
		versioned.TemplateCorrelation.TemplateName,
		versioned.TemplateCorrelation.TemplateVersion,
		versioned.TemplateCorrelation.PromptHash,
	)

	if v.history != nil {
		entry := schema.VersionEntry{
			SessionID:    versioned.SessionID,
			TemplateName: versioned.TemplateCorrelation.TemplateName,
			Version:      versioned.ScoreVersion,
			Hash:         versioned.TemplateCorrelation.VersionHash,
			Score:        versioned.Metrics.FinalScore,
			Timestamp:    time.Now().UTC(),
		}
		v.history.AppendSession(entry)
		if entry.TemplateName != "" {
			v.history.AppendTemplate(entry)
		}
	}

	return versioned
}

// VersionBatch versions outputs independently, preserving order.
func (v *Versioner) VersionBatch(outputs []*schema.ScoringOutput) []*schema.ScoringOutput {
	versioned := make([]*schema.ScoringOutput, len(outputs))
	for i, out := range outputs {
		versioned[i] = v.VersionScore(out)
	}
	return versioned
}
