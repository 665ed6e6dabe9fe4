package builder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aymanbagabas/go-udiff"

	"github.com/conn-castle/ota-layer/internal/messages"
)

const (
	// DefaultDiffMaxLines is the default maximum number of diff lines shown.
	DefaultDiffMaxLines = 40
	// diffLineCapFlagName is the CLI flag name used to raise the diff line cap.
	diffLineCapFlagName = "--diff-lines"
)

// ErrScriptDrift reports that the generated install script differs from a reference.
var ErrScriptDrift = errors.New(messages.BuildScriptDrift)

// Drift is the comparison of a generated install script against a reference.
type Drift struct {
	Reference   string
	UnifiedDiff string
	Truncated   bool
}

// Check renders the install script req would produce and compares it with the
// script stored at reference. On a mismatch it returns the drift together with
// an error wrapping ErrScriptDrift.
func Check(sys System, req Request, reference string, maxLines int) (*Drift, error) {
	if sys == nil {
		return nil, errors.New(messages.BuildSystemRequired)
	}
	want, err := sys.ReadFile(reference)
	if err != nil {
		return nil, fmt.Errorf(messages.BuildReadReferenceFmt, reference, err)
	}
	res, err := Render(sys, req)
	if err != nil {
		return nil, err
	}

	expected := normalizeScript(string(want))
	generated := normalizeScript(res.Script.String())
	drift := &Drift{Reference: reference}
	if expected == generated {
		return drift, nil
	}
	drift.UnifiedDiff, drift.Truncated = renderTruncatedUnifiedDiff(reference, "generated", expected, generated, maxLines)
	return drift, fmt.Errorf(messages.BuildScriptDriftFmt, ErrScriptDrift, reference)
}

func normalizeScript(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	return ensureTrailingNewline(strings.TrimRight(content, "\n"))
}

func normalizeDiffMaxLines(value int) int {
	if value <= 0 {
		return DefaultDiffMaxLines
	}
	return value
}

func renderTruncatedUnifiedDiff(fromName string, toName string, fromContent string, toContent string, maxLines int) (string, bool) {
	limit := normalizeDiffMaxLines(maxLines)
	diff := udiff.Unified(fromName, toName, fromContent, toContent)
	lines := splitDiffLines(diff)
	if len(lines) <= limit {
		return ensureTrailingNewline(strings.Join(lines, "\n")), false
	}
	truncated := lines[:limit]
	truncated = append(truncated, fmt.Sprintf(messages.BuildDiffTruncatedFmt, limit, diffLineCapFlagName))
	return ensureTrailingNewline(strings.Join(truncated, "\n")), true
}

func splitDiffLines(content string) []string {
	trimmed := strings.TrimRight(content, "\n")
	if trimmed == "" {
		return []string{}
	}
	return strings.Split(trimmed, "\n")
}

func ensureTrailingNewline(content string) string {
	if content == "" {
		return ""
	}
	if strings.HasSuffix(content, "\n") {
		return content
	}
	return content + "\n"
}
