package sequence

import (
	"strings"

	"github.com/zhouzirui/helix/backend/internal/model/sequence"
)

const stepPrefix = "Step"

// ParseSteps extracts "Step <label>: <content>" lines from a completion.
// Only lines whose trimmed form starts with the case-sensitive "Step" are
// considered, the first colon separates label from content, and lines
// without a colon are dropped. The result is never nil.
func ParseSteps(text string) []sequence.Step {
	steps := make([]sequence.Step, 0)
	for _, line := range strings.Split(text, "\n") {
		if !strings.HasPrefix(strings.TrimSpace(line), stepPrefix) {
			continue
		}

		label, content, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}

		steps = append(steps, sequence.Step{
			Step:    strings.TrimSpace(strings.ReplaceAll(label, stepPrefix, "")),
			Content: strings.TrimSpace(content),
		})
	}
	return steps
}
