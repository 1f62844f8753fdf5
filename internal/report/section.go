package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/quantcost/internal/ctxlog"
)

// Section is the part of a captured report that describes the model.
type Section struct {
	// Lines start at the root declaration. Empty when Found is false.
	Lines []string
	// Start is the index of the root declaration in the filtered capture.
	Start int
	Found bool
}

// Prepare drops profiler warnings from the captured lines and returns the
// model listing. The listing starts at the first line containing modelName,
// or at the first "<Name>(" line when modelName is empty.
//
// A missing listing is not an error: it is logged and an empty Section is
// returned, so the estimate degrades to a zero cost.
func Prepare(ctx context.Context, lines []string, modelName string) Section {
	logger := ctxlog.FromContext(ctx)

	filtered := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "Warning") {
			continue
		}
		filtered = append(filtered, line)
	}
	if dropped := len(lines) - len(filtered); dropped > 0 {
		logger.Debug("Dropped profiler warnings.", "count", dropped)
	}

	for i, line := range filtered {
		if modelName != "" {
			if strings.Contains(line, modelName) {
				return Section{Lines: filtered[i:], Start: i, Found: true}
			}
			continue
		}
		if _, ok := RootName(line); ok {
			return Section{Lines: filtered[i:], Start: i, Found: true}
		}
	}

	logger.Warn("Model listing not found, treating report as empty.",
		"error", fmt.Errorf("%w: %q", ErrModelSectionNotFound, modelName))
	return Section{}
}
