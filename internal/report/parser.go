package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/emirpasic/gods/v2/stacks/arraystack"
	"github.com/specialistvlad/quantcost/internal/ctxlog"
	"github.com/specialistvlad/quantcost/internal/module"
)

// Parse reconstructs the module tree from a prepared report section. lines[0]
// must be the root declaration and lines[1] its summary. A nil layout is
// detected from the lines. An empty section yields an empty tree.
//
// Nesting comes from indentation alone. A module is attached to the deepest
// open module at a shallower level, so its depth is always its parent's plus
// one even when the indentation jumps by more than one unit.
func Parse(ctx context.Context, lines []string, layout Layout) (*module.Tree, error) {
	logger := ctxlog.FromContext(ctx)
	if len(lines) == 0 {
		logger.Debug("Empty report section, nothing to parse.")
		return module.NewEmpty(), nil
	}
	if len(lines) < 2 {
		return nil, &MalformedReportError{LineNo: 1, Line: lines[0], Err: malformedf("root declaration has no summary line")}
	}
	if layout == nil {
		layout = DetectLayout(ctx, lines)
	}

	rootName := strings.TrimSpace(lines[0])
	if open := strings.Index(rootName, "("); open >= 0 {
		rootName = rootName[:open]
	}
	rootSummary, err := layout.Summary(ctx, lines[1])
	if err != nil {
		return nil, &MalformedReportError{LineNo: 2, Line: lines[1], Err: err}
	}
	tree := module.New(module.Module{
		Name:   rootName,
		Params: rootSummary.Params,
		MACs:   rootSummary.MACs,
		FLOPs:  rootSummary.FLOPs,
	})

	path := arraystack.New[int]()
	path.Push(tree.Root())
	unit := layout.IndentUnit()

	for i := 2; i < len(lines); i++ {
		line := lines[i]
		name, ok := declaration(line)
		if !ok {
			continue
		}

		declLine := i
		switch {
		case layout.HasSummary(line):
		case i+1 < len(lines) && layout.HasSummary(lines[i+1]) && !isDeclaration(lines[i+1]):
			i++
		default:
			logger.Debug("Skipping declaration without a summary.", "line", i+1, "module", name)
			continue
		}

		s, err := layout.Summary(ctx, lines[i])
		if err != nil {
			return nil, &MalformedReportError{LineNo: i + 1, Line: lines[i], Err: err}
		}

		depth := indentation(lines[declLine]) / unit
		for path.Size() > max(depth, 1) {
			path.Pop()
		}
		parent, _ := path.Peek()
		if want := tree.Node(parent).Depth + 1; want != depth {
			logger.Debug("Indentation disagrees with nesting, using nesting.", "line", declLine+1, "module", name, "indent_depth", depth, "depth", want)
		}

		idx, err := tree.AddChild(parent, module.Module{
			Name:     name,
			Params:   s.Params,
			MACs:     s.MACs,
			FLOPs:    s.FLOPs,
			Bitwidth: s.Bitwidth,
		})
		if err != nil {
			return nil, fmt.Errorf("attaching module %q: %w", name, err)
		}
		path.Push(idx)
	}

	logger.Debug("Parsed module tree.", "layout", layout.Name(), "root", rootName, "modules", tree.Len())
	return tree, nil
}

func isDeclaration(line string) bool {
	_, ok := declaration(line)
	return ok
}
