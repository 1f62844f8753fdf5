package profiler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/specialistvlad/quantcost/internal/ctxlog"
)

// ShapePlaceholder in a command argument is replaced by the formatted shape.
const ShapePlaceholder = "{input_shape}"

// ShapeEnv is set to the formatted shape in the profiler's environment.
const ShapeEnv = "QUANTCOST_INPUT_SHAPE"

// CommandProfiler runs an external program that prints the report on stdout.
type CommandProfiler struct {
	// Command is the program and its arguments.
	Command []string
	// Dir is the working directory. Empty means the current one.
	Dir string
	// Env is appended to the inherited environment.
	Env []string
}

func (p *CommandProfiler) Profile(ctx context.Context, shape []int) (*Capture, error) {
	if len(p.Command) == 0 {
		return nil, errors.New("profiler command is empty")
	}
	logger := ctxlog.FromContext(ctx)

	formatted := FormatShape(shape)
	args := make([]string, 0, len(p.Command)-1)
	for _, a := range p.Command[1:] {
		args = append(args, strings.ReplaceAll(a, ShapePlaceholder, formatted))
	}

	cmd := exec.CommandContext(ctx, p.Command[0], args...)
	cmd.Dir = p.Dir
	cmd.Env = append(append(os.Environ(), p.Env...), ShapeEnv+"="+formatted)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Debug("Running profiler.", "command", p.Command[0], "args", args, "input_shape", formatted)
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("profiler %q failed: %w (stderr: %s)", p.Command[0], err, strings.TrimSpace(stderr.String()))
	}
	if stderr.Len() > 0 {
		logger.Debug("Profiler wrote to stderr.", "stderr", strings.TrimSpace(stderr.String()))
	}

	lines, err := ReadLines(&stdout)
	if err != nil {
		return nil, err
	}
	return newCapture(ctx, strings.Join(p.Command, " "), lines), nil
}
