package profiler

import (
	"context"
	"fmt"
	"io"
	"os"
)

// FileProfiler reads a report captured earlier. The shape is ignored.
type FileProfiler struct {
	Path string
}

func (p *FileProfiler) Profile(ctx context.Context, _ []int) (*Capture, error) {
	f, err := os.Open(p.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open report: %w", err)
	}
	defer f.Close()

	lines, err := ReadLines(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.Path, err)
	}
	return newCapture(ctx, p.Path, lines), nil
}

// ReaderProfiler reads a report from a stream such as stdin. It can be used
// once.
type ReaderProfiler struct {
	Name string
	R    io.Reader
}

func (p *ReaderProfiler) Profile(ctx context.Context, _ []int) (*Capture, error) {
	lines, err := ReadLines(p.R)
	if err != nil {
		return nil, err
	}
	name := p.Name
	if name == "" {
		name = "stdin"
	}
	return newCapture(ctx, name, lines), nil
}
