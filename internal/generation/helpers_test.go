package generation_test

import (
	"io"
	"log/slog"
	"testing"
)

func testLogger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// progressRecorder collects milestones reported by a generator.
type progressRecorder struct {
	values []int
}

func (p *progressRecorder) record(v int) {
	p.values = append(p.values, v)
}
