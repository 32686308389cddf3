package curves

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// captureLogs routes records at level and above into a buffer for the
// duration of the test.
func captureLogs(t *testing.T, level slog.Level) *bytes.Buffer {
	t.Helper()
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: level})))
	return &buf
}

func TestLoggerSilentByDefault(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })
	SetLogger(nil)

	l := Logger()
	if l == nil {
		t.Fatal("Logger() returned nil")
	}
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if l.Enabled(context.Background(), level) {
			t.Errorf("silent logger enabled for %v", level)
		}
	}
}

func TestSetLogger(t *testing.T) {
	buf := captureLogs(t, slog.LevelInfo)

	Logger().Info("hello", "curves", 3)
	if !strings.Contains(buf.String(), "curves=3") {
		t.Errorf("record not captured, got: %s", buf.String())
	}
}

func TestEvaluationLogsAtDebug(t *testing.T) {
	buf := captureLogs(t, slog.LevelDebug)

	c := NewWithCounts([]int{3})
	c.FillCurveTypes(Poly)
	_ = c.EvaluatedPositions()

	if !strings.Contains(buf.String(), "evaluated positions") {
		t.Errorf("expected a debug record for position evaluation, got: %s", buf.String())
	}
}

func TestInvalidNURBSLogsWarning(t *testing.T) {
	buf := captureLogs(t, slog.LevelWarn)

	c := NewWithCounts([]int{2})
	c.FillCurveTypes(NURBS)
	if got := c.EvaluatedPointsSize(); got != 1 {
		t.Fatalf("EvaluatedPointsSize() = %d, want 1", got)
	}

	out := buf.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "invalid=1") {
		t.Errorf("expected a warning for the invalid curve, got: %s", out)
	}
	if strings.Contains(out, "level=DEBUG") {
		t.Errorf("debug records leaked past the handler level: %s", out)
	}
}

func TestLoggerConcurrentAccess(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			Logger().Debug("concurrent read")
		}()
		go func() {
			defer wg.Done()
			SetLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
			SetLogger(nil)
		}()
	}
	wg.Wait()
}

func BenchmarkLoggerDisabled(b *testing.B) {
	l := silent
	b.ReportAllocs()
	for b.Loop() {
		l.Debug("curves: evaluated positions", "curves", 1, "evaluated", 12)
	}
}
