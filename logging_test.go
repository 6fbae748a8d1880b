package buildopts

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-buildopts/pkg/module"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var lines []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("decode log line %q: %v", line, err)
		}
		lines = append(lines, entry)
	}
	return lines
}

func TestZerologLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(zerolog.New(&buf).Level(zerolog.TraceLevel))

	logger.LogResolve(ResolveEvent{ID: "r1", Target: "app:build", Keys: 4, Duration: time.Millisecond})
	logger.LogResolve(ResolveEvent{ID: "r2", Target: "app:serve", Err: errors.New("no such target")})
	logger.LogEvaluation(EvaluatorLogEvent{Engine: "expr", Key: "styles", Expr: "override"})
	logger.LogLoad(module.LoadEvent{Path: "build.options.ts", Loader: "script", Kind: module.ExportWrapped, Cached: true})

	lines := decodeLines(t, &buf)
	if len(lines) != 4 {
		t.Fatalf("expected 4 log lines, got %d", len(lines))
	}

	if lines[0]["level"] != "debug" || lines[0]["resolution"] != "r1" || lines[0]["keys"] != float64(4) {
		t.Fatalf("unexpected resolve entry: %v", lines[0])
	}
	if lines[1]["level"] != "error" || lines[1]["error"] != "no such target" {
		t.Fatalf("unexpected failed resolve entry: %v", lines[1])
	}
	if lines[2]["level"] != "trace" || lines[2]["engine"] != "expr" || lines[2]["key"] != "styles" {
		t.Fatalf("unexpected evaluation entry: %v", lines[2])
	}
	if lines[3]["export"] != "wrapped" || lines[3]["cached"] != true || lines[3]["message"] != "load module" {
		t.Fatalf("unexpected load entry: %v", lines[3])
	}
}

func TestZerologLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(zerolog.New(&buf).Level(zerolog.InfoLevel))

	logger.LogResolve(ResolveEvent{ID: "quiet"})
	logger.LogEvaluation(EvaluatorLogEvent{Engine: "cel", Err: errors.New("bad")})

	lines := decodeLines(t, &buf)
	if len(lines) != 1 || lines[0]["level"] != "warn" {
		t.Fatalf("expected only the warning, got %v", lines)
	}
}
