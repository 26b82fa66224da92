package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}
}

func TestLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithWriter(&buf, true); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	Get().Info(context.Background(), "ranked", String("user", "u-1"), Int("count", 3), Duration("took", time.Second))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("expected a JSON record, got %q: %v", buf.String(), err)
	}
	if rec["msg"] != "ranked" {
		t.Errorf("msg = %v, want ranked", rec["msg"])
	}
	if rec["user"] != "u-1" {
		t.Errorf("user = %v, want u-1", rec["user"])
	}
	if _, ok := rec["source"]; !ok {
		t.Error("expected a source attribute")
	}
}

func TestLoggerWithAndNamed(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithWriter(&buf, false); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	l := Named("ranking").With(String("user", "u-9"))
	l.Warn(context.Background(), "persist failed", Bool("fatal", false))

	out := buf.String()
	for _, want := range []string{"persist failed", "ranking.user=u-9", "ranking.fatal=false"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithWriter(&buf, false); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	if err := SetLevelString("warn"); err != nil {
		t.Fatalf("SetLevelString: %v", err)
	}
	defer func() { _ = SetLevelString("info") }()

	Get().Info(context.Background(), "hidden")
	Get().Debug(context.Background(), "hidden too")
	if buf.Len() != 0 {
		t.Errorf("expected no output below warn, got %q", buf.String())
	}

	if err := SetLevelString("verbose"); err == nil {
		t.Error("expected an error for an unknown level")
	}
}

func TestNopDiscards(t *testing.T) {
	l := Nop()
	l.Error(context.Background(), "nothing happens", String("k", "v"))
	if l.Named("x").With(Int("n", 1)) == nil {
		t.Fatal("Nop derived loggers must not be nil")
	}
}
