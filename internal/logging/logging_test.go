package logging

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{" warn ", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"info", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestInit_EnvFallback(t *testing.T) {
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	t.Setenv(LevelEnv, "error")
	Init("")
	if zerolog.GlobalLevel() != zerolog.ErrorLevel {
		t.Errorf("level = %v, want error from env", zerolog.GlobalLevel())
	}

	Init("debug")
	if zerolog.GlobalLevel() != zerolog.DebugLevel {
		t.Errorf("level = %v, want explicit debug to override env", zerolog.GlobalLevel())
	}
}

func TestStartupLogger_Emit(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	s := NewStartupLogger("media-compress").
		Version("1.2.3").
		Workers(4, 8).
		Path("input", "/photos").
		Feature("overwrite", true).
		Config("quality", "30").
		InitDuration(15 * time.Millisecond)
	s.emit(logger.Info())

	var got struct {
		Message string `json:"message"`
		Run     struct {
			Name    string `json:"name"`
			RunID   string `json:"runId"`
			Version string `json:"version"`
		} `json:"run"`
		Resources struct {
			Workers int `json:"workers"`
			CPUs    int `json:"cpus"`
		} `json:"resources"`
		Paths    map[string]string `json:"paths"`
		Features map[string]bool   `json:"features"`
		Config   map[string]string `json:"config"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("startup event is not JSON: %v\n%s", err, buf.String())
	}

	if got.Message != "Run started" || got.Run.Name != "media-compress" || got.Run.Version != "1.2.3" {
		t.Errorf("unexpected run identity: %+v", got)
	}
	if _, err := uuid.Parse(got.Run.RunID); err != nil || got.Run.RunID != s.RunID() {
		t.Errorf("runId = %q, want %q as a UUID", got.Run.RunID, s.RunID())
	}
	if got.Resources.Workers != 4 || got.Resources.CPUs != 8 {
		t.Errorf("resources = %+v, want 4 workers / 8 cpus", got.Resources)
	}
	if got.Paths["input"] != "/photos" || !got.Features["overwrite"] || got.Config["quality"] != "30" {
		t.Errorf("paths/features/config not recorded: %+v", got)
	}
}

func TestEnvOrDefault(t *testing.T) {
	t.Setenv("MEDIA_COMPRESS_TEST_VALUE", "")
	if got := EnvOrDefault("MEDIA_COMPRESS_TEST_VALUE", "fallback"); got != "fallback" {
		t.Errorf("EnvOrDefault(empty) = %q, want fallback", got)
	}
	t.Setenv("MEDIA_COMPRESS_TEST_VALUE", "set")
	if got := EnvOrDefault("MEDIA_COMPRESS_TEST_VALUE", "fallback"); got != "set" {
		t.Errorf("EnvOrDefault(set) = %q, want set", got)
	}
}
