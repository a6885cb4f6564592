package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/hyperjump/solace/internal/cli"
	"github.com/hyperjump/solace/internal/storage"
)

func TestArgsReorder(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "flags after query are moved first",
			args:     []string{"why am I so tired", "-user", "42"},
			expected: []string{"-user", "42", "why am I so tired"},
		},
		{
			name:     "flags first returns unchanged",
			args:     []string{"-user", "42", "why am I so tired"},
			expected: []string{"-user", "42", "why am I so tired"},
		},
		{
			name:     "query only returns unchanged",
			args:     []string{"why am I so tired"},
			expected: []string{"why am I so tired"},
		},
		{
			name:     "empty args returns unchanged",
			args:     []string{},
			expected: []string{},
		},
		{
			name:     "multiple positionals then flags",
			args:     []string{"could", "not", "sleep", "-k", "5", "-user", "7"},
			expected: []string{"-k", "5", "-user", "7", "could", "not", "sleep"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := argsReorder(tt.args)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("argsReorder() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"single word", []string{"tired"}, "tired"},
		{"multiple words", []string{"always", "tired"}, "always tired"},
		{"single quoted phrase", []string{"always tired"}, "always tired"},
		{"vietnamese", []string{"tôi", "mệt", "mỏi"}, "tôi mệt mỏi"},
		{"empty args", []string{}, ""},
		{"blank args", []string{"  ", "  "}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildQuery(tt.args)
			if got != tt.expected {
				t.Errorf("buildQuery(%v) = %q, want %q", tt.args, got, tt.expected)
			}
		})
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "JWT_SECRET", "REDIS_ADDR", "REDIS_PASSWORD", "DATABASE_URL", "SOLACE_PORT"} {
		t.Setenv(k, "")
	}
}

func TestLoadConfig_ExplicitPath(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 4100\nrag:\n  k: 7\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if resolved != path {
		t.Errorf("resolved = %q, want %q", resolved, path)
	}
	if cfg.Server.Port != 4100 || cfg.RAG.K != 7 {
		t.Errorf("port=%d k=%d", cfg.Server.Port, cfg.RAG.K)
	}
}

func TestLoadConfig_DefaultPathPrefersWorkingDirectory(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server:\n  port: 4200\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if filepath.Base(resolved) != "config.yaml" || cfg.Server.Port != 4200 {
		t.Errorf("resolved=%q port=%d", resolved, cfg.Server.Port)
	}
}

func TestLoadConfig_DefaultPathMissingUsesDefaults(t *testing.T) {
	clearEnv(t)
	if _, err := os.Stat(defaultConfigPath); err == nil {
		t.Skip("a system config exists at the default path")
	}
	t.Chdir(t.TempDir())
	t.Setenv("SOLACE_PORT", "4300")

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if resolved != "" {
		t.Errorf("resolved = %q, want empty", resolved)
	}
	if cfg.Server.Port != 4300 {
		t.Errorf("port = %d, want env override 4300", cfg.Server.Port)
	}
}

func TestLoadConfig_MissingExplicitPath(t *testing.T) {
	clearEnv(t)
	if _, _, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteStatus(t *testing.T) {
	usage := int64(2048)
	report := &statusReport{
		Stats:          &storage.Stats{Backend: "sqlite", Fragments: 12, Users: 3},
		Embedding:      "gemini",
		CacheBackend:   "memory",
		DiskUsageBytes: &usage,
	}

	var buf bytes.Buffer
	if err := writeStatus(&buf, report, cli.OutputText); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Fragments:   12", "Users:       3", "Disk usage:  2.0 KiB"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("text output missing %q:\n%s", want, buf.String())
		}
	}

	buf.Reset()
	if err := writeStatus(&buf, report, cli.OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["fragments"] != float64(12) || decoded["cache_backend"] != "memory" || decoded["disk_usage_bytes"] != float64(2048) {
		t.Errorf("json: %v", decoded)
	}
}
