package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"default", "default"},
		{"my chat/notes", "my-chat-notes"},
		{"a:b*c?d", "a-b-c-d"},
		{"..hidden..", "hidden"},
		{"", "conversation"},
		{"///", "conversation"},
		{strings.Repeat("x", 80), strings.Repeat("x", 50)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := SanitizeFilename(tt.input); got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestGenerateExportPath(t *testing.T) {
	at := time.Date(2025, 3, 1, 9, 30, 15, 0, time.UTC)
	got := GenerateExportPath("/data", "team chat", at)
	want := filepath.Join("/data", "exports", "treechat-team-chat-20250301-093015.json")
	if got != want {
		t.Errorf("GenerateExportPath() = %q, want %q", got, want)
	}
}

func TestExportToJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exports", "out.json")
	export := TranscriptExport{
		Conversation: "default",
		Model:        "llama3.1",
		ExportedAt:   time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		Messages: []StoredMessage{
			{ID: "1", Role: "user", Content: "hello"},
			{ID: "2", Role: "assistant", Content: "hi"},
		},
	}

	if err := ExportToJSON(export, path); err != nil {
		t.Fatalf("ExportToJSON() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("export not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("export permissions = %o, want 600", perm)
	}

	loaded, err := LoadExport(path)
	if err != nil {
		t.Fatalf("LoadExport() error = %v", err)
	}
	if loaded.Conversation != "default" || len(loaded.Messages) != 2 || loaded.Messages[1].Content != "hi" {
		t.Errorf("LoadExport() = %+v", loaded)
	}
}

func TestExportEmptyTranscript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := ExportToJSON(TranscriptExport{Conversation: "c"}, path); err != nil {
		t.Fatalf("ExportToJSON() error = %v", err)
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), `"messages": []`) {
		t.Errorf("empty transcript should export an empty array, got %s", data)
	}
}
