package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// TranscriptExport is the on-disk shape of an exported conversation
type TranscriptExport struct {
	Conversation string          `json:"conversation"`
	Model        string          `json:"model,omitempty"`
	StartedAt    time.Time       `json:"started_at,omitzero"`
	ExportedAt   time.Time       `json:"exported_at"`
	Messages     []StoredMessage `json:"messages"`
}

// SanitizeFilename replaces characters that are invalid in filenames
func SanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "-", "\\", "-", ":", "-", "*", "-", "?", "-",
		"\"", "-", "<", "-", ">", "-", "|", "-", " ", "-",
		"\n", "-", "\r", "-",
	)
	name = replacer.Replace(name)
	name = strings.Trim(name, "-.")

	if len(name) > 50 {
		name = name[:50]
	}
	if name == "" {
		name = "conversation"
	}
	return name
}

// GenerateExportPath returns a timestamped export file path inside dir
func GenerateExportPath(dir, conversation string, at time.Time) string {
	filename := fmt.Sprintf("treechat-%s-%s.json", SanitizeFilename(conversation), at.Format("20060102-150405"))
	return filepath.Join(dir, "exports", filename)
}

// ExportToJSON writes export to exportPath with user-only permissions
func ExportToJSON(export TranscriptExport, exportPath string) error {
	if export.Messages == nil {
		export.Messages = []StoredMessage{}
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal transcript: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(exportPath), 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Transcripts may contain sensitive data.
	if err := os.WriteFile(exportPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// LoadExport reads an export written by ExportToJSON
func LoadExport(path string) (*TranscriptExport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read export: %w", err)
	}

	var export TranscriptExport
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, fmt.Errorf("failed to parse export: %w", err)
	}
	return &export, nil
}
