package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// TranscriptMessage is one exported tutor turn.
type TranscriptMessage struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Transcript is a tutor conversation as written to disk.
type Transcript struct {
	Title      string              `json:"title"`
	Provider   string              `json:"provider"`
	Model      string              `json:"model"`
	ExportedAt time.Time           `json:"exported_at"`
	Messages   []TranscriptMessage `json:"messages"`
}

// SanitizeFilename removes or replaces characters that are invalid in filenames
func SanitizeFilename(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ', '\n', '\r', '\t', '$', '^', '{', '}':
			return '-'
		}
		return r
	}, name)

	for strings.Contains(name, "--") {
		name = strings.ReplaceAll(name, "--", "-")
	}
	name = strings.Trim(name, "-.")

	if r := []rune(name); len(r) > 50 {
		name = strings.TrimRight(string(r[:50]), "-.")
	}

	if name == "" {
		name = "untitled"
	}
	return name
}

// GenerateExportPath returns ~/Downloads/edusolver-<kind>-<name>-<timestamp><ext>.
func GenerateExportPath(kind, name, ext string) string {
	homeDir := os.Getenv("HOME")
	if homeDir == "" {
		homeDir = os.Getenv("USERPROFILE") // Windows fallback
	}

	filename := fmt.Sprintf("edusolver-%s-%s-%s%s",
		kind, SanitizeFilename(name), time.Now().Format("20060102-150405"), ext)
	return filepath.Join(homeDir, "Downloads", filename)
}

// ExportJSON writes v as indented JSON. Exports may contain homework and
// conversations, so files are user-only.
func ExportJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal export: %w", err)
	}
	return writeExport(path, data)
}

// ExportText writes text as is.
func ExportText(path, text string) error {
	return writeExport(path, []byte(text))
}

func writeExport(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}
