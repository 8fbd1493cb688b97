package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadLabels_FileNotFound(t *testing.T) {
	labels, err := LoadLabels(t.TempDir())
	if err != nil {
		t.Fatalf("LoadLabels() returned error for missing file: %v", err)
	}
	if labels == nil {
		t.Fatal("LoadLabels() returned nil map")
	}
	if len(labels) != 0 {
		t.Errorf("expected empty labels, got %v", labels)
	}
}

func TestLoadLabels_CommentsAndBlankLinesSkipped(t *testing.T) {
	dir := t.TempDir()
	content := `# display name overrides

# work profile
com.example.mail=Work Mail
`
	if err := os.WriteFile(filepath.Join(dir, LabelsFile), []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	labels, err := LoadLabels(dir)
	if err != nil {
		t.Fatalf("LoadLabels() error: %v", err)
	}
	if len(labels) != 1 {
		t.Errorf("expected 1 label, got %d: %v", len(labels), labels)
	}
	if got := labels["com.example.mail"]; got != "Work Mail" {
		t.Errorf("labels[\"com.example.mail\"] = %q, want %q", got, "Work Mail")
	}
}

func TestLoadLabels_InvalidLinesSkipped(t *testing.T) {
	dir := t.TempDir()
	content := `noequalssign
=Missing Package
com.example.chat=Chat = Messages
com.example bad=Spaces In Id
com.example.empty=
`
	if err := os.WriteFile(filepath.Join(dir, LabelsFile), []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	labels, err := LoadLabels(dir)
	if err != nil {
		t.Fatalf("LoadLabels() error: %v", err)
	}
	if len(labels) != 1 {
		t.Fatalf("expected 1 valid label, got %d: %v", len(labels), labels)
	}
	if got := labels["com.example.chat"]; got != "Chat = Messages" {
		t.Errorf("labels[\"com.example.chat\"] = %q, want %q", got, "Chat = Messages")
	}
}
