package validate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRange(t *testing.T) {
	if err := Range(0.5, -1, 1, "value"); err != nil {
		t.Errorf("expected 0.5 in [-1,1], got %v", err)
	}
	// Boundaries are inclusive
	if err := Range(-1, -1, 1, "value"); err != nil {
		t.Errorf("expected lower bound to pass, got %v", err)
	}
	if err := Range(1, -1, 1, "value"); err != nil {
		t.Errorf("expected upper bound to pass, got %v", err)
	}
	err := Range(1.5, -1, 1, "value")
	if err == nil {
		t.Fatal("expected error for out-of-range value")
	}
	var vErr *Error
	if !strings.Contains(err.Error(), "value") {
		t.Errorf("error should name the parameter, got %q", err.Error())
	}
	if e, ok := err.(*Error); ok {
		vErr = e
	} else {
		t.Fatalf("expected *Error, got %T", err)
	}
	if vErr.Param != "value" {
		t.Errorf("Param = %q, want %q", vErr.Param, "value")
	}
}

func TestChoice_CanonicalCase(t *testing.T) {
	got, err := Choice("auto", []string{"Auto", "On", "Off"}, "mode")
	if err != nil {
		t.Fatalf("Choice failed: %v", err)
	}
	if got != "Auto" {
		t.Errorf("Choice = %q, want canonical %q", got, "Auto")
	}

	if _, err := Choice("sometimes", []string{"Auto", "On", "Off"}, "mode"); err == nil {
		t.Error("expected error for value outside choices")
	}
}

func TestChoice_ErrorListsChoices(t *testing.T) {
	_, err := Choice("x", []string{"Auto", "On"}, "mode")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "Auto, On") {
		t.Errorf("error should list the choices, got %q", err.Error())
	}
}

func TestNonEmpty(t *testing.T) {
	if err := NonEmpty("x", "name"); err != nil {
		t.Errorf("expected non-empty to pass, got %v", err)
	}
	if err := NonEmpty("", "name"); err == nil {
		t.Error("expected error for empty string")
	}
	if err := NonEmpty("   ", "name"); err == nil {
		t.Error("expected error for whitespace-only string")
	}
}

func TestPositiveInt(t *testing.T) {
	if err := PositiveInt(1, "frame"); err != nil {
		t.Errorf("expected 1 to pass, got %v", err)
	}
	if err := PositiveInt(0, "frame"); err == nil {
		t.Error("expected error for zero")
	}
	if err := PositiveInt(-3, "frame"); err == nil {
		t.Error("expected error for negative")
	}
}

func TestFilePath(t *testing.T) {
	tmp := t.TempDir()
	file := filepath.Join(tmp, "clip.mov")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := FilePath(file, true, "file_path"); err != nil {
		t.Errorf("expected existing file to pass, got %v", err)
	}
	if err := FilePath(filepath.Join(tmp, "missing.mov"), true, "file_path"); err == nil {
		t.Error("expected error for missing file")
	}
	if err := FilePath(tmp, true, "file_path"); err == nil {
		t.Error("expected error for directory passed as file")
	}
	// Existence is not checked when mustExist is false
	if err := FilePath(filepath.Join(tmp, "future.mov"), false, "file_path"); err != nil {
		t.Errorf("expected non-existing path to pass without mustExist, got %v", err)
	}
}

func TestDirPath(t *testing.T) {
	tmp := t.TempDir()
	if err := DirPath(tmp, true, "target_dir"); err != nil {
		t.Errorf("expected existing dir to pass, got %v", err)
	}
	file := filepath.Join(tmp, "f")
	os.WriteFile(file, []byte("x"), 0644)
	if err := DirPath(file, true, "target_dir"); err == nil {
		t.Error("expected error for file passed as directory")
	}
}

func TestExtension(t *testing.T) {
	if err := Extension("/tmp/mix.wav", []string{"wav", "aiff"}, "output_path"); err != nil {
		t.Errorf("expected .wav to pass, got %v", err)
	}
	// Leading dot and case are both normalized
	if err := Extension("/tmp/mix.WAV", []string{".wav"}, "output_path"); err != nil {
		t.Errorf("expected case-insensitive match, got %v", err)
	}
	if err := Extension("/tmp/mix.mp3", []string{"wav"}, "output_path"); err == nil {
		t.Error("expected error for disallowed extension")
	}
}
