package pipeline

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadKeywordsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.txt")
	content := "31100-4A00C\r\n  21010-AX025  \n\n54500-1HM0A\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	keywords, err := ReadKeywordsFile(path)
	if err != nil {
		t.Fatalf("ReadKeywordsFile: %v", err)
	}

	// Lines come back trimmed; blanks survive so the run summary can
	// count them as skipped.
	want := []string{"31100-4A00C", "21010-AX025", "", "54500-1HM0A"}
	if len(keywords) != len(want) {
		t.Fatalf("keywords = %v, want %v", keywords, want)
	}
	for i := range want {
		if keywords[i] != want[i] {
			t.Errorf("keyword %d = %q, want %q", i, keywords[i], want[i])
		}
	}
}

func TestReadKeywordsFile_Missing(t *testing.T) {
	if _, err := ReadKeywordsFile(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
