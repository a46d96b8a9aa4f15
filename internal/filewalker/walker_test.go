package filewalker

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestWalkFiltersNonXML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "model.xml", `<?xml version="1.0"?><succession-data-model/>`)
	writeFile(t, dir, "nested/form.xml", `<!DOCTYPE sf-form><sf-form/>`)
	writeFile(t, dir, "notes.txt", "not xml")
	writeFile(t, dir, "binary.xml", "\x00\x01\x02")

	entries, err := Walk(dir)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2: %v", len(entries), entries)
	}
	for _, e := range entries {
		if filepath.Ext(e.Path) != ".xml" {
			t.Errorf("unexpected entry %s", e.Path)
		}
	}
}

func TestWalkSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "model.xml", `<?xml version="1.0"?><corporate-data-model/>`)

	entries, err := Walk(path)
	if err != nil {
		t.Fatalf("Walk(file): %v", err)
	}
	if len(entries) != 1 || entries[0].Path != path {
		t.Fatalf("entries = %v", entries)
	}
}

func TestWalkMissingRoot(t *testing.T) {
	if _, err := Walk(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("expected error for missing root")
	}
}

func TestWalkBOMPrefix(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bom.xml", "\xef\xbb\xbf<?xml version=\"1.0\"?><sf-form/>")

	entries, err := Walk(dir)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("BOM-prefixed file not discovered: %v", entries)
	}
}
