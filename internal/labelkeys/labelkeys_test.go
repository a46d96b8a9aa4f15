package labelkeys

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleCSV = `label_key,default,en_US,de_DE
form.title,Review Form,Review Form,Beurteilungsbogen
form.intro,Introduction,Introduction,
`

func readSample(t *testing.T) *Table {
	t.Helper()
	path := filepath.Join(t.TempDir(), "FormLabelKeys.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	table, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	return table
}

func TestReadTable(t *testing.T) {
	table := readSample(t)

	if !table.Has("form.title") || !table.Has("form.intro") {
		t.Fatal("keys missing after read")
	}
	if table.Has("form.absent") {
		t.Error("unexpected key")
	}
	if got := table.Get("form.title", "de_DE"); got != "Beurteilungsbogen" {
		t.Errorf("de_DE value = %q", got)
	}
	if got := table.Get("form.intro", "de_DE"); got != "" {
		t.Errorf("empty cell = %q", got)
	}
	if got := table.Get("form.title", DefaultColumn); got != "Review Form" {
		t.Errorf("default value = %q", got)
	}
	keys := table.Keys()
	if len(keys) != 2 || keys[0] != "form.title" || keys[1] != "form.intro" {
		t.Errorf("key order = %v", keys)
	}
	if table.Dirty() {
		t.Error("fresh table reported dirty")
	}
}

func TestSetMarksDirtyAndCreates(t *testing.T) {
	table := readSample(t)

	table.Set("form.title", "de_DE", "Formular")
	if !table.Dirty() {
		t.Error("Set did not mark table dirty")
	}
	if got := table.Get("form.title", "de_DE"); got != "Formular" {
		t.Errorf("updated value = %q", got)
	}

	// New key and new language column.
	table.Set("form.footer", "fr_FR", "Pied de page")
	if got := table.Get("form.footer", "fr_FR"); got != "Pied de page" {
		t.Errorf("new entry value = %q", got)
	}
	headers := table.Headers()
	if headers[len(headers)-1] != "fr_FR" {
		t.Errorf("headers = %v, want fr_FR appended", headers)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	table := readSample(t)
	table.Set("form.intro", "de_DE", "Einleitung")

	out := filepath.Join(t.TempDir(), "ReadyToImport_FormLabelKeys.csv")
	if err := table.Write(out); err != nil {
		t.Fatalf("Write: %v", err)
	}

	reread, err := Read(out)
	if err != nil {
		t.Fatalf("Read written file: %v", err)
	}
	if got := reread.Get("form.intro", "de_DE"); got != "Einleitung" {
		t.Errorf("value after round trip = %q", got)
	}
	if keys := reread.Keys(); len(keys) != 2 {
		t.Errorf("keys after round trip = %v", keys)
	}
}

func TestNewTable(t *testing.T) {
	table := New([]string{"en_US", "de_DE"})
	headers := table.Headers()
	want := []string{KeyColumn, DefaultColumn, "en_US", "de_DE"}
	if len(headers) != len(want) {
		t.Fatalf("headers = %v", headers)
	}
	for i := range want {
		if headers[i] != want[i] {
			t.Errorf("header[%d] = %q, want %q", i, headers[i], want[i])
		}
	}
}
