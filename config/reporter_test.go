package config

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestReport(t *testing.T) *Report {
	t.Helper()
	conf := ReporterConfig{Destination: filepath.Join(t.TempDir(), "report.zip")}
	r, err := conf.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}
	return r
}

func readArchive(t *testing.T, name string) map[string]string {
	t.Helper()
	zr, err := zip.OpenReader(name)
	if err != nil {
		t.Fatalf("unable to open report: %v", err)
	}
	defer zr.Close()

	out := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatal(err)
		}
		out[f.Name] = string(data)
	}
	return out
}

func TestReport_Finalize(t *testing.T) {
	r := newTestReport(t)
	r.SetHeader("run 42")

	src := filepath.Join(t.TempDir(), "input.css")
	if err := os.WriteFile(src, []byte("a{}"), 0644); err != nil {
		t.Fatal(err)
	}

	r.StoreData("sheets/10-before.txt", []byte("ten"))
	r.StoreData("sheets/2-before.txt", []byte("two"))
	r.Store("source.css", src)

	name := r.Name()
	if err := r.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	files := readArchive(t, name)
	if files["sheets/2-before.txt"] != "two" || files["sheets/10-before.txt"] != "ten" {
		t.Errorf("unexpected data entries %v", files)
	}
	if files["source.css"] != "a{}" {
		t.Errorf("unexpected file entry %q", files["source.css"])
	}

	manifest := strings.Split(strings.TrimSpace(files["MANIFEST"]), "\n")
	if len(manifest) != 4 || manifest[0] != "run 42" {
		t.Fatalf("unexpected manifest %q", manifest)
	}
	// natural order puts 2 before 10
	if !strings.Contains(manifest[1], "sheets/2-before.txt") || !strings.Contains(manifest[2], "sheets/10-before.txt") {
		t.Errorf("manifest is not naturally ordered: %q", manifest)
	}
}

func TestReport_StoreCopy(t *testing.T) {
	r := newTestReport(t)

	dir := t.TempDir()
	src := filepath.Join(dir, "out.css")
	if err := os.WriteFile(src, []byte("first"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := r.StoreCopy("out.css", src); err != nil {
		t.Fatalf("StoreCopy() error: %v", err)
	}
	copied := r.entries["out.css"].temp

	// later changes must not affect stored copy
	if err := os.WriteFile(src, []byte("second"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := r.StoreCopy("out.css", src); err != nil {
		t.Fatalf("StoreCopy() error: %v", err)
	}

	name := r.Name()
	if err := r.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	files := readArchive(t, name)
	if files["out.css"] != "first" {
		t.Errorf("unexpected first copy %q", files["out.css"])
	}
	versions := 0
	for k := range files {
		if strings.HasPrefix(k, "out.css-") {
			versions++
		}
	}
	if versions != 1 {
		t.Errorf("expected versioned second copy, got %v", files)
	}
	if _, err := os.Stat(copied); !os.IsNotExist(err) {
		t.Errorf("expected temporary copy to be removed, got %v", err)
	}
}

func TestReport_StoreCopyMissing(t *testing.T) {
	r := newTestReport(t)
	defer r.Close()

	if err := r.StoreCopy("missing", filepath.Join(t.TempDir(), "nope.css")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestReport_StoreConflict(t *testing.T) {
	r := newTestReport(t)
	defer r.Close()

	r.StoreData("diagnostics.txt", []byte("x"))
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate data entry")
		}
	}()
	r.StoreData("diagnostics.txt", []byte("y"))
}

func TestReport_Nil(t *testing.T) {
	var r *Report
	r.Store("a", "b")
	r.StoreData("a", nil)
	r.SetHeader("x")
	if err := r.StoreCopy("a", "b"); err != nil {
		t.Errorf("StoreCopy on nil report should not error, got: %v", err)
	}
	if r.Name() != "" {
		t.Error("expected empty name")
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close on nil report should not error, got: %v", err)
	}
}

func TestReportClose_NilFile(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	if err := r.Close(); err != nil {
		t.Errorf("Close with nil file should not error, got: %v", err)
	}
}

func TestReport_StoreCopyDirectory(t *testing.T) {
	r := newTestReport(t)
	defer r.Close()

	if err := r.StoreCopy("dir", t.TempDir()); err == nil {
		t.Error("expected error for directory")
	}
	if len(r.entries) != 0 {
		t.Errorf("unexpected entries %v", r.entries)
	}
}

func TestReport_MissingStoredFile(t *testing.T) {
	r := newTestReport(t)
	r.Store("final.log", filepath.Join(t.TempDir(), "never-created.log"))
	r.StoreData("note.txt", []byte("x"))

	name := r.Name()
	if err := r.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	files := readArchive(t, name)
	if _, ok := files["final.log"]; ok {
		t.Error("absent file must be skipped")
	}
	if !strings.Contains(files["MANIFEST"], "note.txt\t<data>") {
		t.Errorf("unexpected manifest %q", files["MANIFEST"])
	}
}
