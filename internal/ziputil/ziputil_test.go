package ziputil_test

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/alnah/go-quiz2pdf/internal/ziputil"
)

func writePDF(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte("%PDF-1.4 fake"), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}

func archiveEntries(t *testing.T, path string) []string {
	t.Helper()
	r, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("opening archive: %v", err)
	}
	defer r.Close()

	var names []string
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names
}

func TestCreateArchive(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	q1 := filepath.Join(dir, "q1_max_flow", "pdf")
	q2 := filepath.Join(dir, "q2_min_cut", "pdf")
	writePDF(t, q1, "q1v1_nf_Alice_Smith.pdf")
	writePDF(t, q1, "q1v2_nf_Bob_Jones.pdf")
	writePDF(t, q2, "q2v1_nf_Alice_Smith.pdf")

	// Non-PDF files are ignored
	if err := os.WriteFile(filepath.Join(q1, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "quiz5pdfs.zip")
	count, err := ziputil.CreateArchive(out, []ziputil.GroupDir{
		{Index: 1, Path: q1},
		{Index: 2, Path: q2},
	})
	if err != nil {
		t.Fatalf("CreateArchive() error = %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}

	want := []string{
		"question_1/q1v1_nf_Alice_Smith.pdf",
		"question_1/q1v2_nf_Bob_Jones.pdf",
		"question_2/q2v1_nf_Alice_Smith.pdf",
	}
	got := archiveEntries(t, out)
	if len(got) != len(want) {
		t.Fatalf("entries = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCreateArchive_SkipsMissingGroupDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	q2 := filepath.Join(dir, "q2", "pdf")
	writePDF(t, q2, "q2v1_nf_Alice_Smith.pdf")

	out := filepath.Join(dir, "out.zip")
	count, err := ziputil.CreateArchive(out, []ziputil.GroupDir{
		{Index: 1, Path: filepath.Join(dir, "missing")},
		{Index: 2, Path: q2},
	})
	if err != nil {
		t.Fatalf("CreateArchive() error = %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}

	got := archiveEntries(t, out)
	if len(got) != 1 || got[0] != "question_2/q2v1_nf_Alice_Smith.pdf" {
		t.Errorf("entries = %v", got)
	}
}

func TestCreateArchive_NoPDFs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := filepath.Join(dir, "out.zip")

	_, err := ziputil.CreateArchive(out, []ziputil.GroupDir{
		{Index: 1, Path: filepath.Join(dir, "empty")},
	})
	if !errors.Is(err, ziputil.ErrNoPDFs) {
		t.Fatalf("CreateArchive() error = %v, want ErrNoPDFs", err)
	}

	// Empty archive must not be left behind
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Errorf("archive %s still exists after ErrNoPDFs", out)
	}
}
