// Package ziputil packages rendered quiz PDFs into one archive per run.
//
// Archive layout groups documents by question, one folder per configured
// group in config order:
//
//	quiz5pdfs.zip
//	├── question_1/
//	│   ├── q1v1_nf_Alice_Smith.pdf
//	│   └── ...
//	└── question_2/
//	    └── q2v1_nf_Alice_Smith.pdf
package ziputil

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// ErrNoPDFs indicates nothing was found to archive.
var ErrNoPDFs = errors.New("ziputil: no PDF files to archive")

// GroupDir names one question group's PDF directory and its 1-based
// position in the quiz, which determines the question_<N> folder name.
type GroupDir struct {
	Index int
	Path  string
}

// CreateArchive writes a zip at outPath containing every *.pdf under each
// group directory, placed in a question_<index>/ folder. Group directories
// that do not exist or hold no PDFs are skipped. Returns the number of
// files archived.
func CreateArchive(outPath string, groups []GroupDir) (int, error) {
	f, err := os.Create(outPath)
	if err != nil {
		return 0, fmt.Errorf("ziputil: create archive: %w", err)
	}

	w := zip.NewWriter(f)
	count := 0

	fail := func(err error) (int, error) {
		_ = w.Close()
		_ = f.Close()
		_ = os.Remove(outPath)
		return 0, err
	}

	for _, g := range groups {
		pdfs, err := filepath.Glob(filepath.Join(g.Path, "*.pdf"))
		if err != nil {
			return fail(fmt.Errorf("ziputil: scanning %s: %w", g.Path, err))
		}
		sort.Strings(pdfs)

		for _, pdf := range pdfs {
			entry := fmt.Sprintf("question_%d/%s", g.Index, filepath.Base(pdf))
			if err := addFile(w, entry, pdf); err != nil {
				return fail(err)
			}
			count++
		}
	}

	if err := w.Close(); err != nil {
		_ = f.Close()
		_ = os.Remove(outPath)
		return 0, fmt.Errorf("ziputil: finalize archive: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(outPath)
		return 0, fmt.Errorf("ziputil: close archive: %w", err)
	}

	if count == 0 {
		_ = os.Remove(outPath)
		return 0, ErrNoPDFs
	}

	return count, nil
}

// addFile copies one file into the archive under the given entry name.
func addFile(w *zip.Writer, entry, path string) error {
	src, err := os.Open(path) // #nosec G304 -- path comes from a directory scan
	if err != nil {
		return fmt.Errorf("ziputil: open %s: %w", path, err)
	}
	defer src.Close()

	dst, err := w.Create(entry)
	if err != nil {
		return fmt.Errorf("ziputil: add %s: %w", entry, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("ziputil: write %s: %w", entry, err)
	}
	return nil
}
