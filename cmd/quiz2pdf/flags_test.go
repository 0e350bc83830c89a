package main

import "testing"

func TestParseRunFlags(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		f, err := parseRunFlags([]string{"--quiz", "5", "--csv", "Quiz 5.csv"})
		if err != nil {
			t.Fatalf("parseRunFlags() error = %v", err)
		}
		if f.quiz != 5 || f.csv != "Quiz 5.csv" {
			t.Errorf("quiz/csv = %d/%q", f.quiz, f.csv)
		}
		if f.dirs.configDir != "configs" || f.dirs.outputDir != "output" {
			t.Errorf("directory defaults = %+v", f.dirs)
		}
		if f.limit != 0 || f.workers != 0 || f.noZip || f.regenerate || f.htmlOnly {
			t.Errorf("unexpected non-default values: %+v", f)
		}
	})

	t.Run("all flags", func(t *testing.T) {
		t.Parallel()

		f, err := parseRunFlags([]string{
			"--quiz", "3",
			"--csv", "export.csv",
			"--limit", "5",
			"--student", "rivera",
			"--no-zip",
			"--regenerate",
			"--html-only",
			"-w", "2",
			"-t", "30s",
			"-q",
			"--output-dir", "/tmp/out",
		})
		if err != nil {
			t.Fatalf("parseRunFlags() error = %v", err)
		}
		if f.limit != 5 || f.student != "rivera" || !f.noZip || !f.regenerate || !f.htmlOnly {
			t.Errorf("selection/output flags = %+v", f)
		}
		if f.workers != 2 || f.timeout != "30s" {
			t.Errorf("rendering flags = %d/%q", f.workers, f.timeout)
		}
		if !f.common.quiet || f.common.verbose {
			t.Errorf("logging flags = %+v", f.common)
		}
		if f.dirs.outputDir != "/tmp/out" {
			t.Errorf("outputDir = %q", f.dirs.outputDir)
		}
	})

	t.Run("unknown flag", func(t *testing.T) {
		t.Parallel()

		if _, err := parseRunFlags([]string{"--frobnicate"}); err == nil {
			t.Error("parseRunFlags() accepted unknown flag")
		}
	})
}

func TestParseZipFlags(t *testing.T) {
	t.Parallel()

	f, err := parseZipFlags([]string{"--quiz", "4", "-o", "archive.zip"})
	if err != nil {
		t.Fatalf("parseZipFlags() error = %v", err)
	}
	if f.quiz != 4 || f.output != "archive.zip" {
		t.Errorf("quiz/output = %d/%q", f.quiz, f.output)
	}
	if f.dirs.configDir != "configs" {
		t.Errorf("configDir = %q", f.dirs.configDir)
	}
}
