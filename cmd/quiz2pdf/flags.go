package main

import (
	"os"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	quiet   bool
	verbose bool
}

// dirFlags holds directory layout overrides.
type dirFlags struct {
	configDir    string
	rubricsDir   string
	templatesDir string
	outputDir    string
}

// runFlags holds flags for the run command.
type runFlags struct {
	quiz       int
	csv        string
	limit      int
	student    string
	noZip      bool
	regenerate bool
	htmlOnly   bool
	workers    int
	timeout    string
	common     commonFlags
	dirs       dirFlags
}

// zipFlags holds flags for the zip command.
type zipFlags struct {
	quiz   int
	output string
	common commonFlags
	dirs   dirFlags
}

// addCommonFlags adds shared flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "errors only")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "debug logging")
}

// addDirFlags adds directory override flags to a FlagSet.
func addDirFlags(fs *flag.FlagSet, f *dirFlags) {
	fs.StringVar(&f.configDir, "config-dir", "configs", "quiz config directory")
	fs.StringVar(&f.rubricsDir, "rubrics-dir", "rubrics", "LaTeX rubric directory")
	fs.StringVar(&f.templatesDir, "templates-dir", "templates", "generated template directory")
	fs.StringVar(&f.outputDir, "output-dir", "output", "output root directory")
}

// parseRunFlags parses run command flags.
func parseRunFlags(args []string) (*runFlags, error) {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	f := &runFlags{}

	fs.IntVar(&f.quiz, "quiz", 0, "quiz number (required)")
	fs.StringVar(&f.csv, "csv", "", "path to Canvas CSV export (required)")
	fs.IntVar(&f.limit, "limit", 0, "limit number of students (0 = all)")
	fs.StringVar(&f.student, "student", "", "single student by name (case-insensitive substring)")
	fs.BoolVar(&f.noZip, "no-zip", false, "skip archive creation")
	fs.BoolVar(&f.regenerate, "regenerate", false, "force template regeneration from rubric")
	fs.BoolVar(&f.htmlOnly, "html-only", false, "write bound HTML only, skip PDF rendering")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel render workers (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-document render timeout (e.g., 30s, 2m)")

	addCommonFlags(fs, &f.common)
	addDirFlags(fs, &f.dirs)

	fs.Usage = func() { printRunUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}

// parseZipFlags parses zip command flags.
func parseZipFlags(args []string) (*zipFlags, error) {
	fs := flag.NewFlagSet("zip", flag.ContinueOnError)
	f := &zipFlags{}

	fs.IntVar(&f.quiz, "quiz", 0, "quiz number (required)")
	fs.StringVarP(&f.output, "output", "o", "", "archive filename (default quiz<N>pdfs.zip)")

	addCommonFlags(fs, &f.common)
	addDirFlags(fs, &f.dirs)

	fs.Usage = func() { printZipUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}
