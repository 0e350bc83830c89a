package main

import (
	"errors"
	"os"

	quiz2pdf "github.com/alnah/go-quiz2pdf"
	"github.com/alnah/go-quiz2pdf/internal/canvascsv"
	"github.com/alnah/go-quiz2pdf/internal/config"
)

// Exit codes for quiz2pdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful run
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, quiz2pdf.ErrBrowserConnect) ||
		errors.Is(err, quiz2pdf.ErrPageCreate) ||
		errors.Is(err, quiz2pdf.ErrPageLoad) ||
		errors.Is(err, quiz2pdf.ErrPDFGeneration) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, config.ErrRubricNotFound) ||
		errors.Is(err, canvascsv.ErrEmptyExport) ||
		errors.Is(err, ErrCSVNotFound) ||
		errors.Is(err, ErrWriteOutput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, quiz2pdf.ErrInvalidGroup) ||
		errors.Is(err, quiz2pdf.ErrInvalidLineRange) ||
		errors.Is(err, quiz2pdf.ErrInvalidNumParts) ||
		errors.Is(err, quiz2pdf.ErrInvalidPageBreak) ||
		errors.Is(err, quiz2pdf.ErrDuplicateGroupID) ||
		errors.Is(err, quiz2pdf.ErrDuplicateTag) ||
		errors.Is(err, quiz2pdf.ErrInvalidImageMap) ||
		errors.Is(err, quiz2pdf.ErrMissingColumn) ||
		errors.Is(err, quiz2pdf.ErrNoTaggedCols) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrNoStudentMatch) {
		return ExitUsage
	}

	return ExitGeneral
}
