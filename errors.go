package quiz2pdf

import "errors"

// Sentinel errors for library operations.
var (
	ErrEmptyLatex       = errors.New("latex content cannot be empty")
	ErrPandocConversion = errors.New("pandoc conversion failed")
	ErrPDFGeneration    = errors.New("PDF generation failed")
	ErrBrowserConnect   = errors.New("failed to connect to browser")
	ErrPageCreate       = errors.New("failed to create browser page")
	ErrPageLoad         = errors.New("failed to load page")
	ErrBannerRender     = errors.New("student banner rendering failed")

	// Config validation errors.
	ErrInvalidGroup     = errors.New("invalid question group config")
	ErrInvalidLineRange = errors.New("invalid latex line range")
	ErrInvalidNumParts  = errors.New("invalid number of parts")
	ErrInvalidPageBreak = errors.New("invalid page break policy")
	ErrDuplicateGroupID = errors.New("duplicate question group id")
	ErrDuplicateTag     = errors.New("duplicate variant tag")
	ErrInvalidImageMap  = errors.New("image map references unknown variant")

	// Export parsing errors.
	ErrMissingColumn = errors.New("export is missing a required column")
	ErrNoTaggedCols  = errors.New("no tagged columns found for group")

	// Template errors.
	ErrTemplateInvalid       = errors.New("template structure is invalid")
	ErrVariantNotFound       = errors.New("variant container not found in template")
	ErrPlaceholderUnresolved = errors.New("answer placeholder not resolved")
	ErrHTMLParse             = errors.New("failed to parse HTML")
)
