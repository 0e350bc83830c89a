package quiz2pdf

import (
	"context"
	"fmt"
)

// Service orchestrates the rubric-to-template and student-to-PDF pipelines.
type Service struct {
	cfg       serviceConfig
	converter latexConverter
	pdf       pdfConverter
	renderer  pdfRenderer
}

// New creates a Service with default configuration.
// Use options to customize behavior (e.g., WithTimeout).
func New(opts ...Option) *Service {
	s := &Service{
		cfg: serviceConfig{
			timeout:        defaultTimeout,
			mathJaxTimeout: defaultMathJaxTimeout,
		},
		converter: NewPandocConverter(),
	}

	for _, opt := range opts {
		opt(s)
	}

	// Create PDF converter if not injected (e.g., by tests)
	if s.pdf == nil {
		rc := newRodConverter(s.cfg.timeout, s.cfg.mathJaxTimeout)
		s.pdf = rc
		s.renderer = rc.renderer
	}

	return s
}

// BuildTemplate runs the template half of the pipeline for one question
// group: extract and normalize the group's rubric lines, convert to HTML
// through pandoc, regroup into variant containers, and validate the result.
// Templates are expensive to build; callers persist them and reuse across
// runs.
func (s *Service) BuildTemplate(ctx context.Context, rubricSource string, group QuestionGroup) (string, error) {
	if err := group.Validate(); err != nil {
		return "", err
	}

	segment, err := SegmentRubric(rubricSource, group)
	if err != nil {
		return "", fmt.Errorf("segmenting rubric: %w", err)
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	htmlContent, err := s.converter.ToHTML(ctx, segment)
	if err != nil {
		return "", fmt.Errorf("converting to HTML: %w", err)
	}

	tmpl, err := AssembleTemplate(htmlContent, group)
	if err != nil {
		return "", fmt.Errorf("assembling template: %w", err)
	}

	if err := ValidateTemplate(tmpl, group); err != nil {
		return "", err
	}

	return tmpl, nil
}

// BindAndRender binds one student's record into a group template and
// rasterizes the result.
func (s *Service) BindAndRender(ctx context.Context, templateHTML string, rec StudentRecord, group QuestionGroup) (*RenderResult, error) {
	bound, err := BindAnswers(templateHTML, rec, group)
	if err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	result, err := s.pdf.ToPDF(ctx, bound)
	if err != nil {
		return nil, fmt.Errorf("converting to PDF: %w", err)
	}
	return result, nil
}

// RenderFile rasterizes an HTML file already on disk. Prefer this over
// BindAndRender when the document references copied images: relative paths
// resolve against the file's directory.
func (s *Service) RenderFile(ctx context.Context, htmlPath string) (*RenderResult, error) {
	if s.renderer == nil {
		return nil, fmt.Errorf("%w: no file renderer configured", ErrPDFGeneration)
	}
	return s.renderer.RenderFromFile(ctx, htmlPath)
}

// Close releases resources (headless Chrome browser).
func (s *Service) Close() error {
	if s.pdf != nil {
		return s.pdf.Close()
	}
	return nil
}
