// Package quiz2pdf converts instructor-authored LaTeX exam rubrics and
// Canvas quiz exports into individually rendered PDF documents, one per
// student per question group.
//
// The pipeline has two halves. The template half turns a line range of a
// LaTeX rubric into one reusable HTML template per question group: the
// rubric is normalized from exam-class markup, converted to HTML with
// Pandoc, and restructured so each question variant lives in an addressable
// container with one answer placeholder per subpart. The binding half takes
// a template and one student's record, keeps only the variant the student
// received, substitutes their sanitized answers into the placeholder slots,
// and renders the result to PDF with headless Chrome.
//
// Basic usage:
//
//	svc := quiz2pdf.New(quiz2pdf.WithTimeout(60 * time.Second))
//	defer svc.Close()
//
//	tpl, err := svc.BuildTemplate(ctx, rubricSource, group)
//	// persist tpl, then per student:
//	doc, err := quiz2pdf.BindAnswers(tpl, record, group)
//	res, err := svc.RenderFile(ctx, htmlPath)
//
// Templates are expensive to build (Pandoc invocation) and cheap to reuse;
// callers are expected to persist them between runs.
package quiz2pdf
