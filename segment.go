package quiz2pdf

import (
	"fmt"
	"regexp"
	"strings"
)

// Precompiled patterns for exam-class normalization.
var (
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// \question[3] -> numbered question heading carrying the point value
	questionMacro = regexp.MustCompile(`\\question\[(\d+)\]`)

	// \part[2] with trailing whitespace -> part subheading
	partMacro = regexp.MustCompile(`\\part\[(\d+)\]\s*`)

	// \begin{solutionbox}{\stretch{0.4}} with optional trailing \\
	solutionBoxBegin = regexp.MustCompile(`\\begin\{solutionbox\}\{\\stretch\{[\d.]+\}\}(\\\\)?`)
	solutionBoxEnd   = regexp.MustCompile(`\\end\{solutionbox\}`)

	// Whole figure environment containing a tikzpicture. The rubric authors
	// place \centering either before or after the tikzpicture, so match the
	// full figure body lazily.
	tikzFigure = regexp.MustCompile(`(?s)\\begin\{figure\}\[H\].*?\\begin\{tikzpicture\}.*?\\end\{tikzpicture\}.*?\\end\{figure\}`)
)

// ExtractLines returns the inclusive 1-indexed line range [start, end] of src.
func ExtractLines(src string, start, end int) (string, error) {
	if start < 1 || end < start {
		return "", fmt.Errorf("%w: [%d, %d]", ErrInvalidLineRange, start, end)
	}

	lines := strings.Split(crlfOrCR.ReplaceAllString(src, "\n"), "\n")
	if end > len(lines) {
		return "", fmt.Errorf("%w: [%d, %d] but source has %d lines", ErrInvalidLineRange, start, end, len(lines))
	}

	return strings.Join(lines[start-1:end], "\n") + "\n", nil
}

// SegmentRubric extracts the group's line range from the rubric source and
// normalizes exam-class markup into generic sectioning LaTeX that Pandoc
// understands. With an image map configured, TikZ figures are swapped for
// pre-rendered image references before normalization.
func SegmentRubric(src string, group QuestionGroup) (string, error) {
	if strings.TrimSpace(src) == "" {
		return "", ErrEmptyLatex
	}

	section, err := ExtractLines(src, group.LineRange[0], group.LineRange[1])
	if err != nil {
		return "", err
	}

	section = replaceTikzFigures(section, group.ImageMap)
	return normalizeExamLatex(section), nil
}

// normalizeExamLatex converts exam-class environments to article-class
// constructs: question and part list items become starred sectioning
// commands carrying the point value, and solution boxes become labeled
// quote blocks.
func normalizeExamLatex(latex string) string {
	latex = strings.ReplaceAll(latex, `\begin{questions}`, "")
	latex = strings.ReplaceAll(latex, `\end{questions}`, "")
	latex = strings.ReplaceAll(latex, `\begin{parts}`, "")
	latex = strings.ReplaceAll(latex, `\end{parts}`, "")

	latex = questionMacro.ReplaceAllString(latex, `\section*{Question ($1 points)}`)
	latex = partMacro.ReplaceAllString(latex, `\subsection*{Part ($1 points)}`)

	latex = solutionBoxBegin.ReplaceAllString(latex, `\begin{quote}\textbf{Solution:}`)
	latex = solutionBoxEnd.ReplaceAllString(latex, `\end{quote}`)

	return latex
}

// replaceTikzFigures numbers TikZ figure environments in document order and
// replaces the Nth with an \includegraphics figure of the Nth mapped image.
// Figures without a mapping stay verbatim; Pandoc cannot render TikZ source,
// so groups containing TikZ are expected to carry a complete image map.
func replaceTikzFigures(latex string, imageMap map[int]string) string {
	if len(imageMap) == 0 {
		return latex
	}

	figureNum := 0
	return tikzFigure.ReplaceAllStringFunc(latex, func(figure string) string {
		figureNum++
		img, ok := imageMap[figureNum]
		if !ok {
			return figure
		}
		return fmt.Sprintf("\\begin{figure}[H]\n\\centering\n\\includegraphics[width=0.8\\textwidth]{%s}\n\\end{figure}", img)
	})
}
