package quiz2pdf

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// latexMarker locates the textual "LaTeX:" convention Canvas students use
// in free-text answers.
var latexMarker = regexp.MustCompile(`LaTeX:\s*`)

// stopWords terminate a bare LaTeX expression when it runs into English
// prose. Matched case-insensitively after whitespace. A stop word at the
// very end of the input also terminates, so "x^2 in" keeps "in" as prose
// rather than sweeping it into the math run.
var stopWords = regexp.MustCompile(`(?i)^\s+(with|to|from|of|as|which|where|and|the|is|in|that|for|if|on)(\s|$)`)

// SanitizeAnswer normalizes a raw student answer fragment for rendering.
//
// Two passes in fixed order: Canvas equation images become inline-math spans
// first (their alt text would otherwise re-trigger the marker pass), then
// remaining "LaTeX: <expr>" markers are wrapped in \(...\) delimiters. Each
// pass either removes or skips its own trigger, so sanitizing
// already-sanitized content is a no-op.
func SanitizeAnswer(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	cleaned, err := convertEquationImages(raw)
	if err != nil {
		// Rich-text editors produce malformed but parseable HTML; a true
		// parse failure means the fragment is unusable as markup, so fall
		// back to the raw text for the marker pass.
		cleaned = raw
	}

	return convertLatexMarkers(cleaned)
}

// convertEquationImages replaces every Canvas equation image with an inline
// math span built from the image's embedded source expression.
//
// Canvas renders "LaTeX: x^2" in the rich editor as
// <img class="equation_image" data-equation-content="x^2" ...>.
func convertEquationImages(fragment string) (string, error) {
	container, err := parseFragment(fragment)
	if err != nil {
		return "", err
	}

	images := findAll(container, func(n *html.Node) bool {
		return isElement(n, "img") && hasClass(n, "equation_image")
	})

	for _, img := range images {
		expr := getAttr(img, "data-equation-content")
		if expr == "" {
			continue
		}

		span := newElement("span", html.Attribute{Key: "class", Val: "math inline"})
		span.AppendChild(newText(`\(` + expr + `\)`))
		replaceNode(img, span)
	}

	return renderChildren(container)
}

// convertLatexMarkers rewrites "LaTeX: <expr>" occurrences into \(<expr>\).
// The expression is consumed greedily while tracking \left...\right nesting,
// so separators inside balanced delimiters do not terminate it. Markers that
// already sit between \(...\) delimiters are left alone, which keeps a second
// pass over converted content a no-op.
func convertLatexMarkers(content string) string {
	var out strings.Builder
	lastEnd := 0
	math := mathSpans(content)

	for _, loc := range latexMarker.FindAllStringIndex(content, -1) {
		if loc[0] < lastEnd {
			continue // marker text consumed by a previous expression
		}
		if insideSpan(math, loc[0]) {
			continue // already delimited, copied through verbatim
		}

		out.WriteString(content[lastEnd:loc[0]])

		expr, consumed := scanLatexExpression(content[loc[1]:])
		expr = strings.TrimRight(strings.TrimSpace(expr), ",.;:")

		out.WriteString(`\(` + expr + `\)`)
		lastEnd = loc[1] + consumed
	}

	out.WriteString(content[lastEnd:])
	return out.String()
}

// scanLatexExpression consumes a LaTeX expression from the start of text,
// returning the expression and the number of bytes consumed. Termination
// rules, applied only at zero \left/\right depth:
//   - a markup tag start ("<")
//   - whitespace followed by a common English stop word
//   - whitespace immediately after a balancing \right
func scanLatexExpression(text string) (string, int) {
	var expr strings.Builder
	depth := 0
	i := 0

	for i < len(text) {
		if strings.HasPrefix(text[i:], `\left`) {
			expr.WriteString(`\left`)
			depth++
			i += 5
			continue
		}

		if strings.HasPrefix(text[i:], `\right`) {
			expr.WriteString(`\right`)
			depth--
			i += 6
			if depth <= 0 && i < len(text) && isSpace(text[i]) {
				break
			}
			continue
		}

		if depth == 0 {
			if text[i] == '<' {
				break
			}
			if isSpace(text[i]) && stopWords.MatchString(text[i:]) {
				break
			}
		}

		expr.WriteByte(text[i])
		i++
	}

	return expr.String(), i
}

// mathSpans returns the [start,end) byte ranges of \(...\) delimited runs
// already present in content.
func mathSpans(content string) [][2]int {
	var spans [][2]int
	start := 0

	for {
		open := strings.Index(content[start:], `\(`)
		if open < 0 {
			return spans
		}
		open += start

		closing := strings.Index(content[open+2:], `\)`)
		if closing < 0 {
			return spans
		}

		end := open + 2 + closing + 2
		spans = append(spans, [2]int{open, end})
		start = end
	}
}

func insideSpan(spans [][2]int, pos int) bool {
	for _, s := range spans {
		if pos >= s[0] && pos < s[1] {
			return true
		}
	}
	return false
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
