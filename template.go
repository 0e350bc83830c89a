package quiz2pdf

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Heading text patterns emitted by the segmenter's sectioning macros.
// Pandoc may fold heading text across lines, so "." matches newlines.
var (
	questionHeading = regexp.MustCompile(`(?s)Question.*points`)
	partHeading     = regexp.MustCompile(`(?s)Part.*points`)
)

// Placeholder format: {{PART_A}} .. {{PART_F}}. The doubled braces never
// occur in Pandoc output for exam-class input, so textual substitution
// cannot collide with rubric content.
func placeholderFor(letter string) string {
	return "{{PART_" + strings.ToUpper(letter) + "}}"
}

// noAnswerMarker replaces the placeholder when a subpart has no usable answer.
const noAnswerMarker = "<p><em>(No answer provided)</em></p>"

// AssembleTemplate restructures Pandoc's HTML for one question group into an
// addressable template: every "Question (N points)" heading starts a variant
// container indexed by document order, and every part inside a container
// gets a labeled placeholder slot inserted after its reference solution.
//
// The body is rebuilt by regrouping detached nodes rather than moving nodes
// inside a live tree, so traversal never observes its own mutations.
func AssembleTemplate(pandocHTML string, group QuestionGroup) (string, error) {
	doc, err := parseDocument(pandocHTML)
	if err != nil {
		return "", err
	}

	body := findFirst(doc, func(n *html.Node) bool { return isElement(n, "body") })
	if body == nil {
		return "", fmt.Errorf("%w: no <body> in converted HTML", ErrTemplateInvalid)
	}

	variants := regroupVariants(body, group.ID)
	if len(variants) != group.NumVersions {
		return "", fmt.Errorf("%w: group %q: found %d question headings, config expects %d",
			ErrTemplateInvalid, group.ID, len(variants), group.NumVersions)
	}

	for _, container := range variants {
		labelParts(container, group)
	}

	rewriteImagePaths(doc)
	attachHead(doc, group)

	return renderNode(doc)
}

// regroupVariants detaches the body's children and regroups them into one
// container per question heading. Content before the first heading is kept
// as-is. The container's position in document order is its variant index.
func regroupVariants(body *html.Node, groupID string) []*html.Node {
	children := detachChildren(body)

	var variants []*html.Node
	var current *html.Node

	for _, child := range children {
		if isElement(child, "h1") && questionHeading.MatchString(textContent(child)) {
			current = newElement("div",
				html.Attribute{Key: "class", Val: "question-variant"},
				html.Attribute{Key: "data-group", Val: groupID},
				html.Attribute{Key: "data-variant", Val: strconv.Itoa(len(variants) + 1)},
			)
			variants = append(variants, current)
			body.AppendChild(current)
		}

		if current != nil {
			current.AppendChild(child)
		} else {
			body.AppendChild(child)
		}
	}

	return variants
}

// labelParts relabels part headings with their subpart letter, applies the
// page break policy, and inserts one placeholder slot after each part's
// reference solution block. Parts beyond the configured count are ignored.
func labelParts(container *html.Node, group QuestionGroup) {
	parts := findAll(container, func(n *html.Node) bool {
		return isElement(n, "h2") && partHeading.MatchString(textContent(n))
	})

	for i, heading := range parts {
		if i >= group.NumParts {
			break
		}
		letter := SubpartLetter(i)

		relabelPartHeading(heading, letter)

		if group.PageBreak == PageBreakEachPart {
			addClass(heading, "page-break")
		}

		solution := nextBlockquote(container, heading)
		slot := buildAnswerSlot(letter)
		if solution != nil {
			insertAfter(solution, slot)
		} else {
			// No solution block survived conversion; anchor the slot to the
			// heading so the placeholder invariant still holds.
			insertAfter(heading, slot)
		}
	}
}

// relabelPartHeading rewrites "Part (3 points)" to "Part A (3 points)".
func relabelPartHeading(heading *html.Node, letter string) {
	text := strings.Join(strings.Fields(textContent(heading)), " ")
	if rest, ok := strings.CutPrefix(text, "Part"); ok {
		text = "Part " + strings.ToUpper(letter) + rest
	}

	detachChildren(heading)
	heading.AppendChild(newText(text))
}

// nextBlockquote returns the first blockquote after ref in container's
// document order, or nil.
func nextBlockquote(container, ref *html.Node) *html.Node {
	seen := false
	return findFirst(container, func(n *html.Node) bool {
		if n == ref {
			seen = true
			return false
		}
		return seen && isElement(n, "blockquote")
	})
}

// buildAnswerSlot creates the student-answer section with its placeholder.
func buildAnswerSlot(letter string) *html.Node {
	slot := newElement("div",
		html.Attribute{Key: "class", Val: "student-answer"},
		html.Attribute{Key: "data-part", Val: letter},
	)

	heading := newElement("h3")
	heading.AppendChild(newText("Student Answer (Part " + strings.ToUpper(letter) + "):"))
	slot.AppendChild(heading)

	placeholder := newElement("div", html.Attribute{Key: "class", Val: "answer-placeholder"})
	placeholder.AppendChild(newText(placeholderFor(letter)))
	slot.AppendChild(placeholder)

	return slot
}

// rewriteImagePaths points bare image references into the images/
// subdirectory next to the persisted template.
func rewriteImagePaths(doc *html.Node) {
	for _, img := range findAll(doc, func(n *html.Node) bool { return isElement(n, "img") }) {
		src := getAttr(img, "src")
		if src == "" ||
			strings.HasPrefix(src, "http://") ||
			strings.HasPrefix(src, "https://") ||
			strings.HasPrefix(src, "data:") ||
			strings.HasPrefix(src, "images/") ||
			strings.HasPrefix(src, "/") {
			continue
		}
		setAttr(img, "src", "images/"+src)
		addClass(img, "rubric-image")
	}
}

// attachHead injects the template stylesheet and the MathJax loader into
// <head>. Presentation is a property of the template, not of any one
// student's document.
func attachHead(doc *html.Node, group QuestionGroup) {
	head := findFirst(doc, func(n *html.Node) bool { return isElement(n, "head") })
	if head == nil {
		return
	}

	style := newElement("style")
	style.AppendChild(newText(buildTemplateCSS(group)))
	head.AppendChild(style)

	if !hasMathJaxScript(doc) {
		script := newElement("script",
			html.Attribute{Key: "id", Val: "MathJax-script"},
			html.Attribute{Key: "async", Val: ""},
			html.Attribute{Key: "src", Val: mathJaxScriptURL},
		)
		head.AppendChild(script)
	}
}

// hasMathJaxScript reports whether the document already loads MathJax.
// Pandoc only emits the loader when the source contains math.
func hasMathJaxScript(doc *html.Node) bool {
	return findFirst(doc, func(n *html.Node) bool {
		return isElement(n, "script") && strings.Contains(getAttr(n, "src"), "mathjax")
	}) != nil
}

// ValidateTemplate checks the template invariants for a group: exactly
// NumVersions variant containers with contiguous 1-based indices, each
// holding one placeholder per configured subpart.
func ValidateTemplate(templateHTML string, group QuestionGroup) error {
	doc, err := parseDocument(templateHTML)
	if err != nil {
		return err
	}

	containers := findAll(doc, func(n *html.Node) bool {
		return isElement(n, "div") && hasClass(n, "question-variant") && getAttr(n, "data-group") == group.ID
	})
	if len(containers) != group.NumVersions {
		return fmt.Errorf("%w: group %q: %d variant containers, want %d",
			ErrTemplateInvalid, group.ID, len(containers), group.NumVersions)
	}

	var indices []int
	for _, c := range containers {
		idx, err := strconv.Atoi(getAttr(c, "data-variant"))
		if err != nil {
			return fmt.Errorf("%w: group %q: bad variant index %q", ErrTemplateInvalid, group.ID, getAttr(c, "data-variant"))
		}
		indices = append(indices, idx)

		if err := validateSlots(c, group); err != nil {
			return err
		}
	}

	sort.Ints(indices)
	for i, idx := range indices {
		if idx != i+1 {
			return fmt.Errorf("%w: group %q: variant indices %v are not contiguous from 1", ErrTemplateInvalid, group.ID, indices)
		}
	}

	return nil
}

// validateSlots checks one container holds exactly one placeholder per
// configured subpart and nothing else.
func validateSlots(container *html.Node, group QuestionGroup) error {
	text := textContent(container)
	idx := getAttr(container, "data-variant")

	for i := 0; i < group.NumParts; i++ {
		placeholder := placeholderFor(SubpartLetter(i))
		if n := strings.Count(text, placeholder); n != 1 {
			return fmt.Errorf("%w: group %q variant %s: %d occurrences of %s, want 1",
				ErrTemplateInvalid, group.ID, idx, n, placeholder)
		}
	}

	for i := group.NumParts; i < MaxParts; i++ {
		placeholder := placeholderFor(SubpartLetter(i))
		if strings.Contains(text, placeholder) {
			return fmt.Errorf("%w: group %q variant %s: unexpected slot %s",
				ErrTemplateInvalid, group.ID, idx, placeholder)
		}
	}

	return nil
}
