package quiz2pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/alnah/go-quiz2pdf/internal/assets"
)

// bannerTemplate renders the student identity banner. Loaded once from the
// embedded assets; a missing or unparseable banner is a build defect.
var bannerTemplate = mustLoadBannerTemplate()

func mustLoadBannerTemplate() *template.Template {
	content, err := assets.LoadTemplate("banner")
	if err != nil {
		panic("quiz2pdf: failed to load banner template: " + err.Error())
	}
	tmpl, err := template.New("banner").Parse(content)
	if err != nil {
		panic("quiz2pdf: failed to parse banner template: " + err.Error())
	}
	return tmpl
}

// bannerData feeds the identity banner template.
type bannerData struct {
	Name  string
	ID    string
	SISID string
}

// BindAnswers produces one student's document from a group template: the
// container matching the student's variant index is kept, every other
// variant is removed from the tree entirely, each configured placeholder is
// substituted with the student's sanitized answer (or the no-answer marker),
// and the identity banner is prepended as the first body content.
//
// Binding is deterministic: the same template and record always produce
// byte-identical output.
func BindAnswers(templateHTML string, rec StudentRecord, group QuestionGroup) (string, error) {
	result, ok := rec.Groups[group.ID]
	if !ok {
		return "", fmt.Errorf("%w: student %q has no result for group %q", ErrVariantNotFound, rec.Name, group.ID)
	}

	pruned, err := pruneVariants(templateHTML, group.ID, result.Variant)
	if err != nil {
		return "", err
	}

	bound, err := resolvePlaceholders(pruned, result, group)
	if err != nil {
		return "", err
	}

	return prependBanner(bound, rec)
}

// pruneVariants keeps only the container with the given variant index.
// Other variants are detached from the tree, not hidden: the rasterizer
// must not pay layout cost for them and their content must not leak into
// extracted text.
func pruneVariants(templateHTML, groupID string, variant int) (string, error) {
	doc, err := parseDocument(templateHTML)
	if err != nil {
		return "", err
	}

	containers := findAll(doc, func(n *html.Node) bool {
		return isElement(n, "div") && hasClass(n, "question-variant") && getAttr(n, "data-group") == groupID
	})

	found := false
	for _, c := range containers {
		if getAttr(c, "data-variant") == strconv.Itoa(variant) {
			found = true
			continue
		}
		c.Parent.RemoveChild(c)
	}

	if !found {
		return "", fmt.Errorf("%w: group %q variant %d (template has %d containers)",
			ErrVariantNotFound, groupID, variant, len(containers))
	}

	return renderNode(doc)
}

// resolvePlaceholders substitutes every configured subpart slot exactly once.
// A missing or duplicated placeholder means the template and config disagree.
func resolvePlaceholders(doc string, result GroupResult, group QuestionGroup) (string, error) {
	for i := 0; i < group.NumParts; i++ {
		letter := SubpartLetter(i)
		placeholder := placeholderFor(letter)

		if n := strings.Count(doc, placeholder); n != 1 {
			return "", fmt.Errorf("%w: %s appears %d times, want 1", ErrPlaceholderUnresolved, placeholder, n)
		}

		doc = strings.Replace(doc, placeholder, answerContent(result, letter), 1)
	}
	return doc, nil
}

// answerContent returns the sanitized answer for a subpart, or the
// no-answer marker. A present-but-blank answer (shown to the student, left
// empty) renders the marker too.
func answerContent(result GroupResult, letter string) string {
	raw, ok := result.Answers[letter]
	if !ok || strings.TrimSpace(raw) == "" {
		return noAnswerMarker
	}
	return SanitizeAnswer(raw)
}

// prependBanner renders the identity banner and inserts it as the first
// content of <body>.
func prependBanner(doc string, rec StudentRecord) (string, error) {
	var buf bytes.Buffer
	data := bannerData{Name: rec.Name, ID: rec.ID, SISID: rec.SISID}
	if err := bannerTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBannerRender, err)
	}

	bannerHTML := buf.String()
	lowerDoc := strings.ToLower(doc)

	// Insert right after the <body ...> open tag.
	if idx := strings.Index(lowerDoc, "<body"); idx != -1 {
		if closeIdx := strings.Index(doc[idx:], ">"); closeIdx != -1 {
			insertPos := idx + closeIdx + 1
			return doc[:insertPos] + bannerHTML + doc[insertPos:], nil
		}
	}

	// Fallback: prepend.
	return bannerHTML + doc, nil
}
