package quiz2pdf

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// buildPandocHTML generates a standalone document shaped like Pandoc's html5
// output for a segmented rubric: one h1 per variant, h2 per part, and a
// blockquote solution after each part.
func buildPandocHTML(variants, parts int) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\" />\n<title>rubric</title>\n</head>\n<body>\n")
	for v := 1; v <= variants; v++ {
		fmt.Fprintf(&b, "<h1>Question (10 points)</h1>\n<p>Variant %d prompt.</p>\n", v)
		for p := 1; p <= parts; p++ {
			fmt.Fprintf(&b, "<h2>Part (%d points)</h2>\n<p>Do the thing for variant %d part %d.</p>\n", p+2, v, p)
			fmt.Fprintf(&b, "<blockquote>\n<p><strong>Solution:</strong> answer %d.%d</p>\n</blockquote>\n", v, p)
		}
	}
	b.WriteString("</body>\n</html>\n")
	return b.String()
}

func flowGroup(variants, parts int) QuestionGroup {
	return QuestionGroup{
		ID:          "q1",
		Tags:        []string{"1.1", "1.2"},
		LineRange:   [2]int{1, 10},
		NumVersions: variants,
		NumParts:    parts,
	}
}

// ---------------------------------------------------------------------------
// TestAssembleTemplate
// ---------------------------------------------------------------------------

func TestAssembleTemplate(t *testing.T) {
	t.Parallel()

	group := flowGroup(2, 2)
	got, err := AssembleTemplate(buildPandocHTML(2, 2), group)
	if err != nil {
		t.Fatalf("AssembleTemplate() error = %v", err)
	}

	// One container per variant, indexed by document order.
	for v := 1; v <= 2; v++ {
		marker := fmt.Sprintf(`data-variant="%d"`, v)
		if strings.Count(got, marker) != 1 {
			t.Errorf("expected exactly one container with %s:\n%s", marker, got)
		}
	}
	if strings.Count(got, `data-group="q1"`) != 2 {
		t.Errorf("expected 2 containers with data-group=\"q1\":\n%s", got)
	}

	// One placeholder per subpart per container.
	if strings.Count(got, "{{PART_A}}") != 2 || strings.Count(got, "{{PART_B}}") != 2 {
		t.Errorf("placeholder counts wrong:\n%s", got)
	}
	if strings.Contains(got, "{{PART_C}}") {
		t.Errorf("unexpected slot beyond configured parts:\n%s", got)
	}

	// Part headings carry subpart letters.
	for _, want := range []string{"Part A (3 points)", "Part B (4 points)"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing relabeled heading %q:\n%s", want, got)
		}
	}

	// Slot structure.
	if !strings.Contains(got, "Student Answer (Part A):") {
		t.Errorf("missing answer slot heading:\n%s", got)
	}
	if !strings.Contains(got, `class="answer-placeholder"`) {
		t.Errorf("missing placeholder div:\n%s", got)
	}

	// Head carries the stylesheet and math loader.
	if !strings.Contains(got, "<style>") {
		t.Errorf("missing injected stylesheet:\n%s", got)
	}
	if !strings.Contains(got, mathJaxScriptURL) {
		t.Errorf("missing math loader script:\n%s", got)
	}

	// Assembled output satisfies its own validator.
	if err := ValidateTemplate(got, group); err != nil {
		t.Errorf("ValidateTemplate() on assembled output = %v", err)
	}
}

func TestAssembleTemplate_VariantCountMismatch(t *testing.T) {
	t.Parallel()

	// Config expects 3 variants, rubric section only has 2 headings.
	_, err := AssembleTemplate(buildPandocHTML(2, 1), flowGroup(3, 1))
	if !errors.Is(err, ErrTemplateInvalid) {
		t.Fatalf("AssembleTemplate() error = %v, want ErrTemplateInvalid", err)
	}
	if !strings.Contains(err.Error(), "found 2 question headings") {
		t.Errorf("error lacks heading count: %v", err)
	}
}

func TestAssembleTemplate_ExtraPartsIgnored(t *testing.T) {
	t.Parallel()

	// Rubric has 3 parts per variant but config only addresses 2.
	got, err := AssembleTemplate(buildPandocHTML(1, 3), flowGroup(1, 2))
	if err != nil {
		t.Fatalf("AssembleTemplate() error = %v", err)
	}
	if strings.Contains(got, "{{PART_C}}") {
		t.Errorf("slot created for unconfigured part:\n%s", got)
	}
	if err := ValidateTemplate(got, flowGroup(1, 2)); err != nil {
		t.Errorf("ValidateTemplate() = %v", err)
	}
}

func TestAssembleTemplate_EachPartPageBreak(t *testing.T) {
	t.Parallel()

	group := flowGroup(1, 2)
	group.PageBreak = PageBreakEachPart

	got, err := AssembleTemplate(buildPandocHTML(1, 2), group)
	if err != nil {
		t.Fatalf("AssembleTemplate() error = %v", err)
	}
	if strings.Count(got, `class="page-break"`) != 2 {
		t.Errorf("expected page-break class on both part headings:\n%s", got)
	}
}

func TestAssembleTemplate_RewritesImagePaths(t *testing.T) {
	t.Parallel()

	doc := `<!DOCTYPE html><html><head><title>t</title></head><body>
<h1>Question (5 points)</h1>
<p><img src="graph1.png" alt="flow network" /></p>
<p><img src="https://example.com/remote.png" /></p>
<h2>Part (5 points)</h2>
<blockquote><p>Solution</p></blockquote>
</body></html>`

	got, err := AssembleTemplate(doc, flowGroup(1, 1))
	if err != nil {
		t.Fatalf("AssembleTemplate() error = %v", err)
	}
	if !strings.Contains(got, `src="images/graph1.png"`) {
		t.Errorf("bare image path not rewritten:\n%s", got)
	}
	if !strings.Contains(got, `src="https://example.com/remote.png"`) {
		t.Errorf("absolute URL was rewritten:\n%s", got)
	}
}

// ---------------------------------------------------------------------------
// TestValidateTemplate
// ---------------------------------------------------------------------------

func TestValidateTemplate_Errors(t *testing.T) {
	t.Parallel()

	group := flowGroup(2, 1)

	container := func(variant, slots string) string {
		return `<div class="question-variant" data-group="q1" data-variant="` + variant + `">` + slots + `</div>`
	}
	page := func(body string) string {
		return "<!DOCTYPE html><html><head><title>t</title></head><body>" + body + "</body></html>"
	}

	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "too few containers",
			doc:  page(container("1", "{{PART_A}}")),
		},
		{
			name: "duplicate variant index",
			doc:  page(container("1", "{{PART_A}}") + container("1", "{{PART_A}}")),
		},
		{
			name: "gap in variant indices",
			doc:  page(container("1", "{{PART_A}}") + container("3", "{{PART_A}}")),
		},
		{
			name: "missing placeholder",
			doc:  page(container("1", "{{PART_A}}") + container("2", "<p>no slot</p>")),
		},
		{
			name: "duplicated placeholder",
			doc:  page(container("1", "{{PART_A}} {{PART_A}}") + container("2", "{{PART_A}}")),
		},
		{
			name: "slot beyond configured parts",
			doc:  page(container("1", "{{PART_A}} {{PART_B}}") + container("2", "{{PART_A}}")),
		},
		{
			name: "non-numeric variant index",
			doc:  page(container("one", "{{PART_A}}") + container("2", "{{PART_A}}")),
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if err := ValidateTemplate(tt.doc, group); !errors.Is(err, ErrTemplateInvalid) {
				t.Errorf("ValidateTemplate() error = %v, want ErrTemplateInvalid", err)
			}
		})
	}
}
