package quiz2pdf

import (
	"github.com/alnah/go-quiz2pdf/internal/assets"
)

// mathJaxScriptURL is the browser-side math renderer the rasterizer waits on.
const mathJaxScriptURL = "https://cdn.jsdelivr.net/npm/mathjax@3/es5/tex-mml-chtml.js"

// buildTemplateCSS composes the static stylesheet for one group's template:
// the embedded base style plus the group's page break policy. Presentation
// rules are baked into the template once, never computed per student.
func buildTemplateCSS(group QuestionGroup) string {
	base, err := assets.LoadStyle("rubric")
	if err != nil {
		// Embedded asset missing is a build defect, not a runtime condition.
		panic("quiz2pdf: failed to load rubric stylesheet: " + err.Error())
	}

	return base + buildPageBreakCSS(group.PageBreak)
}

// buildPageBreakCSS generates the page break rules for a policy.
// Variants always break after themselves so consecutive students never share
// a page; each-part additionally breaks before every labeled part heading.
func buildPageBreakCSS(policy string) string {
	css := `
.question-variant {
  page-break-after: always;
  break-after: page;
}
`
	if policy == PageBreakEachPart {
		css += `
h2.page-break {
  page-break-before: always;
  break-before: page;
  margin-top: 2em;
}
`
	}
	return css
}
