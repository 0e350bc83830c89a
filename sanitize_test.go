package quiz2pdf

import (
	"testing"
)

// ---------------------------------------------------------------------------
// TestSanitizeAnswer - marker conversion
// ---------------------------------------------------------------------------

func TestSanitizeAnswer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "blank input",
			raw:  "  \n ",
			want: "",
		},
		{
			name: "plain html untouched",
			raw:  "<p>The maximum flow is 6.</p>",
			want: "<p>The maximum flow is 6.</p>",
		},
		{
			name: "bare marker",
			raw:  "LaTeX: x^2",
			want: `\(x^2\)`,
		},
		{
			name: "marker terminated by tag",
			raw:  "<p>LaTeX: x^2</p>",
			want: `<p>\(x^2\)</p>`,
		},
		{
			name: "balanced delimiters swallow separators",
			raw:  `LaTeX: C_1,C_2,\left(x\right),\ldots,C_n and more text`,
			want: `\(C_1,C_2,\left(x\right),\ldots,C_n\) and more text`,
		},
		{
			name: "stop word ends expression",
			raw:  "LaTeX: f(x)=2x is increasing",
			want: `\(f(x)=2x\) is increasing`,
		},
		{
			name: "stop word at end of input ends expression",
			raw:  "LaTeX: x^2 in",
			want: `\(x^2\) in`,
		},
		{
			name: "doubled marker wraps once",
			raw:  "LaTeX: LaTeX: x",
			want: `\(LaTeX: x\)`,
		},
		{
			name: "marker inside existing delimiters untouched",
			raw:  `\(LaTeX: x\)`,
			want: `\(LaTeX: x\)`,
		},
		{
			name: "trailing comma stripped",
			raw:  "LaTeX: a+b, and then prose",
			want: `\(a+b\) and then prose`,
		},
		{
			name: "space after balancing right ends expression",
			raw:  `LaTeX: \left(x+y\right) more prose`,
			want: `\(\left(x+y\right)\) more prose`,
		},
		{
			name: "multiple markers",
			raw:  "<p>LaTeX: a^2</p><p>LaTeX: b^2</p>",
			want: `<p>\(a^2\)</p><p>\(b^2\)</p>`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := SanitizeAnswer(tt.raw); got != tt.want {
				t.Errorf("SanitizeAnswer(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestSanitizeAnswer_EquationImages
// ---------------------------------------------------------------------------

func TestSanitizeAnswer_EquationImages(t *testing.T) {
	t.Parallel()

	raw := `<p>The derivative is <img class="equation_image" data-equation-content="\frac{dy}{dx}" src="https://canvas.example.com/equations/1"/> as shown.</p>`

	got := SanitizeAnswer(raw)
	want := `<p>The derivative is <span class="math inline">\(\frac{dy}{dx}\)</span> as shown.</p>`
	if got != want {
		t.Errorf("SanitizeAnswer() = %q, want %q", got, want)
	}
}

func TestSanitizeAnswer_EquationImageWithoutContent(t *testing.T) {
	t.Parallel()

	// Equation image missing its source expression stays an image.
	raw := `<p><img class="equation_image" src="https://canvas.example.com/equations/2"/></p>`
	got := SanitizeAnswer(raw)
	if got != raw {
		t.Errorf("SanitizeAnswer() = %q, want input unchanged", got)
	}
}

// ---------------------------------------------------------------------------
// TestSanitizeAnswer_Idempotent
// ---------------------------------------------------------------------------

func TestSanitizeAnswer_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"<p>plain prose with no markers</p>",
		"LaTeX: x^2",
		"<p>LaTeX: x^2</p>",
		`LaTeX: C_1,C_2,\left(x\right),\ldots,C_n and more text`,
		`<p>eq <img class="equation_image" data-equation-content="a^2+b^2" src="https://c/e"/> done</p>`,
		"<p>LaTeX: a+b, and then LaTeX: c+d</p>",
		"LaTeX: LaTeX: x",
		"LaTeX: x^2 in",
	}

	for _, raw := range inputs {
		once := SanitizeAnswer(raw)
		twice := SanitizeAnswer(once)
		if once != twice {
			t.Errorf("sanitize not idempotent for %q:\n once: %q\ntwice: %q", raw, once, twice)
		}
	}
}
