package quiz2pdf

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/alnah/go-quiz2pdf/internal/canvascsv"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ---------------------------------------------------------------------------
// TestExtractTag
// ---------------------------------------------------------------------------

func TestExtractTag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"[1.1] What is the max flow?", "1.1", true},
		{"2483920: [3.12] Consider the following graph.", "3.12", true},
		{"What is the max flow?", "", false},
		{"[abc] not a tag", "", false},
		{"1.1 unbracketed", "", false},
	}

	for _, tt := range tests {
		got, ok := ExtractTag(tt.header)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ExtractTag(%q) = (%q, %v), want (%q, %v)", tt.header, got, ok, tt.want, tt.ok)
		}
	}
}

// ---------------------------------------------------------------------------
// BuildRecords fixtures
// ---------------------------------------------------------------------------

// taggedExport builds an export with identity columns followed by one
// (answer, points, status) triple per tag, repeated once per subpart.
func taggedExport(tags []string, subparts int, fill func(tag string, subpart int) (answer, status string)) *canvascsv.Export {
	header := []string{"name", "id", "sis_id"}
	row := []string{"Jordan Rivera", "4821", "jr2026"}

	for sp := 0; sp < subparts; sp++ {
		for _, tag := range tags {
			header = append(header,
				fmt.Sprintf("[%s] question text", tag),
				"1.0",
				fmt.Sprintf("%s Status", tag),
			)
			answer, status := fill(tag, sp)
			row = append(row, answer, "0", status)
		}
	}

	return &canvascsv.Export{Header: header, Rows: [][]string{row}}
}

func taggedConfig(tags []string, numParts int) *QuizConfig {
	return &QuizConfig{
		QuizID: 1,
		Groups: []QuestionGroup{{
			ID:          "q1",
			Tags:        tags,
			LineRange:   [2]int{1, 10},
			NumVersions: len(tags),
			NumParts:    numParts,
		}},
	}
}

func twelveTags() []string {
	tags := make([]string, 12)
	for i := range tags {
		tags[i] = fmt.Sprintf("1.%d", i+1)
	}
	return tags
}

// ---------------------------------------------------------------------------
// TestBuildRecords
// ---------------------------------------------------------------------------

func TestBuildRecords_VariantDetection(t *testing.T) {
	t.Parallel()

	// Variants 1-8 Not Shown, variant 9 Complete: the student received 1.9.
	exp := taggedExport(twelveTags(), 1, func(tag string, _ int) (string, string) {
		if tag == "1.9" {
			return "<p>6</p>", "Complete"
		}
		return "", "Not Shown"
	})

	records, err := BuildRecords(exp, taggedConfig(twelveTags(), 1), discardLogger())
	if err != nil {
		t.Fatalf("BuildRecords() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	rec := records[0]
	if rec.Name != "Jordan Rivera" || rec.ID != "4821" || rec.SISID != "jr2026" {
		t.Errorf("identity fields = %q/%q/%q", rec.Name, rec.ID, rec.SISID)
	}

	result := rec.Groups["q1"]
	if result.Variant != 9 || result.Tag != "1.9" {
		t.Errorf("variant = %d tag = %q, want 9 / 1.9", result.Variant, result.Tag)
	}
	if result.Answers["a"] != "<p>6</p>" {
		t.Errorf("answer a = %q, want %q", result.Answers["a"], "<p>6</p>")
	}
	if len(rec.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", rec.Warnings)
	}
}

func TestBuildRecords_BlankCellWithShownStatus(t *testing.T) {
	t.Parallel()

	// A shown question left blank is an explicit empty answer, not an
	// omitted one.
	exp := taggedExport([]string{"1.1", "1.2"}, 1, func(tag string, _ int) (string, string) {
		if tag == "1.1" {
			return "", "Complete"
		}
		return "", "Not Shown"
	})

	records, err := BuildRecords(exp, taggedConfig([]string{"1.1", "1.2"}, 1), discardLogger())
	if err != nil {
		t.Fatalf("BuildRecords() error = %v", err)
	}

	result := records[0].Groups["q1"]
	if result.Variant != 1 {
		t.Fatalf("variant = %d, want 1", result.Variant)
	}
	got, present := result.Answers["a"]
	if !present || got != "" {
		t.Errorf("answer a = (%q, present=%v), want explicit empty string", got, present)
	}
}

func TestBuildRecords_UndeterminedVariantFallsBack(t *testing.T) {
	t.Parallel()

	// Every variant column says Not Shown: fall back to variant 1 and warn.
	exp := taggedExport([]string{"1.1", "1.2"}, 1, func(string, int) (string, string) {
		return "", "Not Shown"
	})

	records, err := BuildRecords(exp, taggedConfig([]string{"1.1", "1.2"}, 1), discardLogger())
	if err != nil {
		t.Fatalf("BuildRecords() error = %v", err)
	}

	rec := records[0]
	result := rec.Groups["q1"]
	if result.Variant != 1 || result.Tag != "1.1" {
		t.Errorf("fallback variant = %d tag = %q, want 1 / 1.1", result.Variant, result.Tag)
	}
	if len(result.Answers) != 0 {
		t.Errorf("fallback recorded answers: %v", result.Answers)
	}
	if len(rec.Warnings) == 0 {
		t.Error("fallback produced no warning")
	}
}

func TestBuildRecords_TaggedSubparts(t *testing.T) {
	t.Parallel()

	// Two occurrences of each tag: occurrence order is subpart order.
	exp := taggedExport([]string{"2.1", "2.2"}, 2, func(tag string, sp int) (string, string) {
		if tag != "2.2" {
			return "", "Not Shown"
		}
		return fmt.Sprintf("<p>answer %d</p>", sp), "Complete"
	})

	cfg := &QuizConfig{
		QuizID: 1,
		Groups: []QuestionGroup{{
			ID:          "q2",
			Tags:        []string{"2.1", "2.2"},
			LineRange:   [2]int{1, 10},
			NumVersions: 2,
			NumParts:    2,
		}},
	}

	records, err := BuildRecords(exp, cfg, discardLogger())
	if err != nil {
		t.Fatalf("BuildRecords() error = %v", err)
	}

	result := records[0].Groups["q2"]
	if result.Variant != 2 {
		t.Fatalf("variant = %d, want 2", result.Variant)
	}
	if result.Answers["a"] != "<p>answer 0</p>" || result.Answers["b"] != "<p>answer 1</p>" {
		t.Errorf("subpart answers = %v", result.Answers)
	}
}

func TestBuildRecords_PrefixSubpart(t *testing.T) {
	t.Parallel()

	header := []string{
		"name", "id", "sis_id",
		"[3.1] pick a graph", "1.0", "3.1 Status",
		"[3.2] pick a graph", "1.0", "3.2 Status",
		"Part B: justify your choice", "2.0", "Part B Status",
	}
	row := []string{
		"Sam Okafor", "77", "so1",
		"", "0", "Not Shown",
		"<p>graph ii</p>", "1", "Complete",
		"<p>because it is bipartite</p>", "2", "Complete",
	}
	exp := &canvascsv.Export{Header: header, Rows: [][]string{row}}

	cfg := &QuizConfig{
		QuizID: 1,
		Groups: []QuestionGroup{{
			ID:          "q3",
			Tags:        []string{"3.1", "3.2"},
			LineRange:   [2]int{1, 10},
			NumVersions: 2,
			NumParts:    2,
			Subparts: map[string]SubpartSource{
				"b": {Source: SourcePrefix, Prefix: "Part B:"},
			},
		}},
	}

	records, err := BuildRecords(exp, cfg, discardLogger())
	if err != nil {
		t.Fatalf("BuildRecords() error = %v", err)
	}

	result := records[0].Groups["q3"]
	if result.Variant != 2 {
		t.Fatalf("variant = %d, want 2", result.Variant)
	}
	if result.Answers["a"] != "<p>graph ii</p>" {
		t.Errorf("answer a = %q", result.Answers["a"])
	}
	if result.Answers["b"] != "<p>because it is bipartite</p>" {
		t.Errorf("answer b = %q", result.Answers["b"])
	}
}

func TestBuildRecords_SkipsBlankRows(t *testing.T) {
	t.Parallel()

	exp := taggedExport([]string{"1.1"}, 1, func(string, int) (string, string) {
		return "<p>x</p>", "Complete"
	})
	exp.Rows = append(exp.Rows, []string{"", "", ""}, []string{"   "})

	records, err := BuildRecords(exp, taggedConfig([]string{"1.1"}, 1), discardLogger())
	if err != nil {
		t.Fatalf("BuildRecords() error = %v", err)
	}
	if len(records) != 1 {
		t.Errorf("got %d records, want 1 (blank rows skipped)", len(records))
	}
}

func TestBuildRecords_Errors(t *testing.T) {
	t.Parallel()

	t.Run("missing name column", func(t *testing.T) {
		t.Parallel()

		exp := &canvascsv.Export{
			Header: []string{"id", "[1.1] q", "1.0", "1.1 Status"},
			Rows:   [][]string{{"1", "<p>x</p>", "0", "Complete"}},
		}
		_, err := BuildRecords(exp, taggedConfig([]string{"1.1"}, 1), discardLogger())
		if !errors.Is(err, ErrMissingColumn) {
			t.Errorf("BuildRecords() error = %v, want ErrMissingColumn", err)
		}
	})

	t.Run("no tagged columns for group", func(t *testing.T) {
		t.Parallel()

		exp := &canvascsv.Export{
			Header: []string{"name", "id", "essay question"},
			Rows:   [][]string{{"Jordan", "1", "text"}},
		}
		_, err := BuildRecords(exp, taggedConfig([]string{"1.1"}, 1), discardLogger())
		if !errors.Is(err, ErrNoTaggedCols) {
			t.Errorf("BuildRecords() error = %v, want ErrNoTaggedCols", err)
		}
	})

	t.Run("missing prefix column", func(t *testing.T) {
		t.Parallel()

		exp := taggedExport([]string{"1.1"}, 1, func(string, int) (string, string) {
			return "<p>x</p>", "Complete"
		})
		cfg := taggedConfig([]string{"1.1"}, 2)
		cfg.Groups[0].Subparts = map[string]SubpartSource{
			"b": {Source: SourcePrefix, Prefix: "Part B:"},
		}
		_, err := BuildRecords(exp, cfg, discardLogger())
		if !errors.Is(err, ErrMissingColumn) {
			t.Errorf("BuildRecords() error = %v, want ErrMissingColumn", err)
		}
	})
}
