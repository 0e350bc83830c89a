package quiz2pdf

import (
	"fmt"
	"strings"
	"time"
)

// Page break policy constants.
const (
	PageBreakSamePage = "same-page"
	PageBreakEachPart = "each-part"
)

// Subpart source strategy constants.
const (
	SourceTag    = "tag"
	SourcePrefix = "prefix"
)

// SubpartLetters enumerates the supported subpart labels, in order.
const SubpartLetters = "abcdef"

// MaxParts is the number of supported subpart letters.
const MaxParts = len(SubpartLetters)

// defaultStatusOffset is the column distance between a tagged answer column
// and its Status companion in Canvas exports (answer, earned points, status).
const defaultStatusOffset = 2

// SubpartSource describes where one subpart's answer column comes from.
//
// Canvas changed export layouts between semesters: early exports carry one
// tagged column per variant for every subpart, later ones tag only subpart
// "a" and share untagged "Part B:" / "Part C:" columns across all variants.
// Making the resolution strategy per-subpart config keeps the record builder
// independent of any particular layout.
type SubpartSource struct {
	Source       string `yaml:"source"`                  // "tag" or "prefix"
	Prefix       string `yaml:"prefix,omitempty"`        // header prefix for "prefix" source
	StatusOffset int    `yaml:"status_offset,omitempty"` // columns to the Status companion (0 = default)
}

// QuestionGroup configures one question group of a quiz.
type QuestionGroup struct {
	ID          string                   `yaml:"id"`
	Name        string                   `yaml:"name"`
	Tags        []string                 `yaml:"tags"`
	LineRange   [2]int                   `yaml:"latex_line_range"` // 1-indexed, inclusive
	NumVersions int                      `yaml:"num_versions"`
	NumParts    int                      `yaml:"num_parts"`
	Points      int                      `yaml:"points"`
	PageBreak   string                   `yaml:"page_break,omitempty"` // "same-page" (default) or "each-part"
	ImageMap    map[int]string           `yaml:"image_map,omitempty"`  // variant index -> image filename
	Subparts    map[string]SubpartSource `yaml:"subparts,omitempty"`   // letter -> source strategy
}

// Validate checks that the group configuration is internally consistent.
func (g *QuestionGroup) Validate() error {
	if g.ID == "" {
		return fmt.Errorf("%w: group id cannot be empty", ErrInvalidGroup)
	}

	if g.LineRange[0] < 1 || g.LineRange[1] < g.LineRange[0] {
		return fmt.Errorf("%w: group %q: [%d, %d]", ErrInvalidLineRange, g.ID, g.LineRange[0], g.LineRange[1])
	}

	if g.NumParts < 1 || g.NumParts > MaxParts {
		return fmt.Errorf("%w: group %q: %d (must be 1-%d)", ErrInvalidNumParts, g.ID, g.NumParts, MaxParts)
	}

	switch g.PageBreak {
	case "", PageBreakSamePage, PageBreakEachPart:
	default:
		return fmt.Errorf("%w: group %q: %q", ErrInvalidPageBreak, g.ID, g.PageBreak)
	}

	seen := make(map[string]struct{}, len(g.Tags))
	for _, tag := range g.Tags {
		if _, dup := seen[tag]; dup {
			return fmt.Errorf("%w: %q in group %q", ErrDuplicateTag, tag, g.ID)
		}
		seen[tag] = struct{}{}
	}

	for variant := range g.ImageMap {
		if variant < 1 || variant > g.NumVersions {
			return fmt.Errorf("%w: group %q: variant %d of %d", ErrInvalidImageMap, g.ID, variant, g.NumVersions)
		}
	}

	for letter, src := range g.Subparts {
		if len(letter) != 1 || !strings.Contains(SubpartLetters, letter) {
			return fmt.Errorf("%w: group %q: unknown subpart %q", ErrInvalidGroup, g.ID, letter)
		}
		switch src.Source {
		case SourceTag, SourcePrefix:
		default:
			return fmt.Errorf("%w: group %q subpart %q: source %q", ErrInvalidGroup, g.ID, letter, src.Source)
		}
		if src.Source == SourcePrefix && src.Prefix == "" {
			return fmt.Errorf("%w: group %q subpart %q: empty prefix", ErrInvalidGroup, g.ID, letter)
		}
	}

	return nil
}

// SubpartFor returns the source strategy for a subpart letter.
// Unconfigured subparts default to the tagged-column strategy, matching the
// original export layout.
func (g *QuestionGroup) SubpartFor(letter string) SubpartSource {
	if src, ok := g.Subparts[letter]; ok {
		if src.StatusOffset == 0 {
			src.StatusOffset = defaultStatusOffset
		}
		return src
	}
	return SubpartSource{Source: SourceTag, StatusOffset: defaultStatusOffset}
}

// QuizConfig configures one quiz.
type QuizConfig struct {
	QuizID     int             `yaml:"quiz_id"`
	Name       string          `yaml:"quiz_name"`
	Abbr       string          `yaml:"abbr,omitempty"` // short token used in output filenames
	RubricFile string          `yaml:"rubric_file,omitempty"`
	Groups     []QuestionGroup `yaml:"question_groups"`
}

// Validate checks group uniqueness constraints across the whole quiz.
// Variant tags must be unique across groups, not just within one, because
// tag resolution maps an export column to exactly one group.
func (c *QuizConfig) Validate() error {
	groupIDs := make(map[string]struct{}, len(c.Groups))
	tags := make(map[string]string)

	for i := range c.Groups {
		g := &c.Groups[i]
		if err := g.Validate(); err != nil {
			return err
		}

		if _, dup := groupIDs[g.ID]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateGroupID, g.ID)
		}
		groupIDs[g.ID] = struct{}{}

		for _, tag := range g.Tags {
			if owner, dup := tags[tag]; dup {
				return fmt.Errorf("%w: %q used by groups %q and %q", ErrDuplicateTag, tag, owner, g.ID)
			}
			tags[tag] = g.ID
		}
	}

	return nil
}

// AbbrOrDefault returns the filename abbreviation, defaulting to "q<id>".
func (c *QuizConfig) AbbrOrDefault() string {
	if c.Abbr != "" {
		return c.Abbr
	}
	return fmt.Sprintf("q%d", c.QuizID)
}

// GroupResult holds one student's outcome for one question group.
type GroupResult struct {
	Tag     string            // variant tag the student received, e.g. "1.9"
	Variant int               // 1-based position of Tag in the group's tag list
	Answers map[string]string // subpart letter -> raw answer HTML; absent = never shown
}

// StudentRecord is one row of the export, resolved against the quiz config.
// Built once per student and immutable afterwards.
type StudentRecord struct {
	Name     string
	ID       string
	SISID    string
	Groups   map[string]GroupResult // group id -> result
	Warnings []string               // extraction gaps, surfaced in the run report
}

// RenderResult reports the outcome of rendering one HTML document to PDF.
type RenderResult struct {
	PDF []byte
	// PartialRender is set when the math layout engine did not signal
	// completion before its timeout; the PDF was captured anyway.
	PartialRender bool
}

// Option configures a Service.
type Option func(*Service)

// serviceConfig holds internal configuration for Service.
type serviceConfig struct {
	timeout        time.Duration
	mathJaxTimeout time.Duration
}

// Default timeouts: page rendering and the MathJax completion wait.
const (
	defaultTimeout        = 60 * time.Second
	defaultMathJaxTimeout = 10 * time.Second
)

// WithTimeout sets the per-document rendering timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("quiz2pdf: WithTimeout duration must be positive")
	}
	return func(s *Service) {
		s.cfg.timeout = d
	}
}

// WithMathJaxTimeout sets how long to wait for MathJax typesetting before
// degrading to a partial render.
func WithMathJaxTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("quiz2pdf: WithMathJaxTimeout duration must be positive")
	}
	return func(s *Service) {
		s.cfg.mathJaxTimeout = d
	}
}

// SubpartLetter returns the letter for the Nth subpart (0-based), e.g. 0 -> "a".
func SubpartLetter(n int) string {
	if n < 0 || n >= MaxParts {
		return ""
	}
	return string(SubpartLetters[n])
}
